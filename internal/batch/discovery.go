package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

// DefaultMaxDocuments caps how many documents a single run processes.
const DefaultMaxDocuments = 300

// DefaultIncludePatterns selects the documents a run picks up.
var DefaultIncludePatterns = []string{"*.pdf"}

// Discovery selects the documents of a run. Patterns are matched against
// the base name; an empty Include accepts every file that is not excluded.
type Discovery struct {
	Recursive bool
	Include   []string
	Exclude   []string
	// Max cuts the sorted list; zero or less means no cap.
	Max int
}

// Discovery returns the document selection configured for the run.
func (c *Config) Discovery() Discovery {
	return Discovery{
		Recursive: c.Recursive,
		Include:   c.IncludePatterns,
		Exclude:   c.ExcludePatterns,
		Max:       c.MaxDocuments,
	}
}

// Find lists the documents named by paths, expanding directories. Files named
// explicitly are filtered like directory entries. The result is sorted and
// free of duplicates, so repeated runs over the same input see the same
// documents.
func (d Discovery) Find(paths []string) ([]string, error) {
	var docs []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", p, err)
		}
		if !info.IsDir() {
			if d.accepts(p) {
				docs = append(docs, p)
			}
			continue
		}
		found, err := d.walk(p)
		if err != nil {
			return nil, err
		}
		docs = append(docs, found...)
	}

	slices.Sort(docs)
	docs = slices.Compact(docs)
	if d.Max > 0 && len(docs) > d.Max {
		docs = docs[:d.Max]
	}
	return docs, nil
}

func (d Discovery) walk(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if path != root && !d.Recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if d.accepts(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	return files, nil
}

func (d Discovery) accepts(path string) bool {
	name := filepath.Base(path)
	if matchAny(name, d.Exclude) {
		return false
	}
	return len(d.Include) == 0 || matchAny(name, d.Include)
}

func matchAny(name string, patterns []string) bool {
	return slices.ContainsFunc(patterns, func(pattern string) bool {
		ok, _ := filepath.Match(pattern, name)
		return ok
	})
}
