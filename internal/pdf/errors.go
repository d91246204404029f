package pdf

import (
	"errors"
	"fmt"
)

// ErrEncrypted is returned when a document needs a password that was not
// supplied or did not work.
var ErrEncrypted = errors.New("document is encrypted")

// DocumentError reports a failure to read, decode, or rasterize a document.
type DocumentError struct {
	Path string
	Op   string
	Err  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *DocumentError) Unwrap() error { return e.Err }

func newDocumentError(path, op string, err error) *DocumentError {
	return &DocumentError{Path: path, Op: op, Err: err}
}
