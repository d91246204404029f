package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func newTestLoader() *Loader {
	return NewLoaderWithViper(viper.New())
}

// TestLoadWithNoConfigFile tests loading with no config file present.
func TestLoadWithNoConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := newTestLoader().Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.LogLevel != infoLevel {
		t.Errorf("Expected default log level %q, got %q", infoLevel, cfg.LogLevel)
	}
	if cfg.Raster.DPI != 150 || cfg.Batch.Workers != 10 {
		t.Errorf("Expected defaults, got dpi=%d workers=%d", cfg.Raster.DPI, cfg.Batch.Workers)
	}
	if len(cfg.Input.Include) != 1 || cfg.Input.Include[0] != "*.pdf" {
		t.Errorf("Include = %v", cfg.Input.Include)
	}
	if cfg.Dataset.Normalize {
		t.Error("Labels should not be normalized by default")
	}
}

// TestLoadWithValidYAMLFile tests loading from a valid YAML file.
func TestLoadWithValidYAMLFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "linecrop.yaml")
	yamlContent := `
log_level: debug
input:
  source_dir: /docs
  recursive: true
raster:
  dpi: 200
  backend: embedded
geometry:
  tolerance: 12
dataset:
  label_mode: members
  normalize: true
batch:
  workers: 4
`
	if err := os.WriteFile(configFile, []byte(yamlContent), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := newTestLoader().LoadWithFile(configFile)
	if err != nil {
		t.Fatalf("LoadWithFile() unexpected error: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.Input.SourceDir != "/docs" || !cfg.Input.Recursive {
		t.Errorf("Unexpected global/input values: %+v", cfg)
	}
	if cfg.Raster.DPI != 200 || cfg.Raster.Backend != "embedded" {
		t.Errorf("Unexpected raster values: %+v", cfg.Raster)
	}
	if cfg.Geometry.Tolerance != 12 || cfg.Geometry.PadLeft != 5 {
		t.Errorf("Unexpected geometry values: %+v", cfg.Geometry)
	}
	if cfg.Dataset.LabelMode != "members" || !cfg.Dataset.Normalize {
		t.Errorf("Unexpected dataset values: %+v", cfg.Dataset)
	}
	if cfg.Batch.Workers != 4 {
		t.Errorf("Expected 4 workers, got %d", cfg.Batch.Workers)
	}
}

func TestLoadWithInvalidValues(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "linecrop.yaml")
	if err := os.WriteFile(configFile, []byte("raster:\n  dpi: -1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := newTestLoader().LoadWithFile(configFile)
	if err == nil || !strings.Contains(err.Error(), "configuration validation failed") {
		t.Fatalf("Expected validation error, got %v", err)
	}

	cfg, err := newTestLoader().LoadWithFileWithoutValidation(configFile)
	if err != nil {
		t.Fatalf("LoadWithFileWithoutValidation() unexpected error: %v", err)
	}
	if cfg.Raster.DPI != -1 {
		t.Errorf("Expected raw DPI -1, got %d", cfg.Raster.DPI)
	}
}

func TestLoadWithMissingFile(t *testing.T) {
	_, err := newTestLoader().LoadWithFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("Expected missing file error, got %v", err)
	}
}

func TestLoadWithMalformedFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "linecrop.yaml")
	if err := os.WriteFile(configFile, []byte("raster: [dpi\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := newTestLoader().LoadWithFile(configFile); err == nil {
		t.Fatal("Expected error for malformed YAML")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("LINECROP_RASTER_DPI", "300")
	t.Setenv("LINECROP_BATCH_WORKERS", "2")
	t.Setenv("LINECROP_PDF_USER_PASSWORD", "hunter2")

	cfg, err := newTestLoader().Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Raster.DPI != 300 {
		t.Errorf("Expected DPI 300 from env, got %d", cfg.Raster.DPI)
	}
	if cfg.Batch.Workers != 2 {
		t.Errorf("Expected 2 workers from env, got %d", cfg.Batch.Workers)
	}
	if cfg.PDF.UserPassword != "hunter2" {
		t.Errorf("Expected password from env, got %q", cfg.PDF.UserPassword)
	}
}

func TestSearchPathConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, "linecrop.yaml"), []byte("log_level: warn\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	loader := newTestLoader()
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("Expected log level warn, got %q", cfg.LogLevel)
	}
	if !strings.HasSuffix(loader.GetConfigFileUsed(), "linecrop.yaml") {
		t.Errorf("Unexpected config file used: %s", loader.GetConfigFileUsed())
	}
}

func TestGenerateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "linecrop.yaml")

	if err := GenerateDefaultConfigFile(path, false); err != nil {
		t.Fatalf("GenerateDefaultConfigFile() error: %v", err)
	}
	if err := GenerateDefaultConfigFile(path, false); err == nil {
		t.Error("Expected error when file exists without force")
	}
	if err := GenerateDefaultConfigFile(path, true); err != nil {
		t.Errorf("GenerateDefaultConfigFile(force) error: %v", err)
	}

	cfg, err := newTestLoader().LoadWithFile(path)
	if err != nil {
		t.Fatalf("generated file should load: %v", err)
	}
	if cfg.Raster.DPI != 150 || cfg.Output.ImagesDir != "data/images" {
		t.Errorf("Generated file does not hold defaults: %+v", cfg)
	}
}

func TestWriteYAML_MasksPasswords(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PDF.OwnerPassword = "owner-secret"

	var buf bytes.Buffer
	if err := WriteYAML(&buf, cfg, false); err != nil {
		t.Fatalf("WriteYAML() error: %v", err)
	}
	if strings.Contains(buf.String(), "owner-secret") {
		t.Error("Password should be masked")
	}

	var decoded Config
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("yaml.Unmarshal() error: %v", err)
	}
	if decoded.PDF.OwnerPassword != "********" || decoded.PDF.UserPassword != "" {
		t.Errorf("Unexpected masked values: %+v", decoded.PDF)
	}
	if decoded.Geometry.Tolerance != 20 {
		t.Errorf("Expected tolerance 20, got %d", decoded.Geometry.Tolerance)
	}
}

func TestGetConfigSearchPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	paths := GetConfigSearchPaths()
	if paths[0] != "." {
		t.Errorf("First search path should be '.', got %q", paths[0])
	}
	if paths[len(paths)-1] != "/etc/linecrop" {
		t.Errorf("Last search path should be /etc/linecrop, got %q", paths[len(paths)-1])
	}
	found := false
	for _, p := range paths {
		if p == filepath.Join("/xdg", "linecrop") {
			found = true
		}
	}
	if !found {
		t.Errorf("XDG path missing from %v", paths)
	}
}
