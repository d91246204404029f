package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "linecrop"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "LINECROP"
)

// Loader handles loading configuration from various sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader on the global viper instance, so flags bound
// by the root command take part in resolution.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// NewLoaderWithViper creates a loader on a dedicated viper instance.
func NewLoaderWithViper(v *viper.Viper) *Loader {
	return &Loader{v: v}
}

// Load loads configuration from files, environment variables, and defaults,
// then validates it.
func (l *Loader) Load() (*Config, error) {
	return l.LoadWithFile("")
}

// LoadWithoutValidation is Load without the validation step.
func (l *Loader) LoadWithoutValidation() (*Config, error) {
	return l.LoadWithFileWithoutValidation("")
}

// LoadWithFile loads configuration from a specific file path. An empty path
// searches the standard locations.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	config, err := l.LoadWithFileWithoutValidation(configFile)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// LoadWithFileWithoutValidation loads configuration from a specific file
// path without validation.
func (l *Loader) LoadWithFileWithoutValidation(configFile string) (*Config, error) {
	if configFile != "" {
		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", configFile)
		}
		l.v.SetConfigFile(configFile)
	} else {
		l.v.SetConfigName(ConfigFileName)
		l.v.SetConfigType("yaml") // Primary format, but viper supports multiple formats
		l.addConfigPaths()
	}

	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, continue with defaults and env vars
	}

	return l.Unmarshal()
}

// Unmarshal decodes the current viper state, including bound flags.
func (l *Loader) Unmarshal() (*Config, error) {
	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}

// GetConfigFileUsed returns the path of the config file used.
func (l *Loader) GetConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// GetViper returns the underlying viper instance for advanced usage.
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}

// addConfigPaths adds the standard configuration search paths.
func (l *Loader) addConfigPaths() {
	for _, p := range GetConfigSearchPaths() {
		l.v.AddConfigPath(p)
	}
}

// setupEnvironmentVariables configures environment variable handling.
func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	// LINECROP_RASTER_DPI maps to raster.dpi
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults sets default values for all configuration options.
func (l *Loader) setDefaults() {
	defaults := DefaultConfig()

	l.v.SetDefault("log_level", defaults.LogLevel)
	l.v.SetDefault("verbose", defaults.Verbose)

	l.v.SetDefault("input.source_dir", defaults.Input.SourceDir)
	l.v.SetDefault("input.max_documents", defaults.Input.MaxDocuments)
	l.v.SetDefault("input.include", defaults.Input.Include)
	l.v.SetDefault("input.exclude", defaults.Input.Exclude)
	l.v.SetDefault("input.recursive", defaults.Input.Recursive)

	l.v.SetDefault("output.images_dir", defaults.Output.ImagesDir)
	l.v.SetDefault("output.labels_dir", defaults.Output.LabelsDir)
	l.v.SetDefault("output.summary_format", defaults.Output.SummaryFormat)
	l.v.SetDefault("output.summary_file", defaults.Output.SummaryFile)

	l.v.SetDefault("raster.dpi", defaults.Raster.DPI)
	l.v.SetDefault("raster.backend", defaults.Raster.Backend)
	l.v.SetDefault("raster.poppler_path", defaults.Raster.PopplerPath)

	l.v.SetDefault("geometry.tolerance", defaults.Geometry.Tolerance)
	l.v.SetDefault("geometry.pad_left", defaults.Geometry.PadLeft)
	l.v.SetDefault("geometry.pad_right", defaults.Geometry.PadRight)
	l.v.SetDefault("geometry.pad_vertical", defaults.Geometry.PadVertical)

	l.v.SetDefault("dataset.label_mode", defaults.Dataset.LabelMode)
	l.v.SetDefault("dataset.normalize", defaults.Dataset.Normalize)

	l.v.SetDefault("batch.workers", defaults.Batch.Workers)
	l.v.SetDefault("batch.progress", defaults.Batch.Progress)
	l.v.SetDefault("batch.stats", defaults.Batch.Stats)

	l.v.SetDefault("metrics.addr", defaults.Metrics.Addr)
	l.v.SetDefault("metrics.cors_origin", defaults.Metrics.CORSOrigin)
	l.v.SetDefault("metrics.shutdown_timeout", defaults.Metrics.ShutdownTimeout)

	l.v.SetDefault("pdf.user_password", defaults.PDF.UserPassword)
	l.v.SetDefault("pdf.owner_password", defaults.PDF.OwnerPassword)
}

// WriteYAML writes cfg as YAML. Passwords are masked unless showSecrets is set.
func WriteYAML(w io.Writer, cfg Config, showSecrets bool) error {
	if !showSecrets {
		cfg.PDF.UserPassword = mask(cfg.PDF.UserPassword)
		cfg.PDF.OwnerPassword = mask(cfg.PDF.OwnerPassword)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}

// GenerateDefaultConfigFile writes the default configuration to filename.
// It refuses to overwrite an existing file unless force is set.
func GenerateDefaultConfigFile(filename string, force bool) error {
	if filename == "" {
		filename = ConfigFileName + ".yaml"
	}
	if !force {
		if _, err := os.Stat(filename); err == nil {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", filename)
		}
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) //nolint:gosec // user-chosen path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	if err := WriteYAML(f, DefaultConfig(), true); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// GetConfigSearchPaths returns the paths where configuration files are searched.
func GetConfigSearchPaths() []string {
	paths := []string{"."}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home)
	}

	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		paths = append(paths, filepath.Join(configDir, "linecrop"))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "linecrop"))
	}

	paths = append(paths, "/etc/linecrop")

	return paths
}
