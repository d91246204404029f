//nolint:lll
package config

// Config represents the complete configuration for linecrop. It covers every
// command (run, document) and supports loading from configuration files,
// environment variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Document discovery
	Input InputConfig `mapstructure:"input" yaml:"input" json:"input"`

	// Dataset and summary destinations
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Page rasterization
	Raster RasterConfig `mapstructure:"raster" yaml:"raster" json:"raster"`

	// Glyph box mapping and line clustering
	Geometry GeometryConfig `mapstructure:"geometry" yaml:"geometry" json:"geometry"`

	// Label derivation
	Dataset DatasetConfig `mapstructure:"dataset" yaml:"dataset" json:"dataset"`

	// Worker pool
	Batch BatchConfig `mapstructure:"batch" yaml:"batch" json:"batch"`

	// Metrics and event endpoint
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics" json:"metrics"`

	// Encrypted documents
	PDF PDFConfig `mapstructure:"pdf" yaml:"pdf" json:"pdf"`
}

// InputConfig contains document discovery settings.
type InputConfig struct {
	SourceDir    string   `mapstructure:"source_dir" yaml:"source_dir" json:"source_dir"`
	MaxDocuments int      `mapstructure:"max_documents" yaml:"max_documents" json:"max_documents"`
	Include      []string `mapstructure:"include" yaml:"include" json:"include"`
	Exclude      []string `mapstructure:"exclude" yaml:"exclude" json:"exclude"`
	Recursive    bool     `mapstructure:"recursive" yaml:"recursive" json:"recursive"`
}

// OutputConfig contains output locations and the run summary format.
type OutputConfig struct {
	ImagesDir     string `mapstructure:"images_dir" yaml:"images_dir" json:"images_dir"`
	LabelsDir     string `mapstructure:"labels_dir" yaml:"labels_dir" json:"labels_dir"`
	SummaryFormat string `mapstructure:"summary_format" yaml:"summary_format" json:"summary_format"`
	SummaryFile   string `mapstructure:"summary_file" yaml:"summary_file" json:"summary_file"`
}

// RasterConfig contains page rasterization settings.
type RasterConfig struct {
	DPI         int    `mapstructure:"dpi" yaml:"dpi" json:"dpi"`
	Backend     string `mapstructure:"backend" yaml:"backend" json:"backend"`
	PopplerPath string `mapstructure:"poppler_path" yaml:"poppler_path" json:"poppler_path"`
}

// GeometryConfig contains coordinate mapping and clustering settings.
type GeometryConfig struct {
	Tolerance   int `mapstructure:"tolerance" yaml:"tolerance" json:"tolerance"`
	PadLeft     int `mapstructure:"pad_left" yaml:"pad_left" json:"pad_left"`
	PadRight    int `mapstructure:"pad_right" yaml:"pad_right" json:"pad_right"`
	PadVertical int `mapstructure:"pad_vertical" yaml:"pad_vertical" json:"pad_vertical"`
}

// DatasetConfig contains label settings.
type DatasetConfig struct {
	LabelMode string `mapstructure:"label_mode" yaml:"label_mode" json:"label_mode"`
	Normalize bool   `mapstructure:"normalize" yaml:"normalize" json:"normalize"`
}

// BatchConfig contains worker pool settings.
type BatchConfig struct {
	Workers  int  `mapstructure:"workers" yaml:"workers" json:"workers"`
	Progress bool `mapstructure:"progress" yaml:"progress" json:"progress"`
	Stats    bool `mapstructure:"stats" yaml:"stats" json:"stats"`
}

// MetricsConfig contains the optional HTTP endpoint settings. An empty
// address disables the endpoint.
type MetricsConfig struct {
	Addr            string `mapstructure:"addr" yaml:"addr" json:"addr"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// PDFConfig contains credentials for password-protected documents.
type PDFConfig struct {
	UserPassword  string `mapstructure:"user_password" yaml:"user_password" json:"user_password"`
	OwnerPassword string `mapstructure:"owner_password" yaml:"owner_password" json:"owner_password"`
}
