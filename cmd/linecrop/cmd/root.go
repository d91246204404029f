package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/MeKo-Tech/linecrop/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries the state shared by one invocation of the command tree.
type app struct {
	v       *viper.Viper
	cfgFile string
	loader  *config.Loader
	cfg     *config.Config
}

// NewRootCommand builds the command tree with its own configuration state.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "linecrop",
		Short: "Build line-level image/label datasets from text-bearing PDFs",
		Long: `linecrop turns documents with an embedded text layer into a supervised dataset
for text-line recognition: one cropped line image and one UTF-8 label per line.

For every page it rasterizes the page, reads the position of every glyph from
the text layer, clusters glyphs into lines by horizontal center, and writes
{stem}_page{P}_line{L}.png and .txt pairs.

Examples:
  linecrop run data/PDF
  linecrop run docs/ --recursive --workers 4 --format json --output summary.json
  linecrop document report.pdf --dpi 300
  linecrop config init`,
		SilenceUsage:      true,
		PersistentPreRunE: a.initialize,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is search in ., $HOME, $XDG_CONFIG_HOME/linecrop, /etc/linecrop)")
	flags.BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("images-dir", "data/images", "directory for line images")
	flags.String("labels-dir", "data/labels", "directory for line labels")
	flags.Int("dpi", 150, "page raster resolution")
	flags.String("backend", "auto", "rasterizer backend (auto, poppler, embedded)")
	flags.String("poppler-path", "", "path to the pdftoppm binary")
	flags.Int("tolerance", 20, "line clustering tolerance in pixels")
	flags.String("label-mode", "rescan", "label derivation (rescan, members)")
	flags.String("password", "", "user password for encrypted PDFs")
	flags.String("owner-password", "", "owner password for encrypted PDFs")

	for key, flag := range map[string]string{
		"verbose":             "verbose",
		"log_level":           "log-level",
		"output.images_dir":   "images-dir",
		"output.labels_dir":   "labels-dir",
		"raster.dpi":          "dpi",
		"raster.backend":      "backend",
		"raster.poppler_path": "poppler-path",
		"geometry.tolerance":  "tolerance",
		"dataset.label_mode":  "label-mode",
		"pdf.user_password":   "password",
		"pdf.owner_password":  "owner-password",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(
		newRunCommand(a),
		newDocumentCommand(a),
		newConfigCommand(a),
		newVersionCommand(),
	)
	return rootCmd
}

// Execute runs the command tree. This is called by main.main().
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// initialize loads and validates the configuration and sets up logging.
func (a *app) initialize(cmd *cobra.Command, _ []string) error {
	if err := a.load(true); err != nil {
		return err
	}
	setupLogging(cmd.ErrOrStderr(), a.cfg)
	return nil
}

func (a *app) load(validate bool) error {
	a.loader = config.NewLoaderWithViper(a.v)

	var err error
	if validate {
		a.cfg, err = a.loader.LoadWithFile(a.cfgFile)
	} else {
		a.cfg, err = a.loader.LoadWithFileWithoutValidation(a.cfgFile)
	}
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	return nil
}

// setupLogging installs a JSON slog handler. Logs go to stderr so stdout
// only carries command output.
func setupLogging(w io.Writer, cfg *config.Config) {
	var logLevel slog.Level
	if cfg.Verbose {
		logLevel = slog.LevelDebug
	} else {
		switch cfg.LogLevel {
		case "debug":
			logLevel = slog.LevelDebug
		case "warn":
			logLevel = slog.LevelWarn
		case "error":
			logLevel = slog.LevelError
		default:
			logLevel = slog.LevelInfo
		}
	}

	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
}
