package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tranvm/dictd/internal/config"
	"github.com/tranvm/dictd/internal/database"
	"github.com/tranvm/dictd/internal/dictionary"
	"github.com/tranvm/dictd/internal/directory"
)

type LogFormat string

func (f *LogFormat) Set(val string) error {
	for _, format := range allLogFormats {
		if val == string(format) {
			*f = format
			return nil
		}
	}
	return fmt.Errorf("invalid log format: %s", val)
}

func (f LogFormat) String() string {
	return string(f)
}

func (f *LogFormat) Type() string {
	return "LogFormat"
}

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

var (
	_             pflag.Value = (*LogFormat)(nil)
	allLogFormats             = []LogFormat{LogFormatText, LogFormatJSON}
)

var configFile string

func main() {
	var debugMode bool
	logFormat := LogFormatText
	rootCommand := cobra.Command{
		Use:           "dictd",
		Short:         "Networked dictionary server with moderated edits",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogger(debugMode, logFormat)
			return nil
		},
	}
	rootCommand.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCommand.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode")
	rootCommand.PersistentFlags().Var(&logFormat, "log-format", fmt.Sprintf("Log format. Possible values are %v", allLogFormats))

	rootCommand.AddCommand(
		newServeCommand(),
		newExportCommand(),
	)
	if err := rootCommand.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogger configures the default logger based on debug mode
func setupLogger(debugMode bool, format LogFormat) {
	logLevel := slog.LevelInfo
	if debugMode {
		logLevel = slog.LevelDebug
	}

	options := &slog.HandlerOptions{
		Level: logLevel,
	}
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, options)
	if format == LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stdout, options)
	}
	slog.SetDefault(slog.New(handler))
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader: %w", err)
	}
	return loader.Load()
}

// newSnapshotter selects the persistence backend from config.
func newSnapshotter(cfg *config.Config) (dictionary.Snapshotter, error) {
	switch cfg.Storage.Driver {
	case "mysql":
		db, err := database.Open(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("database.Open: %w", err)
		}
		return dictionary.NewDBSnapshotter(db), nil
	default:
		return dictionary.NewFileSnapshotter(cfg.Storage.DictionaryFile, cfg.Storage.PendingFile), nil
	}
}

// newDirectory loads the user directory, falling back to the built-in
// accounts when no users file is configured.
func newDirectory(cfg *config.Config) (*directory.Directory, error) {
	if cfg.Directory.UsersFile == "" {
		return directory.Builtin(), nil
	}
	return directory.LoadFile(cfg.Directory.UsersFile)
}
