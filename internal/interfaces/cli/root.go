// Package cli implements the minorchanges command line: batch runs over
// SMILES files, the HTTP service, the Kafka worker and library management.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/minorchanges/internal/config"
	"github.com/turtacn/minorchanges/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/minorchanges/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath string
	EnvFiles   []string
	LogLevel   string
	LogFormat  string
	Verbose    bool
}

// CLIContext carries the loaded configuration and logger through the
// command tree.
type CLIContext struct {
	Config *config.Config
	Logger logging.Logger
	// ConfigPath is the file the configuration was read from, empty when
	// it came from the environment only.
	ConfigPath string
	// LevelPinned is set when --log-level or --verbose overrides the
	// configured log level.
	LevelPinned bool
}

// NewRootCommand creates the root command with its global flags and every
// subcommand.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "minorchanges",
		Short: "Generate close structural variants of molecules",
		Long: "minorchanges applies small structural transformations (atom swaps, CH2\n" +
			"insertion and removal, bond order changes, fragment and reaction edits)\n" +
			"to every molecule of a SMILES file and writes the distinct variants.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return persistentPreRun(cmd, opts)
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if cc, err := GetCLIContext(cmd); err == nil {
				_ = cc.Logger.Sync()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./minorchanges.yaml when present)")
	pf.StringSliceVar(&opts.EnvFiles, "env-file", []string{".env"}, "dotenv files loaded before configuration")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error); overrides config")
	pf.StringVar(&opts.LogFormat, "log-format", "", "log format (json, console); overrides config")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "shorthand for --log-level=debug")

	cmd.AddCommand(
		NewRunCmd(),
		NewServeCmd(),
		NewWorkerCmd(),
		NewRulesCmd(),
		NewLibrariesCmd(),
		NewMigrateCmd(),
		NewVersionCmd(),
	)
	return cmd
}

// persistentPreRun loads configuration and builds the logger.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	if err := config.LoadDotEnv(opts.EnvFiles...); err != nil {
		return err
	}
	cfg, path, err := initConfig(opts)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}
	logger, err := initLogger(cfg, opts)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cc := &CLIContext{
		Config:      cfg,
		Logger:      logger,
		ConfigPath:  path,
		LevelPinned: opts.LogLevel != "" || opts.Verbose,
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cc))
	return nil
}

// initConfig loads the explicit config file, else the first file found on
// the search path, else environment and defaults only.
// It also returns the path of the file that was read.
func initConfig(opts *RootOptions) (*config.Config, string, error) {
	path := opts.ConfigPath
	if path == "" {
		for _, p := range configSearchPaths() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}
	if path == "" {
		cfg, err := config.LoadFromEnv()
		return cfg, "", err
	}
	cfg, err := config.Load(path)
	return cfg, path, err
}

func configSearchPaths() []string {
	paths := []string{"./minorchanges.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".minorchanges", "config.yaml"))
	}
	return append(paths, "/etc/minorchanges/config.yaml")
}

// initLogger builds the logger from config with flag overrides.  Logs go to
// stderr so that variants on stdout stay machine-readable.
func initLogger(cfg *config.Config, opts *RootOptions) (logging.Logger, error) {
	logCfg := cfg.Log
	if opts.LogLevel != "" {
		logCfg.Level = strings.ToLower(opts.LogLevel)
	}
	if opts.Verbose {
		logCfg.Level = logging.LevelDebug
	}
	if opts.LogFormat != "" {
		logCfg.Format = opts.LogFormat
	}
	logCfg.OutputPaths = []string{"stderr"}
	logCfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Log = logCfg
	return logging.NewLogger(logCfg)
}

// GetCLIContext extracts the CLIContext set by the root command.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.New(errors.ErrCodeValidation, "command context is nil")
	}
	cc, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cc == nil {
		return nil, errors.New(errors.ErrCodeValidation, "CLI context not initialised")
	}
	return cc, nil
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

// printJSON writes data as indented JSON to stdout.
func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// PrintError writes a formatted error message to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
}

// FormatTable renders headers and rows as an aligned text table.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if len(row[i]) > widths[i] {
				widths[i] = len(row[i])
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i := range headers {
			if i > 0 {
				sb.WriteString("  ")
			}
			val := ""
			if i < len(cells) {
				val = cells[i]
			}
			sb.WriteString(padRight(val, widths[i]))
		}
		sb.WriteString("\n")
	}

	writeRow(headers)
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	writeRow(sep)
	for _, row := range rows {
		writeRow(row)
	}
	return sb.String()
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

//Personal.AI order the ending
