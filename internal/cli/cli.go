package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rypi-dev/photos-stats/internal/audit"
	"github.com/rypi-dev/photos-stats/internal/config"
	"github.com/rypi-dev/photos-stats/internal/library"
	"github.com/rypi-dev/photos-stats/internal/logging"
	"github.com/rypi-dev/photos-stats/internal/metrics"
)

// Build variables - set by ldflags during build.
var (
	Version = "dev"
	Commit  = "unknown"
)

const (
	ExitOK                  = 0
	ExitError               = 1
	ExitDatabaseUnavailable = 2
	ExitQueryFailure        = 3
	ExitInvalidColumn       = 4
)

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, library.ErrDatabaseUnavailable):
		return ExitDatabaseUnavailable
	case errors.Is(err, library.ErrInvalidColumn):
		return ExitInvalidColumn
	case errors.Is(err, library.ErrQueryFailure):
		return ExitQueryFailure
	}
	return ExitError
}

type app struct {
	stdout io.Writer
	stderr io.Writer

	configFile string
	envFile    string

	cfg     config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
	run     *audit.Run
}

// Execute runs the command line and returns the exit status. Reports go to
// stdout, logs and errors to stderr.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}

	root := newRootCommand(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	a.finish(err)

	// L'erreur est toujours écrite, même si le niveau de log la masque
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return ExitCode(err)
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "photos-stats",
		Short: "Statistics about a Photos library",
		Long: `Read-only reports over a Photos library database (Photos.sqlite).

overview prints the number of photos, stats groups the extended attributes
(camera, lens, exposure) and export writes a JSON document meant to be
redirected to a file.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default is $HOME/.config/photos-stats/config.yml)")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flags.String("db", "", "path to Photos.sqlite (default: next to the executable)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (console or json)")
	flags.String("metrics-file", "", "write prometheus metrics to this file after the run")
	flags.String("timezone", "", "timezone of exported dates (utc or local)")

	root.AddCommand(
		newOverviewCommand(a),
		newStatsCommand(a),
		newExportCommand(a),
		newColumnsCommand(a),
		newVersionCommand(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	a.metrics = metrics.New()
	a.run = audit.Start(cmd.Name(), args)

	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: a.configFile,
		EnvFile:    a.envFile,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := logging.New(a.stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	a.logger = logger

	a.logger.Debug("configuration loaded",
		zap.String("run_id", a.run.ID),
		zap.String("db_path", cfg.DBPath),
		zap.String("timezone", cfg.Timezone),
		zap.String("metrics_file", cfg.MetricsFile),
	)
	return nil
}

// openLibrary ouvre la base au premier usage d'une commande
func (a *app) openLibrary(ctx context.Context) (*library.Library, error) {
	return library.Open(ctx, a.cfg.DBPath, library.Options{
		LocalTime: a.cfg.LocalTime(),
		Recorder:  a.metrics,
		Logger:    a.logger,
	})
}

func (a *app) finish(err error) {
	if a.run == nil {
		return
	}

	audit.Event(a.logger, a.metrics, a.run, err, zap.String("db_path", a.cfg.DBPath))

	if a.cfg.MetricsFile == "" {
		return
	}
	if werr := a.metrics.WriteTextfile(a.cfg.MetricsFile); werr != nil && a.logger != nil {
		a.logger.Warn("failed to write metrics file", zap.String("path", a.cfg.MetricsFile), zap.Error(werr))
	}
}
