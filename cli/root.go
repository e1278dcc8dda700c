// Package cli wires the pmnps commands to cobra.
package cli

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/pmnps/action"
	"github.com/kbukum/pmnps/config"
	"github.com/kbukum/pmnps/errors"
	"github.com/kbukum/pmnps/logger"
	"github.com/kbukum/pmnps/observability"
	"github.com/kbukum/pmnps/output"
	"github.com/kbukum/pmnps/version"
)

type globalFlags struct {
	root     string
	logLevel string
	noColor  bool
}

// app holds state shared by the commands of one invocation.
type app struct {
	flags    globalFlags
	printer  *output.Printer
	shutdown func(context.Context) error
}

// setupTelemetry installs the telemetry providers for one invocation.
var setupTelemetry = observability.Setup

// NewRootCommand builds the pmnps command tree printing to printer.
func NewRootCommand(printer *output.Printer) *cobra.Command {
	root, _ := newRoot(printer)
	return root
}

func newRoot(printer *output.Printer) (*cobra.Command, *app) {
	a := &app{printer: printer}

	root := &cobra.Command{
		Use:           "pmnps",
		Short:         "Build, install, start and publish members of a JavaScript monorepo",
		Version:       version.GetFullVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if a.flags.noColor {
				output.DisableColor()
			}
		},
	}
	root.SetOut(printer.Out())
	root.SetErr(printer.Err())

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.root, "root", "", "workspace root (default: nearest directory holding "+config.FileName+")")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	pf.BoolVar(&a.flags.noColor, "no-color", false, "disable coloured output")

	root.AddCommand(
		newBuildCommand(a),
		newInstallCommand(a),
		newPublishCommand(a),
		newStartCommand(a),
		newPlanCommand(a),
		newConfigCommand(a),
		newVersionCommand(a),
	)
	return root, a
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string, printer *output.Printer) int {
	cmd, a := newRoot(printer)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	a.close(ctx)
	if err == nil {
		return 0
	}

	if appErr, ok := errors.AsAppError(err); ok {
		printer.Error("%s", appErr.Message)
		if appErr.Cause != nil {
			logger.Debug("error cause", logger.Fields(logger.FieldError, appErr.Cause.Error(), "code", string(appErr.Code)))
		}
	} else {
		// cobra usage errors: unknown flags, bad arguments.
		printer.Error("%s", err.Error())
		return errors.ExitCodeFor(errors.ErrCodeInvalidInput)
	}
	return errors.ExitCode(err)
}

// close flushes telemetry. It runs after failed commands too, and outlives
// an interrupted ctx so the final spans still get exported.
func (a *app) close(ctx context.Context) {
	if a.shutdown == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := a.shutdown(ctx); err != nil {
		logger.Warn("telemetry flush failed", logger.Fields(logger.FieldError, err.Error()))
	}
	a.shutdown = nil
}

// resolveRoot returns --root, or the nearest parent holding the config file.
func (a *app) resolveRoot() (string, error) {
	if a.flags.root != "" {
		return filepath.Abs(a.flags.root)
	}
	resolver := &config.Resolver{FileSystem: &config.RealFileSystem{}}
	if root, ok := resolver.FindRoot(""); ok {
		return root, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", errors.Internal(err)
	}
	return "", errors.ConfigNotFound(filepath.Join(wd, config.FileName))
}

// store opens the config store of the workspace.
func (a *app) store() (*config.Store, error) {
	root, err := a.resolveRoot()
	if err != nil {
		return nil, err
	}
	return config.NewStore(root), nil
}

// env loads the workspace config, sets up logging and telemetry and
// returns the action environment.
func (a *app) env(ctx context.Context) (*action.Env, error) {
	store, err := a.store()
	if err != nil {
		return nil, err
	}
	cfg, err := store.Load()
	if err != nil {
		return nil, err
	}

	if a.flags.logLevel != "" {
		cfg.Logging.Level = a.flags.logLevel
		if err := cfg.Logging.Validate(); err != nil {
			return nil, errors.InvalidInput("log-level", err.Error())
		}
	}
	if a.flags.noColor {
		cfg.Logging.NoColor = true
	}
	logger.Init(&cfg.Logging)
	logger.Reset()
	logger.RegisterDefaults("action", "config", "dag", "scheduler", "workspace")

	shutdown, err := setupTelemetry(ctx, observability.Settings{
		Endpoint:   cfg.Telemetry.Endpoint,
		Insecure:   cfg.Telemetry.Insecure,
		SampleRate: cfg.Telemetry.SampleRate,
		Version:    version.GetShortVersion(),
	})
	if err != nil {
		logger.Warn("telemetry disabled", logger.Fields(logger.FieldError, err.Error()))
	} else {
		a.shutdown = shutdown
	}

	return action.NewEnv(store.Root(), cfg, a.printer), nil
}
