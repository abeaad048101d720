// Package cmd defines the filmcast command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/filmcast/internal/app"
	"github.com/JakeFAU/filmcast/internal/config"
	"github.com/JakeFAU/filmcast/internal/harvest"
	"github.com/JakeFAU/filmcast/internal/logging"
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitError   = 1
	ExitPartial = 2
)

const shutdownTimeout = 5 * time.Second

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// newApp is the application factory. Tests replace it to inject fakes.
var newApp = func(cfg config.Config, logger *zap.Logger) (*app.App, error) {
	return app.New(cfg, logger)
}

// cli holds the state shared by the hooks of one invocation.
type cli struct {
	cfgFile string
	app     *app.App
}

func newRootCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filmcast",
		Short: "Harvest films and their casts from Wikipedia.",
		Long: `filmcast walks Wikipedia's per-year film categories, extracts each
film's cast list and writes two JSON artifacts: a year-indexed movie dataset
and an actor -> {title: year} lookup index.`,
		SilenceUsage:  true,
		SilenceErrors: true,

		// Runs for every subcommand once its flags are parsed.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(c.cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			logger, err := logging.New(logging.Options{
				Development: cfg.Logging.Development,
				Level:       cfg.Logging.Level,
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			zap.ReplaceGlobals(logger)

			appInstance, err := newApp(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			c.app = appInstance
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},

		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return c.close()
		},
	}

	cmd.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (yaml, json or toml)")
	cmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	cmd.AddCommand(newHarvestCmd())
	cmd.AddCommand(newIndexCmd())
	return cmd
}

// close shuts the App down at most once.
func (c *cli) close() error {
	if c.app == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := c.app.Close(ctx)
	c.app = nil
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return execute(ctx, os.Args[1:], os.Stderr)
}

func execute(ctx context.Context, args []string, stderr io.Writer) int {
	c := &cli{}
	root := newRootCmd(c)
	root.SetArgs(args)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	// PersistentPostRunE is skipped when RunE fails.
	if cerr := c.close(); cerr != nil && err == nil {
		err = cerr
	}
	_ = zap.L().Sync()

	code := exitCode(err)
	if code == ExitError {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return code
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, harvest.ErrPartial):
		return ExitPartial
	default:
		return ExitError
	}
}

func resolveApp(ctx context.Context) (*app.App, error) {
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}
