package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/Houeta/staff-directory/internal/auth"
	"github.com/Houeta/staff-directory/internal/mutator"
	"github.com/spf13/cobra"
)

const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// main is the entry point of the application.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		printError(os.Stderr, err)
		stop()
		os.Exit(1) //nolint:gocritic // stop is called above
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		app        *application
	)

	root := &cobra.Command{
		Use:           "staffdir",
		Short:         "Browse the staff directory and keep your own record up to date",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if configPath == "" {
				configPath = os.Getenv("CONFIG_PATH")
			}
			var err error
			app, err = newApplication(cmd.Context(), configPath)
			return err
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if app != nil {
				app.Close()
			}
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to the YAML config (defaults to $CONFIG_PATH)")

	appRef := func() *application { return app }
	root.AddCommand(
		newLoginCmd(appRef),
		newSignupCmd(appRef),
		newLogoutCmd(appRef),
		newWhoamiCmd(appRef),
		newListCmd(appRef),
		newProfileCmd(appRef),
		newDetailsCmd(appRef),
		newHydrateCmd(appRef),
		newMonitorCmd(appRef),
	)

	return root
}

// printError renders field errors one per line.
func printError(w *os.File, err error) {
	var fields map[string]string

	var verr *mutator.ValidationError
	var ierr *auth.InputError
	switch {
	case errors.As(err, &verr):
		fields = verr.FieldErrors
	case errors.As(err, &ierr):
		fields = ierr.FieldErrors
	}

	if len(fields) == 0 {
		fmt.Fprintln(w, "Error:", err)
		return
	}

	fmt.Fprintln(w, "Please fix the following fields:")
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(w, "  %s: %s\n", key, fields[key])
	}
}

// setupLogger initializes and returns a logger based on the environment provided.
// Logs go to stderr so command output stays clean.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level:     slog.LevelInfo,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level:     slog.LevelWarn,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{Key: "", Value: slog.Value{}}
					}
					return a
				},
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level:     slog.LevelError,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{Key: "", Value: slog.Value{}}
					}
					return a
				},
			}),
		)

		log.Error(
			"The env parameter was not specified, or was invalid. Logging will be minimal, by default." +
				" Please specify the value of `env`: local, development, production")
	}

	return log
}
