// Package main implements the dialin CLI, which reads and writes the same
// storage file as the server.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"dialin/internal/config"
	"dialin/internal/database"
	"dialin/internal/dialin"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// rootOptions are the flags shared by every command.
type rootOptions struct {
	dbPath  string
	storage string
	json    bool
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "dialin",
		Short: "Espresso calibration log",
		Long: `dialin records espresso shots and suggests the grind and temperature
for the next one. It works on the same database file as the dialin server.

Examples:
  # Log a sour shot
  dialin log --bean "Kenya AA" --grind 12 --rating sour

  # See what to change next
  dialin insight "Kenya AA"

  # Back up everything
  dialin export backup espresso.json`,
		Version:       version,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.WarnLevel
			if opts.verbose {
				level = zerolog.DebugLevel
			}
			log.Logger = zerolog.New(zerolog.ConsoleWriter{
				Out:        cmd.ErrOrStderr(),
				TimeFormat: time.RFC3339,
			}).Level(level).With().Timestamp().Logger()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", config.DefaultDBPath(), "database file")
	cmd.PersistentFlags().StringVar(&opts.storage, "storage", config.StorageBolt, "storage backend: bolt, sqlite or memory")
	cmd.PersistentFlags().BoolVar(&opts.json, "json", false, "output results as JSON")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(newLogCmd(opts))
	cmd.AddCommand(newHistoryCmd(opts))
	cmd.AddCommand(newDeleteCmd(opts))
	cmd.AddCommand(newFavoriteCmd(opts))
	cmd.AddCommand(newInsightCmd(opts))
	cmd.AddCommand(newStatsCmd(opts))
	cmd.AddCommand(newCaffeineCmd(opts))
	cmd.AddCommand(newRecipesCmd(opts))
	cmd.AddCommand(newBeansCmd(opts))
	cmd.AddCommand(newExportCmd(opts))
	cmd.AddCommand(newImportCmd(opts))

	return cmd
}

// withApp opens the store, loads the log, runs fn and closes the store.
func (o *rootOptions) withApp(cmd *cobra.Command, fn func(ctx context.Context, app *dialin.App) error) error {
	store, err := config.OpenStore(o.storage, o.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", o.dbPath, err)
	}
	defer store.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	app := dialin.New(database.NewCollections(store))
	if err := app.Load(ctx); err != nil {
		return err
	}
	return fn(ctx, app)
}

// parseChoice matches value against choices ignoring case.
func parseChoice[T ~string](name, value string, choices []T) (T, error) {
	for _, c := range choices {
		if strings.EqualFold(string(c), value) {
			return c, nil
		}
	}
	names := make([]string, len(choices))
	for i, c := range choices {
		names[i] = string(c)
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q (want one of: %s)", name, value, strings.Join(names, ", "))
}

func printf(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}
