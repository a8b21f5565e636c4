package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"dialin/internal/dialin"
	"dialin/internal/export"

	"github.com/spf13/cobra"
)

// createOutput opens path for writing, or stdout for "-".
func createOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, f.Close, nil
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the log",
	}

	backup := &cobra.Command{
		Use:   "backup [file]",
		Short: "Write a full JSON backup",
		Long: `Write a full JSON backup of shots, favorites, recipes and beans.
The file defaults to espresso-backup-YYYY-MM-DD.json; use - for stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := export.BackupFilename(time.Now())
			if len(args) == 1 {
				path = args[0]
			}
			return opts.withApp(cmd, func(ctx context.Context, app *dialin.App) error {
				data, err := app.ExportBackup().Encode()
				if err != nil {
					return err
				}
				w, closeFn, err := createOutput(cmd, path)
				if err != nil {
					return err
				}
				if _, err := w.Write(data); err != nil {
					closeFn()
					return err
				}
				if err := closeFn(); err != nil {
					return err
				}
				if path != "-" {
					printf(cmd.ErrOrStderr(), "Wrote %s\n", path)
				}
				return nil
			})
		},
	}

	csvCmd := &cobra.Command{
		Use:   "csv [file]",
		Short: "Write the shot log as CSV",
		Long: `Write the shot log as CSV.
The file defaults to espresso-shots-YYYY-MM-DD.csv; use - for stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := export.CSVFilename(time.Now())
			if len(args) == 1 {
				path = args[0]
			}
			return opts.withApp(cmd, func(ctx context.Context, app *dialin.App) error {
				w, closeFn, err := createOutput(cmd, path)
				if err != nil {
					return err
				}
				if err := app.ExportCSV(w); err != nil {
					closeFn()
					return err
				}
				if err := closeFn(); err != nil {
					return err
				}
				if path != "-" {
					printf(cmd.ErrOrStderr(), "Wrote %s\n", path)
				}
				return nil
			})
		},
	}

	cmd.AddCommand(backup, csvCmd)
	return cmd
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the log with a backup file",
		Long: `Replace the log with a backup file written by "dialin export backup"
or the web client. Collections absent from the file are left alone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			return opts.withApp(cmd, func(ctx context.Context, app *dialin.App) error {
				b, err := app.ImportBackup(ctx, data)
				if err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Imported %d shots, %d favorites, %d recipes, %d beans\n",
					len(b.Shots), len(b.Favorites), len(b.Recipes), len(b.Beans))
				return nil
			})
		},
	}
}
