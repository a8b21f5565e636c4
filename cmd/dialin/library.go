package main

import (
	"context"
	"fmt"
	"slices"
	"text/tabwriter"

	"dialin/internal/dialin"
	"dialin/internal/models"

	"github.com/spf13/cobra"
)

func newRecipesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipes",
		Short: "List saved recipes, pinned first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *dialin.App) error {
				recipes := app.Recipes()
				if opts.json {
					return writeJSON(cmd.OutOrStdout(), recipes)
				}
				if len(recipes) == 0 {
					printf(cmd.OutOrStdout(), "No recipes\n")
					return nil
				}

				pinned := app.Pinned()
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tBEAN\tTYPE\tGRIND\t")
				for _, r := range recipes {
					pin := ""
					if slices.Contains(pinned, r.ID) {
						pin = "^"
					}
					fmt.Fprintf(w, "%s%s\t%s\t%s\t%s\t%d\t\n", pin, r.ID, r.Name, r.BeanName, r.BrewType, r.GrindSize)
				}
				return w.Flush()
			})
		},
	}

	var name string
	save := &cobra.Command{
		Use:   "save <shot-id>",
		Short: "Save a shot's settings as a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *dialin.App) error {
				shot, err := app.Shot(args[0])
				if err != nil {
					return err
				}
				form := models.ShotRequestFrom(shot)
				recipe, err := app.SaveRecipe(ctx, &models.RecipeRequest{Name: name, BrewSettings: form.BrewSettings})
				if err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Saved recipe %s (%s)\n", recipe.ID, recipe.Name)
				return nil
			})
		},
	}
	save.Flags().StringVar(&name, "name", "", "recipe name (required)")
	_ = save.MarkFlagRequired("name")

	pin := &cobra.Command{
		Use:   "pin <recipe-id>",
		Short: "Pin or unpin a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *dialin.App) error {
				pinned, err := app.TogglePin(ctx, args[0])
				if err != nil {
					return err
				}
				if pinned {
					printf(cmd.OutOrStdout(), "Pinned %s\n", args[0])
				} else {
					printf(cmd.OutOrStdout(), "Unpinned %s\n", args[0])
				}
				return nil
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <recipe-id>",
		Short: "Delete a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *dialin.App) error {
				if err := app.DeleteRecipe(ctx, args[0]); err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}

	cmd.AddCommand(save, pin, del)
	return cmd
}

func newBeansCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "beans",
		Short: "List bean profiles with roast freshness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *dialin.App) error {
				beans := app.Beans()
				if opts.json {
					return writeJSON(cmd.OutOrStdout(), beans)
				}
				if len(beans) == 0 {
					printf(cmd.OutOrStdout(), "No beans\n")
					return nil
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tROASTER\tROASTED\tFRESHNESS\tACTIVE\t")
				for _, b := range beans {
					roasted := "-"
					if b.DaysSinceRoast != nil {
						roasted = fmt.Sprintf("%dd ago", *b.DaysSinceRoast)
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%t\t\n", b.ID, b.Name, b.Roaster, roasted, b.Freshness.Label, b.IsActive)
				}
				return w.Flush()
			})
		},
	}

	var req models.BeanProfileRequest
	var roastLevel, process, roastDate string
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a bean profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if roastLevel != "" {
				lvl, err := parseChoice("roast level", roastLevel, models.RoastLevels)
				if err != nil {
					return err
				}
				req.RoastLevel = &lvl
			}
			if process != "" {
				p, err := parseChoice("process", process, models.ProcessMethods)
				if err != nil {
					return err
				}
				req.ProcessMethod = &p
			}
			if roastDate != "" {
				req.RoastDate = &roastDate
			}

			return opts.withApp(cmd, func(ctx context.Context, app *dialin.App) error {
				bean, err := app.AddBean(ctx, &req)
				if err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Added %s (%s)\n", bean.ID, bean.Name)
				return nil
			})
		},
	}
	f := add.Flags()
	f.StringVar(&req.Name, "name", "", "bean name (required)")
	f.StringVar(&req.Roaster, "roaster", "", "roaster")
	f.StringVar(&req.Origin, "origin", "", "origin")
	f.StringVar(&req.FlavorNotes, "notes", "", "flavor notes")
	f.StringVar(&roastLevel, "roast-level", "", "light, medium, medium-dark or dark")
	f.StringVar(&process, "process", "", "washed, natural, honey, anaerobic or other")
	f.StringVar(&roastDate, "roast-date", "", "roast date, YYYY-MM-DD")
	_ = add.MarkFlagRequired("name")

	toggle := &cobra.Command{
		Use:   "toggle <bean-id>",
		Short: "Move a bean in or out of rotation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *dialin.App) error {
				active, err := app.ToggleBeanActive(ctx, args[0])
				if err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "%s active: %t\n", args[0], active)
				return nil
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <bean-id>",
		Short: "Delete a bean profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *dialin.App) error {
				if err := app.DeleteBean(ctx, args[0]); err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}

	cmd.AddCommand(add, toggle, del)
	return cmd
}
