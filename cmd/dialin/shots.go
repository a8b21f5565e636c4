package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"dialin/internal/dialin"
	"dialin/internal/models"

	"github.com/spf13/cobra"
)

func newLogCmd(opts *rootOptions) *cobra.Command {
	defaults := models.DefaultBrewSettings()
	var (
		bean, brewType, basket, temp, rating, notes, milk string
		grind, strength                                    int
		extraction                                         float64
	)

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Log a shot",
		Long: `Log a shot and print the barista tip for it.

Examples:
  dialin log --bean "Kenya AA" --grind 12 --rating sour
  dialin log --bean Brazil --brew-type "over ice" --milk plant:"cold foam" --rating balanced`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &models.CreateShotRequest{BrewSettings: defaults}
			req.BeanName = bean
			req.GrindSize = grind
			req.Strength = models.Strength(strength)
			req.Notes = notes

			var err error
			if req.Rating, err = parseChoice("rating", rating, models.Ratings); err != nil {
				return err
			}
			if req.BrewType, err = parseChoice("brew type", brewType, models.BrewTypes); err != nil {
				return err
			}
			if req.Basket, err = parseChoice("basket", basket, models.Baskets); err != nil {
				return err
			}
			t, err := parseChoice("temperature", temp, models.Temperatures)
			if err != nil {
				return err
			}
			req.Temperature = &t
			if milk != "" {
				if req.Milk, err = parseMilk(milk); err != nil {
					return err
				}
			}
			if extraction > 0 {
				req.ExtractionTime = &extraction
			}

			return opts.withApp(cmd, func(ctx context.Context, app *dialin.App) error {
				shot, err := app.LogShot(ctx, req)
				if err != nil {
					return err
				}
				insight, err := app.Insight(shot.BeanName)
				if err != nil {
					return err
				}
				if opts.json {
					return writeJSON(cmd.OutOrStdout(), insight)
				}
				out := cmd.OutOrStdout()
				printf(out, "Logged %s: %s, grind %d, %s\n", shot.ID, shot.BeanName, shot.GrindSize, shot.Rating)
				printInsight(cmd, insight)
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&bean, "bean", "", "bean name (required)")
	f.StringVar(&brewType, "brew-type", string(defaults.BrewType), "brew type")
	f.StringVar(&basket, "basket", string(defaults.Basket), "basket: double or luxe")
	f.IntVar(&grind, "grind", defaults.GrindSize, "grind size, 1 (fine) to 25 (coarse)")
	f.StringVar(&temp, "temp", string(*defaults.Temperature), "temperature: low, med or high")
	f.IntVar(&strength, "strength", int(defaults.Strength), "strength, 1 to 3")
	f.StringVar(&rating, "rating", "", "rating (required)")
	f.StringVar(&notes, "notes", "", "tasting notes")
	f.StringVar(&milk, "milk", "", "milk as type:style, e.g. dairy:thin")
	f.Float64Var(&extraction, "time", 0, "extraction time in seconds")
	_ = cmd.MarkFlagRequired("bean")
	_ = cmd.MarkFlagRequired("rating")

	return cmd
}

func parseMilk(v string) (*models.MilkSettings, error) {
	typ, style, ok := strings.Cut(v, ":")
	if !ok {
		return nil, fmt.Errorf("invalid milk %q (want type:style)", v)
	}
	mt, err := parseChoice("milk type", typ, models.MilkTypes)
	if err != nil {
		return nil, err
	}
	ms, err := parseChoice("milk style", style, models.MilkStyles)
	if err != nil {
		return nil, err
	}
	return &models.MilkSettings{Type: mt, Style: ms}, nil
}

func printInsight(cmd *cobra.Command, insight *dialin.Insight) {
	out := cmd.OutOrStdout()
	if insight == nil {
		printf(out, "No shots for this bean yet\n")
		return
	}
	printf(out, "Last shot: grind %d, %s (%s)\n",
		insight.Shot.GrindSize, insight.Shot.Rating, insight.Shot.Timestamp.Local().Format("Jan 2 15:04"))
	if insight.IsFavorite {
		printf(out, "This is your favorite for %s\n", insight.Shot.BeanName)
	}
	printf(out, "Tip: %s\n", insight.Tip.Message)
	if s := insight.Suggestion; s != nil {
		printf(out, "Next: grind %d %s", s.GrindSize, s.DeltaLabel())
		if s.Temperature != nil {
			printf(out, ", temperature %s", *s.Temperature)
			if s.TemperatureChanged {
				printf(out, " (changed)")
			}
		}
		printf(out, "\n")
	}
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var rating string

	cmd := &cobra.Command{
		Use:   "history [query]",
		Short: "List shots, favorites first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var query string
			if len(args) == 1 {
				query = args[0]
			}
			var filter *models.Rating
			if rating != "" {
				r, err := parseChoice("rating", rating, models.Ratings)
				if err != nil {
					return err
				}
				filter = &r
			}

			return opts.withApp(cmd, func(ctx context.Context, app *dialin.App) error {
				shots := app.Search(query, filter)
				if opts.json {
					return writeJSON(cmd.OutOrStdout(), shots)
				}
				if len(shots) == 0 {
					printf(cmd.OutOrStdout(), "No shots\n")
					return nil
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tDATE\tBEAN\tTYPE\tGRIND\tRATING\t")
				for _, s := range shots {
					star := ""
					if app.IsFavorite(s.ID) {
						star = "*"
					}
					fmt.Fprintf(w, "%s%s\t%s\t%s\t%s\t%d\t%s\t\n",
						star, s.ID, s.Timestamp.Local().Format("2006-01-02 15:04"), s.BeanName, s.BrewType, s.GrindSize, s.Rating)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&rating, "rating", "", "only shots with this rating")
	return cmd
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <shot-id>",
		Short: "Delete a shot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *dialin.App) error {
				if err := app.DeleteShot(ctx, args[0]); err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func newFavoriteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "favorite <shot-id>",
		Short: "Star or unstar a shot as the favorite for its bean",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *dialin.App) error {
				fav, err := app.ToggleFavorite(ctx, args[0])
				if err != nil {
					return err
				}
				if fav {
					printf(cmd.OutOrStdout(), "Starred %s\n", args[0])
				} else {
					printf(cmd.OutOrStdout(), "Unstarred %s\n", args[0])
				}
				return nil
			})
		},
	}
}

func newInsightCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "insight <bean>",
		Short: "Show the tip and next settings for a bean",
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			beans, err := completeBeans(cmd, opts, toComplete)
			if err != nil {
				return nil, cobra.ShellCompDirectiveError
			}
			return beans, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *dialin.App) error {
				insight, err := app.Insight(args[0])
				if err != nil {
					return err
				}
				if opts.json {
					return writeJSON(cmd.OutOrStdout(), insight)
				}
				printInsight(cmd, insight)
				return nil
			})
		},
	}
}

// completeBeans lists logged bean names starting with prefix, ignoring case.
func completeBeans(cmd *cobra.Command, opts *rootOptions, prefix string) ([]string, error) {
	var beans []string
	err := opts.withApp(cmd, func(ctx context.Context, app *dialin.App) error {
		for _, b := range app.ShotBeans() {
			if strings.HasPrefix(strings.ToLower(b), strings.ToLower(prefix)) {
				beans = append(beans, b)
			}
		}
		return nil
	})
	return beans, err
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *dialin.App) error {
				stats := app.Stats()
				if opts.json {
					return writeJSON(cmd.OutOrStdout(), stats)
				}

				out := cmd.OutOrStdout()
				printf(out, "Total shots:    %d\n", stats.TotalShots)
				printf(out, "This week:      %d\n", stats.ShotsThisWeek)
				printf(out, "Balanced rate:  %d%%\n", stats.BalancedRate)
				if stats.AvgBalancedGrind != nil {
					printf(out, "Balanced grind: %.1f\n", *stats.AvgBalancedGrind)
				}
				printf(out, "\nRatings:\n")
				for _, r := range models.Ratings {
					printf(out, "  %-12s %d\n", r, stats.RatingCounts[r])
				}
				if len(stats.TopBeans) > 0 {
					printf(out, "\nTop beans:\n")
					for _, b := range stats.TopBeans {
						printf(out, "  %-24s %d\n", b.Name, b.Count)
					}
				}
				printf(out, "\nLast 7 days:\n")
				for _, d := range stats.Trend {
					printf(out, "  %s %s %d/%d\n", d.Label, strings.Repeat("#", d.Total), d.Balanced, d.Total)
				}
				return nil
			})
		},
	}
}

func newCaffeineCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "caffeine",
		Short: "Estimate caffeine intake",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *dialin.App) error {
				c := app.Caffeine()
				if opts.json {
					return writeJSON(cmd.OutOrStdout(), c)
				}
				out := cmd.OutOrStdout()
				printf(out, "Today:       %d mg (%d shots)\n", c.TodayMG, c.TodayShots)
				printf(out, "Last 7 days: %d mg\n", c.WeekTotalMG)
				printf(out, "Daily avg:   %.0f mg\n", c.DailyAverage)
				return nil
			})
		},
	}
}
