package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"openreview-ratings/config"
	"openreview-ratings/filter"
	"openreview-ratings/models"
	"openreview-ratings/report"
	"openreview-ratings/scheduler"
	"openreview-ratings/stats"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("openreview-ratings", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to ~/.config/openreview-ratings/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		return nil
	},
}

// --- summary command ---

var summaryInput string

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Recompute the summary from an existing ratings file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if venueName == "" {
			return fmt.Errorf("--venue_name is required")
		}

		input := summaryInput
		if input == "" {
			input = report.RatingsPath(cfg.Output.Dir, venueName)
		}

		ratings, err := report.ReadRatings(input)
		if err != nil {
			return err
		}

		summaryPath := report.SummaryPath(cfg.Output.Dir, venueName)
		return printAndSaveSummary(ratings, summaryPath)
	},
}

func printAndSaveSummary(ratings models.Ratings, summaryPath string) error {
	s := stats.Compute(ratings)
	report.PrintSummary(os.Stdout, venueName, s)
	report.PrintTopPapers(os.Stdout, filter.NewFilter(&cfg.Filters).ApplyFilters(ratings))

	if summaryPath == "" {
		return nil
	}
	if err := report.WriteSummary(summaryPath, venueName, s); err != nil {
		return err
	}
	fmt.Printf("Summary saved in %s\n", summaryPath)
	return nil
}

// --- watch command ---

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Scrape the venue now and then again on every interval until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireFlags(); err != nil {
			return err
		}

		p, cleanup := buildPipeline(cmd.Context())
		defer cleanup()

		s, err := scheduler.NewScheduler(cmd.Context(), cfg.Schedule.Interval, func(ctx context.Context) error {
			_, err := p.Run(ctx, listingURL, venueName)
			return err
		})
		if err != nil {
			return err
		}

		fmt.Printf("Watching %s every %v (Ctrl+C to stop)\n", venueName, cfg.Schedule.Interval)
		s.Start()
		s.Wait()
		return nil
	},
}

// --- history command ---

var (
	historyLimit int
	historyRunID int64
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored runs, or show the summary of one run",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		if historyRunID != 0 {
			run, err := store.GetRun(cmd.Context(), historyRunID)
			if err != nil {
				return err
			}
			ratings, err := store.GetRunRatings(cmd.Context(), historyRunID)
			if err != nil {
				return err
			}
			venueName = run.Venue
			return printAndSaveSummary(ratings, "")
		}

		runs, err := store.ListRuns(cmd.Context(), venueName, historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"ID", "Venue", "Status", "Papers", "Average", "Reviewer avg", "Started"})
		for _, r := range runs {
			avg, reviewerAvg := "-", "-"
			if r.AverageRating.Valid {
				avg = models.FormatRating(r.AverageRating.Float64)
			}
			if r.ReviewerAverage.Valid {
				reviewerAvg = models.FormatRating(r.ReviewerAverage.Float64)
			}
			t.AppendRow(table.Row{strconv.FormatInt(r.ID, 10), r.Venue, r.Status, r.PapersCount, avg, reviewerAvg, formatTimestamp(r.StartedAt)})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
		return nil
	},
}

func init() {
	summaryCmd.Flags().StringVar(&summaryInput, "input", "", "Ratings JSON file (default <output-dir>/<venue>_ratings.json)")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Time between runs (default from config, 24h)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to list")
	historyCmd.Flags().Int64Var(&historyRunID, "run", 0, "Show the summary of a stored run")
}
