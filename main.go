package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"openreview-ratings/config"
	"openreview-ratings/db"
	"openreview-ratings/notify"
	"openreview-ratings/pipeline"
	"openreview-ratings/report"
	"openreview-ratings/sheets"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	verbose     bool
	configPath  string
	listingURL  string
	venueName   string
	outputDir   string
	engine      string
	showBrowser bool
	cfg         *config.Config
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "openreview-ratings",
	Short: "Collect preliminary reviewer ratings for an OpenReview venue",
	Long: "openreview-ratings walks the paginated paper listing of an OpenReview venue, " +
		"reads the preliminary rating of every review and writes per-paper ratings and a venue summary.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		if err := godotenv.Load(); err == nil {
			log.Println("Loaded environment from .env")
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.LoadConfig(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if path != "" {
			log.Printf("Using config %s\n", path)
		}

		return applyFlagOverrides(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireFlags(); err != nil {
			return err
		}

		p, cleanup := buildPipeline(cmd.Context())
		defer cleanup()

		_, err := p.Run(cmd.Context(), listingURL, venueName)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&listingURL, "openreview_main_url", "", "OpenReview venue listing URL")
	rootCmd.PersistentFlags().StringVar(&venueName, "venue_name", "", "Venue name used for the output files")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for the ratings and summary files")
	rootCmd.PersistentFlags().StringVar(&engine, "engine", "", "Detail page engine: browser or static")
	rootCmd.PersistentFlags().BoolVar(&showBrowser, "show-browser", false, "Run Chromium with a visible window")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
}

// applyFlagOverrides merges the flags that were set over the loaded config
func applyFlagOverrides(cmd *cobra.Command) error {
	overrides := config.Config{
		Output:    config.OutputConfig{Dir: outputDir},
		Extractor: config.ExtractorConfig{Engine: engine},
	}
	if cmd.Flags().Changed("interval") {
		overrides.Schedule.Interval = watchInterval
	}
	if err := cfg.ApplyOverrides(overrides); err != nil {
		return err
	}

	// A false Headless is a zero value and would be skipped by the merge.
	if showBrowser {
		cfg.Browser.Headless = false
	}
	return nil
}

func requireFlags() error {
	if listingURL == "" || venueName == "" {
		return fmt.Errorf("both --openreview_main_url and --venue_name are required")
	}
	return nil
}

// buildPipeline wires the optional history database, Google Sheets export
// and Telegram notifications. Integrations that cannot be set up are
// skipped with a warning.
func buildPipeline(ctx context.Context) (*pipeline.Pipeline, func()) {
	p := pipeline.New(cfg).WithProgress(report.NewProgress(os.Stderr))
	var closers []func()

	if cfg.Storage.Driver != "" {
		store, err := db.Open(ctx, cfg.Storage.Driver, cfg.StorageDSN())
		if err != nil {
			log.Printf("Warning: Run history disabled: %v\n", err)
		} else {
			p.WithStore(pipeline.HistoryStore{DB: store})
			closers = append(closers, func() { store.Close() })
		}
	}

	if cfg.Sheets.SpreadsheetURL != "" {
		spreadsheetID := sheets.ExtractSpreadsheetID(cfg.Sheets.SpreadsheetURL)
		if spreadsheetID == "" {
			log.Printf("Warning: Could not extract spreadsheet ID from URL: %s\n", cfg.Sheets.SpreadsheetURL)
		} else if writer, err := sheets.NewWriter(ctx, spreadsheetID, cfg.Sheets.CredentialsPath, cfg.Sheets.CredentialsEnv); err != nil {
			log.Printf("Warning: Failed to initialize Google Sheets writer: %v\n", err)
		} else {
			p.WithSheets(writer)
		}
	}

	if token := cfg.TelegramToken(); token != "" && cfg.Telegram.ChatID != 0 {
		tg, err := notify.NewTelegram(token, cfg.Telegram.ChatID)
		if err != nil {
			log.Printf("Warning: Telegram notifications disabled: %v\n", err)
		} else {
			p.WithNotifier(tg)
		}
	}

	return p, func() {
		for _, c := range closers {
			c()
		}
	}
}

func openHistory(ctx context.Context) (*db.DB, error) {
	if cfg.Storage.Driver == "" {
		return nil, fmt.Errorf("run history is disabled: set storage.driver in the config")
	}
	return db.Open(ctx, cfg.Storage.Driver, cfg.StorageDSN())
}

func formatTimestamp(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}
