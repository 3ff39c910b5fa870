// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/opa-api/internal/csvout"
	"github.com/pdiddy/opa-api/internal/scrape"
	"github.com/pdiddy/opa-api/internal/store"
	"github.com/pdiddy/opa-api/pkg/types"
)

const defaultTimeout = 60 * time.Second

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Fetch OPA account records for a list of ids",
	Long: `Scrape reads a JSON array of OPA account ids (the tolist output), fetches
each account from the OPA service and saves the raw response under the
save directory. Successful responses are flattened into a property CSV and
a valuation history CSV. Ids already saved are not fetched again unless
--refetch is given. With --db the records are also indexed in SQLite.`,
	Args: cobra.NoArgs,
	RunE: runScrape,
}

func init() {
	f := scrapeCmd.Flags()
	f.StringP("file", "f", types.DefaultIDListFile, "source JSON file of OPA ids")
	f.IntP("concurrent", "c", 1, "number of concurrent requests allowed")
	f.String("service-url", types.DefaultServiceURL, "OPA account service URL")
	f.String("save-dir", types.DefaultSaveDir, "directory for raw responses")
	f.String("csv", types.DefaultPropertyCSV, "property CSV output")
	f.String("valuations-csv", types.DefaultValuationCSV, "valuation history CSV output")
	f.Duration("timeout", defaultTimeout, "HTTP request timeout")
	f.Int("max-retries", 5, "retries on 429 and 5xx responses")
	f.String("user-agent", types.DefaultUserAgent, "User-Agent header")
	f.Bool("refetch", false, "fetch ids even when a saved response exists")
	f.String("db", "", "also index records into this SQLite database")

	bindFlag(scrapeCmd, "scrape.ids_file", "file")
	bindFlag(scrapeCmd, "scrape.concurrency", "concurrent")
	bindFlag(scrapeCmd, "scrape.service_url", "service-url")
	bindFlag(scrapeCmd, "scrape.save_dir", "save-dir")
	bindFlag(scrapeCmd, "scrape.csv", "csv")
	bindFlag(scrapeCmd, "scrape.valuations_csv", "valuations-csv")
	bindFlag(scrapeCmd, "scrape.timeout", "timeout")
	bindFlag(scrapeCmd, "scrape.max_retries", "max-retries")
	bindFlag(scrapeCmd, "scrape.user_agent", "user-agent")
	bindFlag(scrapeCmd, "scrape.refetch", "refetch")
	bindFlag(scrapeCmd, "scrape.db_path", "db")

	rootCmd.AddCommand(scrapeCmd)
}

func scrapeConfig() types.ScrapeConfig {
	return types.ScrapeConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:    viper.GetDuration("scrape.timeout"),
			UserAgent:  viper.GetString("scrape.user_agent"),
			MaxRetries: viper.GetInt("scrape.max_retries"),
		},
		IDsFile:      viper.GetString("scrape.ids_file"),
		ServiceURL:   viper.GetString("scrape.service_url"),
		Concurrency:  viper.GetInt("scrape.concurrency"),
		SaveDir:      viper.GetString("scrape.save_dir"),
		PropertyCSV:  viper.GetString("scrape.csv"),
		ValuationCSV: viper.GetString("scrape.valuations_csv"),
		Refetch:      viper.GetBool("scrape.refetch"),
	}
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg := scrapeConfig()
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	ids, err := scrape.LoadIDs(cfg.IDsFile)
	if err != nil {
		return err
	}

	propFile, err := os.Create(cfg.PropertyCSV)
	if err != nil {
		return fmt.Errorf("creating %s: %w", cfg.PropertyCSV, err)
	}
	defer propFile.Close()
	valFile, err := os.Create(cfg.ValuationCSV)
	if err != nil {
		return fmt.Errorf("creating %s: %w", cfg.ValuationCSV, err)
	}
	defer valFile.Close()

	csvw, err := csvout.New(propFile, valFile)
	if err != nil {
		return err
	}
	var sink scrape.Sink = csvw

	if dbPath := viper.GetString("scrape.db_path"); dbPath != "" {
		st, err := store.Open(types.StoreConfig{DBPath: dbPath})
		if err != nil {
			return err
		}
		defer st.Close()
		sink = scrape.Tee(csvw, st)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := &http.Client{Timeout: cfg.Timeout}
	fmt.Fprintf(os.Stderr, "scraping %d ids with %d worker(s)\n", len(ids), max(cfg.Concurrency, 1))

	result, runErr := scrape.Run(ctx, client, ids, cfg, sink, os.Stdout)
	if result != nil {
		summaryPath := filepath.Join(cfg.SaveDir, scrape.SummaryFile)
		if err := scrape.WriteSummary(summaryPath, result.Summary(cfg.ServiceURL)); err != nil {
			fmt.Fprintf(os.Stderr, "warning: writing summary: %v\n", err)
		}
		fmt.Fprintf(os.Stderr, "run %s finished in %v\n", result.RunID, result.Elapsed().Round(time.Millisecond))
	}
	if runErr != nil {
		return runErr
	}
	if result.HasFailures() {
		return fmt.Errorf("%d id(s) failed", result.Failed)
	}
	return nil
}
