package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/touchline/internal/club"
	"github.com/mauv0809/touchline/internal/database"
	"github.com/mauv0809/touchline/internal/importer"
	"github.com/mauv0809/touchline/internal/matchsheet"
	"github.com/mauv0809/touchline/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	file             string
	dataType         string
	dbName           string
	dryRun           bool
	noSkipDuplicates bool
)

var rootCmd = &cobra.Command{
	Use:   "touchline-importer",
	Short: "Import a CSV file straight into the touchline database",
	Long: `Reads a CSV file, validates every row and upserts the valid ones in
batches of 100. Uses DB_NAME, TURSO_PRIMARY_URL and TURSO_AUTH_TOKEN from the
environment or a .env file.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVar(&file, "file", "", "CSV file to import")
	rootCmd.Flags().StringVar(&dataType, "type", "", "Data type: teams, players, matches or player_stats")
	rootCmd.Flags().StringVar(&dbName, "db", "", "Local database file, overrides DB_NAME")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate only, write nothing")
	rootCmd.Flags().BoolVar(&noSkipDuplicates, "no-skip-duplicates", false, "Update rows whose key already exists instead of skipping them")
	rootCmd.MarkFlagRequired("file")
	rootCmd.MarkFlagRequired("type")
}

func run(ctx context.Context) error {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}
	if dbName == "" {
		dbName = os.Getenv("DB_NAME")
	}
	primaryURL := os.Getenv("TURSO_PRIMARY_URL")
	if dbName == "" && primaryURL == "" {
		return errors.New("set --db, DB_NAME or TURSO_PRIMARY_URL")
	}

	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", file, err)
	}
	defer f.Close()
	records, err := importer.ReadCSV(f)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}
	fmt.Printf("Read %d records from %s\n", len(records), file)

	db, teardown, err := database.InitDB(dbName, primaryURL, os.Getenv("TURSO_AUTH_TOKEN"))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer teardown()

	clock := clockwork.NewRealClock()
	clubs := club.New(db, clock)
	sheets := matchsheet.NewStore(db, clock)
	im := importer.New(importer.NewStore(clubs, sheets), metrics.NewService(prometheus.NewRegistry()), clock)

	start := clock.Now()
	res, err := im.Import(ctx, importer.Request{
		DataType:       importer.DataType(dataType),
		Records:        records,
		DryRun:         dryRun,
		SkipDuplicates: !noSkipDuplicates,
	})
	if res != nil {
		for _, msg := range res.Errors {
			fmt.Println("  " + msg)
		}
		fmt.Println(res.Message)
		fmt.Printf("Records: %d, errors: %d, duplicates: %d, batches: %d, took %s\n",
			res.Records, len(res.Errors), res.Skipped, res.Batches, clock.Since(start).Round(time.Millisecond))
	}
	return err
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Import failed: %s\n", err)
		os.Exit(1)
	}
}
