// Command report computes one insights report straight from the local store
// and prints it as JSON. Useful for spot checks without running the server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"spendsight/internal/config"
	"spendsight/internal/insights"
	"spendsight/internal/storage"
)

func main() {
	_ = godotenv.Load()

	var (
		ownerID   = flag.String("owner", "", "owner id (required)")
		startDate = flag.String("start", "", "start date YYYY-MM-DD (required)")
		endDate   = flag.String("end", "", "end date YYYY-MM-DD (required)")
		dbPath    = flag.String("db", "", "sqlite database path (default: SQLITE_DB_PATH)")
	)
	flag.Parse()

	if *dbPath == "" {
		*dbPath = config.Load().SQLiteDBPath
	}

	repo, err := storage.NewSQLiteRepository(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		os.Exit(1)
	}
	defer repo.Close()

	agg := insights.NewAggregator(repo)
	report, err := agg.Compute(context.Background(), *ownerID, *startDate, *endDate)
	if err != nil {
		if insights.IsValidation(err) {
			fmt.Fprintf(os.Stderr, "invalid request: %v\n", err)
			flag.Usage()
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "compute report: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		fmt.Fprintf(os.Stderr, "encode report: %v\n", err)
		os.Exit(1)
	}
}
