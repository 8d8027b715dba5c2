// Copy the local SQLite generation history into the DynamoDB history table,
// for operators moving from a laptop setup to HISTORY_TABLE.
//
// Usage:
//
//	go run ./scripts/migrate-history --dry-run
//	go run ./scripts/migrate-history --db socialai-history.db --table socialai-history
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/xeitosa/socialai/internal/history"
)

func main() {
	var (
		dbPath    = flag.String("db", "socialai-history.db", "Source SQLite history database")
		tableName = flag.String("table", "socialai-history", "Destination DynamoDB table")
		region    = flag.String("region", "us-east-1", "AWS region")
		limit     = flag.Int("limit", 100000, "Maximum number of records to copy, newest first")
		dryRun    = flag.Bool("dry-run", false, "Read and count but don't write")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	src, err := history.OpenSQLite(*dbPath)
	if err != nil {
		slog.Error("Failed to open history database", "error", err)
		os.Exit(1)
	}
	defer src.Close()

	records, err := src.Recent(ctx, *limit)
	if err != nil {
		slog.Error("Failed to read history", "error", err)
		os.Exit(1)
	}
	slog.Info("Read local history", "db", *dbPath, "records", len(records))

	if *dryRun {
		slog.Info("DRY RUN MODE - no writes will be performed")
		return
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(*region))
	if err != nil {
		slog.Error("Failed to load AWS config", "error", err)
		os.Exit(1)
	}
	dest := history.NewDynamo(dynamodb.NewFromConfig(cfg), *tableName)

	var written, skipped int
	// Oldest first so the table fills in creation order.
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		err := dest.Record(ctx, &r)
		var exists *types.ConditionalCheckFailedException
		switch {
		case errors.As(err, &exists):
			skipped++
		case err != nil:
			slog.Error("Failed to write record", "id", r.ID, "error", err)
			os.Exit(1)
		default:
			written++
		}
	}

	slog.Info("Migration complete", "table", *tableName, "written", written, "skipped_existing", skipped)
}
