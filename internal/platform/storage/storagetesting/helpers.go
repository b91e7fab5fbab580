package storagetesting

import (
	"context"
	"database/sql"
	"os"
	"testing"

	pg "github.com/go-jet/jet/v2/postgres"
	"github.com/go-jet/jet/v2/qrm"
	"github.com/ryanlhy/webhook-ingest/internal/platform/storage"
	pgmodels "github.com/ryanlhy/webhook-ingest/internal/platform/storage/gen/postgres/public/model"
	"github.com/ryanlhy/webhook-ingest/internal/platform/storage/gen/postgres/public/table"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

// Open opens connection to DB and makes sure its schema exists.
// It skips the test when DATABASE_URL environment variable is not set.
// Driver is taken from DATABASE_DRIVER environment variable and defaults to postgres.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("please provide database URL via DATABASE_URL environment variable")
	}

	driver := os.Getenv("DATABASE_DRIVER")
	if driver == "" {
		driver = "postgres"
	}

	db, err := sql.Open(driver, dbURL)
	if err != nil {
		t.Fatalf("can't open connection to %q: %s", dbURL, err)
	}

	if err := storage.EnsureSchema(context.Background(), db); err != nil {
		t.Fatal("can't create schema", err)
	}

	return db
}

// InsertPollRuns is a helper test function to insert poll runs.
func InsertPollRuns(t *testing.T, exc qrm.Executable, runs ...pgmodels.PollRun) {
	t.Helper()

	if len(runs) == 0 {
		return
	}

	toInsert := make([]pgmodels.PollRun, 0, len(runs))
	toInsert = append(toInsert, runs...)

	_, err := table.PollRun.INSERT(table.PollRun.AllColumns).MODELS(toInsert).Exec(exc)
	if err != nil {
		t.Fatal("can't insert poll runs", err)
	}
}

// GetPollRuns is a helper test function to get all poll runs ordered by ID.
func GetPollRuns(t *testing.T, queryable qrm.Queryable) []pgmodels.PollRun {
	t.Helper()

	runs := []pgmodels.PollRun{}
	err := table.PollRun.SELECT(table.PollRun.AllColumns).
		WHERE(table.PollRun.ID.IS_NOT_NULL()).
		ORDER_BY(table.PollRun.ID.ASC()).
		Query(queryable, &runs)
	if err != nil {
		t.Fatal("can't get poll runs", err)
	}

	return runs
}

// GetPriceRecords is a helper test function to get all price history records in insertion order.
func GetPriceRecords(t *testing.T, queryable qrm.Queryable) []pgmodels.PriceHistoryCards {
	t.Helper()

	records := []pgmodels.PriceHistoryCards{}
	err := table.PriceHistoryCards.SELECT(table.PriceHistoryCards.AllColumns).
		WHERE(table.PriceHistoryCards.ID.IS_NOT_NULL()).
		ORDER_BY(table.PriceHistoryCards.ID.ASC()).
		Query(queryable, &records)
	if err != nil {
		t.Fatal("can't get price records", err)
	}

	return records
}

// GetKeyValues is a helper test function to get all key/value pairs in insertion order.
func GetKeyValues(t *testing.T, queryable qrm.Queryable) []pgmodels.KeyValue {
	t.Helper()

	pairs := []pgmodels.KeyValue{}
	err := table.KeyValue.SELECT(table.KeyValue.AllColumns).
		WHERE(table.KeyValue.ID.IS_NOT_NULL()).
		ORDER_BY(table.KeyValue.ID.ASC()).
		Query(queryable, &pairs)
	if err != nil {
		t.Fatal("can't get key/value pairs", err)
	}

	return pairs
}

// GetLatestPollRun is a helper test function to get latest poll run of the dataset.
func GetLatestPollRun(t *testing.T, queryable qrm.Queryable, datasetURL string) *pgmodels.PollRun {
	t.Helper()

	var runs []pgmodels.PollRun
	err := table.PollRun.SELECT(table.PollRun.AllColumns).
		WHERE(table.PollRun.DatasetURL.EQ(pg.String(datasetURL))).
		ORDER_BY(table.PollRun.CreatedAt.DESC(), table.PollRun.ID.DESC()).
		LIMIT(1).
		Query(queryable, &runs)

	if err != nil || len(runs) == 0 {
		t.Fatal("can't get latest poll run", err)
	}

	return &runs[0]
}

// CleanupData is a helper test function to delete all data.
func CleanupData(t *testing.T, exc qrm.Executable) {
	t.Helper()

	_, err := table.PriceHistoryCards.DELETE().WHERE(table.PriceHistoryCards.ID.IS_NOT_NULL()).Exec(exc)
	if err != nil {
		t.Fatal("can't delete price records data", err)
	}

	_, err = table.KeyValue.DELETE().WHERE(table.KeyValue.ID.IS_NOT_NULL()).Exec(exc)
	if err != nil {
		t.Fatal("can't delete key/value data", err)
	}

	_, err = table.PollRun.DELETE().WHERE(table.PollRun.ID.IS_NOT_NULL()).Exec(exc)
	if err != nil {
		t.Fatal("can't delete poll runs data", err)
	}
}
