package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ryanlhy/webhook-ingest/internal/platform"
	"github.com/ryanlhy/webhook-ingest/internal/platform/models"
	"github.com/ryanlhy/webhook-ingest/internal/platform/storage/gen/postgres/public/table"

	pg "github.com/go-jet/jet/v2/postgres"
	"github.com/go-jet/jet/v2/qrm"
	pgmodels "github.com/ryanlhy/webhook-ingest/internal/platform/storage/gen/postgres/public/model"
)

const (
	defaultRunTTL       = 15 * time.Minute
	abandonedRunMessage = "abandoned: run exceeded its time to live"
)

// ErrRunNotFound is returned when finished run doesn't exist in database.
var ErrRunNotFound = errors.New("run not found")

// Option is custom configuration of Postgres.
type Option func(p *Postgres)

// Postgres is storage for price history records, key/value pairs and poll runs.
type Postgres struct {
	db     *sql.DB
	runTTL time.Duration
	now    func() time.Time
}

// NewPostgres returns new Postgres.
func NewPostgres(db *sql.DB, ops ...Option) Postgres {
	p := Postgres{
		db:     db,
		runTTL: defaultRunTTL,
		now:    time.Now,
	}

	for _, op := range ops {
		op(&p)
	}

	return p
}

// Conn is single connection taken from database pool.
// It is not safe for concurrent use.
type Conn struct {
	conn *sql.Conn
}

// Acquire takes single connection from database pool.
// The caller is responsible for releasing returned Conn.
func (p Postgres) Acquire(ctx context.Context) (*Conn, error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("can't get connection from pool: %w", err)
	}

	return &Conn{conn: conn}, nil
}

// Insert writes single record into its table. Each call is committed on its own.
func (c *Conn) Insert(ctx context.Context, record models.Record) error {
	switch rec := record.(type) {
	case models.PriceRecord:
		return insertPriceRecord(ctx, c.conn, rec)
	case models.KeyValueRecord:
		return insertKeyValue(ctx, c.conn, rec)
	default:
		return fmt.Errorf("can't insert record of type %T", record)
	}
}

// Release returns connection to the pool.
func (c *Conn) Release() error {
	return c.conn.Close()
}

// StartRun creates new unfinished poll run of the dataset and returns it.
// It returns ErrAlreadyRunning if previous run is not finished yet and is younger than run TTL.
// Unfinished runs older than run TTL are finished as abandoned.
func (p Postgres) StartRun(ctx context.Context, datasetURL string) (*models.PollRun, error) {
	run := &models.PollRun{
		DatasetURL: datasetURL,
	}

	err := runInTransaction(ctx, p.db, func(tx *sql.Tx) error {
		// serializes concurrent StartRun calls for the same dataset until commit
		_, err := pg.RawStatement(
			"SELECT pg_advisory_xact_lock(hashtext(#dataset_url))",
			pg.RawArgs{"#dataset_url": datasetURL},
		).ExecContext(ctx, tx)
		if err != nil {
			return fmt.Errorf("can't lock dataset runs: %w", err)
		}

		lastRun, err := getLastRun(ctx, tx, datasetURL)
		if err != nil && !errors.Is(err, qrm.ErrNoRows) {
			return fmt.Errorf("can't get last run from database: %w", err)
		}

		now := p.now().UTC()
		if lastRun != nil && lastRun.FinishedAt == nil {
			if now.Sub(lastRun.CreatedAt) < p.runTTL {
				return platform.ErrAlreadyRunning
			}

			if err := abandonRun(ctx, tx, lastRun.ID, now); err != nil {
				return fmt.Errorf("can't abandon stale run: %w", err)
			}
		}

		newRun := pgmodels.PollRun{
			DatasetURL: datasetURL,
			CreatedAt:  now,
		}
		err = table.PollRun.INSERT(
			table.PollRun.DatasetURL,
			table.PollRun.CreatedAt,
		).
			MODEL(newRun).
			RETURNING(table.PollRun.ID, table.PollRun.CreatedAt).
			QueryContext(ctx, tx, &newRun)
		if err != nil {
			return fmt.Errorf("can't insert run into database: %w", err)
		}

		run.ID = int(newRun.ID)
		run.CreatedAt = newRun.CreatedAt

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("can't add run: %w", err)
	}

	return run, nil
}

// FinishRun sets run as finished and updates run's statistics.
func (p Postgres) FinishRun(ctx context.Context, run *models.PollRun) error {
	columnList := table.PollRun.AllColumns.Except(table.PollRun.ID, table.PollRun.CreatedAt, table.PollRun.DatasetURL)

	result, err := table.PollRun.UPDATE(columnList).
		MODEL(toDBPollRun(run)).
		WHERE(table.PollRun.ID.EQ(pg.Int32(int32(run.ID)))).
		ExecContext(ctx, p.db)
	if err != nil {
		return fmt.Errorf("can't update run: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("can't update run: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("can't update run %d: %w", run.ID, ErrRunNotFound)
	}

	return nil
}

func insertPriceRecord(ctx context.Context, db qrm.Executable, record models.PriceRecord) error {
	dbRecord, err := toDBPriceRecord(record)
	if err != nil {
		return err
	}

	_, err = table.PriceHistoryCards.INSERT(
		table.PriceHistoryCards.Date,
		table.PriceHistoryCards.URL,
		table.PriceHistoryCards.EbayNumber,
		table.PriceHistoryCards.Price,
		table.PriceHistoryCards.Title,
	).
		MODEL(dbRecord).
		ExecContext(ctx, db)
	if err != nil {
		return fmt.Errorf("can't insert price record into database: %w", err)
	}

	return nil
}

func insertKeyValue(ctx context.Context, db qrm.Executable, record models.KeyValueRecord) error {
	_, err := table.KeyValue.INSERT(
		table.KeyValue.KeyNum,
		table.KeyValue.Value,
	).
		MODEL(toDBKeyValue(record)).
		ExecContext(ctx, db)
	if err != nil {
		return fmt.Errorf("can't insert key/value pair into database: %w", err)
	}

	return nil
}

func getLastRun(ctx context.Context, db qrm.Queryable, datasetURL string) (*pgmodels.PollRun, error) {
	var run pgmodels.PollRun
	err := table.PollRun.SELECT(table.PollRun.AllColumns).
		WHERE(table.PollRun.DatasetURL.EQ(pg.String(datasetURL))).
		ORDER_BY(table.PollRun.CreatedAt.DESC()).
		LIMIT(1).
		QueryContext(ctx, db, &run)
	if err != nil {
		return nil, err
	}

	return &run, nil
}

func abandonRun(ctx context.Context, db qrm.Executable, runID int32, now time.Time) error {
	_, err := table.PollRun.UPDATE().
		SET(
			table.PollRun.FinishedAt.SET(pg.TimestampzT(now)),
			table.PollRun.Success.SET(pg.Bool(false)),
			table.PollRun.StatusMessage.SET(pg.String(abandonedRunMessage)),
		).
		WHERE(table.PollRun.ID.EQ(pg.Int32(runID))).
		ExecContext(ctx, db)

	return err
}

func runInTransaction(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	var (
		tx  *sql.Tx
		err error
	)

	if tx, err = db.BeginTx(ctx, nil); err != nil {
		return fmt.Errorf("can't begin transaction: %w", err)
	}

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("can't rollback transaction: %w (rollback reason: %w)", rbErr, err)
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("can't commit transaction: %w", err)
	}

	return nil
}

// WithRunTTL sets time after which unfinished run is considered abandoned.
func WithRunTTL(ttl time.Duration) Option {
	return func(p *Postgres) {
		if ttl > 0 {
			p.runTTL = ttl
		}
	}
}

// WithNow sets Postgres's custom current time source.
func WithNow(now func() time.Time) Option {
	return func(p *Postgres) {
		p.now = now
	}
}
