package sink

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/ryanlhy/webhook-ingest/internal/platform"
	"github.com/ryanlhy/webhook-ingest/internal/platform/models"
	"github.com/samber/lo"
)

// Pool hands out connections to the store.
//
//go:generate mockery --name Pool --filename pool.go
type Pool interface {
	Acquire(ctx context.Context) (Conn, error)
}

// Conn is single acquired connection to the store.
//
//go:generate mockery --name Conn --filename conn.go
type Conn interface {
	Insert(ctx context.Context, record models.Record) error
	Release() error
}

// PoolFunc adapts function to Pool.
type PoolFunc func(ctx context.Context) (Conn, error)

// Acquire calls f(ctx).
func (f PoolFunc) Acquire(ctx context.Context) (Conn, error) {
	return f(ctx)
}

// Sink persists canonical records one by one over single connection.
type Sink struct {
	pool   Pool
	logger *zerolog.Logger
}

// NewSink returns new Sink.
func NewSink(pool Pool, logger *zerolog.Logger) *Sink {
	return &Sink{
		pool:   pool,
		logger: logger,
	}
}

// Persist writes records in order, each in its own statement.
// Writing stops at the first failed record and rest of records is not attempted.
// Records written before the failure stay committed.
// Connection is acquired once per call and always released. Empty records don't acquire connection.
func (s *Sink) Persist(ctx context.Context, records []models.Record) models.PersistResult {
	if len(records) == 0 {
		return models.PersistResult{}
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return models.PersistResult{
			Err: platform.WrapError(platform.KindConnectionAcquisitionFailed, fmt.Errorf("can't acquire connection: %w", err)),
		}
	}
	defer func() {
		if err := conn.Release(); err != nil {
			s.logger.Warn().Err(err).Msg("can't release connection")
		}
	}()

	for ix := range records {
		if err := conn.Insert(ctx, records[ix]); err != nil {
			s.logger.Error().
				Err(err).
				Int("index", ix).
				Int("committed", ix).
				Int("skipped", len(records)-ix-1).
				Msg("can't write record, aborting rest of records")

			return models.PersistResult{
				Committed: ix,
				FailedAt:  lo.ToPtr(ix),
				Err:       platform.WrapError(platform.KindWriteFailed, fmt.Errorf("can't write record %d: %w", ix, err)),
			}
		}
	}

	return models.PersistResult{Committed: len(records)}
}
