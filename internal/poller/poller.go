package poller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/ryanlhy/webhook-ingest/internal/decoder"
	"github.com/ryanlhy/webhook-ingest/internal/ingest"
	"github.com/ryanlhy/webhook-ingest/internal/platform"
	"github.com/ryanlhy/webhook-ingest/internal/platform/metrics"
	"github.com/ryanlhy/webhook-ingest/internal/platform/models"
	"github.com/samber/lo"
	"golang.org/x/sync/singleflight"
)

//go:generate mockery --name Fetcher --filename fetcher.go
//go:generate mockery --name Decoder --filename decoder.go
//go:generate mockery --name Storage --filename storage.go
//go:generate mockery --name Store --filename store.go

// Source names records ingested from the polled dataset.
const Source = "dataset"

// finishTimeout bounds run bookkeeping after poll cycle ends.
const finishTimeout = 10 * time.Second

// Poll results reported to metrics.
const (
	resultSuccess        = "success"
	resultFailure        = "failure"
	resultAlreadyRunning = "already_running"
)

// Fetcher fetches dataset document.
type Fetcher interface {
	FetchFile(ctx context.Context, url string) (io.ReadCloser, error)
}

// Decoder extracts records from dataset items.
type Decoder interface {
	ExtractNested(items []byte) ([]models.ExtractionResult, error)
}

// Clock provides times.
type Clock interface {
	// Now returns current UTC time.
	Now() *time.Time
}

// Storage is poll runs storage.
type Storage interface {
	// StartRun creates new run if there is no run of the dataset running.
	StartRun(ctx context.Context, datasetURL string) (*models.PollRun, error)
	// FinishRun finishes provided run and updates its statistics.
	FinishRun(ctx context.Context, run *models.PollRun) error
}

// Store persists extraction results.
type Store interface {
	Store(ctx context.Context, source string, results []models.ExtractionResult) (ingest.Outcome, error)
}

// Option is custom configuration of Poller.
type Option func(p *Poller)

// Poller fetches external dataset and persists its records.
type Poller struct {
	fetcher    Fetcher
	decoder    Decoder
	storage    Storage
	store      Store
	datasetURL string
	timeout    time.Duration
	clock      Clock
	metrics    *metrics.Metrics
	logger     *zerolog.Logger
	group      singleflight.Group
}

// NewPoller returns new Poller of the dataset.
func NewPoller(
	fetcher Fetcher,
	decoder Decoder,
	storage Storage,
	store Store,
	datasetURL string,
	logger *zerolog.Logger,
	ops ...Option,
) *Poller {
	p := &Poller{
		fetcher:    fetcher,
		decoder:    decoder,
		storage:    storage,
		store:      store,
		datasetURL: datasetURL,
		clock:      systemClock{},
		logger:     logger,
	}

	for _, op := range ops {
		op(p)
	}

	return p
}

// PollOnce runs single poll cycle: one fetch of the dataset, extraction and persistence.
// Concurrent calls share the cycle in flight. The cycle isn't cancelled with ctx,
// ctx only bounds how long the caller waits for it.
// It returns platform.ErrAlreadyRunning when other process polls the dataset.
// Fetch failures are returned as UpstreamUnavailable errors and are never retried.
func (p *Poller) PollOnce(ctx context.Context) (ingest.Outcome, error) {
	result := p.group.DoChan(p.datasetURL, func() (interface{}, error) {
		pollCtx := context.WithoutCancel(ctx)
		if p.timeout > 0 {
			var cancel context.CancelFunc
			pollCtx, cancel = context.WithTimeout(pollCtx, p.timeout)
			defer cancel()
		}

		return p.poll(pollCtx)
	})

	select {
	case <-ctx.Done():
		return ingest.Outcome{}, fmt.Errorf("can't wait for poll: %w", ctx.Err())
	case res := <-result:
		outcome, _ := res.Val.(ingest.Outcome)
		if res.Shared {
			p.logger.Debug().Msg("joined poll in flight")
		}
		return outcome, res.Err
	}
}

// Schedule polls the dataset every interval until ctx is done.
func (p *Poller) Schedule(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			outcome, err := p.PollOnce(ctx)
			switch {
			case errors.Is(err, platform.ErrAlreadyRunning):
				p.logger.Info().Msg("skipping scheduled poll, previous poll is still running")
			case err != nil:
				p.logger.Error().Err(err).Msg("scheduled poll failed")
			default:
				p.logger.Info().
					Int("committed", outcome.Committed).
					Int("dropped", outcome.Dropped).
					Msg("scheduled poll finished")
			}
		}
	}
}

func (p *Poller) poll(ctx context.Context) (ingest.Outcome, error) {
	outcome := ingest.Outcome{Variant: decoder.VariantNestedResults}

	// insert new run in storage.
	run, err := p.storage.StartRun(ctx, p.datasetURL)
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			p.metrics.ObservePoll(resultAlreadyRunning)
		}
		return outcome, fmt.Errorf("can't start poll: %w", err)
	}

	// fetch dataset.
	body, err := p.fetcher.FetchFile(ctx, p.datasetURL)
	if err != nil {
		return p.finishPoll(ctx, run, outcome, platform.WrapError(
			platform.KindUpstreamUnavailable,
			fmt.Errorf("can't fetch dataset: %w", err),
		))
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return p.finishPoll(ctx, run, outcome, platform.WrapError(
			platform.KindUpstreamUnavailable,
			fmt.Errorf("can't read dataset: %w", err),
		))
	}

	// extract records.
	results, err := p.decoder.ExtractNested(raw)
	if errors.Is(err, decoder.ErrNotSequence) {
		p.logger.Info().Str("dataset", p.datasetURL).Msg("dataset is not a sequence, nothing to ingest")
		return p.finishPoll(ctx, run, outcome, nil)
	}
	if err != nil {
		return p.finishPoll(ctx, run, outcome, fmt.Errorf("can't extract dataset records: %w", err))
	}

	// persist records.
	stored, err := p.store.Store(ctx, Source, results)
	stored.Variant = outcome.Variant

	return p.finishPoll(ctx, run, stored, err)
}

func (p *Poller) finishPoll(ctx context.Context, run *models.PollRun, outcome ingest.Outcome, status error) (ingest.Outcome, error) {
	if status != nil {
		run.StatusMessage = lo.ToPtr(status.Error())
	}
	run.IsSuccess = lo.ToPtr(status == nil)
	run.FinishedAt = p.clock.Now()
	run.CommittedRecords = lo.ToPtr(int32(outcome.Committed))
	run.DroppedRecords = lo.ToPtr(int32(outcome.Dropped))

	p.metrics.ObservePoll(lo.Ternary(status == nil, resultSuccess, resultFailure))

	// run has to be finished even when poll cycle ran out of time
	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finishTimeout)
	defer cancel()

	err := p.storage.FinishRun(finishCtx, run)
	if err != nil && status == nil {
		return outcome, fmt.Errorf("can't finish poll: %w", err)
	}

	if err != nil && status != nil {
		return outcome, fmt.Errorf("can't finish failed poll: %w (fail reason: %w)", err, status)
	}

	return outcome, status
}

// WithClock sets Poller's custom Clock.
func WithClock(c Clock) Option {
	return func(p *Poller) {
		p.clock = c
	}
}

// WithTimeout bounds duration of single poll cycle.
func WithTimeout(timeout time.Duration) Option {
	return func(p *Poller) {
		p.timeout = timeout
	}
}

// WithMetrics sets Poller's Metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Poller) {
		p.metrics = m
	}
}
