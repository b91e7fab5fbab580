package ingest

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/ryanlhy/webhook-ingest/internal/decoder"
	"github.com/ryanlhy/webhook-ingest/internal/platform"
	"github.com/ryanlhy/webhook-ingest/internal/platform/metrics"
	"github.com/ryanlhy/webhook-ingest/internal/platform/models"
	"github.com/samber/lo"
)

//go:generate mockery --name Decoder --filename decoder.go
//go:generate mockery --name Sink --filename sink.go
//go:generate mockery --name Recorder --filename recorder.go

// Decoder classifies payloads and extracts records from them.
type Decoder interface {
	Classify(raw []byte) (decoder.Variant, error)
	Extract(variant decoder.Variant, raw []byte) ([]models.ExtractionResult, error)
}

// Sink persists records.
type Sink interface {
	Persist(ctx context.Context, records []models.Record) models.PersistResult
}

// Recorder keeps raw payloads for later inspection.
type Recorder interface {
	Record(ctx context.Context, source string, raw []byte) error
}

// Endpoint is named ingestion entry point with payload variants it accepts.
// Every endpoint accepts TestPing payloads.
type Endpoint struct {
	Name    string
	Accepts []decoder.Variant
}

// Ingestion endpoints.
var (
	Webhook = Endpoint{
		Name:    "webhook",
		Accepts: []decoder.Variant{decoder.VariantLegacyKeyValue},
	}
	PriceHistoryCards = Endpoint{
		Name:    "price-history-cards",
		Accepts: []decoder.Variant{decoder.VariantFlatArrays},
	}
	PriceHistoryCardsApify = Endpoint{
		Name:    "price-history-cards-apify",
		Accepts: []decoder.Variant{decoder.VariantNestedResults},
	}
	// PriceHistoryWebscrape payload only triggers dataset poll, its records come from the dataset.
	PriceHistoryWebscrape = Endpoint{
		Name: "price-history-webscrape",
	}
)

func (e Endpoint) accepts(variant decoder.Variant) bool {
	return variant == decoder.VariantTestPing || lo.Contains(e.Accepts, variant)
}

// triggerOnly reports whether endpoint payloads carry no records of their own.
func (e Endpoint) triggerOnly() bool {
	return len(e.Accepts) == 0
}

// Outcome summarizes single ingestion.
type Outcome struct {
	Variant decoder.Variant
	// Extracted is number of records extracted without error.
	Extracted int
	// Dropped is number of items which failed extraction.
	Dropped int
	// Committed is number of records written to the store.
	Committed int
	// FailedAt is index of extracted record which failed to be written.
	FailedAt *int
}

// Option is custom configuration of Ingestor.
type Option func(i *Ingestor)

// Ingestor runs payloads through audit, classification, extraction and persistence.
type Ingestor struct {
	decoder  Decoder
	sink     Sink
	recorder Recorder
	metrics  *metrics.Metrics
	logger   *zerolog.Logger
}

// NewIngestor returns new Ingestor.
func NewIngestor(dec Decoder, sink Sink, logger *zerolog.Logger, ops ...Option) *Ingestor {
	ing := &Ingestor{
		decoder: dec,
		sink:    sink,
		logger:  logger,
	}

	for _, op := range ops {
		op(ing)
	}

	return ing
}

// Ingest persists records of raw payload received by endpoint.
// Raw payload is recorded before it is classified. TestPing payloads never reach the sink.
// It returns error of kind UnknownSchema when payload can't be classified or endpoint doesn't accept its variant.
// Payloads of trigger only endpoints other than TestPing return empty Outcome and aren't counted.
func (i *Ingestor) Ingest(ctx context.Context, endpoint Endpoint, raw []byte) (Outcome, error) {
	logger := i.loggerFrom(ctx)

	if i.recorder != nil {
		if err := i.recorder.Record(ctx, endpoint.Name, raw); err != nil {
			logger.Warn().Err(err).Str("endpoint", endpoint.Name).Msg("can't record raw payload")
		}
	}

	variant, err := i.decoder.Classify(raw)
	if endpoint.triggerOnly() && variant != decoder.VariantTestPing {
		logger.Debug().Str("endpoint", endpoint.Name).Msg("payload triggers dataset poll")
		return Outcome{}, nil
	}

	i.metrics.ObservePayload(endpoint.Name, variant.String())
	if err != nil {
		return Outcome{}, fmt.Errorf("can't classify payload: %w", err)
	}

	logger.Debug().Str("endpoint", endpoint.Name).Stringer("variant", variant).Msg("payload classified")

	if variant == decoder.VariantTestPing {
		return Outcome{Variant: variant}, nil
	}

	if !endpoint.accepts(variant) {
		return Outcome{Variant: variant}, platform.NewError(
			platform.KindUnknownSchema,
			"endpoint %s doesn't accept %s payloads",
			endpoint.Name,
			variant,
		)
	}

	results, err := i.decoder.Extract(variant, raw)
	if err != nil {
		return Outcome{Variant: variant}, fmt.Errorf("can't extract records: %w", err)
	}

	// single record payloads fail as a whole
	if variant == decoder.VariantLegacyKeyValue {
		if failed, found := lo.Find(results, func(r models.ExtractionResult) bool { return r.Error != nil }); found {
			i.metrics.ObserveRecords(endpoint.Name, metrics.OutcomeDropped, 1)
			return Outcome{Variant: variant, Dropped: 1}, fmt.Errorf("can't extract key/value pair: %w", failed.Error)
		}
	}

	outcome, err := i.Store(ctx, endpoint.Name, results)
	outcome.Variant = variant

	return outcome, err
}

// Store persists successfully extracted results and counts failed ones as dropped.
// Each dropped item is logged with its path and error kind.
func (i *Ingestor) Store(ctx context.Context, source string, results []models.ExtractionResult) (Outcome, error) {
	logger := i.loggerFrom(ctx)
	outcome := Outcome{}

	records := make([]models.Record, 0, len(results))
	for ix := range results {
		if results[ix].Error != nil {
			kind, _ := platform.KindOf(results[ix].Error)
			logger.Warn().
				Err(results[ix].Error).
				Str("source", source).
				Str("path", results[ix].Path).
				Str("kind", string(kind)).
				Msg("dropping item which can't be extracted")
			outcome.Dropped++
			continue
		}
		records = append(records, results[ix].Record)
	}
	outcome.Extracted = len(records)

	persisted := i.sink.Persist(ctx, records)
	outcome.Committed = persisted.Committed
	outcome.FailedAt = persisted.FailedAt

	i.metrics.ObserveRecords(source, metrics.OutcomeDropped, outcome.Dropped)
	i.metrics.ObserveRecords(source, metrics.OutcomeCommitted, outcome.Committed)
	i.metrics.ObserveRecords(source, metrics.OutcomeFailed, outcome.Extracted-outcome.Committed)

	if persisted.Err != nil {
		return outcome, fmt.Errorf("can't persist %s records: %w", source, persisted.Err)
	}

	logger.Info().
		Str("source", source).
		Int("committed", outcome.Committed).
		Int("dropped", outcome.Dropped).
		Msg("records persisted")

	return outcome, nil
}

// loggerFrom returns request scoped logger when ctx carries one.
func (i *Ingestor) loggerFrom(ctx context.Context) *zerolog.Logger {
	if logger := zerolog.Ctx(ctx); logger.GetLevel() != zerolog.Disabled {
		return logger
	}
	return i.logger
}

// WithRecorder sets Ingestor's raw payload Recorder.
func WithRecorder(r Recorder) Option {
	return func(i *Ingestor) {
		i.recorder = r
	}
}

// WithMetrics sets Ingestor's Metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(i *Ingestor) {
		i.metrics = m
	}
}
