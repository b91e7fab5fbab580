package poller_test

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/ryanlhy/webhook-ingest/internal/decoder"
	"github.com/ryanlhy/webhook-ingest/internal/ingest"
	"github.com/ryanlhy/webhook-ingest/internal/platform"
	"github.com/ryanlhy/webhook-ingest/internal/platform/metrics"
	"github.com/ryanlhy/webhook-ingest/internal/platform/models"
	"github.com/ryanlhy/webhook-ingest/internal/platform/models/modelstesting"
	"github.com/ryanlhy/webhook-ingest/internal/poller"
	"github.com/ryanlhy/webhook-ingest/internal/poller/mocks"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// reusable test data
var (
	logger     = zerolog.Nop()
	datasetURL = faker.URL()
	dataset    = `[{"url":"https://example.com","results":[]}]`
	createdAt  = time.Date(2020, time.April, 1, 1, 1, 1, 0, time.UTC)
	now        = time.Date(2022, time.April, 1, 1, 1, 1, 0, time.UTC)
	results    = []models.ExtractionResult{
		{Record: modelstesting.FakePriceRecord()},
		{Error: assert.AnError, Path: "[0].results[1]"},
		{Record: modelstesting.FakePriceRecord()},
	}
	runID                          = rand.Int()
	errShouldContainAssertErrorMsg = "should return error containing assert.AnError"
)

func TestUnitPollOnce(t *testing.T) {
	stored := ingest.Outcome{Extracted: 2, Dropped: 1, Committed: 2}
	wantRun := &models.PollRun{
		ID:               runID,
		DatasetURL:       datasetURL,
		CreatedAt:        createdAt,
		FinishedAt:       &now,
		IsSuccess:        lo.ToPtr(true),
		CommittedRecords: lo.ToPtr(int32(2)),
		DroppedRecords:   lo.ToPtr(int32(1)),
	}

	fetcher := mocks.NewFetcher(t)
	dec := mocks.NewDecoder(t)
	storage := mocks.NewStorage(t)
	store := mocks.NewStore(t)
	met := metrics.New()

	mockStorageStartRun(storage, newRun(), nil)
	mockFetcher(fetcher, dataset, nil)
	dec.On("ExtractNested", []byte(dataset)).Return(results, nil).Once()
	store.On("Store", mock.Anything, poller.Source, results).Return(stored, nil).Once()
	mockStorageFinishRun(storage, wantRun, nil)

	pol := newPoller(fetcher, dec, storage, store, poller.WithMetrics(met))

	outcome, err := pol.PollOnce(context.TODO())

	require.NoError(t, err, "shouldn't return any error")
	assert.Equal(t, decoder.VariantNestedResults, outcome.Variant, "should report nested results variant")
	assert.Equal(t, 2, outcome.Committed, "should report committed records")
	assert.Equal(t, 1, outcome.Dropped, "should report dropped records")
	assertPolls(t, met, "success")
}

func TestUnitPollOnceEmptyDataset(t *testing.T) {
	tests := map[string]struct {
		body       string
		extracted  []models.ExtractionResult
		extractErr error
		wantStore  bool
	}{
		"not a sequence": {
			body:       `{"message":"no data"}`,
			extractErr: decoder.ErrNotSequence,
		},
		"empty sequence": {
			body:      `[]`,
			extracted: []models.ExtractionResult{},
			wantStore: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			wantRun := &models.PollRun{
				ID:               runID,
				DatasetURL:       datasetURL,
				CreatedAt:        createdAt,
				FinishedAt:       &now,
				IsSuccess:        lo.ToPtr(true),
				CommittedRecords: lo.ToPtr(int32(0)),
				DroppedRecords:   lo.ToPtr(int32(0)),
			}

			fetcher := mocks.NewFetcher(t)
			dec := mocks.NewDecoder(t)
			storage := mocks.NewStorage(t)
			store := mocks.NewStore(t)

			mockStorageStartRun(storage, newRun(), nil)
			mockFetcher(fetcher, tt.body, nil)
			dec.On("ExtractNested", []byte(tt.body)).Return(tt.extracted, tt.extractErr).Once()
			if tt.wantStore {
				store.On("Store", mock.Anything, poller.Source, tt.extracted).Return(ingest.Outcome{}, nil).Once()
			}
			mockStorageFinishRun(storage, wantRun, nil)

			outcome, err := newPoller(fetcher, dec, storage, store).PollOnce(context.TODO())

			require.NoError(t, err, "empty dataset shouldn't be an error")
			assert.Zero(t, outcome.Committed, "shouldn't commit any record")
			if !tt.wantStore {
				store.AssertNotCalled(t, "Store", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestUnitPollOnceFetcherError(t *testing.T) {
	wantRun := &models.PollRun{
		ID:               runID,
		DatasetURL:       datasetURL,
		CreatedAt:        createdAt,
		FinishedAt:       &now,
		IsSuccess:        lo.ToPtr(false),
		StatusMessage:    lo.ToPtr("UpstreamUnavailable: can't fetch dataset: assert.AnError general error for testing"),
		CommittedRecords: lo.ToPtr(int32(0)),
		DroppedRecords:   lo.ToPtr(int32(0)),
	}

	fetcher := mocks.NewFetcher(t)
	dec := mocks.NewDecoder(t)
	storage := mocks.NewStorage(t)
	store := mocks.NewStore(t)
	met := metrics.New()

	mockStorageStartRun(storage, newRun(), nil)
	mockFetcher(fetcher, "", assert.AnError)
	mockStorageFinishRun(storage, wantRun, nil)

	_, err := newPoller(fetcher, dec, storage, store, poller.WithMetrics(met)).PollOnce(context.TODO())

	require.ErrorIs(t, err, platform.ErrUpstreamUnavailable, "should return upstream error")
	require.ErrorIs(t, err, assert.AnError, errShouldContainAssertErrorMsg)
	dec.AssertNotCalled(t, "ExtractNested", mock.Anything)
	store.AssertNotCalled(t, "Store", mock.Anything, mock.Anything, mock.Anything)
	fetcher.AssertNumberOfCalls(t, "FetchFile", 1)
	assertPolls(t, met, "failure")
}

func TestUnitPollOnceReadError(t *testing.T) {
	fetcher := mocks.NewFetcher(t)
	dec := mocks.NewDecoder(t)
	storage := mocks.NewStorage(t)
	store := mocks.NewStore(t)

	mockStorageStartRun(storage, newRun(), nil)
	fetcher.On("FetchFile", mock.Anything, datasetURL).Return(io.NopCloser(errReader{}), nil).Once()
	storage.On("FinishRun", mock.Anything, mock.MatchedBy(func(run *models.PollRun) bool {
		return !*run.IsSuccess && strings.Contains(*run.StatusMessage, "can't read dataset")
	})).Return(nil).Once()

	_, err := newPoller(fetcher, dec, storage, store).PollOnce(context.TODO())

	require.ErrorIs(t, err, platform.ErrUpstreamUnavailable, "should return upstream error")
	require.ErrorIs(t, err, assert.AnError, errShouldContainAssertErrorMsg)
}

func TestUnitPollOnceStorageError(t *testing.T) {
	t.Run("start run error", func(t *testing.T) {
		fetcher := mocks.NewFetcher(t)
		dec := mocks.NewDecoder(t)
		storage := mocks.NewStorage(t)
		store := mocks.NewStore(t)

		mockStorageStartRun(storage, nil, assert.AnError)

		_, err := newPoller(fetcher, dec, storage, store).PollOnce(context.TODO())

		require.ErrorContains(t, err, "can't start poll", "should return error about failed poll start")
		require.ErrorIs(t, err, assert.AnError, errShouldContainAssertErrorMsg)
		fetcher.AssertNotCalled(t, "FetchFile", mock.Anything, mock.Anything)
	})

	t.Run("already running", func(t *testing.T) {
		fetcher := mocks.NewFetcher(t)
		dec := mocks.NewDecoder(t)
		storage := mocks.NewStorage(t)
		store := mocks.NewStore(t)
		met := metrics.New()

		mockStorageStartRun(storage, nil, platform.ErrAlreadyRunning)

		_, err := newPoller(fetcher, dec, storage, store, poller.WithMetrics(met)).PollOnce(context.TODO())

		require.ErrorIs(t, err, platform.ErrAlreadyRunning, "should return already running error")
		fetcher.AssertNotCalled(t, "FetchFile", mock.Anything, mock.Anything)
		assertPolls(t, met, "already_running")
	})

	t.Run("store error", func(t *testing.T) {
		stored := ingest.Outcome{Extracted: 2, Dropped: 1, Committed: 1, FailedAt: lo.ToPtr(1)}
		wantRun := &models.PollRun{
			ID:               runID,
			DatasetURL:       datasetURL,
			CreatedAt:        createdAt,
			FinishedAt:       &now,
			IsSuccess:        lo.ToPtr(false),
			StatusMessage:    lo.ToPtr("assert.AnError general error for testing"),
			CommittedRecords: lo.ToPtr(int32(1)),
			DroppedRecords:   lo.ToPtr(int32(1)),
		}

		fetcher := mocks.NewFetcher(t)
		dec := mocks.NewDecoder(t)
		storage := mocks.NewStorage(t)
		store := mocks.NewStore(t)

		mockStorageStartRun(storage, newRun(), nil)
		mockFetcher(fetcher, dataset, nil)
		dec.On("ExtractNested", []byte(dataset)).Return(results, nil).Once()
		store.On("Store", mock.Anything, poller.Source, results).Return(stored, assert.AnError).Once()
		mockStorageFinishRun(storage, wantRun, nil)

		outcome, err := newPoller(fetcher, dec, storage, store).PollOnce(context.TODO())

		require.ErrorIs(t, err, assert.AnError, errShouldContainAssertErrorMsg)
		assert.Equal(t, 1, outcome.Committed, "should report records committed before failure")
		assert.Equal(t, lo.ToPtr(1), outcome.FailedAt, "should report failed record")
	})

	t.Run("finish run error", func(t *testing.T) {
		fetcher := mocks.NewFetcher(t)
		dec := mocks.NewDecoder(t)
		storage := mocks.NewStorage(t)
		store := mocks.NewStore(t)

		mockStorageStartRun(storage, newRun(), nil)
		mockFetcher(fetcher, "", assert.AnError)
		storage.On("FinishRun", mock.Anything, mock.Anything).Return(assert.AnError).Once()

		_, err := newPoller(fetcher, dec, storage, store).PollOnce(context.TODO())

		require.ErrorContains(t, err, "can't finish failed poll", "should return error about failed run finishing")
		require.ErrorContains(t, err, "can't fetch dataset", "should return error about failed fetching")
		require.ErrorIs(t, err, platform.ErrUpstreamUnavailable, "should keep upstream error")
	})
}

func TestUnitPollOnceExtractError(t *testing.T) {
	fetcher := mocks.NewFetcher(t)
	dec := mocks.NewDecoder(t)
	storage := mocks.NewStorage(t)
	store := mocks.NewStore(t)

	mockStorageStartRun(storage, newRun(), nil)
	mockFetcher(fetcher, "[", nil)
	dec.On("ExtractNested", []byte("[")).Return(nil, assert.AnError).Once()
	storage.On("FinishRun", mock.Anything, mock.MatchedBy(func(run *models.PollRun) bool {
		return !*run.IsSuccess && strings.Contains(*run.StatusMessage, "can't extract dataset records")
	})).Return(nil).Once()

	_, err := newPoller(fetcher, dec, storage, store).PollOnce(context.TODO())

	require.ErrorContains(t, err, "can't extract dataset records", "should return error about failed extraction")
	require.ErrorIs(t, err, assert.AnError, errShouldContainAssertErrorMsg)
	store.AssertNotCalled(t, "Store", mock.Anything, mock.Anything, mock.Anything)
}

func TestUnitPollOnceDetachedFromCaller(t *testing.T) {
	fetcher := mocks.NewFetcher(t)
	dec := mocks.NewDecoder(t)
	storage := mocks.NewStorage(t)
	store := mocks.NewStore(t)

	ctx, cancel := context.WithCancel(context.TODO())
	defer cancel()

	release := make(chan struct{})
	finished := make(chan struct{})

	mockStorageStartRun(storage, newRun(), nil)
	fetcher.On("FetchFile", mock.Anything, datasetURL).
		Run(func(args mock.Arguments) {
			cancel()
			<-release
		}).
		Return(io.NopCloser(strings.NewReader(dataset)), nil).
		Once()
	dec.On("ExtractNested", []byte(dataset)).Return(results, nil).Once()
	store.On("Store", mock.Anything, poller.Source, results).
		Run(func(args mock.Arguments) {
			assert.NoError(t, args.Get(0).(context.Context).Err(), "poll context shouldn't be cancelled with caller")
		}).
		Return(ingest.Outcome{Committed: 2}, nil).
		Once()
	storage.On("FinishRun", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { close(finished) }).
		Return(nil).
		Once()

	_, err := newPoller(fetcher, dec, storage, store).PollOnce(ctx)

	require.ErrorIs(t, err, context.Canceled, "caller should stop waiting when its context is cancelled")

	close(release)
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("poll should finish after caller is gone")
	}
}

func TestUnitPollOnceTimeoutFinishesRun(t *testing.T) {
	fetcher := mocks.NewFetcher(t)
	dec := mocks.NewDecoder(t)
	storage := mocks.NewStorage(t)
	store := mocks.NewStore(t)

	mockStorageStartRun(storage, newRun(), nil)
	fetcher.On("FetchFile", mock.Anything, datasetURL).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded).
		Once()
	storage.On("FinishRun", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			assert.NoError(t, args.Get(0).(context.Context).Err(), "run should be finished on live context")
		}).
		Return(nil).
		Once()

	_, err := newPoller(fetcher, dec, storage, store, poller.WithTimeout(50*time.Millisecond)).PollOnce(context.TODO())

	require.ErrorIs(t, err, context.DeadlineExceeded, "should return timeout error")
	kind, _ := platform.KindOf(err)
	assert.Equal(t, platform.KindUpstreamUnavailable, kind, "should return upstream unavailable error")
	assert.NotContains(t, err.Error(), "can't finish failed poll", "should finish run after timeout")
}

func TestUnitPollOnceSharesPollInFlight(t *testing.T) {
	fetcher := mocks.NewFetcher(t)
	dec := mocks.NewDecoder(t)
	storage := mocks.NewStorage(t)
	store := mocks.NewStore(t)

	started := make(chan struct{})
	release := make(chan struct{})

	storage.On("StartRun", mock.Anything, datasetURL).
		Run(func(args mock.Arguments) { close(started) }).
		Return(newRun(), nil).
		Once()
	fetcher.On("FetchFile", mock.Anything, datasetURL).
		Run(func(args mock.Arguments) { <-release }).
		Return(io.NopCloser(strings.NewReader(dataset)), nil).
		Once()
	dec.On("ExtractNested", []byte(dataset)).Return(results, nil).Once()
	store.On("Store", mock.Anything, poller.Source, results).Return(ingest.Outcome{Committed: 2}, nil).Once()
	storage.On("FinishRun", mock.Anything, mock.Anything).Return(nil).Once()

	pol := newPoller(fetcher, dec, storage, store)

	var wg sync.WaitGroup
	outcomes := make([]ingest.Outcome, 2)
	errs := make([]error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		outcomes[0], errs[0] = pol.PollOnce(context.TODO())
	}()

	<-started
	wg.Add(1)
	go func() {
		defer wg.Done()
		outcomes[1], errs[1] = pol.PollOnce(context.TODO())
	}()

	// give second caller time to join poll in flight
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	for ix := range outcomes {
		require.NoError(t, errs[ix], "shouldn't return any error")
		assert.Equal(t, 2, outcomes[ix].Committed, "callers should share poll outcome")
	}
}

func TestUnitSchedule(t *testing.T) {
	fetcher := mocks.NewFetcher(t)
	dec := mocks.NewDecoder(t)
	storage := mocks.NewStorage(t)
	store := mocks.NewStore(t)

	ctx, cancel := context.WithCancel(context.TODO())
	defer cancel()

	polled := make(chan struct{}, 1)

	storage.On("StartRun", mock.Anything, datasetURL).Return(nil, platform.ErrAlreadyRunning).
		Run(func(args mock.Arguments) {
			select {
			case polled <- struct{}{}:
			default:
			}
		})

	done := make(chan error)
	go func() {
		done <- newPoller(fetcher, dec, storage, store).Schedule(ctx, 10*time.Millisecond)
	}()

	select {
	case <-polled:
	case <-time.After(time.Second):
		t.Fatal("should poll on schedule")
	}

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err, "should stop without error")
	case <-time.After(time.Second):
		t.Fatal("should stop when context is done")
	}
}

func newPoller(
	fetcher *mocks.Fetcher,
	dec *mocks.Decoder,
	storage *mocks.Storage,
	store *mocks.Store,
	ops ...poller.Option,
) *poller.Poller {
	ops = append([]poller.Option{poller.WithClock(fakeClock{now: &now})}, ops...)
	return poller.NewPoller(fetcher, dec, storage, store, datasetURL, &logger, ops...)
}

func newRun() *models.PollRun {
	return &models.PollRun{
		ID:         runID,
		DatasetURL: datasetURL,
		CreatedAt:  createdAt,
	}
}

// assertPolls checks that single poll with provided result was counted.
func assertPolls(t *testing.T, met *metrics.Metrics, result string) {
	t.Helper()

	expected := fmt.Sprintf(`
# HELP ingest_polls_total Number of dataset poll cycles by result.
# TYPE ingest_polls_total counter
ingest_polls_total{result=%q} 1
`, result)

	err := testutil.GatherAndCompare(met.Gatherer(), strings.NewReader(expected), "ingest_polls_total")
	assert.NoError(t, err, "should count poll with result %s", result)
}

func mockStorageStartRun(storage *mocks.Storage, run *models.PollRun, err error) {
	storage.On("StartRun", mock.Anything, datasetURL).Return(run, err).Once()
}

func mockStorageFinishRun(storage *mocks.Storage, run *models.PollRun, err error) {
	storage.On("FinishRun", mock.Anything, run).Return(err).Once()
}

func mockFetcher(fetcher *mocks.Fetcher, body string, err error) {
	var reader io.ReadCloser
	if err == nil {
		reader = io.NopCloser(strings.NewReader(body))
	}
	fetcher.On("FetchFile", mock.Anything, datasetURL).Return(reader, err).Once()
}

type fakeClock struct {
	now *time.Time
}

func (c fakeClock) Now() *time.Time {
	return c.now
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) {
	return 0, assert.AnError
}
