package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/ryanlhy/webhook-ingest/internal/decoder"
	"github.com/ryanlhy/webhook-ingest/internal/handler"
	"github.com/ryanlhy/webhook-ingest/internal/handler/mocks"
	"github.com/ryanlhy/webhook-ingest/internal/ingest"
	ingestmocks "github.com/ryanlhy/webhook-ingest/internal/ingest/mocks"
	"github.com/ryanlhy/webhook-ingest/internal/platform"
	"github.com/ryanlhy/webhook-ingest/internal/platform/metrics"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var logger = zerolog.Nop()

type responseBody struct {
	Status    string `json:"status"`
	Variant   string `json:"variant"`
	Extracted int    `json:"extracted"`
	Dropped   int    `json:"dropped"`
	Committed int    `json:"committed"`
	FailedAt  *int   `json:"failedAt"`
	Kind      string `json:"kind"`
	Error     string `json:"error"`
	Message   string `json:"message"`
}

func TestUnitStaticRoutes(t *testing.T) {
	tests := map[string]struct {
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		"home": {
			method:     http.MethodGet,
			path:       "/",
			wantStatus: http.StatusOK,
			wantBody:   "Hello World! This is a webhook server",
		},
		"my home": {
			method:     http.MethodGet,
			path:       "/myhome",
			wantStatus: http.StatusOK,
			wantBody:   "Hello World! This is a webhook server at /home route!",
		},
		"unknown route": {
			method:     http.MethodGet,
			path:       "/unknown",
			wantStatus: http.StatusNotFound,
		},
		"wrong method": {
			method:     http.MethodGet,
			path:       "/webhook",
			wantStatus: http.StatusMethodNotAllowed,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			routes := newRoutes(mocks.NewIngestor(t), mocks.NewPoller(t), nil)

			rec := serve(routes, tt.method, tt.path, "")

			assert.Equal(t, tt.wantStatus, rec.Code, "should return correct status")
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String(), "should return static text")
			}
		})
	}
}

func TestUnitIngestEndpoints(t *testing.T) {
	endpoints := map[string]ingest.Endpoint{
		"/webhook":                   ingest.Webhook,
		"/price-history-cards":       ingest.PriceHistoryCards,
		"/price-history-cards-apify": ingest.PriceHistoryCardsApify,
	}
	payload := `{"data":[]}`

	tests := map[string]struct {
		outcome    ingest.Outcome
		err        error
		wantStatus int
		wantBody   responseBody
	}{
		"ok": {
			outcome:    ingest.Outcome{Variant: decoder.VariantFlatArrays, Extracted: 3, Dropped: 1, Committed: 3},
			wantStatus: http.StatusOK,
			wantBody:   responseBody{Status: "ok", Variant: "FlatArrays", Extracted: 3, Dropped: 1, Committed: 3},
		},
		"test ping": {
			outcome:    ingest.Outcome{Variant: decoder.VariantTestPing},
			wantStatus: http.StatusOK,
			wantBody:   responseBody{Status: "ok", Variant: "TestPing", Message: "test event received"},
		},
		"unknown schema": {
			err:        platform.NewError(platform.KindUnknownSchema, "no known shape"),
			wantStatus: http.StatusInternalServerError,
			wantBody: responseBody{
				Status: "error",
				Kind:   "UnknownSchema",
				Error:  "UnknownSchema: no known shape",
			},
		},
		"missing required field": {
			outcome:    ingest.Outcome{Variant: decoder.VariantLegacyKeyValue, Dropped: 1},
			err:        platform.NewError(platform.KindMissingRequiredField, "value is missing"),
			wantStatus: http.StatusInternalServerError,
			wantBody: responseBody{
				Status:  "error",
				Variant: "LegacyKeyValue",
				Dropped: 1,
				Kind:    "MissingRequiredField",
				Error:   "MissingRequiredField: value is missing",
			},
		},
		"partial write": {
			outcome:    ingest.Outcome{Variant: decoder.VariantFlatArrays, Extracted: 3, Committed: 1, FailedAt: lo.ToPtr(1)},
			err:        platform.WrapError(platform.KindWriteFailed, assert.AnError),
			wantStatus: http.StatusInternalServerError,
			wantBody: responseBody{
				Status:    "error",
				Variant:   "FlatArrays",
				Extracted: 3,
				Committed: 1,
				FailedAt:  lo.ToPtr(1),
				Kind:      "WriteFailed",
				Error:     "WriteFailed: " + assert.AnError.Error(),
			},
		},
		"connection acquisition": {
			outcome:    ingest.Outcome{Variant: decoder.VariantNestedResults, Extracted: 2},
			err:        platform.WrapError(platform.KindConnectionAcquisitionFailed, assert.AnError),
			wantStatus: http.StatusInternalServerError,
			wantBody: responseBody{
				Status:    "error",
				Variant:   "NestedResults",
				Extracted: 2,
				Kind:      "ConnectionAcquisitionFailed",
				Error:     "ConnectionAcquisitionFailed: " + assert.AnError.Error(),
			},
		},
	}

	for path, endpoint := range endpoints {
		for name, tt := range tests {
			t.Run(path+" "+name, func(t *testing.T) {
				ingestor := mocks.NewIngestor(t)
				ingestor.On("Ingest", mock.Anything, endpoint, []byte(payload)).Return(tt.outcome, tt.err).Once()

				rec := serve(newRoutes(ingestor, mocks.NewPoller(t), nil), http.MethodPost, path, payload)

				assert.Equal(t, tt.wantStatus, rec.Code, "should return correct status")
				assert.Equal(t, "application/json", rec.Header().Get("Content-Type"), "should return JSON")
				assert.Equal(t, tt.wantBody, decodeBody(t, rec.Body), "should return correct body")
			})
		}
	}
}

func TestUnitIngestEndpointsRejectedPayload(t *testing.T) {
	tests := map[string]struct {
		path     string
		payload  string
		wantKind string
	}{
		"unknown schema": {
			path:     "/price-history-cards",
			payload:  `{"foo":1}`,
			wantKind: "UnknownSchema",
		},
		"missing required field": {
			path:     "/webhook",
			payload:  `{"key_num":"x","value":"a"}`,
			wantKind: "MissingRequiredField",
		},
		"variant not accepted": {
			path:     "/price-history-cards-apify",
			payload:  `{"key_num":1,"value":"a"}`,
			wantKind: "UnknownSchema",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			sink := ingestmocks.NewSink(t)
			ing := ingest.NewIngestor(decoder.Decoder{}, sink, &logger)
			routes := handler.NewHTTPHandler(ing, mocks.NewPoller(t), nil, &logger).Routes()

			rec := serve(routes, http.MethodPost, tt.path, tt.payload)

			assert.Equal(t, http.StatusInternalServerError, rec.Code, "should return server error")
			assert.Equal(t, tt.wantKind, decodeBody(t, rec.Body).Kind, "should return error kind")
			sink.AssertNotCalled(t, "Persist", mock.Anything, mock.Anything)
		})
	}
}

func TestUnitWebscrape(t *testing.T) {
	payload := `{"eventType":"ACTOR.RUN.SUCCEEDED"}`

	tests := map[string]struct {
		ingestOutcome ingest.Outcome
		wantPoll      bool
		pollOutcome   ingest.Outcome
		pollErr       error
		wantStatus    int
		wantBody      responseBody
	}{
		"test event": {
			ingestOutcome: ingest.Outcome{Variant: decoder.VariantTestPing},
			wantStatus:    http.StatusOK,
			wantBody:      responseBody{Status: "ok", Variant: "TestPing", Message: "test event received"},
		},
		"poll": {
			wantPoll:    true,
			pollOutcome: ingest.Outcome{Variant: decoder.VariantNestedResults, Extracted: 4, Dropped: 1, Committed: 4},
			wantStatus:  http.StatusOK,
			wantBody: responseBody{
				Status:    "ok",
				Variant:   "NestedResults",
				Extracted: 4,
				Dropped:   1,
				Committed: 4,
				Message:   "dataset polled",
			},
		},
		"empty dataset": {
			wantPoll:    true,
			pollOutcome: ingest.Outcome{Variant: decoder.VariantNestedResults},
			wantStatus:  http.StatusOK,
			wantBody:    responseBody{Status: "ok", Variant: "NestedResults", Message: "dataset polled"},
		},
		"poll already running": {
			wantPoll:   true,
			pollErr:    platform.ErrAlreadyRunning,
			wantStatus: http.StatusConflict,
			wantBody: responseBody{
				Status: "error",
				Error:  "can't poll dataset: " + platform.ErrAlreadyRunning.Error(),
			},
		},
		"upstream unavailable": {
			wantPoll:    true,
			pollOutcome: ingest.Outcome{Variant: decoder.VariantNestedResults},
			pollErr:     platform.WrapError(platform.KindUpstreamUnavailable, assert.AnError),
			wantStatus:  http.StatusInternalServerError,
			wantBody: responseBody{
				Status:  "error",
				Variant: "NestedResults",
				Kind:    "UpstreamUnavailable",
				Error:   "can't poll dataset: UpstreamUnavailable: " + assert.AnError.Error(),
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ingestor := mocks.NewIngestor(t)
			poller := mocks.NewPoller(t)

			ingestor.On("Ingest", mock.Anything, ingest.PriceHistoryWebscrape, []byte(payload)).
				Return(tt.ingestOutcome, nil).
				Once()
			if tt.wantPoll {
				poller.On("PollOnce", mock.Anything).Return(tt.pollOutcome, tt.pollErr).Once()
			}

			rec := serve(newRoutes(ingestor, poller, nil), http.MethodPost, "/price-history-webscrape", payload)

			assert.Equal(t, tt.wantStatus, rec.Code, "should return correct status")
			assert.Equal(t, tt.wantBody, decodeBody(t, rec.Body), "should return correct body")
			if !tt.wantPoll {
				poller.AssertNotCalled(t, "PollOnce", mock.Anything)
			}
		})
	}
}

func TestUnitBodyTooLarge(t *testing.T) {
	ingestor := mocks.NewIngestor(t)

	payload := `{"data":"` + strings.Repeat("x", handler.MaxBodySize) + `"}`
	rec := serve(newRoutes(ingestor, mocks.NewPoller(t), nil), http.MethodPost, "/price-history-cards", payload)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, "should reject large body")
	ingestor.AssertNotCalled(t, "Ingest", mock.Anything, mock.Anything, mock.Anything)
}

func TestUnitRequestID(t *testing.T) {
	routes := newRoutes(mocks.NewIngestor(t), mocks.NewPoller(t), nil)

	t.Run("generated", func(t *testing.T) {
		rec := serve(routes, http.MethodGet, "/", "")

		assert.NotEmpty(t, rec.Header().Get(handler.RequestIDHeader), "should set request ID")
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(handler.RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()

		routes.ServeHTTP(rec, req)

		assert.Equal(t, "abc-123", rec.Header().Get(handler.RequestIDHeader), "should reuse incoming request ID")
	})
}

func TestUnitRequestScopedLogger(t *testing.T) {
	var out bytes.Buffer
	log := zerolog.New(&out)

	ingestor := mocks.NewIngestor(t)
	ingestor.On("Ingest", mock.Anything, ingest.Webhook, mock.Anything).
		Run(func(args mock.Arguments) {
			zerolog.Ctx(args.Get(0).(context.Context)).Info().Msg("inside ingest")
		}).
		Return(ingest.Outcome{Variant: decoder.VariantTestPing}, nil).
		Once()

	routes := handler.NewHTTPHandler(ingestor, mocks.NewPoller(t), nil, &log).Routes()
	serve(routes, http.MethodPost, "/webhook", `{"data":"test"}`)

	assert.Contains(t, out.String(), `"requestId"`, "should log request ID")
	assert.Contains(t, out.String(), `"endpoint":"POST /webhook"`, "should log endpoint")
	assert.Contains(t, out.String(), "inside ingest", "should pass logger in request context")
	assert.Contains(t, out.String(), "request handled", "should log access")
}

func TestUnitRecoverer(t *testing.T) {
	ingestor := mocks.NewIngestor(t)
	ingestor.On("Ingest", mock.Anything, ingest.Webhook, mock.Anything).
		Run(func(mock.Arguments) { panic("boom") }).
		Return(ingest.Outcome{}, nil).
		Once()

	rec := serve(newRoutes(ingestor, mocks.NewPoller(t), nil), http.MethodPost, "/webhook", `{}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code, "should turn panic into 500")
	assert.Equal(t, "error", decodeBody(t, rec.Body).Status, "should return error body")
}

func TestUnitMetricsRoute(t *testing.T) {
	routes := newRoutes(mocks.NewIngestor(t), mocks.NewPoller(t), metrics.New())

	serve(routes, http.MethodGet, "/", "")
	rec := serve(routes, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, rec.Code, "should expose metrics")
	assert.Contains(t, rec.Body.String(), `ingest_http_requests_total{method="GET",route="GET /{$}",status="2xx"} 1`,
		"should count handled request")
}

func newRoutes(ingestor *mocks.Ingestor, poller *mocks.Poller, m *metrics.Metrics) http.Handler {
	return handler.NewHTTPHandler(ingestor, poller, m, &logger).Routes()
}

func serve(routes http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	return rec
}

func decodeBody(t *testing.T, body io.Reader) responseBody {
	t.Helper()

	var resp responseBody
	require.NoError(t, json.NewDecoder(body).Decode(&resp), "response should be valid JSON")

	return resp
}
