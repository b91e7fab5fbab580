package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/ryanlhy/webhook-ingest/internal/decoder"
	"github.com/ryanlhy/webhook-ingest/internal/ingest"
	"github.com/ryanlhy/webhook-ingest/internal/platform"
	"github.com/ryanlhy/webhook-ingest/internal/platform/metrics"
)

//go:generate mockery --name Ingestor --filename ingestor.go
//go:generate mockery --name Poller --filename poller.go

// MaxBodySize is maximum accepted request body size.
const MaxBodySize = 10 << 20

const (
	homeMessage    = "Hello World! This is a webhook server"
	myHomeMessage  = "Hello World! This is a webhook server at /home route!"
	testAckMessage = "test event received"
)

// Ingestor ingests payloads received by endpoints.
type Ingestor interface {
	Ingest(ctx context.Context, endpoint ingest.Endpoint, raw []byte) (ingest.Outcome, error)
}

// Poller runs single poll cycle of external dataset.
type Poller interface {
	PollOnce(ctx context.Context) (ingest.Outcome, error)
}

// HTTPHandler serves ingestion endpoints.
type HTTPHandler struct {
	ingestor Ingestor
	poller   Poller
	metrics  *metrics.Metrics
	logger   *zerolog.Logger
}

// NewHTTPHandler returns new HTTPHandler. Metrics may be nil.
func NewHTTPHandler(ingestor Ingestor, poller Poller, m *metrics.Metrics, logger *zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		ingestor: ingestor,
		poller:   poller,
		metrics:  m,
		logger:   logger,
	}
}

// Routes returns http.Handler with all endpoints and middleware.
func (h *HTTPHandler) Routes() http.Handler {
	mux := http.NewServeMux()

	h.handle(mux, "GET /{$}", h.text(homeMessage))
	h.handle(mux, "GET /myhome", h.text(myHomeMessage))
	h.handle(mux, "GET /metrics", h.metrics.Handler())
	h.handle(mux, "POST /webhook", h.ingest(ingest.Webhook))
	h.handle(mux, "POST /price-history-cards", h.ingest(ingest.PriceHistoryCards))
	h.handle(mux, "POST /price-history-cards-apify", h.ingest(ingest.PriceHistoryCardsApify))
	h.handle(mux, "POST /price-history-webscrape", http.HandlerFunc(h.webscrape))

	return h.recoverer(h.requestID(mux))
}

// handle registers handler instrumented with access log and metrics.
func (h *HTTPHandler) handle(mux *http.ServeMux, pattern string, handler http.Handler) {
	mux.Handle(pattern, h.instrument(pattern, handler))
}

func (h *HTTPHandler) text(message string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, message)
	})
}

func (h *HTTPHandler) ingest(endpoint ingest.Endpoint) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := readBody(w, r)
		if err != nil {
			h.writeError(w, r, err, response{})
			return
		}

		outcome, err := h.ingestor.Ingest(r.Context(), endpoint, raw)
		if err != nil {
			h.writeError(w, r, err, newResponse(outcome))
			return
		}

		resp := newResponse(outcome)
		if outcome.Variant == decoder.VariantTestPing {
			resp.Message = testAckMessage
		}

		writeJSON(w, http.StatusOK, resp)
	})
}

// webscrape acknowledges test events and triggers one poll cycle for any other payload.
func (h *HTTPHandler) webscrape(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(w, r)
	if err != nil {
		h.writeError(w, r, err, response{})
		return
	}

	outcome, err := h.ingestor.Ingest(r.Context(), ingest.PriceHistoryWebscrape, raw)
	if err == nil && outcome.Variant == decoder.VariantTestPing {
		resp := newResponse(outcome)
		resp.Message = testAckMessage
		writeJSON(w, http.StatusOK, resp)
		return
	}

	outcome, err = h.poller.PollOnce(r.Context())
	if err != nil {
		h.writeError(w, r, fmt.Errorf("can't poll dataset: %w", err), newResponse(outcome))
		return
	}

	resp := newResponse(outcome)
	resp.Message = "dataset polled"
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error, resp response) {
	status := statusOf(err)

	resp.Status = "error"
	resp.Error = err.Error()
	if kind, ok := platform.KindOf(err); ok {
		resp.Kind = string(kind)
	}

	logger := zerolog.Ctx(r.Context())
	event := logger.Error()
	if status < http.StatusInternalServerError {
		event = logger.Warn()
	}
	event.Err(err).Int("status", status).Msg("request failed")

	writeJSON(w, status, resp)
}

type response struct {
	Status    string `json:"status"`
	Variant   string `json:"variant,omitempty"`
	Extracted int    `json:"extracted"`
	Dropped   int    `json:"dropped"`
	Committed int    `json:"committed"`
	FailedAt  *int   `json:"failedAt,omitempty"`
	Kind      string `json:"kind,omitempty"`
	Error     string `json:"error,omitempty"`
	Message   string `json:"message,omitempty"`
}

func newResponse(outcome ingest.Outcome) response {
	resp := response{
		Status:    "ok",
		Extracted: outcome.Extracted,
		Dropped:   outcome.Dropped,
		Committed: outcome.Committed,
		FailedAt:  outcome.FailedAt,
	}
	if outcome.Variant != decoder.VariantUnknown {
		resp.Variant = outcome.Variant.String()
	}

	return resp
}

var errBodyTooLarge = errors.New("request body too large")

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, fmt.Errorf("%w: limit is %d bytes", errBodyTooLarge, maxBytesErr.Limit)
		}
		return nil, fmt.Errorf("can't read request body: %w", err)
	}

	return raw, nil
}

// statusOf maps error to HTTP status code.
func statusOf(err error) int {
	switch {
	case errors.Is(err, errBodyTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, platform.ErrAlreadyRunning):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
