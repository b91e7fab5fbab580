package fetcher

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Option is custom configuration of Fetcher.
type Option func(f *Fetcher)

// Fetcher builds http requests and fetches JSON documents via http.
type Fetcher struct {
	client    *http.Client
	userAgent string
	token     string
	limiter   *rate.Limiter
}

// NewFetcher returns new Fetcher. Requests are not rate limited unless WithLimiter is provided.
func NewFetcher(client *http.Client, userAgent string, ops ...Option) *Fetcher {
	f := &Fetcher{
		client:    client,
		userAgent: userAgent,
		limiter:   rate.NewLimiter(rate.Inf, 1),
	}

	for _, op := range ops {
		op(f)
	}

	return f
}

// FetchFile returns ReadCloser with JSON document fetched from provided url or error.
// Request is sent exactly once. The caller is responsible for closing returned ReadCloser.
func (f *Fetcher) FetchFile(ctx context.Context, url string) (io.ReadCloser, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("can't build http request: %w", err)
	}

	req.Header.Add("Accept", "application/json")
	req.Header.Add("Accept-Encoding", "gzip")
	req.Header.Add("User-Agent", f.userAgent)
	if f.token != "" {
		req.Header.Add("Authorization", "Bearer "+f.token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("can't get http response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: got %s", ErrStatusNotOK, resp.Status)
	}

	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %w", ErrContentTypeNotSupported, err)
	}

	switch {
	case mediaType == "application/json" && resp.Header.Get("Content-Encoding") == "gzip":
		return decompressResponse(resp.Body)
	case mediaType == "application/json":
		return resp.Body, nil
	case mediaType == "application/gzip" || mediaType == "application/zip":
		return decompressResponse(resp.Body)
	default:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrContentTypeNotSupported, mediaType)
	}
}

// decompressResponse returns io.ReadCloser with decompressed http response and error.
func decompressResponse(response io.ReadCloser) (io.ReadCloser, error) {
	decompressed, err := gzip.NewReader(response)
	if err != nil {
		_ = response.Close()
		return nil, fmt.Errorf("can't decompress response: %w", err)
	}

	return &decompressedReadCloser{
		compressed:   response,
		decompressed: decompressed,
	}, nil
}

// decompressedReadCloser wraps decompressed Reader and compressed ReadCloser.
// It reads from decompressed Reader, but closes compressed ReadCloser.
type decompressedReadCloser struct {
	compressed   io.ReadCloser
	decompressed io.Reader
}

// Read reads uncompressed bytes from underlying Reader into p.
func (r decompressedReadCloser) Read(p []byte) (n int, err error) {
	return r.decompressed.Read(p)
}

// Close closes underlying compressed ReadCloser.
func (r decompressedReadCloser) Close() error {
	return r.compressed.Close()
}

// WithToken sets bearer token sent with every request.
func WithToken(token string) Option {
	return func(f *Fetcher) {
		f.token = token
	}
}

// WithLimiter sets limiter awaited before every request.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(f *Fetcher) {
		if limiter != nil {
			f.limiter = limiter
		}
	}
}

// PerMinute returns limiter allowing n requests per minute, nil when n is not positive.
func PerMinute(n int) *rate.Limiter {
	if n <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), n)
}
