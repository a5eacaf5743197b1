package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	httpAttempts = 3
	// MaxDownloadBytes caps a single image download.
	MaxDownloadBytes = 50 << 20
)

// HTTPSource downloads http(s) references with bounded retries.
type HTTPSource struct {
	client  *http.Client
	backoff time.Duration
}

// HTTPOption customises an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithBackoff sets the base delay between attempts; attempt n waits n*d.
func WithBackoff(d time.Duration) HTTPOption {
	return func(s *HTTPSource) { s.backoff = d }
}

// WithTimeout sets the overall per-request client timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(s *HTTPSource) { s.client.Timeout = d }
}

// NewHTTPSource creates an HTTP source tuned for single image downloads.
func NewHTTPSource(opts ...HTTPOption) *HTTPSource {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		MaxResponseHeaderBytes: 4096,
	}

	s := &HTTPSource{
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		backoff: time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open implements ImageSource. 5xx responses and transport errors are
// retried; 4xx responses are not. A 404 maps to ErrNotFound.
func (s *HTTPSource) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", "image/jpeg, image/png, image/webp, image/gif, */*")
	req.Header.Set("User-Agent", "photo-curator/1.0")

	var lastErr error
	for attempt := 0; attempt < httpAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * s.backoff):
			}
		}

		resp, err := s.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusOK {
			return limitedBody{Reader: io.LimitReader(resp.Body, MaxDownloadBytes), Closer: resp.Body}, nil
		}

		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, fmt.Errorf("%w: client error: status code %d", ErrNotFound, resp.StatusCode)
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return nil, fmt.Errorf("client error: status code %d", resp.StatusCode)
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("server error: status code %d", resp.StatusCode)
		default:
			lastErr = fmt.Errorf("unexpected status code %d", resp.StatusCode)
		}
	}

	return nil, fmt.Errorf("failed to fetch image after %d attempts: %w", httpAttempts, lastErr)
}

type limitedBody struct {
	io.Reader
	io.Closer
}
