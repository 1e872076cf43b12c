// Package source obtains raw CSV text from files, URLs or uploads.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ritzau/influence-graph/pkg/logging"
)

// Source produces the full CSV text in one go.
type Source interface {
	// Name identifies the source in logs and status events.
	Name() string

	// Fetch returns the complete text. It respects ctx for cancellation.
	Fetch(ctx context.Context) (string, error)
}

// ErrUnavailable matches every fetch failure.
var ErrUnavailable = errors.New("source unavailable")

// Error is a failed fetch. Retryable is false when retrying cannot help,
// e.g. a 404 from a server.
type Error struct {
	Source    string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("source %s unavailable: %v", e.Source, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{ErrUnavailable, e.Err}
}

// IsRetryable reports whether err is a fetch failure worth retrying.
func IsRetryable(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Retryable
}

// New picks HTTP for http(s) locations and File for everything else.
func New(location string) Source {
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return &HTTP{URL: location}
	}
	return &File{Path: location}
}

// File reads a local file.
type File struct {
	Path string
}

func (f *File) Name() string { return f.Path }

func (f *File) Fetch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &Error{Source: f.Name(), Retryable: true, Err: err}
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", &Error{Source: f.Name(), Retryable: true, Err: err}
	}
	logging.New("source").Debug("read file", "path", f.Path, "bytes", len(data))
	return decode(data), nil
}

// MaxBodySize is the default cap on an HTTP response body.
const MaxBodySize = 64 << 20

// HTTP fetches a URL. Responses outside 2xx are failures, and so are bodies
// larger than MaxBytes: a cut-off CSV would still parse.
type HTTP struct {
	URL      string
	Client   *http.Client // a client with a 30s timeout when nil
	MaxBytes int64        // MaxBodySize when zero
}

func (h *HTTP) Name() string { return h.URL }

func (h *HTTP) Fetch(ctx context.Context) (string, error) {
	client := h.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return "", &Error{Source: h.Name(), Err: err}
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")

	resp, err := client.Do(req)
	if err != nil {
		return "", &Error{Source: h.Name(), Retryable: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &Error{
			Source:    h.Name(),
			Retryable: retryableStatus(resp.StatusCode),
			Err:       fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	limit := h.MaxBytes
	if limit <= 0 {
		limit = MaxBodySize
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return "", &Error{Source: h.Name(), Retryable: true, Err: fmt.Errorf("reading body: %w", err)}
	}
	if int64(len(data)) > limit {
		return "", &Error{Source: h.Name(), Err: fmt.Errorf("response body exceeds %d bytes", limit)}
	}
	logging.New("source").Debug("fetched url", "url", h.URL, "status", resp.StatusCode, "bytes", len(data))
	return decode(data), nil
}

func retryableStatus(code int) bool {
	return code >= 500 || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout
}

// Text is text that was already received, e.g. an upload.
type Text struct {
	Label string
	Body  string
}

func (t *Text) Name() string {
	if t.Label == "" {
		return "text"
	}
	return t.Label
}

func (t *Text) Fetch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &Error{Source: t.Name(), Retryable: true, Err: err}
	}
	return strings.TrimPrefix(t.Body, bom), nil
}

const bom = "\uFEFF"

func decode(data []byte) string {
	return strings.TrimPrefix(string(data), bom)
}
