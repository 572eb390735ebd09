package upstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/accountgate/accountgate/internal/models"
	"github.com/accountgate/accountgate/pkg/metrics"
)

// DefaultTimeout matches the upstream contract: in-flight calls fail after
// ten seconds with ErrTimeout and are never retried on timeout.
const DefaultTimeout = 10 * time.Second

var (
	// ErrTimeout marks a request that exceeded the client timeout.
	ErrTimeout = errors.New("upstream: request timed out")
	// ErrSessionExpired marks an irrecoverable authorization failure: the
	// refresh protocol ran and could not mint a new token pair. The token
	// store has already been cleared; the caller owns the redirect.
	ErrSessionExpired = errors.New("upstream: session expired")
)

// Client is one configured HTTP client against the upstream REST API.
// The public client carries no credentials; Session wraps a Client for
// bearer-authenticated calls.
type Client struct {
	base string
	http *http.Client
	kind string
}

// NewClient builds an upstream client with a fixed base URL and timeout.
// kind labels metrics ("public" or "private").
func NewClient(baseURL string, timeout time.Duration, kind string) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
		kind: kind,
	}
}

// Response is the decoded outcome of an upstream call. Body is fully read so
// requests can be replayed and envelopes decoded more than once.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool { return r.Status >= 200 && r.Status < 300 }

// Error decodes the upstream error envelope from the body. Unanticipated
// shapes come back as the generic unknown-error envelope.
func (r *Response) Error() models.ErrorEnvelope {
	var env models.ErrorEnvelope
	if err := env.UnmarshalJSON(r.Body); err != nil || (env.Message == "" && len(env.Fields) == 0) {
		return models.ErrorEnvelope{Message: models.UnknownErrorMessage}
	}
	return env
}

// Do sends one request. body may be nil; contentType is ignored when it is.
// Extra headers (e.g. Authorization) are applied last so they win.
func (c *Client) Do(ctx context.Context, method, path string, body []byte, contentType string, header http.Header) (*Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, vs := range header {
		req.Header[k] = vs
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(c.kind, "error").Inc()
		if isTimeout(err) {
			return nil, fmt.Errorf("%s %s: %w", method, path, ErrTimeout)
		}
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	metrics.UpstreamRequests.WithLabelValues(c.kind, strconv.Itoa(resp.StatusCode)).Inc()
	return &Response{Status: resp.StatusCode, Header: resp.Header.Clone(), Body: b}, nil
}

func isTimeout(err error) bool {
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
