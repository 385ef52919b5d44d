package preview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const probeBytes = 1024

var ErrUnreachable = errors.New("object unreachable")

// HTTPProber reads the head of an object with a ranged GET.
type HTTPProber struct {
	client *http.Client
}

// NewHTTPProber returns a prober whose requests are traced and bounded by timeout.
func NewHTTPProber(timeout time.Duration) *HTTPProber {
	return &HTTPProber{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (p *HTTPProber) Probe(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build probe request: %w", err)
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=0-%d", probeBytes-1))

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return nil, fmt.Errorf("%w: status %d", ErrUnreachable, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, probeBytes))
}
