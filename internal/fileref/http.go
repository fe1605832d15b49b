package fileref

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTP resolves http(s) URLs by fetching them.
type HTTP struct {
	client *http.Client
}

// NewHTTP creates an HTTP resolver with a bounded request timeout.
func NewHTTP() *HTTP {
	return &HTTP{client: &http.Client{Timeout: 60 * time.Second}}
}

// Resolve fetches the URL. Size is the Content-Length header, -1 when the
// server does not report one.
func (h *HTTP) Resolve(ctx context.Context, ref string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, 0, fmt.Errorf("fetch %s: http status %d", ref, resp.StatusCode)
	}
	return resp.Body, resp.ContentLength, nil
}
