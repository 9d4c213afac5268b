package atcf

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/vortex-track/internal/track"
)

// Fetcher retrieves deck files over HTTP, transparently decompressing
// gzip payloads. Transport failures wrap ErrConnectivity so callers can
// distinguish them from bad input.
type Fetcher struct {
	Client *http.Client
	Logger *slog.Logger
}

// NewFetcher returns a fetcher with the given timeout (0 means 30s).
func NewFetcher(timeout time.Duration, logger *slog.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		Client: &http.Client{Timeout: timeout},
		Logger: logger,
	}
}

// Fetch downloads a URL and returns the decompressed body.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request for %s: %v", track.ErrConnectivity, url, err)
	}

	start := time.Now()
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", track.ErrConnectivity, url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", track.ErrNotFound, url)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: fetch %s: status %d", track.ErrConnectivity, url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", track.ErrConnectivity, url, err)
	}

	body, err = maybeGunzip(body)
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", url, err)
	}

	f.Logger.Debug("deck fetched", "url", url, "bytes", len(body), "elapsed", time.Since(start))
	return body, nil
}

// maybeGunzip sniffs the gzip magic bytes rather than trusting the URL
// suffix; some NHC mirrors serve pre-decompressed files.
func maybeGunzip(body []byte) ([]byte, error) {
	if len(body) < 2 || body[0] != 0x1f || body[1] != 0x8b {
		return body, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
