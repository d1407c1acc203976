package acquire

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	UserAgent = "event-scout/1.0 (github.com/pfrederiksen/event-scout)"
	Timeout   = 30 * time.Second
)

// HTTP fetches pages with a plain GET request.
// It suits sources that render listings on the server; scrolling is not possible, so only the
// initial delay of the readiness policy is honored.
type HTTP struct {
	client *http.Client
}

// NewHTTP creates an HTTP acquirer
func NewHTTP() *HTTP {
	return &HTTP{
		client: &http.Client{
			Timeout: Timeout,
		},
	}
}

// Acquire fetches the page body
func (h *HTTP) Acquire(ctx context.Context, url string, r Readiness) (string, error) {
	if r.InitialDelay > 0 {
		if err := sleep(ctx, r.InitialDelay); err != nil {
			return "", fmt.Errorf("%w: %v", ErrAcquisition, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %v", ErrAcquisition, err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: fetching page: %v", ErrAcquisition, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: unexpected status code: %d", ErrAcquisition, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading body: %v", ErrAcquisition, err)
	}

	return string(body), nil
}

// sleep blocks for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
