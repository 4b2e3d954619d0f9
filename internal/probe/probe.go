// Package probe implements seconds-scale liveness checks for the two
// external services, distinct from the minutes-scale pipeline budget.
package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Result is the caller-facing outcome of one connectivity check.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Prober checks whether a service endpoint is reachable.
type Prober struct {
	client *http.Client
}

// NewProber creates a prober. The http.Client should carry a short
// timeout; probes must fail fast.
func NewProber(client *http.Client) *Prober {
	return &Prober{client: client}
}

// CheckOCR probes an OCR service root. 405 means the endpoint exists but
// rejects GET, which still proves the service is up.
func (p *Prober) CheckOCR(ctx context.Context, serviceURL string) Result {
	return p.check(ctx, serviceURL, "OCR service", func(status int) bool {
		return (status >= 200 && status < 300) || status == http.StatusMethodNotAllowed
	})
}

// CheckInpaint probes an inpaint service root. The root path of an
// IOPaint deployment may 404 while the API itself is live, so 404 and 405
// both count as reachable.
func (p *Prober) CheckInpaint(ctx context.Context, serviceURL string) Result {
	return p.check(ctx, serviceURL, "inpaint service", func(status int) bool {
		return (status >= 200 && status < 300) ||
			status == http.StatusNotFound ||
			status == http.StatusMethodNotAllowed
	})
}

func (p *Prober) check(ctx context.Context, serviceURL, name string, reachable func(int) bool) Result {
	healthURL := strings.TrimRight(serviceURL, "/") + "/"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		return Result{Message: fmt.Sprintf("invalid %s URL: %v", name, err)}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return Result{Message: classifyProbeError(name, err)}
	}
	defer resp.Body.Close()

	if reachable(resp.StatusCode) {
		return Result{Success: true, Message: fmt.Sprintf("%s is reachable", name)}
	}
	return Result{Message: fmt.Sprintf("%s returned status %d", name, resp.StatusCode)}
}

func classifyProbeError(name string, err error) string {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Sprintf("connection to %s timed out", name)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("connection to %s timed out", name)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return fmt.Sprintf("cannot connect to %s, check that it is running", name)
	}
	return fmt.Sprintf("connection to %s failed: %v", name, err)
}
