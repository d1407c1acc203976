package acquire

import (
	"context"
	"errors"
	"time"
)

// ErrAcquisition marks a page that could not be acquired
var ErrAcquisition = errors.New("page acquisition failed")

// Readiness controls how long to wait for dynamic content before the page is captured.
// Waits are fixed sleeps, not polling against a readiness signal.
type Readiness struct {
	ScrollSteps  int           `json:"scroll_steps" mapstructure:"scroll_steps" yaml:"scroll_steps"`
	SettleDelay  time.Duration `json:"settle_delay" mapstructure:"settle_delay" yaml:"settle_delay"`
	InitialDelay time.Duration `json:"initial_delay" mapstructure:"initial_delay" yaml:"initial_delay"`
}

// DefaultReadiness waits five seconds after navigation, then scrolls five times
// waiting three seconds after each scroll.
var DefaultReadiness = Readiness{
	ScrollSteps:  5,
	SettleDelay:  3 * time.Second,
	InitialDelay: 5 * time.Second,
}

// IsZero reports whether no readiness policy was configured
func (r Readiness) IsZero() bool {
	return r == Readiness{}
}

// Total returns the fixed time spent waiting for a page
func (r Readiness) Total() time.Duration {
	return r.InitialDelay + time.Duration(r.ScrollSteps)*r.SettleDelay
}

// Acquirer returns the rendered content of a page
type Acquirer interface {
	Acquire(ctx context.Context, url string, r Readiness) (string, error)
}
