package llms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kadirpekel/sitesmith/pkg/convo"
)

// deadlineProvider wraps a Provider with a per-call timeout. Expiry is
// reported as a service failure so callers take the graceful path instead
// of hanging a turn.
type deadlineProvider struct {
	Provider
	timeout time.Duration
}

// WithDeadline bounds every Generate call on the given provider. A zero or
// negative timeout returns the provider unchanged.
func WithDeadline(p Provider, timeout time.Duration) Provider {
	if timeout <= 0 {
		return p
	}
	return &deadlineProvider{Provider: p, timeout: timeout}
}

func (d *deadlineProvider) Generate(ctx context.Context, system, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	text, err := d.Provider.Generate(ctx, system, prompt)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		return "", fmt.Errorf("%w: generation timed out after %s", convo.ErrServiceUnavailable, d.timeout)
	}
	return text, err
}
