// Package sampler produces one Activity observation per poll tick.
package sampler

import (
	"context"
	"time"

	"github.com/timewarden/timewarden/internal/model"
)

// Sampler observes the current foreground application and idle state.
// Implementations return best-effort data: fields they cannot read are left
// nil on the Activity rather than reported as errors.
type Sampler interface {
	Sample(ctx context.Context, idleThreshold time.Duration) (model.Activity, error)
}
