package build

import (
	"context"

	"github.com/cpascale43/minipack/internal/logging"
)

// Rebuilder serializes pipeline runs for watch mode. Triggers arriving
// while a build is in flight collapse into a single pending rebuild: the
// trigger channel has capacity one, and extra sends are dropped.
type Rebuilder struct {
	pipeline *Pipeline
	logger   logging.Logger
	trigger  chan struct{}
}

// NewRebuilder creates a rebuilder around the given pipeline
func NewRebuilder(pipeline *Pipeline, logger logging.Logger) *Rebuilder {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Rebuilder{
		pipeline: pipeline,
		logger:   logger.WithComponent("rebuilder"),
		trigger:  make(chan struct{}, 1),
	}
}

// Trigger requests a rebuild. Never blocks: if a rebuild is already
// pending the request is absorbed into it.
func (r *Rebuilder) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// Run processes triggers until the context is cancelled. Each trigger runs
// one full pipeline build; a failed build is reported and the loop keeps
// going so the next change can fix it.
func (r *Rebuilder) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.trigger:
			result := r.pipeline.Build(ctx)
			if result.Error != nil {
				r.logger.Warn(ctx, result.Error, "rebuild failed, waiting for next change")
			}
		}
	}
}
