package audit

import (
	"context"

	"github.com/google/mweb-analysis-tools/internal/model"
)

// Engine runs a performance audit of a single page and returns per-entity
// third-party measurements in the order the engine chooses. Downstream
// stages must not reorder, filter, or deduplicate the samples.
type Engine interface {
	// Run audits the page at pageURL. It blocks until the measurement
	// completes or ctx is cancelled.
	Run(ctx context.Context, pageURL string) ([]model.EntitySample, error)
}
