package catalog

import (
	"context"
	"sync"
)

type inMemSource struct {
	mu    sync.RWMutex
	plans []Plan
}

// NewInMemSource returns a Source serving a deep copy of the given plans.
// Panics if no plans are provided so the catalog always has at least one plan.
func NewInMemSource(plans ...Plan) Source {
	if len(plans) < 1 {
		panic("catalog: at least one plan is required")
	}

	plansCopy := make([]Plan, len(plans))
	for i, plan := range plans {
		plansCopy[i] = plan.clone()
	}

	return &inMemSource{plans: plansCopy}
}

// Load returns a copy of the stored plans.
func (s *inMemSource) Load(ctx context.Context) ([]Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plansCopy := make([]Plan, len(s.plans))
	for i, plan := range s.plans {
		plansCopy[i] = plan.clone()
	}
	return plansCopy, nil
}
