package plan

import "context"

// MemorySource serves a fixed set of plans from memory. Useful for tests and
// local development without a database.
type MemorySource struct {
	plans map[string]Plan
}

// NewMemorySource creates a source from the given plans keyed by plan ID.
func NewMemorySource(plans ...Plan) *MemorySource {
	m := make(map[string]Plan, len(plans))
	for _, p := range plans {
		m[p.ID] = p
	}
	return &MemorySource{plans: m}
}

// Load returns a copy of the configured plans.
func (s *MemorySource) Load(_ context.Context) (map[string]Plan, error) {
	out := make(map[string]Plan, len(s.plans))
	for id, p := range s.plans {
		cp := p
		if p.Features != nil {
			cp.Features = append([]string(nil), p.Features...)
		}
		out[id] = cp
	}
	return out, nil
}
