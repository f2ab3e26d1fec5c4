package plan

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrPlanNotFound is returned when a plan id is not in the catalog.
	ErrPlanNotFound = errors.New("plan not found")
	// ErrFailedToLoadPlans is returned when the source cannot produce the catalog.
	ErrFailedToLoadPlans = errors.New("failed to load plans")
	// ErrInvalidPlanConfiguration is returned for internally inconsistent catalogs.
	ErrInvalidPlanConfiguration = errors.New("invalid plan configuration")
)

// Source loads the plan catalog.
type Source interface {
	Load(ctx context.Context) (map[string]Plan, error)
}

// Catalog is an immutable in-process view of the available plans.
type Catalog struct {
	plans map[string]Plan
}

// NewCatalog loads and validates the catalog from the source. The catalog is
// fixed for the process lifetime; plan edits require a restart.
func NewCatalog(ctx context.Context, src Source) (*Catalog, error) {
	if src == nil {
		panic("plan: Source is required")
	}

	plans, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	for id, p := range plans {
		if p.ID != id {
			return nil, errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan ID mismatch: map key %s != plan.ID %s", id, p.ID))
		}
		if p.Price.Amount < 0 {
			return nil, errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan %s has negative price", id))
		}
	}

	return &Catalog{plans: plans}, nil
}

// ByID returns the plan with the given id.
func (c *Catalog) ByID(id string) (Plan, error) {
	p, ok := c.plans[id]
	if !ok {
		return Plan{}, ErrPlanNotFound
	}
	return p, nil
}

// All returns every plan ordered by price ascending.
func (c *Catalog) All() []Plan {
	out := make([]Plan, 0, len(c.plans))
	for _, p := range c.plans {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price.Amount < out[j].Price.Amount })
	return out
}
