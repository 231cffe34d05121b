package warmer

import (
	"context"
	"fmt"
	"time"

	"smoothies/internal"
)

type Catalog interface {
	Options() ([]internal.CatalogEntry, error)
}

type Lookup interface {
	LookupAll(ctx context.Context, entries []internal.CatalogEntry) []internal.NutritionResult
}

// Service periodically looks up every catalog fruit so the nutrition cache
// stays populated.
type Service struct {
	catalog  Catalog
	lookup   Lookup
	interval time.Duration
}

type CycleResult struct {
	Looked int
	Cached int
	Failed int
}

func NewService(cat Catalog, lookup Lookup, interval time.Duration) *Service {
	return &Service{catalog: cat, lookup: lookup, interval: interval}
}

func (s *Service) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return nil
	}
	for {
		if _, err := s.RunCycle(ctx); err != nil {
			fmt.Printf("warmer cycle error: %v\n", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.interval):
		}
	}
}

func (s *Service) RunCycle(ctx context.Context) (CycleResult, error) {
	opts, err := s.catalog.Options()
	if err != nil {
		return CycleResult{}, err
	}

	var res CycleResult
	for _, r := range s.lookup.LookupAll(ctx, opts) {
		res.Looked++
		switch {
		case !r.OK():
			res.Failed++
			fmt.Printf("warmer lookup failed label=%q searchTerm=%q status=%d err=%v\n", r.Label, r.SearchTerm, r.Status, r.Err)
		case r.Cached:
			res.Cached++
		}
	}

	fmt.Printf("warmer cycle done looked=%d cached=%d failed=%d\n", res.Looked, res.Cached, res.Failed)
	return res, nil
}
