package warmer

import (
	"context"
	"errors"
	"testing"
	"time"

	"smoothies/internal"
)

type fakeCatalog struct {
	opts []internal.CatalogEntry
	err  error
}

func (f fakeCatalog) Options() ([]internal.CatalogEntry, error) { return f.opts, f.err }

type fakeLookup struct {
	calls int
}

func (f *fakeLookup) LookupAll(_ context.Context, entries []internal.CatalogEntry) []internal.NutritionResult {
	f.calls++
	out := make([]internal.NutritionResult, len(entries))
	for i, e := range entries {
		out[i] = internal.NutritionResult{Label: e.Label, SearchTerm: e.ResolvedSearchTerm(), Status: 200, Body: []byte(`{}`)}
		switch e.Label {
		case "Durian":
			out[i].Status, out[i].Body, out[i].Err = 404, nil, errors.New("not found")
		case "Kiwi":
			out[i].Cached = true
		}
	}
	return out
}

func TestRunCycleCounts(t *testing.T) {
	cat := fakeCatalog{opts: []internal.CatalogEntry{{Label: "Kiwi"}, {Label: "Durian"}, {Label: "Mango"}}}
	svc := NewService(cat, &fakeLookup{}, time.Second)

	res, err := svc.RunCycle(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Looked != 3 || res.Cached != 1 || res.Failed != 1 {
		t.Fatalf("res=%+v", res)
	}
}

func TestRunCycleCatalogError(t *testing.T) {
	svc := NewService(fakeCatalog{err: errors.New("db closed")}, &fakeLookup{}, time.Second)
	if _, err := svc.RunCycle(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	lookup := &fakeLookup{}
	svc := NewService(fakeCatalog{opts: []internal.CatalogEntry{{Label: "Kiwi"}}}, lookup, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := svc.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if lookup.calls != 1 {
		t.Fatalf("calls=%d", lookup.calls)
	}
}

func TestRunDisabled(t *testing.T) {
	lookup := &fakeLookup{}
	svc := NewService(fakeCatalog{}, lookup, 0)
	if err := svc.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if lookup.calls != 0 {
		t.Fatalf("calls=%d", lookup.calls)
	}
}
