package catalog

import (
	"path/filepath"
	"testing"

	"smoothies/internal/storage"
)

func openTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestBootstrapSeedsAndOverrides(t *testing.T) {
	db := openTestDB(t)
	boot := NewBootstrapService(db)

	res, err := boot.Bootstrap(DefaultSearchTerms)
	if err != nil {
		t.Fatal(err)
	}
	if res.Seeded != len(DefaultFruits) {
		t.Fatalf("seeded=%d", res.Seeded)
	}
	if res.Filled != int64(len(DefaultFruits)) {
		t.Fatalf("filled=%d", res.Filled)
	}
	if res.Overrides != len(DefaultSearchTerms) {
		t.Fatalf("overrides=%d", res.Overrides)
	}

	// Second run is a no-op apart from re-applying overrides.
	res, err = boot.Bootstrap(map[string]string{"Jackfruit": "Jack Fruit", "Durian": "Durians"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Seeded != 0 || res.Filled != 0 || res.Overrides != 1 {
		t.Fatalf("res=%+v", res)
	}

	svc := NewService(db)
	entries, err := svc.Resolve([]string{"Jackfruit", "Mango", "Durian"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Jack Fruit", "Mango", "Durian"}
	for i, e := range entries {
		if e.ResolvedSearchTerm() != want[i] {
			t.Fatalf("entry %d search=%q want %q", i, e.ResolvedSearchTerm(), want[i])
		}
	}

	last, err := db.GetMetadata("catalog.last_bootstrap")
	if err != nil || last == nil {
		t.Fatalf("last=%v err=%v", last, err)
	}
}

func TestLabelsKeepCatalogOrder(t *testing.T) {
	db := openTestDB(t)
	if _, err := NewBootstrapService(db).Bootstrap(nil); err != nil {
		t.Fatal(err)
	}
	labels, err := NewService(db).Labels()
	if err != nil {
		t.Fatal(err)
	}
	if len(labels) != len(DefaultFruits) {
		t.Fatalf("len=%d", len(labels))
	}
	for i := range labels {
		if labels[i] != DefaultFruits[i] {
			t.Fatalf("labels[%d]=%q want %q", i, labels[i], DefaultFruits[i])
		}
	}
}

func TestMultiWordLabels(t *testing.T) {
	db := openTestDB(t)
	if _, err := NewBootstrapService(db).Bootstrap(nil); err != nil {
		t.Fatal(err)
	}
	got, err := NewService(db).MultiWordLabels()
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]bool{"Dragon Fruit": true, "Ugli Fruit": true, "Vanilla Fruit": true, "Yerba Mate": true, "Ziziphus Jujube": true}
	if len(got) != len(want) {
		t.Fatalf("got=%v", got)
	}
	for _, l := range got {
		if !want[l] {
			t.Fatalf("unexpected %q", l)
		}
	}
}

func TestSetSearchTermRejectsBlank(t *testing.T) {
	db := openTestDB(t)
	if _, err := NewBootstrapService(db).Bootstrap(nil); err != nil {
		t.Fatal(err)
	}
	svc := NewService(db)
	if err := svc.SetSearchTerm("Kiwi", "  "); err == nil {
		t.Fatal("expected error")
	}
	if err := svc.SetSearchTerm("Kiwi", "Kiwifruit"); err != nil {
		t.Fatal(err)
	}
}
