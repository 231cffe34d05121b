package catalog

import (
	"fmt"
	"time"

	"smoothies/internal"
	"smoothies/internal/storage"
)

// DefaultFruits seeds an empty catalog.
var DefaultFruits = []string{
	"Apple", "Blueberry", "Cantaloupe", "Dragon Fruit", "Elderberry",
	"Figs", "Guava", "Honeydew", "Jackfruit", "Kiwi",
	"Lime", "Mango", "Nectarine", "Orange", "Papaya",
	"Quince", "Raspberry", "Strawberry", "Tangerine", "Ugli Fruit",
	"Vanilla Fruit", "Watermelon", "Ximenia", "Yerba Mate", "Ziziphus Jujube",
}

// DefaultSearchTerms maps display labels to the spelling the nutrition API
// expects.
var DefaultSearchTerms = map[string]string{
	"Apple":      "Apples",
	"Blueberry":  "Blueberries",
	"Jackfruit":  "Jack Fruit",
	"Raspberry":  "Raspberries",
	"Strawberry": "Strawberries",
}

type BootstrapResult struct {
	Seeded    int
	Filled    int64
	Overrides int
}

type BootstrapService struct {
	db *storage.DB
}

func NewBootstrapService(db *storage.DB) *BootstrapService {
	return &BootstrapService{db: db}
}

// Bootstrap seeds the default fruit list into an empty catalog, fills NULL
// search terms from the label and applies the given overrides. Overrides for
// labels that are not in the catalog are skipped.
func (s *BootstrapService) Bootstrap(overrides map[string]string) (BootstrapResult, error) {
	var res BootstrapResult

	count, err := s.db.CountFruitOptions()
	if err != nil {
		return res, err
	}
	if count == 0 {
		entries := make([]internal.CatalogEntry, 0, len(DefaultFruits))
		for i, label := range DefaultFruits {
			entries = append(entries, internal.CatalogEntry{Label: label, Position: i + 1})
		}
		if err := s.db.UpsertFruitOptions(entries); err != nil {
			return res, fmt.Errorf("seed fruit options: %w", err)
		}
		res.Seeded = len(entries)
	}

	res.Filled, err = s.db.FillMissingSearchTerms()
	if err != nil {
		return res, fmt.Errorf("fill search terms: %w", err)
	}

	for _, label := range sortedKeys(overrides) {
		existing, err := s.db.GetFruitOption(label)
		if err != nil {
			return res, err
		}
		if existing == nil {
			continue
		}
		if err := s.db.SetSearchTerm(label, overrides[label]); err != nil {
			return res, err
		}
		res.Overrides++
	}

	_ = s.db.SetMetadata("catalog.last_bootstrap", time.Now().UTC().Format(time.RFC3339))
	return res, nil
}
