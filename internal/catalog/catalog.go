package catalog

import (
	"fmt"
	"sort"
	"strings"

	"smoothies/internal"
	"smoothies/internal/canon"
	"smoothies/internal/storage"
)

// Service is the read side of the fruit catalog.
type Service struct {
	db *storage.DB
}

func NewService(db *storage.DB) *Service {
	return &Service{db: db}
}

func (s *Service) Options() ([]internal.CatalogEntry, error) {
	return s.db.ListFruitOptions()
}

func (s *Service) Labels() ([]string, error) {
	opts, err := s.db.ListFruitOptions()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(opts))
	for _, o := range opts {
		out = append(out, o.Label)
	}
	return out, nil
}

// MultiWordLabels lists catalog labels that contain more than one word after
// normalization. It is the default NBSP_INSIDE_LABELS allow-list.
func (s *Service) MultiWordLabels() ([]string, error) {
	labels, err := s.Labels()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, l := range labels {
		if strings.Contains(canon.Normalize(l), " ") {
			out = append(out, l)
		}
	}
	return out, nil
}

// Resolve maps each selected label to its catalog entry, in selection order.
// Labels missing from the catalog resolve to themselves.
func (s *Service) Resolve(labels []string) ([]internal.CatalogEntry, error) {
	opts, err := s.db.ListFruitOptions()
	if err != nil {
		return nil, err
	}
	byLabel := make(map[string]internal.CatalogEntry, len(opts))
	for _, o := range opts {
		byLabel[o.Label] = o
	}

	out := make([]internal.CatalogEntry, 0, len(labels))
	for i, l := range labels {
		if e, ok := byLabel[l]; ok {
			out = append(out, e)
			continue
		}
		out = append(out, internal.CatalogEntry{Label: l, Position: -(i + 1)})
	}
	return out, nil
}

func (s *Service) SetSearchTerm(label, searchTerm string) error {
	if strings.TrimSpace(searchTerm) == "" {
		return fmt.Errorf("search term for %q is empty", label)
	}
	return s.db.SetSearchTerm(label, searchTerm)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
