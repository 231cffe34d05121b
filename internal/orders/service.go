package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"smoothies/internal"
	"smoothies/internal/canon"
	"smoothies/internal/catalog"
	"smoothies/internal/config"
	"smoothies/internal/metrics"
	"smoothies/internal/storage"
)

var (
	ErrTooManyLabels = errors.New("too many ingredients")
	ErrBlankLabel    = errors.New("ingredient label is blank")
	ErrHashRequired  = errors.New("order requires canonical hash")
)

// NutritionLookup is the part of the nutrition client the order flow needs.
type NutritionLookup interface {
	LookupAll(ctx context.Context, entries []internal.CatalogEntry) []internal.NutritionResult
}

type Service struct {
	db        *storage.DB
	catalog   *catalog.Service
	canon     *canon.Canonicalizer
	nutrition NutritionLookup
	publisher Publisher
	metrics   *metrics.Registry
	cfg       config.Config
}

type Option func(*Service)

func WithNutrition(n NutritionLookup) Option {
	return func(s *Service) { s.nutrition = n }
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithMetrics(m *metrics.Registry) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(db *storage.DB, cat *catalog.Service, c *canon.Canonicalizer, cfg config.Config, opts ...Option) *Service {
	s := &Service{db: db, catalog: cat, canon: c, cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type OrderRequest struct {
	Name   string   `json:"name"`
	Labels []string `json:"labels"`
	// Rule forces a canonicalization rule. When nil and TargetHash is set the
	// rule is searched; otherwise PLAIN is used.
	Rule          *canon.Rule `json:"rule,omitempty"`
	TargetHash    *int64      `json:"targetHash,omitempty"`
	SkipNutrition bool        `json:"skipNutrition,omitempty"`
}

type OrderResult struct {
	Order         internal.OrderRecord       `json:"order"`
	Variant       canon.Variant              `json:"variant"`
	Nutrition     []internal.NutritionResult `json:"nutrition,omitempty"`
	TargetMatched *bool                      `json:"targetMatched,omitempty"`
	Warnings      []string                   `json:"warnings,omitempty"`
}

// ValidateSelection gates a selection before canonicalization.
func (s *Service) ValidateSelection(labels []string) error {
	if len(labels) == 0 {
		return canon.ErrEmptySelection
	}
	if len(labels) > s.cfg.OrderMaxIngredients {
		return fmt.Errorf("%w: %d selected, max %d", ErrTooManyLabels, len(labels), s.cfg.OrderMaxIngredients)
	}
	for i, l := range labels {
		if canon.Normalize(l) == "" {
			return fmt.Errorf("%w: position %d", ErrBlankLabel, i+1)
		}
	}
	return nil
}

// Lookup resolves search terms and fetches nutrition for each label.
func (s *Service) Lookup(ctx context.Context, labels []string) ([]internal.NutritionResult, error) {
	if s.nutrition == nil {
		return nil, errors.New("nutrition lookup not configured")
	}
	entries, err := s.catalog.Resolve(labels)
	if err != nil {
		return nil, err
	}
	return s.nutrition.LookupAll(ctx, entries), nil
}

// Submit canonicalizes the selection and appends one order row. Nutrition
// failures and an unreachable hash function are reported as warnings; the
// latter blocks the order only when ORDER_REQUIRE_HASH is set.
func (s *Service) Submit(ctx context.Context, req OrderRequest) (OrderResult, error) {
	var res OrderResult

	if err := s.ValidateSelection(req.Labels); err != nil {
		return res, err
	}

	if s.nutrition != nil && !req.SkipNutrition {
		results, err := s.Lookup(ctx, req.Labels)
		if err != nil {
			return res, err
		}
		for _, r := range results {
			if !r.OK() {
				res.Warnings = append(res.Warnings, fmt.Sprintf("nutrition lookup failed for %q (searched as %q): %v", r.Label, r.SearchTerm, r.Err))
			}
		}
		res.Nutrition = results
	}

	rule, warnings, matched := s.chooseRule(ctx, req)
	res.Warnings = append(res.Warnings, warnings...)
	res.TargetMatched = matched

	// Metadata is always recomputed here, never reused from a preview.
	variant, err := s.canon.Canonicalize(ctx, req.Labels, rule)
	if err != nil {
		if !errors.Is(err, canon.ErrMetadataUnavailable) {
			return res, err
		}
		s.metrics.ObserveMetadataUnavailable()
		if s.cfg.OrderRequireHash {
			return res, fmt.Errorf("%w: %v", ErrHashRequired, err)
		}
		res.Warnings = append(res.Warnings, "canonical hash unavailable; order stored without hash")
	}
	res.Variant = variant

	record := internal.OrderRecord{
		Ingredients: strings.Join(req.Labels, " "),
		Canonical:   variant.Canonical,
		Rule:        variant.Rule.String(),
		NameOnOrder: strings.TrimSpace(req.Name),
		ByteLength:  variant.Metadata.ByteLength,
		Hex:         variant.Metadata.Hex,
		Hash64:      variant.Metadata.Hash64,
	}
	id, err := s.db.InsertOrder(record)
	if err != nil {
		return res, fmt.Errorf("insert order: %w", err)
	}
	record.ID = id
	record.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	res.Order = record
	s.metrics.ObserveOrder(record.Rule)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, eventFromRecord(record)); err != nil {
			fmt.Printf("order event publish failed orderId=%d err=%v\n", id, err)
			res.Warnings = append(res.Warnings, "order event not published")
		}
	}

	return res, nil
}

func (s *Service) chooseRule(ctx context.Context, req OrderRequest) (canon.Rule, []string, *bool) {
	if req.Rule != nil {
		return *req.Rule, nil, nil
	}
	if req.TargetHash == nil {
		return canon.RulePlain, nil, nil
	}

	v, err := s.canon.FindMatchingVariant(ctx, req.Labels, *req.TargetHash)
	switch {
	case err == nil:
		s.metrics.ObserveVariantSearch("match")
		matched := true
		return v.Rule, nil, &matched
	case canon.IsNotFound(err):
		s.metrics.ObserveVariantSearch("not_found")
		matched := false
		return canon.RulePlain, []string{fmt.Sprintf("no rule matches target hash %d; using PLAIN", *req.TargetHash)}, &matched
	default:
		s.metrics.ObserveVariantSearch("error")
		return canon.RulePlain, []string{fmt.Sprintf("variant search failed: %v; using PLAIN", err)}, nil
	}
}

func eventFromRecord(r internal.OrderRecord) internal.OrderEvent {
	return internal.OrderEvent{
		OrderID:     r.ID,
		NameOnOrder: r.NameOnOrder,
		Ingredients: r.Ingredients,
		Canonical:   r.Canonical,
		Rule:        r.Rule,
		ByteLength:  r.ByteLength,
		Hex:         r.Hex,
		Hash64:      r.Hash64,
		SubmittedAt: r.CreatedAt,
	}
}
