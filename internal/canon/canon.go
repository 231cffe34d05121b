// Package canon turns an ordered selection of display labels into a
// byte-exact canonical string and derives the metadata (UTF-8 length, hex,
// external 64-bit hash) used to reconcile it against an outside validator.
package canon

import (
	"context"
	"errors"
	"sync"
)

// Canonicalizer holds read-only configuration shared across calls. It is
// safe for concurrent use.
type Canonicalizer struct {
	multiWord map[string]struct{}
	hasher    Hasher
}

// Variant is one rule's output for a selection.
type Variant struct {
	Rule      Rule     `json:"rule"`
	Canonical string   `json:"canonical"`
	Metadata  Metadata `json:"metadata"`
	Err       error    `json:"-"`
}

// New builds a Canonicalizer. multiWordLabels is the allow-list used by
// NBSP_INSIDE_LABELS; entries are normalized before comparison.
func New(multiWordLabels []string, hasher Hasher) *Canonicalizer {
	set := make(map[string]struct{}, len(multiWordLabels))
	for _, l := range multiWordLabels {
		n := Normalize(l)
		if n == "" {
			continue
		}
		set[n] = struct{}{}
	}
	return &Canonicalizer{multiWord: set, hasher: hasher}
}

// MultiWordLabels returns the normalized allow-list.
func (c *Canonicalizer) MultiWordLabels() []string {
	out := make([]string, 0, len(c.multiWord))
	for l := range c.multiWord {
		out = append(out, l)
	}
	return out
}

func (c *Canonicalizer) BuildCanonical(selection []string, rule Rule) (string, error) {
	if len(selection) == 0 {
		return "", ErrEmptySelection
	}
	return rule.join(NormalizeAll(selection), c.multiWord)
}

func (c *Canonicalizer) ComputeMetadata(ctx context.Context, canonical string) (Metadata, error) {
	return ComputeMetadata(ctx, c.hasher, canonical)
}

// Canonicalize builds the canonical string for rule and computes its
// metadata. When only the hash is unavailable the Variant is still returned
// alongside an error wrapping ErrMetadataUnavailable.
func (c *Canonicalizer) Canonicalize(ctx context.Context, selection []string, rule Rule) (Variant, error) {
	canonical, err := c.BuildCanonical(selection, rule)
	if err != nil {
		return Variant{}, err
	}
	md, err := c.ComputeMetadata(ctx, canonical)
	return Variant{Rule: rule, Canonical: canonical, Metadata: md, Err: err}, err
}

// Variants evaluates every rule for selection. Metadata computations run in
// parallel; the result is in declaration order. Per-rule hash failures are
// recorded in Variant.Err and do not stop the other rules.
func (c *Canonicalizer) Variants(ctx context.Context, selection []string) ([]Variant, error) {
	if len(selection) == 0 {
		return nil, ErrEmptySelection
	}
	normalized := NormalizeAll(selection)
	rules := Rules()
	out := make([]Variant, len(rules))

	var wg sync.WaitGroup
	for i, rule := range rules {
		canonical, err := rule.join(normalized, c.multiWord)
		if err != nil {
			return nil, err
		}
		out[i] = Variant{Rule: rule, Canonical: canonical}

		wg.Add(1)
		go func(v *Variant) {
			defer wg.Done()
			v.Metadata, v.Err = c.ComputeMetadata(ctx, v.Canonical)
		}(&out[i])
	}
	wg.Wait()

	return out, nil
}

// FindMatchingVariant returns the first rule, in declaration order, whose
// hash equals target. It returns ErrNoMatchingVariant when none does. If a
// rule before the first match could not be hashed the outcome is undecidable
// and an error wrapping ErrMetadataUnavailable is returned instead.
func (c *Canonicalizer) FindMatchingVariant(ctx context.Context, selection []string, target int64) (Variant, error) {
	variants, err := c.Variants(ctx, selection)
	if err != nil {
		return Variant{}, err
	}
	for _, v := range variants {
		if v.Err != nil {
			return Variant{}, v.Err
		}
		if *v.Metadata.Hash64 == target {
			return v, nil
		}
	}
	return Variant{}, ErrNoMatchingVariant
}

// IsNotFound reports whether err is the variant-search NotFound outcome.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNoMatchingVariant)
}
