package canon

import (
	"context"
	"encoding/hex"
	"fmt"
)

// Hasher computes the externally owned 64-bit hash of a canonical string.
// Implementations delegate to the system that owns the algorithm (for
// example a database HASH() function). Swapping the Hasher changes every
// comparison against target hashes.
type Hasher interface {
	Hash64(ctx context.Context, s string) (int64, error)
}

type HasherFunc func(ctx context.Context, s string) (int64, error)

func (f HasherFunc) Hash64(ctx context.Context, s string) (int64, error) {
	return f(ctx, s)
}

type Metadata struct {
	ByteLength int    `json:"byteLength"`
	Hex        string `json:"hex"`
	Hash64     *int64 `json:"hash64"`
}

// HasHash reports whether the external hash was computed.
func (m Metadata) HasHash() bool {
	return m.Hash64 != nil
}

// ComputeMetadata derives byte length and hex locally and asks hasher for
// the 64-bit hash. On hasher failure the returned Metadata carries length and
// hex but no hash, and the error wraps ErrMetadataUnavailable.
func ComputeMetadata(ctx context.Context, hasher Hasher, canonical string) (Metadata, error) {
	md := Metadata{
		ByteLength: len(canonical),
		Hex:        hex.EncodeToString([]byte(canonical)),
	}
	if hasher == nil {
		return md, fmt.Errorf("%w: no hasher configured", ErrMetadataUnavailable)
	}
	h, err := hasher.Hash64(ctx, canonical)
	if err != nil {
		return md, fmt.Errorf("%w: %v", ErrMetadataUnavailable, err)
	}
	md.Hash64 = &h
	return md, nil
}
