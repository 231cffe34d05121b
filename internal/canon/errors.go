package canon

import "errors"

var (
	ErrEmptySelection = errors.New("selection has no labels")
	ErrUnknownRule    = errors.New("unknown canonicalization rule")

	// ErrMetadataUnavailable means the external hash could not be computed.
	// The canonical string is still valid; the hash is left unset.
	ErrMetadataUnavailable = errors.New("canonical metadata unavailable")

	// ErrNoMatchingVariant is returned by FindMatchingVariant when no rule
	// produces the target hash.
	ErrNoMatchingVariant = errors.New("no canonicalization rule matches target hash")
)
