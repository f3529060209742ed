package ports

import (
	"context"
	"math/rand"
)

// RNG provides seeded random number generation for deterministic operations
type RNG interface {
	// SeededStream creates a deterministic random number generator for a named operation
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)

	// DeriveSeed deterministically derives a sub-seed from a base seed,
	// an operation name, and an index. Distinct indices yield distinct
	// seeds, so concurrent workers never share RNG state.
	DeriveSeed(name string, index int, base int64) int64
}
