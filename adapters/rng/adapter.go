package rng

import (
	"context"
	"math/rand"
	"strconv"

	"gofold/ports"
)

// StreamAdapter implements the RNG port with plain seeded math/rand
// streams. Every stream is owned by exactly one caller; nothing here
// shares mutable RNG state.
type StreamAdapter struct{}

// New creates a stream adapter
func New() *StreamAdapter {
	return &StreamAdapter{}
}

// SeededStream creates a deterministic random number generator for a named operation
func (a *StreamAdapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	return rand.New(rand.NewSource(seed)), nil
}

// DeriveSeed deterministically derives a sub-seed from base, name, and
// index. Identical inputs always yield the identical seed; distinct
// indices yield distinct seeds for any fixed name and base.
func (a *StreamAdapter) DeriveSeed(name string, index int, base int64) int64 {
	seed := base
	if name != "" {
		seed += int64(hashString(name))
	}
	seed += int64(hashString(strconv.Itoa(index))) + int64(index)<<20
	return seed
}

// hashString creates a simple hash for deterministic seeding
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c) // djb2 algorithm
	}
	return hash
}

var _ ports.RNG = (*StreamAdapter)(nil)
