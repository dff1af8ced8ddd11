// Package simrand derives independent, deterministic per-subsystem RNG
// streams from a single run seed, so every stochastic decision in a run is
// traceable to one seed and a sub-stream label.
package simrand

import (
	"hash/fnv"
	"math/rand"
)

// DeterministicSeedValue hashes rootSeed and label together so two labels
// under the same root seed never collide, and a zero hash never produces
// the degenerate all-zero RNG state.
func DeterministicSeedValue(rootSeed, label string) int64 {
	hasher := fnv.New64a()
	hasher.Write([]byte(rootSeed))
	hasher.Write([]byte{0})
	hasher.Write([]byte(label))
	sum := hasher.Sum64()
	if sum == 0 {
		sum = 1
	}
	return int64(sum)
}

// New builds a *rand.Rand seeded deterministically from rootSeed and label,
// so "fire", "spawn", and "agents" each get an independent, reproducible
// stream under the same run seed.
func New(rootSeed, label string) *rand.Rand {
	return rand.New(rand.NewSource(DeterministicSeedValue(rootSeed, label)))
}
