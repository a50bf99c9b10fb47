// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 19th 2026
// Project: Permutation-based Whitening for Root Cause Discovery
// Class: 02-613 at Caregie Mellon University

package rcd

import (
	"fmt"
	"math/rand"
	"time"
)

// newRand returns a *rand.Rand seeded with seed, or with the clock if seed is 0.
func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Validate checks that perm is a bijection on {0, ..., p-1}.
func (perm Permutation) Validate(p int) error {
	if len(perm) != p {
		return fmt.Errorf("length %d, want %d: %w", len(perm), p, ErrNotPermutation)
	}
	seen := make([]bool, p)
	for _, idx := range perm {
		if idx < 0 || idx >= p || seen[idx] {
			return fmt.Errorf("index %d repeated or out of range: %w", idx, ErrNotPermutation)
		}
		seen[idx] = true
	}
	return nil
}

// Inverse returns inv with inv[perm[k]] = k, i.e. the position of every
// original index. Applying inv to a permuted vector restores original order.
func (perm Permutation) Inverse() Permutation {
	inv := make(Permutation, len(perm))
	for k, idx := range perm {
		inv[idx] = k
	}
	return inv
}

// GeneratePermutations builds the orderings tested for one threshold.
// Variables with z > threshold are aberrant, the rest normal. For every
// aberrant target and each of nShuffles trials both blocks are reshuffled,
// the target is swapped to the front of the aberrant block, and
// normal ++ aberrant is emitted. The blocks are shuffled in place, so each
// trial starts from the previous trial's order. A nil rng is replaced by a
// time-seeded source.
func GeneratePermutations(z []float64, threshold float64, nShuffles int, rng *rand.Rand) []Permutation {
	var aberrant, normal []int
	for i, v := range z {
		if v > threshold {
			aberrant = append(aberrant, i)
		} else {
			normal = append(normal, i)
		}
	}
	if len(aberrant) == 0 || nShuffles <= 0 {
		return nil
	}
	if rng == nil {
		rng = newRand(0)
	}
	targets := append([]int(nil), aberrant...)

	perms := make([]Permutation, 0, len(targets)*nShuffles)
	for _, target := range targets {
		for trial := 0; trial < nShuffles; trial++ {
			rng.Shuffle(len(normal), func(i, j int) { normal[i], normal[j] = normal[j], normal[i] })
			rng.Shuffle(len(aberrant), func(i, j int) { aberrant[i], aberrant[j] = aberrant[j], aberrant[i] })
			for k, idx := range aberrant {
				if idx == target {
					aberrant[0], aberrant[k] = aberrant[k], aberrant[0]
					break
				}
			}

			perm := make(Permutation, 0, len(z))
			perm = append(perm, normal...)
			perm = append(perm, aberrant...)
			perms = append(perms, perm)
		}
	}
	return perms
}
