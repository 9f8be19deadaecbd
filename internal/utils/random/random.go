package random

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Shuffle performs a cryptographically secure Fisher-Yates shuffle of the
// slice in place.
func Shuffle[T any](slice []T) error {
	for i := len(slice) - 1; i > 0; i-- {
		jBig, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return fmt.Errorf("failed to generate random number: %w", err)
		}
		j := int(jBig.Int64())
		slice[i], slice[j] = slice[j], slice[i]
	}
	return nil
}

// PickIDs selects up to count distinct ids from entries, uniformly at random
// and without replacement. Duplicates and non-positive ids are discarded
// before the draw. An empty candidate set yields an empty, non-nil slice.
//
// The input slice is never modified.
func PickIDs(entries []int64, count int) ([]int64, error) {
	seen := make(map[int64]struct{}, len(entries))
	unique := make([]int64, 0, len(entries))
	for _, id := range entries {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	if len(unique) == 0 || count <= 0 {
		return []int64{}, nil
	}

	if err := Shuffle(unique); err != nil {
		return nil, err
	}

	if count > len(unique) {
		count = len(unique)
	}
	return unique[:count], nil
}
