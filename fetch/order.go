package fetch

import (
	"math/rand"

	"github.com/facebook/dotslash/artifact"
)

// providerOrder returns a permutation of indices into cfgs describing the
// order providers should be tried in.
//
// Sequential returns cfgs' own order. WeightedRandom picks a starting index
// by weighted sampling over each config's "weight" field (non-positive or
// absent weights default to 1), then walks the rest of the providers in
// their original relative order, wrapping around.
func providerOrder(cfgs []artifact.ProviderConfig, ord artifact.ProvidersOrder, rng *rand.Rand) ([]int, error) {
	idx := make([]int, len(cfgs))
	for i := range idx {
		idx[i] = i
	}
	if ord == artifact.Sequential || len(cfgs) <= 1 {
		return idx, nil
	}

	weights := make([]int, len(cfgs))
	total := 0
	for i, c := range cfgs {
		w, err := c.Weight()
		if err != nil {
			return nil, err
		}
		if w <= 0 {
			w = 1
		}
		weights[i] = w
		total += w
	}

	pick := rng.Intn(total)
	start := len(weights) - 1
	cum := 0
	for i, w := range weights {
		cum += w
		if pick < cum {
			start = i
			break
		}
	}

	result := make([]int, 0, len(idx))
	for i := 0; i < len(idx); i++ {
		result = append(result, (start+i)%len(idx))
	}
	return result, nil
}
