package experiment

import "errors"

// #region constants

// seedBuckets is the resolution used to turn a seed into a point on the
// weight line. Weight ratios finer than 1/seedBuckets are quantized.
const seedBuckets = 1_000_000

// ErrNoVariants is the panic value raised when Select is called with an empty
// variant list. BuildActiveList never produces such an experiment.
var ErrNoVariants = errors.New("experiment: select called with no variants")

// #endregion

// #region select

// Select picks one variant for seed. Earlier variants win ties. If every
// weight is non-positive the first variant is returned.
func Select(variants []Variant, seed uint32) Variant {
	if len(variants) == 0 {
		panic(ErrNoVariants)
	}

	var total float64
	for _, v := range variants {
		total += effectiveWeight(v)
	}
	if total <= 0 {
		return variants[0]
	}

	position := float64(seed%seedBuckets) / seedBuckets * total
	var cumulative float64
	for _, v := range variants {
		cumulative += effectiveWeight(v)
		if position < cumulative {
			return v
		}
	}

	// float rounding at position ~= total
	return variants[len(variants)-1]
}

func effectiveWeight(v Variant) float64 {
	if v.Weight < 0 {
		return 0
	}
	return v.Weight
}

// #endregion

// #region assign-variant

// AssignVariant is the pure assignment function: the same session key and
// experiment id always map to the same variant for a given variant list.
func AssignVariant(sessionKey, experimentID string, variants []Variant) Variant {
	return Select(variants, Hash(sessionKey+":"+experimentID))
}

// #endregion
