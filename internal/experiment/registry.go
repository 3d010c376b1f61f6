package experiment

import "strings"

// #region build-active-list

// BuildActiveList validates raw definitions and returns the enabled ones in
// configured order. Malformed entries are dropped with a warning; they never
// fail the whole load.
func BuildActiveList(raw []RawExperiment, logger Logger) []Experiment {
	active := make([]Experiment, 0, len(raw))
	seen := make(map[string]bool, len(raw))

	for i, r := range raw {
		id := strings.TrimSpace(r.ID)
		if id == "" {
			logger.Printf(logPrefix+"skipping experiment at index %d: missing or empty id", i)
			continue
		}
		if len(r.Variants) == 0 {
			logger.Printf(logPrefix+"skipping experiment %q: variants must be a non-empty list", id)
			continue
		}
		if seen[id] {
			logger.Printf(logPrefix+"skipping experiment %q: duplicate id", id)
			continue
		}
		seen[id] = true

		if r.Enabled != nil && !*r.Enabled {
			logger.Printf(logPrefix+"experiment %q disabled", id)
			continue
		}

		active = append(active, Experiment{
			ID:          id,
			Description: r.Description,
			Enabled:     true,
			Variants:    toVariants(r.Variants),
			AgentIDs:    append([]string(nil), r.AgentIDs...),
		})
	}
	return active
}

// #endregion

// #region helpers

func toVariants(raw []RawVariant) []Variant {
	out := make([]Variant, len(raw))
	for i, rv := range raw {
		weight := 1.0
		if rv.Weight != nil {
			weight = *rv.Weight
		}
		out[i] = Variant{
			ID:             rv.ID,
			Weight:         weight,
			PrependContext: rv.PrependContext,
			SystemPrompt:   rv.SystemPrompt,
		}
	}
	return out
}

// IDs returns the experiment ids in order.
func IDs(exps []Experiment) []string {
	ids := make([]string, len(exps))
	for i, e := range exps {
		ids[i] = e.ID
	}
	return ids
}

// #endregion
