package replay

import (
	"github.com/danielpatrickdp/adaptive-state/prompt-experiments/internal/experiment"
	"github.com/danielpatrickdp/adaptive-state/prompt-experiments/internal/ledger"
)

// #region types

// Drift is a recorded assignment the current configuration would no longer produce.
type Drift struct {
	SessionKey   string `json:"session_key"`
	ExperimentID string `json:"experiment_id"`
	Recorded     string `json:"recorded"`
	Current      string `json:"current"`
}

// DriftReport summarizes a drift check.
type DriftReport struct {
	Checked    int     `json:"checked"`
	Skipped    int     `json:"skipped"` // experiment no longer active
	Mismatches []Drift `json:"mismatches"`
}

// #endregion

// #region check-drift

// CheckDrift recomputes every recorded assignment against active. Editing
// weights or variant order re-buckets sessions on the next process start;
// this shows how many would move.
func CheckDrift(active []experiment.Experiment, rows []ledger.AssignmentRow) DriftReport {
	byID := make(map[string]experiment.Experiment, len(active))
	for _, e := range active {
		byID[e.ID] = e
	}

	var report DriftReport
	for _, r := range rows {
		exp, ok := byID[r.ExperimentID]
		if !ok {
			report.Skipped++
			continue
		}
		report.Checked++
		current := experiment.AssignVariant(r.SessionKey, exp.ID, exp.Variants)
		if current.ID != r.VariantID {
			report.Mismatches = append(report.Mismatches, Drift{
				SessionKey:   r.SessionKey,
				ExperimentID: r.ExperimentID,
				Recorded:     r.VariantID,
				Current:      current.ID,
			})
		}
	}
	return report
}

// #endregion
