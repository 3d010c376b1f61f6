package experiment

import (
	"strconv"
	"strings"
)

const noDescription = "no description"

// LogIdle emits the notice for a configuration with nothing to run.
func LogIdle(logger Logger) {
	logger.Printf(logPrefix + "no active experiments configured, plugin idle")
}

// LogLoaded emits the count and ids of the active experiments.
func LogLoaded(logger Logger, exps []Experiment) {
	logger.Printf(logPrefix+"loaded %d active experiment(s): %s", len(exps), strings.Join(IDs(exps), ", "))
}

// LogStartupSummary writes one line per active experiment with its variants
// and weights, for operators reading service start logs.
func LogStartupSummary(logger Logger, exps []Experiment) {
	for _, e := range exps {
		desc := e.Description
		if desc == "" {
			desc = noDescription
		}
		variants := make([]string, len(e.Variants))
		for i, v := range e.Variants {
			variants[i] = v.ID + "(w=" + strconv.FormatFloat(v.Weight, 'g', -1, 64) + ")"
		}
		logger.Printf(logPrefix+"experiment %s (%s): %s", e.ID, desc, strings.Join(variants, ", "))
	}
}
