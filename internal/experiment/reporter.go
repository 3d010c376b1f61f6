package experiment

import (
	"fmt"
	"strings"
)

// #region reporter-struct

// Reporter summarizes a session's resolved assignments when it ends. It only
// reads the store; it never assigns.
type Reporter struct {
	experiments []Experiment
	store       *Store
	logger      Logger
	observer    Observer // nil = none
}

// NewReporter creates a reporter over the same store the composer writes.
func NewReporter(experiments []Experiment, store *Store, logger Logger, observer Observer) *Reporter {
	return &Reporter{
		experiments: experiments,
		store:       store,
		logger:      logger,
		observer:    observer,
	}
}

// #endregion

// #region report-session-end

// ReportSessionEnd logs `assignments session=<key> [exp=variant, ...]` for
// every experiment already evaluated in the session. Nothing is logged when
// the request has no session identity or no assignments exist.
func (r *Reporter) ReportSessionEnd(req RequestContext) []Assignment {
	sessionKey, ok := req.reportIdentity()
	if !ok {
		return nil
	}

	var found []Assignment
	for _, exp := range r.experiments {
		v, ok := r.store.Lookup(sessionKey, exp.ID)
		if !ok {
			continue
		}
		found = append(found, Assignment{
			SessionKey:   sessionKey,
			ExperimentID: exp.ID,
			VariantID:    v.ID,
		})
	}
	if len(found) == 0 {
		return nil
	}

	r.logger.Printf("%s", FormatSessionSummary(sessionKey, found))
	if r.observer != nil {
		r.observer.SessionReported(sessionKey, found)
	}
	return found
}

// FormatSessionSummary renders the session-end line consumed by log analytics.
func FormatSessionSummary(sessionKey string, assignments []Assignment) string {
	pairs := make([]string, len(assignments))
	for i, a := range assignments {
		pairs[i] = a.ExperimentID + "=" + a.VariantID
	}
	return fmt.Sprintf(logPrefix+"assignments session=%s [%s]", sessionKey, strings.Join(pairs, ", "))
}

// #endregion
