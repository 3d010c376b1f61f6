package experiment

// #region observer

// Observer receives advisory notifications from the composer and reporter.
// Implementations must not block: they run inline on the hook path.
type Observer interface {
	Assigned(a Assignment)
	Composed(applied bool)
	SessionReported(sessionKey string, assignments []Assignment)
}

// Observers fans notifications out to each observer in order.
type Observers []Observer

func (obs Observers) Assigned(a Assignment) {
	for _, o := range obs {
		o.Assigned(a)
	}
}

func (obs Observers) Composed(applied bool) {
	for _, o := range obs {
		o.Composed(applied)
	}
}

func (obs Observers) SessionReported(sessionKey string, assignments []Assignment) {
	for _, o := range obs {
		o.SessionReported(sessionKey, assignments)
	}
}

// #endregion

// #region log-observer

// LogObserver writes a diagnostic line for every new assignment.
type LogObserver struct {
	Logger Logger
}

func (l LogObserver) Assigned(a Assignment) {
	l.Logger.Printf(logPrefix+"assigned session=%s experiment=%s variant=%s",
		a.SessionKey, a.ExperimentID, a.VariantID)
}

func (LogObserver) Composed(bool) {}

func (LogObserver) SessionReported(string, []Assignment) {}

// #endregion
