package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/danielpatrickdp/adaptive-state/prompt-experiments/internal/experiment"
)

// #region collector

// Collector counts assignments, overlays and session reports. It implements
// experiment.Observer.
type Collector struct {
	assignments    *prometheus.CounterVec
	overlays       *prometheus.CounterVec
	sessionReports prometheus.Counter
}

// NewCollector creates the metrics and registers them on reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		assignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prompt_experiments",
			Name:      "assignments_total",
			Help:      "New (session, experiment) assignments by variant.",
		}, []string{"experiment", "variant"}),
		overlays: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prompt_experiments",
			Name:      "overlays_total",
			Help:      "Prompt builds by outcome: applied or none.",
		}, []string{"result"}),
		sessionReports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "prompt_experiments",
			Name:      "session_reports_total",
			Help:      "Session-end summaries emitted.",
		}),
	}
	for _, col := range []prometheus.Collector{c.assignments, c.overlays, c.sessionReports} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// #endregion

// #region observer

func (c *Collector) Assigned(a experiment.Assignment) {
	c.assignments.WithLabelValues(a.ExperimentID, a.VariantID).Inc()
}

func (c *Collector) Composed(applied bool) {
	result := "none"
	if applied {
		result = "applied"
	}
	c.overlays.WithLabelValues(result).Inc()
}

func (c *Collector) SessionReported(string, []experiment.Assignment) {
	c.sessionReports.Inc()
}

// #endregion

// #region store-gauge

// RegisterStoreSize exposes the number of memoized assignments in store as a
// gauge read at scrape time.
func RegisterStoreSize(reg prometheus.Registerer, store *experiment.Store) error {
	return reg.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "prompt_experiments",
		Name:      "store_entries",
		Help:      "Assignments held in memory; grows until restart.",
	}, func() float64 {
		return float64(store.Len())
	}))
}

// #endregion
