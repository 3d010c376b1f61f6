package hooks

import (
	"github.com/danielpatrickdp/adaptive-state/prompt-experiments/internal/experiment"
)

// #region plugin-struct

// Plugin owns one experiment configuration: its active list, its assignment
// store and the composer/reporter pair sharing that store. Two plugins never
// share assignments.
type Plugin struct {
	active   []experiment.Experiment
	store    *experiment.Store
	composer *experiment.Composer
	reporter *experiment.Reporter
	logger   experiment.Logger
}

// NewPlugin validates raw definitions and wires the per-plugin store.
// observer may be nil.
func NewPlugin(raw []experiment.RawExperiment, logger experiment.Logger, observer experiment.Observer) *Plugin {
	active := experiment.BuildActiveList(raw, logger)
	store := experiment.NewStore()
	return &Plugin{
		active:   active,
		store:    store,
		composer: experiment.NewComposer(active, store, observer),
		reporter: experiment.NewReporter(active, store, logger, observer),
		logger:   logger,
	}
}

// #endregion

// #region accessors

// Active returns the validated, enabled experiments in configured order.
func (p *Plugin) Active() []experiment.Experiment {
	return p.active
}

// Store exposes the plugin's assignment store.
func (p *Plugin) Store() *experiment.Store {
	return p.store
}

// #endregion

// #region register

// Register attaches the three hook handlers to r. With no active experiments
// it logs the idle notice, registers nothing and returns false.
func (p *Plugin) Register(r Registrar) bool {
	if len(p.active) == 0 {
		experiment.LogIdle(p.logger)
		return false
	}

	experiment.LogLoaded(p.logger, p.active)
	r.OnPromptBuild(p.HandlePromptBuild)
	r.OnSessionEnd(p.HandleSessionEnd)
	r.OnStartup(p.HandleStartup)
	return true
}

// #endregion

// #region handlers

// HandlePromptBuild returns the composed overlay, or nil for no modification.
func (p *Plugin) HandlePromptBuild(ev PromptBuild) *experiment.Overlay {
	return p.composer.Compose(experiment.RequestContext{
		SessionKey: ev.SessionKey,
		SessionID:  ev.SessionID,
		AgentID:    ev.AgentID,
	})
}

// HandleSessionEnd logs the session's resolved assignments.
func (p *Plugin) HandleSessionEnd(ev SessionEnd) {
	p.reporter.ReportSessionEnd(experiment.RequestContext{
		SessionKey: ev.SessionKey,
		SessionID:  ev.SessionID,
	})
}

// HandleStartup logs every active experiment with its variant weights.
func (p *Plugin) HandleStartup(Startup) {
	experiment.LogStartupSummary(p.logger, p.active)
}

// #endregion
