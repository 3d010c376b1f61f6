package experiment

// #region variant

// Variant is one candidate content override inside an experiment.
type Variant struct {
	ID             string
	Weight         float64 // relative selection weight, negative treated as 0
	PrependContext string  // empty = no prepend
	SystemPrompt   string  // empty = no system prompt override
}

// #endregion

// #region experiment

// Experiment is a validated, active experiment. Immutable after BuildActiveList.
type Experiment struct {
	ID          string
	Description string
	Enabled     bool
	Variants    []Variant // never empty after validation
	AgentIDs    []string  // optional allow-list, empty = all agents
}

// appliesTo reports whether the experiment should run for the given agent.
func (e Experiment) appliesTo(agentID string) bool {
	if len(e.AgentIDs) == 0 {
		return true
	}
	if agentID == "" {
		return false
	}
	for _, id := range e.AgentIDs {
		if id == agentID {
			return true
		}
	}
	return false
}

// #endregion

// #region raw-config

// RawVariant is a variant as read from configuration, before defaults apply.
type RawVariant struct {
	ID             string   `yaml:"id" json:"id"`
	Weight         *float64 `yaml:"weight,omitempty" json:"weight,omitempty"`
	PrependContext string   `yaml:"prependContext,omitempty" json:"prependContext,omitempty"`
	SystemPrompt   string   `yaml:"systemPrompt,omitempty" json:"systemPrompt,omitempty"`
}

// RawExperiment is an experiment definition as read from configuration.
// Variants is nil when the key is absent.
type RawExperiment struct {
	ID          string       `yaml:"id" json:"id"`
	Description string       `yaml:"description,omitempty" json:"description,omitempty"`
	Enabled     *bool        `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Variants    []RawVariant `yaml:"variants" json:"variants"`
	AgentIDs    []string     `yaml:"agentIds,omitempty" json:"agentIds,omitempty"`
}

// #endregion

// #region request-context

// RequestContext identifies the caller of a hook. Empty fields are absent.
type RequestContext struct {
	SessionKey string
	SessionID  string
	AgentID    string
}

// anonymousSession is the identity used when a request carries no session fields.
const anonymousSession = "anonymous"

// identity resolves the session key used for prompt-build assignments.
func (r RequestContext) identity() string {
	if r.SessionKey != "" {
		return r.SessionKey
	}
	if r.SessionID != "" {
		return r.SessionID
	}
	return anonymousSession
}

// reportIdentity resolves the session key for session-end reports. ok is false
// when neither field is set.
func (r RequestContext) reportIdentity() (key string, ok bool) {
	if r.SessionKey != "" {
		return r.SessionKey, true
	}
	if r.SessionID != "" {
		return r.SessionID, true
	}
	return "", false
}

// #endregion

// #region overlay

// Overlay is the composed modification for one prompt build. A nil *Overlay
// means "render the default prompt unchanged"; fields are only set when some
// experiment produced them.
type Overlay struct {
	SystemPrompt   string `json:"systemPrompt,omitempty"`
	PrependContext string `json:"prependContext,omitempty"`
}

// #endregion

// #region assignment

// Assignment is the variant chosen for one (session, experiment) pair.
type Assignment struct {
	SessionKey   string
	ExperimentID string
	VariantID    string
}

// #endregion

// #region logger

// Logger is the line logger used for operator-facing output. *log.Logger satisfies it.
type Logger interface {
	Printf(format string, args ...any)
}

// logPrefix starts every log line emitted by this package. Log scrapers key on it.
const logPrefix = "prompt-experiments: "

// #endregion
