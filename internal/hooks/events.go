package hooks

// #region kind

// Kind names one of the three hook points a host can invoke.
type Kind int

const (
	KindPromptBuild Kind = iota + 1
	KindSessionEnd
	KindStartup
)

func (k Kind) String() string {
	switch k {
	case KindPromptBuild:
		return "prompt_build"
	case KindSessionEnd:
		return "session_end"
	case KindStartup:
		return "startup"
	default:
		return "unknown"
	}
}

// ParseKind maps a wire name back to a Kind. ok is false for unknown names.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "prompt_build":
		return KindPromptBuild, true
	case "session_end":
		return KindSessionEnd, true
	case "startup":
		return KindStartup, true
	default:
		return 0, false
	}
}

// #endregion

// #region events

// Event is the closed set of hook payloads. Only this package implements it.
type Event interface {
	Kind() Kind
	event()
}

// PromptBuild fires once per outbound prompt assembly.
type PromptBuild struct {
	SessionKey string
	SessionID  string
	AgentID    string
}

// SessionEnd fires once per completed session or run.
type SessionEnd struct {
	SessionKey string
	SessionID  string
}

// Startup fires once when the hosting service starts.
type Startup struct{}

func (PromptBuild) Kind() Kind { return KindPromptBuild }
func (SessionEnd) Kind() Kind  { return KindSessionEnd }
func (Startup) Kind() Kind     { return KindStartup }

func (PromptBuild) event() {}
func (SessionEnd) event()  {}
func (Startup) event()     {}

// #endregion
