package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/adaptive-state/prompt-experiments/internal/experiment"
	"github.com/danielpatrickdp/adaptive-state/prompt-experiments/internal/hooks"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string                     `json:"description"`
	Experiments []experiment.RawExperiment `json:"experiments"`
	ExpectIdle  bool                       `json:"expect_idle"`
	Events      []FixtureEvent             `json:"events"`
}

// FixtureEvent is one hook invocation plus what it should produce.
// ExpectOverlay is only checked for prompt_build (absent = no modification).
// ExpectLog is checked when present; [] asserts that nothing was logged.
type FixtureEvent struct {
	Kind          string              `json:"kind"`
	SessionKey    string              `json:"session_key,omitempty"`
	SessionID     string              `json:"session_id,omitempty"`
	AgentID       string              `json:"agent_id,omitempty"`
	ExpectOverlay *experiment.Overlay `json:"expect_overlay,omitempty"`
	ExpectLog     []string            `json:"expect_log,omitempty"`
}

// #endregion

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	for i, ev := range f.Events {
		if _, ok := hooks.ParseKind(ev.Kind); !ok {
			return nil, fmt.Errorf("fixture %s: event %d: unknown kind %q", path, i, ev.Kind)
		}
	}
	return &f, nil
}

// ToEvent converts a FixtureEvent to its typed hook event.
func (fe *FixtureEvent) ToEvent() hooks.Event {
	kind, _ := hooks.ParseKind(fe.Kind)
	switch kind {
	case hooks.KindPromptBuild:
		return hooks.PromptBuild{SessionKey: fe.SessionKey, SessionID: fe.SessionID, AgentID: fe.AgentID}
	case hooks.KindSessionEnd:
		return hooks.SessionEnd{SessionKey: fe.SessionKey, SessionID: fe.SessionID}
	default:
		return hooks.Startup{}
	}
}

// #endregion
