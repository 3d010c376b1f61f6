package hooks

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/danielpatrickdp/adaptive-state/prompt-experiments/internal/experiment"
)

// #region helpers

func bufLogger() (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return log.New(&buf, "", 0), &buf
}

func personaConfig() []experiment.RawExperiment {
	return []experiment.RawExperiment{{
		ID:          "persona",
		Description: "named persona",
		Variants: []experiment.RawVariant{
			{ID: "control"},
			{ID: "variant-a", PrependContext: "You are Alex."},
		},
	}}
}

// #endregion

// #region register-tests

func TestRegister_IdleWhenNoActive(t *testing.T) {
	logger, buf := bufLogger()
	disabled := false
	raw := []experiment.RawExperiment{
		{ID: "off", Enabled: &disabled, Variants: []experiment.RawVariant{{ID: "a"}}},
		{ID: "broken"},
	}
	p := NewPlugin(raw, logger, nil)
	bus := NewBus()

	if p.Register(bus) {
		t.Fatal("expected Register to report idle")
	}
	if bus.Registered() {
		t.Fatal("idle plugin must not register handlers")
	}
	if !strings.Contains(buf.String(), "idle") {
		t.Fatalf("expected idle notice, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), `"broken"`) {
		t.Fatalf("expected warning naming broken experiment, got %q", buf.String())
	}
}

func TestRegister_Active(t *testing.T) {
	logger, buf := bufLogger()
	p := NewPlugin(personaConfig(), logger, nil)
	bus := NewBus()

	if !p.Register(bus) {
		t.Fatal("expected Register to succeed")
	}
	if !bus.Registered() {
		t.Fatal("expected handlers on bus")
	}
	if !strings.Contains(buf.String(), "loaded 1 active experiment(s): persona") {
		t.Fatalf("missing load summary: %q", buf.String())
	}
}

// #endregion

// #region dispatch-tests

func TestDispatch_EndToEnd(t *testing.T) {
	logger, buf := bufLogger()
	p := NewPlugin(personaConfig(), logger, nil)
	bus := NewBus()
	p.Register(bus)
	buf.Reset()

	bus.Dispatch(Startup{})
	if !strings.Contains(buf.String(), "experiment persona (named persona): control(w=1), variant-a(w=1)") {
		t.Fatalf("startup summary = %q", buf.String())
	}
	buf.Reset()

	if ov := bus.Dispatch(PromptBuild{SessionKey: "s1"}); ov != nil {
		t.Fatalf("control session got overlay %+v", ov)
	}
	ov := bus.Dispatch(PromptBuild{SessionKey: "s2"})
	if ov == nil || ov.PrependContext != "You are Alex." {
		t.Fatalf("variant session overlay = %+v", ov)
	}

	if ov := bus.Dispatch(SessionEnd{SessionKey: "s2"}); ov != nil {
		t.Fatal("session end must not return an overlay")
	}
	if got := buf.String(); got != "prompt-experiments: assignments session=s2 [persona=variant-a]\n" {
		t.Fatalf("session end log = %q", got)
	}

	buf.Reset()
	bus.Dispatch(SessionEnd{SessionKey: "never-built"})
	if buf.Len() != 0 {
		t.Fatalf("expected no log for unseen session, got %q", buf.String())
	}
}

func TestDispatch_EmptyBus(t *testing.T) {
	bus := NewBus()
	for _, ev := range []Event{PromptBuild{SessionKey: "k"}, SessionEnd{SessionKey: "k"}, Startup{}} {
		if ov := bus.Dispatch(ev); ov != nil {
			t.Fatalf("%s on empty bus returned %+v", ev.Kind(), ov)
		}
	}
}

func TestPlugins_DoNotShareAssignments(t *testing.T) {
	logger, _ := bufLogger()
	a := NewPlugin(personaConfig(), logger, nil)
	b := NewPlugin(personaConfig(), logger, nil)
	a.HandlePromptBuild(PromptBuild{SessionKey: "s2"})
	if b.Store().Len() != 0 {
		t.Fatal("plugins share an assignment store")
	}
	if a.Store().Len() != 1 {
		t.Fatalf("plugin a store Len = %d, want 1", a.Store().Len())
	}
}

// #endregion

// #region kind-tests

func TestKind_RoundTrip(t *testing.T) {
	for _, k := range []Kind{KindPromptBuild, KindSessionEnd, KindStartup} {
		got, ok := ParseKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseKind(%q) = (%v, %v), want %v", k.String(), got, ok, k)
		}
	}
	if _, ok := ParseKind("before_prompt_build"); ok {
		t.Error("unknown kind should not parse")
	}
}

// #endregion
