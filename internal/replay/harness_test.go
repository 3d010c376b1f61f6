package replay

import (
	"strings"
	"testing"

	"github.com/danielpatrickdp/adaptive-state/prompt-experiments/internal/experiment"
)

// #region helpers

func personaFixture(events ...FixtureEvent) *Fixture {
	return &Fixture{
		Description: "persona",
		Experiments: []experiment.RawExperiment{{
			ID: "persona",
			Variants: []experiment.RawVariant{
				{ID: "control"},
				{ID: "variant-a", PrependContext: "You are Alex."},
			},
		}},
		Events: events,
	}
}

// #endregion

// #region run-tests

func TestRun_Passes(t *testing.T) {
	f := personaFixture(
		FixtureEvent{Kind: "prompt_build", SessionKey: "s1"},
		FixtureEvent{Kind: "prompt_build", SessionKey: "s2", ExpectOverlay: &experiment.Overlay{PrependContext: "You are Alex."}},
	)
	report := Run(f)
	if !report.Passed {
		t.Fatalf("expected pass, failures: %+v", report.Failures())
	}
	if report.Idle {
		t.Fatal("persona fixture should not be idle")
	}
}

func TestRun_DetectsOverlayMismatch(t *testing.T) {
	f := personaFixture(
		FixtureEvent{Kind: "prompt_build", SessionKey: "s2"}, // actually gets an overlay
	)
	report := Run(f)
	if report.Passed {
		t.Fatal("expected failure")
	}
	failures := report.Failures()
	if len(failures) != 1 || !strings.Contains(failures[0].Reason, "You are Alex.") {
		t.Fatalf("failures = %+v", failures)
	}
}

func TestRun_DetectsLogMismatch(t *testing.T) {
	f := personaFixture(
		FixtureEvent{Kind: "prompt_build", SessionKey: "s2", ExpectOverlay: &experiment.Overlay{PrependContext: "You are Alex."}},
		FixtureEvent{Kind: "session_end", SessionKey: "s2", ExpectLog: []string{}},
	)
	report := Run(f)
	if report.Passed {
		t.Fatal("expected failure for unexpected log line")
	}
	if report.Failures()[0].Index != 1 {
		t.Fatalf("wrong failing event: %+v", report.Failures())
	}
}

func TestRun_IdleMismatch(t *testing.T) {
	f := &Fixture{Description: "empty"}
	report := Run(f)
	if !report.Idle || report.Passed {
		t.Fatalf("idle=%v passed=%v, want idle and failing (expect_idle unset)", report.Idle, report.Passed)
	}
	f.ExpectIdle = true
	if !Run(f).Passed {
		t.Fatal("expected pass when idle is expected")
	}
}

func TestRun_IsRepeatable(t *testing.T) {
	f := personaFixture(
		FixtureEvent{Kind: "prompt_build", SessionKey: "alpha"},
		FixtureEvent{Kind: "prompt_build", SessionKey: "beta"},
		FixtureEvent{Kind: "session_end", SessionKey: "alpha"},
	)
	first := Run(f)
	second := Run(f)
	for i := range first.Results {
		a, b := first.Results[i], second.Results[i]
		if !overlayEqual(a.Overlay, b.Overlay) || !linesEqual(a.Log, b.Log) {
			t.Fatalf("event %d differs between runs", i)
		}
	}
}

// #endregion

// #region helper-tests

func TestDescribeOverlay(t *testing.T) {
	if describeOverlay(nil) != "none" {
		t.Error("nil overlay should describe as none")
	}
	got := describeOverlay(&experiment.Overlay{SystemPrompt: "s", PrependContext: "p"})
	if got != `{systemPrompt="s" prependContext="p"}` {
		t.Errorf("got %s", got)
	}
}

// #endregion
