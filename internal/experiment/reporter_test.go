package experiment

import (
	"strings"
	"testing"
)

func TestReportSessionEnd_NoPriorBuild(t *testing.T) {
	logger, buf := bufLogger()
	exps := []Experiment{personaExperiment()}
	store := NewStore()
	r := NewReporter(exps, store, logger, nil)

	if got := r.ReportSessionEnd(RequestContext{SessionKey: "s1"}); got != nil {
		t.Fatalf("expected no assignments, got %v", got)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no log output, got %q", buf.String())
	}
	if store.Len() != 0 {
		t.Fatal("reporter must not create assignments")
	}
}

func TestReportSessionEnd_AfterBuild(t *testing.T) {
	logger, buf := bufLogger()
	voice := Experiment{
		ID:      "voice",
		Enabled: true,
		Variants: []Variant{
			{ID: "default", Weight: 1},
			{ID: "formal", Weight: 1},
		},
	}
	gated := single("gated", Variant{ID: "v", PrependContext: "x"})
	gated.AgentIDs = []string{"other-agent"}
	exps := []Experiment{personaExperiment(), gated, voice}

	store := NewStore()
	obs := &recordingObserver{}
	NewComposer(exps, store, nil).Compose(RequestContext{SessionKey: "s2", AgentID: "main"})
	NewReporter(exps, store, logger, obs).ReportSessionEnd(RequestContext{SessionKey: "s2"})

	want := "prompt-experiments: assignments session=s2 [persona=variant-a, voice=formal]\n"
	if buf.String() != want {
		t.Fatalf("log = %q, want %q", buf.String(), want)
	}
	if len(obs.reports["s2"]) != 2 {
		t.Fatalf("observer got %d assignments, want 2", len(obs.reports["s2"]))
	}
}

func TestReportSessionEnd_MissingIdentity(t *testing.T) {
	logger, buf := bufLogger()
	store := NewStore()
	exps := []Experiment{personaExperiment()}
	// an anonymous prompt build exists but session-end without identity is skipped
	NewComposer(exps, store, nil).Compose(RequestContext{})
	NewReporter(exps, store, logger, nil).ReportSessionEnd(RequestContext{})
	if buf.Len() != 0 {
		t.Fatalf("expected no log output, got %q", buf.String())
	}
}

func TestReportSessionEnd_SessionIDFallback(t *testing.T) {
	logger, buf := bufLogger()
	store := NewStore()
	exps := []Experiment{personaExperiment()}
	NewComposer(exps, store, nil).Compose(RequestContext{SessionID: "s1"})
	NewReporter(exps, store, logger, nil).ReportSessionEnd(RequestContext{SessionID: "s1"})
	if !strings.Contains(buf.String(), "session=s1 [persona=control]") {
		t.Fatalf("log = %q", buf.String())
	}
}

func TestFormatSessionSummary(t *testing.T) {
	got := FormatSessionSummary("k", []Assignment{
		{ExperimentID: "a", VariantID: "x"},
		{ExperimentID: "b", VariantID: "y"},
	})
	if got != "prompt-experiments: assignments session=k [a=x, b=y]" {
		t.Fatalf("got %q", got)
	}
}
