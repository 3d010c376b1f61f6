package replay

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/adaptive-state/prompt-experiments/internal/experiment"
	"github.com/danielpatrickdp/adaptive-state/prompt-experiments/internal/hooks"
)

// #region types

// EventResult captures what one replayed event produced and whether it matched.
type EventResult struct {
	Index   int
	Kind    hooks.Kind
	Overlay *experiment.Overlay
	Log     []string
	Passed  bool
	Reason  string
}

// Report is the outcome of replaying one fixture.
type Report struct {
	Description string
	Idle        bool
	SetupLog    []string
	Results     []EventResult
	Passed      bool
	Reason      string
}

// Failures returns the results that did not match their expectations.
func (r Report) Failures() []EventResult {
	var out []EventResult
	for _, res := range r.Results {
		if !res.Passed {
			out = append(out, res)
		}
	}
	return out
}

// #endregion

// #region capture-logger

// captureLogger collects formatted lines so each event's output can be compared.
type captureLogger struct {
	lines []string
}

func (c *captureLogger) Printf(format string, args ...any) {
	c.lines = append(c.lines, fmt.Sprintf(format, args...))
}

func (c *captureLogger) drain() []string {
	out := c.lines
	c.lines = nil
	return out
}

// #endregion

// #region run

// Run replays every event against a fresh plugin. Operates entirely in-memory;
// assignments are deterministic, so a fixture yields the same report on
// every run and every host.
func Run(f *Fixture) Report {
	logger := &captureLogger{}
	plugin := hooks.NewPlugin(f.Experiments, logger, nil)
	bus := hooks.NewBus()
	registered := plugin.Register(bus)

	report := Report{
		Description: f.Description,
		Idle:        !registered,
		SetupLog:    logger.drain(),
		Passed:      true,
	}
	if report.Idle != f.ExpectIdle {
		report.Passed = false
		report.Reason = fmt.Sprintf("expected idle=%v, got idle=%v", f.ExpectIdle, report.Idle)
	}

	for i := range f.Events {
		fe := &f.Events[i]
		ev := fe.ToEvent()
		ov := bus.Dispatch(ev)

		res := EventResult{
			Index:   i,
			Kind:    ev.Kind(),
			Overlay: ov,
			Log:     logger.drain(),
			Passed:  true,
		}
		if reason := check(fe, ev.Kind(), ov, res.Log); reason != "" {
			res.Passed = false
			res.Reason = reason
			report.Passed = false
		}
		report.Results = append(report.Results, res)
	}
	return report
}

func check(fe *FixtureEvent, kind hooks.Kind, ov *experiment.Overlay, lines []string) string {
	if kind == hooks.KindPromptBuild && !overlayEqual(fe.ExpectOverlay, ov) {
		return fmt.Sprintf("overlay = %s, want %s", describeOverlay(ov), describeOverlay(fe.ExpectOverlay))
	}
	if fe.ExpectLog != nil && !linesEqual(fe.ExpectLog, lines) {
		return fmt.Sprintf("log = %q, want %q", lines, fe.ExpectLog)
	}
	return ""
}

// #endregion

// #region helpers

func overlayEqual(a, b *experiment.Overlay) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func linesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func describeOverlay(ov *experiment.Overlay) string {
	if ov == nil {
		return "none"
	}
	var parts []string
	if ov.SystemPrompt != "" {
		parts = append(parts, fmt.Sprintf("systemPrompt=%q", ov.SystemPrompt))
	}
	if ov.PrependContext != "" {
		parts = append(parts, fmt.Sprintf("prependContext=%q", ov.PrependContext))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// #endregion
