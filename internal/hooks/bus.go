package hooks

import (
	"sync"

	"github.com/danielpatrickdp/adaptive-state/prompt-experiments/internal/experiment"
)

// #region handler-types

type (
	PromptBuildHandler func(PromptBuild) *experiment.Overlay
	SessionEndHandler  func(SessionEnd)
	StartupHandler     func(Startup)
)

// Registrar is the host side of hook registration. Each hook point has its
// own typed method, so a handler cannot be attached to the wrong payload.
type Registrar interface {
	OnPromptBuild(h PromptBuildHandler)
	OnSessionEnd(h SessionEndHandler)
	OnStartup(h StartupHandler)
}

// #endregion

// #region bus

// Bus is an in-process Registrar that dispatches events to the handlers
// registered on it. The last registration per hook point wins.
type Bus struct {
	mu          sync.RWMutex
	promptBuild PromptBuildHandler
	sessionEnd  SessionEndHandler
	startup     StartupHandler
}

// NewBus returns a bus with no handlers.
func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) OnPromptBuild(h PromptBuildHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.promptBuild = h
}

func (b *Bus) OnSessionEnd(h SessionEndHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessionEnd = h
}

func (b *Bus) OnStartup(h StartupHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.startup = h
}

// Registered reports whether any handler was attached.
func (b *Bus) Registered() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.promptBuild != nil || b.sessionEnd != nil || b.startup != nil
}

// #endregion

// #region dispatch

// Dispatch routes ev to its handler. The overlay is only ever non-nil for
// PromptBuild events; unhandled events are a no-op.
func (b *Bus) Dispatch(ev Event) *experiment.Overlay {
	b.mu.RLock()
	promptBuild, sessionEnd, startup := b.promptBuild, b.sessionEnd, b.startup
	b.mu.RUnlock()

	switch e := ev.(type) {
	case PromptBuild:
		if promptBuild != nil {
			return promptBuild(e)
		}
	case SessionEnd:
		if sessionEnd != nil {
			sessionEnd(e)
		}
	case Startup:
		if startup != nil {
			startup(e)
		}
	}
	return nil
}

// #endregion
