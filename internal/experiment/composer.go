package experiment

import "strings"

// #region composer-struct

// Composer resolves assignments for each prompt build and merges the chosen
// variants into one Overlay. Experiment order is significant: later
// system prompts win, prepend contexts concatenate in order.
type Composer struct {
	experiments []Experiment
	store       *Store
	observer    Observer // nil = none
}

// NewComposer binds the active experiments to an assignment store. The store
// is shared with the Reporter for the same configuration.
func NewComposer(experiments []Experiment, store *Store, observer Observer) *Composer {
	return &Composer{
		experiments: experiments,
		store:       store,
		observer:    observer,
	}
}

// #endregion

// #region compose

// Compose returns the merged overlay for req, or nil when no experiment
// produced an override.
func (c *Composer) Compose(req RequestContext) *Overlay {
	sessionKey := req.identity()

	var systemPrompt string
	var prepends []string

	for _, exp := range c.experiments {
		if !exp.appliesTo(req.AgentID) {
			continue
		}

		v, created := c.store.GetOrAssign(sessionKey, exp)
		if created && c.observer != nil {
			c.observer.Assigned(Assignment{
				SessionKey:   sessionKey,
				ExperimentID: exp.ID,
				VariantID:    v.ID,
			})
		}

		if v.SystemPrompt != "" {
			systemPrompt = v.SystemPrompt
		}
		if p := strings.TrimSpace(v.PrependContext); p != "" {
			prepends = append(prepends, p)
		}
	}

	if systemPrompt == "" && len(prepends) == 0 {
		c.notify(false)
		return nil
	}

	c.notify(true)
	return &Overlay{
		SystemPrompt:   systemPrompt,
		PrependContext: strings.Join(prepends, "\n\n"),
	}
}

func (c *Composer) notify(applied bool) {
	if c.observer != nil {
		c.observer.Composed(applied)
	}
}

// #endregion
