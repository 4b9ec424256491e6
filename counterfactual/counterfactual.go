// Package counterfactual implements the counterfactual experience
// generator (spec §4.5): for one real ground transition, it replays the
// single computed event set against every reachable (state, counters)
// configuration the CRM declares, producing the experience each would
// have recorded without stepping the ground environment again.
package counterfactual

import (
	"fmt"

	"github.com/zeu5/crm-rl/crm"
	"github.com/zeu5/crm-rl/label"
)

// Experience is one synthetic transition: the augmented observation
// before and after, the action, the reward, and whether the synthetic
// episode would have terminated (spec §4.5 step 2e).
type Experience[A, X any] struct {
	Obs     X
	Action  A
	NextObs X
	Reward  float64
	Done    bool
}

// Generate computes the event set for (o, a, oNext) once, then runs the
// CRM from every non-terminal reachable configuration under that event
// set, returning one Experience per configuration (spec §4.5
// "Algorithm"). Unlike the original implementation this is adapted
// from, a failing CRM step aborts the whole batch instead of silently
// dropping the offending configuration (spec §7: errors propagate
// without recovery).
func Generate[O, A, X any](
	o O, a A, oNext O,
	labeller *label.Function[O, A],
	automaton *crm.CRM[O, A],
	encode func(o O, u int, c []int) X,
) ([]Experience[A, X], error) {
	events := labeller.Label(o, a, oNext)

	reachable := automaton.ReachableConfigurations()
	out := make([]Experience[A, X], 0, len(reachable))
	for _, cfg := range reachable {
		if automaton.IsTerminal(cfg.State) {
			continue
		}
		u2, c2, remit, err := automaton.Step(cfg.State, cfg.Counters, events)
		if err != nil {
			return nil, fmt.Errorf("counterfactual: configuration (u=%d, c=%v): %w", cfg.State, cfg.Counters, err)
		}
		out = append(out, Experience[A, X]{
			Obs:     encode(o, cfg.State, cfg.Counters),
			Action:  a,
			NextObs: encode(oNext, u2, c2),
			Reward:  remit.Emit(o, a, oNext),
			Done:    automaton.IsTerminal(u2),
		})
	}
	return out, nil
}
