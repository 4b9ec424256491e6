package rlpolicy

import "github.com/zeu5/crm-rl/rl"

// StateAction decides an action for a state, reporting false when it
// declines to decide.
type StateAction func(rl.State, []rl.Action) (rl.Action, bool)

// IfThenStateAction builds a StateAction that only fires If its
// condition holds. Ported from the teacher's policies.IfThenStateAction
// (policies/strict.go).
type IfThenStateAction struct {
	cond func(rl.State) bool
	then func([]rl.Action) (rl.Action, bool)
}

// If starts a conditional rule.
func If(cond func(rl.State) bool) *IfThenStateAction {
	return &IfThenStateAction{cond: cond}
}

// Then completes the rule and returns it as a StateAction.
func (i *IfThenStateAction) Then(action func([]rl.Action) (rl.Action, bool)) StateAction {
	i.then = action
	return func(s rl.State, actions []rl.Action) (rl.Action, bool) {
		if i.cond(s) {
			return i.then(actions)
		}
		return nil, false
	}
}

// Strict wraps a fallback policy with an ordered list of hard
// overrides: the first override whose condition matches decides the
// action; only if none match does the wrapped policy get a say. Useful
// for pinning a CRM-aware safety rule (e.g. always deliver the message
// that would fire "CommittedEntry") on top of a learned policy.
type Strict struct {
	fallback rl.Policy
	rules    []StateAction
}

var _ rl.Policy = &Strict{}

// NewStrict wraps fallback with no overrides yet.
func NewStrict(fallback rl.Policy) *Strict {
	return &Strict{fallback: fallback, rules: make([]StateAction, 0)}
}

// AddRule appends an override, tried in the order added.
func (s *Strict) AddRule(rule StateAction) {
	s.rules = append(s.rules, rule)
}

// NextAction tries every override in order before falling back.
func (s *Strict) NextAction(step int, state rl.State, actions []rl.Action) (rl.Action, bool) {
	for _, rule := range s.rules {
		if a, ok := rule(state, actions); ok {
			return a, true
		}
	}
	return s.fallback.NextAction(step, state, actions)
}

func (s *Strict) Update(step int, state rl.State, action rl.Action, nextState rl.State, reward float64) {
	s.fallback.Update(step, state, action, nextState, reward)
}

func (s *Strict) UpdateIteration(iteration int, trace *rl.Trace) {
	s.fallback.UpdateIteration(iteration, trace)
}

func (s *Strict) Reset() {
	s.fallback.Reset()
}

func (s *Strict) Record(filePrefix string) error {
	return s.fallback.Record(filePrefix)
}
