package rl

import (
	"github.com/zeu5/crm-rl/crossproduct"
)

// CRMEnvironment adapts a crossproduct.CrossProduct[O, A, X] into the
// Hash-indexed rl.Environment contract an Agent/Policy can drive: every
// State/Action it hands out wraps an augmented observation or ground
// action from the cross-product, hashed by caller-supplied functions so
// policies can key a Q-table off them (spec §4.4's augmented
// observation is exactly what State.Hash indexes).
type CRMEnvironment[O, A, X any] struct {
	cp         *crossproduct.CrossProduct[O, A, X]
	actionsFor func(X) []A
	hashState  func(X) string
	hashAction func(A) string
}

// NewCRMEnvironment builds an rl.Environment over cp. actions is the
// fixed ground action space offered at every state; hashState and
// hashAction must be deterministic (spec §4.4 invariant 4, determinism).
// For a ground environment whose action space varies by state (e.g. the
// set of currently in-flight messages), use NewDynamicCRMEnvironment
// instead.
func NewCRMEnvironment[O, A, X any](cp *crossproduct.CrossProduct[O, A, X], actions []A, hashState func(X) string, hashAction func(A) string) *CRMEnvironment[O, A, X] {
	return NewDynamicCRMEnvironment(cp, func(X) []A { return actions }, hashState, hashAction)
}

// NewDynamicCRMEnvironment is NewCRMEnvironment generalized to a
// per-observation action space: actionsFor is called on every
// augmented observation to determine what the policy may choose from
// next, which raftelect's in-flight-message action space needs and
// letterworld/kvstore's fixed alphabets don't.
func NewDynamicCRMEnvironment[O, A, X any](cp *crossproduct.CrossProduct[O, A, X], actionsFor func(X) []A, hashState func(X) string, hashAction func(A) string) *CRMEnvironment[O, A, X] {
	return &CRMEnvironment[O, A, X]{cp: cp, actionsFor: actionsFor, hashState: hashState, hashAction: hashAction}
}

var _ Environment = (*CRMEnvironment[int, int, int])(nil)

// crmState wraps one augmented observation as an rl.State.
type crmState[O, A, X any] struct {
	obs     X
	hash    string
	actions []Action
}

func (s *crmState[O, A, X]) Hash() string    { return s.hash }
func (s *crmState[O, A, X]) Actions() []Action { return s.actions }

// Obs returns the wrapped augmented observation.
func (s *crmState[O, A, X]) Obs() X { return s.obs }

// crmAction wraps one ground action as an rl.Action.
type crmAction[A any] struct {
	value A
	hash  string
}

func (a *crmAction[A]) Hash() string { return a.hash }

// Value returns the wrapped ground action.
func (a *crmAction[A]) Value() A { return a.value }

func (e *CRMEnvironment[O, A, X]) wrap(obs X) *crmState[O, A, X] {
	available := e.actionsFor(obs)
	actions := make([]Action, len(available))
	for i, a := range available {
		actions[i] = &crmAction[A]{value: a, hash: e.hashAction(a)}
	}
	return &crmState[O, A, X]{obs: obs, hash: e.hashState(obs), actions: actions}
}

// Reset resets the underlying cross-product and wraps the resulting
// augmented observation.
func (e *CRMEnvironment[O, A, X]) Reset(_ *EpisodeContext) (State, error) {
	obs, _, err := e.cp.Reset(nil)
	if err != nil {
		return nil, err
	}
	return e.wrap(obs), nil
}

// Step unwraps action, steps the cross-product, and reports the
// resulting reward/termination/truncation through sCtx.
func (e *CRMEnvironment[O, A, X]) Step(action Action, sCtx *StepContext) (State, error) {
	wa := action.(*crmAction[A])
	obs, reward, terminated, truncated, _, err := e.cp.Step(wa.value)
	if err != nil {
		return nil, err
	}
	sCtx.Reward = reward
	sCtx.Terminated = terminated
	sCtx.Truncated = truncated
	return e.wrap(obs), nil
}
