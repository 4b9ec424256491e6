// Package rl provides the RL-loop scaffolding that drives a
// crossproduct.CrossProduct through episodes: the Hash-indexed
// State/Action interfaces, the Agent/Experiment runners, and the
// visit-graph/analysis tooling built on top of them. It generalizes the
// teacher's bespoke partition-testing harness (types.Environment,
// types.Agent, types.Experiment) to run over any CRM domain instead of
// one fixed raft environment.
package rl

// State is anything an RL policy can act on: an augmented (ground,
// automaton) observation, indexed by a deterministic hash and exposing
// the actions available from it.
type State interface {
	Hash() string
	Actions() []Action
}

// Action is anything an RL policy can choose, indexed by a
// deterministic hash so it can key a Q-table.
type Action interface {
	Hash() string
}

// Environment drives one cross-product episode step by step. Reset and
// Step report reward/termination through the StepContext/EpisodeContext
// rather than a direct return value, mirroring the teacher's context-
// propagated Environment contract (spec §6 carried up to the RL loop).
type Environment interface {
	Reset(*EpisodeContext) (State, error)
	Step(Action, *StepContext) (State, error)
}

// Policy selects actions and learns from transitions.
type Policy interface {
	UpdateIteration(int, *Trace)
	NextAction(int, State, []Action) (Action, bool)
	Update(int, State, Action, State, float64)
	Reset()
	// Record persists the policy's learned state (e.g. a Q-table) to
	// filePrefix, in whatever format the concrete policy chooses.
	Record(filePrefix string) error
}
