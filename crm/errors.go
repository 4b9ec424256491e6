package crm

import "errors"

// Sentinel errors identifying the ConstructionError and runtime error
// kinds of spec §7. Construction errors are wrapped with the offending
// source state and/or expression so the message can identify it;
// callers distinguish kinds with errors.Is.
var (
	// ErrParse marks a transition expression that failed to parse.
	ErrParse = errors.New("crm: parse error")
	// ErrArityMismatch marks a counter delta whose length disagrees with
	// the CRM's declared counter arity.
	ErrArityMismatch = errors.New("crm: arity mismatch")
	// ErrKeyMismatch marks a source state whose Dest/Delta/Reward maps
	// do not share an identical key set.
	ErrKeyMismatch = errors.New("crm: transition maps have mismatched keys")
	// ErrMissingDefault marks a non-terminal source state with no
	// default (empty formula, all-wildcard pattern) edge.
	ErrMissingDefault = errors.New("crm: non-terminal state has no default edge")
	// ErrUnknownEvent marks a transition expression referencing an event
	// outside the declared alphabet. Such an error also wraps ErrParse.
	ErrUnknownEvent = errors.New("crm: unknown event")
	// ErrUnknownState marks an edge destination, initial state, or
	// reachable-configuration state that is neither a declared state
	// nor the terminal sink -1.
	ErrUnknownState = errors.New("crm: unknown state")
	// ErrEmptyReachableSet marks an empty user-supplied
	// reachable-configuration set. A configuration with an unknown state
	// or a wrong counter arity is reported as ErrUnknownState or
	// ErrArityMismatch instead.
	ErrEmptyReachableSet = errors.New("crm: empty or invalid reachable configuration set")

	// ErrTerminalStep marks a Step call on a state already in the
	// terminal set; it is a runtime invariant violation, never
	// recoverable (spec §7).
	ErrTerminalStep = errors.New("crm: step invoked on terminal state")
)
