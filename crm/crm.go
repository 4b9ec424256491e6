// Package crm implements the counting reward machine automaton (spec
// §3, §4.3): construction with full well-formedness validation, and
// one-step execution. A CRM is immutable once constructed and safe to
// share across cross-product instances and goroutines (spec §5).
package crm

import (
	"errors"
	"fmt"
	"sort"

	"github.com/zeu5/crm-rl/event"
	"github.com/zeu5/crm-rl/expr"
)

// Configuration is a (state, counter-tuple) pair — one element of a
// CRM's reachable-configuration set (spec §3 "CRM state", Glossary
// "Reachable configuration set").
type Configuration struct {
	State    int
	Counters []int
}

// Transition is the user-facing description of one edge out of a
// source state: an expression string, a destination state, a signed
// counter delta, and a reward emitter (spec §3 "CRM transition
// record").
type Transition[O, A any] struct {
	Formula string
	Dest    int
	Delta   []int
	Reward  RewardEmitter[O, A]
}

// Edges collects the transitions declared for one source state. Order
// lists the expression keys in user-declared order; Dest, Delta and
// Reward are the parallel maps spec.md §4.3 describes. All four must
// share an identical key set (ErrKeyMismatch otherwise) — Order exists
// because spec.md's tie-break rule ("first match wins" in declared
// order, §4.3) needs an explicit sequence, and Go map iteration order
// is not declaration order. This is the "single ordered-list-of-records"
// normalization spec §9 calls for, exposed at the construction surface
// instead of only internally.
type Edges[O, A any] struct {
	Order  []string
	Dest   map[string]int
	Delta  map[string][]int
	Reward map[string]RewardEmitter[O, A]
}

// Config is the full construction input for a CRM (spec §4.3
// "Construction").
type Config[O, A any] struct {
	Alphabet        *event.Alphabet
	CounterArity    int
	InitialState    int
	InitialCounters []int
	// TerminalStates defaults to {-1} when nil (spec §3 "F = terminal
	// set default {-1}").
	TerminalStates []int
	Transitions    map[int]Edges[O, A]
	// Reachable is the user-supplied, finite set of (state, counters)
	// configurations reachable under this CRM. It is not computed —
	// reachability is undecidable in general (spec §4.3, §9) — so the
	// caller must supply a sound bound.
	Reachable []Configuration
}

type compiledEdge[O, A any] struct {
	formula   string
	expr      *expr.Expr
	dest      int
	delta     []int
	reward    RewardEmitter[O, A]
	isDefault bool
}

// CRM is a validated, immutable counting reward machine.
type CRM[O, A any] struct {
	alphabet  *event.Alphabet
	arity     int
	u0        int
	c0        []int
	terminal  map[int]struct{}
	declared  map[int]struct{} // states with declared transitions (non-terminal)
	edges     map[int][]compiledEdge[O, A]
	reachable []Configuration
}

// New validates cfg and compiles every declared transition expression,
// returning a ConstructionError (wrapping one of this package's
// sentinel errors) identifying the offending state or expression on
// failure (spec §4.3, §7).
func New[O, A any](cfg Config[O, A]) (*CRM[O, A], error) {
	if cfg.Alphabet == nil {
		return nil, fmt.Errorf("crm: alphabet must not be nil")
	}
	if cfg.CounterArity < 1 {
		return nil, fmt.Errorf("crm: counter arity must be at least 1, got %d", cfg.CounterArity)
	}
	if len(cfg.InitialCounters) != cfg.CounterArity {
		return nil, fmt.Errorf("crm: initial counters has arity %d, want %d: %w",
			len(cfg.InitialCounters), cfg.CounterArity, ErrArityMismatch)
	}

	terminal := map[int]struct{}{}
	if cfg.TerminalStates == nil {
		terminal[-1] = struct{}{}
	} else {
		for _, s := range cfg.TerminalStates {
			terminal[s] = struct{}{}
		}
	}

	declared := make(map[int]struct{}, len(cfg.Transitions))
	for s := range cfg.Transitions {
		declared[s] = struct{}{}
	}

	isKnownState := func(s int) bool {
		if s == -1 {
			return true
		}
		if _, ok := declared[s]; ok {
			return true
		}
		_, ok := terminal[s]
		return ok
	}

	if !isKnownState(cfg.InitialState) {
		return nil, fmt.Errorf("crm: initial state %d: %w", cfg.InitialState, ErrUnknownState)
	}

	compiled := make(map[int][]compiledEdge[O, A], len(cfg.Transitions))

	// Deterministic iteration over source states so construction
	// errors are reported in a stable order.
	srcStates := make([]int, 0, len(cfg.Transitions))
	for s := range cfg.Transitions {
		srcStates = append(srcStates, s)
	}
	sort.Ints(srcStates)

	for _, src := range srcStates {
		edges := cfg.Transitions[src]

		keySet := make(map[string]struct{}, len(edges.Order))
		for _, name := range edges.Order {
			if _, dup := keySet[name]; dup {
				return nil, fmt.Errorf("crm: state %d: duplicate expression key %q: %w", src, name, ErrKeyMismatch)
			}
			keySet[name] = struct{}{}
		}
		if len(keySet) != len(edges.Dest) || len(keySet) != len(edges.Delta) || len(keySet) != len(edges.Reward) {
			return nil, fmt.Errorf("crm: state %d: Order/Dest/Delta/Reward key counts disagree: %w", src, ErrKeyMismatch)
		}
		for name := range keySet {
			if _, ok := edges.Dest[name]; !ok {
				return nil, fmt.Errorf("crm: state %d: expression %q missing from Dest map: %w", src, name, ErrKeyMismatch)
			}
			if _, ok := edges.Delta[name]; !ok {
				return nil, fmt.Errorf("crm: state %d: expression %q missing from Delta map: %w", src, name, ErrKeyMismatch)
			}
			if _, ok := edges.Reward[name]; !ok {
				return nil, fmt.Errorf("crm: state %d: expression %q missing from Reward map: %w", src, name, ErrKeyMismatch)
			}
		}

		var normal, defaults []compiledEdge[O, A]
		for _, name := range edges.Order {
			dest := edges.Dest[name]
			delta := edges.Delta[name]
			if len(delta) != cfg.CounterArity {
				return nil, fmt.Errorf("crm: state %d, expression %q: delta has arity %d, want %d: %w",
					src, name, len(delta), cfg.CounterArity, ErrArityMismatch)
			}
			if !isKnownState(dest) {
				return nil, fmt.Errorf("crm: state %d, expression %q: destination %d: %w", src, name, dest, ErrUnknownState)
			}
			parsed, err := expr.Parse(name, cfg.Alphabet, cfg.CounterArity)
			if err != nil {
				if errors.Is(err, expr.ErrUnknownEvent) {
					return nil, fmt.Errorf("crm: state %d, expression %q: %w: %w: %v", src, name, ErrParse, ErrUnknownEvent, err)
				}
				return nil, fmt.Errorf("crm: state %d, expression %q: %w: %v", src, name, ErrParse, err)
			}
			ce := compiledEdge[O, A]{
				formula:   name,
				expr:      parsed,
				dest:      dest,
				delta:     append([]int(nil), delta...),
				reward:    edges.Reward[name],
				isDefault: parsed.IsDefaultShape(),
			}
			if ce.isDefault {
				defaults = append(defaults, ce)
			} else {
				normal = append(normal, ce)
			}
		}

		if len(defaults) == 0 {
			return nil, fmt.Errorf("crm: state %d: %w", src, ErrMissingDefault)
		}

		// Normalize: non-default edges first in declared order, default
		// edge(s) tried last regardless of where they were declared
		// (spec §3 invariants, §9 "default edge must be tried last").
		compiled[src] = append(normal, defaults...)
	}

	if len(cfg.Reachable) == 0 {
		return nil, fmt.Errorf("crm: %w", ErrEmptyReachableSet)
	}
	reachable := make([]Configuration, len(cfg.Reachable))
	for i, rc := range cfg.Reachable {
		if !isKnownState(rc.State) {
			return nil, fmt.Errorf("crm: reachable configuration %d: state %d: %w", i, rc.State, ErrUnknownState)
		}
		if len(rc.Counters) != cfg.CounterArity {
			return nil, fmt.Errorf("crm: reachable configuration %d: counters has arity %d, want %d: %w",
				i, len(rc.Counters), cfg.CounterArity, ErrArityMismatch)
		}
		reachable[i] = Configuration{State: rc.State, Counters: append([]int(nil), rc.Counters...)}
	}

	return &CRM[O, A]{
		alphabet:  cfg.Alphabet,
		arity:     cfg.CounterArity,
		u0:        cfg.InitialState,
		c0:        append([]int(nil), cfg.InitialCounters...),
		terminal:  terminal,
		declared:  declared,
		edges:     compiled,
		reachable: reachable,
	}, nil
}

// U0 returns the initial state.
func (c *CRM[O, A]) U0() int { return c.u0 }

// C0 returns a copy of the initial counter tuple.
func (c *CRM[O, A]) C0() []int { return append([]int(nil), c.c0...) }

// CounterArity returns the fixed counter arity k.
func (c *CRM[O, A]) CounterArity() int { return c.arity }

// Alphabet returns the event alphabet this CRM was constructed against.
func (c *CRM[O, A]) Alphabet() *event.Alphabet { return c.alphabet }

// IsTerminal reports whether u is in the terminal set F.
func (c *CRM[O, A]) IsTerminal(u int) bool {
	_, ok := c.terminal[u]
	return ok
}

// TerminalStates returns the terminal set F in sorted order.
func (c *CRM[O, A]) TerminalStates() []int {
	out := make([]int, 0, len(c.terminal))
	for s := range c.terminal {
		out = append(out, s)
	}
	sort.Ints(out)
	return out
}

// ReachableConfigurations returns the user-supplied, validated set of
// reachable (state, counters) configurations (spec §4.3, §4.5).
func (c *CRM[O, A]) ReachableConfigurations() []Configuration {
	out := make([]Configuration, len(c.reachable))
	for i, rc := range c.reachable {
		out[i] = Configuration{State: rc.State, Counters: append([]int(nil), rc.Counters...)}
	}
	return out
}

// Step executes one CRM transition from (u, counters) under fired event
// set events: it selects the first matching declared edge (default
// tried last), returning the destination state, updated counters, and
// the edge's reward emitter (spec §4.3 "One-step execution").
//
// Step fails with ErrTerminalStep if u is already in the terminal set,
// and with ErrUnknownState if u has no declared transitions; neither is
// recoverable.
func (c *CRM[O, A]) Step(u int, counters []int, events event.Set) (int, []int, RewardEmitter[O, A], error) {
	var zero RewardEmitter[O, A]
	if c.IsTerminal(u) {
		return 0, nil, zero, fmt.Errorf("crm: state %d: %w", u, ErrTerminalStep)
	}
	edges, ok := c.edges[u]
	if !ok {
		return 0, nil, zero, fmt.Errorf("crm: state %d has no declared transitions: %w", u, ErrUnknownState)
	}
	for _, e := range edges {
		if e.expr.Match(events, counters) {
			next := make([]int, c.arity)
			for i := range counters {
				next[i] = counters[i] + e.delta[i]
			}
			return e.dest, next, e.reward, nil
		}
	}
	// Unreachable: construction guarantees every non-terminal state has
	// a default edge, and a default edge always matches.
	return 0, nil, zero, fmt.Errorf("crm: state %d: no edge matched (construction invariant violated)", u)
}
