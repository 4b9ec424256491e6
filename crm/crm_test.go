package crm

import (
	"errors"
	"testing"

	"github.com/zeu5/crm-rl/event"
)

// newLetterWorld builds the A-B-C counting reward machine used by the
// Letter-World scenarios: count A's in state 0 until B arrives, then
// drain the counter with C's in state 1 until it hits zero, at which
// point the machine terminates with reward +1. Every other transition
// costs -0.1. O and A (ground observation/action) are left as plain
// strings; this package never inspects them.
func newLetterWorld(t *testing.T) *CRM[string, string] {
	t.Helper()
	alphabet, err := event.NewAlphabet("A", "B", "C")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := Config[string, string]{
		Alphabet:        alphabet,
		CounterArity:    1,
		InitialState:    0,
		InitialCounters: []int{0},
		TerminalStates:  []int{-1},
		Transitions: map[int]Edges[string, string]{
			0: {
				Order: []string{"B", "A", "not B", ""},
				Dest:  map[string]int{"B": 1, "A": 0, "not B": 0, "": 0},
				Delta: map[string][]int{
					"B": {0}, "A": {1}, "not B": {0}, "": {0},
				},
				Reward: map[string]RewardEmitter[string, string]{
					"B": Constant[string, string](-0.1), "A": Constant[string, string](-0.1),
					"not B": Constant[string, string](-0.1), "": Constant[string, string](-0.1),
				},
			},
			1: {
				Order: []string{"C / (Z)", "C / (NZ)", "not C", ""},
				Dest:  map[string]int{"C / (Z)": -1, "C / (NZ)": 1, "not C": 1, "": 1},
				Delta: map[string][]int{
					"C / (Z)": {0}, "C / (NZ)": {-1}, "not C": {0}, "": {0},
				},
				Reward: map[string]RewardEmitter[string, string]{
					"C / (Z)": Constant[string, string](1), "C / (NZ)": Constant[string, string](-0.1),
					"not C": Constant[string, string](-0.1), "": Constant[string, string](-0.1),
				},
			},
		},
		Reachable: []Configuration{
			{State: 0, Counters: []int{0}},
			{State: 0, Counters: []int{1}},
			{State: 0, Counters: []int{2}},
			{State: 1, Counters: []int{0}},
			{State: 1, Counters: []int{1}},
			{State: 1, Counters: []int{2}},
		},
	}

	m, err := New(cfg)
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}
	return m
}

func runTrajectory(t *testing.T, m *CRM[string, string], events []event.Set) (states []int, counters [][]int, rewards []float64) {
	t.Helper()
	u, c := m.U0(), m.C0()
	states = append(states, u)
	counters = append(counters, c)
	for _, e := range events {
		nu, nc, remit, err := m.Step(u, c, e)
		if err != nil {
			t.Fatalf("unexpected step error: %v", err)
		}
		r := remit.Emit("", "", "")
		rewards = append(rewards, r)
		u, c = nu, nc
		states = append(states, u)
		counters = append(counters, c)
	}
	return
}

func TestScenarioS1(t *testing.T) {
	m := newLetterWorld(t)
	events := []event.Set{
		event.NewSet(), event.NewSet("A"), event.NewSet("A"),
		event.NewSet("B"), event.NewSet("C"), event.NewSet("C"),
	}
	states, counters, rewards := runTrajectory(t, m, events)

	wantStates := []int{0, 0, 0, 0, 1, 1, 1}
	wantCounters := [][]int{{0}, {0}, {1}, {2}, {2}, {1}, {0}}
	for i := range wantStates {
		if states[i] != wantStates[i] || counters[i][0] != wantCounters[i][0] {
			t.Fatalf("step %d: got (u=%d,c=%v), want (u=%d,c=%v)", i, states[i], counters[i], wantStates[i], wantCounters[i])
		}
	}
	for _, r := range rewards {
		if r != -0.1 {
			t.Fatalf("expected all rewards -0.1, got %v", rewards)
		}
	}
}

func TestScenarioS2(t *testing.T) {
	m := newLetterWorld(t)
	events := []event.Set{event.NewSet("B"), event.NewSet("C")}
	states, counters, rewards := runTrajectory(t, m, events)

	wantStates := []int{0, 1, -1}
	wantCounters := [][]int{{0}, {0}, {0}}
	for i := range wantStates {
		if states[i] != wantStates[i] || counters[i][0] != wantCounters[i][0] {
			t.Fatalf("step %d: got (u=%d,c=%v), want (u=%d,c=%v)", i, states[i], counters[i], wantStates[i], wantCounters[i])
		}
	}
	wantRewards := []float64{-0.1, 1}
	for i, r := range rewards {
		if r != wantRewards[i] {
			t.Fatalf("reward %d: got %v, want %v", i, r, wantRewards[i])
		}
	}
	if !m.IsTerminal(states[len(states)-1]) {
		t.Fatalf("expected final state to be terminal")
	}
}

func TestScenarioS3(t *testing.T) {
	m := newLetterWorld(t)
	events := []event.Set{
		event.NewSet("A"), event.NewSet("B"), event.NewSet("C"), event.NewSet("C"),
	}
	states, counters, rewards := runTrajectory(t, m, events)

	wantStates := []int{0, 0, 1, 1, -1}
	wantCounters := [][]int{{0}, {1}, {1}, {0}, {0}}
	for i := range wantStates {
		if states[i] != wantStates[i] || counters[i][0] != wantCounters[i][0] {
			t.Fatalf("step %d: got (u=%d,c=%v), want (u=%d,c=%v)", i, states[i], counters[i], wantStates[i], wantCounters[i])
		}
	}
	wantRewards := []float64{-0.1, -0.1, -0.1, 1}
	for i, r := range rewards {
		if r != wantRewards[i] {
			t.Fatalf("reward %d: got %v, want %v", i, r, wantRewards[i])
		}
	}
}

func TestScenarioS4NeverTerminatesOnEmptyEvents(t *testing.T) {
	m := newLetterWorld(t)
	u, c := m.U0(), m.C0()
	for i := 0; i < 200; i++ {
		nu, nc, remit, err := m.Step(u, c, event.NewSet())
		if err != nil {
			t.Fatalf("step %d: unexpected error: %v", i, err)
		}
		if remit.Emit("", "", "") != -0.1 {
			t.Fatalf("step %d: expected reward -0.1", i)
		}
		u, c = nu, nc
	}
	if u != 0 || c[0] != 0 {
		t.Fatalf("expected state to stay (0,0), got (%d,%v)", u, c)
	}
	if m.IsTerminal(u) {
		t.Fatalf("expected state to never become terminal")
	}
}

func TestDefaultEdgeAlwaysMatchesEmptySet(t *testing.T) {
	m := newLetterWorld(t)
	for _, cfg := range m.ReachableConfigurations() {
		if m.IsTerminal(cfg.State) {
			continue
		}
		if _, _, _, err := m.Step(cfg.State, cfg.Counters, event.NewSet()); err != nil {
			t.Fatalf("state %d, counters %v: default edge should always match empty set: %v", cfg.State, cfg.Counters, err)
		}
	}
}

func TestStepOnTerminalStateFails(t *testing.T) {
	m := newLetterWorld(t)
	_, _, _, err := m.Step(-1, []int{0}, event.NewSet())
	if !errors.Is(err, ErrTerminalStep) {
		t.Fatalf("expected ErrTerminalStep, got %v", err)
	}
}

func TestMissingDefaultEdgeRejected(t *testing.T) {
	alphabet, _ := event.NewAlphabet("A")
	cfg := Config[string, string]{
		Alphabet:        alphabet,
		CounterArity:    1,
		InitialState:    0,
		InitialCounters: []int{0},
		Transitions: map[int]Edges[string, string]{
			0: {
				Order:  []string{"A"},
				Dest:   map[string]int{"A": 0},
				Delta:  map[string][]int{"A": {0}},
				Reward: map[string]RewardEmitter[string, string]{"A": Constant[string, string](0)},
			},
		},
		Reachable: []Configuration{{State: 0, Counters: []int{0}}},
	}
	_, err := New(cfg)
	if !errors.Is(err, ErrMissingDefault) {
		t.Fatalf("expected ErrMissingDefault, got %v", err)
	}
}

func TestArityMismatchRejected(t *testing.T) {
	alphabet, _ := event.NewAlphabet("A")
	cfg := Config[string, string]{
		Alphabet:        alphabet,
		CounterArity:    1,
		InitialState:    0,
		InitialCounters: []int{0},
		Transitions: map[int]Edges[string, string]{
			0: {
				Order: []string{"A", ""},
				Dest:  map[string]int{"A": 0, "": 0},
				Delta: map[string][]int{
					"A": {0, 0}, // wrong arity
					"":  {0},
				},
				Reward: map[string]RewardEmitter[string, string]{
					"A": Constant[string, string](0), "": Constant[string, string](0),
				},
			},
		},
		Reachable: []Configuration{{State: 0, Counters: []int{0}}},
	}
	_, err := New(cfg)
	if !errors.Is(err, ErrArityMismatch) {
		t.Fatalf("expected ErrArityMismatch, got %v", err)
	}
}

func TestKeyMismatchRejected(t *testing.T) {
	alphabet, _ := event.NewAlphabet("A")
	cfg := Config[string, string]{
		Alphabet:        alphabet,
		CounterArity:    1,
		InitialState:    0,
		InitialCounters: []int{0},
		Transitions: map[int]Edges[string, string]{
			0: {
				Order:  []string{"A", ""},
				Dest:   map[string]int{"A": 0, "": 0},
				Delta:  map[string][]int{"A": {0}}, // missing "" key
				Reward: map[string]RewardEmitter[string, string]{"A": Constant[string, string](0), "": Constant[string, string](0)},
			},
		},
		Reachable: []Configuration{{State: 0, Counters: []int{0}}},
	}
	_, err := New(cfg)
	if !errors.Is(err, ErrKeyMismatch) {
		t.Fatalf("expected ErrKeyMismatch, got %v", err)
	}
}

func TestUnknownEventRejected(t *testing.T) {
	alphabet, _ := event.NewAlphabet("A")
	cfg := Config[string, string]{
		Alphabet:        alphabet,
		CounterArity:    1,
		InitialState:    0,
		InitialCounters: []int{0},
		Transitions: map[int]Edges[string, string]{
			0: {
				Order:  []string{"D", ""},
				Dest:   map[string]int{"D": 0, "": 0},
				Delta:  map[string][]int{"D": {0}, "": {0}},
				Reward: map[string]RewardEmitter[string, string]{"D": Constant[string, string](0), "": Constant[string, string](0)},
			},
		},
		Reachable: []Configuration{{State: 0, Counters: []int{0}}},
	}
	_, err := New(cfg)
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestUnknownDestinationStateRejected(t *testing.T) {
	alphabet, _ := event.NewAlphabet("A")
	cfg := Config[string, string]{
		Alphabet:        alphabet,
		CounterArity:    1,
		InitialState:    0,
		InitialCounters: []int{0},
		Transitions: map[int]Edges[string, string]{
			0: {
				Order:  []string{"A", ""},
				Dest:   map[string]int{"A": 99, "": 0},
				Delta:  map[string][]int{"A": {0}, "": {0}},
				Reward: map[string]RewardEmitter[string, string]{"A": Constant[string, string](0), "": Constant[string, string](0)},
			},
		},
		Reachable: []Configuration{{State: 0, Counters: []int{0}}},
	}
	_, err := New(cfg)
	if !errors.Is(err, ErrUnknownState) {
		t.Fatalf("expected ErrUnknownState, got %v", err)
	}
}

func TestEmptyReachableSetRejected(t *testing.T) {
	alphabet, _ := event.NewAlphabet("A")
	cfg := Config[string, string]{
		Alphabet:        alphabet,
		CounterArity:    1,
		InitialState:    0,
		InitialCounters: []int{0},
		Transitions: map[int]Edges[string, string]{
			0: {
				Order:  []string{""},
				Dest:   map[string]int{"": 0},
				Delta:  map[string][]int{"": {0}},
				Reward: map[string]RewardEmitter[string, string]{"": Constant[string, string](0)},
			},
		},
	}
	_, err := New(cfg)
	if !errors.Is(err, ErrEmptyReachableSet) {
		t.Fatalf("expected ErrEmptyReachableSet, got %v", err)
	}
}
