package letterworld

import (
	"github.com/zeu5/crm-rl/crm"
	"github.com/zeu5/crm-rl/event"
	"github.com/zeu5/crm-rl/label"
)

// Alphabet is the Letter-World event alphabet Σ = {A, B, C} (spec §8
// "Concrete end-to-end scenarios").
func Alphabet() (*event.Alphabet, error) {
	return event.NewAlphabet("A", "B", "C")
}

// Labeller returns the labelling function used by every Letter-World
// scenario: one detector per letter, firing iff the ground environment
// just emitted that letter (spec §4.1).
func Labeller() (*label.Function[Letter, Action], error) {
	alphabet, err := Alphabet()
	if err != nil {
		return nil, err
	}
	detect := func(name event.Event) label.NamedDetector[Letter, Action] {
		return label.NamedDetector[Letter, Action]{
			Name: string(name),
			Detect: func(o Letter, a Action, oNext Letter) (event.Event, bool) {
				if Letter(name) == oNext {
					return name, true
				}
				return "", false
			},
		}
	}
	return label.New(alphabet, detect("A"), detect("B"), detect("C"))
}

// CRM builds the Letter-World counting reward machine (spec §8 S1-S5):
// count A's in state 0 until B arrives, then drain the counter with
// C's in state 1 until it hits zero, terminating with reward +1. Every
// other transition costs -0.1. reachable bounds the configurations the
// counterfactual generator will enumerate; callers size it to the
// counter range their demo actually visits.
func CRM(reachable []crm.Configuration) (*crm.CRM[Letter, Action], error) {
	alphabet, err := Alphabet()
	if err != nil {
		return nil, err
	}
	cfg := crm.Config[Letter, Action]{
		Alphabet:        alphabet,
		CounterArity:    1,
		InitialState:    0,
		InitialCounters: []int{0},
		TerminalStates:  []int{-1},
		Transitions: map[int]crm.Edges[Letter, Action]{
			0: {
				Order: []string{"B", "A", "not B", ""},
				Dest:  map[string]int{"B": 1, "A": 0, "not B": 0, "": 0},
				Delta: map[string][]int{"B": {0}, "A": {1}, "not B": {0}, "": {0}},
				Reward: map[string]crm.RewardEmitter[Letter, Action]{
					"B":     crm.Constant[Letter, Action](-0.1),
					"A":     crm.Constant[Letter, Action](-0.1),
					"not B": crm.Constant[Letter, Action](-0.1),
					"":      crm.Constant[Letter, Action](-0.1),
				},
			},
			1: {
				Order: []string{"C / (Z)", "C / (NZ)", "not C", ""},
				Dest:  map[string]int{"C / (Z)": -1, "C / (NZ)": 1, "not C": 1, "": 1},
				Delta: map[string][]int{"C / (Z)": {0}, "C / (NZ)": {-1}, "not C": {0}, "": {0}},
				Reward: map[string]crm.RewardEmitter[Letter, Action]{
					"C / (Z)":  crm.Constant[Letter, Action](1),
					"C / (NZ)": crm.Constant[Letter, Action](-0.1),
					"not C":    crm.Constant[Letter, Action](-0.1),
					"":         crm.Constant[Letter, Action](-0.1),
				},
			},
		},
		Reachable: reachable,
	}
	return crm.New(cfg)
}

// DefaultReachable is a reasonable reachable-configuration bound for
// demo runs: both states crossed with counters 0 through maxCounter
// inclusive, plus the terminal sink.
func DefaultReachable(maxCounter int) []crm.Configuration {
	out := []crm.Configuration{{State: -1, Counters: []int{0}}}
	for _, u := range []int{0, 1} {
		for c := 0; c <= maxCounter; c++ {
			out = append(out, crm.Configuration{State: u, Counters: []int{c}})
		}
	}
	return out
}

// AugmentedObs is the Letter-World encode/decode layout: the ground
// letter alongside the automaton state and counters (spec §4.4
// "Augmented observation").
type AugmentedObs struct {
	Ground   Letter
	State    int
	Counters []int
}

// Encode implements the cross-product's encode hook.
func Encode(o Letter, u int, c []int) AugmentedObs {
	return AugmentedObs{Ground: o, State: u, Counters: append([]int(nil), c...)}
}

// DecodeGround implements the cross-product's decode_ground hook,
// inverting Encode on the ground-observation component.
func DecodeGround(x AugmentedObs) Letter {
	return x.Ground
}
