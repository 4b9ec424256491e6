package kvstore

import (
	"github.com/zeu5/crm-rl/crm"
	"github.com/zeu5/crm-rl/event"
	"github.com/zeu5/crm-rl/label"
)

// Alphabet is the kvstore event alphabet: the counter key either
// crossed the configured threshold or got reset out from under it.
func Alphabet() (*event.Alphabet, error) {
	return event.NewAlphabet("CrossedThreshold", "KeyReset")
}

// Labeller derives events purely from comparing consecutive counter
// values: CrossedThreshold fires the step the value reaches or passes
// threshold, KeyReset fires whenever the value drops (spec §4.1).
func Labeller(threshold int64) (*label.Function[Observation, Action], error) {
	alphabet, err := Alphabet()
	if err != nil {
		return nil, err
	}
	crossed := label.NamedDetector[Observation, Action]{
		Name: "CrossedThreshold",
		Detect: func(o Observation, _ Action, oNext Observation) (event.Event, bool) {
			if o.Value < threshold && oNext.Value >= threshold {
				return "CrossedThreshold", true
			}
			return "", false
		},
	}
	reset := label.NamedDetector[Observation, Action]{
		Name: "KeyReset",
		Detect: func(o Observation, _ Action, oNext Observation) (event.Event, bool) {
			if oNext.Value < o.Value {
				return "KeyReset", true
			}
			return "", false
		},
	}
	return label.New(alphabet, crossed, reset)
}

// CRM builds a threshold-race counting reward machine: state 0 counts
// increments (the counter value itself is the ground signal; the CRM's
// own counter tracks "resets survived") until the key crosses
// threshold, terminating with reward +1, or a KeyReset knocks it back
// to state 0 at a -0.1 cost, the same win/penalty shape as
// Letter-World's counter-drain automaton.
func CRM(reachable []crm.Configuration) (*crm.CRM[Observation, Action], error) {
	alphabet, err := Alphabet()
	if err != nil {
		return nil, err
	}
	cfg := crm.Config[Observation, Action]{
		Alphabet:        alphabet,
		CounterArity:    1,
		InitialState:    0,
		InitialCounters: []int{0},
		TerminalStates:  []int{-1},
		Transitions: map[int]crm.Edges[Observation, Action]{
			0: {
				Order: []string{"CrossedThreshold", "KeyReset", ""},
				Dest:  map[string]int{"CrossedThreshold": -1, "KeyReset": 0, "": 0},
				Delta: map[string][]int{"CrossedThreshold": {0}, "KeyReset": {1}, "": {0}},
				Reward: map[string]crm.RewardEmitter[Observation, Action]{
					"CrossedThreshold": crm.Constant[Observation, Action](1),
					"KeyReset":         crm.Constant[Observation, Action](-0.1),
					"":                 crm.Constant[Observation, Action](-0.1),
				},
			},
		},
		Reachable: reachable,
	}
	return crm.New(cfg)
}

// DefaultReachable bounds the configurations a threshold-race CRM will
// visit: state 0 at every reset count from 0 through maxResets, plus
// the terminal sink.
func DefaultReachable(maxResets int) []crm.Configuration {
	out := []crm.Configuration{{State: -1, Counters: []int{0}}}
	for c := 0; c <= maxResets; c++ {
		out = append(out, crm.Configuration{State: 0, Counters: []int{c}})
	}
	return out
}

// AugmentedObs is the kvstore encode/decode layout.
type AugmentedObs struct {
	Ground   Observation
	State    int
	Counters []int
}

// Encode implements the cross-product's encode hook.
func Encode(o Observation, u int, c []int) AugmentedObs {
	return AugmentedObs{Ground: o, State: u, Counters: append([]int(nil), c...)}
}

// DecodeGround implements the cross-product's decode_ground hook.
func DecodeGround(x AugmentedObs) Observation {
	return x.Ground
}
