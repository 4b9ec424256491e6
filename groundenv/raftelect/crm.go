package raftelect

import (
	"github.com/zeu5/crm-rl/crm"
)

// CRM builds a leader-stability counting reward machine: state 0 waits
// for a leader to be elected, state 1 counts committed entries down
// from target once a leader exists, returning to state 0 (without
// losing progress) on a leadership change. A step with a commit while
// the counter is already zero terminates with reward +1, so an episode
// ends on the first commit step after target earlier commit steps in
// state 1, whether or not leadership changed in between. Every other
// transition costs -0.1, penalizing churn the same way Letter-World's
// counter penalizes wasted letters.
func CRM(target int, reachable []crm.Configuration) (*crm.CRM[Observation, Action], error) {
	alphabet, err := Alphabet()
	if err != nil {
		return nil, err
	}
	cfg := crm.Config[Observation, Action]{
		Alphabet:        alphabet,
		CounterArity:    1,
		InitialState:    0,
		InitialCounters: []int{target},
		TerminalStates:  []int{-1},
		Transitions: map[int]crm.Edges[Observation, Action]{
			0: {
				Order: []string{"BecameLeader", ""},
				Dest:  map[string]int{"BecameLeader": 1, "": 0},
				Delta: map[string][]int{"BecameLeader": {0}, "": {0}},
				Reward: map[string]crm.RewardEmitter[Observation, Action]{
					"BecameLeader": crm.Constant[Observation, Action](-0.1),
					"":             crm.Constant[Observation, Action](-0.1),
				},
			},
			1: {
				Order: []string{"BecameFollower", "CommittedEntry / (Z)", "CommittedEntry / (NZ)", "not CommittedEntry", ""},
				Dest: map[string]int{
					"BecameFollower":        0,
					"CommittedEntry / (Z)":  -1,
					"CommittedEntry / (NZ)": 1,
					"not CommittedEntry":    1,
					"":                      1,
				},
				Delta: map[string][]int{
					"BecameFollower":        {0},
					"CommittedEntry / (Z)":  {0},
					"CommittedEntry / (NZ)": {-1},
					"not CommittedEntry":    {0},
					"":                      {0},
				},
				Reward: map[string]crm.RewardEmitter[Observation, Action]{
					"BecameFollower":        crm.Constant[Observation, Action](-0.1),
					"CommittedEntry / (Z)":  crm.Constant[Observation, Action](1),
					"CommittedEntry / (NZ)": crm.Constant[Observation, Action](-0.1),
					"not CommittedEntry":    crm.Constant[Observation, Action](-0.1),
					"":                      crm.Constant[Observation, Action](-0.1),
				},
			},
		},
		Reachable: reachable,
	}
	return crm.New(cfg)
}

// DefaultReachable bounds the configurations a leader-stability CRM
// built with target commits will ever visit during counterfactual
// generation: states 0 and 1 at every counter from 0 through target
// (state 0 keeps a partly drained counter after a leadership change),
// plus the terminal sink.
func DefaultReachable(target int) []crm.Configuration {
	out := []crm.Configuration{
		{State: -1, Counters: []int{0}},
	}
	for c := 0; c <= target; c++ {
		out = append(out, crm.Configuration{State: 0, Counters: []int{c}})
		out = append(out, crm.Configuration{State: 1, Counters: []int{c}})
	}
	return out
}

// AugmentedObs is the raftelect encode/decode layout: the ground
// cluster snapshot alongside the automaton state and counters.
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
