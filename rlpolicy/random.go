package rlpolicy

import (
	"time"

	"github.com/zeu5/crm-rl/rl"
	"golang.org/x/exp/rand"
)

// Random picks uniformly among available actions and never learns.
// Ported from the teacher's types.RandomPolicy (types/policies.go),
// useful as a cheap baseline to compare learned policies against.
type Random struct {
	rand *rand.Rand
}

var _ rl.Policy = &Random{}

// NewRandom builds a random policy.
func NewRandom() *Random {
	return &Random{rand: rand.New(rand.NewSource(uint64(time.Now().UnixNano())))}
}

func (r *Random) Reset()                                              {}
func (r *Random) UpdateIteration(int, *rl.Trace)                      {}
func (r *Random) Update(int, rl.State, rl.Action, rl.State, float64)  {}
func (r *Random) Record(string) error                                 { return nil }

func (r *Random) NextAction(step int, state rl.State, actions []rl.Action) (rl.Action, bool) {
	if len(actions) == 0 {
		return nil, false
	}
	return actions[r.rand.Intn(len(actions))], true
}
