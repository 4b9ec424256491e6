package rlpolicy

import (
	"time"

	"github.com/zeu5/crm-rl/rl"
	"golang.org/x/exp/rand"
)

// Greedy is an epsilon-greedy Q-learning policy: with probability
// epsilon it acts uniformly at random, otherwise it takes the
// highest-valued action recorded for the current state. Ported from
// the teacher's BonusPolicyGreedy (policies/bonus.go), generalized to
// learn directly from the reward rl.Agent passes into Update instead of
// a fixed 1/visit-count exploration bonus.
type Greedy struct {
	qTable   *QTable
	alpha    float64
	discount float64
	epsilon  float64
	rand     *rand.Rand
}

var _ rl.Policy = &Greedy{}

// NewGreedy builds an epsilon-greedy policy with learning rate alpha,
// discount factor discount, and exploration rate epsilon.
func NewGreedy(alpha, discount, epsilon float64) *Greedy {
	return &Greedy{
		qTable:   NewQTable(),
		alpha:    alpha,
		discount: discount,
		epsilon:  epsilon,
		rand:     rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
	}
}

// Reset clears the learned Q-table.
func (g *Greedy) Reset() {
	g.qTable = NewQTable()
}

// Record persists the Q-table to filePrefix.
func (g *Greedy) Record(filePrefix string) error {
	return g.qTable.Record(filePrefix)
}

// UpdateIteration is a no-op: Greedy learns on every step, not at
// episode boundaries.
func (g *Greedy) UpdateIteration(int, *rl.Trace) {}

// NextAction picks a uniformly random action with probability epsilon,
// otherwise the highest-valued action among those available.
func (g *Greedy) NextAction(step int, state rl.State, actions []rl.Action) (rl.Action, bool) {
	if len(actions) == 0 {
		return nil, false
	}
	if g.rand.Float64() < g.epsilon {
		return actions[g.rand.Intn(len(actions))], true
	}
	byHash := make(map[string]rl.Action, len(actions))
	hashes := make([]string, len(actions))
	for i, a := range actions {
		h := a.Hash()
		byHash[h] = a
		hashes[i] = h
	}
	maxAction, _ := g.qTable.MaxAmong(state.Hash(), hashes, 0)
	if maxAction == "" {
		return nil, false
	}
	return byHash[maxAction], true
}

// Update applies a one-step Q-learning backup using the reward the CRM
// emitted for this transition.
func (g *Greedy) Update(step int, state rl.State, action rl.Action, nextState rl.State, reward float64) {
	stateHash, actionHash, nextHash := state.Hash(), action.Hash(), nextState.Hash()
	curVal := g.qTable.Get(stateHash, actionHash, 0)
	_, nextVal := g.qTable.Max(nextHash, 0)
	newVal := (1-g.alpha)*curVal + g.alpha*(reward+g.discount*nextVal)
	g.qTable.Set(stateHash, actionHash, newVal)
}
