package rlpolicy

import (
	"math"
	"time"

	"github.com/zeu5/crm-rl/rl"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// SoftMax is a Q-learning policy that samples actions proportionally to
// exp(value/temperature) rather than taking a hard arg-max, the same
// Boltzmann-exploration shape as the teacher's BonusPolicySoftMax
// (policies/bonus_softmax.go), reusing gonum's weighted sampler.
type SoftMax struct {
	qTable      *QTable
	alpha       float64
	discount    float64
	temperature float64
	rand        rand.Source
}

var _ rl.Policy = &SoftMax{}

// NewSoftMax builds a softmax Q-learning policy.
func NewSoftMax(alpha, discount, temperature float64) *SoftMax {
	return &SoftMax{
		qTable:      NewQTable(),
		alpha:       alpha,
		discount:    discount,
		temperature: temperature,
		rand:        rand.NewSource(uint64(time.Now().UnixNano())),
	}
}

// Reset clears the learned Q-table.
func (s *SoftMax) Reset() {
	s.qTable = NewQTable()
}

// Record persists the Q-table to filePrefix.
func (s *SoftMax) Record(filePrefix string) error {
	return s.qTable.Record(filePrefix)
}

// UpdateIteration is a no-op: SoftMax learns on every step.
func (s *SoftMax) UpdateIteration(int, *rl.Trace) {}

// NextAction samples an action with probability proportional to
// exp(Q(state,action)/temperature).
func (s *SoftMax) NextAction(step int, state rl.State, actions []rl.Action) (rl.Action, bool) {
	if len(actions) == 0 {
		return nil, false
	}
	stateHash := state.Hash()
	weights := make([]float64, len(actions))
	sum := 0.0
	for i, a := range actions {
		val := s.qTable.Get(stateHash, a.Hash(), 0) * (1 / s.temperature)
		weights[i] = math.Exp(val)
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}
	i, ok := sampleuv.NewWeighted(weights, s.rand).Take()
	if !ok {
		return nil, false
	}
	return actions[i], true
}

// Update applies a one-step Q-learning backup.
func (s *SoftMax) Update(step int, state rl.State, action rl.Action, nextState rl.State, reward float64) {
	stateHash, actionHash, nextHash := state.Hash(), action.Hash(), nextState.Hash()
	curVal := s.qTable.Get(stateHash, actionHash, 0)
	_, nextVal := s.qTable.Max(nextHash, 0)
	newVal := (1-s.alpha)*curVal + s.alpha*(reward+s.discount*nextVal)
	s.qTable.Set(stateHash, actionHash, newVal)
}
