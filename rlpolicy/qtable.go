// Package rlpolicy collects rl.Policy implementations that learn a
// Q-table over the cross-product's hashed State/Action pairs: greedy
// and softmax exploration over the same one-step Q-learning update on
// the CRM reward, plus a random baseline and a strict-override
// combinator. Adapted from the teacher's policies
// package (policies/bonus.go, bonus_softmax.go, strict.go), generalized
// from the fixed reward-on-update signature RMPolicy used to the CRM's
// own Step reward passed straight through rl.Policy.Update.
package rlpolicy

import (
	"encoding/json"
	"math"
	"os"
)

// QTable is a sparse state/action value table keyed by hash strings,
// ported unchanged in shape from the teacher's policies.QTable.
type QTable struct {
	table map[string]map[string]float64
}

// NewQTable returns an empty table.
func NewQTable() *QTable {
	return &QTable{table: make(map[string]map[string]float64)}
}

// Get returns the value stored for (state, action), seeding it with def
// if absent.
func (q *QTable) Get(state, action string, def float64) float64 {
	if _, ok := q.table[state]; !ok {
		q.table[state] = make(map[string]float64)
	}
	if _, ok := q.table[state][action]; !ok {
		q.table[state][action] = def
	}
	return q.table[state][action]
}

// Set overwrites the value stored for (state, action).
func (q *QTable) Set(state, action string, val float64) {
	if _, ok := q.table[state]; !ok {
		q.table[state] = make(map[string]float64)
	}
	q.table[state][action] = val
}

// Max returns the highest-valued action recorded for state, or
// ("", def) if none is recorded.
func (q *QTable) Max(state string, def float64) (string, float64) {
	actions, ok := q.table[state]
	if !ok {
		q.table[state] = make(map[string]float64)
		return "", def
	}
	maxAction := ""
	maxVal := math.Inf(-1)
	for a, val := range actions {
		if val > maxVal {
			maxAction, maxVal = a, val
		}
	}
	if maxAction == "" {
		return "", def
	}
	return maxAction, maxVal
}

// MaxAmong returns the highest-valued action among actions for state,
// seeding any missing entries with def first.
func (q *QTable) MaxAmong(state string, actions []string, def float64) (string, float64) {
	if _, ok := q.table[state]; !ok {
		q.table[state] = make(map[string]float64)
	}
	maxAction := ""
	maxVal := math.Inf(-1)
	for _, a := range actions {
		if _, ok := q.table[state][a]; !ok {
			q.table[state][a] = def
		}
		val := q.table[state][a]
		if val > maxVal {
			maxAction, maxVal = a, val
		}
	}
	return maxAction, maxVal
}

// Record serializes the table to filePrefix+".json".
func (q *QTable) Record(filePrefix string) error {
	bs, err := json.Marshal(q.table)
	if err != nil {
		return err
	}
	return os.WriteFile(filePrefix+".json", bs, 0644)
}
