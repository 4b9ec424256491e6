package rl

import (
	"bufio"
	"encoding/json"
	"os"
)

// VisitGraph accumulates which states were visited, how often, and
// which actions connect them, ported from the teacher's
// types.VisitGraph with no change beyond reusing rl.State directly
// instead of a separate NodeState interface (the two were identical).
type VisitGraph struct {
	Nodes map[string]*Node
}

// NewVisitGraph returns an empty graph.
func NewVisitGraph() *VisitGraph {
	return &VisitGraph{Nodes: make(map[string]*Node)}
}

// Update records a transition from -> to via action, creating nodes on
// first sight. It returns true if `from` was not previously recorded.
func (v *VisitGraph) Update(from State, action string, to State) bool {
	fromKey := from.Hash()
	toKey := to.Hash()
	isNew := false
	if _, ok := v.Nodes[fromKey]; !ok {
		v.Nodes[fromKey] = newNode(fromKey)
		isNew = true
	}
	if _, ok := v.Nodes[toKey]; !ok {
		v.Nodes[toKey] = newNode(toKey)
	}
	v.Nodes[fromKey].Visits++
	v.Nodes[fromKey].addNext(action, toKey)
	v.Nodes[toKey].addPrev(action, fromKey)
	return isNew
}

// GetVisits returns the visit count of every recorded node, keyed by hash.
func (v *VisitGraph) GetVisits() map[string]int {
	out := make(map[string]int, len(v.Nodes))
	for k, n := range v.Nodes {
		out[k] = n.Visits
	}
	return out
}

// Record serializes the graph to filePath as JSON.
func (v *VisitGraph) Record(filePath string) error {
	bs, err := json.Marshal(v)
	if err != nil {
		return err
	}
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()
	writer := bufio.NewWriter(file)
	if _, err := writer.Write(bs); err != nil {
		return err
	}
	return writer.Flush()
}

// Node is one visited state in the graph: its visit count and the
// actions/next-states reachable from, and reaching, it.
type Node struct {
	Key    string
	Visits int
	Next   map[string]map[string]bool
	Prev   map[string]map[string]bool
}

func newNode(key string) *Node {
	return &Node{
		Key:  key,
		Next: make(map[string]map[string]bool),
		Prev: make(map[string]map[string]bool),
	}
}

func (n *Node) addNext(action, next string) {
	if _, ok := n.Next[action]; !ok {
		n.Next[action] = make(map[string]bool)
	}
	n.Next[action][next] = true
}

func (n *Node) addPrev(action, prev string) {
	if _, ok := n.Prev[action]; !ok {
		n.Prev[action] = make(map[string]bool)
	}
	n.Prev[action][prev] = true
}
