package raftelect

import (
	"github.com/zeu5/crm-rl/event"
	"github.com/zeu5/crm-rl/label"
	raft "go.etcd.io/raft/v3"
)

// Alphabet is the raft event alphabet: leadership changes and log
// commits, the events a labelling function can derive purely from
// comparing consecutive Observations (spec §4.1).
func Alphabet() (*event.Alphabet, error) {
	return event.NewAlphabet("BecameLeader", "BecameFollower", "CommittedEntry")
}

// Labeller derives CRM events from the raft cluster's state transition:
// BecameLeader fires when any node transitions into StateLeader,
// BecameFollower when a node that used to lead or campaign drops back
// to StateFollower, and CommittedEntry when any node's commit index
// advances. Multiple events can fire on the same step; the labelling
// function unions them (spec §4.1), matching the teacher's practice of
// deriving monitor signals straight off raft.Status snapshots.
func Labeller() (*label.Function[Observation, Action], error) {
	alphabet, err := Alphabet()
	if err != nil {
		return nil, err
	}

	becameLeader := label.NamedDetector[Observation, Action]{
		Name: "BecameLeader",
		Detect: func(o Observation, _ Action, oNext Observation) (event.Event, bool) {
			for id, next := range oNext.Nodes {
				if next.Role != raft.StateLeader {
					continue
				}
				if prev, ok := o.Nodes[id]; !ok || prev.Role != raft.StateLeader {
					return "BecameLeader", true
				}
			}
			return "", false
		},
	}

	becameFollower := label.NamedDetector[Observation, Action]{
		Name: "BecameFollower",
		Detect: func(o Observation, _ Action, oNext Observation) (event.Event, bool) {
			for id, prev := range o.Nodes {
				if prev.Role != raft.StateLeader && prev.Role != raft.StateCandidate {
					continue
				}
				if next, ok := oNext.Nodes[id]; ok && next.Role == raft.StateFollower {
					return "BecameFollower", true
				}
			}
			return "", false
		},
	}

	committedEntry := label.NamedDetector[Observation, Action]{
		Name: "CommittedEntry",
		Detect: func(o Observation, _ Action, oNext Observation) (event.Event, bool) {
			for id, next := range oNext.Nodes {
				if prev, ok := o.Nodes[id]; ok && next.Commit > prev.Commit {
					return "CommittedEntry", true
				}
			}
			return "", false
		},
	}

	return label.New(alphabet, becameLeader, becameFollower, committedEntry)
}
