// Package raftelect wraps a small in-process cluster of etcd raft
// nodes as a ground environment: actions deliver one pending message or
// time out a replica, driving the cluster through elections and log
// replication. It exercises go.etcd.io/raft/v3 the same way the
// teacher's RL harness used it, adapted to the crossproduct.GroundEnv
// contract instead of a bespoke partition-testing Environment.
package raftelect

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"math/rand"
	"strconv"
	"time"

	"github.com/zeu5/crm-rl/crossproduct"
	raft "go.etcd.io/raft/v3"
	pb "go.etcd.io/raft/v3/raftpb"
)

// Config controls cluster size and raft timing.
type Config struct {
	Replicas      int
	ElectionTick  int
	HeartbeatTick int
	// Requests is the number of client proposals seeded at Reset.
	Requests int
}

// NodeState is the observable slice of a raft node's status relevant
// to labelling (spec §4.1): its role, term, and commit index.
type NodeState struct {
	Role   raft.StateType
	Term   uint64
	Commit uint64
}

// Observation is the ground observation: every node's state plus how
// many messages are still in flight.
type Observation struct {
	Nodes           map[uint64]NodeState
	PendingMessages int
}

// ActionKind distinguishes the two action shapes a raft ground step
// can take (spec §6 "Ground environment contract" — exposes enough
// shape information to drive actions).
type ActionKind int

const (
	DeliverMessage ActionKind = iota
	Timeout
)

// Action either delivers one specific in-flight message or times out a
// replica, mirroring the teacher's RaftAction shape.
type Action struct {
	Kind    ActionKind
	Message pb.Message
	Replica uint64
}

// Hash identifies the action uniquely enough to key a Q-table: the
// message's content hash for DeliverMessage, or the replica id for
// Timeout.
func (a Action) Hash() string {
	if a.Kind == Timeout {
		return "timeout/" + strconv.FormatUint(a.Replica, 10)
	}
	return "deliver/" + msgKey(a.Message)
}

// Env is a crossproduct.GroundEnv[Observation, Action] implementation.
type Env struct {
	config   Config
	nodes    map[uint64]*raft.RawNode
	storages map[uint64]*raft.MemoryStorage
	messages map[string]pb.Message
	rand     *rand.Rand
}

// New builds an unstarted environment; call Reset before stepping.
func New(config Config) *Env {
	return &Env{config: config}
}

// AvailableActions lists every action Step currently accepts: one
// DeliverMessage per in-flight message, plus one Timeout per replica
// with an outstanding message, matching the teacher's RaftState.Actions.
func (e *Env) AvailableActions() []Action {
	actions := make([]Action, 0, len(e.messages))
	processes := map[uint64]bool{}
	for _, m := range e.messages {
		actions = append(actions, Action{Kind: DeliverMessage, Message: m})
		if m.To != 0 {
			processes[m.To] = true
		}
	}
	for p := range processes {
		actions = append(actions, Action{Kind: Timeout, Replica: p})
	}
	return actions
}

// Reset seeds the cluster's initial client proposals and bootstraps a
// fresh set of raft nodes (spec §4.4 "reset" — the cross-product only
// ever calls this between episodes).
func (e *Env) Reset(seed *int64) (Observation, crossproduct.Info, error) {
	if seed != nil {
		e.rand = rand.New(rand.NewSource(*seed))
	} else if e.rand == nil {
		e.rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	e.messages = make(map[string]pb.Message)
	for i := 0; i < e.config.Requests; i++ {
		proposal := pb.Message{
			Type:    pb.MsgProp,
			From:    0,
			Entries: []pb.Entry{{Data: []byte(strconv.Itoa(i + 1))}},
		}
		e.messages[msgKey(proposal)] = proposal
	}
	e.makeNodes()
	return e.observe(), crossproduct.Info{"replicas": e.config.Replicas}, nil
}

func (e *Env) makeNodes() {
	peers := make([]raft.Peer, e.config.Replicas)
	for i := 0; i < e.config.Replicas; i++ {
		peers[i] = raft.Peer{ID: uint64(i + 1)}
	}
	e.nodes = make(map[uint64]*raft.RawNode, e.config.Replicas)
	e.storages = make(map[uint64]*raft.MemoryStorage, e.config.Replicas)
	for i := 0; i < e.config.Replicas; i++ {
		nodeID := uint64(i + 1)
		storage := raft.NewMemoryStorage()
		e.storages[nodeID] = storage
		node, _ := raft.NewRawNode(&raft.Config{
			ID:                        nodeID,
			ElectionTick:              e.config.ElectionTick,
			HeartbeatTick:             e.config.HeartbeatTick,
			Storage:                   storage,
			MaxSizePerMsg:             1024 * 1024,
			MaxInflightMsgs:           256,
			MaxUncommittedEntriesSize: 1 << 30,
			Logger:                    &raft.DefaultLogger{Logger: log.New(io.Discard, "", 0)},
		})
		node.Bootstrap(peers)
		e.nodes[nodeID] = node
	}
}

// Step delivers a message or times out a replica, ticking every node
// afterward and draining any newly-ready state (spec §6 "step" — ground
// reward/terminated/truncated are always the zero value; the CRM is the
// sole source of reward and termination).
func (e *Env) Step(a Action) (Observation, float64, bool, bool, crossproduct.Info, error) {
	switch a.Kind {
	case DeliverMessage:
		e.deliver(a.Message)
	case Timeout:
		e.timeout(a.Replica)
	}
	for _, node := range e.nodes {
		node.Tick()
	}
	for id, node := range e.nodes {
		if !node.HasReady() {
			continue
		}
		ready := node.Ready()
		if !raft.IsEmptySnap(ready.Snapshot) {
			e.storages[id].ApplySnapshot(ready.Snapshot)
		}
		e.storages[id].Append(ready.Entries)
		for _, m := range ready.Messages {
			e.messages[msgKey(m)] = m
		}
		node.Advance(ready)
	}
	return e.observe(), 0, false, false, crossproduct.Info{}, nil
}

func (e *Env) deliver(m pb.Message) {
	if m.Type == pb.MsgProp {
		// Client proposals must reach the leader; if there is none yet,
		// the message simply waits (it stays the pending set).
		for id, node := range e.nodes {
			if node.Status().RaftState == raft.StateLeader {
				routed := m
				routed.To = id
				node.Step(routed)
				delete(e.messages, msgKey(m))
				return
			}
		}
		return
	}
	if node, ok := e.nodes[m.To]; ok {
		node.Step(m)
	}
	delete(e.messages, msgKey(m))
}

func (e *Env) timeout(replica uint64) {
	for key, m := range e.messages {
		if m.To == replica {
			delete(e.messages, key)
		}
	}
}

func (e *Env) observe() Observation {
	obs := Observation{Nodes: make(map[uint64]NodeState, len(e.nodes)), PendingMessages: len(e.messages)}
	for id, node := range e.nodes {
		st := node.Status()
		obs.Nodes[id] = NodeState{Role: st.RaftState, Term: st.Term, Commit: st.Commit}
	}
	return obs
}

func msgKey(m pb.Message) string {
	bs, _ := json.Marshal(m)
	hash := sha256.Sum256(bs)
	return hex.EncodeToString(hash[:])
}
