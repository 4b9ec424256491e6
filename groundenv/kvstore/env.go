// Package kvstore is a ground environment backed by a real Redis
// instance: actions increment or reset a counter key, and the CRM
// tracks how many increments land before the counter is reset, the
// same replicated-counter shape the teacher's redis-raft harness drove
// over go-redis (redisraft.Cluster, benchmarks/redis_cli.go).
package kvstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/zeu5/crm-rl/crossproduct"
)

// Config points the environment at a reachable Redis instance and the
// counter key it owns. Key should be exclusive to one Env: Reset wipes
// it on every episode boundary.
type Config struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// ActionKind selects what a Step does to the counter key.
type ActionKind int

const (
	Increment ActionKind = iota
	ResetKey
	NoOp
)

// Action is the ground action: bump, clear, or leave the counter key.
type Action struct {
	Kind ActionKind
}

// Observation is the ground observation: the counter's current value.
type Observation struct {
	Value int64
}

// Env is a crossproduct.GroundEnv[Observation, Action] implementation
// backed by a live redis.Client.
type Env struct {
	cfg    Config
	client *redis.Client
	ctx    context.Context
}

// New builds a kvstore environment against the given Redis instance.
// It does not spawn a server process: Addr must already be reachable.
func New(cfg Config) *Env {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Env{cfg: cfg, client: client, ctx: context.Background()}
}

// Close releases the underlying Redis connection.
func (e *Env) Close() error {
	return e.client.Close()
}

// Reset clears the counter key to zero (spec §4.4 "reset").
func (e *Env) Reset(seed *int64) (Observation, crossproduct.Info, error) {
	if err := e.client.Set(e.ctx, e.cfg.Key, 0, 0).Err(); err != nil {
		return Observation{}, nil, fmt.Errorf("kvstore: reset key %q: %w", e.cfg.Key, err)
	}
	return Observation{Value: 0}, crossproduct.Info{"key": e.cfg.Key}, nil
}

// Step applies the requested action to the counter key and returns its
// new value. Ground reward/terminated/truncated are always the zero
// value; the CRM built on top of this environment decides reward and
// termination from the events the labelling function derives.
func (e *Env) Step(a Action) (Observation, float64, bool, bool, crossproduct.Info, error) {
	switch a.Kind {
	case Increment:
		if err := e.client.Incr(e.ctx, e.cfg.Key).Err(); err != nil {
			return Observation{}, 0, false, false, nil, fmt.Errorf("kvstore: incr key %q: %w", e.cfg.Key, err)
		}
	case ResetKey:
		if err := e.client.Set(e.ctx, e.cfg.Key, 0, 0).Err(); err != nil {
			return Observation{}, 0, false, false, nil, fmt.Errorf("kvstore: reset key %q: %w", e.cfg.Key, err)
		}
	case NoOp:
	}
	value, err := e.client.Get(e.ctx, e.cfg.Key).Int64()
	if err != nil {
		return Observation{}, 0, false, false, nil, fmt.Errorf("kvstore: get key %q: %w", e.cfg.Key, err)
	}
	return Observation{Value: value}, 0, false, false, crossproduct.Info{}, nil
}
