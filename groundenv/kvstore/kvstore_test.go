package kvstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zeu5/crm-rl/crossproduct"
	"github.com/zeu5/crm-rl/groundenv/kvstore"
)

// requireRedis skips the test unless a real Redis instance answers at
// addr; this package exercises an actual go-redis client rather than a
// fake, so the test only runs when one is reachable.
func requireRedis(t *testing.T, addr string) {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not reachable at %s: %v", addr, err)
	}
}

func newCrossProduct(t *testing.T, addr, key string, threshold int64) *crossproduct.CrossProduct[kvstore.Observation, kvstore.Action, kvstore.AugmentedObs] {
	t.Helper()
	labeller, err := kvstore.Labeller(threshold)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	machine, err := kvstore.CRM(kvstore.DefaultReachable(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	env := kvstore.New(kvstore.Config{Addr: addr, Key: key})
	cp, err := crossproduct.New(crossproduct.Config[kvstore.Observation, kvstore.Action, kvstore.AugmentedObs]{
		Ground:       env,
		Labeller:     labeller,
		CRM:          machine,
		MaxSteps:     50,
		Encode:       kvstore.Encode,
		DecodeGround: kvstore.DecodeGround,
	})
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}
	return cp
}

func TestIncrementingPastThresholdTerminates(t *testing.T) {
	const addr = "127.0.0.1:6379"
	requireRedis(t, addr)

	cp := newCrossProduct(t, addr, "crm-rl-test:threshold-counter", 3)
	if _, _, err := cp.Reset(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var terminated bool
	for i := 0; i < 3 && !terminated; i++ {
		obs, r, term, truncated, _, err := cp.Step(kvstore.Action{Kind: kvstore.Increment})
		if err != nil {
			t.Fatalf("step %d: unexpected error: %v", i, err)
		}
		if truncated {
			t.Fatalf("step %d: unexpected truncation", i)
		}
		terminated = term
		if terminated {
			if r != 1 {
				t.Fatalf("expected terminal reward 1, got %v", r)
			}
			if obs.Ground.Value < 3 {
				t.Fatalf("expected counter to have crossed 3, got %d", obs.Ground.Value)
			}
		} else if r != -0.1 {
			t.Fatalf("step %d: expected reward -0.1, got %v", i, r)
		}
	}
	if !terminated {
		t.Fatalf("expected termination within 3 increments")
	}
}

func TestResetKnocksBackToStateZero(t *testing.T) {
	const addr = "127.0.0.1:6379"
	requireRedis(t, addr)

	cp := newCrossProduct(t, addr, "crm-rl-test:reset-counter", 100)
	if _, _, err := cp.Reset(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, _, _, _, err := cp.Step(kvstore.Action{Kind: kvstore.Increment}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obs, r, terminated, _, _, err := cp.Step(kvstore.Action{Kind: kvstore.ResetKey})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if terminated {
		t.Fatalf("did not expect termination from a reset")
	}
	if r != -0.1 {
		t.Fatalf("expected reward -0.1 for a reset, got %v", r)
	}
	if obs.State != 0 || obs.Counters[0] != 1 {
		t.Fatalf("expected to land back in state 0 with reset count 1, got (%d,%v)", obs.State, obs.Counters)
	}
}
