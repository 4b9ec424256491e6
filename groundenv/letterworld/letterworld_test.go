package letterworld_test

import (
	"testing"

	"github.com/zeu5/crm-rl/crossproduct"
	"github.com/zeu5/crm-rl/groundenv/letterworld"
)

func newCrossProduct(t *testing.T, maxSteps int) *crossproduct.CrossProduct[letterworld.Letter, letterworld.Action, letterworld.AugmentedObs] {
	t.Helper()
	labeller, err := letterworld.Labeller()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	machine, err := letterworld.CRM(letterworld.DefaultReachable(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cp, err := crossproduct.New(crossproduct.Config[letterworld.Letter, letterworld.Action, letterworld.AugmentedObs]{
		Ground:       letterworld.New(letterworld.Config{}),
		Labeller:     labeller,
		CRM:          machine,
		MaxSteps:     maxSteps,
		Encode:       letterworld.Encode,
		DecodeGround: letterworld.DecodeGround,
	})
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}
	return cp
}

// TestScenarioS1 replays the exact action/event sequence of spec §8 S1
// through the full cross-product stack (ground env + labelling + CRM).
func TestScenarioS1(t *testing.T) {
	cp := newCrossProduct(t, 100)
	if _, _, err := cp.Reset(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	actions := []letterworld.Action{"", "A", "A", "B", "C", "C"}
	wantStates := []int{0, 0, 0, 1, 1, 1}
	wantCounters := []int{0, 1, 2, 2, 1, 0}

	for i, a := range actions {
		obs, r, terminated, truncated, _, err := cp.Step(a)
		if err != nil {
			t.Fatalf("step %d: unexpected error: %v", i, err)
		}
		if obs.State != wantStates[i] || obs.Counters[0] != wantCounters[i] {
			t.Fatalf("step %d: got (u=%d,c=%v), want (u=%d,c=%d)", i, obs.State, obs.Counters, wantStates[i], wantCounters[i])
		}
		if r != -0.1 {
			t.Fatalf("step %d: expected reward -0.1, got %v", i, r)
		}
		if terminated || truncated {
			t.Fatalf("step %d: did not expect termination/truncation", i)
		}
	}
}

// TestScenarioS2 reaches the terminal sink in two steps (spec §8 S2).
func TestScenarioS2(t *testing.T) {
	cp := newCrossProduct(t, 100)
	if _, _, err := cp.Reset(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	obs, r, terminated, _, _, err := cp.Step("B")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obs.State != 1 || obs.Counters[0] != 0 || r != -0.1 || terminated {
		t.Fatalf("step 1: got obs=%+v r=%v terminated=%v", obs, r, terminated)
	}

	obs, r, terminated, _, _, err = cp.Step("C")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obs.State != -1 || obs.Counters[0] != 0 || r != 1 || !terminated {
		t.Fatalf("step 2: got obs=%+v r=%v terminated=%v", obs, r, terminated)
	}
}

// TestScenarioS4 never terminates under all-empty actions and truncates
// exactly at max_steps (spec §8 S4).
func TestScenarioS4(t *testing.T) {
	cp := newCrossProduct(t, 200)
	if _, _, err := cp.Reset(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 200; i++ {
		obs, r, terminated, truncated, _, err := cp.Step("")
		if err != nil {
			t.Fatalf("step %d: unexpected error: %v", i, err)
		}
		if terminated {
			t.Fatalf("step %d: unexpected termination", i)
		}
		if r != -0.1 {
			t.Fatalf("step %d: expected reward -0.1, got %v", i, r)
		}
		if obs.State != 0 || obs.Counters[0] != 0 {
			t.Fatalf("step %d: expected state to stay (0,0), got (%d,%v)", i, obs.State, obs.Counters)
		}
		if i == 199 && !truncated {
			t.Fatalf("expected truncated at step 200")
		}
	}
}

func TestCounterfactualAgainstRealRollout(t *testing.T) {
	cp := newCrossProduct(t, 100)
	if _, _, err := cp.Reset(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obs, r, _, _, _, err := cp.Step("A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	experiences, err := cp.GenerateCounterfactualExperience("", "A", "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, e := range experiences {
		if e.Obs.State == 0 && len(e.Obs.Counters) == 1 && e.Obs.Counters[0] == 0 {
			found = true
			if e.Reward != r || e.NextObs.State != obs.State || e.NextObs.Counters[0] != obs.Counters[0] {
				t.Fatalf("counterfactual from (0,0) diverged from real rollout: %+v vs obs=%+v r=%v", e, obs, r)
			}
		}
	}
	if !found {
		t.Fatalf("expected a counterfactual experience for (0,0)")
	}
}
