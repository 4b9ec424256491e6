package rl_test

import (
	"fmt"
	"testing"

	"github.com/zeu5/crm-rl/crossproduct"
	"github.com/zeu5/crm-rl/groundenv/letterworld"
	"github.com/zeu5/crm-rl/rl"
	"github.com/zeu5/crm-rl/rlpolicy"
)

func newLetterWorldEnvironment(t *testing.T, maxCounter, maxSteps int) *rl.CRMEnvironment[letterworld.Letter, letterworld.Action, letterworld.AugmentedObs] {
	t.Helper()
	labeller, err := letterworld.Labeller()
	if err != nil {
		t.Fatalf("building labeller: %v", err)
	}
	automaton, err := letterworld.CRM(letterworld.DefaultReachable(maxCounter))
	if err != nil {
		t.Fatalf("building CRM: %v", err)
	}
	cp, err := crossproduct.New(crossproduct.Config[letterworld.Letter, letterworld.Action, letterworld.AugmentedObs]{
		Ground:       letterworld.New(letterworld.Config{}),
		Labeller:     labeller,
		CRM:          automaton,
		MaxSteps:     maxSteps,
		Encode:       letterworld.Encode,
		DecodeGround: letterworld.DecodeGround,
	})
	if err != nil {
		t.Fatalf("building cross product: %v", err)
	}
	actions := []letterworld.Action{"A", "B", "C"}
	hashState := func(x letterworld.AugmentedObs) string {
		return fmt.Sprintf("%s/%d/%v", x.Ground, x.State, x.Counters)
	}
	hashAction := func(a letterworld.Action) string { return string(a) }
	return rl.NewCRMEnvironment[letterworld.Letter, letterworld.Action, letterworld.AugmentedObs](cp, actions, hashState, hashAction)
}

func TestAgentRunsEpisodesAndRecordsTraces(t *testing.T) {
	env := newLetterWorldEnvironment(t, 3, 50)
	policy := rlpolicy.NewRandom()
	agent := rl.NewAgent(&rl.AgentConfig{
		Episodes:    5,
		Horizon:     20,
		Policy:      policy,
		Environment: env,
	})

	traces := agent.Run()
	if len(traces) != 5 {
		t.Fatalf("expected 5 traces, got %d", len(traces))
	}
	for i, trace := range traces {
		if trace.Len() == 0 {
			t.Fatalf("trace %d: expected at least one step", i)
		}
	}
}

func TestAgentLearnsToReachTerminalReward(t *testing.T) {
	env := newLetterWorldEnvironment(t, 2, 50)
	policy := rlpolicy.NewGreedy(0.3, 0.9, 0.2)
	agent := rl.NewAgent(&rl.AgentConfig{
		Episodes:    200,
		Horizon:     30,
		Policy:      policy,
		Environment: env,
	})

	traces := agent.Run()
	sawTermination := false
	for _, trace := range traces[len(traces)-20:] {
		if trace.Terminated() {
			sawTermination = true
			break
		}
	}
	if !sawTermination {
		t.Fatalf("expected at least one of the last 20 episodes to terminate with the learned policy")
	}
}

func TestVisitGraphTracksVisits(t *testing.T) {
	env := newLetterWorldEnvironment(t, 2, 10)
	graph := rl.NewVisitGraph()

	state, err := env.Reset(rl.NewEpisodeContext(0, 0))
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	sCtx := &rl.StepContext{}
	next, err := env.Step(state.Actions()[0], sCtx)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	graph.Update(state, state.Actions()[0].Hash(), next)

	visits := graph.GetVisits()
	if visits[state.Hash()] != 1 {
		t.Fatalf("expected one visit recorded for the initial state, got %d", visits[state.Hash()])
	}
}

func TestCoverageAnalyzerCountsUniqueStates(t *testing.T) {
	env := newLetterWorldEnvironment(t, 2, 50)
	policy := rlpolicy.NewRandom()
	agent := rl.NewAgent(&rl.AgentConfig{
		Episodes:    10,
		Horizon:     20,
		Policy:      policy,
		Environment: env,
	})
	traces := agent.Run()

	analyzer := rl.CoverageAnalyzer()
	dataset := analyzer.Analyze(0, traces)
	if dataset == nil {
		t.Fatalf("expected a non-nil dataset")
	}
	counts, ok := dataset.([]int)
	if !ok || len(counts) != len(traces) {
		t.Fatalf("expected one cumulative count per episode, got %v", dataset)
	}
	seen := make(map[string]bool)
	for i, trace := range traces {
		for j := 0; j < trace.Len(); j++ {
			s, _, _, _, _, _, _ := trace.Get(j)
			seen[s.Hash()] = true
		}
		if counts[i] != len(seen) {
			t.Fatalf("episode %d: expected %d unique states so far, got %d", i, len(seen), counts[i])
		}
	}
}
