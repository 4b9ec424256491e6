package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zeu5/crm-rl/crossproduct"
	"github.com/zeu5/crm-rl/groundenv/kvstore"
	"github.com/zeu5/crm-rl/rl"
	"github.com/zeu5/crm-rl/rlpolicy"
)

var (
	kvAddr      string
	kvThreshold int64
	kvMaxResets int
)

func newKVStoreEnvironment() (rl.Environment, error) {
	labeller, err := kvstore.Labeller(kvThreshold)
	if err != nil {
		return nil, fmt.Errorf("building labeller: %w", err)
	}
	automaton, err := kvstore.CRM(kvstore.DefaultReachable(kvMaxResets))
	if err != nil {
		return nil, fmt.Errorf("building CRM: %w", err)
	}
	cp, err := crossproduct.New(crossproduct.Config[kvstore.Observation, kvstore.Action, kvstore.AugmentedObs]{
		Ground:       kvstore.New(kvstore.Config{Addr: kvAddr, Key: "crm-rl:counter"}),
		Labeller:     labeller,
		CRM:          automaton,
		MaxSteps:     horizon,
		Encode:       kvstore.Encode,
		DecodeGround: kvstore.DecodeGround,
	})
	if err != nil {
		return nil, fmt.Errorf("building cross product: %w", err)
	}
	actions := []kvstore.Action{
		{Kind: kvstore.Increment},
		{Kind: kvstore.ResetKey},
		{Kind: kvstore.NoOp},
	}
	hashState := func(x kvstore.AugmentedObs) string {
		return fmt.Sprintf("%d/%d/%v", x.Ground.Value, x.State, x.Counters)
	}
	hashAction := func(a kvstore.Action) string {
		switch a.Kind {
		case kvstore.Increment:
			return "increment"
		case kvstore.ResetKey:
			return "reset"
		default:
			return "noop"
		}
	}
	return rl.NewCRMEnvironment[kvstore.Observation, kvstore.Action, kvstore.AugmentedObs](cp, actions, hashState, hashAction), nil
}

// KVStoreCommand compares policies against the Redis counter
// threshold-crossing counting reward machine. It requires a reachable
// Redis instance at --addr.
func KVStoreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kvstore",
		Short: "Run the Redis counter demo scenario",
		RunE: func(cmd *cobra.Command, args []string) error {
			comparison := rl.NewComparison(runs, rl.ExperimentConfig{
				Episodes:               episodes,
				Horizon:                horizon,
				RecordTraces:           true,
				SavePath:               saveFile,
				ConsecutiveErrorsAbort: 10,
			})
			comparison.AddAnalysis("coverage", rl.CoverageAnalyzer(), rl.CoveragePlotter(saveFile))
			comparison.AddAnalysis("reward", rl.RewardAnalyzer(), rl.RewardPlotter(saveFile))

			for _, exp := range []struct {
				name   string
				policy rl.Policy
			}{
				{"greedy", rlpolicy.NewGreedy(0.3, 0.9, 0.1)},
				{"random", rlpolicy.NewRandom()},
			} {
				env, err := newKVStoreEnvironment()
				if err != nil {
					return err
				}
				comparison.AddExperiment(rl.NewExperiment(exp.name, exp.policy, env))
			}
			return comparison.Run()
		},
	}
	cmd.Flags().StringVar(&kvAddr, "addr", "127.0.0.1:6379", "Redis address")
	cmd.Flags().Int64Var(&kvThreshold, "threshold", 10, "Counter value that ends the episode")
	cmd.Flags().IntVar(&kvMaxResets, "max-resets", 5, "Counterfactual reset-count bound")
	return cmd
}
