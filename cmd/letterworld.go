package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zeu5/crm-rl/crossproduct"
	"github.com/zeu5/crm-rl/groundenv/letterworld"
	"github.com/zeu5/crm-rl/rl"
	"github.com/zeu5/crm-rl/rlpolicy"
)

var letterWorldMaxCounter int

func newLetterWorldEnvironment(maxCounter int) (rl.Environment, error) {
	labeller, err := letterworld.Labeller()
	if err != nil {
		return nil, fmt.Errorf("building labeller: %w", err)
	}
	automaton, err := letterworld.CRM(letterworld.DefaultReachable(maxCounter))
	if err != nil {
		return nil, fmt.Errorf("building CRM: %w", err)
	}
	cp, err := crossproduct.New(crossproduct.Config[letterworld.Letter, letterworld.Action, letterworld.AugmentedObs]{
		Ground:       letterworld.New(letterworld.Config{}),
		Labeller:     labeller,
		CRM:          automaton,
		MaxSteps:     horizon,
		Encode:       letterworld.Encode,
		DecodeGround: letterworld.DecodeGround,
	})
	if err != nil {
		return nil, fmt.Errorf("building cross product: %w", err)
	}
	actions := []letterworld.Action{"A", "B", "C"}
	hashState := func(x letterworld.AugmentedObs) string {
		return fmt.Sprintf("%s/%d/%v", x.Ground, x.State, x.Counters)
	}
	hashAction := func(a letterworld.Action) string { return string(a) }
	return rl.NewCRMEnvironment[letterworld.Letter, letterworld.Action, letterworld.AugmentedObs](cp, actions, hashState, hashAction), nil
}

// LetterWorldCommand compares Greedy, SoftMax, and Random policies
// against the Letter-World counting reward machine.
func LetterWorldCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "letterworld",
		Short: "Run the Letter-World demo scenario",
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
				{"softmax", rlpolicy.NewSoftMax(0.3, 0.9, 1.0)},
				{"random", rlpolicy.NewRandom()},
			} {
				env, err := newLetterWorldEnvironment(letterWorldMaxCounter)
				if err != nil {
					return err
				}
				comparison.AddExperiment(rl.NewExperiment(exp.name, exp.policy, env))
			}
			return comparison.Run()
		},
	}
	cmd.Flags().IntVar(&letterWorldMaxCounter, "max-counter", 5, "Counterfactual counter bound")
	return cmd
}
