package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zeu5/crm-rl/crossproduct"
	"github.com/zeu5/crm-rl/groundenv/raftelect"
	"github.com/zeu5/crm-rl/rl"
	"github.com/zeu5/crm-rl/rlpolicy"
)

var (
	raftReplicas int
	raftTarget   int
)

func newRaftElectEnvironment() (rl.Environment, error) {
	labeller, err := raftelect.Labeller()
	if err != nil {
		return nil, fmt.Errorf("building labeller: %w", err)
	}
	automaton, err := raftelect.CRM(raftTarget, raftelect.DefaultReachable(raftTarget))
	if err != nil {
		return nil, fmt.Errorf("building CRM: %w", err)
	}
	ground := raftelect.New(raftelect.Config{
		Replicas:      raftReplicas,
		ElectionTick:  10,
		HeartbeatTick: 1,
		Requests:      raftTarget,
	})
	cp, err := crossproduct.New(crossproduct.Config[raftelect.Observation, raftelect.Action, raftelect.AugmentedObs]{
		Ground:       ground,
		Labeller:     labeller,
		CRM:          automaton,
		MaxSteps:     horizon,
		Encode:       raftelect.Encode,
		DecodeGround: raftelect.DecodeGround,
	})
	if err != nil {
		return nil, fmt.Errorf("building cross product: %w", err)
	}
	hashState := func(x raftelect.AugmentedObs) string {
		return fmt.Sprintf("%d/%v/%d", x.State, x.Counters, x.Ground.PendingMessages)
	}
	hashAction := func(a raftelect.Action) string { return a.Hash() }
	actionsFor := func(raftelect.AugmentedObs) []raftelect.Action { return ground.AvailableActions() }
	return rl.NewDynamicCRMEnvironment[raftelect.Observation, raftelect.Action, raftelect.AugmentedObs](cp, actionsFor, hashState, hashAction), nil
}

// RaftElectCommand compares policies against the raft leader-stability
// counting reward machine.
func RaftElectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "raftelect",
		Short: "Run the raft leader-election demo scenario",
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
				{"greedy", rlpolicy.NewGreedy(0.3, 0.9, 0.2)},
				{"random", rlpolicy.NewRandom()},
			} {
				env, err := newRaftElectEnvironment()
				if err != nil {
					return err
				}
				comparison.AddExperiment(rl.NewExperiment(exp.name, exp.policy, env))
			}
			return comparison.Run()
		},
	}
	cmd.Flags().IntVar(&raftReplicas, "replicas", 3, "Number of raft replicas")
	cmd.Flags().IntVar(&raftTarget, "target", 5, "Number of committed entries that ends the episode")
	return cmd
}
