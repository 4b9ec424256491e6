// Package cmd wires the CRM engine's ground environments into a cobra
// CLI, one subcommand per domain, grounded on the teacher's
// benchmarks.GetRootCommand (benchmarks/root.go): a persistent set of
// episodes/horizon/save/runs flags shared by every subcommand.
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	episodes int
	horizon  int
	saveFile string
	runs     int
)

// GetRootCommand builds the root CLI command with every domain
// subcommand registered.
func GetRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "crm-rl",
		Short: "Run counting reward machine experiments against ground environments",
	}
	root.PersistentFlags().IntVarP(&episodes, "episodes", "e", 1000, "Number of episodes to run")
	root.PersistentFlags().IntVar(&horizon, "horizon", 200, "Horizon of each episode")
	root.PersistentFlags().StringVarP(&saveFile, "save", "s", "results", "Save the result data in the specified folder")
	root.PersistentFlags().IntVar(&runs, "runs", 1, "Number of experiment runs")

	root.AddCommand(LetterWorldCommand())
	root.AddCommand(RaftElectCommand())
	root.AddCommand(KVStoreCommand())
	root.AddCommand(ServeCommand())
	return root
}
