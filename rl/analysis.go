package rl

import (
	"fmt"
	"os"
	"path"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// DataSet is whatever an Analyzer distills a set of traces into.
type DataSet interface{}

// Analyzer compresses a run's traces into a DataSet.
type Analyzer interface {
	Analyze(run int, traces []*Trace) DataSet
}

// AnalyzerFunc adapts a plain function to the Analyzer interface, the
// same func-to-interface idiom as http.HandlerFunc.
type AnalyzerFunc func(run int, traces []*Trace) DataSet

// Analyze calls f.
func (f AnalyzerFunc) Analyze(run int, traces []*Trace) DataSet {
	return f(run, traces)
}

// Comparator renders one or more named datasets, typically as a plot.
type Comparator func(run int, names []string, datasets []DataSet)

// CoverageAnalyzer counts cumulative unique augmented-observation
// hashes visited across a run's episodes, adapted from the teacher's
// PureCoverage analyzer (types/analysis.go) to the CRM's (u, c)-carrying
// State.Hash instead of a raft partition hash.
func CoverageAnalyzer() Analyzer {
	return AnalyzerFunc(func(_ int, traces []*Trace) DataSet {
		seen := make(map[string]bool)
		cumulative := make([]int, 0, len(traces))
		for _, trace := range traces {
			for j := 0; j < trace.Len(); j++ {
				s, _, _, _, _, _, _ := trace.Get(j)
				seen[s.Hash()] = true
			}
			cumulative = append(cumulative, len(seen))
		}
		return cumulative
	})
}

// RewardAnalyzer reports the total reward of each episode in order,
// the signal the teacher's domain never had (it tracked coverage, not
// reward) but that the CRM's reward emitters make central.
func RewardAnalyzer() Analyzer {
	return AnalyzerFunc(func(_ int, traces []*Trace) DataSet {
		totals := make([]float64, len(traces))
		for i, trace := range traces {
			totals[i] = trace.TotalReward()
		}
		return totals
	})
}

// CoveragePlotter renders one coverage-over-episodes line per named
// dataset into plotDir, in the teacher's gonum/plot line-chart style
// (types/analysis.go PureCoveragePlotter).
func CoveragePlotter(plotDir string) Comparator {
	if _, err := os.Stat(plotDir); err != nil {
		os.Mkdir(plotDir, os.ModePerm)
	}
	return func(run int, names []string, datasets []DataSet) {
		p := plot.New()
		p.Title.Text = "Coverage"
		p.X.Label.Text = "Episode"
		p.Y.Label.Text = "Unique states visited"
		for i, name := range names {
			counts, ok := datasets[i].([]int)
			if !ok {
				continue
			}
			points := make(plotter.XYs, len(counts))
			for j, v := range counts {
				points[j] = plotter.XY{X: float64(j), Y: float64(v)}
			}
			line, err := plotter.NewLine(points)
			if err != nil {
				continue
			}
			line.Color = plotutil.Color(i)
			p.Add(line)
			p.Legend.Add(name, line)
			fmt.Printf("run %d: %s covered %d states\n", run, name, counts[len(counts)-1])
		}
		p.Save(8*vg.Inch, 8*vg.Inch, path.Join(plotDir, strconv.Itoa(run)+"_coverage.png"))
	}
}

// RewardPlotter renders one reward-per-episode line per named dataset.
func RewardPlotter(plotDir string) Comparator {
	if _, err := os.Stat(plotDir); err != nil {
		os.Mkdir(plotDir, os.ModePerm)
	}
	return func(run int, names []string, datasets []DataSet) {
		p := plot.New()
		p.Title.Text = "Episode reward"
		p.X.Label.Text = "Episode"
		p.Y.Label.Text = "Total reward"
		for i, name := range names {
			rewards, ok := datasets[i].([]float64)
			if !ok {
				continue
			}
			points := make(plotter.XYs, len(rewards))
			for j, v := range rewards {
				points[j] = plotter.XY{X: float64(j), Y: v}
			}
			line, err := plotter.NewLine(points)
			if err != nil {
				continue
			}
			line.Color = plotutil.Color(i)
			p.Add(line)
			p.Legend.Add(name, line)
		}
		p.Save(8*vg.Inch, 8*vg.Inch, path.Join(plotDir, strconv.Itoa(run)+"_reward.png"))
	}
}
