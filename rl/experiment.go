package rl

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/zeu5/crm-rl/util"
)

// ExperimentConfig controls one Experiment.Run call, adapted from the
// teacher's experimentRunConfig (types/experiment.go) and trimmed to
// the fields the CRM loop actually uses.
type ExperimentConfig struct {
	Episodes int
	Horizon  int

	RecordTraces bool
	SavePath     string

	ConsecutiveErrorsAbort int
}

// Experiment pairs a named policy/environment combination so multiple
// experiments can be compared against the same set of analyzers.
type Experiment struct {
	Name        string
	policy      Policy
	environment Environment
}

// NewExperiment builds an experiment.
func NewExperiment(name string, policy Policy, environment Environment) *Experiment {
	return &Experiment{Name: name, policy: policy, environment: environment}
}

// Run drives an Agent for cfg.Episodes episodes, optionally persisting
// a one-line JSON summary (episode, steps, total reward) of each
// episode, and aborts early if too many consecutive episodes record no
// steps at all.
func (e *Experiment) Run(cfg ExperimentConfig) ([]*Trace, error) {
	if cfg.RecordTraces {
		if cfg.SavePath != "" {
			if err := os.MkdirAll(cfg.SavePath, os.ModePerm); err != nil {
				return nil, fmt.Errorf("rl: creating save directory: %w", err)
			}
		}
		if err := util.WriteToFile(path.Join(cfg.SavePath, e.Name+"_traces.jsonl")); err != nil {
			return nil, fmt.Errorf("rl: preparing trace file: %w", err)
		}
	}

	agent := NewAgent(&AgentConfig{
		Episodes:    cfg.Episodes,
		Horizon:     cfg.Horizon,
		Policy:      e.policy,
		Environment: e.environment,
	})

	traces := make([]*Trace, 0, cfg.Episodes)
	consecutiveErrors := 0
	abortThreshold := cfg.ConsecutiveErrorsAbort
	if abortThreshold == 0 {
		abortThreshold = 10
	}

	for episode := 0; episode < cfg.Episodes; episode++ {
		start := time.Now()
		trace := agent.RunEpisode(episode)
		duration := time.Since(start)

		if trace.Len() == 0 {
			consecutiveErrors++
			if consecutiveErrors >= abortThreshold {
				return traces, fmt.Errorf("rl: aborting experiment %q after %d consecutive empty episodes", e.Name, consecutiveErrors)
			}
			continue
		}
		consecutiveErrors = 0
		traces = append(traces, trace)

		if cfg.RecordTraces {
			if err := e.recordTrace(cfg.SavePath, episode, trace); err != nil {
				return traces, err
			}
		}
		fmt.Printf("\rexperiment %s: episode %d/%d (%s, reward=%.2f)", e.Name, episode+1, cfg.Episodes, duration.Round(time.Millisecond), trace.TotalReward())
	}
	fmt.Println()
	return traces, nil
}

func (e *Experiment) recordTrace(savePath string, episode int, trace *Trace) error {
	record := struct {
		Episode int     `json:"episode"`
		Steps   int     `json:"steps"`
		Reward  float64 `json:"reward"`
	}{Episode: episode, Steps: trace.Len(), Reward: trace.TotalReward()}
	bs, err := json.Marshal(record)
	if err != nil {
		return err
	}
	tracesFile := path.Join(savePath, e.Name+"_traces.jsonl")
	return util.AppendToFile(tracesFile, string(bs))
}

// Reset clears the experiment's policy state between comparison runs.
func (e *Experiment) Reset() {
	e.policy.Reset()
}

// Comparison runs several experiments across multiple runs and feeds
// each run's traces to a shared set of analyzers/comparators, adapted
// from the teacher's types.Comparison.
type Comparison struct {
	Experiments []*Experiment
	analyzers   map[string]Analyzer
	comparators map[string]Comparator
	config      ExperimentConfig
	runs        int
}

// NewComparison builds a comparison across runs repetitions of cfg.
func NewComparison(runs int, cfg ExperimentConfig) *Comparison {
	return &Comparison{
		analyzers:   make(map[string]Analyzer),
		comparators: make(map[string]Comparator),
		config:      cfg,
		runs:        runs,
	}
}

// AddAnalysis registers a named analyzer/comparator pair.
func (c *Comparison) AddAnalysis(name string, analyzer Analyzer, comparator Comparator) {
	c.analyzers[name] = analyzer
	c.comparators[name] = comparator
}

// AddExperiment registers an experiment to be compared.
func (c *Comparison) AddExperiment(e *Experiment) {
	c.Experiments = append(c.Experiments, e)
}

// Run executes every experiment runs times, feeding each run's traces
// through every registered analyzer/comparator pair.
func (c *Comparison) Run() error {
	for run := 0; run < c.runs; run++ {
		fmt.Printf("run %d\n", run+1)
		datasets := make(map[string][]DataSet, len(c.analyzers))
		for name := range c.analyzers {
			datasets[name] = make([]DataSet, len(c.Experiments))
		}
		names := make([]string, len(c.Experiments))
		for i, e := range c.Experiments {
			traces, err := e.Run(withRun(c.config, run))
			if err != nil {
				return err
			}
			for name, a := range c.analyzers {
				datasets[name][i] = a.Analyze(run, traces)
			}
			names[i] = e.Name
			e.Reset()
		}
		for name, comp := range c.comparators {
			comp(run, names, datasets[name])
		}
	}
	return nil
}

func withRun(cfg ExperimentConfig, run int) ExperimentConfig {
	if cfg.SavePath == "" {
		return cfg
	}
	cfg.SavePath = path.Join(cfg.SavePath, strconv.Itoa(run))
	return cfg
}
