package rl

// AgentConfig configures an Agent: how many episodes to run, how long
// an episode may run before it is cut off, and the policy/environment
// pair driving it.
type AgentConfig struct {
	Episodes int
	Horizon  int
	Policy   Policy
	Environment Environment
}

// Agent runs a policy against an environment for a fixed number of
// episodes, recording one Trace per episode, adapted from the
// teacher's types.Agent to the reward-bearing CRM loop.
type Agent struct {
	config      *AgentConfig
	traces      []*Trace
	policy      Policy
	environment Environment
}

// NewAgent builds an Agent from config.
func NewAgent(config *AgentConfig) *Agent {
	return &Agent{
		config:      config,
		traces:      make([]*Trace, 0, config.Episodes),
		policy:      config.Policy,
		environment: config.Environment,
	}
}

// Run executes every configured episode, in order.
func (a *Agent) Run() []*Trace {
	for i := 0; i < a.config.Episodes; i++ {
		a.traces = append(a.traces, a.RunEpisode(i))
	}
	return a.traces
}

// RunEpisode resets the environment, then steps the policy for up to
// Horizon steps (or until the environment reports termination), and
// returns the resulting trace.
func (a *Agent) RunEpisode(episode int) *Trace {
	eCtx := NewEpisodeContext(episode, 0)
	defer eCtx.Cancel()

	state, err := a.environment.Reset(eCtx)
	if err != nil {
		eCtx.SetError(err)
		return NewTrace()
	}
	trace := NewTrace()
	actions := state.Actions()

	for i := 0; i < a.config.Horizon; i++ {
		if len(actions) == 0 {
			break
		}
		action, ok := a.policy.NextAction(i, state, actions)
		if !ok {
			break
		}

		sCtx := &StepContext{}
		nextState, err := a.environment.Step(action, sCtx)
		if err != nil {
			eCtx.SetError(err)
			break
		}

		a.policy.Update(i, state, action, nextState, sCtx.Reward)
		trace.Append(state, action, nextState, sCtx.Reward, sCtx.Terminated, sCtx.Truncated)
		eCtx.Timesteps = i + 1

		if sCtx.Terminated || sCtx.Truncated {
			break
		}
		state = nextState
		actions = state.Actions()
	}
	a.policy.UpdateIteration(episode, trace)
	return trace
}

// Traces returns every trace recorded by Run so far.
func (a *Agent) Traces() []*Trace {
	return a.traces
}
