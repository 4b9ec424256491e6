package rl

// Trace records one episode as a sequence of (state, action, nextState,
// reward) steps, plus whether the step terminated or truncated the
// episode. It generalizes the teacher's types.Trace (state/action
// triplets only) to also carry the CRM reward signal the original
// partition-testing domain never needed.
type Trace struct {
	states      []State
	actions     []Action
	nextStates  []State
	rewards     []float64
	terminated  []bool
	truncated   []bool
}

// NewTrace returns an empty trace.
func NewTrace() *Trace {
	return &Trace{
		states:     make([]State, 0),
		actions:    make([]Action, 0),
		nextStates: make([]State, 0),
		rewards:    make([]float64, 0),
		terminated: make([]bool, 0),
		truncated:  make([]bool, 0),
	}
}

// Append records one step.
func (t *Trace) Append(state State, action Action, nextState State, reward float64, terminated, truncated bool) {
	t.states = append(t.states, state)
	t.actions = append(t.actions, action)
	t.nextStates = append(t.nextStates, nextState)
	t.rewards = append(t.rewards, reward)
	t.terminated = append(t.terminated, terminated)
	t.truncated = append(t.truncated, truncated)
}

// Len returns the number of steps recorded.
func (t *Trace) Len() int {
	return len(t.states)
}

// Get returns the i-th step.
func (t *Trace) Get(i int) (state State, action Action, nextState State, reward float64, terminated, truncated bool, ok bool) {
	if i < 0 || i >= len(t.states) {
		return nil, nil, nil, 0, false, false, false
	}
	return t.states[i], t.actions[i], t.nextStates[i], t.rewards[i], t.terminated[i], t.truncated[i], true
}

// Last returns the final step, if any.
func (t *Trace) Last() (state State, action Action, nextState State, reward float64, terminated, truncated bool, ok bool) {
	if len(t.states) == 0 {
		return nil, nil, nil, 0, false, false, false
	}
	return t.Get(len(t.states) - 1)
}

// GetPrefix returns the first i steps as a new trace.
func (t *Trace) GetPrefix(i int) (*Trace, bool) {
	if i < 0 || i > len(t.states) {
		return nil, false
	}
	return &Trace{
		states:     append([]State(nil), t.states[:i]...),
		actions:    append([]Action(nil), t.actions[:i]...),
		nextStates: append([]State(nil), t.nextStates[:i]...),
		rewards:    append([]float64(nil), t.rewards[:i]...),
		terminated: append([]bool(nil), t.terminated[:i]...),
		truncated:  append([]bool(nil), t.truncated[:i]...),
	}, true
}

// TotalReward sums every reward recorded in the trace.
func (t *Trace) TotalReward() float64 {
	total := 0.0
	for _, r := range t.rewards {
		total += r
	}
	return total
}

// Terminated reports whether any step in the trace terminated the
// episode (reached a CRM terminal state).
func (t *Trace) Terminated() bool {
	for _, done := range t.terminated {
		if done {
			return true
		}
	}
	return false
}
