package crm

// RewardEmitter is the reward half of a CRM transition: either a
// constant scalar or a pure function of the ground transition that
// fired it (spec §3 "Reward emitter"). The zero value emits 0.
type RewardEmitter[O, A any] struct {
	value float64
	fn    func(o O, a A, oNext O) float64
}

// Constant builds a reward emitter that always returns v, regardless of
// the ground transition.
func Constant[O, A any](v float64) RewardEmitter[O, A] {
	return RewardEmitter[O, A]{value: v}
}

// Functional builds a reward emitter that computes its value from the
// ground transition (o, a, oNext). fn must be pure (§4.3 "Reward
// emitter" / §7 "reward emitter is pure and shouldn't fail").
func Functional[O, A any](fn func(o O, a A, oNext O) float64) RewardEmitter[O, A] {
	return RewardEmitter[O, A]{fn: fn}
}

// Emit computes the reward for the ground transition (o, a, oNext).
func (r RewardEmitter[O, A]) Emit(o O, a A, oNext O) float64 {
	if r.fn != nil {
		return r.fn(o, a, oNext)
	}
	return r.value
}
