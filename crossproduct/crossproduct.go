// Package crossproduct composes a ground environment, a labelling
// function, and a CRM into a single steppable environment whose
// observations augment the ground observation with automaton state and
// counters — restoring the Markov property a bare ground environment
// lacks under a non-Markovian reward (spec §4.4).
package crossproduct

import (
	"fmt"

	"github.com/zeu5/crm-rl/counterfactual"
	"github.com/zeu5/crm-rl/crm"
	"github.com/zeu5/crm-rl/label"
)

// Info is a free-form side-channel record passed through from the
// ground environment, mirroring the "info" dict of the ground-env
// contract (spec §6).
type Info map[string]any

// GroundEnv is the ground-environment contract the cross-product
// consumes (spec §6 "Ground environment contract"). Ground reward and
// ground terminated/truncated are computed but ignored by the
// cross-product — the CRM is the sole reward and termination source.
type GroundEnv[O, A any] interface {
	Reset(seed *int64) (O, Info, error)
	Step(a A) (oNext O, groundReward float64, groundTerminated, groundTruncated bool, info Info, err error)
}

// Config is the construction input for a CrossProduct (spec §4.4
// "State").
type Config[O, A, X any] struct {
	Ground   GroundEnv[O, A]
	Labeller *label.Function[O, A]
	CRM      *crm.CRM[O, A]
	MaxSteps int
	// Encode lays out the augmented observation from the ground
	// observation, automaton state, and counters. DecodeGround must
	// invert it on the (o,u,c) domain used at runtime (spec §4.4
	// "Augmented observation").
	Encode       func(o O, u int, c []int) X
	DecodeGround func(x X) O
}

// CrossProduct is one episode's worth of composed environment state. It
// is not safe for concurrent use — it owns mutable episode state and is
// confined to its calling goroutine (spec §5).
type CrossProduct[O, A, X any] struct {
	ground   GroundEnv[O, A]
	labeller *label.Function[O, A]
	automaton *crm.CRM[O, A]
	maxSteps int
	encode       func(o O, u int, c []int) X
	decodeGround func(x X) O

	started       bool
	done          bool
	u             int
	c             []int
	stepCount     int
	lastGroundObs O
}

// New validates cfg and returns a fresh, unreset CrossProduct.
func New[O, A, X any](cfg Config[O, A, X]) (*CrossProduct[O, A, X], error) {
	if cfg.Ground == nil {
		return nil, fmt.Errorf("crossproduct: Ground must not be nil")
	}
	if cfg.Labeller == nil {
		return nil, fmt.Errorf("crossproduct: Labeller must not be nil")
	}
	if cfg.CRM == nil {
		return nil, fmt.Errorf("crossproduct: CRM must not be nil")
	}
	if cfg.MaxSteps <= 0 {
		return nil, fmt.Errorf("crossproduct: MaxSteps must be positive, got %d", cfg.MaxSteps)
	}
	if cfg.Encode == nil || cfg.DecodeGround == nil {
		return nil, fmt.Errorf("crossproduct: Encode and DecodeGround must both be supplied")
	}
	return &CrossProduct[O, A, X]{
		ground:       cfg.Ground,
		labeller:     cfg.Labeller,
		automaton:    cfg.CRM,
		maxSteps:     cfg.MaxSteps,
		encode:       cfg.Encode,
		decodeGround: cfg.DecodeGround,
	}, nil
}

// Reset starts a new episode: resets the ground environment, seeds
// (u,c) at the CRM's initial configuration, and returns the augmented
// observation for the fresh ground observation (spec §4.4 "reset").
func (cp *CrossProduct[O, A, X]) Reset(seed *int64) (X, Info, error) {
	var zero X
	o, info, err := cp.ground.Reset(seed)
	if err != nil {
		return zero, nil, err
	}
	cp.started = true
	cp.done = false
	cp.u = cp.automaton.U0()
	cp.c = cp.automaton.C0()
	cp.stepCount = 0
	cp.lastGroundObs = o
	return cp.encode(o, cp.u, cp.c), info, nil
}

// Step advances the episode by one action (spec §4.4 "step"). It fails
// with ErrStateError if called before Reset or again after the episode
// already terminated or truncated.
func (cp *CrossProduct[O, A, X]) Step(a A) (obs X, reward float64, terminated, truncated bool, info Info, err error) {
	var zero X
	if !cp.started {
		return zero, 0, false, false, nil, fmt.Errorf("crossproduct: step before reset: %w", ErrStateError)
	}
	if cp.done {
		return zero, 0, false, false, nil, fmt.Errorf("crossproduct: step after terminal/truncated without reset: %w", ErrStateError)
	}

	cp.stepCount++
	oNext, _, _, _, stepInfo, err := cp.ground.Step(a)
	if err != nil {
		return zero, 0, false, false, nil, err
	}

	events := cp.labeller.Label(cp.lastGroundObs, a, oNext)
	u2, c2, remit, err := cp.automaton.Step(cp.u, cp.c, events)
	if err != nil {
		return zero, 0, false, false, nil, err
	}
	r := remit.Emit(cp.lastGroundObs, a, oNext)

	terminated = cp.automaton.IsTerminal(u2)
	truncated = cp.stepCount >= cp.maxSteps

	cp.lastGroundObs = oNext
	cp.u, cp.c = u2, c2
	cp.done = terminated || truncated

	return cp.encode(oNext, u2, c2), r, terminated, truncated, stepInfo, nil
}

// ToGroundObs recovers the ground observation from an augmented
// observation (spec §6 "to_ground_obs").
func (cp *CrossProduct[O, A, X]) ToGroundObs(x X) O {
	return cp.decodeGround(x)
}

// CRM returns the underlying automaton, e.g. for generating
// counterfactual experience alongside a real step.
func (cp *CrossProduct[O, A, X]) CRM() *crm.CRM[O, A] { return cp.automaton }

// Labeller returns the underlying labelling function.
func (cp *CrossProduct[O, A, X]) Labeller() *label.Function[O, A] { return cp.labeller }

// Encode exposes the configured encode hook, e.g. for counterfactual
// experience generation.
func (cp *CrossProduct[O, A, X]) Encode(o O, u int, c []int) X { return cp.encode(o, u, c) }

// GenerateCounterfactualExperience replays (o, a, oNext) against every
// reachable configuration of this instance's CRM, using its own
// labelling function and encode hook (spec §6 "Cross-product contract",
// §4.5).
func (cp *CrossProduct[O, A, X]) GenerateCounterfactualExperience(o O, a A, oNext O) ([]counterfactual.Experience[A, X], error) {
	return counterfactual.Generate(o, a, oNext, cp.labeller, cp.automaton, cp.encode)
}

// AssertEncoderRoundTrip checks that DecodeGround(Encode(o,u,c)) == o
// under the supplied equality function. It is a test-build helper
// (spec §7 "EncoderError ... detected by round-trip assertion in test
// builds") — production Reset/Step never perform this check.
func (cp *CrossProduct[O, A, X]) AssertEncoderRoundTrip(o O, u int, c []int, equal func(a, b O) bool) error {
	x := cp.encode(o, u, c)
	got := cp.decodeGround(x)
	if !equal(got, o) {
		return fmt.Errorf("crossproduct: %w", ErrEncoderError)
	}
	return nil
}
