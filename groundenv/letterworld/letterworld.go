// Package letterworld is the primary demo ground environment: a
// scripted or random sequence of letters A, B, C used to exercise the
// Letter-World scenarios of the CRM engine end to end. It depends on
// nothing beyond the standard library, grounded on the minimal
// environment shape the cross-product package consumes.
package letterworld

import (
	"fmt"
	"math/rand"

	"github.com/zeu5/crm-rl/crossproduct"
)

// Letter is the ground observation: the letter most recently emitted,
// or the empty string before the first step / on a no-event tick.
type Letter string

// Action selects what the environment should emit next. In this toy
// environment the action *is* the letter to emit, making it trivial to
// script exact event sequences for testing (spec §8 S1-S4); a richer
// ground environment would decouple the two.
type Action Letter

// Config controls the optional random-letter mode: when Letters is
// non-empty, actions are ignored and Step draws uniformly from
// Letters instead, using Rand for reproducibility.
type Config struct {
	Letters []Letter
	Rand    *rand.Rand
}

// Env is a minimal crossproduct.GroundEnv[Letter, Action] implementation.
type Env struct {
	cfg Config
}

// New builds a Letter-World environment. A zero Config makes Step
// simply emit whatever action it is given.
func New(cfg Config) *Env {
	return &Env{cfg: cfg}
}

// Reset returns the empty letter: no event has fired yet (spec §4.4
// "reset" — the cross-product seeds last_ground_obs without computing
// an event set).
func (e *Env) Reset(seed *int64) (Letter, crossproduct.Info, error) {
	if seed != nil && e.cfg.Rand != nil {
		e.cfg.Rand.Seed(*seed)
	}
	return Letter(""), crossproduct.Info{}, nil
}

// Step emits the next letter: the requested action, or a random draw
// from Config.Letters if configured. Ground reward is always 0 and
// ground termination/truncation are always false — this environment
// itself never ends an episode; the CRM does (spec §4.4 step 2: ground
// reward/terminated/truncated are ignored by the cross-product, so
// returning fixed values here is a legitimate minimal implementation
// of the contract).
func (e *Env) Step(a Action) (Letter, float64, bool, bool, crossproduct.Info, error) {
	if len(e.cfg.Letters) == 0 {
		return Letter(a), 0, false, false, crossproduct.Info{}, nil
	}
	if e.cfg.Rand == nil {
		return "", 0, false, false, nil, fmt.Errorf("letterworld: Config.Rand must be set when Config.Letters is non-empty")
	}
	idx := e.cfg.Rand.Intn(len(e.cfg.Letters))
	return e.cfg.Letters[idx], 0, false, false, crossproduct.Info{}, nil
}
