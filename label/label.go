// Package label implements the labelling-function dispatch mechanism
// (spec §4.1): a fixed bank of event detectors run over a ground
// transition (o, a, o') and their firings are unioned into an event set.
package label

import (
	"fmt"

	"github.com/zeu5/crm-rl/event"
)

// Detector is a pure predicate over a ground transition. It returns the
// event that fired and true, or the zero value and false if it did not
// decide. A detector must never panic in normal operation; an undeclared
// event returned by a detector is treated as a programmer error (§4.1)
// and surfaces as a panic from Function.Label, not a returned error.
type Detector[O, A any] func(o O, a A, oNext O) (event.Event, bool)

// NamedDetector pairs a detector with a diagnostic name, so registration
// is introspectable without relying on decorators or reflection (§9
// "Replacing decorator-based detector registration").
type NamedDetector[O, A any] struct {
	Name    string
	Detect  Detector[O, A]
}

// Function is a bank of detectors fixed at construction time. Order of
// registration does not affect the result, since the output is a set.
type Function[O, A any] struct {
	alphabet  *event.Alphabet
	detectors []NamedDetector[O, A]
}

// New registers a fixed bank of detectors against an alphabet. The bank
// cannot be modified after construction.
func New[O, A any](alphabet *event.Alphabet, detectors ...NamedDetector[O, A]) (*Function[O, A], error) {
	if alphabet == nil {
		return nil, fmt.Errorf("label: alphabet must not be nil")
	}
	cp := make([]NamedDetector[O, A], len(detectors))
	copy(cp, detectors)
	return &Function[O, A]{alphabet: alphabet, detectors: cp}, nil
}

// Alphabet returns the alphabet this labelling function was built with.
func (f *Function[O, A]) Alphabet() *event.Alphabet {
	return f.alphabet
}

// Label runs every registered detector over (o, a, oNext) and returns
// the union of events that fired. It panics if a detector fires an
// event outside the declared alphabet: that is a registration bug, not
// a runtime condition callers should handle (§4.1).
func (f *Function[O, A]) Label(o O, a A, oNext O) event.Set {
	result := make(event.Set)
	for _, d := range f.detectors {
		e, fired := d.Detect(o, a, oNext)
		if !fired {
			continue
		}
		if !f.alphabet.Contains(e) {
			panic(fmt.Sprintf("label: detector %q fired undeclared event %q", d.Name, e))
		}
		result.Add(e)
	}
	return result
}
