// Package expr implements the transition-expression language: a
// propositional formula over event names combined with a counter
// pattern (spec §4.2). An expression is of the shape
// "«formula» / «counter-pattern»", or "«formula»" as shorthand for a
// counter-pattern of all wildcards.
package expr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zeu5/crm-rl/event"
)

// Sentinel errors identifying the ConstructionError sub-kinds of spec §7
// that originate in this package. crm.New wraps these with source-state
// context.
var (
	ErrParse         = errors.New("expr: parse error")
	ErrUnknownEvent  = errors.New("expr: unknown event")
	ErrArityMismatch = errors.New("expr: counter pattern arity mismatch")
)

// Expr is a parsed transition expression: a formula over events and a
// counter pattern, both evaluated together by Match (spec §4.2).
type Expr struct {
	raw     string
	formula formula
	pattern Pattern
}

// Raw returns the original expression string, for diagnostics.
func (x *Expr) Raw() string { return x.raw }

// Pattern returns the parsed counter pattern.
func (x *Expr) Pattern() Pattern { return x.pattern }

// IsEmptyFormula reports whether the formula half is the ε production
// (matches iff no event fired).
func (x *Expr) IsEmptyFormula() bool {
	_, ok := x.formula.(emptyFormula)
	return ok
}

// IsDefaultShape reports whether this expression has the shape required
// of a CRM default edge: empty formula and an all-wildcard pattern
// (spec §3, §9 "Default-edge priority").
func (x *Expr) IsDefaultShape() bool {
	return x.IsEmptyFormula() && x.pattern.AllWildcard()
}

// String renders the expression for diagnostics.
func (x *Expr) String() string {
	return fmt.Sprintf("%s / %s", x.formula.String(), x.pattern.String())
}

// Parse parses a transition-expression string against a declared
// alphabet and counter arity. Parsing happens once at CRM construction;
// CRMs cache the resulting *Expr per source state and expression string
// (spec §4.2 "Parser").
func Parse(raw string, alphabet *event.Alphabet, arity int) (*Expr, error) {
	if arity <= 0 {
		return nil, fmt.Errorf("expr: counter arity must be positive, got %d", arity)
	}

	formulaPart, patternPart, hasPattern := splitOnSlash(raw)

	tokens, err := tokenize(formulaPart)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	p := &parser{tokens: tokens, alphabet: alphabet}
	f, err := p.parseFormula()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if p.cur().kind != tokEOF {
		return nil, fmt.Errorf("%w: unexpected trailing token %q", ErrParse, p.cur())
	}

	var pattern Pattern
	if hasPattern {
		patternTokens, err := tokenize(patternPart)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		pp := &parser{tokens: patternTokens}
		pattern, err = pp.parsePattern(arity)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
		if pp.cur().kind != tokEOF {
			return nil, fmt.Errorf("%w: unexpected trailing token %q after pattern", ErrParse, pp.cur())
		}
	} else {
		pattern = make(Pattern, arity)
		for i := range pattern {
			pattern[i] = Wildcard
		}
	}

	return &Expr{raw: raw, formula: f, pattern: pattern}, nil
}

// splitOnSlash splits "formula / pattern" on the first top-level slash.
// There are no slashes inside either production, so a simple first-index
// split is sufficient.
func splitOnSlash(raw string) (formulaPart, patternPart string, hasPattern bool) {
	idx := strings.IndexByte(raw, '/')
	if idx < 0 {
		return raw, "", false
	}
	return raw[:idx], raw[idx+1:], true
}

// Match evaluates both halves of the expression: the formula against
// the fired event set, and the pattern against the counter tuple. Both
// must hold for the expression to match (spec §4.2 "Evaluator").
func (x *Expr) Match(events event.Set, counters []int) bool {
	return x.formula.eval(events) && x.pattern.Match(counters)
}
