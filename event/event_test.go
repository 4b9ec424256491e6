package event

import "testing"

func TestNewAlphabet(t *testing.T) {
	a, err := NewAlphabet("A", "B", "A", "C")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Len() != 3 {
		t.Fatalf("expected 3 distinct events, got %d", a.Len())
	}
	if !a.Contains("A") || !a.Contains("B") || !a.Contains("C") {
		t.Fatalf("alphabet missing declared events: %v", a.Events())
	}
	if a.Contains("D") {
		t.Fatalf("alphabet should not contain undeclared event D")
	}
}

func TestNewAlphabetRejectsEmpty(t *testing.T) {
	if _, err := NewAlphabet(); err == nil {
		t.Fatalf("expected error for empty alphabet")
	}
}

func TestSetOperations(t *testing.T) {
	s := NewSet("A", "B")
	if s.Empty() {
		t.Fatalf("set should not be empty")
	}
	if !s.Contains("A") || !s.Contains("B") || s.Contains("C") {
		t.Fatalf("unexpected set membership: %v", s)
	}

	empty := NewSet()
	if !empty.Empty() {
		t.Fatalf("expected empty set")
	}
	if empty.String() != "{}" {
		t.Fatalf("expected {} got %s", empty.String())
	}
}
