package tsquery

import (
	"errors"
	"testing"
)

func TestParseSingleTerm(t *testing.T) {
	expr, err := Parse("fruit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	term, ok := expr.(Term)
	if !ok {
		t.Fatalf("expected Term, got %T", expr)
	}
	if term.Word != "fruit" || term.Prefix {
		t.Errorf("expected fruit, got %+v", term)
	}
}

func TestParseImplicitAnd(t *testing.T) {
	expr, err := Parse("apple fruit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := expr.(And); !ok {
		t.Fatalf("expected And, got %T", expr)
	}
}

func TestParseOrBindsLooserThanAnd(t *testing.T) {
	expr, err := Parse("a b | c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	or, ok := expr.(Or)
	if !ok {
		t.Fatalf("expected Or, got %T", expr)
	}
	if _, ok := or.Left.(And); !ok {
		t.Errorf("expected And on the left, got %T", or.Left)
	}
}

func TestParseGrouping(t *testing.T) {
	expr, err := Parse("a (b | c)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	and, ok := expr.(And)
	if !ok {
		t.Fatalf("expected And, got %T", expr)
	}
	if _, ok := and.Right.(Or); !ok {
		t.Errorf("expected Or on the right, got %T", and.Right)
	}
}

func TestParseNot(t *testing.T) {
	expr, err := Parse("!banana")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	not, ok := expr.(Not)
	if !ok {
		t.Fatalf("expected Not, got %T", expr)
	}
	if term, ok := not.Inner.(Term); !ok || term.Word != "banana" {
		t.Errorf("expected Term(banana), got %#v", not.Inner)
	}
}

func TestParsePhrase(t *testing.T) {
	expr, err := Parse(`"apple  pie"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	phrase, ok := expr.(Phrase)
	if !ok {
		t.Fatalf("expected Phrase, got %T", expr)
	}
	if len(phrase.Words) != 2 {
		t.Errorf("expected 2 words, got %v", phrase.Words)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"fruit |",
		"(fruit",
		"fruit)",
		`""`,
		"!",
	}
	for _, in := range tests {
		if _, err := Parse(in); !errors.Is(err, ErrInvalidQuery) {
			t.Errorf("Parse(%q): expected ErrInvalidQuery, got %v", in, err)
		}
	}
}
