package tsquery

import (
	"errors"
	"testing"
)

func TestLexSimple(t *testing.T) {
	tokens, err := Lex("apple fruit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Tokens: Word(apple), Word(fruit), EOF
	if len(tokens) != 3 {
		t.Fatalf("expected 3 tokens (including EOF), got %d: %v", len(tokens), tokens)
	}
	if tokens[0].Kind != TokWord || tokens[0].Value != "apple" {
		t.Errorf("expected Word(apple), got %v", tokens[0])
	}
	if tokens[1].Kind != TokWord || tokens[1].Value != "fruit" {
		t.Errorf("expected Word(fruit), got %v", tokens[1])
	}
	if tokens[2].Kind != TokEOF {
		t.Errorf("expected EOF, got %v", tokens[2])
	}
}

func TestLexOperators(t *testing.T) {
	tests := []struct {
		input    string
		expected TokenKind
	}{
		{"a | b", TokOr},
		{"a , b", TokOr},
		{"a OR b", TokOr},
		{"a & b", TokAnd},
		{"a + b", TokAnd},
		{"a AND b", TokAnd},
	}
	for _, tt := range tests {
		tokens, err := Lex(tt.input)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", tt.input, err)
		}
		if tokens[1].Kind != tt.expected {
			t.Errorf("for %s: expected %v, got %v", tt.input, tt.expected, tokens[1].Kind)
		}
	}
}

func TestLexLowercaseKeywordsAreWords(t *testing.T) {
	tokens, err := Lex("rock and roll")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens[1].Kind != TokWord || tokens[1].Value != "and" {
		t.Errorf("expected Word(and), got %v", tokens[1])
	}
}

func TestLexNegation(t *testing.T) {
	for _, in := range []string{"!done", "-done", "NOT done"} {
		tokens, err := Lex(in)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", in, err)
		}
		if tokens[0].Kind != TokNot {
			t.Errorf("for %s: expected Not, got %v", in, tokens[0])
		}
		if tokens[1].Kind != TokWord || tokens[1].Value != "done" {
			t.Errorf("for %s: expected Word(done), got %v", in, tokens[1])
		}
	}
}

func TestLexHyphenatedWord(t *testing.T) {
	tokens, err := Lex("e-mail")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens[0].Kind != TokWord || tokens[0].Value != "e-mail" {
		t.Errorf("expected Word(e-mail), got %v", tokens[0])
	}
}

func TestLexPrefix(t *testing.T) {
	tokens, err := Lex("fru*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens[0].Kind != TokWord || tokens[0].Value != "fru" || !tokens[0].Prefix {
		t.Errorf("expected Word(fru*), got %v", tokens[0])
	}
}

func TestLexPhrase(t *testing.T) {
	tokens, err := Lex(`"apple \"pie\""`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens[0].Kind != TokPhrase || tokens[0].Value != `apple "pie"` {
		t.Errorf("expected Phrase(apple \"pie\"), got %v", tokens[0])
	}
}

func TestLexUnterminatedPhrase(t *testing.T) {
	_, err := Lex(`"apple`)
	if !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestLexSkipsNoise(t *testing.T) {
	tokens, err := Lex("apple ; <> banana")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %d: %v", len(tokens), tokens)
	}
}
