package tsquery

import (
	"errors"
	"testing"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"fruit", `'fruit'`},
		{"fruit | banana", `'fruit' | 'banana'`},
		{"fruit OR banana", `'fruit' | 'banana'`},
		{"fruit,banana", `'fruit' | 'banana'`},
		{"apple fruit", `'apple' & 'fruit'`},
		{"apple AND fruit", `'apple' & 'fruit'`},
		{"fruit -banana", `'fruit' & !'banana'`},
		{"fru*", `'fru':*`},
		{`"apple pie"`, `'apple' <-> 'pie'`},
		{`!"apple pie"`, `!('apple' <-> 'pie')`},
		{"a (b | c)", `'a' & ('b' | 'c')`},
		{"(a b) | c", `'a' & 'b' | 'c'`},
		{"it's", `'it''s'`},
		{`back\slash`, `'back' & 'slash'`},
		{"!(a | b)", `!('a' | 'b')`},
	}
	for _, tt := range tests {
		got, err := Compile(tt.input)
		if err != nil {
			t.Errorf("Compile(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Compile(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestCompileEquivalentSpellings(t *testing.T) {
	a, err := Compile("fruit | banana")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Compile("fruit OR   banana")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Errorf("expected identical output, got %s and %s", a, b)
	}
}

func TestCacheCompile(t *testing.T) {
	c, err := NewCache(2)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	q, err := c.Compile("fruit")
	if err != nil || q != `'fruit'` {
		t.Fatalf("unexpected result %q, %v", q, err)
	}
	if _, err := c.Compile("fruit |"); !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
	if c.Len() != 1 {
		t.Errorf("expected only successful compilations to be cached, got %d entries", c.Len())
	}
	_, _ = c.Compile("a")
	_, _ = c.Compile("b")
	if c.Len() != 2 {
		t.Errorf("expected cache bounded at 2, got %d", c.Len())
	}
}

func TestMustNewCacheDefaultsSize(t *testing.T) {
	for _, size := range []int{0, -1, DefaultCacheSize} {
		c := MustNewCache(size)
		if c == nil || c.Len() != 0 {
			t.Fatalf("MustNewCache(%d): expected empty cache", size)
		}
	}
}
