package connection

import (
	"fmt"
	"strings"
	"unicode"
)

// Request reads one root connection field.
type Request struct {
	Field     string         `json:"field" yaml:"field"`
	Filter    map[string]any `json:"filter,omitempty" yaml:"filter,omitempty"`
	OrderBy   []string       `json:"orderBy,omitempty" yaml:"orderBy,omitempty"`
	First     *int           `json:"first,omitempty" yaml:"first,omitempty"`
	Offset    *int           `json:"offset,omitempty" yaml:"offset,omitempty"`
	Selection []Selection    `json:"selection" yaml:"selection"`
}

// Selection names an output field; relation fields carry a nested selection.
type Selection struct {
	Name      string      `json:"name" yaml:"name"`
	Selection []Selection `json:"selection,omitempty" yaml:"selection,omitempty"`
}

// Result holds the resolved rows in database order.
type Result struct {
	Rows []map[string]any `json:"rows"`
}

// ParseSelection reads a selection set written as field names with nested
// braces, e.g. "id name fullTextRank clientByClientId { name }". Commas are
// treated as whitespace.
func ParseSelection(s string) ([]Selection, error) {
	p := &selectionParser{src: []rune(s)}
	sel, err := p.list(false)
	if err != nil {
		return nil, err
	}
	if len(sel) == 0 {
		return nil, fmt.Errorf("%w: empty selection", ErrInvalidSelection)
	}
	return sel, nil
}

type selectionParser struct {
	src []rune
	pos int
}

func (p *selectionParser) list(nested bool) ([]Selection, error) {
	var out []Selection
	for {
		p.skip()
		if p.pos >= len(p.src) {
			if nested {
				return nil, fmt.Errorf("%w: unterminated selection: missing '}'", ErrInvalidSelection)
			}
			return out, nil
		}
		switch ch := p.src[p.pos]; {
		case ch == '}':
			if !nested {
				return nil, fmt.Errorf("%w: unexpected '}' at offset %d", ErrInvalidSelection, p.pos)
			}
			p.pos++
			return out, nil
		case ch == '{':
			if len(out) == 0 {
				return nil, fmt.Errorf("%w: unexpected '{' at offset %d", ErrInvalidSelection, p.pos)
			}
			p.pos++
			inner, err := p.list(true)
			if err != nil {
				return nil, err
			}
			if len(inner) == 0 {
				return nil, fmt.Errorf("%w: empty selection for %s", ErrInvalidSelection, out[len(out)-1].Name)
			}
			out[len(out)-1].Selection = inner
		case isNameRune(ch):
			start := p.pos
			for p.pos < len(p.src) && isNameRune(p.src[p.pos]) {
				p.pos++
			}
			out = append(out, Selection{Name: string(p.src[start:p.pos])})
		default:
			return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrInvalidSelection, ch, p.pos)
		}
	}
}

func (p *selectionParser) skip() {
	for p.pos < len(p.src) && (unicode.IsSpace(p.src[p.pos]) || p.src[p.pos] == ',') {
		p.pos++
	}
}

func isNameRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// String renders the selection back in ParseSelection syntax.
func (s Selection) String() string {
	if len(s.Selection) == 0 {
		return s.Name
	}
	parts := make([]string, len(s.Selection))
	for i, c := range s.Selection {
		parts[i] = c.String()
	}
	return s.Name + " { " + strings.Join(parts, " ") + " }"
}
