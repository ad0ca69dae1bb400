package sqlbuilder

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

type PlaceholderStyle int

const (
	PlaceholderQuestion PlaceholderStyle = iota
	PlaceholderDollar
)

// Builder allocates placeholders while a Fragment is compiled.
type Builder struct {
	Style PlaceholderStyle
	args  []any
}

func New(style PlaceholderStyle) *Builder {
	return &Builder{Style: style, args: make([]any, 0)}
}

func (b *Builder) Arg(v any) string {
	b.args = append(b.args, v)
	switch b.Style {
	case PlaceholderDollar:
		return "$" + itoa(len(b.args))
	default:
		return "?"
	}
}

func (b *Builder) Args() []any { return b.args }
func (b *Builder) Len() int    { return len(b.args) }

type nodeKind int

const (
	nodeRaw nodeKind = iota
	nodeValue
	nodeIdent
)

type node struct {
	kind  nodeKind
	text  string
	value any
	names []string
}

// Fragment is a piece of SQL whose values stay unbound until Compile.
// The zero Fragment is empty.
type Fragment struct {
	nodes []node
}

// Raw wraps trusted SQL text.
func Raw(text string) Fragment {
	if text == "" {
		return Fragment{}
	}
	return Fragment{nodes: []node{{kind: nodeRaw, text: text}}}
}

// Value binds v as a placeholder argument.
func Value(v any) Fragment {
	return Fragment{nodes: []node{{kind: nodeValue, value: v}}}
}

// Ident quotes each name and joins them with '.'.
func Ident(names ...string) Fragment {
	cp := make([]string, len(names))
	copy(cp, names)
	return Fragment{nodes: []node{{kind: nodeIdent, names: cp}}}
}

// Column qualifies a column name with a table alias.
func Column(alias Fragment, name string) Fragment {
	return Query("%s.%s", alias, Ident(name))
}

// Literal inlines s as a quoted string literal. Use it only for keys that are
// part of the generated statement shape, never for caller input.
func Literal(s string) Fragment {
	return Raw(pq.QuoteLiteral(s))
}

var (
	Null  = Raw("NULL")
	True  = Raw("TRUE")
	False = Raw("FALSE")
	One   = Raw("1")
)

// Query substitutes each "%s" in format with the next fragment.
func Query(format string, frags ...Fragment) Fragment {
	parts := strings.Split(format, "%s")
	if len(parts) != len(frags)+1 {
		panic("sqlbuilder: placeholder count mismatch in " + format)
	}
	var out Fragment
	for i, p := range parts {
		out = out.Append(Raw(p))
		if i < len(frags) {
			out = out.Append(frags[i])
		}
	}
	return out
}

// Join concatenates fragments with sep, skipping empty ones.
func Join(frags []Fragment, sep string) Fragment {
	var out Fragment
	first := true
	for _, f := range frags {
		if f.IsEmpty() {
			continue
		}
		if !first {
			out = out.Append(Raw(sep))
		}
		out = out.Append(f)
		first = false
	}
	return out
}

// Parens wraps f in parentheses.
func Parens(f Fragment) Fragment {
	return Query("(%s)", f)
}

// Append returns a new fragment with other added after f.
func (f Fragment) Append(other Fragment) Fragment {
	if len(other.nodes) == 0 {
		return f
	}
	nodes := make([]node, 0, len(f.nodes)+len(other.nodes))
	nodes = append(nodes, f.nodes...)
	nodes = append(nodes, other.nodes...)
	return Fragment{nodes: nodes}
}

func (f Fragment) IsEmpty() bool {
	for _, n := range f.nodes {
		if n.kind != nodeRaw || n.text != "" {
			return false
		}
	}
	return true
}

// Compile renders the fragment, allocating placeholders from b.
func (f Fragment) Compile(b *Builder) string {
	var sb strings.Builder
	for _, n := range f.nodes {
		switch n.kind {
		case nodeRaw:
			sb.WriteString(n.text)
		case nodeValue:
			sb.WriteString(b.Arg(n.value))
		case nodeIdent:
			for i, name := range n.names {
				if i > 0 {
					sb.WriteByte('.')
				}
				sb.WriteString(pq.QuoteIdentifier(name))
			}
		}
	}
	return sb.String()
}

// String renders the fragment with values inlined as literals, for logs and explain output.
func (f Fragment) String() string {
	var sb strings.Builder
	for _, n := range f.nodes {
		switch n.kind {
		case nodeRaw:
			sb.WriteString(n.text)
		case nodeValue:
			sb.WriteString(inline(n.value))
		case nodeIdent:
			for i, name := range n.names {
				if i > 0 {
					sb.WriteByte('.')
				}
				sb.WriteString(pq.QuoteIdentifier(name))
			}
		}
	}
	return sb.String()
}

func inline(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return pq.QuoteLiteral(x)
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case int:
		return itoa(x)
	default:
		return pq.QuoteLiteral(fmt.Sprint(x))
	}
}

// itoa converts int to string without fmt overhead
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [32]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + (n % 10))
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
