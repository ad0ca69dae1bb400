// Package tsquery turns human search strings into PostgreSQL to_tsquery syntax.
//
// Grammar, loosest binding first:
//
//	a | b, a , b, a OR b    either term
//	a b, a & b, a + b, a AND b
//	!a, -a, NOT a           negation
//	fru*                    prefix match (fru:*)
//	"apple pie"             phrase (apple <-> pie)
//	( ... )                 grouping
//
// Every lexeme is emitted single-quoted, so punctuation in words never leaks
// into the tsquery grammar.
package tsquery

import "strings"

const (
	precOr = iota + 1
	precAnd
	precPhrase
	precNot
	precTerm
)

// Compile parses input and renders it as a to_tsquery argument.
func Compile(input string) (string, error) {
	expr, err := Parse(input)
	if err != nil {
		return "", err
	}
	return Render(expr), nil
}

// Render renders an expression in to_tsquery syntax.
func Render(e Expr) string {
	var sb strings.Builder
	render(&sb, e, 0)
	return sb.String()
}

func render(sb *strings.Builder, e Expr, parent int) {
	prec := precedence(e)
	wrap := prec < parent
	if wrap {
		sb.WriteByte('(')
	}

	switch x := e.(type) {
	case Or:
		render(sb, x.Left, precOr)
		sb.WriteString(" | ")
		render(sb, x.Right, precOr)
	case And:
		render(sb, x.Left, precAnd)
		sb.WriteString(" & ")
		render(sb, x.Right, precAnd)
	case Not:
		sb.WriteByte('!')
		render(sb, x.Inner, precTerm)
	case Phrase:
		for i, w := range x.Words {
			if i > 0 {
				sb.WriteString(" <-> ")
			}
			sb.WriteString(quoteLexeme(w))
		}
	case Term:
		sb.WriteString(quoteLexeme(x.Word))
		if x.Prefix {
			sb.WriteString(":*")
		}
	}

	if wrap {
		sb.WriteByte(')')
	}
}

func precedence(e Expr) int {
	switch e.(type) {
	case Or:
		return precOr
	case And:
		return precAnd
	case Phrase:
		return precPhrase
	case Not:
		return precNot
	default:
		return precTerm
	}
}

// quoteLexeme wraps a lexeme in single quotes, doubling embedded quotes and backslashes.
func quoteLexeme(w string) string {
	w = strings.ReplaceAll(w, `\`, `\\`)
	w = strings.ReplaceAll(w, `'`, `''`)
	return "'" + w + "'"
}
