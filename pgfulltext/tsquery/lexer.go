package tsquery

import (
	"fmt"
	"strings"
	"unicode"
)

// Token represents a lexical token
type Token struct {
	Kind   TokenKind
	Value  string
	Prefix bool // word ended with '*'
}

// TokenKind is the type of token
type TokenKind int

const (
	TokWord TokenKind = iota
	TokPhrase
	TokAnd
	TokOr
	TokNot
	TokLParen
	TokRParen
	TokEOF
)

func (k TokenKind) String() string {
	switch k {
	case TokWord:
		return "Word"
	case TokPhrase:
		return "Phrase"
	case TokAnd:
		return "And"
	case TokOr:
		return "Or"
	case TokNot:
		return "Not"
	case TokLParen:
		return "LParen"
	case TokRParen:
		return "RParen"
	case TokEOF:
		return "EOF"
	default:
		return "Unknown"
	}
}

func (t Token) String() string {
	switch t.Kind {
	case TokWord:
		if t.Prefix {
			return fmt.Sprintf("Word(%s*)", t.Value)
		}
		return fmt.Sprintf("Word(%s)", t.Value)
	case TokPhrase:
		return fmt.Sprintf("Phrase(%q)", t.Value)
	default:
		return t.Kind.String()
	}
}

// Lexer tokenizes a human search string
type Lexer struct {
	input []rune
	pos   int
}

// NewLexer creates a new lexer for the input string
func NewLexer(input string) *Lexer {
	return &Lexer{
		input: []rune(input),
		pos:   0,
	}
}

// Lex tokenizes the entire input
func Lex(input string) ([]Token, error) {
	lexer := NewLexer(input)
	var tokens []Token

	for {
		tok, err := lexer.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == TokEOF {
			break
		}
	}

	return tokens, nil
}

// Next returns the next token. Characters with no meaning in the search
// grammar act as separators.
func (l *Lexer) Next() (Token, error) {
	for {
		l.skipSeparators()

		if l.pos >= len(l.input) {
			return Token{Kind: TokEOF}, nil
		}

		ch := l.input[l.pos]

		switch ch {
		case '(':
			l.pos++
			return Token{Kind: TokLParen}, nil
		case ')':
			l.pos++
			return Token{Kind: TokRParen}, nil
		case '&', '+':
			l.pos++
			return Token{Kind: TokAnd}, nil
		case '|', ',':
			l.pos++
			return Token{Kind: TokOr}, nil
		case '!':
			l.pos++
			return Token{Kind: TokNot}, nil
		case '-':
			// "-word" negates; a lone dash is noise
			l.pos++
			if l.pos < len(l.input) && (isWordChar(l.input[l.pos]) || l.input[l.pos] == '"' || l.input[l.pos] == '(') {
				return Token{Kind: TokNot}, nil
			}
			continue
		case '"':
			return l.scanPhrase()
		}

		if isWordChar(ch) {
			return l.scanWord(), nil
		}

		l.pos++
	}
}

func (l *Lexer) skipSeparators() {
	for l.pos < len(l.input) && unicode.IsSpace(l.input[l.pos]) {
		l.pos++
	}
}

func (l *Lexer) scanPhrase() (Token, error) {
	l.pos++ // consume opening quote
	var sb strings.Builder

	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '"' {
			l.pos++ // consume closing quote
			return Token{Kind: TokPhrase, Value: sb.String()}, nil
		}
		if ch == '\\' && l.pos+1 < len(l.input) {
			l.pos++
			sb.WriteRune(l.input[l.pos])
			l.pos++
			continue
		}
		sb.WriteRune(ch)
		l.pos++
	}

	return Token{}, fmt.Errorf("%w: unterminated phrase", ErrInvalidQuery)
}

func (l *Lexer) scanWord() Token {
	start := l.pos

	for l.pos < len(l.input) && (isWordChar(l.input[l.pos]) || l.input[l.pos] == '-') {
		l.pos++
	}

	value := strings.TrimRight(string(l.input[start:l.pos]), "-")

	prefix := false
	for l.pos < len(l.input) && l.input[l.pos] == '*' {
		prefix = true
		l.pos++
	}

	// Operators are recognized only in upper case so that "and"/"or" stay searchable.
	if !prefix {
		switch value {
		case "AND":
			return Token{Kind: TokAnd}
		case "OR":
			return Token{Kind: TokOr}
		case "NOT":
			return Token{Kind: TokNot}
		}
	}

	return Token{Kind: TokWord, Value: value, Prefix: prefix}
}

func isWordChar(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' || ch == '\'' || ch == '.' || ch == '@' || ch == '#'
}
