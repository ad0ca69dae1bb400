package tsquery

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidQuery is returned for search strings that cannot be turned into a tsquery.
var ErrInvalidQuery = errors.New("invalid search query")

// Parse parses a search string into an expression AST
func Parse(input string) (Expr, error) {
	tokens, err := Lex(input)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens, pos: 0}
	if p.match(TokEOF) {
		return nil, fmt.Errorf("%w: empty search", ErrInvalidQuery)
	}

	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.match(TokEOF) {
		return nil, fmt.Errorf("%w: unexpected %v", ErrInvalidQuery, p.current())
	}
	return expr, nil
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) parseExpr() (Expr, error) {
	return p.parseOr()
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.match(TokOr) {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Or{Left: left, Right: right}
	}

	return left, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	for {
		if p.match(TokAnd) {
			p.advance()
		} else if !p.startsPrimary() {
			break
		}
		// adjacent terms are an implicit AND
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = And{Left: left, Right: right}
	}

	return left, nil
}

func (p *parser) parseNot() (Expr, error) {
	if p.match(TokNot) {
		p.advance()
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return Not{Inner: inner}, nil
	}

	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	switch p.current().Kind {
	case TokLParen:
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if !p.match(TokRParen) {
			return nil, fmt.Errorf("%w: expected ')', got %v", ErrInvalidQuery, p.current())
		}
		p.advance()
		return expr, nil

	case TokWord:
		tok := p.current()
		p.advance()
		return Term{Word: tok.Value, Prefix: tok.Prefix}, nil

	case TokPhrase:
		words := strings.Fields(p.current().Value)
		p.advance()
		switch len(words) {
		case 0:
			return nil, fmt.Errorf("%w: empty phrase", ErrInvalidQuery)
		case 1:
			return Term{Word: words[0]}, nil
		default:
			return Phrase{Words: words}, nil
		}

	case TokEOF:
		return nil, fmt.Errorf("%w: unexpected end of search", ErrInvalidQuery)

	default:
		return nil, fmt.Errorf("%w: expected term, got %v", ErrInvalidQuery, p.current())
	}
}

func (p *parser) startsPrimary() bool {
	switch p.current().Kind {
	case TokWord, TokPhrase, TokNot, TokLParen:
		return true
	default:
		return false
	}
}

func (p *parser) current() Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return Token{Kind: TokEOF}
}

func (p *parser) advance() {
	if p.pos < len(p.tokens) {
		p.pos++
	}
}

func (p *parser) match(kind TokenKind) bool {
	return p.current().Kind == kind
}
