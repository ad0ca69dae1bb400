package tsquery

// Expr represents a search expression
type Expr interface {
	isExpr()
}

// And represents a boolean AND of two expressions
type And struct {
	Left  Expr
	Right Expr
}

func (And) isExpr() {}

// Or represents a boolean OR of two expressions
type Or struct {
	Left  Expr
	Right Expr
}

func (Or) isExpr() {}

// Not represents a boolean NOT of an expression
type Not struct {
	Inner Expr
}

func (Not) isExpr() {}

// Term is a single lexeme, optionally matched as a prefix
type Term struct {
	Word   string
	Prefix bool
}

func (Term) isExpr() {}

// Phrase matches adjacent lexemes in order
type Phrase struct {
	Words []string
}

func (Phrase) isExpr() {}
