package kcompiler

import "kuro/internal/token"

// Precedence levels, low to high, exactly as enumerated in §4.3.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecComma
	PrecMustAssign
	PrecCanAssign
	PrecTernary
	PrecOr
	PrecAnd
	PrecNot
	PrecComparison
	PrecBitOr
	PrecBitXor
	PrecBitAnd
	PrecShift
	PrecTerm
	PrecFactor
	PrecUnary
	PrecBitUnary
	PrecExponent
	PrecSubscript
	PrecCall
	PrecPrimary
)

type prefixFn func(c *Compiler, canAssign bool)
type infixFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix     prefixFn
	infix      infixFn
	precedence Precedence
}

// rules is the Pratt table: every token kind that can start or
// continue an expression maps to its prefix handler, infix handler,
// and the precedence used to decide whether parsePrecedence should
// keep consuming it as an infix operator.
var rules map[token.Kind]parseRule

func init() {
	rules = map[token.Kind]parseRule{
		token.Number:     {prefix: number},
		token.String:     {prefix: stringLiteral},
		token.Identifier: {prefix: variable},
		token.True_:      {prefix: literalTrue},
		token.False_:     {prefix: literalFalse},
		token.None:       {prefix: literalNone},
		token.SelfKw:      {prefix: selfExpr},

		token.LeftParen:   {prefix: grouping, infix: call, precedence: PrecCall},
		token.LeftBracket: {prefix: listLiteral, infix: subscript, precedence: PrecSubscript},
		token.LeftBrace:   {prefix: mapOrSetLiteral},
		token.Dot:         {infix: dotAccess, precedence: PrecCall},

		token.Minus: {prefix: unary, infix: binary, precedence: PrecTerm},
		token.Plus:  {prefix: unary, infix: binary, precedence: PrecTerm},
		token.Star:      {infix: binary, precedence: PrecFactor},
		token.Slash:     {infix: binary, precedence: PrecFactor},
		token.SlashSlash: {infix: binary, precedence: PrecFactor},
		token.Percent:    {infix: binary, precedence: PrecFactor},
		token.StarStar:   {infix: binaryRightAssoc, precedence: PrecExponent},

		token.Amp:        {infix: binary, precedence: PrecBitAnd},
		token.Pipe:       {infix: binary, precedence: PrecBitOr},
		token.Caret:      {infix: binary, precedence: PrecBitXor},
		token.ShiftLeft:  {infix: binary, precedence: PrecShift},
		token.ShiftRight: {infix: binary, precedence: PrecShift},
		token.Tilde:      {prefix: unary},

		token.EqualEqual:  {infix: comparison, precedence: PrecComparison},
		token.BangEqual:   {infix: comparison, precedence: PrecComparison},
		token.Greater:     {infix: comparison, precedence: PrecComparison},
		token.GreaterEqual: {infix: comparison, precedence: PrecComparison},
		token.Less:        {infix: comparison, precedence: PrecComparison},
		token.LessEqual:    {infix: comparison, precedence: PrecComparison},
		token.Is:           {infix: comparison, precedence: PrecComparison},
		token.In:           {infix: comparison, precedence: PrecComparison},

		token.Not: {prefix: notExpr},
		token.And: {infix: andExpr, precedence: PrecAnd},
		token.Or:  {infix: orExpr, precedence: PrecOr},

		token.If:     {infix: ternary, precedence: PrecTernary},
		token.Lambda: {prefix: lambdaExpr},

		token.Comma: {infix: commaTuple, precedence: PrecComma},
		token.At:    {prefix: nil},
	}
}

func ruleFor(k token.Kind) parseRule { return rules[k] }

// parsePrecedence is the heart of the Pratt parser: consume a prefix
// handler for the current token, then keep consuming infix handlers
// as long as their precedence is at least prec.
func (c *Compiler) parsePrecedence(prec Precedence) {
	beforeThen := c.mark()
	c.advance()
	rule := ruleFor(c.previous.Kind)
	if rule.prefix == nil {
		c.error("expected an expression")
		return
	}
	canAssign := prec <= PrecAssignment
	rule.prefix(c, canAssign)

	for {
		next := ruleFor(c.current.Kind)
		if next.infix == nil || next.precedence < prec {
			break
		}
		if c.current.Kind == token.If {
			if c.noTernary {
				break
			}
			c.compileTernary(beforeThen, prec)
			continue
		}
		c.advance()
		next.infix(c, canAssign)
	}

	if canAssign && c.check(token.Equal) {
		c.error("invalid assignment target")
	}
}

// expression parses a full expression at PREC_ASSIGNMENT, the lowest
// level (everything above COMMA binds tighter; a bare expression
// statement may still contain top-level commas via commaTuple).
func (c *Compiler) expression() { c.parsePrecedence(PrecAssignment) }

// expressionNoComma parses a single expression without consuming a
// top-level comma, used for call arguments, subscripts, and list/dict
// elements where commas are structural delimiters, not tuple-builders.
func (c *Compiler) expressionNoComma() { c.parsePrecedence(PrecTernary) }
