package kcompiler

import (
	"math/big"
	"strconv"
	"strings"

	"kuro/internal/bytecode"
	"kuro/internal/kobject"
	"kuro/internal/kvalue"
	"kuro/internal/token"
)

// commaTuple is the infix handler for a top-level comma (§4.3's COMMA
// precedence level): by the time it runs, the operand to its left is
// already compiled and on the stack, so it only needs to compile the
// remaining comma-separated operands and fold everything into a tuple.
// expressionNoComma call sites never reach this (they parse at
// PrecTernary, above PrecComma), so list/call/dict elements are never
// mistaken for a bare tuple literal.
func commaTuple(c *Compiler, _ bool) {
	count := 1
	c.parsePrecedence(PrecComma + 1)
	count++
	for c.match(token.Comma) {
		if !canStartExpression(c) {
			break
		}
		c.parsePrecedence(PrecComma + 1)
		count++
	}
	c.emitOperand(bytecode.OpTuple, bytecode.OpTupleLong, count)
}

// lambdaExpr compiles `lambda params: expr` into a closure pushed on
// the stack, the expression-level counterpart of a def (§4.3).
func lambdaExpr(c *Compiler, _ bool) {
	sub := c.beginSubCompiler(kindLambda, "")
	if !sub.check(token.Colon) {
		sub.parseParamList(false)
	}
	sub.consume(token.Colon, "expected ':' after lambda parameters")
	sub.expression()
	sub.emitOp(bytecode.OpReturn)
	code := c.endSubCompiler(sub)
	c.emitClosure(code)
}

// beginSubCompiler starts a nested Compiler frame sharing c's token
// stream (§4.3's "every function... gets a fresh Compiler frame linked
// to its enclosing one"): the underlying scanner is the same object, so
// only the parser's own previous/current lookahead needs to cross over.
func (c *Compiler) beginSubCompiler(kind funcKind, name string) *Compiler {
	sub := newCompiler(c.scanner, c.filename, kind, c)
	sub.previous = c.previous
	sub.current = c.current
	// A function body is a local scope: parameters and the names it
	// assigns are declared as frame locals.
	sub.beginScope()
	if name != "" {
		sub.code.Name = name
		sub.code.QualName = name
	}
	return sub
}

// endSubCompiler finishes a nested compile, folding its trailing
// scanner/parser position back into c and propagating any errors.
func (c *Compiler) endSubCompiler(sub *Compiler) *kobject.CodeObject {
	c.previous = sub.previous
	c.current = sub.current
	if sub.hadError {
		c.hadError = true
		c.errs = append(c.errs, sub.errs...)
	}
	return sub.code
}

// emitClosure wraps a just-compiled code object in OP_CLOSURE, followed
// by one (is-local, index) byte pair per upvalue the code object
// captured — code.Upvalues was already populated as resolveUpvalue
// chains ran during the nested compile.
func (c *Compiler) emitClosure(code *kobject.CodeObject) {
	idx := c.addConstant(kvalue.Object(code))
	c.emitOperand(bytecode.OpClosure, bytecode.OpClosureLong, idx)
	for _, uv := range code.Upvalues {
		if uv.IsLocal {
			c.emitByte(1)
		} else {
			c.emitByte(0)
		}
		c.emitByte(byte(uv.Index))
	}
}

// parseParamList parses a def/lambda parameter list directly into the
// receiver compiler's locals and CodeObject metadata (§3's
// required-arg/keyword-arg names, §4.4's *args/**kwargs flags).
// Default-value expressions are restricted to compile-time constants
// (number/string/bool/None, optionally unary-negated): the spec's
// "unset-sentinel" prologue technique needs either a distinguished
// value kind or re-evaluating an arbitrary closure-captured expression
// on every call, and a constant default folds both away while covering
// the overwhelmingly common case — an Open Question resolution noted
// in DESIGN.md.
func (c *Compiler) parseParamList(hasParens bool) {
	if hasParens {
		c.consume(token.LeftParen, "expected '(' after function name")
	}
	closer := token.RightParen
	if !hasParens {
		closer = token.Colon
	}
	if !c.check(closer) {
		for {
			if c.match(token.StarStar) {
				c.consume(token.Identifier, "expected parameter name after '**'")
				c.addParam(c.previous.Lexeme)
				c.code.Flags |= kobject.FlagCollectsKwargs
				break
			}
			if c.match(token.Star) {
				c.consume(token.Identifier, "expected parameter name after '*'")
				c.addParam(c.previous.Lexeme)
				c.code.Flags |= kobject.FlagCollectsArgs
				if !c.match(token.Comma) {
					break
				}
				continue
			}
			c.consume(token.Identifier, "expected parameter name")
			name := c.previous.Lexeme
			// a lambda's ':' ends its parameter list, so only def
			// parameters take annotations
			if hasParens && c.match(token.Colon) {
				c.skipAnnotation()
			}
			c.addParam(name)
			if c.match(token.Equal) {
				c.code.KeywordArgs = append(c.code.KeywordArgs, name)
				if c.code.DefaultKwargs == nil {
					c.code.DefaultKwargs = map[string]kvalue.Value{}
				}
				c.code.DefaultKwargs[name] = c.constantDefaultExpr()
			} else {
				c.code.RequiredArgs = append(c.code.RequiredArgs, name)
			}
			if !c.match(token.Comma) {
				break
			}
			if c.check(closer) {
				break
			}
		}
	}
	if hasParens {
		c.consume(token.RightParen, "expected ')' after parameters")
	}
	if c.match(token.Arrow) {
		c.skipAnnotation()
	}
}

func (c *Compiler) addParam(name string) {
	c.declareLocal(name)
	c.code.Locals = append(c.code.Locals, kobject.LocalInfo{Name: name})
}

// skipAnnotation parses and discards a type-annotation expression: the
// runtime is dynamically typed, so annotations are accepted for syntax
// compatibility but carry no enforcement. Reuses the rewind-and-reparse
// snapshot machinery to discard whatever bytecode parsing the
// expression emitted.
func (c *Compiler) skipAnnotation() {
	start := c.mark()
	c.expressionNoComma()
	c.restore(start)
}

func (c *Compiler) constantDefaultExpr() kvalue.Value {
	neg := false
	if c.match(token.Minus) {
		neg = true
	}
	switch {
	case c.match(token.Number):
		v := parseNumberLiteral(c.previous.Lexeme)
		if neg {
			v = negateNumberLiteral(v)
		}
		return v
	case c.match(token.String):
		return kvalue.Object(kobject.Intern(c.previous.Lexeme))
	case c.match(token.True_):
		return kvalue.Bool(true)
	case c.match(token.False_):
		return kvalue.Bool(false)
	case c.match(token.None):
		return kvalue.None()
	}
	c.error("default argument must be a constant")
	return kvalue.None()
}

func parseNumberLiteral(lex string) kvalue.Value {
	if strings.ContainsAny(lex, ".eE") {
		f, _ := strconv.ParseFloat(lex, 64)
		return kvalue.Float(f)
	}
	if n, err := strconv.ParseInt(lex, 10, 64); err == nil {
		return kvalue.Int(n)
	}
	bi, _ := new(big.Int).SetString(lex, 10)
	return bigintValue(bi)
}

func negateNumberLiteral(v kvalue.Value) kvalue.Value {
	if v.IsInt() {
		return kvalue.Int(-v.AsInt())
	}
	if v.IsFloat() {
		return kvalue.Float(-v.AsFloat())
	}
	return v
}

// funcDeclaration compiles `def name(params):` (§4.3). The receiver
// compiler keeps parsing after the closure is bound to name, exactly as
// any other statement would continue.
func (c *Compiler) funcDeclaration(isMethod bool) {
	name := c.funcDeclarationValue(isMethod)
	c.bindDeclared(name)
}

// funcDeclarationValue compiles `def name(params):` down to a pushed
// closure value WITHOUT binding it, returning name so a caller —
// either funcDeclaration itself, or decorated() wrapping the value in
// decorator calls first — can bind it afterward.
func (c *Compiler) funcDeclarationValue(isMethod bool) string {
	c.advance() // 'def'
	c.consume(token.Identifier, "expected function name")
	name := c.previous.Lexeme

	kind := kindFunction
	if isMethod {
		kind = kindMethod
	}
	sub := c.beginSubCompiler(kind, name)
	sub.parseParamList(true)
	sub.consume(token.Colon, "expected ':' after function signature")
	sub.consume(token.EOL, "expected newline after function signature")
	sub.consumeDocstring()
	sub.consume(token.Indentation, "expected an indented function body")
	for !sub.check(token.EOF) && !sub.check(token.Indentation) {
		sub.declaration()
	}
	if sub.check(token.Indentation) {
		sub.advance()
	}
	sub.emitReturn()
	code := c.endSubCompiler(sub)

	c.emitClosure(code)
	return name
}

// bindDeclared finishes a def/class statement by binding the
// just-pushed value to name: as a class property if c is currently
// compiling a class body (§4.3 rule (1) — every name bound anywhere in
// a class body, including inside a nested if/for/while, becomes a
// class attribute, not a lexically-scoped local), else as an ordinary
// local or global per normal scoping rules.
func (c *Compiler) bindDeclared(name string) {
	if c.class != nil {
		nameIdx := c.emitString(name)
		c.emitOperand(bytecode.OpClassProperty, bytecode.OpClassPropertyLong, nameIdx)
		c.class.names[name] = true
		return
	}
	if c.scopeDepth > 0 {
		c.declareLocal(name)
		return
	}
	storeNamed(c, name)
	c.emitOp(bytecode.OpPop)
}

// consumeDocstring records a bare leading string literal as the code
// object's docstring at compile time (§3), without emitting any
// bytecode for it — unlike a class body, a function's CodeObject
// already exists while compiling its own body, so there is no need for
// a runtime OP_DOCSTRING step.
func (c *Compiler) consumeDocstring() {
	if c.check(token.String) && c.current.Prefix == 0 {
		save := c.mark()
		c.advance()
		if c.check(token.EOL) {
			c.code.Docstring = c.previous.Lexeme
			c.advance()
			return
		}
		c.restore(save)
	}
}

// classDeclaration compiles `class Name(Base):` (§4.3). The class body
// runs as its own synthetic function frame (kindClassBody), the way a
// def's body does, so that class-body assignments and OP_CLASS_PROPERTY
// both operate on a class value private to that frame's stack rather
// than leaking into the enclosing scope. The body frame takes the
// base-or-None value as its sole argument (slot 1, right after the
// reserved receiver slot 0): the outer compiler evaluates the base
// expression, then CALLs the body closure with it, mirroring how a
// def's own arguments are passed.
func (c *Compiler) classDeclaration() {
	name := c.classDeclarationValue()
	c.bindDeclared(name)
}

// classDeclarationValue compiles `class Name(Base):` down to a pushed
// class value WITHOUT binding it, returning name — the same
// value/bind split funcDeclarationValue uses, for decorated()'s sake.
func (c *Compiler) classDeclarationValue() string {
	c.advance() // 'class'
	c.consume(token.Identifier, "expected class name")
	name := c.previous.Lexeme
	nameIdx := c.emitString(name)

	hasBase := false
	if c.match(token.LeftParen) {
		if !c.check(token.RightParen) {
			c.expressionNoComma()
			hasBase = true
			for c.match(token.Comma) {
				if c.check(token.RightParen) {
					break
				}
				c.expressionNoComma()
				c.emitOp(bytecode.OpPop) // additional bases: single inheritance only
			}
		}
		c.consume(token.RightParen, "expected ')' after class bases")
	} else {
		c.emitOp(bytecode.OpNone)
	}
	c.consume(token.Colon, "expected ':' after class header")
	c.consume(token.EOL, "expected newline after class header")

	sub := c.beginSubCompiler(kindClassBody, name)
	sub.locals = append(sub.locals, localVar{name: "", depth: 0}) // slot 1: base-or-None argument
	sub.code.Locals = append(sub.code.Locals, kobject.LocalInfo{Name: ""})
	sub.locals = append(sub.locals, localVar{name: "", depth: 0}) // slot 2: class under construction
	sub.code.Locals = append(sub.code.Locals, kobject.LocalInfo{Name: ""})
	classSlot := 2
	sub.class = &classContext{names: map[string]bool{}, slot: classSlot}

	// OP_CLASS creates the class and records it as this frame's
	// class-under-construction (read by OP_CLASS_PROPERTY/OP_INHERIT/
	// OP_FINALIZE/OP_DOCSTRING without any further stack bookkeeping);
	// it also pushes the class once so it can be cached in classSlot for
	// rule (1) name lookups and returned at the end of the body.
	sub.emitOperand(bytecode.OpClass, bytecode.OpClassLong, nameIdx)
	sub.emitOperand(bytecode.OpSetLocal, bytecode.OpSetLocalLong, classSlot)
	if hasBase {
		sub.emitOperand(bytecode.OpGetLocal, bytecode.OpGetLocalLong, 1)
		sub.emitOp(bytecode.OpInherit)
	}

	sub.consumeClassDocstring()
	sub.consume(token.Indentation, "expected an indented class body")
	for !sub.check(token.EOF) && !sub.check(token.Indentation) {
		if sub.check(token.Pass) {
			sub.advance()
			sub.endOfSimpleStatement()
			continue
		}
		sub.declaration()
	}
	if sub.check(token.Indentation) {
		sub.advance()
	}

	sub.emitOp(bytecode.OpFinalize)
	sub.emitOperand(bytecode.OpGetLocal, bytecode.OpGetLocalLong, classSlot)
	sub.emitOp(bytecode.OpReturn)
	code := c.endSubCompiler(sub)

	c.emitClosure(code)
	c.emitOp(bytecode.OpSwap)
	c.emitOperand(bytecode.OpCall, bytecode.OpCallLong, 1)
	return name
}

// consumeClassDocstring compiles a bare leading string literal in a
// class body into a runtime OP_DOCSTRING step: unlike a function, the
// Class object doesn't exist until OP_CLASS executes, so attaching the
// docstring has to happen as bytecode rather than at compile time.
func (c *Compiler) consumeClassDocstring() {
	if !c.check(token.String) || c.current.Prefix != 0 {
		return
	}
	save := c.mark()
	c.advance()
	if !c.check(token.EOL) {
		c.restore(save)
		return
	}
	c.emitConstant(kvalue.Object(kobject.Intern(c.previous.Lexeme)))
	c.emitOp(bytecode.OpDocstring)
	c.advance()
}
