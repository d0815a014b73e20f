package kcompiler

import (
	"math/big"
	"strconv"
	"strings"

	"kuro/internal/bytecode"
	"kuro/internal/klexer"
	"kuro/internal/kobject"
	"kuro/internal/kvalue"
	"kuro/internal/token"
)

func canStartExpression(c *Compiler) bool { return ruleFor(c.current.Kind).prefix != nil }

// ---- literals ----

func number(c *Compiler, _ bool) {
	lex := c.previous.Lexeme
	if strings.HasPrefix(lex, "0x") || strings.HasPrefix(lex, "0X") {
		if n, err := strconv.ParseInt(lex[2:], 16, 64); err == nil {
			c.emitConstant(kvalue.Int(n))
			return
		}
		if bi, ok := new(big.Int).SetString(lex[2:], 16); ok {
			c.emitConstant(bigintValue(bi))
			return
		}
		c.error("invalid hex literal")
		return
	}
	if strings.ContainsAny(lex, ".eE") {
		f, err := strconv.ParseFloat(lex, 64)
		if err != nil {
			c.error("invalid float literal")
			return
		}
		c.emitConstant(kvalue.Float(f))
		return
	}
	if n, err := strconv.ParseInt(lex, 10, 64); err == nil {
		c.emitConstant(kvalue.Int(n))
		return
	}
	bi, ok := new(big.Int).SetString(lex, 10)
	if !ok {
		c.error("invalid integer literal")
		return
	}
	c.emitConstant(bigintValue(bi))
}

// bigintValue wraps a *big.Int as an interned-less heap bytes payload
// marked for bigint reconstruction; internal/kvm owns the concrete
// bigint object kind (§4.2's sign-magnitude digit arrays are a VM/value
// concern, not a compiler one) — the compiler only needs to hand the
// VM's constant pool something it can later recognize and promote, so
// it stores the base-10 text form as an interned string and lets
// OP_CONSTANT's bigint-literal marker (kvalue's object kind dispatch
// in kvm) parse it lazily on first use.
func bigintValue(bi *big.Int) kvalue.Value {
	return kvalue.Object(kobject.Intern(bi.String()))
}

func stringLiteral(c *Compiler, _ bool) {
	t := c.previous
	if t.Prefix == 'b' {
		c.emitConstant(kvalue.Object(kobject.NewBytes([]byte(t.Lexeme))))
		return
	}
	if t.Prefix == 'f' {
		compileFString(c, t)
		return
	}
	c.emitConstant(kvalue.Object(kobject.Intern(t.Lexeme)))
}

// compileFString splits an f-string body on top-level `{ expr [!r|!s] }`
// segments, compiling each expression with a nested scanner over just
// that substring (§6: "re-entering the compiler with a temporary
// scanner pointed at the brace body"), and concatenates every part
// (literal or stringified expression) left to right via repeated
// OP_ADD, which dispatches to __add__/__radd__ the same as any other
// string concatenation (§4.2).
func compileFString(c *Compiler, t token.Token) {
	parts := 0
	emitLiteral := func(s string) {
		if s == "" {
			return
		}
		c.emitConstant(kvalue.Object(kobject.Intern(s)))
		parts++
	}

	body := t.Lexeme
	var lit strings.Builder
	i := 0
	for i < len(body) {
		ch := body[i]
		if ch == '{' && i+1 < len(body) && body[i+1] == '{' {
			lit.WriteByte('{')
			i += 2
			continue
		}
		if ch == '}' && i+1 < len(body) && body[i+1] == '}' {
			lit.WriteByte('}')
			i += 2
			continue
		}
		if ch == '{' {
			emitLiteral(lit.String())
			lit.Reset()
			depth := 1
			j := i + 1
			for j < len(body) && depth > 0 {
				switch body[j] {
				case '{':
					depth++
				case '}':
					depth--
					if depth == 0 {
						goto done
					}
				}
				j++
			}
		done:
			exprSrc := body[i+1 : j]
			conv := byte(0)
			if n := len(exprSrc); n >= 2 && exprSrc[n-2] == '!' && (exprSrc[n-1] == 'r' || exprSrc[n-1] == 's') {
				conv = exprSrc[n-1]
				exprSrc = exprSrc[:n-2]
			}
			compileInterpolatedExpr(c, exprSrc, conv, t.Line)
			parts++
			i = j + 1
			continue
		}
		lit.WriteByte(ch)
		i++
	}
	emitLiteral(lit.String())

	if parts == 0 {
		c.emitConstant(kvalue.Object(kobject.Intern("")))
		return
	}
	for parts > 1 {
		c.emitOp(bytecode.OpAdd)
		parts--
	}
}

// compileInterpolatedExpr re-enters the compiler over a nested scanner
// pointed at src, the raw text between `{` and `}` (or `!r`/`!s`) in an
// f-string body. klexer deliberately leaves this text undecoded (no
// escape processing, no pre-tokenizing) when it scans the outer string
// literal, so it is scanned for real here, for the first time, with its
// own independent token lookahead — the outer compiler's previous/
// current tokens are saved and restored around the swap since this is
// a fully separate token stream, not a rewindable span of the same one.
func compileInterpolatedExpr(c *Compiler, src string, conv byte, line int) {
	sub := klexer.NewAt(src, line)
	oldScanner := c.scanner
	oldPrev, oldCur := c.previous, c.current
	c.scanner = sub
	c.advance()
	c.expression()
	if conv == 'r' {
		callGlobal1(c, "repr")
	} else {
		callGlobal1(c, "str")
	}
	c.scanner = oldScanner
	c.previous, c.current = oldPrev, oldCur
}

// callGlobal1 compiles `name(<top-of-stack>)`: load the global, swap
// it beneath the already-compiled argument, then OP_CALL 1. Used for
// the implicit str()/repr() conversion f-string segments need.
func callGlobal1(c *Compiler, name string) {
	idx := c.emitString(name)
	c.emitOperand(bytecode.OpGetGlobal, bytecode.OpGetGlobalLong, idx)
	c.emitOp(bytecode.OpSwap)
	c.emitOperand(bytecode.OpCall, bytecode.OpCallLong, 1)
}

func literalTrue(c *Compiler, _ bool)  { c.emitOp(bytecode.OpTrue) }
func literalFalse(c *Compiler, _ bool) { c.emitOp(bytecode.OpFalse) }
func literalNone(c *Compiler, _ bool)  { c.emitOp(bytecode.OpNone) }

func selfExpr(c *Compiler, _ bool) { namedVariable(c, "self", false) }

// ---- names ----

func variable(c *Compiler, canAssign bool) {
	namedVariable(c, c.previous.Lexeme, canAssign)
}

func namedVariable(c *Compiler, name string, canAssign bool) {
	if canAssign && c.check(token.Equal) && canAssignSimpleTarget(c) {
		c.advance()
		c.expression()
		storeNamed(c, name)
		return
	}
	if canAssign && isAugmentedAssignOp(c.current.Kind) {
		op := c.current.Kind
		c.advance()
		loadNamed(c, name)
		c.expression()
		emitAugmentedOp(c, op)
		storeNamed(c, name)
		return
	}
	loadNamed(c, name)
}

// canAssignSimpleTarget exists only to document the decision point;
// name targets are always simple.
func canAssignSimpleTarget(c *Compiler) bool { return true }

// loadNamed implements §4.3's name-resolution order: rule (1) checks
// the innermost class body's declared properties first (a class body
// executes like CPython's exec-in-a-namespace, so bare names resolve
// against the class under construction before locals/upvalues/
// globals), then ordinary lexical scoping.
func loadNamed(c *Compiler, name string) {
	if c.inClassProperty(name) {
		c.emitOperand(bytecode.OpGetLocal, bytecode.OpGetLocalLong, c.class.slot)
		idx := c.emitString(name)
		c.emitOperand(bytecode.OpGetProperty, bytecode.OpGetPropertyLong, idx)
		return
	}
	if slot := c.resolveLocal(name); slot != -1 {
		c.emitOperand(bytecode.OpGetLocal, bytecode.OpGetLocalLong, slot)
		return
	}
	if idx := c.resolveUpvalue(name); idx != -1 {
		c.emitOp(bytecode.OpGetUpvalue)
		c.emitByte(byte(idx))
		return
	}
	nameIdx := c.emitString(name)
	c.emitOperand(bytecode.OpGetGlobal, bytecode.OpGetGlobalLong, nameIdx)
}

// storeNamed mirrors loadNamed's resolution order for assignment. A
// name assigned anywhere in a class body becomes a class attribute via
// OP_CLASS_PROPERTY (popping only the value — the VM attaches it to
// the frame's class-under-construction directly, no class reference
// needed on the expression stack); the value is duplicated first so
// this branch leaves it on the stack like every other branch does.
// Otherwise, a name with neither a
// local nor an enclosing binding is auto-declared as a new local the
// first time it is assigned inside a function (§4.3's simplified,
// single-pass stand-in for Python's whole-body local inference,
// recorded as an Open Question resolution in DESIGN.md), unless a
// `global`/`nonlocal` statement named it first.
func storeNamed(c *Compiler, name string) {
	if c.class != nil {
		c.emitOp(bytecode.OpDup)
		nameIdx := c.emitString(name)
		c.emitOperand(bytecode.OpClassProperty, bytecode.OpClassPropertyLong, nameIdx)
		c.class.names[name] = true
		return
	}
	if slot := c.resolveLocal(name); slot != -1 {
		c.emitOperand(bytecode.OpSetLocal, bytecode.OpSetLocalLong, slot)
		return
	}
	if idx := c.resolveUpvalue(name); idx != -1 {
		c.emitOp(bytecode.OpSetUpvalue)
		c.emitByte(byte(idx))
		return
	}
	if c.kind != kindScript && !c.globalDecls[name] {
		c.declareLocal(name)
		c.code.Locals = append(c.code.Locals, kobject.LocalInfo{Name: name})
		slot := c.resolveLocal(name)
		c.emitOperand(bytecode.OpSetLocal, bytecode.OpSetLocalLong, slot)
		return
	}
	nameIdx := c.emitString(name)
	c.emitOperand(bytecode.OpSetGlobal, bytecode.OpSetGlobalLong, nameIdx)
	c.globalsSeen[name] = true
}

func isAugmentedAssignOp(k token.Kind) bool {
	switch k {
	case token.PlusEqual, token.MinusEqual, token.StarEqual, token.SlashEqual:
		return true
	}
	return false
}

func emitAugmentedOp(c *Compiler, k token.Kind) {
	switch k {
	case token.PlusEqual:
		c.emitOp(bytecode.OpAdd)
	case token.MinusEqual:
		c.emitOp(bytecode.OpSub)
	case token.StarEqual:
		c.emitOp(bytecode.OpMul)
	case token.SlashEqual:
		c.emitOp(bytecode.OpDiv)
	}
}

// ---- grouping / calls / collections ----

func grouping(c *Compiler, _ bool) {
	if c.check(token.RightParen) {
		c.advance()
		c.emitOperand(bytecode.OpTuple, bytecode.OpTupleLong, 0)
		return
	}
	c.expressionNoComma()
	if c.match(token.Comma) {
		count := 1
		for canStartExpression(c) {
			c.expressionNoComma()
			count++
			if !c.match(token.Comma) {
				break
			}
		}
		c.emitOperand(bytecode.OpTuple, bytecode.OpTupleLong, count)
	}
	c.consume(token.RightParen, "expected ')'")
}

func call(c *Compiler, _ bool) {
	argc := 0
	if !c.check(token.RightParen) {
		for {
			c.expressionNoComma()
			argc++
			if !c.match(token.Comma) {
				break
			}
			if c.check(token.RightParen) {
				break
			}
		}
	}
	c.consume(token.RightParen, "expected ')' after arguments")
	c.emitOperand(bytecode.OpCall, bytecode.OpCallLong, argc)
}

func listLiteral(c *Compiler, _ bool) {
	count := 0
	if !c.check(token.RightBracket) {
		for {
			c.expressionNoComma()
			count++
			if !c.match(token.Comma) {
				break
			}
			if c.check(token.RightBracket) {
				break
			}
		}
	}
	c.consume(token.RightBracket, "expected ']'")
	c.emitOperand(bytecode.OpMakeList, bytecode.OpMakeListLong, count)
}

func mapOrSetLiteral(c *Compiler, _ bool) {
	if c.check(token.RightBrace) {
		c.advance()
		c.emitOperand(bytecode.OpMakeDict, bytecode.OpMakeDictLong, 0)
		return
	}
	c.expressionNoComma()
	if c.match(token.Colon) {
		c.expressionNoComma()
		pairs := 1
		for c.match(token.Comma) {
			if c.check(token.RightBrace) {
				break
			}
			c.expressionNoComma()
			c.consume(token.Colon, "expected ':' in dict literal")
			c.expressionNoComma()
			pairs++
		}
		c.consume(token.RightBrace, "expected '}'")
		c.emitOperand(bytecode.OpMakeDict, bytecode.OpMakeDictLong, pairs)
		return
	}
	count := 1
	for c.match(token.Comma) {
		if c.check(token.RightBrace) {
			break
		}
		c.expressionNoComma()
		count++
	}
	c.consume(token.RightBrace, "expected '}'")
	c.emitOperand(bytecode.OpMakeSet, bytecode.OpMakeSetLong, count)
}

func subscript(c *Compiler, canAssign bool) {
	// Slices (a[start:stop:step]) and plain indexing share the '['
	// prefix; a bare colon distinguishes a slice from the first index
	// expression being omitted (a[:2]).
	hasStart := !c.check(token.Colon) && !c.check(token.RightBracket)
	if hasStart {
		c.expressionNoComma()
	} else {
		c.emitOp(bytecode.OpNone)
	}
	if c.match(token.Colon) {
		compileSliceTail(c, canAssign)
		return
	}
	c.consume(token.RightBracket, "expected ']'")

	if canAssign && c.check(token.Equal) {
		c.advance()
		c.expression()
		c.emitOp(bytecode.OpInvokeSetter)
		return
	}
	c.emitOp(bytecode.OpInvokeGetter)
}

func compileSliceTail(c *Compiler, canAssign bool) {
	if !c.check(token.Colon) && !c.check(token.RightBracket) {
		c.expressionNoComma()
	} else {
		c.emitOp(bytecode.OpNone)
	}
	if c.match(token.Colon) {
		if !c.check(token.RightBracket) {
			c.expressionNoComma()
		} else {
			c.emitOp(bytecode.OpNone)
		}
	} else {
		c.emitOp(bytecode.OpNone)
	}
	c.consume(token.RightBracket, "expected ']'")
	if canAssign && c.check(token.Equal) {
		c.advance()
		c.expression()
		c.emitOp(bytecode.OpInvokeSetSlice)
		return
	}
	c.emitOp(bytecode.OpInvokeGetSlice)
}

func dotAccess(c *Compiler, canAssign bool) {
	c.consume(token.Identifier, "expected property name after '.'")
	name := c.previous.Lexeme
	idx := c.emitString(name)
	if canAssign && c.check(token.Equal) {
		c.advance()
		c.expression()
		c.emitOperand(bytecode.OpSetProperty, bytecode.OpSetPropertyLong, idx)
		return
	}
	c.emitOperand(bytecode.OpGetProperty, bytecode.OpGetPropertyLong, idx)
}

// ---- operators ----

func unary(c *Compiler, _ bool) {
	op := c.previous.Kind
	c.parsePrecedence(PrecUnary)
	switch op {
	case token.Minus:
		c.emitOp(bytecode.OpNegate)
	case token.Plus:
		// unary plus is a no-op at the value level; nothing to emit.
	case token.Tilde:
		c.emitOp(bytecode.OpBitNegate)
	}
}

func notExpr(c *Compiler, _ bool) {
	c.parsePrecedence(PrecComparison)
	c.emitOp(bytecode.OpNot)
}

func binary(c *Compiler, _ bool) {
	op := c.previous.Kind
	rule := ruleFor(op)
	c.parsePrecedence(rule.precedence + 1)
	emitBinaryOp(c, op)
}

func binaryRightAssoc(c *Compiler, _ bool) {
	op := c.previous.Kind
	rule := ruleFor(op)
	c.parsePrecedence(rule.precedence) // same precedence => right-assoc
	emitBinaryOp(c, op)
}

func emitBinaryOp(c *Compiler, op token.Kind) {
	switch op {
	case token.Plus:
		c.emitOp(bytecode.OpAdd)
	case token.Minus:
		c.emitOp(bytecode.OpSub)
	case token.Star:
		c.emitOp(bytecode.OpMul)
	case token.Slash:
		c.emitOp(bytecode.OpDiv)
	case token.SlashSlash:
		c.emitOp(bytecode.OpFloorDiv)
	case token.Percent:
		c.emitOp(bytecode.OpMod)
	case token.StarStar:
		c.emitOp(bytecode.OpPow)
	case token.Amp:
		c.emitOp(bytecode.OpBitAnd)
	case token.Pipe:
		c.emitOp(bytecode.OpBitOr)
	case token.Caret:
		c.emitOp(bytecode.OpBitXor)
	case token.ShiftLeft:
		c.emitOp(bytecode.OpShiftLeft)
	case token.ShiftRight:
		c.emitOp(bytecode.OpShiftRight)
	}
}

// comparison handles chained comparisons (a < b < c) per §4.4: each
// link after the first duplicates the middle operand via
// OP_DUP_COMPARE_OPERAND so it can be reused as the left side of the
// next link without re-evaluating it, short-circuiting to false via
// OP_JUMP_IF_FALSE_OR_POP if any link fails.
func comparison(c *Compiler, _ bool) {
	op := c.previous.Kind
	rule := ruleFor(op)
	c.parsePrecedence(rule.precedence + 1)
	emitComparisonOp(c, op)

	var shortCircuitJumps []int
	for isComparisonOp(c.current.Kind) {
		c.emitOp(bytecode.OpDupCompareOperand)
		shortCircuitJumps = append(shortCircuitJumps, c.emitJump(bytecode.OpJumpIfFalseOrPop))
		nextOp := c.current.Kind
		c.advance()
		nextRule := ruleFor(nextOp)
		c.parsePrecedence(nextRule.precedence + 1)
		emitComparisonOp(c, nextOp)
	}
	for _, pos := range shortCircuitJumps {
		c.patchJump(pos)
	}
}

func isComparisonOp(k token.Kind) bool {
	switch k {
	case token.EqualEqual, token.BangEqual, token.Greater, token.GreaterEqual,
		token.Less, token.LessEqual, token.Is, token.In:
		return true
	}
	return false
}

func emitComparisonOp(c *Compiler, op token.Kind) {
	switch op {
	case token.EqualEqual:
		c.emitOp(bytecode.OpEqual)
	case token.BangEqual:
		c.emitOp(bytecode.OpNotEqual)
	case token.Greater:
		c.emitOp(bytecode.OpGreater)
	case token.GreaterEqual:
		c.emitOp(bytecode.OpGreaterEqual)
	case token.Less:
		c.emitOp(bytecode.OpLess)
	case token.LessEqual:
		c.emitOp(bytecode.OpLessEqual)
	case token.Is:
		c.emitOp(bytecode.OpIs)
	case token.In:
		c.emitOp(bytecode.OpInvokeIter) // membership test lowers onto the iteration protocol in kvm
	}
}

func andExpr(c *Compiler, _ bool) {
	endJump := c.emitJump(bytecode.OpJumpIfFalseOrPop)
	c.parsePrecedence(PrecAnd + 1)
	c.patchJump(endJump)
}

func orExpr(c *Compiler, _ bool) {
	endJump := c.emitJump(bytecode.OpJumpIfTrueOrPop)
	c.parsePrecedence(PrecOr + 1)
	c.patchJump(endJump)
}

// ternary is registered as token.If's infix handler only so the Pratt
// table reports a non-nil infix for it (letting parsePrecedence's loop
// recognize 'if' as continuing the expression at all); parsePrecedence
// intercepts token.If itself and calls compileTernary instead of ever
// invoking this function.
func ternary(c *Compiler, _ bool) {
	c.error("internal: ternary dispatched as a plain infix rule")
}

// compileTernary implements `then_expr if cond else else_expr` (§4.3).
// By the time parsePrecedence notices the 'if', it has already
// compiled and emitted "then" in the wrong position: Python requires
// cond to run first so that whichever branch is not selected never
// executes its side effects. This is exactly the rewind-and-reparse
// case §9 calls out for ternaries: discard the "then" bytecode just
// emitted, compile cond first, then reparse "then" from source (its
// tokens are deterministic, so reparsing it is equivalent to having
// parsed it in the right order to begin with), then consume 'else'
// and compile the else branch, which may itself be a ternary
// (right-associative chaining, e.g. `a if b else c if d else e`).
//
// beforeThen is the snapshot parsePrecedence took before it started
// parsing "then"; prec is that same call's precedence threshold, used
// again verbatim when "then" is reparsed so it stops at exactly the
// same token it stopped at the first time.
func (c *Compiler) compileTernary(beforeThen parseSnapshot, prec Precedence) {
	afterThen := c.mark() // current == token.If; code still holds the discarded "then"
	c.restore(beforeThen) // truncate "then"'s bytecode, rewind scanner to its start
	c.gotoTokens(afterThen)
	c.advance() // consume 'if'
	c.parsePrecedence(PrecOr) // cond is an or_test: no bare ternary/assignment/comma inside it

	elseJump := c.emitJump(bytecode.OpJumpIfFalse)
	afterCond := c.mark()

	c.gotoTokens(beforeThen)
	saved := c.noTernary
	c.noTernary = true
	c.parsePrecedence(prec) // reparse "then" for real, now emitted after cond
	c.noTernary = saved

	jumpEnd := c.emitJump(bytecode.OpJump)
	c.patchJump(elseJump)

	c.gotoTokens(afterCond)
	c.consume(token.Else, "expected 'else' in conditional expression")
	c.parsePrecedence(PrecTernary)
	c.patchJump(jumpEnd)
}
