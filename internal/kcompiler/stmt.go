package kcompiler

import (
	"strings"

	"kuro/internal/bytecode"
	"kuro/internal/kobject"
	"kuro/internal/token"
)

// declaration is the top of the statement grammar (§4.3): it handles
// the forms that bind a name at the enclosing scope (def, class,
// decorated def/class) and otherwise falls through to statement.
// Every block — module body, function body, class body, suite of an
// if/while/for/try/with — is a flat run of declaration() calls ended
// by an Indentation (dedent) token or EOF.
func (c *Compiler) declaration() {
	if c.panicMode {
		c.synchronize()
	}
	switch {
	case c.check(token.At):
		c.decorated()
	case c.check(token.Def):
		c.funcDeclaration(c.class != nil)
	case c.check(token.Class):
		c.classDeclaration()
	default:
		c.statement()
	}
}

// decorated compiles one or more `@expr` lines followed by a def or
// class (§4.3). Each decorator expression is pushed in written order
// and left unbound, deepest-first, below the def/class value that
// funcDeclarationValue/classDeclarationValue push on top without
// binding it; since the decorator nearest the def ends up directly
// under that value, repeated single-arg calls peel them off from the
// innermost decorator outward — exactly `d1(d2(...dN(value)...))` —
// with no stack shuffling needed. The final result is then bound the
// same way an undecorated def/class would be.
func (c *Compiler) decorated() {
	count := 0
	for c.match(token.At) {
		c.expression()
		c.consume(token.EOL, "expected newline after decorator")
		count++
	}
	var name string
	switch {
	case c.check(token.Def):
		name = c.funcDeclarationValue(c.class != nil)
	case c.check(token.Class):
		name = c.classDeclarationValue()
	default:
		c.errorAtCurrent("expected a function or class declaration after decorator")
		return
	}
	for i := 0; i < count; i++ {
		c.emitOperand(bytecode.OpCall, bytecode.OpCallLong, 1)
	}
	c.bindDeclared(name)
}

// endOfSimpleStatement consumes the newline (or EOF) ending a
// non-compound statement, matching how the scanner always emits an EOL
// token outside brackets.
func (c *Compiler) endOfSimpleStatement() {
	if c.check(token.EOF) {
		return
	}
	c.consume(token.EOL, "expected newline after statement")
}

// suite consumes `:` NEWLINE INDENT declaration* DEDENT, the shared
// block-body contract every compound statement uses. klexer emits
// exactly one Indentation token to open a block and exactly one to
// close it regardless of how many dedent levels collapse at once (its
// dedentsOwed bookkeeping supplies filler tokens transparently), so a
// nested suite() always consumes precisely one token on each side.
func (c *Compiler) suite() {
	c.consume(token.Colon, "expected ':'")
	c.consume(token.EOL, "expected newline")
	c.consume(token.Indentation, "expected an indented block")
	for !c.check(token.EOF) && !c.check(token.Indentation) {
		c.declaration()
	}
	if c.check(token.Indentation) {
		c.advance()
	}
}

// statement dispatches every non-declaration statement kind (§4.3).
func (c *Compiler) statement() {
	switch c.current.Kind {
	case token.If:
		c.ifStatement()
	case token.While:
		c.whileStatement()
	case token.For:
		c.forStatement()
	case token.Try:
		c.tryStatement()
	case token.With:
		c.withStatement()
	case token.Import, token.From:
		c.importStatement()
	case token.Return:
		c.returnStatement()
	case token.Break:
		c.breakStatement()
	case token.Continue:
		c.continueStatement()
	case token.Global:
		c.globalOrNonlocalStatement(false)
	case token.Nonlocal:
		c.globalOrNonlocalStatement(true)
	case token.Assert:
		c.assertStatement()
	case token.Pass:
		c.advance()
		c.endOfSimpleStatement()
	case token.Del:
		c.delStatement()
	case token.Raise:
		c.raiseStatement()
	case token.Async:
		c.asyncStatement()
	default:
		c.expressionStatement()
	}
}

// ---- simple statements ----

// expressionStatement compiles a bare expression used for its side
// effects (§4.3), including ordinary assignment (`a = 1`, `a.x = 1`,
// `a[0] = 1`, augmented assignment) which expr.go's prefix/infix
// handlers already fold into expression parsing. Tuple-unpacking
// assignment to more than one simple name (`a, b = 1, 2`) needs a
// separate path: parsePrecedence raises "invalid assignment target"
// once it sees a trailing '=' after a bare comma-built tuple, so the
// multi-target case is detected by a side-effect-free lookahead before
// committing to either path, per §4.3/§9's rewind-and-reparse technique.
func (c *Compiler) expressionStatement() {
	if names, ok := c.tryMultiAssignTargets(); ok {
		c.multiAssignStatement(names)
		return
	}
	c.expression()
	c.emitOp(bytecode.OpPop)
	c.endOfSimpleStatement()
}

// tryMultiAssignTargets speculatively scans `NAME (, NAME)+ =` using
// only raw token consumption (advance/match/check — never expression(),
// which would record a hard compiler error on the very trailing '=' a
// single-name assignment leaves for expr.go to consume normally), then
// unconditionally restores the snapshot. Any shape other than two or
// more simple names followed by '=' is left entirely to expression()
// (attribute/subscript multi-targets are not supported).
func (c *Compiler) tryMultiAssignTargets() ([]string, bool) {
	start := c.mark()
	var names []string
	ok := func() bool {
		if !c.check(token.Identifier) {
			return false
		}
		c.advance()
		names = append(names, c.previous.Lexeme)
		for c.match(token.Comma) {
			if !c.check(token.Identifier) {
				return false
			}
			c.advance()
			names = append(names, c.previous.Lexeme)
		}
		return len(names) > 1 && c.check(token.Equal)
	}()
	c.restore(start)
	if !ok {
		return nil, false
	}
	return names, true
}

// multiAssignStatement compiles `a, b = <expr>` once
// tryMultiAssignTargets has confirmed the shape: the targets are
// reconsumed for real, the RHS compiles as an ordinary expression (a
// bare `1, 2` builds a Tuple via commaTuple the same as any other
// top-level comma expression), OP_UNPACK splits it into len(names)
// values, and each target is stored and popped in turn.
func (c *Compiler) multiAssignStatement(names []string) {
	for i, name := range names {
		if i > 0 {
			c.match(token.Comma)
		}
		c.advance() // the name token itself
		_ = name
	}
	c.consume(token.Equal, "expected '=' in multi-target assignment")
	c.expression()
	c.emitOp(bytecode.OpUnpack)
	c.emitByte(byte(len(names)))
	for _, name := range names {
		storeNamed(c, name)
		c.emitOp(bytecode.OpPop)
	}
	c.endOfSimpleStatement()
}

func (c *Compiler) returnStatement() {
	c.advance() // 'return'
	if c.kind == kindScript {
		c.error("'return' outside function")
	}
	if c.check(token.EOL) || c.check(token.EOF) {
		c.emitOp(bytecode.OpNone)
	} else {
		c.expression()
	}
	c.emitOp(bytecode.OpReturn)
	c.endOfSimpleStatement()
}

func (c *Compiler) breakStatement() {
	c.advance()
	if len(c.loops) == 0 {
		c.error("'break' outside loop")
		c.endOfSimpleStatement()
		return
	}
	loop := &c.loops[len(c.loops)-1]
	c.popLocalsAbove(loop.scopeDepth)
	jump := c.emitJump(bytecode.OpJump)
	loop.breakJumps = append(loop.breakJumps, jump)
	c.endOfSimpleStatement()
}

func (c *Compiler) continueStatement() {
	c.advance()
	if len(c.loops) == 0 {
		c.error("'continue' outside loop")
		c.endOfSimpleStatement()
		return
	}
	loop := c.loops[len(c.loops)-1]
	c.popLocalsAbove(loop.scopeDepth)
	c.emitLoop(loop.continueTarget)
	c.endOfSimpleStatement()
}

// popLocalsAbove emits the POP/CLOSE_UPVALUE cleanup for every local
// declared deeper than depth, without touching c.locals itself — used
// by break/continue, which unwind the stack without ending the scope
// the way endScope does for a normal block exit.
func (c *Compiler) popLocalsAbove(depth int) {
	for i := len(c.locals) - 1; i >= 0 && c.locals[i].depth > depth; i-- {
		if c.locals[i].captured {
			c.emitOp(bytecode.OpCloseUpvalue)
		} else {
			c.emitOp(bytecode.OpPop)
		}
	}
}

func (c *Compiler) globalOrNonlocalStatement(nonlocal bool) {
	c.advance()
	for {
		c.consume(token.Identifier, "expected a name")
		name := c.previous.Lexeme
		if nonlocal {
			c.declareNonlocal(name)
		} else {
			c.declareGlobal(name)
		}
		if !c.match(token.Comma) {
			break
		}
	}
	c.endOfSimpleStatement()
}

func (c *Compiler) assertStatement() {
	c.advance()
	c.expressionNoComma()
	if c.match(token.Comma) {
		c.expressionNoComma()
	} else {
		c.emitOp(bytecode.OpNone)
	}
	c.emitOp(bytecode.OpAssert)
	c.endOfSimpleStatement()
}

func (c *Compiler) delStatement() {
	c.advance()
	for {
		c.delTarget()
		if !c.match(token.Comma) {
			break
		}
	}
	c.endOfSimpleStatement()
}

func (c *Compiler) delTarget() {
	c.consume(token.Identifier, "expected a name after 'del'")
	name := c.previous.Lexeme
	if c.match(token.Dot) {
		loadNamed(c, name)
		c.consume(token.Identifier, "expected a property name")
		idx := c.emitString(c.previous.Lexeme)
		c.emitOp(bytecode.OpDelProperty)
		c.emitByte(byte(idx))
		return
	}
	if c.match(token.LeftBracket) {
		loadNamed(c, name)
		c.expressionNoComma()
		c.consume(token.RightBracket, "expected ']'")
		c.emitOp(bytecode.OpInvokeDelete)
		return
	}
	if slot := c.resolveLocal(name); slot != -1 {
		c.emitOp(bytecode.OpDelLocal)
		c.emitByte(byte(slot))
		return
	}
	nameIdx := c.emitString(name)
	c.emitOp(bytecode.OpDelGlobal)
	c.emitByte(byte(nameIdx))
}

func (c *Compiler) raiseStatement() {
	c.advance()
	if c.check(token.EOL) || c.check(token.EOF) {
		c.emitOp(bytecode.OpReraise)
		c.endOfSimpleStatement()
		return
	}
	c.expressionNoComma()
	if c.match(token.From) {
		c.expressionNoComma()
	} else {
		c.emitOp(bytecode.OpNone)
	}
	c.emitOp(bytecode.OpRaise)
	c.endOfSimpleStatement()
}

// asyncStatement recognizes `async def`, `async for`, and `async with`
// syntactically (so well-formed async code still parses) but compiles
// async for/with into a raise of NotImplementedError placed ahead of
// the (still compiled, unreachable) statement, and async def as an
// ordinary function — coroutines are only reachable through
// explicit `await`/generator machinery, not the async-statement sugar,
// a supplemented-features simplification recorded in DESIGN.md.
func (c *Compiler) asyncStatement() {
	c.advance()
	switch c.current.Kind {
	case token.Def:
		c.funcDeclaration(c.class != nil)
	case token.For, token.With:
		nameIdx := c.emitString("NotImplementedError")
		c.emitOperand(bytecode.OpGetGlobal, bytecode.OpGetGlobalLong, nameIdx)
		msgIdx := c.emitString("async for/with is not implemented")
		c.emitOperand(bytecode.OpConstant, bytecode.OpConstantLong, msgIdx)
		c.emitOperand(bytecode.OpCall, bytecode.OpCallLong, 1)
		c.emitOp(bytecode.OpNone)
		c.emitOp(bytecode.OpRaise)
		if c.check(token.For) {
			c.forStatement()
		} else {
			c.withStatement()
		}
	default:
		c.errorAtCurrent("expected 'def', 'for', or 'with' after 'async'")
	}
}

// ---- compound statements ----

func (c *Compiler) ifStatement() {
	c.advance() // 'if'
	c.expression()
	c.consume(token.Colon, "expected ':'")
	c.consume(token.EOL, "expected newline")

	thenJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.emitOp(bytecode.OpPop)
	c.consume(token.Indentation, "expected an indented block")
	for !c.check(token.EOF) && !c.check(token.Indentation) {
		c.declaration()
	}
	if c.check(token.Indentation) {
		c.advance()
	}

	var endJumps []int
	endJumps = append(endJumps, c.emitJump(bytecode.OpJump))
	c.patchJump(thenJump)
	c.emitOp(bytecode.OpPop)

	for c.check(token.Elif) {
		c.advance()
		c.expression()
		c.consume(token.Colon, "expected ':'")
		c.consume(token.EOL, "expected newline")
		elifJump := c.emitJump(bytecode.OpJumpIfFalse)
		c.emitOp(bytecode.OpPop)
		c.consume(token.Indentation, "expected an indented block")
		for !c.check(token.EOF) && !c.check(token.Indentation) {
			c.declaration()
		}
		if c.check(token.Indentation) {
			c.advance()
		}
		endJumps = append(endJumps, c.emitJump(bytecode.OpJump))
		c.patchJump(elifJump)
		c.emitOp(bytecode.OpPop)
	}

	if c.match(token.Else) {
		c.suite()
	}
	for _, j := range endJumps {
		c.patchJump(j)
	}
}

func (c *Compiler) whileStatement() {
	c.advance() // 'while'
	loopStart := len(c.code.Chunk.Code)
	c.expression()
	c.consume(token.Colon, "expected ':'")
	c.consume(token.EOL, "expected newline")

	exitJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.emitOp(bytecode.OpPop)

	c.loops = append(c.loops, loopContext{continueTarget: loopStart, scopeDepth: c.scopeDepth})
	c.consume(token.Indentation, "expected an indented block")
	for !c.check(token.EOF) && !c.check(token.Indentation) {
		c.declaration()
	}
	if c.check(token.Indentation) {
		c.advance()
	}
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(bytecode.OpPop)
	loop := c.loops[len(c.loops)-1]
	c.loops = c.loops[:len(c.loops)-1]
	for _, j := range loop.breakJumps {
		c.patchJump(j)
	}

	if c.match(token.Else) {
		c.suite()
	}
}

// forStatement compiles `for target in iterable:` by lowering onto the
// iteration protocol (§4.4/§4.6): OP_INVOKE_ITER turns the iterable on
// the stack into an iterator, and each trip through the loop body calls
// it again (__call__ convention shared with generators) to get the next
// value or an exhausted sentinel. The iterator is kept in an anonymous
// local for the duration of the loop so it only needs to be produced
// once.
func (c *Compiler) forStatement() {
	c.advance() // 'for'
	c.consume(token.Identifier, "expected a loop variable")
	target := c.previous.Lexeme

	c.consume(token.In, "expected 'in' after for-loop variable")
	c.expression()
	c.emitOp(bytecode.OpInvokeIter)

	c.beginScope()
	c.declareLocal("")
	iterSlot := len(c.locals) - 1
	c.code.Locals = append(c.code.Locals, kobject.LocalInfo{Name: ""})

	c.consume(token.Colon, "expected ':'")
	c.consume(token.EOL, "expected newline")

	loopStart := len(c.code.Chunk.Code)
	c.emitOperand(bytecode.OpGetLocal, bytecode.OpGetLocalLong, iterSlot)
	c.emitOperand(bytecode.OpCall, bytecode.OpCallLong, 0)
	c.emitOperand(bytecode.OpGetLocal, bytecode.OpGetLocalLong, iterSlot)
	c.emitOp(bytecode.OpIs)
	exitJump := c.emitJump(bytecode.OpJumpIfFalseOrPop)
	// top of stack: the iterator itself (exhausted sentinel) — drop it
	// and jump past the body.
	bodyJump := c.emitJump(bytecode.OpJump)
	c.patchJump(exitJump)
	c.emitOp(bytecode.OpPop)

	c.beginScope()
	c.declareLocal(target)
	c.code.Locals = append(c.code.Locals, kobject.LocalInfo{Name: target})

	c.loops = append(c.loops, loopContext{continueTarget: loopStart, scopeDepth: c.scopeDepth})
	c.patchJump(bodyJump)
	c.consume(token.Indentation, "expected an indented block")
	for !c.check(token.EOF) && !c.check(token.Indentation) {
		c.declaration()
	}
	if c.check(token.Indentation) {
		c.advance()
	}
	c.emitLoop(loopStart)
	c.endScope()

	loop := c.loops[len(c.loops)-1]
	c.loops = c.loops[:len(c.loops)-1]
	for _, j := range loop.breakJumps {
		c.patchJump(j)
	}

	c.endScope()

	if c.match(token.Else) {
		c.suite()
	}
}

// tryStatement compiles try/except/else/finally (§4.5). Two handler
// markers are pushed around the body: an inner one guarding only the
// except-filter chain, and an outer one that survives the whole
// try/except/else region so a finally clause still runs whether the
// body completed normally, was handled by an except clause, or
// propagated past every except clause unmatched (OP_RERAISE unwinds to
// whichever marker is nearest, which by then is the outer one).
//
// OP_FILTER_EXCEPT pops a test class (OP_NONE for a bare `except:`)
// and, if it matches the pending exception, pushes the exception value
// (always truthy) and clears the pending flag; otherwise it pushes
// `false` and leaves the flag set. Both branches of the resulting
// OP_JUMP_IF_FALSE must explicitly pop, matching the convention
// ifStatement already uses.
func (c *Compiler) tryStatement() {
	c.advance() // 'try'
	c.consume(token.Colon, "expected ':' after 'try'")
	c.consume(token.EOL, "expected newline after 'try'")

	outerJump := c.emitJump(bytecode.OpPushTry)
	innerJump := c.emitJump(bytecode.OpPushTry)

	c.consume(token.Indentation, "expected an indented try body")
	for !c.check(token.EOF) && !c.check(token.Indentation) {
		c.declaration()
	}
	if c.check(token.Indentation) {
		c.advance()
	}
	c.emitOp(bytecode.OpPopTry) // inner marker: body finished with no exception
	normalJump := c.emitJump(bytecode.OpJump)

	c.patchJump(innerJump)

	var handledJumps []int
	sawExcept := false
	for c.check(token.Except) {
		sawExcept = true
		c.advance()
		hasName := false
		var name string
		if c.check(token.Colon) {
			c.emitOp(bytecode.OpNone) // bare except: matches anything
		} else {
			c.expressionNoComma()
			if c.match(token.As) {
				c.consume(token.Identifier, "expected a name after 'as'")
				name = c.previous.Lexeme
				hasName = true
			}
		}
		c.emitOp(bytecode.OpFilterExcept)
		failJump := c.emitJump(bytecode.OpJumpIfFalse)
		// matched: top of stack is the exception value.
		if hasName {
			storeNamed(c, name)
		}
		c.emitOp(bytecode.OpPop)
		c.suite()
		handledJumps = append(handledJumps, c.emitJump(bytecode.OpJump))
		c.patchJump(failJump)
		c.emitOp(bytecode.OpPop) // drop the unmatched `false`
	}
	if sawExcept {
		c.emitOp(bytecode.OpReraise)
	}

	c.patchJump(normalJump)
	if c.match(token.Else) {
		c.suite()
	}
	for _, j := range handledJumps {
		c.patchJump(j)
	}

	if c.match(token.Finally) {
		// OP_BEGIN_FINALLY drops the outer marker if it is still live
		// (the normal/handled paths above never consumed it; the
		// reraise path already had the VM consume it on unwind), then
		// snapshots and clears any pending exception so the cleanup
		// body below runs unconditionally with a clean slate.
		c.patchJump(outerJump)
		c.emitOp(bytecode.OpBeginFinally)
		c.suite()
		// OP_END_FINALLY re-raises the snapshotted exception, if any,
		// else falls through.
		c.emitOp(bytecode.OpEndFinally)
	} else {
		c.emitOp(bytecode.OpPopTry) // no finally: drop the still-live outer marker
		skipReraise := c.emitJump(bytecode.OpJump)
		c.patchJump(outerJump) // unmatched exception: keep propagating it
		c.emitOp(bytecode.OpReraise)
		c.patchJump(skipReraise)
	}
}

// withStatement compiles `with expr as name[, expr as name]*:` (§4.6).
// Each manager's __enter__ runs before the shared body; OP_PUSH_WITH
// records the manager value in a handler marker so OP_CLEANUP_WITH can
// reach it later without any further stack bookkeeping. The body's
// normal completion falls straight through into the cleanup code — the
// same code an exceptional unwind lands on — since OP_CLEANUP_WITH
// itself checks whether an exception is pending to decide whether
// __exit__ receives real exception info or three Nones, and whether a
// truthy return suppresses propagation. Managers open outermost-first
// and clean up innermost-first, matching Python's nesting.
func (c *Compiler) withStatement() {
	c.advance() // 'with'
	var handlerJumps []int
	for {
		c.expressionNoComma()
		c.emitOp(bytecode.OpDup)
		nameIdx := c.emitString("__enter__")
		c.emitOperand(bytecode.OpGetProperty, bytecode.OpGetPropertyLong, nameIdx)
		c.emitOperand(bytecode.OpCall, bytecode.OpCallLong, 0)
		if c.match(token.As) {
			c.consume(token.Identifier, "expected a name after 'as'")
			storeNamed(c, c.previous.Lexeme)
		}
		c.emitOp(bytecode.OpPop) // drop __enter__'s result
		handlerJumps = append(handlerJumps, c.emitJump(bytecode.OpPushWith))
		if !c.match(token.Comma) {
			break
		}
	}
	c.suite()
	for i := len(handlerJumps) - 1; i >= 0; i-- {
		c.patchJump(handlerJumps[i])
		c.emitOp(bytecode.OpCleanupWith)
	}
}

// importStatement compiles `import a.b.c [as name]` and delegates to
// fromImportStatement for `from X import ...` (§4.7). A plain import
// binds the first dotted component (`import a.b.c` binds `a`; reaching
// `b`/`c` is an ordinary attribute access through it) unless `as` names
// an explicit alias, in which case the whole imported leaf module is
// bound instead.
func (c *Compiler) importStatement() {
	if c.check(token.From) {
		c.fromImportStatement()
		return
	}
	c.advance() // 'import'
	for {
		dotted, bindName := c.parseDottedModulePath()
		nameIdx := c.emitString(dotted)
		c.emitOperand(bytecode.OpImport, bytecode.OpImportLong, nameIdx)
		c.bindImportedName(bindName)
		if !c.match(token.Comma) {
			break
		}
	}
	c.endOfSimpleStatement()
}

// fromImportStatement compiles `from X import Y [as alias], ...`,
// including the parenthesized whitespace-insensitive list form (§4.7).
// OP_IMPORT leaves the module on the stack; OP_DUP keeps a copy alive
// across each OP_IMPORT_FROM attribute pull so every named import reads
// the same module object.
func (c *Compiler) fromImportStatement() {
	c.advance() // 'from'
	dotted := c.parseDottedPath()
	c.consume(token.Import, "expected 'import' after module path")

	moduleIdx := c.emitString(dotted)
	c.emitOperand(bytecode.OpImport, bytecode.OpImportLong, moduleIdx)

	parenthesized := c.match(token.LeftParen)
	for {
		c.consume(token.Identifier, "expected an imported name")
		attr := c.previous.Lexeme
		bindName := attr
		if c.match(token.As) {
			c.consume(token.Identifier, "expected a name after 'as'")
			bindName = c.previous.Lexeme
		}
		c.emitOp(bytecode.OpDup)
		attrIdx := c.emitString(attr)
		c.emitOperand(bytecode.OpImportFrom, bytecode.OpImportFromLong, attrIdx)
		c.bindImportedName(bindName)
		if !c.match(token.Comma) {
			break
		}
		if parenthesized && c.check(token.RightParen) {
			break
		}
	}
	if parenthesized {
		c.consume(token.RightParen, "expected ')' after imported names")
	}
	c.emitOp(bytecode.OpPop) // drop the module value kept alive for OP_DUP
	c.endOfSimpleStatement()
}

// parseDottedPath consumes `a.b.c` and returns the joined dotted name.
func (c *Compiler) parseDottedPath() string {
	c.consume(token.Identifier, "expected a module name")
	parts := []string{c.previous.Lexeme}
	for c.match(token.Dot) {
		c.consume(token.Identifier, "expected a module name component")
		parts = append(parts, c.previous.Lexeme)
	}
	return strings.Join(parts, ".")
}

// parseDottedModulePath consumes `a.b.c [as name]` for a plain import
// clause, returning the dotted path and the name that binds it.
func (c *Compiler) parseDottedModulePath() (dotted, bindName string) {
	c.consume(token.Identifier, "expected a module name")
	first := c.previous.Lexeme
	parts := []string{first}
	for c.match(token.Dot) {
		c.consume(token.Identifier, "expected a module name component")
		parts = append(parts, c.previous.Lexeme)
	}
	dotted = strings.Join(parts, ".")
	bindName = first
	if c.match(token.As) {
		c.consume(token.Identifier, "expected a name after 'as'")
		bindName = c.previous.Lexeme
	}
	return
}

// bindImportedName binds an imported value the same way bindDeclared
// binds a def/class, except at module scope it uses OP_DEFINE_GLOBAL
// rather than OP_SET_GLOBAL: a definition always pops (an import
// statement has no expression value callers need left on the stack),
// where OP_SET_GLOBAL's assignment-expression semantics require a
// peek, handled by storeNamed's callers emitting their own OP_POP.
func (c *Compiler) bindImportedName(name string) {
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
	nameIdx := c.emitString(name)
	c.emitOperand(bytecode.OpDefineGlobal, bytecode.OpDefineGlobalLong, nameIdx)
}
