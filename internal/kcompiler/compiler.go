// Package kcompiler implements the single-pass, Pratt-precedence
// recursive-descent compiler of §4.3: it walks the token stream
// exactly once, emitting bytecode directly into a kobject.CodeObject
// without ever building an intermediate AST. Grounded on the
// teacher's internal/compiler package for the general shape (a
// Compiler struct wrapping a *bytecode.Chunk, emitOp/emitByte
// helpers, locals tracked in a flat slice, jump-patch-by-position) —
// the teacher compiles an AST built by a separate parser package, so
// every parsing method here is new, written in the same emission
// idiom but driven directly off internal/token.Scanner the way
// clox-family single-pass compilers are, per §4.3/§9's description.
package kcompiler

import (
	"fmt"

	"kuro/internal/bytecode"
	"kuro/internal/kerrors"
	"kuro/internal/klexer"
	"kuro/internal/kobject"
	"kuro/internal/kvalue"
	"kuro/internal/token"
)

// funcKind distinguishes the handful of synthetic-function shapes the
// compiler produces, since module scope, ordinary defs, lambdas,
// class bodies, and comprehension bodies each have slightly different
// implicit-return and self-binding behavior.
type funcKind int

const (
	kindScript funcKind = iota
	kindFunction
	kindMethod
	kindLambda
	kindClassBody
	kindComprehension
)

type localVar struct {
	name     string
	depth    int
	captured bool
}

type upvalueDesc struct {
	index   int
	isLocal bool
}

type loopContext struct {
	continueTarget int // pc to loop back to
	breakJumps     []int
	scopeDepth     int
}

// classContext tracks the declared-property names of the class body
// currently being compiled, consulted by name resolution rule (1) of
// §4.3 ("the current class body's declared properties") before
// falling through to locals/upvalues/globals.
type classContext struct {
	enclosing *classContext
	names     map[string]bool
	// slot is the class-body frame's local holding the class currently
	// under construction, read back by loadNamed for rule (1) lookups.
	slot int
}

// Compiler compiles one function-shaped region of source: the module
// body, or a nested def/lambda/class-body/comprehension, each getting
// its own Compiler linked to its lexical parent via enclosing.
type Compiler struct {
	scanner  token.Scanner
	filename string

	previous token.Token
	current  token.Token
	ungot    bool

	hadError  bool
	panicMode bool
	errs      []*kerrors.SyntaxError

	enclosing *Compiler
	code      *kobject.CodeObject
	kind      funcKind

	scopeDepth int
	locals     []localVar
	upvalues   []upvalueDesc

	loops []loopContext
	class *classContext

	// noTernary suppresses the 'if' infix rule for one reparse of a
	// ternary's "then" branch (see compileTernary), since Python's
	// grammar only allows ternary chaining on the "else" side.
	noTernary bool

	// globalsSeen records every name this module/function has emitted
	// OP_DEFINE_GLOBAL for, purely so class-body synthetic functions at
	// module scope can tell a bare name apart from a true global without
	// a second pass.
	globalsSeen map[string]bool

	// globalDecls records names a `global`/`nonlocal` statement in this
	// frame named explicitly, suppressing storeNamed's auto-local
	// fallback for them (§4.3).
	globalDecls map[string]bool
}

// Compile is the package's entry point, matching the signature
// internal/kmodule.CompileFunc and internal/kvm expect: it compiles an
// entire source file (or `-c` string) into a module-flagged code
// object.
func Compile(source, filename string) (*kobject.CodeObject, error) {
	sc := klexer.New(source)
	c := newCompiler(sc, filename, kindScript, nil)
	c.code.Flags |= kobject.FlagIsModule
	c.advance()

	for !c.check(token.EOF) {
		c.declaration()
	}
	c.emitReturn()

	if c.hadError {
		return nil, c.firstError()
	}
	return c.code, nil
}

func newCompiler(sc token.Scanner, filename string, kind funcKind, enclosing *Compiler) *Compiler {
	c := &Compiler{
		scanner:     sc,
		filename:    filename,
		enclosing:   enclosing,
		kind:        kind,
		globalsSeen: map[string]bool{},
		globalDecls: map[string]bool{},
	}
	name := "<module>"
	switch kind {
	case kindFunction, kindMethod:
		name = "<anonymous>"
	case kindLambda:
		name = "<lambda>"
	case kindClassBody:
		name = "<class body>"
	case kindComprehension:
		name = "<comprehension>"
	}
	c.code = kobject.NewCodeObject(name, filename)
	// Slot 0 is reserved for the receiver/callable itself in every
	// frame kind, module scope included, mirroring the clox-family
	// convention the teacher's own call convention assumes implicitly.
	c.locals = append(c.locals, localVar{name: "", depth: 0})
	return c
}

func (c *Compiler) firstError() error {
	if len(c.errs) == 0 {
		return fmt.Errorf("kcompiler: compilation failed")
	}
	return c.errs[0]
}

// ---- token stream plumbing ----

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.scanner.Next()
		if c.current.Kind != token.Error {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) check(k token.Kind) bool { return c.current.Kind == k }

func (c *Compiler) match(k token.Kind) bool {
	if !c.check(k) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(k token.Kind, msg string) {
	if c.current.Kind == k {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

// skipNewlines consumes any run of EOL tokens, used at points where a
// blank line is harmless (e.g. just after ':').
func (c *Compiler) skipNewlines() {
	for c.check(token.EOL) {
		c.advance()
	}
}

// mark/restore implement the rewind-and-reparse technique of §4.3/§9:
// snapshot the scanner plus the parser's previous/current tokens, and
// the chunk's write cursor, so a misidentified syntactic form can be
// discarded and reparsed as the other one.
type parseSnapshot struct {
	scanner  token.State
	previous token.Token
	current  token.Token
	codeLen  int
	constLen int
}

func (c *Compiler) mark() parseSnapshot {
	return parseSnapshot{
		scanner:  c.scanner.Mark(),
		previous: c.previous,
		current:  c.current,
		codeLen:  len(c.code.Chunk.Code),
		constLen: len(c.code.Chunk.Constants),
	}
}

func (c *Compiler) restore(s parseSnapshot) {
	c.gotoTokens(s)
	c.code.Chunk.Code = c.code.Chunk.Code[:s.codeLen]
	c.code.Chunk.Constants = c.code.Chunk.Constants[:s.constLen]
}

// gotoTokens repositions the scanner and lookahead tokens to a prior
// snapshot without touching already-emitted bytecode, used when a
// construct (ternary, comprehension) needs to revisit an earlier span
// of source a second time while keeping code emitted in between.
func (c *Compiler) gotoTokens(s parseSnapshot) {
	c.scanner.Reset(s.scanner)
	c.previous = s.previous
	c.current = s.current
}

// ---- error handling ----

func (c *Compiler) errorAtCurrent(msg string) { c.errorAt(c.current, msg) }
func (c *Compiler) error(msg string)          { c.errorAt(c.previous, msg) }

func (c *Compiler) errorAt(t token.Token, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true
	se := kerrors.NewSyntaxError(msg, c.filename, t.Line, t.Column)
	c.errs = append(c.errs, se)
}

// synchronize consumes tokens until a statement boundary (a line-end
// or a line-leading keyword) so one parse error does not cascade into
// hundreds of spurious ones (§4.3).
func (c *Compiler) synchronize() {
	c.panicMode = false
	for !c.check(token.EOF) {
		if c.previous.Kind == token.EOL {
			return
		}
		switch c.current.Kind {
		case token.Class, token.Def, token.Let, token.For, token.If,
			token.While, token.Return, token.Import, token.Try:
			return
		}
		c.advance()
	}
}

// ---- emission helpers ----

func (c *Compiler) line() int { return c.previous.Line }

func (c *Compiler) emitByte(b byte) int { return c.code.Chunk.WriteByte(b, c.line()) }
func (c *Compiler) emitOp(op bytecode.Op) int { return c.code.Chunk.WriteOp(op, c.line()) }

// emitOperand picks the short or long opcode/operand encoding
// depending on the magnitude of operand, per §4.1.
func (c *Compiler) emitOperand(short, long bytecode.Op, operand int) {
	if operand < 0 {
		c.error("internal: negative operand")
		return
	}
	if operand <= 0xFF {
		c.emitOp(short)
		c.emitByte(byte(operand))
		return
	}
	if operand > 0xFFFFFF {
		c.error("operand too large")
		return
	}
	c.emitOp(long)
	c.emitByte(byte(operand >> 16))
	c.emitByte(byte(operand >> 8))
	c.emitByte(byte(operand))
}

func (c *Compiler) addConstant(v kvalue.Value) int { return c.code.Chunk.AddConstant(v) }

func (c *Compiler) emitConstant(v kvalue.Value) {
	c.emitOperand(bytecode.OpConstant, bytecode.OpConstantLong, c.addConstant(v))
}

func (c *Compiler) emitString(s string) int {
	return c.addConstant(kvalue.Object(kobject.Intern(s)))
}

// emitJump writes a jump opcode (no long form — jump operands are
// always a 16-bit offset per §4.1) with a placeholder operand and
// returns the offset of that placeholder for later patching.
func (c *Compiler) emitJump(op bytecode.Op) int {
	c.emitOp(op)
	pos := len(c.code.Chunk.Code)
	c.emitByte(0xFF)
	c.emitByte(0xFF)
	return pos
}

// patchJump backfills a previously emitted jump so it lands on the
// instruction about to be emitted next.
func (c *Compiler) patchJump(pos int) {
	offset := len(c.code.Chunk.Code) - (pos + 2)
	if offset > 0xFFFF {
		c.error("unsupported far jump")
		return
	}
	c.code.Chunk.PatchByte(pos, byte(offset>>8))
	c.code.Chunk.PatchByte(pos+1, byte(offset))
}

// emitLoop emits a backward OP_LOOP to loopStart.
func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(bytecode.OpLoop)
	offset := len(c.code.Chunk.Code) + 2 - loopStart
	if offset > 0xFFFF {
		c.error("unsupported far jump")
		return
	}
	c.emitByte(byte(offset >> 8))
	c.emitByte(byte(offset))
}

func (c *Compiler) emitReturn() {
	// Every code object falls off the end into an implicit `return
	// None` (the class-body synthetic function's result is likewise
	// discarded by its caller, not read, but OP_RETURN always needs a
	// value underneath it).
	c.emitOp(bytecode.OpNone)
	c.emitOp(bytecode.OpReturn)
}

// ---- scope management ----

func (c *Compiler) beginScope() { c.scopeDepth++ }

func (c *Compiler) endScope() {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		last := c.locals[len(c.locals)-1]
		if last.captured {
			c.emitOp(bytecode.OpCloseUpvalue)
		} else {
			c.emitOp(bytecode.OpPop)
		}
		c.locals = c.locals[:len(c.locals)-1]
	}
}

func (c *Compiler) declareLocal(name string) {
	if c.scopeDepth == 0 {
		return
	}
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].depth < c.scopeDepth {
			break
		}
		if c.locals[i].name == name {
			c.error("variable '" + name + "' already declared in this scope")
			return
		}
	}
	c.locals = append(c.locals, localVar{name: name, depth: c.scopeDepth})
}

// resolveLocal returns the stack slot of a local named name in this
// frame, or -1.
func (c *Compiler) resolveLocal(name string) int {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			return i
		}
	}
	return -1
}

// resolveUpvalue implements rule (3) of §4.3's name-resolution order:
// ask the enclosing compiler for a local (or its own upvalue),
// marking the outer local captured and recording/coalescing an
// upvalue descriptor here.
func (c *Compiler) resolveUpvalue(name string) int {
	if c.enclosing == nil {
		return -1
	}
	if slot := c.enclosing.resolveLocal(name); slot != -1 {
		c.enclosing.locals[slot].captured = true
		return c.addUpvalue(slot, true)
	}
	if idx := c.enclosing.resolveUpvalue(name); idx != -1 {
		return c.addUpvalue(idx, false)
	}
	return -1
}

func (c *Compiler) addUpvalue(index int, isLocal bool) int {
	for i, uv := range c.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	c.upvalues = append(c.upvalues, upvalueDesc{index: index, isLocal: isLocal})
	c.code.Upvalues = append(c.code.Upvalues, kobject.UpvalueDesc{Index: index, IsLocal: isLocal})
	return len(c.upvalues) - 1
}

// inClassProperty reports whether name is a declared property of the
// innermost class body lexically enclosing the current position,
// implementing name-resolution rule (1).
func (c *Compiler) inClassProperty(name string) bool {
	return c.class != nil && c.class.names[name]
}

// declareGlobal/declareNonlocal record that name, within this frame,
// must never be auto-declared as a local by storeNamed (§4.3's
// `global`/`nonlocal` statements). nonlocal additionally relies on
// resolveUpvalue already walking the enclosing chain to find the real
// binding; this compiler does not treat "no such enclosing binding"
// as a hard error.
func (c *Compiler) declareGlobal(name string)   { c.globalDecls[name] = true }
func (c *Compiler) declareNonlocal(name string) { c.globalDecls[name] = true }
