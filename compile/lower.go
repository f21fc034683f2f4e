package compile

import (
	"fmt"
	"text/scanner"

	"github.com/vellum-lang/vellum/unit"
	"github.com/vellum-lang/vellum/value"
)

// funcSig is what pass 1 of lowering records about a declared function
// before any body is lowered, so calls (including recursive and
// forward-referencing ones) resolve against a complete table.
type funcSig struct {
	hash  value.Hash
	arity int
}

// lowerer drives lowering of every parsed File's functions into one
// shared unit.Unit: a single flat instruction array (spec.md §4.2),
// with funcs holding every function's hash/arity up front so call
// sites never care about declaration order.
type lowerer struct {
	u     *unit.Unit
	pools *unit.Builder
	funcs map[string]funcSig
	errs  Diagnostics
}

func (lw *lowerer) errorAt(p scanner.Position, format string, args ...any) {
	lw.errs = append(lw.errs, Diagnostic{Pos: p, Msg: fmt.Sprintf(format, args...)})
}

func (lw *lowerer) emit(ins unit.Instruction) int32 {
	idx := len(lw.u.Instructions)
	lw.u.Instructions = append(lw.u.Instructions, ins)
	return int32(idx)
}

func (lw *lowerer) here() int32 { return int32(len(lw.u.Instructions)) }

func (lw *lowerer) patchA(idx int32, target int32) { lw.u.Instructions[idx].A = target }

// fnLower is the per-function lowering state: the frame-relative slot
// assigned to each local, and a compile-time temp-value stack (sp),
// the bump-allocator discipline instance.go's Instance uses at
// runtime, mirrored here at compile time so every intermediate value
// gets its own stack slot without ever colliding with a live local.
type fnLower struct {
	lw       *lowerer
	locals   map[string]int32
	nextSlot int32 // first free slot after args + hoisted lets
	sp       int32 // current temp-stack pointer
	maxSp    int32 // high-water mark; becomes the function's Allocate width
}

func (fl *fnLower) emit(ins unit.Instruction) int32 { return fl.lw.emit(ins) }

func (fl *fnLower) pushTemp() int32 {
	s := fl.sp
	fl.sp++
	if fl.sp > fl.maxSp {
		fl.maxSp = fl.sp
	}
	return s
}

func (fl *fnLower) popTemp() { fl.sp-- }

// hoistLets pre-assigns a frame slot to every let binding reachable
// from body, including through if/else and while bodies, so a loop
// body's `let` only allocates its slot once at compile time instead of
// bumping the runtime stack pointer on every iteration.
func (fl *fnLower) hoistLets(b *Block) {
	for _, st := range b.Stmts {
		switch s := st.(type) {
		case *LetStmt:
			if _, exists := fl.locals[s.Name]; exists {
				fl.lw.errorAt(s.Pos, "redeclaration of %q", s.Name)
				continue
			}
			fl.locals[s.Name] = fl.nextSlot
			fl.nextSlot++
		case *IfStmt:
			fl.hoistLets(s.Then)
			fl.hoistStmt(s.Else)
		case *WhileStmt:
			fl.hoistLets(s.Body)
		}
	}
}

func (fl *fnLower) hoistStmt(s Stmt) {
	switch e := s.(type) {
	case *Block:
		fl.hoistLets(e)
	case *IfStmt:
		fl.hoistLets(e.Then)
		fl.hoistStmt(e.Else)
	}
}

var binaryOpcodes = map[string]unit.Opcode{
	"+": unit.OpAdd, "-": unit.OpSub, "*": unit.OpMul, "/": unit.OpDiv, "%": unit.OpRem,
	"==": unit.OpEq, "!=": unit.OpNeq,
	"<": unit.OpLt, "<=": unit.OpLe, ">": unit.OpGt, ">=": unit.OpGe,
	"&&": unit.OpLogAnd, "||": unit.OpLogOr,
}

// emitExpr lowers e and returns the frame-relative slot holding its
// result. Contract: called with the compile-time temp stack at sp==s,
// it returns s and leaves sp==s+1 — exactly one net value pushed,
// regardless of how many temps it used and freed internally. Every
// caller (argument lists, binary operands, nested exprs) relies on
// this to keep sibling results contiguous.
func (fl *fnLower) emitExpr(e Expr) int32 {
	switch x := e.(type) {
	case *IntLit:
		s := fl.pushTemp()
		fl.emit(unit.Instruction{Op: unit.OpStoreImm, Imm: value.Int(x.Val), Out: s})
		return s
	case *FloatLit:
		s := fl.pushTemp()
		fl.emit(unit.Instruction{Op: unit.OpStoreImm, Imm: value.Float(x.Val), Out: s})
		return s
	case *BoolLit:
		s := fl.pushTemp()
		fl.emit(unit.Instruction{Op: unit.OpStoreImm, Imm: value.Bool(x.Val), Out: s})
		return s
	case *UnitLit:
		s := fl.pushTemp()
		fl.emit(unit.Instruction{Op: unit.OpStoreImm, Imm: value.Unit(), Out: s})
		return s
	case *StringLit:
		slot := fl.lw.pools.InternString(x.Val)
		s := fl.pushTemp()
		fl.emit(unit.Instruction{Op: unit.OpStringSlot, A: slot, Out: s})
		return s
	case *Ident:
		local, ok := fl.locals[x.Name]
		if !ok {
			fl.lw.errorAt(x.Pos, "undefined variable %q", x.Name)
			return fl.pushTemp()
		}
		s := fl.pushTemp()
		fl.emit(unit.Instruction{Op: unit.OpCopy, A: local, Out: s})
		return s
	case *Unary:
		return fl.emitUnary(x)
	case *Binary:
		return fl.emitBinary(x)
	case *Call:
		return fl.emitCall(x)
	case *Index:
		xs := fl.emitExpr(x.X)
		is := fl.emitExpr(x.I)
		fl.emit(unit.Instruction{Op: unit.OpIndexGet, A: xs, B: is, Out: xs})
		fl.popTemp()
		return xs
	case *Assign:
		fl.lw.errorAt(x.Pos, "assignment is only allowed as a statement")
		return fl.pushTemp()
	default:
		fl.lw.errorAt(scanner.Position{}, "internal: unhandled expression %T", e)
		return fl.pushTemp()
	}
}

func (fl *fnLower) emitUnary(u *Unary) int32 {
	xs := fl.emitExpr(u.X)
	switch u.Op {
	case "!":
		fs := fl.pushTemp()
		fl.emit(unit.Instruction{Op: unit.OpStoreImm, Imm: value.Bool(false), Out: fs})
		fl.emit(unit.Instruction{Op: unit.OpEq, A: xs, B: fs, Out: xs})
		fl.popTemp()
	case "-":
		zs := fl.pushTemp()
		fl.emit(unit.Instruction{Op: unit.OpStoreImm, Imm: value.Int(0), Out: zs})
		fl.emit(unit.Instruction{Op: unit.OpSub, A: zs, B: xs, Out: xs})
		fl.popTemp()
	default:
		fl.lw.errorAt(u.Pos, "unsupported unary operator %q", u.Op)
	}
	return xs
}

func (fl *fnLower) emitBinary(b *Binary) int32 {
	xs := fl.emitExpr(b.X)
	ys := fl.emitExpr(b.Y)
	op, ok := binaryOpcodes[b.Op]
	if !ok {
		fl.lw.errorAt(b.Pos, "unsupported binary operator %q", b.Op)
		op = unit.OpAdd
	}
	fl.emit(unit.Instruction{Op: op, A: xs, B: ys, Out: xs})
	fl.popTemp()
	return xs
}

// emitCall reserves its result slot before evaluating any argument, so
// a zero-arity call still has an output slot and every argument lands
// in the contiguous range collectArgs expects (spec.md §4.4.3).
func (fl *fnLower) emitCall(c *Call) int32 {
	sig, ok := fl.lw.funcs[c.Callee]
	out := fl.pushTemp()
	if !ok {
		fl.lw.errorAt(c.Pos, "undefined function %q", c.Callee)
		return out
	}
	if len(c.Args) != sig.arity {
		fl.lw.errorAt(c.Pos, "%s expects %d argument(s), got %d", c.Callee, sig.arity, len(c.Args))
	}
	argStart := fl.sp
	for _, a := range c.Args {
		fl.emitExpr(a)
	}
	n := int32(len(c.Args))
	fl.emit(unit.Instruction{Op: unit.OpCall, Imm: value.TypeHashValue(sig.hash), A: argStart, B: n, Out: out})
	for i := int32(0); i < n; i++ {
		fl.popTemp()
	}
	return out
}

func (fl *fnLower) emitStmt(s Stmt) {
	switch st := s.(type) {
	case *Block:
		fl.emitBlock(st)
	case *LetStmt:
		local := fl.locals[st.Name]
		vs := fl.emitExpr(st.Value)
		fl.emit(unit.Instruction{Op: unit.OpMove, A: vs, Out: local})
		fl.popTemp()
	case *ExprStmt:
		if asg, ok := st.X.(*Assign); ok {
			local, ok2 := fl.locals[asg.Name]
			if !ok2 {
				fl.lw.errorAt(asg.Pos, "undefined variable %q", asg.Name)
				return
			}
			vs := fl.emitExpr(asg.Value)
			fl.emit(unit.Instruction{Op: unit.OpMove, A: vs, Out: local})
			fl.popTemp()
			return
		}
		// The statement's value is unused: left for the next slot
		// write at this index to drop (instance.go's setAt/setAbsOut
		// drop-before-overwrite), rather than an explicit DropSet.
		fl.emitExpr(st.X)
		fl.popTemp()
	case *ReturnStmt:
		if st.X == nil {
			fl.emit(unit.Instruction{Op: unit.OpReturnUnit})
			return
		}
		vs := fl.emitExpr(st.X)
		fl.emit(unit.Instruction{Op: unit.OpReturn, A: vs})
		fl.popTemp()
	case *IfStmt:
		fl.emitIf(st)
	case *WhileStmt:
		fl.emitWhile(st)
	}
}

func (fl *fnLower) emitBlock(b *Block) {
	for _, st := range b.Stmts {
		fl.emitStmt(st)
	}
}

func (fl *fnLower) emitIf(st *IfStmt) {
	condSlot := fl.emitExpr(st.Cond)
	jumpIfNotIdx := fl.emit(unit.Instruction{Op: unit.OpJumpIfNot, B: condSlot})
	fl.popTemp()
	fl.emitBlock(st.Then)
	if st.Else != nil {
		jumpEndIdx := fl.emit(unit.Instruction{Op: unit.OpJump})
		fl.lw.patchA(jumpIfNotIdx, fl.lw.here())
		fl.emitStmt(st.Else)
		fl.lw.patchA(jumpEndIdx, fl.lw.here())
	} else {
		fl.lw.patchA(jumpIfNotIdx, fl.lw.here())
	}
}

func (fl *fnLower) emitWhile(st *WhileStmt) {
	loopStart := fl.lw.here()
	condSlot := fl.emitExpr(st.Cond)
	jEnd := fl.emit(unit.Instruction{Op: unit.OpJumpIfNot, B: condSlot})
	fl.popTemp()
	fl.emitBlock(st.Body)
	fl.emit(unit.Instruction{Op: unit.OpJump, A: loopStart})
	fl.lw.patchA(jEnd, fl.lw.here())
}

// lowerFn lowers one function declaration's body, appending its
// instructions to the shared unit and registering its function-table
// entry. A trailing implicit `return ()` is always appended so a body
// that falls off the end of its block still pops its frame cleanly.
func (lw *lowerer) lowerFn(fn *FnDecl) {
	sig, ok := lw.funcs[fn.Name]
	if !ok {
		return // duplicate declaration already reported in pass 1
	}
	fl := &fnLower{lw: lw, locals: make(map[string]int32)}
	entryIP := lw.here()
	allocIdx := lw.emit(unit.Instruction{Op: unit.OpAllocate})
	for i, p := range fn.Params {
		fl.locals[p] = int32(i)
	}
	fl.nextSlot = int32(len(fn.Params))
	fl.hoistLets(fn.Body)
	fl.sp = fl.nextSlot
	fl.maxSp = fl.sp
	fl.emitBlock(fn.Body)
	lw.emit(unit.Instruction{Op: unit.OpReturnUnit})
	lw.patchA(allocIdx, fl.maxSp-int32(len(fn.Params)))
	lw.u.Functions[sig.hash] = &unit.FuncEntry{
		Kind: unit.FuncOffset,
		Offset: unit.OffsetFunc{
			EntryIP: int(entryIP),
			Conv:    unit.ConvImmediate,
			Arity:   len(fn.Params),
		},
		Name: fn.Name,
	}
}
