package compile

import "text/scanner"

// Expr is any expression node produced by the parser. The grammar implemented here is a deliberately
// small subset of the full language described in SPEC_FULL.md: arithmetic,
// comparisons, boolean operators, function calls, and local variable
// references, enough to exercise every opcode family lower.go emits.
type Expr interface{ exprPos() scanner.Position }

type pos struct{ Pos scanner.Position }

func (p pos) exprPos() scanner.Position { return p.Pos }

type IntLit struct {
	pos
	Val int64
}

type FloatLit struct {
	pos
	Val float64
}

type StringLit struct {
	pos
	Val string
}

type BoolLit struct {
	pos
	Val bool
}

type UnitLit struct{ pos }

type Ident struct {
	pos
	Name string
}

// Unary is a prefix operator: "-" (negate) or "!" (not).
type Unary struct {
	pos
	Op string
	X  Expr
}

// Binary is an infix operator, covering arithmetic, comparison, and
// logical forms; Op is the literal operator text.
type Binary struct {
	pos
	Op   string
	X, Y Expr
}

// Call is a direct call to a named function: callee(args...).
type Call struct {
	pos
	Callee string
	Args   []Expr
}

// Index is a[i].
type Index struct {
	pos
	X, I Expr
}

// Assign is a plain local-variable assignment: name = value.
type Assign struct {
	pos
	Name  string
	Value Expr
}

// Stmt is any statement node.
type Stmt interface{ stmtPos() scanner.Position }

func (p pos) stmtPos() scanner.Position { return p.Pos }

type LetStmt struct {
	pos
	Name  string
	Value Expr
}

type ExprStmt struct {
	pos
	X Expr
}

// ReturnStmt with X == nil returns unit.
type ReturnStmt struct {
	pos
	X Expr
}

type IfStmt struct {
	pos
	Cond Expr
	Then *Block
	Else Stmt // *Block, *IfStmt, or nil
}

type WhileStmt struct {
	pos
	Cond Expr
	Body *Block
}

type Block struct {
	pos
	Stmts []Stmt
}

// FnDecl is one top-level function declaration.
type FnDecl struct {
	Pos    scanner.Position
	Name   string
	Params []string
	Body   *Block
}

// File is one parsed source unit's worth of top-level declarations.
type File struct {
	Name string
	Fns  []*FnDecl
}
