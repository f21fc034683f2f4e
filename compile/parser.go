package compile

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/scanner"
)

const maxErrors = 10

// Diagnostic is one parse or lowering error, positioned in its source
// file. Grounded on asm/parser.go's ErrAsm: a flat list of
// {Pos,Msg} pairs the driver aggregates across every source file.
type Diagnostic struct {
	Pos scanner.Position
	Msg string
}

// Diagnostics is a list of Diagnostic that satisfies error, the same
// shape as asm/parser.go's ErrAsm.
type Diagnostics []Diagnostic

func (d Diagnostics) Error() string {
	l := make([]string, 0, len(d))
	for _, e := range d {
		l = append(l, fmt.Sprintf("%s: %s", e.Pos, e.Msg))
	}
	return strings.Join(l, "\n")
}

type parser struct {
	s    scanner.Scanner
	tok     rune
	curText string
	errs    Diagnostics
}

func newParser(name string, r io.Reader) *parser {
	p := new(parser)
	p.s.Init(r)
	p.s.Filename = name
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats | scanner.ScanStrings | scanner.ScanComments | scanner.SkipComments
	p.s.Error = func(_ *scanner.Scanner, msg string) { p.error(msg) }
	p.next()
	return p
}

func (p *parser) error(msg string) {
	p.errs = append(p.errs, Diagnostic{Pos: p.s.Position, Msg: msg})
}

func (p *parser) errorf(format string, args ...any) { p.error(fmt.Sprintf(format, args...)) }

func (p *parser) abort() bool { return len(p.errs) >= maxErrors }

// twoCharOps lists the multi-rune operators this grammar needs; the
// stdlib scanner only ever returns single runes for punctuation, so
// next() glues the second rune on by peeking, the same "convert what
// the stdlib scanner hands back" approach asm/parser.go takes for
// reinterpreting scanner.Ident tokens as integers.
var twoCharOps = map[rune]map[rune]string{
	'=': {'=': "=="},
	'!': {'=': "!="},
	'<': {'=': "<="},
	'>': {'=': ">="},
	'&': {'&': "&&"},
	'|': {'|': "||"},
}

func (p *parser) next() {
	p.tok = p.s.Scan()
	p.curText = p.s.TokenText()
	if seconds, ok := twoCharOps[p.tok]; ok {
		if text, ok := seconds[p.s.Peek()]; ok {
			p.s.Scan()
			p.curText = text
		}
	}
}

func (p *parser) text() string { return p.curText }

func (p *parser) is(s string) bool {
	return (p.tok == scanner.Ident || isOperatorRune(p.tok)) && p.text() == s
}

func isOperatorRune(tok rune) bool {
	switch tok {
	case '+', '-', '*', '/', '%', '=', '!', '<', '>', '&', '|', '^', '(', ')', '{', '}', '[', ']', ',', ';', ':':
		return true
	default:
		return false
	}
}

// expect consumes the current token if it matches s (an identifier,
// keyword, or single-rune punctuator) and reports an error otherwise.
func (p *parser) expect(s string) {
	if !p.is(s) {
		p.errorf("expected %q, got %q", s, p.text())
		return
	}
	p.next()
}

// accept consumes the current token if it matches s, reporting whether
// it did.
func (p *parser) accept(s string) bool {
	if p.is(s) {
		p.next()
		return true
	}
	return false
}

// ParseFile parses one source file into a File of top-level function
// declarations. Errors are aggregated into a Diagnostics value; up to
// maxErrors are collected before parsing gives up early.
func ParseFile(name string, r io.Reader) (*File, error) {
	p := newParser(name, r)
	f := &File{Name: name}
	for p.tok != scanner.EOF && !p.abort() {
		if p.is("fn") {
			if fn := p.parseFnDecl(); fn != nil {
				f.Fns = append(f.Fns, fn)
			}
			continue
		}
		p.errorf("expected 'fn' at top level, got %q", p.text())
		p.next()
	}
	if len(p.errs) > 0 {
		return nil, p.errs
	}
	return f, nil
}

func (p *parser) parseFnDecl() *FnDecl {
	fnPos := p.s.Position
	p.expect("fn")
	name := p.text()
	p.next()
	p.expect("(")
	var params []string
	for !p.is(")") && p.tok != scanner.EOF {
		params = append(params, p.text())
		p.next()
		if !p.accept(",") {
			break
		}
	}
	p.expect(")")
	body := p.parseBlock()
	return &FnDecl{Pos: fnPos, Name: name, Params: params, Body: body}
}

func (p *parser) parseBlock() *Block {
	b := &Block{pos: pos{p.s.Position}}
	p.expect("{")
	for !p.is("}") && p.tok != scanner.EOF && !p.abort() {
		b.Stmts = append(b.Stmts, p.parseStmt())
	}
	p.expect("}")
	return b
}

func (p *parser) parseStmt() Stmt {
	cur := pos{p.s.Position}
	switch {
	case p.is("let"):
		p.next()
		name := p.text()
		p.next()
		p.expect("=")
		val := p.parseExpr()
		p.expect(";")
		return &LetStmt{pos: cur, Name: name, Value: val}
	case p.is("return"):
		p.next()
		if p.is(";") {
			p.next()
			return &ReturnStmt{pos: cur}
		}
		val := p.parseExpr()
		p.expect(";")
		return &ReturnStmt{pos: cur, X: val}
	case p.is("if"):
		return p.parseIf()
	case p.is("while"):
		p.next()
		cond := p.parseExpr()
		body := p.parseBlock()
		return &WhileStmt{pos: cur, Cond: cond, Body: body}
	default:
		x := p.parseExpr()
		if p.is("=") {
			ident, ok := x.(*Ident)
			if !ok {
				p.error("left side of assignment must be a local variable")
			}
			p.next()
			val := p.parseExpr()
			p.expect(";")
			if ok {
				return &ExprStmt{pos: cur, X: &Assign{pos: cur, Name: ident.Name, Value: val}}
			}
			return &ExprStmt{pos: cur, X: val}
		}
		p.expect(";")
		return &ExprStmt{pos: cur, X: x}
	}
}

func (p *parser) parseIf() Stmt {
	cur := pos{p.s.Position}
	p.expect("if")
	cond := p.parseExpr()
	then := p.parseBlock()
	var els Stmt
	if p.accept("else") {
		if p.is("if") {
			els = p.parseIf()
		} else {
			els = p.parseBlock()
		}
	}
	return &IfStmt{pos: cur, Cond: cond, Then: then, Else: els}
}

// Precedence climbing: or -> and -> equality -> comparison -> additive
// -> multiplicative -> unary -> postfix -> primary.
func (p *parser) parseExpr() Expr { return p.parseOr() }

func (p *parser) parseOr() Expr {
	x := p.parseAnd()
	for p.is("||") {
		cur := pos{p.s.Position}
		p.next()
		x = &Binary{pos: cur, Op: "||", X: x, Y: p.parseAnd()}
	}
	return x
}

func (p *parser) parseAnd() Expr {
	x := p.parseEquality()
	for p.is("&&") {
		cur := pos{p.s.Position}
		p.next()
		x = &Binary{pos: cur, Op: "&&", X: x, Y: p.parseEquality()}
	}
	return x
}

func (p *parser) parseEquality() Expr {
	x := p.parseComparison()
	for p.is("==") || p.is("!=") {
		op := p.text()
		cur := pos{p.s.Position}
		p.next()
		x = &Binary{pos: cur, Op: op, X: x, Y: p.parseComparison()}
	}
	return x
}

func (p *parser) parseComparison() Expr {
	x := p.parseAdditive()
	for p.is("<") || p.is("<=") || p.is(">") || p.is(">=") {
		op := p.text()
		cur := pos{p.s.Position}
		p.next()
		x = &Binary{pos: cur, Op: op, X: x, Y: p.parseAdditive()}
	}
	return x
}

func (p *parser) parseAdditive() Expr {
	x := p.parseMultiplicative()
	for p.is("+") || p.is("-") {
		op := p.text()
		cur := pos{p.s.Position}
		p.next()
		x = &Binary{pos: cur, Op: op, X: x, Y: p.parseMultiplicative()}
	}
	return x
}

func (p *parser) parseMultiplicative() Expr {
	x := p.parseUnary()
	for p.is("*") || p.is("/") || p.is("%") {
		op := p.text()
		cur := pos{p.s.Position}
		p.next()
		x = &Binary{pos: cur, Op: op, X: x, Y: p.parseUnary()}
	}
	return x
}

func (p *parser) parseUnary() Expr {
	if p.is("-") || p.is("!") {
		op := p.text()
		cur := pos{p.s.Position}
		p.next()
		return &Unary{pos: cur, Op: op, X: p.parseUnary()}
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() Expr {
	x := p.parsePrimary()
	for p.is("[") {
		cur := pos{p.s.Position}
		p.next()
		idx := p.parseExpr()
		p.expect("]")
		x = &Index{pos: cur, X: x, I: idx}
	}
	return x
}

func (p *parser) parsePrimary() Expr {
	cur := pos{p.s.Position}
	switch {
	case p.tok == scanner.Int:
		n, err := strconv.ParseInt(p.text(), 0, 64)
		if err != nil {
			p.errorf("invalid integer literal %q", p.text())
		}
		p.next()
		return &IntLit{pos: cur, Val: n}
	case p.tok == scanner.Float:
		f, err := strconv.ParseFloat(p.text(), 64)
		if err != nil {
			p.errorf("invalid float literal %q", p.text())
		}
		p.next()
		return &FloatLit{pos: cur, Val: f}
	case p.tok == scanner.String:
		s, err := strconv.Unquote(p.text())
		if err != nil {
			s = p.text()
		}
		p.next()
		return &StringLit{pos: cur, Val: s}
	case p.is("true"):
		p.next()
		return &BoolLit{pos: cur, Val: true}
	case p.is("false"):
		p.next()
		return &BoolLit{pos: cur, Val: false}
	case p.is("("):
		p.next()
		if p.is(")") {
			p.next()
			return &UnitLit{pos: cur}
		}
		x := p.parseExpr()
		p.expect(")")
		return x
	case p.tok == scanner.Ident:
		name := p.text()
		p.next()
		if p.is("(") {
			p.next()
			var args []Expr
			for !p.is(")") && p.tok != scanner.EOF {
				args = append(args, p.parseExpr())
				if !p.accept(",") {
					break
				}
			}
			p.expect(")")
			return &Call{pos: cur, Callee: name, Args: args}
		}
		return &Ident{pos: cur, Name: name}
	default:
		p.errorf("unexpected token %q", p.text())
		p.next()
		return &UnitLit{pos: cur}
	}
}
