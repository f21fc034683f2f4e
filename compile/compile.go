// Package compile implements the Compiler Pipeline (spec.md §4.3):
// parsing one or more sources into the small surface grammar this
// package supports, resolving every call against a whole-program
// function table, and lowering directly into a unit.Unit's flat
// instruction array. It intentionally skips a separate HIR/const-eval
// stage (see DESIGN.md) — lowering runs straight from the AST, the
// simplest shape that still produces a Unit the vm package's runLoop
// can execute unmodified.
package compile

import (
	"io"

	"github.com/vellum-lang/vellum/unit"
	"github.com/vellum-lang/vellum/value"
	"github.com/vellum-lang/vellum/vm"
)

// Source is one named input to a build; Name is used both as the
// scanner's file tag for diagnostics and, combined with each
// function's own name, could later seed per-module path hashing —
// today function identity is global across all sources in one build
// (see DESIGN.md's "compile" entry for that scope).
type Source struct {
	Name   string
	Reader io.Reader
}

// Compilation accumulates the inputs to one Build call.
type Compilation struct {
	sources []Source
	ctx     *vm.Context
}

// Prepare begins a build over the given sources.
func Prepare(sources ...Source) *Compilation {
	return &Compilation{sources: sources}
}

// WithContext attaches the host Context a later vm.Execute/vm.Call
// will run the built Unit against. The pipeline does not currently
// need it to resolve anything at compile time (see DESIGN.md), but the
// method exists so a caller can always write
// compile.Prepare(...).WithContext(ctx).Build(), matching spec.md §6's
// pipeline shape and leaving room for compile-time type/name
// resolution against the host's registered natives later.
func (c *Compilation) WithContext(ctx *vm.Context) *Compilation {
	c.ctx = ctx
	return c
}

// Build parses and lowers every attached source into a single Unit.
// Parse errors across all sources are aggregated before lowering is
// attempted; lowering errors (undefined functions/variables, arity
// mismatches, redeclarations) are aggregated the same way.
func (c *Compilation) Build() (*unit.Unit, error) {
	var files []*File
	var perrs Diagnostics
	for _, s := range c.sources {
		f, err := ParseFile(s.Name, s.Reader)
		if err != nil {
			if d, ok := err.(Diagnostics); ok {
				perrs = append(perrs, d...)
				continue
			}
			return nil, err
		}
		files = append(files, f)
	}
	if len(perrs) > 0 {
		return nil, perrs
	}

	lw := &lowerer{u: unit.New(), pools: unit.NewBuilder(), funcs: make(map[string]funcSig)}
	for _, f := range files {
		for _, fn := range f.Fns {
			if _, dup := lw.funcs[fn.Name]; dup {
				lw.errorAt(fn.Pos, "duplicate function %q", fn.Name)
				continue
			}
			hash := value.HashPath(value.SaltFunction, fn.Name)
			lw.funcs[fn.Name] = funcSig{hash: hash, arity: len(fn.Params)}
			lw.u.EntryPoints[fn.Name] = uint64(hash)
		}
	}
	if len(lw.errs) > 0 {
		return nil, lw.errs
	}

	for _, f := range files {
		for _, fn := range f.Fns {
			lw.lowerFn(fn)
		}
	}
	if len(lw.errs) > 0 {
		return nil, lw.errs
	}

	lw.u.Pools = lw.pools.Pools()
	return lw.u, nil
}
