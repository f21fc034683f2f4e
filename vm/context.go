package vm

import (
	"io"

	"github.com/vellum-lang/vellum/value"
)

// AnyTypeInfo is the any-object store entry (spec.md §4.1 "Any-object
// store"): the static name and optional constructor metadata for a
// host-registered type, installed before VM construction.
type AnyTypeInfo struct {
	Name        string
	Constructor func(args []value.Value) (value.Value, error)
}

// Context is the host's runtime registration table: native functions by
// path/hash, protocol implementations for host types, and the
// any-object registry. A Context is immutable once built and shared
// across any number of VM instances, exactly like a Unit (spec.md §5
// "Shared resources").
type Context struct {
	natives    map[value.Hash]NativeFn
	associated map[associatedKey]NativeFn
	anyTypes   map[value.Hash]AnyTypeInfo
	names      map[value.Hash]string // type/function hash -> human path, for error messages
	trace      io.Writer
}

// ContextOption configures a Context during NewContext, following the
// teacher's vm.Option pattern (vm/vm.go) generalized to this package.
type ContextOption func(*Context) error

// NewContext builds a Context, applying options in order.
func NewContext(opts ...ContextOption) (*Context, error) {
	c := &Context{
		natives:    make(map[value.Hash]NativeFn),
		associated: make(map[associatedKey]NativeFn),
		anyTypes:   make(map[value.Hash]AnyTypeInfo),
		names:      make(map[value.Hash]string),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// WithContextTrace installs an io.Writer the VM writes opcode-level
// trace lines to (see SPEC_FULL.md §0 "Logging").
func WithContextTrace(w io.Writer) ContextOption {
	return func(c *Context) error { c.trace = w; return nil }
}

// RegisterFunction installs a native function under the hash for path.
func RegisterFunction(path string, fn NativeFn) ContextOption {
	return func(c *Context) error {
		h := value.HashPath(value.SaltFunction, path)
		c.natives[h] = fn
		c.names[h] = path
		return nil
	}
}

// RegisterAssociatedFunction installs a native implementation of a
// protocol for a host type, e.g. a custom MUL/ADD overload (spec.md §8
// scenario E5).
func RegisterAssociatedFunction(typePath string, proto Protocol, fn NativeFn) ContextOption {
	return func(c *Context) error {
		h := value.HashPath(value.SaltType, typePath)
		c.associated[associatedKey{h, value.Hash(proto)}] = fn
		return nil
	}
}

// RegisterAnyType installs a host type in the any-object store.
func RegisterAnyType(path string, info AnyTypeInfo) ContextOption {
	return func(c *Context) error {
		h := value.HashPath(value.SaltType, path)
		info.Name = path
		c.anyTypes[h] = info
		c.names[h] = path
		return nil
	}
}

// TypeHashOfPath computes the type hash for a fully qualified path, the
// same salted hash RegisterAnyType/RegisterAssociatedFunction use. Hosts
// use this to construct AnyObject values with value.AnyObject(hash, v).
func TypeHashOfPath(path string) value.Hash { return value.HashPath(value.SaltType, path) }

// FunctionHashOfPath computes the function hash for a fully qualified path.
func FunctionHashOfPath(path string) value.Hash { return value.HashPath(value.SaltFunction, path) }

// NameOf returns a human-readable name for a type/function hash, for
// error messages; falls back to the hash's hex form.
func (c *Context) NameOf(h value.Hash) string {
	if n, ok := c.names[h]; ok {
		return n
	}
	return h.String()
}
