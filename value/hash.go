package value

import "hash/fnv"

// Hash is a 64-bit type/function identity derived deterministically
// from a fully-qualified path and a per-kind salt, as required by
// spec.md's "Function path hashing" contract (§6). Two paths registered
// under the same hash across runs of the same binary must agree; fnv-1a
// over the path bytes plus a salt byte gives that without pulling in a
// hashing library the rest of the pack does not otherwise need.
type Hash uint64

// Salt distinguishes hash namespaces (type vs. function vs. protocol)
// so e.g. a type and a function that happen to share a path text never
// collide with each other's hash.
type Salt byte

const (
	SaltType Salt = iota
	SaltFunction
	SaltProtocol
	SaltVariant
	SaltField
)

// HashPath computes the 64-bit identity hash for a dotted path under the
// given salt. Collisions between two distinct paths are treated as a
// program-construction error per spec.md §3 ("Type identity").
func HashPath(salt Salt, components ...string) Hash {
	h := fnv.New64a()
	h.Write([]byte{byte(salt)})
	for _, c := range components {
		h.Write([]byte(c))
		h.Write([]byte{0})
	}
	return Hash(h.Sum64())
}
