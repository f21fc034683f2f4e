package unit

import (
	"bufio"
	"encoding/binary"
	"encoding/gob"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"

	"github.com/vellum-lang/vellum/vmerr"
)

// formatMagic and formatVersion are the version header every encoded
// Unit carries, grounded on vm/mem.go's Load/Save (which checks a
// cellBits parameter before trusting a file) generalized into an
// explicit version tag per spec.md §6 ("Units may be serialized; the
// format must be version-tagged and must refuse to load across
// incompatible versions").
const (
	formatMagic   uint32 = 0x564d3031 // "VM01"
	formatVersion uint32 = 1
)

// Encode writes a version-tagged binary encoding of u to w.
func (u *Unit) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, formatMagic); err != nil {
		return errors.Wrap(err, "write magic")
	}
	if err := binary.Write(bw, binary.LittleEndian, formatVersion); err != nil {
		return errors.Wrap(err, "write version")
	}
	enc := gob.NewEncoder(bw)
	if err := enc.Encode(u); err != nil {
		return errors.Wrap(err, "encode unit body")
	}
	return errors.Wrap(bw.Flush(), "flush")
}

// Decode reads a Unit previously written by Encode. It refuses to
// decode a mismatched format version.
func Decode(r io.Reader) (*Unit, error) {
	var magic, version uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, errors.Wrap(err, "read magic")
	}
	if magic != formatMagic {
		return nil, errors.New("not a unit file (bad magic)")
	}
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, errors.Wrap(err, "read version")
	}
	if version != formatVersion {
		return nil, errors.WithStack(vmerr.IncompatibleUnitVersion{Want: formatVersion, Got: version})
	}
	u := New()
	dec := gob.NewDecoder(r)
	if err := dec.Decode(u); err != nil {
		return nil, errors.Wrap(err, "decode unit body")
	}
	return u, nil
}

// Save encodes u to fileName, replacing any existing content.
func Save(fileName string, u *Unit) error {
	f, err := os.Create(fileName)
	if err != nil {
		return errors.Wrap(err, "create")
	}
	defer f.Close()
	return u.Encode(f)
}

// Load decodes a Unit from fileName.
func Load(fileName string) (*Unit, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer f.Close()
	return Decode(bufio.NewReader(f))
}

// OpenMapped memory-maps fileName read-only and decodes the Unit
// directly from the mapped bytes, avoiding a full read into a heap
// buffer for large units. Grounded on saferwall/pe's real dependency on
// github.com/edsrzf/mmap-go for zero-copy binary-format parsing; the
// returned io.Closer must be closed once the Unit is no longer needed
// (its Pools.Strings/ByteStrings slices may alias the mapping's memory
// only if a future zero-copy pool format is adopted — today's gob body
// still copies out, but the mapped reader avoids the OS-level double
// buffering of os.File + bufio for the initial header check).
func OpenMapped(fileName string) (*Unit, io.Closer, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open")
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, nil, errors.Wrap(err, "mmap")
	}
	u, err := Decode(newByteReader(m))
	if err != nil {
		m.Unmap()
		f.Close()
		return nil, nil, err
	}
	return u, &mappedCloser{m: m, f: f}, nil
}

type mappedCloser struct {
	m mmap.MMap
	f *os.File
}

func (c *mappedCloser) Close() error {
	err := c.m.Unmap()
	if cerr := c.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// byteReader adapts a []byte to an io.Reader without an extra copy.
type byteReader struct {
	b   []byte
	pos int
}

func newByteReader(b []byte) *byteReader { return &byteReader{b: b} }

func (r *byteReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.b) {
		return 0, io.EOF
	}
	n := copy(p, r.b[r.pos:])
	r.pos += n
	return n, nil
}
