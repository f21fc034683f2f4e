package compile

import (
	"fmt"
	"io"

	"github.com/vellum-lang/vellum/internal/ngi"
)

// WriteTo prints each diagnostic on its own line as "pos: message",
// one io error check for the whole list instead of one per line,
// grounded on internal/ngi.ErrWriter's latch-first-error wrapper.
func (d Diagnostics) WriteTo(w io.Writer) error {
	ew := ngi.NewErrWriter(w)
	for _, e := range d {
		fmt.Fprintf(ew, "%s: %s\n", e.Pos, e.Msg)
	}
	return ew.Err
}
