package printer

import (
	"bytes"
	"fmt"

	"github.com/fondaapp/print-fulfillment/internal/render"
)

// ESC/POS command sequences.
var (
	escInit = []byte{0x1B, '@'}
	escBold = []byte{0x1B, 'E'}
	escAlgn = []byte{0x1B, 'a'}
	escFeed = []byte{0x1B, 'd'}
	gsCut   = []byte{0x1D, 'V', 66, 0}
)

// Encode converts a primitive sequence into an ESC/POS byte stream.
func Encode(prims []render.Primitive) []byte {
	var buf bytes.Buffer
	for _, p := range prims {
		switch p.Op {
		case render.OpInit:
			buf.Write(escInit)
		case render.OpAlign:
			buf.Write(escAlgn)
			buf.WriteByte(byte(p.Align))
		case render.OpText:
			buf.WriteString(p.Text)
			buf.WriteByte('\n')
		case render.OpBold:
			buf.Write(escBold)
			if p.On {
				buf.WriteByte(1)
			} else {
				buf.WriteByte(0)
			}
		case render.OpFeed:
			buf.Write(escFeed)
			buf.WriteByte(byte(p.Lines))
		case render.OpCut:
			buf.Write(gsCut)
		}
	}
	return buf.Bytes()
}

// Printer is an ESC/POS document writer on top of a transport. Construction
// doubles as handle validation: the initialize command is written
// immediately, so a dead handle is rejected before it wins the discovery
// chain.
type Printer struct {
	t Transport
}

// NewPrinter validates the transport by writing the initialize sequence.
func NewPrinter(t Transport) (*Printer, error) {
	if _, err := t.Write(escInit); err != nil {
		return nil, fmt.Errorf("printer initialize: %w", err)
	}
	return &Printer{t: t}, nil
}

// Print encodes and writes a full document.
func (p *Printer) Print(prims []render.Primitive) error {
	if _, err := p.t.Write(Encode(prims)); err != nil {
		return fmt.Errorf("printer write: %w", err)
	}
	return nil
}

// Close releases the underlying transport.
func (p *Printer) Close() error {
	return p.t.Close()
}
