package printer

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fondaapp/print-fulfillment/internal/render"
)

type bufferTransport struct {
	buf    bytes.Buffer
	closed bool
}

func (t *bufferTransport) Write(p []byte) (int, error) { return t.buf.Write(p) }
func (t *bufferTransport) Close() error                { t.closed = true; return nil }

type brokenTransport struct{}

func (brokenTransport) Write([]byte) (int, error) { return 0, errors.New("device gone") }
func (brokenTransport) Close() error              { return nil }

func TestEncode(t *testing.T) {
	prims := []render.Primitive{
		render.Init(),
		render.Align(render.AlignCenter),
		render.Bold(true),
		render.Text("HOLA"),
		render.Bold(false),
		render.Feed(3),
		render.Cut(),
	}

	got := Encode(prims)

	want := []byte{
		0x1B, '@', // initialize
		0x1B, 'a', 1, // center
		0x1B, 'E', 1, // bold on
		'H', 'O', 'L', 'A', '\n',
		0x1B, 'E', 0, // bold off
		0x1B, 'd', 3, // feed 3
		0x1D, 'V', 66, 0, // cut
	}
	assert.Equal(t, want, got)
}

func TestNewPrinter_ValidatesHandle(t *testing.T) {
	tr := &bufferTransport{}
	p, err := NewPrinter(tr)
	require.NoError(t, err)

	// Construction already wrote the initialize sequence.
	assert.Equal(t, []byte{0x1B, '@'}, tr.buf.Bytes())

	require.NoError(t, p.Print([]render.Primitive{render.Text("x")}))
	require.NoError(t, p.Close())
	assert.True(t, tr.closed)
}

func TestNewPrinter_RejectsDeadHandle(t *testing.T) {
	_, err := NewPrinter(brokenTransport{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device gone")
}
