package render

// Op is a print primitive opcode. The renderer emits a flat sequence of
// primitives; the printer layer encodes them into the wire protocol.
type Op int

const (
	OpInit Op = iota
	OpAlign
	OpText
	OpBold
	OpFeed
	OpCut
)

// Alignment values for OpAlign.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

// Primitive is one print instruction. Only the fields relevant to Op are set.
type Primitive struct {
	Op    Op
	Text  string
	Align Alignment
	Lines int
	On    bool
}

func Init() Primitive               { return Primitive{Op: OpInit} }
func Align(a Alignment) Primitive   { return Primitive{Op: OpAlign, Align: a} }
func Text(s string) Primitive       { return Primitive{Op: OpText, Text: s} }
func Bold(on bool) Primitive        { return Primitive{Op: OpBold, On: on} }
func Feed(lines int) Primitive      { return Primitive{Op: OpFeed, Lines: lines} }
func Cut() Primitive                { return Primitive{Op: OpCut} }
