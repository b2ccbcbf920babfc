package model

// SignLines is the number of text lines on a sign.
const SignLines = 4

// SignLineLength is the visible width of one sign line.
const SignLineLength = 15

type Sign struct {
	Lines   [SignLines]string
	Glowing bool
}

// Block is one placed block. Facing is meaningful for wall signs: it points
// away from the block the sign hangs on.
type Block struct {
	Material  string
	Facing    Face
	Sign      *Sign
	Inventory *Inventory
}

func (b *Block) IsAir() bool { return b == nil || b.Material == "" || b.Material == Air }
