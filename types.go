package scriptbridge

import "fmt"

// EntityID identifies one engine-side entity. Uniqueness is the engine's
// responsibility.
type EntityID uint32

// Vector2 is a boundary value type. Field order and size are part of the
// marshalling contract and are verified against marshal.Vector2Type.
type Vector2 struct {
	X float32
	Y float32
}

// Vector3 is a boundary value type. Field order and size are part of the
// marshalling contract and are verified against marshal.Vector3Type.
type Vector3 struct {
	X float32
	Y float32
	Z float32
}

func (v Vector2) String() string {
	return fmt.Sprintf("(%g, %g)", v.X, v.Y)
}

func (v Vector3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

// Anchor positions a rect transform relative to its parent. Crosses the
// boundary as a single byte.
type Anchor uint8

const (
	AnchorTopLeft Anchor = iota
	AnchorTopCenter
	AnchorTopRight
	AnchorMiddleLeft
	AnchorMiddleCenter
	AnchorMiddleRight
	AnchorBottomLeft
	AnchorBottomCenter
	AnchorBottomRight
)

var anchorNames = [...]string{
	"top-left", "top-center", "top-right",
	"middle-left", "middle-center", "middle-right",
	"bottom-left", "bottom-center", "bottom-right",
}

// AnchorCount is the number of defined anchors.
const AnchorCount = len(anchorNames)

// Valid reports whether a is one of the nine defined anchors.
func (a Anchor) Valid() bool {
	return int(a) < AnchorCount
}

func (a Anchor) String() string {
	if !a.Valid() {
		return fmt.Sprintf("anchor(%d)", uint8(a))
	}
	return anchorNames[a]
}

// ParseAnchor resolves a kebab-case anchor name.
func ParseAnchor(s string) (Anchor, bool) {
	for i, name := range anchorNames {
		if name == s {
			return Anchor(i), true
		}
	}
	return 0, false
}

// Memory is a linear memory shared with a script runtime.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU16(offset uint32) (uint16, error)
	ReadU32(offset uint32) (uint32, error)
	ReadF32(offset uint32) (float32, error)
	WriteU16(offset uint32, value uint16) error
	WriteU32(offset uint32, value uint32) error
	WriteF32(offset uint32, value float32) error
}

// Allocator allocates in a script runtime's linear memory. Memory returned by
// Alloc is owned by the script runtime, which frees it.
type Allocator interface {
	Alloc(size, align uint32) (uint32, error)
}
