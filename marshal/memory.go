package marshal

import (
	"encoding/binary"
	"math"

	scriptbridge "github.com/wippyai/script-bridge"
	"github.com/wippyai/script-bridge/errors"
)

// ReadVector2 reads a Vector2 record at ptr.
func ReadVector2(mem scriptbridge.Memory, ptr uint32) (scriptbridge.Vector2, error) {
	if err := checkAligned(ptr, Vector2Layout.Align); err != nil {
		return scriptbridge.Vector2{}, err
	}
	x, err := mem.ReadF32(ptr + Vector2Layout.FieldOffs["x"])
	if err != nil {
		return scriptbridge.Vector2{}, err
	}
	y, err := mem.ReadF32(ptr + Vector2Layout.FieldOffs["y"])
	if err != nil {
		return scriptbridge.Vector2{}, err
	}
	return scriptbridge.Vector2{X: x, Y: y}, nil
}

// WriteVector2 writes v as a Vector2 record at ptr. Nothing is written if
// the record does not fit.
func WriteVector2(mem scriptbridge.Memory, ptr uint32, v scriptbridge.Vector2) error {
	if err := checkAligned(ptr, Vector2Layout.Align); err != nil {
		return err
	}
	rec := make([]byte, Vector2Layout.Size)
	putF32(rec, Vector2Layout.FieldOffs["x"], v.X)
	putF32(rec, Vector2Layout.FieldOffs["y"], v.Y)
	return mem.Write(ptr, rec)
}

// ReadVector3 reads a Vector3 record at ptr.
func ReadVector3(mem scriptbridge.Memory, ptr uint32) (scriptbridge.Vector3, error) {
	if err := checkAligned(ptr, Vector3Layout.Align); err != nil {
		return scriptbridge.Vector3{}, err
	}
	var v scriptbridge.Vector3
	var err error
	if v.X, err = mem.ReadF32(ptr + Vector3Layout.FieldOffs["x"]); err != nil {
		return scriptbridge.Vector3{}, err
	}
	if v.Y, err = mem.ReadF32(ptr + Vector3Layout.FieldOffs["y"]); err != nil {
		return scriptbridge.Vector3{}, err
	}
	if v.Z, err = mem.ReadF32(ptr + Vector3Layout.FieldOffs["z"]); err != nil {
		return scriptbridge.Vector3{}, err
	}
	return v, nil
}

// WriteVector3 writes v as a Vector3 record at ptr. Nothing is written if
// the record does not fit.
func WriteVector3(mem scriptbridge.Memory, ptr uint32, v scriptbridge.Vector3) error {
	if err := checkAligned(ptr, Vector3Layout.Align); err != nil {
		return err
	}
	rec := make([]byte, Vector3Layout.Size)
	putF32(rec, Vector3Layout.FieldOffs["x"], v.X)
	putF32(rec, Vector3Layout.FieldOffs["y"], v.Y)
	putF32(rec, Vector3Layout.FieldOffs["z"], v.Z)
	return mem.Write(ptr, rec)
}

// putF32 encodes a record field; records go to memory in one write so a
// record that does not fit leaves memory untouched.
func putF32(rec []byte, off uint32, f float32) {
	binary.LittleEndian.PutUint32(rec[off:], math.Float32bits(f))
}

// ReadString reads units UTF-16 code units starting at ptr. The buffer is
// copied; the caller keeps ownership of the memory.
func ReadString(mem scriptbridge.Memory, ptr, units uint32) (string, error) {
	if units == 0 {
		return "", nil
	}
	if units > math.MaxUint32/2 {
		return "", errors.OutOfBounds(errors.PhaseMarshal, ptr, units)
	}
	if err := checkAligned(ptr, 2); err != nil {
		return "", err
	}
	b, err := mem.Read(ptr, units*2)
	if err != nil {
		return "", err
	}
	s, err := DecodeBytes(b)
	if err != nil {
		return "", errors.Wrap(errors.PhaseMarshal, errors.KindInvalidData, err, "decode utf-16")
	}
	return s, nil
}

// WriteString allocates a buffer through alloc, writes s into it as UTF-16LE
// and returns the buffer and its length in code units. The buffer belongs to
// the script runtime from then on.
func WriteString(mem scriptbridge.Memory, alloc scriptbridge.Allocator, s string) (ptr, units uint32, err error) {
	b, err := EncodeBytes(s)
	if err != nil {
		return 0, 0, errors.Wrap(errors.PhaseMarshal, errors.KindInvalidData, err, "encode utf-16")
	}
	if len(b) == 0 {
		return 0, 0, nil
	}
	if uint64(len(b)) > math.MaxUint32 {
		return 0, 0, errors.InvalidInput(errors.PhaseMarshal, "string too long")
	}
	ptr, err = alloc.Alloc(uint32(len(b)), 2)
	if err != nil {
		return 0, 0, err
	}
	if err := mem.Write(ptr, b); err != nil {
		return 0, 0, err
	}
	return ptr, uint32(len(b) / 2), nil
}

// PackString packs a (ptr, units) pair into one i64 result value.
func PackString(ptr, units uint32) uint64 {
	return uint64(ptr)<<32 | uint64(units)
}

// UnpackString splits a packed i64 string result.
func UnpackString(v uint64) (ptr, units uint32) {
	return uint32(v >> 32), uint32(v)
}

func checkAligned(ptr, align uint32) error {
	if align > 1 && ptr%align != 0 {
		return errors.New(errors.PhaseMarshal, errors.KindInvalidInput).
			Value(ptr).
			Detail("pointer %d not aligned to %d", ptr, align).
			Build()
	}
	return nil
}

// Buffer is a Memory over a plain byte slice.
type Buffer []byte

func (b Buffer) check(offset, length uint32) error {
	if uint64(offset)+uint64(length) > uint64(len(b)) {
		return errors.OutOfBounds(errors.PhaseMarshal, offset, length)
	}
	return nil
}

func (b Buffer) Read(offset, length uint32) ([]byte, error) {
	if err := b.check(offset, length); err != nil {
		return nil, err
	}
	out := make([]byte, length)
	copy(out, b[offset:])
	return out, nil
}

func (b Buffer) Write(offset uint32, data []byte) error {
	if err := b.check(offset, uint32(len(data))); err != nil {
		return err
	}
	copy(b[offset:], data)
	return nil
}

func (b Buffer) ReadU16(offset uint32) (uint16, error) {
	if err := b.check(offset, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[offset:]), nil
}

func (b Buffer) ReadU32(offset uint32) (uint32, error) {
	if err := b.check(offset, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[offset:]), nil
}

func (b Buffer) ReadF32(offset uint32) (float32, error) {
	v, err := b.ReadU32(offset)
	return math.Float32frombits(v), err
}

func (b Buffer) WriteU16(offset uint32, value uint16) error {
	if err := b.check(offset, 2); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(b[offset:], value)
	return nil
}

func (b Buffer) WriteU32(offset uint32, value uint32) error {
	if err := b.check(offset, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b[offset:], value)
	return nil
}

func (b Buffer) WriteF32(offset uint32, value float32) error {
	return b.WriteU32(offset, math.Float32bits(value))
}
