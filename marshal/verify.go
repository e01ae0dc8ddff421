package marshal

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/wippyai/script-bridge/errors"
	"go.bytecodealliance.org/wit"
)

// Verify checks every boundary Go type against its WIT definition.
func Verify() error {
	c := NewCalculator()
	for _, bt := range boundaryTypes {
		if err := verifyType(c, bt.goType, bt.witDef); err != nil {
			return err
		}
	}
	return nil
}

// VerifyStruct checks that a Go type has exactly the canonical ABI layout of t:
// same size and alignment, same field order, names, offsets and kinds.
func VerifyStruct(goType reflect.Type, t wit.Type) error {
	return verifyType(NewCalculator(), goType, t)
}

func verifyType(c *Calculator, goType reflect.Type, t wit.Type) error {
	info := c.Calculate(t)
	name := goType.String()

	if uint32(goType.Size()) != info.Size {
		return errors.LayoutMismatch(name, fmt.Sprintf("size %d, want %d", goType.Size(), info.Size))
	}
	if uint32(goType.Align()) != info.Align {
		return errors.LayoutMismatch(name, fmt.Sprintf("align %d, want %d", goType.Align(), info.Align))
	}

	td, ok := t.(*wit.TypeDef)
	if !ok {
		return verifyPrimitive(goType, t)
	}

	switch kind := td.Kind.(type) {
	case *wit.Record:
		return verifyRecord(c, goType, kind, info)
	case *wit.Enum:
		if !isUnsigned(goType.Kind()) {
			return errors.LayoutMismatch(name, fmt.Sprintf("enum carried by %s, want unsigned integer", goType.Kind()))
		}
		return nil
	default:
		return errors.LayoutMismatch(name, fmt.Sprintf("unsupported boundary kind %T", td.Kind))
	}
}

func verifyRecord(c *Calculator, goType reflect.Type, r *wit.Record, info Info) error {
	name := goType.String()
	if goType.Kind() != reflect.Struct {
		return errors.LayoutMismatch(name, fmt.Sprintf("kind %s, want struct", goType.Kind()))
	}
	if goType.NumField() != len(r.Fields) {
		return errors.LayoutMismatch(name, fmt.Sprintf("%d fields, want %d", goType.NumField(), len(r.Fields)))
	}

	for i, wf := range r.Fields {
		gf := goType.Field(i)
		if !strings.EqualFold(gf.Name, wf.Name) {
			return errors.LayoutMismatch(name, fmt.Sprintf("field %d is %s, want %s", i, gf.Name, wf.Name))
		}
		if uint32(gf.Offset) != info.FieldOffs[wf.Name] {
			return errors.LayoutMismatch(name, fmt.Sprintf("field %s at offset %d, want %d", gf.Name, gf.Offset, info.FieldOffs[wf.Name]))
		}
		if err := verifyType(c, gf.Type, wf.Type); err != nil {
			return errors.LayoutMismatch(name, fmt.Sprintf("field %s: %v", gf.Name, err))
		}
	}
	return nil
}

func verifyPrimitive(goType reflect.Type, t wit.Type) error {
	var want reflect.Kind
	switch t.(type) {
	case wit.F32:
		want = reflect.Float32
	case wit.F64:
		want = reflect.Float64
	case wit.U8:
		want = reflect.Uint8
	case wit.S8:
		want = reflect.Int8
	case wit.U16:
		want = reflect.Uint16
	case wit.S16:
		want = reflect.Int16
	case wit.U32:
		want = reflect.Uint32
	case wit.S32:
		want = reflect.Int32
	case wit.U64:
		want = reflect.Uint64
	case wit.S64:
		want = reflect.Int64
	case wit.Bool:
		want = reflect.Bool
	default:
		return errors.LayoutMismatch(goType.String(), fmt.Sprintf("unsupported boundary primitive %T", t))
	}
	if goType.Kind() != want {
		return errors.LayoutMismatch(goType.String(), fmt.Sprintf("kind %s, want %s", goType.Kind(), want))
	}
	return nil
}

func isUnsigned(k reflect.Kind) bool {
	switch k {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return true
	}
	return false
}
