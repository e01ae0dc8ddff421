package marshal

import (
	"reflect"

	scriptbridge "github.com/wippyai/script-bridge"
	"go.bytecodealliance.org/wit"
)

// Boundary type definitions. These are the contract; the Go structs in the
// root package must match them field for field.
var (
	Vector2Type = &wit.TypeDef{Kind: &wit.Record{Fields: []wit.Field{
		{Name: "x", Type: wit.F32{}},
		{Name: "y", Type: wit.F32{}},
	}}}

	Vector3Type = &wit.TypeDef{Kind: &wit.Record{Fields: []wit.Field{
		{Name: "x", Type: wit.F32{}},
		{Name: "y", Type: wit.F32{}},
		{Name: "z", Type: wit.F32{}},
	}}}

	AnchorType = &wit.TypeDef{Kind: &wit.Enum{Cases: []wit.EnumCase{
		{Name: "top-left"},
		{Name: "top-center"},
		{Name: "top-right"},
		{Name: "middle-left"},
		{Name: "middle-center"},
		{Name: "middle-right"},
		{Name: "bottom-left"},
		{Name: "bottom-center"},
		{Name: "bottom-right"},
	}}}
)

// Layouts of the boundary types, computed once.
var (
	Vector2Layout Info
	Vector3Layout Info
	AnchorLayout  Info
)

func init() {
	c := NewCalculator()
	Vector2Layout = c.Calculate(Vector2Type)
	Vector3Layout = c.Calculate(Vector3Type)
	AnchorLayout = c.Calculate(AnchorType)
}

var boundaryTypes = []struct {
	goType reflect.Type
	witDef *wit.TypeDef
}{
	{reflect.TypeFor[scriptbridge.Vector2](), Vector2Type},
	{reflect.TypeFor[scriptbridge.Vector3](), Vector3Type},
	{reflect.TypeFor[scriptbridge.Anchor](), AnchorType},
}
