package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	scriptbridge "github.com/wippyai/script-bridge"
	"github.com/wippyai/script-bridge/errors"
)

// File is a scene description loaded from TOML.
//
//	[screen]
//	width = 1280
//	height = 720
//
//	[[entity]]
//	id = 42
//	name = "Lifter"
//	script = "TestScript"
//	[entity.transform]
//	position = [0, 0, 0]
//
//	[[guest]]
//	class = "LifterWasm"
//	path = "lifter.wasm"
type File struct {
	Screen   ScreenConfig   `toml:"screen"`
	Entities []EntityConfig `toml:"entity"`
	Guests   []GuestConfig  `toml:"guest"`

	// Dir is the directory containing the scene file (set at load time).
	Dir string `toml:"-"`
}

type ScreenConfig struct {
	Width   int `toml:"width"`
	Height  int `toml:"height"`
	Console int `toml:"console"`
}

// EntityConfig describes one entity. An id of 0 is assigned automatically.
type EntityConfig struct {
	Transform     *TransformConfig `toml:"transform"`
	RectTransform *RectConfig      `toml:"rect_transform"`
	Button        *ButtonConfig    `toml:"button"`
	Text          *TextConfig      `toml:"text"`
	Name          string           `toml:"name"`
	Script        string           `toml:"script"`
	ID            uint32           `toml:"id"`
}

type TransformConfig struct {
	Position []float32 `toml:"position"`
	Rotation []float32 `toml:"rotation"`
	Scale    []float32 `toml:"scale"`
}

type RectConfig struct {
	Active   *bool     `toml:"active"`
	Anchor   string    `toml:"anchor"`
	Position []float32 `toml:"position"`
	Size     []float32 `toml:"size"`
	Pivot    []float32 `toml:"pivot"`
}

type ButtonConfig struct {
	Text string `toml:"text"`
}

type TextConfig struct {
	Text     string  `toml:"text"`
	FontSize float32 `toml:"font_size"`
}

// GuestConfig names a wasm behaviour class. Path is relative to the scene
// file.
type GuestConfig struct {
	Class string `toml:"class"`
	Path  string `toml:"path"`
}

// Load parses a scene file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindNotFound, err, fmt.Sprintf("cannot read %s", path))
	}
	f, err := Parse(data)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, fmt.Sprintf("cannot resolve path %s", path))
	}
	f.Dir = abs
	return f, nil
}

// Parse decodes a scene from TOML. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	var f File
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "parse scene")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidData).
			Detail("unknown keys: %s", strings.Join(keys, ", ")).
			Build()
	}
	return &f, nil
}

// GuestPath resolves a guest's wasm path against the scene directory.
func (f *File) GuestPath(g GuestConfig) string {
	if filepath.IsAbs(g.Path) || f.Dir == "" {
		return g.Path
	}
	return filepath.Join(f.Dir, g.Path)
}

// Build creates a scene populated with the file's entities.
func (f *File) Build(opts ...Option) (*Scene, error) {
	var base []Option
	if f.Screen.Width > 0 && f.Screen.Height > 0 {
		base = append(base, WithScreen(f.Screen.Width, f.Screen.Height))
	}
	if f.Screen.Console > 0 {
		base = append(base, WithConsoleSize(f.Screen.Console))
	}
	s := New(append(base, opts...)...)

	// Explicit ids first so an auto-assigned id never claims one the file
	// names later.
	auto := make([]*Entity, 0, len(f.Entities))
	for i, cfg := range f.Entities {
		e, err := cfg.entity()
		if err != nil {
			var se *errors.Error
			if errors.As(err, &se) {
				se.Detail = fmt.Sprintf("entity %d: %s", i, se.Detail)
			}
			return nil, err
		}
		if cfg.ID == 0 {
			auto = append(auto, e)
			continue
		}
		if err := s.Add(e); err != nil {
			return nil, err
		}
	}
	for _, e := range auto {
		s.spawn(e)
	}
	return s, nil
}

func (c EntityConfig) entity() (*Entity, error) {
	e := &Entity{ID: scriptbridge.EntityID(c.ID), Name: c.Name}

	if c.Transform != nil {
		pos, err := vec3("transform.position", c.Transform.Position, scriptbridge.Vector3{})
		if err != nil {
			return nil, err
		}
		rot, err := vec3("transform.rotation", c.Transform.Rotation, scriptbridge.Vector3{})
		if err != nil {
			return nil, err
		}
		scale, err := vec3("transform.scale", c.Transform.Scale, scriptbridge.Vector3{X: 1, Y: 1, Z: 1})
		if err != nil {
			return nil, err
		}
		e.Transform = &Transform{Position: pos, Rotation: rot, Scale: scale}
	}

	if r := c.RectTransform; r != nil {
		rect := &RectTransform{Active: r.Active == nil || *r.Active}
		var err error
		if rect.Position, err = vec2("rect_transform.position", r.Position); err != nil {
			return nil, err
		}
		if rect.Size, err = vec2("rect_transform.size", r.Size); err != nil {
			return nil, err
		}
		if rect.Pivot, err = vec2("rect_transform.pivot", r.Pivot); err != nil {
			return nil, err
		}
		if r.Anchor != "" {
			a, ok := scriptbridge.ParseAnchor(r.Anchor)
			if !ok {
				return nil, errors.InvalidEnum(errors.PhaseConfig, r.Anchor, "anchor")
			}
			rect.Anchor = a
		}
		e.RectTransform = rect
	}

	if c.Button != nil {
		e.Button = &Button{Text: c.Button.Text}
	}
	if c.Text != nil {
		e.Text = &Text{Text: c.Text.Text, FontSize: c.Text.FontSize}
	}
	if c.Script != "" {
		e.Script = &Script{Class: c.Script}
	}
	return e, nil
}

func vec2(field string, v []float32) (scriptbridge.Vector2, error) {
	switch len(v) {
	case 0:
		return scriptbridge.Vector2{}, nil
	case 2:
		return scriptbridge.Vector2{X: v[0], Y: v[1]}, nil
	default:
		return scriptbridge.Vector2{}, errors.InvalidInput(errors.PhaseConfig,
			fmt.Sprintf("%s needs 2 components, got %d", field, len(v)))
	}
}

func vec3(field string, v []float32, def scriptbridge.Vector3) (scriptbridge.Vector3, error) {
	switch len(v) {
	case 0:
		return def, nil
	case 3:
		return scriptbridge.Vector3{X: v[0], Y: v[1], Z: v[2]}, nil
	default:
		return scriptbridge.Vector3{}, errors.InvalidInput(errors.PhaseConfig,
			fmt.Sprintf("%s needs 3 components, got %d", field, len(v)))
	}
}
