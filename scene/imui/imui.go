// Package imui is a small immediate-mode UI recorder. Widgets are declared
// every frame; the previous frame is kept for rendering, and input injected
// between frames is delivered to the matching widget on the next one.
package imui

import (
	"sync"
)

// DefaultWindow receives widgets declared outside Begin/End.
const DefaultWindow = "Debug"

// Kind identifies a widget type.
type Kind uint8

const (
	KindText Kind = iota
	KindButton
	KindCheckbox
	KindSlider
	KindSeparator
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindButton:
		return "button"
	case KindCheckbox:
		return "checkbox"
	case KindSlider:
		return "slider"
	case KindSeparator:
		return "separator"
	default:
		return "unknown"
	}
}

// Widget is one recorded widget.
type Widget struct {
	Label string
	Kind  Kind
	// Checked is the checkbox value after input was applied.
	Checked bool
	// Value, Min and Max describe a slider.
	Value float32
	Min   float32
	Max   float32
	// Pressed reports a button press or a changed checkbox or slider.
	Pressed bool
	// SameLine places the widget on the previous widget's line.
	SameLine bool
}

// Window is a named group of widgets.
type Window struct {
	Name    string
	Widgets []Widget
}

// Context records frames. It is safe for concurrent use.
type Context struct {
	pressed  map[string]bool
	toggled  map[string]bool
	sliders  map[string]float32
	current  []Window
	last     []Window
	stack    []int
	frame    uint64
	mu       sync.Mutex
	sameLine bool
}

func New() *Context {
	return &Context{
		pressed: make(map[string]bool),
		toggled: make(map[string]bool),
		sliders: make(map[string]float32),
	}
}

func key(window, label string) string {
	return window + "##" + label
}

// NewFrame starts recording a frame.
func (c *Context) NewFrame() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
	c.stack = c.stack[:0]
	c.sameLine = false
	c.frame++
}

// EndFrame publishes the recorded frame and drops input no widget consumed.
// Windows left open are closed.
func (c *Context) EndFrame() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = c.current
	c.current = nil
	c.stack = c.stack[:0]
	clear(c.pressed)
	clear(c.toggled)
	clear(c.sliders)
}

// FrameCount returns the number of frames started.
func (c *Context) FrameCount() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame
}

// Frame returns a copy of the last completed frame.
func (c *Context) Frame() []Window {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Window, len(c.last))
	for i, w := range c.last {
		out[i] = Window{Name: w.Name, Widgets: append([]Widget(nil), w.Widgets...)}
	}
	return out
}

// Begin opens a window. Re-opening a window in the same frame appends to it.
func (c *Context) Begin(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stack = append(c.stack, c.window(name))
	c.sameLine = false
}

// End closes the innermost window. Without an open window it does nothing.
func (c *Context) End() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n := len(c.stack); n > 0 {
		c.stack = c.stack[:n-1]
	}
	c.sameLine = false
}

// SameLine places the next widget next to the previous one.
func (c *Context) SameLine() {
	c.mu.Lock()
	c.sameLine = true
	c.mu.Unlock()
}

func (c *Context) Separator() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.add(Widget{Kind: KindSeparator})
}

func (c *Context) Text(label string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.add(Widget{Kind: KindText, Label: label})
}

// Button reports whether the button was pressed since the last frame.
func (c *Context) Button(label string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	w := c.add(Widget{Kind: KindButton, Label: label})
	k := key(c.windowName(), label)
	if c.pressed[k] {
		delete(c.pressed, k)
		w.Pressed = true
	}
	return w.Pressed
}

// Checkbox applies a pending toggle to value and reports whether it changed.
func (c *Context) Checkbox(label string, value *bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key(c.windowName(), label)
	changed := false
	if c.toggled[k] {
		delete(c.toggled, k)
		*value = !*value
		changed = true
	}
	c.add(Widget{Kind: KindCheckbox, Label: label, Checked: *value, Pressed: changed})
	return changed
}

// SliderFloat applies a pending value to value, clamped to [lo, hi], and
// reports whether it changed.
func (c *Context) SliderFloat(label string, value *float32, lo, hi float32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key(c.windowName(), label)
	changed := false
	if v, ok := c.sliders[k]; ok {
		delete(c.sliders, k)
		v = clamp(v, lo, hi)
		if v != *value {
			*value = v
			changed = true
		}
	}
	c.add(Widget{Kind: KindSlider, Label: label, Value: *value, Min: lo, Max: hi, Pressed: changed})
	return changed
}

// Press queues a click on a button for the next frame.
func (c *Context) Press(window, label string) {
	c.mu.Lock()
	c.pressed[key(window, label)] = true
	c.mu.Unlock()
}

// Toggle queues a checkbox toggle for the next frame.
func (c *Context) Toggle(window, label string) {
	c.mu.Lock()
	c.toggled[key(window, label)] = true
	c.mu.Unlock()
}

// Slide queues a slider value for the next frame.
func (c *Context) Slide(window, label string, value float32) {
	c.mu.Lock()
	c.sliders[key(window, label)] = value
	c.mu.Unlock()
}

// window returns the index of the named window in the current frame,
// creating it if needed. c.mu must be held.
func (c *Context) window(name string) int {
	for i := range c.current {
		if c.current[i].Name == name {
			return i
		}
	}
	c.current = append(c.current, Window{Name: name})
	return len(c.current) - 1
}

func (c *Context) windowName() string {
	if n := len(c.stack); n > 0 {
		return c.current[c.stack[n-1]].Name
	}
	return DefaultWindow
}

// add appends w to the innermost window and returns a pointer to it. c.mu
// must be held.
func (c *Context) add(w Widget) *Widget {
	var idx int
	if n := len(c.stack); n > 0 {
		idx = c.stack[n-1]
	} else {
		idx = c.window(DefaultWindow)
	}
	w.SameLine = c.sameLine
	c.sameLine = false
	win := &c.current[idx]
	win.Widgets = append(win.Widgets, w)
	return &win.Widgets[len(win.Widgets)-1]
}

func clamp(v, lo, hi float32) float32 {
	if lo > hi {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
