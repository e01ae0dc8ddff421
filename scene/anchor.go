package scene

import (
	scriptbridge "github.com/wippyai/script-bridge"
)

// AnchorPosition returns the screen point an anchor refers to.
// Unknown anchors resolve to the top-left corner.
func AnchorPosition(a scriptbridge.Anchor, width, height int) scriptbridge.Vector2 {
	w, h := float32(width), float32(height)
	switch a {
	case scriptbridge.AnchorTopLeft:
		return scriptbridge.Vector2{}
	case scriptbridge.AnchorTopCenter:
		return scriptbridge.Vector2{X: w / 2}
	case scriptbridge.AnchorTopRight:
		return scriptbridge.Vector2{X: w}
	case scriptbridge.AnchorMiddleLeft:
		return scriptbridge.Vector2{Y: h / 2}
	case scriptbridge.AnchorMiddleCenter:
		return scriptbridge.Vector2{X: w / 2, Y: h / 2}
	case scriptbridge.AnchorMiddleRight:
		return scriptbridge.Vector2{X: w, Y: h / 2}
	case scriptbridge.AnchorBottomLeft:
		return scriptbridge.Vector2{Y: h}
	case scriptbridge.AnchorBottomCenter:
		return scriptbridge.Vector2{X: w / 2, Y: h}
	case scriptbridge.AnchorBottomRight:
		return scriptbridge.Vector2{X: w, Y: h}
	default:
		return scriptbridge.Vector2{}
	}
}

// ScreenPosition returns the top-left corner of r on screen.
func ScreenPosition(r RectTransform, width, height int) scriptbridge.Vector2 {
	p := AnchorPosition(r.Anchor, width, height)
	return scriptbridge.Vector2{
		X: p.X + r.Position.X - r.Size.X*r.Pivot.X,
		Y: p.Y + r.Position.Y - r.Size.Y*r.Pivot.Y,
	}
}

// Pick returns the topmost active UI entity containing point. Entities later
// in id order are on top.
func (s *Scene) Pick(point scriptbridge.Vector2) (scriptbridge.EntityID, bool) {
	var (
		picked scriptbridge.EntityID
		found  bool
	)
	for _, e := range s.Entities() {
		s.mu.RLock()
		r := e.RectTransform
		var rect RectTransform
		if r != nil {
			rect = *r
		}
		s.mu.RUnlock()
		if r == nil || !rect.Active {
			continue
		}
		p := ScreenPosition(rect, s.width, s.height)
		if point.X >= p.X && point.X <= p.X+rect.Size.X &&
			point.Y >= p.Y && point.Y <= p.Y+rect.Size.Y {
			picked, found = e.ID, true
		}
	}
	return picked, found
}
