package imui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	windowStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	pressedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#2E8B57"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const (
	sliderWidth    = 12
	separatorWidth = 24
)

// Render draws windows side by side.
func Render(windows []Window) string {
	boxes := make([]string, 0, len(windows))
	for _, w := range windows {
		boxes = append(boxes, RenderWindow(w))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

// RenderWindow draws one window with its title and widgets.
func RenderWindow(w Window) string {
	var lines []string
	for _, widget := range w.Widgets {
		cell := renderWidget(widget)
		if widget.SameLine && len(lines) > 0 {
			lines[len(lines)-1] += " " + cell
			continue
		}
		lines = append(lines, cell)
	}

	body := titleStyle.Render(w.Name)
	if len(lines) > 0 {
		body += "\n" + strings.Join(lines, "\n")
	}
	return windowStyle.Render(body)
}

func renderWidget(w Widget) string {
	switch w.Kind {
	case KindText:
		return w.Label
	case KindButton:
		if w.Pressed {
			return pressedStyle.Render("[ " + w.Label + " ]")
		}
		return buttonStyle.Render("[ " + w.Label + " ]")
	case KindCheckbox:
		mark := " "
		if w.Checked {
			mark = "x"
		}
		return fmt.Sprintf("[%s] %s", mark, w.Label)
	case KindSlider:
		return fmt.Sprintf("%s %s %.2f", w.Label, bar(w.Value, w.Min, w.Max), w.Value)
	case KindSeparator:
		return dimStyle.Render(strings.Repeat("─", separatorWidth))
	default:
		return ""
	}
}

func bar(v, lo, hi float32) string {
	filled := 0
	if hi > lo {
		filled = int((clamp(v, lo, hi) - lo) / (hi - lo) * sliderWidth)
	}
	return strings.Repeat("━", filled) + dimStyle.Render(strings.Repeat("─", sliderWidth-filled))
}
