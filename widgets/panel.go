package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"trigseq/theme"
)

// RenderLamps renders one lamp per lane, lit where mask has the bit set
func RenderLamps(th *theme.Theme, mask uint16, lanes int) string {
	on := lipgloss.NewStyle().Foreground(th.Success())
	off := lipgloss.NewStyle().Foreground(th.Muted())
	var out strings.Builder
	for i := 0; i < lanes; i++ {
		if i > 0 {
			out.WriteString(" ")
		}
		if mask&(1<<i) != 0 {
			out.WriteString(on.Render(string(th.Symbols.LampOn)))
		} else {
			out.WriteString(off.Render(string(th.Symbols.LampOff)))
		}
	}
	return out.String()
}

// StepRow describes one track line of the step grid
type StepRow struct {
	Label    string
	Steps    []bool
	Playhead int // -1 for none
	Selected bool
	Swing    int
}

// RenderStepRow renders a track as a row of step symbols, grouped in fours
func RenderStepRow(th *theme.Theme, row StepRow) string {
	label := lipgloss.NewStyle().Foreground(th.FG())
	if row.Selected {
		label = label.Foreground(th.Cursor()).Bold(true)
	}
	stepOn := lipgloss.NewStyle().Foreground(th.Active())
	stepOff := lipgloss.NewStyle().Foreground(th.Muted())
	head := lipgloss.NewStyle().Foreground(th.Success())

	var out strings.Builder
	out.WriteString(label.Render(fmt.Sprintf("%-6s", row.Label)))
	for i, on := range row.Steps {
		if i%4 == 0 {
			out.WriteString(" ")
		}
		switch {
		case i == row.Playhead && on:
			out.WriteString(head.Render(string(th.Symbols.PlayheadActive)))
		case i == row.Playhead:
			out.WriteString(head.Render(string(th.Symbols.StepPlayhead)))
		case on:
			out.WriteString(stepOn.Render(string(th.Symbols.StepActive)))
		default:
			out.WriteString(stepOff.Render(string(th.Symbols.StepEmpty)))
		}
	}
	out.WriteString(stepOff.Render(fmt.Sprintf("  sw%3d", row.Swing)))
	return out.String()
}

// RenderPlaylist renders song slots as pattern numbers, marking the playing
// slot and boxing the selected one. At most width slots around the
// selection are shown.
func RenderPlaylist(th *theme.Theme, slots []int, cursor, selected, width int) string {
	dim := lipgloss.NewStyle().Foreground(th.Muted())
	playing := lipgloss.NewStyle().Foreground(th.Success())
	sel := lipgloss.NewStyle().Foreground(th.BG()).Background(th.Cursor())

	start := 0
	if len(slots) > width {
		start = max(0, min(selected-width/2, len(slots)-width))
	}
	end := min(len(slots), start+width)

	var out strings.Builder
	if start > 0 {
		out.WriteString(dim.Render("… "))
	}
	for i := start; i < end; i++ {
		if i > start {
			out.WriteString(" ")
		}
		text := fmt.Sprintf("%02d", slots[i]+1)
		switch {
		case i == selected:
			out.WriteString(sel.Render(text))
		case i == cursor:
			out.WriteString(playing.Render(text))
		default:
			out.WriteString(dim.Render(text))
		}
	}
	if end < len(slots) {
		out.WriteString(dim.Render(" …"))
	}
	return out.String()
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
