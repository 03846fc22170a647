package widgets_test

import (
	"strings"
	"testing"

	"trigseq/theme"
	"trigseq/widgets"
)

func plain(s string) string {
	// strip styling so assertions see the symbols only
	var out strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			inEsc = false
		case !inEsc:
			out.WriteRune(r)
		}
	}
	return out.String()
}

func TestRenderStepRow(t *testing.T) {
	th := theme.New(nil)
	steps := make([]bool, 8)
	steps[0], steps[5] = true, true
	got := plain(widgets.RenderStepRow(th, widgets.StepRow{Label: "T1", Steps: steps, Playhead: 5, Swing: 25}))
	want := "T1     ●··· ·◉··  sw 25"
	if got != want {
		t.Fatalf("row = %q, want %q", got, want)
	}
}

func TestRenderLamps(t *testing.T) {
	th := theme.New(nil)
	if got := plain(widgets.RenderLamps(th, 0b0101, 4)); got != "■ □ ■ □" {
		t.Fatalf("lamps = %q", got)
	}
}

func TestRenderPlaylistWindow(t *testing.T) {
	th := theme.New(nil)
	slots := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	got := plain(widgets.RenderPlaylist(th, slots, 0, 9, 4))
	if got != "… 07 08 09 10" {
		t.Fatalf("playlist = %q", got)
	}
	got = plain(widgets.RenderPlaylist(th, slots[:3], 1, 0, 8))
	if got != "01 02 03" {
		t.Fatalf("short playlist = %q", got)
	}
}

func TestRenderKeyHelp(t *testing.T) {
	got := widgets.RenderKeyHelp([]widgets.KeySection{{Title: "Transport", Keys: []widgets.KeyBinding{{Key: "space", Desc: "play/stop"}}}})
	if got != "Transport\n  space        play/stop" {
		t.Fatalf("help = %q", got)
	}
}
