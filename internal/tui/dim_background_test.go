package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func TestDimBackgroundStripsInnerANSIStyles(t *testing.T) {
	oldProfile := lipgloss.ColorProfile()
	oldBG := lipgloss.HasDarkBackground()
	lipgloss.SetColorProfile(termenv.ANSI256)
	t.Cleanup(func() {
		lipgloss.SetColorProfile(oldProfile)
		lipgloss.SetHasDarkBackground(oldBG)
	})
	lipgloss.SetHasDarkBackground(true)

	// Give the backdrop a strong color. If dimBackground does not strip ANSI
	// codes first, the inner style can override the scrim.
	in := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("CARD GRID")
	out := dimBackground(in)

	if !strings.Contains(out, "38;5;241") {
		t.Fatalf("expected dimmed foreground (38;5;241) in output; got %q", out)
	}
	if strings.Contains(out, "38;5;196") {
		t.Fatalf("expected inner foreground (38;5;196) to be stripped; got %q", out)
	}
}

func TestNormalizePaneForcesExactDimensions(t *testing.T) {
	out := normalizePane("ab\ncdefgh", 4, 3)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d", len(lines))
	}
	if lines[0] != "ab  " {
		t.Fatalf("short line not padded: %q", lines[0])
	}
	if lines[1] != "cde…" {
		t.Fatalf("long line not truncated: %q", lines[1])
	}
	if lines[2] != "    " {
		t.Fatalf("missing line not filled: %q", lines[2])
	}
}

func TestOverlayAtSplicesIntoBase(t *testing.T) {
	base := normalizePane("aaaaaaaa\nbbbbbbbb\ncccccccc", 8, 3)
	out := overlayAt(base, "XX\nYY", 3, 1)
	lines := strings.Split(out, "\n")
	if lines[0] != "aaaaaaaa" {
		t.Fatalf("row above overlay changed: %q", lines[0])
	}
	if lines[1] != "bbbXXbbb" {
		t.Fatalf("overlay row = %q", lines[1])
	}
	if lines[2] != "cccYYccc" {
		t.Fatalf("overlay row = %q", lines[2])
	}
}
