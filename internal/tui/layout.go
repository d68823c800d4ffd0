package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// normalizePane forces s to be exactly width columns wide (ANSI-aware) and
// height lines tall. This keeps overlay compositing stable: every line of the
// backdrop has a known visual width before anything is spliced into it.
func normalizePane(s string, width, height int) string {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	lines := strings.Split(s, "\n")

	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}

	for i := range lines {
		ln := lines[i]
		// Fast path: avoid computing StringWidth on extremely long lines.
		if width > 0 && len(ln) > 8192 {
			if width == 1 {
				ln = xansi.Cut(ln, 0, 1)
			} else {
				ln = xansi.Cut(ln, 0, width-1) + "…"
			}
		}

		w := xansi.StringWidth(ln)

		if w > width {
			if width <= 0 {
				ln = ""
			} else if width == 1 {
				ln = xansi.Cut(ln, 0, 1)
			} else {
				ln = xansi.Cut(ln, 0, width-1) + "…"
			}
			w = xansi.StringWidth(ln)
		}
		if w < width {
			ln = ln + strings.Repeat(" ", width-w)
		}
		lines[i] = ln
	}

	return strings.Join(lines, "\n")
}

// dimBackground renders s as an inert backdrop behind an overlay: inner ANSI
// styling is stripped first so it cannot override the scrim color.
func dimBackground(s string) string {
	scrim := faintIfDark(lipgloss.NewStyle().Foreground(ac("250", "241")))
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = scrim.Render(stripANSIEscapes(lines[i]))
	}
	return strings.Join(lines, "\n")
}

// stripANSIEscapes removes ANSI CSI escape sequences from a string.
// It is intentionally minimal: good enough for neutralizing styled backdrop
// lines without pulling in extra dependencies.
func stripANSIEscapes(s string) string {
	if s == "" {
		return ""
	}
	b := []byte(s)
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != 0x1b { // ESC
			out = append(out, b[i])
			continue
		}
		// CSI: ESC [
		if i+1 < len(b) && b[i+1] == '[' {
			i += 2
			// Consume until final byte (0x40-0x7E).
			for i < len(b) {
				c := b[i]
				if c >= 0x40 && c <= 0x7E {
					break
				}
				i++
			}
			continue
		}
		// Unknown ESC sequence: drop just the ESC byte.
	}
	return string(out)
}

// modalBodyWidth is the content width inside a modal box of the given outer
// width (border + horizontal padding on both sides).
func modalBodyWidth(width int) int {
	w := width - 4
	if w < 10 {
		w = 10
	}
	return w
}

// renderModalBox renders a titled box for overlay content. Borders are kept
// to the outer box only: nesting bordered components inside a
// background-colored modal produces artifacts on some terminals.
func renderModalBox(width int, title string, content string) string {
	bodyW := modalBodyWidth(width)

	header := lipgloss.NewStyle().
		Bold(true).
		Width(bodyW).
		Foreground(colorModalHeaderFg).
		Background(colorModalHeaderBg).
		Padding(0, 1).
		Render(title)

	body := lipgloss.NewStyle().
		Width(bodyW).
		Foreground(colorModalSurfaceFg).
		Render(content)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorSelectedBorder).
		Padding(0, 1).
		Render(header + "\n\n" + body)
}

// overlayAt splices overlay into base with its top-left corner at column x,
// row y. Base lines must already be normalized to a uniform width.
func overlayAt(base, overlay string, x, y int) string {
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	baseLines := strings.Split(base, "\n")
	overlayLines := strings.Split(overlay, "\n")
	for i, ov := range overlayLines {
		row := y + i
		if row >= len(baseLines) {
			break
		}
		bl := baseLines[row]
		blWidth := xansi.StringWidth(bl)
		ovWidth := xansi.StringWidth(ov)
		left := xansi.Cut(bl, 0, min(x, blWidth))
		leftWidth := xansi.StringWidth(left)
		if leftWidth < x {
			left += strings.Repeat(" ", x-leftWidth)
		}
		right := ""
		if x+ovWidth < blWidth {
			right = xansi.Cut(bl, x+ovWidth, blWidth)
		}
		baseLines[row] = left + ov + right
	}
	return strings.Join(baseLines, "\n")
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// centeredOverlayPos returns the top-left corner that centers a block of the
// given size on screen, clamping so the block stays on screen.
func centeredOverlayPos(screenW, screenH, w, h int) (x, y int) {
	x = (screenW - w) / 2
	y = (screenH - h) / 2
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return x, y
}
