package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `
# Browsing

- **↑/↓** or **w/s** — move focus through headings and cards
- **enter** — flip the focused card (forward)
- **b** — flip the focused card (backward)
- **p** — toggle project labels on eligible cards
- **esc** — clear keyboard focus
- **pgup/pgdn/space** — scroll
- **q** — quit

# Open card

- **tab / shift+tab** — cycle question, name, email, submit
- **enter** on Submit — send the question (2 per name, 3 per device)
- **ctrl+d** — delete your stored question
- **1 / 2** — pick a question to delete when the card is full
- **esc** — close the card (your draft is kept)

Clicking a card's lower half flips it forward, the upper half or the
question badge flips it backward. Clicking outside an open card closes it.
`

// renderHelp renders the key reference once at startup; glamour output is
// stable for the process lifetime.
func renderHelp(width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return strings.TrimRight(out, "\n")
}

func (m appModel) helpView() string {
	if m.helpCache != "" {
		return m.helpCache
	}
	return renderHelp(64)
}
