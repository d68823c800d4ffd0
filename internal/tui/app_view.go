package tui

import (
	"fmt"
	"strings"
	"time"

	"condeck/internal/card"
	"condeck/internal/lazy"
	"condeck/internal/model"
	"condeck/internal/nav"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

func (m appModel) View() string {
	header := m.renderHeader()
	body := m.renderBody()
	footer := m.renderFooter()

	cardOpen := m.machine.IsOpen()
	if cardOpen || m.modal != modalNone {
		body = dimBackground(body)
	}

	screen := strings.Join([]string{header, body, footer}, "\n")
	screen = normalizePane(screen, m.width, m.height)

	if open, ok := m.machine.Current(); ok {
		overlay := m.renderOpenCard(open)
		x, y, _, _ := m.openCardRect(open)
		screen = overlayAt(screen, overlay, x, y)
	}

	if m.modal != modalNone {
		overlay := m.renderModal()
		x, y := centeredOverlayPos(m.width, m.height, lipgloss.Width(overlay), lipgloss.Height(overlay))
		screen = overlayAt(screen, overlay, x, y)
	}

	return screen
}

func (m appModel) renderHeader() string {
	lines := make([]string, 0, 4)
	for i := 0; i < topPadLines; i++ {
		lines = append(lines, "")
	}
	title := m.roster.Event.Name
	if title == "" {
		title = "condeck"
	}
	lines = append(lines, lipgloss.NewStyle().Bold(true).Render(title))
	lines = append(lines, lipgloss.NewStyle().Foreground(colorChromeMutedFg).Render(countdownLine(m.now(), m.roster.Event.Starts)))
	if m.storageWarn != "" {
		lines = append(lines, styleMuted().Render("storage unavailable, questions kept for this session only"))
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// countdownLine formats the time remaining until the event opens.
func countdownLine(now, starts time.Time) string {
	if starts.IsZero() {
		return ""
	}
	d := starts.Sub(now)
	if d <= 0 {
		return "Happening now!"
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	mins := int(d.Minutes()) % 60
	secs := int(d.Seconds()) % 60
	if days > 0 {
		return fmt.Sprintf("Starts in %dd %dh %dm %ds", days, hours, mins, secs)
	}
	return fmt.Sprintf("Starts in %dh %dm %ds", hours, mins, secs)
}

func (m appModel) renderFooter() string {
	var help string
	switch {
	case m.modal == modalConfirmDelete:
		help = "tab: focus   enter: select   esc: cancel"
	case m.machine.IsOpen():
		help = "tab: next field   enter: submit   esc: close card"
	case m.engine.Active():
		help = "↑/↓: move   enter: flip   b: flip back   esc: clear   ?: help"
	default:
		help = "↑/↓ or w/s: navigate   p: labels   ?: help   q: quit"
	}
	if m.debugOverlay {
		help += "   [" + m.inputDbg.lastStr + "]"
	}
	return styleMuted().Render(help)
}

// renderBody paints every unit onto a line canvas and returns the visible
// viewport slice.
func (m appModel) renderBody() string {
	boxes := m.buildLayout()
	canvas := make([]string, m.layoutHeight(boxes))
	units := m.engine.Units()
	focusIdx := m.engine.FocusIndex()

	for _, b := range boxes {
		u := units[b.index]
		var block string
		if u.Kind == nav.UnitCard {
			block = m.renderCardFront(u, b.w, b.index == focusIdx)
		} else {
			block = m.renderHeading(u, b.w, b.index == focusIdx)
		}
		blitBlock(canvas, block, b.x, b.y)
	}

	top := m.scroll
	if top > len(canvas) {
		top = len(canvas)
	}
	bottom := top + m.bodyHeight()
	if bottom > len(canvas) {
		bottom = len(canvas)
	}
	return normalizePane(strings.Join(canvas[top:bottom], "\n"), m.contentWidth(), m.bodyHeight())
}

// blitBlock writes a multi-line block onto the canvas at column x, row y.
// Boxes arrive left to right, so padding out to x is sufficient.
func blitBlock(canvas []string, block string, x, y int) {
	for i, ln := range strings.Split(block, "\n") {
		row := y + i
		if row < 0 || row >= len(canvas) {
			continue
		}
		cur := canvas[row]
		curW := xansi.StringWidth(cur)
		if curW < x {
			cur += strings.Repeat(" ", x-curW)
		}
		canvas[row] = cur + ln
	}
}

func (m appModel) renderHeading(u nav.Unit, w int, focused bool) string {
	st := lipgloss.NewStyle().Bold(true)
	label := u.Label
	if u.Kind == nav.UnitDayHeading {
		st = lipgloss.NewStyle().Foreground(colorChromeMutedFg)
	}
	if focused {
		st = st.Background(colorSelectedBg).Foreground(colorSelectedFg)
	}
	return "\n" + st.MaxWidth(w).Render(label)
}

func (m appModel) renderCardFront(u nav.Unit, w int, focused bool) string {
	e, _ := m.roster.Find(u.Entity)
	innerW := w - 4
	if innerW < 6 {
		innerW = 6
	}

	borderColor := colorCardBorder
	if focused {
		borderColor = colorSelectedBorder
	}

	count := len(m.qa.List(m.sessionContext(), u.Entity))

	var lines []string
	lines = append(lines, m.renderPortrait(e, innerW)...)
	lines = append(lines, lipgloss.NewStyle().Bold(true).MaxWidth(innerW).Render(e.Name))

	meta := ""
	switch {
	case focused:
		meta = hoverText(e, count)
	case m.showLabels && nav.LabelEligible(u, staffLabelException):
		meta = primaryProject(e)
	}
	lines = append(lines, lipgloss.NewStyle().Foreground(colorCardMetaFg).MaxWidth(innerW).Render(meta))

	indicator := ""
	if count == 1 {
		indicator = "● 1 question"
	} else if count > 1 {
		indicator = fmt.Sprintf("● %d questions", count)
	}
	lines = append(lines, lipgloss.NewStyle().Foreground(colorAccent).MaxWidth(innerW).Render(indicator))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(innerW + 2).
		Render(strings.Join(lines, "\n"))
}

// renderPortrait renders the lazy-loaded portrait area.
func (m appModel) renderPortrait(e model.Entity, w int) []string {
	src := portraitSrc(e)
	center := lipgloss.NewStyle().Width(w).Height(portraitRows).Align(lipgloss.Center, lipgloss.Center)

	if src == "" {
		return strings.Split(center.Foreground(colorMuted).Render("photo coming soon"), "\n")
	}
	switch m.loader.Status(src) {
	case lazy.StatusLoaded:
		fill := strings.Repeat("▒", min(w, 14))
		return strings.Split(center.Foreground(colorChromeMutedFg).Render(fill+"\n"+src), "\n")
	case lazy.StatusFailed:
		return strings.Split(center.Foreground(colorMuted).Render("photo coming soon"), "\n")
	default:
		return strings.Split(center.Foreground(colorMuted).Render("Loading "+loadingName(e)+"…"), "\n")
	}
}

// hoverText is the call-to-action shown on a focused card front and as the
// open card's subtitle.
func hoverText(e model.Entity, questionCount int) string {
	if questionCount >= 2 {
		return "Edit or delete your questions"
	}
	if e.HasRole(model.RolePerformer) && !e.HasRole(model.RolePanelist) {
		return "Request a song from " + e.Name
	}
	return "Ask " + e.FirstName() + " a question"
}

func primaryProject(e model.Entity) string {
	if i := strings.IndexByte(e.Projects, ','); i > 0 {
		return strings.TrimSpace(e.Projects[:i])
	}
	return strings.TrimSpace(e.Projects)
}

func (m appModel) openCardWidth() int {
	w := m.contentWidth() - 2
	if w > 60 {
		w = 60
	}
	if w < 24 {
		w = 24
	}
	return w
}

// openCardRect is the overlay bounding box of the open card in screen
// coordinates. The card renders at its grid origin (the relocation slot),
// clamped so the whole form stays on screen.
func (m appModel) openCardRect(open card.Open) (x, y, w, h int) {
	overlay := m.renderOpenCard(open)
	w = lipgloss.Width(overlay)
	h = lipgloss.Height(overlay)

	x = open.Origin.Left
	if x+w > m.width {
		x = m.width - w
	}
	if x < 0 {
		x = 0
	}
	y = open.Origin.Top - m.scroll + m.headerLines()
	if y+h > m.height {
		y = m.height - h
	}
	if y < 0 {
		y = 0
	}
	return x, y, w, h
}

func (m appModel) renderOpenCard(open card.Open) string {
	e, _ := m.roster.Find(open.Entity)
	w := m.openCardWidth()
	bodyW := modalBodyWidth(w)

	if open.ShowingSuccess {
		btn := lipgloss.NewStyle().
			Padding(0, 2).
			Bold(true).
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Render("Awesome!")
		content := strings.Join([]string{
			lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("Question submitted!"),
			"",
			btn,
			"",
			styleMuted().Width(bodyW).Render("enter: dismiss"),
		}, "\n")
		return renderModalBox(w, e.Name, content)
	}

	qs := m.qa.List(m.sessionContext(), open.Entity)
	face := card.FaceFor(len(qs))

	var parts []string
	parts = append(parts, styleMuted().Width(bodyW).Render(hoverText(e, len(qs))))
	parts = append(parts, "")

	for i, q := range qs {
		head := fmt.Sprintf("%d. %s", i+1, q.Text)
		byline := "   — " + q.Submitter
		parts = append(parts,
			lipgloss.NewStyle().Width(bodyW).Render(head),
			styleMuted().Width(bodyW).Render(byline))
	}
	if len(qs) > 0 {
		parts = append(parts, "")
	}

	switch face {
	case card.FaceLimit:
		parts = append(parts,
			lipgloss.NewStyle().Width(bodyW).Render("You've reached the limit of 2 questions for "+e.Name+"."),
			"",
			styleMuted().Width(bodyW).Render("1/2: delete a question   esc: close"))
	default:
		parts = append(parts, m.renderForm(bodyW, face)...)
	}

	return renderModalBox(w, e.Name, strings.Join(parts, "\n"))
}

func (m appModel) renderForm(bodyW int, face card.Face) []string {
	label := func(s string, focused bool) string {
		st := styleMuted()
		if focused {
			st = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
		}
		return st.Render(s)
	}

	submitStyle := lipgloss.NewStyle().
		Padding(0, 2).
		Foreground(colorSurfaceFg).
		Background(colorControlBg)
	if m.formFocus == formFocusSubmit {
		submitStyle = submitStyle.
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true)
	}

	out := []string{
		label("Question", m.formFocus == formFocusQuestion),
		m.questionInput.View(),
		m.renderCharCounter(bodyW),
		"",
		label("Name", m.formFocus == formFocusName),
		m.nameInput.View(),
		label("Email", m.formFocus == formFocusEmail),
		m.emailInput.View(),
		"",
		submitStyle.Render("Submit"),
	}
	if face == card.FaceFormWithQuestion {
		out = append(out, "", styleMuted().Width(bodyW).Render("ctrl+d: delete your question"))
	}
	return out
}

// renderCharCounter shows remaining length with warning and critical
// thresholds at 100 and 130 characters.
func (m appModel) renderCharCounter(bodyW int) string {
	n := len([]rune(m.questionInput.Value()))
	st := styleMuted()
	switch {
	case n >= 130:
		st = lipgloss.NewStyle().Foreground(colorCounterCrit).Bold(true)
	case n >= 100:
		st = lipgloss.NewStyle().Foreground(colorCounterWarn)
	}
	return st.Width(bodyW).Align(lipgloss.Right).Render(fmt.Sprintf("%d/%d", n, m.cfg.MaxQuestionLen))
}

func (m appModel) renderModal() string {
	w := m.openCardWidth()
	switch m.modal {
	case modalRateLimit:
		content := strings.Join([]string{
			lipgloss.NewStyle().Width(modalBodyWidth(w)).Render(m.rateLimitText),
			"",
			styleMuted().Render("enter: ok"),
		}, "\n")
		return renderModalBox(w, "Hold on", content)
	case modalConfirmDelete:
		return renderConfirmModal(w, "Delete question?",
			"This removes the question from the card. Submission counters are not refunded.",
			"Delete", "Cancel", m.confirmFocus)
	case modalHelp:
		return renderModalBox(m.contentWidth()-2, "Keys", m.helpView())
	default:
		return ""
	}
}

func renderConfirmModal(width int, title, body, confirmLabel, cancelLabel string, focus confirmModalFocus) string {
	// Avoid borders here: nesting bordered components inside a modal with a
	// background color shows artifacts on some terminals.
	btnBase := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(colorSurfaceFg).
		Background(colorControlBg)
	btnActive := btnBase.
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Bold(true)

	confirm := btnBase.Render(confirmLabel)
	cancel := btnBase.Render(cancelLabel)
	if focus == confirmFocusConfirm {
		confirm = btnActive.Render(confirmLabel)
	}
	if focus == confirmFocusCancel {
		cancel = btnActive.Render(cancelLabel)
	}

	sep := lipgloss.NewStyle().Background(colorControlBg).Render(" ")
	controls := lipgloss.JoinHorizontal(lipgloss.Top, confirm, sep, cancel)

	bodyW := modalBodyWidth(width)
	help := styleMuted().Width(bodyW).Render("tab: focus   enter: select   esc: cancel")

	content := strings.Join([]string{
		lipgloss.NewStyle().Width(bodyW).Render(body),
		"",
		controls,
		"",
		help,
	}, "\n")
	return renderModalBox(width, title, content)
}
