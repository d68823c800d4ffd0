package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"condeck/internal/card"
	"condeck/internal/model"
	"condeck/internal/nav"
	"condeck/internal/qna"

	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Init() tea.Cmd {
	return tea.Batch(tickCountdown(), lazyFallbackTimer(m.cfg.LazyFallback))
}

func tickCountdown() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return countdownTickMsg{} })
}

func lazyFallbackTimer(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return lazyFallbackMsg{} })
}

// loadImage checks that the portrait file exists and is readable. The actual
// pixels never render in a terminal; existence is what "loaded" means here.
func loadImage(imagesDir, src string) tea.Cmd {
	return func() tea.Msg {
		st, err := os.Stat(filepath.Join(imagesDir, src))
		ok := err == nil && !st.IsDir()
		return imageLoadedMsg{src: src, ok: ok}
	}
}

// swapAfter delivers the placeholder swap once the minimum display time has
// been served.
func swapAfter(src string, delay time.Duration) tea.Cmd {
	if delay <= 0 {
		return func() tea.Msg { return imageSwapMsg{src: src} }
	}
	return tea.Tick(delay, func(time.Time) tea.Msg { return imageSwapMsg{src: src} })
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.seenWindowSize = true
		m.questionInput.SetWidth(min(48, m.contentWidth()-8))
		m.clampScroll()
		return m, m.startNearbyLoads()

	case countdownTickMsg:
		return m, tickCountdown()

	case lazyFallbackMsg:
		var cmds []tea.Cmd
		for _, src := range m.loader.ForceEnable() {
			cmds = append(cmds, loadImage(m.cfg.ImagesDir, src))
		}
		return m, tea.Batch(cmds...)

	case imageLoadedMsg:
		return m, swapAfter(msg.src, m.loader.Complete(msg.src, msg.ok))

	case imageSwapMsg:
		m.loader.Swap(msg.src)
		return m, nil

	case tea.MouseMsg:
		return m.updateMouse(msg)

	case tea.KeyMsg:
		m.debugKeyMsg(msg)
		m.inputDbg = inputDebug{lastAt: time.Now(), lastType: "key", lastStr: msg.String()}
		return m.updateKey(msg)
	}
	return m, nil
}

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.modal != modalNone {
		return m.updateModalKey(msg)
	}

	if open, ok := m.machine.Current(); ok {
		if open.ShowingSuccess {
			switch msg.String() {
			case "enter", "esc", " ":
				m.dismissSuccess()
			}
			return m, nil
		}
		return m.updateOpenCardKey(msg, open)
	}

	return m.updateBrowseKey(msg)
}

func (m appModel) updateModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalHelp:
		switch msg.String() {
		case "esc", "q", "enter", "?":
			m.closeAllModals()
		}
	case modalRateLimit:
		switch msg.String() {
		case "enter", "esc", " ":
			m.closeAllModals()
		}
	case modalConfirmDelete:
		switch msg.String() {
		case "tab", "left", "right":
			if m.confirmFocus == confirmFocusConfirm {
				m.confirmFocus = confirmFocusCancel
			} else {
				m.confirmFocus = confirmFocusConfirm
			}
		case "enter":
			if m.confirmFocus == confirmFocusConfirm {
				m.deleteTargetQuestion()
			}
			m.closeAllModals()
		case "esc":
			m.closeAllModals()
		}
	}
	return m, nil
}

func (m *appModel) deleteTargetQuestion() {
	open, ok := m.machine.Current()
	if !ok || m.deleteTargetID == "" {
		return
	}
	m.qa.Remove(m.sessionContext(), open.Entity, m.deleteTargetID)
}

func (m appModel) updateOpenCardKey(msg tea.KeyMsg, open card.Open) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.closeCard()
		return m, nil
	}

	count := len(m.qa.List(m.sessionContext(), open.Entity))
	face := card.FaceFor(count)

	if face == card.FaceLimit {
		// Two stored questions: no form, only delete affordances.
		switch msg.String() {
		case "1", "2":
			qs := m.qa.List(m.sessionContext(), open.Entity)
			idx := int(msg.Runes[0] - '1')
			if idx < len(qs) {
				m.deleteTargetID = qs[idx].ID
				m.confirmFocus = confirmFocusCancel
				m.modal = modalConfirmDelete
			}
		case "q":
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "tab":
		m.cycleFormFocus(true)
		return m, nil
	case "shift+tab":
		m.cycleFormFocus(false)
		return m, nil
	case "ctrl+d":
		if face == card.FaceFormWithQuestion {
			if qs := m.qa.List(m.sessionContext(), open.Entity); len(qs) > 0 {
				m.deleteTargetID = qs[0].ID
				m.confirmFocus = confirmFocusCancel
				m.modal = modalConfirmDelete
			}
		}
		return m, nil
	case "enter":
		switch m.formFocus {
		case formFocusSubmit:
			return m.submitQuestion(open.Entity)
		case formFocusName, formFocusEmail:
			m.cycleFormFocus(true)
			return m, nil
		}
		// Enter inside the question textarea falls through to the input.
	}

	var cmd tea.Cmd
	switch m.formFocus {
	case formFocusQuestion:
		m.questionInput, cmd = m.questionInput.Update(msg)
	case formFocusName:
		m.nameInput, cmd = m.nameInput.Update(msg)
	case formFocusEmail:
		m.emailInput, cmd = m.emailInput.Update(msg)
	}
	// Every edit overwrites the draft slot; only a successful submit clears it.
	m.qa.SaveDraft(m.sessionContext(), open.Entity, m.currentDraft())
	return m, cmd
}

func (m *appModel) currentDraft() model.Draft {
	return model.Draft{
		Text:      m.questionInput.Value(),
		Submitter: m.nameInput.Value(),
		Email:     m.emailInput.Value(),
	}
}

func (m *appModel) cycleFormFocus(forward bool) {
	order := []formFocus{formFocusQuestion, formFocusName, formFocusEmail, formFocusSubmit}
	cur := 0
	for i, f := range order {
		if f == m.formFocus {
			cur = i
		}
	}
	if forward {
		cur = (cur + 1) % len(order)
	} else {
		cur = (cur + len(order) - 1) % len(order)
	}
	m.setFormFocus(order[cur])
}

func (m *appModel) setFormFocus(f formFocus) {
	m.formFocus = f
	m.questionInput.Blur()
	m.nameInput.Blur()
	m.emailInput.Blur()
	switch f {
	case formFocusQuestion:
		m.questionInput.Focus()
	case formFocusName:
		m.nameInput.Focus()
	case formFocusEmail:
		m.emailInput.Focus()
	}
}

func (m appModel) submitQuestion(entity string) (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.questionInput.Value())
	if text == "" {
		return m, nil
	}
	_, err := m.qa.Submit(m.sessionContext(), entity, text, m.nameInput.Value(), m.emailInput.Value())
	var rl *qna.RateLimitedError
	if errors.As(err, &rl) {
		// The draft is untouched: nothing the user typed is lost.
		m.rateLimitText = rl.Message()
		m.modal = modalRateLimit
		return m, nil
	}
	if err != nil {
		return m, nil
	}
	m.resetFormInputs()
	m.machine.ShowSuccess()
	return m, nil
}

func (m *appModel) resetFormInputs() {
	m.questionInput.SetValue("")
	m.nameInput.SetValue("")
	m.emailInput.SetValue("")
	m.setFormFocus(formFocusQuestion)
}

func (m appModel) updateBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "?":
		m.modal = modalHelp
		return m, nil
	case "esc":
		m.engine.Deactivate()
		return m, nil
	case "up", "w":
		return m.stepFocus(nav.DirUp)
	case "down", "s":
		return m.stepFocus(nav.DirDown)
	case "enter":
		return m.openFocused(card.StateFlippedForward)
	case "b":
		return m.openFocused(card.StateFlippedBackward)
	case "p":
		m.showLabels = !m.showLabels
		return m, nil
	case "pgdown", " ":
		m.scrollBy(m.bodyHeight())
		return m, m.startNearbyLoads()
	case "pgup":
		m.scrollBy(-m.bodyHeight())
		return m, m.startNearbyLoads()
	case "home":
		m.scroll = 0
		m.reseedIfFocusHidden()
		return m, m.startNearbyLoads()
	case "end":
		m.scroll = 1 << 30
		m.clampScroll()
		m.reseedIfFocusHidden()
		return m, m.startNearbyLoads()
	}
	return m, nil
}

func (m appModel) stepFocus(dir nav.Direction) (tea.Model, tea.Cmd) {
	boxes := m.buildLayout()
	if !m.engine.Active() {
		// First press activates navigation on the most-centered visible unit.
		m.engine.Activate(m.centeredUnit(boxes))
	} else {
		m.engine.Step(dir, m.columns())
	}
	m.ensureFocusedVisible(boxes)
	return m, m.startNearbyLoads()
}

func (m *appModel) ensureFocusedVisible(boxes []unitBox) {
	idx := m.engine.FocusIndex()
	if idx < 0 {
		return
	}
	b, ok := m.boxFor(boxes, idx)
	if !ok {
		return
	}
	if b.y < m.scroll {
		m.scroll = b.y
	}
	if b.y+b.h > m.scroll+m.bodyHeight() {
		m.scroll = b.y + b.h - m.bodyHeight()
	}
	m.clampScroll()
}

func (m appModel) openFocused(state card.State) (tea.Model, tea.Cmd) {
	u, ok := m.engine.Focused()
	if !ok || u.Kind != nav.UnitCard {
		return m, nil
	}
	m.openCardAt(u.Entity, state)
	return m, nil
}

func (m *appModel) openCardAt(entity string, state card.State) {
	boxes := m.buildLayout()
	origin := card.Placement{}
	for _, b := range boxes {
		u := m.engine.Units()[b.index]
		if u.Kind == nav.UnitCard && u.Entity == entity {
			origin = card.Placement{Top: b.y, Left: b.x, Width: b.w, Height: b.h}
			break
		}
	}
	if !m.machine.Open(entity, state, origin) {
		return
	}
	// Opening a card clears the project labels and suspends scrolling.
	m.showLabels = false

	d := m.qa.Draft(m.sessionContext(), entity)
	m.questionInput.SetValue(d.Text)
	m.nameInput.SetValue(d.Submitter)
	m.emailInput.SetValue(d.Email)
	m.setFormFocus(formFocusQuestion)
}

func (m *appModel) closeCard() {
	if _, ok := m.machine.Close(); !ok {
		return
	}
	m.resetFormInputs()
	m.questionInput.Blur()
}

func (m *appModel) dismissSuccess() {
	if _, ok := m.machine.DismissSuccess(); ok {
		m.resetFormInputs()
		m.questionInput.Blur()
	}
}

func (m *appModel) scrollBy(delta int) {
	m.scroll += delta
	m.clampScroll()
	m.reseedIfFocusHidden()
}

func (m *appModel) clampScroll() {
	max := m.layoutHeight(m.buildLayout()) - m.bodyHeight()
	if max < 0 {
		max = 0
	}
	if m.scroll > max {
		m.scroll = max
	}
	if m.scroll < 0 {
		m.scroll = 0
	}
}

// reseedIfFocusHidden moves keyboard focus back into view when scrolling has
// pushed it out, without deactivating navigation.
func (m *appModel) reseedIfFocusHidden() {
	if !m.engine.Active() {
		return
	}
	boxes := m.buildLayout()
	b, ok := m.boxFor(boxes, m.engine.FocusIndex())
	if !ok {
		return
	}
	if b.y+b.h <= m.scroll || b.y >= m.scroll+m.bodyHeight() {
		m.engine.Reseed(m.centeredUnit(boxes))
	}
}

// startNearbyLoads begins portrait loads for cards within the proximity
// margin of the viewport.
func (m appModel) startNearbyLoads() tea.Cmd {
	limit := m.scroll + m.bodyHeight() + m.cfg.LazyMarginRows
	var near []string
	for _, b := range m.buildLayout() {
		u := m.engine.Units()[b.index]
		if u.Kind != nav.UnitCard || b.y >= limit {
			continue
		}
		if e, ok := m.roster.Find(u.Entity); ok {
			if src := portraitSrc(e); src != "" {
				near = append(near, src)
			}
		}
	}
	var cmds []tea.Cmd
	for _, src := range m.loader.StartNear(near) {
		cmds = append(cmds, loadImage(m.cfg.ImagesDir, src))
	}
	return tea.Batch(cmds...)
}

func (m appModel) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if msg.Action == tea.MouseActionPress && !m.machine.ScrollLocked() {
			m.scrollBy(-2)
			return m, m.startNearbyLoads()
		}
		return m, nil
	case tea.MouseButtonWheelDown:
		if msg.Action == tea.MouseActionPress && !m.machine.ScrollLocked() {
			m.scrollBy(2)
			return m, m.startNearbyLoads()
		}
		return m, nil
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return m, nil
		}
	default:
		return m, nil
	}

	// Raw pointer interaction and keyboard navigation are mutually exclusive.
	m.engine.Deactivate()

	if m.modal != modalNone {
		return m, nil
	}

	if open, isOpen := m.machine.Current(); isOpen {
		inside := m.pointInOpenCard(open, msg.X, msg.Y)
		switch m.machine.RoutePress(inside, false) {
		case card.PressClose:
			if open.ShowingSuccess {
				m.dismissSuccess()
			} else {
				m.closeCard()
			}
		case card.PressPassThrough:
			if open.ShowingSuccess {
				m.dismissSuccess()
			}
		}
		return m, nil
	}

	// Hit-test the grid for a flip.
	bodyY := msg.Y - m.headerLines() + m.scroll
	for _, b := range m.buildLayout() {
		u := m.engine.Units()[b.index]
		if u.Kind != nav.UnitCard {
			continue
		}
		if msg.X < b.x || msg.X >= b.x+b.w || bodyY < b.y || bodyY >= b.y+b.h {
			continue
		}
		ry := bodyY - b.y
		count := len(m.qa.List(m.sessionContext(), u.Entity))
		state := flipForRow(ry, count)
		m.openCardAt(u.Entity, state)
		return m, nil
	}
	return m, nil
}

// flipForRow maps a click row inside a card box to a flip direction. Row
// layout: border, portrait rows, name, hover line, indicator line, border.
func flipForRow(ry, questionCount int) card.State {
	indicatorRow := 1 + portraitRows + 2
	hoverRow := 1 + portraitRows + 1
	switch {
	case ry == indicatorRow && questionCount > 0:
		return card.FlipFor(card.RegionIndicator, 0, 0)
	case ry == hoverRow:
		return card.FlipFor(card.RegionHoverOverlay, 0, 0)
	default:
		return card.FlipFor(card.RegionImage, ry-1, portraitRows+1)
	}
}

// pointInOpenCard tests a screen coordinate against the open card overlay.
func (m appModel) pointInOpenCard(open card.Open, x, y int) bool {
	ox, oy, w, h := m.openCardRect(open)
	return x >= ox && x < ox+w && y >= oy && y < oy+h
}
