package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"condeck/internal/card"
	"condeck/internal/config"
	"condeck/internal/feed"
	"condeck/internal/lazy"
	"condeck/internal/model"
	"condeck/internal/nav"
	"condeck/internal/qna"
	"condeck/internal/store"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
)

// staffLabelException is the one staff card the project-label toggle applies
// to, matching the production page.
const staffLabelException = "Mikee Bridges"

const (
	topPadLines   = 1
	maxContentW   = 96
	minTwoColW    = 64
	cardGapW      = 2
	portraitRows  = 4
	cardInnerRows = portraitRows + 3 // portrait + name + meta + indicator
	cardRows      = cardInnerRows + 2
	headingRows   = 2 // blank spacer + heading line
)

type appModel struct {
	cfg    config.Config
	roster feed.Roster
	kv     *store.KV
	qa     *qna.QA
	// storageWarn is set when persistence degraded to session-only memory.
	storageWarn string

	width  int
	height int
	// The very first WindowSizeMsg is initial sizing, not a user resize.
	seenWindowSize bool

	sections []nav.SectionContent
	engine   *nav.Engine
	machine  *card.Machine
	loader   *lazy.Loader

	// scroll is the body viewport offset in lines.
	scroll     int
	showLabels bool

	modal          modalKind
	rateLimitText  string
	deleteTargetID string
	confirmFocus   confirmModalFocus

	questionInput textarea.Model
	nameInput     textinput.Model
	emailInput    textinput.Model
	formFocus     formFocus

	now func() time.Time

	helpCache  string
	helpCacheW int

	debugEnabled bool
	debugOverlay bool
	debugLogPath string
	inputDbg     inputDebug
}

func newAppModel(cfg config.Config, roster feed.Roster, kv *store.KV, qa *qna.QA, storageWarn string) appModel {
	m := appModel{
		cfg:         cfg,
		roster:      roster,
		kv:          kv,
		qa:          qa,
		storageWarn: storageWarn,
		machine:     &card.Machine{},
		loader:      lazy.NewLoader(cfg.MinPlaceholder, nil),
		now:         time.Now,
	}

	if strings.TrimSpace(os.Getenv("CONDECK_TUI_DEBUG")) != "" {
		m.debugEnabled = true
		m.debugOverlay = true
	}
	m.debugLogPath = strings.TrimSpace(os.Getenv("CONDECK_TUI_DEBUG_LOG"))

	m.sections = roster.Sections()
	m.engine = nav.NewEngine(nav.BuildUnits(m.sections))

	for _, u := range m.engine.Units() {
		if u.Kind != nav.UnitCard {
			continue
		}
		if e, ok := roster.Find(u.Entity); ok {
			if src := portraitSrc(e); src != "" {
				m.loader.Register(src)
			}
		}
	}

	m.questionInput = textarea.New()
	m.questionInput.Placeholder = "Your question…"
	m.questionInput.CharLimit = cfg.MaxQuestionLen
	m.questionInput.SetWidth(48)
	m.questionInput.SetHeight(3)
	m.questionInput.ShowLineNumbers = false

	m.nameInput = textinput.New()
	m.nameInput.Placeholder = "Your name (optional)"
	m.nameInput.CharLimit = 60
	m.nameInput.Width = 40

	m.emailInput = textinput.New()
	m.emailInput.Placeholder = "Email (optional)"
	m.emailInput.CharLimit = 120
	m.emailInput.Width = 40

	m.helpCacheW = 64
	m.helpCache = renderHelp(m.helpCacheW)

	return m
}

// portraitSrc picks the best available image source for an entity.
func portraitSrc(e model.Entity) string {
	for _, src := range []string{e.DesktopImageURL, e.ImageURL, e.MobileImageURL} {
		if src != "" {
			return src
		}
	}
	return ""
}

// loadingName is the name shown in the loading placeholder: first name,
// except for the one band whose first word alone reads wrong.
func loadingName(e model.Entity) string {
	if e.Name == "Us Kids All-Stars" {
		return e.Name
	}
	return e.FirstName()
}

func (m appModel) contentWidth() int {
	w := m.width
	if w <= 0 {
		w = 80
	}
	if w > maxContentW {
		w = maxContentW
	}
	return w
}

func (m appModel) columns() int {
	if m.contentWidth() >= minTwoColW {
		return 2
	}
	return 1
}

func (m appModel) headerLines() int {
	n := topPadLines + 2 // title + countdown
	if m.storageWarn != "" {
		n++
	}
	return n + 1 // trailing blank
}

func (m appModel) bodyHeight() int {
	h := m.height - m.headerLines() - 1 // footer line
	if h < 5 {
		h = 5
	}
	return h
}

// unitBox is one navigable unit's rendered bounding box in body coordinates
// (y counts lines from the top of the scrollable body, before scrolling).
type unitBox struct {
	index int
	x, y  int
	w, h  int
}

// buildLayout computes where every unit renders. Headings span the full
// content width; consecutive cards of one run pack into rows of columns().
func (m appModel) buildLayout() []unitBox {
	units := m.engine.Units()
	cols := m.columns()
	contentW := m.contentWidth()
	cardW := (contentW - cardGapW*(cols-1)) / cols

	boxes := make([]unitBox, 0, len(units))
	y := 0
	col := 0
	rowOpen := false

	flushRow := func() {
		if rowOpen {
			y += cardRows
			col = 0
			rowOpen = false
		}
	}

	for i, u := range units {
		if u.Kind != nav.UnitCard {
			flushRow()
			boxes = append(boxes, unitBox{index: i, x: 0, y: y, w: contentW, h: headingRows})
			y += headingRows
			continue
		}
		// A new run starts a fresh row even mid-row.
		if i > 0 && rowOpen && !sameCardRun(units[i-1], u) {
			flushRow()
		}
		boxes = append(boxes, unitBox{index: i, x: col * (cardW + cardGapW), y: y, w: cardW, h: cardRows})
		rowOpen = true
		col++
		if col >= cols {
			flushRow()
		}
	}
	flushRow()
	return boxes
}

func sameCardRun(a, b nav.Unit) bool {
	if a.Kind != nav.UnitCard || b.Kind != nav.UnitCard || a.Section != b.Section {
		return false
	}
	if a.Day == nil || b.Day == nil {
		return a.Day == nil && b.Day == nil
	}
	return *a.Day == *b.Day
}

func (m appModel) layoutHeight(boxes []unitBox) int {
	h := 0
	for _, b := range boxes {
		if b.y+b.h > h {
			h = b.y + b.h
		}
	}
	return h
}

// centeredUnit returns the index of the unit whose midpoint is closest to the
// viewport center, or 0 if nothing is visible.
func (m appModel) centeredUnit(boxes []unitBox) int {
	center := m.scroll + m.bodyHeight()/2
	best := -1
	bestDist := 1 << 30
	for _, b := range boxes {
		if b.y+b.h <= m.scroll || b.y >= m.scroll+m.bodyHeight() {
			continue
		}
		mid := b.y + b.h/2
		d := mid - center
		if d < 0 {
			d = -d
		}
		if d < bestDist {
			bestDist = d
			best = b.index
		}
	}
	if best < 0 {
		return 0
	}
	return best
}

func (m appModel) boxFor(boxes []unitBox, index int) (unitBox, bool) {
	for _, b := range boxes {
		if b.index == index {
			return b, true
		}
	}
	return unitBox{}, false
}

func (m *appModel) debugLogf(format string, args ...any) {
	if !m.debugEnabled || m.debugLogPath == "" {
		return
	}
	f, err := os.OpenFile(m.debugLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "%s "+format+"\n", append([]any{time.Now().Format("15:04:05.000")}, args...)...)
}

// sessionContext is the context for store access from the event loop. The
// TUI has no cancellation story beyond process exit.
func (m appModel) sessionContext() context.Context { return context.Background() }
