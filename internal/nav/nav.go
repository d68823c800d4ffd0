// Package nav is the keyboard navigation engine: a single ordered sequence
// of navigable units (section headings, day headings, cards) derived from
// the rendered structure once per render pass, and the up/down stepping
// rules over it.
//
// The unit list is structural, not layout-dependent; the visual column count
// only matters when stepping between two cards of the same non-performer
// section (move by one visual row, same column).
package nav

import "condeck/internal/model"

type Section int

const (
	SectionModerators Section = iota
	SectionPerformers
	SectionPanelists
	SectionStaff
)

func (s Section) Title() string {
	switch s {
	case SectionModerators:
		return "Moderators"
	case SectionPerformers:
		return "Performers"
	case SectionPanelists:
		return "Featured Guests"
	case SectionStaff:
		return "Staff"
	default:
		return ""
	}
}

type UnitKind int

const (
	UnitSectionHeading UnitKind = iota
	UnitDayHeading
	UnitCard
)

// Unit is one atom of keyboard traversal.
type Unit struct {
	Kind    UnitKind
	Section Section
	// Day is set on day headings and on performer cards.
	Day *model.Day
	// Entity is the card's entity name (cards only).
	Entity string
	// Label is the display text for headings.
	Label string
}

// DayGroup is one day's worth of performer cards, already ordered.
type DayGroup struct {
	Day      model.Day
	Label    string
	Entities []model.Entity
}

// SectionContent is the renderable content of one section in traversal order.
type SectionContent struct {
	Section Section
	// Cards is set for non-performer sections.
	Cards []model.Entity
	// Days is set for the performer section.
	Days []DayGroup
}

// BuildUnits flattens sections into the traversal sequence: each non-empty
// section emits its heading followed by its units; the performer section
// emits a day heading before each day's cards.
func BuildUnits(sections []SectionContent) []Unit {
	var units []Unit
	for _, sec := range sections {
		if len(sec.Cards) == 0 && len(sec.Days) == 0 {
			continue
		}
		units = append(units, Unit{Kind: UnitSectionHeading, Section: sec.Section, Label: sec.Section.Title()})
		if sec.Section == SectionPerformers {
			for _, dg := range sec.Days {
				day := dg.Day
				units = append(units, Unit{Kind: UnitDayHeading, Section: sec.Section, Day: &day, Label: dg.Label})
				for _, e := range dg.Entities {
					units = append(units, Unit{Kind: UnitCard, Section: sec.Section, Day: &day, Entity: e.Name})
				}
			}
			continue
		}
		for _, e := range sec.Cards {
			units = append(units, Unit{Kind: UnitCard, Section: sec.Section, Entity: e.Name})
		}
	}
	return units
}

type Direction int

const (
	DirUp Direction = iota
	DirDown
)

// Engine holds the traversal sequence and the process-wide focus singleton.
type Engine struct {
	units  []Unit
	active bool
	index  int
}

func NewEngine(units []Unit) *Engine {
	return &Engine{units: units, index: -1}
}

// SetUnits swaps in a freshly built sequence (new render pass). Focus is
// revalidated: an out-of-range index clears, everything else survives since
// the set is structural.
func (e *Engine) SetUnits(units []Unit) {
	e.units = units
	if e.index >= len(units) {
		e.index = -1
		e.active = false
	}
}

func (e *Engine) Units() []Unit { return e.units }

// Active reports whether keyboard-navigation mode is on.
func (e *Engine) Active() bool { return e.active }

// Focused returns the focused unit, if navigation is active.
func (e *Engine) Focused() (Unit, bool) {
	if !e.active || e.index < 0 || e.index >= len(e.units) {
		return Unit{}, false
	}
	return e.units[e.index], true
}

// FocusIndex returns the focused index, or -1.
func (e *Engine) FocusIndex() int {
	if !e.active {
		return -1
	}
	return e.index
}

// Activate turns navigation on, seeding focus at the given unit (typically
// the one most centered in the viewport; the very first unit if none are
// visible).
func (e *Engine) Activate(seed int) {
	if len(e.units) == 0 {
		return
	}
	if seed < 0 || seed >= len(e.units) {
		seed = 0
	}
	e.active = true
	e.index = seed
}

// Deactivate turns navigation off and clears focus (Escape, or any raw
// pointer click: navigation and pointer interaction are mutually exclusive).
func (e *Engine) Deactivate() {
	e.active = false
	e.index = -1
}

// Reseed moves focus without deactivating, used when scrolling pushes the
// focused element out of view.
func (e *Engine) Reseed(index int) {
	if !e.active || index < 0 || index >= len(e.units) {
		return
	}
	e.index = index
}

// Step moves focus one step up or down and returns the new index. columns is
// the current visual column count (1 on narrow viewports, 2 otherwise).
func (e *Engine) Step(dir Direction, columns int) int {
	if !e.active || len(e.units) == 0 {
		return e.index
	}
	if e.index < 0 || e.index >= len(e.units) {
		e.index = 0
		return e.index
	}
	e.index = e.next(e.index, dir, columns)
	return e.index
}

func (e *Engine) next(i int, dir Direction, columns int) int {
	if columns < 1 {
		columns = 1
	}
	cur := e.units[i]

	if cur.Kind == UnitCard {
		if cur.Section == SectionPerformers {
			return e.nextFromPerformerCard(i, dir)
		}
		return e.nextFromGridCard(i, dir, columns)
	}
	return e.nextFromHeading(i, dir)
}

// nextFromHeading steps one unit in flat order, wrapping heading-to-heading
// across the ends of the whole sequence.
func (e *Engine) nextFromHeading(i int, dir Direction) int {
	if dir == DirDown {
		if i+1 < len(e.units) {
			return i + 1
		}
		return e.firstHeading()
	}
	if i > 0 {
		return i - 1
	}
	return e.lastHeading()
}

func (e *Engine) firstHeading() int {
	for i, u := range e.units {
		if u.Kind == UnitSectionHeading {
			return i
		}
	}
	return 0
}

func (e *Engine) lastHeading() int {
	for i := len(e.units) - 1; i >= 0; i-- {
		if e.units[i].Kind == UnitSectionHeading {
			return i
		}
	}
	return len(e.units) - 1
}

// sectionCards returns the index range [start, end) of the contiguous card
// run containing i (same section, and for performers the same day group).
func (e *Engine) cardRun(i int) (start, end int) {
	start, end = i, i+1
	for start > 0 && e.sameRun(e.units[start-1], e.units[i]) {
		start--
	}
	for end < len(e.units) && e.sameRun(e.units[end], e.units[i]) {
		end++
	}
	return start, end
}

func (e *Engine) sameRun(a, b Unit) bool {
	if a.Kind != UnitCard || b.Kind != UnitCard || a.Section != b.Section {
		return false
	}
	if a.Section != SectionPerformers {
		return true
	}
	return a.Day != nil && b.Day != nil && *a.Day == *b.Day
}

// nextFromGridCard moves one visual row within the section's card run; off
// the edge of the run it lands on the adjacent heading, wrapping across the
// sequence ends.
func (e *Engine) nextFromGridCard(i int, dir Direction, columns int) int {
	start, end := e.cardRun(i)
	pos := i - start

	if dir == DirDown {
		target := pos + columns
		if start+target < end {
			return start + target
		}
		// Off the bottom of the section (or no card in that row/column):
		// jump to the next section's heading, wrapping to the first.
		return e.headingAfter(end)
	}
	target := pos - columns
	if target >= 0 {
		return start + target
	}
	// Off the top: the heading immediately above this run.
	return e.headingBefore(start)
}

// nextFromPerformerCard moves strictly within the day group; crossing a
// group boundary lands on the adjacent day heading (or section heading).
func (e *Engine) nextFromPerformerCard(i int, dir Direction) int {
	start, end := e.cardRun(i)
	if dir == DirDown {
		if i+1 < end {
			return i + 1
		}
		return e.headingAfter(end)
	}
	if i > start {
		return i - 1
	}
	return e.headingBefore(start)
}

// headingAfter finds the first heading at or after i, wrapping to the first
// heading of the sequence.
func (e *Engine) headingAfter(i int) int {
	for j := i; j < len(e.units); j++ {
		if e.units[j].Kind != UnitCard {
			return j
		}
	}
	return e.firstHeading()
}

// headingBefore finds the nearest heading strictly before i. Card runs are
// always preceded by a heading, so this only wraps when i is 0.
func (e *Engine) headingBefore(i int) int {
	for j := i - 1; j >= 0; j-- {
		if e.units[j].Kind != UnitCard {
			return j
		}
	}
	return e.lastHeading()
}

// LabelEligible reports whether the project-label toggle applies to a card:
// moderators and featured guests only, plus a single named staff exception.
func LabelEligible(u Unit, staffException string) bool {
	if u.Kind != UnitCard {
		return false
	}
	switch u.Section {
	case SectionModerators, SectionPanelists:
		return true
	case SectionStaff:
		return staffException != "" && u.Entity == staffException
	default:
		return false
	}
}
