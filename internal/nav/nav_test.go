package nav

import (
	"testing"

	"condeck/internal/model"
)

func ent(name string) model.Entity { return model.Entity{Name: name, Visible: true} }

func day(d model.Day) *model.Day { return &d }

// fixture: moderators (3), performers (Friday 2 + Saturday 1),
// panelists (5), staff (2).
//
// Flat unit order:
//
//	0  Moderators heading
//	1  M1   2 M2   3 M3
//	4  Performers heading
//	5  FRIDAY heading
//	6  PF1  7 PF2
//	8  SATURDAY heading
//	9  PS1
//	10 Featured Guests heading
//	11 P1 … 15 P5
//	16 Staff heading
//	17 S1   18 S2
func fixtureUnits() []Unit {
	sections := []SectionContent{
		{Section: SectionModerators, Cards: []model.Entity{ent("M1"), ent("M2"), ent("M3")}},
		{Section: SectionPerformers, Days: []DayGroup{
			{Day: model.DayFriday, Label: "FRIDAY OCT 24", Entities: []model.Entity{ent("PF1"), ent("PF2")}},
			{Day: model.DaySaturday, Label: "SATURDAY OCT 25", Entities: []model.Entity{ent("PS1")}},
		}},
		{Section: SectionPanelists, Cards: []model.Entity{ent("P1"), ent("P2"), ent("P3"), ent("P4"), ent("P5")}},
		{Section: SectionStaff, Cards: []model.Entity{ent("S1"), ent("S2")}},
	}
	return BuildUnits(sections)
}

func TestBuildUnitsShape(t *testing.T) {
	units := fixtureUnits()
	if len(units) != 19 {
		t.Fatalf("len = %d, want 19", len(units))
	}
	if units[0].Kind != UnitSectionHeading || units[0].Label != "Moderators" {
		t.Fatalf("unit 0 = %+v", units[0])
	}
	if units[5].Kind != UnitDayHeading || units[5].Label != "FRIDAY OCT 24" {
		t.Fatalf("unit 5 = %+v", units[5])
	}
	if units[9].Kind != UnitCard || units[9].Entity != "PS1" || units[9].Day == nil || *units[9].Day != model.DaySaturday {
		t.Fatalf("unit 9 = %+v", units[9])
	}
	if units[10].Label != "Featured Guests" {
		t.Fatalf("panelists heading = %q", units[10].Label)
	}
}

func TestBuildUnitsSkipsEmptySections(t *testing.T) {
	units := BuildUnits([]SectionContent{
		{Section: SectionModerators},
		{Section: SectionStaff, Cards: []model.Entity{ent("S1")}},
	})
	if len(units) != 2 {
		t.Fatalf("units = %+v", units)
	}
	if units[0].Section != SectionStaff {
		t.Fatal("empty section not skipped")
	}
}

func TestActivateSeedsAndFocuses(t *testing.T) {
	e := NewEngine(fixtureUnits())
	if _, ok := e.Focused(); ok {
		t.Fatal("focused before activation")
	}
	e.Activate(11)
	u, ok := e.Focused()
	if !ok || u.Entity != "P1" {
		t.Fatalf("Focused = %+v, %v", u, ok)
	}
	e.Deactivate()
	if e.Active() || e.FocusIndex() != -1 {
		t.Fatal("deactivate did not clear focus")
	}
}

func TestActivateOutOfRangeSeedFallsBackToTop(t *testing.T) {
	e := NewEngine(fixtureUnits())
	e.Activate(99)
	if e.FocusIndex() != 0 {
		t.Fatalf("index = %d", e.FocusIndex())
	}
}

func TestGridStepWithinSection(t *testing.T) {
	e := NewEngine(fixtureUnits())
	e.Activate(1) // M1

	// Two columns: M1/M2 on the first row, M3 alone on the second.
	if got := e.Step(DirDown, 2); got != 3 {
		t.Fatalf("M1 down = %d, want 3 (M3)", got)
	}
	if got := e.Step(DirUp, 2); got != 1 {
		t.Fatalf("M3 up = %d, want 1 (M1)", got)
	}
}

func TestGridStepOffSectionEdges(t *testing.T) {
	e := NewEngine(fixtureUnits())

	// Off the bottom of the section: next section heading.
	e.Activate(2) // M2, second column
	if got := e.Step(DirDown, 2); got != 4 {
		t.Fatalf("M2 down = %d, want 4 (Performers heading)", got)
	}

	// Off the top of the section: the heading above.
	e.Activate(1)
	if got := e.Step(DirUp, 2); got != 0 {
		t.Fatalf("M1 up = %d, want 0", got)
	}
}

func TestPerformerCardsStepByDayGroup(t *testing.T) {
	e := NewEngine(fixtureUnits())

	e.Activate(6) // PF1
	if got := e.Step(DirDown, 2); got != 7 {
		t.Fatalf("PF1 down = %d, want 7 (PF2)", got)
	}
	if got := e.Step(DirDown, 2); got != 8 {
		t.Fatalf("PF2 down = %d, want 8 (SATURDAY heading)", got)
	}

	e.Activate(9) // PS1
	if got := e.Step(DirUp, 2); got != 8 {
		t.Fatalf("PS1 up = %d, want 8", got)
	}
	if got := e.Step(DirDown, 2); got != 9 {
		t.Fatalf("heading down = %d, want 9 (PS1)", got)
	}
}

func TestHeadingStepsFlat(t *testing.T) {
	e := NewEngine(fixtureUnits())
	e.Activate(4) // Performers heading
	if got := e.Step(DirDown, 2); got != 5 {
		t.Fatalf("heading down = %d, want 5", got)
	}
	if got := e.Step(DirUp, 2); got != 4 {
		t.Fatalf("day heading up = %d, want 4", got)
	}
}

func TestWrapAroundSequenceEnds(t *testing.T) {
	e := NewEngine(fixtureUnits())

	// Up from the very first heading wraps to the last section heading.
	e.Activate(0)
	if got := e.Step(DirUp, 2); got != 16 {
		t.Fatalf("wrap up = %d, want 16 (Staff heading)", got)
	}

	// Down off the last card run wraps to the first heading.
	e.Activate(18) // S2
	if got := e.Step(DirDown, 2); got != 0 {
		t.Fatalf("wrap down = %d, want 0", got)
	}
}

func TestSingleColumnStepsEveryCard(t *testing.T) {
	e := NewEngine(fixtureUnits())
	e.Activate(11) // P1
	if got := e.Step(DirDown, 1); got != 12 {
		t.Fatalf("single column down = %d, want 12", got)
	}
}

func TestReseedRequiresActive(t *testing.T) {
	e := NewEngine(fixtureUnits())
	e.Reseed(5)
	if e.FocusIndex() != -1 {
		t.Fatal("reseed while inactive moved focus")
	}
	e.Activate(1)
	e.Reseed(5)
	if e.FocusIndex() != 5 {
		t.Fatalf("reseed = %d", e.FocusIndex())
	}
}

func TestSetUnitsRevalidatesFocus(t *testing.T) {
	e := NewEngine(fixtureUnits())
	e.Activate(18)
	e.SetUnits(fixtureUnits()[:5])
	if e.Active() {
		t.Fatal("out-of-range focus survived SetUnits")
	}
}

func TestLabelEligible(t *testing.T) {
	mod := Unit{Kind: UnitCard, Section: SectionModerators, Entity: "M1"}
	pan := Unit{Kind: UnitCard, Section: SectionPanelists, Entity: "P1"}
	per := Unit{Kind: UnitCard, Section: SectionPerformers, Entity: "PF1"}
	staff := Unit{Kind: UnitCard, Section: SectionStaff, Entity: "S1"}
	except := Unit{Kind: UnitCard, Section: SectionStaff, Entity: "Boss"}
	heading := Unit{Kind: UnitSectionHeading, Section: SectionModerators}

	if !LabelEligible(mod, "Boss") || !LabelEligible(pan, "Boss") {
		t.Fatal("moderators and panelists should be eligible")
	}
	if LabelEligible(per, "Boss") || LabelEligible(staff, "Boss") || LabelEligible(heading, "Boss") {
		t.Fatal("performers, plain staff and headings should not be eligible")
	}
	if !LabelEligible(except, "Boss") {
		t.Fatal("staff exception should be eligible")
	}
}
