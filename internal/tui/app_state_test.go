package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	"condeck/internal/card"
	"condeck/internal/config"
	"condeck/internal/feed"
	"condeck/internal/model"
	"condeck/internal/qna"
	"condeck/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

// testDeck is a small roster covering every section kind.
//
// Flat unit order:
//
//	0 Moderators heading
//	1 Mia Moderator
//	2 Performers heading
//	3 FRIDAY heading
//	4 Ben Band
//	5 Featured Guests heading
//	6 Pat Panelist
func testDeck() feed.Roster {
	friday := model.DayFriday
	one, two := 1, 2
	return feed.Roster{
		Event: feed.Event{
			Name:   "Test Con",
			Starts: time.Date(2025, 10, 24, 11, 0, 0, 0, time.UTC),
			Days:   map[model.Day]string{model.DayFriday: "FRIDAY OCT 24"},
		},
		Entities: []model.Entity{
			{Name: "Mia Moderator", Projects: "Podcast A, Zine B", Roles: []model.Role{model.RoleModerator}, Visible: true, Order: &one, ImageURL: "mia.webp"},
			{Name: "Ben Band", Projects: "The Bens", Roles: []model.Role{model.RolePerformer}, Visible: true, Day: &friday, Order: &two, ImageURL: "ben.webp"},
			{Name: "Pat Panelist", Projects: "Label C", Roles: []model.Role{model.RolePanelist}, Visible: true, ImageURL: "pat.webp"},
		},
	}
}

func newTestApp(t *testing.T, roster feed.Roster) appModel {
	t.Helper()
	cfg := config.Config{
		UserLimit:      2,
		DeviceLimit:    3,
		MaxQuestionLen: 140,
		MinPlaceholder: 1500 * time.Millisecond,
		LazyFallback:   2 * time.Second,
		LazyMarginRows: 4,
		ImagesDir:      t.TempDir(),
	}
	kv := store.NewMemory()
	qa := qna.New(kv, qna.Options{UserLimit: cfg.UserLimit, DeviceLimit: cfg.DeviceLimit, MaxTextLen: cfg.MaxQuestionLen})
	m := newAppModel(cfg, roster, kv, qa, "")
	m.width = 80
	m.height = 30
	m.seenWindowSize = true
	return m
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func apply(t *testing.T, m appModel, msgs ...tea.Msg) appModel {
	t.Helper()
	var mod tea.Model = m
	for _, msg := range msgs {
		mod, _ = mod.(appModel).Update(msg)
	}
	return mod.(appModel)
}

func TestFirstArrowPressActivatesNavigation(t *testing.T) {
	m := newTestApp(t, testDeck())
	if m.engine.Active() {
		t.Fatal("navigation active before any key press")
	}

	m = apply(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if !m.engine.Active() {
		t.Fatal("down arrow did not activate navigation")
	}
	// The seed is the most-centered visible unit, not a step.
	if m.engine.FocusIndex() != 2 {
		t.Fatalf("seed index = %d, want 2 (Performers heading)", m.engine.FocusIndex())
	}

	m = apply(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown})
	u, ok := m.engine.Focused()
	if !ok || u.Entity != "Ben Band" {
		t.Fatalf("after two steps focused = %+v, %v", u, ok)
	}
}

func TestEnterFlipsFocusedCardAndEscCloses(t *testing.T) {
	m := newTestApp(t, testDeck())
	m.engine.Activate(1) // Mia Moderator

	m = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	open, ok := m.machine.Current()
	if !ok || open.Entity != "Mia Moderator" {
		t.Fatalf("open = %+v, %v", open, ok)
	}
	if open.State != card.StateFlippedForward {
		t.Fatalf("state = %v, want flipped-forward", open.State)
	}

	m = apply(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.machine.IsOpen() {
		t.Fatal("esc did not close the card")
	}
	if m.questionInput.Value() != "" {
		t.Fatal("closing did not reset the form")
	}
}

func TestBFlipsBackward(t *testing.T) {
	m := newTestApp(t, testDeck())
	m.engine.Activate(1)

	m = apply(t, m, keyRune('b'))
	open, _ := m.machine.Current()
	if open.State != card.StateFlippedBackward {
		t.Fatalf("state = %v, want flipped-backward", open.State)
	}
}

func TestEnterOnHeadingDoesNotFlip(t *testing.T) {
	m := newTestApp(t, testDeck())
	m.engine.Activate(0)

	m = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.machine.IsOpen() {
		t.Fatal("heading opened a card")
	}
}

func TestOpenCardRestoresDraft(t *testing.T) {
	m := newTestApp(t, testDeck())
	m.qa.SaveDraft(context.Background(), "Mia Moderator", model.Draft{Text: "saved text", Submitter: "Sam"})

	m.openCardAt("Mia Moderator", card.StateFlippedForward)
	if got := m.questionInput.Value(); got != "saved text" {
		t.Fatalf("question = %q", got)
	}
	if got := m.nameInput.Value(); got != "Sam" {
		t.Fatalf("name = %q", got)
	}
}

func TestTypingIntoFormSavesDraft(t *testing.T) {
	m := newTestApp(t, testDeck())
	m.openCardAt("Mia Moderator", card.StateFlippedForward)

	m = apply(t, m, keyRune('h'), keyRune('i'))
	d := m.qa.Draft(context.Background(), "Mia Moderator")
	if d.Text != "hi" {
		t.Fatalf("draft = %+v", d)
	}
}

func TestSubmitShowsSuccessAndClearsDraft(t *testing.T) {
	m := newTestApp(t, testDeck())
	m.openCardAt("Mia Moderator", card.StateFlippedForward)
	m.questionInput.SetValue("What is next?")
	m.nameInput.SetValue("Sam")
	m.setFormFocus(formFocusSubmit)

	m = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	open, _ := m.machine.Current()
	if !open.ShowingSuccess {
		t.Fatal("success overlay not shown")
	}
	qs := m.qa.List(context.Background(), "Mia Moderator")
	if len(qs) != 1 || qs[0].Submitter != "Sam" {
		t.Fatalf("stored = %+v", qs)
	}
	if !m.qa.Draft(context.Background(), "Mia Moderator").Empty() {
		t.Fatal("draft survived a successful submit")
	}
	if m.questionInput.Value() != "" {
		t.Fatal("form not reset after submit")
	}

	// Dismissing the acknowledgement closes the card.
	m = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.machine.IsOpen() {
		t.Fatal("card still open after dismissing success")
	}
}

func TestSubmitEmptyQuestionIsNoop(t *testing.T) {
	m := newTestApp(t, testDeck())
	m.openCardAt("Mia Moderator", card.StateFlippedForward)
	m.setFormFocus(formFocusSubmit)

	m = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	open, _ := m.machine.Current()
	if open.ShowingSuccess {
		t.Fatal("empty question produced a success overlay")
	}
	if len(m.qa.List(context.Background(), "Mia Moderator")) != 0 {
		t.Fatal("empty question stored")
	}
}

func TestRateLimitModalKeepsDraft(t *testing.T) {
	m := newTestApp(t, testDeck())
	ctx := context.Background()

	// Two submissions exhaust Sam's quota; deleting one does not refund it,
	// so the form is reachable again with the quota still spent.
	q1, err := m.qa.Submit(ctx, "Mia Moderator", "first", "Sam", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.qa.Submit(ctx, "Mia Moderator", "second", "Sam", ""); err != nil {
		t.Fatal(err)
	}
	m.qa.Remove(ctx, "Mia Moderator", q1.ID)

	m.openCardAt("Mia Moderator", card.StateFlippedForward)
	m.questionInput.SetValue("third")
	m.nameInput.SetValue("Sam")
	m.setFormFocus(formFocusSubmit)

	m = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.modal != modalRateLimit {
		t.Fatalf("modal = %v, want rate limit", m.modal)
	}
	if !strings.Contains(m.rateLimitText, "already submitted 2 questions") {
		t.Fatalf("modal text = %q", m.rateLimitText)
	}
	if m.questionInput.Value() != "third" {
		t.Fatal("rate limit discarded the typed question")
	}

	m = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.modal != modalNone {
		t.Fatal("enter did not dismiss the modal")
	}
	if !m.machine.IsOpen() {
		t.Fatal("dismissing the modal closed the card")
	}
}

func TestLimitFaceDeleteFlow(t *testing.T) {
	m := newTestApp(t, testDeck())
	ctx := context.Background()
	if _, err := m.qa.Submit(ctx, "Mia Moderator", "first", "Sam", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := m.qa.Submit(ctx, "Mia Moderator", "second", "Alex", ""); err != nil {
		t.Fatal(err)
	}

	m.openCardAt("Mia Moderator", card.StateFlippedForward)

	// Picking a slot arms the confirm modal with Cancel preselected.
	m = apply(t, m, keyRune('1'))
	if m.modal != modalConfirmDelete {
		t.Fatalf("modal = %v", m.modal)
	}
	if m.confirmFocus != confirmFocusCancel {
		t.Fatal("confirm modal should default to Cancel")
	}
	m = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if len(m.qa.List(ctx, "Mia Moderator")) != 2 {
		t.Fatal("cancel deleted a question")
	}

	m = apply(t, m, keyRune('2'), tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyEnter})
	qs := m.qa.List(ctx, "Mia Moderator")
	if len(qs) != 1 || qs[0].Text != "first" {
		t.Fatalf("remaining = %+v", qs)
	}
}

func TestCtrlDTargetsTheStoredQuestion(t *testing.T) {
	m := newTestApp(t, testDeck())
	stored, err := m.qa.Submit(context.Background(), "Mia Moderator", "only one", "Sam", "")
	if err != nil {
		t.Fatal(err)
	}

	m.openCardAt("Mia Moderator", card.StateFlippedForward)
	m = apply(t, m, tea.KeyMsg{Type: tea.KeyCtrlD})
	if m.modal != modalConfirmDelete || m.deleteTargetID != stored.ID {
		t.Fatalf("modal = %v target = %q", m.modal, m.deleteTargetID)
	}
}

func TestHelpModalOpensAndCloses(t *testing.T) {
	m := newTestApp(t, testDeck())
	m = apply(t, m, keyRune('?'))
	if m.modal != modalHelp {
		t.Fatalf("modal = %v", m.modal)
	}
	m = apply(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.modal != modalNone {
		t.Fatal("esc did not close help")
	}
}

func TestQQuitsWhileBrowsing(t *testing.T) {
	m := newTestApp(t, testDeck())
	_, cmd := m.Update(keyRune('q'))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q did not quit")
	}
}

func TestQTypesIntoOpenForm(t *testing.T) {
	m := newTestApp(t, testDeck())
	m.openCardAt("Mia Moderator", card.StateFlippedForward)

	mod, _ := m.Update(keyRune('q'))
	m2 := mod.(appModel)
	if !m2.machine.IsOpen() {
		t.Fatal("q closed the open card")
	}
	if m2.questionInput.Value() != "q" {
		t.Fatalf("question = %q, want the typed rune", m2.questionInput.Value())
	}
}

func TestEscDeactivatesNavigation(t *testing.T) {
	m := newTestApp(t, testDeck())
	m.engine.Activate(1)
	m = apply(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.engine.Active() {
		t.Fatal("esc did not clear keyboard navigation")
	}
}
