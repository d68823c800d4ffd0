package tui

import (
	"fmt"
	"strings"
	"testing"

	"condeck/internal/feed"
	"condeck/internal/lazy"
	"condeck/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

// bigDeck is one long panelist section: ten cards, five rows in two columns,
// enough to push the bottom rows past the proximity margin.
func bigDeck() feed.Roster {
	r := feed.Roster{Event: feed.Event{Name: "Test Con"}}
	for i := 1; i <= 10; i++ {
		r.Entities = append(r.Entities, model.Entity{
			Name:     fmt.Sprintf("Guest %02d", i),
			Roles:    []model.Role{model.RolePanelist},
			Visible:  true,
			ImageURL: fmt.Sprintf("guest%02d.webp", i),
		})
	}
	return r
}

func TestResizeStartsNearbyPortraitsOnly(t *testing.T) {
	m := newTestApp(t, bigDeck())
	m = apply(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})

	if got := m.loader.Status("guest01.webp"); got != lazy.StatusLoading {
		t.Fatalf("first row = %v, want loading", got)
	}
	// The last row sits past viewport + margin and must stay untouched.
	if got := m.loader.Status("guest09.webp"); got != lazy.StatusPlaceholder {
		t.Fatalf("last row = %v, want placeholder", got)
	}
}

func TestScrollingReachesTheRemainingPortraits(t *testing.T) {
	m := newTestApp(t, bigDeck())
	m = apply(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})
	m = apply(t, m, tea.KeyMsg{Type: tea.KeyPgDown})

	if got := m.loader.Status("guest09.webp"); got != lazy.StatusLoading {
		t.Fatalf("after scroll = %v, want loading", got)
	}
}

func TestFallbackTimerForcesPendingLoads(t *testing.T) {
	m := newTestApp(t, bigDeck())
	m = apply(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})
	m = apply(t, m, lazyFallbackMsg{})

	if !m.loader.ForceEnabled() {
		t.Fatal("fallback did not set the force flag")
	}
	if got := m.loader.Status("guest09.webp"); got != lazy.StatusLoading {
		t.Fatalf("pending portrait = %v, want loading", got)
	}
}

func TestLoadCompletionWaitsOutMinimumDisplay(t *testing.T) {
	m := newTestApp(t, bigDeck())
	m = apply(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})

	// The load finished almost instantly, so the swap is deferred until the
	// placeholder has been shown long enough.
	m = apply(t, m, imageLoadedMsg{src: "guest01.webp", ok: true})
	if got := m.loader.Status("guest01.webp"); got != lazy.StatusLoading {
		t.Fatalf("status = %v, swap should be deferred", got)
	}

	m = apply(t, m, imageSwapMsg{src: "guest01.webp"})
	if got := m.loader.Status("guest01.webp"); got != lazy.StatusLoaded {
		t.Fatalf("status = %v after swap", got)
	}
}

func TestFailedLoadRendersFallbackText(t *testing.T) {
	m := newTestApp(t, bigDeck())
	m = apply(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})
	m = apply(t, m, imageLoadedMsg{src: "guest01.webp", ok: false}, imageSwapMsg{src: "guest01.webp"})

	if got := m.loader.Status("guest01.webp"); got != lazy.StatusFailed {
		t.Fatalf("status = %v, want failed", got)
	}
	e, _ := m.roster.Find("Guest 01")
	if !strings.Contains(strings.Join(m.renderPortrait(e, 30), "\n"), "photo coming soon") {
		t.Fatal("fallback text missing from portrait")
	}
}
