package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type countdownTickMsg struct{}

type lazyFallbackMsg struct{}

type imageLoadedMsg struct {
	src string
	ok  bool
}

type imageSwapMsg struct{ src string }

type modalKind int

const (
	modalNone modalKind = iota
	modalRateLimit
	modalConfirmDelete
	modalHelp
)

type formFocus int

const (
	formFocusQuestion formFocus = iota
	formFocusName
	formFocusEmail
	formFocusSubmit
)

type confirmModalFocus int

const (
	confirmFocusConfirm confirmModalFocus = iota
	confirmFocusCancel
)

type inputDebug struct {
	lastAt   time.Time
	lastType string
	lastStr  string
}

func (m appModel) debugKeyMsg(k tea.KeyMsg) {
	if !m.debugEnabled {
		return
	}
	if m.debugLogPath == "" {
		return
	}
	(&m).debugLogf(
		"key modal=%d open=%v nav=%v focus=%d str=%q type=%v alt=%v runes=%q",
		int(m.modal),
		m.machine.IsOpen(),
		m.engine.Active(),
		int(m.formFocus),
		k.String(),
		k.Type,
		k.Alt,
		string(k.Runes),
	)
}

func (m *appModel) closeAllModals() {
	if m == nil {
		return
	}
	m.modal = modalNone
	m.rateLimitText = ""
	m.deleteTargetID = ""
	m.confirmFocus = confirmFocusConfirm
}
