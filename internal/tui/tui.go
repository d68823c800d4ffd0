package tui

import (
	"context"

	"condeck/internal/config"
	"condeck/internal/feed"
	"condeck/internal/qna"
	"condeck/internal/sink"
	"condeck/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

func Run(cfg config.Config, roster feed.Roster) error {
	applyColorProfilePreference()
	applyThemePreference()

	// A failed open degrades to a session-only store; the deck still works.
	kv, err := store.Store{Dir: cfg.Dir}.Open(context.Background())
	storageWarn := ""
	if err != nil {
		storageWarn = err.Error()
	}
	defer kv.Close()

	qa := qna.New(kv, qna.Options{
		UserLimit:   cfg.UserLimit,
		DeviceLimit: cfg.DeviceLimit,
		MaxTextLen:  cfg.MaxQuestionLen,
		Notifier:    sink.New(cfg.SinkURL),
	})

	m := newAppModel(cfg, roster, kv, qa, storageWarn)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
