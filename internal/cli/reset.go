package cli

import (
	"errors"

	"condeck/internal/qna"
	"condeck/internal/store"

	"github.com/spf13/cobra"
)

var errConfirmReset = errors.New("refusing to wipe question storage; pass --yes to confirm")

func newResetCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear all stored questions, drafts and submission counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return writeErr(cmd, errConfirmReset)
			}

			ctx := cmd.Context()
			kv, err := store.Store{Dir: app.cfg.Dir}.Open(ctx)
			if err != nil {
				// A memory-only KV has nothing to clear.
				return writeErr(cmd, err)
			}
			defer kv.Close()

			cleared, err := qna.New(kv, qna.Options{}).Reset(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"dir":     app.cfg.Dir,
					"cleared": cleared,
				},
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the wipe")
	return cmd
}
