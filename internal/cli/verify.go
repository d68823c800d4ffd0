package cli

import (
	"errors"

	"condeck/internal/verify"

	"github.com/spf13/cobra"
)

func newVerifyCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <bundle>",
		Short: "Verify a built bundle against the roster before deployment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roster, err := loadRoster(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			rep, err := verify.Bundle(roster, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}

			if err := writeOut(cmd, app, map[string]any{
				"data": rep,
				"ok":   rep.OK(),
			}); err != nil {
				return err
			}
			if !rep.OK() {
				// Non-zero exit so deploy pipelines stop on a bad bundle.
				return writeErr(cmd, errors.New("bundle verification failed"))
			}
			return nil
		},
	}
	return cmd
}
