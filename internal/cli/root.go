package cli

import (
	"fmt"
	"os"
	"strings"

	"condeck/internal/config"
	"condeck/internal/feed"
	"condeck/internal/format"
	"condeck/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	GuestsFile string
	SinkURL    string
	PrettyJSON bool
	Format     string

	cfg config.Config
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "condeck",
		Short:        "Convention guest deck TUI + CLI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive deck
  condeck

  # Scriptable commands
  condeck guests list

  # Check a built bundle against the roster
  condeck verify dist/assets/guests-abc123.js
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		// Flags win over environment.
		if app.Dir != "" {
			cfg.Dir = app.Dir
		}
		if app.GuestsFile != "" {
			cfg.GuestsFile = app.GuestsFile
		}
		if app.SinkURL != "" {
			cfg.SinkURL = app.SinkURL
		}
		app.cfg = cfg
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("CONDECK_DIR", ""), "Path to the question store dir (default: ~/.condeck)")
	cmd.PersistentFlags().StringVar(&app.GuestsFile, "guests", envOr("CONDECK_GUESTS", ""), "Roster file (yaml|json; default: embedded roster)")
	cmd.PersistentFlags().StringVar(&app.SinkURL, "sink", envOr("CONDECK_SINK_URL", ""), "Notification endpoint URL (empty disables)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("CONDECK_FORMAT", "json"), "Output format (json|yaml)")

	cmd.AddCommand(newGuestsCmd(app))
	cmd.AddCommand(newVerifyCmd(app))
	cmd.AddCommand(newResetCmd(app))

	return cmd
}

func runTUI(app *App) error {
	roster, err := loadRoster(app)
	if err != nil {
		return err
	}
	return tui.Run(app.cfg, roster)
}

func loadRoster(app *App) (feed.Roster, error) {
	if app.cfg.GuestsFile == "" {
		return feed.Default(), nil
	}
	return feed.Load(app.cfg.GuestsFile)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
