package cli

import (
	"condeck/internal/model"
	"condeck/internal/nav"

	"github.com/spf13/cobra"
)

func newGuestsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guests",
		Short: "Inspect the guest roster",
	}
	cmd.AddCommand(newGuestsListCmd(app))
	cmd.AddCommand(newGuestsSectionsCmd(app))
	return cmd
}

func newGuestsListCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List visible guests in feed order",
		RunE: func(cmd *cobra.Command, args []string) error {
			roster, err := loadRoster(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			entities := roster.Visible()
			if all {
				entities = roster.Entities
			}
			out := make([]map[string]any, 0, len(entities))
			for _, e := range entities {
				out = append(out, guestRow(e))
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"event":   roster.Event.Name,
					"guests":  out,
					"skipped": roster.Skipped,
				},
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Include hidden guests")
	return cmd
}

func newGuestsSectionsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sections",
		Short: "Show the rendered section layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			roster, err := loadRoster(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			var out []map[string]any
			for _, sec := range roster.Sections() {
				row := map[string]any{"title": sec.Section.Title()}
				if sec.Section == nav.SectionPerformers {
					var days []map[string]any
					for _, dg := range sec.Days {
						days = append(days, map[string]any{
							"label": dg.Label,
							"cards": names(dg.Entities),
						})
					}
					row["days"] = days
				} else {
					row["cards"] = names(sec.Cards)
				}
				out = append(out, row)
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
	return cmd
}

func guestRow(e model.Entity) map[string]any {
	row := map[string]any{
		"name":     e.Name,
		"projects": e.Projects,
		"roles":    e.Roles,
		"visible":  e.Visible,
	}
	if e.Day != nil {
		row["day"] = *e.Day
	}
	if e.Order != nil {
		row["order"] = *e.Order
	}
	return row
}

func names(es []model.Entity) []string {
	out := make([]string, 0, len(es))
	for _, e := range es {
		out = append(out, e.Name)
	}
	return out
}
