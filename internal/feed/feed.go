// Package feed loads the entity roster: an ordered list of guests,
// performers, moderators and staff from a YAML or JSON file, falling back to
// the embedded default roster.
//
// Loading is forgiving at the record level: an entry without a name, or a
// later duplicate of an already-seen name, is skipped so one bad record never
// takes down the rest of the page.
package feed

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"condeck/internal/model"
	"condeck/internal/nav"

	"gopkg.in/yaml.v3"
)

//go:embed roster.yaml
var defaultRoster []byte

// Event is display metadata carried alongside the guest list.
type Event struct {
	Name   string    `yaml:"name" json:"name"`
	Starts time.Time `yaml:"starts" json:"starts"`
	// Days maps a day key (Friday/Saturday) to its display heading.
	Days map[model.Day]string `yaml:"days" json:"days"`
}

type file struct {
	Event  Event    `yaml:"event" json:"event"`
	Guests []record `yaml:"guests" json:"guests"`
}

// record matches the feed file shape (and the legacy guests table): role is
// a comma-separated string, visibility an optional int where only an
// explicit 0 hides.
type record struct {
	Name            string `yaml:"name" json:"name"`
	Projects        string `yaml:"projects" json:"projects"`
	Role            string `yaml:"role" json:"role"`
	Day             string `yaml:"day" json:"day"`
	Order           *int   `yaml:"order" json:"order"`
	Visibility      *int   `yaml:"visibility" json:"visibility"`
	ImageURL        string `yaml:"imageUrl" json:"imageUrl"`
	DesktopImageURL string `yaml:"desktopImageUrl" json:"desktopImageUrl"`
	MobileImageURL  string `yaml:"mobileImageUrl" json:"mobileImageUrl"`
}

type Roster struct {
	Event    Event
	Entities []model.Entity
	// Skipped counts records dropped for missing or duplicate names.
	Skipped int
}

// Load reads a roster file (.yaml/.yml or .json by extension).
func Load(path string) (Roster, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Roster{}, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return parse(b, json.Unmarshal)
	case ".yaml", ".yml", "":
		return parse(b, yaml.Unmarshal)
	default:
		return Roster{}, fmt.Errorf("unsupported roster format: %s", path)
	}
}

// Default returns the embedded roster.
func Default() Roster {
	r, err := parse(defaultRoster, yaml.Unmarshal)
	if err != nil {
		// The embedded roster is compiled in; a parse failure is a build bug.
		panic(fmt.Sprintf("embedded roster: %v", err))
	}
	return r
}

func parse(b []byte, unmarshal func([]byte, any) error) (Roster, error) {
	var f file
	if err := unmarshal(b, &f); err != nil {
		return Roster{}, err
	}
	r := Roster{Event: f.Event}
	seen := map[string]bool{}
	for _, rec := range f.Guests {
		name := strings.TrimSpace(rec.Name)
		if name == "" || seen[name] {
			r.Skipped++
			continue
		}
		seen[name] = true
		r.Entities = append(r.Entities, toEntity(name, rec))
	}
	return r, nil
}

func toEntity(name string, rec record) model.Entity {
	e := model.Entity{
		Name:            name,
		Projects:        strings.TrimSpace(rec.Projects),
		Visible:         rec.Visibility == nil || *rec.Visibility != 0,
		Order:           rec.Order,
		ImageURL:        strings.TrimSpace(rec.ImageURL),
		DesktopImageURL: strings.TrimSpace(rec.DesktopImageURL),
		MobileImageURL:  strings.TrimSpace(rec.MobileImageURL),
	}
	for _, part := range strings.Split(rec.Role, ",") {
		switch model.Role(strings.ToLower(strings.TrimSpace(part))) {
		case model.RolePanelist:
			e.Roles = append(e.Roles, model.RolePanelist)
		case model.RoleModerator:
			e.Roles = append(e.Roles, model.RoleModerator)
		case model.RolePerformer:
			e.Roles = append(e.Roles, model.RolePerformer)
		case model.RoleStaff:
			e.Roles = append(e.Roles, model.RoleStaff)
		}
	}
	switch model.Day(strings.TrimSpace(rec.Day)) {
	case model.DayFriday:
		d := model.DayFriday
		e.Day = &d
	case model.DaySaturday:
		d := model.DaySaturday
		e.Day = &d
	}
	return e
}

// Visible returns the visible entities in feed order.
func (r Roster) Visible() []model.Entity {
	var out []model.Entity
	for _, e := range r.Entities {
		if e.Visible {
			out = append(out, e)
		}
	}
	return out
}

// Hidden returns the explicitly hidden entities.
func (r Roster) Hidden() []model.Entity {
	var out []model.Entity
	for _, e := range r.Entities {
		if !e.Visible {
			out = append(out, e)
		}
	}
	return out
}

func (r Roster) withRole(role model.Role) []model.Entity {
	var out []model.Entity
	for _, e := range r.Visible() {
		if e.HasRole(role) {
			out = append(out, e)
		}
	}
	return out
}

func (r Roster) Moderators() []model.Entity { return r.withRole(model.RoleModerator) }
func (r Roster) Panelists() []model.Entity  { return r.withRole(model.RolePanelist) }

// Staff returns visible staff sorted by order (missing order sorts last,
// original feed order breaking ties).
func (r Roster) Staff() []model.Entity {
	staff := r.withRole(model.RoleStaff)
	sort.SliceStable(staff, func(i, j int) bool {
		return staff[i].SortOrder() < staff[j].SortOrder()
	})
	return staff
}

// PerformerDays groups visible performers by day in fixed day order, each
// day's cards sorted by order.
func (r Roster) PerformerDays() []nav.DayGroup {
	performers := r.withRole(model.RolePerformer)
	byDay := map[model.Day][]model.Entity{}
	for _, e := range performers {
		if e.Day == nil {
			continue
		}
		byDay[*e.Day] = append(byDay[*e.Day], e)
	}
	var groups []nav.DayGroup
	for _, day := range []model.Day{model.DayFriday, model.DaySaturday} {
		es := byDay[day]
		if len(es) == 0 {
			continue
		}
		sort.SliceStable(es, func(i, j int) bool {
			return es[i].SortOrder() < es[j].SortOrder()
		})
		groups = append(groups, nav.DayGroup{Day: day, Label: r.dayLabel(day), Entities: es})
	}
	return groups
}

func (r Roster) dayLabel(day model.Day) string {
	if label, ok := r.Event.Days[day]; ok && strings.TrimSpace(label) != "" {
		return label
	}
	return strings.ToUpper(string(day))
}

// Sections returns the renderable/navigable section contents in the fixed
// traversal order.
func (r Roster) Sections() []nav.SectionContent {
	return []nav.SectionContent{
		{Section: nav.SectionModerators, Cards: r.Moderators()},
		{Section: nav.SectionPerformers, Days: r.PerformerDays()},
		{Section: nav.SectionPanelists, Cards: r.Panelists()},
		{Section: nav.SectionStaff, Cards: r.Staff()},
	}
}

// Find returns the entity with the given name.
func (r Roster) Find(name string) (model.Entity, bool) {
	for _, e := range r.Entities {
		if e.Name == name {
			return e, true
		}
	}
	return model.Entity{}, false
}
