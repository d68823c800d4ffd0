package model

import (
	"strings"
	"time"
)

type Role string

const (
	RolePanelist  Role = "panelist"
	RoleModerator Role = "moderator"
	RolePerformer Role = "performer"
	RoleStaff     Role = "staff"
)

type Day string

const (
	DayFriday   Day = "Friday"
	DaySaturday Day = "Saturday"
)

// Entity is one guest/performer/moderator/staff member as supplied by the
// entity feed. Name is the storage key for all Q&A state, so the feed layer
// guarantees no two visible entities share a name.
type Entity struct {
	Name     string `json:"name"`
	Projects string `json:"projects,omitempty"`
	Roles    []Role `json:"roles,omitempty"`
	Visible  bool   `json:"visible"`

	Order *int `json:"order,omitempty"`
	Day   *Day `json:"day,omitempty"`

	ImageURL        string `json:"imageUrl,omitempty"`
	DesktopImageURL string `json:"desktopImageUrl,omitempty"`
	MobileImageURL  string `json:"mobileImageUrl,omitempty"`
}

func (e Entity) HasRole(r Role) bool {
	for _, have := range e.Roles {
		if have == r {
			return true
		}
	}
	return false
}

// FirstName returns the leading word of the entity name, used in short
// UI copy ("Ask Sam a question…").
func (e Entity) FirstName() string {
	name := strings.TrimSpace(e.Name)
	if i := strings.IndexByte(name, ' '); i > 0 {
		return name[:i]
	}
	return name
}

// SortOrder returns the explicit order, or a stable low priority when absent.
func (e Entity) SortOrder() int {
	if e.Order != nil {
		return *e.Order
	}
	return 999
}

// StoredQuestion is a persisted audience question. The json tags match the
// legacy on-disk layout so existing stored state keeps loading.
type StoredQuestion struct {
	ID        string    `json:"id"`
	Text      string    `json:"question"`
	Submitter string    `json:"submitter"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"timestamp"`
}

// Draft is the transient per-entity form state, saved on every edit and
// cleared only by a successful submission.
type Draft struct {
	Text      string `json:"question"`
	Submitter string `json:"submitter"`
	Email     string `json:"email"`
}

func (d Draft) Empty() bool {
	return d.Text == "" && d.Submitter == "" && d.Email == ""
}
