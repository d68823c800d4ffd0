// Package verify checks a built site bundle against the roster before
// deployment: every visible guest must appear in the bundle, and a guest
// hidden in the roster must not ship marked visible.
package verify

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"condeck/internal/feed"
)

// staleBuild is the build-age threshold for the rebuild advisory.
const staleBuild = 5 * time.Minute

// Report is the outcome of one verification run.
type Report struct {
	Bundle string `json:"bundle"`

	VisibleChecked int `json:"visibleChecked"`
	HiddenChecked  int `json:"hiddenChecked"`

	// MissingVisible lists visible roster names absent from the bundle.
	MissingVisible []string `json:"missingVisible,omitempty"`
	// LeakedHidden lists hidden roster names the bundle marks visible.
	LeakedHidden []string `json:"leakedHidden,omitempty"`

	// Warnings are advisory findings that do not fail the run.
	Warnings []string `json:"warnings,omitempty"`

	BuildAgeMs int64 `json:"buildAgeMs"`
}

// OK reports whether the bundle passed every hard check.
func (r Report) OK() bool {
	return len(r.MissingVisible) == 0 && len(r.LeakedHidden) == 0
}

// Bundle verifies the built bundle at path against the roster.
func Bundle(roster feed.Roster, path string) (Report, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("read bundle: %w", err)
	}
	rep := inspect(roster, string(content))
	rep.Bundle = path

	if st, err := os.Stat(path); err == nil {
		age := time.Since(st.ModTime())
		rep.BuildAgeMs = age.Milliseconds()
		if age >= staleBuild {
			rep.Warnings = append(rep.Warnings,
				fmt.Sprintf("bundle is %d minutes old, consider rebuilding", int(age.Minutes())))
		}
	}
	return rep, nil
}

// inspect runs the content checks; split out so tests can feed bundle text
// directly.
func inspect(roster feed.Roster, content string) Report {
	var rep Report
	for _, e := range roster.Visible() {
		rep.VisibleChecked++
		if !containsName(content, e.Name) {
			rep.MissingVisible = append(rep.MissingVisible, e.Name)
		}
	}
	for _, e := range roster.Hidden() {
		rep.HiddenChecked++
		vis, found := bundleVisibility(content, e.Name)
		if found && vis {
			rep.LeakedHidden = append(rep.LeakedHidden, e.Name)
		}
	}
	return rep
}

// containsName matches the minified bundle encoding of a guest record.
func containsName(content, name string) bool {
	return regexp.MustCompile(`name:\s*"`+regexp.QuoteMeta(name)+`"`).MatchString(content)
}

// bundleVisibility extracts the visibility flag of the named record. The
// pattern stays inside one record: it stops at the next opening brace.
func bundleVisibility(content, name string) (visible, found bool) {
	re := regexp.MustCompile(`name:\s*"` + regexp.QuoteMeta(name) + `"[^{]*?visibility:\s*(0|1)`)
	m := re.FindStringSubmatch(content)
	if m == nil {
		return false, false
	}
	return m[1] == "1", true
}
