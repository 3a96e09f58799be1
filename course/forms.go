/*
forms.go - Free-text normalization at the data-entry boundary

PURPOSE:
  Historical course records store the administration form and status as
  free text, in more than one language ("Инъекция", "Injection",
  "таблетки", ...). These are normalized to the closed engine enums
  exactly once, here, when a record is deserialized. Read paths never
  substring-match free text again.

TOKEN TABLES:
  Matching is case-insensitive substring over language-specific tokens.
  Unrecognized form strings map to ClassOther (the original text is kept
  on the compound label); unrecognized statuses default to Active, which
  matches how legacy records behaved.

SEE ALSO:
  - factory.go: Calls these during record deserialization
  - engine/types.go: The closed enums
*/
package course

import (
	"strings"

	"github.com/doseplan/course-engine/engine"
)

// formTokens maps lowercase substrings to administration classes. Order
// matters only across entries with overlapping tokens; none overlap here.
var formTokens = []struct {
	token string
	class engine.AdministrationClass
}{
	// English
	{"inject", engine.ClassInjection},
	{"tablet", engine.ClassTablet},
	{"pill", engine.ClassTablet},
	{"capsule", engine.ClassCapsule},
	{"gel", engine.ClassGel},
	{"patch", engine.ClassPatch},
	// Russian (stems cover case endings: "инъекция", "инъекции", ...)
	{"инъекц", engine.ClassInjection},
	{"укол", engine.ClassInjection},
	{"таблет", engine.ClassTablet},
	{"капсул", engine.ClassCapsule},
	{"гель", engine.ClassGel},
	{"пластыр", engine.ClassPatch},
}

// NormalizeForm maps a free-text form string to an administration class.
// Unrecognized strings pass through as ClassOther.
func NormalizeForm(form string) engine.AdministrationClass {
	lowered := strings.ToLower(strings.TrimSpace(form))
	if lowered == "" {
		return engine.ClassOther
	}
	for _, ft := range formTokens {
		if strings.Contains(lowered, ft.token) {
			return ft.class
		}
	}
	return engine.ClassOther
}

// statusTokens maps lowercase substrings to course statuses.
var statusTokens = []struct {
	token  string
	status engine.CourseStatus
}{
	{"pause", engine.StatusPaused},
	{"пауз", engine.StatusPaused},
	{"complet", engine.StatusCompleted},
	{"заверш", engine.StatusCompleted},
	{"cancel", engine.StatusCancelled},
	{"отмен", engine.StatusCancelled},
	{"active", engine.StatusActive},
	{"актив", engine.StatusActive},
}

// NormalizeStatus maps a free-text status string to a course status.
// Unrecognized or empty strings default to Active.
func NormalizeStatus(status string) engine.CourseStatus {
	lowered := strings.ToLower(strings.TrimSpace(status))
	for _, st := range statusTokens {
		if strings.Contains(lowered, st.token) {
			return st.status
		}
	}
	return engine.StatusActive
}
