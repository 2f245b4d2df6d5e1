package activity

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// classifier maps a substring of the stored vocabulary to a display category.
// The table is ordered; the first match wins.
type classifier struct {
	substr   string
	category Category
}

var classifiers = []classifier{
	{"task", CategoryTask},
	{"todo", CategoryTask},
	{"invoice", CategoryInvoice},
	{"expense", CategoryExpense},
	{"receipt", CategoryExpense},
	{"rent", CategoryRent},
	{"lease", CategoryRent},
	{"note", CategoryNote},
	{"document", CategoryDocument},
	{"file", CategoryDocument},
	{"upload", CategoryDocument},
	{"contact", CategoryContact},
	{"collaborat", CategoryCollaboration},
	{"member", CategoryCollaboration},
	{"invite", CategoryCollaboration},
	{"share", CategoryCollaboration},
	{"estate", CategoryEstate},
	{"tenant", CategoryEstate},
}

// NormalizeCategory classifies a stored event into the display vocabulary.
// The subject type is the strongest signal, then the stored category, then
// the action. Events nothing matches fall back to CategoryOther.
func NormalizeCategory(e *Event) Category {
	if e.SubjectType != nil {
		if c, ok := classify(*e.SubjectType); ok {
			return c
		}
	}
	if c, ok := classify(e.Category); ok {
		return c
	}
	if c, ok := classify(e.Action); ok {
		return c
	}
	return CategoryOther
}

func classify(s string) (Category, bool) {
	s = strings.ToLower(s)
	for _, c := range classifiers {
		if strings.Contains(s, c.substr) {
			return c.category, true
		}
	}
	return "", false
}

var tones = map[Category]Tone{
	CategoryInvoice:       ToneSuccess,
	CategoryRent:          ToneSuccess,
	CategoryCollaboration: ToneSuccess,
	CategoryExpense:       ToneWarning,
	CategoryEstate:        ToneAlert,
}

// ToneFor returns the display tone for a category. Categories without an
// explicit tone render neutral.
func ToneFor(c Category) Tone {
	if t, ok := tones[c]; ok {
		return t
	}
	return ToneNeutral
}

var hrefSegments = map[Category]string{
	CategoryTask:          "tasks",
	CategoryInvoice:       "invoices",
	CategoryExpense:       "expenses",
	CategoryRent:          "rent",
	CategoryNote:          "notes",
	CategoryDocument:      "documents",
	CategoryContact:       "contacts",
	CategoryCollaboration: "members",
}

// HrefFor builds the navigation target for an event. Events with a subject in
// a routable category link to the subject page; everything else links to the
// estate overview.
func HrefFor(e *Event, c Category) string {
	if e.SubjectID != nil && *e.SubjectID != "" {
		if seg, ok := hrefSegments[c]; ok {
			return fmt.Sprintf("/estates/%s/%s/%s", e.EstateID, seg, *e.SubjectID)
		}
	}
	return fmt.Sprintf("/estates/%s", e.EstateID)
}

// Present maps a stored event to its display form. Presentation is pure: it
// reads only the event and never fails.
func Present(e *Event) Presented {
	category := NormalizeCategory(e)

	label := strings.TrimSpace(e.Message)
	sublabel := ""
	if label == "" {
		label = deriveLabel(category, e.Action)
	} else if action := humanize(e.Action); action != "" {
		sublabel = upperFirst(action)
	}

	badge := string(category)
	if category == CategoryOther {
		badge = humanize(e.Action)
	}

	return Presented{
		ID:        e.ID,
		Timestamp: e.CreatedAt,
		Label:     label,
		Sublabel:  sublabel,
		Href:      HrefFor(e, category),
		Tone:      ToneFor(category),
		Badge:     badge,
	}
}

// deriveLabel builds a label for events recorded without a message.
func deriveLabel(c Category, action string) string {
	if a := humanize(action); a != "" {
		return upperFirst(a)
	}
	if c != CategoryOther {
		return upperFirst(string(c)) + " updated"
	}
	return "Activity"
}

// humanize turns a stored vocabulary token into display text:
// "invoice_paid" becomes "invoice paid".
func humanize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	return strings.Join(strings.Fields(s), " ")
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
