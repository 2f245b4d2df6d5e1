package activity_test

import (
	"testing"
	"time"

	"github.com/estateline/activitylog/internal/domain/activity"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		name        string
		subjectType *string
		category    string
		action      string
		want        activity.Category
	}{
		{"subject type wins", strPtr("Invoice"), "task", "created", activity.CategoryInvoice},
		{"stored category", nil, "rent_payment", "created", activity.CategoryRent},
		{"action fallback", nil, "billing", "document_uploaded", activity.CategoryDocument},
		{"todo is a task", strPtr("TodoItem"), "", "", activity.CategoryTask},
		{"receipt is an expense", nil, "receipt", "", activity.CategoryExpense},
		{"lease is rent", nil, "", "lease_signed", activity.CategoryRent},
		{"collaborator", strPtr("Collaborator"), "", "", activity.CategoryCollaboration},
		{"tenant maps to estate", nil, "tenant_moved_in", "", activity.CategoryEstate},
		{"unknown falls back", nil, "billing", "phone_call", activity.CategoryOther},
		{"empty event", nil, "", "", activity.CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &activity.Event{
				SubjectType: tt.subjectType,
				Category:    tt.category,
				Action:      tt.action,
			}
			require.Equal(t, tt.want, activity.NormalizeCategory(e))
		})
	}
}

func TestPresentLinksSubject(t *testing.T) {
	e := &activity.Event{
		ID:          9,
		EstateID:    "11111111-2222-3333-4444-555555555555",
		Category:    "rent",
		Action:      "rent_recorded",
		Message:     "Rent received for March",
		SubjectID:   strPtr("pay-1"),
		SubjectType: strPtr("RentPayment"),
		CreatedAt:   time.UnixMicro(1764003000000000).UTC(),
	}

	p := activity.Present(e)
	require.Equal(t, int64(9), p.ID)
	require.Equal(t, "Rent received for March", p.Label)
	require.Equal(t, "Rent recorded", p.Sublabel)
	require.Equal(t, "/estates/11111111-2222-3333-4444-555555555555/rent/pay-1", p.Href)
	require.Equal(t, activity.ToneSuccess, p.Tone)
	require.Equal(t, "rent", p.Badge)
	require.True(t, p.Timestamp.Equal(e.CreatedAt))
}

func TestPresentFallbackHref(t *testing.T) {
	estateID := "11111111-2222-3333-4444-555555555555"

	// No subject id: link to the estate overview.
	p := activity.Present(&activity.Event{EstateID: estateID, Category: "note"})
	require.Equal(t, "/estates/"+estateID, p.Href)

	// Subject present but category has no routable page.
	p = activity.Present(&activity.Event{
		EstateID:  estateID,
		Category:  "billing",
		Action:    "phone_call",
		SubjectID: strPtr("x-1"),
	})
	require.Equal(t, "/estates/"+estateID, p.Href)
}

func TestPresentDerivedLabels(t *testing.T) {
	// No message: the humanized action becomes the label.
	p := activity.Present(&activity.Event{Category: "invoice", Action: "invoice_paid"})
	require.Equal(t, "Invoice paid", p.Label)
	require.Empty(t, p.Sublabel)
	require.Equal(t, "invoice", p.Badge)

	// No message and no action.
	p = activity.Present(&activity.Event{Category: "note"})
	require.Equal(t, "Note updated", p.Label)

	// Nothing to go on at all.
	p = activity.Present(&activity.Event{})
	require.Equal(t, "Activity", p.Label)
	require.Equal(t, activity.ToneNeutral, p.Tone)
	require.Empty(t, p.Badge)
}

func TestPresentUnicodeAction(t *testing.T) {
	// The vocabulary is free-form; upper-casing must not split a leading
	// multi-byte rune.
	p := activity.Present(&activity.Event{Action: "überweisung_erhalten"})
	require.Equal(t, "Überweisung erhalten", p.Label)
	require.Equal(t, "überweisung erhalten", p.Badge)

	p = activity.Present(&activity.Event{Message: "Miete für März", Action: "überweisung_erhalten"})
	require.Equal(t, "Überweisung erhalten", p.Sublabel)
}

func TestPresentOtherBadge(t *testing.T) {
	p := activity.Present(&activity.Event{Action: "phone_call", Message: "Called the plumber"})
	require.Equal(t, "phone call", p.Badge)
	require.Equal(t, "Called the plumber", p.Label)
	require.Equal(t, "Phone call", p.Sublabel)
}

func TestToneFor(t *testing.T) {
	require.Equal(t, activity.ToneSuccess, activity.ToneFor(activity.CategoryInvoice))
	require.Equal(t, activity.ToneSuccess, activity.ToneFor(activity.CategoryRent))
	require.Equal(t, activity.ToneSuccess, activity.ToneFor(activity.CategoryCollaboration))
	require.Equal(t, activity.ToneWarning, activity.ToneFor(activity.CategoryExpense))
	require.Equal(t, activity.ToneAlert, activity.ToneFor(activity.CategoryEstate))
	require.Equal(t, activity.ToneNeutral, activity.ToneFor(activity.CategoryTask))
	require.Equal(t, activity.ToneNeutral, activity.ToneFor(activity.CategoryOther))
}
