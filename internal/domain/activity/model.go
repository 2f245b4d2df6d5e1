package activity

import (
	"encoding/json"
	"time"
)

// Category is the normalized display vocabulary for feed entries. Events carry
// free-form category/action strings at write time and are classified into this
// vocabulary when read back.
type Category string

const (
	CategoryTask          Category = "task"
	CategoryInvoice       Category = "invoice"
	CategoryExpense       Category = "expense"
	CategoryRent          Category = "rent"
	CategoryNote          Category = "note"
	CategoryDocument      Category = "document"
	CategoryContact       Category = "contact"
	CategoryCollaboration Category = "collaboration"
	CategoryEstate        Category = "estate"
	CategoryOther         Category = "other"
)

// Tone is the visual tone of a presented feed entry.
type Tone string

const (
	ToneNeutral Tone = "neutral"
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneAlert   Tone = "alert"
)

// Event is one immutable row of the activity log. Rows are only ever appended;
// (CreatedAt, ID) is the sole sort and pagination key.
type Event struct {
	ID          int64           `json:"id"`
	EstateID    string          `json:"estate_id"`
	Category    string          `json:"category,omitempty"`
	Action      string          `json:"action,omitempty"`
	Message     string          `json:"message,omitempty"`
	SubjectID   *string         `json:"subject_id,omitempty"`
	SubjectType *string         `json:"subject_type,omitempty"`
	Detail      json.RawMessage `json:"detail,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Presented is a feed entry shaped for display, derived entirely from the
// stored event.
type Presented struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Label     string    `json:"label"`
	Sublabel  string    `json:"sublabel,omitempty"`
	Href      string    `json:"href"`
	Tone      Tone      `json:"tone"`
	Badge     string    `json:"badge,omitempty"`
}

// Page is one slice of a feed, newest first. NextCursor is empty on the final
// page.
type Page struct {
	Items      []Presented `json:"items"`
	NextCursor string      `json:"next_cursor,omitempty"`
}
