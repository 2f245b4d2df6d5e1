package server

import (
	"time"

	"github.com/estateline/activitylog/internal/domain/estate"
)

// AppendEventRequest is the payload for recording a new activity event.
type AppendEventRequest struct {
	EstateID    string         `json:"estate_id" doc:"Estate the event belongs to" example:"6ba7b810-9dad-11d1-80b4-00c04fd430c8"`
	Category    string         `json:"category,omitempty" doc:"Event category, derived from action when omitted" example:"invoice"`
	Action      string         `json:"action,omitempty" doc:"Machine-readable action name" example:"invoice_paid"`
	Message     string         `json:"message,omitempty" doc:"Human-readable summary"`
	SubjectID   string         `json:"subject_id,omitempty" doc:"Identifier of the entity the event is about"`
	SubjectType string         `json:"subject_type,omitempty" doc:"Entity type of the subject" example:"invoice"`
	Detail      map[string]any `json:"detail,omitempty" doc:"Free-form structured payload"`
}

// EventCreatedResponse reports the id assigned to an appended event.
type EventCreatedResponse struct {
	ID int64 `json:"id" example:"42"`
}

// CreateEstateRequest is the payload for registering an estate.
type CreateEstateRequest struct {
	ID      string `json:"id,omitempty" doc:"Optional client-supplied UUID" example:"6ba7b810-9dad-11d1-80b4-00c04fd430c8"`
	Name    string `json:"name" minLength:"1" doc:"Display name of the estate"`
	Address string `json:"address,omitempty" doc:"Street address"`
}

// ShareEstateRequest grants another user access to an estate.
type ShareEstateRequest struct {
	UserID string `json:"user_id" minLength:"1" doc:"User to grant access to"`
	Role   string `json:"role,omitempty" enum:"owner,collaborator" doc:"Role to grant, collaborator when omitted"`
}

// EstateResponse is the full representation of an estate.
type EstateResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// EstateSummaryResponse is one row of the caller's estate listing.
type EstateSummaryResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Role    string `json:"role" enum:"owner,collaborator"`
}

// MemberResponse describes a granted estate membership.
type MemberResponse struct {
	EstateID string    `json:"estate_id"`
	UserID   string    `json:"user_id"`
	Role     string    `json:"role"`
	AddedAt  time.Time `json:"added_at"`
}

func estateResponse(est *estate.Estate) EstateResponse {
	return EstateResponse{
		ID:        est.ID,
		Name:      est.Name,
		Address:   est.Address,
		OwnerID:   est.OwnerID,
		CreatedAt: est.CreatedAt,
	}
}

func summaryResponses(items []estate.Summary) []EstateSummaryResponse {
	out := make([]EstateSummaryResponse, 0, len(items))
	for _, s := range items {
		out = append(out, EstateSummaryResponse{
			ID:      s.ID,
			Name:    s.Name,
			Address: s.Address,
			Role:    string(s.Role),
		})
	}
	return out
}

func memberResponse(m *estate.Member) MemberResponse {
	return MemberResponse{
		EstateID: m.EstateID,
		UserID:   m.UserID,
		Role:     string(m.Role),
		AddedAt:  m.AddedAt,
	}
}
