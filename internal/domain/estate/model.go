package estate

import "time"

// Role is a user's relationship to an estate.
type Role string

const (
	RoleOwner        Role = "owner"
	RoleCollaborator Role = "collaborator"
)

// Estate represents one property under management.
type Estate struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Member grants a user access to an estate owned by someone else.
type Member struct {
	EstateID string    `json:"estate_id"`
	UserID   string    `json:"user_id"`
	Role     Role      `json:"role"`
	AddedAt  time.Time `json:"added_at"`
}

// Summary is a lightweight representation for listing a user's estates.
type Summary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Role    Role   `json:"role"`
}
