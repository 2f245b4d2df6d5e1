package activity

import "context"

// EventRepository provides append and keyset-page access to the event log.
type EventRepository interface {
	Insert(ctx context.Context, event *Event) error
	PageByEstates(ctx context.Context, estateIDs []string, before Cursor, limit int) ([]Event, error)
}

// MembershipRepository resolves which estates a user can see.
type MembershipRepository interface {
	EstatesForUser(ctx context.Context, userID string) ([]string, error)
}
