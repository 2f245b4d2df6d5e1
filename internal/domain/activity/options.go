package activity

// Default and maximum feed page sizes. Requests outside these bounds are
// clamped, never rejected.
const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Limits bounds feed page sizes for one service instance.
type Limits struct {
	DefaultPageSize int
	MaxPageSize     int
}

func (l Limits) withDefaults() Limits {
	if l.DefaultPageSize <= 0 {
		l.DefaultPageSize = DefaultPageSize
	}
	if l.MaxPageSize <= 0 {
		l.MaxPageSize = MaxPageSize
	}
	return l
}

// AppendRequest carries one event to record. Category, action and message are
// stored verbatim; subject fields are optional.
type AppendRequest struct {
	EstateID    string
	Category    string
	Action      string
	Message     string
	SubjectID   string
	SubjectType string
	Detail      map[string]any
}

// ListOptions selects a feed page. An empty EstateID means every estate the
// user can see; an empty Cursor starts at the newest event.
type ListOptions struct {
	EstateID string
	Cursor   string
	Limit    int
}
