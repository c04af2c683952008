package domain

import "time"

// TicketStatus represents the lifecycle state of a waitlist ticket
type TicketStatus string

const (
	StatusWaiting TicketStatus = "waiting"
	StatusCalled  TicketStatus = "called"
)

// QueueStatus represents queue state (single-state for now, kept for extension)
type QueueStatus string

const (
	QueueActive QueueStatus = "active"
)

// Queue represents one named waiting line owned by an administrator
type Queue struct {
	ID        string      `json:"id"`
	OwnerID   string      `json:"owner_id"`
	Name      string      `json:"name"`
	Category  string      `json:"category"`
	Status    QueueStatus `json:"status"`
	TicketSeq int64       `json:"-"` // lifetime count of tickets ever issued, never decreases
	CreatedAt time.Time   `json:"created_at"`
}

// Ticket represents one customer's claim on a position in a queue
type Ticket struct {
	ID          string       `json:"id"`
	QueueID     string       `json:"queue_id"`
	Name        string       `json:"name"`
	TokenNumber int          `json:"token_number"`
	Status      TicketStatus `json:"status"`
	JoinedAt    time.Time    `json:"joined_at"`
	CalledAt    *time.Time   `json:"called_at,omitempty"` // set exactly once on waiting→called
}

// Waiting reports whether the ticket is still in line
func (t Ticket) Waiting() bool {
	return t.Status == StatusWaiting
}

// HistoryRecord is an immutable log entry of one completed service
type HistoryRecord struct {
	ID          string    `json:"id"`
	QueueID     string    `json:"queue_id"`
	CompletedAt time.Time `json:"completed_at"`
	Duration    float64   `json:"duration"` // minutes, rounded to 2 decimals, never negative
	HourOfDay   int       `json:"hour_of_day"`
	DayOfWeek   int       `json:"day_of_week"`
}

// Estimate is a wait-time prediction for one customer
type Estimate struct {
	PredictedMinutes float64 `json:"predicted_minutes"`
	Confidence       float64 `json:"confidence"`
}

// QueueSnapshot is a full observed state of one queue's waitlist, as delivered
// by a watch subscription. Consumers recompute derived values from scratch on
// every snapshot.
type QueueSnapshot struct {
	QueueID         string
	Tickets         []Ticket
	RecentDurations []float64
	QueueDeleted    bool
	ReceivedAt      time.Time
}

// Preference holds an administrator's persisted display settings
type Preference struct {
	AdminID   string    `json:"admin_id"`
	Theme     string    `json:"theme"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)
