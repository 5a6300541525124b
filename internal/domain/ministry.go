package domain

import "time"

// ============================================================
// Events
// ============================================================

// EventType classifies a calendar entry.
type EventType string

const (
	EventService EventType = "Service"
	EventMeeting EventType = "Meeting"
	EventSeminar EventType = "Seminar"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case EventService, EventMeeting, EventSeminar:
		return true
	}
	return false
}

// Event is a scheduled church gathering. Date is local wall-clock time
// in the "2006-01-02T15:04" layout.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Date        string    `json:"date"`
	Type        EventType `json:"type"`
	CreatedAt   time.Time `json:"created_at"`
}

// EventDraft is the form input for scheduling an event.
type EventDraft struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Date        string    `json:"date"`
	Type        EventType `json:"type"`
}

// ============================================================
// Leaders
// ============================================================

// Leader is an entry of the church leadership directory.
type Leader struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// LeaderDraft is the form input for adding a leader.
type LeaderDraft struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Phone string `json:"phone"`
}
