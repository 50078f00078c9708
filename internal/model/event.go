package model

import "time"

// CalendarEvent is a user-created event. Recurrence holds the serialized
// rule ("FREQ=WEEKLY;INTERVAL=2", empty = does not repeat); occurrences are
// derived on demand and never stored.
type CalendarEvent struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Location        string    `json:"location"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	Recurrence      string    `json:"recurrence,omitempty"`
	ReminderMinutes int       `json:"reminder_minutes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
