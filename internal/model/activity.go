package model

import "time"

// CampusActivity is a one-off campus event (society fair, talk, social)
// listed to all students; unlike calendar events these never recur.
type CampusActivity struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Organizer string    `json:"organizer"`
	Location  string    `json:"location"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
