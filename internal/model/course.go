package model

import "time"

// Course is a weekly timetable template: its start/end anchor the weekday
// and time-of-day of the slot, and the semester expansion materializes the
// remaining weeks of the term from it.
type Course struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Code       string    `json:"code"`
	Title      string    `json:"title"`
	Kind       string    `json:"kind"` // lecture, seminar, lab, tutorial
	Instructor string    `json:"instructor"`
	Location   string    `json:"location"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
