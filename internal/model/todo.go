package model

import "time"

type TodoItem struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Title     string     `json:"title"`
	Notes     string     `json:"notes"`
	DueDate   *time.Time `json:"due_date"`
	Priority  string     `json:"priority"` // low, medium, high
	Completed bool       `json:"completed"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
