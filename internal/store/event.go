package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/azusa-dom/uniapp-server/internal/model"
)

type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

func scanEvent(scanner interface{ Scan(...any) error }) (*model.CalendarEvent, error) {
	var e model.CalendarEvent
	err := scanner.Scan(&e.ID, &e.UserID, &e.Title, &e.Description, &e.Location,
		&e.StartTime, &e.EndTime, &e.Recurrence, &e.ReminderMinutes, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

const eventCols = `id, user_id, title, description, location, start_time, end_time, recurrence, reminder_minutes, created_at, updated_at`

func (s *EventStore) Create(userID int64, title, description, location string, startTime, endTime time.Time, recurrence string, reminderMinutes int) (*model.CalendarEvent, error) {
	result, err := s.db.Exec(
		`INSERT INTO calendar_events (user_id, title, description, location, start_time, end_time, recurrence, reminder_minutes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, title, description, location, startTime.UTC(), endTime.UTC(), recurrence, reminderMinutes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert calendar event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(id)
}

func (s *EventStore) GetByID(id int64) (*model.CalendarEvent, error) {
	row := s.db.QueryRow(`SELECT `+eventCols+` FROM calendar_events WHERE id = ?`, id)
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query calendar event: %w", err)
	}
	return e, nil
}

// ListByUser returns every event the user owns, recurring templates
// included, ordered by start time. Recurring events carry their template
// start; callers resolve concrete days through the occurrence matcher.
func (s *EventStore) ListByUser(userID int64) ([]model.CalendarEvent, error) {
	rows, err := s.db.Query(
		`SELECT `+eventCols+` FROM calendar_events WHERE user_id = ? ORDER BY start_time ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query calendar events: %w", err)
	}
	defer rows.Close()

	var events []model.CalendarEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan calendar event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (s *EventStore) Update(id int64, title, description, location string, startTime, endTime time.Time, recurrence string, reminderMinutes int) (*model.CalendarEvent, error) {
	_, err := s.db.Exec(
		`UPDATE calendar_events
		 SET title = ?, description = ?, location = ?, start_time = ?, end_time = ?, recurrence = ?, reminder_minutes = ?
		 WHERE id = ?`,
		title, description, location, startTime.UTC(), endTime.UTC(), recurrence, reminderMinutes, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update calendar event: %w", err)
	}
	return s.GetByID(id)
}

func (s *EventStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM calendar_events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete calendar event: %w", err)
	}
	return nil
}
