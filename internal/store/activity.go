package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/azusa-dom/uniapp-server/internal/model"
)

type ActivityStore struct {
	db *sql.DB
}

func NewActivityStore(db *sql.DB) *ActivityStore {
	return &ActivityStore{db: db}
}

func scanActivity(scanner interface{ Scan(...any) error }) (*model.CampusActivity, error) {
	var a model.CampusActivity
	err := scanner.Scan(&a.ID, &a.Title, &a.Category, &a.Organizer, &a.Location,
		&a.StartTime, &a.EndTime, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

const activityCols = `id, title, category, organizer, location, start_time, end_time, created_at, updated_at`

func (s *ActivityStore) Create(title, category, organizer, location string, startTime, endTime time.Time) (*model.CampusActivity, error) {
	result, err := s.db.Exec(
		`INSERT INTO campus_activities (title, category, organizer, location, start_time, end_time)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		title, category, organizer, location, startTime.UTC(), endTime.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert activity: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(id)
}

func (s *ActivityStore) GetByID(id int64) (*model.CampusActivity, error) {
	row := s.db.QueryRow(`SELECT `+activityCols+` FROM campus_activities WHERE id = ?`, id)
	a, err := scanActivity(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	return a, nil
}

// ListByDateRange returns activities overlapping [start, end).
func (s *ActivityStore) ListByDateRange(start, end time.Time) ([]model.CampusActivity, error) {
	rows, err := s.db.Query(
		`SELECT `+activityCols+` FROM campus_activities
		 WHERE start_time < ? AND end_time > ?
		 ORDER BY start_time ASC, id ASC`,
		end.UTC(), start.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	defer rows.Close()

	var activities []model.CampusActivity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}

func (s *ActivityStore) Update(id int64, title, category, organizer, location string, startTime, endTime time.Time) (*model.CampusActivity, error) {
	_, err := s.db.Exec(
		`UPDATE campus_activities
		 SET title = ?, category = ?, organizer = ?, location = ?, start_time = ?, end_time = ?
		 WHERE id = ?`,
		title, category, organizer, location, startTime.UTC(), endTime.UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update activity: %w", err)
	}
	return s.GetByID(id)
}

func (s *ActivityStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM campus_activities WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	return nil
}
