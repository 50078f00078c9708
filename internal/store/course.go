package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/azusa-dom/uniapp-server/internal/model"
)

type CourseStore struct {
	db *sql.DB
}

func NewCourseStore(db *sql.DB) *CourseStore {
	return &CourseStore{db: db}
}

func scanCourse(scanner interface{ Scan(...any) error }) (*model.Course, error) {
	var c model.Course
	err := scanner.Scan(&c.ID, &c.UserID, &c.Code, &c.Title, &c.Kind, &c.Instructor,
		&c.Location, &c.StartTime, &c.EndTime, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const courseCols = `id, user_id, code, title, kind, instructor, location, start_time, end_time, created_at, updated_at`

func (s *CourseStore) Create(userID int64, code, title, kind, instructor, location string, startTime, endTime time.Time) (*model.Course, error) {
	result, err := s.db.Exec(
		`INSERT INTO courses (user_id, code, title, kind, instructor, location, start_time, end_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, code, title, kind, instructor, location, startTime.UTC(), endTime.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert course: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(id)
}

func (s *CourseStore) GetByID(id int64) (*model.Course, error) {
	row := s.db.QueryRow(`SELECT `+courseCols+` FROM courses WHERE id = ?`, id)
	c, err := scanCourse(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query course: %w", err)
	}
	return c, nil
}

func (s *CourseStore) ListByUser(userID int64) ([]model.Course, error) {
	rows, err := s.db.Query(
		`SELECT `+courseCols+` FROM courses WHERE user_id = ? ORDER BY start_time ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query courses: %w", err)
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, *c)
	}
	return courses, rows.Err()
}

func (s *CourseStore) Update(id int64, code, title, kind, instructor, location string, startTime, endTime time.Time) (*model.Course, error) {
	_, err := s.db.Exec(
		`UPDATE courses
		 SET code = ?, title = ?, kind = ?, instructor = ?, location = ?, start_time = ?, end_time = ?
		 WHERE id = ?`,
		code, title, kind, instructor, location, startTime.UTC(), endTime.UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}
	return s.GetByID(id)
}

func (s *CourseStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM courses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}
