package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/azusa-dom/uniapp-server/internal/model"
)

type TodoStore struct {
	db *sql.DB
}

func NewTodoStore(db *sql.DB) *TodoStore {
	return &TodoStore{db: db}
}

func scanTodo(scanner interface{ Scan(...any) error }) (*model.TodoItem, error) {
	var t model.TodoItem
	var due sql.NullTime
	var completed int
	err := scanner.Scan(&t.ID, &t.UserID, &t.Title, &t.Notes, &due, &t.Priority,
		&completed, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if due.Valid {
		t.DueDate = &due.Time
	}
	t.Completed = completed != 0
	return &t, nil
}

const todoCols = `id, user_id, title, notes, due_date, priority, completed, created_at, updated_at`

func (s *TodoStore) Create(userID int64, title, notes string, dueDate *time.Time, priority string) (*model.TodoItem, error) {
	var due sql.NullTime
	if dueDate != nil {
		due = sql.NullTime{Time: dueDate.UTC(), Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO todos (user_id, title, notes, due_date, priority) VALUES (?, ?, ?, ?, ?)`,
		userID, title, notes, due, priority,
	)
	if err != nil {
		return nil, fmt.Errorf("insert todo: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(id)
}

func (s *TodoStore) GetByID(id int64) (*model.TodoItem, error) {
	row := s.db.QueryRow(`SELECT `+todoCols+` FROM todos WHERE id = ?`, id)
	t, err := scanTodo(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query todo: %w", err)
	}
	return t, nil
}

// ListByUser returns the user's todos, incomplete first, then by due date
// with undated items last.
func (s *TodoStore) ListByUser(userID int64) ([]model.TodoItem, error) {
	rows, err := s.db.Query(
		`SELECT `+todoCols+` FROM todos WHERE user_id = ?
		 ORDER BY completed ASC, due_date IS NULL, due_date ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query todos: %w", err)
	}
	defer rows.Close()

	var todos []model.TodoItem
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, *t)
	}
	return todos, rows.Err()
}

func (s *TodoStore) Update(id int64, title, notes string, dueDate *time.Time, priority string) (*model.TodoItem, error) {
	var due sql.NullTime
	if dueDate != nil {
		due = sql.NullTime{Time: dueDate.UTC(), Valid: true}
	}

	_, err := s.db.Exec(
		`UPDATE todos SET title = ?, notes = ?, due_date = ?, priority = ? WHERE id = ?`,
		title, notes, due, priority, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update todo: %w", err)
	}
	return s.GetByID(id)
}

func (s *TodoStore) SetCompleted(id int64, completed bool) (*model.TodoItem, error) {
	var v int
	if completed {
		v = 1
	}
	_, err := s.db.Exec(`UPDATE todos SET completed = ? WHERE id = ?`, v, id)
	if err != nil {
		return nil, fmt.Errorf("set todo completed: %w", err)
	}
	return s.GetByID(id)
}

func (s *TodoStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	return nil
}
