// Package comments stores the comment board.
package comments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/npsexplorer/explorer/pkg/observability"
)

const storeName = "comments"

// ErrNotFound is returned when no comment has the requested id
var ErrNotFound = errors.New("comment not found")

// Comment is a message about a park left by an account
type Comment struct {
	ID            int64
	CommentText   string
	ParkCode      string
	AuthorID      int64
	AuthorName    string
	DateSubmitted time.Time
}

// Store is the persistence contract for comments
type Store interface {
	List(ctx context.Context) ([]*Comment, error)
	Get(ctx context.Context, id int64) (*Comment, error)
	Create(ctx context.Context, c *Comment) (*Comment, error)
	UpdateText(ctx context.Context, id int64, text string) error
	Delete(ctx context.Context, id int64) error
}

// PostgresStore implements Store on the comments table
type PostgresStore struct {
	db      *sql.DB
	metrics *observability.Metrics
}

// NewPostgresStore creates a new PostgresStore. metrics may be nil.
func NewPostgresStore(db *sql.DB, metrics *observability.Metrics) *PostgresStore {
	return &PostgresStore{db: db, metrics: metrics}
}

const commentColumns = `id, comment_text, park_code, author_id, author_name, date_submitted`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanComment(row rowScanner) (*Comment, error) {
	c := &Comment{}
	err := row.Scan(&c.ID, &c.CommentText, &c.ParkCode, &c.AuthorID, &c.AuthorName, &c.DateSubmitted)
	return c, err
}

// List returns all comments, oldest first
func (s *PostgresStore) List(ctx context.Context) (comments []*Comment, err error) {
	defer s.observe("list", time.Now(), &err)

	rows, err := s.db.QueryContext(ctx, `SELECT `+commentColumns+` FROM comments ORDER BY date_submitted, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments = []*Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}
	return comments, nil
}

// Get returns a single comment
func (s *PostgresStore) Get(ctx context.Context, id int64) (c *Comment, err error) {
	defer s.observe("get", time.Now(), &err)

	c, err = scanComment(s.db.QueryRowContext(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return c, nil
}

// Create inserts a comment. ID and DateSubmitted are assigned by the database.
func (s *PostgresStore) Create(ctx context.Context, c *Comment) (created *Comment, err error) {
	defer s.observe("create", time.Now(), &err)

	query := `
		INSERT INTO comments (comment_text, park_code, author_id, author_name)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + commentColumns
	created, err = scanComment(s.db.QueryRowContext(ctx, query, c.CommentText, c.ParkCode, c.AuthorID, c.AuthorName))
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return created, nil
}

// UpdateText replaces the text of a comment
func (s *PostgresStore) UpdateText(ctx context.Context, id int64, text string) (err error) {
	defer s.observe("update", time.Now(), &err)

	result, err := s.db.ExecContext(ctx, `UPDATE comments SET comment_text = $1 WHERE id = $2`, text, id)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	return checkAffected(result)
}

// Delete removes a comment
func (s *PostgresStore) Delete(ctx context.Context, id int64) (err error) {
	defer s.observe("delete", time.Now(), &err)

	result, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return checkAffected(result)
}

func checkAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) observe(operation string, start time.Time, errp *error) {
	err := *errp
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	s.metrics.ObserveStore(storeName, operation, start, err)
}
