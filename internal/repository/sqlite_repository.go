package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"coursehub/backend/internal/model"
)

type sqliteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) Repository {
	return &sqliteRepository{db: db}
}

const draftColumns = "id, student_id, task_key, version, content, ai_feedback, is_submitted, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDraft(row rowScanner) (*model.Draft, error) {
	var d model.Draft
	var feedback sql.NullString
	if err := row.Scan(&d.ID, &d.StudentID, &d.TaskKey, &d.Version, &d.Content, &feedback, &d.IsSubmitted, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	if feedback.Valid {
		d.AIFeedback = &feedback.String
	}
	return &d, nil
}

func (r *sqliteRepository) FindDraft(ctx context.Context, key model.DraftKey) (*model.Draft, error) {
	query := "SELECT " + draftColumns + " FROM writing_drafts WHERE student_id = ? AND task_key = ? AND version = ?"
	d, err := scanDraft(r.db.QueryRowContext(ctx, query, key.StudentID, key.TaskKey, key.Version))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("could not find draft: %w", err)
	}
	return d, nil
}

func (r *sqliteRepository) CreateDraft(ctx context.Context, draft *model.Draft) error {
	query := `
		INSERT INTO writing_drafts (id, student_id, task_key, version, content, ai_feedback, is_submitted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		draft.ID,
		draft.StudentID,
		draft.TaskKey,
		draft.Version,
		draft.Content,
		nullable(draft.AIFeedback),
		draft.IsSubmitted,
		draft.CreatedAt,
		draft.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("could not insert draft: %w", err)
	}
	return nil
}

func (r *sqliteRepository) UpdateDraft(ctx context.Context, draft *model.Draft) error {
	query := "UPDATE writing_drafts SET content = ?, ai_feedback = ?, is_submitted = ?, updated_at = ? WHERE id = ?"
	res, err := r.db.ExecContext(ctx, query, draft.Content, nullable(draft.AIFeedback), draft.IsSubmitted, draft.UpdatedAt, draft.ID)
	if err != nil {
		return fmt.Errorf("could not update draft: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqliteRepository) ListDrafts(ctx context.Context, studentID, taskKey string) ([]*model.Draft, error) {
	query := "SELECT " + draftColumns + " FROM writing_drafts WHERE student_id = ? AND task_key = ? ORDER BY version DESC"
	rows, err := r.db.QueryContext(ctx, query, studentID, taskKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	drafts := []*model.Draft{}
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}

func (r *sqliteRepository) GetUsage(ctx context.Context, studentID, usageDate string) (*model.Usage, error) {
	query := "SELECT id, student_id, usage_date, request_count FROM student_api_usage WHERE student_id = ? AND usage_date = ?"
	var u model.Usage
	err := r.db.QueryRowContext(ctx, query, studentID, usageDate).Scan(&u.ID, &u.StudentID, &u.UsageDate, &u.RequestCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *sqliteRepository) CreateUsage(ctx context.Context, usage *model.Usage) error {
	now := time.Now().UTC()
	query := "INSERT INTO student_api_usage (id, student_id, usage_date, request_count, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)"
	_, err := r.db.ExecContext(ctx, query, usage.ID, usage.StudentID, usage.UsageDate, usage.RequestCount, now, now)
	return err
}

func (r *sqliteRepository) IncrementUsage(ctx context.Context, id string, limit int) (int, error) {
	query := `
		UPDATE student_api_usage SET request_count = request_count + 1, updated_at = ?
		WHERE id = ? AND request_count < ?
		RETURNING request_count
	`
	var count int
	err := r.db.QueryRowContext(ctx, query, time.Now().UTC(), id, limit).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return count, nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
