package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/scrapsync/internal/common"
	"github.com/dmitrijs2005/scrapsync/internal/dbx"
	"github.com/dmitrijs2005/scrapsync/internal/models"
)

const selectColumns = `id, created_at, updated_at, deleted, status, preview, tags, source, link`

// SQLiteRepository implements Repository over dbx.DBTX.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, e models.IndexEntry) error {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	query := `INSERT INTO index_entries (id, created_at, updated_at, deleted, status, preview, tags, source, link)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			deleted = excluded.deleted,
			status = excluded.status,
			preview = excluded.preview,
			tags = excluded.tags,
			source = excluded.source,
			link = excluded.link`
	_, err = r.db.ExecContext(ctx, query,
		e.ID, e.CreatedAt, e.UpdatedAt, e.Deleted, string(e.Status), e.Preview, string(tagsJSON), e.Source, e.Link)
	if err != nil {
		return fmt.Errorf("failed to upsert index entry %s: %w", e.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (models.IndexEntry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM index_entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.IndexEntry{}, common.ErrNotFound
	}
	if err != nil {
		return models.IndexEntry{}, fmt.Errorf("failed to get index entry %s: %w", id, err)
	}
	return e, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.IndexEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM index_entries ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list index entries: %w", err)
	}
	defer rows.Close()

	result := []models.IndexEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan index entry: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) SetStatus(ctx context.Context, id string, status models.Status, updatedAt int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE index_entries SET status = ?, updated_at = ? WHERE id = ?`, string(status), updatedAt, id)
	if err != nil {
		return false, fmt.Errorf("failed to set status of %s: %w", id, err)
	}
	return affected(res)
}

func (r *SQLiteRepository) MarkDeleted(ctx context.Context, id string, updatedAt int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE index_entries SET deleted = 1, updated_at = ? WHERE id = ?`, updatedAt, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete %s: %w", id, err)
	}
	return affected(res)
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (models.IndexEntry, error) {
	var (
		e      models.IndexEntry
		status string
		tags   string
	)
	if err := s.Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt, &e.Deleted, &status, &e.Preview, &tags, &e.Source, &e.Link); err != nil {
		return models.IndexEntry{}, err
	}
	e.Status = models.Status(status)
	if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil || e.Tags == nil {
		e.Tags = []string{}
	}
	return e, nil
}
