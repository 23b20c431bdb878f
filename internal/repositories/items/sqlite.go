package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/scrapsync/internal/common"
	"github.com/dmitrijs2005/scrapsync/internal/dbx"
)

// SQLiteRepository implements Repository over dbx.DBTX.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Put(ctx context.Context, id string, body []byte) error {
	query := `INSERT INTO items (id, body) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET body = excluded.body`
	if _, err := r.db.ExecContext(ctx, query, id, string(body)); err != nil {
		return fmt.Errorf("failed to upsert item %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) ([]byte, error) {
	var body string
	err := r.db.QueryRowContext(ctx, `SELECT body FROM items WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item %s: %w", id, err)
	}
	return []byte(body), nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]Raw, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, body FROM items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var result []Raw
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		result = append(result, Raw{ID: id, Body: []byte(body)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
