// Package blobs stores uploaded file bytes in PostgreSQL, one row per
// byte-store index.
package blobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/matthias/internal/common"
	"github.com/dmitrijs2005/matthias/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, index int, name string, data []byte) error {
	query := `INSERT INTO blobs (idx, name, data) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, index, name, data); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, index int) (string, []byte, error) {
	query := `SELECT name, data FROM blobs WHERE idx = $1`

	var (
		name string
		data []byte
	)
	err := r.db.QueryRowContext(ctx, query, index).Scan(&name, &data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, common.ErrNotFound
		}
		return "", nil, fmt.Errorf("db error: %w", err)
	}
	return name, data, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM blobs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
