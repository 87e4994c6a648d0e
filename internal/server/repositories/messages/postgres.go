// Package messages persists ledger records in PostgreSQL. Each record is
// stored as its JSON encoding under its ledger index.
package messages

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/matthias/internal/common"
	"github.com/dmitrijs2005/matthias/internal/dbx"
	"github.com/dmitrijs2005/matthias/internal/protocol"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Append inserts the record at index. An existing row at index is a conflict
// and yields common.ErrAlreadyExists.
func (r *PostgresRepository) Append(ctx context.Context, index int, out protocol.Output) error {
	body, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	query := `
		INSERT INTO messages (idx, sender_id, body)
		VALUES ($1, $2, $3)
		ON CONFLICT (idx) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, index, out.SenderID, body)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("message %d: %w", index, common.ErrAlreadyExists)
	}
	return nil
}

// Update replaces the record at index.
func (r *PostgresRepository) Update(ctx context.Context, index int, out protocol.Output) error {
	body, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	query := `UPDATE messages SET body = $2, updated_at = now() WHERE idx = $1`
	res, err := r.db.ExecContext(ctx, query, index, body)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("message %d: %w", index, common.ErrNotFound)
	}
	return nil
}

// LoadAll returns every record ordered by index. A gap in the indices means
// the table was edited by hand and yields common.ErrCorrupt.
func (r *PostgresRepository) LoadAll(ctx context.Context) ([]protocol.Output, error) {
	query := `SELECT idx, body FROM messages ORDER BY idx`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select messages: %w", err)
	}
	defer rows.Close()

	result := []protocol.Output{}
	for rows.Next() {
		var (
			idx  int
			body []byte
		)
		if err := rows.Scan(&idx, &body); err != nil {
			return nil, err
		}
		if idx != len(result) {
			return nil, fmt.Errorf("message index %d, want %d: %w", idx, len(result), common.ErrCorrupt)
		}
		var out protocol.Output
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, fmt.Errorf("message %d: %w", idx, common.ErrCorrupt)
		}
		result = append(result, out)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
