// Package history is the client's local copy of each server's ledger,
// kept in SQLite so a restart only needs a delta sync.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/matthias/internal/client/migrations"
	"github.com/dmitrijs2005/matthias/internal/common"
	"github.com/dmitrijs2005/matthias/internal/dbx"
	"github.com/dmitrijs2005/matthias/internal/protocol"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Store holds folded ledgers keyed by server address.
type Store struct {
	db *sql.DB
}

// RunMigrations applies the embedded client schema.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// Open opens the SQLite database at dsn and migrates it.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the stored ledger of address in index order.
func (s *Store) Load(ctx context.Context, address string) (protocol.Master, error) {
	return dbx.WithTxValue(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (protocol.Master, error) {
		rows, err := tx.QueryContext(ctx,
			`SELECT idx, body FROM outputs WHERE server = ? ORDER BY idx`, address)
		if err != nil {
			return protocol.Master{}, fmt.Errorf("failed to load history: %w", err)
		}
		defer rows.Close()

		m := protocol.Master{Outputs: []protocol.Output{}}
		for rows.Next() {
			var idx int
			var body string
			if err := rows.Scan(&idx, &body); err != nil {
				return protocol.Master{}, fmt.Errorf("failed to scan history row: %w", err)
			}
			if idx != len(m.Outputs) {
				return protocol.Master{}, fmt.Errorf("%w: gap at index %d", common.ErrCorrupt, len(m.Outputs))
			}
			var out protocol.Output
			if err := json.Unmarshal([]byte(body), &out); err != nil {
				return protocol.Master{}, fmt.Errorf("%w: index %d: %v", common.ErrCorrupt, idx, err)
			}
			m.Outputs = append(m.Outputs, out)
		}
		if err := rows.Err(); err != nil {
			return protocol.Master{}, fmt.Errorf("failed to iterate history rows: %w", err)
		}
		return m, nil
	})
}

// Len returns how many outputs are stored for address.
func (s *Store) Len(ctx context.Context, address string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM outputs WHERE server = ?`, address).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return n, nil
}

// Fold replaces everything from index from onwards with delta, the same
// way protocol.Master.Fold does in memory.
func (s *Store) Fold(ctx context.Context, address string, from int, delta []protocol.Output) error {
	if from < 0 {
		from = 0
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var n int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM outputs WHERE server = ?`, address).Scan(&n); err != nil {
			return err
		}
		if from > n {
			from = n
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM outputs WHERE server = ? AND idx >= ?`, address, from); err != nil {
			return fmt.Errorf("failed to truncate history: %w", err)
		}

		for i, out := range delta {
			body, err := json.Marshal(out)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO outputs (server, idx, body) VALUES (?, ?, ?)`,
				address, from+i, string(body)); err != nil {
				return fmt.Errorf("failed to insert history row: %w", err)
			}
		}
		return nil
	})
}

// SetLastSeen records the highest index the user has looked at on address.
func (s *Store) SetLastSeen(ctx context.Context, address string, index int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO servers (address, last_seen) VALUES (?, ?)
		ON CONFLICT(address) DO UPDATE SET last_seen = excluded.last_seen
	`, address, index)
	if err != nil {
		return fmt.Errorf("failed to set last seen: %w", err)
	}
	return nil
}

// LastSeen returns the recorded index, or nil if nothing was recorded.
func (s *Store) LastSeen(ctx context.Context, address string) (*int, error) {
	var v sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT last_seen FROM servers WHERE address = ?`, address).Scan(&v)
	if err == sql.ErrNoRows || (err == nil && !v.Valid) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last seen: %w", err)
	}
	i := int(v.Int64)
	return &i, nil
}

// Clear drops the stored ledger and watermark of address.
func (s *Store) Clear(ctx context.Context, address string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM outputs WHERE server = ?`, address); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM servers WHERE address = ?`, address)
		return err
	})
}
