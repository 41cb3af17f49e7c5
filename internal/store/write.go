package store

import (
	"context"
	"fmt"

	"github.com/roach88/relq/internal/collection"
)

// Import replaces the stored copy of c with its current records, in one
// transaction. Record order is kept in seq.
func (s *Store) Import(ctx context.Context, c *collection.Collection) error {
	records := c.Records()

	rows := make([]string, len(records))
	for i, rec := range records {
		data, err := marshalRecord(rec)
		if err != nil {
			return fmt.Errorf("import %s: record %d: %w", c.Name(), i, err)
		}
		rows[i] = data
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("import %s: begin: %w", c.Name(), err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, `
		INSERT INTO collections (name, primary_key, record_count)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			primary_key = excluded.primary_key,
			record_count = excluded.record_count
	`, c.Name(), c.PrimaryKey(), len(rows))
	if err != nil {
		return fmt.Errorf("import %s: write collection: %w", c.Name(), err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE collection = ?`, c.Name()); err != nil {
		return fmt.Errorf("import %s: clear records: %w", c.Name(), err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO records (collection, seq, data) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("import %s: prepare: %w", c.Name(), err)
	}
	defer stmt.Close()

	for i, data := range rows {
		if _, err := stmt.ExecContext(ctx, c.Name(), int64(i+1), data); err != nil {
			return fmt.Errorf("import %s: write record %d: %w", c.Name(), i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("import %s: commit: %w", c.Name(), err)
	}
	return nil
}

// Drop deletes a collection and its records. Dropping an unknown
// collection is not an error.
func (s *Store) Drop(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM collections WHERE name = ?`, name); err != nil {
		return fmt.Errorf("drop %s: %w", name, err)
	}
	return nil
}
