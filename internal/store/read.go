package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/relq/internal/collection"
	"github.com/roach88/relq/internal/ir"
	"github.com/roach88/relq/internal/querysql"
	"github.com/roach88/relq/internal/relation"
)

// ErrCollectionNotFound is returned when a collection has not been imported.
var ErrCollectionNotFound = errors.New("collection not found")

// CollectionInfo describes a stored collection.
type CollectionInfo struct {
	Name        string
	PrimaryKey  string
	RecordCount int
}

// Collections lists stored collections ordered by name.
//
// Returns an empty slice (not nil) if nothing has been imported.
func (s *Store) Collections(ctx context.Context) ([]CollectionInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, primary_key, record_count
		FROM collections
		ORDER BY name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query collections: %w", err)
	}
	defer rows.Close()

	infos := []CollectionInfo{}
	for rows.Next() {
		var info CollectionInfo
		if err := rows.Scan(&info.Name, &info.PrimaryKey, &info.RecordCount); err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collections: %w", err)
	}
	return infos, nil
}

// Collection returns the metadata of one stored collection.
func (s *Store) Collection(ctx context.Context, name string) (CollectionInfo, error) {
	info := CollectionInfo{Name: name}
	err := s.db.QueryRowContext(ctx, `
		SELECT primary_key, record_count FROM collections WHERE name = ?
	`, name).Scan(&info.PrimaryKey, &info.RecordCount)
	if errors.Is(err, sql.ErrNoRows) {
		return CollectionInfo{}, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	if err != nil {
		return CollectionInfo{}, fmt.Errorf("query collection %s: %w", name, err)
	}
	return info, nil
}

// ReadRecords returns a collection's records in their original order.
func (s *Store) ReadRecords(ctx context.Context, name string) ([]ir.Record, error) {
	if _, err := s.Collection(ctx, name); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, data FROM records WHERE collection = ? ORDER BY seq ASC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	return scanRecords(rows)
}

// Load reads a stored collection back into memory. Extra options are
// applied after the stored primary key.
func (s *Store) Load(ctx context.Context, name string, opts ...collection.Option) (*collection.Collection, error) {
	info, err := s.Collection(ctx, name)
	if err != nil {
		return nil, err
	}
	records, err := s.ReadRecords(ctx, name)
	if err != nil {
		return nil, err
	}

	all := append([]collection.Option{
		collection.WithPrimaryKey(info.PrimaryKey),
		collection.WithRecords(records),
	}, opts...)
	return collection.New(name, all...), nil
}

// Query evaluates rel in SQLite against the stored copy of its model.
// Extensions are not applied. Relations with custom predicates fail with
// querysql.ErrNotPortable.
func (s *Store) Query(ctx context.Context, rel *relation.Relation) ([]ir.Record, error) {
	query, params, err := querysql.NewSQLCompiler().Compile(rel)
	if err != nil {
		return nil, err
	}
	stmt, release, err := s.stmts.get(ctx, query)
	if err != nil {
		return nil, err
	}
	defer release()
	rows, err := stmt.QueryContext(ctx, params...)
	if err != nil {
		return nil, fmt.Errorf("query relation: %w", err)
	}
	return scanRecords(rows)
}

// scanRecords reads (seq, data) rows and closes them.
// Returns an empty slice (not nil) when there are no rows.
func scanRecords(rows *sql.Rows) ([]ir.Record, error) {
	defer rows.Close()

	records := []ir.Record{}
	for rows.Next() {
		var seq int64
		var data string
		if err := rows.Scan(&seq, &data); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		obj, err := unmarshalRecord(data)
		if err != nil {
			return nil, fmt.Errorf("record seq %d: %w", seq, err)
		}
		records = append(records, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}
