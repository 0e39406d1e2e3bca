package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jala-community/jala-match/pkg/store"
)

// List retrieves all records of a kind, newest first.
func (d *DB) List(ctx context.Context, kind store.Kind) ([]store.Record, error) {
	t, err := store.TableFor(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at DESC`, columnList(t), t.Name)
	rows, err := d.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", t.Name, err)
	}
	defer rows.Close()

	records := []store.Record{}
	for rows.Next() {
		rec, err := scanRecord(t, rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", t.Name, err)
	}

	return records, nil
}

// Append inserts a new record, assigning an id when the payload carries
// none, and returns the stored row in canonical shape.
func (d *DB) Append(ctx context.Context, kind store.Kind, payload store.Record) (store.Record, error) {
	t, err := store.TableFor(kind)
	if err != nil {
		return nil, err
	}

	rec := payload.Clone()
	store.ApplyDefaults(kind, rec)

	id, _ := rec["id"].(string)
	if id == "" {
		id = uuid.NewString()
	}

	cols := []string{"id"}
	args := []any{id}
	for _, col := range t.Columns {
		if col.Generated() {
			continue
		}
		cols = append(cols, col.DBName)
		args = append(args, store.CoerceValue(col, rec[col.Name]))
	}

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES (%s) RETURNING %s`,
		t.Name, strings.Join(cols, ", "), strings.Join(placeholders, ", "), columnList(t),
	)

	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", t.Name, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to insert into %s: %w", t.Name, err)
		}
		return nil, fmt.Errorf("insert into %s returned no row", t.Name)
	}

	return scanRecord(t, rows)
}

// Patch merges the provided fields onto the row matched by id and bumps
// updated_at. Returns nil, nil when no row matches.
func (d *DB) Patch(ctx context.Context, kind store.Kind, id string, patch store.Record) (store.Record, error) {
	t, err := store.TableFor(kind)
	if err != nil {
		return nil, err
	}

	sets := []string{"updated_at = NOW()"}
	args := []any{id}
	for _, col := range t.Columns {
		if col.Generated() {
			continue
		}
		v, ok := patch[col.Name]
		if !ok {
			continue
		}
		args = append(args, store.CoerceValue(col, v))
		sets = append(sets, fmt.Sprintf("%s = $%d", col.DBName, len(args)))
	}

	query := fmt.Sprintf(
		`UPDATE %s SET %s WHERE id = $1 RETURNING %s`,
		t.Name, strings.Join(sets, ", "), columnList(t),
	)

	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", t.Name, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to update %s: %w", t.Name, err)
		}
		return nil, nil
	}

	return scanRecord(t, rows)
}

// Remove deletes the row matched by id. Returns false when no row matches.
func (d *DB) Remove(ctx context.Context, kind store.Kind, id string) (bool, error) {
	t, err := store.TableFor(kind)
	if err != nil {
		return false, err
	}

	tag, err := d.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, t.Name), id)
	if err != nil {
		return false, fmt.Errorf("failed to delete from %s: %w", t.Name, err)
	}

	return tag.RowsAffected() > 0, nil
}

func columnList(t store.Table) string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.DBName
	}
	return strings.Join(names, ", ")
}

// scanRecord converts the current row into a canonical record using the
// table schema. Postgres columns are typed, so only renaming and time
// formatting happen here.
func scanRecord(t store.Table, rows pgx.Rows) (store.Record, error) {
	values, err := rows.Values()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s row: %w", t.Name, err)
	}
	if len(values) != len(t.Columns) {
		return nil, fmt.Errorf("%s row has %d columns, expected %d", t.Name, len(values), len(t.Columns))
	}

	rec := make(store.Record, len(t.Columns))
	for i, col := range t.Columns {
		rec[col.Name] = nativeValue(col, values[i])
	}
	return rec, nil
}

func nativeValue(col store.Column, v any) any {
	switch col.Type {
	case store.ColBool:
		b, _ := v.(bool)
		return b
	case store.ColInt:
		switch n := v.(type) {
		case int32:
			return int(n)
		case int64:
			return int(n)
		case int:
			return n
		default:
			return 0
		}
	case store.ColTime:
		ts, ok := v.(time.Time)
		if !ok {
			return ""
		}
		return ts.UTC().Format(time.RFC3339)
	default:
		s, _ := v.(string)
		return s
	}
}
