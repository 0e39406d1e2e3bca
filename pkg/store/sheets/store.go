package sheets

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jala-community/jala-match/pkg/store"
)

// Store implements store.Store on a single spreadsheet, one tab per kind.
//
// The sheet has no indexed lookup: Patch and Remove fetch the full range
// and linear-scan for the row whose first cell is the target id. Remove
// then clears and rewrites the whole tab, so it is O(n) and a concurrent
// append during the read-then-rewrite window can be lost. Accepted at
// community-sized data volumes.
type Store struct {
	client        SheetsClient
	spreadsheetID string
	now           func() time.Time
}

// NewStore creates a spreadsheet-backed store.
func NewStore(client SheetsClient, spreadsheetID string) *Store {
	return &Store{
		client:        client,
		spreadsheetID: spreadsheetID,
		now:           time.Now,
	}
}

// Close is a no-op; the Sheets client holds no connection state.
func (s *Store) Close() {}

// List returns all rows of a kind in sheet order, skipping the header row.
func (s *Store) List(_ context.Context, kind store.Kind) ([]store.Record, error) {
	t, err := store.TableFor(kind)
	if err != nil {
		return nil, err
	}

	values, err := s.client.GetValues(s.spreadsheetID, tableRange(t))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", t.Name, err)
	}

	if len(values) <= 1 {
		return []store.Record{}, nil
	}

	records := make([]store.Record, 0, len(values)-1)
	for _, row := range values[1:] {
		records = append(records, normalizeRow(t, row))
	}

	return records, nil
}

// Append stamps id and timestamps (caller-supplied values are trusted when
// present) and appends one row.
func (s *Store) Append(_ context.Context, kind store.Kind, payload store.Record) (store.Record, error) {
	t, err := store.TableFor(kind)
	if err != nil {
		return nil, err
	}

	rec := payload.Clone()
	store.ApplyDefaults(kind, rec)

	if id, _ := rec["id"].(string); id == "" {
		rec["id"] = uuid.NewString()
	}
	now := s.now().UTC().Format(time.RFC3339)
	if ts, _ := rec["createdAt"].(string); ts == "" {
		rec["createdAt"] = now
	}
	if ts, _ := rec["updatedAt"].(string); ts == "" {
		rec["updatedAt"] = now
	}

	if err := s.client.AppendRow(s.spreadsheetID, tableRange(t), rowValues(t, rec)); err != nil {
		return nil, fmt.Errorf("failed to append to %s: %w", t.Name, err)
	}

	// Round-trip through the row shape so the caller sees exactly what
	// a later List would return.
	return normalizeRow(t, rowValues(t, rec)), nil
}

// Patch merges the provided fields onto the row matched by id and rewrites
// that single row. Returns nil, nil when no row matches.
func (s *Store) Patch(_ context.Context, kind store.Kind, id string, patch store.Record) (store.Record, error) {
	t, err := store.TableFor(kind)
	if err != nil {
		return nil, err
	}

	rowNumber, values, err := s.findRow(t, id)
	if err != nil {
		return nil, err
	}
	if rowNumber < 0 {
		return nil, nil
	}

	merged := normalizeRow(t, values[rowNumber-1])
	for _, col := range t.Columns {
		if col.Generated() {
			continue
		}
		if v, ok := patch[col.Name]; ok {
			merged[col.Name] = store.CoerceValue(col, v)
		}
	}
	merged["id"] = id
	merged["updatedAt"] = s.now().UTC().Format(time.RFC3339)

	target := fmt.Sprintf("%s!A%d", t.Name, rowNumber)
	if err := s.client.UpdateRange(s.spreadsheetID, target, [][]interface{}{rowValues(t, merged)}); err != nil {
		return nil, fmt.Errorf("failed to update %s row %d: %w", t.Name, rowNumber, err)
	}

	return merged, nil
}

// Remove deletes the row matched by id. Removing a middle row requires
// clearing the range and rewriting every remaining row.
func (s *Store) Remove(_ context.Context, kind store.Kind, id string) (bool, error) {
	t, err := store.TableFor(kind)
	if err != nil {
		return false, err
	}

	rowNumber, values, err := s.findRow(t, id)
	if err != nil {
		return false, err
	}
	if rowNumber < 0 {
		return false, nil
	}

	remaining := make([][]interface{}, 0, len(values)-1)
	for i, row := range values {
		if i == rowNumber-1 {
			continue
		}
		remaining = append(remaining, row)
	}

	if err := s.client.ClearRange(s.spreadsheetID, tableRange(t)); err != nil {
		return false, fmt.Errorf("failed to clear %s: %w", t.Name, err)
	}

	target := fmt.Sprintf("%s!A1", t.Name)
	if err := s.client.UpdateRange(s.spreadsheetID, target, remaining); err != nil {
		return false, fmt.Errorf("failed to rewrite %s: %w", t.Name, err)
	}

	return true, nil
}

// findRow scans for the row whose first cell equals id. Returns the
// 1-based sheet row number, or -1 when absent, along with the full range
// contents so callers can reuse them.
func (s *Store) findRow(t store.Table, id string) (int, [][]interface{}, error) {
	values, err := s.client.GetValues(s.spreadsheetID, tableRange(t))
	if err != nil {
		return -1, nil, fmt.Errorf("failed to read %s: %w", t.Name, err)
	}

	for i := 1; i < len(values); i++ {
		if len(values[i]) > 0 && cellString(values[i][0]) == id {
			return i + 1, values, nil
		}
	}

	return -1, values, nil
}

// tableRange covers the tab's full column span, e.g. "requests!A:I".
func tableRange(t store.Table) string {
	last := rune('A' + len(t.Columns) - 1)
	return fmt.Sprintf("%s!A:%c", t.Name, last)
}
