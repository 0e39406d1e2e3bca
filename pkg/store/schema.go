package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ColumnType describes how a backend stores and coerces a column.
type ColumnType string

const (
	ColText ColumnType = "text"
	ColBool ColumnType = "bool"
	ColInt  ColumnType = "int"
	ColTime ColumnType = "time"
)

// Column maps one canonical field to its backend representation.
type Column struct {
	// Name is the canonical (camelCase) field name.
	Name string
	// DBName is the row-store column name (snake_case).
	DBName string
	Type   ColumnType
}

// Table describes one entity collection. The id column is always first;
// the spreadsheet backend relies on that for its scan-by-id.
type Table struct {
	Kind    Kind
	Name    string
	Columns []Column
}

var tables = map[Kind]Table{
	KindMusicians: {
		Kind: KindMusicians,
		Name: "musicians",
		Columns: []Column{
			{"id", "id", ColText},
			{"name", "name", ColText},
			{"community", "community", ColText},
			{"city", "city", ColText},
			{"country", "country", ColText},
			{"musicCategory", "music_category", ColText},
			{"instrument", "instrument", ColText},
			{"bio", "bio", ColText},
			{"contact", "contact", ColText},
			{"compensationPreference", "compensation_preference", ColText},
			{"available", "available", ColBool},
			{"performances", "performances", ColInt},
			{"createdAt", "created_at", ColTime},
			{"updatedAt", "updated_at", ColTime},
		},
	},
	KindRequests: {
		Kind: KindRequests,
		Name: "requests",
		Columns: []Column{
			{"id", "id", ColText},
			{"committee", "committee", ColText},
			{"community", "community", ColText},
			{"date", "date", ColText},
			{"needs", "needs", ColText},
			{"notes", "notes", ColText},
			{"status", "status", ColText},
			{"createdAt", "created_at", ColTime},
			{"updatedAt", "updated_at", ColTime},
		},
	},
	KindResponses: {
		Kind: KindResponses,
		Name: "responses",
		Columns: []Column{
			{"id", "id", ColText},
			{"requestId", "request_id", ColText},
			{"musicianId", "musician_id", ColText},
			{"message", "message", ColText},
			{"status", "status", ColText},
			{"createdAt", "created_at", ColTime},
			{"updatedAt", "updated_at", ColTime},
		},
	},
	KindMatches: {
		Kind: KindMatches,
		Name: "matches",
		Columns: []Column{
			{"id", "id", ColText},
			{"requestId", "request_id", ColText},
			{"musicianId", "musician_id", ColText},
			{"createdAt", "created_at", ColTime},
			{"updatedAt", "updated_at", ColTime},
		},
	},
}

// TableFor returns the schema table for a kind.
func TableFor(kind Kind) (Table, error) {
	t, ok := tables[kind]
	if !ok {
		return Table{}, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return t, nil
}

// Column looks up a column by canonical name.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Generated marks columns the adapter stamps itself on write.
func (c Column) Generated() bool {
	return c.Name == "id" || c.Name == "createdAt" || c.Name == "updatedAt"
}

// ApplyDefaults fills entity defaults onto a record in place:
// musicians start available with zero performances, requests open,
// responses pending.
func ApplyDefaults(kind Kind, rec Record) {
	switch kind {
	case KindMusicians:
		if _, ok := rec["available"]; !ok {
			rec["available"] = true
		}
		if _, ok := rec["performances"]; !ok {
			rec["performances"] = 0
		}
	case KindRequests:
		if s, _ := rec["status"].(string); s == "" {
			rec["status"] = StatusOpen
		}
	case KindResponses:
		if s, _ := rec["status"].(string); s == "" {
			rec["status"] = "Pending"
		}
	}
}

// CoerceValue normalizes a caller-supplied value to the column's canonical
// type. Total: absent or unparsable input becomes the type's zero value,
// never an error.
func CoerceValue(col Column, v any) any {
	switch col.Type {
	case ColBool:
		switch b := v.(type) {
		case bool:
			return b
		case string:
			return strings.EqualFold(b, "true")
		default:
			return false
		}
	case ColInt:
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case float64:
			return int(n)
		case string:
			parsed, err := strconv.Atoi(strings.TrimSpace(n))
			if err != nil {
				return 0
			}
			return parsed
		default:
			return 0
		}
	default:
		switch s := v.(type) {
		case nil:
			return ""
		case string:
			return s
		case time.Time:
			return s.UTC().Format(time.RFC3339)
		default:
			return fmt.Sprintf("%v", s)
		}
	}
}

// Clone copies a record so callers cannot alias backend state.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
