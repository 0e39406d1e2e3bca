package sheets

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jala-community/jala-match/pkg/store"
)

// cellString renders a raw spreadsheet cell as a string. Cells come back
// from the API as interface{} and may be absent entirely.
func cellString(cell interface{}) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// normalizeRow converts one sheet row into a canonical record. Missing
// cells become empty strings; bool and count columns are coerced the way
// the sheet stores them (the string "true", a numeric string).
func normalizeRow(t store.Table, row []interface{}) store.Record {
	rec := make(store.Record, len(t.Columns))
	for i, col := range t.Columns {
		var raw string
		if i < len(row) {
			raw = cellString(row[i])
		}

		switch col.Type {
		case store.ColBool:
			rec[col.Name] = strings.EqualFold(strings.TrimSpace(raw), "true")
		case store.ColInt:
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				n = 0
			}
			rec[col.Name] = n
		default:
			rec[col.Name] = raw
		}
	}
	return rec
}

// rowValues renders a canonical record as one sheet row, every cell a
// string, in schema column order.
func rowValues(t store.Table, rec store.Record) []interface{} {
	row := make([]interface{}, len(t.Columns))
	for i, col := range t.Columns {
		v := store.CoerceValue(col, rec[col.Name])
		switch col.Type {
		case store.ColBool:
			row[i] = strconv.FormatBool(v.(bool))
		case store.ColInt:
			row[i] = strconv.Itoa(v.(int))
		default:
			row[i] = v.(string)
		}
	}
	return row
}
