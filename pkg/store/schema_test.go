package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableForKnownKinds(t *testing.T) {
	for _, kind := range Kinds {
		table, err := TableFor(kind)
		require.NoError(t, err)
		assert.Equal(t, kind, table.Kind)
		assert.Equal(t, "id", table.Columns[0].Name, "id must be the first column")
	}
}

func TestTableForUnknownKind(t *testing.T) {
	_, err := TableFor(Kind("committees"))
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestColumnLookup(t *testing.T) {
	table, err := TableFor(KindMusicians)
	require.NoError(t, err)

	col, ok := table.Column("musicCategory")
	require.True(t, ok)
	assert.Equal(t, "music_category", col.DBName)

	_, ok = table.Column("shoeSize")
	assert.False(t, ok)
}

func TestApplyDefaults(t *testing.T) {
	musician := Record{"name": "Leila"}
	ApplyDefaults(KindMusicians, musician)
	assert.Equal(t, true, musician["available"])
	assert.Equal(t, 0, musician["performances"])

	// Explicit values are left alone
	unavailable := Record{"available": false, "performances": 7}
	ApplyDefaults(KindMusicians, unavailable)
	assert.Equal(t, false, unavailable["available"])
	assert.Equal(t, 7, unavailable["performances"])

	request := Record{}
	ApplyDefaults(KindRequests, request)
	assert.Equal(t, StatusOpen, request["status"])

	paid := Record{"status": StatusPaid}
	ApplyDefaults(KindRequests, paid)
	assert.Equal(t, StatusPaid, paid["status"])
}

func TestCoerceValueBool(t *testing.T) {
	col := Column{Name: "available", DBName: "available", Type: ColBool}

	assert.Equal(t, true, CoerceValue(col, true))
	assert.Equal(t, true, CoerceValue(col, "TRUE"))
	assert.Equal(t, false, CoerceValue(col, "yes"))
	assert.Equal(t, false, CoerceValue(col, nil))
}

func TestCoerceValueInt(t *testing.T) {
	col := Column{Name: "performances", DBName: "performances", Type: ColInt}

	assert.Equal(t, 3, CoerceValue(col, 3))
	assert.Equal(t, 3, CoerceValue(col, float64(3)))
	assert.Equal(t, 3, CoerceValue(col, "3"))
	assert.Equal(t, 0, CoerceValue(col, "not a number"))
	assert.Equal(t, 0, CoerceValue(col, nil))
}

func TestCoerceValueText(t *testing.T) {
	col := Column{Name: "name", DBName: "name", Type: ColText}

	assert.Equal(t, "Leila", CoerceValue(col, "Leila"))
	assert.Equal(t, "", CoerceValue(col, nil))
	assert.Equal(t, "42", CoerceValue(col, 42))
}

func TestUnconfiguredStore(t *testing.T) {
	st := Unconfigured("Set postgres.url")

	_, err := st.List(t.Context(), KindRequests)
	require.ErrorIs(t, err, ErrConfigMissing)
	assert.Contains(t, err.Error(), "Set postgres.url")

	_, err = st.Append(t.Context(), KindRequests, Record{})
	assert.ErrorIs(t, err, ErrConfigMissing)

	_, err = st.Patch(t.Context(), KindRequests, "id", Record{})
	assert.ErrorIs(t, err, ErrConfigMissing)

	_, err = st.Remove(t.Context(), KindRequests, "id")
	assert.ErrorIs(t, err, ErrConfigMissing)
}
