package memstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jala-community/jala-match/pkg/store"
)

func TestAppendThenListRoundTrip(t *testing.T) {
	st := New()
	ctx := t.Context()

	created, err := st.Append(ctx, store.KindMusicians, store.Record{
		"name":       "Leila Rahimi",
		"instrument": "Voice",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created["id"])
	assert.NotEmpty(t, created["createdAt"])
	assert.Equal(t, true, created["available"])
	assert.Equal(t, 0, created["performances"])

	records, err := st.List(ctx, store.KindMusicians)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Leila Rahimi", records[0]["name"])
	assert.Equal(t, created["id"], records[0]["id"])
}

func TestListNewestFirst(t *testing.T) {
	st := New()
	ctx := t.Context()

	_, err := st.Append(ctx, store.KindRequests, store.Record{"committee": "first"})
	require.NoError(t, err)
	_, err = st.Append(ctx, store.KindRequests, store.Record{"committee": "second"})
	require.NoError(t, err)

	records, err := st.List(ctx, store.KindRequests)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "second", records[0]["committee"])
	assert.Equal(t, "first", records[1]["committee"])
}

func TestPatchMergesFields(t *testing.T) {
	st := New()
	ctx := t.Context()

	created, err := st.Append(ctx, store.KindRequests, store.Record{
		"committee": "Feast Committee",
		"needs":     "Two songs",
	})
	require.NoError(t, err)
	id := created["id"].(string)

	updated, err := st.Patch(ctx, store.KindRequests, id, store.Record{"status": store.StatusPaid})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, store.StatusPaid, updated["status"])
	// Untouched fields survive the merge
	assert.Equal(t, "Feast Committee", updated["committee"])
	assert.Equal(t, "Two songs", updated["needs"])
}

func TestPatchMissingID(t *testing.T) {
	st := New()

	rec, err := st.Patch(t.Context(), store.KindRequests, "no-such-id", store.Record{"status": "Paid"})
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestRemove(t *testing.T) {
	st := New()
	ctx := t.Context()

	created, err := st.Append(ctx, store.KindMatches, store.Record{"requestId": "r1", "musicianId": "m1"})
	require.NoError(t, err)

	removed, err := st.Remove(ctx, store.KindMatches, created["id"].(string))
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = st.Remove(ctx, store.KindMatches, created["id"].(string))
	require.NoError(t, err)
	assert.False(t, removed)

	records, err := st.List(ctx, store.KindMatches)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestUnknownKind(t *testing.T) {
	st := New()

	_, err := st.List(t.Context(), store.Kind("committees"))
	assert.ErrorIs(t, err, store.ErrUnknownKind)
}

func TestListReturnsCopies(t *testing.T) {
	st := New()
	ctx := t.Context()

	created, err := st.Append(ctx, store.KindMusicians, store.Record{"name": "original"})
	require.NoError(t, err)

	records, err := st.List(ctx, store.KindMusicians)
	require.NoError(t, err)
	records[0]["name"] = "mutated"

	again, err := st.List(ctx, store.KindMusicians)
	require.NoError(t, err)
	assert.Equal(t, "original", again[0]["name"])
	assert.Equal(t, created["id"], again[0]["id"])
}
