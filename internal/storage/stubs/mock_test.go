package stubs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readinglog/internal/storage"
)

func TestMockDB_CreateRecord(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()
	require.NoError(t, db.Initialize(ctx))

	id, err := db.CreateRecord(ctx, "johndoe", "books", []byte(`{"title":"Dune"}`))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	record, found, err := db.GetRecord(ctx, "johndoe", "books", id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, id, record.ID)
	assert.JSONEq(t, `{"title":"Dune"}`, string(record.Data))
}

func TestMockDB_ListRecords_InsertionOrder(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	var ids []string
	for _, title := range []string{"C", "A", "B"} {
		id, err := db.CreateRecord(ctx, "johndoe", "books", []byte(`{"title":"`+title+`"}`))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	records, err := db.ListRecords(ctx, "johndoe", "books")
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, record := range records {
		assert.Equal(t, ids[i], record.ID)
	}
}

func TestMockDB_ListRecords_EmptyCollection(t *testing.T) {
	db := NewMockDB()

	records, err := db.ListRecords(context.Background(), "johndoe", "books")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMockDB_UsersAreIsolated(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	id, err := db.CreateRecord(ctx, "johndoe", "books", []byte(`{}`))
	require.NoError(t, err)

	_, found, err := db.GetRecord(ctx, "janedoe", "books", id)
	require.NoError(t, err)
	assert.False(t, found)

	records, err := db.ListRecords(ctx, "janedoe", "books")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMockDB_UpdateRecord(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	id, err := db.CreateRecord(ctx, "johndoe", "books", []byte(`{"v":1}`))
	require.NoError(t, err)

	require.NoError(t, db.UpdateRecord(ctx, "johndoe", "books", id, []byte(`{"v":2}`)))

	record, found, err := db.GetRecord(ctx, "johndoe", "books", id)
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{"v":2}`, string(record.Data))

	err = db.UpdateRecord(ctx, "johndoe", "books", "missing", []byte(`{}`))
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)
}

func TestMockDB_DeleteRecord(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	first, err := db.CreateRecord(ctx, "johndoe", "books", []byte(`{}`))
	require.NoError(t, err)
	second, err := db.CreateRecord(ctx, "johndoe", "books", []byte(`{}`))
	require.NoError(t, err)

	require.NoError(t, db.DeleteRecord(ctx, "johndoe", "books", first))
	require.NoError(t, db.DeleteRecord(ctx, "johndoe", "books", first), "deleting twice must not fail")

	_, found, err := db.GetRecord(ctx, "johndoe", "books", first)
	require.NoError(t, err)
	assert.False(t, found)

	records, err := db.ListRecords(ctx, "johndoe", "books")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, second, records[0].ID)
}

func TestMockDB_ReturnedDataIsACopy(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	data := []byte(`{"v":1}`)
	id, err := db.CreateRecord(ctx, "johndoe", "books", data)
	require.NoError(t, err)
	data[5] = '9'

	record, _, err := db.GetRecord(ctx, "johndoe", "books", id)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1}`, string(record.Data))
}
