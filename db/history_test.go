package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := New(filepath.Join(t.TempDir(), "chat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func TestAppendAndList(t *testing.T) {
	database := newTestDB(t)

	require.NoError(t, database.Append("user", "hello"))
	require.NoError(t, database.Append("bot", "hi there"))

	messages, err := database.ListMessages()
	require.NoError(t, err)
	require.Len(t, messages, 2)

	assert.Equal(t, "user", messages[0].Sender)
	assert.Equal(t, "hello", messages[0].Text)
	assert.Equal(t, "bot", messages[1].Sender)
	assert.Equal(t, "hi there", messages[1].Text)
}

func TestListEmpty(t *testing.T) {
	database := newTestDB(t)

	messages, err := database.ListMessages()
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestCountMessages(t *testing.T) {
	database := newTestDB(t)

	count, err := database.CountMessages()
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	require.NoError(t, database.Append("user", "one"))
	require.NoError(t, database.Append("bot", "two"))

	count, err = database.CountMessages()
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestTrimHistoryKeepsNewest(t *testing.T) {
	database := newTestDB(t)

	require.NoError(t, database.Append("user", "oldest"))
	require.NoError(t, database.Append("bot", "middle"))
	require.NoError(t, database.Append("user", "newest"))

	trimmed, err := database.TrimHistory(2)
	require.NoError(t, err)
	assert.EqualValues(t, 1, trimmed)

	messages, err := database.ListMessages()
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "middle", messages[0].Text)
	assert.Equal(t, "newest", messages[1].Text)
}

func TestClearHistory(t *testing.T) {
	database := newTestDB(t)

	require.NoError(t, database.Append("user", "hello"))
	require.NoError(t, database.ClearHistory())

	count, err := database.CountMessages()
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "chat.db")

	database, err := New(dbPath)
	require.NoError(t, err)
	require.NoError(t, database.Append("user", "persisted"))
	require.NoError(t, database.Close())

	reopened, err := New(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	messages, err := reopened.ListMessages()
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "persisted", messages[0].Text)
}
