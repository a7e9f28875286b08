// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/parley-tui/internal/api"
	"github.com/jeranaias/parley-tui/internal/chat"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	return store
}

func testConv(id string, date time.Time) chat.Conversation {
	return chat.Conversation{
		ID:       id,
		Title:    "Test " + id,
		Model:    "gpt",
		Date:     date,
		Messages: []chat.Message{{Role: chat.RoleUser, Content: "hello"}},
	}
}

// =============================================================================
// HISTORY TESTS
// =============================================================================

func TestLoadHistory_EmptyStore(t *testing.T) {
	store := testStore(t)

	history, err := store.LoadHistory()
	require.NoError(t, err)
	require.NotNil(t, history)
	require.Empty(t, history)
}

func TestUpsertConversation_RoundTrip(t *testing.T) {
	store := testStore(t)
	conv := testConv("c1", time.Now().UTC().Truncate(time.Second))

	require.NoError(t, store.UpsertConversation(conv))

	got, err := store.GetConversation("c1")
	require.NoError(t, err)
	require.Equal(t, conv.Title, got.Title)
	require.Equal(t, conv.Messages, got.Messages)
	require.True(t, conv.Date.Equal(got.Date))
}

func TestUpsertConversation_ReplacesExisting(t *testing.T) {
	store := testStore(t)
	conv := testConv("c1", time.Now())
	require.NoError(t, store.UpsertConversation(conv))

	conv.Title = "Renamed"
	require.NoError(t, store.UpsertConversation(conv))

	history, err := store.LoadHistory()
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, "Renamed", history[0].Title)
}

func TestGetConversation_NotFound(t *testing.T) {
	store := testStore(t)
	_, err := store.GetConversation("missing")
	require.ErrorIs(t, err, ErrConversationNotFound)
}

func TestDeleteConversation(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.UpsertConversation(testConv("c1", time.Now())))
	require.NoError(t, store.UpsertConversation(testConv("c2", time.Now())))

	require.NoError(t, store.DeleteConversation("c1"))

	_, err := store.GetConversation("c1")
	require.ErrorIs(t, err, ErrConversationNotFound)

	_, err = store.GetConversation("c2")
	require.NoError(t, err)
}

func TestDeleteConversation_Missing(t *testing.T) {
	store := testStore(t)
	require.ErrorIs(t, store.DeleteConversation("nope"), ErrConversationNotFound)
}

func TestListConversations_MostRecentFirst(t *testing.T) {
	store := testStore(t)
	now := time.Now().UTC()
	require.NoError(t, store.UpsertConversation(testConv("old", now.Add(-2*time.Hour))))
	require.NoError(t, store.UpsertConversation(testConv("new", now)))
	require.NoError(t, store.UpsertConversation(testConv("mid", now.Add(-time.Hour))))

	list, err := store.ListConversations()
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "new", list[0].ID)
	require.Equal(t, "mid", list[1].ID)
	require.Equal(t, "old", list[2].ID)
}

func TestHistory_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, store.UpsertConversation(testConv("c1", time.Now())))

	reopened, err := Open(dir)
	require.NoError(t, err)
	got, err := reopened.GetConversation("c1")
	require.NoError(t, err)
	require.Equal(t, "Test c1", got.Title)
}

func TestHistory_NoTempFilesLeftBehind(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.UpsertConversation(testConv("c1", time.Now())))

	entries, err := os.ReadDir(store.Dir)
	require.NoError(t, err)
	for _, e := range entries {
		require.NotContains(t, e.Name(), ".tmp-")
	}
	require.FileExists(t, filepath.Join(store.Dir, "history.json"))
}

// =============================================================================
// USER SLOT TESTS
// =============================================================================

func TestUserSlot_RoundTrip(t *testing.T) {
	store := testStore(t)

	_, ok, err := store.LoadUser()
	require.NoError(t, err)
	require.False(t, ok)

	saved := api.User{ID: "u1", Name: "Ada", Email: "ada@example.com", Token: "tok"}
	require.NoError(t, store.SaveUser(saved))

	got, ok, err := store.LoadUser()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, saved, got)
}

func TestClearUser(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.SaveUser(api.User{ID: "u1"}))
	require.NoError(t, store.ClearUser())

	_, ok, err := store.LoadUser()
	require.NoError(t, err)
	require.False(t, ok)

	// Clearing an already-clear slot is fine.
	require.NoError(t, store.ClearUser())
}

// =============================================================================
// MODELS SLOT TESTS
// =============================================================================

func TestModelsSlot_RoundTrip(t *testing.T) {
	store := testStore(t)

	_, ok, err := store.LoadModels()
	require.NoError(t, err)
	require.False(t, ok)

	models := []api.Model{{ID: "gpt", Title: "GPT", Usage: "chat", Limit: 50}}
	require.NoError(t, store.SaveModels(models))

	got, ok, err := store.LoadModels()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, models, got)
}
