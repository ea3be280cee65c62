package story

import (
	"testing"

	"github.com/stretchr/testify/require"

	"datalens/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(t.TempDir(), nil)
	require.NoError(t, err)
	return st
}

func TestStoryRoundTrip(t *testing.T) {
	st := newTestStore(t)
	c := NewCache(st)

	_, ok := c.GetStory("f1")
	require.False(t, ok)

	c.SetStory("f1", DataStory{Story: "Revenue grew 12%.", GeneratedAt: "2026-08-30T10:00:00Z"})
	got, ok := c.GetStory("f1")
	require.True(t, ok)
	require.Equal(t, "Revenue grew 12%.", got.Story)
}

func TestStoryIsLazilyReadThrough(t *testing.T) {
	st := newTestStore(t)
	st.Set("data-story", "f1", DataStory{Story: "persisted"})

	c := NewCache(st)
	got, ok := c.GetStory("f1")
	require.True(t, ok)
	require.Equal(t, "persisted", got.Story)
}

func TestEnabledFlagsHydrateEagerly(t *testing.T) {
	st := newTestStore(t)
	st.Set("data-story-enabled", "f1", true)
	st.Set("data-story-enabled", "f2", false)

	c := NewCache(st)
	require.True(t, c.IsEnabled("f1"))
	require.False(t, c.IsEnabled("f2"))
	require.False(t, c.IsEnabled("f3"))
}

func TestClearStoryRemovesBothEntries(t *testing.T) {
	st := newTestStore(t)
	c := NewCache(st)
	c.SetStory("f1", DataStory{Story: "s"})
	c.SetEnabled("f1", true)

	c.ClearStory("f1")
	_, ok := c.GetStory("f1")
	require.False(t, ok)
	require.False(t, c.IsEnabled("f1"))

	// Both tiers are gone: a fresh cache sees nothing.
	fresh := NewCache(st)
	_, ok = fresh.GetStory("f1")
	require.False(t, ok)
	require.False(t, fresh.IsEnabled("f1"))
}
