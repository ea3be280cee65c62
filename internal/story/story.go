package story

import (
	"sync"

	"datalens/internal/store"
)

const (
	storyNamespace   = "data-story"
	enabledNamespace = "data-story-enabled"
)

// DataStory is the AI-written narrative for one dataset.
type DataStory struct {
	Story       string `json:"story"`
	GeneratedAt string `json:"generated_at"`
}

// Cache holds per-dataset data stories and their enabled flags. The two are
// persisted independently: enabled flags are hydrated eagerly at
// construction, stories are read through lazily on first access.
type Cache struct {
	mu      sync.Mutex
	stories map[string]DataStory
	enabled map[string]bool
	store   *store.Store
}

func NewCache(st *store.Store) *Cache {
	c := &Cache{
		stories: make(map[string]DataStory),
		enabled: make(map[string]bool),
		store:   st,
	}
	for _, fileID := range st.Keys(enabledNamespace) {
		var on bool
		if st.Get(enabledNamespace, fileID, &on) {
			c.enabled[fileID] = on
		}
	}
	return c
}

func (c *Cache) GetStory(fileID string) (DataStory, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.stories[fileID]; ok {
		return s, true
	}
	var stored DataStory
	if c.store.Get(storyNamespace, fileID, &stored) {
		c.stories[fileID] = stored
		return stored, true
	}
	return DataStory{}, false
}

func (c *Cache) SetStory(fileID string, s DataStory) {
	c.mu.Lock()
	c.stories[fileID] = s
	c.mu.Unlock()
	c.store.Set(storyNamespace, fileID, s)
}

// ClearStory drops the story and its enabled flag from both tiers.
func (c *Cache) ClearStory(fileID string) {
	c.mu.Lock()
	delete(c.stories, fileID)
	delete(c.enabled, fileID)
	c.mu.Unlock()
	c.store.Remove(storyNamespace, fileID)
	c.store.Remove(enabledNamespace, fileID)
}

func (c *Cache) IsEnabled(fileID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled[fileID]
}

func (c *Cache) SetEnabled(fileID string, on bool) {
	c.mu.Lock()
	c.enabled[fileID] = on
	c.mu.Unlock()
	c.store.Set(enabledNamespace, fileID, on)
}
