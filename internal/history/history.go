package history

import (
	"sync"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"datalens/internal/api"
	"datalens/internal/store"
)

const storeNamespace = "chat-history"

// Cache is the per-dataset chat log: an in-memory tier read through to the
// persistent store. The log is strictly append-ordered; the only destructive
// operation is Clear. Writes for the same dataset are serialized with a
// per-key lock so rapid appends never lose an update. No method errors to
// the caller; storage failures degrade to in-memory-only behavior.
type Cache struct {
	mem   *gocache.Cache
	store *store.Store
	log   *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewCache(st *store.Store, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		mem:   gocache.New(gocache.NoExpiration, 0),
		store: st,
		log:   log,
		locks: make(map[string]*sync.Mutex),
	}
}

// GetMessages returns the dataset's chat log in insertion order, hydrating
// the memory tier from the store on first access. Absent logs come back as
// an empty slice.
func (c *Cache) GetMessages(fileID string) []api.ChatMessage {
	lock := c.keyLock(fileID)
	lock.Lock()
	defer lock.Unlock()
	return copyMessages(c.loadLocked(fileID))
}

// SetMessages replaces the log in both tiers. The memory tier is updated
// synchronously; the persistent write is best effort.
func (c *Cache) SetMessages(fileID string, messages []api.ChatMessage) {
	lock := c.keyLock(fileID)
	lock.Lock()
	defer lock.Unlock()
	c.writeLocked(fileID, copyMessages(messages))
}

// AddMessage appends one message, reading through the cache when the log is
// not yet in memory.
func (c *Cache) AddMessage(fileID string, message api.ChatMessage) {
	lock := c.keyLock(fileID)
	lock.Lock()
	defer lock.Unlock()
	c.writeLocked(fileID, append(c.loadLocked(fileID), message))
}

// ClearMessages removes the dataset's log from both tiers. Clearing an
// absent log is a no-op.
func (c *Cache) ClearMessages(fileID string) {
	lock := c.keyLock(fileID)
	lock.Lock()
	defer lock.Unlock()
	c.mem.Delete(fileID)
	c.store.Remove(storeNamespace, fileID)
}

func (c *Cache) loadLocked(fileID string) []api.ChatMessage {
	if v, ok := c.mem.Get(fileID); ok {
		return v.([]api.ChatMessage)
	}
	var stored []api.ChatMessage
	if c.store.Get(storeNamespace, fileID, &stored) && len(stored) > 0 {
		c.mem.Set(fileID, stored, gocache.NoExpiration)
		return stored
	}
	return nil
}

func (c *Cache) writeLocked(fileID string, messages []api.ChatMessage) {
	c.mem.Set(fileID, messages, gocache.NoExpiration)
	c.store.Set(storeNamespace, fileID, messages)
}

func (c *Cache) keyLock(fileID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[fileID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[fileID] = l
	}
	return l
}

func copyMessages(in []api.ChatMessage) []api.ChatMessage {
	out := make([]api.ChatMessage, len(in))
	copy(out, in)
	return out
}
