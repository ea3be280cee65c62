package addons

import (
	"sort"
	"sync"
)

// Charts asks the chat endpoint to answer with a structured chart payload.
const Charts = "charts"

// Known lists every add-on the backend understands.
var Known = []string{Charts}

// Selection is the session-scoped set of toggled chat add-ons. It is never
// persisted; the chat subsystem resets it when the chat log is cleared or
// the dataset changes.
type Selection struct {
	mu     sync.Mutex
	active map[string]bool
}

func NewSelection() *Selection {
	return &Selection{active: make(map[string]bool)}
}

// Toggle flips membership and reports the new state.
func (s *Selection) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active[id] {
		delete(s.active, id)
		return false
	}
	s.active[id] = true
	return true
}

func (s *Selection) IsActive(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active[id]
}

// Active returns the toggled add-on ids, sorted for stable request payloads.
func (s *Selection) Active() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.active) == 0 {
		return nil
	}
	out := make([]string, 0, len(s.active))
	for id := range s.active {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Reset empties the selection.
func (s *Selection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = make(map[string]bool)
}
