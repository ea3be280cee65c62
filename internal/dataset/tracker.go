package dataset

import (
	"sync"

	"go.uber.org/zap"

	"datalens/internal/events"
	"datalens/internal/store"
)

const (
	storeNamespace = "dataset"
	storeKey       = "active"
)

// Reference identifies one uploaded dataset.
type Reference struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name"`
}

// Tracker is the single source of truth for which dataset is currently open.
// It hydrates from the persistent store exactly once, at construction, and
// persists every change so a restart resumes the same dataset. Switching
// datasets does not clear chat history, add-ons or report state; dependents
// key their own data by file id and react to the dataset-changed event.
type Tracker struct {
	mu  sync.RWMutex
	ref Reference
	gen uint64

	store *store.Store
	bus   *events.Bus
	log   *zap.Logger
}

func NewTracker(st *store.Store, bus *events.Bus, log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	t := &Tracker{store: st, bus: bus, log: log}

	var stored Reference
	if st.Get(storeNamespace, storeKey, &stored) && stored.FileID != "" {
		t.ref = stored
		t.log.Info("restored active dataset", zap.String("file_id", stored.FileID))
	}
	return t
}

func (t *Tracker) SetActiveDataset(fileID, fileName string) {
	t.mu.Lock()
	t.ref = Reference{FileID: fileID, FileName: fileName}
	t.gen++
	t.mu.Unlock()

	t.store.Set(storeNamespace, storeKey, Reference{FileID: fileID, FileName: fileName})
	t.publish(events.DatasetChanged{FileID: fileID, FileName: fileName})
}

func (t *Tracker) ClearActiveDataset() {
	t.mu.Lock()
	t.ref = Reference{}
	t.gen++
	t.mu.Unlock()

	t.store.Remove(storeNamespace, storeKey)
	t.publish(events.DatasetChanged{})
}

func (t *Tracker) ActiveFileID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ref.FileID
}

func (t *Tracker) ActiveFileName() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ref.FileName
}

func (t *Tracker) HasActiveDataset() bool {
	return t.ActiveFileID() != ""
}

// snapshot returns the current reference together with the change generation,
// letting in-flight work detect that the dataset moved underneath it.
func (t *Tracker) snapshot() (Reference, uint64) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ref, t.gen
}

func (t *Tracker) publish(ev events.DatasetChanged) {
	if t.bus == nil {
		return
	}
	if err := t.bus.PublishDatasetChanged(ev); err != nil {
		t.log.Warn("publish dataset change failed", zap.Error(err))
	}
}
