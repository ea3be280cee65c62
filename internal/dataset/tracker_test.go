package dataset

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"datalens/internal/api"
	"datalens/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(t.TempDir(), nil)
	require.NoError(t, err)
	return st
}

func TestTrackerHydratesFromStore(t *testing.T) {
	st := newTestStore(t)
	st.Set("dataset", "active", Reference{FileID: "f1", FileName: "sales.csv"})

	tr := NewTracker(st, nil, nil)
	require.True(t, tr.HasActiveDataset())
	require.Equal(t, "f1", tr.ActiveFileID())
	require.Equal(t, "sales.csv", tr.ActiveFileName())
}

func TestTrackerStartsEmptyWithoutStoredState(t *testing.T) {
	tr := NewTracker(newTestStore(t), nil, nil)
	require.False(t, tr.HasActiveDataset())
	require.Empty(t, tr.ActiveFileID())
}

func TestSetAndClearPersist(t *testing.T) {
	st := newTestStore(t)
	tr := NewTracker(st, nil, nil)

	tr.SetActiveDataset("f2", "orders.xlsx")

	// A fresh tracker over the same store resumes the dataset.
	resumed := NewTracker(st, nil, nil)
	require.Equal(t, "f2", resumed.ActiveFileID())

	tr.ClearActiveDataset()
	cleared := NewTracker(st, nil, nil)
	require.False(t, cleared.HasActiveDataset())
}

// fakeMetadataClient blocks each call until released, so tests can interleave
// a dataset switch with an in-flight fetch.
type fakeMetadataClient struct {
	mu      sync.Mutex
	started chan struct{}
	release chan struct{}
	err     error
}

func (f *fakeMetadataClient) FileMetadata(ctx context.Context, fileID string, previewRows int) (*api.DatasetMeta, error) {
	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &api.DatasetMeta{FileID: fileID, Filename: fileID + ".csv"}, nil
}

func TestLoaderReturnsMetadataForActiveDataset(t *testing.T) {
	tr := NewTracker(newTestStore(t), nil, nil)
	tr.SetActiveDataset("f1", "sales.csv")

	l := NewLoader(tr, &fakeMetadataClient{}, nil)
	meta, err := l.Load(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, "f1", meta.FileID)
}

func TestLoaderNoActiveDataset(t *testing.T) {
	tr := NewTracker(newTestStore(t), nil, nil)
	l := NewLoader(tr, &fakeMetadataClient{}, nil)
	_, err := l.Load(context.Background(), 10)
	require.ErrorIs(t, err, ErrNoDataset)
}

func TestLoaderDiscardsStaleResponse(t *testing.T) {
	tr := NewTracker(newTestStore(t), nil, nil)
	tr.SetActiveDataset("f1", "sales.csv")

	client := &fakeMetadataClient{started: make(chan struct{}), release: make(chan struct{})}
	l := NewLoader(tr, client, nil)

	done := make(chan error, 1)
	go func() {
		_, err := l.Load(context.Background(), 10)
		done <- err
	}()

	// Switch datasets while the f1 fetch is in flight, then let the old
	// response arrive.
	<-client.started
	tr.SetActiveDataset("f2", "orders.csv")
	close(client.release)

	require.ErrorIs(t, <-done, ErrStale)
	require.Equal(t, "f2", tr.ActiveFileID())
}

func TestLoaderClearsGoneDataset(t *testing.T) {
	tr := NewTracker(newTestStore(t), nil, nil)
	tr.SetActiveDataset("f1", "sales.csv")

	client := &fakeMetadataClient{err: api.ErrDatasetGone}
	l := NewLoader(tr, client, nil)

	_, err := l.Load(context.Background(), 10)
	require.ErrorIs(t, err, api.ErrDatasetGone)
	require.False(t, tr.HasActiveDataset())
}
