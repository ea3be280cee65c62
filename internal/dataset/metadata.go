package dataset

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"datalens/internal/api"
)

// ErrStale marks a metadata response that arrived after the active dataset
// had already been switched. The caller must drop the result.
var ErrStale = errors.New("dataset changed while request was in flight")

// ErrNoDataset is returned when a load is attempted with no active dataset.
var ErrNoDataset = errors.New("no active dataset")

// MetadataClient is the slice of the backend client the loader needs.
type MetadataClient interface {
	FileMetadata(ctx context.Context, fileID string, previewRows int) (*api.DatasetMeta, error)
}

// Loader fetches metadata for the active dataset. Responses are committed
// only while the dataset that requested them is still active; a fetch that
// resolves after a switch is discarded rather than applied. A gone dataset
// (404/410) clears the active reference.
type Loader struct {
	tracker *Tracker
	client  MetadataClient
	log     *zap.Logger
}

func NewLoader(tracker *Tracker, client MetadataClient, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{tracker: tracker, client: client, log: log}
}

func (l *Loader) Load(ctx context.Context, previewRows int) (*api.DatasetMeta, error) {
	ref, gen := l.tracker.snapshot()
	if ref.FileID == "" {
		return nil, ErrNoDataset
	}

	meta, err := l.client.FileMetadata(ctx, ref.FileID, previewRows)

	if _, now := l.tracker.snapshot(); now != gen {
		l.log.Debug("discarding stale metadata response", zap.String("file_id", ref.FileID))
		return nil, ErrStale
	}

	if err != nil {
		if errors.Is(err, api.ErrDatasetGone) {
			l.tracker.ClearActiveDataset()
			return nil, fmt.Errorf("dataset %s: %w", ref.FileID, api.ErrDatasetGone)
		}
		return nil, err
	}
	return meta, nil
}
