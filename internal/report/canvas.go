package report

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"datalens/internal/api"
	"datalens/internal/events"
)

// DefaultTitle is used when a dataset has no report yet.
const DefaultTitle = "My Custom Report"

var (
	// ErrDuplicateTile rejects adding a tile id that is already on the report.
	ErrDuplicateTile = errors.New("tile already added to report")
	// ErrTilePending rejects a second mutation for a tile id while the first
	// is still in flight (double-click guard).
	ErrTilePending = errors.New("tile mutation already in flight")
	// ErrNoReport is returned by operations that need a loaded report.
	ErrNoReport = errors.New("no active report")
)

// Backend is the slice of the API client the canvas needs.
type Backend interface {
	ListReports(ctx context.Context, fileID string) ([]api.Report, error)
	CreateReport(ctx context.Context, title, fileID string) (*api.Report, error)
	GetReport(ctx context.Context, reportID string) (*api.Report, error)
	UpdateReport(ctx context.Context, reportID string, upd api.ReportUpdate) error
	AddTile(ctx context.Context, reportID string, tile api.Tile) error
	RemoveTile(ctx context.Context, reportID, tileID string) error
}

// Canvas maintains the ordered tile sequence of the active report for one
// dataset and mediates mutations against the remote report store, which is
// the system of record. After every confirmed mutation the canvas refetches
// the report and only then publishes a report-changed event, so local state
// always reflects server-confirmed data rather than optimistic guesses.
//
// Dataset isolation: a tile whose source names another dataset is silently
// dropped on add, and filtered again at render time by VisibleTiles.
type Canvas struct {
	fileID  string
	backend Backend
	bus     *events.Bus
	log     *zap.Logger

	mu      sync.Mutex
	report  *api.Report
	pending map[string]bool
}

func NewCanvas(fileID string, backend Backend, bus *events.Bus, log *zap.Logger) *Canvas {
	if log == nil {
		log = zap.NewNop()
	}
	return &Canvas{
		fileID:  fileID,
		backend: backend,
		bus:     bus,
		log:     log,
		pending: make(map[string]bool),
	}
}

// FileID returns the dataset this canvas is bound to.
func (c *Canvas) FileID() string { return c.fileID }

// EnsureReport loads the dataset's first report, creating the default report
// when the dataset has none. Tile operations call it implicitly.
func (c *Canvas) EnsureReport(ctx context.Context) (*api.Report, error) {
	c.mu.Lock()
	if c.report != nil {
		r := cloneReport(c.report)
		c.mu.Unlock()
		return r, nil
	}
	c.mu.Unlock()

	reports, err := c.backend.ListReports(ctx, c.fileID)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	var active *api.Report
	if len(reports) > 0 {
		active = &reports[0]
	} else {
		created, err := c.backend.CreateReport(ctx, DefaultTitle, c.fileID)
		if err != nil {
			return nil, fmt.Errorf("create default report: %w", err)
		}
		active = created
	}

	c.mu.Lock()
	c.report = active
	r := cloneReport(active)
	c.mu.Unlock()
	return r, nil
}

// Report returns a copy of the current local report state, or nil when no
// report has been loaded yet.
func (c *Canvas) Report() *api.Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneReport(c.report)
}

// VisibleTiles returns the tiles to render, excluding any tile sourced from
// a different dataset regardless of how it entered the sequence.
func (c *Canvas) VisibleTiles() []api.Tile {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.report == nil {
		return nil
	}
	var out []api.Tile
	for _, tile := range c.report.Tiles {
		if tile.Source != nil && tile.Source.FileID != "" && tile.Source.FileID != c.fileID {
			c.log.Warn("blocked tile from different dataset",
				zap.String("tile_id", tile.TileID),
				zap.String("tile_file_id", tile.Source.FileID),
				zap.String("expected", c.fileID))
			continue
		}
		out = append(out, tile)
	}
	return out
}

// AddTile adds a tile to the active report. A tile sourced from another
// dataset is dropped without error: that is a stale reference, not a user
// mistake. A tile id already on the report returns ErrDuplicateTile; a tile
// id with a mutation still in flight returns ErrTilePending.
func (c *Canvas) AddTile(ctx context.Context, tile api.Tile) error {
	if tile.Source != nil && tile.Source.FileID != "" && tile.Source.FileID != c.fileID {
		c.log.Warn("dropping cross-dataset tile",
			zap.String("tile_id", tile.TileID),
			zap.String("tile_file_id", tile.Source.FileID),
			zap.String("expected", c.fileID))
		return nil
	}
	if _, err := c.EnsureReport(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	for _, existing := range c.report.Tiles {
		if existing.TileID == tile.TileID {
			c.mu.Unlock()
			return ErrDuplicateTile
		}
	}
	if c.pending[tile.TileID] {
		c.mu.Unlock()
		return ErrTilePending
	}
	c.pending[tile.TileID] = true
	reportID := c.report.ReportID
	c.mu.Unlock()

	defer c.clearPending(tile.TileID)

	if err := c.backend.AddTile(ctx, reportID, tile); err != nil {
		return fmt.Errorf("add tile %s: %w", tile.TileID, err)
	}
	return c.refresh(ctx, reportID)
}

// RemoveTile removes a tile from the active report.
func (c *Canvas) RemoveTile(ctx context.Context, tileID string) error {
	c.mu.Lock()
	if c.report == nil {
		c.mu.Unlock()
		return ErrNoReport
	}
	if c.pending[tileID] {
		c.mu.Unlock()
		return ErrTilePending
	}
	c.pending[tileID] = true
	reportID := c.report.ReportID
	c.mu.Unlock()

	defer c.clearPending(tileID)

	if err := c.backend.RemoveTile(ctx, reportID, tileID); err != nil {
		return fmt.Errorf("remove tile %s: %w", tileID, err)
	}
	return c.refresh(ctx, reportID)
}

// ReorderLocal moves the tile at index from to index to, synchronously and
// infallibly, so a drag in progress stays responsive. The new order is not
// persisted until PersistOrder is called (on drop).
func (c *Canvas) ReorderLocal(from, to int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.report == nil {
		return ErrNoReport
	}
	tiles := c.report.Tiles
	if from < 0 || from >= len(tiles) || to < 0 || to >= len(tiles) {
		return fmt.Errorf("reorder out of range: %d -> %d with %d tiles", from, to, len(tiles))
	}
	if from == to {
		return nil
	}
	moved := tiles[from]
	tiles = append(tiles[:from], tiles[from+1:]...)
	tiles = append(tiles[:to], append([]api.Tile{moved}, tiles[to:]...)...)
	c.report.Tiles = tiles
	return nil
}

// PersistOrder writes the full local tile sequence to the remote store. The
// remote store is the system of record, so a failed persist is returned to
// the caller to surface or retry; it is never silently dropped.
func (c *Canvas) PersistOrder(ctx context.Context) error {
	c.mu.Lock()
	if c.report == nil {
		c.mu.Unlock()
		return ErrNoReport
	}
	reportID := c.report.ReportID
	tiles := make([]api.Tile, len(c.report.Tiles))
	copy(tiles, c.report.Tiles)
	c.mu.Unlock()

	if err := c.backend.UpdateReport(ctx, reportID, api.ReportUpdate{Tiles: &tiles}); err != nil {
		return fmt.Errorf("persist tile order: %w", err)
	}
	return c.refresh(ctx, reportID)
}

// UpdateTitle persists a new report title.
func (c *Canvas) UpdateTitle(ctx context.Context, title string) error {
	c.mu.Lock()
	if c.report == nil {
		c.mu.Unlock()
		return ErrNoReport
	}
	reportID := c.report.ReportID
	c.mu.Unlock()

	if err := c.backend.UpdateReport(ctx, reportID, api.ReportUpdate{Title: &title}); err != nil {
		return fmt.Errorf("update report title: %w", err)
	}
	return c.refresh(ctx, reportID)
}

// refresh refetches the report after a confirmed mutation and publishes the
// report-changed event. The fetch is sequenced strictly after the mutation's
// acknowledgment; subscribers never observe the event before the canvas
// holds the confirmed state.
func (c *Canvas) refresh(ctx context.Context, reportID string) error {
	fresh, err := c.backend.GetReport(ctx, reportID)
	if err != nil {
		return fmt.Errorf("refetch report %s: %w", reportID, err)
	}

	c.mu.Lock()
	c.report = fresh
	c.mu.Unlock()

	if c.bus != nil {
		if err := c.bus.PublishReportChanged(events.ReportChanged{ReportID: reportID, FileID: c.fileID}); err != nil {
			c.log.Warn("publish report change failed", zap.Error(err))
		}
	}
	return nil
}

func (c *Canvas) clearPending(tileID string) {
	c.mu.Lock()
	delete(c.pending, tileID)
	c.mu.Unlock()
}

func cloneReport(r *api.Report) *api.Report {
	if r == nil {
		return nil
	}
	out := *r
	out.Tiles = make([]api.Tile, len(r.Tiles))
	copy(out.Tiles, r.Tiles)
	return &out
}
