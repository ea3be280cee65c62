package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"datalens/internal/auth"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *auth.Bridge) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	bridge := auth.NewBridge()
	return NewClient(srv.URL, bridge, 5*time.Second, nil), bridge
}

func TestUploadParsesMetadata(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		require.Equal(t, "sales.csv", hdr.Filename)

		json.NewEncoder(w).Encode(DatasetMeta{
			FileID:      "f1",
			Filename:    "sales.csv",
			Rows:        120,
			Columns:     4,
			ColumnNames: []string{"date", "region", "units", "revenue"},
		})
	}))

	meta, err := c.Upload(context.Background(), "sales.csv", strings.NewReader("date,region,units,revenue\n"))
	require.NoError(t, err)
	require.Equal(t, "f1", meta.FileID)
	require.Equal(t, 120, meta.Rows)
}

func TestFileMetadataGoneDataset(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusGone} {
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		_, err := c.FileMetadata(context.Background(), "f-old", 10)
		require.ErrorIs(t, err, ErrDatasetGone)
	}
}

func TestFileMetadataSendsPreviewRowsAndBearer(t *testing.T) {
	c, bridge := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "25", r.URL.Query().Get("preview_rows"))
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(DatasetMeta{FileID: "f1"})
	}))
	bridge.SetSession(&oauth2.Token{AccessToken: "tok"})

	meta, err := c.FileMetadata(context.Background(), "f1", 25)
	require.NoError(t, err)
	require.Equal(t, "f1", meta.FileID)
}

func TestCleanSuggestAcceptsBothShapes(t *testing.T) {
	bodies := []string{
		`{"suggestions":[{"action":"drop_duplicates","reason":"12 duplicate rows"}]}`,
		`[{"action":"drop_duplicates","reason":"12 duplicate rows"}]`,
	}
	for _, body := range bodies {
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))
		got, err := c.CleanSuggest(context.Background(), "f1")
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, "drop_duplicates", got[0].Action)
	}
}

func TestCleanSuggestRejectsUnknownShape(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected":true}`))
	}))
	_, err := c.CleanSuggest(context.Background(), "f1")
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestCleanApplyReturnsNewFileID(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			FileID   string               `json:"file_id"`
			Selected []CleaningSuggestion `json:"selected_suggestions"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "f1", req.FileID)
		require.Len(t, req.Selected, 1)
		w.Write([]byte(`{"new_file_id":"f2"}`))
	}))

	newID, err := c.CleanApply(context.Background(), "f1", []CleaningSuggestion{{Action: "fill_nulls", Column: "region"}})
	require.NoError(t, err)
	require.Equal(t, "f2", newID)
}

func TestChatQueryOmitsEmptyAddons(t *testing.T) {
	var got map[string]any
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"answer":"42 rows match"}`))
	}))

	_, err := c.ChatQuery(context.Background(), "f1", "how many rows?", nil)
	require.NoError(t, err)
	_, present := got["addons"]
	require.False(t, present)

	_, err = c.ChatQuery(context.Background(), "f1", "chart it", []string{"charts"})
	require.NoError(t, err)
	require.Equal(t, []any{"charts"}, got["addons"])
}

func TestReportCRUD(t *testing.T) {
	var removed string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/reports":
			require.Equal(t, "f1", r.URL.Query().Get("file_id"))
			json.NewEncoder(w).Encode([]Report{{ReportID: "r1", Title: "My Custom Report"}})
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/reports":
			json.NewEncoder(w).Encode(Report{ReportID: "r2", Title: "New"})
		case r.Method == http.MethodPut && r.URL.Path == "/api/v1/reports/r1":
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/v1/reports/r1/tiles/"):
			removed = strings.TrimPrefix(r.URL.Path, "/api/v1/reports/r1/tiles/")
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	ctx := context.Background()
	reports, err := c.ListReports(ctx, "f1")
	require.NoError(t, err)
	require.Len(t, reports, 1)

	created, err := c.CreateReport(ctx, "New", "f1")
	require.NoError(t, err)
	require.Equal(t, "r2", created.ReportID)

	title := "Renamed"
	require.NoError(t, c.UpdateReport(ctx, "r1", ReportUpdate{Title: &title}))
	require.NoError(t, c.RemoveTile(ctx, "r1", "kpi-0"))
	require.Equal(t, "kpi-0", removed)
}

func TestStatusErrorSurfaced(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	_, err := c.DashboardOverview(context.Background(), "f1")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusBadGateway, se.Status)
}
