package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"datalens/internal/auth"
)

// Client is a thin typed wrapper over the analytics backend's REST contract.
// Every call takes a context; the client-level timeout is the outer bound for
// requests issued without a tighter deadline.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(baseURL string, bridge *auth.Bridge, timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: &auth.Transport{Bridge: bridge},
		},
		log: log,
	}
}

// Upload sends one tabular file as multipart form data and returns the
// backend-assigned dataset metadata.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (*DatasetMeta, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return nil, fmt.Errorf("copy upload body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Status: resp.StatusCode, Method: http.MethodPost, Path: "/api/v1/upload"}
	}
	var meta DatasetMeta
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	return &meta, nil
}

// FileMetadata fetches dataset metadata with the requested number of preview
// rows. A 404 or 410 maps to ErrDatasetGone.
func (c *Client) FileMetadata(ctx context.Context, fileID string, previewRows int) (*DatasetMeta, error) {
	q := url.Values{"preview_rows": {strconv.Itoa(previewRows)}}
	path := "/api/v1/files/" + url.PathEscape(fileID) + "?" + q.Encode()

	var meta DatasetMeta
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &meta); err != nil {
		var se *StatusError
		if errors.As(err, &se) && (se.Status == http.StatusNotFound || se.Status == http.StatusGone) {
			return nil, fmt.Errorf("file %s: %w", fileID, ErrDatasetGone)
		}
		return nil, err
	}
	return &meta, nil
}

// CleanSuggest asks for AI cleaning suggestions. The backend historically
// answered either {"suggestions": [...]} or a bare array; both are accepted,
// anything else is ErrMalformedResponse.
func (c *Client) CleanSuggest(ctx context.Context, fileID string) ([]CleaningSuggestion, error) {
	body := map[string]string{"file_id": fileID}
	raw, err := c.doRaw(ctx, http.MethodPost, "/api/v1/clean/suggest", body)
	if err != nil {
		return nil, err
	}

	var wrapped struct {
		Suggestions []CleaningSuggestion `json:"suggestions"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Suggestions != nil {
		return wrapped.Suggestions, nil
	}
	var bare []CleaningSuggestion
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare, nil
	}
	return nil, fmt.Errorf("clean suggestions: %w", ErrMalformedResponse)
}

// CleanApply applies the selected suggestions and returns the id of the new,
// cleaned dataset.
func (c *Client) CleanApply(ctx context.Context, fileID string, selected []CleaningSuggestion) (string, error) {
	body := map[string]any{
		"file_id":              fileID,
		"selected_suggestions": selected,
	}
	var out struct {
		NewFileID string `json:"new_file_id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/clean/apply", body, &out); err != nil {
		return "", err
	}
	if out.NewFileID == "" {
		return "", fmt.Errorf("clean apply: %w", ErrMalformedResponse)
	}
	return out.NewFileID, nil
}

// ChatQuery runs a natural-language query against the dataset. Addons is
// omitted from the request when empty.
func (c *Client) ChatQuery(ctx context.Context, fileID, query string, addons []string) (*ChatAnswer, error) {
	body := map[string]any{
		"file_id": fileID,
		"query":   query,
	}
	if len(addons) > 0 {
		body["addons"] = addons
	}
	var out ChatAnswer
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/chat/query", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChatSuggestions fetches follow-up question suggestions given recent chat
// context. Only role and content are sent.
func (c *Client) ChatSuggestions(ctx context.Context, fileID string, chatContext []ChatMessage, count int) ([]string, error) {
	type turn struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	turns := make([]turn, 0, len(chatContext))
	for _, m := range chatContext {
		turns = append(turns, turn{Role: m.Role, Content: m.Content})
	}
	body := map[string]any{
		"file_id":      fileID,
		"chat_context": turns,
		"count":        count,
	}
	var out struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/suggestions", body, &out); err != nil {
		return nil, err
	}
	return out.Suggestions, nil
}

// DashboardOverview fetches the auto-generated overview dashboard.
func (c *Client) DashboardOverview(ctx context.Context, fileID string) (*Overview, error) {
	q := url.Values{"file_id": {fileID}}
	var out Overview
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/dashboard/overview?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListReports(ctx context.Context, fileID string) ([]Report, error) {
	q := url.Values{"file_id": {fileID}}
	var out []Report
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/reports?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateReport(ctx context.Context, title, fileID string) (*Report, error) {
	body := map[string]string{"title": title, "file_id": fileID}
	var out Report
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/reports", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetReport(ctx context.Context, reportID string) (*Report, error) {
	var out Report
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/reports/"+url.PathEscape(reportID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateReport(ctx context.Context, reportID string, upd ReportUpdate) error {
	return c.doJSON(ctx, http.MethodPut, "/api/v1/reports/"+url.PathEscape(reportID), upd, nil)
}

func (c *Client) AddTile(ctx context.Context, reportID string, tile Tile) error {
	return c.doJSON(ctx, http.MethodPost, "/api/v1/reports/"+url.PathEscape(reportID)+"/tiles", tile, nil)
}

func (c *Client) RemoveTile(ctx context.Context, reportID, tileID string) error {
	path := "/api/v1/reports/" + url.PathEscape(reportID) + "/tiles/" + url.PathEscape(tileID)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

// doJSON issues a request with an optional JSON body and decodes the response
// into out when out is non-nil.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	raw, err := c.doRaw(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

func (c *Client) doRaw(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s %s: marshal request: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%s %s: build request: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Debug("backend rejected request",
			zap.String("method", method), zap.String("path", path), zap.Int("status", resp.StatusCode))
		return nil, &StatusError{Status: resp.StatusCode, Method: method, Path: path}
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read response: %w", method, path, err)
	}
	return raw, nil
}
