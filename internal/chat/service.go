package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"datalens/internal/addons"
	"datalens/internal/api"
	"datalens/internal/history"
	"datalens/internal/storage"
	"datalens/internal/store"
)

const suggestionNamespace = "chat-suggestions"

// fallbackAnswer keeps the log coherent when the backend fails mid-turn.
const fallbackAnswer = "Sorry, I encountered an error analyzing your data."

// Backend is the slice of the API client the chat service needs.
type Backend interface {
	ChatQuery(ctx context.Context, fileID, query string, addons []string) (*api.ChatAnswer, error)
	ChatSuggestions(ctx context.Context, fileID string, chatContext []api.ChatMessage, count int) ([]string, error)
}

// Service runs the chat flow for a dataset: append the user turn, query the
// backend with the active add-ons, append the assistant turn, then refresh
// follow-up suggestions. Both turns are appended before the suggestion fetch
// starts, so the log order is always send/receive order no matter when the
// suggestion response lands.
type Service struct {
	backend  Backend
	history  *history.Cache
	addons   *addons.Selection
	store    *store.Store
	recorder storage.Recorder
	count    int
	log      *zap.Logger
}

func NewService(backend Backend, hist *history.Cache, sel *addons.Selection, st *store.Store, suggestionCount int, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if suggestionCount <= 0 {
		suggestionCount = 4
	}
	return &Service{
		backend: backend,
		history: hist,
		addons:  sel,
		store:   st,
		count:   suggestionCount,
		log:     log,
	}
}

// WithRecorder mirrors every successful turn to an interaction log.
func (s *Service) WithRecorder(rec storage.Recorder) *Service {
	s.recorder = rec
	return s
}

// Ask runs one chat turn and returns the assistant message. On backend
// failure a fallback assistant message is still appended so the transcript
// stays consistent, and the error is returned for the caller to surface.
func (s *Service) Ask(ctx context.Context, fileID, query string) (api.ChatMessage, error) {
	s.history.AddMessage(fileID, api.ChatMessage{Role: "user", Content: query})

	answer, err := s.backend.ChatQuery(ctx, fileID, query, s.addons.Active())
	if err != nil {
		msg := api.ChatMessage{Role: "assistant", Content: fallbackAnswer}
		s.history.AddMessage(fileID, msg)
		return msg, fmt.Errorf("chat query: %w", err)
	}

	msg := assistantMessage(answer)
	s.history.AddMessage(fileID, msg)

	if s.recorder != nil {
		ev := storage.Interaction{
			Timestamp: time.Now().UTC(),
			FileID:    fileID,
			Question:  query,
			Answer:    msg.Content,
			ChartType: msg.ChartType,
		}
		if err := s.recorder.AppendInteraction(ev); err != nil {
			s.log.Warn("record interaction failed", zap.Error(err))
		}
	}

	if _, err := s.refreshSuggestions(ctx, fileID); err != nil {
		// Suggestions are a convenience; the turn itself succeeded.
		s.log.Debug("suggestion refresh failed", zap.String("file_id", fileID), zap.Error(err))
	}
	return msg, nil
}

// Suggestions returns the cached follow-up suggestions for a dataset,
// fetching fresh ones when the cache is empty.
func (s *Service) Suggestions(ctx context.Context, fileID string) ([]string, error) {
	var cached []string
	if s.store.Get(suggestionNamespace, fileID, &cached) && len(cached) > 0 {
		return cached, nil
	}
	return s.refreshSuggestions(ctx, fileID)
}

// Clear wipes the dataset's chat log, resets the add-on selection and drops
// the cached suggestions.
func (s *Service) Clear(fileID string) {
	s.history.ClearMessages(fileID)
	s.addons.Reset()
	s.store.Remove(suggestionNamespace, fileID)
}

// Messages exposes the transcript for rendering.
func (s *Service) Messages(fileID string) []api.ChatMessage {
	return s.history.GetMessages(fileID)
}

func (s *Service) refreshSuggestions(ctx context.Context, fileID string) ([]string, error) {
	msgs := s.history.GetMessages(fileID)
	if len(msgs) > 4 {
		msgs = msgs[len(msgs)-4:]
	}
	suggestions, err := s.backend.ChatSuggestions(ctx, fileID, msgs, s.count)
	if err != nil {
		return nil, fmt.Errorf("fetch suggestions: %w", err)
	}
	s.store.Set(suggestionNamespace, fileID, suggestions)
	return suggestions, nil
}

func assistantMessage(answer *api.ChatAnswer) api.ChatMessage {
	msg := api.ChatMessage{
		Role:      "assistant",
		Content:   answer.Answer,
		ChartType: answer.ChartType,
	}
	if msg.Content == "" {
		msg.Content = "Here is the result."
	}
	if answer.Chart != nil {
		msg.StructuredChart = answer.Chart
	} else if len(answer.ChartData) > 0 {
		// Legacy shape: keep the raw rows for the renderer.
		if raw, err := json.Marshal(answer.ChartData); err == nil {
			msg.Chart = raw
		}
	}
	return msg
}
