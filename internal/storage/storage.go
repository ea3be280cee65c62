package storage

import "time"

// Interaction is one question/answer exchange with a dataset.
type Interaction struct {
	Timestamp time.Time `json:"timestamp"`
	FileID    string    `json:"file_id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	ChartType string    `json:"chart_type,omitempty"`
}

// Recorder abstracts persistence of chat interactions.
// LoadInteractions returns events in chronological order;
// AppendInteraction atomically appends one event.
type Recorder interface {
	AppendInteraction(ev Interaction) error
	LoadInteractions() ([]Interaction, error)
}
