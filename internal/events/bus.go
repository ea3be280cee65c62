package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Topics carried by the in-process bus. A mutation publishes after its remote
// call has been acknowledged and the local refetch has completed, so a
// subscriber reading on these topics always observes server-confirmed state.
const (
	TopicDatasetChanged = "dataset.changed"
	TopicReportChanged  = "report.changed"
)

// DatasetChanged is published when the active dataset is set or cleared.
// FileID is empty when the dataset was cleared.
type DatasetChanged struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name"`
}

// ReportChanged is published after a report mutation (tile add/remove,
// reorder, title change) has been confirmed by the backend.
type ReportChanged struct {
	ReportID string `json:"report_id"`
	FileID   string `json:"file_id"`
}

type Bus struct {
	pubSub *gochannel.GoChannel
}

func NewBus() *Bus {
	return &Bus{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{},
			watermill.NewStdLogger(false, false),
		),
	}
}

func (b *Bus) PublishDatasetChanged(ev DatasetChanged) error {
	return b.publish(TopicDatasetChanged, ev)
}

func (b *Bus) PublishReportChanged(ev ReportChanged) error {
	return b.publish(TopicReportChanged, ev)
}

func (b *Bus) publish(topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}
	return b.pubSub.Publish(topic, message.NewMessage(watermill.NewUUID(), data))
}

// Subscribe returns a channel of raw messages for a topic. Subscribers must
// Ack every message. The channel closes when ctx is cancelled.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubSub.Subscribe(ctx, topic)
}

func (b *Bus) Close() error {
	return b.pubSub.Close()
}
