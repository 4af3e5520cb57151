package inference

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog/log"
)

// WatermillSink publishes records as json messages to a watermill Publisher.
type WatermillSink struct {
	publisher message.Publisher
	topic     string
}

func NewWatermillSink(publisher message.Publisher, topic string) *WatermillSink {
	return &WatermillSink{
		publisher: publisher,
		topic:     topic,
	}
}

func (w *WatermillSink) PublishRecord(record *Record) error {
	payload, err := json.Marshal(record)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal record to JSON")
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("record_id", record.ID.String())
	msg.Metadata.Set("event", record.Slug)
	msg.Metadata.Set("phase", string(record.Phase))

	err = w.publisher.Publish(w.topic, msg)
	if err != nil {
		log.Error().Err(err).Str("topic", w.topic).Msg("Failed to publish record to watermill")
		return err
	}

	log.Trace().Str("topic", w.topic).Str("event", record.Event).Str("phase", string(record.Phase)).Msg("Published record")
	return nil
}

var _ EventSink = (*WatermillSink)(nil)
