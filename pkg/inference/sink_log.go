package inference

import (
	"github.com/rs/zerolog"
)

// LogSink writes every record as a structured event to a zerolog logger,
// typically the session log file.
type LogSink struct {
	logger zerolog.Logger
}

func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) PublishRecord(record *Record) error {
	evt := s.logger.Info()
	if record.Phase == PhaseError {
		evt = s.logger.Error()
	}
	evt = evt.
		Str("record_id", record.ID.String()).
		Str("event", record.Event).
		Str("slug", record.Slug).
		Str("phase", string(record.Phase)).
		Time("time", record.Time).
		Float64("temperature", record.Options.Temperature).
		Bool("stream", record.Options.Stream).
		Float64("presence_penalty", record.Options.PresencePenalty)

	if record.Request != nil {
		evt = evt.
			Str("model", record.Request.Model).
			Int("message_count", len(record.Request.Messages)).
			Interface("messages", record.Request.Messages)
	}
	if record.TokenCount > 0 {
		evt = evt.Int("token_count", record.TokenCount)
	}
	if record.Completion != nil {
		evt = evt.Interface("completion", record.Completion)
	}
	if record.Duration > 0 {
		evt = evt.Dur("duration", record.Duration)
	}
	if record.Error != "" {
		evt = evt.Str("error", record.Error)
	}

	evt.Msgf("[%s] %s", record.Event, record.Phase)
	return nil
}

var _ EventSink = (*LogSink)(nil)
