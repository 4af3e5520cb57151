package inference

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/go-go-golems/nexus/pkg/settings"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogSink(t *testing.T) {
	buf := &bytes.Buffer{}
	sink := NewLogSink(zerolog.New(buf))

	id := uuid.New()
	require.NoError(t, sink.PublishRecord(&Record{
		ID:         id,
		Event:      "User Query",
		Slug:       "user_query",
		Phase:      PhaseRequest,
		Request:    testRequest(),
		Options:    settings.DefaultCompletionOptions(),
		TokenCount: 7,
	}))

	entry := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, id.String(), entry["record_id"])
	assert.Equal(t, "[User Query] request", entry["message"])
	assert.Equal(t, "gpt-4", entry["model"])
	assert.EqualValues(t, 2, entry["message_count"])
	assert.EqualValues(t, 7, entry["token_count"])

	buf.Reset()
	require.NoError(t, sink.PublishRecord(&Record{ID: id, Event: "User Query", Phase: PhaseError, Error: "boom"}))
	entry = map[string]interface{}{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "boom", entry["error"])
}
