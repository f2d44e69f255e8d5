package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/events"
)

func TestMessage(t *testing.T) {
	event := events.ImportCompleted{
		RunID:             uuid.New(),
		CompletedAt:       time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC),
		ProcessedFiles:    2,
		TotalTransactions: 14,
		AccountsTouched:   []string{"Assets:Personal:Monzo"},
	}

	msg, err := message(event)
	require.NoError(t, err)

	assert.Equal(t, event.RunID.String(), string(msg.Key))
	assert.Equal(t, event.CompletedAt, msg.Time)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, float64(14), decoded["total_transactions"])
	assert.Equal(t, []any{"Assets:Personal:Monzo"}, decoded["accounts_touched"])
}

func TestNewPublisher_DefaultTopic(t *testing.T) {
	p := NewPublisher([]string{"localhost:9092"}, "")
	assert.Equal(t, DefaultTopic, p.writer.Topic)
	require.NoError(t, p.Close())
}
