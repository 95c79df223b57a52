package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToMessageDefaults(t *testing.T) {
	msg := SendMessagePayload{Content: "hi"}.ToMessage(baseTime)

	assert.Equal(t, DefaultSender, msg.SenderID)
	assert.Equal(t, DefaultMatchID, msg.MatchID)
	assert.Equal(t, baseTime, msg.Timestamp)
}

func TestToMessageSenderFallback(t *testing.T) {
	msg := SendMessagePayload{Content: "hi", Sender: "abc12"}.ToMessage(baseTime)
	assert.Equal(t, "abc12", msg.SenderID)

	msg = SendMessagePayload{Content: "hi", Sender: "old", SenderID: "abc12"}.ToMessage(baseTime)
	assert.Equal(t, "abc12", msg.SenderID)
}

func TestToMessageTimestamp(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"rfc3339 with offset", "2025-03-14T14:30:00+02:00", time.Date(2025, 3, 14, 12, 30, 0, 0, time.UTC)},
		{"fractional seconds", "2025-03-14T11:00:00.250Z", time.Date(2025, 3, 14, 11, 0, 0, 250000000, time.UTC)},
		{"unparseable falls back to now", "yesterday", baseTime},
		{"missing falls back to now", "", baseTime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := SendMessagePayload{Content: "hi", Timestamp: tt.in}.ToMessage(baseTime)
			assert.True(t, tt.want.Equal(msg.Timestamp), "got %s", msg.Timestamp)
			assert.Equal(t, time.UTC, msg.Timestamp.Location())
		})
	}
}
