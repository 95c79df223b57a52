package config

import (
	"testing"

	socketio "github.com/doquangtan/socket.io/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lonetown/app/models"
)

func TestDecodePayload(t *testing.T) {
	event := &socketio.EventPayload{Data: []interface{}{
		map[string]interface{}{
			"content":  "hey",
			"senderId": "abc12",
			"matchId":  "abc12_xyz99",
		},
	}}

	var payload models.SendMessagePayload
	require.NoError(t, decodePayload(event, &payload))
	assert.Equal(t, "hey", payload.Content)
	assert.Equal(t, "abc12", payload.SenderID)
	assert.Equal(t, "abc12_xyz99", payload.MatchID)
}

func TestDecodePayloadErrors(t *testing.T) {
	tests := []struct {
		name string
		data []interface{}
		want error
	}{
		{"no arguments", nil, errMissingPayload},
		{"nil argument", []interface{}{nil}, errMissingPayload},
		{"string argument", []interface{}{"hello"}, errInvalidPayload},
		{"wrong field type", []interface{}{map[string]interface{}{"content": 42}}, errInvalidPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload models.SendMessagePayload
			err := decodePayload(&socketio.EventPayload{Data: tt.data}, &payload)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
