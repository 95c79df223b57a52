package models

import (
	"time"
)

// Defaults applied to incomplete send_message payloads
const (
	DefaultSender  = "anonymous"
	DefaultMatchID = "default"
)

// Message represents a chat message exchanged within a match
type Message struct {
	ID        string    `json:"id" bson:"_id"`
	Content   string    `json:"content" bson:"content"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	SenderID  string    `json:"senderId" bson:"senderId"`
	MatchID   string    `json:"matchId" bson:"matchId"`
}

// SendMessagePayload represents the send_message event body.
// Older clients send the author as "sender" instead of "senderId".
type SendMessagePayload struct {
	Content   string `json:"content" validate:"required"`
	Timestamp string `json:"timestamp"`
	SenderID  string `json:"senderId"`
	Sender    string `json:"sender"`
	MatchID   string `json:"matchId"`
}

// ToMessage normalises the payload, filling in defaults for missing fields.
// A timestamp that is missing or not RFC 3339 is replaced by now.
func (p SendMessagePayload) ToMessage(now time.Time) Message {
	sender := p.SenderID
	if sender == "" {
		sender = p.Sender
	}
	if sender == "" {
		sender = DefaultSender
	}

	matchID := p.MatchID
	if matchID == "" {
		matchID = DefaultMatchID
	}

	ts := now
	if p.Timestamp != "" {
		if parsed, err := time.Parse(time.RFC3339Nano, p.Timestamp); err == nil {
			ts = parsed
		}
	}

	return Message{
		Content:   p.Content,
		Timestamp: ts.UTC(),
		SenderID:  sender,
		MatchID:   matchID,
	}
}
