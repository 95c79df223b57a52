package models

// Socket.IO event names
const (
	EventJoinMatch       = "join_match"
	EventMatchState      = "match_state"
	EventSendMessage     = "send_message"
	EventReceiveMessage  = "receive_message"
	EventUnpinMatch      = "unpin_match"
	EventPartnerUnpinned = "partner_unpinned"
	EventVideoUnlocked   = "video_unlocked"
	EventChatError       = "chat_error"
)

// JoinMatchPayload represents the join_match event body
type JoinMatchPayload struct {
	MatchID string `json:"matchId" validate:"required"`
	UserID  string `json:"userId"`
}

// UnpinMatchPayload represents the unpin_match event body
type UnpinMatchPayload struct {
	MatchID string `json:"matchId" validate:"required"`
	UserID  string `json:"userId"`
}

// PartnerUnpinnedEvent is relayed to the other participants of a match
type PartnerUnpinnedEvent struct {
	MatchID string `json:"matchId"`
}

// VideoUnlockedEvent is sent to a match room once video is unlocked
type VideoUnlockedEvent struct {
	MatchID string `json:"matchId"`
}

// ConnectionError represents error response
type ConnectionError struct {
	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	ErrorType string `json:"error_type"`
	Field     string `json:"field,omitempty"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	SocketID  string `json:"socket_id"`
	Event     string `json:"event"`
}

// Error codes and types
const (
	// Error codes
	ErrorCodeMissingField  = "MISSING_FIELD"
	ErrorCodeInvalidFormat = "INVALID_FORMAT"
	ErrorCodeInvalidValue  = "INVALID_VALUE"
	ErrorCodeFrozen        = "FROZEN"
	ErrorCodeSystemError   = "SYSTEM_ERROR"

	// Error types
	ErrorTypeField      = "FIELD_ERROR"
	ErrorTypeFormat     = "FORMAT_ERROR"
	ErrorTypeValidation = "VALIDATION_ERROR"
	ErrorTypeState      = "STATE_ERROR"
	ErrorTypeSystem     = "SYSTEM_ERROR"
)
