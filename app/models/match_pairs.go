package models

import (
	"sort"
	"strings"
	"time"
)

// MatchIDSeparator joins the two participant ids of a match. User ids must not contain it.
const MatchIDSeparator = "_"

// MatchPair represents a derived pairing between two users
type MatchPair struct {
	MatchID   string    `json:"matchId"`
	UserID    string    `json:"userId"`
	PartnerID string    `json:"partnerId"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
}

// DailyMatchRequest represents the request body of POST /daily-match
type DailyMatchRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// DailyMatchResponse represents a match found for the requesting user.
// MatchID is nil when no partner is available.
type DailyMatchResponse struct {
	MatchID   *string `json:"matchId"`
	PartnerID string  `json:"partnerId,omitempty"`
	Message   string  `json:"message,omitempty"`
}

// MatchID derives the order-independent identifier for a pair of users.
func MatchID(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return ids[0] + MatchIDSeparator + ids[1]
}

// ParseMatchID splits a match id back into its two participants.
func ParseMatchID(matchID string) (string, string, bool) {
	a, b, ok := strings.Cut(matchID, MatchIDSeparator)
	if !ok || a == "" || b == "" || strings.Contains(b, MatchIDSeparator) {
		return "", "", false
	}
	return a, b, true
}

// Partner returns the other participant of matchID, or false if userID is not part of it.
func Partner(matchID, userID string) (string, bool) {
	a, b, ok := ParseMatchID(matchID)
	if !ok {
		return "", false
	}
	switch userID {
	case a:
		return b, true
	case b:
		return a, true
	}
	return "", false
}
