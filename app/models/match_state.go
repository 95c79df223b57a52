package models

import (
	"time"
)

// Match session rules
const (
	FreezeDuration       = 2 * time.Hour
	VideoUnlockWindow    = 48 * time.Hour
	VideoUnlockThreshold = 100
)

// MatchStatus is the status a participant sees for a match
type MatchStatus string

// MatchStatus values
const (
	StatusMatched         MatchStatus = "matched"
	StatusSelfUnpinned    MatchStatus = "self_unpinned"
	StatusPartnerUnpinned MatchStatus = "partner_unpinned"
	StatusFrozen          MatchStatus = "frozen"
)

// SessionState is one participant's view of a match
type SessionState struct {
	UserID          string     `json:"userId"`
	IsPinned        bool       `json:"isPinned"`
	PartnerUnpinned bool       `json:"partnerUnpinned"`
	FreezeUntil     *time.Time `json:"freezeUntil"`
	VideoUnlocked   bool       `json:"videoUnlocked"`
}

// NewSessionState returns the initial, pinned state
func NewSessionState(userID string) *SessionState {
	return &SessionState{
		UserID:   userID,
		IsPinned: true,
	}
}

// Unpin records that this participant ended the match. It reports false if
// the participant had already unpinned.
func (s *SessionState) Unpin() bool {
	if !s.IsPinned {
		return false
	}
	s.IsPinned = false
	return true
}

// PartnerUnpin handles the partner's unpin received at now. A participant who
// is still pinned is frozen for FreezeDuration from receipt.
func (s *SessionState) PartnerUnpin(now time.Time) {
	s.PartnerUnpinned = true
	if s.IsPinned {
		until := now.Add(FreezeDuration)
		s.FreezeUntil = &until
	}
}

// IsFrozen reports whether the freeze window is still open at now.
func (s *SessionState) IsFrozen(now time.Time) bool {
	return s.FreezeUntil != nil && now.Before(*s.FreezeUntil)
}

// CanSend reports whether the participant may send messages at now.
func (s *SessionState) CanSend(now time.Time) bool {
	return !s.IsFrozen(now)
}

// Status derives the displayed status at now.
func (s *SessionState) Status(now time.Time) MatchStatus {
	switch {
	case s.IsFrozen(now):
		return StatusFrozen
	case !s.IsPinned:
		return StatusSelfUnpinned
	case s.PartnerUnpinned:
		return StatusPartnerUnpinned
	default:
		return StatusMatched
	}
}

// ObserveRecentCount feeds the number of messages inside the unlock window.
// It reports true only on the call that unlocks video.
func (s *SessionState) ObserveRecentCount(count int) bool {
	if s.VideoUnlocked || count < VideoUnlockThreshold {
		return false
	}
	s.VideoUnlocked = true
	return true
}

// CountRecent counts messages with a timestamp inside the unlock window ending at now.
func CountRecent(messages []Message, now time.Time) int {
	since := now.Add(-VideoUnlockWindow)
	count := 0
	for _, m := range messages {
		if !m.Timestamp.Before(since) {
			count++
		}
	}
	return count
}

// MatchState is the persisted session state of a match, one entry per participant
type MatchState struct {
	MatchID      string                   `json:"matchId"`
	Participants map[string]*SessionState `json:"participants"`
	UpdatedAt    time.Time                `json:"updatedAt"`
}

// NewMatchState builds the initial state for matchID. Both participants
// start pinned when the id can be parsed.
func NewMatchState(matchID string) *MatchState {
	state := &MatchState{
		MatchID:      matchID,
		Participants: make(map[string]*SessionState),
	}
	if a, b, ok := ParseMatchID(matchID); ok {
		state.Participants[a] = NewSessionState(a)
		state.Participants[b] = NewSessionState(b)
	}
	return state
}

// Participant returns the state of userID, or nil if userID is not in the match.
func (m *MatchState) Participant(userID string) *SessionState {
	return m.Participants[userID]
}

// Unpin applies userID's unpin and notifies the other participant. It
// reports false when nothing changed.
func (m *MatchState) Unpin(userID string, now time.Time) bool {
	self := m.Participant(userID)
	if self == nil || !self.Unpin() {
		return false
	}
	for id, other := range m.Participants {
		if id != userID {
			other.PartnerUnpin(now)
		}
	}
	m.UpdatedAt = now
	return true
}

// ObserveRecentCount applies the unlock rule to every participant. It
// reports true if any participant was newly unlocked.
func (m *MatchState) ObserveRecentCount(count int, now time.Time) bool {
	unlocked := false
	for _, p := range m.Participants {
		if p.ObserveRecentCount(count) {
			unlocked = true
		}
	}
	if unlocked {
		m.UpdatedAt = now
	}
	return unlocked
}

// MatchStateView is what a participant is sent over HTTP or the socket
type MatchStateView struct {
	MatchID            string      `json:"matchId"`
	UserID             string      `json:"userId"`
	Status             MatchStatus `json:"status"`
	IsPinned           bool        `json:"isPinned"`
	PartnerUnpinned    bool        `json:"partnerUnpinned"`
	FreezeUntil        *time.Time  `json:"freezeUntil"`
	IsFrozen           bool        `json:"isFrozen"`
	VideoUnlocked      bool        `json:"videoUnlocked"`
	RecentMessageCount int         `json:"recentMessageCount"`
	UnlockThreshold    int         `json:"unlockThreshold"`
}

// View renders userID's state at now.
func (m *MatchState) View(userID string, recent int, now time.Time) MatchStateView {
	p := m.Participant(userID)
	if p == nil {
		p = NewSessionState(userID)
	}
	return MatchStateView{
		MatchID:            m.MatchID,
		UserID:             userID,
		Status:             p.Status(now),
		IsPinned:           p.IsPinned,
		PartnerUnpinned:    p.PartnerUnpinned,
		FreezeUntil:        p.FreezeUntil,
		IsFrozen:           p.IsFrozen(now),
		VideoUnlocked:      p.VideoUnlocked,
		RecentMessageCount: recent,
		UnlockThreshold:    VideoUnlockThreshold,
	}
}
