package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func TestNewSessionStateStartsMatched(t *testing.T) {
	s := NewSessionState("abc12")

	assert.True(t, s.IsPinned)
	assert.False(t, s.PartnerUnpinned)
	assert.Nil(t, s.FreezeUntil)
	assert.Equal(t, StatusMatched, s.Status(baseTime))
	assert.True(t, s.CanSend(baseTime))
}

func TestUnpinIsIdempotent(t *testing.T) {
	s := NewSessionState("abc12")

	assert.True(t, s.Unpin())
	assert.False(t, s.Unpin())
	assert.Equal(t, StatusSelfUnpinned, s.Status(baseTime))
}

func TestPartnerUnpinFreezesPinnedParticipant(t *testing.T) {
	s := NewSessionState("abc12")
	s.PartnerUnpin(baseTime)

	require.NotNil(t, s.FreezeUntil)
	assert.Equal(t, baseTime.Add(2*time.Hour), *s.FreezeUntil)
	assert.True(t, s.PartnerUnpinned)
	assert.Equal(t, StatusFrozen, s.Status(baseTime))
	assert.False(t, s.CanSend(baseTime.Add(time.Hour)))
	assert.False(t, s.CanSend(baseTime.Add(2*time.Hour-time.Nanosecond)))
}

func TestFreezeRevertsOnceWindowPasses(t *testing.T) {
	s := NewSessionState("abc12")
	s.PartnerUnpin(baseTime)

	after := baseTime.Add(2 * time.Hour)
	assert.True(t, s.CanSend(after))
	assert.Equal(t, StatusPartnerUnpinned, s.Status(after))
}

func TestPartnerUnpinAfterSelfUnpinDoesNotFreeze(t *testing.T) {
	s := NewSessionState("abc12")
	s.Unpin()
	s.PartnerUnpin(baseTime)

	assert.Nil(t, s.FreezeUntil)
	assert.True(t, s.PartnerUnpinned)
	assert.Equal(t, StatusSelfUnpinned, s.Status(baseTime))
	assert.True(t, s.CanSend(baseTime))
}

func TestVideoUnlockIsMonotonic(t *testing.T) {
	s := NewSessionState("abc12")

	assert.False(t, s.ObserveRecentCount(99))
	assert.False(t, s.VideoUnlocked)

	assert.True(t, s.ObserveRecentCount(100))
	assert.True(t, s.VideoUnlocked)

	assert.False(t, s.ObserveRecentCount(3))
	assert.True(t, s.VideoUnlocked)
}

func TestCountRecentUsesTrailingWindow(t *testing.T) {
	messages := []Message{
		{Timestamp: baseTime.Add(-49 * time.Hour)},
		{Timestamp: baseTime.Add(-48 * time.Hour)},
		{Timestamp: baseTime.Add(-time.Minute)},
		{Timestamp: baseTime},
	}

	assert.Equal(t, 3, CountRecent(messages, baseTime))
	assert.Equal(t, 0, CountRecent(messages, baseTime.Add(72*time.Hour)))
}

func TestVideoUnlockFlipsWhenTrailingCountFirstReachesThreshold(t *testing.T) {
	s := NewSessionState("abc12")
	var messages []Message
	flippedAt := -1

	for i := 0; i < 120; i++ {
		messages = append(messages, Message{Timestamp: baseTime.Add(time.Duration(i) * time.Minute)})
		now := baseTime.Add(time.Duration(i) * time.Minute)
		if s.ObserveRecentCount(CountRecent(messages, now)) {
			flippedAt = len(messages)
		}
	}
	assert.Equal(t, 100, flippedAt)

	later := baseTime.Add(96 * time.Hour)
	assert.Equal(t, 0, CountRecent(messages, later))
	s.ObserveRecentCount(CountRecent(messages, later))
	assert.True(t, s.VideoUnlocked)
}

func TestMatchStateUnpinFreezesPartner(t *testing.T) {
	state := NewMatchState(MatchID("xyz99", "abc12"))
	require.Len(t, state.Participants, 2)

	assert.True(t, state.Unpin("abc12", baseTime))
	assert.False(t, state.Unpin("abc12", baseTime.Add(time.Minute)))

	self := state.Participant("abc12")
	partner := state.Participant("xyz99")
	assert.Equal(t, StatusSelfUnpinned, self.Status(baseTime))
	assert.Equal(t, StatusFrozen, partner.Status(baseTime))
	assert.Equal(t, baseTime.Add(FreezeDuration), *partner.FreezeUntil)
	assert.Equal(t, baseTime, state.UpdatedAt)
}

func TestMatchStateUnpinIgnoresStrangers(t *testing.T) {
	state := NewMatchState(MatchID("xyz99", "abc12"))

	assert.False(t, state.Unpin("def34", baseTime))
	assert.Equal(t, StatusMatched, state.Participant("xyz99").Status(baseTime))
}

func TestMatchStateBothUnpin(t *testing.T) {
	state := NewMatchState(MatchID("xyz99", "abc12"))
	state.Unpin("abc12", baseTime)
	state.Unpin("xyz99", baseTime.Add(time.Minute))

	// the freeze set before xyz99 unpinned still holds
	assert.Equal(t, StatusFrozen, state.Participant("xyz99").Status(baseTime.Add(time.Hour)))
	assert.Equal(t, StatusSelfUnpinned, state.Participant("xyz99").Status(baseTime.Add(3*time.Hour)))
	assert.Nil(t, state.Participant("abc12").FreezeUntil)
}

func TestMatchStateView(t *testing.T) {
	state := NewMatchState(MatchID("xyz99", "abc12"))
	state.Unpin("xyz99", baseTime)

	view := state.View("abc12", 42, baseTime.Add(time.Minute))
	assert.Equal(t, "abc12_xyz99", view.MatchID)
	assert.Equal(t, StatusFrozen, view.Status)
	assert.True(t, view.IsFrozen)
	assert.True(t, view.PartnerUnpinned)
	assert.Equal(t, 42, view.RecentMessageCount)
	assert.Equal(t, VideoUnlockThreshold, view.UnlockThreshold)

	stranger := state.View("def34", 0, baseTime)
	assert.Equal(t, StatusMatched, stranger.Status)
}
