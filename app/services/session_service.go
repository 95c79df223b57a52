package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"lonetown/app/models"
	"lonetown/redis"
)

// matchStateTTL bounds how long an idle match keeps its session state in Redis
const matchStateTTL = 30 * 24 * time.Hour

// MatchStateStore persists match session state keyed by match id
type MatchStateStore interface {
	// Load returns the initial state when nothing is stored yet
	Load(ctx context.Context, matchID string) (*models.MatchState, error)
	Save(ctx context.Context, state *models.MatchState) error
}

// RedisMatchStateStore stores match state as JSON under match_state:<matchId>
type RedisMatchStateStore struct {
	redisService *redis.Service
}

// NewRedisMatchStateStore creates a Redis-backed match state store
func NewRedisMatchStateStore(redisService *redis.Service) *RedisMatchStateStore {
	return &RedisMatchStateStore{redisService: redisService}
}

func (s *RedisMatchStateStore) Load(ctx context.Context, matchID string) (*models.MatchState, error) {
	var state models.MatchState
	err := s.redisService.Get(ctx, matchStateKey(matchID), &state)
	if errors.Is(err, redis.ErrKeyNotFound) {
		return models.NewMatchState(matchID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load match state: %w", models.ErrStorage, err)
	}
	if state.Participants == nil {
		state.Participants = models.NewMatchState(matchID).Participants
	}
	return &state, nil
}

func (s *RedisMatchStateStore) Save(ctx context.Context, state *models.MatchState) error {
	if err := s.redisService.Set(ctx, matchStateKey(state.MatchID), state, matchStateTTL); err != nil {
		return fmt.Errorf("%w: save match state: %w", models.ErrStorage, err)
	}
	return nil
}

func matchStateKey(matchID string) string {
	return fmt.Sprintf("match_state:%s", matchID)
}

// MatchStateService applies pin, freeze and video-unlock rules to stored match state
type MatchStateService struct {
	store    MatchStateStore
	messages MessageStore
	now      func() time.Time

	// serialises load-modify-save cycles
	mu sync.Mutex
}

// NewMatchStateService creates a new match state service instance
func NewMatchStateService(store MatchStateStore, messages MessageStore) *MatchStateService {
	return &MatchStateService{
		store:    store,
		messages: messages,
		now:      time.Now,
	}
}

// View returns userID's current view of matchID
func (s *MatchStateService) View(ctx context.Context, matchID, userID string) (*models.MatchStateView, error) {
	if _, ok := models.Partner(matchID, userID); !ok {
		return nil, fmt.Errorf("%w: %s is not a participant of %s", models.ErrNotFound, userID, matchID)
	}

	state, err := s.store.Load(ctx, matchID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	recent, err := s.messages.CountSince(ctx, matchID, now.Add(-models.VideoUnlockWindow))
	if err != nil {
		return nil, err
	}

	view := state.View(userID, recent, now)
	return &view, nil
}

// CheckCanSend returns models.ErrFrozen while userID's freeze window is open.
// Ids that are not participants of a parseable match are never frozen.
func (s *MatchStateService) CheckCanSend(ctx context.Context, matchID, userID string) error {
	if _, ok := models.Partner(matchID, userID); !ok {
		return nil
	}

	state, err := s.store.Load(ctx, matchID)
	if err != nil {
		return err
	}

	now := s.now()
	p := state.Participant(userID)
	if p != nil && !p.CanSend(now) {
		return fmt.Errorf("%w until %s", models.ErrFrozen, p.FreezeUntil.UTC().Format(time.RFC3339))
	}
	return nil
}

// Unpin records userID's unpin. It reports whether the state changed; an
// already unpinned participant is a no-op.
func (s *MatchStateService) Unpin(ctx context.Context, matchID, userID string) (bool, *models.MatchState, error) {
	if _, ok := models.Partner(matchID, userID); !ok {
		return false, nil, fmt.Errorf("%w: %s is not a participant of %s", models.ErrValidation, userID, matchID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.Load(ctx, matchID)
	if err != nil {
		return false, nil, err
	}
	if !state.Unpin(userID, s.now()) {
		return false, state, nil
	}
	if err := s.store.Save(ctx, state); err != nil {
		return false, nil, err
	}

	logrus.WithFields(logrus.Fields{
		"match_id": matchID,
		"user_id":  userID,
	}).Info("🔕 Match unpinned")
	return true, state, nil
}

// RecordMessage re-evaluates the video unlock rule after a message was stored.
// It reports true when video got unlocked by this message.
func (s *MatchStateService) RecordMessage(ctx context.Context, matchID string) (bool, error) {
	if _, _, ok := models.ParseMatchID(matchID); !ok {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	recent, err := s.messages.CountSince(ctx, matchID, now.Add(-models.VideoUnlockWindow))
	if err != nil {
		return false, err
	}

	state, err := s.store.Load(ctx, matchID)
	if err != nil {
		return false, err
	}
	if !state.ObserveRecentCount(recent, now) {
		return false, nil
	}
	if err := s.store.Save(ctx, state); err != nil {
		return false, err
	}

	logrus.WithField("match_id", matchID).Info("🎉 Video call unlocked")
	return true, nil
}
