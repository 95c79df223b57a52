package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"lonetown/app/models"
)

// In-process stores, used when a backend is configured as "memory" and in tests.

// MemoryProfileStore keeps profiles in insertion order
type MemoryProfileStore struct {
	mu       sync.RWMutex
	profiles []models.Profile
}

func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{}
}

func (s *MemoryProfileStore) Save(_ context.Context, profile models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.profiles {
		if s.profiles[i].UserID == profile.UserID {
			s.profiles[i].Question1 = profile.Question1
			s.profiles[i].Question2 = profile.Question2
			return nil
		}
	}
	s.profiles = append(s.profiles, profile)
	return nil
}

func (s *MemoryProfileStore) Get(_ context.Context, userID string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.profiles {
		if p.UserID == userID {
			p := p
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: User profile not found", models.ErrNotFound)
}

func (s *MemoryProfileStore) ListOthers(_ context.Context, userID string) ([]models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	others := []models.Profile{}
	for _, p := range s.profiles {
		if p.UserID != userID {
			others = append(others, p)
		}
	}
	return others, nil
}

func (s *MemoryProfileStore) MarkMatched(_ context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.profiles {
		if s.profiles[i].UserID == userID {
			at := at
			s.profiles[i].LastMatchedAt = &at
		}
	}
	return nil
}

// MemoryMessageStore keeps messages in a slice
type MemoryMessageStore struct {
	mu       sync.RWMutex
	messages []models.Message
}

func NewMemoryMessageStore() *MemoryMessageStore {
	return &MemoryMessageStore{}
}

func (s *MemoryMessageStore) Append(_ context.Context, msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, msg)
	return nil
}

func (s *MemoryMessageStore) ListByMatch(_ context.Context, matchID string) ([]models.Message, error) {
	return s.filter(func(m models.Message) bool { return m.MatchID == matchID }), nil
}

func (s *MemoryMessageStore) ListAll(_ context.Context) ([]models.Message, error) {
	return s.filter(func(models.Message) bool { return true }), nil
}

func (s *MemoryMessageStore) CountSince(_ context.Context, matchID string, since time.Time) (int, error) {
	return len(s.filter(func(m models.Message) bool {
		return m.MatchID == matchID && !m.Timestamp.Before(since)
	})), nil
}

func (s *MemoryMessageStore) filter(keep func(models.Message) bool) []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Message{}
	for _, m := range s.messages {
		if keep(m) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// MemoryStateStore keeps deep copies so callers cannot mutate stored state
type MemoryStateStore struct {
	mu     sync.Mutex
	states map[string]*models.MatchState
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string]*models.MatchState)}
}

func (s *MemoryStateStore) Load(_ context.Context, matchID string) (*models.MatchState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[matchID]
	if !ok {
		return models.NewMatchState(matchID), nil
	}
	return cloneMatchState(state), nil
}

func (s *MemoryStateStore) Save(_ context.Context, state *models.MatchState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[state.MatchID] = cloneMatchState(state)
	return nil
}

func cloneMatchState(state *models.MatchState) *models.MatchState {
	out := &models.MatchState{
		MatchID:      state.MatchID,
		Participants: make(map[string]*models.SessionState, len(state.Participants)),
		UpdatedAt:    state.UpdatedAt,
	}
	for id, p := range state.Participants {
		cp := *p
		if p.FreezeUntil != nil {
			until := *p.FreezeUntil
			cp.FreezeUntil = &until
		}
		out.Participants[id] = &cp
	}
	return out
}

// MemoryPairingStore keeps daily reservations in a map keyed by day and user
type MemoryPairingStore struct {
	mu    sync.Mutex
	pairs map[string]string
}

func NewMemoryPairingStore() *MemoryPairingStore {
	return &MemoryPairingStore{pairs: make(map[string]string)}
}

func (s *MemoryPairingStore) Partner(_ context.Context, day, userID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	partner, ok := s.pairs[pairingKey(day, userID)]
	return partner, ok, nil
}

func (s *MemoryPairingStore) Reserve(_ context.Context, day, userID, partnerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userKey, partnerKey := pairingKey(day, userID), pairingKey(day, partnerID)
	if _, taken := s.pairs[userKey]; taken {
		return false, nil
	}
	if _, taken := s.pairs[partnerKey]; taken {
		return false, nil
	}
	s.pairs[userKey] = partnerID
	s.pairs[partnerKey] = userID
	return true, nil
}
