package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"lonetown/app/models"
	"lonetown/redis"
)

// PairingStore records the daily match reservation of each user
type PairingStore interface {
	Partner(ctx context.Context, day, userID string) (string, bool, error)
	// Reserve pairs both users for day. It reports false if either is already reserved.
	Reserve(ctx context.Context, day, userID, partnerID string) (bool, error)
}

// RedisPairingStore keeps reservations under daily_match:<day>:<userId>
type RedisPairingStore struct {
	redisService *redis.Service
	ttl          time.Duration
}

// NewRedisPairingStore creates a Redis-backed pairing store
func NewRedisPairingStore(redisService *redis.Service) *RedisPairingStore {
	return &RedisPairingStore{
		redisService: redisService,
		ttl:          24 * time.Hour,
	}
}

func (s *RedisPairingStore) Partner(ctx context.Context, day, userID string) (string, bool, error) {
	var partner string
	err := s.redisService.Get(ctx, pairingKey(day, userID), &partner)
	if errors.Is(err, redis.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: get pairing: %w", models.ErrStorage, err)
	}
	return partner, true, nil
}

func (s *RedisPairingStore) Reserve(ctx context.Context, day, userID, partnerID string) (bool, error) {
	userKey, partnerKey := pairingKey(day, userID), pairingKey(day, partnerID)

	ok, err := s.redisService.SetNX(ctx, userKey, partnerID, s.ttl)
	if err != nil {
		return false, fmt.Errorf("%w: reserve pairing: %w", models.ErrStorage, err)
	}
	if !ok {
		return false, nil
	}

	ok, err = s.redisService.SetNX(ctx, partnerKey, userID, s.ttl)
	if err != nil || !ok {
		// release our half so the user can be matched again
		if delErr := s.redisService.Delete(ctx, userKey); delErr != nil {
			logrus.WithError(delErr).WithField("key", userKey).Warn("Failed to release pairing")
		}
		if err != nil {
			return false, fmt.Errorf("%w: reserve pairing: %w", models.ErrStorage, err)
		}
		return false, nil
	}
	return true, nil
}

func pairingKey(day, userID string) string {
	return fmt.Sprintf("daily_match:%s:%s", day, userID)
}

// MatchmakingService pairs a user with the most compatible other profile
type MatchmakingService struct {
	profiles ProfileStore
	pairings PairingStore
	now      func() time.Time
}

// NewMatchmakingService creates a new matchmaking service instance.
// A nil pairings store disables daily reservations.
func NewMatchmakingService(profiles ProfileStore, pairings PairingStore) *MatchmakingService {
	return &MatchmakingService{
		profiles: profiles,
		pairings: pairings,
		now:      time.Now,
	}
}

// SelectBest scans candidates in order and keeps the first one with the
// strictly highest compatibility score. It returns -1 for an empty slice.
func SelectBest(user models.Profile, candidates []models.Profile) (int, int) {
	best, highest := -1, -1
	for i, candidate := range candidates {
		if score := models.CompatibilityScore(user, candidate); score > highest {
			best, highest = i, score
		}
	}
	return best, highest
}

// FindMatch returns the best partner for userID, models.ErrNotFound for an
// unknown user or models.ErrNoMatchAvailable when nobody else has a profile.
func (m *MatchmakingService) FindMatch(ctx context.Context, userID string) (*models.MatchPair, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: Missing userId", models.ErrValidation)
	}

	user, err := m.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := m.now().UTC()
	day := now.Format("2006-01-02")

	if m.pairings != nil {
		if pair, err := m.reservedPair(ctx, day, *user, now); err != nil || pair != nil {
			return pair, err
		}
	}

	candidates, err := m.profiles.ListOthers(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, models.ErrNoMatchAvailable
	}

	if m.pairings != nil {
		if candidates, err = m.unreserved(ctx, day, candidates); err != nil {
			return nil, err
		}
	}

	for len(candidates) > 0 {
		i, score := SelectBest(*user, candidates)
		partner := candidates[i]

		if m.pairings != nil {
			ok, err := m.pairings.Reserve(ctx, day, userID, partner.UserID)
			if err != nil {
				return nil, err
			}
			if !ok {
				// lost a race; another request may have reserved us in the meantime
				if pair, err := m.reservedPair(ctx, day, *user, now); err != nil || pair != nil {
					return pair, err
				}
				candidates = append(candidates[:i:i], candidates[i+1:]...)
				continue
			}
		}

		m.markMatched(ctx, now, userID, partner.UserID)

		logrus.WithFields(logrus.Fields{
			"user_id":    userID,
			"partner_id": partner.UserID,
			"score":      score,
		}).Info("💞 Match found")

		return &models.MatchPair{
			MatchID:   models.MatchID(userID, partner.UserID),
			UserID:    userID,
			PartnerID: partner.UserID,
			Score:     score,
			CreatedAt: now,
		}, nil
	}

	return nil, fmt.Errorf("%w: No compatible match found", models.ErrNoMatchAvailable)
}

// reservedPair returns today's reservation for user, or nil if there is none
func (m *MatchmakingService) reservedPair(ctx context.Context, day string, user models.Profile, now time.Time) (*models.MatchPair, error) {
	partnerID, ok, err := m.pairings.Partner(ctx, day, user.UserID)
	if err != nil || !ok {
		return nil, err
	}

	partner, err := m.profiles.Get(ctx, partnerID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &models.MatchPair{
		MatchID:   models.MatchID(user.UserID, partnerID),
		UserID:    user.UserID,
		PartnerID: partnerID,
		Score:     models.CompatibilityScore(user, *partner),
		CreatedAt: now,
	}, nil
}

func (m *MatchmakingService) unreserved(ctx context.Context, day string, candidates []models.Profile) ([]models.Profile, error) {
	free := make([]models.Profile, 0, len(candidates))
	for _, c := range candidates {
		_, taken, err := m.pairings.Partner(ctx, day, c.UserID)
		if err != nil {
			return nil, err
		}
		if !taken {
			free = append(free, c)
		}
	}
	return free, nil
}

func (m *MatchmakingService) markMatched(ctx context.Context, at time.Time, userIDs ...string) {
	for _, id := range userIDs {
		if err := m.profiles.MarkMatched(ctx, id, at); err != nil {
			logrus.WithError(err).WithField("user_id", id).Warn("Failed to record lastMatchedAt")
		}
	}
}
