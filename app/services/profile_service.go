package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lonetown/app/models"
	"lonetown/app/utils"
)

// ProfileStore persists onboarding profiles
type ProfileStore interface {
	// Save inserts the profile or updates the answers of an existing one
	Save(ctx context.Context, profile models.Profile) error
	// Get returns models.ErrNotFound for unknown users
	Get(ctx context.Context, userID string) (*models.Profile, error)
	// ListOthers returns every other profile in store order
	ListOthers(ctx context.Context, userID string) ([]models.Profile, error)
	MarkMatched(ctx context.Context, userID string, at time.Time) error
}

// ProfileService handles onboarding submissions
type ProfileService struct {
	store ProfileStore
	now   func() time.Time
}

// NewProfileService creates a new profile service instance
func NewProfileService(store ProfileStore) *ProfileService {
	return &ProfileService{
		store: store,
		now:   time.Now,
	}
}

// SaveProfile validates and stores the onboarding answers
func (s *ProfileService) SaveProfile(ctx context.Context, req models.SaveProfileRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}

	profile := models.Profile{
		UserID:    req.UserID,
		Question1: req.Question1,
		Question2: req.Question2,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Save(ctx, profile); err != nil {
		logrus.WithError(err).WithField("user_id", req.UserID).Error("❌ Failed to save profile")
		return err
	}

	logrus.WithField("user_id", req.UserID).Debug("Profile saved")
	return nil
}

// MongoProfileStore stores profiles in the profiles collection
type MongoProfileStore struct {
	collection *mongo.Collection
}

// NewMongoProfileStore creates a profile store on the given collection
func NewMongoProfileStore(collection *mongo.Collection) *MongoProfileStore {
	return &MongoProfileStore{collection: collection}
}

// Save upserts by userId; createdAt and lastMatchedAt are only written on insert
func (s *MongoProfileStore) Save(ctx context.Context, profile models.Profile) error {
	_, err := s.collection.UpdateOne(ctx,
		bson.M{"userId": profile.UserID},
		bson.M{
			"$set": bson.M{
				"question1": profile.Question1,
				"question2": profile.Question2,
			},
			"$setOnInsert": bson.M{
				"createdAt":     profile.CreatedAt,
				"lastMatchedAt": nil,
			},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("%w: save profile %s: %w", models.ErrStorage, profile.UserID, err)
	}
	return nil
}

// Get finds the profile of userID
func (s *MongoProfileStore) Get(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	err := s.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: User profile not found", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get profile %s: %w", models.ErrStorage, userID, err)
	}
	return &profile, nil
}

// ListOthers returns all profiles except userID, oldest first
func (s *MongoProfileStore) ListOthers(ctx context.Context, userID string) ([]models.Profile, error) {
	cursor, err := s.collection.Find(ctx,
		bson.M{"userId": bson.M{"$ne": userID}},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: list profiles: %w", models.ErrStorage, err)
	}

	profiles := []models.Profile{}
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("%w: decode profiles: %w", models.ErrStorage, err)
	}
	return profiles, nil
}

// MarkMatched records when userID was last matched
func (s *MongoProfileStore) MarkMatched(ctx context.Context, userID string, at time.Time) error {
	_, err := s.collection.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"lastMatchedAt": at}},
	)
	if err != nil {
		return fmt.Errorf("%w: mark matched %s: %w", models.ErrStorage, userID, err)
	}
	return nil
}
