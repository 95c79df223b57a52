package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gocql/gocql"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lonetown/app/models"
)

// MessageStore persists chat messages. Lists are ordered by timestamp ascending.
type MessageStore interface {
	Append(ctx context.Context, msg models.Message) error
	ListByMatch(ctx context.Context, matchID string) ([]models.Message, error)
	ListAll(ctx context.Context) ([]models.Message, error)
	// CountSince counts messages of matchID with a timestamp at or after since
	CountSince(ctx context.Context, matchID string, since time.Time) (int, error)
}

// MongoMessageStore stores messages in the messages collection
type MongoMessageStore struct {
	collection *mongo.Collection
}

// NewMongoMessageStore creates a message store on the given collection
func NewMongoMessageStore(collection *mongo.Collection) *MongoMessageStore {
	return &MongoMessageStore{collection: collection}
}

func (s *MongoMessageStore) Append(ctx context.Context, msg models.Message) error {
	if _, err := s.collection.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("%w: insert message: %w", models.ErrStorage, err)
	}
	return nil
}

func (s *MongoMessageStore) ListByMatch(ctx context.Context, matchID string) ([]models.Message, error) {
	return s.find(ctx, bson.M{"matchId": matchID})
}

func (s *MongoMessageStore) ListAll(ctx context.Context) ([]models.Message, error) {
	return s.find(ctx, bson.M{})
}

func (s *MongoMessageStore) CountSince(ctx context.Context, matchID string, since time.Time) (int, error) {
	n, err := s.collection.CountDocuments(ctx, bson.M{
		"matchId":   matchID,
		"timestamp": bson.M{"$gte": since},
	})
	if err != nil {
		return 0, fmt.Errorf("%w: count messages: %w", models.ErrStorage, err)
	}
	return int(n), nil
}

func (s *MongoMessageStore) find(ctx context.Context, filter bson.M) ([]models.Message, error) {
	cursor, err := s.collection.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: find messages: %w", models.ErrStorage, err)
	}

	messages := []models.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("%w: decode messages: %w", models.ErrStorage, err)
	}
	return messages, nil
}

// CassandraMessageStore stores messages in messages_by_match, partitioned by match id
type CassandraMessageStore struct {
	session *gocql.Session
}

// NewCassandraMessageStore creates a message store on an open session
func NewCassandraMessageStore(session *gocql.Session) *CassandraMessageStore {
	return &CassandraMessageStore{session: session}
}

func (s *CassandraMessageStore) Append(ctx context.Context, msg models.Message) error {
	err := s.session.Query(`
		INSERT INTO messages_by_match (match_id, ts, id, sender_id, content)
		VALUES (?, ?, ?, ?, ?)
	`, msg.MatchID, msg.Timestamp, msg.ID, msg.SenderID, msg.Content).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("%w: insert message: %w", models.ErrStorage, err)
	}
	return nil
}

func (s *CassandraMessageStore) ListByMatch(ctx context.Context, matchID string) ([]models.Message, error) {
	iter := s.session.Query(`
		SELECT match_id, ts, id, sender_id, content
		FROM messages_by_match
		WHERE match_id = ?
	`, matchID).WithContext(ctx).Iter()

	// rows come back in clustering order, ts ascending
	return scanMessages(iter)
}

// ListAll scans the whole table; partitions are merged by timestamp
func (s *CassandraMessageStore) ListAll(ctx context.Context) ([]models.Message, error) {
	iter := s.session.Query(`
		SELECT match_id, ts, id, sender_id, content
		FROM messages_by_match
	`).WithContext(ctx).Iter()

	messages, err := scanMessages(iter)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})
	return messages, nil
}

func (s *CassandraMessageStore) CountSince(ctx context.Context, matchID string, since time.Time) (int, error) {
	var count int
	err := s.session.Query(`
		SELECT COUNT(*) FROM messages_by_match
		WHERE match_id = ? AND ts >= ?
	`, matchID, since).WithContext(ctx).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: count messages: %w", models.ErrStorage, err)
	}
	return count, nil
}

func scanMessages(iter *gocql.Iter) ([]models.Message, error) {
	messages := []models.Message{}
	var msg models.Message
	for iter.Scan(&msg.MatchID, &msg.Timestamp, &msg.ID, &msg.SenderID, &msg.Content) {
		msg.Timestamp = msg.Timestamp.UTC()
		messages = append(messages, msg)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("%w: scan messages: %w", models.ErrStorage, err)
	}
	return messages, nil
}
