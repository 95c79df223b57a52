package database

import (
	"context"
	"fmt"
	"lonetown/config"
	"time"

	"github.com/gocql/gocql"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names
const (
	ProfilesCollection = "profiles"
	MessagesCollection = "messages"
)

var (
	// MongoClient is set once InitMongo succeeds
	MongoClient *mongo.Client
	// MongoDB is the application database on MongoClient
	MongoDB *mongo.Database
	// Cassandra session instance, only set when messages live in Cassandra
	CassandraSession *gocql.Session
)

// InitDB connects the stores selected in config
func InitDB() error {
	if config.ProfileStore == config.StoreMongo || config.MessageStore == config.StoreMongo {
		if err := InitMongo(); err != nil {
			return fmt.Errorf("failed to initialize MongoDB: %w", err)
		}
	}
	if config.MessageStore == config.StoreCassandra {
		if err := InitCassandra(); err != nil {
			return fmt.Errorf("failed to initialize Cassandra: %w", err)
		}
	}
	logrus.Info("✅ Database services initialized successfully")
	return nil
}

// InitMongo connects to MongoDB and ensures the collection indexes
func InitMongo() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logrus.WithField("database", config.MongoDatabase).Info("🔌 Connecting to MongoDB...")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.MongoURI))
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	MongoClient = client
	MongoDB = client.Database(config.MongoDatabase)

	if err := ensureIndexes(ctx, MongoDB); err != nil {
		return err
	}

	logrus.Info("✅ Connected to MongoDB")
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(ProfilesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create profiles index: %w", err)
	}

	_, err = db.Collection(MessagesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "matchId", Value: 1}, {Key: "timestamp", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create messages index: %w", err)
	}
	return nil
}

// InitCassandra initializes the Cassandra session and the messages table
func InitCassandra() error {
	// Create cluster configuration
	cluster := gocql.NewCluster(config.CassandraHost)
	cluster.Port = config.CassandraPort
	cluster.Keyspace = config.CassandraKeyspace
	cluster.Authenticator = gocql.PasswordAuthenticator{
		Username: config.CassandraUsername,
		Password: config.CassandraPassword,
	}

	// Set consistency and timeout
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = 10 * time.Second
	cluster.ConnectTimeout = 10 * time.Second

	cluster.RetryPolicy = &gocql.SimpleRetryPolicy{
		NumRetries: 3,
	}
	cluster.NumConns = 10

	logrus.WithFields(logrus.Fields{
		"host": config.CassandraHost,
		"port": config.CassandraPort,
	}).Info("🔌 Connecting to Cassandra...")

	session, err := cluster.CreateSession()
	if err != nil {
		return fmt.Errorf("failed to connect to Cassandra: %w", err)
	}

	if err := session.Query(`
		CREATE TABLE IF NOT EXISTS messages_by_match (
			match_id text,
			ts timestamp,
			id text,
			sender_id text,
			content text,
			PRIMARY KEY ((match_id), ts, id)
		) WITH CLUSTERING ORDER BY (ts ASC, id ASC)
	`).Exec(); err != nil {
		session.Close()
		return fmt.Errorf("failed to create messages_by_match: %w", err)
	}

	CassandraSession = session
	logrus.WithField("keyspace", config.CassandraKeyspace).Info("✅ Cassandra session initialized successfully")
	return nil
}

// CloseAllConnections closes every open database connection
func CloseAllConnections() {
	if MongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := MongoClient.Disconnect(ctx); err != nil {
			logrus.WithError(err).Warn("MongoDB disconnect failed")
		} else {
			logrus.Info("✅ MongoDB connection closed")
		}
	}
	if CassandraSession != nil {
		CassandraSession.Close()
		logrus.Info("✅ Cassandra connection closed")
	}
}

// HealthCheck reports the status of each connected database
func HealthCheck(ctx context.Context) map[string]string {
	status := map[string]string{}

	if MongoClient != nil {
		if err := MongoClient.Ping(ctx, readpref.Primary()); err != nil {
			status["mongodb"] = "error: " + err.Error()
		} else {
			status["mongodb"] = "ok"
		}
	}

	if CassandraSession != nil {
		if err := CassandraSession.Query("SELECT release_version FROM system.local").WithContext(ctx).Exec(); err != nil {
			status["cassandra"] = "error: " + err.Error()
		} else {
			status["cassandra"] = "ok"
		}
	}

	return status
}
