// main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"lonetown/app/controllers"
	"lonetown/app/routes"
	"lonetown/app/services"
	"lonetown/config"
	"lonetown/database"
	"lonetown/redis"
)

func main() {
	setupLogging()

	logrus.Info("🔌 Initializing database connection...")
	if err := database.InitDB(); err != nil {
		logrus.WithError(err).Fatal("❌ Failed to connect to the database")
	}
	defer database.CloseAllConnections()

	var redisService *redis.Service
	if config.StateStore == config.StoreRedis || config.MatchReservationEnabled {
		redisService = redis.NewService(config.RedisURL, config.RedisPassword, config.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), config.StoreTimeout)
		err := redisService.Ping(ctx)
		cancel()
		if err != nil {
			logrus.WithError(err).Fatal("❌ Failed to connect to Redis")
		}
		logrus.Info("✅ Redis connected")
		defer redisService.Close()
	}

	profiles := profileStore()
	messages := messageStore()
	states := services.NewMatchStateService(stateStore(redisService), messages)

	var pairings services.PairingStore
	if config.MatchReservationEnabled {
		pairings = services.NewRedisPairingStore(redisService)
	}

	chat := services.NewChatService(messages, states, services.NewBroadcaster())
	socketHandler := config.NewSocketHandler(chat)

	app := routes.NewApp(config.CORSOrigins)

	// Socket.IO routes must be mounted before the regular routes
	socketHandler.SetupSocketRoutes(app)

	routes.SetupRoutes(app, routes.Handlers{
		Profile:   controllers.NewProfileController(services.NewProfileService(profiles), config.StoreTimeout),
		Match:     controllers.NewMatchController(services.NewMatchmakingService(profiles, pairings), states, config.StoreTimeout),
		Messaging: controllers.NewMessagingController(messages, config.StoreTimeout),
		Health: func(ctx context.Context) map[string]string {
			status := database.HealthCheck(ctx)
			if redisService != nil {
				if err := redisService.Ping(ctx); err != nil {
					status["redis"] = "error: " + err.Error()
				} else {
					status["redis"] = "ok"
				}
			}
			return status
		},
		Version: config.AppVersion,
		AppName: config.AppName,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		logrus.Info("🛑 Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logrus.WithError(err).Error("❌ Server shutdown failed")
		}
	}()

	port := config.ServerPort
	logrus.WithFields(logrus.Fields{
		"port":          port,
		"message_store": config.MessageStore,
		"state_store":   config.StateStore,
	}).Infof("🚀 Lone Town backend starting on port :%d", port)

	if err := app.Listen(fmt.Sprintf(":%d", port)); err != nil {
		logrus.WithError(err).Error("❌ Server stopped")
	}
}

func setupLogging() {
	if config.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(config.LogLevel)
	if err != nil {
		logrus.WithField("level", config.LogLevel).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func profileStore() services.ProfileStore {
	if config.ProfileStore == config.StoreMemory {
		logrus.Warn("Profiles are kept in memory")
		return services.NewMemoryProfileStore()
	}
	return services.NewMongoProfileStore(database.MongoDB.Collection(database.ProfilesCollection))
}

func messageStore() services.MessageStore {
	switch config.MessageStore {
	case config.StoreMemory:
		logrus.Warn("Messages are kept in memory")
		return services.NewMemoryMessageStore()
	case config.StoreCassandra:
		return services.NewCassandraMessageStore(database.CassandraSession)
	default:
		return services.NewMongoMessageStore(database.MongoDB.Collection(database.MessagesCollection))
	}
}

func stateStore(redisService *redis.Service) services.MatchStateStore {
	if redisService == nil || config.StateStore == config.StoreMemory {
		logrus.Warn("Match state is kept in memory")
		return services.NewMemoryStateStore()
	}
	return services.NewRedisMatchStateStore(redisService)
}
