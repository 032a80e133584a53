package main

import (
	"context"
	"time"

	"roombook/internal/bookings/repository"
	"roombook/internal/bookings/validator"
	mongoMigration "roombook/internal/migrations/mongo"
	"roombook/pkg/config"
)

const JobName = "mongo-migration"

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	if cfg.MongoURI == "" || cfg.MongoDatabaseName == "" {
		cfg.Log.Fatal("Mongo migration needs MONGO_URI and MONGO_DATABASE_NAME")
	}

	rooms, err := repository.LoadRoomSeeds(cfg.RoomsSeedFile, validator.NewBookingValidator(cfg.Log))
	if err != nil {
		cfg.Log.Fatal("Failed to load room seeds", "file", cfg.RoomsSeedFile, "error", err)
	}

	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Mongo migration job", "database", cfg.MongoDatabaseName, "rooms", len(rooms))
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	if err := mongoMigration.RunMigration(ctx, db, rooms, cfg.Log); err != nil {
		cfg.GracefulShutdown()
		cfg.Log.Fatal("Migration failed", "error", err)
	}
	cfg.Log.Info("Migration completed successfully")
}
