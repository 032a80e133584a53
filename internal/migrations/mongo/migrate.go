package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"roombook/internal/bookings/repository"
	"roombook/internal/migrations/mongo/validators"
	"roombook/pkg/logger"
	"roombook/pkg/model"
)

var (
	RoomsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "bookings.booking_id", Value: 1}},
			Options: options.Index().SetName("bookings_booking_id").SetUnique(true).SetSparse(true),
		},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	}

	// Lock documents left behind by crashed holders are reaped by Mongo once
	// they expire; takeover in the locker covers the gap until the reaper runs.
	RoomLocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("expires_at_ttl").SetExpireAfterSeconds(0),
		},
	}
)

type collectionDef struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func collections() map[string]collectionDef {
	return map[string]collectionDef{
		repository.RoomsCollection: {
			Indexes:   RoomsIndexes,
			Validator: validators.RoomValidator,
		},
		repository.RoomLocksCollection: {
			Indexes:   RoomLocksIndexes,
			Validator: validators.RoomLockValidator,
		},
	}
}

// RunMigration ensures collections, validators and indexes exist, then seeds
// rooms. Seeding only inserts missing rooms, so rerunning never touches the
// bookings of rooms already in the store.
func RunMigration(ctx context.Context, db *mongo.Database, rooms []*model.Room, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for name, def := range collections() {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	inserted, err := seedRooms(ctx, db.Collection(repository.RoomsCollection), rooms)
	if err != nil {
		return fmt.Errorf("failed to seed rooms: %w", err)
	}
	log.Info("Rooms seeded", "seeded", inserted, "already_present", len(rooms)-inserted)

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection already exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}

func seedRooms(ctx context.Context, coll *mongo.Collection, rooms []*model.Room) (int, error) {
	if len(rooms) == 0 {
		return 0, nil
	}

	writes := make([]mongo.WriteModel, 0, len(rooms))
	for _, room := range rooms {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": room.ID}).
			SetUpdate(bson.M{"$setOnInsert": repository.NewRoomDocument(room)}).
			SetUpsert(true))
	}

	res, err := coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, err
	}
	return int(res.UpsertedCount), nil
}
