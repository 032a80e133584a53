package repository

import (
	"context"
	"os"
	"testing"
	"time"

	bookingserrors "roombook/internal/bookings/errors"
	"roombook/pkg/client"
	"roombook/pkg/config"
	"roombook/pkg/logger"
	"roombook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoTestConfig connects to TEST_MONGO_URI or skips the test.
func mongoTestConfig(t *testing.T) *config.Config {
	t.Helper()

	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set, skipping MongoDB integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mc, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	require.NoError(t, mc.Ping(ctx, nil))

	dbName := "roombook_test_" + time.Now().Format("150405000")
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = mc.Database(dbName).Drop(ctx)
		_ = mc.Disconnect(ctx)
	})

	return &config.Config{
		MongoDatabaseName: dbName,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		RoomLockTTL:       2 * time.Second,
		RoomLockWait:      200 * time.Millisecond,
		Log:               logger.Discard(),
		Client:            &client.Client{Mongo: mc},
	}
}

func seedRoom(t *testing.T, cfg *config.Config, room *model.Room) {
	t.Helper()
	coll := cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(RoomsCollection)
	_, err := coll.InsertOne(context.Background(), NewRoomDocument(room))
	require.NoError(t, err)
}

func TestMongoRoomStore_RoundTripAndVersioning(t *testing.T) {
	cfg := mongoTestConfig(t)
	ctx := context.Background()
	seedRoom(t, cfg, model.NewRoom("R1", "Aurora", 8))
	store := NewMongoRoomStore(cfg)

	room, err := store.FindByID(ctx, "R1")
	require.NoError(t, err)
	stale, err := store.FindByID(ctx, "R1")
	require.NoError(t, err)

	require.NoError(t, room.AddBooking(newBooking(t, "b1", "R1", 13, 14)))
	require.NoError(t, store.Save(ctx, room))
	assert.Equal(t, int64(1), room.Version)

	require.NoError(t, stale.AddBooking(newBooking(t, "b2", "R1", 13, 14)))
	assert.ErrorIs(t, store.Save(ctx, stale), ErrVersionConflict)

	reloaded, err := store.FindByID(ctx, "R1")
	require.NoError(t, err)
	assert.True(t, reloaded.HasBooking("b1"))
	assert.False(t, reloaded.HasBooking("b2"))
	b, ok := reloaded.GetBooking("b1")
	require.True(t, ok)
	assert.True(t, b.StartTime().Equal(day.Add(13*time.Hour)))

	rooms, err := store.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, rooms, 1)

	_, err = store.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, bookingserrors.ErrRoomNotFound)
	assert.ErrorIs(t, store.Save(ctx, model.NewRoom("missing", "Ghost", 1)), bookingserrors.ErrRoomNotFound)
	assert.NoError(t, store.Ping(ctx))
}

func TestRoomDocument_BSONRoundTripKeepsBookingsLoadable(t *testing.T) {
	room := model.NewRoom("R1", "Aurora", 8)
	booking, err := model.NewBooking("b1", "R1", day.Add(13*time.Hour), day.Add(13*time.Hour+time.Millisecond), day.Add(10*time.Hour))
	require.NoError(t, err)
	require.NoError(t, room.AddBooking(booking))

	raw, err := bson.Marshal(NewRoomDocument(room))
	require.NoError(t, err)

	var doc roomDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))
	loaded, err := doc.toModel()
	require.NoError(t, err)

	got, ok := loaded.GetBooking("b1")
	require.True(t, ok)
	assert.True(t, got.StartTime().Equal(booking.StartTime()))
	assert.True(t, got.EndTime().Equal(booking.EndTime()))
	assert.True(t, got.CreatedAt().Equal(booking.CreatedAt()))
}

func TestRoomDocument_SubMillisecondWindowDoesNotSurviveBSON(t *testing.T) {
	room := model.NewRoom("R1", "Aurora", 8)
	booking, err := model.NewBooking("b1", "R1", day.Add(13*time.Hour+100*time.Microsecond), day.Add(13*time.Hour+900*time.Microsecond), day)
	require.NoError(t, err)
	require.NoError(t, room.AddBooking(booking))

	raw, err := bson.Marshal(NewRoomDocument(room))
	require.NoError(t, err)

	var doc roomDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))
	_, err = doc.toModel()
	assert.Error(t, err)
}

func TestMongoRoomLocker_ExclusiveUntilReleased(t *testing.T) {
	cfg := mongoTestConfig(t)
	ctx := context.Background()
	locker := NewMongoRoomLocker(cfg)

	unlock, err := locker.Lock(ctx, "R1")
	require.NoError(t, err)

	_, err = locker.Lock(ctx, "R1")
	assert.ErrorIs(t, err, ErrRoomLocked)

	unlock()

	unlockAgain, err := locker.Lock(ctx, "R1")
	require.NoError(t, err)
	unlockAgain()

	count, err := cfg.Client.Mongo.Database(cfg.MongoDatabaseName).
		Collection(RoomLocksCollection).
		CountDocuments(ctx, bson.M{"room_id": "R1"})
	require.NoError(t, err)
	assert.Zero(t, count)
}
