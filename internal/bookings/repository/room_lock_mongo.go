package repository

import (
	"context"
	"fmt"
	"roombook/pkg/config"
	"roombook/pkg/logger"
	"roombook/pkg/model"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const lockRetryInterval = 50 * time.Millisecond

// mongoRoomLocker stores advisory lock documents keyed by room. A unique _id
// makes the insert the acquisition; expired documents are taken over.
type mongoRoomLocker struct {
	collection *mongo.Collection
	ttl        time.Duration
	wait       time.Duration
	log        *logger.Logger
}

func NewMongoRoomLocker(cfg *config.Config) RoomLocker {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRoomLocker{
		collection: db.Collection(RoomLocksCollection),
		ttl:        cfg.RoomLockTTL,
		wait:       cfg.RoomLockWait,
		log:        cfg.Log,
	}
}

func lockID(roomID string) string {
	return "room_lock_" + roomID
}

func (l *mongoRoomLocker) Lock(ctx context.Context, roomID string) (func(), error) {
	lock := &model.RoomLock{
		ID:     lockID(roomID),
		RoomID: roomID,
		Token:  uuid.NewString(),
	}

	deadline := time.Now().Add(l.wait)
	for {
		acquired, err := l.tryAcquire(ctx, lock)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire room lock: %w", err)
		}
		if acquired {
			break
		}
		if !time.Now().Before(deadline) {
			return nil, ErrRoomLocked
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), l.ttl)
		defer cancel()
		_, err := l.collection.DeleteOne(releaseCtx, bson.M{"_id": lock.ID, "token": lock.Token})
		if err != nil {
			l.log.Warn("Failed to release room lock", "room_id", roomID, "lock_id", lock.ID, "error", err)
		}
	}, nil
}

// tryAcquire reports false on a live duplicate.
func (l *mongoRoomLocker) tryAcquire(ctx context.Context, lock *model.RoomLock) (bool, error) {
	now := time.Now().UTC()
	if _, err := l.collection.DeleteOne(ctx, bson.M{"_id": lock.ID, "expires_at": bson.M{"$lte": now}}); err != nil {
		return false, err
	}

	lock.CreatedAt = now
	lock.ExpiresAt = now.Add(l.ttl)
	if _, err := l.collection.InsertOne(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
