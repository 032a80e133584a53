package repository

import (
	"context"
	"errors"
	"fmt"
	bookingserrors "roombook/internal/bookings/errors"
	"roombook/pkg/config"
	"roombook/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	RoomsCollection     = "Rooms"
	RoomLocksCollection = "Room_locks"
)

// ErrVersionConflict is returned by Save when the room changed in the store
// after it was loaded. The caller should reload and re-evaluate.
var ErrVersionConflict = errors.New("room was modified since it was loaded")

// RoomStore loads and persists Room aggregates.
//
// FindByID returns bookingserrors.ErrRoomNotFound for unknown ids. Save only
// succeeds when the stored version equals room.Version; on success the store
// bumps room.Version to the persisted value.
type RoomStore interface {
	FindByID(ctx context.Context, id string) (*model.Room, error)
	FindAll(ctx context.Context) ([]*model.Room, error)
	Save(ctx context.Context, room *model.Room) error
	Ping(ctx context.Context) error
}

type roomDocument struct {
	ID        string            `bson:"_id"`
	Name      string            `bson:"name"`
	Capacity  int               `bson:"capacity"`
	Version   int64             `bson:"version"`
	Bookings  []bookingDocument `bson:"bookings"`
	UpdatedAt time.Time         `bson:"updated_at"`
}

type bookingDocument struct {
	ID        string    `bson:"booking_id"`
	RoomID    string    `bson:"room_id"`
	StartTime time.Time `bson:"start_time"`
	EndTime   time.Time `bson:"end_time"`
	CreatedAt time.Time `bson:"created_at"`
}

type mongoRoomStore struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoRoomStore(cfg *config.Config) RoomStore {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRoomStore{
		cfg:        cfg,
		collection: db.Collection(RoomsCollection),
	}
}

// withTimeout bounds ctx by timeout unless the caller already set a tighter deadline.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoRoomStore) FindByID(ctx context.Context, id string) (*model.Room, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var doc roomDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to find room: %w", err)
	}

	return doc.toModel()
}

func (r *mongoRoomStore) FindAll(ctx context.Context) ([]*model.Room, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find rooms: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []roomDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode rooms: %w", err)
	}

	rooms := make([]*model.Room, 0, len(docs))
	for i := range docs {
		room, err := docs[i].toModel()
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

func (r *mongoRoomStore) Save(ctx context.Context, room *model.Room) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"_id": room.ID, "version": room.Version}
	update := bson.M{
		"$set": bson.M{
			"bookings":   toBookingDocuments(room.Bookings()),
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to save room: %w", err)
	}

	if result.MatchedCount == 0 {
		count, err := r.collection.CountDocuments(ctx, bson.M{"_id": room.ID})
		if err != nil {
			return fmt.Errorf("failed to check room existence: %w", err)
		}
		if count == 0 {
			return bookingserrors.ErrRoomNotFound
		}
		return ErrVersionConflict
	}

	room.Version++
	return nil
}

func (r *mongoRoomStore) Ping(ctx context.Context) error {
	return r.collection.Database().Client().Ping(ctx, nil)
}

func (d *roomDocument) toModel() (*model.Room, error) {
	bookings := make([]*model.Booking, 0, len(d.Bookings))
	for _, b := range d.Bookings {
		booking, err := model.NewBooking(b.ID, b.RoomID, b.StartTime, b.EndTime, b.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("room %s: stored booking %s: %w", d.ID, b.ID, err)
		}
		bookings = append(bookings, booking)
	}
	return model.RestoreRoom(d.ID, d.Name, d.Capacity, d.Version, bookings)
}

func toBookingDocuments(bookings []*model.Booking) []bookingDocument {
	docs := make([]bookingDocument, 0, len(bookings))
	for _, b := range bookings {
		docs = append(docs, bookingDocument{
			ID:        b.ID(),
			RoomID:    b.RoomID(),
			StartTime: b.StartTime(),
			EndTime:   b.EndTime(),
			CreatedAt: b.CreatedAt(),
		})
	}
	return docs
}

// NewRoomDocument builds the document inserted for a freshly seeded room.
func NewRoomDocument(room *model.Room) any {
	return roomDocument{
		ID:        room.ID,
		Name:      room.Name,
		Capacity:  room.Capacity,
		Version:   room.Version,
		Bookings:  toBookingDocuments(room.Bookings()),
		UpdatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}
