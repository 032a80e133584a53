package model

import "time"

// BookRequest is the body of POST /api/v1/rooms/id/:id/bookings. The room id
// comes from the path.
type BookRequest struct {
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
}

// RoomSeed describes a room in the seed file loaded by the migration job and
// by the in-memory store.
type RoomSeed struct {
	ID       string `json:"id" yaml:"id" validate:"required,max=64,excludesall=/?#"`
	Name     string `json:"name" yaml:"name" validate:"required,max=200"`
	Capacity int    `json:"capacity" yaml:"capacity" validate:"min=1,max=10000"`
}

func (s RoomSeed) Room() *Room {
	return NewRoom(s.ID, s.Name, s.Capacity)
}

type RoomSeedFile struct {
	Rooms []RoomSeed `json:"rooms" yaml:"rooms" validate:"required,min=1,dive"`
}
