package repository

import (
	"context"
	"sync"

	bookingserrors "roombook/internal/bookings/errors"
	"roombook/pkg/model"
)

// MemoryRoomStore keeps rooms in process memory. Every read returns a clone,
// so callers can never mutate stored state without going through Save.
type MemoryRoomStore struct {
	mu    sync.RWMutex
	rooms map[string]*model.Room
	order []string
}

func NewMemoryRoomStore(rooms ...*model.Room) *MemoryRoomStore {
	s := &MemoryRoomStore{rooms: make(map[string]*model.Room)}
	s.Add(rooms...)
	return s
}

// Add registers rooms, replacing any with the same id.
func (s *MemoryRoomStore) Add(rooms ...*model.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range rooms {
		if _, exists := s.rooms[r.ID]; !exists {
			s.order = append(s.order, r.ID)
		}
		s.rooms[r.ID] = r.Clone()
	}
}

func (s *MemoryRoomStore) FindByID(ctx context.Context, id string) (*model.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[id]
	if !ok {
		return nil, bookingserrors.ErrRoomNotFound
	}
	return room.Clone(), nil
}

func (s *MemoryRoomStore) FindAll(ctx context.Context) ([]*model.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]*model.Room, 0, len(s.order))
	for _, id := range s.order {
		rooms = append(rooms, s.rooms[id].Clone())
	}
	return rooms, nil
}

func (s *MemoryRoomStore) Save(ctx context.Context, room *model.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.rooms[room.ID]
	if !ok {
		return bookingserrors.ErrRoomNotFound
	}
	if stored.Version != room.Version {
		return ErrVersionConflict
	}

	room.Version++
	s.rooms[room.ID] = room.Clone()
	return nil
}

func (s *MemoryRoomStore) Ping(ctx context.Context) error {
	return ctx.Err()
}
