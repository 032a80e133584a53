package repository

import (
	"context"
	"errors"
	"sync"
)

// ErrRoomLocked is returned when another request holds the room's lock for
// longer than the caller is willing to wait.
var ErrRoomLocked = errors.New("room is locked by another request")

// RoomLocker serialises load-check-save cycles on a single room. The returned
// func releases the lock and must be called exactly once.
type RoomLocker interface {
	Lock(ctx context.Context, roomID string) (unlock func(), err error)
}

type noopRoomLocker struct{}

// NewNoopRoomLocker relies on versioned saves alone.
func NewNoopRoomLocker() RoomLocker {
	return noopRoomLocker{}
}

func (noopRoomLocker) Lock(context.Context, string) (func(), error) {
	return func() {}, nil
}

// LocalRoomLocker is a keyed mutex for single-instance deployments.
type LocalRoomLocker struct {
	mu    sync.Mutex
	rooms map[string]*roomSlot
}

type roomSlot struct {
	sem  chan struct{}
	refs int
}

func NewLocalRoomLocker() *LocalRoomLocker {
	return &LocalRoomLocker{rooms: make(map[string]*roomSlot)}
}

func (l *LocalRoomLocker) Lock(ctx context.Context, roomID string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.rooms[roomID]
	if !ok {
		slot = &roomSlot{sem: make(chan struct{}, 1)}
		l.rooms[roomID] = slot
	}
	slot.refs++
	l.mu.Unlock()

	select {
	case slot.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(roomID, slot)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-slot.sem
			l.release(roomID, slot)
		})
	}, nil
}

func (l *LocalRoomLocker) release(roomID string, slot *roomSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot.refs--
	if slot.refs == 0 {
		delete(l.rooms, roomID)
	}
}

func (l *LocalRoomLocker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rooms)
}
