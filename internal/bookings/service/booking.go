package service

import (
	"context"
	"errors"
	bookingserrors "roombook/internal/bookings/errors"
	"roombook/internal/bookings/notifier"
	"roombook/internal/bookings/repository"
	"roombook/pkg/clock"
	"roombook/pkg/config"
	apperrors "roombook/pkg/errors"
	"roombook/pkg/model"
	"time"

	"github.com/google/uuid"
)

// BookingService coordinates rooms, the clock and the confirmation channel.
// Caller mistakes come back as the sentinels in internal/bookings/errors;
// infrastructure failures as *apperrors.AppError.
type BookingService interface {
	// Book reserves [start,end) in the room. A nil booking with a nil error
	// means the window is taken.
	Book(ctx context.Context, roomID string, start, end time.Time) (*model.Booking, error)
	BookRoom(ctx context.Context, roomID string, start, end time.Time) (bool, error)
	CancelBooking(ctx context.Context, bookingID string) (bool, error)
	GetAvailableRooms(ctx context.Context, start, end time.Time) ([]*model.Room, error)
	GetRoom(ctx context.Context, roomID string) (*model.Room, error)
	ListRooms(ctx context.Context) ([]*model.Room, error)
}

type bookingService struct {
	store    repository.RoomStore
	locker   repository.RoomLocker
	notifier notifier.Notifier
	clock    clock.Clock
	cfg      *config.Config
	newID    func() string
}

func NewBookingService(
	store repository.RoomStore,
	locker repository.RoomLocker,
	notifier notifier.Notifier,
	clk clock.Clock,
	cfg *config.Config,
) BookingService {
	if locker == nil {
		locker = repository.NewNoopRoomLocker()
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &bookingService{
		store:    store,
		locker:   locker,
		notifier: notifier,
		clock:    clk,
		cfg:      cfg,
		newID:    uuid.NewString,
	}
}

func (s *bookingService) BookRoom(ctx context.Context, roomID string, start, end time.Time) (bool, error) {
	booking, err := s.Book(ctx, roomID, start, end)
	if err != nil {
		return false, err
	}
	return booking != nil, nil
}

func (s *bookingService) Book(ctx context.Context, roomID string, start, end time.Time) (*model.Booking, error) {
	if roomID == "" || start.IsZero() || end.IsZero() {
		return nil, bookingserrors.ErrBookingFieldsRequired
	}
	start, end = storePrecision(start), storePrecision(end)
	now := storePrecision(s.clock.Now())
	if start.Before(now) {
		return nil, bookingserrors.ErrPastBooking
	}
	if !end.After(start) {
		return nil, bookingserrors.ErrInvalidWindow
	}

	unlock, err := s.lockRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var booking *model.Booking
	err = s.withVersionRetry(ctx, roomID, func(room *model.Room) (bool, error) {
		if !room.IsAvailable(start, end) {
			booking = nil
			return false, nil
		}
		b, err := model.NewBooking(s.newID(), room.ID, start, end, now)
		if err != nil {
			return false, err
		}
		if err := room.AddBooking(b); err != nil {
			return false, apperrors.Internal("Failed to add booking to room", err)
		}
		booking = b
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	if booking == nil {
		s.cfg.Log.Info("Room not available",
			"room_id", roomID,
			"start_time", start,
			"end_time", end,
		)
		return nil, nil
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID(),
		"room_id", roomID,
		"start_time", start,
		"end_time", end,
	)
	s.notifyBooked(ctx, booking)
	return booking, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, bookingID string) (bool, error) {
	if bookingID == "" {
		return false, bookingserrors.ErrBookingIDRequired
	}

	owner, err := s.findOwner(ctx, bookingID)
	if err != nil {
		return false, err
	}
	if owner == nil {
		s.cfg.Log.Info("Booking not found for cancellation", "id", bookingID)
		return false, nil
	}

	unlock, err := s.lockRoom(ctx, owner.ID)
	if err != nil {
		return false, err
	}
	defer unlock()

	var cancelled *model.Booking
	err = s.withVersionRetry(ctx, owner.ID, func(room *model.Room) (bool, error) {
		// Re-read under the lock; a concurrent cancel may have won.
		booking, ok := room.GetBooking(bookingID)
		if !ok {
			cancelled = nil
			return false, nil
		}
		if !booking.StartTime().After(s.clock.Now()) {
			return false, bookingserrors.ErrAlreadyStartedOrPast
		}
		if err := room.RemoveBooking(bookingID); err != nil {
			return false, apperrors.Internal("Failed to remove booking from room", err)
		}
		cancelled = booking
		return true, nil
	})
	if err != nil {
		return false, err
	}
	if cancelled == nil {
		return false, nil
	}

	s.cfg.Log.Info("Booking cancelled successfully", "id", bookingID, "room_id", owner.ID)
	s.notifyCancelled(ctx, cancelled)
	return true, nil
}

func (s *bookingService) GetAvailableRooms(ctx context.Context, start, end time.Time) ([]*model.Room, error) {
	if start.IsZero() || end.IsZero() {
		return nil, bookingserrors.ErrWindowRequired
	}
	start, end = storePrecision(start), storePrecision(end)
	if !end.After(start) {
		return nil, bookingserrors.ErrInvalidWindow
	}

	rooms, err := s.ListRooms(ctx)
	if err != nil {
		return nil, err
	}

	available := make([]*model.Room, 0, len(rooms))
	for _, room := range rooms {
		if room.IsAvailable(start, end) {
			available = append(available, room)
		}
	}

	s.cfg.Log.Debug("Available rooms search completed",
		"start_time", start,
		"end_time", end,
		"count", len(available),
		"total_count", len(rooms),
	)
	return available, nil
}

func (s *bookingService) GetRoom(ctx context.Context, roomID string) (*model.Room, error) {
	if roomID == "" {
		return nil, bookingserrors.ErrRoomIDRequired
	}
	return s.loadRoom(ctx, roomID)
}

func (s *bookingService) ListRooms(ctx context.Context) ([]*model.Room, error) {
	rooms, err := s.store.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list rooms", "error", err)
		return nil, apperrors.Internal("Failed to retrieve rooms", err)
	}
	return rooms, nil
}

// --- Helpers ---

// withVersionRetry runs load, mutate, save for one room. mutate reports
// whether it changed the room; unchanged rooms are not saved. A version
// conflict reloads the room and runs mutate again, so availability is always
// judged against the latest committed state.
func (s *bookingService) withVersionRetry(ctx context.Context, roomID string, mutate func(room *model.Room) (bool, error)) error {
	attempts := s.cfg.BookingMaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; ; attempt++ {
		room, err := s.loadRoom(ctx, roomID)
		if err != nil {
			return err
		}

		changed, err := mutate(room)
		if err != nil || !changed {
			return err
		}

		err = s.store.Save(ctx, room)
		if err == nil {
			return nil
		}
		if errors.Is(err, bookingserrors.ErrRoomNotFound) {
			return bookingserrors.ErrRoomNotFound
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			s.cfg.Log.Error("Failed to save room", "room_id", roomID, "error", err)
			return apperrors.Internal("Failed to save room", err)
		}
		if attempt >= attempts {
			s.cfg.Log.Warn("Giving up after repeated version conflicts", "room_id", roomID, "attempts", attempt)
			return apperrors.Conflict("Room was modified concurrently, please try again").WithCause(err)
		}
		s.cfg.Log.Debug("Room version conflict, retrying", "room_id", roomID, "attempt", attempt)
	}
}

func (s *bookingService) loadRoom(ctx context.Context, roomID string) (*model.Room, error) {
	room, err := s.store.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrRoomNotFound) {
			return nil, bookingserrors.ErrRoomNotFound
		}
		s.cfg.Log.Error("Failed to load room", "room_id", roomID, "error", err)
		return nil, apperrors.Internal("Failed to load room", err)
	}
	return room, nil
}

func (s *bookingService) findOwner(ctx context.Context, bookingID string) (*model.Room, error) {
	rooms, err := s.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	for _, room := range rooms {
		if room.HasBooking(bookingID) {
			return room, nil
		}
	}
	return nil, nil
}

// storePrecision truncates t to what the stores keep. BSON datetimes hold
// milliseconds, so a window must be validated at that resolution or it can
// collapse to zero length once persisted.
func storePrecision(t time.Time) time.Time {
	return t.Truncate(time.Millisecond)
}

func (s *bookingService) lockRoom(ctx context.Context, roomID string) (func(), error) {
	unlock, err := s.locker.Lock(ctx, roomID)
	if err == nil {
		return unlock, nil
	}
	if errors.Is(err, repository.ErrRoomLocked) {
		return nil, apperrors.Conflict("room is currently being booked by another request, please try again").WithCause(err)
	}
	if ctx.Err() != nil {
		return nil, apperrors.Timeout("Timed out waiting for room lock").WithCause(err)
	}
	s.cfg.Log.Error("Failed to acquire room lock", "room_id", roomID, "error", err)
	return nil, apperrors.Internal("Failed to acquire room lock", err)
}

// notifyBooked is best effort: the booking is already committed.
func (s *bookingService) notifyBooked(ctx context.Context, booking *model.Booking) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendBookingConfirmation(context.WithoutCancel(ctx), booking); err != nil {
		s.cfg.Log.Warn("Failed to send booking confirmation",
			"id", booking.ID(),
			"room_id", booking.RoomID(),
			"error", err,
		)
	}
}

// notifyCancelled is best effort: the cancellation is already committed.
func (s *bookingService) notifyCancelled(ctx context.Context, booking *model.Booking) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendCancellationConfirmation(context.WithoutCancel(ctx), booking); err != nil {
		s.cfg.Log.Warn("Failed to send cancellation confirmation",
			"id", booking.ID(),
			"room_id", booking.RoomID(),
			"error", err,
		)
	}
}
