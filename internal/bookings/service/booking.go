package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	bookingserrors "microbus/internal/bookings/errors"
	"microbus/internal/bookings/repository"
	"microbus/internal/bookings/validator"
	"microbus/pkg/config"
	apperrors "microbus/pkg/errors"
	"microbus/pkg/kafka"
	"microbus/pkg/model"
	"microbus/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

// admissionLockID serializes booking admission for the single shared
// minibus. All create requests contend for the same advisory lock, which
// closes the window between the overlap check and the insert.
const admissionLockID = "booking_admission_minibus"

// admissionLockTTL bounds how long a crashed holder can block admission.
// A contender that hits the duplicate key reclaims the lock once it is
// older than this and retries the insert.
const admissionLockTTL = 10 * time.Second

type BookingService interface {
	Create(ctx context.Context, requesterPhone string, booking *model.Booking) (*model.Booking, error)
	Cancel(ctx context.Context, id string, requesterPhone string) error
	List(ctx context.Context) ([]*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.ResourceLockRepository
	users     repository.UserDirectory
	validator *validator.BookingValidator
	publisher kafka.Publisher
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.ResourceLockRepository,
	users repository.UserDirectory,
	validator *validator.BookingValidator,
	publisher kafka.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		users:     users,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Create admits a booking if its closed date interval does not touch any
// confirmed booking. Admission is serialized by an advisory lock and the
// overlap check plus insert run in one transaction.
func (s *bookingService) Create(ctx context.Context, requesterPhone string, booking *model.Booking) (*model.Booking, error) {
	owner, err := s.users.FindByPhone(ctx, requesterPhone)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFound("Account")
		}
		return nil, apperrors.Internal("Failed to resolve account", err)
	}

	s.applyOwner(booking, owner)
	s.sanitize(booking)

	if err := s.validate(booking); err != nil {
		return nil, err
	}

	lockID, err := s.acquireAdmissionLock(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.lockRepo.Release(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release admission lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyNoOverlap(sessCtx, booking); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking",
			"phone", booking.Phone,
			"start_date", booking.StartDate,
			"end_date", booking.EndDate,
			"error", err,
		)
		return nil, err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"phone", booking.Phone,
		"start_date", booking.StartDate,
		"end_date", booking.EndDate,
	)

	go s.notifyBookingEvent(model.EventBookingCreated, booking)

	return booking, nil
}

// Cancel marks a booking cancelled. Only the owner or an admin may cancel;
// the document is kept so the history endpoint still shows it.
func (s *bookingService) Cancel(ctx context.Context, id string, requesterPhone string) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid booking ID format")
		}
		return apperrors.Internal("Failed to retrieve booking", err)
	}

	if booking.Status == model.StatusCancelled {
		return apperrors.Conflict("Booking is already cancelled")
	}

	if booking.Phone != requesterPhone {
		requester, err := s.users.FindByPhone(ctx, requesterPhone)
		if err != nil || !requester.IsAdmin() {
			return apperrors.Forbidden("Only the booking owner or an admin can cancel this booking")
		}
	}

	if err := s.repo.UpdateStatus(ctx, id, model.StatusCancelled); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Booking", id)
		}
		return apperrors.Internal("Failed to cancel booking", err)
	}

	s.cfg.Log.Info("Booking cancelled", "id", id, "requested_by", requesterPhone)

	booking.Status = model.StatusCancelled
	go s.notifyBookingEvent(model.EventBookingCancelled, booking)

	return nil
}

// List returns all bookings with upcoming ones first, soonest start date
// first, followed by past bookings with the most recently ended first.
func (s *bookingService) List(ctx context.Context) ([]*model.Booking, error) {
	bookings, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings", "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}

	SortForDisplay(bookings, s.now())
	return bookings, nil
}

// SortForDisplay orders bookings for the list endpoint: bookings whose end
// date has not passed come first, ascending by start date; finished ones
// follow, descending by end date. Ties fall back to ID so the order is
// stable across calls.
func SortForDisplay(bookings []*model.Booking, now time.Time) {
	isFuture := func(b *model.Booking) bool {
		return !b.EndDate.Before(now)
	}

	sort.SliceStable(bookings, func(i, j int) bool {
		bi, bj := bookings[i], bookings[j]
		fi, fj := isFuture(bi), isFuture(bj)

		if fi != fj {
			return fi
		}
		if fi {
			if !bi.StartDate.Equal(bj.StartDate) {
				return bi.StartDate.Before(bj.StartDate)
			}
		} else {
			if !bi.EndDate.Equal(bj.EndDate) {
				return bi.EndDate.After(bj.EndDate)
			}
		}
		return bi.ID < bj.ID
	})
}

// --- Helpers ---

func (s *bookingService) applyOwner(b *model.Booking, owner *model.User) {
	b.ID = ""
	b.UserID = owner.ID
	b.Name = owner.Name
	b.Phone = owner.Phone
	b.Status = model.StatusConfirmed
}

func (s *bookingService) sanitize(b *model.Booking) {
	b.Purpose = sanitizer.NormalizePurpose(b.Purpose)
}

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *bookingService) verifyNoOverlap(ctx context.Context, booking *model.Booking) error {
	existing, err := s.repo.FindOverlapping(ctx, booking.StartDate, booking.EndDate)
	if err != nil {
		return apperrors.Internal("Failed to check existing bookings", err)
	}

	for _, b := range existing {
		if b.ID == booking.ID {
			continue
		}
		if model.Overlaps(b.StartDate, b.EndDate, booking.StartDate, booking.EndDate) {
			return apperrors.Conflict(fmt.Sprintf(
				"Requested dates overlap with an existing booking (%s - %s)",
				b.StartDate.Format("2006-01-02"),
				b.EndDate.Format("2006-01-02"),
			))
		}
	}
	return nil
}

func (s *bookingService) acquireAdmissionLock(ctx context.Context) (string, error) {
	for attempt := 0; ; attempt++ {
		lock := &model.ResourceLock{
			ID:        admissionLockID,
			ExpiresAt: s.now().Add(admissionLockTTL),
		}

		_, err := s.lockRepo.Acquire(ctx, lock)
		if err == nil {
			return lock.ID, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Internal("Failed to acquire admission lock", err)
		}

		// The holder may have crashed without releasing. Reclaim the lock
		// if it is past its TTL and retry the insert once.
		if attempt == 0 {
			reclaimed, reclaimErr := s.lockRepo.ReclaimExpired(ctx, admissionLockID, s.now())
			if reclaimErr != nil {
				s.cfg.Log.Warn("Failed to check for expired admission lock", "error", reclaimErr)
			}
			if reclaimed {
				s.cfg.Log.Warn("Reclaimed expired admission lock", "lock_id", admissionLockID)
				continue
			}
		}

		return "", apperrors.Conflict("Another booking is being processed. Please try again.")
	}
}

// notifyBookingEvent publishes the event for the notifier worker. Failures
// are logged and swallowed: delivery never gates the booking decision.
func (s *bookingService) notifyBookingEvent(eventType string, booking *model.Booking) {
	if s.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	event := model.BookingEvent{
		BookingID: booking.ID,
		Name:      booking.Name,
		Phone:     booking.Phone,
		StartDate: booking.StartDate,
		EndDate:   booking.EndDate,
		Purpose:   booking.Purpose,
	}

	if admins, err := s.users.FindAdmins(ctx); err == nil {
		for _, admin := range admins {
			if admin.Email != "" {
				event.AdminEmails = append(event.AdminEmails, admin.Email)
			}
		}
	} else {
		s.cfg.Log.Warn("Failed to load admin emails for notification", "error", err)
	}

	msg := kafka.NewMessage().
		WithKey(booking.Phone).
		WithEventType(eventType).
		WithSource("bookings").
		WithValue(event).
		Build()

	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}
