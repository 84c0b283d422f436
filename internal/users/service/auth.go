package service

import (
	"context"
	"errors"
	"time"

	userserrors "microbus/internal/users/errors"
	"microbus/internal/users/repository"
	"microbus/pkg/auth"
	"microbus/pkg/config"
	apperrors "microbus/pkg/errors"
	"microbus/pkg/kafka"
	"microbus/pkg/model"
	"microbus/pkg/sanitizer"
)

// Session is the result of a successful PIN validation.
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

type AuthService interface {
	RequestPin(ctx context.Context, rawPhone string) error
	ValidatePin(ctx context.Context, rawPhone, pin, userAgent string) (*Session, error)
	UserDetails(ctx context.Context, phone string) (*model.User, error)
}

type authService struct {
	users      repository.UserRepository
	accessLogs repository.AccessLogRepository
	publisher  kafka.Publisher
	cfg        *config.Config
	now        func() time.Time
}

func NewAuthService(
	users repository.UserRepository,
	accessLogs repository.AccessLogRepository,
	publisher kafka.Publisher,
	cfg *config.Config,
) AuthService {
	return &authService{
		users:      users,
		accessLogs: accessLogs,
		publisher:  publisher,
		cfg:        cfg,
		now:        time.Now,
	}
}

// RequestPin derives the current PIN for the phone and queues it for SMS
// delivery. The PIN is never returned to the caller; it only travels
// through the notifier. Delivery problems are logged and swallowed so the
// response does not leak whether the SMS went out.
func (s *authService) RequestPin(ctx context.Context, rawPhone string) error {
	phone := sanitizer.NormalizePhone(rawPhone)
	if phone == "" {
		return apperrors.InvalidInput("Invalid phone number")
	}

	user, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return apperrors.NotFound("Account")
		}
		return apperrors.Internal("Failed to look up account", err)
	}

	pin := auth.CurrentPIN(phone, s.now(), s.cfg.PinBucketWidth, []byte(s.cfg.JWTSecret))

	go s.publishPin(user, pin)

	s.cfg.Log.Info("PIN requested", "phone", phone)
	return nil
}

// ValidatePin checks the submitted PIN against the current and previous
// time bucket and issues a session token on success.
func (s *authService) ValidatePin(ctx context.Context, rawPhone, pin, userAgent string) (*Session, error) {
	phone := sanitizer.NormalizePhone(rawPhone)
	if phone == "" || pin == "" {
		return nil, apperrors.InvalidInput("Phone and PIN are required")
	}

	user, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("Invalid or expired PIN")
		}
		return nil, apperrors.Internal("Failed to look up account", err)
	}

	if !auth.ValidatePIN(phone, pin, s.now(), s.cfg.PinBucketWidth, []byte(s.cfg.JWTSecret)) {
		s.cfg.Log.Warn("PIN validation failed", "phone", phone)
		return nil, apperrors.Unauthorized("Invalid or expired PIN")
	}

	token, expiresAt, err := auth.NewSessionToken(s.cfg.JWTSecret, user, s.cfg.TokenTTL)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue session token", err)
	}

	go s.recordAccess(user, userAgent)

	s.cfg.Log.Info("PIN validated, session issued", "phone", phone, "user_id", user.ID)

	return &Session{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

func (s *authService) UserDetails(ctx context.Context, phone string) (*model.User, error) {
	user, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.NotFound("Account")
		}
		return nil, apperrors.Internal("Failed to look up account", err)
	}
	return user, nil
}

func (s *authService) publishPin(user *model.User, pin string) {
	if s.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msg := kafka.NewMessage().
		WithKey(user.Phone).
		WithEventType(model.EventPinIssued).
		WithSource("users").
		WithValue(model.PinEvent{
			Phone: user.Phone,
			Name:  user.Name,
			PIN:   pin,
		}).
		Build()

	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish PIN event", "phone", user.Phone, "error", err)
	}
}

// recordAccess appends a login record and trims the history to the
// configured cap. Best effort: a storage hiccup never blocks the login.
func (s *authService) recordAccess(user *model.User, userAgent string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entry := &model.AccessLog{
		UserID:    user.ID,
		Name:      user.Name,
		Phone:     user.Phone,
		UserAgent: userAgent,
	}

	if err := s.accessLogs.Insert(ctx, entry); err != nil {
		s.cfg.Log.Warn("Failed to record access log", "phone", user.Phone, "error", err)
		return
	}

	if err := s.accessLogs.Prune(ctx, s.cfg.AccessLogLimit); err != nil {
		s.cfg.Log.Warn("Failed to prune access logs", "error", err)
	}
}
