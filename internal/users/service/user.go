package service

import (
	"context"
	"errors"
	"time"

	userserrors "microbus/internal/users/errors"
	"microbus/internal/users/repository"
	"microbus/internal/users/validator"
	"microbus/pkg/config"
	apperrors "microbus/pkg/errors"
	"microbus/pkg/kafka"
	"microbus/pkg/model"
	"microbus/pkg/sanitizer"
)

type UserService interface {
	Create(ctx context.Context, user *model.User) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	Delete(ctx context.Context, id string) error
	AccessLogs(ctx context.Context) ([]*model.AccessLog, error)
}

type userService struct {
	repo       repository.UserRepository
	accessLogs repository.AccessLogRepository
	validator  *validator.UserValidator
	publisher  kafka.Publisher
	cfg        *config.Config
}

func NewUserService(
	repo repository.UserRepository,
	accessLogs repository.AccessLogRepository,
	validator *validator.UserValidator,
	publisher kafka.Publisher,
	cfg *config.Config,
) UserService {
	return &userService{
		repo:       repo,
		accessLogs: accessLogs,
		validator:  validator,
		publisher:  publisher,
		cfg:        cfg,
	}
}

func (s *userService) Create(ctx context.Context, user *model.User) (*model.User, error) {
	s.sanitize(user)
	if user.Role == "" {
		user.Role = model.RoleUser
	}

	if err := s.validator.Validate(user); err != nil {
		s.cfg.Log.Warn("User validation failed", "phone", user.Phone, "error", err)
		return nil, apperrors.Validation("User validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, userserrors.ErrDuplicatePhone) {
			return nil, apperrors.Conflict("An account with this phone number already exists")
		}
		s.cfg.Log.Error("Failed to create user", "phone", user.Phone, "error", err)
		return nil, apperrors.Internal("Failed to create user", err)
	}

	s.cfg.Log.Info("User created", "id", user.ID, "phone", user.Phone, "role", user.Role)

	go s.publishWelcome(user)

	return user, nil
}

func (s *userService) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list users", "error", err)
		return nil, apperrors.Internal("Failed to retrieve users", err)
	}
	return users, nil
}

// Delete removes an account. The last remaining admin cannot be deleted,
// otherwise nobody could manage the system.
func (s *userService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("User ID cannot be empty")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("User", id)
		}
		if errors.Is(err, userserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid user ID format")
		}
		return apperrors.Internal("Failed to retrieve user", err)
	}

	if user.IsAdmin() {
		admins, err := s.repo.CountAdmins(ctx)
		if err != nil {
			return apperrors.Internal("Failed to count admins", err)
		}
		if admins <= 1 {
			return apperrors.Forbidden("Cannot delete the last admin account")
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("User", id)
		}
		return apperrors.Internal("Failed to delete user", err)
	}

	s.cfg.Log.Info("User deleted", "id", id, "phone", user.Phone)
	return nil
}

func (s *userService) AccessLogs(ctx context.Context) ([]*model.AccessLog, error) {
	entries, err := s.accessLogs.Recent(ctx, s.cfg.AccessLogLimit)
	if err != nil {
		s.cfg.Log.Error("Failed to list access logs", "error", err)
		return nil, apperrors.Internal("Failed to retrieve access logs", err)
	}
	return entries, nil
}

func (s *userService) sanitize(u *model.User) {
	u.ID = ""
	u.Name = sanitizer.NormalizeName(u.Name)
	u.Phone = sanitizer.NormalizePhone(u.Phone)
	u.Email = sanitizer.TrimAndNormalize(u.Email)
}

func (s *userService) publishWelcome(user *model.User) {
	if s.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msg := kafka.NewMessage().
		WithKey(user.Phone).
		WithEventType(model.EventUserWelcome).
		WithSource("users").
		WithValue(model.WelcomeEvent{
			Name:  user.Name,
			Phone: user.Phone,
			Email: user.Email,
		}).
		Build()

	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish welcome event", "phone", user.Phone, "error", err)
	}
}
