package service

import (
	"context"
	"testing"

	userserrors "microbus/internal/users/errors"
	"microbus/internal/users/validator"
	apperrors "microbus/pkg/errors"
	"microbus/pkg/model"
)

func newUserService(repo *mockUserRepository, logs *mockAccessLogRepository) *userService {
	cfg := testConfig()
	return &userService{
		repo:       repo,
		accessLogs: logs,
		validator:  validator.NewUserValidator(cfg.Log),
		cfg:        cfg,
	}
}

func TestUserCreate_NormalizesPhone(t *testing.T) {
	var stored *model.User
	repo := &mockUserRepository{
		createFn: func(ctx context.Context, user *model.User) error {
			stored = user
			user.ID = "64b0c8f1a2d3e4f5a6b7c8d9"
			return nil
		},
	}
	svc := newUserService(repo, &mockAccessLogRepository{})

	user := &model.User{Name: "  Andrei   Pop  ", Phone: "0721 234 567"}
	created, err := svc.Create(context.Background(), user)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if stored.Phone != "+40721234567" {
		t.Errorf("stored phone = %q, want +40721234567", stored.Phone)
	}
	if stored.Name != "Andrei Pop" {
		t.Errorf("stored name = %q, want collapsed whitespace", stored.Name)
	}
	if created.Role != model.RoleUser {
		t.Errorf("default role = %q, want %q", created.Role, model.RoleUser)
	}
}

func TestUserCreate_RejectsForeignPhone(t *testing.T) {
	repo := &mockUserRepository{
		createFn: func(ctx context.Context, user *model.User) error {
			t.Fatal("Create must not be called for a non-Romanian phone")
			return nil
		},
	}
	svc := newUserService(repo, &mockAccessLogRepository{})

	_, err := svc.Create(context.Background(), &model.User{Name: "John Doe", Phone: "+15551234567"})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUserCreate_DuplicatePhone(t *testing.T) {
	repo := &mockUserRepository{
		createFn: func(ctx context.Context, user *model.User) error {
			return userserrors.ErrDuplicatePhone
		},
	}
	svc := newUserService(repo, &mockAccessLogRepository{})

	_, err := svc.Create(context.Background(), &model.User{Name: "Ana Marin", Phone: "0721234567"})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestUserDelete_LastAdminGuard(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		adminCount int64
		wantCode   string
	}{
		{"regular user deleted", model.RoleUser, 1, ""},
		{"admin deleted when another exists", model.RoleAdmin, 2, ""},
		{"last admin protected", model.RoleAdmin, 1, apperrors.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deleted := false
			repo := &mockUserRepository{
				findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
					return &model.User{ID: id, Name: "Cineva", Phone: "+40721234567", Role: tt.role}, nil
				},
				countAdminsFn: func(ctx context.Context) (int64, error) {
					return tt.adminCount, nil
				},
				deleteFn: func(ctx context.Context, id string) error {
					deleted = true
					return nil
				},
			}
			svc := newUserService(repo, &mockAccessLogRepository{})

			err := svc.Delete(context.Background(), "64b0c8f1a2d3e4f5a6b7c8d9")

			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("Delete returned error: %v", err)
				}
				if !deleted {
					t.Fatal("expected repository Delete to be called")
				}
				return
			}

			appErr := apperrors.AsAppError(err)
			if appErr == nil || appErr.Code != tt.wantCode {
				t.Fatalf("expected %s error, got %v", tt.wantCode, err)
			}
			if deleted {
				t.Fatal("Delete must not be called for the last admin")
			}
		})
	}
}

func TestUserDelete_NotFound(t *testing.T) {
	repo := &mockUserRepository{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return nil, userserrors.ErrNotFound
		},
	}
	svc := newUserService(repo, &mockAccessLogRepository{})

	err := svc.Delete(context.Background(), "64b0c8f1a2d3e4f5a6b7c8d9")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestAccessLogs_UsesConfiguredLimit(t *testing.T) {
	var gotLimit int
	logs := &mockAccessLogRepository{
		recentFn: func(ctx context.Context, limit int) ([]*model.AccessLog, error) {
			gotLimit = limit
			return []*model.AccessLog{{Phone: "+40721234567"}}, nil
		},
	}
	svc := newUserService(&mockUserRepository{}, logs)

	entries, err := svc.AccessLogs(context.Background())
	if err != nil {
		t.Fatalf("AccessLogs returned error: %v", err)
	}
	if gotLimit != 20 {
		t.Errorf("limit = %d, want 20", gotLimit)
	}
	if len(entries) != 1 {
		t.Errorf("got %d entries, want 1", len(entries))
	}
}
