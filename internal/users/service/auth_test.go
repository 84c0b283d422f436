package service

import (
	"context"
	"testing"
	"time"

	userserrors "microbus/internal/users/errors"
	"microbus/pkg/auth"
	"microbus/pkg/config"
	apperrors "microbus/pkg/errors"
	"microbus/pkg/kafka"
	"microbus/pkg/logger"
	"microbus/pkg/model"
)

type mockUserRepository struct {
	createFn      func(ctx context.Context, user *model.User) error
	findByIDFn    func(ctx context.Context, id string) (*model.User, error)
	findByPhoneFn func(ctx context.Context, phone string) (*model.User, error)
	findAllFn     func(ctx context.Context) ([]*model.User, error)
	countAdminsFn func(ctx context.Context) (int64, error)
	deleteFn      func(ctx context.Context, id string) error
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	return m.createFn(ctx, user)
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockUserRepository) FindByPhone(ctx context.Context, phone string) (*model.User, error) {
	return m.findByPhoneFn(ctx, phone)
}

func (m *mockUserRepository) FindAll(ctx context.Context) ([]*model.User, error) {
	return m.findAllFn(ctx)
}

func (m *mockUserRepository) CountAdmins(ctx context.Context) (int64, error) {
	return m.countAdminsFn(ctx)
}

func (m *mockUserRepository) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

type mockAccessLogRepository struct {
	insertFn func(ctx context.Context, entry *model.AccessLog) error
	recentFn func(ctx context.Context, limit int) ([]*model.AccessLog, error)
	pruneFn  func(ctx context.Context, keep int) error
}

func (m *mockAccessLogRepository) Insert(ctx context.Context, entry *model.AccessLog) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, entry)
	}
	return nil
}

func (m *mockAccessLogRepository) Recent(ctx context.Context, limit int) ([]*model.AccessLog, error) {
	if m.recentFn != nil {
		return m.recentFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockAccessLogRepository) Prune(ctx context.Context, keep int) error {
	if m.pruneFn != nil {
		return m.pruneFn(ctx, keep)
	}
	return nil
}

type mockPublisher struct {
	publishFn func(ctx context.Context, msg kafka.Message) error
}

func (m *mockPublisher) Publish(ctx context.Context, msg kafka.Message) error {
	if m.publishFn != nil {
		return m.publishFn(ctx, msg)
	}
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:      "test-secret",
		TokenTTL:       24 * time.Hour,
		PinBucketWidth: 5 * time.Minute,
		AccessLogLimit: 20,
		Log:            logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Service: "test"}),
	}
}

func knownUser() *model.User {
	return &model.User{
		ID:    "507f1f77bcf86cd799439011",
		Name:  "Maria Ionescu",
		Phone: "+40721234567",
		Role:  model.RoleUser,
	}
}

func usersByPhone(user *model.User) *mockUserRepository {
	return &mockUserRepository{
		findByPhoneFn: func(ctx context.Context, phone string) (*model.User, error) {
			if user != nil && phone == user.Phone {
				return user, nil
			}
			return nil, userserrors.ErrNotFound
		},
	}
}

func newAuthService(users *mockUserRepository, logs *mockAccessLogRepository, pub kafka.Publisher, now time.Time) *authService {
	return &authService{
		users:      users,
		accessLogs: logs,
		publisher:  pub,
		cfg:        testConfig(),
		now:        func() time.Time { return now },
	}
}

func TestRequestPin_PublishesPinEvent(t *testing.T) {
	now := time.Date(2026, time.August, 30, 10, 0, 0, 0, time.UTC)
	published := make(chan kafka.Message, 1)
	pub := &mockPublisher{
		publishFn: func(ctx context.Context, msg kafka.Message) error {
			published <- msg
			return nil
		},
	}

	svc := newAuthService(usersByPhone(knownUser()), &mockAccessLogRepository{}, pub, now)

	// Local format: leading 0 and punctuation must normalize to +40.
	if err := svc.RequestPin(context.Background(), "0721-234-567"); err != nil {
		t.Fatalf("RequestPin returned error: %v", err)
	}

	select {
	case msg := <-published:
		if msg.GetEventType() != model.EventPinIssued {
			t.Errorf("event type = %q, want %q", msg.GetEventType(), model.EventPinIssued)
		}
		var event model.PinEvent
		if err := msg.DecodeValue(&event); err != nil {
			t.Fatalf("failed to decode event: %v", err)
		}
		want := auth.CurrentPIN("+40721234567", now, 5*time.Minute, []byte("test-secret"))
		if event.PIN != want {
			t.Errorf("PIN = %q, want %q", event.PIN, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected PIN event to be published")
	}
}

func TestRequestPin_UnknownPhone(t *testing.T) {
	svc := newAuthService(usersByPhone(nil), &mockAccessLogRepository{}, nil, time.Now())

	err := svc.RequestPin(context.Background(), "0799999999")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestRequestPin_PublishFailureStillSucceeds(t *testing.T) {
	attempted := make(chan struct{}, 1)
	pub := &mockPublisher{
		publishFn: func(ctx context.Context, msg kafka.Message) error {
			attempted <- struct{}{}
			return kafka.ErrProducerClosed
		},
	}
	svc := newAuthService(usersByPhone(knownUser()), &mockAccessLogRepository{}, pub, time.Now())

	if err := svc.RequestPin(context.Background(), "0721234567"); err != nil {
		t.Fatalf("RequestPin must succeed even when publish fails, got %v", err)
	}

	select {
	case <-attempted:
	case <-time.After(2 * time.Second):
		t.Fatal("expected publish attempt")
	}
}

func TestValidatePin_GraceWindow(t *testing.T) {
	issued := time.Date(2026, time.August, 30, 10, 0, 0, 0, time.UTC)
	pin := auth.CurrentPIN("+40721234567", issued, 5*time.Minute, []byte("test-secret"))

	tests := []struct {
		name     string
		validate time.Time
		wantOK   bool
	}{
		{"same bucket", issued.Add(time.Minute), true},
		{"next bucket still valid", issued.Add(6 * time.Minute), true},
		{"two buckets later rejected", issued.Add(11 * time.Minute), false},
		{"an hour later rejected", issued.Add(time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newAuthService(usersByPhone(knownUser()), &mockAccessLogRepository{}, nil, tt.validate)

			session, err := svc.ValidatePin(context.Background(), "0721234567", pin, "test-agent")

			if tt.wantOK {
				if err != nil {
					t.Fatalf("ValidatePin returned error: %v", err)
				}
				if session.Token == "" {
					t.Fatal("expected session token")
				}
				identity, err := auth.ParseSessionToken("test-secret", session.Token)
				if err != nil {
					t.Fatalf("issued token does not parse: %v", err)
				}
				if identity.Phone != "+40721234567" {
					t.Errorf("token phone = %q", identity.Phone)
				}
				return
			}

			appErr := apperrors.AsAppError(err)
			if appErr == nil || appErr.Code != apperrors.CodeUnauthorized {
				t.Fatalf("expected unauthorized error, got %v", err)
			}
		})
	}
}

func TestValidatePin_WrongPin(t *testing.T) {
	now := time.Date(2026, time.August, 30, 10, 0, 0, 0, time.UTC)
	svc := newAuthService(usersByPhone(knownUser()), &mockAccessLogRepository{}, nil, now)

	_, err := svc.ValidatePin(context.Background(), "0721234567", "0000", "test-agent")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestValidatePin_UnknownPhoneIndistinguishable(t *testing.T) {
	// Unknown accounts answer exactly like a wrong PIN.
	now := time.Date(2026, time.August, 30, 10, 0, 0, 0, time.UTC)
	svc := newAuthService(usersByPhone(nil), &mockAccessLogRepository{}, nil, now)

	_, err := svc.ValidatePin(context.Background(), "0799999999", "1234", "test-agent")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	if appErr.Message != "Invalid or expired PIN" {
		t.Errorf("message = %q leaks account existence", appErr.Message)
	}
}

func TestValidatePin_RecordsAccessLog(t *testing.T) {
	now := time.Date(2026, time.August, 30, 10, 0, 0, 0, time.UTC)
	pin := auth.CurrentPIN("+40721234567", now, 5*time.Minute, []byte("test-secret"))

	logged := make(chan *model.AccessLog, 1)
	logs := &mockAccessLogRepository{
		insertFn: func(ctx context.Context, entry *model.AccessLog) error {
			logged <- entry
			return nil
		},
	}

	svc := newAuthService(usersByPhone(knownUser()), logs, nil, now)

	if _, err := svc.ValidatePin(context.Background(), "0721234567", pin, "Mozilla/5.0"); err != nil {
		t.Fatalf("ValidatePin returned error: %v", err)
	}

	select {
	case entry := <-logged:
		if entry.Phone != "+40721234567" || entry.UserAgent != "Mozilla/5.0" {
			t.Errorf("unexpected access log entry: %+v", entry)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected access log insert")
	}
}

func TestValidatePin_AccessLogFailureDoesNotBlockLogin(t *testing.T) {
	now := time.Date(2026, time.August, 30, 10, 0, 0, 0, time.UTC)
	pin := auth.CurrentPIN("+40721234567", now, 5*time.Minute, []byte("test-secret"))

	logs := &mockAccessLogRepository{
		insertFn: func(ctx context.Context, entry *model.AccessLog) error {
			return context.DeadlineExceeded
		},
	}

	svc := newAuthService(usersByPhone(knownUser()), logs, nil, now)

	session, err := svc.ValidatePin(context.Background(), "0721234567", pin, "test-agent")
	if err != nil {
		t.Fatalf("login must succeed despite access log failure, got %v", err)
	}
	if session.Token == "" {
		t.Fatal("expected session token")
	}
}
