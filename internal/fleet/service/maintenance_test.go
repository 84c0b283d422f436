package service

import (
	"context"
	"testing"
	"time"

	fleeterrors "microbus/internal/fleet/errors"
	apperrors "microbus/pkg/errors"
	"microbus/pkg/model"
)

type mockMaintenanceRepository struct {
	findAllFn func(ctx context.Context) ([]*model.MaintenanceDocument, error)
	upsertFn  func(ctx context.Context, doc *model.MaintenanceDocument) error
}

func (m *mockMaintenanceRepository) FindAll(ctx context.Context) ([]*model.MaintenanceDocument, error) {
	return m.findAllFn(ctx)
}

func (m *mockMaintenanceRepository) Upsert(ctx context.Context, doc *model.MaintenanceDocument) error {
	return m.upsertFn(ctx, doc)
}

func newTestMaintenanceService(repo *mockMaintenanceRepository, users *mockUserDirectory) MaintenanceService {
	return NewMaintenanceService(repo, users, testConfig())
}

func TestStatus_FillsLabels(t *testing.T) {
	repo := &mockMaintenanceRepository{
		findAllFn: func(ctx context.Context) ([]*model.MaintenanceDocument, error) {
			return []*model.MaintenanceDocument{
				{Type: model.DocumentInsurance},
				{Type: model.DocumentITP},
				{Type: model.DocumentVignette},
			}, nil
		},
	}

	svc := newTestMaintenanceService(repo, &mockUserDirectory{})

	docs, err := svc.Status(context.Background())
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}

	want := []string{"RCA", "ITP", "Rovigneta"}
	for i, doc := range docs {
		if doc.Label != want[i] {
			t.Errorf("label[%d] = %q, want %q", i, doc.Label, want[i])
		}
	}
}

func TestUpdate_NormalizesDocumentType(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"insurance", model.DocumentInsurance},
		{"RCA", model.DocumentInsurance},
		{"itp", model.DocumentITP},
		{"vignette", model.DocumentVignette},
		{"rovinieta", model.DocumentVignette},
		{" Rovigneta ", model.DocumentVignette},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var stored *model.MaintenanceDocument
			repo := &mockMaintenanceRepository{
				upsertFn: func(ctx context.Context, doc *model.MaintenanceDocument) error {
					stored = doc
					return nil
				},
			}
			users := &mockUserDirectory{
				findByPhoneFn: func(ctx context.Context, phone string) (*model.User, error) {
					return nil, fleeterrors.ErrNotFound
				},
			}

			svc := newTestMaintenanceService(repo, users)

			doc, err := svc.Update(context.Background(), "+40731111111", tt.raw, "2026-12-31")
			if err != nil {
				t.Fatalf("Update(%q) returned error: %v", tt.raw, err)
			}
			if stored == nil || stored.Type != tt.want {
				t.Errorf("stored type = %v, want %q", stored, tt.want)
			}
			if doc.ExpiryDate != time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC) {
				t.Errorf("expiry = %v", doc.ExpiryDate)
			}
		})
	}
}

func TestUpdate_RecordsUpdater(t *testing.T) {
	var stored *model.MaintenanceDocument
	repo := &mockMaintenanceRepository{
		upsertFn: func(ctx context.Context, doc *model.MaintenanceDocument) error {
			stored = doc
			return nil
		},
	}
	users := &mockUserDirectory{
		findByPhoneFn: func(ctx context.Context, phone string) (*model.User, error) {
			return &model.User{ID: "64b0c8f1a2d3e4f5a6b7c8d0", Phone: phone, Role: model.RoleAdmin}, nil
		},
	}

	svc := newTestMaintenanceService(repo, users)

	if _, err := svc.Update(context.Background(), "+40731111111", "itp", "2027-03-15"); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if stored.UpdatedBy != "64b0c8f1a2d3e4f5a6b7c8d0" {
		t.Errorf("updated_by = %q", stored.UpdatedBy)
	}
}

func TestUpdate_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name       string
		docType    string
		expiryDate string
	}{
		{"unknown type", "casco", "2026-12-31"},
		{"empty type", "", "2026-12-31"},
		{"empty date", "itp", ""},
		{"bad date format", "itp", "31-12-2026"},
		{"not a date", "itp", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockMaintenanceRepository{
				upsertFn: func(ctx context.Context, doc *model.MaintenanceDocument) error {
					t.Fatal("Upsert must not be called for invalid input")
					return nil
				},
			}

			svc := newTestMaintenanceService(repo, &mockUserDirectory{})

			_, err := svc.Update(context.Background(), "+40731111111", tt.docType, tt.expiryDate)

			appErr := apperrors.AsAppError(err)
			if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
				t.Fatalf("expected invalid input error, got %v", err)
			}
		})
	}
}
