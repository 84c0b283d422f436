package service

import (
	"context"
	"errors"
	"strings"
	"time"

	fleeterrors "microbus/internal/fleet/errors"
	"microbus/internal/fleet/repository"
	"microbus/pkg/config"
	apperrors "microbus/pkg/errors"
	"microbus/pkg/model"
)

// documentTypeAliases folds user-facing document names, Romanian ones
// included, into the canonical stored types.
var documentTypeAliases = map[string]string{
	"insurance": model.DocumentInsurance,
	"rca":       model.DocumentInsurance,
	"itp":       model.DocumentITP,
	"vignette":  model.DocumentVignette,
	"rovinieta": model.DocumentVignette,
	"rovigneta": model.DocumentVignette,
}

type MaintenanceService interface {
	Status(ctx context.Context) ([]*model.MaintenanceDocument, error)
	Update(ctx context.Context, requesterPhone string, rawType string, expiryDate string) (*model.MaintenanceDocument, error)
}

type maintenanceService struct {
	repo  repository.MaintenanceRepository
	users repository.UserDirectory
	cfg   *config.Config
}

func NewMaintenanceService(
	repo repository.MaintenanceRepository,
	users repository.UserDirectory,
	cfg *config.Config,
) MaintenanceService {
	return &maintenanceService{
		repo:  repo,
		users: users,
		cfg:   cfg,
	}
}

// Status returns the tracked vehicle documents, earliest expiry first, with
// their display labels filled in. Public: the dashboard shows expiry state
// before login.
func (s *maintenanceService) Status(ctx context.Context) ([]*model.MaintenanceDocument, error) {
	docs, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to load maintenance status", "error", err)
		return nil, apperrors.Internal("Failed to retrieve maintenance status", err)
	}

	for _, doc := range docs {
		doc.Label = model.DocumentLabel(doc.Type)
	}

	return docs, nil
}

// Update stores a new expiry date for a document type. The type accepts the
// Romanian synonyms (RCA, rovinieta) and the date must be YYYY-MM-DD.
func (s *maintenanceService) Update(ctx context.Context, requesterPhone string, rawType string, expiryDate string) (*model.MaintenanceDocument, error) {
	if rawType == "" || expiryDate == "" {
		return nil, apperrors.InvalidInput("Document type and expiry date are required")
	}

	docType, ok := documentTypeAliases[strings.ToLower(strings.TrimSpace(rawType))]
	if !ok {
		return nil, apperrors.InvalidInput("Invalid document type: expected insurance/rca, itp or vignette/rovinieta")
	}

	expiry, err := time.Parse("2006-01-02", expiryDate)
	if err != nil {
		return nil, apperrors.InvalidInput("Invalid expiry date: expected YYYY-MM-DD")
	}

	doc := &model.MaintenanceDocument{
		Type:       docType,
		ExpiryDate: expiry,
	}
	if requester, userErr := s.users.FindByPhone(ctx, requesterPhone); userErr == nil {
		doc.UpdatedBy = requester.ID
	} else if !errors.Is(userErr, fleeterrors.ErrNotFound) {
		s.cfg.Log.Warn("Failed to resolve maintenance updater", "error", userErr)
	}

	if err := s.repo.Upsert(ctx, doc); err != nil {
		s.cfg.Log.Error("Failed to upsert maintenance document", "type", docType, "error", err)
		return nil, apperrors.Internal("Failed to update maintenance document", err)
	}

	s.cfg.Log.Info("Maintenance document updated",
		"type", docType,
		"expiry_date", expiryDate,
		"updated_by", requesterPhone,
	)

	doc.Label = model.DocumentLabel(doc.Type)
	return doc, nil
}
