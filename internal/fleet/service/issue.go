package service

import (
	"context"
	"errors"
	"time"

	fleeterrors "microbus/internal/fleet/errors"
	"microbus/internal/fleet/repository"
	"microbus/internal/fleet/validator"
	"microbus/pkg/config"
	apperrors "microbus/pkg/errors"
	"microbus/pkg/kafka"
	"microbus/pkg/model"
	"microbus/pkg/sanitizer"
)

type IssueService interface {
	Report(ctx context.Context, reporterPhone string, issue *model.Issue) (*model.Issue, error)
	List(ctx context.Context) ([]*model.Issue, error)
	SetStatus(ctx context.Context, id string, requesterPhone string, status string, notes string) error
	Delete(ctx context.Context, id string) error
}

type issueService struct {
	repo      repository.IssueRepository
	users     repository.UserDirectory
	validator *validator.IssueValidator
	publisher kafka.Publisher
	cfg       *config.Config
	now       func() time.Time
}

func NewIssueService(
	repo repository.IssueRepository,
	users repository.UserDirectory,
	validator *validator.IssueValidator,
	publisher kafka.Publisher,
	cfg *config.Config,
) IssueService {
	return &issueService{
		repo:      repo,
		users:     users,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Report stores a new issue for the authenticated account and notifies the
// admins. Notification failures never fail the report.
func (s *issueService) Report(ctx context.Context, reporterPhone string, issue *model.Issue) (*model.Issue, error) {
	reporter, err := s.users.FindByPhone(ctx, reporterPhone)
	if err != nil {
		if errors.Is(err, fleeterrors.ErrNotFound) {
			return nil, apperrors.NotFound("Account")
		}
		return nil, apperrors.Internal("Failed to resolve account", err)
	}

	issue.ID = ""
	issue.ReportedBy = reporter.ID
	issue.Status = model.IssueStatusReported
	issue.ResolutionNotes = ""
	issue.ResolvedAt = nil
	issue.ResolvedBy = ""
	issue.Title = sanitizer.TrimAndNormalize(issue.Title)
	issue.Description = sanitizer.TrimAndNormalize(issue.Description)
	issue.Location = sanitizer.TrimAndNormalize(issue.Location)

	if err := s.validator.Validate(issue); err != nil {
		s.cfg.Log.Warn("Issue validation failed", "error", err)
		return nil, apperrors.Validation("Issue validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, issue); err != nil {
		s.cfg.Log.Error("Failed to create issue", "title", issue.Title, "error", err)
		return nil, apperrors.Internal("Failed to report issue", err)
	}

	s.cfg.Log.Info("Issue reported",
		"id", issue.ID,
		"severity", issue.Severity,
		"reported_by", reporter.Phone,
	)

	go s.notifyIssueReported(issue, reporter)

	return issue, nil
}

// List returns all issues newest first, with the reporter's name and phone
// resolved from the user directory.
func (s *issueService) List(ctx context.Context) ([]*model.Issue, error) {
	issues, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list issues", "error", err)
		return nil, apperrors.Internal("Failed to retrieve issues", err)
	}

	users, err := s.users.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to load users for issue list", "error", err)
		return nil, apperrors.Internal("Failed to retrieve issues", err)
	}

	byID := make(map[string]*model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	for _, issue := range issues {
		if reporter, ok := byID[issue.ReportedBy]; ok {
			issue.ReporterName = reporter.Name
			issue.ReporterPhone = reporter.Phone
		} else {
			issue.ReporterName = "Utilizator necunoscut"
		}
	}

	return issues, nil
}

// SetStatus moves an issue to a new status. The requester is the admin from
// the session token; their ID is recorded when the issue is resolved. The
// reporter is told by SMS only when the status actually changed.
func (s *issueService) SetStatus(ctx context.Context, id string, requesterPhone string, status string, notes string) error {
	if status != model.IssueStatusReported &&
		status != model.IssueStatusInProgress &&
		status != model.IssueStatusResolved {
		return apperrors.InvalidInput("Invalid status: expected reported, in_progress or resolved")
	}

	issue, err := s.findIssue(ctx, id)
	if err != nil {
		return err
	}

	update := repository.IssueStatusUpdate{
		Status:          status,
		ResolutionNotes: notes,
	}
	if status == model.IssueStatusResolved {
		resolvedAt := s.now().UTC().Truncate(time.Millisecond)
		update.ResolvedAt = &resolvedAt
		if admin, adminErr := s.users.FindByPhone(ctx, requesterPhone); adminErr == nil {
			update.ResolvedBy = admin.ID
		}
	}

	if err := s.repo.UpdateStatus(ctx, id, update); err != nil {
		if errors.Is(err, fleeterrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Issue", id)
		}
		return apperrors.Internal("Failed to update issue", err)
	}

	s.cfg.Log.Info("Issue status updated", "id", id, "status", status, "updated_by", requesterPhone)

	if status != issue.Status {
		go s.notifyStatusChanged(issue, status, notes)
	}

	return nil
}

func (s *issueService) Delete(ctx context.Context, id string) error {
	if _, err := s.findIssue(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, fleeterrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Issue", id)
		}
		return apperrors.Internal("Failed to delete issue", err)
	}

	s.cfg.Log.Info("Issue deleted", "id", id)
	return nil
}

func (s *issueService) findIssue(ctx context.Context, id string) (*model.Issue, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Issue ID cannot be empty")
	}

	issue, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, fleeterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Issue", id)
		}
		if errors.Is(err, fleeterrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid issue ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve issue", err)
	}

	return issue, nil
}

func (s *issueService) notifyIssueReported(issue *model.Issue, reporter *model.User) {
	if s.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	event := model.IssueEvent{
		IssueID:       issue.ID,
		Title:         issue.Title,
		Description:   issue.Description,
		Severity:      issue.Severity,
		Location:      issue.Location,
		ReporterName:  reporter.Name,
		ReporterPhone: reporter.Phone,
	}

	if admins, err := s.users.FindAdmins(ctx); err == nil {
		for _, admin := range admins {
			event.AdminPhones = append(event.AdminPhones, admin.Phone)
			if admin.Email != "" {
				event.AdminEmails = append(event.AdminEmails, admin.Email)
			}
		}
	} else {
		s.cfg.Log.Warn("Failed to load admins for issue notification", "error", err)
	}

	msg := kafka.NewMessage().
		WithKey(reporter.Phone).
		WithEventType(model.EventIssueReported).
		WithSource("fleet").
		WithValue(event).
		Build()

	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish issue event", "issue_id", issue.ID, "error", err)
	}
}

func (s *issueService) notifyStatusChanged(issue *model.Issue, status string, notes string) {
	if s.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reporter, err := s.users.FindByID(ctx, issue.ReportedBy)
	if err != nil {
		s.cfg.Log.Warn("Failed to resolve reporter for status notification", "issue_id", issue.ID, "error", err)
		return
	}

	event := model.IssueStatusEvent{
		Title:           issue.Title,
		Status:          status,
		ResolutionNotes: notes,
		ReporterPhone:   reporter.Phone,
	}

	msg := kafka.NewMessage().
		WithKey(reporter.Phone).
		WithEventType(model.EventIssueStatusChanged).
		WithSource("fleet").
		WithValue(event).
		Build()

	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish issue status event", "issue_id", issue.ID, "error", err)
	}
}
