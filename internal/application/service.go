package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/campushq/internship-portal/internal"
	"github.com/campushq/internship-portal/internal/account"
	"github.com/campushq/internship-portal/internal/audit"
	"github.com/campushq/internship-portal/internal/offer"
	"github.com/campushq/internship-portal/internal/telemetry"
)

// Repository is the application store. Decision transitions are conditional
// updates guarded on the prior status.
type Repository interface {
	Create(app *Application) error
	GetByID(id int64) (*Application, error)
	ListByOffer(offerID int64) ([]*Application, error)
	SetFacultyApproved(id int64) (bool, error)
	SetAdminApproved(id int64) (bool, error)
	SetRejected(id int64) (bool, error)
}

// OfferDirectory resolves an application's offer, with recruiter, for the
// department-scope check.
type OfferDirectory interface {
	GetWithRecruiter(id int64) (*offer.Offer, error)
}

// AuditRecorder mirrors every decision into the audit trail.
type AuditRecorder interface {
	Record(ctx context.Context, actorID int64, action, targetType string, targetID int64, details map[string]interface{})
}

type CreateApplicationDTO struct {
	OfferID   int64 `json:"offer_id"`
	StudentID int64 `json:"student_id,omitempty"`
}

type Service struct {
	repo     Repository
	offers   OfferDirectory
	recorder AuditRecorder
	logger   *slog.Logger
}

func NewService(repo Repository, offers OfferDirectory, recorder AuditRecorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, offers: offers, recorder: recorder, logger: logger}
}

// Create submits an application linking a student to an offer. A student
// always applies as themselves; an admin may submit on a student's behalf.
func (s *Service) Create(ctx context.Context, actor *account.Actor, dto CreateApplicationDTO) (*Application, error) {
	if dto.OfferID == 0 {
		return nil, internal.NewValidationError("offer_id is required", internal.ErrCodeValidationFailed)
	}

	studentID := dto.StudentID
	if actor.Role == account.RoleStudent || studentID == 0 {
		studentID = actor.ID
	}

	if _, err := s.offers.GetWithRecruiter(dto.OfferID); err != nil {
		if errors.Is(err, offer.ErrOfferNotFound) {
			return nil, internal.NewNotFoundError("offer not found", internal.ErrCodeOfferNotFound)
		}
		return nil, internal.NewInternalError("failed to load offer", err)
	}

	app := &Application{
		OfferID:       dto.OfferID,
		StudentID:     studentID,
		StatusFaculty: DecisionPending,
		StatusAdmin:   DecisionPending,
	}
	if err := s.repo.Create(app); err != nil {
		return nil, internal.NewInternalError("failed to submit application", err)
	}

	s.recorder.Record(ctx, actor.ID, audit.ActionCreateApplication, audit.TargetApplication, app.ID,
		map[string]interface{}{"offer_id": app.OfferID, "student_id": app.StudentID})
	s.logger.Info("application submitted", "application_id", app.ID, "offer_id", app.OfferID)
	return app, nil
}

// ListByOffer returns an offer's applications with student details. Faculty
// callers are restricted to offers from their own department.
func (s *Service) ListByOffer(ctx context.Context, actor *account.Actor, offerID int64) ([]*Application, error) {
	if actor.Role == account.RoleFaculty {
		if err := s.checkDepartmentScope(actor, offerID); err != nil {
			return nil, err
		}
	}

	apps, err := s.repo.ListByOffer(offerID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list applications", err)
	}
	return apps, nil
}

// FacultyApprove records the faculty decision, department-scoped through the
// application's offer.
func (s *Service) FacultyApprove(ctx context.Context, actor *account.Actor, id int64) (*Application, error) {
	app, err := s.loadApplication(id)
	if err != nil {
		return nil, err
	}
	if err := s.checkDepartmentScope(actor, app.OfferID); err != nil {
		return nil, err
	}

	ok, err := s.repo.SetFacultyApproved(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to approve application", err)
	}
	if !ok {
		return nil, internal.NewConflictError("application is not awaiting faculty approval", internal.ErrCodeInvalidOfferState)
	}

	s.recorder.Record(ctx, actor.ID, audit.ActionFacultyApproveApplication, audit.TargetApplication, id, nil)
	telemetry.ApplicationDecisions.WithLabelValues(string(actor.Role), "faculty_approve").Inc()

	return s.loadApplication(id)
}

// AdminApprove records the admin decision. It is intentionally not gated on
// a prior faculty approval; the two decisions are independent here.
func (s *Service) AdminApprove(ctx context.Context, actor *account.Actor, id int64) (*Application, error) {
	if _, err := s.loadApplication(id); err != nil {
		return nil, err
	}

	ok, err := s.repo.SetAdminApproved(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to approve application", err)
	}
	if !ok {
		return nil, internal.NewConflictError("application is not awaiting admin approval", internal.ErrCodeInvalidOfferState)
	}

	s.recorder.Record(ctx, actor.ID, audit.ActionAdminApproveApplication, audit.TargetApplication, id, nil)
	telemetry.ApplicationDecisions.WithLabelValues(string(actor.Role), "admin_approve").Inc()

	return s.loadApplication(id)
}

// Reject marks the application rejected. Faculty callers are department
// scoped; the flag flips at most once.
func (s *Service) Reject(ctx context.Context, actor *account.Actor, id int64) (*Application, error) {
	app, err := s.loadApplication(id)
	if err != nil {
		return nil, err
	}
	if actor.Role == account.RoleFaculty {
		if err := s.checkDepartmentScope(actor, app.OfferID); err != nil {
			return nil, err
		}
	}

	ok, err := s.repo.SetRejected(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to reject application", err)
	}
	if !ok {
		return nil, internal.NewConflictError("application is already rejected", internal.ErrCodeInvalidOfferState)
	}

	s.recorder.Record(ctx, actor.ID, audit.ActionRejectApplication, audit.TargetApplication, id, nil)
	telemetry.ApplicationDecisions.WithLabelValues(string(actor.Role), "reject").Inc()

	return s.loadApplication(id)
}

func (s *Service) loadApplication(id int64) (*Application, error) {
	app, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, ErrApplicationNotFound) {
			return nil, internal.NewNotFoundError("application not found", internal.ErrCodeApplicationNotFound)
		}
		return nil, internal.NewInternalError("failed to load application", err)
	}
	return app, nil
}

// checkDepartmentScope restricts Faculty actors to applications whose
// offer's recruiter belongs to their department; every other role passes.
func (s *Service) checkDepartmentScope(actor *account.Actor, offerID int64) error {
	if actor.Role != account.RoleFaculty {
		return nil
	}

	off, err := s.offers.GetWithRecruiter(offerID)
	if err != nil {
		if errors.Is(err, offer.ErrOfferNotFound) {
			return internal.NewNotFoundError("offer not found", internal.ErrCodeOfferNotFound)
		}
		return internal.NewInternalError("failed to load offer", err)
	}
	if off.Recruiter == nil || off.Recruiter.Department != actor.Department {
		return internal.NewForbiddenError(
			"you can only act on applications for your department", internal.ErrCodeDepartmentMismatch)
	}
	return nil
}
