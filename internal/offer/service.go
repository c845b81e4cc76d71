package offer

import (
	"context"
	"log/slog"
	"time"

	"github.com/campushq/internship-portal/internal"
	"github.com/campushq/internship-portal/internal/account"
	"github.com/campushq/internship-portal/internal/audit"
	"github.com/campushq/internship-portal/internal/telemetry"
)

// Repository is the offer store. Decision transitions are conditional
// updates guarded on the offer's prior state so concurrent approvals cannot
// both land.
type Repository interface {
	Create(off *Offer) error
	GetWithRecruiter(id int64) (*Offer, error)
	ListAll() ([]*Offer, error)
	ListByRecruiter(recruiterID int64) ([]*Offer, error)
	ListByDepartment(department string) ([]*Offer, error)
	SetFacultyApproved(id int64, at time.Time) (bool, error)
	SetAdminApproved(id int64, at time.Time) (bool, error)
	SetRejected(id int64, reason string, facultyRejected, adminRejected bool) (bool, error)
}

// AuditRecorder mirrors every decision into the audit trail. Calls are
// fire-and-forget.
type AuditRecorder interface {
	Record(ctx context.Context, actorID int64, action, targetType string, targetID int64, details map[string]interface{})
}

type Service struct {
	repo     Repository
	recorder AuditRecorder
	logger   *slog.Logger
}

func NewService(repo Repository, recorder AuditRecorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, recorder: recorder, logger: logger}
}

// ListForActor applies the role-based visibility filter: recruiters see
// their own offers, faculty see their department's, admins see everything.
func (s *Service) ListForActor(ctx context.Context, actor *account.Actor) ([]*Offer, error) {
	var (
		offers []*Offer
		err    error
	)
	switch {
	case actor.Role == account.RoleRecruiter:
		offers, err = s.repo.ListByRecruiter(actor.ID)
	case actor.Role == account.RoleFaculty:
		offers, err = s.repo.ListByDepartment(actor.Department)
	default:
		offers, err = s.repo.ListAll()
	}
	if err != nil {
		return nil, internal.NewInternalError("failed to list offers", err)
	}
	return offers, nil
}

// Create registers a new offer owned by the calling recruiter, entering the
// workflow at the faculty stage.
func (s *Service) Create(ctx context.Context, actor *account.Actor, dto CreateOfferDTO) (*Offer, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	off := &Offer{
		RecruiterID:        actor.ID,
		CompanyName:        dto.CompanyName,
		Sector:             dto.Sector,
		Address:            dto.Address,
		ContactInfo:        dto.ContactInfo,
		Email:              dto.Email,
		HRContact:          dto.HRContact,
		Title:              dto.Title,
		Description:        dto.Description,
		RequiredSkills:     dto.RequiredSkills,
		Duration:           dto.Duration,
		WorkMode:           dto.WorkMode,
		Location:           dto.Location,
		Stipend:            dto.Stipend,
		Remuneration:       dto.Remuneration,
		EligibleForCredits: dto.EligibleForCredits,
		ApplicationDate:    dto.ApplicationDate,
		JoiningDate:        dto.JoiningDate,
		CompletionDate:     dto.CompletionDate,

		Status:                StatusPendingFaculty,
		FacultyApprovalStatus: DecisionPending,
		AdminApprovalStatus:   DecisionPending,
	}

	if err := s.repo.Create(off); err != nil {
		return nil, internal.NewInternalError("failed to create offer", err)
	}

	s.recorder.Record(ctx, actor.ID, audit.ActionCreateOffer, audit.TargetOffer, off.ID,
		map[string]interface{}{"title": off.Title, "company_name": off.CompanyName})
	s.logger.Info("offer created", "offer_id", off.ID, "recruiter_id", actor.ID)
	return off, nil
}

// GetByID returns one offer with its recruiter, restricted to the owner,
// same-department faculty, and admins.
func (s *Service) GetByID(ctx context.Context, actor *account.Actor, id int64) (*Offer, error) {
	off, err := s.loadOffer(id)
	if err != nil {
		return nil, err
	}

	isOwner := off.RecruiterID == actor.ID
	isFacultyInDepartment := actor.Role == account.RoleFaculty &&
		off.Recruiter != nil && off.Recruiter.Department == actor.Department
	if !isOwner && !isFacultyInDepartment && !actor.Role.IsAdmin() {
		return nil, internal.NewForbiddenError("unauthorized access to this offer", internal.ErrCodeDepartmentMismatch)
	}

	return off, nil
}

// FacultyApprove moves a pending_faculty offer to pending_admin. Faculty
// actors are restricted to their own department; admins bypass the scope
// check.
func (s *Service) FacultyApprove(ctx context.Context, actor *account.Actor, id int64) (*Offer, error) {
	off, err := s.loadOffer(id)
	if err != nil {
		return nil, err
	}
	if err := s.checkDepartmentScope(actor, off); err != nil {
		return nil, err
	}

	ok, err := s.repo.SetFacultyApproved(id, time.Now())
	if err != nil {
		return nil, internal.NewInternalError("failed to approve offer", err)
	}
	if !ok {
		return nil, internal.NewConflictError("offer is not awaiting faculty approval", internal.ErrCodeInvalidOfferState)
	}

	s.recorder.Record(ctx, actor.ID, audit.ActionFacultyApproveOffer, audit.TargetOffer, id, nil)
	telemetry.OfferDecisions.WithLabelValues(string(actor.Role), "faculty_approve").Inc()
	s.logger.Info("offer faculty approved", "offer_id", id, "actor_id", actor.ID)

	return s.loadOffer(id)
}

// AdminApprove finalizes an offer. It is rejected outright unless faculty
// already approved.
func (s *Service) AdminApprove(ctx context.Context, actor *account.Actor, id int64) (*Offer, error) {
	off, err := s.loadOffer(id)
	if err != nil {
		return nil, err
	}

	if off.FacultyApprovalStatus != DecisionApproved {
		return nil, internal.NewConflictError("Faculty must approve before admin.", internal.ErrCodeFacultyGate)
	}

	ok, err := s.repo.SetAdminApproved(id, time.Now())
	if err != nil {
		return nil, internal.NewInternalError("failed to approve offer", err)
	}
	if !ok {
		return nil, internal.NewConflictError("offer is not awaiting admin approval", internal.ErrCodeInvalidOfferState)
	}

	s.recorder.Record(ctx, actor.ID, audit.ActionAdminApproveOffer, audit.TargetOffer, id, nil)
	telemetry.OfferDecisions.WithLabelValues(string(actor.Role), "admin_approve").Inc()
	s.logger.Info("offer admin approved", "offer_id", id, "actor_id", actor.ID)

	return s.loadOffer(id)
}

// Reject finalizes an offer as rejected from either pending stage, recording
// the reason and the deciding role's sub-status.
func (s *Service) Reject(ctx context.Context, actor *account.Actor, id int64, dto RejectDTO) (*Offer, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeMissingReason)
	}

	off, err := s.loadOffer(id)
	if err != nil {
		return nil, err
	}
	if err := s.checkDepartmentScope(actor, off); err != nil {
		return nil, err
	}

	facultyRejected := actor.Role == account.RoleFaculty
	adminRejected := actor.Role == account.RoleAdmin || actor.Role == account.RoleMasterAdmin

	ok, err := s.repo.SetRejected(id, dto.Reason, facultyRejected, adminRejected)
	if err != nil {
		return nil, internal.NewInternalError("failed to reject offer", err)
	}
	if !ok {
		return nil, internal.NewConflictError("offer is no longer pending", internal.ErrCodeInvalidOfferState)
	}

	s.recorder.Record(ctx, actor.ID, audit.ActionRejectOffer, audit.TargetOffer, id,
		map[string]interface{}{"reason": dto.Reason})
	telemetry.OfferDecisions.WithLabelValues(string(actor.Role), "reject").Inc()
	s.logger.Info("offer rejected", "offer_id", id, "actor_id", actor.ID)

	return s.loadOffer(id)
}

func (s *Service) loadOffer(id int64) (*Offer, error) {
	off, err := s.repo.GetWithRecruiter(id)
	if err != nil {
		if err == ErrOfferNotFound {
			return nil, internal.NewNotFoundError("offer not found", internal.ErrCodeOfferNotFound)
		}
		return nil, internal.NewInternalError("failed to load offer", err)
	}
	return off, nil
}

// checkDepartmentScope restricts Faculty actors to offers whose recruiter
// belongs to their department. Every other role passes untouched; the
// route-level role allow-list is the sole gate for them.
func (s *Service) checkDepartmentScope(actor *account.Actor, off *Offer) error {
	if actor.Role != account.RoleFaculty {
		return nil
	}
	if off.Recruiter == nil || off.Recruiter.Department != actor.Department {
		return internal.NewForbiddenError(
			"you can only act on offers for your department", internal.ErrCodeDepartmentMismatch)
	}
	return nil
}
