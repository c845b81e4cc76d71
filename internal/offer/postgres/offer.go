package postgres

import (
	"time"

	"gorm.io/gorm"

	"github.com/campushq/internship-portal/internal/offer"
)

const applicationsCountSelect = "internship_offers.*, " +
	"(SELECT COUNT(*) FROM applications WHERE applications.offer_id = internship_offers.id) AS applications_count"

// OfferRepository implements the offer.Repository interface using GORM
type OfferRepository struct {
	db *gorm.DB
}

// NewOfferRepository creates a new offer repository
func NewOfferRepository(db *gorm.DB) offer.Repository {
	return &OfferRepository{db: db}
}

// Create saves a new offer
func (r *OfferRepository) Create(off *offer.Offer) error {
	return r.db.Create(off).Error
}

// GetWithRecruiter retrieves an offer with its recruiter preloaded
func (r *OfferRepository) GetWithRecruiter(id int64) (*offer.Offer, error) {
	var off offer.Offer
	err := r.db.Preload("Recruiter").
		Select(applicationsCountSelect).
		Where("internship_offers.id = ?", id).
		First(&off).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, offer.ErrOfferNotFound
		}
		return nil, err
	}
	return &off, nil
}

// ListAll retrieves every offer, newest first
func (r *OfferRepository) ListAll() ([]*offer.Offer, error) {
	var offers []*offer.Offer
	err := r.db.Select(applicationsCountSelect).
		Order("created_at DESC").
		Find(&offers).Error
	return offers, err
}

// ListByRecruiter retrieves offers owned by one recruiter, newest first
func (r *OfferRepository) ListByRecruiter(recruiterID int64) ([]*offer.Offer, error) {
	var offers []*offer.Offer
	err := r.db.Select(applicationsCountSelect).
		Where("recruiter_id = ?", recruiterID).
		Order("created_at DESC").
		Find(&offers).Error
	return offers, err
}

// ListByDepartment retrieves offers whose recruiter belongs to a department
func (r *OfferRepository) ListByDepartment(department string) ([]*offer.Offer, error) {
	var offers []*offer.Offer
	err := r.db.Select(applicationsCountSelect).
		Joins("JOIN users ON users.id = internship_offers.recruiter_id").
		Where("users.department = ?", department).
		Order("internship_offers.created_at DESC").
		Find(&offers).Error
	return offers, err
}

// SetFacultyApproved moves a pending_faculty offer to pending_admin. The
// status guard keeps two concurrent approvals from both landing.
func (r *OfferRepository) SetFacultyApproved(id int64, at time.Time) (bool, error) {
	res := r.db.Model(&offer.Offer{}).
		Where("id = ? AND status = ?", id, offer.StatusPendingFaculty).
		Updates(map[string]interface{}{
			"faculty_approval_status": offer.DecisionApproved,
			"status":                  offer.StatusPendingAdmin,
			"faculty_approved_at":     at,
			"updated_at":              time.Now(),
		})
	return res.RowsAffected > 0, res.Error
}

// SetAdminApproved finalizes an offer, guarded on the prior faculty approval
func (r *OfferRepository) SetAdminApproved(id int64, at time.Time) (bool, error) {
	res := r.db.Model(&offer.Offer{}).
		Where("id = ? AND status = ? AND faculty_approval_status = ?",
			id, offer.StatusPendingAdmin, offer.DecisionApproved).
		Updates(map[string]interface{}{
			"admin_approval_status": offer.DecisionApproved,
			"status":                offer.StatusApproved,
			"admin_approved_at":     at,
			"updated_at":            time.Now(),
		})
	return res.RowsAffected > 0, res.Error
}

// SetRejected finalizes an offer as rejected from either pending stage
func (r *OfferRepository) SetRejected(id int64, reason string, facultyRejected, adminRejected bool) (bool, error) {
	updates := map[string]interface{}{
		"status":           offer.StatusRejected,
		"rejection_reason": reason,
		"updated_at":       time.Now(),
	}
	if facultyRejected {
		updates["faculty_approval_status"] = offer.DecisionRejected
	}
	if adminRejected {
		updates["admin_approval_status"] = offer.DecisionRejected
	}

	res := r.db.Model(&offer.Offer{}).
		Where("id = ? AND status IN ?", id, []string{offer.StatusPendingFaculty, offer.StatusPendingAdmin}).
		Updates(updates)
	return res.RowsAffected > 0, res.Error
}
