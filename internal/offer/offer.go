package offer

import (
	"errors"
	"time"

	"github.com/campushq/internship-portal/internal/account"
)

// Offer lifecycle statuses. The happy path is pending_faculty then
// pending_admin then approved; rejected is reachable from either pending
// stage.
const (
	StatusPendingFaculty = "pending_faculty"
	StatusPendingAdmin   = "pending_admin"
	StatusApproved       = "approved"
	StatusRejected       = "rejected"
)

// Per-role decision sub-statuses.
const (
	DecisionPending  = "pending"
	DecisionApproved = "approved"
	DecisionRejected = "rejected"
)

type Offer struct {
	ID          int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	RecruiterID int64  `json:"recruiter_id" gorm:"column:recruiter_id;index"`
	CompanyName string `json:"company_name" gorm:"column:company_name"`
	Sector      string `json:"sector" gorm:"column:sector"`
	Address     string `json:"address" gorm:"column:address"`
	ContactInfo string `json:"contact_info" gorm:"column:contact_info"`
	Email       string `json:"email" gorm:"column:email"`
	HRContact   string `json:"hr_contact" gorm:"column:hr_contact"`

	Title              string `json:"title" gorm:"column:title"`
	Description        string `json:"description" gorm:"column:description"`
	RequiredSkills     string `json:"required_skills" gorm:"column:required_skills"`
	Duration           string `json:"duration" gorm:"column:duration"`
	WorkMode           string `json:"work_mode" gorm:"column:work_mode"`
	Location           string `json:"location" gorm:"column:location"`
	Stipend            string `json:"stipend" gorm:"column:stipend"`
	Remuneration       string `json:"remuneration" gorm:"column:remuneration"`
	EligibleForCredits bool   `json:"eligible_for_credits" gorm:"column:eligible_for_credits"`

	ApplicationDate *time.Time `json:"application_date,omitempty" gorm:"column:application_date"`
	JoiningDate     *time.Time `json:"joining_date,omitempty" gorm:"column:joining_date"`
	CompletionDate  *time.Time `json:"completion_date,omitempty" gorm:"column:completion_date"`

	Status                string     `json:"status" gorm:"column:status;index"`
	FacultyApprovalStatus string     `json:"faculty_approval_status" gorm:"column:faculty_approval_status"`
	AdminApprovalStatus   string     `json:"admin_approval_status" gorm:"column:admin_approval_status"`
	FacultyApprovedAt     *time.Time `json:"faculty_approved_at,omitempty" gorm:"column:faculty_approved_at"`
	AdminApprovedAt       *time.Time `json:"admin_approved_at,omitempty" gorm:"column:admin_approved_at"`
	RejectionReason       *string    `json:"rejection_reason,omitempty" gorm:"column:rejection_reason"`

	ApplicationsCount int64 `json:"applications_count" gorm:"->;-:migration"`

	Recruiter *account.Account `json:"recruiter,omitempty" gorm:"foreignKey:RecruiterID"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Offer) TableName() string {
	return "internship_offers"
}

// Pending reports whether the offer can still receive decisions.
func (o *Offer) Pending() bool {
	return o.Status == StatusPendingFaculty || o.Status == StatusPendingAdmin
}

var (
	ErrOfferNotFound    = errors.New("offer not found")
	ErrConcurrentUpdate = errors.New("offer was modified concurrently")
)
