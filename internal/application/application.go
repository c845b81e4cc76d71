package application

import (
	"errors"
	"time"

	"github.com/campushq/internship-portal/internal/account"
)

// Per-role decision statuses for an application. Unlike offers, the two
// decisions are independent flags without an overall status field.
const (
	DecisionPending  = "Pending"
	DecisionApproved = "Approved"
)

type Application struct {
	ID        int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	OfferID   int64 `json:"offer_id" gorm:"column:offer_id;index"`
	StudentID int64 `json:"student_id" gorm:"column:student_id;index"`

	StatusFaculty string `json:"status_faculty" gorm:"column:status_faculty"`
	StatusAdmin   string `json:"status_admin" gorm:"column:status_admin"`
	IsRejected    bool   `json:"is_rejected" gorm:"column:is_rejected"`

	Student *account.Account `json:"student,omitempty" gorm:"foreignKey:StudentID"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Application) TableName() string {
	return "applications"
}

var ErrApplicationNotFound = errors.New("application not found")
