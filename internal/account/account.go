package account

import (
	"errors"
	"time"
)

// Role is the closed set of portal roles. Authorization decisions key off
// these values; free-form role strings from clients are rejected at parse.
type Role string

const (
	RoleStudent     Role = "Student"
	RoleRecruiter   Role = "Recruiter"
	RoleFaculty     Role = "Faculty"
	RoleAdmin       Role = "Admin"
	RoleMasterAdmin Role = "Master Admin"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleStudent, RoleRecruiter, RoleFaculty, RoleAdmin, RoleMasterAdmin:
		return Role(s), true
	}
	return "", false
}

// IsAdmin reports whether the role carries admin-level privileges.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleMasterAdmin
}

const (
	StatusActive          = "active"
	StatusPendingApproval = "pending_approval"
	StatusSuspended       = "suspended"
)

// TrustThreshold is the minimum trust score a recruiter needs for automatic
// activation; below it the account is held for manual admin review.
const TrustThreshold = 30

// Account is the portal identity. OTP state lives on the row itself: code,
// expiry, failure/resend counters and the cooldown deadline. A nil OTPCode
// means no code is outstanding.
type Account struct {
	ID            int64      `json:"id" gorm:"primaryKey"`
	Name          string     `json:"name"`
	Email         string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash  string     `json:"-" gorm:"column:password_hash;not null"`
	Role          Role       `json:"role" gorm:"not null"`
	IsVerified    bool       `json:"is_verified" gorm:"column:is_verified;default:false"`
	AccountStatus string     `json:"account_status" gorm:"column:account_status;default:active"`
	Department    string     `json:"department,omitempty"`
	CompanyName   string     `json:"company_name,omitempty" gorm:"column:company_name"`
	CompanyWeb    string     `json:"company_website,omitempty" gorm:"column:company_website"`
	Industry      string     `json:"industry,omitempty"`
	CompanySize   string     `json:"company_size,omitempty" gorm:"column:company_size"`
	Location      string     `json:"location,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	TrustScore    int        `json:"trust_score" gorm:"column:trust_score;default:0"`
	OTPCode       *string    `json:"-" gorm:"column:otp_code"`
	OTPExpiry     *time.Time `json:"-" gorm:"column:otp_expiry"`
	OTPAttempts   int        `json:"-" gorm:"column:otp_attempts;default:0"`
	OTPResends    int        `json:"-" gorm:"column:otp_resends;default:0"`
	CooldownUntil *time.Time `json:"-" gorm:"column:cooldown_until"`
	CreatedAt     time.Time  `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt     time.Time  `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Account) TableName() string {
	return "users"
}

// CooldownActive reports whether the account is inside an OTP lockout window.
func (a *Account) CooldownActive(now time.Time) bool {
	return a.CooldownUntil != nil && now.Before(*a.CooldownUntil)
}

// CooldownMinutesLeft returns the whole minutes remaining in the lockout
// window, rounded up so a caller never sees "0 minutes" on an active cooldown.
func (a *Account) CooldownMinutesLeft(now time.Time) int {
	if !a.CooldownActive(now) {
		return 0
	}
	left := a.CooldownUntil.Sub(now)
	mins := int(left / time.Minute)
	if left%time.Minute > 0 {
		mins++
	}
	return mins
}

// CodeMatches checks the submitted code against the stored one and its expiry.
func (a *Account) CodeMatches(code string, now time.Time) bool {
	if a.OTPCode == nil || a.OTPExpiry == nil {
		return false
	}
	return *a.OTPCode == code && now.Before(*a.OTPExpiry)
}

// Domain errors
var (
	ErrNotFound         = errors.New("account not found")
	ErrAlreadyExists    = errors.New("account already exists")
	ErrAlreadyVerified  = errors.New("account already verified")
	ErrNotVerified      = errors.New("account not verified")
	ErrSuspended        = errors.New("account is suspended")
	ErrInvalidCode      = errors.New("invalid or expired OTP")
	ErrCooldown         = errors.New("OTP cooldown active")
	ErrConcurrentUpdate = errors.New("account was modified concurrently")
	ErrNotPending       = errors.New("account is not pending approval")
)
