package offer

import (
	"errors"
	"strings"
	"time"
)

// CreateOfferDTO carries the recruiter-submitted offer details.
type CreateOfferDTO struct {
	CompanyName string `json:"company_name"`
	Sector      string `json:"sector"`
	Address     string `json:"address"`
	ContactInfo string `json:"contact_info"`
	Email       string `json:"email"`
	HRContact   string `json:"hr_contact"`

	Title              string `json:"title"`
	Description        string `json:"description"`
	RequiredSkills     string `json:"required_skills"`
	Duration           string `json:"duration"`
	WorkMode           string `json:"work_mode"`
	Location           string `json:"location"`
	Stipend            string `json:"stipend"`
	Remuneration       string `json:"remuneration"`
	EligibleForCredits bool   `json:"eligible_for_credits"`

	ApplicationDate *time.Time `json:"application_date,omitempty"`
	JoiningDate     *time.Time `json:"joining_date,omitempty"`
	CompletionDate  *time.Time `json:"completion_date,omitempty"`
}

func (d *CreateOfferDTO) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return errors.New("title is required")
	}
	if strings.TrimSpace(d.CompanyName) == "" {
		return errors.New("company_name is required")
	}
	if strings.TrimSpace(d.Description) == "" {
		return errors.New("description is required")
	}
	return nil
}

// RejectDTO carries the mandatory rejection reason.
type RejectDTO struct {
	Reason string `json:"reason"`
}

func (d *RejectDTO) Validate() error {
	if strings.TrimSpace(d.Reason) == "" {
		return errors.New("reason is required")
	}
	return nil
}
