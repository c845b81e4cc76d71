package account

import (
	"errors"
	"net/mail"
)

// SignupDTO is the signup payload. Website is a hidden honeypot field: real
// users never see it, so any value means an automated submission.
// FormDurationMS is the client-measured time between form render and submit.
type SignupDTO struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Role           string `json:"role"`
	Department     string `json:"department,omitempty"`
	CompanyName    string `json:"company_name,omitempty"`
	CompanyWebsite string `json:"company_website,omitempty"`
	Industry       string `json:"industry,omitempty"`
	CompanySize    string `json:"company_size,omitempty"`
	Location       string `json:"location,omitempty"`
	Phone          string `json:"phone,omitempty"`

	Website        string `json:"website,omitempty"`
	FormDurationMS int64  `json:"form_duration_ms,omitempty"`
	ChallengeToken string `json:"challenge_token,omitempty"`
}

func (dto SignupDTO) Validate() error {
	if dto.Email == "" || dto.Password == "" {
		return errors.New("email and password are required")
	}
	if _, err := mail.ParseAddress(dto.Email); err != nil {
		return errors.New("invalid email address")
	}
	if len(dto.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if dto.Name == "" {
		return errors.New("name is required")
	}
	if _, ok := ParseRole(dto.Role); !ok {
		return errors.New("invalid role")
	}
	if Role(dto.Role) == RoleFaculty && dto.Department == "" {
		return errors.New("department is required for faculty accounts")
	}
	return nil
}

type VerifyOTPDTO struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (dto VerifyOTPDTO) Validate() error {
	if dto.Email == "" {
		return errors.New("email is required")
	}
	if len(dto.OTP) != 6 {
		return errors.New("otp must be 6 digits")
	}
	return nil
}

type ResendOTPDTO struct {
	Email string `json:"email"`
}

func (dto ResendOTPDTO) Validate() error {
	if dto.Email == "" {
		return errors.New("email is required")
	}
	return nil
}

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (dto LoginDTO) Validate() error {
	if dto.Email == "" || dto.Password == "" {
		return errors.New("email and password are required")
	}
	return nil
}

type ResetPasswordDTO struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

func (dto ResetPasswordDTO) Validate() error {
	if dto.Email == "" {
		return errors.New("email is required")
	}
	if len(dto.OTP) != 6 {
		return errors.New("otp must be 6 digits")
	}
	if len(dto.NewPassword) < 8 {
		return errors.New("new password must be at least 8 characters")
	}
	return nil
}

// AuthResponse is returned on successful verification or login.
type AuthResponse struct {
	Token string `json:"token"`
	Role  Role   `json:"role"`
	Name  string `json:"name,omitempty"`
}
