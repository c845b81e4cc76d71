package account

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/campushq/internship-portal/internal"
	"github.com/campushq/internship-portal/internal/audit"
	"github.com/campushq/internship-portal/internal/telemetry"
)

// Repository is the account store. Mutations that race with concurrent
// verify/resend calls use conditional updates guarded on the previous state
// and report whether the guard hit.
type Repository interface {
	GetByEmail(email string) (*Account, error)
	GetByID(id int64) (*Account, error)
	Upsert(acc *Account) error
	MarkVerified(id int64, code string) (bool, error)
	SetOTP(id int64, code string, expiry time.Time, prevResends, newResends int) (bool, error)
	RecordFailedAttempt(id int64, prevAttempts, newAttempts int, cooldownUntil *time.Time) (bool, error)
	UpdatePasswordByCode(id int64, passwordHash, code string) (bool, error)
	SetStatus(id int64, from, to string) (bool, error)
	ListByStatus(status string) ([]*Account, error)
}

// Notifier delivers a one-time code. Delivery failure during signup must
// surface to the caller, so implementations return the transport error as-is.
type Notifier interface {
	SendOTP(ctx context.Context, email, subject, body string) error
}

// TrustEvaluator scores a recruiter's declared company identity 0-100.
type TrustEvaluator interface {
	Score(ctx context.Context, companyName, website string) int
}

// TokenGenerator issues the signed session credential.
type TokenGenerator interface {
	Generate(acc *Account) (string, error)
}

// AuditRecorder mirrors admin account actions into the audit trail.
type AuditRecorder interface {
	Record(ctx context.Context, actorID int64, action, targetType string, targetID int64, details map[string]interface{})
}

type Service struct {
	repo       Repository
	notifier   Notifier
	trust      TrustEvaluator
	tokens     TokenGenerator
	detector   *BotDetector
	recorder   AuditRecorder
	otpCfg     internal.OTPConfig
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, notifier Notifier, trust TrustEvaluator, tokens TokenGenerator, detector *BotDetector, recorder AuditRecorder, otpCfg internal.OTPConfig, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		notifier:   notifier,
		trust:      trust,
		tokens:     tokens,
		detector:   detector,
		recorder:   recorder,
		otpCfg:     otpCfg,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// RequestSignup runs the anti-bot gate and, for genuine requests, upserts the
// unverified account and dispatches a fresh code. Bot detections return nil
// with no side effects: the handler's success response is identical either
// way so signup probing cannot enumerate accounts or heuristics.
func (s *Service) RequestSignup(ctx context.Context, dto SignupDTO) error {
	if err := dto.Validate(); err != nil {
		return internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	existing, err := s.repo.GetByEmail(dto.Email)
	if err != nil && err != ErrNotFound {
		return internal.NewInternalError("failed to look up account", err)
	}
	if existing != nil && existing.IsVerified {
		return internal.NewConflictError("account already exists", internal.ErrCodeAccountExists)
	}

	if verdict := s.detector.Inspect(ctx, dto); verdict != VerdictHuman {
		s.logger.Warn("signup classified as automated, returning silent success",
			"verdict", string(verdict), "email", dto.Email)
		telemetry.SignupsTotal.WithLabelValues("bot").Inc()
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return internal.NewInternalError("failed to hash password", err)
	}

	code, err := generateOTP()
	if err != nil {
		return internal.NewInternalError("failed to generate OTP", err)
	}
	expiry := time.Now().Add(s.otpCfg.CodeTTL)

	acc := &Account{
		Name:          dto.Name,
		Email:         dto.Email,
		PasswordHash:  string(hash),
		Role:          Role(dto.Role),
		Department:    dto.Department,
		CompanyName:   dto.CompanyName,
		CompanyWeb:    dto.CompanyWebsite,
		Industry:      dto.Industry,
		CompanySize:   dto.CompanySize,
		Location:      dto.Location,
		Phone:         dto.Phone,
		AccountStatus: StatusActive,
		OTPCode:       &code,
		OTPExpiry:     &expiry,
	}

	// Trust is computed before the upsert so account creation is a single
	// write with all computed fields in place; low-trust recruiters are held
	// for manual admin review instead of auto-activating.
	if acc.Role == RoleRecruiter {
		acc.TrustScore = s.trust.Score(ctx, dto.CompanyName, dto.CompanyWebsite)
		if acc.TrustScore < TrustThreshold {
			acc.AccountStatus = StatusPendingApproval
		}
		s.logger.Info("recruiter trust evaluated",
			"email", dto.Email, "score", acc.TrustScore, "status", acc.AccountStatus)
	}

	if err := s.repo.Upsert(acc); err != nil {
		return internal.NewInternalError("failed to persist account", err)
	}

	body := fmt.Sprintf("Your verification code for the internship portal is: %s\nIt expires in %d minutes.",
		code, int(s.otpCfg.CodeTTL.Minutes()))
	if err := s.notifier.SendOTP(ctx, dto.Email, "Your Verification OTP", body); err != nil {
		s.logger.Error("failed to dispatch OTP", "error", err, "email", dto.Email)
		return internal.NewExternalError("failed to send verification code", err)
	}

	telemetry.SignupsTotal.WithLabelValues("ok").Inc()
	s.logger.Info("signup OTP dispatched", "email", dto.Email, "role", dto.Role)
	return nil
}

// VerifyOTP checks the submitted code and, on success, marks the account
// verified and issues the session credential. Three consecutive failures
// start the cooldown; any call during a cooldown is throttled regardless of
// code correctness.
func (s *Service) VerifyOTP(ctx context.Context, dto VerifyOTPDTO) (*AuthResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	acc, err := s.repo.GetByEmail(dto.Email)
	if err != nil {
		if err == ErrNotFound {
			return nil, internal.NewNotFoundError("account not found", internal.ErrCodeAccountNotFound)
		}
		return nil, internal.NewInternalError("failed to look up account", err)
	}

	now := time.Now()
	if acc.CooldownActive(now) {
		telemetry.OTPVerifications.WithLabelValues("throttled").Inc()
		return nil, s.throttled(acc, now)
	}

	if acc.IsVerified {
		return nil, internal.NewConflictError("account already verified", internal.ErrCodeAccountVerified)
	}

	if !acc.CodeMatches(dto.OTP, now) {
		if err := s.registerFailure(acc, now); err != nil {
			return nil, err
		}
		telemetry.OTPVerifications.WithLabelValues("invalid").Inc()
		return nil, internal.NewValidationError("invalid or expired OTP", internal.ErrCodeInvalidCode)
	}

	ok, err := s.repo.MarkVerified(acc.ID, dto.OTP)
	if err != nil {
		return nil, internal.NewInternalError("failed to mark account verified", err)
	}
	if !ok {
		// Guard missed: a concurrent call already consumed the code.
		return nil, internal.NewConflictError("account already verified", internal.ErrCodeAccountVerified)
	}

	token, err := s.tokens.Generate(acc)
	if err != nil {
		return nil, internal.NewInternalError("failed to issue session token", err)
	}

	telemetry.OTPVerifications.WithLabelValues("success").Inc()
	s.logger.Info("account verified", "account_id", acc.ID, "role", acc.Role)
	return &AuthResponse{Token: token, Role: acc.Role, Name: acc.Name}, nil
}

// ResendOTP issues a fresh code. The resend counter caps at the configured
// maximum, after which the account enters a cooldown.
func (s *Service) ResendOTP(ctx context.Context, dto ResendOTPDTO) error {
	if err := dto.Validate(); err != nil {
		return internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	acc, err := s.repo.GetByEmail(dto.Email)
	if err != nil {
		if err == ErrNotFound {
			return internal.NewNotFoundError("account not found", internal.ErrCodeAccountNotFound)
		}
		return internal.NewInternalError("failed to look up account", err)
	}

	now := time.Now()
	if acc.CooldownActive(now) {
		return s.throttled(acc, now)
	}

	if acc.OTPResends >= s.otpCfg.MaxResends {
		until := now.Add(s.otpCfg.Cooldown)
		if _, err := s.repo.RecordFailedAttempt(acc.ID, acc.OTPAttempts, 0, &until); err != nil {
			return internal.NewInternalError("failed to start cooldown", err)
		}
		return internal.NewThrottledError(
			fmt.Sprintf("too many resend requests, try again in %d minutes", int(s.otpCfg.Cooldown.Minutes())),
			int(s.otpCfg.Cooldown.Minutes()))
	}

	code, err := generateOTP()
	if err != nil {
		return internal.NewInternalError("failed to generate OTP", err)
	}
	expiry := now.Add(s.otpCfg.CodeTTL)

	ok, err := s.repo.SetOTP(acc.ID, code, expiry, acc.OTPResends, acc.OTPResends+1)
	if err != nil {
		return internal.NewInternalError("failed to store OTP", err)
	}
	if !ok {
		return internal.NewConflictError("a code was just issued, try again", internal.ErrCodeCooldownActive)
	}

	body := fmt.Sprintf("Your verification code for the internship portal is: %s\nIt expires in %d minutes.",
		code, int(s.otpCfg.CodeTTL.Minutes()))
	if err := s.notifier.SendOTP(ctx, dto.Email, "Your Verification OTP", body); err != nil {
		s.logger.Error("failed to dispatch OTP", "error", err, "email", dto.Email)
		return internal.NewExternalError("failed to send verification code", err)
	}

	s.logger.Info("OTP resent", "account_id", acc.ID, "resend_count", acc.OTPResends+1)
	return nil
}

// ForgotPassword issues a reset code to an existing account. Unlike signup
// this path requires the account to exist and says so: password reset is not
// an enumeration surface because login already confirms account existence.
func (s *Service) ForgotPassword(ctx context.Context, dto ResendOTPDTO) error {
	if err := dto.Validate(); err != nil {
		return internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	acc, err := s.repo.GetByEmail(dto.Email)
	if err != nil {
		if err == ErrNotFound {
			return internal.NewNotFoundError("account not found", internal.ErrCodeAccountNotFound)
		}
		return internal.NewInternalError("failed to look up account", err)
	}

	now := time.Now()
	if acc.CooldownActive(now) {
		return s.throttled(acc, now)
	}

	code, err := generateOTP()
	if err != nil {
		return internal.NewInternalError("failed to generate OTP", err)
	}
	expiry := now.Add(s.otpCfg.CodeTTL)

	if _, err := s.repo.SetOTP(acc.ID, code, expiry, acc.OTPResends, acc.OTPResends); err != nil {
		return internal.NewInternalError("failed to store OTP", err)
	}

	body := fmt.Sprintf("Your password reset code is: %s\nIt expires in %d minutes.",
		code, int(s.otpCfg.CodeTTL.Minutes()))
	if err := s.notifier.SendOTP(ctx, dto.Email, "Reset Password OTP", body); err != nil {
		s.logger.Error("failed to dispatch reset OTP", "error", err, "email", dto.Email)
		return internal.NewExternalError("failed to send reset code", err)
	}

	return nil
}

// ResetPassword shares the verify throttle path but rewrites the credential
// hash instead of issuing a session. It works for unverified accounts too.
func (s *Service) ResetPassword(ctx context.Context, dto ResetPasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	acc, err := s.repo.GetByEmail(dto.Email)
	if err != nil {
		if err == ErrNotFound {
			return internal.NewNotFoundError("account not found", internal.ErrCodeAccountNotFound)
		}
		return internal.NewInternalError("failed to look up account", err)
	}

	now := time.Now()
	if acc.CooldownActive(now) {
		return s.throttled(acc, now)
	}

	if !acc.CodeMatches(dto.OTP, now) {
		if err := s.registerFailure(acc, now); err != nil {
			return err
		}
		return internal.NewValidationError("invalid or expired OTP", internal.ErrCodeInvalidCode)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.NewPassword), s.bcryptCost)
	if err != nil {
		return internal.NewInternalError("failed to hash password", err)
	}

	ok, err := s.repo.UpdatePasswordByCode(acc.ID, string(hash), dto.OTP)
	if err != nil {
		return internal.NewInternalError("failed to update password", err)
	}
	if !ok {
		return internal.NewValidationError("invalid or expired OTP", internal.ErrCodeInvalidCode)
	}

	s.logger.Info("password reset", "account_id", acc.ID)
	return nil
}

// Login authenticates a verified account and issues the session credential.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*AuthResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	acc, err := s.repo.GetByEmail(dto.Email)
	if err != nil {
		if err == ErrNotFound {
			return nil, internal.NewUnauthorizedError("invalid credentials", internal.ErrCodeInvalidCredentials)
		}
		return nil, internal.NewInternalError("failed to look up account", err)
	}

	if !acc.IsVerified {
		return nil, internal.NewValidationError("account not verified", internal.ErrCodeNotVerified)
	}
	if acc.AccountStatus == StatusSuspended {
		return nil, internal.NewForbiddenError("account is suspended", internal.ErrCodeAccountSuspended)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(dto.Password)); err != nil {
		return nil, internal.NewUnauthorizedError("invalid credentials", internal.ErrCodeInvalidCredentials)
	}

	token, err := s.tokens.Generate(acc)
	if err != nil {
		return nil, internal.NewInternalError("failed to issue session token", err)
	}

	return &AuthResponse{Token: token, Role: acc.Role, Name: acc.Name}, nil
}

// GetByID resolves a session credential's subject to a live account; used by
// the auth middleware before any protected handler runs.
func (s *Service) GetByID(ctx context.Context, id int64) (*Account, error) {
	return s.repo.GetByID(id)
}

// ListPendingAccounts returns accounts held for manual review.
func (s *Service) ListPendingAccounts(ctx context.Context) ([]*Account, error) {
	return s.repo.ListByStatus(StatusPendingApproval)
}

// ApproveAccount activates a pending_approval account. The conditional
// update keeps two admins from double-approving.
func (s *Service) ApproveAccount(ctx context.Context, actorID, accountID int64) (*Account, error) {
	ok, err := s.repo.SetStatus(accountID, StatusPendingApproval, StatusActive)
	if err != nil {
		return nil, internal.NewInternalError("failed to approve account", err)
	}
	if !ok {
		return nil, internal.NewConflictError("account is not pending approval", internal.ErrCodeNotPending)
	}
	acc, err := s.repo.GetByID(accountID)
	if err != nil {
		return nil, internal.NewInternalError("failed to reload account", err)
	}

	s.recorder.Record(ctx, actorID, audit.ActionApproveUser, audit.TargetUser, accountID, nil)
	s.logger.Info("account approved", "account_id", accountID, "actor_id", actorID)
	return acc, nil
}

// registerFailure bumps the attempt counter and, at the cap, starts the
// cooldown and resets the counter. Guard misses are fine: the concurrent
// writer already recorded a failure for this window.
func (s *Service) registerFailure(acc *Account, now time.Time) error {
	newAttempts := acc.OTPAttempts + 1
	var cooldown *time.Time
	if newAttempts >= s.otpCfg.MaxAttempts {
		until := now.Add(s.otpCfg.Cooldown)
		cooldown = &until
		newAttempts = 0
	}
	if _, err := s.repo.RecordFailedAttempt(acc.ID, acc.OTPAttempts, newAttempts, cooldown); err != nil {
		return internal.NewInternalError("failed to record OTP attempt", err)
	}
	return nil
}

func (s *Service) throttled(acc *Account, now time.Time) error {
	mins := acc.CooldownMinutesLeft(now)
	return internal.NewThrottledError(
		fmt.Sprintf("too many attempts, try again in %d minutes", mins), mins)
}

// generateOTP returns a 6-digit zero-padded numeric code from crypto/rand.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
