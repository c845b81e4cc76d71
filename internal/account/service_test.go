package account_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/campushq/internship-portal/internal"
	"github.com/campushq/internship-portal/internal/account"
)

func TestAccountService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Account Service Suite")
}

// Mock repository for testing
type mockAccountRepository struct {
	byEmail     map[string]*account.Account
	byID        map[int64]*account.Account
	upsertError error
	getError    error
	nextID      int64
}

func newMockAccountRepository() *mockAccountRepository {
	return &mockAccountRepository{
		byEmail: make(map[string]*account.Account),
		byID:    make(map[int64]*account.Account),
		nextID:  1,
	}
}

func (m *mockAccountRepository) add(acc *account.Account) *account.Account {
	if acc.ID == 0 {
		acc.ID = m.nextID
		m.nextID++
	}
	m.byEmail[acc.Email] = acc
	m.byID[acc.ID] = acc
	return acc
}

func (m *mockAccountRepository) GetByEmail(email string) (*account.Account, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	acc, ok := m.byEmail[email]
	if !ok {
		return nil, account.ErrNotFound
	}
	copied := *acc
	return &copied, nil
}

func (m *mockAccountRepository) GetByID(id int64) (*account.Account, error) {
	acc, ok := m.byID[id]
	if !ok {
		return nil, account.ErrNotFound
	}
	copied := *acc
	return &copied, nil
}

func (m *mockAccountRepository) Upsert(acc *account.Account) error {
	if m.upsertError != nil {
		return m.upsertError
	}
	if existing, ok := m.byEmail[acc.Email]; ok {
		acc.ID = existing.ID
	}
	m.add(acc)
	return nil
}

func (m *mockAccountRepository) MarkVerified(id int64, code string) (bool, error) {
	acc, ok := m.byID[id]
	if !ok || acc.IsVerified || acc.OTPCode == nil || *acc.OTPCode != code {
		return false, nil
	}
	acc.IsVerified = true
	acc.OTPCode = nil
	acc.OTPExpiry = nil
	acc.OTPAttempts = 0
	acc.OTPResends = 0
	return true, nil
}

func (m *mockAccountRepository) SetOTP(id int64, code string, expiry time.Time, prevResends, newResends int) (bool, error) {
	acc, ok := m.byID[id]
	if !ok || acc.OTPResends != prevResends {
		return false, nil
	}
	acc.OTPCode = &code
	acc.OTPExpiry = &expiry
	acc.OTPResends = newResends
	return true, nil
}

func (m *mockAccountRepository) RecordFailedAttempt(id int64, prevAttempts, newAttempts int, cooldownUntil *time.Time) (bool, error) {
	acc, ok := m.byID[id]
	if !ok || acc.OTPAttempts != prevAttempts {
		return false, nil
	}
	acc.OTPAttempts = newAttempts
	if cooldownUntil != nil {
		acc.CooldownUntil = cooldownUntil
		acc.OTPResends = 0
	}
	return true, nil
}

func (m *mockAccountRepository) UpdatePasswordByCode(id int64, passwordHash, code string) (bool, error) {
	acc, ok := m.byID[id]
	if !ok || acc.OTPCode == nil || *acc.OTPCode != code {
		return false, nil
	}
	acc.PasswordHash = passwordHash
	acc.OTPCode = nil
	acc.OTPExpiry = nil
	return true, nil
}

func (m *mockAccountRepository) SetStatus(id int64, from, to string) (bool, error) {
	acc, ok := m.byID[id]
	if !ok || acc.AccountStatus != from {
		return false, nil
	}
	acc.AccountStatus = to
	return true, nil
}

func (m *mockAccountRepository) ListByStatus(status string) ([]*account.Account, error) {
	var out []*account.Account
	for _, acc := range m.byID {
		if acc.AccountStatus == status {
			copied := *acc
			out = append(out, &copied)
		}
	}
	return out, nil
}

// Mock notifier capturing dispatched codes
type mockNotifier struct {
	sendError error
	sent      []sentMail
}

type sentMail struct {
	Email   string
	Subject string
	Body    string
}

func (m *mockNotifier) SendOTP(ctx context.Context, email, subject, body string) error {
	if m.sendError != nil {
		return m.sendError
	}
	m.sent = append(m.sent, sentMail{Email: email, Subject: subject, Body: body})
	return nil
}

type mockTrustEvaluator struct {
	score int
}

func (m *mockTrustEvaluator) Score(ctx context.Context, companyName, website string) int {
	return m.score
}

type mockTokenGenerator struct {
	generateError error
}

func (m *mockTokenGenerator) Generate(acc *account.Account) (string, error) {
	if m.generateError != nil {
		return "", m.generateError
	}
	return "token-for-" + acc.Email, nil
}

type mockRecorder struct {
	records []recordedAction
}

type recordedAction struct {
	ActorID    int64
	Action     string
	TargetType string
	TargetID   int64
}

func (m *mockRecorder) Record(ctx context.Context, actorID int64, action, targetType string, targetID int64, details map[string]interface{}) {
	m.records = append(m.records, recordedAction{ActorID: actorID, Action: action, TargetType: targetType, TargetID: targetID})
}

var _ = Describe("AccountService", func() {
	var (
		service  *account.Service
		repo     *mockAccountRepository
		notifier *mockNotifier
		trust    *mockTrustEvaluator
		tokens   *mockTokenGenerator
		recorder *mockRecorder
		logger   *slog.Logger
		ctx      context.Context
		otpCfg   internal.OTPConfig
	)

	BeforeEach(func() {
		repo = newMockAccountRepository()
		notifier = &mockNotifier{}
		trust = &mockTrustEvaluator{score: 60}
		tokens = &mockTokenGenerator{}
		recorder = &mockRecorder{}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		ctx = context.Background()
		otpCfg = internal.OTPConfig{
			CodeTTL:     5 * time.Minute,
			MaxAttempts: 3,
			MaxResends:  2,
			Cooldown:    15 * time.Minute,
		}
		detector := account.NewBotDetector(internal.AntiBotConfig{
			MinFormDuration: 5 * time.Second,
		}, logger)
		service = account.NewService(repo, notifier, trust, tokens, detector, recorder, otpCfg, bcrypt.MinCost, logger)
	})

	signup := func() account.SignupDTO {
		return account.SignupDTO{
			Name:           "Sam Student",
			Email:          "sam@campus.example",
			Password:       "correct-horse",
			Role:           "Student",
			FormDurationMS: 12000,
		}
	}

	Describe("RequestSignup", func() {
		It("should store an unverified account and dispatch a code", func() {
			err := service.RequestSignup(ctx, signup())

			Expect(err).ToNot(HaveOccurred())
			acc, getErr := repo.GetByEmail("sam@campus.example")
			Expect(getErr).ToNot(HaveOccurred())
			Expect(acc.IsVerified).To(BeFalse())
			Expect(acc.OTPCode).ToNot(BeNil())
			Expect(*acc.OTPCode).To(HaveLen(6))
			Expect(notifier.sent).To(HaveLen(1))
			Expect(notifier.sent[0].Body).To(ContainSubstring(*acc.OTPCode))
		})

		Context("when the honeypot field is filled", func() {
			It("should return success without creating anything", func() {
				dto := signup()
				dto.Website = "http://spam.example"

				err := service.RequestSignup(ctx, dto)

				Expect(err).ToNot(HaveOccurred())
				_, getErr := repo.GetByEmail(dto.Email)
				Expect(getErr).To(Equal(account.ErrNotFound))
				Expect(notifier.sent).To(BeEmpty())
			})
		})

		Context("when the form was submitted implausibly fast", func() {
			It("should return success without creating anything", func() {
				dto := signup()
				dto.FormDurationMS = 300

				err := service.RequestSignup(ctx, dto)

				Expect(err).ToNot(HaveOccurred())
				_, getErr := repo.GetByEmail(dto.Email)
				Expect(getErr).To(Equal(account.ErrNotFound))
				Expect(notifier.sent).To(BeEmpty())
			})
		})

		Context("when the email already belongs to a verified account", func() {
			It("should return a conflict", func() {
				repo.add(&account.Account{
					Email:      "sam@campus.example",
					Role:       account.RoleStudent,
					IsVerified: true,
				})

				err := service.RequestSignup(ctx, signup())

				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeAccountExists))
			})
		})

		Context("when the role is unknown", func() {
			It("should fail validation", func() {
				dto := signup()
				dto.Role = "Superuser"

				err := service.RequestSignup(ctx, dto)

				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeValidationFailed))
			})
		})

		Context("when code delivery fails", func() {
			It("should surface the failure to the caller", func() {
				notifier.sendError = errors.New("smtp: connection refused")

				err := service.RequestSignup(ctx, signup())

				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeCodeDispatch))
			})
		})

		Context("for recruiters", func() {
			recruiterSignup := func() account.SignupDTO {
				dto := signup()
				dto.Email = "rita@techcorp.example"
				dto.Role = "Recruiter"
				dto.CompanyName = "TechCorp"
				dto.CompanyWebsite = "https://techcorp.example"
				return dto
			}

			It("should keep high-trust recruiters active", func() {
				trust.score = 50

				err := service.RequestSignup(ctx, recruiterSignup())

				Expect(err).ToNot(HaveOccurred())
				acc, _ := repo.GetByEmail("rita@techcorp.example")
				Expect(acc.TrustScore).To(Equal(50))
				Expect(acc.AccountStatus).To(Equal(account.StatusActive))
			})

			It("should hold low-trust recruiters for manual review", func() {
				trust.score = 10

				err := service.RequestSignup(ctx, recruiterSignup())

				Expect(err).ToNot(HaveOccurred())
				acc, _ := repo.GetByEmail("rita@techcorp.example")
				Expect(acc.AccountStatus).To(Equal(account.StatusPendingApproval))
			})
		})
	})

	Describe("VerifyOTP", func() {
		var code string

		BeforeEach(func() {
			Expect(service.RequestSignup(ctx, signup())).To(Succeed())
			acc, _ := repo.GetByEmail("sam@campus.example")
			code = *acc.OTPCode
		})

		It("should verify the account and issue a token", func() {
			resp, err := service.VerifyOTP(ctx, account.VerifyOTPDTO{
				Email: "sam@campus.example",
				OTP:   code,
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(resp.Token).ToNot(BeEmpty())
			Expect(resp.Role).To(Equal(account.RoleStudent))
			acc, _ := repo.GetByEmail("sam@campus.example")
			Expect(acc.IsVerified).To(BeTrue())
			Expect(acc.OTPCode).To(BeNil())
		})

		It("should refuse a second verification", func() {
			_, err := service.VerifyOTP(ctx, account.VerifyOTPDTO{Email: "sam@campus.example", OTP: code})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.VerifyOTP(ctx, account.VerifyOTPDTO{Email: "sam@campus.example", OTP: code})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeAccountVerified))
		})

		It("should reject a wrong code", func() {
			_, err := service.VerifyOTP(ctx, account.VerifyOTPDTO{Email: "sam@campus.example", OTP: "000000"})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidCode))
		})

		Context("after three consecutive failures", func() {
			wrong := func() string {
				w := "000000"
				if code == w {
					w = "000001"
				}
				return w
			}

			It("should throttle every further attempt, even with the right code", func() {
				for i := 0; i < 3; i++ {
					_, err := service.VerifyOTP(ctx, account.VerifyOTPDTO{Email: "sam@campus.example", OTP: wrong()})
					Expect(err).To(HaveOccurred())
				}

				_, err := service.VerifyOTP(ctx, account.VerifyOTPDTO{Email: "sam@campus.example", OTP: code})

				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.StatusCode).To(Equal(429))
				details, isMap := appErr.Details.(map[string]int)
				Expect(isMap).To(BeTrue())
				Expect(details["minutes_remaining"]).To(BeNumerically(">", 0))
			})
		})
	})

	Describe("ResendOTP", func() {
		BeforeEach(func() {
			Expect(service.RequestSignup(ctx, signup())).To(Succeed())
		})

		It("should replace the stored code", func() {
			before, _ := repo.GetByEmail("sam@campus.example")

			err := service.ResendOTP(ctx, account.ResendOTPDTO{Email: "sam@campus.example"})

			Expect(err).ToNot(HaveOccurred())
			after, _ := repo.GetByEmail("sam@campus.example")
			Expect(after.OTPResends).To(Equal(before.OTPResends + 1))
			Expect(notifier.sent).To(HaveLen(2))
		})

		It("should enter a cooldown once the resend cap is hit", func() {
			for i := 0; i < otpCfg.MaxResends; i++ {
				Expect(service.ResendOTP(ctx, account.ResendOTPDTO{Email: "sam@campus.example"})).To(Succeed())
			}

			err := service.ResendOTP(ctx, account.ResendOTPDTO{Email: "sam@campus.example"})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(429))
			acc, _ := repo.GetByEmail("sam@campus.example")
			Expect(acc.CooldownUntil).ToNot(BeNil())
		})
	})

	Describe("ResetPassword", func() {
		var code string

		BeforeEach(func() {
			Expect(service.RequestSignup(ctx, signup())).To(Succeed())
			Expect(service.ForgotPassword(ctx, account.ResendOTPDTO{Email: "sam@campus.example"})).To(Succeed())
			acc, _ := repo.GetByEmail("sam@campus.example")
			code = *acc.OTPCode
		})

		It("should rewrite the password hash with a valid code", func() {
			err := service.ResetPassword(ctx, account.ResetPasswordDTO{
				Email:       "sam@campus.example",
				OTP:         code,
				NewPassword: "brand-new-pass",
			})

			Expect(err).ToNot(HaveOccurred())
			acc, _ := repo.GetByEmail("sam@campus.example")
			Expect(bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte("brand-new-pass"))).To(Succeed())
		})

		It("should reject a wrong code", func() {
			wrong := "000000"
			if code == wrong {
				wrong = "000001"
			}

			err := service.ResetPassword(ctx, account.ResetPasswordDTO{
				Email:       "sam@campus.example",
				OTP:         wrong,
				NewPassword: "brand-new-pass",
			})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidCode))
		})
	})

	Describe("Login", func() {
		BeforeEach(func() {
			hash, _ := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
			repo.add(&account.Account{
				Email:         "sam@campus.example",
				Name:          "Sam Student",
				PasswordHash:  string(hash),
				Role:          account.RoleStudent,
				IsVerified:    true,
				AccountStatus: account.StatusActive,
			})
		})

		It("should authenticate a verified account", func() {
			resp, err := service.Login(ctx, account.LoginDTO{Email: "sam@campus.example", Password: "correct-horse"})

			Expect(err).ToNot(HaveOccurred())
			Expect(resp.Token).ToNot(BeEmpty())
		})

		It("should reject a wrong password", func() {
			_, err := service.Login(ctx, account.LoginDTO{Email: "sam@campus.example", Password: "wrong"})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidCredentials))
		})

		It("should reject unverified accounts", func() {
			acc := repo.byEmail["sam@campus.example"]
			acc.IsVerified = false

			_, err := service.Login(ctx, account.LoginDTO{Email: "sam@campus.example", Password: "correct-horse"})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeNotVerified))
		})

		It("should reject suspended accounts", func() {
			acc := repo.byEmail["sam@campus.example"]
			acc.AccountStatus = account.StatusSuspended

			_, err := service.Login(ctx, account.LoginDTO{Email: "sam@campus.example", Password: "correct-horse"})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeAccountSuspended))
		})
	})

	Describe("ApproveAccount", func() {
		var pending *account.Account

		BeforeEach(func() {
			pending = repo.add(&account.Account{
				Email:         "rita@techcorp.example",
				Role:          account.RoleRecruiter,
				IsVerified:    true,
				AccountStatus: account.StatusPendingApproval,
			})
		})

		It("should activate the account and record the action", func() {
			acc, err := service.ApproveAccount(ctx, 99, pending.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(acc.AccountStatus).To(Equal(account.StatusActive))
			Expect(recorder.records).To(HaveLen(1))
			Expect(recorder.records[0].ActorID).To(Equal(int64(99)))
			Expect(recorder.records[0].TargetID).To(Equal(pending.ID))
		})

		It("should refuse accounts that are not pending", func() {
			_, err := service.ApproveAccount(ctx, 99, pending.ID)
			Expect(err).ToNot(HaveOccurred())

			_, err = service.ApproveAccount(ctx, 99, pending.ID)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeNotPending))
		})
	})
})
