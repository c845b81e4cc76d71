package postgres_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/campushq/internship-portal/internal/account"
	"github.com/campushq/internship-portal/internal/application"
	"github.com/campushq/internship-portal/internal/offer"
	offerPostgres "github.com/campushq/internship-portal/internal/offer/postgres"
)

func TestOfferPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Offer Postgres Suite")
}

// SQLiteUser is a SQLite-compatible model for testing
type SQLiteUser struct {
	ID            int64  `gorm:"primaryKey"`
	Name          string `gorm:"column:name"`
	Email         string `gorm:"column:email;uniqueIndex"`
	PasswordHash  string `gorm:"column:password_hash"`
	Role          string `gorm:"column:role"`
	IsVerified    bool   `gorm:"column:is_verified"`
	AccountStatus string `gorm:"column:account_status"`
	Department    string `gorm:"column:department"`
	CompanyName   string `gorm:"column:company_name"`
	CompanyWeb    string `gorm:"column:company_website"`
	Industry      string `gorm:"column:industry"`
	CompanySize   string `gorm:"column:company_size"`
	Location      string `gorm:"column:location"`
	Phone         string `gorm:"column:phone"`
	TrustScore    int    `gorm:"column:trust_score"`

	OTPCode       *string    `gorm:"column:otp_code"`
	OTPExpiry     *time.Time `gorm:"column:otp_expiry"`
	OTPAttempts   int        `gorm:"column:otp_attempts"`
	OTPResends    int        `gorm:"column:otp_resends"`
	CooldownUntil *time.Time `gorm:"column:cooldown_until"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
}

func (SQLiteUser) TableName() string {
	return "users"
}

var _ = Describe("Offer PostgreSQL Repository", func() {
	var (
		db   *gorm.DB
		repo offer.Repository
	)

	BeforeEach(func() {
		var err error
		// Use SQLite in-memory database for testing
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger:                                   logger.Default.LogMode(logger.Silent),
			DisableForeignKeyConstraintWhenMigrating: true,
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteUser{}, &offer.Offer{}, &application.Application{})
		Expect(err).NotTo(HaveOccurred())

		repo = offerPostgres.NewOfferRepository(db)
	})

	seedRecruiter := func(id int64, department string) {
		Expect(db.Create(&SQLiteUser{
			ID:         id,
			Name:       "Rita",
			Email:      time.Now().Format("150405.000000000") + "@techcorp.example",
			Role:       string(account.RoleRecruiter),
			Department: department,
		}).Error).To(Succeed())
	}

	seedOffer := func(recruiterID int64) *offer.Offer {
		off := &offer.Offer{
			RecruiterID:           recruiterID,
			Title:                 "Backend Intern",
			CompanyName:           "TechCorp",
			Description:           "Build services",
			Status:                offer.StatusPendingFaculty,
			FacultyApprovalStatus: offer.DecisionPending,
			AdminApprovalStatus:   offer.DecisionPending,
		}
		Expect(repo.Create(off)).To(Succeed())
		return off
	}

	Describe("GetWithRecruiter", func() {
		It("should preload the recruiter and count applications", func() {
			seedRecruiter(1, "Computer Science")
			off := seedOffer(1)
			Expect(db.Create(&application.Application{
				OfferID: off.ID, StudentID: 5,
				StatusFaculty: application.DecisionPending,
				StatusAdmin:   application.DecisionPending,
			}).Error).To(Succeed())

			found, err := repo.GetWithRecruiter(off.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(found.Recruiter).NotTo(BeNil())
			Expect(found.Recruiter.Department).To(Equal("Computer Science"))
			Expect(found.ApplicationsCount).To(Equal(int64(1)))
		})

		It("should report not found for unknown IDs", func() {
			_, err := repo.GetWithRecruiter(999)

			Expect(err).To(Equal(offer.ErrOfferNotFound))
		})
	})

	Describe("listing", func() {
		BeforeEach(func() {
			seedRecruiter(1, "Computer Science")
			seedRecruiter(2, "Mechanical")
			seedOffer(1)
			seedOffer(2)
		})

		It("should filter by recruiter", func() {
			offers, err := repo.ListByRecruiter(1)

			Expect(err).NotTo(HaveOccurred())
			Expect(offers).To(HaveLen(1))
			Expect(offers[0].RecruiterID).To(Equal(int64(1)))
		})

		It("should filter by the recruiter's department", func() {
			offers, err := repo.ListByDepartment("Mechanical")

			Expect(err).NotTo(HaveOccurred())
			Expect(offers).To(HaveLen(1))
			Expect(offers[0].RecruiterID).To(Equal(int64(2)))
		})

		It("should list everything", func() {
			offers, err := repo.ListAll()

			Expect(err).NotTo(HaveOccurred())
			Expect(offers).To(HaveLen(2))
		})
	})

	Describe("decision transitions", func() {
		var off *offer.Offer

		BeforeEach(func() {
			seedRecruiter(1, "Computer Science")
			off = seedOffer(1)
		})

		It("should move through the full approval chain exactly once", func() {
			ok, err := repo.SetFacultyApproved(off.ID, time.Now())
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			// second faculty approval misses the status guard
			ok, err = repo.SetFacultyApproved(off.ID, time.Now())
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())

			ok, err = repo.SetAdminApproved(off.ID, time.Now())
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			found, err := repo.GetWithRecruiter(off.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.Status).To(Equal(offer.StatusApproved))
			Expect(found.FacultyApprovedAt).NotTo(BeNil())
			Expect(found.AdminApprovedAt).NotTo(BeNil())
		})

		It("should refuse an admin approval before the faculty one", func() {
			ok, err := repo.SetAdminApproved(off.ID, time.Now())

			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("should reject only from a pending stage", func() {
			ok, err := repo.SetRejected(off.ID, "incomplete posting", true, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			found, _ := repo.GetWithRecruiter(off.ID)
			Expect(found.Status).To(Equal(offer.StatusRejected))
			Expect(found.FacultyApprovalStatus).To(Equal(offer.DecisionRejected))
			Expect(found.AdminApprovalStatus).To(Equal(offer.DecisionPending))
			Expect(*found.RejectionReason).To(Equal("incomplete posting"))

			ok, err = repo.SetRejected(off.ID, "again", false, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})
})
