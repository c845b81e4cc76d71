package postgres_test

import (
	"fmt"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/campushq/internship-portal/internal/audit"
	auditPostgres "github.com/campushq/internship-portal/internal/audit/postgres"
)

func TestAuditPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Audit Postgres Suite")
}

// SQLiteUser is a SQLite-compatible model for testing
type SQLiteUser struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name"`
	Email     string    `gorm:"column:email;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (SQLiteUser) TableName() string {
	return "users"
}

var _ = Describe("Audit PostgreSQL Repository", func() {
	var (
		db   *gorm.DB
		repo audit.Repository
	)

	BeforeEach(func() {
		var err error
		// Use SQLite in-memory database for testing
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger:                                   logger.Default.LogMode(logger.Silent),
			DisableForeignKeyConstraintWhenMigrating: true,
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteUser{}, &audit.Entry{})
		Expect(err).NotTo(HaveOccurred())

		repo = auditPostgres.NewAuditRepository(db)
	})

	appendEntry := func(actorID int64, action string, at time.Time) {
		Expect(repo.Create(&audit.Entry{
			ActorID:    actorID,
			Action:     action,
			TargetType: audit.TargetOffer,
			TargetID:   7,
			CreatedAt:  at,
		})).To(Succeed())
	}

	It("should join the actor's identity into the listing", func() {
		Expect(db.Create(&SQLiteUser{ID: 3, Name: "Ada Admin", Email: "admin@campus.example"}).Error).To(Succeed())
		appendEntry(3, audit.ActionAdminApproveOffer, time.Now())

		entries, err := repo.List(10, 0)

		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(1))
		Expect(entries[0].ActorName).To(Equal("Ada Admin"))
		Expect(entries[0].ActorEmail).To(Equal("admin@campus.example"))
	})

	It("should keep entries for unknown actors", func() {
		appendEntry(99, audit.ActionApproveUser, time.Now())

		entries, err := repo.List(10, 0)

		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(1))
		Expect(entries[0].ActorName).To(BeEmpty())
	})

	It("should page newest first", func() {
		base := time.Now().Add(-time.Hour)
		for i := 0; i < 5; i++ {
			appendEntry(int64(i+1), fmt.Sprintf("action_%d", i), base.Add(time.Duration(i)*time.Minute))
		}

		entries, err := repo.List(2, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(2))
		Expect(entries[0].Action).To(Equal("action_4"))

		total, err := repo.Count()
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(int64(5)))
	})
})
