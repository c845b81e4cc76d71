package chatbot_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/campushq/internship-portal/internal"
	"github.com/campushq/internship-portal/internal/account"
	"github.com/campushq/internship-portal/internal/audit"
	"github.com/campushq/internship-portal/internal/chatbot"
	"github.com/campushq/internship-portal/internal/offer"
)

func TestChatbotService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Chatbot Service Suite")
}

type mockOfferCommands struct {
	offers       []*offer.Offer
	listError    error
	approveError error
	rejectError  error
	approved     []int64
	rejected     []int64
	resultOffer  *offer.Offer
}

func (m *mockOfferCommands) ListForActor(ctx context.Context, actor *account.Actor) ([]*offer.Offer, error) {
	return m.offers, m.listError
}

func (m *mockOfferCommands) FacultyApprove(ctx context.Context, actor *account.Actor, id int64) (*offer.Offer, error) {
	if m.approveError != nil {
		return nil, m.approveError
	}
	m.approved = append(m.approved, id)
	return m.resultOffer, nil
}

func (m *mockOfferCommands) AdminApprove(ctx context.Context, actor *account.Actor, id int64) (*offer.Offer, error) {
	if m.approveError != nil {
		return nil, m.approveError
	}
	m.approved = append(m.approved, id)
	return m.resultOffer, nil
}

func (m *mockOfferCommands) Reject(ctx context.Context, actor *account.Actor, id int64, dto offer.RejectDTO) (*offer.Offer, error) {
	if m.rejectError != nil {
		return nil, m.rejectError
	}
	m.rejected = append(m.rejected, id)
	return m.resultOffer, nil
}

type mockAccountCommands struct {
	pending  []*account.Account
	approved []int64
}

func (m *mockAccountCommands) ListPendingAccounts(ctx context.Context) ([]*account.Account, error) {
	return m.pending, nil
}

func (m *mockAccountCommands) ApproveAccount(ctx context.Context, actorID, accountID int64) (*account.Account, error) {
	m.approved = append(m.approved, accountID)
	return &account.Account{ID: accountID, Name: "Rita Recruiter"}, nil
}

type mockAuditCommands struct {
	entries []*audit.EntryWithActor
}

func (m *mockAuditCommands) List(ctx context.Context, limit, offset int) (*audit.ListResult, error) {
	return &audit.ListResult{Entries: m.entries, Total: int64(len(m.entries)), Limit: limit, Offset: offset}, nil
}

var _ = Describe("ChatbotService", func() {
	var (
		service  *chatbot.Service
		offers   *mockOfferCommands
		accounts *mockAccountCommands
		logs     *mockAuditCommands
		ctx      context.Context

		recruiter *account.Actor
		faculty   *account.Actor
		admin     *account.Actor
		student   *account.Actor
	)

	BeforeEach(func() {
		offers = &mockOfferCommands{}
		accounts = &mockAccountCommands{}
		logs = &mockAuditCommands{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = chatbot.NewService(offers, accounts, logs, logger)
		ctx = context.Background()

		recruiter = &account.Actor{ID: 1, Role: account.RoleRecruiter}
		faculty = &account.Actor{ID: 2, Role: account.RoleFaculty, Department: "Computer Science"}
		admin = &account.Actor{ID: 3, Role: account.RoleAdmin}
		student = &account.Actor{ID: 4, Role: account.RoleStudent}
	})

	Describe("parsing", func() {
		It("should reject messages without the bang prefix", func() {
			_, err := service.Handle(ctx, recruiter, "my_offers")

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Message).To(Equal("Invalid command. Commands must start with '!'."))
		})

		It("should reply to unknown commands without erroring", func() {
			reply, err := service.Handle(ctx, admin, "!dance")

			Expect(err).ToNot(HaveOccurred())
			Expect(reply).To(Equal("Unknown command: dance"))
		})
	})

	Describe("capabilities", func() {
		It("should deny students every command", func() {
			_, err := service.Handle(ctx, student, "!my_offers")

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(403))
		})

		It("should deny recruiters the approval commands", func() {
			_, err := service.Handle(ctx, recruiter, "!approve_offer 1")

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(403))
		})

		It("should deny faculty the admin-only commands", func() {
			_, err := service.Handle(ctx, faculty, "!view_logs")

			_, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
		})
	})

	Describe("!my_offers", func() {
		It("should report when the recruiter has no offers", func() {
			reply, err := service.Handle(ctx, recruiter, "!my_offers")

			Expect(err).ToNot(HaveOccurred())
			Expect(reply).To(Equal("You have not posted any offers."))
		})

		It("should list the recruiter's offers", func() {
			offers.offers = []*offer.Offer{
				{ID: 7, Title: "Backend Intern", Status: offer.StatusPendingFaculty, CreatedAt: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
			}

			reply, err := service.Handle(ctx, recruiter, "!my_offers")

			Expect(err).ToNot(HaveOccurred())
			Expect(reply).To(ContainSubstring("Your Offers:"))
			Expect(reply).To(ContainSubstring(`ID: 7, Title: "Backend Intern", Status: pending_faculty`))
		})
	})

	Describe("!approve_offer", func() {
		It("should ask for an ID when none is given", func() {
			reply, err := service.Handle(ctx, faculty, "!approve_offer")

			Expect(err).ToNot(HaveOccurred())
			Expect(reply).To(Equal("Please provide an offer ID."))
		})

		It("should route faculty to the faculty stage", func() {
			offers.resultOffer = &offer.Offer{ID: 7, Title: "Backend Intern", Status: offer.StatusPendingAdmin}

			reply, err := service.Handle(ctx, faculty, "!approve_offer 7")

			Expect(err).ToNot(HaveOccurred())
			Expect(offers.approved).To(Equal([]int64{7}))
			Expect(reply).To(ContainSubstring("pending Admin approval"))
		})

		It("should report full approval for admins", func() {
			offers.resultOffer = &offer.Offer{ID: 7, Title: "Backend Intern", Status: offer.StatusApproved}

			reply, err := service.Handle(ctx, admin, "!approve_offer 7")

			Expect(err).ToNot(HaveOccurred())
			Expect(reply).To(Equal(`Offer "Backend Intern" (ID: 7) has been fully approved.`))
		})

		It("should surface business failures as replies", func() {
			offers.approveError = internal.NewConflictError("Faculty must approve before admin.", internal.ErrCodeFacultyGate)

			reply, err := service.Handle(ctx, admin, "!approve_offer 7")

			Expect(err).ToNot(HaveOccurred())
			Expect(reply).To(Equal("Faculty must approve before admin."))
		})
	})

	Describe("!reject_offer", func() {
		It("should require a reason", func() {
			reply, err := service.Handle(ctx, faculty, "!reject_offer 7")

			Expect(err).ToNot(HaveOccurred())
			Expect(reply).To(Equal("Please provide a reason for rejection."))
		})

		It("should reject with the full reason text", func() {
			offers.resultOffer = &offer.Offer{ID: 7, Title: "Backend Intern", Status: offer.StatusRejected}

			reply, err := service.Handle(ctx, faculty, "!reject_offer 7 posting is incomplete")

			Expect(err).ToNot(HaveOccurred())
			Expect(offers.rejected).To(Equal([]int64{7}))
			Expect(reply).To(ContainSubstring("Reason: posting is incomplete"))
		})
	})

	Describe("!list_pending_users", func() {
		It("should report an empty queue", func() {
			reply, err := service.Handle(ctx, admin, "!list_pending_users")

			Expect(err).ToNot(HaveOccurred())
			Expect(reply).To(Equal("No users are pending approval."))
		})

		It("should list held accounts with their trust score", func() {
			accounts.pending = []*account.Account{
				{ID: 9, Name: "Rita", Email: "rita@techcorp.example", Role: account.RoleRecruiter, CompanyName: "TechCorp", TrustScore: 10},
			}

			reply, err := service.Handle(ctx, admin, "!list_pending_users")

			Expect(err).ToNot(HaveOccurred())
			Expect(reply).To(ContainSubstring("Pending Users:"))
			Expect(reply).To(ContainSubstring("Trust Score: 10"))
		})
	})

	Describe("!approve_user", func() {
		It("should activate the account", func() {
			reply, err := service.Handle(ctx, admin, "!approve_user 9")

			Expect(err).ToNot(HaveOccurred())
			Expect(accounts.approved).To(Equal([]int64{9}))
			Expect(reply).To(Equal(`User "Rita Recruiter" (ID: 9) has been approved.`))
		})
	})

	Describe("!view_logs", func() {
		It("should report an empty trail", func() {
			reply, err := service.Handle(ctx, admin, "!view_logs")

			Expect(err).ToNot(HaveOccurred())
			Expect(reply).To(Equal("No audit logs found."))
		})

		It("should render the latest entries", func() {
			details := `{"reason":"duplicate"}`
			logs.entries = []*audit.EntryWithActor{
				{
					Entry: audit.Entry{
						ID: 1, ActorID: 3, Action: audit.ActionRejectOffer,
						TargetType: audit.TargetOffer, TargetID: 7,
						Details:   &details,
						CreatedAt: time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC),
					},
					ActorEmail: "admin@campus.example",
				},
			}

			reply, err := service.Handle(ctx, admin, "!view_logs 5")

			Expect(err).ToNot(HaveOccurred())
			Expect(reply).To(ContainSubstring("Latest Audit Logs (5):"))
			Expect(reply).To(ContainSubstring("admin@campus.example"))
			Expect(reply).To(ContainSubstring(audit.ActionRejectOffer))
		})
	})
})
