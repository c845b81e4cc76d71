package chatbot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/campushq/internship-portal/internal"
	"github.com/campushq/internship-portal/internal/account"
	"github.com/campushq/internship-portal/internal/audit"
	"github.com/campushq/internship-portal/internal/offer"
)

// OfferCommands is the slice of the offer service the bot drives.
type OfferCommands interface {
	ListForActor(ctx context.Context, actor *account.Actor) ([]*offer.Offer, error)
	FacultyApprove(ctx context.Context, actor *account.Actor, id int64) (*offer.Offer, error)
	AdminApprove(ctx context.Context, actor *account.Actor, id int64) (*offer.Offer, error)
	Reject(ctx context.Context, actor *account.Actor, id int64, dto offer.RejectDTO) (*offer.Offer, error)
}

// AccountCommands is the slice of the account service the bot drives.
type AccountCommands interface {
	ListPendingAccounts(ctx context.Context) ([]*account.Account, error)
	ApproveAccount(ctx context.Context, actorID, accountID int64) (*account.Account, error)
}

// AuditCommands is the slice of the audit service the bot drives.
type AuditCommands interface {
	List(ctx context.Context, limit, offset int) (*audit.ListResult, error)
}

type Service struct {
	offers   OfferCommands
	accounts AccountCommands
	logs     AuditCommands
	logger   *slog.Logger
}

func NewService(offers OfferCommands, accounts AccountCommands, logs AuditCommands, logger *slog.Logger) *Service {
	return &Service{offers: offers, accounts: accounts, logs: logs, logger: logger}
}

// Handle parses and dispatches one chat message for an authenticated actor.
// Malformed messages and capability misses return errors; everything past
// the dispatch boundary renders as a plain-text reply, including business
// failures, so the chat surface stays conversational.
func (s *Service) Handle(ctx context.Context, actor *account.Actor, message string) (string, error) {
	if !strings.HasPrefix(message, "!") {
		return "", internal.NewValidationError("Invalid command. Commands must start with '!'.", internal.ErrCodeInvalidFormat)
	}

	cmd, args, ok := ParseMessage(message)
	if !ok {
		if cmd == "" {
			return "", internal.NewValidationError("Invalid command. Commands must start with '!'.", internal.ErrCodeInvalidFormat)
		}
		return fmt.Sprintf("Unknown command: %s", cmd), nil
	}

	if !Allowed(actor.Role, cmd) {
		return "", internal.NewForbiddenError(
			fmt.Sprintf("your role may not run !%s", cmd), internal.ErrCodeInvalidRole)
	}

	s.logger.Info("chat command dispatched", "command", string(cmd), "actor_id", actor.ID)

	switch cmd {
	case CommandMyOffers:
		return s.myOffers(ctx, actor)
	case CommandApproveOffer:
		return s.approveOffer(ctx, actor, args)
	case CommandRejectOffer:
		return s.rejectOffer(ctx, actor, args)
	case CommandListPendingUsers:
		return s.listPendingUsers(ctx)
	case CommandApproveUser:
		return s.approveUser(ctx, actor, args)
	case CommandViewLogs:
		return s.viewLogs(ctx, args)
	default:
		return fmt.Sprintf("Unknown command: %s", cmd), nil
	}
}

func (s *Service) myOffers(ctx context.Context, actor *account.Actor) (string, error) {
	offers, err := s.offers.ListForActor(ctx, actor)
	if err != nil {
		return replyForError(err), nil
	}
	if len(offers) == 0 {
		return "You have not posted any offers.", nil
	}

	lines := make([]string, 0, len(offers)+1)
	lines = append(lines, "Your Offers:")
	for _, off := range offers {
		lines = append(lines, fmt.Sprintf("ID: %d, Title: %q, Status: %s, Created: %s",
			off.ID, off.Title, off.Status, off.CreatedAt.Format("Mon Jan 2 2006")))
	}
	return strings.Join(lines, "\n"), nil
}

func (s *Service) approveOffer(ctx context.Context, actor *account.Actor, args []string) (string, error) {
	id, ok := parseID(args)
	if !ok {
		return "Please provide an offer ID.", nil
	}

	var (
		off *offer.Offer
		err error
	)
	if actor.Role == account.RoleFaculty {
		off, err = s.offers.FacultyApprove(ctx, actor, id)
	} else {
		off, err = s.offers.AdminApprove(ctx, actor, id)
	}
	if err != nil {
		return replyForError(err), nil
	}

	if off.Status == offer.StatusPendingAdmin {
		return fmt.Sprintf("Offer %q (ID: %d) has been approved by Faculty and is now pending Admin approval.", off.Title, off.ID), nil
	}
	return fmt.Sprintf("Offer %q (ID: %d) has been fully approved.", off.Title, off.ID), nil
}

func (s *Service) rejectOffer(ctx context.Context, actor *account.Actor, args []string) (string, error) {
	id, ok := parseID(args)
	if !ok {
		return "Please provide an offer ID.", nil
	}
	reason := strings.Join(args[1:], " ")
	if reason == "" {
		return "Please provide a reason for rejection.", nil
	}

	off, err := s.offers.Reject(ctx, actor, id, offer.RejectDTO{Reason: reason})
	if err != nil {
		return replyForError(err), nil
	}
	return fmt.Sprintf("Offer %q (ID: %d) has been rejected. Reason: %s", off.Title, off.ID, reason), nil
}

func (s *Service) listPendingUsers(ctx context.Context) (string, error) {
	pending, err := s.accounts.ListPendingAccounts(ctx)
	if err != nil {
		return replyForError(err), nil
	}
	if len(pending) == 0 {
		return "No users are pending approval.", nil
	}

	lines := make([]string, 0, len(pending)+1)
	lines = append(lines, "Pending Users:")
	for _, acc := range pending {
		company := acc.CompanyName
		if company == "" {
			company = "N/A"
		}
		lines = append(lines, fmt.Sprintf("ID: %d, Name: %s, Email: %s, Role: %s, Company: %s, Trust Score: %d, Created: %s",
			acc.ID, acc.Name, acc.Email, acc.Role, company, acc.TrustScore, acc.CreatedAt.Format("Mon Jan 2 2006")))
	}
	return strings.Join(lines, "\n"), nil
}

func (s *Service) approveUser(ctx context.Context, actor *account.Actor, args []string) (string, error) {
	id, ok := parseID(args)
	if !ok {
		return "Please provide a user ID.", nil
	}

	acc, err := s.accounts.ApproveAccount(ctx, actor.ID, id)
	if err != nil {
		return replyForError(err), nil
	}
	return fmt.Sprintf("User %q (ID: %d) has been approved.", acc.Name, acc.ID), nil
}

func (s *Service) viewLogs(ctx context.Context, args []string) (string, error) {
	limit := 5
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
			limit = n
		}
	}

	result, err := s.logs.List(ctx, limit, 0)
	if err != nil {
		return replyForError(err), nil
	}
	if len(result.Entries) == 0 {
		return "No audit logs found.", nil
	}

	lines := make([]string, 0, len(result.Entries)+1)
	lines = append(lines, fmt.Sprintf("Latest Audit Logs (%d):", limit))
	for _, entry := range result.Entries {
		details := "{}"
		if entry.Details != nil {
			details = *entry.Details
		}
		actor := entry.ActorEmail
		if actor == "" {
			actor = "N/A"
		}
		lines = append(lines, fmt.Sprintf("[%s] User: %s Action: %s Target: %s:%d Details: %s",
			entry.CreatedAt.Format("2006-01-02 15:04:05"), actor, entry.Action, entry.TargetType, entry.TargetID, details))
	}
	return strings.Join(lines, "\n"), nil
}

func parseID(args []string) (int64, bool) {
	if len(args) == 0 {
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// replyForError renders a service error as bot text. AppError messages are
// already client-safe; anything else collapses to a generic line.
func replyForError(err error) string {
	if appErr, ok := internal.IsAppError(err); ok && appErr.Type != internal.ErrorTypeInternal {
		return appErr.Message
	}
	return "An error occurred while processing your command."
}
