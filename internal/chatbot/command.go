package chatbot

import (
	"strings"

	"github.com/campushq/internship-portal/internal/account"
)

// Command is the closed set of chat operations. Free text only maps into
// this enum at the parse boundary; dispatch never touches raw strings.
type Command string

const (
	CommandMyOffers         Command = "my_offers"
	CommandApproveOffer     Command = "approve_offer"
	CommandRejectOffer      Command = "reject_offer"
	CommandListPendingUsers Command = "list_pending_users"
	CommandApproveUser      Command = "approve_user"
	CommandViewLogs         Command = "view_logs"
)

var commands = map[string]Command{
	string(CommandMyOffers):         CommandMyOffers,
	string(CommandApproveOffer):     CommandApproveOffer,
	string(CommandRejectOffer):      CommandRejectOffer,
	string(CommandListPendingUsers): CommandListPendingUsers,
	string(CommandApproveUser):      CommandApproveUser,
	string(CommandViewLogs):         CommandViewLogs,
}

// capabilities maps each role to its permitted command set, checked once at
// the dispatch boundary.
var capabilities = map[account.Role]map[Command]struct{}{
	account.RoleRecruiter: {
		CommandMyOffers: {},
	},
	account.RoleFaculty: {
		CommandApproveOffer: {},
		CommandRejectOffer:  {},
	},
	account.RoleAdmin: {
		CommandApproveOffer:     {},
		CommandRejectOffer:      {},
		CommandListPendingUsers: {},
		CommandApproveUser:      {},
		CommandViewLogs:         {},
	},
	account.RoleMasterAdmin: {
		CommandApproveOffer:     {},
		CommandRejectOffer:      {},
		CommandListPendingUsers: {},
		CommandApproveUser:      {},
		CommandViewLogs:         {},
	},
}

// Allowed reports whether a role may run a command.
func Allowed(role account.Role, cmd Command) bool {
	set, ok := capabilities[role]
	if !ok {
		return false
	}
	_, ok = set[cmd]
	return ok
}

// ParseMessage splits a "!command arg arg" message. The boolean is false
// when the word after "!" is not a known command.
func ParseMessage(message string) (Command, []string, bool) {
	fields := strings.Fields(strings.TrimPrefix(message, "!"))
	if len(fields) == 0 {
		return "", nil, false
	}
	cmd, ok := commands[strings.ToLower(fields[0])]
	if !ok {
		return Command(fields[0]), nil, false
	}
	return cmd, fields[1:], true
}
