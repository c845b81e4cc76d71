package audit

import (
	"time"
)

// Entry is one append-only audit record. Details holds a JSON document with
// action-specific context such as a rejection reason.
type Entry struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ActorID    int64     `json:"actor_id" gorm:"column:actor_id;index"`
	Action     string    `json:"action" gorm:"column:action"`
	TargetType string    `json:"target_type" gorm:"column:target_type"`
	TargetID   int64     `json:"target_id" gorm:"column:target_id"`
	Details    *string   `json:"details,omitempty" gorm:"column:details"`
	CreatedAt  time.Time `json:"created_at" gorm:"column:created_at;index"`
}

func (Entry) TableName() string {
	return "audit_logs"
}

// EntryWithActor joins the actor's identity for the admin listing.
type EntryWithActor struct {
	Entry
	ActorName  string `json:"actor_name" gorm:"column:actor_name"`
	ActorEmail string `json:"actor_email" gorm:"column:actor_email"`
}

// Action names recorded by the workflow.
const (
	ActionCreateOffer         = "create_offer"
	ActionFacultyApproveOffer = "faculty_approve_offer"
	ActionAdminApproveOffer   = "admin_approve_offer"
	ActionRejectOffer         = "reject_offer"

	ActionCreateApplication         = "create_application"
	ActionFacultyApproveApplication = "faculty_approve_application"
	ActionAdminApproveApplication   = "admin_approve_application"
	ActionRejectApplication         = "reject_application"

	ActionApproveUser = "approve_user"
)

// Target types recorded by the workflow.
const (
	TargetOffer       = "offer"
	TargetApplication = "application"
	TargetUser        = "user"
)
