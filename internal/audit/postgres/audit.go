package postgres

import (
	"gorm.io/gorm"

	"github.com/campushq/internship-portal/internal/audit"
)

// AuditRepository implements the audit.Repository interface using GORM
type AuditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *gorm.DB) audit.Repository {
	return &AuditRepository{db: db}
}

// Create appends a new audit entry
func (r *AuditRepository) Create(entry *audit.Entry) error {
	return r.db.Create(entry).Error
}

// List retrieves audit entries newest first, joined with the actor's identity
func (r *AuditRepository) List(limit, offset int) ([]*audit.EntryWithActor, error) {
	var entries []*audit.EntryWithActor
	err := r.db.Table("audit_logs").
		Select("audit_logs.*, users.name AS actor_name, users.email AS actor_email").
		Joins("LEFT JOIN users ON users.id = audit_logs.actor_id").
		Order("audit_logs.created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(&entries).Error
	return entries, err
}

// Count returns the total number of audit entries
func (r *AuditRepository) Count() (int64, error) {
	var total int64
	err := r.db.Model(&audit.Entry{}).Count(&total).Error
	return total, err
}
