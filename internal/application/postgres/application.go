package postgres

import (
	"time"

	"gorm.io/gorm"

	"github.com/campushq/internship-portal/internal/application"
)

// ApplicationRepository implements the application.Repository interface using GORM
type ApplicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *gorm.DB) application.Repository {
	return &ApplicationRepository{db: db}
}

// Create saves a new application
func (r *ApplicationRepository) Create(app *application.Application) error {
	return r.db.Create(app).Error
}

// GetByID retrieves an application by its ID
func (r *ApplicationRepository) GetByID(id int64) (*application.Application, error) {
	var app application.Application
	err := r.db.Where("id = ?", id).First(&app).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, application.ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

// ListByOffer retrieves an offer's applications with student details
func (r *ApplicationRepository) ListByOffer(offerID int64) ([]*application.Application, error) {
	var apps []*application.Application
	err := r.db.Preload("Student").
		Where("offer_id = ?", offerID).
		Order("created_at DESC").
		Find(&apps).Error
	return apps, err
}

// SetFacultyApproved records the faculty decision once
func (r *ApplicationRepository) SetFacultyApproved(id int64) (bool, error) {
	res := r.db.Model(&application.Application{}).
		Where("id = ? AND status_faculty = ? AND is_rejected = ?", id, application.DecisionPending, false).
		Updates(map[string]interface{}{
			"status_faculty": application.DecisionApproved,
			"updated_at":     time.Now(),
		})
	return res.RowsAffected > 0, res.Error
}

// SetAdminApproved records the admin decision once
func (r *ApplicationRepository) SetAdminApproved(id int64) (bool, error) {
	res := r.db.Model(&application.Application{}).
		Where("id = ? AND status_admin = ? AND is_rejected = ?", id, application.DecisionPending, false).
		Updates(map[string]interface{}{
			"status_admin": application.DecisionApproved,
			"updated_at":   time.Now(),
		})
	return res.RowsAffected > 0, res.Error
}

// SetRejected flips the rejection flag once
func (r *ApplicationRepository) SetRejected(id int64) (bool, error) {
	res := r.db.Model(&application.Application{}).
		Where("id = ? AND is_rejected = ?", id, false).
		Updates(map[string]interface{}{
			"is_rejected": true,
			"updated_at":  time.Now(),
		})
	return res.RowsAffected > 0, res.Error
}
