package postgres

import (
	"time"

	"gorm.io/gorm"

	"github.com/campushq/internship-portal/internal/account"
)

// AccountRepository implements the account.Repository interface using GORM
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) account.Repository {
	return &AccountRepository{db: db}
}

// GetByEmail retrieves an account by its email address
func (r *AccountRepository) GetByEmail(email string) (*account.Account, error) {
	var acc account.Account
	err := r.db.Where("email = ?", email).First(&acc).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, account.ErrNotFound
		}
		return nil, err
	}
	return &acc, nil
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(id int64) (*account.Account, error) {
	var acc account.Account
	err := r.db.Where("id = ?", id).First(&acc).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, account.ErrNotFound
		}
		return nil, err
	}
	return &acc, nil
}

// Upsert creates the account, or overwrites an existing unverified row with
// the same email. Verified rows are never touched; signup on a verified
// email is rejected before this call.
func (r *AccountRepository) Upsert(acc *account.Account) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing account.Account
		err := tx.Where("email = ? AND is_verified = ?", acc.Email, false).First(&existing).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return tx.Create(acc).Error
			}
			return err
		}
		acc.ID = existing.ID
		acc.CreatedAt = existing.CreatedAt
		acc.UpdatedAt = time.Now()
		return tx.Save(acc).Error
	})
}

// MarkVerified flips the account to verified only if the stored code still
// matches and the row is unverified. Returns false when a concurrent call
// already consumed the code.
func (r *AccountRepository) MarkVerified(id int64, code string) (bool, error) {
	res := r.db.Model(&account.Account{}).
		Where("id = ? AND otp_code = ? AND is_verified = ?", id, code, false).
		Updates(map[string]interface{}{
			"is_verified":    true,
			"otp_code":       nil,
			"otp_expiry":     nil,
			"otp_attempts":   0,
			"otp_resends":    0,
			"cooldown_until": nil,
			"updated_at":     time.Now(),
		})
	return res.RowsAffected > 0, res.Error
}

// SetOTP stores a fresh code, guarded on the previous resend count so two
// concurrent resends cannot both slip under the cap.
func (r *AccountRepository) SetOTP(id int64, code string, expiry time.Time, prevResends, newResends int) (bool, error) {
	res := r.db.Model(&account.Account{}).
		Where("id = ? AND otp_resends = ?", id, prevResends).
		Updates(map[string]interface{}{
			"otp_code":     code,
			"otp_expiry":   expiry,
			"otp_attempts": 0,
			"otp_resends":  newResends,
			"updated_at":   time.Now(),
		})
	return res.RowsAffected > 0, res.Error
}

// RecordFailedAttempt writes the new attempt count and optional cooldown,
// guarded on the previous attempt count.
func (r *AccountRepository) RecordFailedAttempt(id int64, prevAttempts, newAttempts int, cooldownUntil *time.Time) (bool, error) {
	updates := map[string]interface{}{
		"otp_attempts": newAttempts,
		"updated_at":   time.Now(),
	}
	if cooldownUntil != nil {
		updates["cooldown_until"] = *cooldownUntil
		updates["otp_resends"] = 0
	}
	res := r.db.Model(&account.Account{}).
		Where("id = ? AND otp_attempts = ?", id, prevAttempts).
		Updates(updates)
	return res.RowsAffected > 0, res.Error
}

// UpdatePasswordByCode rewrites the password hash and consumes the code in
// one guarded update.
func (r *AccountRepository) UpdatePasswordByCode(id int64, passwordHash, code string) (bool, error) {
	res := r.db.Model(&account.Account{}).
		Where("id = ? AND otp_code = ?", id, code).
		Updates(map[string]interface{}{
			"password_hash":  passwordHash,
			"otp_code":       nil,
			"otp_expiry":     nil,
			"otp_attempts":   0,
			"cooldown_until": nil,
			"updated_at":     time.Now(),
		})
	return res.RowsAffected > 0, res.Error
}

// SetStatus transitions account_status from one value to another
func (r *AccountRepository) SetStatus(id int64, from, to string) (bool, error) {
	res := r.db.Model(&account.Account{}).
		Where("id = ? AND account_status = ?", id, from).
		Updates(map[string]interface{}{
			"account_status": to,
			"updated_at":     time.Now(),
		})
	return res.RowsAffected > 0, res.Error
}

// ListByStatus retrieves accounts in a given status, oldest first
func (r *AccountRepository) ListByStatus(status string) ([]*account.Account, error) {
	var accounts []*account.Account
	err := r.db.Where("account_status = ?", status).
		Order("created_at ASC").
		Find(&accounts).Error
	return accounts, err
}
