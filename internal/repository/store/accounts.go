package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mamadbah2/proporco/internal/domain/errs"
	"github.com/mamadbah2/proporco/internal/domain/models"
)

// Account loads an account by id.
func (t *Tx) Account(id string) (models.Account, error) {
	var acc models.Account
	err := t.db.Where("id = ?", id).Take(&acc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Account{}, &errs.NotFoundError{Entity: "account", ID: id}
	}
	return acc, errs.Storage("load account", err)
}

// AccountByPhone resolves the account registered for a WhatsApp number.
func (t *Tx) AccountByPhone(phone string) (models.Account, error) {
	var acc models.Account
	err := t.db.Where("whatsapp_number = ?", phone).Take(&acc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Account{}, &errs.NotFoundError{Entity: "account", ID: phone}
	}
	return acc, errs.Storage("load account by phone", err)
}

// DigestAccounts lists accounts that receive the weekly digest.
func (t *Tx) DigestAccounts() ([]models.Account, error) {
	var out []models.Account
	err := t.db.Where("digest_enabled = ?", true).Order("created_at").Find(&out).Error
	return out, errs.Storage("list digest accounts", err)
}

// CreateAccount inserts a new account.
func (s *Store) CreateAccount(ctx context.Context, acc *models.Account) error {
	return s.Read(ctx).Insert(acc)
}

// AccountByPhone resolves the account registered for a WhatsApp number.
func (s *Store) AccountByPhone(ctx context.Context, phone string) (models.Account, error) {
	return s.Read(ctx).AccountByPhone(phone)
}

// Account loads an account by id.
func (s *Store) Account(ctx context.Context, id string) (models.Account, error) {
	return s.Read(ctx).Account(id)
}

// DigestAccounts lists accounts that receive the weekly digest.
func (s *Store) DigestAccounts(ctx context.Context) ([]models.Account, error) {
	return s.Read(ctx).DigestAccounts()
}
