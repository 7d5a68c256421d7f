package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"taskgate/internal/model"
)

// ErrDuplicateKey is returned when a write collides with a unique index.
var ErrDuplicateKey = errors.New("duplicate key")

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create stores the account with its normalized username. A name that
// differs from an existing one only by case collides with it.
func (r *AccountRepository) Create(ctx context.Context, account *model.Account) error {
	account.UsernameNormalized = model.NormalizeUsername(account.Username)
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create account failed: %w", err)
	}
	return nil
}

// GetByUsername matches case-insensitively through the normalized column.
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	var account model.Account
	if err := r.db.WithContext(ctx).Where("username_normalized = ?", model.NormalizeUsername(username)).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query account by username failed: %w", err)
	}
	return &account, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id uint) (*model.Account, error) {
	var account model.Account
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query account by id failed: %w", err)
	}
	return &account, nil
}

// UpdateProfile writes only the given columns. It reports false when no
// account has the id.
func (r *AccountRepository) UpdateProfile(ctx context.Context, id uint, fields map[string]any) (bool, error) {
	if len(fields) == 0 {
		account, err := r.GetByID(ctx, id)
		return account != nil, err
	}
	result := r.db.WithContext(ctx).Model(&model.Account{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return false, fmt.Errorf("update account profile failed: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return true, nil
	}
	// MySQL reports zero affected rows when the values did not change.
	account, err := r.GetByID(ctx, id)
	return account != nil, err
}
