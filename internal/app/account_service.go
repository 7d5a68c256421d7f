package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"taskgate/internal/model"
	"taskgate/internal/repository"
)

// CredentialStore owns accounts and their password hashes.
type CredentialStore interface {
	CreateAccount(ctx context.Context, input RegisterInput) (uint, error)
	VerifyCredentials(ctx context.Context, username, password string) (*model.Account, error)
	UpdateProfile(ctx context.Context, accountID uint, update ProfileUpdate) error
	GetProfile(ctx context.Context, accountID uint) (*model.Account, error)
}

type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	GetByUsername(ctx context.Context, username string) (*model.Account, error)
	GetByID(ctx context.Context, id uint) (*model.Account, error)
	UpdateProfile(ctx context.Context, id uint, fields map[string]any) (bool, error)
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=100"`
}

// ProfileUpdate holds the optional profile fields. Nil fields are left
// untouched; Preferences must be a JSON document when set.
type ProfileUpdate struct {
	Name        *string
	TimeZone    *string
	Preferences *string
}

const maxProfileNameLength = 100

type AccountService struct {
	accountRepo AccountRepository
	bcryptCost  int

	// dummyHash is compared against when the username is unknown so that
	// both failure modes cost one bcrypt comparison.
	dummyHash []byte
}

func NewAccountService(accountRepo AccountRepository, bcryptCost int) (*AccountService, error) {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("taskgate-placeholder-password"), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash placeholder password failed: %w", err)
	}
	return &AccountService{
		accountRepo: accountRepo,
		bcryptCost:  bcryptCost,
		dummyHash:   dummy,
	}, nil
}

func (s *AccountService) CreateAccount(ctx context.Context, input RegisterInput) (uint, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	if err := checkStruct(input); err != nil {
		return 0, err
	}

	existing, err := s.accountRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, ErrDuplicateUsername
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return 0, fmt.Errorf("hash password failed: %w", err)
	}

	account := &model.Account{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return 0, ErrDuplicateUsername
		}
		return 0, err
	}
	return account.ID, nil
}

func (s *AccountService) VerifyCredentials(ctx context.Context, username, password string) (*model.Account, error) {
	account, err := s.accountRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if account == nil {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}
	return account, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, accountID uint, update ProfileUpdate) error {
	if accountID == 0 {
		return ErrInvalidInput
	}

	var reasons []string
	fields := make(map[string]any)
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if utf8.RuneCountInString(name) > maxProfileNameLength {
			reasons = append(reasons, fmt.Sprintf("name must be at most %d characters", maxProfileNameLength))
		}
		fields["name"] = name
	}
	if update.TimeZone != nil {
		tz := strings.TrimSpace(*update.TimeZone)
		if tz != "" {
			if _, err := time.LoadLocation(tz); err != nil {
				reasons = append(reasons, fmt.Sprintf("timeZone %q is not a known time zone", tz))
			}
		}
		fields["time_zone"] = tz
	}
	if update.Preferences != nil && *update.Preferences != "" {
		if !json.Valid([]byte(*update.Preferences)) {
			reasons = append(reasons, "preferences must be a valid JSON document")
		}
		fields["preferences"] = *update.Preferences
	}
	if len(reasons) > 0 {
		return &ValidationError{Reasons: reasons}
	}

	found, err := s.accountRepo.UpdateProfile(ctx, accountID, fields)
	if err != nil {
		return err
	}
	if !found {
		return ErrAccountNotFound
	}
	return nil
}

func (s *AccountService) GetProfile(ctx context.Context, accountID uint) (*model.Account, error) {
	if accountID == 0 {
		return nil, ErrInvalidInput
	}
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}
