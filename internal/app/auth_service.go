package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"taskgate/internal/model"
	"taskgate/internal/pkg/traceid"
)

type TokenIssuer interface {
	Issue(userID uint, username string) (string, time.Time, error)
}

// AuditRecorder receives account events. Recording is best effort: a failed
// record is logged and never fails the request.
type AuditRecorder interface {
	Record(ctx context.Context, event model.AuditEvent) error
}

type AuthService struct {
	store  CredentialStore
	issuer TokenIssuer
	audit  AuditRecorder
	logger *slog.Logger
	now    func() time.Time
}

type LoginInput struct {
	Username string
	Password string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Account   *model.Account
}

func NewAuthService(store CredentialStore, issuer TokenIssuer, audit AuditRecorder, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		store:  store,
		issuer: issuer,
		audit:  audit,
		logger: logger,
		now:    time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (uint, error) {
	id, err := s.store.CreateAccount(ctx, input)
	if err != nil {
		return 0, err
	}
	s.record(ctx, model.AuditAccountRegistered, id, input.Username)
	return id, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || strings.TrimSpace(input.Password) == "" {
		return nil, ErrInvalidInput
	}

	account, err := s.store.VerifyCredentials(ctx, username, input.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredential) {
			s.record(ctx, model.AuditAccountLoginFailed, 0, username)
		}
		return nil, err
	}

	token, expiresAt, err := s.issuer.Issue(account.ID, account.Username)
	if err != nil {
		return nil, err
	}
	s.record(ctx, model.AuditAccountLoginSucceeded, account.ID, account.Username)
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Account: account}, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, accountID uint, username string, update ProfileUpdate) error {
	if err := s.store.UpdateProfile(ctx, accountID, update); err != nil {
		return err
	}
	s.record(ctx, model.AuditAccountProfileUpdated, accountID, username)
	return nil
}

func (s *AuthService) GetProfile(ctx context.Context, accountID uint) (*model.Account, error) {
	return s.store.GetProfile(ctx, accountID)
}

func (s *AuthService) record(ctx context.Context, eventType string, accountID uint, username string) {
	if s.audit == nil {
		return
	}
	event := model.AuditEvent{
		Type:       eventType,
		AccountID:  accountID,
		Username:   username,
		TraceID:    traceid.FromContext(ctx),
		OccurredAt: s.now().UTC(),
	}
	if err := s.audit.Record(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "record audit event failed",
			"type", eventType,
			"trace_id", event.TraceID,
			"error", err,
		)
	}
}
