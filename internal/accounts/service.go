// Package accounts registers candidates and employers, authenticates them and
// maintains their own profiles.
package accounts

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/jonathan/job-portal/internal/apperr"
	"github.com/jonathan/job-portal/internal/config"
	"github.com/jonathan/job-portal/internal/identity"
	"github.com/jonathan/job-portal/internal/observability"
	"github.com/jonathan/job-portal/internal/store"
	"github.com/jonathan/job-portal/internal/types"
	"github.com/jonathan/job-portal/internal/validation"
	"go.uber.org/zap"
)

// TokenIssuer signs access tokens for authenticated principals.
type TokenIssuer interface {
	IssueToken(p identity.Principal) (string, error)
}

// Service owns user accounts.
type Service struct {
	store     store.Store
	passwords *config.PasswordConfig
	tokens    TokenIssuer
	logger    *zap.SugaredLogger
}

// NewService creates an accounts service.
func NewService(st store.Store, passwords *config.PasswordConfig, tokens TokenIssuer, logger *zap.SugaredLogger) *Service {
	return &Service{
		store:     st,
		passwords: passwords,
		tokens:    tokens,
		logger:    observability.Component(logger, "accounts"),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterCandidate creates a candidate account.
func (s *Service) RegisterCandidate(ctx context.Context, req types.RegisterCandidateRequest) (*types.Candidate, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	var created types.Candidate
	err := s.register(ctx, req.Email, req.Password, types.RoleCandidate, func(tx store.Store, user *types.User) error {
		created = types.Candidate{UserID: user.ID, Name: req.Name}
		return tx.CreateCandidate(ctx, &created)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Infow("candidate registered", observability.FieldCandidateID, created.ID)
	return &created, nil
}

// RegisterEmployer creates an employer account.
func (s *Service) RegisterEmployer(ctx context.Context, req types.RegisterEmployerRequest) (*types.Employer, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	req.Email = normalizeEmail(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	var created types.Employer
	err := s.register(ctx, req.Email, req.Password, types.RoleEmployer, func(tx store.Store, user *types.User) error {
		created = types.Employer{UserID: user.ID, Name: req.Name, CompanyName: req.CompanyName}
		return tx.CreateEmployer(ctx, &created)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Infow("employer registered", observability.FieldEmployerID, created.ID)
	return &created, nil
}

// EnsureAdmin creates an admin user unless the email is already registered.
// It reports whether a user was created.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return false, apperr.Validation(apperr.CodeInvalidInput, "admin email and password are required")
	}
	existing, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return false, apperr.Infrastructure(err, "failed to look up user")
	}
	if existing != nil {
		if existing.Role != types.RoleAdmin {
			return false, apperr.Conflict(apperr.CodeEmailAlreadyRegistered, "email already registered: %s", email)
		}
		return false, nil
	}
	err = s.register(ctx, email, password, types.RoleAdmin, func(store.Store, *types.User) error { return nil })
	if err != nil {
		return false, err
	}
	s.logger.Infow("admin created", observability.FieldUserEmail, email)
	return true, nil
}

// register creates the user row and lets profile insert its profile in the same transaction.
func (s *Service) register(ctx context.Context, email, password string, role types.Role, profile func(tx store.Store, user *types.User) error) error {
	existing, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return apperr.Infrastructure(err, "failed to look up user")
	}
	if existing != nil {
		return apperr.Conflict(apperr.CodeEmailAlreadyRegistered, "email already registered: %s", email)
	}

	hash, err := s.passwords.HashPassword(password)
	if err != nil {
		return apperr.Infrastructure(err, "failed to hash password")
	}

	err = s.store.WithTx(ctx, func(tx store.Store) error {
		user := &types.User{Email: email, PasswordHash: hash, Role: role}
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}
		return profile(tx, user)
	})
	switch {
	case errors.Is(err, store.ErrDuplicate):
		return apperr.Conflict(apperr.CodeEmailAlreadyRegistered, "email already registered: %s", email)
	case err != nil:
		return apperr.Infrastructure(err, "failed to register user")
	}
	return nil
}

// Login checks credentials and issues a token.
func (s *Service) Login(ctx context.Context, req types.LoginRequest) (*types.LoginResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to look up user")
	}
	// unknown email and wrong password are indistinguishable
	if user == nil || !s.passwords.VerifyPassword(req.Password, user.PasswordHash) {
		s.logger.Infow("login rejected", observability.FieldUserEmail, req.Email)
		return nil, apperr.Unauthenticated(apperr.CodeInvalidCredentials, "invalid email or password")
	}

	token, err := s.tokens.IssueToken(identity.Principal{UserID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to issue token")
	}
	return &types.LoginResponse{Token: token, Email: user.Email, Role: user.Role}, nil
}
