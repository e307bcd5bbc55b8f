package accounts

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/jonathan/job-portal/internal/apperr"
	"github.com/jonathan/job-portal/internal/identity"
	"github.com/jonathan/job-portal/internal/observability"
	"github.com/jonathan/job-portal/internal/store"
	"github.com/jonathan/job-portal/internal/types"
	"github.com/jonathan/job-portal/internal/validation"
)

// Profile returns the caller's own account view.
func (s *Service) Profile(ctx context.Context) (*types.Profile, error) {
	p, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}
	switch p.Role {
	case types.RoleEmployer:
		e, err := identity.Employer(ctx, s.store)
		if err != nil {
			return nil, err
		}
		return &types.Profile{Email: e.Email, Role: p.Role, Name: e.Name, CompanyName: e.CompanyName}, nil
	case types.RoleCandidate:
		c, err := identity.Candidate(ctx, s.store)
		if err != nil {
			return nil, err
		}
		return &types.Profile{Email: c.Email, Role: p.Role, Name: c.Name}, nil
	default:
		return &types.Profile{Email: p.Email, Role: p.Role}, nil
	}
}

// UpdateProfile edits the caller's name, email and, for employers, company name.
func (s *Service) UpdateProfile(ctx context.Context, req types.UpdateProfileRequest) (*types.Profile, error) {
	p, err := identity.Require(ctx, types.RoleEmployer, types.RoleCandidate)
	if err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	emailChanged := !strings.EqualFold(req.Email, p.Email)
	if emailChanged {
		taken, err := s.store.GetUserByEmail(ctx, req.Email)
		if err != nil {
			return nil, apperr.Infrastructure(err, "failed to look up user")
		}
		if taken != nil {
			return nil, apperr.Conflict(apperr.CodeEmailAlreadyRegistered, "email already registered: %s", req.Email)
		}
	}

	out := &types.Profile{Email: req.Email, Role: p.Role, Name: req.Name}
	var update func(tx store.Store) error
	if p.Role == types.RoleEmployer {
		e, err := identity.Employer(ctx, s.store)
		if err != nil {
			return nil, err
		}
		if req.CompanyName == "" {
			req.CompanyName = e.CompanyName
		}
		e.Name, e.CompanyName = req.Name, req.CompanyName
		out.CompanyName = e.CompanyName
		update = func(tx store.Store) error { return tx.UpdateEmployer(ctx, e) }
	} else {
		c, err := identity.Candidate(ctx, s.store)
		if err != nil {
			return nil, err
		}
		c.Name = req.Name
		update = func(tx store.Store) error { return tx.UpdateCandidate(ctx, c) }
	}

	err = s.store.WithTx(ctx, func(tx store.Store) error {
		if emailChanged {
			if err := tx.UpdateUserEmail(ctx, p.UserID, req.Email); err != nil {
				return err
			}
		}
		return update(tx)
	})
	switch {
	case errors.Is(err, store.ErrDuplicate):
		return nil, apperr.Conflict(apperr.CodeEmailAlreadyRegistered, "email already registered: %s", req.Email)
	case err != nil:
		return nil, apperr.Infrastructure(err, "failed to update profile")
	}

	if emailChanged {
		token, err := s.tokens.IssueToken(identity.Principal{UserID: p.UserID, Email: req.Email, Role: p.Role})
		if err != nil {
			return nil, apperr.Infrastructure(err, "failed to issue token")
		}
		out.Token = token
	}
	s.logger.Infow("profile updated", observability.FieldUserEmail, req.Email, observability.FieldRole, p.Role)
	return out, nil
}
