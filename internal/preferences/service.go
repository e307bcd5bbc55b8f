// Package preferences manages candidates' standing job preferences and
// matches newly created jobs against them.
package preferences

import (
	"context"
	"strings"

	"github.com/jonathan/job-portal/internal/apperr"
	"github.com/jonathan/job-portal/internal/identity"
	"github.com/jonathan/job-portal/internal/observability"
	"github.com/jonathan/job-portal/internal/store"
	"github.com/jonathan/job-portal/internal/types"
	"github.com/jonathan/job-portal/internal/validation"
	"go.uber.org/zap"
)

// Service is the candidate-facing preference CRUD.
type Service struct {
	store  store.Store
	logger *zap.SugaredLogger
}

// NewService creates a preference service.
func NewService(st store.Store, logger *zap.SugaredLogger) *Service {
	return &Service{store: st, logger: observability.Component(logger, "preferences")}
}

// Create stores a new preference for the calling candidate.
func (s *Service) Create(ctx context.Context, in types.PreferenceInput) (*types.JobPreference, error) {
	candidate, err := identity.Candidate(ctx, s.store)
	if err != nil {
		return nil, err
	}
	if err := s.check(ctx, candidate.ID, 0, &in); err != nil {
		return nil, err
	}
	pref := &types.JobPreference{
		CandidateID: candidate.ID,
		CategoryID:  in.CategoryID,
		Experience:  in.Experience,
		Location:    in.Location,
	}
	if err := s.store.CreatePreference(ctx, pref); err != nil {
		return nil, apperr.Infrastructure(err, "failed to create preference")
	}
	s.logger.Infow("preference created", observability.FieldCandidateID, candidate.ID, "preference_id", pref.ID)
	return s.get(ctx, pref.ID)
}

// List returns the calling candidate's preferences.
func (s *Service) List(ctx context.Context) ([]types.JobPreference, error) {
	candidate, err := identity.Candidate(ctx, s.store)
	if err != nil {
		return nil, err
	}
	prefs, err := s.store.ListPreferencesByCandidate(ctx, candidate.ID)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to list preferences")
	}
	if prefs == nil {
		prefs = []types.JobPreference{}
	}
	return prefs, nil
}

// Get returns one of the calling candidate's preferences.
func (s *Service) Get(ctx context.Context, id int64) (*types.JobPreference, error) {
	candidate, err := identity.Candidate(ctx, s.store)
	if err != nil {
		return nil, err
	}
	return s.owned(ctx, candidate.ID, id)
}

// Update replaces one of the calling candidate's preferences.
func (s *Service) Update(ctx context.Context, id int64, in types.PreferenceInput) (*types.JobPreference, error) {
	candidate, err := identity.Candidate(ctx, s.store)
	if err != nil {
		return nil, err
	}
	pref, err := s.owned(ctx, candidate.ID, id)
	if err != nil {
		return nil, err
	}
	if err := s.check(ctx, candidate.ID, id, &in); err != nil {
		return nil, err
	}
	pref.CategoryID = in.CategoryID
	pref.Experience = in.Experience
	pref.Location = in.Location
	if err := s.store.UpdatePreference(ctx, pref); err != nil {
		return nil, apperr.Infrastructure(err, "failed to update preference")
	}
	return s.get(ctx, id)
}

// Delete removes one of the calling candidate's preferences.
func (s *Service) Delete(ctx context.Context, id int64) error {
	candidate, err := identity.Candidate(ctx, s.store)
	if err != nil {
		return err
	}
	if _, err := s.owned(ctx, candidate.ID, id); err != nil {
		return err
	}
	if err := s.store.DeletePreference(ctx, id); err != nil {
		return apperr.Infrastructure(err, "failed to delete preference")
	}
	return nil
}

// check validates in, normalizes its location and rejects a duplicate of
// another preference the candidate already holds.
func (s *Service) check(ctx context.Context, candidateID, selfID int64, in *types.PreferenceInput) error {
	in.Location = strings.TrimSpace(in.Location)
	if err := validation.Struct(*in); err != nil {
		return err
	}
	category, err := s.store.GetCategory(ctx, in.CategoryID)
	if err != nil {
		return apperr.Infrastructure(err, "failed to load category")
	}
	if category == nil {
		return apperr.NotFound(apperr.CodeCategoryNotFound, "category not found: %d", in.CategoryID)
	}
	existing, err := s.store.ListPreferencesByCandidate(ctx, candidateID)
	if err != nil {
		return apperr.Infrastructure(err, "failed to list preferences")
	}
	for _, p := range existing {
		if p.ID != selfID && p.CategoryID == in.CategoryID && p.Location == in.Location &&
			p.MinimumExperience() == minimum(in.Experience) {
			return apperr.Conflict(apperr.CodePreferenceAlreadyExists, "an identical preference already exists")
		}
	}
	return nil
}

func minimum(experience *int) int {
	if experience == nil {
		return 0
	}
	return *experience
}

func (s *Service) owned(ctx context.Context, candidateID, id int64) (*types.JobPreference, error) {
	pref, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if pref.CandidateID != candidateID {
		return nil, apperr.Forbidden(apperr.CodePreferenceNotByCandidate, "preference %d does not belong to this candidate", id)
	}
	return pref, nil
}

func (s *Service) get(ctx context.Context, id int64) (*types.JobPreference, error) {
	pref, err := s.store.GetPreference(ctx, id)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to load preference")
	}
	if pref == nil {
		return nil, apperr.NotFound(apperr.CodePreferenceNotFound, "preference not found: %d", id)
	}
	return pref, nil
}
