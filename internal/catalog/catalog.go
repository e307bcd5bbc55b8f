// Package catalog administers reference data: skills, categories and the
// application status catalog.
package catalog

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jonathan/job-portal/internal/apperr"
	"github.com/jonathan/job-portal/internal/identity"
	"github.com/jonathan/job-portal/internal/observability"
	"github.com/jonathan/job-portal/internal/store"
	"github.com/jonathan/job-portal/internal/types"
	"github.com/jonathan/job-portal/internal/validation"
	"go.uber.org/zap"
)

// Service is the reference data administration.
type Service struct {
	store  store.Store
	logger *zap.SugaredLogger
}

// NewService creates a catalog service.
func NewService(st store.Store, logger *zap.SugaredLogger) *Service {
	return &Service{store: st, logger: observability.Component(logger, "catalog")}
}

func admin(ctx context.Context) error {
	_, err := identity.Require(ctx, types.RoleAdmin)
	return err
}

func name(in types.NameInput) (string, error) {
	in.Name = in.Normalized()
	if err := validation.Struct(in); err != nil {
		return "", err
	}
	return in.Name, nil
}

// ListSkills returns every skill.
func (s *Service) ListSkills(ctx context.Context) ([]types.Skill, error) {
	if _, err := identity.Require(ctx); err != nil {
		return nil, err
	}
	skills, err := s.store.ListSkills(ctx)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to list skills")
	}
	return skills, nil
}

// GetSkill returns one skill.
func (s *Service) GetSkill(ctx context.Context, id int64) (*types.Skill, error) {
	if _, err := identity.Require(ctx); err != nil {
		return nil, err
	}
	return s.skill(ctx, id)
}

// CreateSkill adds a skill with a unique name.
func (s *Service) CreateSkill(ctx context.Context, in types.NameInput) (*types.Skill, error) {
	if err := admin(ctx); err != nil {
		return nil, err
	}
	n, err := name(in)
	if err != nil {
		return nil, err
	}
	if err := s.skillNameFree(ctx, n, 0); err != nil {
		return nil, err
	}
	skill := &types.Skill{Name: n}
	if err := s.store.CreateSkill(ctx, skill); err != nil {
		return nil, apperr.Infrastructure(err, "failed to create skill")
	}
	s.logger.Infow("skill created", "skill", n)
	return skill, nil
}

// UpdateSkill renames a skill.
func (s *Service) UpdateSkill(ctx context.Context, id int64, in types.NameInput) (*types.Skill, error) {
	if err := admin(ctx); err != nil {
		return nil, err
	}
	n, err := name(in)
	if err != nil {
		return nil, err
	}
	if _, err := s.skill(ctx, id); err != nil {
		return nil, err
	}
	if err := s.skillNameFree(ctx, n, id); err != nil {
		return nil, err
	}
	skill := &types.Skill{ID: id, Name: n}
	if err := s.store.UpdateSkill(ctx, skill); err != nil {
		return nil, apperr.Infrastructure(err, "failed to update skill")
	}
	return skill, nil
}

// DeleteSkill removes a skill and its links to jobs.
func (s *Service) DeleteSkill(ctx context.Context, id int64) error {
	if err := admin(ctx); err != nil {
		return err
	}
	if _, err := s.skill(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteSkill(ctx, id); err != nil {
		return apperr.Infrastructure(err, "failed to delete skill")
	}
	return nil
}

func (s *Service) skill(ctx context.Context, id int64) (*types.Skill, error) {
	skill, err := s.store.GetSkill(ctx, id)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to load skill")
	}
	if skill == nil {
		return nil, apperr.NotFound(apperr.CodeSkillNotFound, "skill not found: %d", id)
	}
	return skill, nil
}

func (s *Service) skillNameFree(ctx context.Context, n string, selfID int64) error {
	existing, err := s.store.GetSkillByName(ctx, n)
	if err != nil {
		return apperr.Infrastructure(err, "failed to look up skill")
	}
	if existing != nil && existing.ID != selfID {
		return apperr.Conflict(apperr.CodeSkillExists, "skill %q already exists", n)
	}
	return nil
}

// ListCategories returns every category.
func (s *Service) ListCategories(ctx context.Context) ([]types.Category, error) {
	if _, err := identity.Require(ctx); err != nil {
		return nil, err
	}
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to list categories")
	}
	return categories, nil
}

// GetCategory returns one category.
func (s *Service) GetCategory(ctx context.Context, id int64) (*types.Category, error) {
	if _, err := identity.Require(ctx); err != nil {
		return nil, err
	}
	return s.category(ctx, id)
}

// CreateCategory adds a category with a unique name.
func (s *Service) CreateCategory(ctx context.Context, in types.NameInput) (*types.Category, error) {
	if err := admin(ctx); err != nil {
		return nil, err
	}
	n, err := name(in)
	if err != nil {
		return nil, err
	}
	if err := s.categoryNameFree(ctx, n, 0); err != nil {
		return nil, err
	}
	category := &types.Category{Name: n}
	if err := s.store.CreateCategory(ctx, category); err != nil {
		return nil, apperr.Infrastructure(err, "failed to create category")
	}
	s.logger.Infow("category created", "category", n)
	return category, nil
}

// UpdateCategory renames a category.
func (s *Service) UpdateCategory(ctx context.Context, id int64, in types.NameInput) (*types.Category, error) {
	if err := admin(ctx); err != nil {
		return nil, err
	}
	n, err := name(in)
	if err != nil {
		return nil, err
	}
	if _, err := s.category(ctx, id); err != nil {
		return nil, err
	}
	if err := s.categoryNameFree(ctx, n, id); err != nil {
		return nil, err
	}
	category := &types.Category{ID: id, Name: n}
	if err := s.store.UpdateCategory(ctx, category); err != nil {
		return nil, apperr.Infrastructure(err, "failed to update category")
	}
	return category, nil
}

// DeleteCategory removes a category no job or preference uses.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	if err := admin(ctx); err != nil {
		return err
	}
	if _, err := s.category(ctx, id); err != nil {
		return err
	}
	err := s.store.DeleteCategory(ctx, id)
	if errors.Is(err, store.ErrReferenced) {
		return apperr.Conflict(apperr.CodeCategoryInUse, "category %d is still used by jobs or preferences", id)
	}
	if err != nil {
		return apperr.Infrastructure(err, "failed to delete category")
	}
	return nil
}

func (s *Service) category(ctx context.Context, id int64) (*types.Category, error) {
	category, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to load category")
	}
	if category == nil {
		return nil, apperr.NotFound(apperr.CodeCategoryNotFound, "category not found: %d", id)
	}
	return category, nil
}

func (s *Service) categoryNameFree(ctx context.Context, n string, selfID int64) error {
	existing, err := s.store.GetCategoryByName(ctx, n)
	if err != nil {
		return apperr.Infrastructure(err, "failed to look up category")
	}
	if existing != nil && existing.ID != selfID {
		return apperr.Conflict(apperr.CodeCategoryExists, "category %q already exists", n)
	}
	return nil
}
