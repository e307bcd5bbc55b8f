package catalog

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/jonathan/job-portal/internal/apperr"
	"github.com/jonathan/job-portal/internal/schemas"
	"github.com/jonathan/job-portal/internal/store"
	"github.com/jonathan/job-portal/internal/types"
)

// ReferenceData is a seed document.
type ReferenceData struct {
	Statuses   []types.Status `json:"statuses"`
	Skills     []string       `json:"skills"`
	Categories []string       `json:"categories"`
}

// SeedResult counts rows created by Seed.
type SeedResult struct {
	Statuses   int
	Skills     int
	Categories int
}

// ParseReferenceData validates doc against the reference data schema and decodes it.
func ParseReferenceData(doc []byte) (*ReferenceData, error) {
	if err := schemas.ValidateReferenceData(doc); err != nil {
		return nil, err
	}
	var data ReferenceData
	if err := json.Unmarshal(doc, &data); err != nil {
		return nil, errors.Wrap(err, "failed to decode reference data")
	}
	return &data, nil
}

// Seed upserts reference data in one unit of work. Existing rows are matched
// by name; a status whose role changed is updated. Every reserved role must
// have a status once seeding completes.
func (s *Service) Seed(ctx context.Context, data *ReferenceData) (SeedResult, error) {
	var res SeedResult
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		res = SeedResult{}
		for _, st := range data.Statuses {
			created, err := seedStatus(ctx, tx, st)
			if err != nil {
				return err
			}
			if created {
				res.Statuses++
			}
		}
		for _, n := range data.Skills {
			existing, err := tx.GetSkillByName(ctx, n)
			if err != nil {
				return errors.Wrapf(err, "failed to look up skill %q", n)
			}
			if existing != nil {
				continue
			}
			if err := tx.CreateSkill(ctx, &types.Skill{Name: n}); err != nil {
				return errors.Wrapf(err, "failed to create skill %q", n)
			}
			res.Skills++
		}
		for _, n := range data.Categories {
			existing, err := tx.GetCategoryByName(ctx, n)
			if err != nil {
				return errors.Wrapf(err, "failed to look up category %q", n)
			}
			if existing != nil {
				continue
			}
			if err := tx.CreateCategory(ctx, &types.Category{Name: n}); err != nil {
				return errors.Wrapf(err, "failed to create category %q", n)
			}
			res.Categories++
		}
		return requireReservedRoles(ctx, tx)
	})
	if err != nil {
		return SeedResult{}, err
	}
	s.logger.Infow("reference data seeded",
		"statuses", res.Statuses,
		"skills", res.Skills,
		"categories", res.Categories,
	)
	return res, nil
}

func seedStatus(ctx context.Context, tx store.ReferenceData, st types.Status) (bool, error) {
	if !st.Role.Valid() {
		return false, apperr.Validation(apperr.CodeInvalidInput, "status %q has unknown role %q", st.Name, st.Role)
	}
	existing, err := tx.GetStatusByName(ctx, st.Name)
	if err != nil {
		return false, errors.Wrapf(err, "failed to look up status %q", st.Name)
	}
	if existing == nil {
		if err := tx.CreateStatus(ctx, &types.Status{Name: st.Name, Role: st.Role}); err != nil {
			return false, errors.Wrapf(err, "failed to create status %q", st.Name)
		}
		return true, nil
	}
	if existing.Role != st.Role {
		existing.Role = st.Role
		if err := tx.UpdateStatus(ctx, existing); err != nil {
			return false, errors.Wrapf(err, "failed to update status %q", st.Name)
		}
	}
	return false, nil
}

func requireReservedRoles(ctx context.Context, tx store.ReferenceData) error {
	for _, role := range types.ReservedStatusRoles {
		st, err := tx.GetStatusByRole(ctx, role)
		if err != nil {
			return errors.Wrapf(err, "failed to look up %s status", role)
		}
		if st == nil {
			return apperr.Validation(apperr.CodeInvalidInput, "reference data has no status for role %s", role)
		}
	}
	return nil
}
