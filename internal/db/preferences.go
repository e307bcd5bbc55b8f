package db

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	"github.com/jonathan/job-portal/internal/types"
)

const preferenceSelect = `SELECT p.id, p.candidate_id, p.category_id, cat.name, p.experience, p.location, p.created_at,
	c.name, u.email
	FROM job_preferences p
	JOIN categories cat ON cat.id = p.category_id
	JOIN candidates c ON c.id = p.candidate_id
	JOIN users u ON u.id = c.user_id`

func scanPreference(row rowScanner) (types.JobPreference, error) {
	var p types.JobPreference
	var exp sql.NullInt64
	err := row.Scan(&p.ID, &p.CandidateID, &p.CategoryID, &p.CategoryName, &exp, &p.Location, &p.CreatedAt,
		&p.CandidateName, &p.CandidateEmail)
	p.Experience = intPtr(exp)
	return p, err
}

func (db *DB) CreatePreference(ctx context.Context, p *types.JobPreference) error {
	err := db.q.QueryRowContext(ctx,
		`INSERT INTO job_preferences (candidate_id, category_id, experience, location)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		p.CandidateID, p.CategoryID, nullableInt(p.Experience), p.Location,
	).Scan(&p.ID)
	if err != nil {
		return errors.Wrap(translate(err), "failed to insert preference")
	}
	stored, err := db.GetPreference(ctx, p.ID)
	if err != nil {
		return err
	}
	if stored != nil {
		*p = *stored
	}
	return nil
}

func (db *DB) GetPreference(ctx context.Context, id int64) (*types.JobPreference, error) {
	p, err := scanPreference(db.q.QueryRowContext(ctx, preferenceSelect+` WHERE p.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get preference")
	}
	return &p, nil
}

func (db *DB) UpdatePreference(ctx context.Context, p *types.JobPreference) error {
	return db.execOne(ctx, "preference", p.ID,
		`UPDATE job_preferences SET category_id = $1, experience = $2, location = $3 WHERE id = $4`,
		p.CategoryID, nullableInt(p.Experience), p.Location, p.ID)
}

func (db *DB) DeletePreference(ctx context.Context, id int64) error {
	return db.execOne(ctx, "preference", id, `DELETE FROM job_preferences WHERE id = $1`, id)
}

func (db *DB) ListPreferencesByCandidate(ctx context.Context, candidateID int64) ([]types.JobPreference, error) {
	return db.queryPreferences(ctx, preferenceSelect+` WHERE p.candidate_id = $1 ORDER BY p.id`, candidateID)
}

func (db *DB) ListPreferencesFor(ctx context.Context, categoryID int64, location string) ([]types.JobPreference, error) {
	return db.queryPreferences(ctx,
		preferenceSelect+` WHERE p.category_id = $1 AND p.location = $2 ORDER BY p.id`, categoryID, location)
}

func (db *DB) queryPreferences(ctx context.Context, query string, params ...any) ([]types.JobPreference, error) {
	rows, err := db.q.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list preferences")
	}
	defer rows.Close()

	var out []types.JobPreference
	for rows.Next() {
		p, err := scanPreference(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan preference")
		}
		out = append(out, p)
	}
	return out, errors.Wrap(rows.Err(), "failed to iterate preferences")
}
