package db

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/jonathan/job-portal/internal/types"
	"github.com/lib/pq"
)

const jobSelect = `SELECT j.id, j.employer_id, e.company_name, j.title, j.description, j.location,
	j.experience_required, j.category_id, c.name, j.open_from, j.vacancy, j.is_active, j.is_deleted, j.created_at
	FROM jobs j
	JOIN employers e ON e.id = j.employer_id
	JOIN categories c ON c.id = j.category_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (types.Job, error) {
	var j types.Job
	var exp sql.NullInt64
	err := row.Scan(&j.ID, &j.EmployerID, &j.CompanyName, &j.Title, &j.Description, &j.Location,
		&exp, &j.CategoryID, &j.CategoryName, &j.OpenFrom, &j.Vacancy, &j.IsActive, &j.IsDeleted, &j.CreatedAt)
	j.ExperienceRequired = intPtr(exp)
	return j, err
}

func (db *DB) CreateJob(ctx context.Context, j *types.Job) error {
	err := db.q.QueryRowContext(ctx,
		`INSERT INTO jobs (employer_id, title, description, location, experience_required, category_id, open_from, vacancy, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at`,
		j.EmployerID, j.Title, j.Description, j.Location, nullableInt(j.ExperienceRequired),
		j.CategoryID, j.OpenFrom, j.Vacancy, j.IsActive,
	).Scan(&j.ID, &j.CreatedAt)
	if err != nil {
		return errors.Wrap(translate(err), "failed to insert job")
	}
	return nil
}

func (db *DB) UpdateJob(ctx context.Context, j *types.Job) error {
	return db.execOne(ctx, "job", j.ID,
		`UPDATE jobs SET title = $1, description = $2, location = $3, experience_required = $4,
		 category_id = $5, open_from = $6, vacancy = $7, is_active = $8
		 WHERE id = $9`,
		j.Title, j.Description, j.Location, nullableInt(j.ExperienceRequired),
		j.CategoryID, j.OpenFrom, j.Vacancy, j.IsActive, j.ID)
}

func (db *DB) GetJob(ctx context.Context, id int64) (*types.Job, error) {
	j, err := scanJob(db.q.QueryRowContext(ctx, jobSelect+` WHERE j.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get job")
	}
	jobs := []types.Job{j}
	if err := db.attachSkills(ctx, jobs); err != nil {
		return nil, err
	}
	return &jobs[0], nil
}

func (db *DB) JobTitleExists(ctx context.Context, employerID int64, title string, excludeJobID int64) (bool, error) {
	var exists bool
	err := db.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM jobs WHERE employer_id = $1 AND title = $2 AND id <> $3 AND NOT is_deleted)`,
		employerID, title, excludeJobID,
	).Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, "failed to check job title")
	}
	return exists, nil
}

// SetJobSkills replaces the job's skill links.
func (db *DB) SetJobSkills(ctx context.Context, jobID int64, skillIDs []int64) error {
	if _, err := db.q.ExecContext(ctx, `DELETE FROM job_skills WHERE job_id = $1`, jobID); err != nil {
		return errors.Wrap(err, "failed to clear job skills")
	}
	if len(skillIDs) == 0 {
		return nil
	}
	_, err := db.q.ExecContext(ctx,
		`INSERT INTO job_skills (job_id, skill_id) SELECT $1, UNNEST($2::bigint[]) ON CONFLICT DO NOTHING`,
		jobID, pq.Array(skillIDs))
	if err != nil {
		return errors.Wrap(translate(err), "failed to link job skills")
	}
	return nil
}

func (db *DB) SoftDeleteJob(ctx context.Context, id int64) (bool, error) {
	res, err := db.q.ExecContext(ctx, `UPDATE jobs SET is_deleted = TRUE WHERE id = $1 AND NOT is_deleted`, id)
	if err != nil {
		return false, errors.Wrap(err, "failed to delete job")
	}
	return affected(res)
}

// DecrementVacancy takes a seat in one statement so concurrent hires cannot
// drive the count below zero.
func (db *DB) DecrementVacancy(ctx context.Context, id int64) (bool, error) {
	res, err := db.q.ExecContext(ctx,
		`UPDATE jobs SET vacancy = vacancy - 1,
		 is_active = CASE WHEN vacancy - 1 = 0 THEN FALSE ELSE is_active END
		 WHERE id = $1 AND vacancy > 0`, id)
	if err != nil {
		return false, errors.Wrap(err, "failed to reduce vacancy")
	}
	return affected(res)
}

func jobWhere(f types.JobFilter) (string, args) {
	var a args
	conds := []string{"NOT j.is_deleted"}
	if f.OnlyActive {
		conds = append(conds, "j.is_active")
	}
	if f.EmployerID != 0 {
		conds = append(conds, "j.employer_id = "+a.add(f.EmployerID))
	}
	if f.OpenBy != nil {
		cond := "j.open_from <= " + a.add(*f.OpenBy)
		if f.VisibleTo != 0 {
			cond = "(" + cond + " OR j.employer_id = " + a.add(f.VisibleTo) + ")"
		}
		conds = append(conds, cond)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		p := a.add("%" + s + "%")
		conds = append(conds, "(j.title ILIKE "+p+" OR j.description ILIKE "+p+")")
	}
	if l := strings.TrimSpace(f.Location); l != "" {
		conds = append(conds, "j.location ILIKE "+a.add("%"+l+"%"))
	}
	if c := strings.TrimSpace(f.Category); c != "" {
		conds = append(conds, "LOWER(c.name) = LOWER("+a.add(c)+")")
	}
	if f.MaxExperience != nil {
		conds = append(conds, "COALESCE(j.experience_required, 0) <= "+a.add(*f.MaxExperience))
	}
	if s := strings.TrimSpace(f.Skill); s != "" {
		conds = append(conds, `EXISTS (SELECT 1 FROM job_skills js JOIN skills s ON s.id = js.skill_id
			WHERE js.job_id = j.id AND LOWER(s.name) = LOWER(`+a.add(s)+`))`)
	}
	return " WHERE " + strings.Join(conds, " AND "), a
}

func (db *DB) ListJobs(ctx context.Context, f types.JobFilter) ([]types.Job, int, error) {
	where, a := jobWhere(f)

	var total int
	err := db.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM jobs j JOIN categories c ON c.id = j.category_id`+where, a...,
	).Scan(&total)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to count jobs")
	}

	query := jobSelect + where + ` ORDER BY j.created_at DESC, j.id DESC`
	if f.PageSize > 0 {
		query += " LIMIT " + a.add(f.PageSize) + " OFFSET " + a.add(f.Offset())
	}
	rows, err := db.q.QueryContext(ctx, query, a...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to list jobs")
	}
	defer rows.Close()

	var jobs []types.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, 0, errors.Wrap(err, "failed to scan job")
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "failed to iterate jobs")
	}
	if err := db.attachSkills(ctx, jobs); err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

func (db *DB) CountJobs(ctx context.Context, employerID int64) (int, error) {
	if employerID == 0 {
		return db.count(ctx, `SELECT COUNT(*) FROM jobs WHERE NOT is_deleted`)
	}
	return db.count(ctx, `SELECT COUNT(*) FROM jobs WHERE NOT is_deleted AND employer_id = $1`, employerID)
}

// attachSkills loads skills for every job in one round trip.
func (db *DB) attachSkills(ctx context.Context, jobs []types.Job) error {
	if len(jobs) == 0 {
		return nil
	}
	ids := make([]int64, len(jobs))
	index := make(map[int64]int, len(jobs))
	for i := range jobs {
		ids[i] = jobs[i].ID
		index[jobs[i].ID] = i
		jobs[i].Skills = []types.Skill{}
	}

	rows, err := db.q.QueryContext(ctx,
		`SELECT js.job_id, s.id, s.name FROM job_skills js JOIN skills s ON s.id = js.skill_id
		 WHERE js.job_id = ANY($1) ORDER BY s.id`, pq.Array(ids))
	if err != nil {
		return errors.Wrap(err, "failed to load job skills")
	}
	defer rows.Close()

	for rows.Next() {
		var jobID int64
		var s types.Skill
		if err := rows.Scan(&jobID, &s.ID, &s.Name); err != nil {
			return errors.Wrap(err, "failed to scan job skill")
		}
		if i, ok := index[jobID]; ok {
			jobs[i].Skills = append(jobs[i].Skills, s)
		}
	}
	return errors.Wrap(rows.Err(), "failed to iterate job skills")
}
