package db

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/jonathan/job-portal/internal/types"
	"github.com/lib/pq"
)

const applicationSelect = `SELECT a.id, a.candidate_id, a.job_id, a.experience, a.note,
	a.cover_letter_name, a.resume_name, a.status_id, a.applied_at,
	s.name, s.role, j.title, j.location, j.employer_id, e.company_name, c.name, u.email
	FROM applications a
	JOIN statuses s ON s.id = a.status_id
	JOIN jobs j ON j.id = a.job_id
	JOIN employers e ON e.id = j.employer_id
	JOIN candidates c ON c.id = a.candidate_id
	JOIN users u ON u.id = c.user_id`

func scanApplication(row rowScanner) (types.Application, error) {
	var a types.Application
	var role string
	err := row.Scan(&a.ID, &a.CandidateID, &a.JobID, &a.Experience, &a.Note,
		&a.CoverLetterName, &a.ResumeName, &a.StatusID, &a.AppliedAt,
		&a.StatusName, &role, &a.JobTitle, &a.JobLocation, &a.EmployerID, &a.CompanyName,
		&a.CandidateName, &a.CandidateEmail)
	a.StatusRole = types.StatusRole(role)
	return a, err
}

func (db *DB) CreateApplication(ctx context.Context, a *types.Application) error {
	err := db.q.QueryRowContext(ctx,
		`INSERT INTO applications (candidate_id, job_id, experience, note, cover_letter_name, resume_name, status_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		a.CandidateID, a.JobID, a.Experience, a.Note, a.CoverLetterName, a.ResumeName, a.StatusID,
	).Scan(&a.ID)
	if err != nil {
		return errors.Wrap(translate(err), "failed to insert application")
	}
	stored, err := db.GetApplication(ctx, a.ID)
	if err != nil {
		return err
	}
	if stored != nil {
		*a = *stored
	}
	return nil
}

func (db *DB) GetApplication(ctx context.Context, id int64) (*types.Application, error) {
	a, err := scanApplication(db.q.QueryRowContext(ctx, applicationSelect+` WHERE a.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get application")
	}
	return &a, nil
}

func (db *DB) ApplicationsFor(ctx context.Context, candidateID, jobID int64) ([]types.Application, error) {
	return db.queryApplications(ctx,
		applicationSelect+` WHERE a.candidate_id = $1 AND a.job_id = $2 ORDER BY a.id`, candidateID, jobID)
}

// CompareAndSetStatus only moves the row if no one else moved it first.
func (db *DB) CompareAndSetStatus(ctx context.Context, id, fromStatusID, toStatusID int64) (bool, error) {
	res, err := db.q.ExecContext(ctx,
		`UPDATE applications SET status_id = $1 WHERE id = $2 AND status_id = $3`,
		toStatusID, id, fromStatusID)
	if err != nil {
		return false, errors.Wrap(translate(err), "failed to update application status")
	}
	return affected(res)
}

func applicationWhere(f types.ApplicationFilter) (string, args) {
	var a args
	var conds []string
	if f.JobID != 0 {
		conds = append(conds, "a.job_id = "+a.add(f.JobID))
	}
	if f.CandidateID != 0 {
		conds = append(conds, "a.candidate_id = "+a.add(f.CandidateID))
	}
	if f.EmployerID != 0 {
		conds = append(conds, "j.employer_id = "+a.add(f.EmployerID))
	}
	if len(f.ExcludeRoles) > 0 {
		conds = append(conds, "NOT (s.role = ANY("+a.add(pq.Array(roleNames(f.ExcludeRoles)))+"))")
	}
	if len(f.OnlyRoles) > 0 {
		conds = append(conds, "s.role = ANY("+a.add(pq.Array(roleNames(f.OnlyRoles)))+")")
	}
	if st := strings.TrimSpace(f.Status); st != "" {
		conds = append(conds, "LOWER(s.name) = LOWER("+a.add(st)+")")
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		p := a.add("%" + q + "%")
		conds = append(conds, "(j.title ILIKE "+p+" OR c.name ILIKE "+p+" OR e.company_name ILIKE "+p+")")
	}
	if len(conds) == 0 {
		return "", a
	}
	return " WHERE " + strings.Join(conds, " AND "), a
}

func roleNames(roles []types.StatusRole) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

const applicationFrom = ` FROM applications a
	JOIN statuses s ON s.id = a.status_id
	JOIN jobs j ON j.id = a.job_id
	JOIN employers e ON e.id = j.employer_id
	JOIN candidates c ON c.id = a.candidate_id`

func (db *DB) ListApplications(ctx context.Context, f types.ApplicationFilter) ([]types.Application, int, error) {
	where, a := applicationWhere(f)
	total, err := db.count(ctx, `SELECT COUNT(*)`+applicationFrom+where, a...)
	if err != nil {
		return nil, 0, err
	}

	query := applicationSelect + where + ` ORDER BY a.applied_at DESC, a.id DESC`
	if f.PageSize > 0 {
		query += " LIMIT " + a.add(f.PageSize) + " OFFSET " + a.add(f.Offset())
	}
	apps, err := db.queryApplications(ctx, query, a...)
	if err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

func (db *DB) CountApplications(ctx context.Context, f types.ApplicationFilter) (int, error) {
	where, a := applicationWhere(f)
	return db.count(ctx, `SELECT COUNT(*)`+applicationFrom+where, a...)
}

func (db *DB) queryApplications(ctx context.Context, query string, params ...any) ([]types.Application, error) {
	rows, err := db.q.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list applications")
	}
	defer rows.Close()

	var out []types.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan application")
		}
		out = append(out, a)
	}
	return out, errors.Wrap(rows.Err(), "failed to iterate applications")
}
