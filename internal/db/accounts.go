package db

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	"github.com/jonathan/job-portal/internal/types"
)

// errMissing is returned by row-targeted writes that matched nothing.
func errMissing(kind string, id int64) error {
	return errors.Newf("%s not found: %d", kind, id)
}

func (db *DB) execOne(ctx context.Context, kind string, id int64, query string, params ...any) error {
	res, err := db.q.ExecContext(ctx, query, params...)
	if err != nil {
		return errors.Wrapf(translate(err), "failed to update %s", kind)
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return errMissing(kind, id)
	}
	return nil
}

func (db *DB) count(ctx context.Context, query string, params ...any) (int, error) {
	var n int
	if err := db.q.QueryRowContext(ctx, query, params...).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "failed to count rows")
	}
	return n, nil
}

func (db *DB) CreateUser(ctx context.Context, u *types.User) error {
	err := db.q.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash, role) VALUES ($1, $2, $3) RETURNING id, created_at`,
		u.Email, u.PasswordHash, string(u.Role),
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return errors.Wrap(translate(err), "failed to insert user")
	}
	return nil
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	var u types.User
	var role string
	err := db.q.QueryRowContext(ctx,
		`SELECT id, email, password_hash, role, created_at FROM users WHERE LOWER(email) = LOWER($1)`,
		email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user")
	}
	u.Role = types.Role(role)
	return &u, nil
}

func (db *DB) UpdateUserEmail(ctx context.Context, userID int64, email string) error {
	return db.execOne(ctx, "user", userID, `UPDATE users SET email = $1 WHERE id = $2`, email, userID)
}

func (db *DB) ListLatestUsers(ctx context.Context, limit int) ([]types.User, error) {
	query := `SELECT id, email, role, created_at FROM users ORDER BY created_at DESC, id DESC`
	var params []any
	if limit > 0 {
		query += ` LIMIT $1`
		params = append(params, limit)
	}
	rows, err := db.q.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}
	defer rows.Close()

	var users []types.User
	for rows.Next() {
		var u types.User
		var role string
		if err := rows.Scan(&u.ID, &u.Email, &role, &u.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan user")
		}
		u.Role = types.Role(role)
		users = append(users, u)
	}
	return users, errors.Wrap(rows.Err(), "failed to iterate users")
}

const employerColumns = `e.id, e.user_id, e.name, e.company_name, u.email
	FROM employers e JOIN users u ON u.id = e.user_id`

func (db *DB) employer(ctx context.Context, where string, arg any) (*types.Employer, error) {
	var e types.Employer
	err := db.q.QueryRowContext(ctx, `SELECT `+employerColumns+` WHERE `+where, arg).
		Scan(&e.ID, &e.UserID, &e.Name, &e.CompanyName, &e.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get employer")
	}
	return &e, nil
}

func (db *DB) CreateEmployer(ctx context.Context, e *types.Employer) error {
	err := db.q.QueryRowContext(ctx,
		`INSERT INTO employers (user_id, name, company_name) VALUES ($1, $2, $3)
		 RETURNING id, (SELECT email FROM users WHERE id = $1)`,
		e.UserID, e.Name, e.CompanyName,
	).Scan(&e.ID, &e.Email)
	if err != nil {
		return errors.Wrap(translate(err), "failed to insert employer")
	}
	return nil
}

func (db *DB) GetEmployer(ctx context.Context, id int64) (*types.Employer, error) {
	return db.employer(ctx, `e.id = $1`, id)
}

func (db *DB) GetEmployerByEmail(ctx context.Context, email string) (*types.Employer, error) {
	return db.employer(ctx, `LOWER(u.email) = LOWER($1)`, email)
}

func (db *DB) UpdateEmployer(ctx context.Context, e *types.Employer) error {
	return db.execOne(ctx, "employer", e.ID,
		`UPDATE employers SET name = $1, company_name = $2 WHERE id = $3`, e.Name, e.CompanyName, e.ID)
}

func (db *DB) ListEmployers(ctx context.Context) ([]types.Employer, error) {
	rows, err := db.q.QueryContext(ctx, `SELECT `+employerColumns+` ORDER BY e.id`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list employers")
	}
	defer rows.Close()

	var out []types.Employer
	for rows.Next() {
		var e types.Employer
		if err := rows.Scan(&e.ID, &e.UserID, &e.Name, &e.CompanyName, &e.Email); err != nil {
			return nil, errors.Wrap(err, "failed to scan employer")
		}
		out = append(out, e)
	}
	return out, errors.Wrap(rows.Err(), "failed to iterate employers")
}

func (db *DB) CountEmployers(ctx context.Context) (int, error) {
	return db.count(ctx, `SELECT COUNT(*) FROM employers`)
}

const candidateColumns = `c.id, c.user_id, c.name, u.email
	FROM candidates c JOIN users u ON u.id = c.user_id`

func (db *DB) candidate(ctx context.Context, where string, arg any) (*types.Candidate, error) {
	var c types.Candidate
	err := db.q.QueryRowContext(ctx, `SELECT `+candidateColumns+` WHERE `+where, arg).
		Scan(&c.ID, &c.UserID, &c.Name, &c.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get candidate")
	}
	return &c, nil
}

func (db *DB) CreateCandidate(ctx context.Context, c *types.Candidate) error {
	err := db.q.QueryRowContext(ctx,
		`INSERT INTO candidates (user_id, name) VALUES ($1, $2)
		 RETURNING id, (SELECT email FROM users WHERE id = $1)`,
		c.UserID, c.Name,
	).Scan(&c.ID, &c.Email)
	if err != nil {
		return errors.Wrap(translate(err), "failed to insert candidate")
	}
	return nil
}

func (db *DB) GetCandidate(ctx context.Context, id int64) (*types.Candidate, error) {
	return db.candidate(ctx, `c.id = $1`, id)
}

func (db *DB) GetCandidateByEmail(ctx context.Context, email string) (*types.Candidate, error) {
	return db.candidate(ctx, `LOWER(u.email) = LOWER($1)`, email)
}

func (db *DB) UpdateCandidate(ctx context.Context, c *types.Candidate) error {
	return db.execOne(ctx, "candidate", c.ID, `UPDATE candidates SET name = $1 WHERE id = $2`, c.Name, c.ID)
}

func (db *DB) ListCandidates(ctx context.Context) ([]types.Candidate, error) {
	rows, err := db.q.QueryContext(ctx, `SELECT `+candidateColumns+` ORDER BY c.id`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list candidates")
	}
	defer rows.Close()

	var out []types.Candidate
	for rows.Next() {
		var c types.Candidate
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Email); err != nil {
			return nil, errors.Wrap(err, "failed to scan candidate")
		}
		out = append(out, c)
	}
	return out, errors.Wrap(rows.Err(), "failed to iterate candidates")
}

func (db *DB) CountCandidates(ctx context.Context) (int, error) {
	return db.count(ctx, `SELECT COUNT(*) FROM candidates`)
}
