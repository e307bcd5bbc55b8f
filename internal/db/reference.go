package db

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/jonathan/job-portal/internal/types"
	"github.com/lib/pq"
)

// named covers the id/name reference tables.
type named struct {
	table string
	kind  string
}

var (
	skillsTable     = named{table: "skills", kind: "skill"}
	categoriesTable = named{table: "categories", kind: "category"}
)

func (db *DB) listNamed(ctx context.Context, t named, where string, params ...any) ([]types.Skill, error) {
	query := `SELECT id, name FROM ` + t.table
	if where != "" {
		query += ` WHERE ` + where
	}
	query += ` ORDER BY id`
	rows, err := db.q.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %s", t.table)
	}
	defer rows.Close()

	var out []types.Skill
	for rows.Next() {
		var s types.Skill
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, errors.Wrapf(err, "failed to scan %s", t.kind)
		}
		out = append(out, s)
	}
	return out, errors.Wrapf(rows.Err(), "failed to iterate %s", t.table)
}

func (db *DB) getNamed(ctx context.Context, t named, where string, arg any) (int64, string, bool, error) {
	var id int64
	var name string
	err := db.q.QueryRowContext(ctx, `SELECT id, name FROM `+t.table+` WHERE `+where, arg).Scan(&id, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", false, nil
	}
	if err != nil {
		return 0, "", false, errors.Wrapf(err, "failed to get %s", t.kind)
	}
	return id, name, true, nil
}

func (db *DB) insertNamed(ctx context.Context, t named, name string) (int64, error) {
	var id int64
	err := db.q.QueryRowContext(ctx, `INSERT INTO `+t.table+` (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	if err != nil {
		return 0, errors.Wrapf(translate(err), "failed to insert %s", t.kind)
	}
	return id, nil
}

func (db *DB) ListSkills(ctx context.Context) ([]types.Skill, error) {
	return db.listNamed(ctx, skillsTable, "")
}

func (db *DB) GetSkill(ctx context.Context, id int64) (*types.Skill, error) {
	gotID, name, ok, err := db.getNamed(ctx, skillsTable, `id = $1`, id)
	if err != nil || !ok {
		return nil, err
	}
	return &types.Skill{ID: gotID, Name: name}, nil
}

func (db *DB) GetSkillByName(ctx context.Context, name string) (*types.Skill, error) {
	gotID, gotName, ok, err := db.getNamed(ctx, skillsTable, `LOWER(name) = LOWER($1)`, name)
	if err != nil || !ok {
		return nil, err
	}
	return &types.Skill{ID: gotID, Name: gotName}, nil
}

func (db *DB) GetSkillsByNames(ctx context.Context, names []string) ([]types.Skill, error) {
	if len(names) == 0 {
		return nil, nil
	}
	lowered := make([]string, len(names))
	for i, n := range names {
		lowered[i] = strings.ToLower(n)
	}
	return db.listNamed(ctx, skillsTable, `LOWER(name) = ANY($1)`, pq.Array(lowered))
}

func (db *DB) CreateSkill(ctx context.Context, s *types.Skill) error {
	id, err := db.insertNamed(ctx, skillsTable, s.Name)
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}

func (db *DB) UpdateSkill(ctx context.Context, s *types.Skill) error {
	return db.execOne(ctx, "skill", s.ID, `UPDATE skills SET name = $1 WHERE id = $2`, s.Name, s.ID)
}

// DeleteSkill drops the skill and, via cascade, its job links.
func (db *DB) DeleteSkill(ctx context.Context, id int64) error {
	return db.execOne(ctx, "skill", id, `DELETE FROM skills WHERE id = $1`, id)
}

func (db *DB) ListCategories(ctx context.Context) ([]types.Category, error) {
	rows, err := db.listNamed(ctx, categoriesTable, "")
	if err != nil {
		return nil, err
	}
	out := make([]types.Category, len(rows))
	for i, r := range rows {
		out[i] = types.Category{ID: r.ID, Name: r.Name}
	}
	return out, nil
}

func (db *DB) GetCategory(ctx context.Context, id int64) (*types.Category, error) {
	gotID, name, ok, err := db.getNamed(ctx, categoriesTable, `id = $1`, id)
	if err != nil || !ok {
		return nil, err
	}
	return &types.Category{ID: gotID, Name: name}, nil
}

func (db *DB) GetCategoryByName(ctx context.Context, name string) (*types.Category, error) {
	gotID, gotName, ok, err := db.getNamed(ctx, categoriesTable, `LOWER(name) = LOWER($1)`, name)
	if err != nil || !ok {
		return nil, err
	}
	return &types.Category{ID: gotID, Name: gotName}, nil
}

func (db *DB) CreateCategory(ctx context.Context, c *types.Category) error {
	id, err := db.insertNamed(ctx, categoriesTable, c.Name)
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (db *DB) UpdateCategory(ctx context.Context, c *types.Category) error {
	return db.execOne(ctx, "category", c.ID, `UPDATE categories SET name = $1 WHERE id = $2`, c.Name, c.ID)
}

// DeleteCategory relies on the foreign keys from jobs and job_preferences
// to refuse deleting a category in use.
func (db *DB) DeleteCategory(ctx context.Context, id int64) error {
	return db.execOne(ctx, "category", id, `DELETE FROM categories WHERE id = $1`, id)
}

func (db *DB) status(ctx context.Context, where string, arg any) (*types.Status, error) {
	var s types.Status
	var role string
	err := db.q.QueryRowContext(ctx, `SELECT id, name, role FROM statuses WHERE `+where+` ORDER BY id LIMIT 1`, arg).
		Scan(&s.ID, &s.Name, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get status")
	}
	s.Role = types.StatusRole(role)
	return &s, nil
}

func (db *DB) ListStatuses(ctx context.Context) ([]types.Status, error) {
	rows, err := db.q.QueryContext(ctx, `SELECT id, name, role FROM statuses ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list statuses")
	}
	defer rows.Close()

	var out []types.Status
	for rows.Next() {
		var s types.Status
		var role string
		if err := rows.Scan(&s.ID, &s.Name, &role); err != nil {
			return nil, errors.Wrap(err, "failed to scan status")
		}
		s.Role = types.StatusRole(role)
		out = append(out, s)
	}
	return out, errors.Wrap(rows.Err(), "failed to iterate statuses")
}

func (db *DB) GetStatus(ctx context.Context, id int64) (*types.Status, error) {
	return db.status(ctx, `id = $1`, id)
}

func (db *DB) GetStatusByName(ctx context.Context, name string) (*types.Status, error) {
	return db.status(ctx, `LOWER(name) = LOWER($1)`, name)
}

// GetStatusByRole returns the lowest-id status carrying role.
func (db *DB) GetStatusByRole(ctx context.Context, role types.StatusRole) (*types.Status, error) {
	return db.status(ctx, `role = $1`, string(role))
}

func (db *DB) CreateStatus(ctx context.Context, s *types.Status) error {
	err := db.q.QueryRowContext(ctx,
		`INSERT INTO statuses (name, role) VALUES ($1, $2) RETURNING id`, s.Name, string(s.Role),
	).Scan(&s.ID)
	if err != nil {
		return errors.Wrap(translate(err), "failed to insert status")
	}
	return nil
}

func (db *DB) UpdateStatus(ctx context.Context, s *types.Status) error {
	return db.execOne(ctx, "status", s.ID,
		`UPDATE statuses SET name = $1, role = $2 WHERE id = $3`, s.Name, string(s.Role), s.ID)
}
