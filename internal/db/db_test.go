package db

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jonathan/job-portal/internal/store"
	"github.com/jonathan/job-portal/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMock(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = sqlDB.Close()
	})
	return New(sqlDB), mock
}

func TestGetUserByEmail_Missing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE LOWER(email) = LOWER($1)`)).
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	u, err := db.GetUserByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestGetUserByEmail_Found(t *testing.T) {
	db, mock := newMock(t)
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE LOWER(email) = LOWER($1)`)).
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "role", "created_at"}).
			AddRow(7, "ada@example.com", "hash", "candidate", created))

	u, err := db.GetUserByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, types.RoleCandidate, u.Role)
	assert.Equal(t, created, u.CreatedAt)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs("ada@example.com", "hash", "candidate").
		WillReturnError(&pgconn.PgError{Code: codeUniqueViolation, ConstraintName: "users_email_key"})

	err := db.CreateUser(context.Background(), &types.User{Email: "ada@example.com", PasswordHash: "hash", Role: types.RoleCandidate})
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrDuplicate))
}

func TestDeleteCategory_InUse(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM categories WHERE id = $1`)).
		WithArgs(int64(3)).
		WillReturnError(&pgconn.PgError{Code: codeForeignKeyViolation})

	err := db.DeleteCategory(context.Background(), 3)
	assert.True(t, errors.Is(err, store.ErrReferenced))
}

func TestUpdateSkill_Missing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE skills SET name = $1 WHERE id = $2`)).
		WithArgs("Rust", int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := db.UpdateSkill(context.Background(), &types.Skill{ID: 99, Name: "Rust"})
	assert.ErrorContains(t, err, "skill not found: 99")
}

func TestDecrementVacancy(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{name: "seat taken", affected: 1, want: true},
		{name: "no seats left", affected: 0, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMock(t)
			mock.ExpectExec(`UPDATE jobs SET vacancy = vacancy - 1.*WHERE id = \$1 AND vacancy > 0`).
				WithArgs(int64(4)).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			got, err := db.DecrementVacancy(context.Background(), 4)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompareAndSetStatus(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE applications SET status_id = $1 WHERE id = $2 AND status_id = $3`)).
		WithArgs(int64(3), int64(10), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := db.CompareAndSetStatus(context.Background(), 10, 1, 3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE jobs SET is_deleted = TRUE`)).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := db.WithTx(context.Background(), func(tx store.Store) error {
		// nested calls join the outer transaction
		return tx.WithTx(context.Background(), func(inner store.Store) error {
			ok, err := inner.SoftDeleteJob(context.Background(), 1)
			assert.True(t, ok)
			return err
		})
	})
	require.NoError(t, err)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := db.WithTx(context.Background(), func(store.Store) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestListJobs_FiltersAndSkills(t *testing.T) {
	db, mock := newMock(t)
	today := types.NewDate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	maxExp := 3
	f := types.JobFilter{
		JobQuery: types.JobQuery{
			Search:        "engineer",
			Category:      "Engineering",
			MaxExperience: &maxExp,
			Pagination:    types.Pagination{PageNumber: 2, PageSize: 2},
		},
		OnlyActive: true,
		OpenBy:     &today,
		VisibleTo:  5,
	}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM jobs j JOIN categories c ON c.id = j.category_id WHERE NOT j.is_deleted AND j.is_active AND (j.open_from <= $1 OR j.employer_id = $2)`)).
		WithArgs(today, int64(5), "%engineer%", "Engineering", 3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	created := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`ORDER BY j.created_at DESC, j.id DESC LIMIT \$6 OFFSET \$7`).
		WithArgs(today, int64(5), "%engineer%", "Engineering", 3, 2, 2).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "employer_id", "company_name", "title", "description", "location",
			"experience_required", "category_id", "name", "open_from", "vacancy", "is_active", "is_deleted", "created_at",
		}).AddRow(11, 5, "Acme", "Backend Engineer", "Go services", "Berlin", nil, 2, "Engineering",
			created, 2, true, false, created))

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE js.job_id = ANY($1)`)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"job_id", "id", "name"}).AddRow(11, 1, "Go"))

	jobs, total, err := db.ListJobs(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, jobs, 1)
	assert.Nil(t, jobs[0].ExperienceRequired)
	assert.Equal(t, "Acme", jobs[0].CompanyName)
	assert.Equal(t, []types.Skill{{ID: 1, Name: "Go"}}, jobs[0].Skills)
}

func TestListApplications_RoleFilters(t *testing.T) {
	f := types.ApplicationFilter{
		JobID:        4,
		EmployerID:   2,
		ExcludeRoles: []types.StatusRole{types.StatusRoleWithdrawn},
	}
	where, a := applicationWhere(f)
	assert.Equal(t, " WHERE a.job_id = $1 AND j.employer_id = $2 AND NOT (s.role = ANY($3))", where)
	assert.Len(t, a, 3)

	where, a = applicationWhere(types.ApplicationFilter{})
	assert.Empty(t, where)
	assert.Empty(t, a)
}

func TestMigrate_SkipsApplied(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	for _, version := range []string{"000", "001"} {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT to_regclass('schema_migrations')::text`)).
			WillReturnRows(sqlmock.NewRows([]string{"to_regclass"}).AddRow("schema_migrations"))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`)).
			WithArgs(version).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	}

	applied, err := Migrate(context.Background(), sqlDB, zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.Zero(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_FreshDatabase(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT to_regclass`)).
		WillReturnRows(sqlmock.NewRows([]string{"to_regclass"}).AddRow(nil))
	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO schema_migrations (version) VALUES ($1)`)).
		WithArgs("000").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT to_regclass`)).
		WillReturnRows(sqlmock.NewRows([]string{"to_regclass"}).AddRow("schema_migrations"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
		WithArgs("001").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE users`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO schema_migrations (version) VALUES ($1)`)).
		WithArgs("001").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	applied, err := Migrate(context.Background(), sqlDB, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListEmployers_JoinsEmail(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM employers e JOIN users u ON u.id = e.user_id ORDER BY e.id`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "company_name", "email"}).
			AddRow(1, 10, "Grace", "Navy", "grace@navy.test").
			AddRow(2, 11, "Linus", "Kernel", "linus@kernel.test"))

	employers, err := db.ListEmployers(context.Background())
	require.NoError(t, err)
	require.Len(t, employers, 2)
	assert.Equal(t, "grace@navy.test", employers[0].Email)
	assert.Equal(t, "Kernel", employers[1].CompanyName)
}

func TestListCandidates_QueryError(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM candidates c JOIN users u ON u.id = c.user_id ORDER BY c.id`)).
		WillReturnError(errors.New("connection reset"))

	_, err := db.ListCandidates(context.Background())
	assert.ErrorContains(t, err, "failed to list candidates")
}
