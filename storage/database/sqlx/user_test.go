package sqlxrepos

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unicampus/backend/core"
	"github.com/unicampus/backend/core/user"
)

const testCPF = "52998224725"

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = mockDB.Close()
	})
	return sqlx.NewDb(mockDB, "postgres"), mock
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"cpf", "nome", "email", "password_hash", "password_salt", "url_imagem", "universidade_nome",
		"universidade_cnpj", "universidade_contato_info", "created_at", "updated_at",
	})
}

func TestUserRepository_GetUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE cpf = $1")).
		WithArgs(testCPF).
		WillReturnRows(userRows().AddRow(
			testCPF, "Ana", "ana@mail.com", []byte("hash"), []byte("salt"), "", "UFX", "", "", now, now))

	usr, err := repo.GetUser(context.Background(), user.GetFilter{CPF: testCPF})
	require.NoError(t, err)
	assert.Equal(t, "Ana", usr.Nome)
	assert.Equal(t, "ana@mail.com", usr.Email)
	assert.Equal(t, []byte("hash"), usr.PasswordHash)
	assert.Equal(t, "UFX", usr.UniversidadeNome)
	assert.True(t, usr.CreatedAt.Equal(now))
}

func TestUserRepository_GetUser_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("ghost@mail.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetUser(context.Background(), user.GetFilter{Email: "ghost@mail.com"})
	assert.Equal(t, user.ErrNotFound, err)
	assert.True(t, core.IsNotFound(err))
}

func TestUserRepository_CheckUniqueness(t *testing.T) {
	tests := []struct {
		name    string
		rows    *sqlmock.Rows
		wantErr error
	}{
		{
			name:    "unique",
			rows:    sqlmock.NewRows([]string{"cpf", "email"}),
			wantErr: nil,
		},
		{
			name:    "cpf taken",
			rows:    sqlmock.NewRows([]string{"cpf", "email"}).AddRow(testCPF, "other@mail.com"),
			wantErr: user.ErrCPFExists,
		},
		{
			name:    "email taken",
			rows:    sqlmock.NewRows([]string{"cpf", "email"}).AddRow("11144477735", "ana@mail.com"),
			wantErr: user.ErrEmailExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewUserRepository(db)

			mock.ExpectQuery(regexp.QuoteMeta("SELECT cpf, email FROM users WHERE (cpf = $1 OR email = $2) AND cpf <> $3")).
				WithArgs(testCPF, "ana@mail.com", "").
				WillReturnRows(tt.rows)

			err := repo.CheckUniqueness(context.Background(), testCPF, "ana@mail.com", "")
			assert.Equal(t, tt.wantErr, err)
		})
	}
}

func TestUserRepository_CreateUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	usr, err := repo.CreateUser(context.Background(), user.User{CPF: testCPF, Nome: "Ana", Email: "ana@mail.com"})
	require.NoError(t, err)
	assert.Equal(t, testCPF, usr.CPF)
	assert.Nil(t, usr.PasswordHash)
}

func TestUserRepository_CreateUser_UniqueViolation(t *testing.T) {
	tests := []struct {
		constraint string
		wantErr    error
	}{
		{constraint: "users_pkey", wantErr: user.ErrCPFExists},
		{constraint: "users_email_key", wantErr: user.ErrEmailExists},
	}
	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewUserRepository(db)

			mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
				WillReturnError(&pq.Error{Code: "23505", Constraint: tt.constraint})

			_, err := repo.CreateUser(context.Background(), user.User{CPF: testCPF, Nome: "Ana", Email: "ana@mail.com"})
			assert.Equal(t, tt.wantErr, err)
		})
	}

	t.Run("other errors are wrapped", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		pqErr := &pq.Error{Code: "23502", Column: "nome"}
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).WillReturnError(pqErr)

		_, err := repo.CreateUser(context.Background(), user.User{CPF: testCPF})
		require.Error(t, err)
		assert.Equal(t, pqErr, errors.Cause(err))
	})
}

func TestUserRepository_DeleteUser_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE cpf = $1")).
		WithArgs(testCPF).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.Equal(t, user.ErrNotFound, repo.DeleteUser(context.Background(), testCPF))
}

func TestUserRepository_UserExists(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM users WHERE cpf = $1)")).
		WithArgs(testCPF).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.UserExists(context.Background(), testCPF)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUserRepository_CountAchievements(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT\s+\(SELECT COUNT\(\*\) FROM faculdades f WHERE f.user_cpf = \$1\) AS faculdades`).
		WithArgs(testCPF, testCPF, testCPF).
		WillReturnRows(sqlmock.NewRows([]string{"faculdades", "cursos", "estudantes"}).AddRow(2, 5, 40))

	got, err := repo.CountAchievements(context.Background(), testCPF)
	require.NoError(t, err)
	assert.Equal(t, user.Achievements{Faculdades: 2, Cursos: 5, Estudantes: 40}, got)
}

func TestUserRepository_QueryUsers_Paginates(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users ORDER BY nome, cpf LIMIT $1 OFFSET $2")).
		WithArgs(10, 10).
		WillReturnRows(userRows().AddRow(testCPF, "Ana", "ana@mail.com", nil, nil, "", "", "", "", now, now))

	users, err := repo.QueryUsers(context.Background(), core.NewPagination(2, 10))
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Nil(t, users[0].PasswordSalt)
}
