package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/unicampus/backend/core"
	"github.com/unicampus/backend/core/user"
)

const userColumns = `cpf, nome, email, password_hash, password_salt, url_imagem, universidade_nome,
universidade_cnpj, universidade_contato_info, created_at, updated_at`

// userConstraints are the Postgres default names of the users unique constraints.
var userConstraints = map[string]error{
	"users_pkey":      user.ErrCPFExists,
	"users_email_key": user.ErrEmailExists,
}

type userRow struct {
	CPF                     string     `db:"cpf"`
	Nome                    string     `db:"nome"`
	Email                   string     `db:"email"`
	PasswordHash            null.Bytes `db:"password_hash"`
	PasswordSalt            null.Bytes `db:"password_salt"`
	UrlImagem               string     `db:"url_imagem"`
	UniversidadeNome        string     `db:"universidade_nome"`
	UniversidadeCNPJ        string     `db:"universidade_cnpj"`
	UniversidadeContatoInfo string     `db:"universidade_contato_info"`
	CreatedAt               time.Time  `db:"created_at"`
	UpdatedAt               time.Time  `db:"updated_at"`
}

type userRepository struct {
	repo
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{repo{db: db}}
}

func (userRepository) toRow(usr user.User) userRow {
	return userRow{
		CPF:                     usr.CPF,
		Nome:                    usr.Nome,
		Email:                   usr.Email,
		PasswordHash:            null.NewBytes(usr.PasswordHash, len(usr.PasswordHash) > 0),
		PasswordSalt:            null.NewBytes(usr.PasswordSalt, len(usr.PasswordSalt) > 0),
		UrlImagem:               usr.UrlImagem,
		UniversidadeNome:        usr.UniversidadeNome,
		UniversidadeCNPJ:        usr.UniversidadeCNPJ,
		UniversidadeContatoInfo: usr.UniversidadeContatoInfo,
		CreatedAt:               usr.CreatedAt.UTC(),
		UpdatedAt:               usr.UpdatedAt.UTC(),
	}
}

func (userRepository) fromRow(row userRow) user.User {
	return user.User{
		CPF:                     row.CPF,
		Nome:                    row.Nome,
		Email:                   row.Email,
		PasswordHash:            row.PasswordHash.Bytes,
		PasswordSalt:            row.PasswordSalt.Bytes,
		UrlImagem:               row.UrlImagem,
		UniversidadeNome:        row.UniversidadeNome,
		UniversidadeCNPJ:        row.UniversidadeCNPJ,
		UniversidadeContatoInfo: row.UniversidadeContatoInfo,
		CreatedAt:               row.CreatedAt.UTC(),
		UpdatedAt:               row.UpdatedAt.UTC(),
	}
}

func (repo userRepository) CheckUniqueness(ctx context.Context, cpf, email, excludedCPF string) error {
	var taken []struct {
		CPF   string `db:"cpf"`
		Email string `db:"email"`
	}
	q := "SELECT cpf, email FROM users WHERE (cpf = ? OR email = ?) AND cpf <> ?"
	if err := repo.selekt(ctx, &taken, q, cpf, email, excludedCPF); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}

	var emailTaken bool
	for _, t := range taken {
		if cpf != "" && t.CPF == cpf {
			return user.ErrCPFExists
		}
		emailTaken = emailTaken || t.Email == email
	}
	if emailTaken {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	row := repo.toRow(usr)
	q := `INSERT INTO users (` + userColumns + `)
VALUES (:cpf, :nome, :email, :password_hash, :password_salt, :url_imagem, :universidade_nome,
:universidade_cnpj, :universidade_contato_info, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.exec(ctx), q, row); err != nil {
		return user.User{}, trapUniqueViolation(err, userConstraints, "inserting user")
	}
	return repo.fromRow(row), nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var f conds
	switch {
	case filter.CPF != "":
		f.add("cpf = ?", filter.CPF)
	case filter.Email != "":
		f.add("email = ?", filter.Email)
	default:
		return user.User{}, user.ErrNotFound
	}

	var row userRow
	if err := repo.get(ctx, &row, "SELECT "+userColumns+" FROM users"+f.where(), f.args...); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "finding user")
	}
	return repo.fromRow(row), nil
}

func (repo userRepository) UserExists(ctx context.Context, cpf string) (bool, error) {
	exists, err := repo.exists(ctx, "SELECT 1 FROM users WHERE cpf = ?", cpf)
	return exists, errors.Wrap(err, "checking user existence")
}

func (repo userRepository) QueryUsers(ctx context.Context, page core.Pagination) ([]user.User, error) {
	var rows []userRow
	q, args := conds{}.paginate("SELECT "+userColumns+" FROM users", "nome, cpf", page)
	if err := repo.selekt(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, repo.fromRow(row))
	}
	return users, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	row := repo.toRow(usr)
	q := `UPDATE users SET nome = :nome, email = :email, password_hash = :password_hash, password_salt = :password_salt,
url_imagem = :url_imagem, universidade_nome = :universidade_nome, universidade_cnpj = :universidade_cnpj,
universidade_contato_info = :universidade_contato_info, updated_at = :updated_at
WHERE cpf = :cpf`
	res, err := sqlx.NamedExecContext(ctx, repo.exec(ctx), q, row)
	if err != nil {
		return user.User{}, trapUniqueViolation(err, userConstraints, "updating user")
	}
	if n, err := res.RowsAffected(); err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	} else if n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.fromRow(row), nil
}

func (repo userRepository) DeleteUser(ctx context.Context, cpf string) error {
	n, err := repo.run(ctx, "DELETE FROM users WHERE cpf = ?", cpf)
	if err != nil {
		return errors.Wrap(err, "deleting user")
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo userRepository) CountAchievements(ctx context.Context, cpf string) (user.Achievements, error) {
	q := `SELECT
(SELECT COUNT(*) FROM faculdades f WHERE f.user_cpf = ?) AS faculdades,
(SELECT COUNT(*) FROM cursos c WHERE c.faculdade_id IN (
	SELECT f.id FROM faculdades f WHERE f.user_cpf = ?)) AS cursos,
(SELECT COUNT(*) FROM estudantes e WHERE e.turma_id IN (
	SELECT t.id FROM turmas t WHERE t.curso_id IN (
		SELECT c.id FROM cursos c WHERE c.faculdade_id IN (
			SELECT f.id FROM faculdades f WHERE f.user_cpf = ?)))) AS estudantes`

	var achievements user.Achievements
	if err := repo.get(ctx, &achievements, q, cpf, cpf, cpf); err != nil {
		return user.Achievements{}, errors.Wrap(err, "counting achievements")
	}
	return achievements, nil
}
