package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/unicampus/backend/core"
	"github.com/unicampus/backend/core/faculdade"
	"github.com/unicampus/backend/core/pessoa"
)

const faculdadeColumns = `f.id, f.user_cpf, f.nome, f.cnpj, f.telefone, f.email_responsavel, f.tipo,
f.logradouro, f.numero, f.bairro, f.cidade, f.estado, f.cep, u.universidade_nome`

const faculdadeFrom = ` FROM faculdades f JOIN users u ON u.cpf = f.user_cpf`

type faculdadeRow struct {
	ID               int    `db:"id"`
	UserCPF          string `db:"user_cpf"`
	Nome             string `db:"nome"`
	CNPJ             string `db:"cnpj"`
	Telefone         string `db:"telefone"`
	EmailResponsavel string `db:"email_responsavel"`
	Tipo             string `db:"tipo"`
	UniversidadeNome string `db:"universidade_nome"`
	pessoa.Endereco
}

func (row faculdadeRow) faculdade() faculdade.Faculdade {
	return faculdade.Faculdade{
		ID:               row.ID,
		Nome:             row.Nome,
		CNPJ:             row.CNPJ,
		Telefone:         row.Telefone,
		EmailResponsavel: row.EmailResponsavel,
		Tipo:             row.Tipo,
		UserCPF:          row.UserCPF,
		Endereco:         row.Endereco,
		UniversidadeNome: row.UniversidadeNome,
	}
}

type cursoResumoRow struct {
	ID              int             `db:"id"`
	Nome            string          `db:"nome"`
	Mensalidade     decimal.Decimal `db:"mensalidade"`
	FaculdadeID     int             `db:"faculdade_id"`
	FaculdadeNome   string          `db:"faculdade_nome"`
	ColaboradorNome string          `db:"colaborador_nome"`
}

type faculdadeRepository struct {
	repo
}

var _ faculdade.Repository = (*faculdadeRepository)(nil) // interface compliance check

func NewFaculdadeRepository(db *sqlx.DB) *faculdadeRepository {
	return &faculdadeRepository{repo{db: db}}
}

func (repo faculdadeRepository) CNPJExists(ctx context.Context, userCPF, cnpj string, excludedID int) (bool, error) {
	q := "SELECT 1 FROM faculdades WHERE user_cpf = ? AND cnpj = ? AND id <> ?"
	exists, err := repo.exists(ctx, q, userCPF, cnpj, excludedID)
	return exists, errors.Wrap(err, "checking CNPJ uniqueness")
}

func (repo faculdadeRepository) CreateFaculdade(ctx context.Context, fac faculdade.Faculdade) (faculdade.Faculdade, error) {
	q := `INSERT INTO faculdades (user_cpf, nome, cnpj, telefone, email_responsavel, tipo,
logradouro, numero, bairro, cidade, estado, cep)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`
	e := fac.Endereco
	err := repo.get(ctx, &fac.ID, q, fac.UserCPF, fac.Nome, fac.CNPJ, fac.Telefone, fac.EmailResponsavel, fac.Tipo,
		e.Logradouro, e.Numero, e.Bairro, e.Cidade, e.Estado, e.CEP)
	if err != nil {
		return faculdade.Faculdade{}, errors.Wrap(err, "inserting faculdade")
	}
	return fac, nil
}

func (repo faculdadeRepository) GetFaculdade(ctx context.Context, id int) (faculdade.Faculdade, error) {
	var row faculdadeRow
	if err := repo.get(ctx, &row, "SELECT "+faculdadeColumns+faculdadeFrom+" WHERE f.id = ?", id); err != nil {
		return faculdade.Faculdade{}, trapNoRowsErr(err, faculdade.ErrNotFound, "finding faculdade")
	}
	return row.faculdade(), nil
}

func (repo faculdadeRepository) FaculdadeExists(ctx context.Context, id int) (bool, error) {
	exists, err := repo.exists(ctx, "SELECT 1 FROM faculdades WHERE id = ?", id)
	return exists, errors.Wrap(err, "checking faculdade existence")
}

func (repo faculdadeRepository) QueryFaculdades(ctx context.Context, filter faculdade.QueryFilter, page core.Pagination) ([]faculdade.Faculdade, error) {
	var f conds
	if filter.OwnerCPF != "" {
		f.add("f.user_cpf = ?", filter.OwnerCPF)
	}

	var rows []faculdadeRow
	q, args := f.paginate("SELECT "+faculdadeColumns+faculdadeFrom, "f.id", page)
	if err := repo.selekt(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying faculdades")
	}
	facs := make([]faculdade.Faculdade, 0, len(rows))
	for _, row := range rows {
		facs = append(facs, row.faculdade())
	}
	return facs, nil
}

func (repo faculdadeRepository) QueryFaculdadeIDs(ctx context.Context, ownerCPF string) ([]int, error) {
	var ids []int
	err := repo.selekt(ctx, &ids, "SELECT id FROM faculdades WHERE user_cpf = ? ORDER BY id", ownerCPF)
	return ids, errors.Wrap(err, "querying faculdade IDs")
}

func (repo faculdadeRepository) queryCursos(ctx context.Context, where string, ids []int) ([]faculdade.CursoResumo, error) {
	var rows []cursoResumoRow
	if err := repo.selekt(ctx, &rows, cursoResumoQuery+" WHERE "+where+" ORDER BY c.id", pq.Array(ids)); err != nil {
		return nil, errors.Wrap(err, "querying cursos")
	}
	cursos := make([]faculdade.CursoResumo, 0, len(rows))
	for _, row := range rows {
		cursos = append(cursos, faculdade.CursoResumo(row))
	}
	return cursos, nil
}

func (repo faculdadeRepository) QueryCursosByFaculdade(ctx context.Context, faculdadeIDs ...int) ([]faculdade.CursoResumo, error) {
	return repo.queryCursos(ctx, "c.faculdade_id = ANY(?)", faculdadeIDs)
}

func (repo faculdadeRepository) QueryCursosByID(ctx context.Context, ids ...int) ([]faculdade.CursoResumo, error) {
	return repo.queryCursos(ctx, "c.id = ANY(?)", ids)
}

func (repo faculdadeRepository) MoveCursos(ctx context.Context, faculdadeID int, cursoIDs ...int) error {
	_, err := repo.run(ctx, "UPDATE cursos SET faculdade_id = ? WHERE id = ANY(?)", faculdadeID, pq.Array(cursoIDs))
	return errors.Wrap(err, "moving cursos")
}

func (repo faculdadeRepository) UpdateFaculdade(ctx context.Context, fac faculdade.Faculdade) (faculdade.Faculdade, error) {
	q := `UPDATE faculdades SET nome = ?, cnpj = ?, telefone = ?, email_responsavel = ?, tipo = ?,
logradouro = ?, numero = ?, bairro = ?, cidade = ?, estado = ?, cep = ?
WHERE id = ?`
	e := fac.Endereco
	n, err := repo.run(ctx, q, fac.Nome, fac.CNPJ, fac.Telefone, fac.EmailResponsavel, fac.Tipo,
		e.Logradouro, e.Numero, e.Bairro, e.Cidade, e.Estado, e.CEP, fac.ID)
	if err != nil {
		return faculdade.Faculdade{}, errors.Wrap(err, "updating faculdade")
	}
	if n == 0 {
		return faculdade.Faculdade{}, faculdade.ErrNotFound
	}
	return fac, nil
}

func (repo faculdadeRepository) DeleteFaculdade(ctx context.Context, id int) error {
	_, err := repo.run(ctx, "DELETE FROM faculdades WHERE id = ?", id)
	return errors.Wrap(err, "deleting faculdade")
}
