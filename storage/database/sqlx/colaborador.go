package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/unicampus/backend/core"
	"github.com/unicampus/backend/core/colaborador"
)

var colaboradorQuery = `SELECT col.id, col.user_cpf, col.cargo, col.numero_registro, col.data_admissao, col.curso_id,
COALESCE(c.nome, '') AS curso_nome, u.universidade_nome, ` + pessoaColumns + `
FROM colaboradores col
JOIN pessoas p ON p.id = col.pessoa_id
JOIN users u ON u.cpf = col.user_cpf
LEFT JOIN cursos c ON c.id = col.curso_id`

type colaboradorRow struct {
	ID               int       `db:"id"`
	UserCPF          string    `db:"user_cpf"`
	Cargo            string    `db:"cargo"`
	NumeroRegistro   string    `db:"numero_registro"`
	DataAdmissao     null.Time `db:"data_admissao"`
	CursoID          null.Int  `db:"curso_id"`
	CursoNome        string    `db:"curso_nome"`
	UniversidadeNome string    `db:"universidade_nome"`
	Pessoa           pessoaRow `db:"pessoa"`
}

func (row colaboradorRow) colaborador() colaborador.Colaborador {
	return colaborador.Colaborador{
		ID:               row.ID,
		Pessoa:           row.Pessoa.pessoa(),
		UserCPF:          row.UserCPF,
		Cargo:            row.Cargo,
		NumeroRegistro:   row.NumeroRegistro,
		DataAdmissao:     row.DataAdmissao.Time,
		CursoID:          row.CursoID,
		CursoNome:        row.CursoNome,
		UniversidadeNome: row.UniversidadeNome,
	}
}

type colaboradorRepository struct {
	repo
}

var _ colaborador.Repository = (*colaboradorRepository)(nil) // interface compliance check

func NewColaboradorRepository(db *sqlx.DB) *colaboradorRepository {
	return &colaboradorRepository{repo{db: db}}
}

func (colaboradorRepository) where(filter colaborador.QueryFilter) conds {
	var f conds
	if filter.OwnerCPF != "" {
		f.add("col.user_cpf = ?", filter.OwnerCPF)
	}
	if filter.CursoID != 0 {
		f.add("col.curso_id = ?", filter.CursoID)
	}
	return f
}

func (repo colaboradorRepository) CreateColaborador(ctx context.Context, col colaborador.Colaborador) (colaborador.Colaborador, error) {
	pessoaID, err := repo.insertPessoa(ctx, col.Pessoa)
	if err != nil {
		return colaborador.Colaborador{}, err
	}
	col.Pessoa.ID = pessoaID

	q := `INSERT INTO colaboradores (pessoa_id, user_cpf, cargo, numero_registro, data_admissao, curso_id)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id`
	dataAdmissao := null.NewTime(col.DataAdmissao.UTC(), !col.DataAdmissao.IsZero())
	err = repo.get(ctx, &col.ID, q, pessoaID, col.UserCPF, col.Cargo, col.NumeroRegistro, dataAdmissao, col.CursoID)
	if err != nil {
		return colaborador.Colaborador{}, errors.Wrap(err, "inserting colaborador")
	}
	return col, nil
}

func (repo colaboradorRepository) GetColaborador(ctx context.Context, id int) (colaborador.Colaborador, error) {
	var row colaboradorRow
	if err := repo.get(ctx, &row, colaboradorQuery+" WHERE col.id = ?", id); err != nil {
		return colaborador.Colaborador{}, trapNoRowsErr(err, colaborador.ErrNotFound, "finding colaborador")
	}
	return row.colaborador(), nil
}

func (repo colaboradorRepository) QueryColaboradores(ctx context.Context, filter colaborador.QueryFilter, page core.Pagination) ([]colaborador.Colaborador, error) {
	var rows []colaboradorRow
	q, args := repo.where(filter).paginate(colaboradorQuery, "col.id", page)
	if err := repo.selekt(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying colaboradores")
	}
	cols := make([]colaborador.Colaborador, 0, len(rows))
	for _, row := range rows {
		cols = append(cols, row.colaborador())
	}
	return cols, nil
}

func (repo colaboradorRepository) QueryColaboradorIDs(ctx context.Context, filter colaborador.QueryFilter) ([]int, error) {
	var ids []int
	f := repo.where(filter)
	err := repo.selekt(ctx, &ids, "SELECT col.id FROM colaboradores col"+f.where()+" ORDER BY col.id", f.args...)
	return ids, errors.Wrap(err, "querying colaborador IDs")
}

func (repo colaboradorRepository) CursoTaken(ctx context.Context, cursoID, excludedID int) (bool, error) {
	exists, err := repo.exists(ctx, "SELECT 1 FROM colaboradores WHERE curso_id = ? AND id <> ?", cursoID, excludedID)
	return exists, errors.Wrap(err, "checking curso colaborador")
}

func (repo colaboradorRepository) UpdateColaborador(ctx context.Context, col colaborador.Colaborador) (colaborador.Colaborador, error) {
	if err := repo.updatePessoa(ctx, col.Pessoa); err != nil {
		return colaborador.Colaborador{}, err
	}
	q := `UPDATE colaboradores SET user_cpf = ?, cargo = ?, numero_registro = ?, data_admissao = ?, curso_id = ?
WHERE id = ?`
	dataAdmissao := null.NewTime(col.DataAdmissao.UTC(), !col.DataAdmissao.IsZero())
	n, err := repo.run(ctx, q, col.UserCPF, col.Cargo, col.NumeroRegistro, dataAdmissao, col.CursoID, col.ID)
	if err != nil {
		return colaborador.Colaborador{}, errors.Wrap(err, "updating colaborador")
	}
	if n == 0 {
		return colaborador.Colaborador{}, colaborador.ErrNotFound
	}
	return col, nil
}

// DeleteColaboradores deletes the colaboradores and their pessoas.
func (repo colaboradorRepository) DeleteColaboradores(ctx context.Context, ids ...int) error {
	var pessoaIDs []int
	q := "DELETE FROM colaboradores WHERE id = ANY(?) RETURNING pessoa_id"
	if err := repo.selekt(ctx, &pessoaIDs, q, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting colaboradores")
	}
	if len(pessoaIDs) == 0 {
		return nil
	}
	return repo.deletePessoas(ctx, pessoaIDs...)
}
