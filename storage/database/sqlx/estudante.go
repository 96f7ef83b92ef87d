package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/unicampus/backend/core"
	"github.com/unicampus/backend/core/estudante"
)

var estudanteQuery = `SELECT e.id, e.turma_id, e.numero_matricula, e.data_matricula, e.telefone_pai, e.telefone_mae,
t.nome AS turma_nome, ` + pessoaColumns + `
FROM estudantes e
JOIN pessoas p ON p.id = e.pessoa_id
JOIN turmas t ON t.id = e.turma_id`

type estudanteRow struct {
	ID              int       `db:"id"`
	TurmaID         int       `db:"turma_id"`
	NumeroMatricula string    `db:"numero_matricula"`
	DataMatricula   null.Time `db:"data_matricula"`
	TelefonePai     string    `db:"telefone_pai"`
	TelefoneMae     string    `db:"telefone_mae"`
	TurmaNome       string    `db:"turma_nome"`
	Pessoa          pessoaRow `db:"pessoa"`
}

func (row estudanteRow) estudante() estudante.Estudante {
	return estudante.Estudante{
		ID:              row.ID,
		Pessoa:          row.Pessoa.pessoa(),
		TurmaID:         row.TurmaID,
		NumeroMatricula: row.NumeroMatricula,
		DataMatricula:   row.DataMatricula.Time,
		TelefonePai:     row.TelefonePai,
		TelefoneMae:     row.TelefoneMae,
		TurmaNome:       row.TurmaNome,
	}
}

type estudanteRepository struct {
	repo
}

var _ estudante.Repository = (*estudanteRepository)(nil) // interface compliance check

func NewEstudanteRepository(db *sqlx.DB) *estudanteRepository {
	return &estudanteRepository{repo{db: db}}
}

func (repo estudanteRepository) CreateEstudante(ctx context.Context, est estudante.Estudante) (estudante.Estudante, error) {
	pessoaID, err := repo.insertPessoa(ctx, est.Pessoa)
	if err != nil {
		return estudante.Estudante{}, err
	}
	est.Pessoa.ID = pessoaID

	q := `INSERT INTO estudantes (pessoa_id, turma_id, numero_matricula, data_matricula, telefone_pai, telefone_mae)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id`
	dataMatricula := null.NewTime(est.DataMatricula.UTC(), !est.DataMatricula.IsZero())
	err = repo.get(ctx, &est.ID, q, pessoaID, est.TurmaID, est.NumeroMatricula, dataMatricula, est.TelefonePai, est.TelefoneMae)
	if err != nil {
		return estudante.Estudante{}, errors.Wrap(err, "inserting estudante")
	}
	return est, nil
}

func (repo estudanteRepository) GetEstudante(ctx context.Context, id int) (estudante.Estudante, error) {
	var row estudanteRow
	if err := repo.get(ctx, &row, estudanteQuery+" WHERE e.id = ?", id); err != nil {
		return estudante.Estudante{}, trapNoRowsErr(err, estudante.ErrNotFound, "finding estudante")
	}
	return row.estudante(), nil
}

func (repo estudanteRepository) QueryEstudantes(ctx context.Context, filter estudante.QueryFilter, page core.Pagination) ([]estudante.Estudante, error) {
	var f conds
	if filter.OwnerCPF != "" {
		f.add(`e.turma_id IN (
	SELECT t.id FROM turmas t
	JOIN cursos c ON c.id = t.curso_id
	JOIN faculdades f ON f.id = c.faculdade_id
	WHERE f.user_cpf = ?)`, filter.OwnerCPF)
	}

	var rows []estudanteRow
	q, args := f.paginate(estudanteQuery, "e.id", page)
	if err := repo.selekt(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying estudantes")
	}
	ests := make([]estudante.Estudante, 0, len(rows))
	for _, row := range rows {
		ests = append(ests, row.estudante())
	}
	return ests, nil
}

func (repo estudanteRepository) QueryEstudanteIDsByTurma(ctx context.Context, turmaIDs ...int) ([]int, error) {
	var ids []int
	err := repo.selekt(ctx, &ids, "SELECT id FROM estudantes WHERE turma_id = ANY(?) ORDER BY id", pq.Array(turmaIDs))
	return ids, errors.Wrap(err, "querying estudante IDs")
}

func (repo estudanteRepository) UpdateEstudante(ctx context.Context, est estudante.Estudante) (estudante.Estudante, error) {
	if err := repo.updatePessoa(ctx, est.Pessoa); err != nil {
		return estudante.Estudante{}, err
	}
	q := `UPDATE estudantes SET turma_id = ?, numero_matricula = ?, data_matricula = ?, telefone_pai = ?, telefone_mae = ?
WHERE id = ?`
	dataMatricula := null.NewTime(est.DataMatricula.UTC(), !est.DataMatricula.IsZero())
	n, err := repo.run(ctx, q, est.TurmaID, est.NumeroMatricula, dataMatricula, est.TelefonePai, est.TelefoneMae, est.ID)
	if err != nil {
		return estudante.Estudante{}, errors.Wrap(err, "updating estudante")
	}
	if n == 0 {
		return estudante.Estudante{}, estudante.ErrNotFound
	}
	return est, nil
}

// DeleteEstudantes deletes the estudantes and their pessoas.
func (repo estudanteRepository) DeleteEstudantes(ctx context.Context, ids ...int) error {
	var pessoaIDs []int
	q := "DELETE FROM estudantes WHERE id = ANY(?) RETURNING pessoa_id"
	if err := repo.selekt(ctx, &pessoaIDs, q, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting estudantes")
	}
	if len(pessoaIDs) == 0 {
		return nil
	}
	return repo.deletePessoas(ctx, pessoaIDs...)
}
