package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/unicampus/backend/core"
	"github.com/unicampus/backend/core/curso"
)

// cursoResumoQuery selects cursoResumoRow columns.
const cursoResumoQuery = `SELECT c.id, c.nome, c.mensalidade, c.faculdade_id, f.nome AS faculdade_nome,
COALESCE(p.nome, '') AS colaborador_nome
FROM cursos c
JOIN faculdades f ON f.id = c.faculdade_id
LEFT JOIN colaboradores col ON col.curso_id = c.id
LEFT JOIN pessoas p ON p.id = col.pessoa_id`

// foldedNome matches core.FoldKey on the nome column.
const foldedNome = `lower(regexp_replace(btrim(nome), '\s+', ' ', 'g'))`

type cursoRepository struct {
	repo
}

var _ curso.Repository = (*cursoRepository)(nil) // interface compliance check

func NewCursoRepository(db *sqlx.DB) *cursoRepository {
	return &cursoRepository{repo{db: db}}
}

func (cursoRepository) fromRow(row cursoResumoRow) curso.Curso {
	return curso.Curso{
		ID:              row.ID,
		Nome:            row.Nome,
		Mensalidade:     row.Mensalidade,
		FaculdadeID:     row.FaculdadeID,
		FaculdadeNome:   row.FaculdadeNome,
		ColaboradorNome: row.ColaboradorNome,
	}
}

func (repo cursoRepository) CursoNameExists(ctx context.Context, faculdadeID int, nome string, excludedID int) (bool, error) {
	q := "SELECT 1 FROM cursos WHERE faculdade_id = ? AND " + foldedNome + " = ? AND id <> ?"
	exists, err := repo.exists(ctx, q, faculdadeID, core.FoldKey(nome), excludedID)
	return exists, errors.Wrap(err, "checking curso name uniqueness")
}

func (repo cursoRepository) CreateCurso(ctx context.Context, c curso.Curso) (curso.Curso, error) {
	q := "INSERT INTO cursos (nome, mensalidade, faculdade_id) VALUES (?, ?, ?) RETURNING id"
	if err := repo.get(ctx, &c.ID, q, c.Nome, c.Mensalidade, c.FaculdadeID); err != nil {
		return curso.Curso{}, errors.Wrap(err, "inserting curso")
	}
	return c, nil
}

func (repo cursoRepository) GetCurso(ctx context.Context, id int) (curso.Curso, error) {
	var row cursoResumoRow
	if err := repo.get(ctx, &row, cursoResumoQuery+" WHERE c.id = ?", id); err != nil {
		return curso.Curso{}, trapNoRowsErr(err, curso.ErrNotFound, "finding curso")
	}
	return repo.fromRow(row), nil
}

func (repo cursoRepository) CursoExists(ctx context.Context, id int) (bool, error) {
	exists, err := repo.exists(ctx, "SELECT 1 FROM cursos WHERE id = ?", id)
	return exists, errors.Wrap(err, "checking curso existence")
}

func (repo cursoRepository) QueryCursos(ctx context.Context, filter curso.QueryFilter, page core.Pagination) ([]curso.Curso, error) {
	var f conds
	if filter.FaculdadeID != 0 {
		f.add("c.faculdade_id = ?", filter.FaculdadeID)
	}
	if filter.Search != "" {
		f.add(`c.nome ILIKE ? ESCAPE '\'`, containsPattern(filter.Search))
	}

	var rows []cursoResumoRow
	q, args := f.paginate(cursoResumoQuery, "c.id", page)
	if err := repo.selekt(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying cursos")
	}
	cursos := make([]curso.Curso, 0, len(rows))
	for _, row := range rows {
		cursos = append(cursos, repo.fromRow(row))
	}
	return cursos, nil
}

func (repo cursoRepository) QueryCursoIDs(ctx context.Context, faculdadeID int) ([]int, error) {
	var ids []int
	err := repo.selekt(ctx, &ids, "SELECT id FROM cursos WHERE faculdade_id = ? ORDER BY id", faculdadeID)
	return ids, errors.Wrap(err, "querying curso IDs")
}

func (repo cursoRepository) UpdateCurso(ctx context.Context, c curso.Curso) (curso.Curso, error) {
	q := "UPDATE cursos SET nome = ?, mensalidade = ?, faculdade_id = ? WHERE id = ?"
	n, err := repo.run(ctx, q, c.Nome, c.Mensalidade, c.FaculdadeID, c.ID)
	if err != nil {
		return curso.Curso{}, errors.Wrap(err, "updating curso")
	}
	if n == 0 {
		return curso.Curso{}, curso.ErrNotFound
	}
	return c, nil
}

func (repo cursoRepository) DeleteCurso(ctx context.Context, id int) error {
	_, err := repo.run(ctx, "DELETE FROM cursos WHERE id = ?", id)
	return errors.Wrap(err, "deleting curso")
}

// Turmas

type turmaRow struct {
	ID      int    `db:"id"`
	Nome    string `db:"nome"`
	Periodo string `db:"periodo"`
	CursoID int    `db:"curso_id"`
}

func (repo cursoRepository) CreateTurma(ctx context.Context, t curso.Turma) (curso.Turma, error) {
	q := "INSERT INTO turmas (nome, periodo, curso_id) VALUES (?, ?, ?) RETURNING id"
	if err := repo.get(ctx, &t.ID, q, t.Nome, t.Periodo, t.CursoID); err != nil {
		return curso.Turma{}, errors.Wrap(err, "inserting turma")
	}
	return t, nil
}

func (repo cursoRepository) TurmaExists(ctx context.Context, id int) (bool, error) {
	exists, err := repo.exists(ctx, "SELECT 1 FROM turmas WHERE id = ?", id)
	return exists, errors.Wrap(err, "checking turma existence")
}

func (repo cursoRepository) QueryTurmas(ctx context.Context, cursoIDs ...int) ([]curso.Turma, error) {
	var rows []turmaRow
	q := "SELECT id, nome, periodo, curso_id FROM turmas WHERE curso_id = ANY(?) ORDER BY id"
	if err := repo.selekt(ctx, &rows, q, pq.Array(cursoIDs)); err != nil {
		return nil, errors.Wrap(err, "querying turmas")
	}
	turmas := make([]curso.Turma, 0, len(rows))
	for _, row := range rows {
		turmas = append(turmas, curso.Turma{ID: row.ID, Nome: row.Nome, Periodo: row.Periodo, CursoID: row.CursoID})
	}
	return turmas, nil
}

func (repo cursoRepository) QueryEstudantes(ctx context.Context, turmaIDs ...int) ([]curso.EstudanteResumo, error) {
	var rows []struct {
		ID              int    `db:"id"`
		Nome            string `db:"nome"`
		NumeroMatricula string `db:"numero_matricula"`
		TurmaID         int    `db:"turma_id"`
	}
	q := `SELECT e.id, p.nome, e.numero_matricula, e.turma_id
FROM estudantes e JOIN pessoas p ON p.id = e.pessoa_id
WHERE e.turma_id = ANY(?) ORDER BY e.id`
	if err := repo.selekt(ctx, &rows, q, pq.Array(turmaIDs)); err != nil {
		return nil, errors.Wrap(err, "querying estudantes")
	}
	estudantes := make([]curso.EstudanteResumo, 0, len(rows))
	for _, row := range rows {
		estudantes = append(estudantes, curso.EstudanteResumo(row))
	}
	return estudantes, nil
}

func (repo cursoRepository) UpdateTurma(ctx context.Context, t curso.Turma) (curso.Turma, error) {
	n, err := repo.run(ctx, "UPDATE turmas SET nome = ?, periodo = ? WHERE id = ?", t.Nome, t.Periodo, t.ID)
	if err != nil {
		return curso.Turma{}, errors.Wrap(err, "updating turma")
	}
	if n == 0 {
		return curso.Turma{}, curso.ErrTurmaNotFound
	}
	return t, nil
}

func (repo cursoRepository) DeleteTurmas(ctx context.Context, ids ...int) error {
	_, err := repo.run(ctx, "DELETE FROM turmas WHERE id = ANY(?)", pq.Array(ids))
	return errors.Wrap(err, "deleting turmas")
}

// Disciplinas

type disciplinaRow struct {
	ID        int    `db:"id"`
	Nome      string `db:"nome"`
	Descricao string `db:"descricao"`
	CursoID   int    `db:"curso_id"`
}

func (repo cursoRepository) CreateDisciplina(ctx context.Context, d curso.Disciplina) (curso.Disciplina, error) {
	q := "INSERT INTO disciplinas (nome, descricao, curso_id) VALUES (?, ?, ?) RETURNING id"
	if err := repo.get(ctx, &d.ID, q, d.Nome, d.Descricao, d.CursoID); err != nil {
		return curso.Disciplina{}, errors.Wrap(err, "inserting disciplina")
	}
	return d, nil
}

func (repo cursoRepository) QueryDisciplinas(ctx context.Context, cursoIDs ...int) ([]curso.Disciplina, error) {
	var rows []disciplinaRow
	q := "SELECT id, nome, descricao, curso_id FROM disciplinas WHERE curso_id = ANY(?) ORDER BY id"
	if err := repo.selekt(ctx, &rows, q, pq.Array(cursoIDs)); err != nil {
		return nil, errors.Wrap(err, "querying disciplinas")
	}
	disciplinas := make([]curso.Disciplina, 0, len(rows))
	for _, row := range rows {
		disciplinas = append(disciplinas, curso.Disciplina(row))
	}
	return disciplinas, nil
}

func (repo cursoRepository) UpdateDisciplina(ctx context.Context, d curso.Disciplina) (curso.Disciplina, error) {
	n, err := repo.run(ctx, "UPDATE disciplinas SET nome = ?, descricao = ? WHERE id = ?", d.Nome, d.Descricao, d.ID)
	if err != nil {
		return curso.Disciplina{}, errors.Wrap(err, "updating disciplina")
	}
	if n == 0 {
		return curso.Disciplina{}, curso.ErrDisciplinaNotFound
	}
	return d, nil
}

func (repo cursoRepository) DeleteDisciplinas(ctx context.Context, ids ...int) error {
	_, err := repo.run(ctx, "DELETE FROM disciplinas WHERE id = ANY(?)", pq.Array(ids))
	return errors.Wrap(err, "deleting disciplinas")
}
