package inmemdb

import (
	"context"
	"strings"

	"github.com/unicampus/backend/core"
	"github.com/unicampus/backend/core/curso"
)

type cursoRepository struct {
	db *DB
}

var _ curso.Repository = (*cursoRepository)(nil) // interface compliance check

func NewCursoRepository(db *DB) *cursoRepository {
	return &cursoRepository{db: db}
}

func (t *tables) cursoView(c curso.Curso) curso.Curso {
	c.FaculdadeNome = t.faculdades[c.FaculdadeID].Nome
	c.ColaboradorNome = t.colaboradorNome(c.ID)
	c.Turmas, c.Disciplinas = nil, nil
	return c
}

func (repo *cursoRepository) CursoNameExists(ctx context.Context, faculdadeID int, nome string, excludedID int) (bool, error) {
	key := core.FoldKey(nome)
	var exists bool
	err := repo.db.read(ctx, func(t *tables) error {
		for _, c := range t.cursos {
			if c.FaculdadeID == faculdadeID && c.ID != excludedID && core.FoldKey(c.Nome) == key {
				exists = true
				break
			}
		}
		return nil
	})
	return exists, err
}

func (repo *cursoRepository) CreateCurso(ctx context.Context, c curso.Curso) (curso.Curso, error) {
	err := repo.db.write(ctx, func(t *tables) error {
		c.ID = t.nextID("cursos")
		t.cursos[c.ID] = t.cursoView(c)
		return nil
	})
	return c, err
}

func (repo *cursoRepository) GetCurso(ctx context.Context, id int) (curso.Curso, error) {
	var c curso.Curso
	err := repo.db.read(ctx, func(t *tables) error {
		stored, ok := t.cursos[id]
		if !ok {
			return curso.ErrNotFound
		}
		c = t.cursoView(stored)
		return nil
	})
	return c, err
}

func (repo *cursoRepository) CursoExists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := repo.db.read(ctx, func(t *tables) error {
		_, exists = t.cursos[id]
		return nil
	})
	return exists, err
}

func (repo *cursoRepository) QueryCursos(ctx context.Context, filter curso.QueryFilter, page core.Pagination) ([]curso.Curso, error) {
	search := strings.ToLower(filter.Search)
	cursos := make([]curso.Curso, 0)
	err := repo.db.read(ctx, func(t *tables) error {
		for _, id := range sortedIDs(t.cursos) {
			c := t.cursos[id]
			if filter.FaculdadeID != 0 && c.FaculdadeID != filter.FaculdadeID {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(c.Nome), search) {
				continue
			}
			cursos = append(cursos, t.cursoView(c))
		}
		return nil
	})
	return paginate(cursos, page), err
}

func (repo *cursoRepository) QueryCursoIDs(ctx context.Context, faculdadeID int) ([]int, error) {
	var ids []int
	err := repo.db.read(ctx, func(t *tables) error {
		for _, id := range sortedIDs(t.cursos) {
			if t.cursos[id].FaculdadeID == faculdadeID {
				ids = append(ids, id)
			}
		}
		return nil
	})
	return ids, err
}

func (repo *cursoRepository) UpdateCurso(ctx context.Context, c curso.Curso) (curso.Curso, error) {
	err := repo.db.write(ctx, func(t *tables) error {
		if _, ok := t.cursos[c.ID]; !ok {
			return curso.ErrNotFound
		}
		t.cursos[c.ID] = t.cursoView(c)
		return nil
	})
	return c, err
}

func (repo *cursoRepository) DeleteCurso(ctx context.Context, id int) error {
	return repo.db.write(ctx, func(t *tables) error {
		if _, ok := t.cursos[id]; !ok {
			return curso.ErrNotFound
		}
		delete(t.cursos, id)
		return nil
	})
}

func (repo *cursoRepository) CreateTurma(ctx context.Context, tu curso.Turma) (curso.Turma, error) {
	err := repo.db.write(ctx, func(t *tables) error {
		tu.ID = t.nextID("turmas")
		tu.Estudantes = nil
		t.turmas[tu.ID] = tu
		return nil
	})
	return tu, err
}

func (repo *cursoRepository) TurmaExists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := repo.db.read(ctx, func(t *tables) error {
		_, exists = t.turmas[id]
		return nil
	})
	return exists, err
}

func (repo *cursoRepository) QueryTurmas(ctx context.Context, cursoIDs ...int) ([]curso.Turma, error) {
	set := intSet(cursoIDs)
	turmas := make([]curso.Turma, 0)
	err := repo.db.read(ctx, func(t *tables) error {
		for _, id := range sortedIDs(t.turmas) {
			if tu := t.turmas[id]; set[tu.CursoID] {
				turmas = append(turmas, tu)
			}
		}
		return nil
	})
	return turmas, err
}

func (repo *cursoRepository) QueryEstudantes(ctx context.Context, turmaIDs ...int) ([]curso.EstudanteResumo, error) {
	set := intSet(turmaIDs)
	estudantes := make([]curso.EstudanteResumo, 0)
	err := repo.db.read(ctx, func(t *tables) error {
		for _, id := range sortedIDs(t.estudantes) {
			est := t.estudantes[id]
			if !set[est.TurmaID] {
				continue
			}
			estudantes = append(estudantes, curso.EstudanteResumo{
				ID:              est.ID,
				Nome:            t.pessoas[est.Pessoa.ID].Nome,
				NumeroMatricula: est.NumeroMatricula,
				TurmaID:         est.TurmaID,
			})
		}
		return nil
	})
	return estudantes, err
}

func (repo *cursoRepository) UpdateTurma(ctx context.Context, tu curso.Turma) (curso.Turma, error) {
	err := repo.db.write(ctx, func(t *tables) error {
		stored, ok := t.turmas[tu.ID]
		if !ok {
			return curso.ErrTurmaNotFound
		}
		stored.Nome, stored.Periodo = tu.Nome, tu.Periodo
		t.turmas[tu.ID] = stored
		return nil
	})
	return tu, err
}

func (repo *cursoRepository) DeleteTurmas(ctx context.Context, ids ...int) error {
	return repo.db.write(ctx, func(t *tables) error {
		for _, id := range ids {
			delete(t.turmas, id)
		}
		return nil
	})
}

func (repo *cursoRepository) CreateDisciplina(ctx context.Context, d curso.Disciplina) (curso.Disciplina, error) {
	err := repo.db.write(ctx, func(t *tables) error {
		d.ID = t.nextID("disciplinas")
		t.disciplinas[d.ID] = d
		return nil
	})
	return d, err
}

func (repo *cursoRepository) QueryDisciplinas(ctx context.Context, cursoIDs ...int) ([]curso.Disciplina, error) {
	set := intSet(cursoIDs)
	disciplinas := make([]curso.Disciplina, 0)
	err := repo.db.read(ctx, func(t *tables) error {
		for _, id := range sortedIDs(t.disciplinas) {
			if d := t.disciplinas[id]; set[d.CursoID] {
				disciplinas = append(disciplinas, d)
			}
		}
		return nil
	})
	return disciplinas, err
}

func (repo *cursoRepository) UpdateDisciplina(ctx context.Context, d curso.Disciplina) (curso.Disciplina, error) {
	err := repo.db.write(ctx, func(t *tables) error {
		stored, ok := t.disciplinas[d.ID]
		if !ok {
			return curso.ErrDisciplinaNotFound
		}
		stored.Nome, stored.Descricao = d.Nome, d.Descricao
		t.disciplinas[d.ID] = stored
		return nil
	})
	return d, err
}

func (repo *cursoRepository) DeleteDisciplinas(ctx context.Context, ids ...int) error {
	return repo.db.write(ctx, func(t *tables) error {
		for _, id := range ids {
			delete(t.disciplinas, id)
		}
		return nil
	})
}
