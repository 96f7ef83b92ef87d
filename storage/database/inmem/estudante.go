package inmemdb

import (
	"context"

	"github.com/unicampus/backend/core"
	"github.com/unicampus/backend/core/estudante"
)

type estudanteRepository struct {
	db *DB
}

var _ estudante.Repository = (*estudanteRepository)(nil) // interface compliance check

func NewEstudanteRepository(db *DB) *estudanteRepository {
	return &estudanteRepository{db: db}
}

func (t *tables) estudanteView(est estudante.Estudante) estudante.Estudante {
	est.Pessoa = t.pessoa(est.Pessoa.ID)
	est.TurmaNome = t.turmas[est.TurmaID].Nome
	return est
}

// ownerOf walks turma -> curso -> faculdade up to the owning account.
func (t *tables) ownerOf(est estudante.Estudante) string {
	c := t.cursos[t.turmas[est.TurmaID].CursoID]
	return t.faculdades[c.FaculdadeID].UserCPF
}

func (repo *estudanteRepository) CreateEstudante(ctx context.Context, est estudante.Estudante) (estudante.Estudante, error) {
	err := repo.db.write(ctx, func(t *tables) error {
		stored := est
		stored.Pessoa = t.insertPessoa(est.Pessoa)
		stored.ID = t.nextID("estudantes")
		stored.TurmaNome = ""
		t.estudantes[stored.ID] = stored

		est.ID, est.Pessoa.ID = stored.ID, stored.Pessoa.ID
		return nil
	})
	return est, err
}

func (repo *estudanteRepository) GetEstudante(ctx context.Context, id int) (estudante.Estudante, error) {
	var est estudante.Estudante
	err := repo.db.read(ctx, func(t *tables) error {
		stored, ok := t.estudantes[id]
		if !ok {
			return estudante.ErrNotFound
		}
		est = t.estudanteView(stored)
		return nil
	})
	return est, err
}

func (repo *estudanteRepository) QueryEstudantes(ctx context.Context, filter estudante.QueryFilter, page core.Pagination) ([]estudante.Estudante, error) {
	ests := make([]estudante.Estudante, 0)
	err := repo.db.read(ctx, func(t *tables) error {
		for _, id := range sortedIDs(t.estudantes) {
			est := t.estudantes[id]
			if filter.OwnerCPF != "" && t.ownerOf(est) != filter.OwnerCPF {
				continue
			}
			ests = append(ests, t.estudanteView(est))
		}
		return nil
	})
	return paginate(ests, page), err
}

func (repo *estudanteRepository) QueryEstudanteIDsByTurma(ctx context.Context, turmaIDs ...int) ([]int, error) {
	set := intSet(turmaIDs)
	var ids []int
	err := repo.db.read(ctx, func(t *tables) error {
		for _, id := range sortedIDs(t.estudantes) {
			if set[t.estudantes[id].TurmaID] {
				ids = append(ids, id)
			}
		}
		return nil
	})
	return ids, err
}

func (repo *estudanteRepository) UpdateEstudante(ctx context.Context, est estudante.Estudante) (estudante.Estudante, error) {
	err := repo.db.write(ctx, func(t *tables) error {
		orig, ok := t.estudantes[est.ID]
		if !ok {
			return estudante.ErrNotFound
		}
		p := est.Pessoa
		p.ID = orig.Pessoa.ID
		t.pessoas[p.ID] = p

		stored := est
		stored.Pessoa = orig.Pessoa
		stored.TurmaNome = ""
		t.estudantes[est.ID] = stored
		return nil
	})
	return est, err
}

// DeleteEstudantes deletes the estudantes and their pessoas.
func (repo *estudanteRepository) DeleteEstudantes(ctx context.Context, ids ...int) error {
	return repo.db.write(ctx, func(t *tables) error {
		for _, id := range ids {
			if est, ok := t.estudantes[id]; ok {
				t.deletePessoas(est.Pessoa.ID)
				delete(t.estudantes, id)
			}
		}
		return nil
	})
}
