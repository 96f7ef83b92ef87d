package inmemdb

import (
	"context"

	"github.com/unicampus/backend/core"
	"github.com/unicampus/backend/core/colaborador"
)

type colaboradorRepository struct {
	db *DB
}

var _ colaborador.Repository = (*colaboradorRepository)(nil) // interface compliance check

func NewColaboradorRepository(db *DB) *colaboradorRepository {
	return &colaboradorRepository{db: db}
}

func (t *tables) colaboradorView(col colaborador.Colaborador) colaborador.Colaborador {
	col.Pessoa = t.pessoa(col.Pessoa.ID)
	col.UniversidadeNome = t.users[col.UserCPF].UniversidadeNome
	col.CursoNome = ""
	if col.CursoID.Valid {
		col.CursoNome = t.cursos[col.CursoID.Int].Nome
	}
	return col
}

func matchColaborador(col colaborador.Colaborador, filter colaborador.QueryFilter) bool {
	if filter.OwnerCPF != "" && col.UserCPF != filter.OwnerCPF {
		return false
	}
	if filter.CursoID != 0 && (!col.CursoID.Valid || col.CursoID.Int != filter.CursoID) {
		return false
	}
	return true
}

func (repo *colaboradorRepository) CreateColaborador(ctx context.Context, col colaborador.Colaborador) (colaborador.Colaborador, error) {
	err := repo.db.write(ctx, func(t *tables) error {
		stored := col
		stored.Pessoa = t.insertPessoa(col.Pessoa)
		stored.ID = t.nextID("colaboradores")
		t.colaboradores[stored.ID] = stored

		col.ID, col.Pessoa.ID = stored.ID, stored.Pessoa.ID
		return nil
	})
	return col, err
}

func (repo *colaboradorRepository) GetColaborador(ctx context.Context, id int) (colaborador.Colaborador, error) {
	var col colaborador.Colaborador
	err := repo.db.read(ctx, func(t *tables) error {
		stored, ok := t.colaboradores[id]
		if !ok {
			return colaborador.ErrNotFound
		}
		col = t.colaboradorView(stored)
		return nil
	})
	return col, err
}

func (repo *colaboradorRepository) QueryColaboradores(ctx context.Context, filter colaborador.QueryFilter, page core.Pagination) ([]colaborador.Colaborador, error) {
	cols := make([]colaborador.Colaborador, 0)
	err := repo.db.read(ctx, func(t *tables) error {
		for _, id := range sortedIDs(t.colaboradores) {
			if col := t.colaboradores[id]; matchColaborador(col, filter) {
				cols = append(cols, t.colaboradorView(col))
			}
		}
		return nil
	})
	return paginate(cols, page), err
}

func (repo *colaboradorRepository) QueryColaboradorIDs(ctx context.Context, filter colaborador.QueryFilter) ([]int, error) {
	var ids []int
	err := repo.db.read(ctx, func(t *tables) error {
		for _, id := range sortedIDs(t.colaboradores) {
			if matchColaborador(t.colaboradores[id], filter) {
				ids = append(ids, id)
			}
		}
		return nil
	})
	return ids, err
}

func (repo *colaboradorRepository) CursoTaken(ctx context.Context, cursoID, excludedID int) (bool, error) {
	var taken bool
	err := repo.db.read(ctx, func(t *tables) error {
		for _, col := range t.colaboradores {
			if col.ID != excludedID && col.CursoID.Valid && col.CursoID.Int == cursoID {
				taken = true
				break
			}
		}
		return nil
	})
	return taken, err
}

func (repo *colaboradorRepository) UpdateColaborador(ctx context.Context, col colaborador.Colaborador) (colaborador.Colaborador, error) {
	err := repo.db.write(ctx, func(t *tables) error {
		orig, ok := t.colaboradores[col.ID]
		if !ok {
			return colaborador.ErrNotFound
		}
		p := col.Pessoa
		p.ID = orig.Pessoa.ID
		t.pessoas[p.ID] = p

		stored := col
		stored.Pessoa = orig.Pessoa
		stored.CursoNome, stored.UniversidadeNome = "", ""
		t.colaboradores[col.ID] = stored
		return nil
	})
	return col, err
}

// DeleteColaboradores deletes the colaboradores and their pessoas.
func (repo *colaboradorRepository) DeleteColaboradores(ctx context.Context, ids ...int) error {
	return repo.db.write(ctx, func(t *tables) error {
		for _, id := range ids {
			if col, ok := t.colaboradores[id]; ok {
				t.deletePessoas(col.Pessoa.ID)
				delete(t.colaboradores, id)
			}
		}
		return nil
	})
}
