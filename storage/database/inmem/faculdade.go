package inmemdb

import (
	"context"

	"github.com/unicampus/backend/core"
	"github.com/unicampus/backend/core/faculdade"
)

type faculdadeRepository struct {
	db *DB
}

var _ faculdade.Repository = (*faculdadeRepository)(nil) // interface compliance check

func NewFaculdadeRepository(db *DB) *faculdadeRepository {
	return &faculdadeRepository{db: db}
}

// faculdadeView joins the owner's UniversidadeNome.
func (t *tables) faculdadeView(fac faculdade.Faculdade) faculdade.Faculdade {
	fac.UniversidadeNome = t.users[fac.UserCPF].UniversidadeNome
	fac.Cursos = nil
	return fac
}

func (t *tables) cursoResumo(id int) faculdade.CursoResumo {
	c := t.cursos[id]
	return faculdade.CursoResumo{
		ID:              c.ID,
		Nome:            c.Nome,
		Mensalidade:     c.Mensalidade,
		FaculdadeID:     c.FaculdadeID,
		FaculdadeNome:   t.faculdades[c.FaculdadeID].Nome,
		ColaboradorNome: t.colaboradorNome(id),
	}
}

func (t *tables) colaboradorNome(cursoID int) string {
	for _, col := range t.colaboradores {
		if col.CursoID.Valid && col.CursoID.Int == cursoID {
			return t.pessoas[col.Pessoa.ID].Nome
		}
	}
	return ""
}

func (repo *faculdadeRepository) CNPJExists(ctx context.Context, userCPF, cnpj string, excludedID int) (bool, error) {
	var exists bool
	err := repo.db.read(ctx, func(t *tables) error {
		for _, fac := range t.faculdades {
			if fac.UserCPF == userCPF && fac.CNPJ == cnpj && fac.ID != excludedID {
				exists = true
				break
			}
		}
		return nil
	})
	return exists, err
}

func (repo *faculdadeRepository) CreateFaculdade(ctx context.Context, fac faculdade.Faculdade) (faculdade.Faculdade, error) {
	err := repo.db.write(ctx, func(t *tables) error {
		fac.ID = t.nextID("faculdades")
		fac.UniversidadeNome, fac.Cursos = "", nil
		t.faculdades[fac.ID] = fac
		return nil
	})
	return fac, err
}

func (repo *faculdadeRepository) GetFaculdade(ctx context.Context, id int) (faculdade.Faculdade, error) {
	var fac faculdade.Faculdade
	err := repo.db.read(ctx, func(t *tables) error {
		f, ok := t.faculdades[id]
		if !ok {
			return faculdade.ErrNotFound
		}
		fac = t.faculdadeView(f)
		return nil
	})
	return fac, err
}

func (repo *faculdadeRepository) FaculdadeExists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := repo.db.read(ctx, func(t *tables) error {
		_, exists = t.faculdades[id]
		return nil
	})
	return exists, err
}

func (repo *faculdadeRepository) QueryFaculdades(ctx context.Context, filter faculdade.QueryFilter, page core.Pagination) ([]faculdade.Faculdade, error) {
	facs := make([]faculdade.Faculdade, 0)
	err := repo.db.read(ctx, func(t *tables) error {
		for _, id := range sortedIDs(t.faculdades) {
			fac := t.faculdades[id]
			if filter.OwnerCPF != "" && fac.UserCPF != filter.OwnerCPF {
				continue
			}
			facs = append(facs, t.faculdadeView(fac))
		}
		return nil
	})
	return paginate(facs, page), err
}

func (repo *faculdadeRepository) QueryFaculdadeIDs(ctx context.Context, ownerCPF string) ([]int, error) {
	var ids []int
	err := repo.db.read(ctx, func(t *tables) error {
		for _, id := range sortedIDs(t.faculdades) {
			if t.faculdades[id].UserCPF == ownerCPF {
				ids = append(ids, id)
			}
		}
		return nil
	})
	return ids, err
}

func (repo *faculdadeRepository) queryCursos(ctx context.Context, match func(id, faculdadeID int) bool) ([]faculdade.CursoResumo, error) {
	cursos := make([]faculdade.CursoResumo, 0)
	err := repo.db.read(ctx, func(t *tables) error {
		for _, id := range sortedIDs(t.cursos) {
			if match(id, t.cursos[id].FaculdadeID) {
				cursos = append(cursos, t.cursoResumo(id))
			}
		}
		return nil
	})
	return cursos, err
}

func (repo *faculdadeRepository) QueryCursosByFaculdade(ctx context.Context, faculdadeIDs ...int) ([]faculdade.CursoResumo, error) {
	set := intSet(faculdadeIDs)
	return repo.queryCursos(ctx, func(_, faculdadeID int) bool { return set[faculdadeID] })
}

func (repo *faculdadeRepository) QueryCursosByID(ctx context.Context, ids ...int) ([]faculdade.CursoResumo, error) {
	set := intSet(ids)
	return repo.queryCursos(ctx, func(id, _ int) bool { return set[id] })
}

func (repo *faculdadeRepository) MoveCursos(ctx context.Context, faculdadeID int, cursoIDs ...int) error {
	return repo.db.write(ctx, func(t *tables) error {
		for _, id := range cursoIDs {
			if c, ok := t.cursos[id]; ok {
				c.FaculdadeID = faculdadeID
				t.cursos[id] = c
			}
		}
		return nil
	})
}

func (repo *faculdadeRepository) UpdateFaculdade(ctx context.Context, fac faculdade.Faculdade) (faculdade.Faculdade, error) {
	err := repo.db.write(ctx, func(t *tables) error {
		if _, ok := t.faculdades[fac.ID]; !ok {
			return faculdade.ErrNotFound
		}
		stored := fac
		stored.UniversidadeNome, stored.Cursos = "", nil
		t.faculdades[fac.ID] = stored
		return nil
	})
	return fac, err
}

func (repo *faculdadeRepository) DeleteFaculdade(ctx context.Context, id int) error {
	return repo.db.write(ctx, func(t *tables) error {
		delete(t.faculdades, id)
		return nil
	})
}
