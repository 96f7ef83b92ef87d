package faculdade

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/unicampus/backend/core"
)

var (
	// errors
	ErrNotFound      = core.NewNotFoundError("faculdade")
	ErrOwnerNotFound = core.NewNotFoundError("user")
	ErrCursoNotFound = core.NewNotFoundError("curso")
	ErrCNPJExists    = core.NewFieldError("cnpj", "this user already has a faculdade with this CNPJ")
	ErrNoNewCursos   = core.NewFieldError("curso_ids", "all the cursos are already linked to this faculdade")
)

type (
	Repository interface {
		CNPJExists(ctx context.Context, userCPF, cnpj string, excludedID int) (bool, error)
		CreateFaculdade(ctx context.Context, fac Faculdade) (Faculdade, error)
		// GetFaculdade returns the Faculdade with UniversidadeNome filled in but without its Cursos.
		GetFaculdade(ctx context.Context, id int) (Faculdade, error)
		FaculdadeExists(ctx context.Context, id int) (bool, error)
		QueryFaculdades(ctx context.Context, filter QueryFilter, page core.Pagination) ([]Faculdade, error)
		QueryFaculdadeIDs(ctx context.Context, ownerCPF string) ([]int, error)
		QueryCursosByFaculdade(ctx context.Context, faculdadeIDs ...int) ([]CursoResumo, error)
		QueryCursosByID(ctx context.Context, ids ...int) ([]CursoResumo, error)
		MoveCursos(ctx context.Context, faculdadeID int, cursoIDs ...int) error
		UpdateFaculdade(ctx context.Context, fac Faculdade) (Faculdade, error)
		DeleteFaculdade(ctx context.Context, id int) error
	}

	Owners interface {
		UserExists(ctx context.Context, cpf string) (bool, error)
	}

	// Cursos manages the cursos of a faculdade.
	Cursos interface {
		CreateNamed(ctx context.Context, faculdadeID int, nomes []string) error
		DeleteByFaculdade(ctx context.Context, faculdadeID int) error
	}

	Service struct {
		tx     core.Transactor
		repo   Repository
		owners Owners
		cursos Cursos
	}
)

func NewService(tx core.Transactor, repo Repository, owners Owners, cursos Cursos) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(tx, "tx"),
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(owners, "owners"),
		vala.IsNotNil(cursos, "cursos"),
	).CheckAndPanic()

	return &Service{tx: tx, repo: repo, owners: owners, cursos: cursos}
}

func (svc *Service) checkOwner(ctx context.Context, cpf string) error {
	exists, err := svc.owners.UserExists(ctx, cpf)
	if err != nil {
		return errors.Wrap(err, "checking owner existence")
	}
	if !exists {
		return ErrOwnerNotFound
	}
	return nil
}

func (svc *Service) checkCNPJ(ctx context.Context, userCPF, cnpj string, excludedID int) error {
	exists, err := svc.repo.CNPJExists(ctx, userCPF, cnpj, excludedID)
	if err != nil {
		return errors.Wrap(err, "checking CNPJ uniqueness")
	}
	if exists {
		return ErrCNPJExists
	}
	return nil
}

// withCursos fills in the cursos of each faculdade.
func (svc *Service) withCursos(ctx context.Context, facs ...Faculdade) ([]Faculdade, error) {
	if len(facs) == 0 {
		return []Faculdade{}, nil
	}
	ids := make([]int, 0, len(facs))
	for _, f := range facs {
		ids = append(ids, f.ID)
	}
	cursos, err := svc.repo.QueryCursosByFaculdade(ctx, ids...)
	if err != nil {
		return nil, errors.Wrap(err, "querying cursos")
	}
	byFac := make(map[int][]CursoResumo, len(facs))
	for _, c := range cursos {
		byFac[c.FaculdadeID] = append(byFac[c.FaculdadeID], c)
	}
	for i := range facs {
		facs[i].Cursos = byFac[facs[i].ID]
		if facs[i].Cursos == nil {
			facs[i].Cursos = []CursoResumo{}
		}
		if facs[i].UniversidadeNome == "" {
			facs[i].UniversidadeNome = core.DefaultUniversidadeNome
		}
	}
	return facs, nil
}

// Create creates the Faculdade and the cursos named in CursosOferecidos, atomically. nf must have been validated.
func (svc *Service) Create(ctx context.Context, nf NewFaculdade) (Faculdade, error) {
	var fac Faculdade
	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := svc.checkOwner(ctx, nf.UserCPF); err != nil {
			return err
		}
		if err := svc.checkCNPJ(ctx, nf.UserCPF, nf.CNPJ, 0); err != nil {
			return err
		}

		var err error
		fac, err = svc.repo.CreateFaculdade(ctx, Faculdade{
			Nome:             nf.Nome,
			CNPJ:             nf.CNPJ,
			Telefone:         nf.Telefone,
			EmailResponsavel: nf.EmailResponsavel,
			Tipo:             nf.Tipo,
			UserCPF:          nf.UserCPF,
			Endereco:         nf.Endereco,
		})
		if err != nil {
			return errors.Wrap(err, "creating faculdade")
		}
		if len(nf.CursosOferecidos) > 0 {
			if err = svc.cursos.CreateNamed(ctx, fac.ID, nf.CursosOferecidos); err != nil {
				return errors.Wrap(err, "creating cursos")
			}
		}
		fac, err = svc.Get(ctx, fac.ID)
		return err
	})
	return fac, err
}

func (svc *Service) Get(ctx context.Context, id int) (Faculdade, error) {
	fac, err := svc.repo.GetFaculdade(ctx, id)
	if err != nil {
		return Faculdade{}, errors.Wrap(err, "finding faculdade by ID")
	}
	facs, err := svc.withCursos(ctx, fac)
	if err != nil {
		return Faculdade{}, err
	}
	return facs[0], nil
}

func (svc *Service) List(ctx context.Context, page core.Pagination) ([]Faculdade, error) {
	facs, err := svc.repo.QueryFaculdades(ctx, QueryFilter{}, page)
	if err != nil {
		return nil, errors.Wrap(err, "querying faculdades")
	}
	return svc.withCursos(ctx, facs...)
}

func (svc *Service) ListByOwner(ctx context.Context, cpf string, page core.Pagination) ([]Faculdade, error) {
	cpf = core.OnlyDigits(cpf)
	if err := svc.checkOwner(ctx, cpf); err != nil {
		return nil, err
	}
	facs, err := svc.repo.QueryFaculdades(ctx, QueryFilter{OwnerCPF: cpf}, page)
	if err != nil {
		return nil, errors.Wrap(err, "querying faculdades")
	}
	return svc.withCursos(ctx, facs...)
}

// Update applies the non-blank fields of uf. uf must have been validated.
func (svc *Service) Update(ctx context.Context, id int, uf UpdateFaculdade) (Faculdade, error) {
	var fac Faculdade
	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		orig, err := svc.repo.GetFaculdade(ctx, id)
		if err != nil {
			return errors.Wrap(err, "finding faculdade by ID")
		}
		fac = uf.Apply(orig)
		if fac.CNPJ != orig.CNPJ {
			if err = svc.checkCNPJ(ctx, fac.UserCPF, fac.CNPJ, fac.ID); err != nil {
				return err
			}
		}
		if _, err = svc.repo.UpdateFaculdade(ctx, fac); err != nil {
			return errors.Wrap(err, "updating faculdade")
		}
		fac, err = svc.Get(ctx, id)
		return err
	})
	return fac, err
}

func (svc *Service) delete(ctx context.Context, id int) error {
	if err := svc.cursos.DeleteByFaculdade(ctx, id); err != nil {
		return errors.Wrap(err, "deleting cursos")
	}
	return errors.Wrap(svc.repo.DeleteFaculdade(ctx, id), "deleting faculdade")
}

// Delete removes the Faculdade and everything under it, atomically.
func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := svc.repo.FaculdadeExists(ctx, id)
		if err != nil {
			return errors.Wrap(err, "checking faculdade existence")
		}
		if !exists {
			return ErrNotFound
		}
		return svc.delete(ctx, id)
	})
}

// DeleteByOwner removes every Faculdade of the account, atomically.
func (svc *Service) DeleteByOwner(ctx context.Context, cpf string) error {
	return svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		ids, err := svc.repo.QueryFaculdadeIDs(ctx, cpf)
		if err != nil {
			return errors.Wrap(err, "querying faculdade IDs")
		}
		for _, id := range ids {
			if err = svc.delete(ctx, id); err != nil {
				return errors.Wrapf(err, "deleting faculdade %d", id)
			}
		}
		return nil
	})
}

// AddCursos links existing cursos to the Faculdade and returns the ones that were not linked yet.
// Cursos already linked are skipped; it fails when none is new.
func (svc *Service) AddCursos(ctx context.Context, id int, cursoIDs []int) ([]CursoResumo, error) {
	var added []CursoResumo
	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		fac, err := svc.repo.GetFaculdade(ctx, id)
		if err != nil {
			return errors.Wrap(err, "finding faculdade by ID")
		}

		ids := uniqueInts(cursoIDs)
		found, err := svc.repo.QueryCursosByID(ctx, ids...)
		if err != nil {
			return errors.Wrap(err, "querying cursos")
		}
		if len(found) != len(ids) {
			return ErrCursoNotFound
		}

		linked, err := svc.repo.QueryCursosByFaculdade(ctx, id)
		if err != nil {
			return errors.Wrap(err, "querying cursos")
		}
		names := make(map[string]bool, len(linked)+len(found))
		for _, c := range linked {
			names[core.FoldKey(c.Nome)] = true
		}

		var dupes []string
		for _, c := range found {
			if c.FaculdadeID == id {
				continue
			}
			key := core.FoldKey(c.Nome)
			if names[key] {
				dupes = append(dupes, c.Nome)
				continue
			}
			names[key] = true
			c.FaculdadeID = id
			c.FaculdadeNome = fac.Nome
			added = append(added, c)
		}
		if len(dupes) > 0 {
			msg := fmt.Sprintf("this faculdade already has cursos named: %s", strings.Join(dupes, ", "))
			return core.NewFieldError("curso_ids", msg)
		}
		if len(added) == 0 {
			return ErrNoNewCursos
		}

		moved := make([]int, 0, len(added))
		for _, c := range added {
			moved = append(moved, c.ID)
		}
		return errors.Wrap(svc.repo.MoveCursos(ctx, id, moved...), "moving cursos")
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

func uniqueInts(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}
