package colaborador

import (
	"context"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/unicampus/backend/core"
)

var (
	// errors
	ErrNotFound            = core.NewNotFoundError("colaborador")
	ErrOwnerNotFound       = core.NewNotFoundError("user")
	ErrCursoNotFound       = core.NewNotFoundError("curso")
	ErrDocenteWithoutCurso = core.NewFieldError("curso_id", "curso_id is required when cargo is Docente")
	ErrCursoTaken          = core.NewFieldError("curso_id", "this curso already has a colaborador")
)

type (
	// QueryFilter selects colaboradores. Zero fields are ignored.
	QueryFilter struct {
		OwnerCPF string
		CursoID  int
	}

	// Repository persists a Colaborador together with its Pessoa.
	Repository interface {
		CreateColaborador(ctx context.Context, col Colaborador) (Colaborador, error)
		// GetColaborador returns the Colaborador with its views filled in.
		GetColaborador(ctx context.Context, id int) (Colaborador, error)
		QueryColaboradores(ctx context.Context, filter QueryFilter, page core.Pagination) ([]Colaborador, error)
		QueryColaboradorIDs(ctx context.Context, filter QueryFilter) ([]int, error)
		// CursoTaken reports whether a colaborador other than excludedID is linked to the curso.
		CursoTaken(ctx context.Context, cursoID, excludedID int) (bool, error)
		UpdateColaborador(ctx context.Context, col Colaborador) (Colaborador, error)
		DeleteColaboradores(ctx context.Context, ids ...int) error
	}

	Owners interface {
		UserExists(ctx context.Context, cpf string) (bool, error)
	}

	Cursos interface {
		CursoExists(ctx context.Context, id int) (bool, error)
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

// checkCurso fails unless the curso exists and no colaborador other than colID is linked to it.
func (svc *Service) checkCurso(ctx context.Context, cursoID, colID int) error {
	exists, err := svc.cursos.CursoExists(ctx, cursoID)
	if err != nil {
		return errors.Wrap(err, "checking curso existence")
	}
	if !exists {
		return ErrCursoNotFound
	}
	taken, err := svc.repo.CursoTaken(ctx, cursoID, colID)
	if err != nil {
		return errors.Wrap(err, "checking curso colaborador")
	}
	if taken {
		return ErrCursoTaken
	}
	return nil
}

func view(cols ...Colaborador) []Colaborador {
	if cols == nil {
		return []Colaborador{}
	}
	for i := range cols {
		if !cols[i].IsDocente() {
			cols[i].CursoNome = ""
		}
		if cols[i].UniversidadeNome == "" {
			cols[i].UniversidadeNome = core.DefaultUniversidadeNome
		}
	}
	return cols
}

// Create creates the Colaborador and its Pessoa, atomically. nc must have been validated.
func (svc *Service) Create(ctx context.Context, nc NewColaborador) (Colaborador, error) {
	if nc.Cargo == CargoDocente && !nc.CursoID.Valid {
		return Colaborador{}, ErrDocenteWithoutCurso
	}

	var col Colaborador
	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := svc.checkOwner(ctx, nc.UserCPF); err != nil {
			return err
		}
		if nc.CursoID.Valid {
			if err := svc.checkCurso(ctx, nc.CursoID.Int, 0); err != nil {
				return err
			}
		}

		created, err := svc.repo.CreateColaborador(ctx, Colaborador{
			Pessoa:         nc.Pessoa,
			UserCPF:        nc.UserCPF,
			Cargo:          nc.Cargo,
			NumeroRegistro: nc.NumeroRegistro,
			DataAdmissao:   nc.DataAdmissao,
			CursoID:        nc.CursoID,
		})
		if err != nil {
			return errors.Wrap(err, "creating colaborador")
		}
		col, err = svc.Get(ctx, created.ID)
		return err
	})
	return col, err
}

func (svc *Service) Get(ctx context.Context, id int) (Colaborador, error) {
	col, err := svc.repo.GetColaborador(ctx, id)
	if err != nil {
		return Colaborador{}, errors.Wrap(err, "finding colaborador by ID")
	}
	return view(col)[0], nil
}

func (svc *Service) List(ctx context.Context, page core.Pagination) ([]Colaborador, error) {
	cols, err := svc.repo.QueryColaboradores(ctx, QueryFilter{}, page)
	if err != nil {
		return nil, errors.Wrap(err, "querying colaboradores")
	}
	return view(cols...), nil
}

func (svc *Service) ListByOwner(ctx context.Context, cpf string, page core.Pagination) ([]Colaborador, error) {
	cpf = core.OnlyDigits(cpf)
	if err := svc.checkOwner(ctx, cpf); err != nil {
		return nil, err
	}
	cols, err := svc.repo.QueryColaboradores(ctx, QueryFilter{OwnerCPF: cpf}, page)
	if err != nil {
		return nil, errors.Wrap(err, "querying colaboradores")
	}
	return view(cols...), nil
}

// Update applies the non-blank fields of uc. uc must have been validated.
func (svc *Service) Update(ctx context.Context, id int, uc UpdateColaborador) (Colaborador, error) {
	var col Colaborador
	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		orig, err := svc.repo.GetColaborador(ctx, id)
		if err != nil {
			return errors.Wrap(err, "finding colaborador by ID")
		}

		upd := uc.Apply(orig)
		if upd.IsDocente() && !upd.CursoID.Valid {
			return ErrDocenteWithoutCurso
		}
		if upd.UserCPF != orig.UserCPF {
			if err = svc.checkOwner(ctx, upd.UserCPF); err != nil {
				return err
			}
		}
		if upd.CursoID.Valid && upd.CursoID != orig.CursoID {
			if err = svc.checkCurso(ctx, upd.CursoID.Int, id); err != nil {
				return err
			}
		}

		if _, err = svc.repo.UpdateColaborador(ctx, upd); err != nil {
			return errors.Wrap(err, "updating colaborador")
		}
		col, err = svc.Get(ctx, id)
		return err
	})
	return col, err
}

// Delete removes the Colaborador and its Pessoa, atomically.
func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := svc.repo.GetColaborador(ctx, id); err != nil {
			return errors.Wrap(err, "finding colaborador by ID")
		}
		return errors.Wrap(svc.repo.DeleteColaboradores(ctx, id), "deleting colaborador")
	})
}

func (svc *Service) deleteWhere(ctx context.Context, filter QueryFilter) error {
	return svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		ids, err := svc.repo.QueryColaboradorIDs(ctx, filter)
		if err != nil {
			return errors.Wrap(err, "querying colaborador IDs")
		}
		if len(ids) == 0 {
			return nil
		}
		return errors.Wrap(svc.repo.DeleteColaboradores(ctx, ids...), "deleting colaboradores")
	})
}

// DeleteByOwner removes every Colaborador created by the account.
func (svc *Service) DeleteByOwner(ctx context.Context, cpf string) error {
	return svc.deleteWhere(ctx, QueryFilter{OwnerCPF: cpf})
}

// DeleteByCurso removes the Colaborador linked to the curso, if any.
func (svc *Service) DeleteByCurso(ctx context.Context, cursoID int) error {
	return svc.deleteWhere(ctx, QueryFilter{CursoID: cursoID})
}
