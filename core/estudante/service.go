package estudante

import (
	"context"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/unicampus/backend/core"
)

var (
	// errors
	ErrNotFound      = core.NewNotFoundError("estudante")
	ErrOwnerNotFound = core.NewNotFoundError("user")
	ErrTurmaNotFound = core.NewNotFoundError("turma")
)

type (
	// QueryFilter selects estudantes. OwnerCPF follows Turma -> Curso -> Faculdade -> User.
	QueryFilter struct {
		OwnerCPF string
	}

	// Repository persists an Estudante together with its Pessoa.
	Repository interface {
		CreateEstudante(ctx context.Context, est Estudante) (Estudante, error)
		// GetEstudante returns the Estudante with TurmaNome filled in.
		GetEstudante(ctx context.Context, id int) (Estudante, error)
		QueryEstudantes(ctx context.Context, filter QueryFilter, page core.Pagination) ([]Estudante, error)
		QueryEstudanteIDsByTurma(ctx context.Context, turmaIDs ...int) ([]int, error)
		UpdateEstudante(ctx context.Context, est Estudante) (Estudante, error)
		DeleteEstudantes(ctx context.Context, ids ...int) error
	}

	Owners interface {
		UserExists(ctx context.Context, cpf string) (bool, error)
	}

	Turmas interface {
		TurmaExists(ctx context.Context, id int) (bool, error)
	}

	Service struct {
		tx     core.Transactor
		repo   Repository
		owners Owners
		turmas Turmas
	}
)

func NewService(tx core.Transactor, repo Repository, owners Owners, turmas Turmas) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(tx, "tx"),
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(owners, "owners"),
		vala.IsNotNil(turmas, "turmas"),
	).CheckAndPanic()

	return &Service{tx: tx, repo: repo, owners: owners, turmas: turmas}
}

func (svc *Service) checkTurma(ctx context.Context, id int) error {
	exists, err := svc.turmas.TurmaExists(ctx, id)
	if err != nil {
		return errors.Wrap(err, "checking turma existence")
	}
	if !exists {
		return ErrTurmaNotFound
	}
	return nil
}

// Create enrolls the Estudante, creating its Pessoa, atomically. ne must have been validated.
func (svc *Service) Create(ctx context.Context, ne NewEstudante) (Estudante, error) {
	var est Estudante
	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := svc.checkTurma(ctx, ne.TurmaID); err != nil {
			return err
		}
		created, err := svc.repo.CreateEstudante(ctx, Estudante{
			Pessoa:          ne.Pessoa,
			TurmaID:         ne.TurmaID,
			NumeroMatricula: ne.NumeroMatricula,
			DataMatricula:   ne.DataMatricula,
			TelefonePai:     ne.TelefonePai,
			TelefoneMae:     ne.TelefoneMae,
		})
		if err != nil {
			return errors.Wrap(err, "creating estudante")
		}
		est, err = svc.Get(ctx, created.ID)
		return err
	})
	return est, err
}

func (svc *Service) Get(ctx context.Context, id int) (Estudante, error) {
	est, err := svc.repo.GetEstudante(ctx, id)
	return est, errors.Wrap(err, "finding estudante by ID")
}

func (svc *Service) List(ctx context.Context, page core.Pagination) ([]Estudante, error) {
	ests, err := svc.repo.QueryEstudantes(ctx, QueryFilter{}, page)
	return ests, errors.Wrap(err, "querying estudantes")
}

func (svc *Service) ListByOwner(ctx context.Context, cpf string, page core.Pagination) ([]Estudante, error) {
	cpf = core.OnlyDigits(cpf)
	exists, err := svc.owners.UserExists(ctx, cpf)
	if err != nil {
		return nil, errors.Wrap(err, "checking owner existence")
	}
	if !exists {
		return nil, ErrOwnerNotFound
	}
	ests, err := svc.repo.QueryEstudantes(ctx, QueryFilter{OwnerCPF: cpf}, page)
	return ests, errors.Wrap(err, "querying estudantes")
}

// Update applies the non-blank fields of ue. ue must have been validated.
func (svc *Service) Update(ctx context.Context, id int, ue UpdateEstudante) (Estudante, error) {
	var est Estudante
	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		orig, err := svc.repo.GetEstudante(ctx, id)
		if err != nil {
			return errors.Wrap(err, "finding estudante by ID")
		}
		upd := ue.Apply(orig)
		if upd.TurmaID != orig.TurmaID {
			if err = svc.checkTurma(ctx, upd.TurmaID); err != nil {
				return err
			}
		}
		if _, err = svc.repo.UpdateEstudante(ctx, upd); err != nil {
			return errors.Wrap(err, "updating estudante")
		}
		est, err = svc.Get(ctx, id)
		return err
	})
	return est, err
}

// Delete removes the Estudante and its Pessoa, atomically.
func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := svc.repo.GetEstudante(ctx, id); err != nil {
			return errors.Wrap(err, "finding estudante by ID")
		}
		return errors.Wrap(svc.repo.DeleteEstudantes(ctx, id), "deleting estudante")
	})
}

// DeleteByTurmas removes every Estudante enrolled in one of the turmas.
func (svc *Service) DeleteByTurmas(ctx context.Context, turmaIDs ...int) error {
	if len(turmaIDs) == 0 {
		return nil
	}
	return svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		ids, err := svc.repo.QueryEstudanteIDsByTurma(ctx, turmaIDs...)
		if err != nil {
			return errors.Wrap(err, "querying estudante IDs")
		}
		if len(ids) == 0 {
			return nil
		}
		return errors.Wrap(svc.repo.DeleteEstudantes(ctx, ids...), "deleting estudantes")
	})
}
