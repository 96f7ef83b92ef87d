package curso

import (
	"context"
	"fmt"
	"strings"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/unicampus/backend/core"
)

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("curso")
	ErrTurmaNotFound      = core.NewNotFoundError("turma")
	ErrDisciplinaNotFound = core.NewNotFoundError("disciplina")
	ErrFaculdadeNotFound  = core.NewNotFoundError("faculdade")
	ErrNameExists         = core.NewFieldError("nome", "this faculdade already has a curso with this name")
	ErrNegativeFee        = core.NewFieldError("mensalidade", "mensalidade cannot be negative")
	ErrTooManyTurmas      = core.NewFieldError("turmas", fmt.Sprintf("a curso cannot have more than %d turmas", MaxTurmas))
)

type (
	Repository interface {
		// CursoNameExists does a case-insensitive match on Nome within the faculdade.
		CursoNameExists(ctx context.Context, faculdadeID int, nome string, excludedID int) (bool, error)
		CreateCurso(ctx context.Context, c Curso) (Curso, error)
		// GetCurso returns the Curso with FaculdadeNome and ColaboradorNome filled in but without children.
		GetCurso(ctx context.Context, id int) (Curso, error)
		CursoExists(ctx context.Context, id int) (bool, error)
		QueryCursos(ctx context.Context, filter QueryFilter, page core.Pagination) ([]Curso, error)
		QueryCursoIDs(ctx context.Context, faculdadeID int) ([]int, error)
		UpdateCurso(ctx context.Context, c Curso) (Curso, error)
		DeleteCurso(ctx context.Context, id int) error

		CreateTurma(ctx context.Context, t Turma) (Turma, error)
		TurmaExists(ctx context.Context, id int) (bool, error)
		QueryTurmas(ctx context.Context, cursoIDs ...int) ([]Turma, error)
		QueryEstudantes(ctx context.Context, turmaIDs ...int) ([]EstudanteResumo, error)
		UpdateTurma(ctx context.Context, t Turma) (Turma, error)
		DeleteTurmas(ctx context.Context, ids ...int) error

		CreateDisciplina(ctx context.Context, d Disciplina) (Disciplina, error)
		QueryDisciplinas(ctx context.Context, cursoIDs ...int) ([]Disciplina, error)
		UpdateDisciplina(ctx context.Context, d Disciplina) (Disciplina, error)
		DeleteDisciplinas(ctx context.Context, ids ...int) error
	}

	Faculdades interface {
		FaculdadeExists(ctx context.Context, id int) (bool, error)
	}

	EstudanteRemover interface {
		DeleteByTurmas(ctx context.Context, turmaIDs ...int) error
	}

	ColaboradorRemover interface {
		DeleteByCurso(ctx context.Context, cursoID int) error
	}

	Service struct {
		tx            core.Transactor
		repo          Repository
		faculdades    Faculdades
		estudantes    EstudanteRemover
		colaboradores ColaboradorRemover
	}
)

func NewService(
	tx core.Transactor,
	repo Repository,
	faculdades Faculdades,
	estudantes EstudanteRemover,
	colaboradores ColaboradorRemover,
) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(tx, "tx"),
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(faculdades, "faculdades"),
		vala.IsNotNil(estudantes, "estudantes"),
		vala.IsNotNil(colaboradores, "colaboradores"),
	).CheckAndPanic()

	return &Service{
		tx:            tx,
		repo:          repo,
		faculdades:    faculdades,
		estudantes:    estudantes,
		colaboradores: colaboradores,
	}
}

// Validation helpers

func (svc *Service) checkFaculdade(ctx context.Context, id int) error {
	exists, err := svc.faculdades.FaculdadeExists(ctx, id)
	if err != nil {
		return errors.Wrap(err, "checking faculdade existence")
	}
	if !exists {
		return ErrFaculdadeNotFound
	}
	return nil
}

func (svc *Service) checkName(ctx context.Context, faculdadeID int, nome string, excludedID int) error {
	exists, err := svc.repo.CursoNameExists(ctx, faculdadeID, nome, excludedID)
	if err != nil {
		return errors.Wrap(err, "checking curso name uniqueness")
	}
	if exists {
		return ErrNameExists
	}
	return nil
}

func checkMensalidade(m decimal.Decimal) error {
	if m.IsNegative() {
		return ErrNegativeFee
	}
	return nil
}

// checkPeriodos fails when a Periodo is used twice or when there are more than MaxTurmas.
func checkPeriodos(periodos []string) error {
	if len(periodos) > MaxTurmas {
		return ErrTooManyTurmas
	}
	if dupes := repeated(periodos, strings.ToLower); len(dupes) > 0 {
		msg := fmt.Sprintf("the following periods are repeated: %s", strings.Join(dupes, ", "))
		return core.NewFieldError("turmas", msg)
	}
	return nil
}

func checkDisciplinaNames(nomes []string) error {
	if dupes := repeated(nomes, core.FoldKey); len(dupes) > 0 {
		msg := fmt.Sprintf("the following disciplinas are repeated: %s", strings.Join(dupes, ", "))
		return core.NewFieldError("disciplinas", msg)
	}
	return nil
}

// repeated returns, in order of first repetition, every value whose key appears more than once.
func repeated(values []string, key func(string) string) []string {
	seen := make(map[string]int, len(values))
	var dupes []string
	for _, v := range values {
		k := key(v)
		seen[k]++
		if seen[k] == 2 {
			dupes = append(dupes, v)
		}
	}
	return dupes
}

// withChildren fills in turmas (with their estudantes) and disciplinas of each curso.
func (svc *Service) withChildren(ctx context.Context, cursos ...Curso) ([]Curso, error) {
	if len(cursos) == 0 {
		return []Curso{}, nil
	}
	ids := make([]int, 0, len(cursos))
	for _, c := range cursos {
		ids = append(ids, c.ID)
	}

	turmas, err := svc.repo.QueryTurmas(ctx, ids...)
	if err != nil {
		return nil, errors.Wrap(err, "querying turmas")
	}
	turmaIDs := make([]int, 0, len(turmas))
	for _, t := range turmas {
		turmaIDs = append(turmaIDs, t.ID)
	}
	estByTurma := make(map[int][]EstudanteResumo)
	if len(turmaIDs) > 0 {
		estudantes, err := svc.repo.QueryEstudantes(ctx, turmaIDs...)
		if err != nil {
			return nil, errors.Wrap(err, "querying estudantes")
		}
		for _, e := range estudantes {
			estByTurma[e.TurmaID] = append(estByTurma[e.TurmaID], e)
		}
	}
	turmasByCurso := make(map[int][]Turma, len(cursos))
	for _, t := range turmas {
		t.Estudantes = estByTurma[t.ID]
		if t.Estudantes == nil {
			t.Estudantes = []EstudanteResumo{}
		}
		turmasByCurso[t.CursoID] = append(turmasByCurso[t.CursoID], t)
	}

	disciplinas, err := svc.repo.QueryDisciplinas(ctx, ids...)
	if err != nil {
		return nil, errors.Wrap(err, "querying disciplinas")
	}
	discByCurso := make(map[int][]Disciplina, len(cursos))
	for _, d := range disciplinas {
		discByCurso[d.CursoID] = append(discByCurso[d.CursoID], d)
	}

	for i := range cursos {
		cursos[i].Turmas = turmasByCurso[cursos[i].ID]
		if cursos[i].Turmas == nil {
			cursos[i].Turmas = []Turma{}
		}
		cursos[i].Disciplinas = discByCurso[cursos[i].ID]
		if cursos[i].Disciplinas == nil {
			cursos[i].Disciplinas = []Disciplina{}
		}
	}
	return cursos, nil
}

// Create creates the Curso with its turmas and disciplinas, atomically. nc must have been validated.
func (svc *Service) Create(ctx context.Context, nc NewCurso) (Curso, error) {
	if err := checkMensalidade(nc.Mensalidade); err != nil {
		return Curso{}, err
	}
	if nc.QuantidadeTurmas != len(nc.Turmas) {
		msg := fmt.Sprintf("expected %d turmas, got %d", nc.QuantidadeTurmas, len(nc.Turmas))
		return Curso{}, core.NewFieldError("turmas", msg)
	}
	periodos := make([]string, 0, len(nc.Turmas))
	for _, t := range nc.Turmas {
		periodos = append(periodos, t.Periodo)
	}
	if err := checkPeriodos(periodos); err != nil {
		return Curso{}, err
	}
	nomes := make([]string, 0, len(nc.Disciplinas))
	for _, d := range nc.Disciplinas {
		nomes = append(nomes, d.Nome)
	}
	if err := checkDisciplinaNames(nomes); err != nil {
		return Curso{}, err
	}

	var c Curso
	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := svc.checkFaculdade(ctx, nc.FaculdadeID); err != nil {
			return err
		}
		if err := svc.checkName(ctx, nc.FaculdadeID, nc.Nome, 0); err != nil {
			return err
		}

		created, err := svc.repo.CreateCurso(ctx, Curso{
			Nome:        nc.Nome,
			Mensalidade: nc.Mensalidade.Round(2),
			FaculdadeID: nc.FaculdadeID,
		})
		if err != nil {
			return errors.Wrap(err, "creating curso")
		}
		for _, t := range nc.Turmas {
			if _, err = svc.repo.CreateTurma(ctx, Turma{Nome: t.Nome, Periodo: t.Periodo, CursoID: created.ID}); err != nil {
				return errors.Wrap(err, "creating turma")
			}
		}
		for _, d := range nc.Disciplinas {
			if _, err = svc.repo.CreateDisciplina(ctx, Disciplina{Nome: d.Nome, Descricao: d.Descricao, CursoID: created.ID}); err != nil {
				return errors.Wrap(err, "creating disciplina")
			}
		}
		c, err = svc.Get(ctx, created.ID)
		return err
	})
	return c, err
}

// CreateNamed creates one Curso per non-blank name under the faculdade.
func (svc *Service) CreateNamed(ctx context.Context, faculdadeID int, nomes []string) error {
	cleaned := make([]string, 0, len(nomes))
	for _, n := range nomes {
		if n = core.CleanString(n); n != "" {
			cleaned = append(cleaned, n)
		}
	}
	if dupes := repeated(cleaned, core.FoldKey); len(dupes) > 0 {
		msg := fmt.Sprintf("the following cursos are repeated: %s", strings.Join(dupes, ", "))
		return core.NewFieldError("cursos_oferecidos", msg)
	}

	return svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, nome := range cleaned {
			if err := svc.checkName(ctx, faculdadeID, nome, 0); err != nil {
				return err
			}
			if _, err := svc.repo.CreateCurso(ctx, Curso{Nome: nome, FaculdadeID: faculdadeID}); err != nil {
				return errors.Wrap(err, "creating curso")
			}
		}
		return nil
	})
}

func (svc *Service) Get(ctx context.Context, id int) (Curso, error) {
	c, err := svc.repo.GetCurso(ctx, id)
	if err != nil {
		return Curso{}, errors.Wrap(err, "finding curso by ID")
	}
	cursos, err := svc.withChildren(ctx, c)
	if err != nil {
		return Curso{}, err
	}
	return cursos[0], nil
}

func (svc *Service) List(ctx context.Context, filter QueryFilter, page core.Pagination) ([]Curso, error) {
	filter.Search = core.CleanString(filter.Search)
	cursos, err := svc.repo.QueryCursos(ctx, filter, page)
	if err != nil {
		return nil, errors.Wrap(err, "querying cursos")
	}
	return svc.withChildren(ctx, cursos...)
}

// Update replaces the supplied scalar fields and converges turmas and disciplinas to the supplied lists,
// atomically. uc must have been validated.
func (svc *Service) Update(ctx context.Context, id int, uc UpdateCurso) (Curso, error) {
	if uc.Mensalidade != nil {
		if err := checkMensalidade(*uc.Mensalidade); err != nil {
			return Curso{}, err
		}
	}
	if uc.Turmas != nil {
		periodos := make([]string, 0, len(uc.Turmas))
		for _, t := range uc.Turmas {
			periodos = append(periodos, t.Periodo)
		}
		if err := checkPeriodos(periodos); err != nil {
			return Curso{}, err
		}
	}
	if uc.Disciplinas != nil {
		nomes := make([]string, 0, len(uc.Disciplinas))
		for _, d := range uc.Disciplinas {
			nomes = append(nomes, d.Nome)
		}
		if err := checkDisciplinaNames(nomes); err != nil {
			return Curso{}, err
		}
	}

	var c Curso
	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		orig, err := svc.repo.GetCurso(ctx, id)
		if err != nil {
			return errors.Wrap(err, "finding curso by ID")
		}

		upd := orig
		upd.Nome = core.Coalesce(uc.Nome, orig.Nome)
		if uc.Mensalidade != nil {
			upd.Mensalidade = uc.Mensalidade.Round(2)
		}
		if uc.FaculdadeID != 0 && uc.FaculdadeID != orig.FaculdadeID {
			if err = svc.checkFaculdade(ctx, uc.FaculdadeID); err != nil {
				return err
			}
			upd.FaculdadeID = uc.FaculdadeID
		}
		if upd.FaculdadeID != orig.FaculdadeID || core.FoldKey(upd.Nome) != core.FoldKey(orig.Nome) {
			if err = svc.checkName(ctx, upd.FaculdadeID, upd.Nome, id); err != nil {
				return err
			}
		}

		if _, err = svc.repo.UpdateCurso(ctx, upd); err != nil {
			return errors.Wrap(err, "updating curso")
		}
		if uc.Turmas != nil {
			if err = svc.convergeTurmas(ctx, id, uc.Turmas); err != nil {
				return err
			}
		}
		if uc.Disciplinas != nil {
			if err = svc.convergeDisciplinas(ctx, id, uc.Disciplinas); err != nil {
				return err
			}
		}
		c, err = svc.Get(ctx, id)
		return err
	})
	return c, err
}

// convergeTurmas updates the turmas present in both sets, deletes (with their estudantes) the ones
// missing from `want` and creates the new ones.
func (svc *Service) convergeTurmas(ctx context.Context, cursoID int, want []TurmaInput) error {
	existing, err := svc.repo.QueryTurmas(ctx, cursoID)
	if err != nil {
		return errors.Wrap(err, "querying turmas")
	}
	byID := make(map[int]Turma, len(existing))
	for _, t := range existing {
		byID[t.ID] = t
	}

	keep := make(map[int]bool, len(want))
	var toUpdate []Turma
	var toCreate []Turma
	for _, in := range want {
		if orig, ok := byID[in.ID]; ok && !keep[in.ID] {
			keep[in.ID] = true
			if orig.Nome != in.Nome || orig.Periodo != in.Periodo {
				orig.Nome, orig.Periodo = in.Nome, in.Periodo
				toUpdate = append(toUpdate, orig)
			}
			continue
		}
		toCreate = append(toCreate, Turma{Nome: in.Nome, Periodo: in.Periodo, CursoID: cursoID})
	}

	var toDelete []int
	for _, t := range existing {
		if !keep[t.ID] {
			toDelete = append(toDelete, t.ID)
		}
	}
	if len(toDelete) > 0 {
		if err = svc.deleteTurmas(ctx, toDelete...); err != nil {
			return err
		}
	}
	for _, t := range toUpdate {
		if _, err = svc.repo.UpdateTurma(ctx, t); err != nil {
			return errors.Wrap(err, "updating turma")
		}
	}
	for _, t := range toCreate {
		if _, err = svc.repo.CreateTurma(ctx, t); err != nil {
			return errors.Wrap(err, "creating turma")
		}
	}
	return nil
}

func (svc *Service) convergeDisciplinas(ctx context.Context, cursoID int, want []DisciplinaInput) error {
	existing, err := svc.repo.QueryDisciplinas(ctx, cursoID)
	if err != nil {
		return errors.Wrap(err, "querying disciplinas")
	}
	byID := make(map[int]Disciplina, len(existing))
	for _, d := range existing {
		byID[d.ID] = d
	}

	keep := make(map[int]bool, len(want))
	var toUpdate []Disciplina
	var toCreate []Disciplina
	for _, in := range want {
		if orig, ok := byID[in.ID]; ok && !keep[in.ID] {
			keep[in.ID] = true
			if orig.Nome != in.Nome || orig.Descricao != in.Descricao {
				orig.Nome, orig.Descricao = in.Nome, in.Descricao
				toUpdate = append(toUpdate, orig)
			}
			continue
		}
		toCreate = append(toCreate, Disciplina{Nome: in.Nome, Descricao: in.Descricao, CursoID: cursoID})
	}

	var toDelete []int
	for _, d := range existing {
		if !keep[d.ID] {
			toDelete = append(toDelete, d.ID)
		}
	}
	if len(toDelete) > 0 {
		if err = svc.repo.DeleteDisciplinas(ctx, toDelete...); err != nil {
			return errors.Wrap(err, "deleting disciplinas")
		}
	}
	for _, d := range toUpdate {
		if _, err = svc.repo.UpdateDisciplina(ctx, d); err != nil {
			return errors.Wrap(err, "updating disciplina")
		}
	}
	for _, d := range toCreate {
		if _, err = svc.repo.CreateDisciplina(ctx, d); err != nil {
			return errors.Wrap(err, "creating disciplina")
		}
	}
	return nil
}

func (svc *Service) deleteTurmas(ctx context.Context, ids ...int) error {
	if err := svc.estudantes.DeleteByTurmas(ctx, ids...); err != nil {
		return errors.Wrap(err, "deleting estudantes")
	}
	return errors.Wrap(svc.repo.DeleteTurmas(ctx, ids...), "deleting turmas")
}

func (svc *Service) delete(ctx context.Context, id int) error {
	turmas, err := svc.repo.QueryTurmas(ctx, id)
	if err != nil {
		return errors.Wrap(err, "querying turmas")
	}
	if len(turmas) > 0 {
		ids := make([]int, 0, len(turmas))
		for _, t := range turmas {
			ids = append(ids, t.ID)
		}
		if err = svc.deleteTurmas(ctx, ids...); err != nil {
			return err
		}
	}

	disciplinas, err := svc.repo.QueryDisciplinas(ctx, id)
	if err != nil {
		return errors.Wrap(err, "querying disciplinas")
	}
	if len(disciplinas) > 0 {
		ids := make([]int, 0, len(disciplinas))
		for _, d := range disciplinas {
			ids = append(ids, d.ID)
		}
		if err = svc.repo.DeleteDisciplinas(ctx, ids...); err != nil {
			return errors.Wrap(err, "deleting disciplinas")
		}
	}

	if err = svc.colaboradores.DeleteByCurso(ctx, id); err != nil {
		return errors.Wrap(err, "deleting colaborador")
	}
	return errors.Wrap(svc.repo.DeleteCurso(ctx, id), "deleting curso")
}

// Delete removes the Curso with its turmas (and their estudantes), disciplinas and colaborador, atomically.
func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := svc.repo.CursoExists(ctx, id)
		if err != nil {
			return errors.Wrap(err, "checking curso existence")
		}
		if !exists {
			return ErrNotFound
		}
		return svc.delete(ctx, id)
	})
}

// DeleteByFaculdade removes every Curso of the faculdade, atomically.
func (svc *Service) DeleteByFaculdade(ctx context.Context, faculdadeID int) error {
	return svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		ids, err := svc.repo.QueryCursoIDs(ctx, faculdadeID)
		if err != nil {
			return errors.Wrap(err, "querying curso IDs")
		}
		for _, id := range ids {
			if err = svc.delete(ctx, id); err != nil {
				return errors.Wrapf(err, "deleting curso %d", id)
			}
		}
		return nil
	})
}

// AddTurmas adds turmas to the Curso. The resulting turmas must not exceed MaxTurmas nor repeat a Periodo.
func (svc *Service) AddTurmas(ctx context.Context, id int, turmas []NewTurma) ([]Turma, error) {
	var created []Turma
	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := svc.existingTurmas(ctx, id)
		if err != nil {
			return err
		}
		if len(existing)+len(turmas) > MaxTurmas {
			return ErrTooManyTurmas
		}
		periodos := make([]string, 0, len(existing)+len(turmas))
		for _, t := range existing {
			periodos = append(periodos, t.Periodo)
		}
		for _, t := range turmas {
			periodos = append(periodos, t.Periodo)
		}
		if err = checkPeriodos(periodos); err != nil {
			return err
		}

		for _, t := range turmas {
			turma, err := svc.repo.CreateTurma(ctx, Turma{Nome: t.Nome, Periodo: t.Periodo, CursoID: id})
			if err != nil {
				return errors.Wrap(err, "creating turma")
			}
			turma.Estudantes = []EstudanteResumo{}
			created = append(created, turma)
		}
		return nil
	})
	return created, err
}

func (svc *Service) existingTurmas(ctx context.Context, cursoID int) ([]Turma, error) {
	exists, err := svc.repo.CursoExists(ctx, cursoID)
	if err != nil {
		return nil, errors.Wrap(err, "checking curso existence")
	}
	if !exists {
		return nil, ErrNotFound
	}
	turmas, err := svc.repo.QueryTurmas(ctx, cursoID)
	return turmas, errors.Wrap(err, "querying turmas")
}

// AddDisciplinas adds disciplinas to the Curso. Names must not repeat (case-insensitive).
func (svc *Service) AddDisciplinas(ctx context.Context, id int, disciplinas []NewDisciplina) ([]Disciplina, error) {
	var created []Disciplina
	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := svc.existingDisciplinas(ctx, id)
		if err != nil {
			return err
		}
		nomes := make([]string, 0, len(existing)+len(disciplinas))
		for _, d := range existing {
			nomes = append(nomes, d.Nome)
		}
		for _, d := range disciplinas {
			nomes = append(nomes, d.Nome)
		}
		if err = checkDisciplinaNames(nomes); err != nil {
			return err
		}

		for _, d := range disciplinas {
			disc, err := svc.repo.CreateDisciplina(ctx, Disciplina{Nome: d.Nome, Descricao: d.Descricao, CursoID: id})
			if err != nil {
				return errors.Wrap(err, "creating disciplina")
			}
			created = append(created, disc)
		}
		return nil
	})
	return created, err
}

func (svc *Service) existingDisciplinas(ctx context.Context, cursoID int) ([]Disciplina, error) {
	exists, err := svc.repo.CursoExists(ctx, cursoID)
	if err != nil {
		return nil, errors.Wrap(err, "checking curso existence")
	}
	if !exists {
		return nil, ErrNotFound
	}
	disciplinas, err := svc.repo.QueryDisciplinas(ctx, cursoID)
	return disciplinas, errors.Wrap(err, "querying disciplinas")
}

// DeleteTurma removes a Turma of the Curso with its estudantes, atomically.
func (svc *Service) DeleteTurma(ctx context.Context, id, turmaID int) error {
	return svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		turmas, err := svc.existingTurmas(ctx, id)
		if err != nil {
			return err
		}
		for _, t := range turmas {
			if t.ID == turmaID {
				return svc.deleteTurmas(ctx, turmaID)
			}
		}
		return ErrTurmaNotFound
	})
}

func (svc *Service) DeleteDisciplina(ctx context.Context, id, disciplinaID int) error {
	return svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		disciplinas, err := svc.existingDisciplinas(ctx, id)
		if err != nil {
			return err
		}
		for _, d := range disciplinas {
			if d.ID == disciplinaID {
				return errors.Wrap(svc.repo.DeleteDisciplinas(ctx, disciplinaID), "deleting disciplina")
			}
		}
		return ErrDisciplinaNotFound
	})
}
