package curso

import (
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/unicampus/backend/core"
)

// Periodos
const (
	PeriodoMatutino   = "Matutino"
	PeriodoVespertino = "Vespertino"
	PeriodoNoturno    = "Noturno"
	PeriodoIntegral   = "Integral"
)

// MaxTurmas is the most turmas a Curso can have: one per Periodo.
const MaxTurmas = 4

type Curso struct {
	ID              int             `json:"id"`
	Nome            string          `json:"nome"`
	Mensalidade     decimal.Decimal `json:"mensalidade"`
	FaculdadeID     int             `json:"faculdade_id"`
	FaculdadeNome   string          `json:"faculdade_nome"`
	ColaboradorNome string          `json:"colaborador_nome,omitempty"`
	Turmas          []Turma         `json:"turmas"`
	Disciplinas     []Disciplina    `json:"disciplinas"`
}

type Turma struct {
	ID         int               `json:"id"`
	Nome       string            `json:"nome"`
	Periodo    string            `json:"periodo"`
	CursoID    int               `json:"curso_id"`
	Estudantes []EstudanteResumo `json:"estudantes"`
}

// EstudanteResumo is how an Estudante is shown inside its Turma.
type EstudanteResumo struct {
	ID              int    `json:"id"`
	Nome            string `json:"nome"`
	NumeroMatricula string `json:"numero_matricula"`
	TurmaID         int    `json:"-"`
}

type Disciplina struct {
	ID        int    `json:"id"`
	Nome      string `json:"nome"`
	Descricao string `json:"descricao"`
	CursoID   int    `json:"curso_id"`
}

type QueryFilter struct {
	FaculdadeID int
	// Search does a case-insensitive substring match on Curso.Nome.
	Search string
}

type NewTurma struct {
	Nome    string `json:"nome" validate:"required"`
	Periodo string `json:"periodo" validate:"required,oneof=Matutino Vespertino Noturno Integral"`
}

type NewDisciplina struct {
	Nome      string `json:"nome" validate:"required"`
	Descricao string `json:"descricao"`
}

// NewCurso contains information needed to create a new Curso.
type NewCurso struct {
	Nome             string          `json:"nome" validate:"required"`
	Mensalidade      decimal.Decimal `json:"mensalidade"`
	FaculdadeID      int             `json:"faculdade_id" validate:"required,gt=0"`
	QuantidadeTurmas int             `json:"quantidade_turmas" validate:"min=0"`
	Turmas           []NewTurma      `json:"turmas" validate:"omitempty,dive"`
	Disciplinas      []NewDisciplina `json:"disciplinas" validate:"omitempty,dive"`
}

func (nc *NewCurso) Validate(validate *validator.Validate) error {
	nc.Nome = core.CleanString(nc.Nome)
	for i := range nc.Turmas {
		nc.Turmas[i].clean()
	}
	for i := range nc.Disciplinas {
		nc.Disciplinas[i].clean()
	}
	return validate.Struct(nc)
}

func (nt *NewTurma) clean() {
	nt.Nome = core.CleanString(nt.Nome)
	nt.Periodo = core.CleanString(nt.Periodo)
}

func (nd *NewDisciplina) clean() {
	nd.Nome = core.CleanString(nd.Nome)
	nd.Descricao = core.CleanString(nd.Descricao)
}

// TurmaInput is a Turma as sent in a Curso update. ID 0 (or unknown) creates a new Turma.
type TurmaInput struct {
	ID int `json:"id"`
	NewTurma
}

// DisciplinaInput is a Disciplina as sent in a Curso update. ID 0 (or unknown) creates a new Disciplina.
type DisciplinaInput struct {
	ID int `json:"id"`
	NewDisciplina
}

// UpdateCurso defines what information may be provided to modify an existing Curso.
// Nil Turmas or Disciplinas leave the children untouched; a non-nil list is converged to.
type UpdateCurso struct {
	Nome        string            `json:"nome"`
	Mensalidade *decimal.Decimal  `json:"mensalidade"`
	FaculdadeID int               `json:"faculdade_id" validate:"min=0"`
	Turmas      []TurmaInput      `json:"turmas" validate:"omitempty,dive"`
	Disciplinas []DisciplinaInput `json:"disciplinas" validate:"omitempty,dive"`
}

func (uc *UpdateCurso) Validate(validate *validator.Validate) error {
	for i := range uc.Turmas {
		uc.Turmas[i].clean()
	}
	for i := range uc.Disciplinas {
		uc.Disciplinas[i].clean()
	}
	return validate.Struct(uc)
}

type AddTurmas struct {
	Turmas []NewTurma `json:"turmas" validate:"required,min=1,dive"`
}

func (at *AddTurmas) Validate(validate *validator.Validate) error {
	for i := range at.Turmas {
		at.Turmas[i].clean()
	}
	return validate.Struct(at)
}

type AddDisciplinas struct {
	Disciplinas []NewDisciplina `json:"disciplinas" validate:"required,min=1,dive"`
}

func (ad *AddDisciplinas) Validate(validate *validator.Validate) error {
	for i := range ad.Disciplinas {
		ad.Disciplinas[i].clean()
	}
	return validate.Struct(ad)
}
