package colaborador

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/unicampus/backend/core"
	"github.com/unicampus/backend/core/pessoa"
)

// CargoDocente is the only Cargo that must be linked to a Curso.
const CargoDocente = "Docente"

type Colaborador struct {
	ID             int           `json:"id"`
	Pessoa         pessoa.Pessoa `json:"pessoa"`
	UserCPF        string        `json:"user_cpf"`
	Cargo          string        `json:"cargo"`
	NumeroRegistro string        `json:"numero_registro"`
	DataAdmissao   time.Time     `json:"data_admissao"`
	CursoID        null.Int      `json:"curso_id"`

	// views
	CursoNome        string `json:"curso_nome,omitempty"`
	UniversidadeNome string `json:"universidade_nome"`
}

func (c Colaborador) IsDocente() bool {
	return c.Cargo == CargoDocente
}

// NewColaborador contains information needed to create a new Colaborador.
type NewColaborador struct {
	Pessoa         pessoa.Pessoa `json:"pessoa"`
	UserCPF        string        `json:"user_cpf" validate:"required,cpf"`
	Cargo          string        `json:"cargo" validate:"required,notblank"`
	NumeroRegistro string        `json:"numero_registro"`
	DataAdmissao   time.Time     `json:"data_admissao"`
	CursoID        null.Int      `json:"curso_id"`
}

func (nc *NewColaborador) Validate(validate *validator.Validate) error {
	nc.Pessoa.Clean()
	nc.UserCPF = core.OnlyDigits(nc.UserCPF)
	nc.Cargo = core.CleanString(nc.Cargo)
	nc.NumeroRegistro = core.CleanString(nc.NumeroRegistro)
	return validate.Struct(nc)
}

// UpdateColaborador defines what information may be provided to modify an existing Colaborador.
// Blank fields are left untouched.
type UpdateColaborador struct {
	Pessoa         pessoa.UpdatePessoa `json:"pessoa"`
	UserCPF        string              `json:"user_cpf" validate:"omitempty,cpf"`
	Cargo          string              `json:"cargo"`
	NumeroRegistro string              `json:"numero_registro"`
	DataAdmissao   time.Time           `json:"data_admissao"`
	CursoID        null.Int            `json:"curso_id"`
}

func (uc *UpdateColaborador) Validate(validate *validator.Validate) error {
	uc.UserCPF = core.OnlyDigits(uc.UserCPF)
	return validate.Struct(uc)
}

// Apply returns orig with every non-blank field of uc applied.
func (uc UpdateColaborador) Apply(orig Colaborador) Colaborador {
	col := orig
	col.Pessoa = uc.Pessoa.Apply(orig.Pessoa)
	if uc.UserCPF != "" {
		col.UserCPF = uc.UserCPF
	}
	col.Cargo = core.Coalesce(uc.Cargo, orig.Cargo)
	col.NumeroRegistro = core.Coalesce(uc.NumeroRegistro, orig.NumeroRegistro)
	if !uc.DataAdmissao.IsZero() {
		col.DataAdmissao = uc.DataAdmissao
	}
	if uc.CursoID.Valid {
		col.CursoID = uc.CursoID
	}
	return col
}
