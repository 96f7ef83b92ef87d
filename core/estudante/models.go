package estudante

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/unicampus/backend/core"
	"github.com/unicampus/backend/core/pessoa"
)

type Estudante struct {
	ID              int           `json:"id"`
	Pessoa          pessoa.Pessoa `json:"pessoa"`
	TurmaID         int           `json:"turma_id"`
	NumeroMatricula string        `json:"numero_matricula"`
	DataMatricula   time.Time     `json:"data_matricula"`
	TelefonePai     string        `json:"telefone_pai"`
	TelefoneMae     string        `json:"telefone_mae"`

	TurmaNome string `json:"turma_nome"`
}

// NewEstudante contains information needed to enroll a new Estudante.
type NewEstudante struct {
	Pessoa          pessoa.Pessoa `json:"pessoa"`
	TurmaID         int           `json:"turma_id" validate:"required,gt=0"`
	NumeroMatricula string        `json:"numero_matricula"`
	DataMatricula   time.Time     `json:"data_matricula"`
	TelefonePai     string        `json:"telefone_pai"`
	TelefoneMae     string        `json:"telefone_mae"`
}

func (ne *NewEstudante) Validate(validate *validator.Validate) error {
	ne.Pessoa.Clean()
	ne.NumeroMatricula = core.CleanString(ne.NumeroMatricula)
	ne.TelefonePai = core.CleanString(ne.TelefonePai)
	ne.TelefoneMae = core.CleanString(ne.TelefoneMae)
	return validate.Struct(ne)
}

// UpdateEstudante defines what information may be provided to modify an existing Estudante.
// Blank fields are left untouched.
type UpdateEstudante struct {
	Pessoa          pessoa.UpdatePessoa `json:"pessoa"`
	TurmaID         int                 `json:"turma_id" validate:"min=0"`
	NumeroMatricula string              `json:"numero_matricula"`
	DataMatricula   time.Time           `json:"data_matricula"`
	TelefonePai     string              `json:"telefone_pai"`
	TelefoneMae     string              `json:"telefone_mae"`
}

func (ue *UpdateEstudante) Validate(validate *validator.Validate) error {
	return validate.Struct(ue)
}

// Apply returns orig with every non-blank field of ue applied.
func (ue UpdateEstudante) Apply(orig Estudante) Estudante {
	est := orig
	est.Pessoa = ue.Pessoa.Apply(orig.Pessoa)
	if ue.TurmaID != 0 {
		est.TurmaID = ue.TurmaID
	}
	est.NumeroMatricula = core.Coalesce(ue.NumeroMatricula, orig.NumeroMatricula)
	if !ue.DataMatricula.IsZero() {
		est.DataMatricula = ue.DataMatricula
	}
	est.TelefonePai = core.Coalesce(ue.TelefonePai, orig.TelefonePai)
	est.TelefoneMae = core.Coalesce(ue.TelefoneMae, orig.TelefoneMae)
	return est
}
