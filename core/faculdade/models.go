package faculdade

import (
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/unicampus/backend/core"
	"github.com/unicampus/backend/core/pessoa"
)

// Tipos
const (
	TipoPublica = "Publica"
	TipoPrivada = "Privada"
	TipoMilitar = "Militar"
)

type Faculdade struct {
	ID               int             `json:"id"`
	Nome             string          `json:"nome"`
	CNPJ             string          `json:"cnpj"`
	Telefone         string          `json:"telefone"`
	EmailResponsavel string          `json:"email_responsavel"`
	Tipo             string          `json:"tipo"`
	UserCPF          string          `json:"user_cpf"`
	Endereco         pessoa.Endereco `json:"endereco"`
	UniversidadeNome string          `json:"universidade_nome"`
	Cursos           []CursoResumo   `json:"cursos"`
}

// CursoResumo is how a Curso is shown inside its Faculdade.
type CursoResumo struct {
	ID              int             `json:"id"`
	Nome            string          `json:"nome"`
	Mensalidade     decimal.Decimal `json:"mensalidade"`
	FaculdadeID     int             `json:"faculdade_id"`
	FaculdadeNome   string          `json:"faculdade_nome"`
	ColaboradorNome string          `json:"colaborador_nome,omitempty"`
}

type QueryFilter struct {
	OwnerCPF string
}

// NewFaculdade contains information needed to create a new Faculdade.
type NewFaculdade struct {
	Nome             string          `json:"nome" validate:"required"`
	CNPJ             string          `json:"cnpj" validate:"required"`
	Telefone         string          `json:"telefone"`
	EmailResponsavel string          `json:"email_responsavel" validate:"omitempty,email"`
	Tipo             string          `json:"tipo" validate:"required,oneof=Publica Privada Militar"`
	UserCPF          string          `json:"user_cpf" validate:"required,cpf"`
	Endereco         pessoa.Endereco `json:"endereco"`
	CursosOferecidos []string        `json:"cursos_oferecidos"`
}

func (nf *NewFaculdade) Validate(validate *validator.Validate) error {
	nf.Nome = core.CleanString(nf.Nome)
	nf.CNPJ = core.CleanString(nf.CNPJ)
	nf.Telefone = core.CleanString(nf.Telefone)
	nf.EmailResponsavel = core.CleanString(nf.EmailResponsavel, true /* lower */)
	nf.Tipo = core.CleanString(nf.Tipo)
	nf.UserCPF = core.OnlyDigits(nf.UserCPF)
	nf.Endereco = nf.Endereco.Clean()
	return validate.Struct(nf)
}

// UpdateFaculdade defines what information may be provided to modify an existing Faculdade.
// Blank fields are left untouched.
type UpdateFaculdade struct {
	Nome             string          `json:"nome"`
	CNPJ             string          `json:"cnpj"`
	Telefone         string          `json:"telefone"`
	EmailResponsavel string          `json:"email_responsavel" validate:"omitempty,email"`
	Tipo             string          `json:"tipo" validate:"omitempty,oneof=Publica Privada Militar"`
	Endereco         pessoa.Endereco `json:"endereco"`
}

func (uf *UpdateFaculdade) Validate(validate *validator.Validate) error {
	uf.EmailResponsavel = core.CleanString(uf.EmailResponsavel, true /* lower */)
	uf.Tipo = core.CleanString(uf.Tipo)
	return validate.Struct(uf)
}

// Apply returns orig with every non-blank field of uf applied.
func (uf UpdateFaculdade) Apply(orig Faculdade) Faculdade {
	fac := orig
	fac.Nome = core.Coalesce(uf.Nome, orig.Nome)
	fac.CNPJ = core.Coalesce(uf.CNPJ, orig.CNPJ)
	fac.Telefone = core.Coalesce(uf.Telefone, orig.Telefone)
	fac.EmailResponsavel = core.Coalesce(uf.EmailResponsavel, orig.EmailResponsavel, true /* lower */)
	fac.Tipo = core.Coalesce(uf.Tipo, orig.Tipo)
	fac.Endereco = orig.Endereco.Merge(uf.Endereco)
	return fac
}

type AdicionarCursos struct {
	CursoIDs []int `json:"curso_ids" validate:"required,min=1"`
}

func (ac AdicionarCursos) Validate(validate *validator.Validate) error {
	return validate.Struct(ac)
}
