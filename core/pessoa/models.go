package pessoa

import (
	"time"

	"github.com/unicampus/backend/core"
)

type Endereco struct {
	Logradouro string `json:"logradouro" db:"logradouro"`
	Numero     string `json:"numero" db:"numero"`
	Bairro     string `json:"bairro" db:"bairro"`
	Cidade     string `json:"cidade" db:"cidade"`
	Estado     string `json:"estado" db:"estado"`
	CEP        string `json:"cep" db:"cep"`
}

// Merge applies the non-blank fields of upd over e.
func (e Endereco) Merge(upd Endereco) Endereco {
	return Endereco{
		Logradouro: core.Coalesce(upd.Logradouro, e.Logradouro),
		Numero:     core.Coalesce(upd.Numero, e.Numero),
		Bairro:     core.Coalesce(upd.Bairro, e.Bairro),
		Cidade:     core.Coalesce(upd.Cidade, e.Cidade),
		Estado:     core.Coalesce(upd.Estado, e.Estado),
		CEP:        core.Coalesce(upd.CEP, e.CEP),
	}
}

func (e Endereco) Clean() Endereco {
	return Endereco{}.Merge(e)
}

// Pessoa holds the personal data owned by a Colaborador or an Estudante.
type Pessoa struct {
	ID              int       `json:"-"`
	Nome            string    `json:"nome" validate:"required,notblank"`
	CPF             string    `json:"cpf" validate:"omitempty,cpf"`
	RG              string    `json:"rg"`
	Email           string    `json:"email" validate:"omitempty,email"`
	Telefone        string    `json:"telefone"`
	TituloEleitor   string    `json:"titulo_eleitor"`
	EstadoCivil     string    `json:"estado_civil"`
	Nacionalidade   string    `json:"nacionalidade"`
	CorRacaEtnia    string    `json:"cor_raca_etnia"`
	Escolaridade    string    `json:"escolaridade"`
	NomePai         string    `json:"nome_pai"`
	NomeMae         string    `json:"nome_mae"`
	DataNascimento  time.Time `json:"data_nascimento"`
	UrlImagemPerfil string    `json:"url_imagem_perfil"`
	Endereco        Endereco  `json:"endereco"`
}

// Clean normalizes user supplied values.
func (p *Pessoa) Clean() {
	p.Nome = core.CleanString(p.Nome)
	p.CPF = core.OnlyDigits(p.CPF)
	p.RG = core.CleanString(p.RG)
	p.Email = core.CleanString(p.Email, true /* lower */)
	p.Telefone = core.CleanString(p.Telefone)
	p.TituloEleitor = core.CleanString(p.TituloEleitor)
	p.EstadoCivil = core.CleanString(p.EstadoCivil)
	p.Nacionalidade = core.CleanString(p.Nacionalidade)
	p.CorRacaEtnia = core.CleanString(p.CorRacaEtnia)
	p.Escolaridade = core.CleanString(p.Escolaridade)
	p.NomePai = core.CleanString(p.NomePai)
	p.NomeMae = core.CleanString(p.NomeMae)
	p.UrlImagemPerfil = core.CleanString(p.UrlImagemPerfil)
	p.Endereco = p.Endereco.Clean()
}

// UpdatePessoa defines what personal data may be changed. Blank fields are left untouched.
type UpdatePessoa struct {
	Nome            string    `json:"nome"`
	CPF             string    `json:"cpf" validate:"omitempty,cpf"`
	RG              string    `json:"rg"`
	Email           string    `json:"email" validate:"omitempty,email"`
	Telefone        string    `json:"telefone"`
	TituloEleitor   string    `json:"titulo_eleitor"`
	EstadoCivil     string    `json:"estado_civil"`
	Nacionalidade   string    `json:"nacionalidade"`
	CorRacaEtnia    string    `json:"cor_raca_etnia"`
	Escolaridade    string    `json:"escolaridade"`
	NomePai         string    `json:"nome_pai"`
	NomeMae         string    `json:"nome_mae"`
	DataNascimento  time.Time `json:"data_nascimento"`
	UrlImagemPerfil string    `json:"url_imagem_perfil"`
	Endereco        Endereco  `json:"endereco"`
}

// Apply returns orig with every non-blank field of up applied.
func (up UpdatePessoa) Apply(orig Pessoa) Pessoa {
	p := orig
	p.Nome = core.Coalesce(up.Nome, orig.Nome)
	if cpf := core.OnlyDigits(up.CPF); cpf != "" {
		p.CPF = cpf
	}
	p.RG = core.Coalesce(up.RG, orig.RG)
	p.Email = core.Coalesce(up.Email, orig.Email, true /* lower */)
	p.Telefone = core.Coalesce(up.Telefone, orig.Telefone)
	p.TituloEleitor = core.Coalesce(up.TituloEleitor, orig.TituloEleitor)
	p.EstadoCivil = core.Coalesce(up.EstadoCivil, orig.EstadoCivil)
	p.Nacionalidade = core.Coalesce(up.Nacionalidade, orig.Nacionalidade)
	p.CorRacaEtnia = core.Coalesce(up.CorRacaEtnia, orig.CorRacaEtnia)
	p.Escolaridade = core.Coalesce(up.Escolaridade, orig.Escolaridade)
	p.NomePai = core.Coalesce(up.NomePai, orig.NomePai)
	p.NomeMae = core.Coalesce(up.NomeMae, orig.NomeMae)
	if !up.DataNascimento.IsZero() {
		p.DataNascimento = up.DataNascimento
	}
	p.UrlImagemPerfil = core.Coalesce(up.UrlImagemPerfil, orig.UrlImagemPerfil)
	p.Endereco = orig.Endereco.Merge(up.Endereco)
	return p
}
