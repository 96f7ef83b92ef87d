package sqlxrepos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/unicampus/backend/core/pessoa"
)

var pessoaFields = []string{
	"id", "nome", "cpf", "rg", "email", "telefone", "titulo_eleitor", "estado_civil", "nacionalidade",
	"cor_raca_etnia", "escolaridade", "nome_pai", "nome_mae", "data_nascimento", "url_imagem_perfil",
	"logradouro", "numero", "bairro", "cidade", "estado", "cep",
}

// pessoaColumns selects the pessoas columns of alias p into a `pessoa` prefixed struct field.
var pessoaColumns = func() string {
	cols := make([]string, 0, len(pessoaFields))
	for _, f := range pessoaFields {
		cols = append(cols, `p.`+f+` AS "pessoa.`+f+`"`)
	}
	return strings.Join(cols, ", ")
}()

type pessoaRow struct {
	ID              int       `db:"id"`
	Nome            string    `db:"nome"`
	CPF             string    `db:"cpf"`
	RG              string    `db:"rg"`
	Email           string    `db:"email"`
	Telefone        string    `db:"telefone"`
	TituloEleitor   string    `db:"titulo_eleitor"`
	EstadoCivil     string    `db:"estado_civil"`
	Nacionalidade   string    `db:"nacionalidade"`
	CorRacaEtnia    string    `db:"cor_raca_etnia"`
	Escolaridade    string    `db:"escolaridade"`
	NomePai         string    `db:"nome_pai"`
	NomeMae         string    `db:"nome_mae"`
	DataNascimento  null.Time `db:"data_nascimento"`
	UrlImagemPerfil string    `db:"url_imagem_perfil"`
	pessoa.Endereco
}

func toPessoaRow(p pessoa.Pessoa) pessoaRow {
	return pessoaRow{
		ID:              p.ID,
		Nome:            p.Nome,
		CPF:             p.CPF,
		RG:              p.RG,
		Email:           p.Email,
		Telefone:        p.Telefone,
		TituloEleitor:   p.TituloEleitor,
		EstadoCivil:     p.EstadoCivil,
		Nacionalidade:   p.Nacionalidade,
		CorRacaEtnia:    p.CorRacaEtnia,
		Escolaridade:    p.Escolaridade,
		NomePai:         p.NomePai,
		NomeMae:         p.NomeMae,
		DataNascimento:  null.NewTime(p.DataNascimento.UTC(), !p.DataNascimento.IsZero()),
		UrlImagemPerfil: p.UrlImagemPerfil,
		Endereco:        p.Endereco,
	}
}

func (row pessoaRow) pessoa() pessoa.Pessoa {
	return pessoa.Pessoa{
		ID:              row.ID,
		Nome:            row.Nome,
		CPF:             row.CPF,
		RG:              row.RG,
		Email:           row.Email,
		Telefone:        row.Telefone,
		TituloEleitor:   row.TituloEleitor,
		EstadoCivil:     row.EstadoCivil,
		Nacionalidade:   row.Nacionalidade,
		CorRacaEtnia:    row.CorRacaEtnia,
		Escolaridade:    row.Escolaridade,
		NomePai:         row.NomePai,
		NomeMae:         row.NomeMae,
		DataNascimento:  row.DataNascimento.Time,
		UrlImagemPerfil: row.UrlImagemPerfil,
		Endereco:        row.Endereco,
	}
}

const insertPessoaQuery = `INSERT INTO pessoas (nome, cpf, rg, email, telefone, titulo_eleitor, estado_civil,
nacionalidade, cor_raca_etnia, escolaridade, nome_pai, nome_mae, data_nascimento, url_imagem_perfil,
logradouro, numero, bairro, cidade, estado, cep)
VALUES (:nome, :cpf, :rg, :email, :telefone, :titulo_eleitor, :estado_civil,
:nacionalidade, :cor_raca_etnia, :escolaridade, :nome_pai, :nome_mae, :data_nascimento, :url_imagem_perfil,
:logradouro, :numero, :bairro, :cidade, :estado, :cep)
RETURNING id`

const updatePessoaQuery = `UPDATE pessoas SET nome = :nome, cpf = :cpf, rg = :rg, email = :email,
telefone = :telefone, titulo_eleitor = :titulo_eleitor, estado_civil = :estado_civil,
nacionalidade = :nacionalidade, cor_raca_etnia = :cor_raca_etnia, escolaridade = :escolaridade,
nome_pai = :nome_pai, nome_mae = :nome_mae, data_nascimento = :data_nascimento,
url_imagem_perfil = :url_imagem_perfil, logradouro = :logradouro, numero = :numero, bairro = :bairro,
cidade = :cidade, estado = :estado, cep = :cep
WHERE id = :id`

func (r repo) insertPessoa(ctx context.Context, p pessoa.Pessoa) (int, error) {
	rows, err := sqlx.NamedQueryContext(ctx, r.exec(ctx), insertPessoaQuery, toPessoaRow(p))
	if err != nil {
		return 0, errors.Wrap(err, "inserting pessoa")
	}
	defer func() { _ = rows.Close() }()

	var id int
	if rows.Next() {
		if err = rows.Scan(&id); err != nil {
			return 0, errors.Wrap(err, "inserting pessoa")
		}
	}
	return id, errors.Wrap(rows.Err(), "inserting pessoa")
}

func (r repo) updatePessoa(ctx context.Context, p pessoa.Pessoa) error {
	_, err := sqlx.NamedExecContext(ctx, r.exec(ctx), updatePessoaQuery, toPessoaRow(p))
	return errors.Wrap(err, "updating pessoa")
}

func (r repo) deletePessoas(ctx context.Context, ids ...int) error {
	_, err := r.run(ctx, "DELETE FROM pessoas WHERE id = ANY(?)", pq.Array(ids))
	return errors.Wrap(err, "deleting pessoas")
}
