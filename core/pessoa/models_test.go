package pessoa

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUpdatePessoa_Apply(t *testing.T) {
	born := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
	orig := Pessoa{
		ID:             7,
		Nome:           "Ana Souza",
		CPF:            "52998224725",
		Email:          "ana@campus.br",
		Telefone:       "111",
		DataNascimento: born,
		Endereco:       Endereco{Logradouro: "Rua A", Numero: "10", Cidade: "Recife", Estado: "PE"},
	}

	t.Run("blank fields keep stored values", func(t *testing.T) {
		got := UpdatePessoa{Nome: "  ", Telefone: ""}.Apply(orig)
		assert.Equal(t, orig, got)
	})

	t.Run("supplied fields replace stored values", func(t *testing.T) {
		got := UpdatePessoa{
			Telefone: " 222 ",
			Email:    "ANA.S@Campus.br",
			CPF:      "111.444.777-35",
			Endereco: Endereco{Numero: "12"},
		}.Apply(orig)

		want := orig
		want.Telefone = "222"
		want.Email = "ana.s@campus.br"
		want.CPF = "11144477735"
		want.Endereco.Numero = "12"
		assert.Equal(t, want, got)
	})
}

func TestPessoa_Clean(t *testing.T) {
	p := Pessoa{Nome: " Ana ", CPF: "529.982.247-25", Email: " ANA@campus.br", Endereco: Endereco{CEP: " 50000-000 "}}
	p.Clean()
	assert.Equal(t, "Ana", p.Nome)
	assert.Equal(t, "52998224725", p.CPF)
	assert.Equal(t, "ana@campus.br", p.Email)
	assert.Equal(t, "50000-000", p.Endereco.CEP)
}
