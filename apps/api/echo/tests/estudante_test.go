package tests

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unicampus/backend/core/curso"
	"github.com/unicampus/backend/core/estudante"
	"github.com/unicampus/backend/core/pessoa"
	"github.com/unicampus/backend/tests"
)

func Test_estudanteApi_create(t *testing.T) {
	a := setup(t)
	ana := a.CreateUser(t, testutil.CPF1, "Ana", "ana@test.br")
	token := a.token(t, ana.User)
	fac := a.CreateFaculdade(t, testutil.CPF1, "FTI", "001")
	c := a.CreateCurso(t, fac.ID, "Direito", curso.PeriodoNoturno)

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{
			name: "required fields", token: token, body: []byte(`{"pessoa": {"nome": "   "}}`), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"pessoa.nome": "this field is required", "turma_id": "this field is required"}),
		},
		{
			name: "unknown turma", token: token, wantCode: http.StatusNotFound,
			body:     marshallObj(t, estudante.NewEstudante{Pessoa: pessoa.Pessoa{Nome: "Caio"}, TurmaID: 999}),
			wantData: marshallObj(t, httpErr{Error: "turma not found"}),
		},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/api/estudantes"
	}
	a.run(t, tests)

	t.Run("created", func(t *testing.T) {
		matricula := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
		body := marshallObj(t, estudante.NewEstudante{
			Pessoa:          pessoa.Pessoa{Nome: " Caio ", CPF: "123.456.789-09", Endereco: pessoa.Endereco{Cidade: " Recife "}},
			TurmaID:         c.Turmas[0].ID,
			NumeroMatricula: "2024-001",
			DataMatricula:   matricula,
		})
		req, rec := newAuthRequest(http.MethodPost, "/api/estudantes", token, body)
		a.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var got estudante.Estudante
		unmarshall(t, rec, &got)
		assert.Equal(t, fmt.Sprintf("/api/estudantes/%d", got.ID), rec.Header().Get(echo.HeaderLocation))
		assert.Equal(t, "Caio", got.Pessoa.Nome)
		assert.Equal(t, testutil.CPF3, got.Pessoa.CPF)
		assert.Equal(t, "Recife", got.Pessoa.Endereco.Cidade)
		assert.Equal(t, c.Turmas[0].Nome, got.TurmaNome)
		assert.True(t, matricula.Equal(got.DataMatricula))
	})
}

func Test_estudanteApi_detail(t *testing.T) {
	a := setup(t)
	ana := a.CreateUser(t, testutil.CPF1, "Ana", "ana@test.br")
	a.CreateUser(t, testutil.CPF2, "Bia", "bia@test.br")
	token := a.token(t, ana.User)
	fti := a.CreateFaculdade(t, testutil.CPF1, "FTI", "001")
	fab := a.CreateFaculdade(t, testutil.CPF2, "FAB", "002")
	direito := a.CreateCurso(t, fti.ID, "Direito", curso.PeriodoMatutino, curso.PeriodoNoturno)
	artes := a.CreateCurso(t, fab.ID, "Artes", curso.PeriodoIntegral)
	caio := a.CreateEstudante(t, direito.Turmas[0].ID, "Caio")
	davi := a.CreateEstudante(t, artes.Turmas[0].ID, "Davi")
	path := fmt.Sprintf("/api/estudantes/%d", caio.ID)

	a.run(t, []httpTest{
		{
			name: "get: unknown", method: http.MethodGet, path: "/api/estudantes/999", token: token,
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "estudante not found"}),
		},
		{name: "get", method: http.MethodGet, path: path, token: token, wantCode: http.StatusOK, wantData: marshallObj(t, caio)},
		{
			name: "update: invalid email", method: http.MethodPut, path: path, token: token,
			body:     marshallObj(t, estudante.UpdateEstudante{Pessoa: pessoa.UpdatePessoa{Email: "caio"}}),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"pessoa.email": "invalid email address"}),
		},
		{
			name: "update: unknown turma", method: http.MethodPut, path: path, token: token,
			body:     marshallObj(t, estudante.UpdateEstudante{TurmaID: 999}),
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "turma not found"}),
		},
		{
			name: "update", method: http.MethodPut, path: path, token: token,
			body:     marshallObj(t, estudante.UpdateEstudante{TurmaID: direito.Turmas[1].ID, TelefoneMae: "81 99999-0000"}),
			wantCode: http.StatusNoContent,
		},
		{
			name: "list", method: http.MethodGet, path: "/api/estudantes?page_size=1&page=2", token: token,
			wantCode: http.StatusOK, wantData: marshallObj(t, []estudante.Estudante{davi}),
		},
	})

	t.Run("updated fields only", func(t *testing.T) {
		got, err := a.Estudantes.Get(context.Background(), caio.ID)
		require.NoError(t, err)
		assert.Equal(t, direito.Turmas[1].ID, got.TurmaID)
		assert.Equal(t, "81 99999-0000", got.TelefoneMae)
		assert.Equal(t, caio.Pessoa.Nome, got.Pessoa.Nome)
		assert.Equal(t, caio.NumeroMatricula, got.NumeroMatricula)
	})

	t.Run("by-cpf follows the faculdade owner", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/estudantes/by-cpf", token)
		a.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got []estudante.Estudante
		unmarshall(t, rec, &got)
		require.Len(t, got, 1)
		assert.Equal(t, caio.ID, got[0].ID)

		req, rec = newAuthRequest(http.MethodGet, "/api/estudantes/by-cpf?cpf="+testutil.CPF2, token)
		a.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		unmarshall(t, rec, &got)
		require.Len(t, got, 1)
		assert.Equal(t, davi.ID, got[0].ID)
	})

	t.Run("deleting a turma deletes its estudantes", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, fmt.Sprintf("/api/cursos/%d/turmas/%d", artes.ID, artes.Turmas[0].ID), token)
		a.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		req, rec = newAuthRequest(http.MethodGet, fmt.Sprintf("/api/estudantes/%d", davi.ID), token)
		a.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, path, token)
		a.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		req, rec = newAuthRequest(http.MethodGet, path, token)
		a.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
