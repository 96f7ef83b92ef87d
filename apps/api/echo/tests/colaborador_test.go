package tests

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/unicampus/backend/core/colaborador"
	"github.com/unicampus/backend/core/curso"
	"github.com/unicampus/backend/core/pessoa"
	"github.com/unicampus/backend/tests"
)

func Test_colaboradorApi_create(t *testing.T) {
	a := setup(t)
	ana := a.CreateUser(t, testutil.CPF1, "Ana", "ana@test.br")
	token := a.token(t, ana.User)
	fac := a.CreateFaculdade(t, testutil.CPF1, "FTI", "001")
	direito := a.CreateCurso(t, fac.ID, "Direito", curso.PeriodoNoturno)
	artes := a.CreateCurso(t, fac.ID, "Artes")
	a.CreateDocente(t, testutil.CPF1, direito.ID, "Caio")

	newDocente := func(cpf string, cursoID null.Int) []byte {
		return marshallObj(t, colaborador.NewColaborador{
			Pessoa:  pessoa.Pessoa{Nome: "Davi"},
			UserCPF: cpf,
			Cargo:   colaborador.CargoDocente,
			CursoID: cursoID,
		})
	}

	reqMsg := "this field is required"
	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{
			name: "required fields", token: token, body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"pessoa.nome": reqMsg, "user_cpf": reqMsg, "cargo": reqMsg}),
		},
		{
			name: "invalid pessoa", token: token, wantCode: http.StatusBadRequest,
			body: marshallObj(t, colaborador.NewColaborador{
				Pessoa:  pessoa.Pessoa{Nome: "Davi", CPF: "123", Email: "davi"},
				UserCPF: testutil.CPF1,
				Cargo:   "Secretário",
			}),
			wantData: marshallObj(t, map[string]string{"pessoa.cpf": "invalid CPF", "pessoa.email": "invalid email address"}),
		},
		{
			name: "docente without curso", token: token, body: newDocente(testutil.CPF1, null.Int{}), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"curso_id": "curso_id is required when cargo is Docente"}),
		},
		{
			name: "unknown owner", token: token, body: newDocente(testutil.CPF2, null.IntFrom(artes.ID)),
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "user not found"}),
		},
		{
			name: "unknown curso", token: token, body: newDocente(testutil.CPF1, null.IntFrom(999)),
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "curso not found"}),
		},
		{
			name: "curso taken", token: token, body: newDocente(testutil.CPF1, null.IntFrom(direito.ID)),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"curso_id": "this curso already has a colaborador"}),
		},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/api/colaboradores"
	}
	a.run(t, tests)

	t.Run("created", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/colaboradores", token, newDocente("529.982.247-25", null.IntFrom(artes.ID)))
		a.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var got colaborador.Colaborador
		unmarshall(t, rec, &got)
		assert.Equal(t, fmt.Sprintf("/api/colaboradores/%d", got.ID), rec.Header().Get(echo.HeaderLocation))
		assert.Equal(t, "Davi", got.Pessoa.Nome)
		assert.Equal(t, testutil.CPF1, got.UserCPF)
		assert.Equal(t, "Artes", got.CursoNome)
		assert.Equal(t, "Universidade Ana", got.UniversidadeNome)
	})
}

func Test_colaboradorApi_detail(t *testing.T) {
	a := setup(t)
	ana := a.CreateUser(t, testutil.CPF1, "Ana", "ana@test.br")
	a.CreateUser(t, testutil.CPF2, "Bia", "bia@test.br")
	token := a.token(t, ana.User)
	fac := a.CreateFaculdade(t, testutil.CPF1, "FTI", "001")
	direito := a.CreateCurso(t, fac.ID, "Direito")
	artes := a.CreateCurso(t, fac.ID, "Artes")
	caio := a.CreateDocente(t, testutil.CPF1, direito.ID, "Caio")
	davi := a.CreateDocente(t, testutil.CPF2, artes.ID, "Davi")
	path := fmt.Sprintf("/api/colaboradores/%d", caio.ID)

	notFound := marshallObj(t, httpErr{Error: "colaborador not found"})
	a.run(t, []httpTest{
		{name: "get: unknown", method: http.MethodGet, path: "/api/colaboradores/999", token: token, wantCode: http.StatusNotFound, wantData: notFound},
		{name: "get", method: http.MethodGet, path: path, token: token, wantCode: http.StatusOK, wantData: marshallObj(t, caio)},
		{
			name: "update: invalid user_cpf", method: http.MethodPut, path: path, token: token,
			body:     marshallObj(t, colaborador.UpdateColaborador{UserCPF: "123"}),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"user_cpf": "invalid CPF"}),
		},
		{
			name: "update: curso taken", method: http.MethodPut, path: path, token: token,
			body:     marshallObj(t, colaborador.UpdateColaborador{CursoID: null.IntFrom(artes.ID)}),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"curso_id": "this curso already has a colaborador"}),
		},
		{
			name: "update", method: http.MethodPut, path: path, token: token,
			body:     marshallObj(t, colaborador.UpdateColaborador{Pessoa: pessoa.UpdatePessoa{Nome: "Caio Lima"}, NumeroRegistro: "R-1"}),
			wantCode: http.StatusNoContent,
		},
		{name: "list", method: http.MethodGet, path: "/api/colaboradores", token: token, wantCode: http.StatusOK},
	})

	t.Run("updated fields only", func(t *testing.T) {
		got, err := a.Colaboradores.Get(context.Background(), caio.ID)
		require.NoError(t, err)
		assert.Equal(t, "Caio Lima", got.Pessoa.Nome)
		assert.Equal(t, "R-1", got.NumeroRegistro)
		assert.Equal(t, caio.Cargo, got.Cargo)
		assert.Equal(t, caio.CursoID, got.CursoID)
	})

	t.Run("by-cpf", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/colaboradores/by-cpf?cpf="+testutil.CPF2, token)
		a.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got []colaborador.Colaborador
		unmarshall(t, rec, &got)
		require.Len(t, got, 1)
		assert.Equal(t, davi.ID, got[0].ID)

		req, rec = newAuthRequest(http.MethodGet, "/api/colaboradores/by-cpf?cpf="+testutil.CPF3, token)
		a.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	})

	t.Run("deleting the curso deletes its colaborador", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, fmt.Sprintf("/api/cursos/%d", artes.ID), token)
		a.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		req, rec = newAuthRequest(http.MethodGet, fmt.Sprintf("/api/colaboradores/%d", davi.ID), token)
		a.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, path, token)
		a.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		req, rec = newAuthRequest(http.MethodDelete, path, token)
		a.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
