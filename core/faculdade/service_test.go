package faculdade_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unicampus/backend/core"
	"github.com/unicampus/backend/core/curso"
	"github.com/unicampus/backend/core/faculdade"
	"github.com/unicampus/backend/core/pessoa"
	"github.com/unicampus/backend/core/user"
	"github.com/unicampus/backend/tests"
)

func TestService_Create(t *testing.T) {
	s := testutil.NewStack()
	ctx := context.Background()
	s.CreateUser(t, testutil.CPF1, "Ana", "ana@test.br")

	fac := s.CreateFaculdade(t, testutil.CPF1, "FTI", "001", "Direito", "  ", "Letras")
	assert.Equal(t, "Universidade Ana", fac.UniversidadeNome)
	require.Len(t, fac.Cursos, 2)
	assert.Equal(t, "Direito", fac.Cursos[0].Nome)
	assert.Equal(t, "FTI", fac.Cursos[1].FaculdadeNome)

	tests := []struct {
		name  string
		nf    faculdade.NewFaculdade
		check func(t *testing.T, err error)
	}{
		{
			name: "unknown owner",
			nf:   faculdade.NewFaculdade{Nome: "X", CNPJ: "009", Tipo: faculdade.TipoPublica, UserCPF: testutil.CPF2},
			check: func(t *testing.T, err error) {
				assert.Equal(t, faculdade.ErrOwnerNotFound, err)
			},
		},
		{
			name: "CNPJ already used by the owner",
			nf:   faculdade.NewFaculdade{Nome: "X", CNPJ: "001", Tipo: faculdade.TipoPublica, UserCPF: testutil.CPF1},
			check: func(t *testing.T, err error) {
				assert.Equal(t, faculdade.ErrCNPJExists, err)
			},
		},
		{
			name: "repeated cursos roll everything back",
			nf: faculdade.NewFaculdade{
				Nome: "Y", CNPJ: "002", Tipo: faculdade.TipoPublica, UserCPF: testutil.CPF1,
				CursosOferecidos: []string{"Artes", "artes "},
			},
			check: func(t *testing.T, err error) {
				assert.True(t, core.IsValidationError(err))
				facs, err := s.Faculdades.ListByOwner(ctx, testutil.CPF1, core.NewPagination(1, 0))
				require.NoError(t, err)
				assert.Len(t, facs, 1)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Faculdades.Create(ctx, tt.nf)
			tt.check(t, err)
		})
	}
}

func TestService_Get_DefaultUniversidadeNome(t *testing.T) {
	s := testutil.NewStack()
	ctx := context.Background()
	_, err := s.Users.Register(ctx, user.NewUser{CPF: testutil.CPF1, Nome: "Ana", Email: "ana@test.br", Password: "pwd"})
	require.NoError(t, err)

	fac := s.CreateFaculdade(t, testutil.CPF1, "FTI", "001")
	got, err := s.Faculdades.Get(ctx, fac.ID)
	require.NoError(t, err)
	assert.Equal(t, core.DefaultUniversidadeNome, got.UniversidadeNome)
	assert.NotNil(t, got.Cursos)
	assert.Empty(t, got.Cursos)

	_, err = s.Faculdades.Get(ctx, 999)
	assert.Equal(t, faculdade.ErrNotFound, errors.Cause(err))
}

func TestService_Update_Partial(t *testing.T) {
	s := testutil.NewStack()
	ctx := context.Background()
	s.CreateUser(t, testutil.CPF1, "Ana", "ana@test.br")
	fac, err := s.Faculdades.Create(ctx, faculdade.NewFaculdade{
		Nome:     "FTI",
		CNPJ:     "001",
		Telefone: "111",
		Tipo:     faculdade.TipoPrivada,
		UserCPF:  testutil.CPF1,
		Endereco: pessoa.Endereco{Logradouro: "Rua A", Cidade: "Recife"},
	})
	require.NoError(t, err)

	steps := []struct {
		telefone, want string
	}{
		{telefone: "", want: "111"},
		{telefone: "222", want: "222"},
		{telefone: "  ", want: "222"},
	}
	for _, step := range steps {
		got, err := s.Faculdades.Update(ctx, fac.ID, faculdade.UpdateFaculdade{
			Telefone: step.telefone,
			Endereco: pessoa.Endereco{Cidade: "Olinda"},
		})
		require.NoError(t, err)
		assert.Equal(t, step.want, got.Telefone)
		assert.Equal(t, "FTI", got.Nome)
		assert.Equal(t, "Rua A", got.Endereco.Logradouro)
		assert.Equal(t, "Olinda", got.Endereco.Cidade)
	}

	s.CreateFaculdade(t, testutil.CPF1, "FAB", "002")
	_, err = s.Faculdades.Update(ctx, fac.ID, faculdade.UpdateFaculdade{CNPJ: "002"})
	assert.Equal(t, faculdade.ErrCNPJExists, err)

	_, err = s.Faculdades.Update(ctx, 999, faculdade.UpdateFaculdade{Nome: "X"})
	assert.True(t, core.IsNotFound(err))
}

func TestService_Delete(t *testing.T) {
	s := testutil.NewStack()
	ctx := context.Background()
	s.CreateUser(t, testutil.CPF1, "Ana", "ana@test.br")
	fac := s.CreateFaculdade(t, testutil.CPF1, "FTI", "001")
	c := s.CreateCurso(t, fac.ID, "Direito", curso.PeriodoMatutino)
	est := s.CreateEstudante(t, c.Turmas[0].ID, "Caio")

	require.NoError(t, s.Faculdades.Delete(ctx, fac.ID))

	_, err := s.Cursos.Get(ctx, c.ID)
	assert.True(t, core.IsNotFound(err))
	_, err = s.Estudantes.Get(ctx, est.ID)
	assert.True(t, core.IsNotFound(err))
	assert.Equal(t, faculdade.ErrNotFound, s.Faculdades.Delete(ctx, fac.ID))
}

func TestService_AddCursos(t *testing.T) {
	s := testutil.NewStack()
	ctx := context.Background()
	s.CreateUser(t, testutil.CPF1, "Ana", "ana@test.br")
	fti := s.CreateFaculdade(t, testutil.CPF1, "FTI", "001", "Direito")
	fab := s.CreateFaculdade(t, testutil.CPF1, "FAB", "002", "Artes", "DIREITO")
	artes, direito := fab.Cursos[0], fab.Cursos[1]

	t.Run("unknown curso", func(t *testing.T) {
		_, err := s.Faculdades.AddCursos(ctx, fti.ID, []int{artes.ID, 999})
		assert.Equal(t, faculdade.ErrCursoNotFound, err)
	})

	t.Run("name already used in the faculdade", func(t *testing.T) {
		_, err := s.Faculdades.AddCursos(ctx, fti.ID, []int{direito.ID})
		require.True(t, core.IsValidationError(err))
		assert.Contains(t, err.Error(), "DIREITO")
	})

	t.Run("moves the cursos", func(t *testing.T) {
		added, err := s.Faculdades.AddCursos(ctx, fti.ID, []int{artes.ID, artes.ID})
		require.NoError(t, err)
		require.Len(t, added, 1)
		assert.Equal(t, fti.ID, added[0].FaculdadeID)
		assert.Equal(t, "FTI", added[0].FaculdadeNome)

		got, err := s.Faculdades.Get(ctx, fti.ID)
		require.NoError(t, err)
		assert.Len(t, got.Cursos, 2)
	})

	t.Run("nothing new", func(t *testing.T) {
		_, err := s.Faculdades.AddCursos(ctx, fti.ID, []int{artes.ID})
		assert.Equal(t, faculdade.ErrNoNewCursos, err)
	})
}

func TestService_ListByOwner(t *testing.T) {
	s := testutil.NewStack()
	ctx := context.Background()
	s.CreateUser(t, testutil.CPF1, "Ana", "ana@test.br")
	s.CreateUser(t, testutil.CPF2, "Bia", "bia@test.br")
	s.CreateFaculdade(t, testutil.CPF1, "FTI", "001")
	s.CreateFaculdade(t, testutil.CPF2, "FAB", "001")

	facs, err := s.Faculdades.ListByOwner(ctx, testutil.CPF2, core.NewPagination(1, 0))
	require.NoError(t, err)
	require.Len(t, facs, 1)
	assert.Equal(t, "FAB", facs[0].Nome)

	facs, err = s.Faculdades.List(ctx, core.NewPagination(1, 0))
	require.NoError(t, err)
	assert.Len(t, facs, 2)

	_, err = s.Faculdades.ListByOwner(ctx, testutil.CPF3, core.NewPagination(1, 0))
	assert.Equal(t, faculdade.ErrOwnerNotFound, err)
}
