package curso_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unicampus/backend/core"
	"github.com/unicampus/backend/core/curso"
	"github.com/unicampus/backend/tests"
)

func setup(t *testing.T) (*testutil.Stack, int) {
	s := testutil.NewStack()
	s.CreateUser(t, testutil.CPF1, "Ana", "ana@test.br")
	fac := s.CreateFaculdade(t, testutil.CPF1, "FTI", "001")
	return s, fac.ID
}

func turmas(periodos ...string) []curso.NewTurma {
	out := make([]curso.NewTurma, 0, len(periodos))
	for _, p := range periodos {
		out = append(out, curso.NewTurma{Nome: "T " + p, Periodo: p})
	}
	return out
}

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	verr, ok := errors.Cause(err).(*core.ValidationError)
	require.True(t, ok, "want a ValidationError, got %v", err)
	require.NotEmpty(t, verr.Fields)
	return verr.Fields[0].Field
}

func TestService_Create(t *testing.T) {
	s, facID := setup(t)
	ctx := context.Background()

	c, err := s.Cursos.Create(ctx, curso.NewCurso{
		Nome:             "Direito",
		Mensalidade:      decimal.RequireFromString("1500.555"),
		FaculdadeID:      facID,
		QuantidadeTurmas: 2,
		Turmas:           turmas(curso.PeriodoMatutino, curso.PeriodoNoturno),
		Disciplinas:      []curso.NewDisciplina{{Nome: "Civil"}, {Nome: "Penal"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "FTI", c.FaculdadeNome)
	assert.True(t, decimal.RequireFromString("1500.56").Equal(c.Mensalidade))
	require.Len(t, c.Turmas, 2)
	assert.Equal(t, curso.PeriodoMatutino, c.Turmas[0].Periodo)
	assert.NotNil(t, c.Turmas[0].Estudantes)
	assert.Len(t, c.Disciplinas, 2)

	tests := []struct {
		name      string
		nc        curso.NewCurso
		wantErr   error
		wantField string
	}{
		{
			name:      "negative mensalidade",
			nc:        curso.NewCurso{Nome: "X", Mensalidade: decimal.NewFromInt(-1), FaculdadeID: facID},
			wantField: "mensalidade",
		},
		{
			name:      "quantidade_turmas mismatch",
			nc:        curso.NewCurso{Nome: "X", FaculdadeID: facID, QuantidadeTurmas: 2, Turmas: turmas(curso.PeriodoMatutino)},
			wantField: "turmas",
		},
		{
			name: "repeated periodo",
			nc: curso.NewCurso{Nome: "X", FaculdadeID: facID, QuantidadeTurmas: 2,
				Turmas: turmas(curso.PeriodoMatutino, curso.PeriodoMatutino)},
			wantField: "turmas",
		},
		{
			name: "more than four turmas",
			nc: curso.NewCurso{Nome: "X", FaculdadeID: facID, QuantidadeTurmas: 5,
				Turmas: turmas(curso.PeriodoMatutino, curso.PeriodoVespertino, curso.PeriodoNoturno, curso.PeriodoIntegral, "Madrugada")},
			wantErr: curso.ErrTooManyTurmas,
		},
		{
			name: "repeated disciplina",
			nc: curso.NewCurso{Nome: "X", FaculdadeID: facID,
				Disciplinas: []curso.NewDisciplina{{Nome: "Civil"}, {Nome: " civil"}}},
			wantField: "disciplinas",
		},
		{
			name:    "unknown faculdade",
			nc:      curso.NewCurso{Nome: "X", FaculdadeID: 999},
			wantErr: curso.ErrFaculdadeNotFound,
		},
		{
			name:    "name taken in the faculdade",
			nc:      curso.NewCurso{Nome: "direito", FaculdadeID: facID},
			wantErr: curso.ErrNameExists,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Cursos.Create(ctx, tt.nc)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			assert.Equal(t, tt.wantField, fieldOf(t, err))
		})
	}

	t.Run("repeated periodo message", func(t *testing.T) {
		_, err := s.Cursos.Create(ctx, curso.NewCurso{Nome: "X", FaculdadeID: facID, QuantidadeTurmas: 2,
			Turmas: turmas(curso.PeriodoNoturno, curso.PeriodoNoturno)})
		require.Error(t, err)
		assert.Equal(t, "the following periods are repeated: Noturno", err.Error())
	})
}

func TestService_AddTurmas(t *testing.T) {
	s, facID := setup(t)
	ctx := context.Background()
	c := s.CreateCurso(t, facID, "Direito", curso.PeriodoMatutino, curso.PeriodoVespertino, curso.PeriodoNoturno)

	_, err := s.Cursos.AddTurmas(ctx, c.ID, turmas(curso.PeriodoMatutino))
	assert.Equal(t, "turmas", fieldOf(t, err))

	_, err = s.Cursos.AddTurmas(ctx, c.ID, turmas(curso.PeriodoIntegral, curso.PeriodoIntegral))
	assert.Equal(t, curso.ErrTooManyTurmas, err)

	added, err := s.Cursos.AddTurmas(ctx, c.ID, turmas(curso.PeriodoIntegral))
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.Equal(t, c.ID, added[0].CursoID)

	// a fifth turma is never accepted
	_, err = s.Cursos.AddTurmas(ctx, c.ID, []curso.NewTurma{{Nome: "Extra", Periodo: curso.PeriodoNoturno}})
	assert.Equal(t, curso.ErrTooManyTurmas, err)

	_, err = s.Cursos.AddTurmas(ctx, 999, turmas(curso.PeriodoIntegral))
	assert.True(t, core.IsNotFound(err))
}

func TestService_Update_ConvergesChildren(t *testing.T) {
	s, facID := setup(t)
	ctx := context.Background()
	c := s.CreateCurso(t, facID, "Direito", curso.PeriodoMatutino, curso.PeriodoNoturno)
	matutino, noturno := c.Turmas[0], c.Turmas[1]
	intro := c.Disciplinas[0]
	gone := s.CreateEstudante(t, noturno.ID, "Caio")
	kept := s.CreateEstudante(t, matutino.ID, "Duda")

	fee := decimal.RequireFromString("999.999")
	got, err := s.Cursos.Update(ctx, c.ID, curso.UpdateCurso{
		Mensalidade: &fee,
		Turmas: []curso.TurmaInput{
			{ID: matutino.ID, NewTurma: curso.NewTurma{Nome: "Manhã", Periodo: curso.PeriodoMatutino}},
			{NewTurma: curso.NewTurma{Nome: "Integral", Periodo: curso.PeriodoIntegral}},
		},
		Disciplinas: []curso.DisciplinaInput{
			{ID: intro.ID, NewDisciplina: curso.NewDisciplina{Nome: intro.Nome, Descricao: "Revisada"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Direito", got.Nome)
	assert.True(t, decimal.RequireFromString("1000").Equal(got.Mensalidade))

	require.Len(t, got.Turmas, 2)
	assert.Equal(t, matutino.ID, got.Turmas[0].ID)
	assert.Equal(t, "Manhã", got.Turmas[0].Nome)
	require.Len(t, got.Turmas[0].Estudantes, 1)
	assert.Equal(t, "Duda", got.Turmas[0].Estudantes[0].Nome)
	assert.Equal(t, curso.PeriodoIntegral, got.Turmas[1].Periodo)

	require.Len(t, got.Disciplinas, 1)
	assert.Equal(t, "Revisada", got.Disciplinas[0].Descricao)

	_, err = s.Estudantes.Get(ctx, gone.ID)
	assert.True(t, core.IsNotFound(err), "estudantes of removed turmas are deleted")
	_, err = s.Estudantes.Get(ctx, kept.ID)
	assert.NoError(t, err)

	t.Run("nil lists leave children untouched", func(t *testing.T) {
		got, err := s.Cursos.Update(ctx, c.ID, curso.UpdateCurso{Nome: "Direito Civil"})
		require.NoError(t, err)
		assert.Equal(t, "Direito Civil", got.Nome)
		assert.Len(t, got.Turmas, 2)
		assert.Len(t, got.Disciplinas, 1)
	})

	t.Run("empty lists remove every child", func(t *testing.T) {
		got, err := s.Cursos.Update(ctx, c.ID, curso.UpdateCurso{Turmas: []curso.TurmaInput{}, Disciplinas: []curso.DisciplinaInput{}})
		require.NoError(t, err)
		assert.Empty(t, got.Turmas)
		assert.Empty(t, got.Disciplinas)
		_, err = s.Estudantes.Get(ctx, kept.ID)
		assert.True(t, core.IsNotFound(err))
	})
}

func TestService_Update_Rules(t *testing.T) {
	s, facID := setup(t)
	ctx := context.Background()
	other := s.CreateFaculdade(t, testutil.CPF1, "FAB", "002", "Direito")
	c := s.CreateCurso(t, facID, "Direito")
	s.CreateCurso(t, facID, "Letras")

	_, err := s.Cursos.Update(ctx, c.ID, curso.UpdateCurso{Nome: " LETRAS "})
	assert.Equal(t, curso.ErrNameExists, err)

	_, err = s.Cursos.Update(ctx, c.ID, curso.UpdateCurso{FaculdadeID: other.ID})
	assert.Equal(t, curso.ErrNameExists, err, "the target faculdade already has a Direito")

	_, err = s.Cursos.Update(ctx, c.ID, curso.UpdateCurso{FaculdadeID: 999})
	assert.Equal(t, curso.ErrFaculdadeNotFound, err)

	got, err := s.Cursos.Update(ctx, c.ID, curso.UpdateCurso{Nome: "direito"})
	require.NoError(t, err, "changing only the case is allowed")
	assert.Equal(t, "direito", got.Nome)

	_, err = s.Cursos.Update(ctx, 999, curso.UpdateCurso{Nome: "X"})
	assert.True(t, core.IsNotFound(err))
}

func TestService_Delete(t *testing.T) {
	s, facID := setup(t)
	ctx := context.Background()
	c := s.CreateCurso(t, facID, "Direito", curso.PeriodoMatutino)
	est := s.CreateEstudante(t, c.Turmas[0].ID, "Caio")
	col := s.CreateDocente(t, testutil.CPF1, c.ID, "Prof. Rui")

	got, err := s.Cursos.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Prof. Rui", got.ColaboradorNome)

	require.NoError(t, s.Cursos.Delete(ctx, c.ID))

	_, err = s.Cursos.Get(ctx, c.ID)
	assert.Equal(t, curso.ErrNotFound, errors.Cause(err))
	_, err = s.Estudantes.Get(ctx, est.ID)
	assert.True(t, core.IsNotFound(err))
	_, err = s.Colaboradores.Get(ctx, col.ID)
	assert.True(t, core.IsNotFound(err))

	assert.Equal(t, curso.ErrNotFound, s.Cursos.Delete(ctx, c.ID))
}

func TestService_ChildrenEndpoints(t *testing.T) {
	s, facID := setup(t)
	ctx := context.Background()
	c := s.CreateCurso(t, facID, "Direito", curso.PeriodoMatutino)
	other := s.CreateCurso(t, facID, "Letras", curso.PeriodoNoturno)

	added, err := s.Cursos.AddDisciplinas(ctx, c.ID, []curso.NewDisciplina{{Nome: "Penal"}})
	require.NoError(t, err)
	require.Len(t, added, 1)

	_, err = s.Cursos.AddDisciplinas(ctx, c.ID, []curso.NewDisciplina{{Nome: "penal"}})
	assert.Equal(t, "disciplinas", fieldOf(t, err))

	assert.Equal(t, curso.ErrTurmaNotFound, errors.Cause(s.Cursos.DeleteTurma(ctx, c.ID, other.Turmas[0].ID)))
	assert.Equal(t, curso.ErrDisciplinaNotFound, errors.Cause(s.Cursos.DeleteDisciplina(ctx, c.ID, other.Disciplinas[0].ID)))

	require.NoError(t, s.Cursos.DeleteTurma(ctx, c.ID, c.Turmas[0].ID))
	require.NoError(t, s.Cursos.DeleteDisciplina(ctx, c.ID, added[0].ID))

	got, err := s.Cursos.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Turmas)
	assert.Len(t, got.Disciplinas, 1)
}

func TestService_List(t *testing.T) {
	s, facID := setup(t)
	ctx := context.Background()
	s.CreateCurso(t, facID, "Ciência da Computação")
	s.CreateCurso(t, facID, "Direito")
	s.CreateCurso(t, facID, "Engenharia da Computação")

	cursos, err := s.Cursos.List(ctx, curso.QueryFilter{Search: " COMPUTAÇÃO "}, core.NewPagination(1, 0))
	require.NoError(t, err)
	require.Len(t, cursos, 2)
	assert.Equal(t, "Ciência da Computação", cursos[0].Nome)

	cursos, err = s.Cursos.List(ctx, curso.QueryFilter{FaculdadeID: facID}, core.NewPagination(2, 2))
	require.NoError(t, err)
	require.Len(t, cursos, 1)
	assert.Equal(t, "Engenharia da Computação", cursos[0].Nome)
}
