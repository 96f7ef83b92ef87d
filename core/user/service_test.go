package user_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/unicampus/backend/apps/bootstrap"
	"github.com/unicampus/backend/core"
	"github.com/unicampus/backend/core/colaborador"
	"github.com/unicampus/backend/core/curso"
	"github.com/unicampus/backend/core/faculdade"
	"github.com/unicampus/backend/core/pessoa"
	"github.com/unicampus/backend/core/user"
	"github.com/unicampus/backend/tests"
)

func TestService_Register(t *testing.T) {
	s := testutil.NewStack()
	ctx := context.Background()
	s.CreateUser(t, testutil.CPF1, "Ana", "ana@test.br")

	tests := []struct {
		name      string
		nu        user.NewUser
		wantField string
	}{
		{
			name:      "duplicate CPF",
			nu:        user.NewUser{CPF: testutil.CPF1, Nome: "Bia", Email: "bia@test.br", Password: "pwd"},
			wantField: "cpf",
		},
		{
			name:      "duplicate email",
			nu:        user.NewUser{CPF: testutil.CPF2, Nome: "Bia", Email: "ana@test.br", Password: "pwd"},
			wantField: "email",
		},
		{
			name: "ok",
			nu:   user.NewUser{CPF: testutil.CPF2, Nome: "Bia", Email: "bia@test.br", Password: "pwd"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prof, err := s.Users.Register(ctx, tt.nu)
			if tt.wantField != "" {
				require.Error(t, err)
				verr, ok := errors.Cause(err).(*core.ValidationError)
				require.True(t, ok, "want a ValidationError, got %v", err)
				require.Len(t, verr.Fields, 1)
				assert.Equal(t, tt.wantField, verr.Fields[0].Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.nu.CPF, prof.CPF)
			assert.NotEmpty(t, prof.Token)
			assert.Equal(t, s.Clock.Now(), prof.CreatedAt)
			assert.True(t, prof.CheckPassword("pwd"))
		})
	}
}

// staleUniqueness misses accounts registered after the check, as a concurrent registration would.
type staleUniqueness struct {
	user.Repository
}

func (staleUniqueness) CheckUniqueness(context.Context, string, string, string) error {
	return nil
}

func TestService_Register_ConcurrentDuplicate(t *testing.T) {
	s := testutil.NewStack()
	ctx := context.Background()
	s.CreateUser(t, testutil.CPF1, "Ana", "ana@test.br")

	st := bootstrap.MemoryStores(s.DB)
	svc := user.NewService(st.Tx, staleUniqueness{st.Users}, s.Faculdades, s.Colaboradores, s.Tokens, s.Clock)

	tests := []struct {
		name      string
		nu        user.NewUser
		wantField string
	}{
		{name: "same CPF", nu: user.NewUser{CPF: testutil.CPF1, Nome: "Bia", Email: "bia@test.br", Password: "pwd"}, wantField: "cpf"},
		{name: "same email", nu: user.NewUser{CPF: testutil.CPF2, Nome: "Bia", Email: "ana@test.br", Password: "pwd"}, wantField: "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.nu)
			require.Error(t, err)
			assert.True(t, core.IsValidationError(err), "want a ValidationError, got %v", err)
			verr, ok := errors.Cause(err).(*core.ValidationError)
			require.True(t, ok)
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tt.wantField, verr.Fields[0].Field)
		})
	}

	got, err := s.Users.GetByCPF(ctx, testutil.CPF1)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Nome)
}

func TestService_Login(t *testing.T) {
	s := testutil.NewStack()
	ctx := context.Background()
	s.CreateUser(t, testutil.CPF1, "Ana", "ana@test.br")

	t.Run("ok", func(t *testing.T) {
		prof, err := s.Users.Login(ctx, "  ANA@test.br ", testutil.Password)
		require.NoError(t, err)
		assert.Equal(t, testutil.CPF1, prof.CPF)
		assert.NotEmpty(t, prof.Token)
		assert.Empty(t, s.Clock.Slept())
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := s.Users.Login(ctx, "", testutil.Password)
		assert.True(t, core.IsValidationError(err))
	})

	failures := []struct {
		name, email, pwd string
	}{
		{name: "wrong password", email: "ana@test.br", pwd: "nope"},
		{name: "unknown email", email: "who@test.br", pwd: testutil.Password},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			before := len(s.Clock.Slept())
			_, err := s.Users.Login(ctx, tt.email, tt.pwd)
			assert.Equal(t, user.ErrInvalidCredentials, err)

			slept := s.Clock.Slept()
			require.Len(t, slept, before+1)
			assert.Equal(t, user.DefaultLoginFailureDelay, slept[before])
		})
	}
}

func TestService_ChangePassword(t *testing.T) {
	s := testutil.NewStack()
	ctx := context.Background()
	s.CreateUser(t, testutil.CPF1, "Ana", "ana@test.br")

	err := s.Users.ChangePassword(ctx, user.ChangePassword{CPF: testutil.CPF1, OldPassword: "bad", NewPassword: "new"})
	assert.Equal(t, user.ErrWrongOldPassword, err)

	err = s.Users.ChangePassword(ctx, user.ChangePassword{CPF: testutil.CPF1, OldPassword: testutil.Password, NewPassword: "new"})
	require.NoError(t, err)
	_, err = s.Users.Login(ctx, "ana@test.br", "new")
	assert.NoError(t, err)

	err = s.Users.ResetPassword(ctx, user.ResetPassword{CPF: testutil.CPF1, NewPassword: "newer"})
	require.NoError(t, err)
	_, err = s.Users.Login(ctx, "ana@test.br", "newer")
	assert.NoError(t, err)

	err = s.Users.ResetPassword(ctx, user.ResetPassword{CPF: testutil.CPF2, NewPassword: "x"})
	assert.True(t, core.IsNotFound(err))
}

func TestService_VerifyCPFAndEmail(t *testing.T) {
	s := testutil.NewStack()
	ctx := context.Background()
	s.CreateUser(t, testutil.CPF1, "Ana", "ana@test.br")

	assert.NoError(t, s.Users.VerifyCPF(ctx, "529.982.247-25"))
	assert.Equal(t, user.ErrNotFound, s.Users.VerifyCPF(ctx, testutil.CPF2))
	assert.Equal(t, user.ErrInvalidCPF, s.Users.VerifyCPF(ctx, "52998224700"))

	assert.NoError(t, s.Users.VerifyEmail(ctx, "Ana@Test.br"))
	assert.True(t, core.IsNotFound(s.Users.VerifyEmail(ctx, "bia@test.br")))
	assert.Equal(t, user.ErrInvalidEmail, s.Users.VerifyEmail(ctx, "not-an-email"))
	assert.Equal(t, user.ErrInvalidEmail, s.Users.VerifyEmail(ctx, "ana..x@test.br"))
}

func TestService_Update(t *testing.T) {
	s := testutil.NewStack()
	ctx := context.Background()
	s.CreateUser(t, testutil.CPF1, "Ana", "ana@test.br")
	s.CreateUser(t, testutil.CPF2, "Bia", "bia@test.br")

	_, err := s.Users.Update(ctx, testutil.CPF1, user.UpdateUser{Email: "bia@test.br"})
	assert.True(t, core.IsValidationError(err))

	s.Clock.Advance(1)
	prof, err := s.Users.Update(ctx, testutil.CPF1, user.UpdateUser{Nome: "Ana Maria"})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", prof.Nome)
	assert.Equal(t, "ana@test.br", prof.Email)
	assert.NotEmpty(t, prof.Token)
	assert.True(t, prof.UpdatedAt.After(prof.CreatedAt))
}

func TestService_Achievements(t *testing.T) {
	s := testutil.NewStack()
	ctx := context.Background()
	s.CreateUser(t, testutil.CPF1, "Ana", "ana@test.br")

	fac := s.CreateFaculdade(t, testutil.CPF1, "FTI", "001", "Letras")
	c := s.CreateCurso(t, fac.ID, "Direito", curso.PeriodoMatutino, curso.PeriodoNoturno)
	s.CreateEstudante(t, c.Turmas[0].ID, "Caio")
	s.CreateEstudante(t, c.Turmas[1].ID, "Duda")

	got, err := s.Users.Achievements(ctx, testutil.CPF1)
	require.NoError(t, err)
	assert.Equal(t, user.Achievements{Faculdades: 1, Cursos: 2, Estudantes: 2}, got)

	_, err = s.Users.Achievements(ctx, testutil.CPF2)
	assert.Equal(t, user.ErrNotFound, err)
}

func TestService_Delete_Cascades(t *testing.T) {
	s := testutil.NewStack()
	ctx := context.Background()
	s.CreateUser(t, testutil.CPF1, "Ana", "ana@test.br")
	s.CreateUser(t, testutil.CPF2, "Bia", "bia@test.br")

	fac := s.CreateFaculdade(t, testutil.CPF1, "FTI", "001")
	c := s.CreateCurso(t, fac.ID, "Direito", curso.PeriodoMatutino)
	est := s.CreateEstudante(t, c.Turmas[0].ID, "Caio")
	col := s.CreateDocente(t, testutil.CPF1, c.ID, "Prof. Rui")

	other := s.CreateFaculdade(t, testutil.CPF2, "FAB", "002", "Artes")

	require.NoError(t, s.Users.Delete(ctx, testutil.CPF1))

	_, err := s.Users.GetByCPF(ctx, testutil.CPF1)
	assert.Equal(t, user.ErrNotFound, errors.Cause(err))
	_, err = s.Faculdades.Get(ctx, fac.ID)
	assert.Equal(t, faculdade.ErrNotFound, errors.Cause(err))
	_, err = s.Cursos.Get(ctx, c.ID)
	assert.True(t, core.IsNotFound(err))
	_, err = s.Estudantes.Get(ctx, est.ID)
	assert.True(t, core.IsNotFound(err))
	_, err = s.Colaboradores.Get(ctx, col.ID)
	assert.True(t, core.IsNotFound(err))

	kept, err := s.Faculdades.Get(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, kept.Cursos, 1)

	assert.Equal(t, user.ErrNotFound, s.Users.Delete(ctx, testutil.CPF1))
}

func TestService_Delete_RemovesOwnedColaboradores(t *testing.T) {
	s := testutil.NewStack()
	ctx := context.Background()
	s.CreateUser(t, testutil.CPF1, "Ana", "ana@test.br")
	s.CreateUser(t, testutil.CPF2, "Bia", "bia@test.br")

	fab := s.CreateFaculdade(t, testutil.CPF2, "FAB", "002")
	artes := s.CreateCurso(t, fab.ID, "Artes", curso.PeriodoIntegral)

	secretaria, err := s.Colaboradores.Create(ctx, colaborador.NewColaborador{
		Pessoa:  pessoa.Pessoa{Nome: "Lia"},
		UserCPF: testutil.CPF1,
		Cargo:   "Secretaria",
	})
	require.NoError(t, err)
	coordenador, err := s.Colaboradores.Create(ctx, colaborador.NewColaborador{
		Pessoa:  pessoa.Pessoa{Nome: "Rui"},
		UserCPF: testutil.CPF1,
		Cargo:   "Coordenador",
		CursoID: null.IntFrom(artes.ID),
	})
	require.NoError(t, err)
	kept := s.CreateDocente(t, testutil.CPF2, s.CreateCurso(t, fab.ID, "Musica", curso.PeriodoNoturno).ID, "Eva")

	require.NoError(t, s.Users.Delete(ctx, testutil.CPF1))

	_, err = s.Colaboradores.Get(ctx, secretaria.ID)
	assert.True(t, core.IsNotFound(err), "colaborador without curso")
	_, err = s.Colaboradores.Get(ctx, coordenador.ID)
	assert.True(t, core.IsNotFound(err), "colaborador on another owner's curso")

	_, err = s.Cursos.Get(ctx, artes.ID)
	assert.NoError(t, err, "the other owner's curso survives")
	_, err = s.Colaboradores.Get(ctx, kept.ID)
	assert.NoError(t, err, "the other owner's colaborador survives")
}

func TestService_List(t *testing.T) {
	s := testutil.NewStack()
	s.CreateUser(t, testutil.CPF2, "Bia", "bia@test.br")
	s.CreateUser(t, testutil.CPF1, "Ana", "ana@test.br")
	s.CreateUser(t, testutil.CPF3, "Caio", "caio@test.br")

	users, err := s.Users.List(context.Background(), core.NewPagination(1, 2))
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Ana", users[0].Nome)
	assert.Equal(t, "Bia", users[1].Nome)

	users, err = s.Users.List(context.Background(), core.NewPagination(2, 2))
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Caio", users[0].Nome)
}
