// Package testutil wires the services over the in-memory store and creates fixtures for tests.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/unicampus/backend/apps/bootstrap"
	"github.com/unicampus/backend/core"
	"github.com/unicampus/backend/core/auth"
	"github.com/unicampus/backend/core/colaborador"
	"github.com/unicampus/backend/core/curso"
	"github.com/unicampus/backend/core/estudante"
	"github.com/unicampus/backend/core/faculdade"
	"github.com/unicampus/backend/core/pessoa"
	"github.com/unicampus/backend/core/user"
	"github.com/unicampus/backend/storage/database/inmem"
)

// Valid CPFs.
const (
	CPF1 = "52998224725"
	CPF2 = "11144477735"
	CPF3 = "12345678909"
)

const Password = "s3cr3t-Pass"

// FakeClock never sleeps; it records the requested delays instead.
type FakeClock struct {
	mu    sync.Mutex
	now   time.Time
	slept []time.Duration
}

func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Sleep(_ context.Context, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slept = append(c.slept, d)
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *FakeClock) Slept() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.slept...)
}

// Stack holds every service wired the same way the API does.
type Stack struct {
	Conf   *core.Config
	Clock  *FakeClock
	DB     *inmemdb.DB
	Tokens *auth.JWTIssuer

	Users         *user.Service
	Faculdades    *faculdade.Service
	Cursos        *curso.Service
	Colaboradores *colaborador.Service
	Estudantes    *estudante.Service
}

func NewConfig() *core.Config {
	return &core.Config{
		Env:       "TEST",
		TestMode:  true,
		AppName:   "Campus",
		SecretKey: "test-secret",
		Database:  core.DatabaseConfig{Engine: "memory"},
		Server: core.ServerConfig{
			JWTExpirationDelta: time.Hour,
			LoginFailureDelay:  user.DefaultLoginFailureDelay,
			DisableReqLogs:     true,
		},
	}
}

func NewStack() *Stack {
	conf := NewConfig()
	clock := NewFakeClock()
	db := inmemdb.Open()
	svc := bootstrap.NewServices(conf, bootstrap.MemoryStores(db), clock)

	return &Stack{
		Conf:          conf,
		Clock:         clock,
		DB:            db,
		Tokens:        svc.Tokens,
		Users:         svc.Users,
		Faculdades:    svc.Faculdades,
		Cursos:        svc.Cursos,
		Colaboradores: svc.Colaboradores,
		Estudantes:    svc.Estudantes,
	}
}

func (s *Stack) CreateUser(t *testing.T, cpf, nome, email string) user.Profile {
	t.Helper()
	prof, err := s.Users.Register(context.Background(), user.NewUser{
		CPF:              cpf,
		Nome:             nome,
		Email:            email,
		Password:         Password,
		UniversidadeNome: "Universidade " + nome,
	})
	require.NoError(t, err, "CreateUser()")
	return prof
}

func (s *Stack) CreateFaculdade(t *testing.T, ownerCPF, nome, cnpj string, cursos ...string) faculdade.Faculdade {
	t.Helper()
	fac, err := s.Faculdades.Create(context.Background(), faculdade.NewFaculdade{
		Nome:             nome,
		CNPJ:             cnpj,
		Tipo:             faculdade.TipoPrivada,
		UserCPF:          ownerCPF,
		Endereco:         pessoa.Endereco{Cidade: "Recife", Estado: "PE"},
		CursosOferecidos: cursos,
	})
	require.NoError(t, err, "CreateFaculdade()")
	return fac
}

func (s *Stack) CreateCurso(t *testing.T, faculdadeID int, nome string, periodos ...string) curso.Curso {
	t.Helper()
	nc := curso.NewCurso{
		Nome:             nome,
		Mensalidade:      decimal.NewFromInt(1200),
		FaculdadeID:      faculdadeID,
		QuantidadeTurmas: len(periodos),
		Disciplinas:      []curso.NewDisciplina{{Nome: "Introdução", Descricao: "Primeiro semestre"}},
	}
	for _, p := range periodos {
		nc.Turmas = append(nc.Turmas, curso.NewTurma{Nome: nome + " " + p, Periodo: p})
	}
	c, err := s.Cursos.Create(context.Background(), nc)
	require.NoError(t, err, "CreateCurso()")
	return c
}

func (s *Stack) CreateEstudante(t *testing.T, turmaID int, nome string) estudante.Estudante {
	t.Helper()
	est, err := s.Estudantes.Create(context.Background(), estudante.NewEstudante{
		Pessoa:          pessoa.Pessoa{Nome: nome},
		TurmaID:         turmaID,
		NumeroMatricula: "M-" + nome,
	})
	require.NoError(t, err, "CreateEstudante()")
	return est
}

func (s *Stack) CreateDocente(t *testing.T, ownerCPF string, cursoID int, nome string) colaborador.Colaborador {
	t.Helper()
	col, err := s.Colaboradores.Create(context.Background(), colaborador.NewColaborador{
		Pessoa:  pessoa.Pessoa{Nome: nome},
		UserCPF: ownerCPF,
		Cargo:   colaborador.CargoDocente,
		CursoID: null.IntFrom(cursoID),
	})
	require.NoError(t, err, "CreateDocente()")
	return col
}
