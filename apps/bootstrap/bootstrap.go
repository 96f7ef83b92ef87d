// Package bootstrap builds the storage engine and the services shared by the API and the admin CLI.
package bootstrap

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/unicampus/backend/core"
	"github.com/unicampus/backend/core/auth"
	"github.com/unicampus/backend/core/colaborador"
	"github.com/unicampus/backend/core/curso"
	"github.com/unicampus/backend/core/estudante"
	"github.com/unicampus/backend/core/faculdade"
	"github.com/unicampus/backend/core/user"
	"github.com/unicampus/backend/storage/database"
	inmemdb "github.com/unicampus/backend/storage/database/inmem"
	sqlxrepos "github.com/unicampus/backend/storage/database/sqlx"
)

const (
	EnginePostgres = "postgres"
	EngineMemory   = "memory"
)

type (
	// Stores groups the repositories of one storage engine.
	Stores struct {
		// DB is nil for the memory engine.
		DB *sqlx.DB

		Tx            core.Transactor
		Users         user.Repository
		Faculdades    faculdade.Repository
		Cursos        curso.Repository
		Colaboradores colaborador.Repository
		Estudantes    estudante.Repository
	}

	Services struct {
		Tokens        *auth.JWTIssuer
		Users         *user.Service
		Faculdades    *faculdade.Service
		Cursos        *curso.Service
		Colaboradores *colaborador.Service
		Estudantes    *estudante.Service
	}
)

// OpenStores opens the engine selected by conf.Database.Engine. Migrations are left to the caller.
func OpenStores(ctx context.Context, conf *core.Config) (*Stores, error) {
	switch conf.Database.Engine {
	case EngineMemory:
		return MemoryStores(inmemdb.Open()), nil
	case EnginePostgres:
		db, err := database.Open(ctx, conf)
		if err != nil {
			return nil, err
		}
		return PostgresStores(db), nil
	default:
		return nil, errors.Errorf("unknown database engine %q", conf.Database.Engine)
	}
}

func MemoryStores(db *inmemdb.DB) *Stores {
	return &Stores{
		Tx:            db,
		Users:         inmemdb.NewUserRepository(db),
		Faculdades:    inmemdb.NewFaculdadeRepository(db),
		Cursos:        inmemdb.NewCursoRepository(db),
		Colaboradores: inmemdb.NewColaboradorRepository(db),
		Estudantes:    inmemdb.NewEstudanteRepository(db),
	}
}

func PostgresStores(db *sqlx.DB) *Stores {
	return &Stores{
		DB:            db,
		Tx:            database.NewTransactor(db),
		Users:         sqlxrepos.NewUserRepository(db),
		Faculdades:    sqlxrepos.NewFaculdadeRepository(db),
		Cursos:        sqlxrepos.NewCursoRepository(db),
		Colaboradores: sqlxrepos.NewColaboradorRepository(db),
		Estudantes:    sqlxrepos.NewEstudanteRepository(db),
	}
}

// Migrate applies the pending migrations. No-op for the memory engine.
func (st *Stores) Migrate(ctx context.Context) error {
	if st.DB == nil {
		return nil
	}
	return database.Migrate(ctx, st.DB)
}

func (st *Stores) Close() error {
	if st.DB == nil {
		return nil
	}
	return st.DB.Close()
}

// NewServices wires the services bottom-up: each one only depends on the ones built before it.
func NewServices(conf *core.Config, st *Stores, clock core.Clock) *Services {
	tokens := auth.NewJWTIssuer(conf, clock)

	estSvc := estudante.NewService(st.Tx, st.Estudantes, st.Users, st.Cursos)
	colSvc := colaborador.NewService(st.Tx, st.Colaboradores, st.Users, st.Cursos)
	cursoSvc := curso.NewService(st.Tx, st.Cursos, st.Faculdades, estSvc, colSvc)
	facSvc := faculdade.NewService(st.Tx, st.Faculdades, st.Users, cursoSvc)
	usrSvc := user.NewService(st.Tx, st.Users, facSvc, colSvc, tokens, clock)
	usrSvc.LoginFailureDelay = conf.Server.LoginFailureDelay

	return &Services{
		Tokens:        tokens,
		Users:         usrSvc,
		Faculdades:    facSvc,
		Cursos:        cursoSvc,
		Colaboradores: colSvc,
		Estudantes:    estSvc,
	}
}
