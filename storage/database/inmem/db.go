// Package inmemdb is a process-local store implementing every domain repository.
// It backs the `memory` database engine and the service and API tests.
package inmemdb

import (
	"context"
	"sort"
	"sync"

	"github.com/unicampus/backend/core"
	"github.com/unicampus/backend/core/colaborador"
	"github.com/unicampus/backend/core/curso"
	"github.com/unicampus/backend/core/estudante"
	"github.com/unicampus/backend/core/faculdade"
	"github.com/unicampus/backend/core/pessoa"
	"github.com/unicampus/backend/core/user"
)

type (
	// DB guards every table with a single lock. A unit of work holds the write lock for its whole
	// duration and restores a snapshot of the tables if it fails.
	DB struct {
		mutex sync.RWMutex
		t     tables
	}

	tables struct {
		users         map[string]user.User
		faculdades    map[int]faculdade.Faculdade
		cursos        map[int]curso.Curso
		turmas        map[int]curso.Turma
		disciplinas   map[int]curso.Disciplina
		pessoas       map[int]pessoa.Pessoa
		colaboradores map[int]colaborador.Colaborador // Pessoa holds the ID only
		estudantes    map[int]estudante.Estudante     // Pessoa holds the ID only
		pkCount       map[string]int
	}

	txKey struct{}
)

var _ core.Transactor = (*DB)(nil) // interface compliance check

func Open() *DB {
	return &DB{t: tables{
		users:         make(map[string]user.User),
		faculdades:    make(map[int]faculdade.Faculdade),
		cursos:        make(map[int]curso.Curso),
		turmas:        make(map[int]curso.Turma),
		disciplinas:   make(map[int]curso.Disciplina),
		pessoas:       make(map[int]pessoa.Pessoa),
		colaboradores: make(map[int]colaborador.Colaborador),
		estudantes:    make(map[int]estudante.Estudante),
		pkCount:       make(map[string]int),
	}}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	c := make(map[K]V, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func (t tables) clone() tables {
	return tables{
		users:         cloneMap(t.users),
		faculdades:    cloneMap(t.faculdades),
		cursos:        cloneMap(t.cursos),
		turmas:        cloneMap(t.turmas),
		disciplinas:   cloneMap(t.disciplinas),
		pessoas:       cloneMap(t.pessoas),
		colaboradores: cloneMap(t.colaboradores),
		estudantes:    cloneMap(t.estudantes),
		pkCount:       cloneMap(t.pkCount),
	}
}

func (t *tables) nextID(table string) int {
	t.pkCount[table]++
	return t.pkCount[table]
}

func (db *DB) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*DB)
	return owner == db
}

// WithinTx runs fn holding the write lock. The tables are restored if fn fails or panics.
func (db *DB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if db.inTx(ctx) {
		return fn(ctx)
	}

	db.mutex.Lock()
	defer db.mutex.Unlock()

	snapshot := db.t.clone()
	defer func() {
		if p := recover(); p != nil {
			db.t = snapshot
			panic(p)
		}
		if err != nil {
			db.t = snapshot
		}
	}()
	return fn(context.WithValue(ctx, txKey{}, db))
}

func (db *DB) read(ctx context.Context, fn func(t *tables) error) error {
	if !db.inTx(ctx) {
		db.mutex.RLock()
		defer db.mutex.RUnlock()
	}
	return fn(&db.t)
}

func (db *DB) write(ctx context.Context, fn func(t *tables) error) error {
	if !db.inTx(ctx) {
		db.mutex.Lock()
		defer db.mutex.Unlock()
	}
	return fn(&db.t)
}

func sortedIDs[V any](m map[int]V) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func intSet(ids []int) map[int]bool {
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func paginate[V any](items []V, p core.Pagination) []V {
	start, end := p.Bounds(len(items))
	return items[start:end]
}
