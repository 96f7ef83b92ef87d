// Package sqlxrepos implements the domain repositories over Postgres with sqlx.
// Queries are written with `?` placeholders and rebound for the driver.
package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/unicampus/backend/core"
	"github.com/unicampus/backend/storage/database"
)

type repo struct {
	db *sqlx.DB
}

// exec returns the unit of work carried by ctx, if any.
func (r repo) exec(ctx context.Context) sqlx.ExtContext {
	return database.Exec(ctx, r.db)
}

func (r repo) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	e := r.exec(ctx)
	return sqlx.GetContext(ctx, e, dest, e.Rebind(query), args...)
}

func (r repo) selekt(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	e := r.exec(ctx)
	return sqlx.SelectContext(ctx, e, dest, e.Rebind(query), args...)
}

func (r repo) run(ctx context.Context, query string, args ...interface{}) (int64, error) {
	e := r.exec(ctx)
	res, err := e.ExecContext(ctx, e.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r repo) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var exists bool
	err := r.get(ctx, &exists, "SELECT EXISTS("+query+")", args...)
	return exists, err
}

// trapNoRowsErr maps "no rows" errors to notFound.
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

const uniqueViolation pq.ErrorCode = "23505"

// trapUniqueViolation maps a unique violation on one of the constraints to its domain error.
func trapUniqueViolation(err error, byConstraint map[string]error, msg string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		if domainErr, ok := byConstraint[pqErr.Constraint]; ok {
			return domainErr
		}
	}
	return errors.Wrap(err, msg)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching s literally anywhere. The clause must declare ESCAPE '\'.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// conds accumulates AND-ed WHERE clauses and their arguments.
type conds struct {
	clauses []string
	args    []interface{}
}

func (f *conds) add(clause string, args ...interface{}) {
	f.clauses = append(f.clauses, clause)
	f.args = append(f.args, args...)
}

func (f conds) where() string {
	if len(f.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.clauses, " AND ")
}

// paginate completes query with the WHERE clauses, orderBy and the page bounds.
func (f conds) paginate(query, orderBy string, page core.Pagination) (string, []interface{}) {
	args := append(append([]interface{}{}, f.args...), page.Limit(), page.Offset())
	return query + f.where() + " ORDER BY " + orderBy + " LIMIT ? OFFSET ?", args
}
