package main

import (
	"context"
	"errors"

	"github.com/pressly/goose/v3"

	"github.com/unicampus/backend/storage/database"
)

var gooseRunFunc = goose.RunContext // mockable

var errNoDB = errors.New("migrate requires the postgres engine")

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errNoDB
	}
	goose.SetBaseFS(database.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return gooseRunFunc(context.Background(), args[0], cli.db, database.MigrationsDir, args[1:]...)
}
