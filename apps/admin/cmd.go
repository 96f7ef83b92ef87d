package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"golang.org/x/term"

	"github.com/unicampus/backend/core"
	"github.com/unicampus/backend/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db         *sql.DB
	usrSvc     *user.Service
	validate   *validator.Validate
	translator ut.Translator
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose command (up, up-by-one, up-to, down, down-to, redo, reset, status, version, create, fix)")
	fmt.Println("  adduser -cpf CPF -nome NOME -email EMAIL [-universidade NOME] - register an account")
	fmt.Println("  resetpassword -cpf CPF - reset an account's password")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserCPF := addUserCmd.String("cpf", "", "The account's CPF. The password will be prompted next.")
	addUserNome := addUserCmd.String("nome", "", "The account holder's name.")
	addUserEmail := addUserCmd.String("email", "", "The account's email address.")
	addUserUniv := addUserCmd.String("universidade", "", "The universidade name shown on the account's faculdades.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordCPF := resetPasswordCmd.String("cpf", "", "The account's CPF. The password will be prompted next.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserCPF == "" || *addUserNome == "" || *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(user.NewUser{
			CPF:              *addUserCPF,
			Nome:             *addUserNome,
			Email:            *addUserEmail,
			Password:         pwd,
			UniversidadeNome: *addUserUniv,
		})

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordCPF == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordCPF, pwd)

	default:
		cli.printUsage()
		return errHelp
	}
}

func promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

// validationMessage flattens validation errors into a single line.
func (cli *commandLine) validationMessage(err error) error {
	msg := "invalid input:"
	var verrs validator.ValidationErrors
	var vErr *core.ValidationError
	switch {
	case errors.As(err, &verrs):
		for _, fe := range verrs {
			msg += fmt.Sprintf(" %s: %s;", fe.Field(), fe.Translate(cli.translator))
		}
	case errors.As(err, &vErr) && len(vErr.Fields) > 0:
		for _, fe := range vErr.Fields {
			msg += fmt.Sprintf(" %s: %s;", fe.Field, fe.Error)
		}
	default:
		return err
	}
	return errors.New(msg)
}
