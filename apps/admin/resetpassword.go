package main

import (
	"context"

	"github.com/unicampus/backend/core/user"
)

// resetPassword sets a new password through the same policy the API enforces.
func (cli *commandLine) resetPassword(cpf, pwd string) error {
	rp := user.ResetPassword{CPF: cpf, NewPassword: pwd}
	if err := rp.Validate(cli.validate); err != nil {
		return cli.validationMessage(err)
	}
	return cli.usrSvc.ResetPassword(context.Background(), rp)
}
