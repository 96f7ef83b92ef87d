package main

import (
	"context"
	"fmt"

	"github.com/unicampus/backend/core/user"
)

// addUser registers a new account.
func (cli *commandLine) addUser(nu user.NewUser) error {
	if err := nu.Validate(cli.validate); err != nil {
		return cli.validationMessage(err)
	}
	prof, err := cli.usrSvc.Register(context.Background(), nu)
	if err != nil {
		return cli.validationMessage(err)
	}
	fmt.Printf("registered %s <%s>\n", prof.Nome, prof.Email)
	return nil
}
