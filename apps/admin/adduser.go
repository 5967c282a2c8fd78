package main

import (
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/access"
	"github.com/darasahq/darasa/core/user"
)

// addUser creates a user, or reactivates and updates an existing one.
func (cli *commandLine) addUser(name, email string, role access.Role, pwd string) error {
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrSvc.GetByEmail(email)
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		_, err = cli.usrSvc.Create(user.NewUser{
			Name:            name,
			Email:           email,
			Password:        pwd,
			PasswordConfirm: pwd,
			Role:            role,
		})
		return err
	}

	isActive := true
	_, err = cli.usrSvc.Update(usr.ID, user.UpdateUser{
		Name:            name,
		Role:            role,
		IsActive:        &isActive,
		Password:        pwd,
		PasswordConfirm: pwd,
	})
	return err
}
