package main

import (
	"fmt"

	"github.com/darasahq/darasa/core/confirm"
)

var errDeletionCancelled = fmt.Errorf("deletion cancelled")

// deleteUser deletes the addressed user once the operator confirms.
func (cli *commandLine) deleteUser(email string) error {
	usr, err := cli.usrSvc.GetByEmail(email)
	if err != nil {
		return err
	}

	err = errDeletionCancelled
	cli.confirmation.RequestConfirmation(confirm.Request{
		Title:       "Delete Confirmation",
		Description: fmt.Sprintf("Are you sure you want to delete user %q (%s)? This action cannot be undone.", usr.Name, usr.Email),
		OnConfirm:   func() { err = cli.usrSvc.Delete(usr.ID) },
		OnCancel:    func() { err = errDeletionCancelled },
	})
	return err
}

// deleteClass deletes the addressed class once the operator confirms.
func (cli *commandLine) deleteClass(id int) error {
	cls, err := cli.classroomSvc.GetClassByID(id)
	if err != nil {
		return err
	}

	err = errDeletionCancelled
	cli.confirmation.RequestConfirmation(confirm.Request{
		Description: fmt.Sprintf("Are you sure you want to delete class %q? This action cannot be undone.", cls.Name),
		OnConfirm:   func() { err = cli.classroomSvc.DeleteClasses(cls.ID) },
		OnCancel:    func() { err = errDeletionCancelled },
	})
	return err
}
