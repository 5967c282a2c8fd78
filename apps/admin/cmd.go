package main

import (
	"bufio"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/darasahq/darasa/core/access"
	"github.com/darasahq/darasa/core/classroom"
	"github.com/darasahq/darasa/core/confirm"
	"github.com/darasahq/darasa/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	readAnswerFunc   = readAnswer        // mockable

	errHelp = errors.New("help provided")
)

func readAnswer() (string, error) {
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

type commandLine struct {
	db           *sql.DB
	usrSvc       user.ServiceInterface
	classroomSvc classroom.ServiceInterface
	confirmation *confirm.Coordinator
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  adduser -name NAME -email EMAIL [-role admin|teacher|student] - add or reactivate a user; the password is prompted next")
	fmt.Println("  resetpassword -email EMAIL - reset a user's password; the password is prompted next")
	fmt.Println("  deleteuser -email EMAIL - delete a user after confirmation")
	fmt.Println("  deleteclass -id ID - delete a class after confirmation")
	fmt.Println("  migrate COMMAND [ARGS] - run database migrations (up, down, status, ...)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserEmail := addUserCmd.String("email", "", "The user's email. The password will be prompted next.")
	addUserRole := addUserCmd.String("role", string(access.RoleAdmin), "The user's role: admin|teacher|student.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The user's email. The password will be prompted next.")

	deleteUserCmd := flag.NewFlagSet("deleteuser", flag.ExitOnError)
	deleteUserEmail := deleteUserCmd.String("email", "", "The email of the user to delete.")

	deleteClassCmd := flag.NewFlagSet("deleteclass", flag.ExitOnError)
	deleteClassID := deleteClassCmd.Int("id", 0, "The id of the class to delete.")

	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserName == "" || *addUserEmail == "" || !access.Role(*addUserRole).IsValid() {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword(addUserCmd)
		if err != nil {
			return err
		}
		return cli.addUser(*addUserName, *addUserEmail, access.Role(*addUserRole), pwd)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword(resetPasswordCmd)
		if err != nil {
			return err
		}
		return cli.resetPassword(*resetPasswordEmail, pwd)
	case "deleteuser":
		if err := deleteUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *deleteUserEmail == "" {
			deleteUserCmd.Usage()
			return errHelp
		}
		return cli.deleteUser(*deleteUserEmail)
	case "deleteclass":
		if err := deleteClassCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *deleteClassID == 0 {
			deleteClassCmd.Usage()
			return errHelp
		}
		return cli.deleteClass(*deleteClassID)
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword(cmd *flag.FlagSet) (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		cmd.Usage()
		return "", errHelp
	}
	return string(pwd), nil
}

// renderPrompt is the coordinator's single subscriber: it shows the pending
// confirmation and resolves it from the operator's answer.
func (cli *commandLine) renderPrompt(req confirm.Request) {
	fmt.Println(req.Title)
	fmt.Println(req.Description)
	fmt.Print("Proceed? [y/N]: ")
	answer, err := readAnswerFunc()
	if err != nil {
		cli.confirmation.Dismiss()
		return
	}
	if strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes") {
		cli.confirmation.Confirm()
		return
	}
	cli.confirmation.Cancel()
}
