package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/mail"
	"syscall"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/PeaceIshola/eduhub/core/subject"
	"github.com/PeaceIshola/eduhub/core/subscription"
	"github.com/PeaceIshola/eduhub/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db      *sqlx.DB
	usrRepo user.Repository
	subjSvc *subject.Service
	subSvc  *subscription.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  adduser -username USERNAME -email EMAIL [-admin] - create or update a user; the password is prompted")
	fmt.Println("  resetpassword -username USERNAME|EMAIL - reset a user's password")
	fmt.Println("  grantsub -username USERNAME|EMAIL -subject CODE [-tier free|premium] - subscribe a user to a subject")
	fmt.Println("  expiresweep - mark overdue subscriptions expired")
	fmt.Println("  migrate [COMMAND] - run database migrations (default: up)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserUname := addUserCmd.String("username", "", "The user's username.")
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserAdmin := addUserCmd.Bool("admin", false, "Grant all roles.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The user's username or email. The password will be prompted next.")

	grantSubCmd := flag.NewFlagSet("grantsub", flag.ExitOnError)
	grantSubUname := grantSubCmd.String("username", "", "The user's username or email.")
	grantSubSubject := grantSubCmd.String("subject", "", "The subject code.")
	grantSubTier := grantSubCmd.String("tier", string(subscription.TierPremium), "The subscription tier.")

	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserUname == "" && *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserUname, *addUserEmail, pwd, *addUserAdmin)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordUname, pwd)
	case "grantsub":
		if err := grantSubCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *grantSubUname == "" || *grantSubSubject == "" {
			grantSubCmd.Usage()
			return errHelp
		}
		return cli.grantSubscription(*grantSubUname, *grantSubSubject, subscription.Tier(*grantSubTier))
	case "expiresweep":
		return cli.expireSweep()
	case "migrate":
		return cli.migrate(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

// userEmailAddresser resolves subscription receipt recipients through the user
// service.
type userEmailAddresser struct {
	svc *user.Service
}

func (a userEmailAddresser) GetEmailAddress(ctx context.Context, userID string) (mail.Address, error) {
	usr, err := a.svc.GetByID(ctx, userID)
	if err != nil {
		return mail.Address{}, err
	}
	return mail.Address{Name: usr.Name, Address: usr.Email}, nil
}
