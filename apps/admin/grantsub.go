package main

import (
	"context"
	"fmt"

	"github.com/PeaceIshola/eduhub/core"
	"github.com/PeaceIshola/eduhub/core/subscription"
)

// grantSubscription subscribes an existing user to a subject by code.
func (cli *commandLine) grantSubscription(uname, code string, tier subscription.Tier) error {
	ctx := context.Background()

	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(ctx, core.CleanString(uname, true /* lower */))
	if err != nil {
		return err
	}
	subj, err := cli.subjSvc.GetByCode(ctx, code)
	if err != nil {
		return err
	}

	ns := subscription.NewSubscription{SubjectID: subj.ID, Tier: tier}
	if err := ns.Validate(); err != nil {
		return err
	}
	sub, err := cli.subSvc.Create(ctx, usr.ID, ns)
	if err != nil {
		return err
	}

	if sub.ExpiresAt != nil {
		fmt.Printf("%s subscription to %s granted to %s, expires %s\n",
			sub.Tier, subj.Code, usr.Username, sub.ExpiresAt.Format("2 Jan 2006"))
	} else {
		fmt.Printf("%s subscription to %s granted to %s\n", sub.Tier, subj.Code, usr.Username)
	}
	return nil
}
