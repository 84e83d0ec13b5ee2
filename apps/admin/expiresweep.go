package main

import (
	"context"
	"fmt"
)

// expireSweep flips overdue active subscriptions to expired. Meant for cron.
func (cli *commandLine) expireSweep() error {
	affected, err := cli.subSvc.ExpireOverdue(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("%d user(s) had subscriptions expire\n", affected)
	return nil
}
