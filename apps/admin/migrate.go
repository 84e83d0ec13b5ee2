package main

import (
	"github.com/PeaceIshola/eduhub/storage/database"
)

var migrateRunFunc = database.RunMigration // mockable

func (cli *commandLine) migrate(args []string) error {
	command := "up"
	arguments := make([]string, 0)
	if len(args) > 0 {
		command = args[0]
		arguments = append(arguments, args[1:]...)
	}
	return migrateRunFunc(command, cli.db.DB, arguments...)
}
