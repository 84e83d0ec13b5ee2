package main

import (
	"context"
	"log"
	"os"

	"github.com/PeaceIshola/eduhub/core"
	"github.com/PeaceIshola/eduhub/core/subject"
	"github.com/PeaceIshola/eduhub/core/subscription"
	"github.com/PeaceIshola/eduhub/core/user"
	cachesvc "github.com/PeaceIshola/eduhub/services/cache"
	emailsvc "github.com/PeaceIshola/eduhub/services/email"
	logsvc "github.com/PeaceIshola/eduhub/services/logger"
	"github.com/PeaceIshola/eduhub/storage/database"
	sqlxrepos "github.com/PeaceIshola/eduhub/storage/database/sqlx"
)

func main() {
	logger := logsvc.NewStdLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile))
	logger.Enable(true)

	// set up DB
	db, err := database.Open(core.Conf)
	errAndDie(err)
	defer func() { _ = db.Close() }()
	errAndDie(db.Ping())

	mailSvc := emailsvc.NewConsoleService()

	// mutations made here must drop cached entitlements; degrade to no
	// invalidation when redis is unreachable
	var invalidator subscription.CacheInvalidator
	if cache, err := cachesvc.NewRedisSnapshotCache(context.Background(), core.Conf); err != nil {
		logger.Warn("redis unreachable; entitlement caches will go stale until their TTL", err)
	} else {
		invalidator = cache
		defer func() { _ = cache.Close() }()
	}

	usrRepo := sqlxrepos.NewUserRepository(db)
	usrSvc := user.NewService(usrRepo, mailSvc, logger)

	cli := commandLine{
		db:      db,
		usrRepo: usrRepo,
		subjSvc: subject.NewService(sqlxrepos.NewSubjectRepository(db)),
		subSvc: subscription.NewService(
			sqlxrepos.NewSubscriptionRepository(db), mailSvc, logger, invalidator, userEmailAddresser{usrSvc},
		),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("command failed", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
