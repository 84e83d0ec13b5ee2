package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"net/mail"
	"os"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/PeaceIshola/eduhub/apps/api/echo"
	"github.com/PeaceIshola/eduhub/core"
	"github.com/PeaceIshola/eduhub/core/entitlement"
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
	// =========================================================================
	// Set up Dependencies

	conf := core.Conf

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)
	defer func() { _ = logger.Close() }()

	db, err := setUpDB(conf)
	if err != nil {
		logger.Error(fmt.Sprintf("setting up database: %v", err), err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	snapCache, err := cachesvc.NewRedisSnapshotCache(context.Background(), conf)
	if err != nil {
		logger.Error(fmt.Sprintf("setting up redis: %v", err), err)
		os.Exit(1)
	}
	defer func() { _ = snapCache.Close() }()

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc, logger)
	subjSvc := subject.NewService(sqlxrepos.NewSubjectRepository(db))
	subSvc := subscription.NewService(
		sqlxrepos.NewSubscriptionRepository(db), mailSvc, logger, snapCache, userEmailAddresser{usrSvc},
	)

	policy := entitlement.DefaultPolicy().GrantFree(conf.Entitlement.ExtraFreeFeatures...)
	resolver := entitlement.NewResolver(usrSvc, subSvc, policy, snapCache, logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(&echoapi.Options{
		Address:  conf.Server.Address(),
		Logger:   logger,
		UserSvc:  usrSvc,
		SubjSvc:  subjSvc,
		SubSvc:   subSvc,
		Resolver: resolver,
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)
		os.Exit(1)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
				os.Exit(1)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB); err != nil {
		return nil, err
	}
	return db, nil
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
