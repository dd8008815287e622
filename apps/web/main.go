package main

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/panjf2000/ants/v2"

	echoweb "github.com/trezcool/syllabus/apps/web/echo"
	"github.com/trezcool/syllabus/core"
	"github.com/trezcool/syllabus/core/account"
	"github.com/trezcool/syllabus/core/authz"
	"github.com/trezcool/syllabus/core/catalog"
	"github.com/trezcool/syllabus/services/backend"
	emailsvc "github.com/trezcool/syllabus/services/email"
	logsvc "github.com/trezcool/syllabus/services/logger"
	"github.com/trezcool/syllabus/storage/database"
	inmemdb "github.com/trezcool/syllabus/storage/database/inmem"
	sqlxrepos "github.com/trezcool/syllabus/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(os.Stdout, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")

	// set up accounts storage
	var accRepo account.Repository
	if conf.Database.InMemory {
		accRepo = inmemdb.NewAccountRepository(inmemdb.Open())
	} else {
		db, err := setUpDB(conf)
		if err != nil {
			logger.Fatal("setting up database", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Error("closing database", err)
			}
		}()
		accRepo = sqlxrepos.NewAccountRepository(db)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug || conf.SendgridApiKey == "" {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	account.RegisterValidators(validate, translator)

	accSvc := account.NewService(accRepo, mailSvc, logger, validate, conf)

	enforcer, err := authz.NewEnforcer(logger)
	if err != nil {
		logger.Fatal("loading authorization policy", err)
	}

	deletePool, err := ants.NewPool(conf.Backend.DeleteConcurrency)
	if err != nil {
		logger.Fatal("creating delete pool", err)
	}
	defer deletePool.Release()

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	core.ParseEmailTemplates(logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error("debug server closed", err)
		}
	}()

	// =========================================================================
	// Start Web Service

	server, err := echoweb.NewServer(echoweb.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		AccountSvc: accSvc,
		Catalog:    catalog.Default(),
		Transport:  backend.NewClient(conf, logger),
		Enforcer:   enforcer,
		Validate:   validate,
		Translator: translator,
		DeletePool: deletePool,
	})
	if err != nil {
		logger.Fatal("creating server", err)
	}

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal("server error", err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error("could not stop server gracefully", err)

			if err = server.Close(); err != nil {
				logger.Fatal("could not force stop server", err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout*6)
	defer cancel()

	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}
	if err = database.Ping(ctx, db); err != nil {
		return nil, err
	}
	if err = database.Migrate(db, "up"); err != nil {
		return nil, err
	}
	return db, nil
}
