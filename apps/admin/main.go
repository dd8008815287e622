package main

import (
	"context"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/syllabus/core"
	"github.com/trezcool/syllabus/core/account"
	emailsvc "github.com/trezcool/syllabus/services/email"
	logsvc "github.com/trezcool/syllabus/services/logger"
	"github.com/trezcool/syllabus/storage/database"
	sqlxrepos "github.com/trezcool/syllabus/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(os.Stdout, conf)
	logger.Enable(false)

	// set up DB
	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout*6)
	defer cancel()
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	defer func() { _ = db.Close() }()
	if err = database.Ping(ctx, db); err != nil {
		logger.Fatal("pinging database", err)
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	account.RegisterValidators(validate, translator)

	// start CLI
	cli := commandLine{
		db:     db,
		accSvc: account.NewService(sqlxrepos.NewAccountRepository(db), emailsvc.NewConsoleService(conf, logger), logger, validate, conf),
		out:    os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("admin: "+os.Args[1], err)
		}
		cancel()
		_ = db.Close()
		os.Exit(1)
	}
}
