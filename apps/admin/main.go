package main

import (
	"context"
	"log"
	"os"

	"github.com/unicampus/backend/apps/bootstrap"
	"github.com/unicampus/backend/core"
	"github.com/unicampus/backend/core/user"
	logsvc "github.com/unicampus/backend/services/logger"
)

func main() {
	std := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.NewConfig()
	if err != nil {
		std.Fatalf("loading config: %v", err)
	}
	logger := logsvc.NewRollbarLogger(std, conf)
	logger.Enable(conf.RollbarToken != "" && !conf.Debug)

	// set up DB
	st, err := bootstrap.OpenStores(context.Background(), conf)
	if err != nil {
		logger.Fatal("setting up database", err)
	}
	svc := bootstrap.NewServices(conf, st, core.SystemClock{})

	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		usrSvc:     svc.Users,
		validate:   validate,
		translator: translator,
	}
	if st.DB != nil {
		cli.db = st.DB.DB
	}
	err = cli.run(os.Args)
	if cerr := st.Close(); cerr != nil {
		logger.Error("closing database", cerr)
	}
	if err != nil {
		if err != errHelp {
			logger.Error("command failed", err)
		}
		os.Exit(1)
	}
}
