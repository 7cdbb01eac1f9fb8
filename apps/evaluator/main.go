package main

import (
	"log"
	"os"

	"github.com/psbppwb/penilaian/core"
	"github.com/psbppwb/penilaian/core/queue"
	"github.com/psbppwb/penilaian/core/session"
	"github.com/psbppwb/penilaian/services/gateway"
	logsvc "github.com/psbppwb/penilaian/services/logger"
	"github.com/psbppwb/penilaian/storage/state"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "EVALUATOR : ", log.LstdFlags|log.Lmicroseconds)
	conf := core.NewConfig()

	// set up persisted client state
	db, err := state.Open(conf.StatePath)
	errAndDie(err)
	defer db.Close()
	store := state.NewStore(db)

	// hydrate the session
	sessions, err := session.NewManager(store)
	errAndDie(err)

	// set up services
	var appLog core.Logger
	if conf.Debug {
		appLog = logsvc.NewConsoleLogger(logger)
	} else {
		appLog = logsvc.NewRollbarLogger(logger, conf)
	}
	api := gateway.NewClient(conf, sessions, appLog)

	cli := commandLine{
		api:      api,
		sessions: sessions,
		queue:    queue.NewStore(),
		stats:    store,
		scanIn:   os.Stdin,
		out:      os.Stdout,
		codeLen:  conf.Scanner.CodeLength,
		quiet:    conf.Scanner.QuietTimeout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
