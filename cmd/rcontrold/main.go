package main

import (
	"os"

	"github.com/b2slc/slowcontrol/src/callback"
	"github.com/b2slc/slowcontrol/src/config"
	"github.com/b2slc/slowcontrol/src/daemon"
	"github.com/b2slc/slowcontrol/src/dbconfig"
	"github.com/b2slc/slowcontrol/src/rc"
	"github.com/sirupsen/logrus"
)

// simRate is the number of events a simulated readout counts per monitor
// cycle.
const simRate = 1000

func newHandler(conf *config.Config, store dbconfig.Store, logger *logrus.Entry) (callback.Handler, error) {
	return rc.NewController(conf.NSM.NodeName, rc.NewSimReadout(simRate), store, conf.DB.Config, logger), nil
}

func main() {
	rootCmd := daemon.NewRootCmd("rcontrold", "run-control node of a readout system", newHandler)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
