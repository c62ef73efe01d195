package main

import (
	"os"

	"github.com/b2slc/slowcontrol/src/callback"
	"github.com/b2slc/slowcontrol/src/config"
	"github.com/b2slc/slowcontrol/src/daemon"
	"github.com/b2slc/slowcontrol/src/dbconfig"
	"github.com/b2slc/slowcontrol/src/hv"
	"github.com/sirupsen/logrus"
)

func newHandler(conf *config.Config, store dbconfig.Store, logger *logrus.Entry) (callback.Handler, error) {
	supply := hv.NewSimSupply(conf.HV.Channels)
	return hv.NewController(conf.NSM.NodeName, supply, conf.HV.Channels, logger), nil
}

func main() {
	rootCmd := daemon.NewRootCmd("hvcontrold", "high-voltage power supply controller", newHandler)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
