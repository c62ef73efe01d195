package main

import (
	"os"

	"github.com/b2slc/slowcontrol/src/callback"
	"github.com/b2slc/slowcontrol/src/config"
	"github.com/b2slc/slowcontrol/src/daemon"
	"github.com/b2slc/slowcontrol/src/dbconfig"
	"github.com/b2slc/slowcontrol/src/monitor"
	"github.com/sirupsen/logrus"
)

func newHandler(conf *config.Config, store dbconfig.Store, logger *logrus.Entry) (callback.Handler, error) {
	return monitor.New(conf.NSM.NodeName, monitor.HostSource{}, conf.SensorList(), conf.Temp.Alarm, logger), nil
}

func main() {
	rootCmd := daemon.NewRootCmd("tempmond", "host temperature and load monitor", newHandler)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
