package main

import (
	"fmt"
	"os"
	"time"

	"github.com/b2slc/slowcontrol/src/config"
	"github.com/b2slc/slowcontrol/src/version"
	"github.com/sirupsen/logrus"
	cli "gopkg.in/urfave/cli.v1"
)

var (
	HubFlag = cli.StringFlag{
		Name:  "hub",
		Usage: "IP:Port of the hub",
		Value: fmt.Sprintf("%s:%d", config.DefaultNSMHost, config.DefaultNSMPort),
	}
	TimeoutFlag = cli.DurationFlag{
		Name:  "timeout",
		Usage: "Time to wait for a reply",
		Value: 5 * time.Second,
	}
	LogLevelFlag = cli.StringFlag{
		Name:  "log_level",
		Usage: "debug, info, warn, error, fatal, panic",
		Value: "warn",
	}
	TextFlag = cli.StringFlag{
		Name:  "text",
		Usage: "Text payload of the request",
	}
	DBFlag = cli.StringFlag{
		Name:  "db",
		Usage: "Directory of the configuration database",
		Value: config.DefaultBadgerFile,
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "nsmctl"
	app.Usage = "Send requests to slow-control nodes"
	app.Version = version.Version
	app.Flags = []cli.Flag{
		HubFlag,
		TimeoutFlag,
		LogLevelFlag,
	}
	app.Commands = []cli.Command{
		{
			Name:      "send",
			Usage:     "Send a request and print the reply",
			ArgsUsage: "<node> <request> [params...]",
			Flags:     []cli.Flag{TextFlag},
			Action:    send,
		},
		{
			Name:      "state",
			Usage:     "Print the state of a node",
			ArgsUsage: "<node>",
			Action:    state,
		},
		{
			Name:      "get",
			Usage:     "Print a variable of a node",
			ArgsUsage: "<node> <var>",
			Action:    get,
		},
		{
			Name:      "set",
			Usage:     "Write a variable of a node",
			ArgsUsage: "<node> <var> <int|float|text> <value>",
			Action:    set,
		},
		{
			Name:      "list",
			Usage:     "Print every variable of a node",
			ArgsUsage: "<node>",
			Action:    list,
		},
		{
			Name:  "config",
			Usage: "Manage the configuration database",
			Flags: []cli.Flag{DBFlag},
			Subcommands: []cli.Command{
				{
					Name:      "import",
					Usage:     "Store the objects of a YAML file",
					ArgsUsage: "<file>",
					Action:    configImport,
				},
				{
					Name:      "show",
					Usage:     "Print a stored configuration",
					ArgsUsage: "<node> <config>",
					Action:    configShow,
				},
				{
					Name:      "list",
					Usage:     "Print the configuration names of a node",
					ArgsUsage: "<node>",
					Action:    configList,
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(c *cli.Context) *logrus.Entry {
	logger := logrus.New()
	logger.Level = config.LogLevel(c.GlobalString(LogLevelFlag.Name))
	logger.Out = os.Stderr
	return logrus.NewEntry(logger)
}
