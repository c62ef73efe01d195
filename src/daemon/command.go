package daemon

import (
	"fmt"

	"github.com/b2slc/slowcontrol/src/config"
	"github.com/b2slc/slowcontrol/src/version"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// NewRootCmd returns the command line of a daemon binary:
//
//	<binary> [flags] <config file>
//	<binary> version
func NewRootCmd(binary, short string, factory HandlerFactory) *cobra.Command {
	v := viper.New()
	var conf *config.Config

	cmd := &cobra.Command{
		Use:              binary + " <config file>",
		Short:            short,
		Args:             cobra.ExactArgs(1),
		TraverseChildren: true,
		SilenceUsage:     true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(cmd, v, args[0])
			if err != nil {
				return err
			}
			conf = c
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			d := NewDaemon(conf, factory)

			if err := d.Init(); err != nil {
				conf.Logger().WithError(err).Error("Cannot initialize daemon")
				d.Shutdown()
				return err
			}

			return d.Run()
		},
	}
	AddRunFlags(cmd)

	cmd.AddCommand(NewVersionCmd(binary))

	return cmd
}

// AddRunFlags adds the flags that override keys of the configuration file.
func AddRunFlags(cmd *cobra.Command) {
	defaults := config.NewDefaultConfig()

	cmd.Flags().String("log.level", defaults.Log.Level, "debug, info, warn, error, fatal, panic")
	cmd.Flags().String("log.file", defaults.Log.File, "JSON log file, rotated by size")
	cmd.Flags().String("nsm.host", defaults.NSM.Host, "Address of the hub")
	cmd.Flags().Int("nsm.port", defaults.NSM.Port, "Port of the hub")
	cmd.Flags().String("service.listen", defaults.Service.Listen, "Listen IP:Port for the HTTP status service")
	cmd.Flags().String("mqtt.broker", defaults.MQTT.Broker, "MQTT broker URL for state publication")
}

func loadConfig(cmd *cobra.Command, v *viper.Viper, path string) (*config.Config, error) {
	// Only flags set on the command line override the file.
	var bindErr error
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if err := v.BindPFlag(f.Name, f); err != nil {
			bindErr = err
		}
	})
	if bindErr != nil {
		return nil, bindErr
	}

	conf, err := config.LoadViper(v, path)
	if err != nil {
		return nil, err
	}

	conf.Logger().WithFields(logrus.Fields{
		"config":         path,
		"nsm.host":       conf.NSM.Host,
		"nsm.port":       conf.NSM.Port,
		"nsm.nodename":   conf.NSM.NodeName,
		"timeout":        conf.Timeout(),
		"log.level":      conf.Log.Level,
		"log.file":       conf.Log.File,
		"db.dir":         conf.DB.Dir,
		"db.config":      conf.DB.Config,
		"service.listen": conf.Service.Listen,
		"mqtt.broker":    conf.MQTT.Broker,
	}).Debug("RUN")

	return conf, nil
}

// NewVersionCmd returns the command that prints the version.
func NewVersionCmd(binary string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version info",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.String(binary))
		},
	}
}
