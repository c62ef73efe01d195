package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/b2slc/slowcontrol/src/config"
	"github.com/b2slc/slowcontrol/src/hub"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

//NewRunCmd returns the command that starts the hub
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run the hub",
		PreRunE: loadConfig,
		RunE:    runHub,
	}
	AddRunFlags(cmd)
	return cmd
}

/*******************************************************************************
* RUN
*******************************************************************************/

func runHub(cmd *cobra.Command, args []string) error {
	logger := _config.Slc.Logger()

	h, err := hub.NewHub(
		_config.Slc.NSM.Host,
		_config.Slc.NSM.Port,
		_config.Slc.DataDir,
		logger,
	)
	if err != nil {
		logger.WithError(err).Error("Cannot start hub")
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.WithField("signal", sig).Info("Shutting down")
		h.Shutdown()
	}()

	h.Run()

	return nil
}

/*******************************************************************************
* CONFIG
*******************************************************************************/

//AddRunFlags adds flags to the Run command
func AddRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", _config.ConfigFile, "Configuration file (.conf, .properties, .cfg, .yaml, .toml, .json)")
	cmd.Flags().String("datadir", _config.Slc.DataDir, "Directory of the persistent node table")
	cmd.Flags().String("log.level", _config.Slc.Log.Level, "debug, info, warn, error, fatal, panic")
	cmd.Flags().String("log.file", _config.Slc.Log.File, "JSON log file, rotated by size")
	cmd.Flags().StringP("nsm.host", "l", _config.Slc.NSM.Host, "Listen address")
	cmd.Flags().IntP("nsm.port", "p", _config.Slc.NSM.Port, "Listen port")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	if err := bindFlagsLoadViper(cmd); err != nil {
		return err
	}

	_config.Slc.Logger().WithFields(logrus.Fields{
		"config":    _config.ConfigFile,
		"datadir":   _config.Slc.DataDir,
		"nsm.host":  _config.Slc.NSM.Host,
		"nsm.port":  _config.Slc.NSM.Port,
		"log.level": _config.Slc.Log.Level,
		"log.file":  _config.Slc.Log.File,
	}).Debug("RUN")

	return nil
}

// Bind all flags and read the config into viper
func bindFlagsLoadViper(cmd *cobra.Command) error {
	// Register flags with viper. Include flags from this command and all other
	// persistent flags from the parent
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// first unmarshal to read from CLI flags
	if err := viper.Unmarshal(_config); err != nil {
		return err
	}

	// If a config file is given, read it in. Properties files share the
	// format of the node daemons.
	if _config.ConfigFile != "" {
		if err := config.ReadFile(viper.GetViper(), _config.ConfigFile); err != nil {
			return err
		}
	}

	// second unmarshal to read from config file
	return viper.Unmarshal(_config)
}
