package commands

import (
	"github.com/b2slc/slowcontrol/src/config"
)

//CLIConfig contains configuration for the Run command
type CLIConfig struct {
	Slc        config.Config `mapstructure:",squash"`
	ConfigFile string        `mapstructure:"config"`
}

//NewDefaultCLIConfig creates a CLIConfig with default values
func NewDefaultCLIConfig() *CLIConfig {
	c := &CLIConfig{
		Slc: *config.NewDefaultConfig(),
	}
	c.Slc.NSM.Host = "0.0.0.0"
	c.Slc.NSM.NodeName = "nsmd"
	return c
}
