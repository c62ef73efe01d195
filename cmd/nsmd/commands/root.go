package commands

import (
	"github.com/spf13/cobra"
)

var (
	_config = NewDefaultCLIConfig()
)

//RootCmd is the root command for nsmd
var RootCmd = &cobra.Command{
	Use:              "nsmd",
	Short:            "slow-control message hub",
	TraverseChildren: true,
}
