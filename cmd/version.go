package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wot-oss/fwreg/internal/config"
	"github.com/wot-oss/fwreg/internal/utils"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show fwreg version information",
	Long:  `Show fwreg version information`,
	Args:  cobra.MaximumNArgs(0),
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fwreg version %s\n", utils.GetFwregVersion())
		cf := viper.ConfigFileUsed()
		if cf == "" {
			cf = fmt.Sprintf("No config.json file found in '%s'. Using default settings", config.ConfigDir)
		}
		fmt.Printf("Configuration file used: %s\n", cf)
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}
