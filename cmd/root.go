package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wot-oss/fwreg/internal"
	"github.com/wot-oss/fwreg/internal/config"
	"github.com/wot-oss/fwreg/internal/utils"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "fwreg",
	Short: "A CLI for building static firmware package registries",
	Long: `fwreg validates firmware package manifests, builds the registry's index.json
and assembles the static web flasher site from the latest version of each package.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initConfigDir(cmd)
		config.InitViper()
		level := viper.GetString(config.KeyLogLevel)
		if cmd.Name() == "serve" && !logLevelConfigured(cmd) {
			level = "info"
		}
		internal.InitLoggingWithLevel(level)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	err := RootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringP(config.KeyLogLevel, "l", "", "enable logging by setting a log level, one of [error, warn, info, debug, off]")
	RootCmd.PersistentFlags().String(config.KeyConfig, "", "directory to read config.json from (default ~/.fwreg)")
	RootCmd.PersistentFlags().StringP(config.KeyRoot, "r", "", "registry root directory (default current directory)")
	_ = viper.BindPFlag(config.KeyLogLevel, RootCmd.PersistentFlags().Lookup(config.KeyLogLevel))
	_ = viper.BindPFlag(config.KeyRoot, RootCmd.PersistentFlags().Lookup(config.KeyRoot))
}

func initConfigDir(cmd *cobra.Command) {
	dir, _ := cmd.Flags().GetString(config.KeyConfig)
	if dir == "" {
		dir = os.Getenv(config.EnvConfig)
	}
	if dir == "" {
		return
	}
	if expanded, err := utils.ExpandHome(dir); err == nil {
		dir = expanded
	}
	config.ConfigDir = dir
}

// logLevelConfigured reports whether the log level was given explicitly by flag, environment or config file
func logLevelConfigured(cmd *cobra.Command) bool {
	if f := cmd.Flags().Lookup(config.KeyLogLevel); f != nil && f.Changed {
		return true
	}
	if _, ok := os.LookupEnv(strings.ToUpper(config.EnvPrefix + "_" + config.KeyLogLevel)); ok {
		return true
	}
	return viper.InConfig(config.KeyLogLevel)
}
