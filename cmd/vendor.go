package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/wot-oss/fwreg/cmd/completion"
	"github.com/wot-oss/fwreg/internal/app/cli"
	"github.com/wot-oss/fwreg/internal/config"
)

var vendorCmd = &cobra.Command{
	Use:   "vendor",
	Short: "Download the site's third-party scripts",
	Long: `Download the third-party JavaScript files used by the web flasher (esptool-js and webdfu by default)
into the site's vendor directory. The list of files can be changed with the 'vendorAssets' config key.`,
	Args:              cobra.NoArgs,
	ValidArgsFunction: completion.NoCompletionNoFile,
	Run:               executeVendor,
}

func init() {
	RootCmd.AddCommand(vendorCmd)
}

func executeVendor(cmd *cobra.Command, args []string) {
	err := cli.Vendor(cmd.Context(), config.LayoutFromViper(), config.VendorAssetsFromViper())
	if err != nil {
		os.Exit(1)
	}
}
