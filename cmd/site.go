package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/wot-oss/fwreg/cmd/completion"
	"github.com/wot-oss/fwreg/internal/app/cli"
	"github.com/wot-oss/fwreg/internal/site"
)

var siteCmd = &cobra.Command{
	Use:   "site",
	Short: "Assemble the static site from the latest version of each package",
	Long: `Assemble the distributable static site: copy the site and docs directories, select the latest version
of each package and publish it either as manifest files listed in manifests.json (mode 'manifests')
or as an index.json (mode 'index').
Firmware files below assets/firmware which are not referenced by a selected manifest are removed.
Use --dry-run to only report which firmware files would be removed.`,
	Args:              cobra.NoArgs,
	ValidArgsFunction: completion.NoCompletionNoFile,
	Run:               executeSite,
}

func init() {
	RootCmd.AddCommand(siteCmd)
	addDistFlag(siteCmd)
	siteCmd.Flags().StringP("mode", "m", string(site.ModeManifests), "how packages are published: manifests or index")
	siteCmd.Flags().Bool("dry-run", false, "report unreferenced firmware files instead of removing them")
	_ = siteCmd.RegisterFlagCompletionFunc("mode", completion.CompleteSiteModes)
}

func executeSite(cmd *cobra.Command, args []string) {
	mode, _ := cmd.Flags().GetString("mode")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	err := cli.Site(cmd.Context(), layoutFromFlags(cmd), mode, dryRun)
	if err != nil {
		os.Exit(1)
	}
}
