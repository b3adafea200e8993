package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/wot-oss/fwreg/cmd/completion"
	"github.com/wot-oss/fwreg/internal/app/cli"
	"github.com/wot-oss/fwreg/internal/commands"
	"github.com/wot-oss/fwreg/internal/config"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Validate all manifests and write the registry's index.json",
	Long: `Validate all package manifests of the registry against the manifest schema and the allow-list,
reject duplicate package versions and write index.json listing every manifest.
Optionally, the artifacts referenced by the manifests are checked for reachability and their SHA-256 digests verified.
The first invalid manifest aborts the build and no index is written.`,
	Args:              cobra.NoArgs,
	ValidArgsFunction: completion.NoCompletionNoFile,
	Run:               executeIndex,
}

func init() {
	RootCmd.AddCommand(indexCmd)
	indexCmd.Flags().Bool("check-urls", false, "check that every artifact URL is reachable")
	indexCmd.Flags().Bool("check-sha", false, "download every artifact with a sha256 and verify its digest")
	indexCmd.Flags().Duration("timeout", config.DefaultTimeout, "timeout of each network request")
	indexCmd.Flags().StringP("out", "o", "", "write the index to this file instead of <root>/index.json")
}

func executeIndex(cmd *cobra.Command, args []string) {
	checkURLs, _ := cmd.Flags().GetBool("check-urls")
	checkSHA, _ := cmd.Flags().GetBool("check-sha")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if !cmd.Flags().Changed("timeout") {
		timeout = config.TimeoutFromViper()
	}
	out, _ := cmd.Flags().GetString("out")

	err := cli.Index(cmd.Context(), config.LayoutFromViper(), commands.IndexOptions{
		Out:       out,
		CheckURLs: checkURLs,
		CheckSHA:  checkSHA,
		Timeout:   timeout,
	})
	if err != nil {
		os.Exit(1)
	}
}
