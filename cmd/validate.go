package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/wot-oss/fwreg/cmd/completion"
	"github.com/wot-oss/fwreg/internal/app/cli"
	"github.com/wot-oss/fwreg/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file> [<file>...]",
	Short: "Validate manifest files",
	Long: `Validate manifest files against the registry's manifest schema and allow-list without building an index.
All files are validated and every problem is reported.`,
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completion.CompleteManifestFiles,
	Run:               executeValidate,
}

func init() {
	RootCmd.AddCommand(validateCmd)
}

func executeValidate(cmd *cobra.Command, args []string) {
	err := cli.Validate(cmd.Context(), config.LayoutFromViper(), args)
	if err != nil {
		os.Exit(1)
	}
}
