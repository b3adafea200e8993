package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wot-oss/fwreg/cmd/completion"
	"github.com/wot-oss/fwreg/internal/app/cli"
	"github.com/wot-oss/fwreg/internal/app/http"
	"github.com/wot-oss/fwreg/internal/app/http/cors"
	"github.com/wot-oss/fwreg/internal/config"
	"github.com/wot-oss/fwreg/internal/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the assembled site for local preview",
	Long: `Serve the assembled site read-only over HTTP for local preview.
manifests.json and index.json are served with Cache-Control: no-store.
CORS can be configured with the config keys or environment variables corsAllowedOrigins, corsAllowedHeaders,
corsAllowCredentials and corsMaxAge.`,
	Args:              cobra.NoArgs,
	ValidArgsFunction: completion.NoCompletionNoFile,
	Run:               serve,
}

func init() {
	RootCmd.AddCommand(serveCmd)
	addDistFlag(serveCmd)
	serveCmd.Flags().String("host", "0.0.0.0", "serve with this host name")
	serveCmd.Flags().String("port", "8080", "serve with this port")
}

func serve(cmd *cobra.Command, args []string) {
	host := cmd.Flag("host").Value.String()
	port := cmd.Flag("port").Value.String()
	l := layoutFromFlags(cmd)

	err := cli.Serve(cmd.Context(), host, port, l.DistDir, http.ServerOptions{CORS: getCORSOptions()})
	if err != nil {
		cli.Stderrf("serve failed")
		os.Exit(1)
	}
}

func getCORSOptions() cors.CORSOptions {
	opts := cors.CORSOptions{}
	opts.AddAllowedOrigins(utils.ParseAsList(viper.GetString(config.KeyCorsAllowedOrigins), cli.DefaultListSeparator, true)...)
	opts.AddAllowedHeaders(utils.ParseAsList(viper.GetString(config.KeyCorsAllowedHeaders), cli.DefaultListSeparator, true)...)
	opts.AllowCredentials(viper.GetBool(config.KeyCorsAllowCredentials))
	opts.MaxAge(viper.GetInt(config.KeyCorsMaxAge))
	return opts
}
