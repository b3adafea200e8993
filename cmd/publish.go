package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wot-oss/fwreg/cmd/completion"
	"github.com/wot-oss/fwreg/internal/app/cli"
	"github.com/wot-oss/fwreg/internal/commands"
	"github.com/wot-oss/fwreg/internal/config"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Upload the assembled site to an S3 bucket",
	Long: `Upload every file of the assembled site to an S3 or S3-compatible bucket, keyed by its path below the
distribution directory. Region, endpoint and credentials are taken from the 'publish' config section or the
FWREG_PUBLISH_* environment variables, falling back to the AWS SDK defaults.
With --delete, objects below the prefix which are no longer part of the site are removed.`,
	Args:              cobra.NoArgs,
	ValidArgsFunction: completion.NoCompletionNoFile,
	Run:               executePublish,
}

func init() {
	RootCmd.AddCommand(publishCmd)
	addDistFlag(publishCmd)
	publishCmd.Flags().String("bucket", "", "name of the target bucket (default from config key publish.bucket)")
	publishCmd.Flags().String("prefix", "", "key prefix of all uploaded objects (default from config key publish.prefix)")
	publishCmd.Flags().Bool("delete", false, "delete objects below the prefix which are not part of the site")
}

func executePublish(cmd *cobra.Command, args []string) {
	bucket, _ := cmd.Flags().GetString("bucket")
	if bucket == "" {
		bucket = viper.GetString(config.KeyPublishBucket)
	}
	prefix, _ := cmd.Flags().GetString("prefix")
	if !cmd.Flags().Changed("prefix") {
		prefix = viper.GetString(config.KeyPublishPrefix)
	}
	del, _ := cmd.Flags().GetBool("delete")
	l := layoutFromFlags(cmd)

	err := cli.Publish(cmd.Context(), l.DistDir, commands.S3Config{
		Region:          viper.GetString(config.KeyPublishRegion),
		Endpoint:        viper.GetString(config.KeyPublishEndpoint),
		AccessKeyId:     viper.GetString(config.KeyPublishAccessKeyId),
		SecretAccessKey: viper.GetString(config.KeyPublishSecretAccessKey),
	}, commands.PublishOptions{
		Bucket:      bucket,
		Prefix:      prefix,
		DeleteStale: del,
	})
	if err != nil {
		os.Exit(1)
	}
}
