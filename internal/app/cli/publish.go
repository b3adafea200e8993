package cli

import (
	"context"
	"fmt"

	"github.com/wot-oss/fwreg/internal/commands"
)

func Publish(ctx context.Context, dist string, cfg commands.S3Config, opts commands.PublishOptions) error {
	client, err := commands.NewS3Client(ctx, cfg)
	if err != nil {
		Stderrf("could not create S3 client: %v", err)
		return err
	}
	return publish(ctx, client, dist, opts)
}

func publish(ctx context.Context, client commands.S3Client, dist string, opts commands.PublishOptions) error {
	rep, err := commands.Publish(ctx, client, dist, opts)
	if err != nil {
		Stderrf("could not publish %s: %v", dist, err)
		return err
	}
	fmt.Printf("Uploaded %d files to s3://%s/%s\n", len(rep.Uploaded), opts.Bucket, opts.Prefix)
	if len(rep.Deleted) > 0 {
		fmt.Printf("Deleted %d stale objects\n", len(rep.Deleted))
		for _, k := range rep.Deleted {
			fmt.Printf("  %s\n", k)
		}
	}
	return nil
}
