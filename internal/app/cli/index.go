package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/wot-oss/fwreg/internal/artifacts"
	"github.com/wot-oss/fwreg/internal/commands"
	"github.com/wot-oss/fwreg/internal/config"
)

func Index(ctx context.Context, layout config.Layout, opts commands.IndexOptions) error {
	if opts.Client == nil && (opts.CheckURLs || opts.CheckSHA) {
		client, err := artifacts.NewHTTPClientFromConfig(opts.Timeout)
		if err != nil {
			Stderrf("could not create http client: %v", err)
			return err
		}
		opts.Client = client
	}

	idx, err := commands.NewIndexCommand(time.Now).BuildIndex(ctx, layout, opts)
	if err != nil {
		Stderrf("could not build index: %v", err)
		return err
	}
	out := opts.Out
	if out == "" {
		out = layout.IndexFile
	}
	fmt.Printf("Wrote %s with %d packages\n", out, idx.Count)
	return nil
}
