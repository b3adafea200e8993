package cli

import (
	"context"
	"fmt"

	"github.com/wot-oss/fwreg/internal/artifacts"
	"github.com/wot-oss/fwreg/internal/commands"
	"github.com/wot-oss/fwreg/internal/config"
)

func Vendor(ctx context.Context, layout config.Layout, assets []config.VendorAsset) error {
	client, err := artifacts.NewHTTPClientFromConfig(0)
	if err != nil {
		Stderrf("could not create http client: %v", err)
		return err
	}
	written, err := commands.UpdateVendor(ctx, layout.Root, assets, client)
	for _, w := range written {
		fmt.Printf("downloaded %s\n", w)
	}
	if err != nil {
		Stderrf("could not update vendor assets: %v", err)
		return err
	}
	return nil
}
