package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/wot-oss/fwreg/internal/commands"
	"github.com/wot-oss/fwreg/internal/config"
	"github.com/wot-oss/fwreg/internal/site"
)

func Site(ctx context.Context, layout config.Layout, mode string, dryRun bool) error {
	m, err := site.ParseMode(mode)
	if err != nil {
		Stderrf("%v", err)
		return err
	}
	rep, err := commands.NewSiteCommand(time.Now).BuildSite(ctx, layout, m, dryRun)
	if err != nil {
		Stderrf("could not assemble site: %v", err)
		return err
	}

	fmt.Printf("Assembled %s with %d packages\n", rep.Dist, len(rep.Selected))
	for _, doc := range rep.Selected {
		fmt.Printf("  %s %s (%s)\n", doc.Manifest.ID, doc.Manifest.Version, doc.Source)
	}
	if rep.Pruned != nil {
		verb := "Removed"
		if dryRun {
			verb = "Would remove"
		}
		fmt.Printf("%s %d unreferenced firmware assets, kept %d\n", verb, len(rep.Pruned.Removed), len(rep.Pruned.Kept))
		for _, r := range rep.Pruned.Removed {
			fmt.Printf("  %s\n", r)
		}
	}
	return nil
}
