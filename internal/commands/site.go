package commands

import (
	"context"

	"github.com/wot-oss/fwreg/internal/config"
	"github.com/wot-oss/fwreg/internal/site"
)

type SiteCommand struct {
	now Now
}

func NewSiteCommand(now Now) *SiteCommand {
	return &SiteCommand{
		now: now,
	}
}

// BuildSite assembles the distribution directory of the registry described by layout
func (c *SiteCommand) BuildSite(ctx context.Context, layout config.Layout, mode site.Mode, dryRun bool) (*site.Report, error) {
	a := site.NewAssembler(layout, mode, dryRun)
	a.Now = c.now
	return a.Assemble(ctx)
}
