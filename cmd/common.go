package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/wot-oss/fwreg/internal/config"
	"github.com/wot-oss/fwreg/internal/utils"
)

const flagDist = "dist"

func addDistFlag(cmd *cobra.Command) {
	cmd.Flags().StringP(flagDist, "d", "", "distribution directory (default <root>/dist)")
	_ = cmd.MarkFlagDirname(flagDist)
}

// layoutFromFlags returns the configured layout, with the distribution directory replaced by --dist if given
func layoutFromFlags(cmd *cobra.Command) config.Layout {
	l := config.LayoutFromViper()
	dist, _ := cmd.Flags().GetString(flagDist)
	if dist == "" {
		return l
	}
	if expanded, err := utils.ExpandHome(dist); err == nil {
		dist = expanded
	}
	if abs, err := filepath.Abs(dist); err == nil {
		dist = abs
	}
	l.DistDir = dist
	return l
}
