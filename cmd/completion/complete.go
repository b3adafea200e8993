package completion

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wot-oss/fwreg/internal/catalog"
	"github.com/wot-oss/fwreg/internal/config"
	"github.com/wot-oss/fwreg/internal/site"
)

func NoCompletionNoFile(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func CompleteSiteModes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{string(site.ModeManifests), string(site.ModeIndex)}, cobra.ShellCompDirectiveNoFileComp
}

// CompleteManifestFiles completes the manifest files found in the registry's packages directory
func CompleteManifestFiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	config.InitViper()
	l := config.LayoutFromViper()
	c := catalog.New(l.Root, l.PackagesDir, l.Pattern, l.IgnoreFile)
	paths, err := c.Discover(context.Background())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var fns []string
	for _, p := range paths {
		if rel, err := filepath.Rel(wd, p); err == nil {
			p = rel
		}
		if strings.HasPrefix(p, toComplete) && !slices.Contains(args, p) {
			fns = append(fns, p)
		}
	}
	return fns, cobra.ShellCompDirectiveNoFileComp
}
