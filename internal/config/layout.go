package config

import (
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"github.com/wot-oss/fwreg/internal/utils"
)

// Layout holds the resolved locations of everything a registry build reads or writes.
// All paths are absolute unless the root itself could not be made absolute.
type Layout struct {
	Root          string
	PackagesDir   string
	SchemaFile    string
	AllowListFile string
	IndexFile     string
	SiteDir       string
	DocsDir       string
	DistDir       string
	// IgnoreFile is resolved relative to PackagesDir
	IgnoreFile string
	Pattern    string
}

// NewLayout resolves all relative locations against root. Absolute locations are kept as they are.
func NewLayout(root, packagesDir, schemaFile, allowListFile, indexFile, siteDir, docsDir, distDir, ignoreFile, pattern string) Layout {
	if expanded, err := utils.ExpandHome(root); err == nil {
		root = expanded
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		absRoot = root
	}
	pkgs := resolve(absRoot, packagesDir)
	return Layout{
		Root:          absRoot,
		PackagesDir:   pkgs,
		SchemaFile:    resolve(absRoot, schemaFile),
		AllowListFile: resolve(absRoot, allowListFile),
		IndexFile:     resolve(absRoot, indexFile),
		SiteDir:       resolve(absRoot, siteDir),
		DocsDir:       resolve(absRoot, docsDir),
		DistDir:       resolve(absRoot, distDir),
		IgnoreFile:    resolve(pkgs, ignoreFile),
		Pattern:       pattern,
	}
}

// DefaultLayout returns the layout of a registry at root using the default directory names
func DefaultLayout(root string) Layout {
	return NewLayout(root, "packages", filepath.Join("schemas", "manifest.schema.json"), filepath.Join("schemas", "allowed.json"),
		"index.json", "site", "docs", "dist", ".registryignore", "**/*.json")
}

func LayoutFromViper() Layout {
	return NewLayout(
		viper.GetString(KeyRoot),
		viper.GetString(KeyPackagesDir),
		viper.GetString(KeySchemaFile),
		viper.GetString(KeyAllowListFile),
		viper.GetString(KeyIndexFile),
		viper.GetString(KeySiteDir),
		viper.GetString(KeyDocsDir),
		viper.GetString(KeyDistDir),
		viper.GetString(KeyIgnoreFile),
		viper.GetString(KeyManifestPattern),
	)
}

func TimeoutFromViper() time.Duration {
	d := viper.GetDuration(KeyTimeout)
	if d <= 0 {
		return DefaultTimeout
	}
	return d
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
