package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const (
	KeyLogLevel        = "loglevel"
	KeyConfig          = "config"
	KeyRoot            = "root"
	KeyPackagesDir     = "packagesDir"
	KeySchemaFile      = "schemaFile"
	KeyAllowListFile   = "allowListFile"
	KeyIndexFile       = "indexFile"
	KeySiteDir         = "siteDir"
	KeyDocsDir         = "docsDir"
	KeyDistDir         = "distDir"
	KeyIgnoreFile      = "ignoreFile"
	KeyManifestPattern = "manifestPattern"
	KeyTimeout         = "timeout"
	KeyHttpCache       = "httpCache"
	KeyVendorAssets    = "vendorAssets"

	KeyCorsAllowedOrigins   = "corsAllowedOrigins"
	KeyCorsAllowedHeaders   = "corsAllowedHeaders"
	KeyCorsAllowCredentials = "corsAllowCredentials"
	KeyCorsMaxAge           = "corsMaxAge"

	KeyPublishBucket          = "publish.bucket"
	KeyPublishRegion          = "publish.region"
	KeyPublishEndpoint        = "publish.endpoint"
	KeyPublishPrefix          = "publish.prefix"
	KeyPublishAccessKeyId     = "publish.accessKeyId"
	KeyPublishSecretAccessKey = "publish.secretAccessKey"

	EnvPrefix = "fwreg"
	EnvConfig = "FWREG_CONFIG"

	LogLevelOff = "off"

	DefaultTimeout = 20 * time.Second
)

var DefaultConfigDir string
var ConfigDir string

func init() {
	home, err := os.UserHomeDir()
	if err != nil {
		DefaultConfigDir = ".fwreg"
	} else {
		DefaultConfigDir = filepath.Join(home, ".fwreg")
	}
	ConfigDir = DefaultConfigDir
}

func InitViper() {
	viper.SetDefault(KeyLogLevel, LogLevelOff)
	viper.SetDefault(KeyRoot, ".")
	viper.SetDefault(KeyPackagesDir, "packages")
	viper.SetDefault(KeySchemaFile, filepath.Join("schemas", "manifest.schema.json"))
	viper.SetDefault(KeyAllowListFile, filepath.Join("schemas", "allowed.json"))
	viper.SetDefault(KeyIndexFile, "index.json")
	viper.SetDefault(KeySiteDir, "site")
	viper.SetDefault(KeyDocsDir, "docs")
	viper.SetDefault(KeyDistDir, "dist")
	viper.SetDefault(KeyIgnoreFile, ".registryignore")
	viper.SetDefault(KeyManifestPattern, "**/*.json")
	viper.SetDefault(KeyTimeout, DefaultTimeout)
	viper.SetDefault(KeyHttpCache, false)
	viper.SetDefault(KeyVendorAssets, DefaultVendorAssets())

	viper.SetConfigType("json")
	viper.SetConfigName("config")
	viper.AddConfigPath(ConfigDir)
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			panic("cannot read config: " + err.Error())
		}
		// config file not found; rely on defaults
	}
	// the environment variables have to match pattern "fwreg_<viper variable>", lower or uppercase
	viper.SetEnvPrefix(EnvPrefix)

	_ = viper.BindEnv(KeyLogLevel)    // FWREG_LOGLEVEL
	_ = viper.BindEnv(KeyRoot)        // FWREG_ROOT
	_ = viper.BindEnv(KeyDistDir)     // FWREG_DISTDIR
	_ = viper.BindEnv(KeyTimeout)     // FWREG_TIMEOUT
	_ = viper.BindEnv(KeyHttpCache)   // FWREG_HTTPCACHE

	_ = viper.BindEnv(KeyCorsAllowedOrigins)   // FWREG_CORSALLOWEDORIGINS
	_ = viper.BindEnv(KeyCorsAllowedHeaders)   // FWREG_CORSALLOWEDHEADERS
	_ = viper.BindEnv(KeyCorsAllowCredentials) // FWREG_CORSALLOWCREDENTIALS
	_ = viper.BindEnv(KeyCorsMaxAge)           // FWREG_CORSMAXAGE

	_ = viper.BindEnv(KeyPublishBucket, "FWREG_PUBLISH_BUCKET")
	_ = viper.BindEnv(KeyPublishRegion, "FWREG_PUBLISH_REGION")
	_ = viper.BindEnv(KeyPublishEndpoint, "FWREG_PUBLISH_ENDPOINT")
	_ = viper.BindEnv(KeyPublishAccessKeyId, "FWREG_PUBLISH_ACCESSKEYID")
	_ = viper.BindEnv(KeyPublishSecretAccessKey, "FWREG_PUBLISH_SECRETACCESSKEY")
}

// VendorAsset is a third-party script downloaded into the site's vendor directory
type VendorAsset struct {
	URL  string `json:"url" mapstructure:"url"`
	Dest string `json:"dest" mapstructure:"dest"`
}

func DefaultVendorAssets() []VendorAsset {
	return []VendorAsset{
		{URL: "https://unpkg.com/esptool-js/bundle.js", Dest: "site/vendor/esptool-js/esptool.min.js"},
		{URL: "https://unpkg.com/dfu/dist/index.js", Dest: "site/vendor/webdfu/index.js"},
		{URL: "https://unpkg.com/nanoevents/index.js", Dest: "site/vendor/webdfu/nanoevents.js"},
	}
}

// VendorAssetsFromViper returns the configured vendor assets, falling back to the defaults
// if the configured value cannot be decoded
func VendorAssetsFromViper() []VendorAsset {
	var assets []VendorAsset
	if err := viper.UnmarshalKey(KeyVendorAssets, &assets); err != nil || len(assets) == 0 {
		return DefaultVendorAssets()
	}
	return assets
}
