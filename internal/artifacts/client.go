package artifacts

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
	"github.com/spf13/viper"
	"github.com/wot-oss/fwreg/internal/config"
	"github.com/wot-oss/fwreg/internal/utils"
)

const cacheDirName = ".http-cache"

// NewHTTPClient returns a client for artifact and vendor downloads. Waiting for response headers
// is limited by timeout; stalled bodies are detected by Verifier.Digest. If cacheDir is not empty, responses are cached on disk there
func NewHTTPClient(timeout time.Duration, cacheDir string) (*http.Client, error) {
	base := http.DefaultTransport.(*http.Transport).Clone()
	if timeout > 0 {
		base.ResponseHeaderTimeout = timeout
	}
	var rt http.RoundTripper = base
	if cacheDir != "" {
		err := os.MkdirAll(cacheDir, 0770)
		if err != nil {
			return nil, fmt.Errorf("could not create http cache directory: %w", err)
		}
		ct := httpcache.NewTransport(diskcache.New(cacheDir))
		ct.Transport = base
		rt = ct
	}
	return &http.Client{Transport: &userAgentTransport{next: rt}}, nil
}

// NewHTTPClientFromConfig creates a client with the given timeout, or the configured one if timeout is not positive.
// The on-disk cache below the config directory is used only when enabled in the configuration
func NewHTTPClientFromConfig(timeout time.Duration) (*http.Client, error) {
	if timeout <= 0 {
		timeout = config.TimeoutFromViper()
	}
	cacheDir := ""
	if viper.GetBool(config.KeyHttpCache) && config.ConfigDir != "" {
		cacheDir = filepath.Join(config.ConfigDir, cacheDirName)
	}
	return NewHTTPClient(timeout, cacheDir)
}

type userAgentTransport struct {
	next http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", "fwreg/"+utils.GetFwregVersion())
	}
	return t.next.RoundTrip(req)
}
