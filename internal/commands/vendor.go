package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/wot-oss/fwreg/internal/config"
	"github.com/wot-oss/fwreg/internal/utils"
)

var ErrVendorDownload = errors.New("vendor download failed")

// UpdateVendor downloads the vendor assets into the registry at root and returns the written files.
// Destinations are relative to root and must not leave it
func UpdateVendor(ctx context.Context, root string, assets []config.VendorAsset, client *http.Client) ([]string, error) {
	log := utils.GetLogger(ctx, "UpdateVendor")
	if client == nil {
		client = http.DefaultClient
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	var written []string
	for _, a := range assets {
		dest := filepath.Join(absRoot, filepath.FromSlash(a.Dest))
		if a.Dest == "" || filepath.IsAbs(filepath.FromSlash(a.Dest)) || !utils.IsWithin(absRoot, dest) || dest == absRoot {
			return written, fmt.Errorf("%w: destination %q is not a file below %s", ErrVendorDownload, a.Dest, absRoot)
		}
		data, err := download(ctx, client, a.URL)
		if err != nil {
			return written, err
		}
		if err := os.MkdirAll(filepath.Dir(dest), utils.DefaultDirPermissions); err != nil {
			return written, err
		}
		if err := utils.AtomicWriteFile(dest, data, utils.DefaultFilePermissions); err != nil {
			return written, err
		}
		log.Info("downloaded vendor asset", "url", a.URL, "dest", a.Dest)
		written = append(written, dest)
	}
	return written, nil
}

func download(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrVendorDownload, url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrVendorDownload, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: status %d", ErrVendorDownload, url, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrVendorDownload, url, err)
	}
	return data, nil
}
