package commands

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/wot-oss/fwreg/internal/artifacts"
	"github.com/wot-oss/fwreg/internal/catalog"
	"github.com/wot-oss/fwreg/internal/commands/validate"
	"github.com/wot-oss/fwreg/internal/config"
	"github.com/wot-oss/fwreg/internal/index"
	"github.com/wot-oss/fwreg/internal/model"
	"github.com/wot-oss/fwreg/internal/utils"
)

type Now func() time.Time

// IndexOptions control the optional parts of an index build
type IndexOptions struct {
	// Out is the output file. Defaults to the index file of the layout
	Out       string
	CheckURLs bool
	CheckSHA  bool
	// Timeout limits each network request. Defaults to config.DefaultTimeout
	Timeout time.Duration
	// Client is used for artifact verification. A client with Timeout is created if nil
	Client *http.Client
}

type IndexCommand struct {
	now Now
}

func NewIndexCommand(now Now) *IndexCommand {
	return &IndexCommand{
		now: now,
	}
}

// BuildIndex validates all manifests of the registry and writes the index. Each manifest is loaded,
// validated against the schema and the allow-list, checked for a duplicate id and version, and its
// artifacts verified as requested in opts. The first failing manifest aborts the build and nothing is written
func (c *IndexCommand) BuildIndex(ctx context.Context, layout config.Layout, opts IndexOptions) (*model.Index, error) {
	log := utils.GetLogger(ctx, "IndexCommand")

	validator, err := validate.Load(layout.SchemaFile, layout.AllowListFile)
	if err != nil {
		return nil, err
	}
	verifier, err := newVerifier(opts)
	if err != nil {
		return nil, err
	}

	cat := catalog.New(layout.Root, layout.PackagesDir, layout.Pattern, layout.IgnoreFile)
	paths, err := cat.Discover(ctx)
	if err != nil {
		return nil, err
	}

	b := index.NewBuilder(c.now)
	for _, p := range paths {
		doc, err := cat.Load(p)
		if err != nil {
			return nil, err
		}
		if err := validator.Validate(ctx, doc); err != nil {
			return nil, err
		}
		if err := b.CheckDuplicate(doc); err != nil {
			return nil, err
		}
		if verifier.Enabled() {
			if err := verifier.Verify(ctx, &doc.Manifest); err != nil {
				return nil, fmt.Errorf("%s: %w", doc.Source, err)
			}
			log.Debug("verified artifacts", "source", doc.Source)
		}
		if err := b.Add(doc); err != nil {
			return nil, err
		}
	}

	idx := b.Index()
	out := opts.Out
	if out == "" {
		out = layout.IndexFile
	}
	if err := index.Write(ctx, out, idx); err != nil {
		return nil, err
	}
	return idx, nil
}

func newVerifier(opts IndexOptions) (*artifacts.Verifier, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}
	client := opts.Client
	if client == nil && (opts.CheckURLs || opts.CheckSHA) {
		var err error
		client, err = artifacts.NewHTTPClient(timeout, "")
		if err != nil {
			return nil, err
		}
	}
	return artifacts.NewVerifier(client, artifacts.Options{
		CheckURLs: opts.CheckURLs,
		CheckSHA:  opts.CheckSHA,
		Timeout:   timeout,
	}), nil
}
