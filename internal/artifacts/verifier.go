package artifacts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/wot-oss/fwreg/internal/model"
	"github.com/wot-oss/fwreg/internal/utils"
)

const hashBufferSize = 256 * 1024

// ErrDownloadStalled is the cause of a failed download which received no data for longer than the idle timeout
var ErrDownloadStalled = errors.New("download stalled")

type probeState int

const (
	probeHead probeState = iota
	probeRange
)

func (s probeState) String() string {
	switch s {
	case probeHead:
		return "HEAD"
	case probeRange:
		return "ranged GET"
	default:
		return "unknown"
	}
}

// Options toggles the checks performed by a Verifier
type Options struct {
	CheckURLs bool
	CheckSHA  bool
	// Timeout limits a single reachability probe and the time a digest download may go without receiving data.
	// Zero means no limit beyond the client's own
	Timeout time.Duration
}

// Verifier checks that the remote artifacts of a manifest are reachable and match their declared digests
type Verifier struct {
	client *http.Client
	opts   Options
}

func NewVerifier(client *http.Client, opts Options) *Verifier {
	if client == nil {
		client = http.DefaultClient
	}
	return &Verifier{client: client, opts: opts}
}

// Enabled reports whether the verifier performs any check at all
func (v *Verifier) Enabled() bool {
	return v.opts.CheckURLs || v.opts.CheckSHA
}

// Verify runs the enabled checks on all artifacts of the manifest. Reachability of all artifacts is
// checked before any digest. Artifacts without url are skipped; artifacts without sha256 are skipped
// by the digest check. Returns the first failure
func (v *Verifier) Verify(ctx context.Context, m *model.Manifest) error {
	if v.opts.CheckURLs {
		for _, a := range m.Artifacts {
			u, ok := a.RemoteURL()
			if !ok {
				continue
			}
			if err := v.CheckReachable(ctx, u); err != nil {
				return err
			}
		}
	}
	if v.opts.CheckSHA {
		for _, a := range m.Artifacts {
			u, ok := a.RemoteURL()
			if !ok {
				continue
			}
			expected, ok := a.ExpectedDigest()
			if !ok {
				continue
			}
			if err := v.CheckDigest(ctx, u, expected); err != nil {
				return err
			}
		}
	}
	return nil
}

// CheckReachable probes url with HEAD. Servers answering 403 or 405 to HEAD are probed again with
// a GET for the first byte. Any 2xx or 3xx answer counts as reachable.
// Returns a *model.UnreachableArtifactError otherwise
func (v *Verifier) CheckReachable(ctx context.Context, url string) error {
	log := utils.GetLogger(ctx, "artifacts")
	if v.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.opts.Timeout)
		defer cancel()
	}

	state := probeHead
	for {
		status, err := v.probe(ctx, state, url)
		if err != nil {
			log.Debug("probe failed", "url", url, "probe", state.String(), "error", err)
			return &model.UnreachableArtifactError{URL: url, Cause: err}
		}
		log.Debug("probe answered", "url", url, "probe", state.String(), "status", status)
		switch {
		case status >= 200 && status < 400:
			return nil
		case state == probeHead && (status == http.StatusForbidden || status == http.StatusMethodNotAllowed):
			state = probeRange
		default:
			return &model.UnreachableArtifactError{URL: url, Status: status}
		}
	}
}

func (v *Verifier) probe(ctx context.Context, state probeState, url string) (int, error) {
	method := http.MethodHead
	if state == probeRange {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, err
	}
	if state == probeRange {
		req.Header.Set("Range", "bytes=0-0")
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
	return resp.StatusCode, nil
}

// CheckDigest downloads url and compares the SHA-256 digest of its content with expected.
// Returns a *model.HashMismatchError if they differ
func (v *Verifier) CheckDigest(ctx context.Context, url, expected string) error {
	actual, err := v.Digest(ctx, url)
	if err != nil {
		return err
	}
	utils.GetLogger(ctx, "artifacts").Debug("computed digest", "url", url, "sha256", actual)
	if actual != expected {
		return &model.HashMismatchError{URL: url, Expected: expected, Actual: actual}
	}
	return nil
}

// Digest streams the content at url through SHA-256 and returns the lower-case hex digest
func (v *Verifier) Digest(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &model.UnreachableArtifactError{URL: url, Cause: err}
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return "", &model.UnreachableArtifactError{URL: url, Cause: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &model.UnreachableArtifactError{URL: url, Status: resp.StatusCode}
	}

	var body io.Reader = resp.Body
	if v.opts.Timeout > 0 {
		ir := newIdleReader(resp.Body, v.opts.Timeout, func() { cancel(ErrDownloadStalled) })
		defer ir.Stop()
		body = ir
	}

	h := sha256.New()
	buf := make([]byte, hashBufferSize)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if cause := context.Cause(ctx); errors.Is(cause, ErrDownloadStalled) {
				err = cause
			}
			return "", &model.UnreachableArtifactError{URL: url, Status: resp.StatusCode, Cause: err}
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// idleReader calls onIdle when no Read returns within timeout. The total duration of reading is not limited
type idleReader struct {
	r       io.Reader
	timeout time.Duration
	timer   *time.Timer
}

func newIdleReader(r io.Reader, timeout time.Duration, onIdle func()) *idleReader {
	return &idleReader{r: r, timeout: timeout, timer: time.AfterFunc(timeout, onIdle)}
}

func (i *idleReader) Read(p []byte) (int, error) {
	n, err := i.r.Read(p)
	if n > 0 {
		i.timer.Reset(i.timeout)
	}
	return n, err
}

func (i *idleReader) Stop() {
	i.timer.Stop()
}
