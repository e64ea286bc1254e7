// Package fetch downloads the DLC catalog and RPOZ assets over HTTP.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/Faultbox/rpotool/internal/catalog"
)

// DefaultMaxBody caps a single response body.
const DefaultMaxBody = 256 << 20

// ErrTooLarge is returned when a response exceeds Options.MaxBody.
var ErrTooLarge = errors.New("response body too large")

// StatusError reports a non-2xx response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// retryable reports whether a request with this status may succeed later.
func (e *StatusError) retryable() bool {
	switch {
	case e.Code == http.StatusTooManyRequests, e.Code == http.StatusRequestTimeout:
		return true
	case e.Code >= 400 && e.Code < 500:
		return false
	default:
		return true
	}
}

// HTTPDoer describes the HTTP client used by the fetcher.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures a Client.
type Options struct {
	CatalogURL    string
	AssetURL      string
	UserAgent     string
	Timeout       time.Duration // Per request; <= 0 disables
	Retries       int           // Extra attempts after the first
	RetryInterval time.Duration // First backoff delay; <= 0 means 500ms
	MaxBody       int64         // <= 0 means DefaultMaxBody
}

// Client fetches catalog data. It is safe for concurrent use.
type Client struct {
	opts   Options
	client HTTPDoer
	log    *zap.Logger
}

// New creates a Client. A nil doer uses http.DefaultClient; a nil logger
// discards output.
func New(opts Options, doer HTTPDoer, log *zap.Logger) *Client {
	if doer == nil {
		doer = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 500 * time.Millisecond
	}
	if opts.MaxBody <= 0 {
		opts.MaxBody = DefaultMaxBody
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	return &Client{opts: opts, client: doer, log: log}
}

// Catalog downloads and parses the shell catalog.
func (c *Client) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	data, err := c.get(ctx, c.opts.CatalogURL)
	if err != nil {
		return nil, fmt.Errorf("fetching catalog: %w", err)
	}
	cat, err := catalog.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	c.log.Info("catalog loaded", zap.Stringer("contents", cat.Stats()))
	return cat, nil
}

// Asset downloads the raw RPOZ bytes of an asset.
func (c *Client) Asset(ctx context.Context, a catalog.Asset) ([]byte, error) {
	u, err := a.URL(c.opts.AssetURL)
	if err != nil {
		return nil, fmt.Errorf("building url for %s: %w", a.Key, err)
	}
	data, err := c.get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", a.Key, err)
	}
	return data, nil
}

// Source returns a convert.Source that downloads a.
func (c *Client) Source(a catalog.Asset) AssetSource {
	return AssetSource{client: c, asset: a}
}

// get performs a GET with retries. Client errors other than 408 and 429
// fail immediately.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	attempt := 0
	op := func() ([]byte, error) {
		attempt++
		data, err := c.getOnce(ctx, url)
		if err == nil {
			return data, nil
		}

		var se *StatusError
		switch {
		case errors.As(err, &se) && !se.retryable():
			return nil, backoff.Permanent(err)
		case errors.Is(err, ErrTooLarge), ctx.Err() != nil:
			return nil, backoff.Permanent(err)
		}
		c.log.Debug("request failed, retrying",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		return nil, err
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.opts.RetryInterval

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(eb),
		backoff.WithMaxTries(uint(c.opts.Retries)+1),
	)
}

func (c *Client) getOnce(ctx context.Context, url string) ([]byte, error) {
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		se := &StatusError{URL: url, Code: resp.StatusCode}
		if se.Code == http.StatusTooManyRequests {
			if secs, err := strconv.Atoi(strings.TrimSpace(resp.Header.Get("Retry-After"))); err == nil && secs > 0 {
				return nil, backoff.RetryAfter(secs)
			}
		}
		return nil, se
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.opts.MaxBody+1))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if int64(len(data)) > c.opts.MaxBody {
		return nil, fmt.Errorf("%w: more than %s", ErrTooLarge, humanize.IBytes(uint64(c.opts.MaxBody)))
	}

	c.log.Debug("downloaded",
		zap.String("url", url),
		zap.String("size", humanize.IBytes(uint64(len(data)))),
		zap.Duration("elapsed", time.Since(start)),
	)
	return data, nil
}

// AssetSource downloads one catalog asset on Read.
type AssetSource struct {
	client *Client
	asset  catalog.Asset
}

// Name returns the asset's local file name.
func (s AssetSource) Name() string { return s.asset.FileName() }

// Asset returns the catalog entry behind the source.
func (s AssetSource) Asset() catalog.Asset { return s.asset }

func (s AssetSource) Read(ctx context.Context) ([]byte, error) {
	return s.client.Asset(ctx, s.asset)
}
