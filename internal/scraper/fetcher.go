// Package scraper implements the fetch capability: given a URL it returns
// the page's extracted text, title, and outbound links, honoring
// robots.txt. Failures of any kind surface as ErrUnavailable so the
// traversal can skip the page and continue.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/seekerhq/intentcrawl/internal/config"
	"github.com/seekerhq/intentcrawl/pkg/models"
)

// ErrUnavailable covers robots-disallow, non-2xx status, and transport
// errors. Callers treat it as "skip this page", never as fatal.
var ErrUnavailable = errors.New("page unavailable")

// Fetcher retrieves a single page.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*models.Page, error)
	// Domain extracts the host component of a URL, or "" if unparseable.
	Domain(rawURL string) string
}

// HTTPFetcher implements Fetcher over a shared http.Client.
type HTTPFetcher struct {
	client        *http.Client
	robots        *robotsCache
	userAgent     string
	maxBodySize   int64
	respectRobots bool
}

// NewHTTPFetcher creates a fetcher from crawler config. The same client is
// used for pages and robots.txt so proxy and timeout settings stay consistent.
func NewHTTPFetcher(cfg config.CrawlerConfig) *HTTPFetcher {
	client := &http.Client{Timeout: cfg.FetchTimeout}
	return &HTTPFetcher{
		client:        client,
		robots:        newRobotsCache(client, cfg.UserAgent),
		userAgent:     cfg.UserAgent,
		maxBodySize:   cfg.MaxBodySize,
		respectRobots: cfg.RespectRobots,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (*models.Page, error) {
	u, err := url.Parse(pageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: invalid URL %q", ErrUnavailable, pageURL)
	}

	if f.respectRobots && !f.robots.canFetch(ctx, u) {
		slog.Debug("blocked by robots.txt", "url", pageURL)
		return nil, fmt.Errorf("%w: disallowed by robots.txt", ErrUnavailable)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrUnavailable, err)
	}

	// Final URL after redirects is what gets stored and deduplicated on.
	finalURL := resp.Request.URL

	page := &models.Page{
		URL:         finalURL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}

	if strings.Contains(page.ContentType, "html") || page.ContentType == "" {
		parsed, err := parseHTML(finalURL, strings.NewReader(string(body)))
		if err != nil {
			return nil, fmt.Errorf("%w: parsing html: %v", ErrUnavailable, err)
		}
		page.Title = parsed.Title
		page.Content = parsed.Content
		page.Links = parsed.Links
	} else {
		page.Title = finalURL.String()
		page.Content = string(body)
	}

	slog.Info("fetched page",
		"url", pageURL,
		"status", resp.StatusCode,
		"content_chars", len(page.Content),
		"links", len(page.Links),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return page, nil
}

// Domain extracts the host from a URL for same-domain comparisons.
func (f *HTTPFetcher) Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

var _ Fetcher = (*HTTPFetcher)(nil)
