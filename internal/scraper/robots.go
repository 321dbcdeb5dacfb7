package scraper

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// robotsRules holds disallow rules for a given user-agent. Path matching
// follows common practice: Disallow: /search forbids any path whose path
// component starts with /search (e.g. /search, /search.json, /search/authors).
type robotsRules struct {
	disallowPrefixes []string
}

// allowed returns false if the URL path is disallowed by the parsed
// robots.txt rules. Empty path or uninitialized rules are treated as allowed.
func (r *robotsRules) allowed(path string) bool {
	if r == nil || len(r.disallowPrefixes) == 0 {
		return true
	}
	path = normalizePath(path)
	for _, prefix := range r.disallowPrefixes {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}

func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		return "/" + p
	}
	return p
}

// parseRobots parses a robots.txt body and returns rules for the given
// userAgent. Every User-agent block that matches (exact or "*") contributes
// its Disallow lines.
func parseRobots(body []byte, userAgent string) *robotsRules {
	r := &robotsRules{}
	scanner := bufio.NewScanner(strings.NewReader(string(body)))
	var inMatchingBlock bool
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lower := strings.ToLower(line)
		if strings.HasPrefix(lower, "user-agent:") {
			agent := strings.TrimSpace(line[len("user-agent:"):])
			inMatchingBlock = agent == "*" || strings.EqualFold(agent, userAgent)
			continue
		}
		if inMatchingBlock && strings.HasPrefix(lower, "disallow:") {
			path := strings.TrimSpace(line[len("disallow:"):])
			if path != "" {
				r.disallowPrefixes = append(r.disallowPrefixes, normalizePath(path))
			}
		}
	}
	return r
}

// robotsCache fetches and caches per-host robots.txt rules. A host whose
// robots.txt cannot be fetched is treated as fully allowed.
type robotsCache struct {
	client    *http.Client
	userAgent string

	mu    sync.Mutex
	rules map[string]*robotsRules
}

func newRobotsCache(client *http.Client, userAgent string) *robotsCache {
	return &robotsCache{
		client:    client,
		userAgent: userAgent,
		rules:     make(map[string]*robotsRules),
	}
}

// canFetch reports whether the target URL is allowed by its host's robots.txt.
func (c *robotsCache) canFetch(ctx context.Context, target *url.URL) bool {
	c.mu.Lock()
	rules, ok := c.rules[target.Host]
	c.mu.Unlock()

	if !ok {
		rules = c.fetch(ctx, target)
		c.mu.Lock()
		c.rules[target.Host] = rules
		c.mu.Unlock()
	}

	return rules.allowed(target.Path)
}

func (c *robotsCache) fetch(ctx context.Context, target *url.URL) *robotsRules {
	robotsURL := &url.URL{Scheme: target.Scheme, Host: target.Host, Path: "/robots.txt"}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL.String(), nil)
	if err != nil {
		return &robotsRules{}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return &robotsRules{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &robotsRules{}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256*1024))
	if err != nil {
		return &robotsRules{}
	}

	return parseRobots(body, c.userAgent)
}
