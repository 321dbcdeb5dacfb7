// Package prompt builds the link-relevance prompt and parses provider
// output. All providers share the same prompt and the same strict-JSON
// response contract so they are interchangeable behind models.Oracle.
package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/seekerhq/intentcrawl/pkg/models"
)

// ErrMalformed is returned when provider output cannot be parsed into a
// verdict. Callers must not treat this as fatal; the relevance router
// falls back to the domain-affinity heuristic.
var ErrMalformed = errors.New("malformed oracle response")

// Build renders the relevance prompt for a single link.
func Build(q models.LinkQuery) string {
	host := q.Domain
	if host == "" {
		if u, err := url.Parse(q.URL); err == nil {
			host = u.Host
		}
	}

	return fmt.Sprintf(`Given this crawl intent: %q

Link URL: %s
Link text: %s
Domain: %s

Should this link be crawled? Consider:
1. Is it relevant to the intent?
2. Is it likely to contain useful content?
3. Is it documentation, tutorial, or reference material?

Respond with a JSON object:
{
    "should_crawl": true/false,
    "reasoning": "brief explanation",
    "confidence": 0.0-1.0
}`, q.Intent, q.URL, q.AnchorText, host)
}

// ParseVerdict extracts a Verdict from raw model output. Models wrap JSON
// in code fences or prose often enough that we locate the outermost object
// rather than decoding the whole string.
func ParseVerdict(content string) (models.Verdict, error) {
	raw := extractJSON(content)
	if raw == "" {
		return models.Verdict{}, fmt.Errorf("%w: no JSON object in %q", ErrMalformed, truncate(content, 120))
	}

	var v models.Verdict
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return models.Verdict{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if v.Confidence < 0 || v.Confidence > 1 {
		return models.Verdict{}, fmt.Errorf("%w: confidence %v out of range", ErrMalformed, v.Confidence)
	}
	if v.Reasoning == "" {
		v.Reasoning = "no reason provided"
	}
	return v, nil
}

func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
