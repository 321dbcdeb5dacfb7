package crawler

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/seekerhq/intentcrawl/pkg/models"
)

// Domain-affinity priors: the baseline confidence a link carries before
// the oracle ever sees it.
const (
	sameDomainPrior  = 0.9
	crossDomainPrior = 0.3
)

// skipExtensions are path suffixes that never contain crawlable content.
// Links matching these are rejected without an oracle call.
var skipExtensions = []string{
	".pdf", ".zip", ".tar", ".gz", ".rar", ".7z",
	".jpg", ".jpeg", ".png", ".gif", ".svg", ".webp", ".ico",
	".mp4", ".mov", ".avi", ".mp3", ".wav",
	".doc", ".docx", ".ppt", ".pptx", ".xls", ".xlsx",
}

// Tier is the routing decision derived from a relevance verdict.
type Tier int

const (
	TierReject Tier = iota
	TierAsk
	TierAdmit
)

// Thresholds externalizes the confidence-to-tier cut points. Ties fall to
// the lower tier.
type Thresholds struct {
	AutoAdmit float64
	AskHuman  float64
}

// Tier maps a verdict to its routing tier. A config with AutoAdmit 0.8 and
// AskHuman 0.5 yields: confidence > 0.8 with a positive recommendation
// auto-admits; 0.5 < confidence <= 0.8 with a positive recommendation asks
// a human; everything else rejects.
func (t Thresholds) Tier(v models.Verdict) Tier {
	switch {
	case v.ShouldCrawl && v.Confidence > t.AutoAdmit:
		return TierAdmit
	case v.ShouldCrawl && v.Confidence > t.AskHuman:
		return TierAsk
	default:
		return TierReject
	}
}

// Candidate is one discovered link under evaluation. It lives for a single
// discovery iteration and is never persisted.
type Candidate struct {
	URL        string
	AnchorText string
	Intent     string
	BaseDomain string
}

// Router decides whether a link is worth crawling: cheap heuristics first,
// then the relevance oracle, with a domain-affinity fallback when the
// oracle misbehaves.
type Router struct {
	oracle  models.Oracle
	timeout time.Duration
}

// NewRouter creates a Router. timeout bounds each oracle call.
func NewRouter(oracle models.Oracle, timeout time.Duration) *Router {
	return &Router{oracle: oracle, timeout: timeout}
}

// Evaluate produces a verdict for one candidate link.
//
// Order of operations: scheme and extension pre-filters reject outright
// with full confidence; otherwise the oracle is consulted and same-domain
// links have their confidence floored at the domain prior. Oracle failure
// of any kind degrades to the prior alone.
func (r *Router) Evaluate(ctx context.Context, c Candidate) models.Verdict {
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return models.Verdict{ShouldCrawl: false, Reasoning: "non-HTTP link", Confidence: 1.0}
	}

	path := strings.ToLower(u.Path)
	for _, ext := range skipExtensions {
		if strings.HasSuffix(path, ext) {
			return models.Verdict{ShouldCrawl: false, Reasoning: "binary/media file", Confidence: 1.0}
		}
	}

	prior := crossDomainPrior
	sameDomain := u.Host == c.BaseDomain
	if sameDomain {
		prior = sameDomainPrior
	}

	oracleCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	v, err := r.oracle.EvaluateLink(oracleCtx, models.LinkQuery{
		Intent:     c.Intent,
		URL:        c.URL,
		AnchorText: c.AnchorText,
		Domain:     u.Host,
	})
	if err != nil {
		slog.Warn("oracle evaluation failed, using domain heuristic",
			"url", c.URL, "error", err)
		return models.Verdict{
			ShouldCrawl: prior > 0.5,
			Reasoning:   "heuristic fallback",
			Confidence:  prior,
		}
	}

	// Same-domain links are never scored below their prior.
	if sameDomain && v.Confidence < prior {
		v.Confidence = prior
	}

	return v
}
