package rerank

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"agent-orchestrator/internal/domain"
)

// authoritativeDomains are sources that always score full authority,
// matched exactly or as a parent of a subdomain.
var authoritativeDomains = []string{
	"wikipedia.org",
	"nature.com",
	"science.org",
	"arxiv.org",
	"ieee.org",
	"acm.org",
}

// Web reranks web search results by blending recency, source authority, and
// the provider's raw relevance signal. Items are returned sorted by combined
// score descending; ties keep their input order. An empty input is returned
// unchanged with zero elapsed time.
func Web(query string, items []domain.WebItem, recencyWeight, authorityWeight, relevanceWeight float64) ([]domain.ScoredWebItem, int64) {
	if len(items) == 0 {
		return []domain.ScoredWebItem{}, 0
	}

	start := time.Now()
	now := time.Now().UTC()

	raw := make([]float64, len(items))
	for i, item := range items {
		raw[i] = item.InitScore
	}
	relevance := normalizeSimilarities(raw)

	scored := make([]domain.ScoredWebItem, len(items))
	for i, item := range items {
		recency := recencyScore(item.Time, now)
		authority := authorityScore(item.URL)
		combined := recencyWeight*recency + authorityWeight*authority + relevanceWeight*relevance[i]
		scored[i] = domain.ScoredWebItem{
			WebItem:       item,
			CombinedScore: combined,
			ComponentScores: map[string]float64{
				"recency":   recency,
				"authority": authority,
				"relevance": relevance[i],
			},
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].CombinedScore > scored[j].CombinedScore
	})

	return scored, time.Since(start).Milliseconds()
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// recencyScore maps a publication timestamp to [0, 1]: 1.0 within 30 days,
// linear decay to 0.1 at one year, 0.1 beyond. Missing or unparsable
// timestamps score a neutral 0.5.
func recencyScore(raw string, now time.Time) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0.5
	}

	published, ok := parseTimestamp(raw)
	if !ok {
		return 0.5
	}

	days := int(now.Sub(published.UTC()).Hours() / 24)
	var score float64
	switch {
	case days <= 30:
		score = 1.0
	case days <= 365:
		score = 1.0 - float64(days-30)/365*0.9
	default:
		score = 0.1
	}
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}

func parseTimestamp(raw string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	// Tolerate a literal trailing "Z" on zoneless timestamps.
	if trimmed, ok := strings.CutSuffix(raw, "Z"); ok {
		for _, layout := range timestampLayouts[1:] {
			if t, err := time.Parse(layout, trimmed); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// authorityScore rates the URL's domain: 1.0 for the authoritative
// allowlist, then by TLD, with 0.5 for anything missing or unparseable.
func authorityScore(rawURL string) float64 {
	if rawURL == "" {
		return 0.5
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return 0.5
	}
	host := strings.ToLower(parsed.Hostname())

	for _, auth := range authoritativeDomains {
		if host == auth || strings.HasSuffix(host, "."+auth) {
			return 1.0
		}
	}
	switch {
	case strings.HasSuffix(host, ".edu") || strings.HasSuffix(host, ".gov"):
		return 0.9
	case strings.HasSuffix(host, ".org"):
		return 0.7
	case strings.HasSuffix(host, ".com") || strings.HasSuffix(host, ".net"):
		return 0.6
	default:
		return 0.5
	}
}
