package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"agent-orchestrator/internal/domain"
	"agent-orchestrator/internal/infra/cache"
)

const routerInstruction = `You are an intent classifier that routes user questions to the correct knowledge source.
You MUST output a strict JSON object with fields:
- "policy": one of ["local", "web", "hybrid"]
- "rationale": a short explanation

Definitions:
1. "local": The question refers to fictional entities or domain-specific concepts stored in the local knowledge base.
   Examples: Sereleia, Xylos, Elara Vance, Vance Protocol, etc.
2. "web": The question requires real-world, time-sensitive, factual, or up-to-date information.
   Examples: news, AI updates, weather, stock prices, traffic, today's events.
3. "hybrid": The question mixes fictional/local knowledge with real-world/timely information.
   Example: "Explain the Vance Protocol and give the latest real-world impact."
   Also use "hybrid" when the question could benefit from both sources.

Your job: Infer the correct policy from the semantics of the question.
Respond with JSON only. No commentary.`

// Keyword rules are checked before any model call. Exactly one set hitting
// decides the policy outright.
var (
	localKeywords = []string{
		"sereleia",
		"xylos",
		"elara vance",
		"vance protocol",
		"aether core",
		"lys harbor",
		"dr. elara",
		"sereleian",
	}
	webKeywords = []string{
		"today",
		"latest",
		"price",
		"prices",
		"weather",
		"traffic",
		"now",
		"breaking",
		"2024",
		"2025",
		"trend",
		"news",
		"stock",
	}
)

const classifierMaxTokens = 200

// RouterUsecase classifies a query into a retrieval policy. Route never
// fails outward and never returns a policy outside the enumerated set.
type RouterUsecase interface {
	Route(ctx context.Context, query string) domain.RoutingDecision
}

type routerUsecase struct {
	llm       domain.LLMClient
	decisions *cache.Cache[domain.RoutingDecision]
	ttl       time.Duration
	group     singleflight.Group
	logger    *slog.Logger
}

// NewRouterUsecase builds a router backed by keyword rules, a decision
// cache, and a model classifier for ambiguous queries.
func NewRouterUsecase(llm domain.LLMClient, decisions *cache.Cache[domain.RoutingDecision], ttl time.Duration, logger *slog.Logger) RouterUsecase {
	return &routerUsecase{
		llm:       llm,
		decisions: decisions,
		ttl:       ttl,
		logger:    logger,
	}
}

func (r *routerUsecase) Route(ctx context.Context, query string) domain.RoutingDecision {
	normalized := strings.ToLower(query)

	localHit := matchKeyword(normalized, localKeywords)
	webHit := matchKeyword(normalized, webKeywords)

	switch {
	case localHit != "" && webHit != "":
		// Both sets hit: ambiguous, needs semantic judgment below.
	case localHit != "":
		return domain.RoutingDecision{
			Policy:    domain.PolicyLocal,
			Rationale: fmt.Sprintf("matched local keyword %q, classifier skipped", localHit),
		}
	case webHit != "":
		return domain.RoutingDecision{
			Policy:    domain.PolicyWeb,
			Rationale: fmt.Sprintf("matched time-sensitive keyword %q, classifier skipped", webHit),
		}
	}

	key := cache.Key("router.route", normalized)
	if decision, ok := r.decisions.Get(key); ok {
		return decision
	}

	// Concurrent routes for the same normalized query share one classifier
	// call.
	v, _, _ := r.group.Do(key, func() (interface{}, error) {
		return r.classify(ctx, query, key), nil
	})
	return v.(domain.RoutingDecision)
}

func (r *routerUsecase) classify(ctx context.Context, query, cacheKey string) domain.RoutingDecision {
	raw, err := r.llm.Chat(ctx, routerInstruction, fmt.Sprintf("Question: %q", query), classifierMaxTokens)
	if err != nil {
		r.logger.Warn("router_classifier_unreachable", slog.String("error", err.Error()))
		return fallbackDecision(fmt.Sprintf("classifier unreachable (%v), falling back to hybrid", err))
	}

	decision, err := parseRoutingDecision(raw)
	if err != nil {
		r.logger.Warn("router_classifier_output_rejected",
			slog.String("error", err.Error()),
			slog.String("content", truncateForLog(raw, 200)))
		return fallbackDecision(fmt.Sprintf("%v, falling back to hybrid", err))
	}

	r.decisions.Set(cacheKey, decision, r.ttl)
	r.logger.Info("router_classifier_decision", slog.String("policy", string(decision.Policy)))
	return decision
}

// parseRoutingDecision locates the first brace-delimited JSON object in the
// raw model output and validates the decoded policy.
func parseRoutingDecision(raw string) (domain.RoutingDecision, error) {
	candidate := extractJSONObject(raw)

	var parsed struct {
		Policy    string `json:"policy"`
		Rationale string `json:"rationale"`
	}
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		return domain.RoutingDecision{}, fmt.Errorf("malformed classifier JSON")
	}

	policy := domain.Policy(strings.ToLower(parsed.Policy))
	if !policy.Valid() {
		return domain.RoutingDecision{}, fmt.Errorf("invalid policy value %q", parsed.Policy)
	}

	rationale := parsed.Rationale
	if rationale == "" {
		rationale = "classifier provided no rationale"
	}
	return domain.RoutingDecision{Policy: policy, Rationale: rationale}, nil
}

// extractJSONObject returns the substring from the first '{' to the last '}'
// to strip any surrounding model commentary. Falls back to the whole text.
func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return raw
	}
	return raw[start : end+1]
}

func fallbackDecision(reason string) domain.RoutingDecision {
	return domain.RoutingDecision{Policy: domain.PolicyHybrid, Rationale: reason}
}

func matchKeyword(text string, keywords []string) string {
	for _, word := range keywords {
		if strings.Contains(text, word) {
			return word
		}
	}
	return ""
}

func truncateForLog(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
