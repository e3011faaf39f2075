package usecase

import (
	"context"
	"log/slog"
	"sync"

	"agent-orchestrator/internal/domain"
	"agent-orchestrator/internal/usecase/rerank"
)

// RetrievalConfig holds the knobs for the retrieval and rerank stages.
type RetrievalConfig struct {
	TopK            int
	RerankEnabled   bool
	VectorWeight    float64
	LexicalWeight   float64
	RecencyWeight   float64
	AuthorityWeight float64
	RelevanceWeight float64
}

// RetrieveEvidenceOutput carries the per-source scored items plus the
// retrieve/rerank latency summed across whichever branches ran.
type RetrieveEvidenceOutput struct {
	LocalItems []domain.ScoredLocalItem
	WebItems   []domain.ScoredWebItem
	Latency    domain.LatencyBreakdown
}

// RetrieveEvidenceUsecase executes the retrieval plan a routing decision
// prescribes. Execute never fails outward: a failed branch contributes an
// empty result and the other branch proceeds untouched.
type RetrieveEvidenceUsecase interface {
	Execute(ctx context.Context, query string, decision domain.RoutingDecision) *RetrieveEvidenceOutput
}

type retrieveEvidenceUsecase struct {
	local  domain.LocalSearcher
	web    domain.WebSearcher
	cfg    RetrievalConfig
	logger *slog.Logger
}

// NewRetrieveEvidenceUsecase creates a RetrieveEvidenceUsecase.
func NewRetrieveEvidenceUsecase(local domain.LocalSearcher, web domain.WebSearcher, cfg RetrievalConfig, logger *slog.Logger) RetrieveEvidenceUsecase {
	return &retrieveEvidenceUsecase{local: local, web: web, cfg: cfg, logger: logger}
}

type branchLatency struct {
	retrieve int64
	rerank   int64
}

type branchResult struct {
	source string
	locals []domain.ScoredLocalItem
	webs   []domain.ScoredWebItem
	lat    branchLatency
	err    error
}

func (u *retrieveEvidenceUsecase) Execute(ctx context.Context, query string, decision domain.RoutingDecision) *RetrieveEvidenceOutput {
	out := &RetrieveEvidenceOutput{
		LocalItems: []domain.ScoredLocalItem{},
		WebItems:   []domain.ScoredWebItem{},
	}

	switch decision.Policy {
	case domain.PolicyLocal:
		u.collect(out, u.runLocal(ctx, query))
		return out
	case domain.PolicyWeb:
		u.collect(out, u.runWeb(ctx, query))
		return out
	case domain.PolicyHybrid:
		// handled below
	default:
		// The router guarantees a valid policy; treat anything else as
		// hybrid rather than dropping the query.
		u.logger.Warn("unknown_policy_running_hybrid", slog.String("policy", string(decision.Policy)))
	}

	results := make(chan branchResult, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		results <- u.runLocal(ctx, query)
	}()
	go func() {
		defer wg.Done()
		results <- u.runWeb(ctx, query)
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		u.collect(out, res)
	}
	return out
}

// collect folds one branch outcome into the output. A branch error is logged
// and leaves that source empty.
func (u *retrieveEvidenceUsecase) collect(out *RetrieveEvidenceOutput, res branchResult) {
	if res.err != nil {
		u.logger.Error("retrieval_branch_failed",
			slog.String("source", res.source),
			slog.String("error", res.err.Error()))
		return
	}
	out.LocalItems = append(out.LocalItems, res.locals...)
	out.WebItems = append(out.WebItems, res.webs...)
	out.Latency.Retrieve += res.lat.retrieve
	out.Latency.Rerank += res.lat.rerank
}

func (u *retrieveEvidenceUsecase) runLocal(ctx context.Context, query string) branchResult {
	res := branchResult{source: "local"}

	items, retrieveMs, err := u.local.Search(ctx, query, u.cfg.TopK)
	if err != nil {
		res.err = err
		return res
	}
	res.lat.retrieve = retrieveMs

	if u.cfg.RerankEnabled {
		res.locals, res.lat.rerank = rerank.Local(query, items, u.cfg.VectorWeight, u.cfg.LexicalWeight)
	} else {
		res.locals = passthroughLocal(items)
	}
	return res
}

func (u *retrieveEvidenceUsecase) runWeb(ctx context.Context, query string) branchResult {
	res := branchResult{source: "web"}

	items, retrieveMs, err := u.web.Search(ctx, query, u.cfg.TopK)
	if err != nil {
		res.err = err
		return res
	}
	res.lat.retrieve = retrieveMs

	if u.cfg.RerankEnabled {
		res.webs, res.lat.rerank = rerank.Web(query, items, u.cfg.RecencyWeight, u.cfg.AuthorityWeight, u.cfg.RelevanceWeight)
	} else {
		res.webs = passthroughWeb(items)
	}
	return res
}

// passthroughLocal keeps retrieval order when reranking is disabled.
func passthroughLocal(items []domain.LocalItem) []domain.ScoredLocalItem {
	scored := make([]domain.ScoredLocalItem, len(items))
	for i, item := range items {
		scored[i] = domain.ScoredLocalItem{LocalItem: item, CombinedScore: item.InitScore}
	}
	return scored
}

func passthroughWeb(items []domain.WebItem) []domain.ScoredWebItem {
	scored := make([]domain.ScoredWebItem, len(items))
	for i, item := range items {
		scored[i] = domain.ScoredWebItem{WebItem: item, CombinedScore: item.InitScore}
	}
	return scored
}
