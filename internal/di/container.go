package di

import (
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"agent-orchestrator/internal/adapter/agent_http"
	"agent-orchestrator/internal/adapter/llmapi"
	"agent-orchestrator/internal/adapter/localsearch"
	"agent-orchestrator/internal/adapter/websearch"
	"agent-orchestrator/internal/domain"
	"agent-orchestrator/internal/infra/cache"
	"agent-orchestrator/internal/infra/config"
	"agent-orchestrator/internal/infra/httpclient"
	"agent-orchestrator/internal/usecase"
)

// ApplicationComponents holds all wired dependencies for the application.
type ApplicationComponents struct {
	// Usecases
	RouterUsecase   usecase.RouterUsecase
	RetrieveUsecase usecase.RetrieveEvidenceUsecase
	AnswerUsecase   usecase.AnswerUsecase

	// Adapters exposed for handler wiring
	Handler *agent_http.Handler
	LLM     domain.LLMClient
	Encoder domain.VectorEncoder
}

// NewApplicationComponents wires all dependencies from config and database pool.
func NewApplicationComponents(cfg *config.Config, pool *pgxpool.Pool, log *slog.Logger) *ApplicationComponents {
	// Shared HTTP clients with connection pooling
	llmHTTP := httpclient.NewPooledClient(time.Duration(cfg.LLM.Timeout) * time.Second)
	embedderHTTP := httpclient.NewPooledClient(time.Duration(cfg.Embedder.Timeout) * time.Second)
	webHTTP := httpclient.NewPooledClient(time.Duration(cfg.WebSearch.Timeout) * time.Second)

	cacheTTL := time.Duration(cfg.Cache.TTLSeconds) * time.Second

	// External clients
	llm := llmapi.NewChatClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Temperature, llmHTTP, log)
	encoder := llmapi.NewOllamaEmbedder(cfg.Embedder.URL, cfg.Embedder.Model, embedderHTTP)
	webSearcher := websearch.NewClient(cfg.WebSearch.BaseURL, cfg.WebSearch.APIKey, webHTTP, cfg.WebSearch.RPS, cacheTTL, log)
	localSearcher := localsearch.NewPgvectorSearcher(pool, encoder)

	// Usecases
	routerUsecase := usecase.NewRouterUsecase(llm, cache.New[domain.RoutingDecision](), cacheTTL, log)
	retrieveUsecase := usecase.NewRetrieveEvidenceUsecase(localSearcher, webSearcher, usecase.RetrievalConfig{
		TopK:            cfg.Retrieval.TopK,
		RerankEnabled:   cfg.Rerank.Enabled,
		VectorWeight:    cfg.Rerank.VectorWeight,
		LexicalWeight:   cfg.Rerank.LexicalWeight,
		RecencyWeight:   cfg.Rerank.RecencyWeight,
		AuthorityWeight: cfg.Rerank.AuthorityWeight,
		RelevanceWeight: cfg.Rerank.RelevanceWeight,
	}, log)
	answerUsecase := usecase.NewAnswerUsecase(routerUsecase, retrieveUsecase, llm, usecase.AnswerConfig{
		LocalBudget: cfg.Retrieval.LocalBudget,
		WebBudget:   cfg.Retrieval.WebBudget,
		MaxTokens:   cfg.LLM.MaxTokens,
	}, log)

	handler := agent_http.NewHandler(answerUsecase, routerUsecase, log)

	return &ApplicationComponents{
		RouterUsecase:   routerUsecase,
		RetrieveUsecase: retrieveUsecase,
		AnswerUsecase:   answerUsecase,
		Handler:         handler,
		LLM:             llm,
		Encoder:         encoder,
	}
}
