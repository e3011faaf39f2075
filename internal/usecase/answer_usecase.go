package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"agent-orchestrator/internal/domain"
)

const synthesisInstruction = `You are a rigorous assistant. Answer user questions based on the provided Context.

Important Principles:
1. Fully utilize Context: if Context contains relevant information, you must use it to answer the question.
2. Parse structured data: if Context contains JSON or other structured data, extract the key information.
3. Don't easily say "insufficient information": only do so when Context contains no relevant content at all.

Answer Rules:
1. Prioritize information from Context.
2. When citing sources, use the chunk id for local evidence and the URL for web evidence.
3. All output must be valid JSON, containing "answer" (string), "sources" (array of strings), and "confidence" (number between 0 and 1).`

const insufficientEvidenceAnswer = "Sorry, the available evidence is insufficient to answer this question."

// AnswerConfig holds the knobs for answer assembly.
type AnswerConfig struct {
	LocalBudget int
	WebBudget   int
	MaxTokens   int
}

// AnswerUsecase turns a natural-language query into a FinalResponse. Answer
// never fails outward: every failure path produces a degraded response.
type AnswerUsecase interface {
	Answer(ctx context.Context, query string) domain.FinalResponse
}

type answerUsecase struct {
	router   RouterUsecase
	retrieve RetrieveEvidenceUsecase
	llm      domain.LLMClient
	cfg      AnswerConfig
	logger   *slog.Logger
}

// NewAnswerUsecase wires the routing, retrieval, aggregation, and generation
// stages into the top-level answer pipeline.
func NewAnswerUsecase(router RouterUsecase, retrieve RetrieveEvidenceUsecase, llm domain.LLMClient, cfg AnswerConfig, logger *slog.Logger) AnswerUsecase {
	return &answerUsecase{
		router:   router,
		retrieve: retrieve,
		llm:      llm,
		cfg:      cfg,
		logger:   logger,
	}
}

func (u *answerUsecase) Answer(ctx context.Context, query string) (resp domain.FinalResponse) {
	start := time.Now()
	queryID := uuid.NewString()

	decision := u.router.Route(ctx, query)
	var lat domain.LatencyBreakdown

	// The pipeline below degrades explicitly on every error path; recover is
	// the final guard so an unforeseen panic still yields a shaped response.
	defer func() {
		if r := recover(); r != nil {
			u.logger.Error("answer_panic",
				slog.String("query_id", queryID),
				slog.Any("panic", r))
			lat.Total = time.Since(start).Milliseconds()
			resp = degradedResponse(decision, lat, fmt.Sprintf("%v", r))
		}
	}()

	retrieved := u.retrieve.Execute(ctx, query, decision)
	lat.Retrieve = retrieved.Latency.Retrieve
	lat.Rerank = retrieved.Latency.Rerank

	agg := AggregateEvidence(retrieved.LocalItems, retrieved.WebItems, u.cfg.LocalBudget, u.cfg.WebBudget)

	genStart := time.Now()
	raw, err := u.llm.Chat(ctx, synthesisInstruction, buildSynthesisPrompt(query, agg.LocalBlock, agg.WebBlock), u.cfg.MaxTokens)
	lat.Generate = time.Since(genStart).Milliseconds()
	lat.Total = time.Since(start).Milliseconds()

	if err != nil {
		u.logger.Error("generation_failed",
			slog.String("query_id", queryID),
			slog.String("error", err.Error()))
		return degradedResponse(decision, lat, fmt.Sprintf("generation failed: %v", err))
	}

	parsed := parseSynthesis(raw)

	sources := make([]domain.Evidence, 0, len(agg.LocalRecords)+len(agg.WebRecords))
	for _, rec := range agg.LocalRecords {
		sources = append(sources, rec)
	}
	for _, rec := range agg.WebRecords {
		sources = append(sources, rec)
	}

	u.logger.Info("answer_completed",
		slog.String("query_id", queryID),
		slog.String("policy", string(decision.Policy)),
		slog.Int("source_count", len(sources)),
		slog.Int64("total_ms", lat.Total))

	return domain.FinalResponse{
		Answer:     parsed.Answer,
		Sources:    sources,
		Routing:    decision,
		Latency:    lat,
		Confidence: parsed.Confidence,
	}
}

func buildSynthesisPrompt(query, localBlock, webBlock string) string {
	var b strings.Builder
	b.WriteString("Question:\n")
	b.WriteString(query)
	b.WriteString("\n\nContext:\n--Local Evidence--\n")
	b.WriteString(localBlock)
	b.WriteString("\n\n--Web Evidence--\n")
	b.WriteString(webBlock)
	b.WriteString("\n\nInstructions:\n")
	b.WriteString("- If Context contains structured data, parse it and extract the key information.\n")
	b.WriteString("- Only say the information is insufficient when Context cannot answer the question at all.")
	return b.String()
}

type synthesisResult struct {
	Answer     string
	Confidence float64
}

// parseSynthesis decodes the generator's JSON output. On any parse failure
// the raw text becomes the answer with zero confidence; a reported
// confidence is clamped to [0, 1].
func parseSynthesis(raw string) synthesisResult {
	candidate := extractJSONObject(raw)

	var parsed struct {
		Answer     string   `json:"answer"`
		Sources    []string `json:"sources"`
		Confidence float64  `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		answer := strings.TrimSpace(raw)
		if answer == "" {
			answer = insufficientEvidenceAnswer
		}
		return synthesisResult{Answer: answer, Confidence: 0}
	}

	answer := strings.TrimSpace(parsed.Answer)
	if answer == "" {
		answer = insufficientEvidenceAnswer
	}
	confidence := parsed.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return synthesisResult{Answer: answer, Confidence: confidence}
}

func degradedResponse(decision domain.RoutingDecision, lat domain.LatencyBreakdown, reason string) domain.FinalResponse {
	return domain.FinalResponse{
		Answer:     fmt.Sprintf("Sorry, the request could not be processed (reason: %s). Please try again later.", reason),
		Sources:    []domain.Evidence{},
		Routing:    decision,
		Latency:    lat,
		Confidence: 0,
	}
}
