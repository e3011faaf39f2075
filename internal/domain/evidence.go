package domain

// LocalItem is a raw passage returned by the local searcher before reranking.
type LocalItem struct {
	ChunkID   string
	Section   string
	Text      string
	InitScore float64
}

// WebItem is a raw web search result before reranking.
type WebItem struct {
	Title     string
	URL       string
	Snippet   string
	Time      string // publication time, ISO-8601 when known
	InitScore float64
}

// ScoredLocalItem carries a local item together with its blended rerank score
// and the individual signal scores that produced it.
type ScoredLocalItem struct {
	LocalItem
	CombinedScore   float64
	ComponentScores map[string]float64
}

// ScoredWebItem carries a web item together with its blended rerank score and
// the individual signal scores that produced it.
type ScoredWebItem struct {
	WebItem
	CombinedScore   float64
	ComponentScores map[string]float64
}

// Evidence is a retrieved, scored, budget-truncated unit of text with
// provenance, eligible to be cited in the final answer.
type Evidence interface {
	SourceType() string
}

// LocalEvidence is a citable record from the document corpus.
type LocalEvidence struct {
	Type    string `json:"type"`
	ChunkID string `json:"chunk_id"`
	Section string `json:"section"`
	Excerpt string `json:"excerpt"`
}

func (LocalEvidence) SourceType() string { return "local" }

// WebEvidence is a citable record from web search.
type WebEvidence struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Time    string `json:"time"`
	Snippet string `json:"snippet"`
}

func (WebEvidence) SourceType() string { return "web" }

// LatencyBreakdown records per-stage elapsed time in milliseconds.
// Retrieve and Rerank are sums across whichever branches ran.
type LatencyBreakdown struct {
	Retrieve int64 `json:"retrieve"`
	Rerank   int64 `json:"rerank"`
	Generate int64 `json:"generate"`
	Total    int64 `json:"total"`
}

// FinalResponse is the fully assembled answer payload.
type FinalResponse struct {
	Answer     string           `json:"answer"`
	Sources    []Evidence       `json:"sources"`
	Routing    RoutingDecision  `json:"routing"`
	Latency    LatencyBreakdown `json:"latency_ms"`
	Confidence float64          `json:"confidence"`
}
