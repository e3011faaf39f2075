package rerank

import (
	"sort"
	"time"
	"unicode"
	"unicode/utf8"

	"agent-orchestrator/internal/domain"
)

// BM25 parameters, tuned once and not exposed.
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// Local reranks locally retrieved passages by blending a BM25-style lexical
// score against the query with the vector similarity reported by retrieval.
// Items are returned sorted by combined score descending; ties keep their
// input order. An empty input is returned unchanged with zero elapsed time.
func Local(query string, items []domain.LocalItem, vectorWeight, lexicalWeight float64) ([]domain.ScoredLocalItem, int64) {
	if len(items) == 0 {
		return []domain.ScoredLocalItem{}, 0
	}

	start := time.Now()

	lexical := bm25Scores(query, items)
	vector := normalizeSimilarities(initScores(items))

	scored := make([]domain.ScoredLocalItem, len(items))
	for i, item := range items {
		combined := vectorWeight*vector[i] + lexicalWeight*lexical[i]
		scored[i] = domain.ScoredLocalItem{
			LocalItem:     item,
			CombinedScore: combined,
			ComponentScores: map[string]float64{
				"vector":  vector[i],
				"lexical": lexical[i],
			},
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].CombinedScore > scored[j].CombinedScore
	})

	return scored, time.Since(start).Milliseconds()
}

func initScores(items []domain.LocalItem) []float64 {
	scores := make([]float64, len(items))
	for i, item := range items {
		scores[i] = item.InitScore
	}
	return scores
}

// bm25Scores computes a BM25 score for every item against the tokenized
// query, using the batch mean document length for normalization, then
// divides by the batch maximum so scores land in [0, 1].
func bm25Scores(query string, items []domain.LocalItem) []float64 {
	queryTerms := Tokenize(query)
	scores := make([]float64, len(items))
	if len(queryTerms) == 0 {
		return scores
	}

	// Document frequency per query term over the batch.
	docFreqs := make(map[string]int, len(queryTerms))
	for _, item := range items {
		seen := make(map[string]struct{})
		for _, term := range Tokenize(item.Text) {
			seen[term] = struct{}{}
		}
		for _, term := range queryTerms {
			if _, ok := seen[term]; ok {
				docFreqs[term]++
			}
		}
	}

	var totalLen float64
	for _, item := range items {
		totalLen += float64(utf8.RuneCountInString(item.Text))
	}
	avgDocLen := totalLen / float64(len(items))
	if avgDocLen < 1 {
		avgDocLen = 1
	}

	n := float64(len(items))
	for i, item := range items {
		docTerms := Tokenize(item.Text)
		termFreqs := make(map[string]int, len(docTerms))
		for _, term := range docTerms {
			termFreqs[term]++
		}
		docLen := float64(utf8.RuneCountInString(item.Text))

		var score float64
		for _, term := range queryTerms {
			tf := float64(termFreqs[term])
			if tf == 0 {
				continue
			}
			df := float64(docFreqs[term])
			if df == 0 {
				df = 1
			}
			idf := (n - df + 0.5) / (df + 0.5)
			if idf < 0 {
				idf = 0
			}
			score += idf * (tf * (bm25K1 + 1)) / (tf + bm25K1*(1-bm25B+bm25B*(docLen/avgDocLen)))
		}
		scores[i] = score
	}

	var maxScore float64
	for _, s := range scores {
		if s > maxScore {
			maxScore = s
		}
	}
	if maxScore <= 0 {
		return make([]float64, len(items))
	}
	for i := range scores {
		scores[i] /= maxScore
	}
	return scores
}

// normalizeSimilarities converts raw similarity-search distances into
// similarities via 1/(1+|d|) and min-max-normalizes them to [0, 1]. When all
// values are equal, every normalized value is 1.0.
func normalizeSimilarities(raw []float64) []float64 {
	if len(raw) == 0 {
		return nil
	}

	sims := make([]float64, len(raw))
	for i, d := range raw {
		if d < 0 {
			d = -d
		}
		sims[i] = 1.0 / (1.0 + d)
	}

	minSim, maxSim := sims[0], sims[0]
	for _, s := range sims[1:] {
		if s < minSim {
			minSim = s
		}
		if s > maxSim {
			maxSim = s
		}
	}
	if maxSim == minSim {
		for i := range sims {
			sims[i] = 1.0
		}
		return sims
	}
	for i := range sims {
		sims[i] = (sims[i] - minSim) / (maxSim - minSim)
	}
	return sims
}

// Tokenize lower-cases text, maps non-word runes to spaces, splits on
// whitespace, and drops tokens of length <= 1.
func Tokenize(text string) []string {
	mapped := make([]rune, 0, len(text))
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			mapped = append(mapped, unicode.ToLower(r))
		default:
			mapped = append(mapped, ' ')
		}
	}

	var tokens []string
	var current []rune
	flush := func() {
		if len(current) > 1 {
			tokens = append(tokens, string(current))
		}
		current = current[:0]
	}
	for _, r := range mapped {
		if r == ' ' {
			flush()
			continue
		}
		current = append(current, r)
	}
	flush()
	return tokens
}
