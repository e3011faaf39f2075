package rerank_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"agent-orchestrator/internal/domain"
	"agent-orchestrator/internal/usecase/rerank"
)

func TestLocal_EmptyInput(t *testing.T) {
	scored, elapsed := rerank.Local("any query", nil, 0.6, 0.4)

	assert.Empty(t, scored)
	assert.NotNil(t, scored)
	assert.Equal(t, int64(0), elapsed)
}

func TestLocal_SortedDescending(t *testing.T) {
	items := []domain.LocalItem{
		{ChunkID: "a", Text: "nothing relevant here at all", InitScore: 0.9},
		{ChunkID: "b", Text: "sereleia floating gardens history", InitScore: 0.1},
		{ChunkID: "c", Text: "partially about sereleia", InitScore: 0.5},
	}

	scored, _ := rerank.Local("sereleia gardens", items, 0.6, 0.4)

	assert.Len(t, scored, 3)
	for i := 1; i < len(scored); i++ {
		assert.GreaterOrEqual(t, scored[i-1].CombinedScore, scored[i].CombinedScore)
	}
	// Smallest distance plus best lexical match must win.
	assert.Equal(t, "b", scored[0].ChunkID)
}

func TestLocal_EqualDistancesNormalizeToOne(t *testing.T) {
	items := []domain.LocalItem{
		{ChunkID: "a", Text: "first passage text", InitScore: 0.3},
		{ChunkID: "b", Text: "second passage text", InitScore: 0.3},
	}

	scored, _ := rerank.Local("unrelated query", items, 1.0, 0.0)

	for _, s := range scored {
		assert.InDelta(t, 1.0, s.ComponentScores["vector"], 1e-9)
		assert.InDelta(t, 1.0, s.CombinedScore, 1e-9)
	}
}

func TestLocal_NoLexicalOverlapScoresZeroLexical(t *testing.T) {
	items := []domain.LocalItem{
		{ChunkID: "a", Text: "completely different topic", InitScore: 0.2},
	}

	scored, _ := rerank.Local("sereleia gardens", items, 0.6, 0.4)

	assert.InDelta(t, 0.0, scored[0].ComponentScores["lexical"], 1e-9)
}

func TestLocal_BestLexicalMatchScoresOne(t *testing.T) {
	items := []domain.LocalItem{
		{ChunkID: "a", Text: "sereleia sereleia gardens", InitScore: 0.5},
		{ChunkID: "b", Text: "unrelated content entirely", InitScore: 0.5},
	}

	scored, _ := rerank.Local("sereleia", items, 0.0, 1.0)

	assert.Equal(t, "a", scored[0].ChunkID)
	assert.InDelta(t, 1.0, scored[0].ComponentScores["lexical"], 1e-9)
	assert.InDelta(t, 0.0, scored[1].ComponentScores["lexical"], 1e-9)
}

func TestLocal_TiesKeepInputOrder(t *testing.T) {
	items := []domain.LocalItem{
		{ChunkID: "first", Text: "same text", InitScore: 0.4},
		{ChunkID: "second", Text: "same text", InitScore: 0.4},
		{ChunkID: "third", Text: "same text", InitScore: 0.4},
	}

	scored, _ := rerank.Local("query words", items, 0.6, 0.4)

	assert.Equal(t, "first", scored[0].ChunkID)
	assert.Equal(t, "second", scored[1].ChunkID)
	assert.Equal(t, "third", scored[2].ChunkID)
}

func TestLocal_ComponentScoresRecorded(t *testing.T) {
	items := []domain.LocalItem{
		{ChunkID: "a", Text: "sereleia history", InitScore: 0.1},
	}

	scored, _ := rerank.Local("sereleia", items, 0.6, 0.4)

	assert.Contains(t, scored[0].ComponentScores, "vector")
	assert.Contains(t, scored[0].ComponentScores, "lexical")
	expected := 0.6*scored[0].ComponentScores["vector"] + 0.4*scored[0].ComponentScores["lexical"]
	assert.InDelta(t, expected, scored[0].CombinedScore, 1e-9)
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"lowercases and splits", "Sereleia Gardens", []string{"sereleia", "gardens"}},
		{"strips punctuation", "what's the vance-protocol?", []string{"what", "the", "vance", "protocol"}},
		{"drops single-rune tokens", "a b cd", []string{"cd"}},
		{"keeps digits and underscores", "report_2024 v2", []string{"report_2024", "v2"}},
		{"empty input", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rerank.Tokenize(tt.in))
		})
	}
}
