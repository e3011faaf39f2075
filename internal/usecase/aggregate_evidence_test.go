package usecase_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"agent-orchestrator/internal/domain"
	"agent-orchestrator/internal/usecase"
)

func localScored(chunkID, section, text string) domain.ScoredLocalItem {
	return domain.ScoredLocalItem{
		LocalItem: domain.LocalItem{ChunkID: chunkID, Section: section, Text: text},
	}
}

func webScored(title, url, snippet, ts string) domain.ScoredWebItem {
	return domain.ScoredWebItem{
		WebItem: domain.WebItem{Title: title, URL: url, Snippet: snippet, Time: ts},
	}
}

func TestAggregateEvidence_EmptyInputsRenderPlaceholders(t *testing.T) {
	agg := usecase.AggregateEvidence(nil, nil, 2000, 2000)

	assert.Empty(t, agg.LocalRecords)
	assert.Empty(t, agg.WebRecords)
	assert.Equal(t, "no local evidence.", agg.LocalBlock)
	assert.Equal(t, "no web evidence.", agg.WebBlock)
}

func TestAggregateEvidence_DedupeKeepsFirstOccurrence(t *testing.T) {
	locals := []domain.ScoredLocalItem{
		localScored("c1", "intro", "first version"),
		localScored("c1", "body", "second version"),
		localScored("c2", "body", "other chunk"),
	}

	agg := usecase.AggregateEvidence(locals, nil, 2000, 2000)

	assert.Len(t, agg.LocalRecords, 2)
	assert.Equal(t, "c1", agg.LocalRecords[0].ChunkID)
	assert.Equal(t, "first version", agg.LocalRecords[0].Excerpt)
	assert.Equal(t, "c2", agg.LocalRecords[1].ChunkID)
}

func TestAggregateEvidence_WebDedupeByURL(t *testing.T) {
	webs := []domain.ScoredWebItem{
		webScored("Page A", "https://example.com/a", "snippet one", "2025-01-01"),
		webScored("Page A again", "https://example.com/a", "snippet two", "2025-01-02"),
		webScored("Page B", "https://example.com/b", "snippet three", "2025-01-03"),
	}

	agg := usecase.AggregateEvidence(nil, webs, 2000, 2000)

	assert.Len(t, agg.WebRecords, 2)
	assert.Equal(t, "Page A", agg.WebRecords[0].Title)
	assert.Equal(t, "https://example.com/b", agg.WebRecords[1].URL)
}

func TestAggregateEvidence_SkipsWebItemsWithoutURL(t *testing.T) {
	webs := []domain.ScoredWebItem{
		webScored("No link", "", "snippet", "2025-01-01"),
		webScored("Linked", "https://example.com", "snippet", "2025-01-01"),
	}

	agg := usecase.AggregateEvidence(nil, webs, 2000, 2000)

	assert.Len(t, agg.WebRecords, 1)
	assert.Equal(t, "Linked", agg.WebRecords[0].Title)
}

func TestAggregateEvidence_ExcerptTruncatedAndFlattened(t *testing.T) {
	long := strings.Repeat("x", 450)
	locals := []domain.ScoredLocalItem{
		localScored("c1", "body", "line one\nline two\n"+long),
	}

	agg := usecase.AggregateEvidence(locals, nil, 5000, 2000)

	excerpt := agg.LocalRecords[0].Excerpt
	assert.NotContains(t, excerpt, "\n")
	assert.Len(t, []rune(excerpt), 400)
}

func TestAggregateEvidence_DefaultsForMissingFields(t *testing.T) {
	locals := []domain.ScoredLocalItem{localScored("c1", "", "text")}
	webs := []domain.ScoredWebItem{webScored("", "https://example.com", "snippet", "")}

	agg := usecase.AggregateEvidence(locals, webs, 2000, 2000)

	assert.Equal(t, "unknown section", agg.LocalRecords[0].Section)
	assert.Equal(t, "untitled page", agg.WebRecords[0].Title)
	assert.NotEmpty(t, agg.WebRecords[0].Time)
}

func TestAggregateEvidence_BudgetCheckedBeforeAppend(t *testing.T) {
	locals := []domain.ScoredLocalItem{
		localScored("c1", "body", strings.Repeat("a", 100)),
		localScored("c2", "body", strings.Repeat("b", 100)),
		localScored("c3", "body", strings.Repeat("c", 100)),
	}

	// 150 admits c1 (budget still positive), then c2 (checked at remaining
	// 50), and stops before c3.
	agg := usecase.AggregateEvidence(locals, nil, 150, 2000)

	chunkIDs := make([]string, 0, len(agg.LocalRecords))
	for _, r := range agg.LocalRecords {
		chunkIDs = append(chunkIDs, r.ChunkID)
	}
	assert.NotContains(t, chunkIDs, "c3")
	assert.Contains(t, chunkIDs, "c1")
}

func TestAggregateEvidence_BudgetMonotonicity(t *testing.T) {
	locals := make([]domain.ScoredLocalItem, 0, 10)
	for i := 0; i < 10; i++ {
		locals = append(locals, localScored(
			string(rune('a'+i)), "body", strings.Repeat("x", 120)))
	}

	prev := -1
	for _, budget := range []int{100, 300, 600, 1200, 5000} {
		agg := usecase.AggregateEvidence(locals, nil, budget, 2000)
		assert.GreaterOrEqual(t, len(agg.LocalRecords), prev,
			"a larger budget must never yield fewer records")
		prev = len(agg.LocalRecords)
	}
}

func TestAggregateEvidence_RecordsMatchRenderedLines(t *testing.T) {
	locals := []domain.ScoredLocalItem{
		localScored("c1", "intro", strings.Repeat("a", 200)),
		localScored("c2", "body", strings.Repeat("b", 200)),
		localScored("c3", "end", strings.Repeat("c", 200)),
	}

	for _, budget := range []int{100, 250, 500, 5000} {
		agg := usecase.AggregateEvidence(locals, nil, budget, 2000)
		if len(agg.LocalRecords) == 0 {
			// Nothing fit the rendering budget.
			assert.Empty(t, agg.LocalBlock)
			continue
		}
		lines := strings.Split(agg.LocalBlock, "\n")
		assert.Len(t, agg.LocalRecords, len(lines))
	}
}

func TestAggregateEvidence_BlockLineFormat(t *testing.T) {
	locals := []domain.ScoredLocalItem{localScored("c1", "intro", "local text")}
	webs := []domain.ScoredWebItem{webScored("Title", "https://example.com", "web text", "2025-01-01")}

	agg := usecase.AggregateEvidence(locals, webs, 2000, 2000)

	assert.Equal(t, "[c1] intro: local text", agg.LocalBlock)
	assert.Equal(t, "[2025-01-01] Title (https://example.com): web text", agg.WebBlock)
}
