package usecase

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"agent-orchestrator/internal/domain"
)

const (
	maxExcerptChars = 400

	noLocalEvidence = "no local evidence."
	noWebEvidence   = "no web evidence."

	unknownSection = "unknown section"
	untitledPage   = "untitled page"
)

// AggregateResult pairs the citable records per source with the rendered
// context block handed to generation. Records and block stay in lock-step:
// every record has a line in the block and vice versa.
type AggregateResult struct {
	LocalRecords []domain.LocalEvidence
	WebRecords   []domain.WebEvidence
	LocalBlock   string
	WebBlock     string
}

// AggregateEvidence deduplicates the scored items per source, truncates
// excerpts, applies the character budgets, and renders one context block per
// source. Budgets are checked before appending, so the last admitted record
// may overshoot by its own size.
func AggregateEvidence(locals []domain.ScoredLocalItem, webs []domain.ScoredWebItem, localBudget, webBudget int) AggregateResult {
	localRecords := normalizeLocal(locals, localBudget)
	webRecords := normalizeWeb(webs, webBudget)

	localBlock, localRendered := renderBlock(len(localRecords), localBudget, noLocalEvidence, func(i int) string {
		r := localRecords[i]
		return fmt.Sprintf("[%s] %s: %s", r.ChunkID, r.Section, r.Excerpt)
	})
	webBlock, webRendered := renderBlock(len(webRecords), webBudget, noWebEvidence, func(i int) string {
		r := webRecords[i]
		return fmt.Sprintf("[%s] %s (%s): %s", r.Time, r.Title, r.URL, r.Snippet)
	})

	// Keep sources and rendered context in lock-step: drop records whose
	// line did not fit the rendering budget.
	localRecords = localRecords[:localRendered]
	webRecords = webRecords[:webRendered]

	return AggregateResult{
		LocalRecords: localRecords,
		WebRecords:   webRecords,
		LocalBlock:   localBlock,
		WebBlock:     webBlock,
	}
}

func normalizeLocal(items []domain.ScoredLocalItem, budget int) []domain.LocalEvidence {
	seen := make(map[string]struct{}, len(items))
	records := make([]domain.LocalEvidence, 0, len(items))

	for _, item := range items {
		if _, ok := seen[item.ChunkID]; ok {
			continue
		}
		if budget <= 0 {
			break
		}
		excerpt := trimExcerpt(item.Text)
		section := item.Section
		if section == "" {
			section = unknownSection
		}
		records = append(records, domain.LocalEvidence{
			Type:    "local",
			ChunkID: item.ChunkID,
			Section: section,
			Excerpt: excerpt,
		})
		seen[item.ChunkID] = struct{}{}
		budget -= utf8.RuneCountInString(excerpt)
	}
	return records
}

func normalizeWeb(items []domain.ScoredWebItem, budget int) []domain.WebEvidence {
	seen := make(map[string]struct{}, len(items))
	records := make([]domain.WebEvidence, 0, len(items))

	for _, item := range items {
		if item.URL == "" {
			continue
		}
		if _, ok := seen[item.URL]; ok {
			continue
		}
		if budget <= 0 {
			break
		}
		snippet := trimExcerpt(item.Snippet)
		title := item.Title
		if title == "" {
			title = untitledPage
		}
		timestamp := item.Time
		if timestamp == "" {
			timestamp = time.Now().UTC().Format(time.RFC3339)
		}
		records = append(records, domain.WebEvidence{
			Type:    "web",
			Title:   title,
			URL:     item.URL,
			Time:    timestamp,
			Snippet: snippet,
		})
		seen[item.URL] = struct{}{}
		budget -= utf8.RuneCountInString(snippet)
	}
	return records
}

// renderBlock concatenates one line per record under its own budget,
// stopping before a line that would exceed it. Returns the block and how
// many records were rendered.
func renderBlock(count, budget int, placeholder string, line func(i int) string) (string, int) {
	if count == 0 {
		return placeholder, 0
	}

	var lines []string
	remaining := budget
	for i := 0; i < count; i++ {
		l := line(i)
		if remaining-utf8.RuneCountInString(l) <= 0 {
			break
		}
		lines = append(lines, l)
		remaining -= utf8.RuneCountInString(l)
	}
	return strings.Join(lines, "\n"), len(lines)
}

// trimExcerpt collapses newlines to spaces and truncates to the excerpt
// character cap.
func trimExcerpt(text string) string {
	cleaned := strings.ReplaceAll(strings.TrimSpace(text), "\n", " ")
	runes := []rune(cleaned)
	if len(runes) <= maxExcerptChars {
		return cleaned
	}
	return string(runes[:maxExcerptChars])
}
