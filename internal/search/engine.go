package search

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/pders01/wikinsight/internal/storage"
)

// Engine scores every visit in the store. No index is kept.
type Engine struct {
	store *storage.Store
	now   func() time.Time
}

func NewEngine(store *storage.Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

func (e *Engine) Search(query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return []*Result{}, nil
	}

	terms := tokenize(query)
	if len(terms) == 0 {
		return []*Result{}, nil
	}

	visits, err := e.store.RecentVisits(0)
	if err != nil {
		return nil, err
	}

	var results []*Result
	for _, visit := range visits {
		if result := e.searchVisit(visit, terms); result != nil {
			results = append(results, result)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

func (e *Engine) searchVisit(visit *storage.Visit, terms []string) *Result {
	var matches []Match
	var totalScore float64

	if titleScore := scoreField(visit.Title, terms, 4.0); titleScore > 0 {
		matches = append(matches, Match{
			Field:  "title",
			Text:   visit.Title,
			Weight: titleScore,
		})
		totalScore += titleScore
	}

	if tldrScore := scoreField(visit.TLDR, terms, 2.0); tldrScore > 0 {
		matches = append(matches, Match{
			Field:  "tldr",
			Text:   truncate(visit.TLDR, 150),
			Weight: tldrScore,
		})
		totalScore += tldrScore
	}

	if excerptScore := scoreField(visit.Excerpt, terms, 1.0); excerptScore > 0 {
		matches = append(matches, Match{
			Field:  "excerpt",
			Text:   findBestSnippet(visit.Excerpt, terms, 200),
			Weight: excerptScore,
		})
		totalScore += excerptScore
	}

	if totalScore == 0 {
		return nil
	}

	totalScore *= 1.0 + recencyBoost(visit.LastVisited, e.now())
	return &Result{
		Visit:   visit,
		Score:   totalScore,
		Matches: matches,
	}
}

// scoreField calculates relevance score for a field
func scoreField(text string, terms []string, weight float64) float64 {
	if text == "" {
		return 0
	}

	lower := strings.ToLower(text)
	words := tokenize(text)
	if len(words) == 0 {
		return 0
	}

	var score float64
	matchedTerms := 0

	for _, term := range terms {
		// Substring anywhere.
		if strings.Contains(lower, term) {
			score += 2.0
			matchedTerms++
		}

		for _, word := range words {
			switch {
			case word == term:
				score += 1.5
				matchedTerms++
			case strings.HasPrefix(word, term) || strings.HasSuffix(word, term):
				score += 1.0
				matchedTerms++
			case strings.Contains(word, term):
				score += 0.5
				matchedTerms++
			}
		}
	}

	if len(terms) > 1 && matchedTerms > 1 {
		score *= 1.0 + float64(matchedTerms)/float64(len(terms))
	}

	tf := float64(matchedTerms) / float64(len(words))
	score *= 1.0 + math.Log(1.0+tf)

	return score * weight
}

// findBestSnippet returns the window of words with the most term hits.
func findBestSnippet(text string, terms []string, maxLength int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	windowSize := maxLength / 8
	if windowSize < 1 || windowSize >= len(words) {
		return truncate(text, maxLength)
	}

	bestScore := 0
	bestStart := 0
	for i := 0; i <= len(words)-windowSize; i++ {
		window := strings.ToLower(strings.Join(words[i:i+windowSize], " "))
		score := 0
		for _, term := range terms {
			if strings.Contains(window, term) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestStart = i
		}
	}

	return truncate(strings.Join(words[bestStart:bestStart+windowSize], " "), maxLength)
}

// tokenize lowercases text and splits it on anything that is not a letter
// or digit. Single characters are dropped.
func tokenize(text string) []string {
	var terms []string
	var current strings.Builder

	flush := func() {
		if utf8Len(current.String()) > 1 {
			terms = append(terms, current.String())
		}
		current.Reset()
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else if current.Len() > 0 {
			flush()
		}
	}
	flush()

	return terms
}

func utf8Len(s string) int {
	return len([]rune(s))
}

// truncate limits text to maxLen runes, ending with an ellipsis.
func truncate(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

// recencyBoost gives up to 10% to visits from the last week.
func recencyBoost(visited, now time.Time) float64 {
	if visited.IsZero() {
		return 0
	}
	age := now.Sub(visited)
	week := 7 * 24 * time.Hour
	if age < 0 {
		age = 0
	}
	if age >= week {
		return 0
	}
	return 0.1 * (1 - float64(age)/float64(week))
}
