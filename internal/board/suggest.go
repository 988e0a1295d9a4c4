package board

import (
	"sort"
	"strings"

	"github.com/verotasks/api/internal/task"
)

const (
	suggestLimit   = 8
	suggestMinLen  = 2
	wordMinLen     = 4
	wordMaxLen     = 24
	wordPoolBudget = 420
)

// Suggest monta sugestões de busca a partir dos títulos, dos rótulos
// extras (nomes de usuários) e das palavras longas do texto das
// tarefas. Pontuação: igual > prefixo > substring.
func Suggest(rows []*task.Task, extraLabels []string, needle string) []string {
	needle = strings.TrimSpace(needle)
	if len([]rune(needle)) < suggestMinLen {
		return nil
	}

	pool := make([]string, 0, len(rows)+len(extraLabels))
	for _, t := range rows {
		if title := strings.TrimSpace(t.Title); title != "" {
			pool = append(pool, title)
		}
	}
	for _, label := range extraLabels {
		if label = strings.TrimSpace(label); label != "" {
			pool = append(pool, label)
		}
	}

	words := 0
	for _, t := range rows {
		if words > wordPoolBudget {
			break
		}
		for _, w := range strings.Fields(t.SearchText()) {
			w = strings.Trim(w, ".,;:!?()[]{}\"'")
			n := len([]rune(w))
			if n < wordMinLen || n > wordMaxLen {
				continue
			}
			pool = append(pool, w)
			words++
		}
	}

	type scored struct {
		text  string
		score int
	}

	seen := make(map[string]struct{}, len(pool))
	candidates := make([]scored, 0, len(pool))
	for _, s := range pool {
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if sc := scoreSuggestion(needle, s); sc > 0 {
			candidates = append(candidates, scored{text: s, score: sc})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return len(candidates[i].text) < len(candidates[j].text)
	})

	if len(candidates) > suggestLimit {
		candidates = candidates[:suggestLimit]
	}

	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.text
	}
	return out
}

func scoreSuggestion(needle, text string) int {
	n := strings.ToLower(strings.TrimSpace(needle))
	t := strings.ToLower(strings.TrimSpace(text))
	switch {
	case n == "":
		return 0
	case t == n:
		return 100
	case strings.HasPrefix(t, n):
		return 80
	case strings.Contains(t, n):
		return 50
	default:
		return 0
	}
}
