package classify

import (
	"context"
	"strings"
	"time"

	"github.com/karlseguin/ccache/v2"
)

const cacheTTL = 24 * time.Hour

// Matcher buckets free-form niche descriptions into known categories with
// keyword rules. Results are memoized since the same niche strings repeat
// across an imported lead list.
type Matcher struct {
	rules map[string][]string
	cache *ccache.Cache
}

// DefaultRules map category names to trigger keywords.
var DefaultRules = map[string][]string{
	"skills program": {
		"skill", "trade", "vocational", "bootcamp", "blue collar",
		"bc", "coding", "welding", "hvac", "plumbing", "electrician",
		"mechanic", "apprentice", "certification",
	},
	"money coaching": {
		"money", "finance", "financial", "invest", "wealth",
		"trading", "credit", "budget", "retirement",
	},
}

func New() *Matcher {
	return &Matcher{
		rules: DefaultRules,
		cache: ccache.New(ccache.Configure().MaxSize(10000)),
	}
}

// Classify returns the best-matching category from the supplied set. An
// input matching no rule falls back to the first category, mirroring the
// catalog's default variant.
func (m *Matcher) Classify(ctx context.Context, text string, categories []string, hint string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(categories) == 0 {
		return "", nil
	}

	key := strings.ToLower(strings.TrimSpace(text))
	if item := m.cache.Get(key); item != nil && !item.Expired() {
		return item.Value().(string), nil
	}

	best := categories[0]
	bestScore := 0
	for _, cat := range categories {
		score := 0
		if strings.Contains(key, strings.ToLower(cat)) {
			score += 2
		}
		for _, kw := range m.rules[cat] {
			if containsWord(key, kw) {
				score++
			}
		}
		if score > bestScore {
			best = cat
			bestScore = score
		}
	}

	m.cache.Set(key, best, cacheTTL)
	return best, nil
}

func containsWord(text, word string) bool {
	if strings.Contains(word, " ") {
		return strings.Contains(text, word)
	}
	for _, f := range strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == ',' || r == '/' || r == '-' || r == '(' || r == ')'
	}) {
		if f == word {
			return true
		}
	}
	return false
}
