package aggregator

import (
	"strings"

	"news_aggregator/internal/domain"
)

// DefaultBreakingKeywords mark a headline as breaking.
var DefaultBreakingKeywords = []string{"breaking", "urgent", "just in", "developing story", "live updates"}

// applyFlags sets Breaking and Featured. priorities maps source id to
// descriptor priority.
func applyFlags(articles []domain.Article, priorities map[string]int, featuredPriority int, keywords []string) {
	for i := range articles {
		a := &articles[i]
		a.Breaking = isBreaking(a.Title, keywords)
		a.Featured = a.ImageURL != "" && priorities[a.SourceID] >= featuredPriority
	}
}

func isBreaking(title string, keywords []string) bool {
	lower := strings.ToLower(title)
	for _, k := range keywords {
		if k != "" && strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
