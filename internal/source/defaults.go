package source

import (
	"time"

	"news_aggregator/internal/domain"
)

const (
	NewsAPIURL    = "https://newsapi.org/v2/top-headlines"
	TheNewsAPIURL = "https://api.thenewsapi.com/v1/news/top"
)

// DefaultSources returns the built-in source set. Keyed APIs are inactive
// when their key is empty.
func DefaultSources(newsAPIKey, theNewsAPIKey string) []domain.SourceDescriptor {
	rss := func(id, name, url string, cat domain.Category, priority int, seed bool) domain.SourceDescriptor {
		return domain.SourceDescriptor{
			ID:            id,
			Name:          name,
			Protocol:      domain.ProtocolRSS,
			URL:           url,
			Category:      cat,
			Active:        true,
			Priority:      priority,
			Retries:       2,
			Timeout:       12 * time.Second,
			Seed:          seed,
			ProxyFallback: true,
		}
	}

	sources := []domain.SourceDescriptor{
		rss("bbc-world", "BBC News World", "https://feeds.bbci.co.uk/news/world/rss.xml", domain.CategoryWorld, 90, true),
		rss("npr-news", "NPR News", "https://feeds.npr.org/1001/rss.xml", domain.CategoryGeneral, 80, true),
		rss("ars-technica", "Ars Technica", "https://feeds.arstechnica.com/arstechnica/index", domain.CategoryTechnology, 75, true),
		rss("the-verge", "The Verge", "https://www.theverge.com/rss/index.xml", domain.CategoryTechnology, 70, false),
		rss("bbc-business", "BBC News Business", "https://feeds.bbci.co.uk/news/business/rss.xml", domain.CategoryBusiness, 70, false),
		rss("sciencedaily", "ScienceDaily", "https://www.sciencedaily.com/rss/top/science.xml", domain.CategoryScience, 60, false),
		rss("bbc-health", "BBC News Health", "https://feeds.bbci.co.uk/news/health/rss.xml", domain.CategoryHealth, 60, false),
		rss("espn", "ESPN", "https://www.espn.com/espn/rss/news", domain.CategorySports, 55, false),
		rss("variety", "Variety", "https://variety.com/feed/", domain.CategoryEntertainment, 50, false),
		{
			ID:            "google-news-world",
			Name:          "Google News World",
			Protocol:      domain.ProtocolAggregatorRSS,
			Params:        map[string]string{"language": "en", "country": "US"},
			Category:      domain.CategoryWorld,
			Active:        true,
			Priority:      40,
			Retries:       1,
			Timeout:       12 * time.Second,
			ProxyFallback: true,
		},
		{
			ID:       "newsapi-technology",
			Name:     "NewsAPI Technology",
			Protocol: domain.ProtocolHeadlineAPI,
			URL:      NewsAPIURL,
			Params:   map[string]string{"category": "technology", "country": "us"},
			APIKey:   newsAPIKey,
			Category: domain.CategoryTechnology,
			Active:   newsAPIKey != "",
			Priority: 65,
			Retries:  1,
			Timeout:  12 * time.Second,
		},
		{
			ID:       "thenewsapi-top",
			Name:     "TheNewsAPI Top Stories",
			Protocol: domain.ProtocolStructuredAPI,
			URL:      TheNewsAPIURL,
			Params:   map[string]string{"language": "en", "locale": "us", "max_pages": "2"},
			APIKey:   theNewsAPIKey,
			Category: domain.CategoryGeneral,
			Active:   theNewsAPIKey != "",
			Priority: 65,
			Retries:  1,
			Timeout:  12 * time.Second,
		},
	}

	return sources
}
