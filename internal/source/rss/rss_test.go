package rss

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news_aggregator/internal/domain"
	"news_aggregator/internal/fetch"
)

const exampleFeed = `<rss><channel><item><title>A</title><link>http://x/1</link>` +
	`<pubDate>Mon, 01 Jan 2024 10:00:00 GMT</pubDate>` +
	`<enclosure url="http://img/1.jpg" type="image/jpeg"/></item></channel></rss>`

func testSource(url string) domain.SourceDescriptor {
	return domain.SourceDescriptor{
		ID:       "example",
		Name:     "Example",
		Protocol: domain.ProtocolRSS,
		URL:      url,
		Category: domain.CategoryWorld,
		Active:   true,
	}
}

func TestAdapter_FetchEnclosureExample(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(exampleFeed))
	}))
	defer srv.Close()

	got, err := New().Fetch(context.Background(), testSource(srv.URL), fetch.NewHTTPTransport("", nil))
	require.NoError(t, err)
	require.Len(t, got, 1)

	a := got[0]
	assert.Equal(t, "A", a.Title)
	assert.Equal(t, "http://x/1", a.CanonicalURL)
	assert.Equal(t, "http://img/1.jpg", a.ImageURL)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), a.PublishedAt)
	assert.Equal(t, "example", a.SourceID)
	assert.Equal(t, domain.CategoryWorld, a.Category)
}

func TestAdapter_DropsItemsWithoutLink(t *testing.T) {
	body := `<rss><channel>` +
		`<item><title>No link</title></item>` +
		`<item><title>Linked</title><link>http://x/2</link><description>&lt;p&gt;Body &amp;amp; more&lt;/p&gt;</description></item>` +
		`</channel></rss>`

	got, err := New().Parse(testSource("http://feed"), []byte(body))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Linked", got[0].Title)
	assert.Equal(t, "Body & more", got[0].Excerpt)
}

func TestAdapter_MalformedIsClassified(t *testing.T) {
	_, err := New().Parse(testSource("http://feed"), []byte("<html>maintenance</html>"))
	assert.ErrorIs(t, err, fetch.ErrMalformed)
}

func TestAdapter_StatusPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New().Fetch(context.Background(), testSource(srv.URL), fetch.NewHTTPTransport("", nil))
	var se *fetch.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.Code)
}
