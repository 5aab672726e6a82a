package feed

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_RSSEnclosure(t *testing.T) {
	body := `<?xml version="1.0"?>
<rss version="2.0"><channel><title>x</title>
<item>
  <title>A</title>
  <link>http://x/1</link>
  <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
  <enclosure url="http://img/1.jpg" type="image/jpeg"/>
</item>
</channel></rss>`

	items, err := Parse([]byte(body))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "A", items[0].Title)
	assert.Equal(t, "http://x/1", items[0].Link)
	assert.Equal(t, "http://img/1.jpg", items[0].ImageURL)
	assert.Equal(t, time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC), items[0].Published)
}

func TestParse_ImageFallbackOrder(t *testing.T) {
	body := `<?xml version="1.0"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/"><channel><title>x</title>
<item>
  <title>media content</title><link>http://x/1</link>
  <media:thumbnail url="http://img/thumb.jpg"/>
  <media:content url="http://img/content.jpg" medium="image"/>
</item>
<item>
  <title>thumbnail only</title><link>http://x/2</link>
  <media:thumbnail url="http://img/thumb2.jpg"/>
</item>
<item>
  <title>inline</title><link>http://x/3</link>
  <description><![CDATA[<p>Body</p><img src="http://img/inline.jpg">]]></description>
</item>
<item>
  <title>none</title><link>http://x/4</link>
  <description>plain</description>
</item>
</channel></rss>`

	items, err := Parse([]byte(body))
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, "http://img/content.jpg", items[0].ImageURL)
	assert.Equal(t, "http://img/thumb2.jpg", items[1].ImageURL)
	assert.Equal(t, "http://img/inline.jpg", items[2].ImageURL)
	assert.Empty(t, items[3].ImageURL)
}

func TestParse_Atom(t *testing.T) {
	body := `<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom"><title>s</title>
<entry>
  <title>Atom post</title>
  <link rel="alternate" href="http://ex/atom/1"/>
  <updated>2024-03-01T10:00:00Z</updated>
  <summary>Hello &amp; welcome</summary>
</entry>
</feed>`

	items, err := Parse([]byte(body))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Atom post", items[0].Title)
	assert.Equal(t, "http://ex/atom/1", items[0].Link)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), items[0].Published)
}

func TestParse_MalformedFallsBackToScanner(t *testing.T) {
	// a server warning printed ahead of the document hides the feed root
	body := `<b>Warning</b>: include(): failed to open stream<br />
<rss><channel><title>Broken & co</title>
<item><title>Rates & bonds</title><link>http://x/r1</link>
<pubDate>Tue, 05 Mar 2024 08:00:00 +0000</pubDate>
<media:thumbnail url="http://img/r1.jpg"/></item>
<item rdf:about="x"><title><![CDATA[Second <b>story</b>]]></title><link>http://x/r2</link></item>`

	items, err := Parse([]byte(body))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Rates & bonds", items[0].Title)
	assert.Equal(t, "http://img/r1.jpg", items[0].ImageURL)
	assert.Equal(t, time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC), items[0].Published)
	assert.Equal(t, "Second story", items[1].Title)
	assert.Equal(t, "http://x/r2", items[1].Link)
}

func TestParse_EscapedItems(t *testing.T) {
	body := `<html><body><pre>&lt;item&gt;&lt;title&gt;Escaped&lt;/title&gt;&lt;link&gt;http://x/e1&lt;/link&gt;&lt;enclosure url="http://img/e1.png" type="image/png"/&gt;&lt;/item&gt;</pre></body></html>`

	items, err := Parse([]byte(body))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Escaped", items[0].Title)
	assert.Equal(t, "http://x/e1", items[0].Link)
	assert.Equal(t, "http://img/e1.png", items[0].ImageURL)
}

func TestParse_JSONWrapped(t *testing.T) {
	body := `{"status":"ok","feed":{"title":"wrapped"},"items":[
  {"title":"J1","pubDate":"2024-05-01 12:00:00","link":"http://x/j1","guid":"g1",
   "thumbnail":"","description":"<p>desc</p>","enclosure":{"link":"http://img/j1.jpg","type":"image/jpeg"},"categories":["Tech"]},
  {"title":"J2","pubDate":"2024-05-01 11:00:00","link":"http://x/j2","thumbnail":"http://img/j2.jpg","enclosure":[]}
]}`

	items, err := Parse([]byte(body))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "http://img/j1.jpg", items[0].ImageURL)
	assert.Equal(t, []string{"Tech"}, items[0].Categories)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), items[0].Published)
	assert.Equal(t, "http://img/j2.jpg", items[1].ImageURL)
}

func TestParse_Unrecognized(t *testing.T) {
	_, err := Parse([]byte(`   `))
	assert.True(t, errors.Is(err, ErrUnrecognized))

	_, err = Parse([]byte(`{"status":"error","message":"quota"}`))
	assert.True(t, errors.Is(err, ErrUnrecognized))

	_, err = Parse([]byte(`this is not a feed`))
	assert.Error(t, err)
}

func TestParse_EmptyFeed(t *testing.T) {
	items, err := Parse([]byte(`<?xml version="1.0"?><rss version="2.0"><channel><title>x</title></channel></rss>`))
	require.NoError(t, err)
	assert.Empty(t, items)
}
