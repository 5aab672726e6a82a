package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"news_aggregator/internal/api/mocks"
	"news_aggregator/internal/catalog"
	"news_aggregator/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type listResponse struct {
	Articles []struct {
		ID        string    `json:"id"`
		Freshness Freshness `json:"freshness"`
	} `json:"articles"`
	Total   int  `json:"total"`
	HasMore bool `json:"hasMore"`
}

type ServerTestSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	sources   *mocks.MockSources
	refresher *mocks.MockRefresher
	ready     *mocks.MockReadiness
	store     *catalog.Store
	server    *Server
	handler   http.Handler
	now       time.Time
}

func (s *ServerTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.sources = mocks.NewMockSources(s.ctrl)
	s.refresher = mocks.NewMockRefresher(s.ctrl)
	s.ready = mocks.NewMockReadiness(s.ctrl)
	s.ready.EXPECT().Wait(gomock.Any()).Return(nil).AnyTimes()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s.store = catalog.NewStore(nil, catalog.Options{}, logger)
	s.Require().True(s.store.ReplaceArticles(context.Background(), []domain.Article{
		{
			ID: "bbc-1", SourceID: "bbc-world", Category: domain.CategoryWorld,
			Title: "Election results announced", CanonicalURL: "https://a.example/1",
			PublishedAt: s.now.Add(-30 * time.Minute), Featured: true, Breaking: true,
			Tags: []string{"election"},
		},
		{
			ID: "npr-1", SourceID: "npr-news", Category: domain.CategoryTechnology,
			Title: "Campaigns lean on AI", CanonicalURL: "https://a.example/2",
			PublishedAt: s.now.Add(-3 * time.Hour), Tags: []string{"election", "ai"},
		},
		{
			ID: "ars-1", SourceID: "ars-technica", Category: domain.CategoryTechnology,
			Title: "New chips for AI workloads", CanonicalURL: "https://a.example/3",
			PublishedAt: s.now.Add(-48 * time.Hour), Tags: []string{"ai"},
		},
	}))

	s.server = NewServer(s.store, s.sources, s.refresher, s.ready, Options{AdminToken: "secret"}, logger)
	s.server.now = func() time.Time { return s.now }
	s.handler = s.server.Handler()
}

func (s *ServerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) do(method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *ServerTestSuite) decode(rec *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), v))
}

func (s *ServerTestSuite) TestHealth() {
	rec := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, rec.Code)

	var body map[string]any
	s.decode(rec, &body)
	s.Equal("ok", body["status"])
	s.EqualValues(3, body["articles"])
}

func (s *ServerTestSuite) TestListArticles_CategoryAndFreshness() {
	rec := s.do(http.MethodGet, "/api/v1/articles?category=Technology", nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp listResponse
	s.decode(rec, &resp)
	s.Equal(2, resp.Total)
	s.Require().Len(resp.Articles, 2)

	byID := map[string]Freshness{}
	for _, a := range resp.Articles {
		byID[a.ID] = a.Freshness
	}
	s.Equal(FreshnessRecent, byID["npr-1"])
	s.Equal(FreshnessOlder, byID["ars-1"])
}

func (s *ServerTestSuite) TestListArticles_UnknownCategoryIsEmpty() {
	rec := s.do(http.MethodGet, "/api/v1/articles?category=foo", nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp listResponse
	s.decode(rec, &resp)
	s.Equal(0, resp.Total)
	s.Empty(resp.Articles)
	s.False(resp.HasMore)
	s.Contains(rec.Body.String(), `"articles":[]`)
}

func (s *ServerTestSuite) TestListArticles_FlagsAndPaging() {
	var featured listResponse
	s.decode(s.do(http.MethodGet, "/api/v1/articles?featured=true", nil), &featured)
	s.Require().Len(featured.Articles, 1)
	s.Equal("bbc-1", featured.Articles[0].ID)
	s.Equal(FreshnessVeryRecent, featured.Articles[0].Freshness)

	var paged listResponse
	s.decode(s.do(http.MethodGet, "/api/v1/articles?limit=1&offset=1", nil), &paged)
	s.Len(paged.Articles, 1)
	s.Equal(3, paged.Total)
	s.True(paged.HasMore)

	var junk listResponse
	s.decode(s.do(http.MethodGet, "/api/v1/articles?limit=abc&breaking=maybe", nil), &junk)
	s.Len(junk.Articles, 3)
}

func (s *ServerTestSuite) TestGetArticle() {
	rec := s.do(http.MethodGet, "/api/v1/articles/bbc-1", nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var a struct {
		ID        string    `json:"id"`
		Title     string    `json:"title"`
		Freshness Freshness `json:"freshness"`
	}
	s.decode(rec, &a)
	s.Equal("bbc-1", a.ID)
	s.Equal("Election results announced", a.Title)
	s.Equal(FreshnessVeryRecent, a.Freshness)

	missing := s.do(http.MethodGet, "/api/v1/articles/nope", nil)
	s.Equal(http.StatusNotFound, missing.Code)
	s.Contains(missing.Body.String(), "not_found")
}

func (s *ServerTestSuite) TestRelatedArticles() {
	var resp listResponse
	rec := s.do(http.MethodGet, "/api/v1/articles/bbc-1/related", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.decode(rec, &resp)

	s.Require().Len(resp.Articles, 1)
	s.Equal("npr-1", resp.Articles[0].ID)

	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/v1/articles/nope/related", nil).Code)
}

func (s *ServerTestSuite) TestRecordView() {
	s.do(http.MethodPost, "/api/v1/articles/npr-1/view", nil)
	rec := s.do(http.MethodPost, "/api/v1/articles/npr-1/view", nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var body struct {
		ViewCount int64 `json:"viewCount"`
	}
	s.decode(rec, &body)
	s.Equal(int64(2), body.ViewCount)

	s.Equal(http.StatusNotFound, s.do(http.MethodPost, "/api/v1/articles/nope/view", nil).Code)
}

func (s *ServerTestSuite) TestSearch() {
	var resp listResponse
	s.decode(s.do(http.MethodGet, "/api/v1/search?q=AI", nil), &resp)
	s.Equal(2, resp.Total)

	var empty listResponse
	rec := s.do(http.MethodGet, "/api/v1/search", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.decode(rec, &empty)
	s.Empty(empty.Articles)
}

func (s *ServerTestSuite) TestListSources() {
	s.sources.EXPECT().All().Return([]domain.SourceDescriptor{
		{ID: "bbc-world", Name: "BBC World", Protocol: domain.ProtocolRSS, Active: true},
		{ID: "newsapi", Name: "NewsAPI", Protocol: domain.ProtocolHeadlineAPI, APIKey: "hidden"},
	})
	s.sources.EXPECT().States().Return([]domain.SourceState{
		{SourceID: "bbc-world", ArticlesFetched: 12},
	})

	rec := s.do(http.MethodGet, "/api/v1/sources", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.NotContains(rec.Body.String(), "hidden")

	var body struct {
		Sources []struct {
			ID    string              `json:"id"`
			State *domain.SourceState `json:"state"`
		} `json:"sources"`
	}
	s.decode(rec, &body)
	s.Require().Len(body.Sources, 2)
	s.Require().NotNil(body.Sources[0].State)
	s.Equal(int64(12), body.Sources[0].State.ArticlesFetched)
	s.Nil(body.Sources[1].State)
}

func (s *ServerTestSuite) TestRefresh_RequiresToken() {
	rec := s.do(http.MethodPost, "/api/v1/admin/refresh", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/admin/refresh", http.Header{AdminTokenHeader: {"wrong"}})
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *ServerTestSuite) TestRefresh() {
	s.refresher.EXPECT().ForceRun(gomock.Any()).Return(nil)

	rec := s.do(http.MethodPost, "/api/v1/admin/refresh", http.Header{AdminTokenHeader: {"secret"}})
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "refreshed")
}

func (s *ServerTestSuite) TestRefresh_Failure() {
	s.refresher.EXPECT().ForceRun(gomock.Any()).Return(errors.New("boom"))

	rec := s.do(http.MethodPost, "/api/v1/admin/refresh", http.Header{AdminTokenHeader: {"secret"}})
	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.Contains(rec.Body.String(), "refresh_failed")
}

func TestServer_ServesAfterReadyWait(t *testing.T) {
	ctrl := gomock.NewController(t)
	ready := mocks.NewMockReadiness(ctrl)
	ready.EXPECT().Wait(gomock.Any()).DoAndReturn(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	cat := mocks.NewMockCatalog(ctrl)
	cat.EXPECT().List(gomock.Any()).Return(catalog.Page{Articles: []domain.Article{}})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := NewServer(cat, nil, nil, ready, Options{ReadyWait: 20 * time.Millisecond}, logger)

	start := time.Now()
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/articles", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestServer_NoAdminTokenConfigured(t *testing.T) {
	ctrl := gomock.NewController(t)
	refresher := mocks.NewMockRefresher(ctrl)
	refresher.EXPECT().ForceRun(gomock.Any()).Return(nil)
	cat := mocks.NewMockCatalog(ctrl)
	cat.EXPECT().Len().Return(0)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := NewServer(cat, nil, refresher, nil, Options{}, logger)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/refresh", strings.NewReader("")))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestBadges_For(t *testing.T) {
	b := Badges{}
	b.setDefaults()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		age  time.Duration
		want Freshness
	}{
		{-5 * time.Minute, FreshnessVeryRecent},
		{59 * time.Minute, FreshnessVeryRecent},
		{time.Hour, FreshnessRecent},
		{5 * time.Hour, FreshnessRecent},
		{6 * time.Hour, FreshnessToday},
		{23 * time.Hour, FreshnessToday},
		{24 * time.Hour, FreshnessOlder},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, b.For(now.Add(-tc.age), now), "age %s", tc.age)
	}
}
