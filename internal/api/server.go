package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"news_aggregator/internal/catalog"
	"news_aggregator/internal/domain"
)

const (
	DefaultReadyWait    = 2 * time.Second
	DefaultRelatedLimit = 5
	AdminTokenHeader    = "X-Admin-Token"
)

type Options struct {
	// AdminToken guards the admin routes. Empty disables the check.
	AdminToken string
	ReadyWait  time.Duration
	Badges     Badges
}

type Server struct {
	catalog   Catalog
	sources   Sources
	refresher Refresher
	ready     Readiness
	opts      Options
	logger    *slog.Logger
	now       func() time.Time
}

// NewServer builds the HTTP API. ready may be nil when there is nothing to
// wait for.
func NewServer(catalog Catalog, sources Sources, refresher Refresher, ready Readiness, opts Options, logger *slog.Logger) *Server {
	if opts.ReadyWait <= 0 {
		opts.ReadyWait = DefaultReadyWait
	}
	opts.Badges.setDefaults()
	return &Server{
		catalog:   catalog,
		sources:   sources,
		refresher: refresher,
		ready:     ready,
		opts:      opts,
		logger:    logger.With("component", "api"),
		now:       time.Now,
	}
}

// Handler returns a gin engine with every route registered.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	s.RegisterRoutes(r)
	return r
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1", s.waitReady())
	{
		v1.GET("/articles", s.listArticles)
		v1.GET("/articles/:id", s.getArticle)
		v1.GET("/articles/:id/related", s.relatedArticles)
		v1.POST("/articles/:id/view", s.recordView)
		v1.GET("/search", s.search)
		v1.GET("/sources", s.listSources)
	}

	admin := r.Group("/api/v1/admin", s.requireAdmin())
	{
		admin.POST("/refresh", s.refresh)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "articles": s.catalog.Len()})
}

func (s *Server) listArticles(c *gin.Context) {
	q := catalog.Query{
		Featured: boolQuery(c, "featured"),
		Breaking: boolQuery(c, "breaking"),
		Trending: boolQuery(c, "trending"),
		Limit:    intQuery(c, "limit", catalog.DefaultLimit),
		Offset:   intQuery(c, "offset", 0),
	}
	if raw := c.Query("category"); raw != "" {
		cat, ok := domain.LookupCategory(raw)
		if !ok {
			s.page(c, catalog.Page{})
			return
		}
		q.Category = cat
	}

	s.page(c, s.catalog.List(q))
}

func (s *Server) getArticle(c *gin.Context) {
	a, err := s.catalog.Get(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.view(a))
}

func (s *Server) relatedArticles(c *gin.Context) {
	related, err := s.catalog.Related(c.Param("id"), intQuery(c, "limit", DefaultRelatedLimit))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": s.views(related)})
}

func (s *Server) recordView(c *gin.Context) {
	views, err := s.catalog.IncrementView(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"viewCount": views})
}

func (s *Server) search(c *gin.Context) {
	page := s.catalog.Search(
		c.Query("q"),
		intQuery(c, "limit", catalog.DefaultLimit),
		intQuery(c, "offset", 0),
	)
	s.page(c, page)
}

type sourceView struct {
	domain.SourceDescriptor
	State *domain.SourceState `json:"state,omitempty"`
}

func (s *Server) listSources(c *gin.Context) {
	states := make(map[string]domain.SourceState)
	for _, st := range s.sources.States() {
		states[st.SourceID] = st
	}

	descs := s.sources.All()
	out := make([]sourceView, 0, len(descs))
	for _, d := range descs {
		v := sourceView{SourceDescriptor: d}
		if st, ok := states[d.ID]; ok {
			v.State = &st
		}
		out = append(out, v)
	}
	c.JSON(http.StatusOK, gin.H{"sources": out})
}

func (s *Server) refresh(c *gin.Context) {
	// A dropped client connection must not abort the refresh halfway.
	ctx := context.WithoutCancel(c.Request.Context())

	start := time.Now()
	if err := s.refresher.ForceRun(ctx); err != nil {
		s.logger.Error("forced refresh failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"code":    "refresh_failed",
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "refreshed",
		"articles": s.catalog.Len(),
		"duration": time.Since(start).String(),
	})
}

func (s *Server) page(c *gin.Context, p catalog.Page) {
	c.JSON(http.StatusOK, gin.H{
		"articles": s.views(p.Articles),
		"total":    p.Total,
		"hasMore":  p.HasMore,
	})
}

func (s *Server) fail(c *gin.Context, err error) {
	if errors.Is(err, catalog.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "not_found",
			"message": "article not found",
		})
		return
	}
	s.logger.Error("request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    "internal_error",
		"message": "internal server error",
	})
}

// waitReady holds requests until bootstrap has finished or ReadyWait
// elapses, then serves whatever the catalog holds.
func (s *Server) waitReady() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.ready != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), s.opts.ReadyWait)
			if err := s.ready.Wait(ctx); err != nil {
				s.logger.Debug("serving before bootstrap finished", "path", c.FullPath())
			}
			cancel()
		}
		c.Next()
	}
}

func (s *Server) requireAdmin() gin.HandlerFunc {
	token := []byte(s.opts.AdminToken)
	return func(c *gin.Context) {
		if len(token) == 0 {
			c.Next()
			return
		}
		if subtle.ConstantTimeCompare([]byte(c.GetHeader(AdminTokenHeader)), token) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "unauthorized",
				"message": "invalid admin token",
			})
			return
		}
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func intQuery(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}

func boolQuery(c *gin.Context, key string) bool {
	v, _ := strconv.ParseBool(c.Query(key))
	return v
}
