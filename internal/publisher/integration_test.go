//go:build integration

package publisher

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"

	"news_aggregator/internal/domain"
)

type RabbitMQIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *rabbitmq.RabbitMQContainer
	amqpURL   string
	logger    *slog.Logger
}

func (s *RabbitMQIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	container, err := rabbitmq.Run(s.ctx,
		"rabbitmq:3.13-management-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server startup complete").
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	amqpURL, err := container.AmqpURL(s.ctx)
	s.Require().NoError(err)
	s.amqpURL = amqpURL
}

func (s *RabbitMQIntegrationSuite) TearDownSuite() {
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func TestRabbitMQIntegrationSuite(t *testing.T) {
	suite.Run(t, new(RabbitMQIntegrationSuite))
}

func (s *RabbitMQIntegrationSuite) config(name string) Config {
	return Config{
		URL:        s.amqpURL,
		Exchange:   "exchange-" + name,
		RoutingKey: "articles-" + name,
		QueueName:  "queue-" + name,
	}
}

func testArticle(now time.Time) *domain.Article {
	return &domain.Article{
		ID:           "bbc-world-1700000000000-0",
		SourceID:     "bbc-world",
		SourceName:   "BBC World",
		Category:     domain.CategoryWorld,
		Title:        "Summit ends without agreement",
		Excerpt:      "Leaders left the summit...",
		CanonicalURL: "https://example.com/summit",
		ImageURL:     "https://example.com/summit.jpg",
		PublishedAt:  now,
		ImportedAt:   now,
		Status:       domain.StatusPublished,
		Breaking:     true,
		Tags:         []string{"summit", "leaders"},
	}
}

func (s *RabbitMQIntegrationSuite) TestPublisher_Connection() {
	pub, err := NewRabbitMQ(s.config("connect"), s.logger)
	s.NoError(err)
	s.NotNil(pub)

	s.NoError(pub.Close())
}

func (s *RabbitMQIntegrationSuite) TestPublisher_PublishCreate() {
	cfg := s.config("create")
	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	now := time.Now().UTC().Truncate(time.Millisecond)
	s.NoError(pub.Publish(s.ctx, testArticle(now), true))

	msg := s.consumeMessage(cfg)
	s.Require().NotNil(msg)
	s.Equal("application/json", msg.ContentType)
	s.Equal("article.create", msg.Type)
	s.Equal(uint8(amqp.Persistent), msg.DeliveryMode)
	s.NotEmpty(msg.MessageId)

	var received ArticleEvent
	s.Require().NoError(json.Unmarshal(msg.Body, &received))
	s.Equal(msg.MessageId, received.ID)
	s.Equal(ActionCreate, received.Action)
	s.Equal("articles-create.create.world", msg.RoutingKey)
	s.Equal("bbc-world-1700000000000-0", received.ArticleID)
	s.Equal(domain.CategoryWorld, received.Category)
	s.Equal("https://example.com/summit", received.CanonicalURL)
	s.Equal("bbc-world-1700000000000-0", received.Article.ID)
	s.Equal("Summit ends without agreement", received.Article.Title)
	s.Equal([]string{"summit", "leaders"}, received.Article.Tags)
	s.True(received.Article.Breaking)
	s.False(received.OccurredAt.IsZero())
}

func (s *RabbitMQIntegrationSuite) TestPublisher_PublishUpdate() {
	cfg := s.config("update")
	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	s.NoError(pub.Publish(s.ctx, testArticle(time.Now()), false))

	msg := s.consumeMessage(cfg)
	s.Require().NotNil(msg)

	s.Equal("article.update", msg.Type)
	s.Equal("articles-update.update.world", msg.RoutingKey)

	var received ArticleEvent
	s.Require().NoError(json.Unmarshal(msg.Body, &received))
	s.Equal(ActionUpdate, received.Action)
}

func (s *RabbitMQIntegrationSuite) TestPublisher_UniqueMessageIDs() {
	cfg := s.config("ids")
	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	a := testArticle(time.Now())
	s.NoError(pub.Publish(s.ctx, a, true))
	s.NoError(pub.Publish(s.ctx, a, true))

	first := s.consumeMessage(cfg)
	second := s.consumeMessage(cfg)
	s.Require().NotNil(first)
	s.Require().NotNil(second)
	s.NotEqual(first.MessageId, second.MessageId)
}

func (s *RabbitMQIntegrationSuite) TestPublisher_CloseTwice() {
	pub, err := NewRabbitMQ(s.config("close"), s.logger)
	s.Require().NoError(err)

	s.NoError(pub.Close())
	s.NoError(pub.Close())
}

func (s *RabbitMQIntegrationSuite) consumeMessage(cfg Config) *amqp.Delivery {
	conn, err := amqp.Dial(s.amqpURL)
	s.Require().NoError(err)
	defer conn.Close()

	ch, err := conn.Channel()
	s.Require().NoError(err)
	defer ch.Close()

	msg, ok, err := ch.Get(cfg.QueueName, true)
	deadline := time.Now().Add(5 * time.Second)
	for err == nil && !ok && time.Now().Before(deadline) {
		time.Sleep(100 * time.Millisecond)
		msg, ok, err = ch.Get(cfg.QueueName, true)
	}
	s.Require().NoError(err)
	if !ok {
		s.Fail("timeout waiting for message")
		return nil
	}
	return &msg
}
