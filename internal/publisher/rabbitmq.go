package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"news_aggregator/internal/domain"
)

const (
	// ActionCreate announces an article the catalog had not seen before.
	ActionCreate = "create"
	// ActionUpdate announces a re-imported copy of an article already held.
	ActionUpdate = "update"
)

// RabbitMQ hands article events to the downstream enrichment queue over a
// topic exchange. Routing keys are "<prefix>.<action>.<category>", so
// consumers can bind to a single category or action.
type RabbitMQ struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	exchange  string
	prefix    string
	logger    *slog.Logger
	closeOnce sync.Once
}

type Config struct {
	URL      string
	Exchange string
	// RoutingKey is the prefix of every routing key.
	RoutingKey string
	// QueueName is bound to every event under RoutingKey.
	QueueName string
}

func NewRabbitMQ(cfg Config, logger *slog.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareTopology(ch, cfg); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logger = logger.With("component", "publisher")
	logger.Info("connected to rabbitmq",
		"exchange", cfg.Exchange,
		"queue", cfg.QueueName,
		"binding", bindingKey(cfg.RoutingKey),
	)

	return &RabbitMQ{
		conn:     conn,
		channel:  ch,
		exchange: cfg.Exchange,
		prefix:   cfg.RoutingKey,
		logger:   logger,
	}, nil
}

// declareTopology declares the durable topic exchange and the enrichment
// queue bound to every article event.
func declareTopology(ch *amqp.Channel, cfg Config) error {
	if err := ch.ExchangeDeclare(cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}

	q, err := ch.QueueDeclare(cfg.QueueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", cfg.QueueName, err)
	}

	if err := ch.QueueBind(q.Name, bindingKey(cfg.RoutingKey), cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", q.Name, err)
	}
	return nil
}

func bindingKey(prefix string) string {
	return prefix + ".#"
}

// RoutingKey returns the key an event for article is published under.
func RoutingKey(prefix, action string, category domain.Category) string {
	if category == "" {
		category = domain.CategoryGeneral
	}
	return prefix + "." + action + "." + string(category)
}

// ArticleEvent is the message body. The flat fields let consumers route
// and skip without decoding the article.
type ArticleEvent struct {
	ID           string          `json:"id"`
	Action       string          `json:"action"`
	ArticleID    string          `json:"articleId"`
	SourceID     string          `json:"sourceId"`
	Category     domain.Category `json:"category"`
	CanonicalURL string          `json:"canonicalUrl"`
	Breaking     bool            `json:"breaking"`
	Article      domain.Article  `json:"article"`
	OccurredAt   time.Time       `json:"occurredAt"`
}

func newArticleEvent(article *domain.Article, action string, now time.Time) ArticleEvent {
	return ArticleEvent{
		ID:           uuid.NewString(),
		Action:       action,
		ArticleID:    article.ID,
		SourceID:     article.SourceID,
		Category:     article.Category,
		CanonicalURL: article.CanonicalURL,
		Breaking:     article.Breaking,
		Article:      article.Clone(),
		OccurredAt:   now,
	}
}

// Publish sends a create event for new articles and an update event for
// re-imported ones.
func (r *RabbitMQ) Publish(ctx context.Context, article *domain.Article, isNew bool) error {
	action := ActionUpdate
	if isNew {
		action = ActionCreate
	}

	event := newArticleEvent(article, action, time.Now().UTC())
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event for %s: %w", article.ID, err)
	}

	key := RoutingKey(r.prefix, action, article.Category)
	err = r.channel.PublishWithContext(ctx, r.exchange, key, false, false, amqp.Publishing{
		MessageId:    event.ID,
		Type:         "article." + action,
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Body:         body,
		Timestamp:    event.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("publish article %s: %w", article.ID, err)
	}

	r.logger.Debug("published article event",
		"id", article.ID,
		"source", article.SourceID,
		"message_id", event.ID,
		"routing_key", key,
	)
	return nil
}

// Close releases the channel and connection. It is safe to call twice.
func (r *RabbitMQ) Close() error {
	var err error
	r.closeOnce.Do(func() {
		if r.channel != nil {
			_ = r.channel.Close()
		}
		if r.conn != nil {
			err = r.conn.Close()
		}
	})
	return err
}
