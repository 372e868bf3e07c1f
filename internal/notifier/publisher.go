package notifier

import (
	"context"
	"encoding/json"
	"time"

	"bazaar_backend/internal/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Event - уведомление, передаваемое в очередь доставки.
// Ядро не ждет доставки: enqueue и забыли.
type Event struct {
	UserID    string                 `json:"user_id"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	ActionURL string                 `json:"action_url,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// Publisher - контракт асинхронного нотификатора
type Publisher interface {
	Enqueue(ctx context.Context, event Event) error
}

// AMQPPublisher публикует события в RabbitMQ. Ошибки публикации
// логируются и возвращаются, но вызывающий код их игнорирует:
// падение брокера не должно ронять основной запрос.
type AMQPPublisher struct {
	url   string
	queue string
}

func NewAMQPPublisher(url, queue string) *AMQPPublisher {
	return &AMQPPublisher{url: url, queue: queue}
}

func (p *AMQPPublisher) Enqueue(ctx context.Context, event Event) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		logger.Error("rabbitmq: dial failed", "error", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("rabbitmq: channel open failed", "error", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Очередь durable: сообщения переживают рестарт брокера
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		logger.Error("rabbitmq: queue declare failed", "error", err, "queue", p.queue)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		logger.Error("rabbitmq: marshal event failed", "error", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		logger.Error("rabbitmq: publish failed", "error", err, "queue", p.queue)
		return err
	}

	return nil
}

// NoopPublisher - заглушка для тестов и окружений без брокера
type NoopPublisher struct{}

func (NoopPublisher) Enqueue(ctx context.Context, event Event) error { return nil }
