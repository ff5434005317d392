package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"placement_backend/internal/email"
	"placement_backend/internal/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	TypeApplicationSubmitted     = "application.submitted"
	TypeApplicationStatusChanged = "application.status_changed"
	TypePostingDecided           = "posting.decided"

	publishTimeout = 5 * time.Second
)

// Event - сообщение в очереди. Получатели письма в событие не попадают.
type Event struct {
	Type         string    `json:"type"`
	OccurredAt   time.Time `json:"occurred_at"`
	PostingTitle string    `json:"posting_title"`
	Status       string    `json:"status"`
	StudentName  string    `json:"student_name,omitempty"`
	CompanyName  string    `json:"company_name,omitempty"`
	Reason       string    `json:"reason,omitempty"`
}

// channel - часть *amqp.Channel, нужная для публикации
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher кладет события о заявках и модерации в очередь RabbitMQ
// для внешних потребителей (аналитика, интеграции со школами).
type Publisher struct {
	ch    channel
	queue string
	now   func() time.Time
	close func() error
}

// Dial подключается к брокеру и объявляет durable очередь
func Dial(url, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	q, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	p := newPublisher(ch, q.Name)
	p.close = conn.Close
	return p, nil
}

func newPublisher(ch channel, queue string) *Publisher {
	return &Publisher{
		ch:    ch,
		queue: queue,
		now:   func() time.Time { return time.Now().UTC() },
		close: func() error { return nil },
	}
}

func (p *Publisher) Close() error {
	return p.close()
}

func (p *Publisher) ApplicationSubmitted(ctx context.Context, n email.ApplicationNotice) error {
	return p.publish(ctx, p.applicationEvent(TypeApplicationSubmitted, n))
}

func (p *Publisher) ApplicationStatusChanged(ctx context.Context, n email.ApplicationNotice) error {
	return p.publish(ctx, p.applicationEvent(TypeApplicationStatusChanged, n))
}

func (p *Publisher) PostingDecided(ctx context.Context, n email.PostingNotice) error {
	return p.publish(ctx, Event{
		Type:         TypePostingDecided,
		OccurredAt:   p.now(),
		PostingTitle: n.PostingTitle,
		Status:       n.Status,
		Reason:       n.Reason,
	})
}

func (p *Publisher) applicationEvent(kind string, n email.ApplicationNotice) Event {
	return Event{
		Type:         kind,
		OccurredAt:   p.now(),
		PostingTitle: n.PostingTitle,
		Status:       n.Status,
		StudentName:  n.StudentName,
		CompanyName:  n.CompanyName,
	}
}

func (p *Publisher) publish(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    ev.OccurredAt,
			Type:         ev.Type,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}

	logger.CtxDebug(ctx, "event published", "type", ev.Type, "queue", p.queue)
	return nil
}
