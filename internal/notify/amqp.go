package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/cashplan/cashplan/internal/config"
	"github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

type AmqpPublisher struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	queue    string
}

func NewAmqpPublisher(cfg config.Notifications) (*AmqpPublisher, error) {
	conn, err := amqp091.Dial(cfg.Url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	p := &AmqpPublisher{conn: conn, channel: channel, exchange: cfg.Exchange, queue: cfg.Queue}
	if err := p.declare(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

func (p *AmqpPublisher) declare() error {
	if err := p.channel.ExchangeDeclare(p.exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := p.channel.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := p.channel.QueueBind(p.queue, p.queue, p.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

func (p *AmqpPublisher) Publish(ctx context.Context, n Notification) error {
	body, err := n.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(ctx, p.exchange, p.queue, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    n.Timestamp,
		Type:         string(n.Kind),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	log.Debugf("published %s notification for project %d", n.Kind, n.ProjectId)
	return nil
}

func (p *AmqpPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// NewPublisher connects to the broker when notifications are enabled.
func NewPublisher(cfg config.Notifications) (Publisher, error) {
	if !cfg.Enabled {
		log.Info("notifications disabled, logging them instead")
		return LogPublisher{}, nil
	}
	return NewAmqpPublisher(cfg)
}
