package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/spbu-ds-practicum-2025/balance-service/internal/domain"
)

// EventTypeDepositCompleted identifies deposit events on the exchange.
const EventTypeDepositCompleted = "balance.deposited"

// DepositCompletedMessage is the JSON body published for a committed deposit.
type DepositCompletedMessage struct {
	EventID   string `json:"eventId"`
	EventType string `json:"eventType"`
	AccountID int64  `json:"accountId"`
	Amount    string `json:"amount"`  // Decimal string with 2 decimal places
	Balance   string `json:"balance"` // Balance after the deposit, 2 decimal places
	Timestamp string `json:"timestamp"`
}

// NewDepositCompletedMessage converts a domain event to its wire form.
func NewDepositCompletedMessage(event *domain.DepositCompleted) DepositCompletedMessage {
	return DepositCompletedMessage{
		EventID:   event.EventID.String(),
		EventType: EventTypeDepositCompleted,
		AccountID: event.AccountID,
		Amount:    event.Amount.StringFixed(domain.AmountScale),
		Balance:   event.Balance.StringFixed(domain.AmountScale),
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
	}
}

// RabbitMQPublisher publishes deposit events to a topic exchange.
type RabbitMQPublisher struct {
	mu         sync.Mutex
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	routingKey string
}

// NewRabbitMQPublisher connects to RabbitMQ and declares the exchange.
func NewRabbitMQPublisher(url, exchange, routingKey string) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	slog.Info("RabbitMQ publisher initialized", "exchange", exchange, "routing_key", routingKey)

	return &RabbitMQPublisher{
		conn:       conn,
		channel:    channel,
		exchange:   exchange,
		routingKey: routingKey,
	}, nil
}

// PublishDepositCompleted publishes a persistent JSON message for the event.
func (p *RabbitMQPublisher) PublishDepositCompleted(ctx context.Context, event *domain.DepositCompleted) error {
	body, err := json.Marshal(NewDepositCompletedMessage(event))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx,
		p.exchange,   // exchange
		p.routingKey, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.EventID.String(),
			Timestamp:    event.Timestamp,
			Type:         EventTypeDepositCompleted,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Close closes the RabbitMQ channel and connection.
func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			slog.Warn("error closing channel", "error", err)
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
