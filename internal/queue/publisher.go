package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/smalltheater/ticketdesk/internal/model"
)

const (
	createdQueueName   = "booking.created"
	cancelledQueueName = "booking.cancelled"
)

// Publisher sends booking lifecycle events to RabbitMQ.  It
// implements ports.Notifier.  Publishing is best-effort: every error
// is logged and swallowed so a broker outage can never fail a
// booking.
type Publisher struct {
	url string
}

// NewPublisher returns a Publisher for the given AMQP URL, or nil
// when the URL is empty (notifications disabled).
func NewPublisher(url string) *Publisher {
	if url == "" {
		return nil
	}
	return &Publisher{url: url}
}

// BookingCreated publishes a BookingCreatedEvent.
func (p *Publisher) BookingCreated(ctx context.Context, b *model.Booking, show *model.Show, seatLabels []string, remaining int) {
	ev := BookingCreatedEvent{
		BookingID:      b.ID,
		Name:           b.Name,
		Email:          b.Email,
		ShowID:         show.ID,
		ShowLabel:      show.Label,
		ShowStartsAt:   show.StartsAt.UTC().Format(time.RFC3339),
		SeatLabels:     seatLabels,
		RemainingSeats: remaining,
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	p.publish(ctx, createdQueueName, ev)
}

// BookingCancelled publishes a BookingCancelledEvent.
func (p *Publisher) BookingCancelled(ctx context.Context, b *model.Booking, show *model.Show, seatLabels []string, remaining int) {
	ev := BookingCancelledEvent{
		BookingID:      b.ID,
		Email:          b.Email,
		ShowID:         show.ID,
		ShowLabel:      show.Label,
		SeatLabels:     seatLabels,
		RemainingSeats: remaining,
		CancelledAt:    time.Now().UTC().Format(time.RFC3339),
	}
	p.publish(ctx, cancelledQueueName, ev)
}

// publish dials the broker, declares the durable queue and sends one
// persistent JSON message.  Connections are short-lived; booking
// volume at a small theater does not justify a channel pool.
func (p *Publisher) publish(ctx context.Context, queueName string, event any) {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // autoDelete
		false,     // exclusive
		false,     // noWait
		nil,       // args
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",        // default exchange
		queueName, // routing key = queue name
		false,     // mandatory
		false,     // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
	}
}
