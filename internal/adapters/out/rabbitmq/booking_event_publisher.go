package rabbitmq

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/soraaya/calcom-booking-webhook/internal/config"
	"github.com/soraaya/calcom-booking-webhook/internal/core/domain"
	"github.com/soraaya/calcom-booking-webhook/internal/core/ports/out"
)

type BookingEventPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	logger  out.LoggerPort
}

type bookingCreatedMessage struct {
	BookingID string            `json:"booking_id"`
	Title     string            `json:"title"`
	Start     string            `json:"start"`
	End       string            `json:"end"`
	Attendees []domain.Attendee `json:"attendees"`
}

func NewBookingEventPublisher(cfg *config.Config, logger out.LoggerPort) (*BookingEventPublisher, error) {
	if !cfg.RabbitMQ.Enabled {
		logger.Info("rabbitmq.disabled", out.LogFields{
			"message": "RabbitMQ is disabled, booking events will not be published",
		})
		return nil, nil
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		logger.Error("rabbitmq.connect.failed", out.LogFields{
			"error": err.Error(),
			"url":   cfg.RabbitMQ.URL,
		})
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		logger.Error("rabbitmq.channel.failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}

	if _, err := channel.QueueDeclare(
		cfg.RabbitMQ.Queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	); err != nil {
		channel.Close()
		conn.Close()
		logger.Error("rabbitmq.queue_declare.failed", out.LogFields{
			"error": err.Error(),
			"queue": cfg.RabbitMQ.Queue,
		})
		return nil, err
	}

	return &BookingEventPublisher{
		conn:    conn,
		channel: channel,
		queue:   cfg.RabbitMQ.Queue,
		logger:  logger,
	}, nil
}

func (p *BookingEventPublisher) PublishBookingCreated(ctx context.Context, booking domain.Booking) error {
	message := bookingCreatedMessage{
		BookingID: booking.UID,
		Title:     booking.Title,
		Start:     booking.Start.Format(time.RFC3339),
		End:       booking.End.Format(time.RFC3339),
		Attendees: booking.Attendees,
	}

	body, err := json.Marshal(message)
	if err != nil {
		return err
	}

	err = p.channel.PublishWithContext(ctx,
		"",      // exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return err
	}

	p.logger.Debug("rabbitmq.booking_created.published", out.LogFields{
		"bookingId": booking.UID,
		"queue":     p.queue,
	})

	return nil
}

func (p *BookingEventPublisher) Close() error {
	if p == nil || p.channel == nil {
		return nil
	}

	if err := p.channel.Close(); err != nil {
		return err
	}
	return p.conn.Close()
}
