package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// TranslationEvent is published once per pipeline run.
type TranslationEvent struct {
	RequestID        int       `json:"request_id,omitempty"`
	Status           string    `json:"status"`
	Languages        []string  `json:"languages"`
	DetectedLanguage string    `json:"detected_language,omitempty"`
	DestLanguage     string    `json:"dest_language"`
	ExtractedText    string    `json:"extracted_text,omitempty"`
	TranslatedText   string    `json:"translated_text,omitempty"`
	Failure          string    `json:"failure,omitempty"`
	OccurredAt       time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event TranslationEvent) error
	Close() error
}

type RabbitPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

func NewRabbitPublisher(host string, port int, username, password, queue string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(fmt.Sprintf("amqp://%s:%s@%s:%d/", username, password, host, port))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %v", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %v", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %v", queue, err)
	}
	return &RabbitPublisher{conn: conn, channel: ch, queue: queue}, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, event TranslationEvent) error {
	body, err := Encode(event)
	if err != nil {
		return err
	}
	return p.channel.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Transient,
		MessageId:    strconv.Itoa(event.RequestID),
		Timestamp:    event.OccurredAt,
		Body:         body,
	})
}

func (p *RabbitPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}

func Encode(event TranslationEvent) ([]byte, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return body, nil
}
