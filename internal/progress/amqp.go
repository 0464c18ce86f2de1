package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/abhisek/vocabdrill/internal/quiz"
)

// publisher is the subset of *amqp.Channel used for publishing.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// GradeMessage is the JSON body published for each grade event.
type GradeMessage struct {
	SessionID   string    `json:"session_id"`
	ItemID      string    `json:"item_id"`
	Index       int       `json:"index"`
	Verdict     string    `json:"verdict"`
	Status      int       `json:"status"`
	Probability float64   `json:"probability"`
	Input       string    `json:"input"`
	Level       int       `json:"level"`
	Lesson      int       `json:"lesson"`
	GradedAt    time.Time `json:"graded_at"`
}

// NewGradeMessage converts a grade event to its wire form.
func NewGradeMessage(ev quiz.GradeEvent) GradeMessage {
	return GradeMessage{
		SessionID:   ev.SessionID,
		ItemID:      ev.ItemID,
		Index:       ev.Index,
		Verdict:     ev.Verdict.String(),
		Status:      ev.Verdict.StatusCode(),
		Probability: ev.Probability,
		Input:       ev.Input,
		Level:       ev.Level,
		Lesson:      ev.Lesson,
		GradedAt:    ev.At,
	}
}

// AMQPRecorder publishes grade events to a durable RabbitMQ queue.
type AMQPRecorder struct {
	conn  *amqp.Connection
	ch    publisher
	queue string

	// amqp channels are not safe for concurrent publishes.
	mu sync.Mutex
}

// NewAMQPRecorder dials url and declares queue.
func NewAMQPRecorder(url, queue string) (*AMQPRecorder, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare queue %q: %w", queue, err)
	}

	return &AMQPRecorder{conn: conn, ch: ch, queue: queue}, nil
}

func (r *AMQPRecorder) RecordGrade(ctx context.Context, ev quiz.GradeEvent) error {
	body, err := json.Marshal(NewGradeMessage(ev))
	if err != nil {
		return fmt.Errorf("marshal grade message: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	err = r.ch.PublishWithContext(ctx,
		"",      // exchange
		r.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    ev.SessionID + ":" + ev.ItemID,
			Timestamp:    ev.At,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish to %q: %w", r.queue, err)
	}
	return nil
}

// Close closes the channel and connection.
func (r *AMQPRecorder) Close() error {
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
