package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"goonzette-automation/internal/domain"
)

// RabbitCompileQueue transports compile jobs over a durable RabbitMQ queue.
type RabbitCompileQueue struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string

	mu         sync.Mutex
	deliveries <-chan amqp.Delivery
}

// NewRabbitCompileQueue dials the broker and declares the queue.
func NewRabbitCompileQueue(amqpURL, queue string) (*RabbitCompileQueue, error) {
	if amqpURL == "" {
		return nil, errors.New("amqp url is empty")
	}
	if queue == "" {
		return nil, errors.New("queue name is empty")
	}
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}
	return &RabbitCompileQueue{conn: conn, ch: ch, queue: queue}, nil
}

var _ domain.CompileQueue = (*RabbitCompileQueue)(nil)

// Enqueue publishes a job to the queue.
func (q *RabbitCompileQueue) Enqueue(ctx context.Context, job domain.CompileJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	err = q.ch.PublishWithContext(ctx, "", q.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         payload,
	})
	if err != nil {
		return fmt.Errorf("publish job: %w", err)
	}
	return nil
}

// Receive blocks until a job arrives. The returned ack function must be called
// with true to confirm or false to requeue the delivery.
func (q *RabbitCompileQueue) Receive(ctx context.Context) (domain.CompileJob, domain.CompileAckFunc, error) {
	deliveries, err := q.consumer()
	if err != nil {
		return domain.CompileJob{}, nil, err
	}
	select {
	case <-ctx.Done():
		return domain.CompileJob{}, nil, ctx.Err()
	case d, ok := <-deliveries:
		if !ok {
			return domain.CompileJob{}, nil, errors.New("rabbitmq: delivery channel closed")
		}
		var job domain.CompileJob
		if err := json.Unmarshal(d.Body, &job); err != nil {
			_ = d.Nack(false, false)
			return domain.CompileJob{}, nil, fmt.Errorf("decode job: %w", err)
		}
		ack := func(success bool) error {
			if success {
				return d.Ack(false)
			}
			return d.Nack(false, true)
		}
		return job, ack, nil
	}
}

// Close releases the channel and connection.
func (q *RabbitCompileQueue) Close() error {
	if err := q.ch.Close(); err != nil {
		q.conn.Close()
		return err
	}
	return q.conn.Close()
}

func (q *RabbitCompileQueue) consumer() (<-chan amqp.Delivery, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.deliveries != nil {
		return q.deliveries, nil
	}
	deliveries, err := q.ch.Consume(q.queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("start consumer: %w", err)
	}
	q.deliveries = deliveries
	return deliveries, nil
}
