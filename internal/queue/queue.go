package queue

import (
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/CiZaii/ai-middle-platform/internal/util"
	"github.com/CiZaii/ai-middle-platform/pkg/logger"
)

// GenerateQueue carries knowledge-graph generation jobs.
const GenerateQueue = "kg_queue"

// retryDelayMs is how long a failed message waits in the retry queue
// before being dead-lettered back to the work queue.
const retryDelayMs = 10000

func Init() *amqp091.Connection {
	user := util.GetEnv("RABBITMQ_USER")
	pass := util.GetEnv("RABBITMQ_PASSWORD")
	host := util.GetEnv("RABBITMQ_HOST")
	port := util.GetEnv("RABBITMQ_PORT")

	connURL := fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		user,
		pass,
		host,
		port,
	)

	// The broker may still be starting when the process comes up.
	conn, err := util.Retry(5, func() (*amqp091.Connection, error) {
		conn, err := amqp091.Dial(connURL)
		if err != nil {
			logger.Warn("RabbitMQ not reachable yet", "err", err)
			time.Sleep(2 * time.Second)
		}
		return conn, err
	})
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", "err", err)
	}

	return conn
}

// SetupQueues declares each work queue together with its dead-letter
// queue and its delayed retry queue. The retry queue dead-letters back to
// the work queue after its TTL expires.
func SetupQueues(ch *amqp091.Channel, queueNames []string) error {
	for _, name := range queueNames {
		_, err := ch.QueueDeclare(
			name,
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,   // args
		)
		if err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", name, err)
		}

		dlqName := name + "_dlq"
		_, err = ch.QueueDeclare(
			dlqName,
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", dlqName, err)
		}

		retryName := name + "_retry"
		_, err = ch.QueueDeclare(
			retryName,
			true,
			false,
			false,
			false,
			amqp091.Table{
				"x-message-ttl":             int32(retryDelayMs),
				"x-dead-letter-exchange":    "",
				"x-dead-letter-routing-key": name,
			},
		)
		if err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", retryName, err)
		}
	}

	return nil
}

// PublishFIFO publishes a persistent message to the named queue.
func PublishFIFO(ch *amqp091.Channel, queueName string, data []byte) error {
	q, err := ch.QueueDeclare(
		queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	publishing := amqp091.Publishing{
		ContentType:  "application/json",
		Body:         data,
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
	}

	return ch.Publish(
		"",
		q.Name,
		false,
		false,
		publishing,
	)
}
