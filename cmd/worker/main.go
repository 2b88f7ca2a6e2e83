package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/sync/errgroup"

	"github.com/CiZaii/ai-middle-platform/internal/queue"
	"github.com/CiZaii/ai-middle-platform/internal/util"
	"github.com/CiZaii/ai-middle-platform/pkg/graph"
	"github.com/CiZaii/ai-middle-platform/pkg/llm"
	"github.com/CiZaii/ai-middle-platform/pkg/llm/provider"
	"github.com/CiZaii/ai-middle-platform/pkg/logger"
	"github.com/CiZaii/ai-middle-platform/pkg/store"
	neostore "github.com/CiZaii/ai-middle-platform/pkg/store/neo4j"
	pgxstore "github.com/CiZaii/ai-middle-platform/pkg/store/pgx"
)

// maxDeliveryRetries is how often a failed job is requeued before it goes
// to the dead-letter queue.
const maxDeliveryRetries = 10

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Init(util.GetEnvBool("DEBUG", false))

	// Init pgx client
	pgConn, err := pgxpool.New(ctx, util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Unable to connect to database", "err", err)
	}
	defer pgConn.Close()
	db := pgxstore.New(pgConn)

	// Init neo4j client
	graphs, err := util.RetryWithContext(ctx, 3, func(ctx context.Context) (*neostore.Client, error) {
		return neostore.Connect(ctx, neostore.Config{
			URI:      util.GetEnv("NEO4J_URI"),
			Username: util.GetEnv("NEO4J_USER"),
			Password: util.GetEnv("NEO4J_PASSWORD"),
			Database: util.GetEnvString("NEO4J_DATABASE", "neo4j"),
		})
	})
	if err != nil {
		logger.Fatal("Unable to connect to neo4j", "err", err)
	}
	defer graphs.Close(ctx)

	executor := llm.NewExecutor(llm.ExecutorParams{
		Configs: db,
		Factory: provider.NewChatClient,
	})

	generator := graph.NewGenerator(graph.NewGeneratorParams{
		Executor:        executor,
		Templates:       db,
		Documents:       db,
		Graphs:          graphs,
		PagesPerRequest: util.GetEnvInt("KG_PAGES_PER_REQUEST", 3),
		TokenEncoder:    util.GetEnvString("KG_TOKEN_ENCODER", "o200k_base"),
		MaxPromptTokens: util.GetEnvInt("KG_MAX_PROMPT_TOKENS", 32000),
	})

	// Init rabbitmq
	conn := queue.Init()
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch, []string{queue.GenerateQueue}); err != nil {
		logger.Fatal("Failed to setup queues", "err", err)
	}

	parallelJobs := util.GetEnvInt("KG_PARALLEL_JOBS", 2)

	consumerCh, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open consumer channel", "err", err)
	}
	defer consumerCh.Close()

	if err := consumerCh.Qos(parallelJobs, 0, false); err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	msgs, err := consumerCh.Consume(
		queue.GenerateQueue,
		"kg_worker",
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		logger.Fatal("Failed to start consuming", "queue", queue.GenerateQueue, "err", err)
	}

	logger.Info("Listening for messages", "queue", queue.GenerateQueue, "parallel_jobs", parallelJobs)

	eg := &errgroup.Group{}
	eg.SetLimit(parallelJobs)

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case msg, ok := <-msgs:
			if !ok {
				logger.Info("Message channel closed")
				break loop
			}
			eg.Go(func() error {
				handleDelivery(ctx, generator, db, consumerCh, msg)
				return nil
			})
		}
	}

	logger.Info("Shutdown signal received, waiting for running jobs")
	eg.Wait()
}

func handleDelivery(ctx context.Context, generator *graph.Generator, statuses store.GenerationStatusStorage, ch *amqp.Channel, msg amqp.Delivery) {
	startTime := time.Now()
	logger.Info("Received message", "queue", queue.GenerateQueue)

	err := queue.ProcessGenerateMessage(ctx, generator, statuses, msg.Body)
	if err != nil {
		logger.Error("Error processing message", "queue", queue.GenerateQueue, "err", err)
		handleProcessingError(ch, msg, queue.GenerateQueue)
		return
	}

	if err := msg.Ack(false); err != nil {
		logger.Error("Failed to ack message", "err", err)
	}
	logger.Info("Message processed successfully",
		"queue", queue.GenerateQueue,
		"duration", time.Since(startTime).Round(time.Second).String(),
	)
}

func handleProcessingError(ch *amqp.Channel, msg amqp.Delivery, queueName string) {
	retries := 0
	if val, ok := msg.Headers["x-retries"]; ok {
		if v, ok := val.(int32); ok {
			retries = int(v)
		}
	}

	if retries >= maxDeliveryRetries {
		dlqName := queueName + "_dlq"
		logger.Info("Sending message to DLQ", "dlq", dlqName)
		pubErr := ch.Publish(
			"",
			dlqName,
			false,
			false,
			amqp.Publishing{
				ContentType: "application/json",
				Body:        msg.Body,
				Headers:     msg.Headers,
			},
		)
		if pubErr != nil {
			logger.Error("Failed to publish to DLQ", "dlq", dlqName, "err", pubErr)
			msg.Nack(false, true)
			return
		}
		msg.Ack(false)
		return
	}

	retryName := queueName + "_retry"
	headers := msg.Headers
	if headers == nil {
		headers = amqp.Table{}
	}
	headers["x-retries"] = int32(retries + 1)

	pubErr := ch.Publish(
		"",
		retryName,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        msg.Body,
			Headers:     headers,
		},
	)
	if pubErr != nil {
		logger.Error("Failed to publish to retry queue", "retry_queue", retryName, "err", pubErr)
		msg.Nack(false, true)
		return
	}
	msg.Ack(false)
}
