package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/CiZaii/ai-middle-platform/internal/queue"
	mid "github.com/CiZaii/ai-middle-platform/internal/server/middleware"
	"github.com/CiZaii/ai-middle-platform/internal/util"
	"github.com/CiZaii/ai-middle-platform/pkg/logger"
	neostore "github.com/CiZaii/ai-middle-platform/pkg/store/neo4j"
	pgxstore "github.com/CiZaii/ai-middle-platform/pkg/store/pgx"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	databaseURL := util.GetEnv("DATABASE_URL")
	if err := RunMigrations(databaseURL, util.GetEnvString("MIGRATIONS_PATH", "migrations")); err != nil {
		logger.Fatal("Failed to run migrations", "err", err)
	}

	conn, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer conn.Close()

	graphs, err := util.RetryWithContext(ctx, 3, func(ctx context.Context) (*neostore.Client, error) {
		return neostore.Connect(ctx, neostore.Config{
			URI:      util.GetEnv("NEO4J_URI"),
			Username: util.GetEnv("NEO4J_USER"),
			Password: util.GetEnv("NEO4J_PASSWORD"),
			Database: util.GetEnvString("NEO4J_DATABASE", "neo4j"),
		})
	})
	if err != nil {
		logger.Fatal("Failed to connect to neo4j", "err", err)
	}
	defer graphs.Close(ctx)

	que := queue.Init()
	defer que.Close()
	ch, err := que.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}

	if err := queue.SetupQueues(ch, []string{queue.GenerateQueue}); err != nil {
		logger.Fatal("Failed to setup queues", "err", err)
	}

	db := pgxstore.New(conn)
	app := &mid.App{
		DBConn:    conn,
		Queue:     ch,
		Documents: db,
		Statuses:  db,
		Graphs:    graphs,
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	RegisterRoutes(e)

	go func() {
		port := util.GetEnvString("PORT", "8080")
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
