package middleware

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/CiZaii/ai-middle-platform/pkg/store"
)

// App bundles the shared dependencies handlers need.
type App struct {
	DBConn    *pgxpool.Pool
	Queue     *amqp091.Channel
	Documents store.DocumentStorage
	Statuses  store.GenerationStatusStorage
	Graphs    store.GraphStorage
}

// AppContext wraps the echo context with application state.
type AppContext struct {
	echo.Context
	App *App
}

// AppContextMiddleware attaches the shared application state to every
// request context.
func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return next(&AppContext{Context: c, App: app})
		}
	}
}
