// Package neo4j implements the graph side of the platform: idempotent
// document-graph persistence and the viewer read path.
package neo4j

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Config holds the Neo4j connection parameters.
type Config struct {
	URI      string
	Username string
	Password string
	Database string
}

// Client wraps a Neo4j driver scoped to one database.
type Client struct {
	driver   neo4j.DriverWithContext
	database string
}

// Connect creates a Client and verifies connectivity before returning.
func Connect(ctx context.Context, config Config) (*Client, error) {
	if config.URI == "" {
		return nil, fmt.Errorf("neo4j URI is required")
	}

	driver, err := neo4j.NewDriverWithContext(config.URI, neo4j.BasicAuth(config.Username, config.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("neo4j connection test failed: %w", err)
	}

	return &Client{driver: driver, database: config.Database}, nil
}

// Close releases the underlying driver.
func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

func (c *Client) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return c.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: c.database,
	})
}
