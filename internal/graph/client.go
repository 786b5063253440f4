// Package graph answers faculty, institute and keyword relationship queries
// against Neo4j.
package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"fieldexplorer/internal/storage"
)

const storeName = "neo4j"

// Runner executes a parameterized Cypher query and returns all records.
type Runner interface {
	Run(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error)
}

// Client owns a Neo4j driver and opens one read session per query.
type Client struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewClient creates a driver for uri and verifies connectivity.
func NewClient(ctx context.Context, uri, user, password, database string) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", storage.Unavailable(storeName, "connect", err))
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to reach neo4j: %w", storage.Unavailable(storeName, "connect", err))
	}

	return &Client{driver: driver, database: database}, nil
}

// Run executes cypher in an auto-commit read session. The session is closed
// on every path.
func (c *Client) Run(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: c.database,
	})
	defer session.Close(ctx)

	result, err := session.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return result.Collect(ctx)
}

// Ping verifies the driver can reach the server.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.driver.VerifyConnectivity(ctx); err != nil {
		return storage.Unavailable(storeName, "ping", err)
	}
	return nil
}

// Close closes the driver.
func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

// classify maps a driver error onto the storage error classes.
func classify(op string, err error) error {
	if err == nil || storage.IsClassified(err) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || neo4j.IsConnectivityError(err) {
		return storage.Unavailable(storeName, op, err)
	}

	var neoErr *neo4j.Neo4jError
	if errors.As(err, &neoErr) {
		if strings.HasPrefix(neoErr.Code, "Neo.ClientError.Security.") ||
			neoErr.Code == "Neo.TransientError.General.DatabaseUnavailable" {
			return storage.Unavailable(storeName, op, err)
		}
	}

	return storage.QueryFailed(storeName, op, err)
}
