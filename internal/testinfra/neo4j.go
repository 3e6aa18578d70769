// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultNeo4jImage is the community edition used by integration tests.
	DefaultNeo4jImage = "neo4j:5-community"

	// DefaultNeo4jBoltPort is the Bolt protocol port inside the container.
	DefaultNeo4jBoltPort = "7687"

	// DefaultNeo4jUsername is the built-in admin user.
	DefaultNeo4jUsername = "neo4j"

	// DefaultNeo4jPassword satisfies Neo4j's eight character minimum.
	DefaultNeo4jPassword = "tunegraph-test"
)

// Neo4jContainer is a running Neo4j server for tests.
type Neo4jContainer struct {
	testcontainers.Container
	URI      string
	Username string
	Password string
}

// Neo4jOption configures the Neo4j container.
type Neo4jOption func(*neo4jConfig)

type neo4jConfig struct {
	image        string
	password     string
	startTimeout time.Duration
}

// WithNeo4jImage sets a custom Neo4j image.
func WithNeo4jImage(image string) Neo4jOption {
	return func(c *neo4jConfig) {
		c.image = image
	}
}

// WithNeo4jPassword sets the password of the neo4j user.
func WithNeo4jPassword(password string) Neo4jOption {
	return func(c *neo4jConfig) {
		c.password = password
	}
}

// WithNeo4jStartTimeout sets how long to wait for Bolt to accept connections.
func WithNeo4jStartTimeout(timeout time.Duration) Neo4jOption {
	return func(c *neo4jConfig) {
		c.startTimeout = timeout
	}
}

// NewNeo4jContainer starts a Neo4j container and waits until Bolt is up.
//
//	neo, err := testinfra.NewNeo4jContainer(ctx)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer testinfra.CleanupContainer(t, ctx, neo)
//
//	store, err := neo4jstore.Open(ctx, neo4jstore.Config{URI: neo.URI, Username: neo.Username, Password: neo.Password})
func NewNeo4jContainer(ctx context.Context, opts ...Neo4jOption) (*Neo4jContainer, error) {
	cfg := &neo4jConfig{
		image:        DefaultNeo4jImage,
		password:     DefaultNeo4jPassword,
		startTimeout: 120 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{DefaultNeo4jBoltPort + "/tcp"},
		Env: map[string]string{
			"NEO4J_AUTH":                         DefaultNeo4jUsername + "/" + cfg.password,
			"NEO4J_server_memory_heap_max__size": "512m",
			"NEO4J_server_memory_pagecache_size": "128m",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(DefaultNeo4jBoltPort+"/tcp"),
			wait.ForLog("Started."),
		).WithStartupTimeout(cfg.startTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create neo4j container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, DefaultNeo4jBoltPort)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mapped port: %w", err)
	}

	return &Neo4jContainer{
		Container: container,
		URI:       fmt.Sprintf("neo4j://%s:%s", host, port.Port()),
		Username:  DefaultNeo4jUsername,
		Password:  cfg.password,
	}, nil
}

// Logs returns the container logs for debugging.
func (c *Neo4jContainer) Logs(ctx context.Context) (string, error) {
	reader, err := c.Container.Logs(ctx)
	if err != nil {
		return "", fmt.Errorf("get logs: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read logs: %w", err)
	}
	return string(data), nil
}
