// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the chat server.
//
// Fields:
//   - EndpointAddrGRPC: bind address for the MessageMain gRPC endpoint.
//   - Password: shared server password checked on Connect. Empty means none.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty keeps the ledger in memory.
//   - MetricsAddr: bind address for the Prometheus /metrics endpoint. Empty disables it.
//   - SecretSize: length in bytes of the session secret issued on Connect. Must be positive.
//   - S3RootUser / S3RootPassword: credentials for the S3-compatible byte-store.
//   - S3Bucket / S3Region / S3BaseEndpoint: object storage settings. An empty
//     bucket keeps uploaded bytes in PostgreSQL or, without a DSN, in memory.
//   - LogLevel: debug, info, warn or error.
//   - ShutdownTimeout: how long a graceful stop may take before connections are cut.
type Config struct {
	EndpointAddrGRPC string
	Password         string
	DatabaseDSN      string
	MetricsAddr      string
	SecretSize       int
	S3RootUser       string
	S3RootPassword   string
	S3Bucket         string
	S3Region         string
	S3BaseEndpoint   string
	LogLevel         string
	ShutdownTimeout  time.Duration
}

// LoadDefaults populates Config with development defaults: an open server
// with in-memory storage.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.Password = ""
	c.DatabaseDSN = ""
	c.MetricsAddr = ""
	c.SecretSize = 32
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = ""
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.LogLevel = "info"
	c.ShutdownTimeout = 10 * time.Second
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.SecretSize <= 0 {
		return fmt.Errorf("secret size must be positive, got %d", c.SecretSize)
	}
	return nil
}
