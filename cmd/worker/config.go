package main

import (
	"log"
	"os"
)

// Config holds all configuration for the worker
type Config struct {
	RedisAddr string
}

// loadConfig loads configuration from environment variables
func loadConfig() *Config {
	addr := os.Getenv("REDIS_HOST")
	if addr == "" {
		addr = "localhost:6379"
	}

	cfg := &Config{RedisAddr: addr}
	log.Printf("[Config] Redis: %s", cfg.RedisAddr)
	return cfg
}
