// Package config builds process configuration from environment variables so
// main stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures everything the process needs at startup. Empty PostgresURL
// selects the in-memory stores; empty KafkaBrokers selects the nop sink.
type Server struct {
	Addr            string
	PostgresURL     string
	RedisURL        string
	KafkaBrokers    []string
	KafkaTopic      string
	NotifyBuffer    int
	ShutdownTimeout time.Duration
}

// FromEnv reads MEDLEDGER_* variables with development defaults.
func FromEnv() Server {
	cfg := Server{
		Addr:            getEnv("MEDLEDGER_ADDR", ":8080"),
		PostgresURL:     os.Getenv("MEDLEDGER_POSTGRES_URL"),
		RedisURL:        os.Getenv("MEDLEDGER_REDIS_URL"),
		KafkaTopic:      getEnv("MEDLEDGER_KAFKA_TOPIC", "medledger.notifications"),
		NotifyBuffer:    getEnvInt("MEDLEDGER_NOTIFY_BUFFER", 256),
		ShutdownTimeout: 10 * time.Second,
	}
	if brokers := os.Getenv("MEDLEDGER_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
