package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	defaultAddr         = "127.0.0.1:8071"
	defaultStepInterval = time.Second
	defaultCacheTTL     = time.Hour
)

type Config struct {
	DBPath       string
	Addr         string
	StepInterval time.Duration

	OpenAIKey   string
	OpenAIModel string

	RedisAddr string
	CacheTTL  time.Duration
}

func LoadConfig(args []string) (Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, fmt.Errorf("failed to get cwd: %w", err)
	}

	// Set-but-empty disables the event log, same as -db="".
	dbPath := filepath.Join(cwd, "wavefront.db")
	if v, ok := os.LookupEnv("WAVEFRONT_DB_PATH"); ok {
		dbPath = v
	}
	addr := envOrDefault("WAVEFRONT_ADDR", defaultAddr)
	stepInterval := defaultStepInterval
	if v := os.Getenv("WAVEFRONT_STEP_INTERVAL"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid WAVEFRONT_STEP_INTERVAL: %w", err)
		}
		stepInterval = parsed
	}
	redisAddr := os.Getenv("WAVEFRONT_REDIS_ADDR")
	cacheTTL := defaultCacheTTL
	if v := os.Getenv("WAVEFRONT_CACHE_TTL"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid WAVEFRONT_CACHE_TTL: %w", err)
		}
		cacheTTL = parsed
	}

	flagSet := flag.NewFlagSet("wavefront-d", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagDB := flagSet.String("db", dbPath, "path to SQLite database (empty disables the event log)")
	flagAddr := flagSet.String("addr", addr, "HTTP listen address")
	flagStepInterval := flagSet.String("step-interval", stepInterval.String(), "traversal step interval")
	flagRedis := flagSet.String("redis", redisAddr, "Redis address for the narration cache (empty disables)")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			flagSet.SetOutput(os.Stdout)
			flagSet.PrintDefaults()
			return Config{}, err
		}
		return Config{}, err
	}

	stepIntervalParsed, err := time.ParseDuration(*flagStepInterval)
	if err != nil {
		return Config{}, fmt.Errorf("invalid step interval: %w", err)
	}
	if stepIntervalParsed <= 0 {
		return Config{}, errors.New("step interval must be positive")
	}

	config := Config{
		DBPath:       resolvePath(*flagDB, cwd),
		Addr:         strings.TrimSpace(*flagAddr),
		StepInterval: stepIntervalParsed,
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:  os.Getenv("WAVEFRONT_OPENAI_MODEL"),
		RedisAddr:    strings.TrimSpace(*flagRedis),
		CacheTTL:     cacheTTL,
	}

	if config.Addr == "" {
		return Config{}, errors.New("addr cannot be empty")
	}

	return config, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func resolvePath(path string, cwd string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return trimmed
	}
	if filepath.IsAbs(trimmed) {
		return trimmed
	}
	return filepath.Join(cwd, trimmed)
}
