package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration for the bot process.
type Config struct {
	TelegramAPIBase   string
	PollTimeout       int
	SleepSeconds      int
	DropPending       bool
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	CompletionTimeout time.Duration
	EventLogPath      string
	SessionMaxIdle    time.Duration
	EvictInterval     time.Duration
	BreakerThreshold  int
	BreakerCooldown   time.Duration
}

// Load reads configuration from environment variables. TELEGRAM_BOT_TOKEN
// and OPENAI_API_KEY are required.
func Load() (Config, error) {
	telegramToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	if telegramToken == "" {
		return Config{}, fmt.Errorf("TELEGRAM_BOT_TOKEN is required in environment")
	}
	openaiKey := os.Getenv("OPENAI_API_KEY")
	if openaiKey == "" {
		return Config{}, fmt.Errorf("OPENAI_API_KEY is required in environment")
	}

	return Config{
		TelegramAPIBase:   fmt.Sprintf("%s/bot%s", envOrDefault("TELEGRAM_API_URL", "https://api.telegram.org"), telegramToken),
		PollTimeout:       envIntOrDefault("TG_TIMEOUT", 30),
		SleepSeconds:      envIntOrDefault("TG_SLEEP_SECONDS", 1),
		DropPending:       envBoolOrDefault("TG_DROP_PENDING", true),
		OpenAIAPIKey:      openaiKey,
		OpenAIBaseURL:     os.Getenv("OPENAI_BASE_URL"),
		CompletionTimeout: envDurationOrDefault("OPENAI_TIMEOUT_SECONDS", 60*time.Second),
		EventLogPath:      envOrDefault("SOLACE_EVENTLOG_PATH", "solace-events.db"),
		SessionMaxIdle:    envDurationOrDefault("SESSION_MAX_IDLE_SECONDS", 24*time.Hour),
		EvictInterval:     envDurationOrDefault("SESSION_EVICT_INTERVAL_SECONDS", time.Hour),
		BreakerThreshold:  envIntOrDefault("POLL_BREAKER_THRESHOLD", 5),
		BreakerCooldown:   envDurationOrDefault("POLL_BREAKER_COOLDOWN_SECONDS", 30*time.Second),
	}, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBoolOrDefault(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v == "1" || strings.EqualFold(v, "true")
}

func envDurationOrDefault(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}
