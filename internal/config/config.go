// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Defaults for optional settings.
const (
	DefaultStaleAfter    = 14 * 24 * time.Hour
	DefaultSmallChannel  = 3
	DefaultLookback      = 10
	DefaultPageSize      = 1000
	DefaultConcurrency   = 5
	DefaultSlackAPIURL   = "https://slack.com/api"
	maxPageSize          = 1000
	maxLookback          = 1000
	headerListSeparator  = "|"
	defaultSecondaryLine = "A few channels could use some attention."
)

// DefaultMessageHeaders are used when MESSAGE_HEADERS is unset.
var DefaultMessageHeaders = []string{
	"Hey, you've got some cleaning up to do!",
	"Hey boss, take a look at these, will ya?",
}

// Config holds the application configuration.
type Config struct {
	SlackToken              string
	SlackAPIURL             string
	NotificationChannel     string
	SecondaryChannel        string
	IgnorePrefixes          []string
	StaleAfter              time.Duration
	SmallChannelThreshold   int
	HistoryLookback         int
	PageSize                int
	Concurrency             int
	MessageHeaders          []string
	SecondaryMessageHeaders []string
	TelegramBotToken        string
	TelegramChatIDs         []int64
	LogLevel                string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	token := os.Getenv("SLACK_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("SLACK_BOT_TOKEN is required")
	}

	channel := os.Getenv("SLACK_NOTIFICATION_CHANNEL")
	if channel == "" {
		return nil, fmt.Errorf("SLACK_NOTIFICATION_CHANNEL is required")
	}

	apiURL := os.Getenv("SLACK_API_URL")
	if apiURL == "" {
		apiURL = DefaultSlackAPIURL
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	staleSeconds, err := intEnv("STALE_AFTER_SECONDS", int(DefaultStaleAfter/time.Second), 1, 0)
	if err != nil {
		return nil, err
	}
	small, err := intEnv("SMALL_CHANNEL_THRESHOLD", DefaultSmallChannel, 0, 0)
	if err != nil {
		return nil, err
	}
	lookback, err := intEnv("HISTORY_LOOKBACK", DefaultLookback, 1, maxLookback)
	if err != nil {
		return nil, err
	}
	pageSize, err := intEnv("PAGE_SIZE", DefaultPageSize, 1, maxPageSize)
	if err != nil {
		return nil, err
	}
	concurrency, err := intEnv("CONCURRENCY", DefaultConcurrency, 1, 0)
	if err != nil {
		return nil, err
	}

	headers := splitList(os.Getenv("MESSAGE_HEADERS"), headerListSeparator)
	if len(headers) == 0 {
		headers = DefaultMessageHeaders
	}
	secondaryHeaders := splitList(os.Getenv("SECONDARY_MESSAGE_HEADERS"), headerListSeparator)
	if len(secondaryHeaders) == 0 {
		secondaryHeaders = []string{defaultSecondaryLine}
	}

	var chatIDs []int64
	for _, s := range splitList(os.Getenv("TELEGRAM_CHAT_IDS"), ",") {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chat ID %q in TELEGRAM_CHAT_IDS: %w", s, err)
		}
		chatIDs = append(chatIDs, id)
	}

	return &Config{
		SlackToken:              token,
		SlackAPIURL:             apiURL,
		NotificationChannel:     channel,
		SecondaryChannel:        os.Getenv("SECONDARY_CHANNEL"),
		IgnorePrefixes:          uniq(splitList(os.Getenv("IGNORE_PREFIXES"), ",")),
		StaleAfter:              time.Duration(staleSeconds) * time.Second,
		SmallChannelThreshold:   small,
		HistoryLookback:         lookback,
		PageSize:                pageSize,
		Concurrency:             concurrency,
		MessageHeaders:          headers,
		SecondaryMessageHeaders: secondaryHeaders,
		TelegramBotToken:        os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatIDs:         chatIDs,
		LogLevel:                logLevel,
	}, nil
}

// MirrorEnabled reports whether the Telegram mirror is configured.
func (c *Config) MirrorEnabled() bool {
	return c.TelegramBotToken != "" && len(c.TelegramChatIDs) > 0
}

// intEnv parses an integer variable, applying def when unset. A max of 0
// means unbounded.
func intEnv(key string, def, minVal, maxVal int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if v < minVal || (maxVal > 0 && v > maxVal) {
		if maxVal > 0 {
			return 0, fmt.Errorf("%s must be between %d and %d, got %d", key, minVal, maxVal, v)
		}
		return 0, fmt.Errorf("%s must be at least %d, got %d", key, minVal, v)
	}
	return v, nil
}

func splitList(raw, sep string) []string {
	var out []string
	for _, s := range strings.Split(raw, sep) {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func uniq(items []string) []string {
	var out []string
	seen := make(map[string]bool, len(items))
	for _, s := range items {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
