package cmd

import (
	"fmt"

	"github.com/justapithecus/flightlog/adapter"
	"github.com/justapithecus/flightlog/adapter/redis"
	"github.com/justapithecus/flightlog/adapter/webhook"
	"github.com/justapithecus/flightlog/cli/config"
)

// newAdapter builds the configured completion adapter, nil when none is
// configured.
func newAdapter(cfg config.AdapterConfig) (adapter.Adapter, error) {
	switch cfg.Type {
	case "":
		return nil, nil
	case config.AdapterWebhook:
		retries := webhook.DefaultRetries
		if cfg.Retries != nil {
			retries = *cfg.Retries
		}
		return webhook.New(webhook.Config{
			URL:     cfg.URL,
			Headers: cfg.Headers,
			Timeout: cfg.Timeout.Duration,
			Retries: retries,
		})
	case config.AdapterRedis:
		retries := redis.DefaultRetries
		if cfg.Retries != nil {
			retries = *cfg.Retries
		}
		return redis.New(redis.Config{
			URL:     cfg.URL,
			Channel: cfg.Channel,
			Timeout: cfg.Timeout.Duration,
			Retries: retries,
		})
	default:
		return nil, fmt.Errorf("unknown adapter %q", cfg.Type)
	}
}
