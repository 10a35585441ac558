package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/flightlog/cli/config"
)

// loadSettings loads --config (or ./flightlog.yaml) and overlays the flags
// the user set explicitly. Flag defaults never shadow config values.
func loadSettings(c *cli.Context) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadDefault(".")
	}
	if err != nil {
		return nil, err
	}

	if c.IsSet("reader") || cfg.Reader == "" {
		cfg.Reader = c.String("reader")
	}
	if c.IsSet("dir") {
		cfg.Directory = c.String("dir")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("threshold") {
		v := c.Float64("threshold")
		cfg.MovementThreshold = &v
	}
	if c.IsSet("pilot") {
		cfg.Pilot = c.String("pilot")
	}
	if c.IsSet("cache-dir") {
		cfg.CacheDir = c.String("cache-dir")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}

	overlayStorage(c, &cfg.Storage)
	if err := overlayAdapter(c, &cfg.Adapter); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overlayStorage(c *cli.Context, s *config.StorageConfig) {
	if c.IsSet("storage-dataset") {
		s.Dataset = c.String("storage-dataset")
	}
	if c.IsSet("storage-backend") {
		s.Backend = c.String("storage-backend")
	}
	if c.IsSet("storage-path") {
		s.Path = c.String("storage-path")
	}
	if c.IsSet("storage-region") {
		s.Region = c.String("storage-region")
	}
	if c.IsSet("storage-endpoint") {
		s.Endpoint = c.String("storage-endpoint")
	}
	if c.IsSet("storage-s3-path-style") {
		s.S3PathStyle = c.Bool("storage-s3-path-style")
	}
}

func overlayAdapter(c *cli.Context, a *config.AdapterConfig) error {
	if c.IsSet("adapter") {
		a.Type = c.String("adapter")
	}
	if c.IsSet("adapter-url") {
		a.URL = c.String("adapter-url")
	}
	if c.IsSet("adapter-channel") {
		a.Channel = c.String("adapter-channel")
	}
	if c.IsSet("adapter-header") {
		headers, err := parseHeaders(c.StringSlice("adapter-header"))
		if err != nil {
			return err
		}
		if a.Headers == nil {
			a.Headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			a.Headers[k] = v
		}
	}
	if c.IsSet("adapter-timeout") {
		a.Timeout = config.Duration{Duration: c.Duration("adapter-timeout")}
	}
	if c.IsSet("adapter-retries") {
		v := c.Int("adapter-retries")
		a.Retries = &v
	}
	return nil
}

// parseHeaders parses Key=Value pairs.
func parseHeaders(pairs []string) (map[string]string, error) {
	headers := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --adapter-header %q: must be Key=Value", p)
		}
		headers[k] = v
	}
	return headers, nil
}

// publishTimeout bounds the whole adapter publish including retries.
func publishTimeout(a config.AdapterConfig) time.Duration {
	per := a.Timeout.Duration
	if per <= 0 {
		per = 10 * time.Second
	}
	attempts := 4
	if a.Retries != nil {
		attempts = *a.Retries + 1
	}
	return time.Duration(attempts) * per * 2
}
