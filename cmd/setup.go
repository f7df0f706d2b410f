package cmd

import (
	"fmt"
	"time"

	"s3-utils/core/config"
	"s3-utils/core/enumerate"
	"s3-utils/core/logger"
	"s3-utils/core/render"
	"s3-utils/core/retry"
	"s3-utils/core/storage"

	"go.uber.org/zap"
)

// runtime bundles the dependencies every command starts from.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	client storage.Client
	policy *retry.Policy
}

func newRuntime() (*runtime, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to storage: %w", err)
	}

	return &runtime{
		cfg:    cfg,
		logger: l,
		client: client,
		policy: retry.NewPolicy(cfg.Retry, l),
	}, nil
}

// parseFilter builds an object filter from the common flag values.
func parseFilter(prefix, suffix, after, before string) (enumerate.Filter, error) {
	filter := enumerate.Filter{Prefix: prefix, Suffix: suffix}

	if after != "" {
		t, err := parseTime(after)
		if err != nil {
			return enumerate.Filter{}, fmt.Errorf("invalid --after value: %w", err)
		}
		filter.After = t
	}
	if before != "" {
		t, err := parseTime(before)
		if err != nil {
			return enumerate.Filter{}, fmt.Errorf("invalid --before value: %w", err)
		}
		filter.Before = t
	}
	return filter, nil
}

// parseTime accepts RFC 3339 timestamps or plain dates.
func parseTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func parseUnits(value string) (render.Units, error) {
	units := render.Units(value)
	if !units.Valid() {
		return "", fmt.Errorf("invalid --units value %q (expected binary or decimal)", value)
	}
	return units, nil
}
