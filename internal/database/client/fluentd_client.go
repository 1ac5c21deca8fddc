package client

import (
	"context"
	"imagegate/config"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
	"go.uber.org/zap"
)

// Client is a minimal interface to allow mocking in tests.
type Client interface {
	Post(ctx context.Context, tag string, rec map[string]any) error
	Close() error
}

// FluentdClient implements Client using fluent-logger-golang.
type FluentdClient struct {
	client    *fluent.Fluent
	tagPrefix string
}

// NewFluentdClient 建立 Fluentd forward client；未設定 Host 時回傳 NoopClient
func NewFluentdClient(logger *zap.Logger, config *config.Configuration) (Client, func(), error) {
	if config.Fluentd.Host == "" {
		logger.Info("Fluentd host not configured, usage log shipping disabled")
		return &NoopClient{}, func() {}, nil
	}
	prefix := "imagegate"
	if config.Fluentd.TagPrefix != "" {
		prefix = config.Fluentd.TagPrefix
	}
	var timeout time.Duration
	if config.Fluentd.Timeout > 0 {
		timeout = time.Duration(config.Fluentd.Timeout) * time.Millisecond
	}

	fluentLogger, err := fluent.New(fluent.Config{
		FluentHost: config.Fluentd.Host,
		FluentPort: config.Fluentd.Port,
		Timeout:    timeout,
		TagPrefix:  prefix,
		Async:      !config.Fluentd.Sync,
		MaxRetry:   config.Fluentd.MaxRetry,
	})
	if err != nil {
		logger.Error("failed to connect to Fluentd", zap.Error(err))
		return nil, nil, err
	}
	logger.Info("Connected to Fluentd", zap.String("tagPrefix", prefix), zap.Bool("async", !config.Fluentd.Sync))
	fluentdClient := &FluentdClient{client: fluentLogger, tagPrefix: prefix}
	cleanup := func() {
		logger.Info("closing the Fluentd resources")
		if err := fluentdClient.Close(); err != nil {
			logger.Error("failed to close Fluentd client", zap.Error(err))
		}
	}
	return fluentdClient, cleanup, nil
}

func (c *FluentdClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Post sends a record to Fluentd; the configured TagPrefix is prepended by the library.
func (c *FluentdClient) Post(ctx context.Context, tag string, rec map[string]any) error {
	// fluent-logger-golang doesn't support context cancellation directly.
	return c.client.PostWithTime(tag, time.Now(), rec)
}

// --------------------
// Noop client (disabled mode)
// --------------------

type NoopClient struct{}

func (n *NoopClient) Post(ctx context.Context, tag string, rec map[string]any) error { return nil }
func (n *NoopClient) Close() error                                                   { return nil }
