package llm

import (
	"context"
	"time"

	"github.com/mnoushir/portfolio-assistant/internal/observability/metrics"
)

// instrumentedClient records completion latency per provider.
type instrumentedClient struct {
	inner    Client
	provider string
	metrics  *metrics.AgentMetrics
}

// WithMetrics wraps a client so every Complete call is timed. A nil
// metrics registry returns the client unchanged.
func WithMetrics(c Client, provider string, m *metrics.AgentMetrics) Client {
	if m == nil {
		return c
	}
	return &instrumentedClient{inner: c, provider: provider, metrics: m}
}

func (c *instrumentedClient) Complete(ctx context.Context, req Request) (Response, error) {
	start := time.Now()
	resp, err := c.inner.Complete(ctx, req)
	c.metrics.ObserveLLMLatency(c.provider, time.Since(start).Seconds())
	return resp, err
}

func (c *instrumentedClient) Close() error {
	return c.inner.Close()
}
