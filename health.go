package intelinfo

import (
	"context"

	"github.com/intelinfo/intelinfo-go/internal/tracing"
)

// HealthService exposes the backend liveness probes. Probe bodies are
// returned as raw text; the probes are content-agnostic.
type HealthService struct {
	client *Client
}

func (s *HealthService) Ping(ctx context.Context) (string, error) {
	return s.probe(ctx, "ping", "/ping")
}

func (s *HealthService) Health(ctx context.Context) (string, error) {
	return s.probe(ctx, "health", "/health")
}

func (s *HealthService) Ready(ctx context.Context) (string, error) {
	return s.probe(ctx, "ready", "/ready")
}

func (s *HealthService) Startup(ctx context.Context) (string, error) {
	return s.probe(ctx, "startup", "/startup")
}

func (s *HealthService) Test(ctx context.Context) (string, error) {
	return s.probe(ctx, "test", "/test")
}

func (s *HealthService) Debug(ctx context.Context) (string, error) {
	return s.probe(ctx, "debug", "/debug")
}

func (s *HealthService) probe(ctx context.Context, name, endpoint string) (string, error) {
	return tracing.Trace(ctx, "health."+name, func(ctx context.Context) (string, error) {
		return s.client.doText(ctx, endpoint, requestOptions{})
	})
}
