package grpc

import (
	"context"
	"testing"

	"github.com/DRSN-tech/cartify-backend/internal/cfg"
	"github.com/DRSN-tech/cartify-backend/pkg/logger"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestGRPCServer_SetServing(t *testing.T) {
	s := NewGRPCServer(&cfg.GRPCConfig{Port: "0", NetworkMode: "tcp"}, logger.NewNopLogger())

	s.SetServing(ServiceChat, false)
	s.SetServing(ServiceCatalog, true)

	ctx := context.Background()
	res, err := s.health.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceCatalog})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("catalog status = %v", res.GetStatus())
	}

	res, err = s.health.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceChat})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.GetStatus() != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Errorf("chat status = %v", res.GetStatus())
	}

	if _, err := s.health.Check(ctx, &healthpb.HealthCheckRequest{Service: "unknown"}); err == nil {
		t.Error("unknown service reported")
	}
}
