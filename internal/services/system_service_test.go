package services

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/maplemarket/api/internal/domain"
)

type stubHealthRepository struct {
	collectFn func(ctx context.Context) (domain.SystemHealthReport, error)
}

func (s *stubHealthRepository) Collect(ctx context.Context) (domain.SystemHealthReport, error) {
	return s.collectFn(ctx)
}

func TestSystemHealthBackfillsGeneratedAt(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	health := &stubHealthRepository{
		collectFn: func(context.Context) (domain.SystemHealthReport, error) {
			return domain.SystemHealthReport{Status: domain.HealthStatusOK}, nil
		},
	}
	svc, err := NewSystemService(SystemServiceDeps{Health: health, Clock: fixedClock(now)})
	if err != nil {
		t.Fatalf("NewSystemService returned error: %v", err)
	}

	report, err := svc.Health(ctx)
	if err != nil {
		t.Fatalf("Health returned error: %v", err)
	}
	if report.Status != domain.HealthStatusOK {
		t.Fatalf("status = %q, want %q", report.Status, domain.HealthStatusOK)
	}
	if !report.GeneratedAt.Equal(now) {
		t.Fatalf("generated at = %v, want %v", report.GeneratedAt, now)
	}
}

func TestSystemHealthPropagatesCollectFailure(t *testing.T) {
	ctx := context.Background()
	wantErr := errors.New("probe wiring broken")
	health := &stubHealthRepository{
		collectFn: func(context.Context) (domain.SystemHealthReport, error) {
			return domain.SystemHealthReport{}, wantErr
		},
	}
	svc, err := NewSystemService(SystemServiceDeps{Health: health})
	if err != nil {
		t.Fatalf("NewSystemService returned error: %v", err)
	}

	if _, err := svc.Health(ctx); !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want %v", err, wantErr)
	}
}
