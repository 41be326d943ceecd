package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/maplemarket/api/internal/domain"
)

func TestProbeHealthRepositoryCollectSuccess(t *testing.T) {
	probes := []DependencyProbe{
		{
			Name: "firestore",
			Probe: func(ctx context.Context) error {
				select {
				case <-time.After(10 * time.Millisecond):
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			},
		},
	}

	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	repo, err := NewProbeHealthRepository(probes,
		WithProbeClock(func() time.Time { return now }),
	)
	if err != nil {
		t.Fatalf("NewProbeHealthRepository: %v", err)
	}

	report, err := repo.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if report.Status != domain.HealthStatusOK {
		t.Fatalf("expected status ok, got %s", report.Status)
	}
	check := report.Checks["firestore"]
	if check.Status != domain.HealthStatusOK {
		t.Fatalf("expected firestore ok, got %s", check.Status)
	}
	if check.CheckedAt != now {
		t.Fatalf("expected checkedAt %s, got %s", now, check.CheckedAt)
	}
	if report.GeneratedAt != now {
		t.Fatalf("expected generatedAt %s, got %s", now, report.GeneratedAt)
	}
}

func TestProbeHealthRepositoryCollectFailure(t *testing.T) {
	expectedErr := errors.New("boom")
	probes := []DependencyProbe{
		{
			Name: "firestore",
			Probe: func(context.Context) error {
				return expectedErr
			},
		},
		{
			Name: "catalog",
			Probe: func(context.Context) error {
				return nil
			},
		},
	}

	repo, err := NewProbeHealthRepository(probes)
	if err != nil {
		t.Fatalf("NewProbeHealthRepository: %v", err)
	}

	report, err := repo.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if report.Status != domain.HealthStatusDegraded {
		t.Fatalf("expected status degraded, got %s", report.Status)
	}
	check := report.Checks["firestore"]
	if check.Status != domain.HealthStatusDegraded {
		t.Fatalf("expected firestore degraded, got %s", check.Status)
	}
	if check.Error != expectedErr.Error() {
		t.Fatalf("expected error %q, got %q", expectedErr.Error(), check.Error)
	}
}

func TestProbeHealthRepositoryCollectTimeout(t *testing.T) {
	probes := []DependencyProbe{
		{
			Name:    "firestore",
			Timeout: 5 * time.Millisecond,
			Probe: func(ctx context.Context) error {
				select {
				case <-time.After(20 * time.Millisecond):
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			},
		},
	}

	repo, err := NewProbeHealthRepository(probes)
	if err != nil {
		t.Fatalf("NewProbeHealthRepository: %v", err)
	}

	report, err := repo.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if report.Status != domain.HealthStatusError {
		t.Fatalf("expected status error, got %s", report.Status)
	}
	check := report.Checks["firestore"]
	if check.Detail != "timeout" {
		t.Fatalf("expected detail timeout, got %s", check.Detail)
	}
}

func TestProbeHealthRepositoryRejectsUnnamedProbe(t *testing.T) {
	_, err := NewProbeHealthRepository([]DependencyProbe{{Probe: func(context.Context) error { return nil }}})
	if err == nil {
		t.Fatal("expected error for unnamed probe")
	}
}
