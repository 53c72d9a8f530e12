package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wayfare-dev/wayfare/internal/infra/config"
)

func newRetentionFixture(accounts *mockAccountRepository, window time.Duration) *RetentionService {
	cfg := &config.AppConfig{}
	cfg.Retention.InactiveFor = window
	return NewRetentionService(cfg, accounts, nil)
}

func TestRetentionService_Sweep(t *testing.T) {
	accounts := &mockAccountRepository{countStaleResult: 4, deleteStaleResult: 4}
	service := newRetentionFixture(accounts, 60*24*time.Hour)

	fixedNow := time.Date(2025, 5, 1, 3, 0, 0, 0, time.UTC)
	service.WithClock(func() time.Time { return fixedNow })

	deleted, err := service.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}
	if deleted != 4 {
		t.Fatalf("expected 4 deletions, got %d", deleted)
	}

	wantCutoff := fixedNow.Add(-60 * 24 * time.Hour)
	if !accounts.countStaleCutoff.Equal(wantCutoff) {
		t.Fatalf("expected count cutoff %v, got %v", wantCutoff, accounts.countStaleCutoff)
	}
	if !accounts.deleteStaleCutoff.Equal(wantCutoff) {
		t.Fatalf("expected delete cutoff %v, got %v", wantCutoff, accounts.deleteStaleCutoff)
	}
}

func TestRetentionService_SweepNothingPending(t *testing.T) {
	accounts := &mockAccountRepository{countStaleResult: 0}
	service := newRetentionFixture(accounts, 60*24*time.Hour)

	deleted, err := service.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("expected no deletions, got %d", deleted)
	}
	if accounts.deleteStaleCalls != 0 {
		t.Fatalf("expected no delete when nothing pending, got %d", accounts.deleteStaleCalls)
	}
}

func TestRetentionService_SweepCountError(t *testing.T) {
	accounts := &mockAccountRepository{countStaleErr: errors.New("db down")}
	service := newRetentionFixture(accounts, 60*24*time.Hour)

	if _, err := service.Sweep(context.Background()); err == nil {
		t.Fatalf("expected error when count fails")
	}
	if accounts.deleteStaleCalls != 0 {
		t.Fatalf("expected no delete after count failure")
	}
}

func TestRetentionService_DefaultWindow(t *testing.T) {
	accounts := &mockAccountRepository{countStaleResult: 1, deleteStaleResult: 1}
	service := newRetentionFixture(accounts, 0)

	fixedNow := time.Date(2025, 5, 1, 3, 0, 0, 0, time.UTC)
	service.WithClock(func() time.Time { return fixedNow })

	if _, err := service.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}

	wantCutoff := fixedNow.Add(-60 * 24 * time.Hour)
	if !accounts.countStaleCutoff.Equal(wantCutoff) {
		t.Fatalf("expected 60 day default window, got cutoff %v", accounts.countStaleCutoff)
	}
}
