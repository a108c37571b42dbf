package slot

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"supperclub/internal/domain"
)

func setupTestService(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:slot_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := db.AutoMigrate(&domain.EventSlot{}); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	return NewService(db)
}

func createSlot(t *testing.T, svc *Service, maxGuests int) *domain.EventSlot {
	t.Helper()
	slot, err := svc.Create(context.Background(), 1, CreateSlotRequest{
		Title:        "Dinner at ours",
		PricePerSeat: 5000,
		MaxGuests:    maxGuests,
		StartAt:      time.Now().Add(48 * time.Hour),
		EndAt:        time.Now().Add(52 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	return slot
}

func TestReserveDecrementsAndFlipsToFull(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	slot := createSlot(t, svc, 2)

	if err := svc.Reserve(ctx, slot.ID, 1); err != nil {
		t.Fatalf("Reserve returned error: %v", err)
	}
	got, _ := svc.GetByID(ctx, slot.ID)
	if got.SeatsRemaining != 1 || got.Status != domain.SlotOpen {
		t.Fatalf("expected 1 seat OPEN, got %d %s", got.SeatsRemaining, got.Status)
	}

	if err := svc.Reserve(ctx, slot.ID, 1); err != nil {
		t.Fatalf("Reserve returned error: %v", err)
	}
	got, _ = svc.GetByID(ctx, slot.ID)
	if got.SeatsRemaining != 0 || got.Status != domain.SlotFull {
		t.Fatalf("expected 0 seats FULL, got %d %s", got.SeatsRemaining, got.Status)
	}
}

func TestReserveDeniedWhenShortOnSeats(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	slot := createSlot(t, svc, 2)

	if err := svc.Reserve(ctx, slot.ID, 3); !errors.Is(err, ErrNotEnoughSeats) {
		t.Fatalf("expected ErrNotEnoughSeats, got %v", err)
	}
	got, _ := svc.GetByID(ctx, slot.ID)
	if got.SeatsRemaining != 2 {
		t.Fatalf("denied reserve must not change state, got %d seats", got.SeatsRemaining)
	}
}

func TestReserveDeniedOnFullSlot(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	slot := createSlot(t, svc, 1)

	if err := svc.Reserve(ctx, slot.ID, 1); err != nil {
		t.Fatalf("Reserve returned error: %v", err)
	}
	if err := svc.Reserve(ctx, slot.ID, 1); !errors.Is(err, ErrNotEnoughSeats) {
		t.Fatalf("expected ErrNotEnoughSeats on FULL slot, got %v", err)
	}
}

func TestReserveUnknownSlot(t *testing.T) {
	svc := setupTestService(t)
	if err := svc.Reserve(context.Background(), 9999, 1); !errors.Is(err, ErrSlotNotFound) {
		t.Fatalf("expected ErrSlotNotFound, got %v", err)
	}
}

func TestReleaseReopensFullSlot(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	slot := createSlot(t, svc, 2)

	if err := svc.Reserve(ctx, slot.ID, 2); err != nil {
		t.Fatalf("Reserve returned error: %v", err)
	}
	if err := svc.Release(ctx, slot.ID, 2); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}
	got, _ := svc.GetByID(ctx, slot.ID)
	if got.SeatsRemaining != 2 || got.Status != domain.SlotOpen {
		t.Fatalf("expected 2 seats OPEN after release, got %d %s", got.SeatsRemaining, got.Status)
	}
}

func TestReleaseIsNoOpOnCancelledSlot(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	slot := createSlot(t, svc, 2)

	if err := svc.Reserve(ctx, slot.ID, 1); err != nil {
		t.Fatalf("Reserve returned error: %v", err)
	}
	if err := svc.Cancel(ctx, slot.ID, 1); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}

	if err := svc.Release(ctx, slot.ID, 1); err != nil {
		t.Fatalf("Release on cancelled slot must be a no-op, got %v", err)
	}
	got, _ := svc.GetByID(ctx, slot.ID)
	if got.Status != domain.SlotCancelled || got.SeatsRemaining != 1 {
		t.Fatalf("cancelled slot must stay frozen, got %d %s", got.SeatsRemaining, got.Status)
	}
}

func TestCancelGuards(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	slot := createSlot(t, svc, 2)

	if err := svc.Cancel(ctx, slot.ID, 42); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for wrong host, got %v", err)
	}
	if err := svc.Cancel(ctx, slot.ID, 1); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if err := svc.Cancel(ctx, slot.ID, 1); !errors.Is(err, ErrSlotCancelled) {
		t.Fatalf("expected ErrSlotCancelled on repeat cancel, got %v", err)
	}
}
