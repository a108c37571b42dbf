package notification

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"supperclub/internal/domain"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:notification_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&domain.Notification{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewService(db, NewHub())
}

func TestDeliverAndList(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	if err := svc.NotifyBookingCreated(ctx, 1, 10, 5); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if err := svc.NotifyBookingCancelled(ctx, 1, 10, 5, "plans changed"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if err := svc.NotifyDisputeResolved(ctx, 2, 3, "refund granted"); err != nil {
		t.Fatalf("notify: %v", err)
	}

	rows, err := svc.List(ctx, 1, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 notifications for host, got %d", len(rows))
	}

	count, err := svc.UnreadCount(ctx, 1)
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 unread, got %d", count)
	}
}

func TestMarkRead(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	if err := svc.NotifyBookingCreated(ctx, 1, 10, 5); err != nil {
		t.Fatalf("notify: %v", err)
	}
	rows, _ := svc.List(ctx, 1, false)
	if len(rows) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(rows))
	}

	if err := svc.MarkRead(ctx, 1, rows[0].ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	// repeat is a no-op
	if err := svc.MarkRead(ctx, 1, rows[0].ID); err != nil {
		t.Fatalf("mark read again: %v", err)
	}

	unread, _ := svc.List(ctx, 1, true)
	if len(unread) != 0 {
		t.Fatalf("expected 0 unread, got %d", len(unread))
	}

	// another user cannot mark someone else's notification
	if err := svc.NotifyBookingCreated(ctx, 1, 11, 5); err != nil {
		t.Fatalf("notify: %v", err)
	}
	rows, _ = svc.List(ctx, 1, true)
	if err := svc.MarkRead(ctx, 99, rows[0].ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	count, _ := svc.UnreadCount(ctx, 1)
	if count != 1 {
		t.Fatalf("expected notification to stay unread, got %d unread", count)
	}
}
