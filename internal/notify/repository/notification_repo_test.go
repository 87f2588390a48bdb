package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/confecta/confecta/internal/notify/entity"
	"github.com/confecta/confecta/internal/testutil"
)

const testOwner = "test-owner-001"

func seedNotification(t *testing.T, repo *NotificationRepository, id string, read bool, createdAt time.Time) {
	t.Helper()
	n := &entity.Notification{
		ID:        id,
		OwnerID:   testOwner,
		Type:      entity.TypeDeadlineNear,
		Title:     "Prazo próximo: OP-1",
		Read:      read,
		CreatedAt: createdAt,
	}
	if err := repo.Create(context.Background(), n); err != nil {
		t.Fatalf("Failed to seed notification: %v", err)
	}
}

func TestMarkReadAndCounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()
	now := time.Now()

	seedNotification(t, repo, "n1", false, now)
	seedNotification(t, repo, "n2", false, now)
	seedNotification(t, repo, "n3", true, now)

	count, err := repo.CountUnread(ctx, testOwner)
	if err != nil || count != 2 {
		t.Fatalf("CountUnread = %d, %v; want 2", count, err)
	}

	if err := repo.MarkRead(ctx, testOwner, "n1"); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	if err := repo.MarkRead(ctx, testOwner, "missing"); err != ErrNotFound {
		t.Errorf("MarkRead on missing id = %v, want ErrNotFound", err)
	}

	updated, err := repo.MarkAllRead(ctx, testOwner)
	if err != nil || updated != 1 {
		t.Fatalf("MarkAllRead = %d, %v; want 1", updated, err)
	}
	if count, _ = repo.CountUnread(ctx, testOwner); count != 0 {
		t.Errorf("unread after MarkAllRead = %d, want 0", count)
	}
}

func TestGCPrunesByAgeAndReadCap(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()
	now := time.Now()

	// Unread but ancient: pruned by age.
	seedNotification(t, repo, "old-unread", false, now.Add(-31*24*time.Hour))
	// Unread and recent: kept.
	seedNotification(t, repo, "fresh-unread", false, now)
	// 105 read notifications: only the newest 100 survive the cap.
	for i := 0; i < 105; i++ {
		seedNotification(t, repo, fmt.Sprintf("read-%03d", i), true,
			now.Add(-time.Duration(i)*time.Minute))
	}

	removed, err := repo.GC(ctx, testOwner, now, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("GC failed: %v", err)
	}
	if removed != 6 {
		t.Errorf("GC removed %d rows, want 6 (1 aged + 5 over cap)", removed)
	}

	var total int64
	db.Model(&entity.Notification{}).Where("owner_id = ?", testOwner).Count(&total)
	if total != 101 {
		t.Errorf("%d notifications remain, want 101 (100 read + 1 unread)", total)
	}

	var oldUnread int64
	db.Model(&entity.Notification{}).Where("id = ?", "old-unread").Count(&oldUnread)
	if oldUnread != 0 {
		t.Error("aged unread notification should have been pruned")
	}
	var freshUnread int64
	db.Model(&entity.Notification{}).Where("id = ?", "fresh-unread").Count(&freshUnread)
	if freshUnread != 1 {
		t.Error("fresh unread notification should survive GC")
	}
}
