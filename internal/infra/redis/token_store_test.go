package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"safelearn-service/internal/domain"
)

func TestDenyListRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	list := NewDenyList(newClient(mr))

	if err := list.Deny(ctx, "jti-1", time.Minute); err != nil {
		t.Fatalf("deny: %v", err)
	}
	if denied, err := list.IsDenied(ctx, "jti-1"); err != nil || !denied {
		t.Fatalf("expected denied, got %v %v", denied, err)
	}
	if denied, err := list.IsDenied(ctx, "jti-2"); err != nil || denied {
		t.Fatalf("expected unknown token allowed, got %v %v", denied, err)
	}

	// Entries lapse with the token's own expiry.
	mr.FastForward(2 * time.Minute)
	if denied, err := list.IsDenied(ctx, "jti-1"); err != nil || denied {
		t.Fatalf("expected denial to lapse, got %v %v", denied, err)
	}
}

func TestRecoveryStoreConsumeOnce(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewRecoveryStore(newClient(mr))

	if err := store.Save(ctx, "tok-1", "u1", time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}
	userID, err := store.Consume(ctx, "tok-1")
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if userID != "u1" {
		t.Fatalf("expected u1, got %s", userID)
	}
	if _, err := store.Consume(ctx, "tok-1"); err != domain.ErrInvalidToken {
		t.Fatalf("expected second consume rejected, got %v", err)
	}
}
