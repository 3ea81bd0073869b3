package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"parkinglot/backend/services/parking-service/internal/models"
)

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStore(client, ttl), mr
}

func TestStoreSaveGetDelete(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	entry := time.Date(2026, 10, 12, 9, 30, 0, 0, time.UTC)
	in := &models.Session{
		ID:           7,
		CarRegNumber: "CA1234AB",
		Status:       models.SessionStatusActive,
		EntryDate:    entry,
	}
	if err := store.Save(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("parking:active:CA1234AB") {
		t.Fatal("expected key parking:active:CA1234AB")
	}
	if ttl := mr.TTL("parking:active:CA1234AB"); ttl != time.Hour {
		t.Fatalf("expected ttl 1h, got %s", ttl)
	}

	out, err := store.Get(ctx, "CA1234AB")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if out == nil || out.ID != 7 || !out.EntryDate.Equal(entry) || !out.Active() {
		t.Fatalf("unexpected cached session: %+v", out)
	}

	if err := store.Delete(ctx, "CA1234AB"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	out, err = store.Get(ctx, "CA1234AB")
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if out != nil {
		t.Fatalf("expected miss after delete, got %+v", out)
	}
}

func TestStoreMissIsNotAnError(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)

	out, err := store.Get(context.Background(), "NOPE")
	if err != nil {
		t.Fatalf("expected nil error on miss, got %v", err)
	}
	if out != nil {
		t.Fatalf("expected nil session on miss, got %+v", out)
	}
}

func TestStoreEntryExpires(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	if err := store.Save(ctx, &models.Session{ID: 1, CarRegNumber: "TTL1"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	out, err := store.Get(ctx, "TTL1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if out != nil {
		t.Fatalf("expected expired entry, got %+v", out)
	}
}

func TestStoreCorruptPayload(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	if err := mr.Set("parking:active:BAD", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := store.Get(context.Background(), "BAD"); err == nil {
		t.Fatal("expected decode error")
	}
}
