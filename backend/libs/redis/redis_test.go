package redis

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestNewRedisClientPing(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(Options{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()
}

func TestNewRedisClientValidation(t *testing.T) {
	if _, err := NewRedisClient(Options{Addr: "  "}); err == nil {
		t.Fatalf("expected error for empty addr")
	}
	if _, err := NewRedisClient(Options{Addr: "localhost:6379", DB: -1}); err == nil {
		t.Fatalf("expected error for negative db")
	}
}

func TestNewRedisClientUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := NewRedisClient(Options{Addr: addr}); err == nil {
		t.Fatalf("expected ping failure for closed server")
	}
}
