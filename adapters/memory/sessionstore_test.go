package memory

import (
	"context"
	"testing"
	"time"

	"github.com/artpar/wxgate/adapters/clock"
)

func TestSessionStore_SetGet(t *testing.T) {
	clk := clock.NewFake(time.Unix(1633000000, 0))
	s := NewSessionStore(clk)
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	got, ok, err := s.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v, %v", got, ok, err)
	}
	if string(got) != "v" {
		t.Errorf("Get = %q, want v", got)
	}
}

func TestSessionStore_Missing(t *testing.T) {
	s := NewSessionStore(clock.NewFake(time.Unix(1633000000, 0)))
	_, ok, err := s.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if ok {
		t.Error("missing key reported present")
	}
}

func TestSessionStore_TTLExpiry(t *testing.T) {
	clk := clock.NewFake(time.Unix(1633000000, 0))
	s := NewSessionStore(clk)
	ctx := context.Background()

	s.Set(ctx, "k", []byte("v"), 10*time.Minute)

	clk.Advance(9 * time.Minute)
	if _, ok, _ := s.Get(ctx, "k"); !ok {
		t.Fatal("entry expired early")
	}

	clk.Advance(2 * time.Minute)
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatal("entry survived past its TTL")
	}
}

func TestSessionStore_ZeroTTLNeverExpires(t *testing.T) {
	clk := clock.NewFake(time.Unix(1633000000, 0))
	s := NewSessionStore(clk)
	ctx := context.Background()

	s.Set(ctx, "k", []byte("v"), 0)
	clk.Advance(1000 * time.Hour)
	if _, ok, _ := s.Get(ctx, "k"); !ok {
		t.Fatal("entry without TTL expired")
	}
}

func TestSessionStore_Overwrite(t *testing.T) {
	clk := clock.NewFake(time.Unix(1633000000, 0))
	s := NewSessionStore(clk)
	ctx := context.Background()

	s.Set(ctx, "k", []byte("first"), 0)
	s.Set(ctx, "k", []byte("second"), 0)
	got, _, _ := s.Get(ctx, "k")
	if string(got) != "second" {
		t.Errorf("Get = %q, want second", got)
	}
}

func TestSessionStore_Delete(t *testing.T) {
	clk := clock.NewFake(time.Unix(1633000000, 0))
	s := NewSessionStore(clk)
	ctx := context.Background()

	s.Set(ctx, "k", []byte("v"), 0)
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("deleted key still present")
	}

	// Deleting a missing key is not an error.
	if err := s.Delete(ctx, "nope"); err != nil {
		t.Errorf("Delete of missing key = %v", err)
	}
}

func TestSessionStore_ValueCopied(t *testing.T) {
	clk := clock.NewFake(time.Unix(1633000000, 0))
	s := NewSessionStore(clk)
	ctx := context.Background()

	buf := []byte("original")
	s.Set(ctx, "k", buf, 0)
	buf[0] = 'X'

	got, _, _ := s.Get(ctx, "k")
	if string(got) != "original" {
		t.Errorf("Get = %q, stored value must not alias the caller's slice", got)
	}
}
