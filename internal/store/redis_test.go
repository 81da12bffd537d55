package store

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestRedis_PingUnreachable(t *testing.T) {
	r := NewRedis("127.0.0.1:1")
	defer r.Close() //nolint:errcheck // Test cleanup

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := r.Ping(ctx)
	if err == nil {
		t.Fatal("Ping() against a closed port succeeded")
	}
	if !strings.Contains(err.Error(), "change feed broker") {
		t.Errorf("Ping() error = %v, want it to name the change feed broker", err)
	}
}

func TestRedis_NilReceiver(t *testing.T) {
	var r *Redis
	if err := r.Ping(context.Background()); err == nil {
		t.Error("Ping() on nil client succeeded")
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close() on nil client error = %v", err)
	}
}
