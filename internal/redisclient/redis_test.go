package redisclient

import (
	"context"
	"testing"

	"github.com/textpages-admin/internal/config"
)

func TestNewDisabled(t *testing.T) {
	if New(nil) != nil {
		t.Fatalf("nil config should yield nil client")
	}
	if New(&config.RedisConfig{Enabled: false}) != nil {
		t.Fatalf("disabled config should yield nil client")
	}
}

func TestKey(t *testing.T) {
	client := New(&config.RedisConfig{Enabled: true, Prefix: "app"})
	defer func() { _ = client.Close() }()
	if got := client.Key("login", " 1.2.3.4 ", ""); got != "app:login:1.2.3.4" {
		t.Fatalf("unexpected key: %s", got)
	}

	var nilClient *Client
	if got := nilClient.Key("x"); got != "tp:x" {
		t.Fatalf("unexpected key for nil client: %s", got)
	}
	if err := nilClient.Ping(context.Background()); err != nil {
		t.Fatalf("nil client ping should be a no-op: %v", err)
	}
}
