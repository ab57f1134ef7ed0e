package cache

import (
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/campus-coins/backend/config"
)

func TestNewRedisConnection(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := NewRedisConnection(&config.RedisConfig{URL: "redis://" + mr.Addr() + "/0"})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if !c.HealthCheck() {
		t.Error("expected healthy connection")
	}

	mr.Close()
	if c.HealthCheck() {
		t.Error("expected unhealthy connection after server shutdown")
	}
	_ = c.Close()
}

func TestNewRedisConnection_InvalidURL(t *testing.T) {
	if _, err := NewRedisConnection(&config.RedisConfig{URL: "not a url"}); err == nil {
		t.Error("expected error for invalid url")
	}
}
