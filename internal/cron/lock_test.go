package cron

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type memoryRedis struct {
	data map[string]string
}

func (m *memoryRedis) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = value.(string)
	return true, nil
}

func (m *memoryRedis) Get(_ context.Context, key string) (string, error) {
	v, ok := m.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memoryRedis) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func TestRedisLockIsExclusiveAcrossInstances(t *testing.T) {
	ctx := context.Background()
	store := &memoryRedis{data: map[string]string{}}
	a, err := NewRedisLock(store, "", time.Minute)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}
	b, _ := NewRedisLock(store, "", time.Minute)

	if ok, err := a.Acquire(ctx); err != nil || !ok {
		t.Fatalf("expected a to acquire, ok=%v err=%v", ok, err)
	}
	if ok, _ := b.Acquire(ctx); ok {
		t.Fatalf("b must not acquire while a holds the lock")
	}
	// b never owned it, so releasing must not drop a's key.
	if err := b.Release(ctx); err != nil {
		t.Fatalf("release b: %v", err)
	}
	if _, held := store.data[DefaultLockKey]; !held {
		t.Fatalf("lock key removed by non-owner")
	}
	if err := a.Release(ctx); err != nil {
		t.Fatalf("release a: %v", err)
	}
	if ok, _ := b.Acquire(ctx); !ok {
		t.Fatalf("b should acquire after release")
	}
}

func TestRedisLockLeavesForeignOwner(t *testing.T) {
	ctx := context.Background()
	store := &memoryRedis{data: map[string]string{}}
	lock, _ := NewRedisLock(store, "k", time.Minute)
	if ok, _ := lock.Acquire(ctx); !ok {
		t.Fatalf("expected acquire")
	}
	// TTL expired and another instance took over.
	store.data["k"] = "someone-else"
	if err := lock.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if store.data["k"] != "someone-else" {
		t.Fatalf("foreign lock must be kept")
	}
}

func TestNewRedisLockValidates(t *testing.T) {
	if _, err := NewRedisLock(nil, "k", time.Minute); err == nil {
		t.Fatalf("expected nil client error")
	}
	if _, err := NewRedisLock(&memoryRedis{}, "k", 0); err == nil {
		t.Fatalf("expected ttl error")
	}
}

func TestLocalLock(t *testing.T) {
	ctx := context.Background()
	var l LocalLock
	if ok, _ := l.Acquire(ctx); !ok {
		t.Fatalf("expected first acquire")
	}
	if ok, _ := l.Acquire(ctx); ok {
		t.Fatalf("second acquire must fail while held")
	}
	_ = l.Release(ctx)
	if ok, _ := l.Acquire(ctx); !ok {
		t.Fatalf("expected acquire after release")
	}
}
