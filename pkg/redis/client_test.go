package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/efarmaplus/storefront/pkg/config"
	"github.com/redis/go-redis/v9"
)

func TestKVStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	store := NewKVStore(&Client{store: mock}, time.Hour)

	if _, found, err := store.Load(ctx, "efp:cart:s1"); err != nil || found {
		t.Fatalf("expected missing key to be not found without error, found=%v err=%v", found, err)
	}

	if err := store.Save(ctx, "efp:cart:s1", `[{"id":"1"}]`); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if mock.ttls["efp:cart:s1"] != time.Hour {
		t.Fatalf("expected ttl to be forwarded, got %v", mock.ttls["efp:cart:s1"])
	}
	mock.ttls["efp:cart:s1"] = time.Minute

	payload, found, err := store.Load(ctx, "efp:cart:s1")
	if err != nil || !found {
		t.Fatalf("expected stored payload, found=%v err=%v", found, err)
	}
	if payload != `[{"id":"1"}]` {
		t.Fatalf("unexpected payload %q", payload)
	}
	if mock.ttls["efp:cart:s1"] != time.Hour {
		t.Fatalf("expected load to slide the ttl back to 1h, got %v", mock.ttls["efp:cart:s1"])
	}

	if err := store.Delete(ctx, "efp:cart:s1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, found, _ := store.Load(ctx, "efp:cart:s1"); found {
		t.Fatalf("expected key to be gone after delete")
	}
}

func TestKVStorePropagatesBackendErrors(t *testing.T) {
	mock := newMockCmdable()
	mock.getErr = fmt.Errorf("connection refused")
	store := NewKVStore(&Client{store: mock}, 0)

	if _, _, err := store.Load(context.Background(), "k"); err == nil {
		t.Fatalf("expected backend error to surface")
	}
}

func TestUninitializedClient(t *testing.T) {
	client := &Client{}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping to fail without store")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close without raw client should be a no-op, got %v", err)
	}
	if _, _, err := NewKVStore(client, 0).Load(context.Background(), "k"); err == nil {
		t.Fatalf("expected load to fail without store")
	}
}

func TestKVStoreWithoutTTLKeepsExpiry(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	store := NewKVStore(&Client{store: mock}, 0)

	if err := store.Save(ctx, "k", "v"); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, found, _ := store.Load(ctx, "k"); !found {
		t.Fatalf("expected payload")
	}
	if mock.getExCalls != 0 {
		t.Fatalf("expected plain GET without ttl, got %d GETEX calls", mock.getExCalls)
	}
}

func TestSetNXOnlyClaimsAbsentKeys(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}

	ok, err := client.SetNX(ctx, "efp:cron:lock", "a", time.Minute)
	if err != nil || !ok {
		t.Fatalf("expected first setnx to win, ok=%v err=%v", ok, err)
	}
	ok, err = client.SetNX(ctx, "efp:cron:lock", "b", time.Minute)
	if err != nil || ok {
		t.Fatalf("expected second setnx to lose, ok=%v err=%v", ok, err)
	}
	if v, _ := client.Get(ctx, "efp:cron:lock"); v != "a" {
		t.Fatalf("expected original owner to remain, got %q", v)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatalf("expected error without url or address")
	}

	opts, err := optionsFromConfig(config.RedisConfig{Address: "localhost:6379", DB: 3, PoolSize: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6379" || opts.DB != 3 || opts.PoolSize != 7 {
		t.Fatalf("unexpected options %+v", opts)
	}

	opts, err = optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/2", DialTimeout: time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.DB != 2 || opts.DialTimeout != time.Second {
		t.Fatalf("unexpected options from url %+v", opts)
	}
}

type mockCmdable struct {
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error

	getExCalls int
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, ok := m.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	if m.getErr != nil {
		return redis.NewStringResult("", m.getErr)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) GetEx(ctx context.Context, key string, expiration time.Duration) *redis.StringCmd {
	m.getExCalls++
	cmd := m.Get(ctx, key)
	if cmd.Err() == nil {
		m.ttls[key] = expiration
	}
	return cmd
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}
