package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-training/discord-oauth/pkg/core"
)

// setupRedisStore creates a RedisStore backed by a disposable container.
// Skips the test when Docker/Redis is unavailable.
func setupRedisStore(t *testing.T) *RedisStore {
	t.Helper()

	addr := setupRedisContainer(t)
	store, err := NewRedisStoreFromOptions(RedisOptions{Addr: addr})
	if err != nil {
		t.Skipf("Redis not available, skipping test: %v", err)
	}

	// Test connection
	ctx := context.Background()
	cmd := store.client.B().Ping().Build()
	if err := store.client.Do(ctx, cmd).Error(); err != nil {
		store.Close()
		t.Skipf("Cannot connect to Redis, skipping test: %v", err)
	}

	t.Cleanup(store.Close)
	return store
}

func TestRedisStore_SaveRecord(t *testing.T) {
	store := setupRedisStore(t)
	ctx := context.Background()

	record := &core.FlowRecord{
		ID:             "req-redis-1",
		Outcome:        "scopes_missing",
		RequiredScopes: []string{"identify", "email", "guilds"},
		GrantedScopes:  []string{"identify"},
		MissingScopes:  []string{"email", "guilds"},
		CreatedAt:      time.Now().Unix(),
	}
	if err := store.SaveRecord(ctx, record); err != nil {
		t.Fatalf("SaveRecord() error = %v", err)
	}

	saved, err := store.GetRecord(ctx, record.ID)
	if err != nil {
		t.Fatalf("GetRecord() error = %v", err)
	}
	if saved.Outcome != "scopes_missing" {
		t.Errorf("Outcome = %q, want scopes_missing", saved.Outcome)
	}
	if len(saved.MissingScopes) != 2 || saved.MissingScopes[0] != "email" {
		t.Errorf("MissingScopes = %v", saved.MissingScopes)
	}
}

func TestRedisStore_SaveRecord_Validation(t *testing.T) {
	store := setupRedisStore(t)
	ctx := context.Background()

	if err := store.SaveRecord(ctx, nil); !errors.Is(err, ErrNilRecord) {
		t.Errorf("SaveRecord(nil) error = %v, want ErrNilRecord", err)
	}
	if err := store.SaveRecord(ctx, &core.FlowRecord{Outcome: "success"}); !errors.Is(err, ErrEmptyRecordID) {
		t.Errorf("SaveRecord(no id) error = %v, want ErrEmptyRecordID", err)
	}
}

func TestRedisStore_GetRecord_NotFound(t *testing.T) {
	store := setupRedisStore(t)
	ctx := context.Background()

	if _, err := store.GetRecord(ctx, "does-not-exist"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("GetRecord() error = %v, want ErrRecordNotFound", err)
	}
	if _, err := store.GetRecord(ctx, ""); !errors.Is(err, ErrEmptyRecordID) {
		t.Errorf("GetRecord(\"\") error = %v, want ErrEmptyRecordID", err)
	}
}

func TestRedisStore_ListRecords(t *testing.T) {
	store := setupRedisStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		record := &core.FlowRecord{
			ID:        fmt.Sprintf("req-redis-list-%d", i),
			Outcome:   "success",
			CreatedAt: time.Now().Unix(),
		}
		if err := store.SaveRecord(ctx, record); err != nil {
			t.Fatalf("SaveRecord() error = %v", err)
		}
	}

	records, err := store.ListRecords(ctx, 3)
	if err != nil {
		t.Fatalf("ListRecords() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}
	// Newest first
	if records[0].ID != "req-redis-list-4" {
		t.Errorf("records[0].ID = %q, want req-redis-list-4", records[0].ID)
	}
}
