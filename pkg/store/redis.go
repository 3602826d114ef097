package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-training/discord-oauth/pkg/core"

	"github.com/redis/rueidis"
)

const (
	// Key prefixes for Redis storage
	flowRecordPrefix = "flow_record:"
	recentRecordsKey = "flow_records:recent"

	// recordTTL bounds how long an audit record stays queryable.
	recordTTL = 24 * time.Hour
	// maxRecentRecords caps the recency list.
	maxRecentRecords = 1000
)

// RedisStore implements core.AuditStore using Redis via rueidis.
// Records are stored as JSON values with a TTL plus a recency list for
// newest-first listing.
type RedisStore struct {
	client rueidis.Client
}

// NewRedisStore creates a new instance of RedisStore with the provided rueidis client.
func NewRedisStore(client rueidis.Client) *RedisStore {
	return &RedisStore{
		client: client,
	}
}

// RedisOptions contains configuration for Redis connection.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStoreFromOptions creates a new RedisStore with simplified options.
func NewRedisStoreFromOptions(opts RedisOptions) (*RedisStore, error) {
	clientOpts := rueidis.ClientOption{
		InitAddress: []string{opts.Addr},
		Password:    opts.Password,
		SelectDB:    opts.DB,
	}
	client, err := rueidis.NewClient(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}
	return NewRedisStore(client), nil
}

// NewRedisStoreFromClientOption creates a new RedisStore with full rueidis client options.
func NewRedisStoreFromClientOption(opts rueidis.ClientOption) (*RedisStore, error) {
	client, err := rueidis.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}
	return NewRedisStore(client), nil
}

// Close closes the Redis client connection.
func (r *RedisStore) Close() {
	r.client.Close()
}

// SaveRecord stores a flow record in Redis with TTL and pushes its ID onto
// the recency list.
func (r *RedisStore) SaveRecord(ctx context.Context, record *core.FlowRecord) error {
	if record == nil {
		return ErrNilRecord
	}
	if record.ID == "" {
		return ErrEmptyRecordID
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal flow record: %w", err)
	}

	key := flowRecordPrefix + record.ID
	setCmd := r.client.B().Set().Key(key).Value(string(data)).ExSeconds(int64(recordTTL.Seconds())).Build()
	if err := r.client.Do(ctx, setCmd).Error(); err != nil {
		return fmt.Errorf("failed to save flow record to redis: %w", err)
	}

	pushCmd := r.client.B().Lpush().Key(recentRecordsKey).Element(record.ID).Build()
	if err := r.client.Do(ctx, pushCmd).Error(); err != nil {
		return fmt.Errorf("failed to index flow record: %w", err)
	}
	trimCmd := r.client.B().Ltrim().Key(recentRecordsKey).Start(0).Stop(maxRecentRecords - 1).Build()
	if err := r.client.Do(ctx, trimCmd).Error(); err != nil {
		return fmt.Errorf("failed to trim flow record index: %w", err)
	}
	return nil
}

// GetRecord retrieves a flow record from Redis by ID.
// It returns ErrRecordNotFound if the record does not exist or has expired.
// Uses client-side caching with 10 second TTL for better performance.
func (r *RedisStore) GetRecord(ctx context.Context, id string) (*core.FlowRecord, error) {
	if id == "" {
		return nil, ErrEmptyRecordID
	}

	key := flowRecordPrefix + id
	cmd := r.client.B().Get().Key(key).Cache()
	result, err := r.client.DoCache(ctx, cmd, 10*time.Second).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get flow record from redis: %w", err)
	}

	var record core.FlowRecord
	if err := json.Unmarshal([]byte(result), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flow record: %w", err)
	}
	return &record, nil
}

// ListRecords returns up to limit records, newest first. Expired records are
// skipped. A non-positive limit returns the full recency window.
func (r *RedisStore) ListRecords(ctx context.Context, limit int) ([]*core.FlowRecord, error) {
	stop := int64(maxRecentRecords - 1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	rangeCmd := r.client.B().Lrange().Key(recentRecordsKey).Start(0).Stop(stop).Build()
	ids, err := r.client.Do(ctx, rangeCmd).AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("failed to list flow records: %w", err)
	}

	records := make([]*core.FlowRecord, 0, len(ids))
	for _, id := range ids {
		record, err := r.GetRecord(ctx, id)
		if err != nil {
			if errors.Is(err, ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
