// internal/draft/store.go
//
// Redis-backed pending hand-off store.
//
// Context
//   The product originally parked the signup draft under one well-known
//   browser-storage key, which left a single global slot shared by every
//   in-flight signup.  The store re-architects that: each draft is keyed by
//   the normalized account email (the one identity both the signup and the
//   callback path know before confirmation) and carries a generated draft ID
//   for tracing.  Entries are TTL-bounded so abandoned signups age out.
//
// Workflow
//   •  Put persists a password-free copy after the provider accepts the
//      signup.  A draft exists exactly while its hand-off has not succeeded.
//   •  Take atomically removes and returns the draft (GETDEL), so two
//      concurrent callback invocations can never both hand off the same
//      draft.  A missing draft returns (nil, nil) – the caller treats the
//      callback as a no-op.
//   •  Restore re-parks a taken draft after a failed hand-off, preserving
//      its ID, so the next callback retries it.
//
//------------------------------------------------------------------------------

package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/solarsaarthi/platform/internal/metrics"
)

const keyPrefix = "draft:"

// Store holds pending profile drafts in Redis.  Safe for concurrent use.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore returns a Store whose entries expire after ttl.  ttl == 0 means
// drafts never expire.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Put persists d for the account at email and returns the generated draft
// ID.  The stored copy always has the password stripped.
func (s *Store) Put(ctx context.Context, email string, d ProfileDraft) (string, error) {
	d.ID = uuid.NewString()
	d.Password = ""

	raw, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, key(email), string(raw), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store draft: %w", err)
	}

	metrics.DraftsPending.Inc()
	return d.ID, nil
}

// Take atomically removes and returns the draft for email.  It returns
// (nil, nil) when no draft is pending.
func (s *Store) Take(ctx context.Context, email string) (*ProfileDraft, error) {
	raw, err := s.rdb.GetDel(ctx, key(email)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("take draft: %w", err)
	}

	var d ProfileDraft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}

	metrics.DraftsPending.Dec()
	return &d, nil
}

// Restore re-parks a previously taken draft after a failed hand-off,
// preserving its ID so retries are traceable to the original signup.
func (s *Store) Restore(ctx context.Context, email string, d ProfileDraft) error {
	d.Password = ""

	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, key(email), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("restore draft: %w", err)
	}

	metrics.DraftsPending.Inc()
	return nil
}

// key normalizes the email into the per-account storage key.
func key(email string) string {
	return keyPrefix + strings.ToLower(strings.TrimSpace(email))
}
