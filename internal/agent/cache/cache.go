package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/helpdesk-core-poc-v1/server/internal/agent/store"
	logx "github.com/helpdesk-core-poc-v1/server/pkg/logger"
)

const keyPrefix = "support:answer"

// Entry is the stored shape of a cached answer. Expiry is store-enforced via
// TTL; the creation timestamp is kept for observability, not eviction.
type Entry struct {
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

// Manager governs read-through/write-through caching of final answers.
// A miss is the expected outcome that drives the rest of the pipeline, never
// an error; store failures are absorbed as forced misses so an unreachable
// cache only costs a regeneration.
type Manager struct {
	store   store.Store
	timeout time.Duration
}

func NewManager(s store.Store, timeout time.Duration) *Manager {
	return &Manager{store: s, timeout: timeout}
}

// Normalize folds case and collapses runs of non-alphanumeric characters into
// single spaces so paraphrases like "Recent orders?" and "recent orders ?"
// derive the same key. Callers must treat this normalization as part of the
// cache-key contract.
func Normalize(query string) string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, " ")
}

// Key derives the deterministic cache key for (customer, query). The query
// text itself is never mutated; only a normalized copy is hashed.
func Key(customerID, query string) string {
	sum := sha256.Sum256([]byte(Normalize(query)))
	return keyPrefix + ":" + customerID + ":" + hex.EncodeToString(sum[:8])
}

// Lookup returns the cached answer for (customer, query) and whether it was a
// hit.
func (m *Manager) Lookup(ctx context.Context, customerID, query string) (string, bool) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	key := Key(customerID, query)
	raw, err := m.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logx.Warn().Err(err).Str("key", key).Msg("answer cache unreachable, treating as miss")
		}
		return "", false
	}

	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		logx.Warn().Err(err).Str("key", key).Msg("corrupt cache entry, treating as miss")
		return "", false
	}

	logx.Debug().Str("key", key).Time("created_at", entry.CreatedAt).Msg("answer cache hit")
	return entry.Answer, true
}

// Store writes the answer under the derived key with the given TTL. Every
// store resets the TTL; failures are logged and absorbed so caching never
// breaks the response path.
func (m *Manager) Store(ctx context.Context, customerID, query, answer string, ttl time.Duration) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	key := Key(customerID, query)
	raw, err := json.Marshal(Entry{Answer: answer, CreatedAt: time.Now().UTC()})
	if err != nil {
		logx.Warn().Err(err).Str("key", key).Msg("failed to encode cache entry, skipping this round")
		return
	}
	if err := m.store.Set(ctx, key, string(raw), ttl); err != nil {
		logx.Warn().Err(err).Str("key", key).Msg("failed to cache answer, skipping this round")
		return
	}
	logx.Debug().Str("key", key).Dur("ttl", ttl).Msg("answer cached")
}

func (m *Manager) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, m.timeout)
}
