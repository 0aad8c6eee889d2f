package memory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/helpdesk-core-poc-v1/server/internal/agent/model"
	"github.com/helpdesk-core-poc-v1/server/internal/agent/store"
	logx "github.com/helpdesk-core-poc-v1/server/pkg/logger"
)

const keyPrefix = "support:memory"

// Manager maintains a bounded, ordered log of recent turns per session on top
// of the Store. Capacity is enforced on every append (oldest dropped first)
// and the TTL slides on each append, so idle sessions self-clean.
type Manager struct {
	store    store.Store
	maxTurns int
	ttl      time.Duration
	timeout  time.Duration
}

func NewManager(s store.Store, cfg model.ConversationConfig) *Manager {
	maxTurns := cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = 10
	}
	return &Manager{
		store:    s,
		maxTurns: maxTurns,
		ttl:      cfg.TTL,
		timeout:  cfg.Timeout,
	}
}

// SessionKey resolves the memory key for a request. When no session id is
// supplied the key is derived from the customer id, so memory stays
// addressable across requests from the same customer. This default-derivation
// rule is part of the contract, not an incidental behavior.
func SessionKey(customerID, sessionID string) string {
	if sessionID != "" {
		return sessionID
	}
	return "customer:" + customerID
}

func (m *Manager) key(sessionKey string) string {
	return keyPrefix + ":" + sessionKey
}

// Recent returns the stored turns for the session in insertion order,
// most-recent-last. Absence of history is an empty slice, never an error;
// a store failure degrades to empty history.
func (m *Manager) Recent(ctx context.Context, sessionKey string) []model.Turn {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	key := m.key(sessionKey)
	rows, err := m.store.Range(ctx, key)
	if err != nil {
		logx.Warn().Err(err).Str("key", key).Msg("memory store unreachable, continuing without history")
		return []model.Turn{}
	}

	turns := make([]model.Turn, 0, len(rows))
	for i, row := range rows {
		var turn model.Turn
		if err := json.Unmarshal([]byte(row), &turn); err != nil {
			// Skip corrupt entries rather than breaking retrieval.
			logx.Warn().Err(err).Str("key", key).Int("index", i).Msg("skipping unreadable memory entry")
			continue
		}
		turns = append(turns, turn)
	}
	return turns
}

// Append records one turn. The capacity bound and TTL refresh are atomic with
// the push (store-side), so overlapping requests never expose an
// over-capacity session.
func (m *Manager) Append(ctx context.Context, sessionKey string, turn model.Turn) error {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now().UTC()
	}
	b, err := json.Marshal(turn)
	if err != nil {
		return err
	}

	// Two entries per conversational round (user + assistant), as stored.
	return m.store.Append(ctx, m.key(sessionKey), string(b), m.maxTurns*2, m.ttl)
}

// Clear forgets all stored context for the session.
func (m *Manager) Clear(ctx context.Context, sessionKey string) error {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	return m.store.Delete(ctx, m.key(sessionKey))
}

// AsMessages converts stored turns into chat messages for prompt building.
func AsMessages(turns []model.Turn) []*schema.Message {
	msgs := make([]*schema.Message, 0, len(turns))
	for _, turn := range turns {
		switch turn.Role {
		case model.RoleUser:
			msgs = append(msgs, schema.UserMessage(turn.Content))
		case model.RoleAssistant:
			msgs = append(msgs, schema.AssistantMessage(turn.Content, nil))
		}
	}
	return msgs
}

func (m *Manager) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, m.timeout)
}
