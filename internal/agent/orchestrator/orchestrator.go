package orchestrator

import (
	"context"
	"strings"
	"time"

	"github.com/helpdesk-core-poc-v1/server/internal/agent/cache"
	"github.com/helpdesk-core-poc-v1/server/internal/agent/classify"
	"github.com/helpdesk-core-poc-v1/server/internal/agent/generate"
	"github.com/helpdesk-core-poc-v1/server/internal/agent/memory"
	"github.com/helpdesk-core-poc-v1/server/internal/agent/model"
	"github.com/helpdesk-core-poc-v1/server/internal/agent/toolbox"
	errx "github.com/helpdesk-core-poc-v1/server/internal/core/error"
	logx "github.com/helpdesk-core-poc-v1/server/pkg/logger"
)

// Orchestrator composes the cache, classifier, tool gateway, session memory
// and generator into the per-request decision pipeline:
//
//	CacheCheck -> (hit: Done)
//	CacheCheck -> (miss: Classify) -> ToolInvoke (0..n, order-stable)
//	  -> MemoryFetch -> Generate -> CacheWrite -> MemoryAppend -> Done
//
// Every downstream failure degrades its own stage and the pipeline still
// reaches Done; only an invalid request is surfaced as a hard error.
type Orchestrator struct {
	cache     *cache.Manager
	memory    *memory.Manager
	gateway   *toolbox.Gateway
	generator *generate.Generator
	cacheCfg  model.CacheConfig
}

func New(
	cacheMgr *cache.Manager,
	memoryMgr *memory.Manager,
	gateway *toolbox.Gateway,
	generator *generate.Generator,
	cacheCfg model.CacheConfig,
) *Orchestrator {
	return &Orchestrator{
		cache:     cacheMgr,
		memory:    memoryMgr,
		gateway:   gateway,
		generator: generator,
		cacheCfg:  cacheCfg,
	}
}

// HandleQuery runs one query through the pipeline.
func (o *Orchestrator) HandleQuery(ctx context.Context, q model.Query) (model.Answer, error) {
	start := time.Now()

	if strings.TrimSpace(q.Query) == "" {
		return model.Answer{}, errx.InvalidRequest("query is required")
	}
	if strings.TrimSpace(q.CustomerID) == "" {
		return model.Answer{}, errx.InvalidRequest("customer_id is required")
	}

	sessionKey := memory.SessionKey(q.CustomerID, q.SessionID)

	// CacheCheck
	if answer, hit := o.cache.Lookup(ctx, q.CustomerID, q.Query); hit {
		logx.Info().
			Str("customer_id", q.CustomerID).
			Str("source", model.SourceCache).
			Dur("elapsed", time.Since(start)).
			Msg("query answered")
		return model.Answer{Response: answer, Source: model.SourceCache, Cached: true}, nil
	}

	// Classify -> ToolInvoke. Invocations are independent; a failed tool
	// degrades its own result and the rest proceed.
	intents := classify.Classify(q.Query, q.CustomerID)
	results := make([]model.ToolResult, 0, len(intents))
	for _, intent := range intents {
		results = append(results, o.gateway.Invoke(ctx, intent.Tool, intent.Params))
	}

	// MemoryFetch
	history := o.memory.Recent(ctx, sessionKey)

	// Generate
	answer, degraded := o.generator.Generate(ctx, q, model.ContextBundle{
		Tools:   results,
		History: history,
	})

	// CacheWrite. Degraded answers get the short TTL: repeated failures are
	// absorbed by the cache instead of hammering the generation backend.
	ttl := o.cacheCfg.AnswerTTL
	source := model.SourceAgent
	if degraded {
		ttl = o.cacheCfg.DegradedTTL
		source = model.SourceDegraded
	}
	o.cache.Store(ctx, q.CustomerID, q.Query, answer, ttl)

	// MemoryAppend
	o.appendExchange(ctx, sessionKey, q.Query, answer)

	logx.Info().
		Str("customer_id", q.CustomerID).
		Str("source", source).
		Int("tools", len(results)).
		Dur("elapsed", time.Since(start)).
		Msg("query answered")

	return model.Answer{Response: answer, Source: source, Cached: false}, nil
}

// appendExchange records the user and agent turns. Memory must never break
// the primary response path, so failures are logged and absorbed.
func (o *Orchestrator) appendExchange(ctx context.Context, sessionKey, query, answer string) {
	now := time.Now().UTC()
	turns := []model.Turn{
		{Role: model.RoleUser, Content: query, Timestamp: now},
		{Role: model.RoleAssistant, Content: answer, Timestamp: now},
	}
	for _, turn := range turns {
		if err := o.memory.Append(ctx, sessionKey, turn); err != nil {
			logx.Warn().Err(err).Str("session", sessionKey).Msg("failed to append conversation turn")
			return
		}
	}
}
