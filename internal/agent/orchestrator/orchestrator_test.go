package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/helpdesk-core-poc-v1/server/internal/agent/cache"
	"github.com/helpdesk-core-poc-v1/server/internal/agent/generate"
	"github.com/helpdesk-core-poc-v1/server/internal/agent/memory"
	"github.com/helpdesk-core-poc-v1/server/internal/agent/model"
	"github.com/helpdesk-core-poc-v1/server/internal/agent/store"
	"github.com/helpdesk-core-poc-v1/server/internal/agent/toolbox"
	errx "github.com/helpdesk-core-poc-v1/server/internal/core/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatModel struct {
	reply    string
	err      error
	calls    int32
	received []*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	atomic.AddInt32(&f.calls, 1)
	f.received = input
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

var testCacheCfg = model.CacheConfig{
	AnswerTTL:   time.Hour,
	DegradedTTL: 30 * time.Second,
	Timeout:     time.Second,
}

func newPipeline(mem *store.MemoryStore, toolboxURL string, fake *fakeChatModel) *Orchestrator {
	return New(
		cache.NewManager(mem, testCacheCfg.Timeout),
		memory.NewManager(mem, model.ConversationConfig{TTL: time.Hour, MaxTurns: 10, Timeout: time.Second}),
		toolbox.NewGateway(model.ToolboxConfig{BaseURL: toolboxURL, Timeout: 2 * time.Second}),
		generate.NewGenerator(fake, model.PromptConfig{BusinessType: "online store", BusinessName: "HelpDesk"}, time.Second),
		testCacheCfg,
	)
}

func ordersToolbox(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.Equal(t, "/tools/recent-orders", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": []map[string]any{
				{"id": 101, "status": "shipped", "total": 49.99},
			},
		})
	}))
}

func TestOrdersQueryEndToEnd(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	var toolCalls int32
	srv := ordersToolbox(t, &toolCalls)
	defer srv.Close()

	fake := &fakeChatModel{reply: "Your latest order #101 has shipped."}
	orch := newPipeline(mem, srv.URL, fake)

	answer, err := orch.HandleQuery(ctx, model.Query{
		Query:      "What are my recent orders?",
		CustomerID: "1",
	})
	require.NoError(t, err)

	assert.Equal(t, "Your latest order #101 has shipped.", answer.Response)
	assert.Equal(t, model.SourceAgent, answer.Source)
	assert.False(t, answer.Cached)
	assert.EqualValues(t, 1, atomic.LoadInt32(&toolCalls))
	assert.EqualValues(t, 1, atomic.LoadInt32(&fake.calls))

	// The generator saw the tool records.
	require.NotEmpty(t, fake.received)
	assert.Contains(t, fake.received[0].Content, `"status":"shipped"`)

	// Session memory now holds one user and one agent turn.
	mm := memory.NewManager(mem, model.ConversationConfig{TTL: time.Hour, MaxTurns: 10, Timeout: time.Second})
	turns := mm.Recent(ctx, memory.SessionKey("1", ""))
	require.Len(t, turns, 2)
	assert.Equal(t, model.RoleUser, turns[0].Role)
	assert.Equal(t, "What are my recent orders?", turns[0].Content)
	assert.Equal(t, model.RoleAssistant, turns[1].Role)
	assert.Equal(t, answer.Response, turns[1].Content)
}

func TestIdenticalQueryHitsCache(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	var toolCalls int32
	srv := ordersToolbox(t, &toolCalls)
	defer srv.Close()

	fake := &fakeChatModel{reply: "Your latest order #101 has shipped."}
	orch := newPipeline(mem, srv.URL, fake)

	first, err := orch.HandleQuery(ctx, model.Query{Query: "What are my recent orders?", CustomerID: "1"})
	require.NoError(t, err)

	// Same intent, different surface form: normalization maps it to one key.
	second, err := orch.HandleQuery(ctx, model.Query{Query: "what are my recent orders ?", CustomerID: "1"})
	require.NoError(t, err)

	assert.Equal(t, first.Response, second.Response)
	assert.Equal(t, model.SourceCache, second.Source)
	assert.True(t, second.Cached)
	assert.EqualValues(t, 1, atomic.LoadInt32(&toolCalls), "no second tool invocation")
	assert.EqualValues(t, 1, atomic.LoadInt32(&fake.calls), "no second generation")
}

func TestToolboxDownStillAnswers(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // whole endpoint unreachable

	fake := &fakeChatModel{reply: "Here is what I can tell you from our records."}
	orch := newPipeline(mem, srv.URL, fake)

	answer, err := orch.HandleQuery(ctx, model.Query{Query: "What are my recent orders?", CustomerID: "7"})
	require.NoError(t, err)

	assert.Equal(t, model.SourceAgent, answer.Source)
	require.NotEmpty(t, fake.received)
	assert.Contains(t, fake.received[0].Content, "Substitute orders (toolbox unavailable)",
		"substitute data reaches generation instead of an error")
}

func TestGenerationFailureDegradedAndBrieflyCached(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	now := time.Now()
	mem.SetClock(func() time.Time { return now })

	var toolCalls int32
	srv := ordersToolbox(t, &toolCalls)
	defer srv.Close()

	fake := &fakeChatModel{err: errors.New("backend 503")}
	orch := newPipeline(mem, srv.URL, fake)

	q := model.Query{Query: "What are my recent orders?", CustomerID: "1"}

	first, err := orch.HandleQuery(ctx, q)
	require.NoError(t, err, "generation failure completes the pipeline")
	assert.Equal(t, generate.DegradedMessage, first.Response)
	assert.Equal(t, model.SourceDegraded, first.Source)

	// Within the degraded TTL the cache absorbs the retry.
	second, err := orch.HandleQuery(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, model.SourceCache, second.Source)
	assert.Equal(t, generate.DegradedMessage, second.Response)
	assert.EqualValues(t, 1, atomic.LoadInt32(&fake.calls))

	// Past the degraded TTL the pipeline tries generation again.
	now = now.Add(time.Minute)
	_, err = orch.HandleQuery(ctx, q)
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&fake.calls))
}

func TestDegradedAnswerRecordedInMemory(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	srv := ordersToolbox(t, new(int32))
	defer srv.Close()

	fake := &fakeChatModel{err: errors.New("backend 503")}
	orch := newPipeline(mem, srv.URL, fake)

	_, err := orch.HandleQuery(ctx, model.Query{Query: "where is my order", CustomerID: "1", SessionID: "s-1"})
	require.NoError(t, err)

	mm := memory.NewManager(mem, model.ConversationConfig{TTL: time.Hour, MaxTurns: 10, Timeout: time.Second})
	turns := mm.Recent(ctx, "s-1")
	require.Len(t, turns, 2)
	assert.Equal(t, generate.DegradedMessage, turns[1].Content,
		"cache write and memory append still occur with the degraded text")
}

func TestInvalidRequestRejectedBeforeDownstream(t *testing.T) {
	ctx := context.Background()
	var toolCalls int32
	srv := ordersToolbox(t, &toolCalls)
	defer srv.Close()

	fake := &fakeChatModel{reply: "never used"}
	orch := newPipeline(store.NewMemoryStore(), srv.URL, fake)

	_, err := orch.HandleQuery(ctx, model.Query{Query: "What are my recent orders?"})
	require.Error(t, err)
	assert.True(t, errx.IsInvalidRequest(err))

	_, err = orch.HandleQuery(ctx, model.Query{CustomerID: "1"})
	require.Error(t, err)
	assert.True(t, errx.IsInvalidRequest(err))

	assert.EqualValues(t, 0, atomic.LoadInt32(&toolCalls))
	assert.EqualValues(t, 0, atomic.LoadInt32(&fake.calls))
}

func TestSmallTalkSkipsTools(t *testing.T) {
	ctx := context.Background()
	var toolCalls int32
	srv := ordersToolbox(t, &toolCalls)
	defer srv.Close()

	fake := &fakeChatModel{reply: "Hello! How can I help you today?"}
	orch := newPipeline(store.NewMemoryStore(), srv.URL, fake)

	answer, err := orch.HandleQuery(ctx, model.Query{Query: "good morning!", CustomerID: "1"})
	require.NoError(t, err)

	assert.Equal(t, model.SourceAgent, answer.Source)
	assert.EqualValues(t, 0, atomic.LoadInt32(&toolCalls))
	assert.EqualValues(t, 1, atomic.LoadInt32(&fake.calls))
}
