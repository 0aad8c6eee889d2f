package classify

import (
	"testing"

	"github.com/helpdesk-core-poc-v1/server/internal/agent/toolbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toolNames(intents []Intent) []string {
	names := make([]string, len(intents))
	for i, in := range intents {
		names[i] = in.Tool
	}
	return names
}

func TestClassifyOrders(t *testing.T) {
	intents := Classify("What are my recent orders?", "1")
	require.Len(t, intents, 1)
	assert.Equal(t, toolbox.ToolRecentOrders, intents[0].Tool)
	assert.Equal(t, "1", intents[0].Params["customer_id"])
}

func TestClassifyProfile(t *testing.T) {
	intents := Classify("What's my account status?", "1")
	require.Len(t, intents, 1)
	assert.Equal(t, toolbox.ToolCustomerProfile, intents[0].Tool)
}

func TestIndependentIntentsCombineInPriorityOrder(t *testing.T) {
	intents := Classify("Show my account profile and my recent orders", "1")
	assert.Equal(t, []string{toolbox.ToolRecentOrders, toolbox.ToolCustomerProfile},
		toolNames(intents), "orders rule always ranks first")
}

func TestSmallTalkNeedsNoLookups(t *testing.T) {
	assert.Empty(t, Classify("Hello there, how are you today?", "1"))
	assert.Empty(t, Classify("Tell me about product updates", "2"))
}

func TestNoCustomerNoLookups(t *testing.T) {
	assert.Empty(t, Classify("What are my recent orders?", ""))
}

func TestWholeWordMatching(t *testing.T) {
	// Substrings of other words must not trigger a lookup.
	assert.Empty(t, Classify("my tape recorder is broken", "1"))
	assert.Empty(t, Classify("is this statusbar configurable", "1"))
}

func TestClassifyDeterministic(t *testing.T) {
	first := toolNames(Classify("order status please", "1"))
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, toolNames(Classify("order status please", "1")))
	}
}
