package classify

import (
	"strings"
	"unicode"

	"github.com/helpdesk-core-poc-v1/server/internal/agent/toolbox"
	logx "github.com/helpdesk-core-poc-v1/server/pkg/logger"
)

// Intent is one intended tool invocation selected for a query.
type Intent struct {
	Tool   string
	Params map[string]any
}

// rule binds a tool to its trigger vocabulary. Rules are evaluated in slice
// order, which fixes the priority of the resulting intents.
type rule struct {
	tool     string
	keywords []string
}

// Keyword rules, not statistics: the same query text always yields the same
// tool set, so which external calls are attempted (and therefore which
// failures are possible) stays explainable. Independent intents combine.
var rules = []rule{
	{
		tool: toolbox.ToolRecentOrders,
		keywords: []string{
			"order", "orders", "ordered", "purchase", "purchases", "bought",
			"delivery", "deliveries", "shipment", "shipping", "refund",
		},
	},
	{
		tool: toolbox.ToolCustomerProfile,
		keywords: []string{
			"profile", "account", "status", "email", "address", "plan",
			"subscription", "membership",
		},
	},
}

// Classify maps a query to the set of structured lookups it needs, possibly
// empty (small talk needs none). Lookup-bound tools require a customer id;
// without one no intents are produced.
func Classify(query, customerID string) []Intent {
	if customerID == "" {
		return nil
	}

	words := tokenize(query)
	var intents []Intent
	for _, r := range rules {
		if matchesAny(words, r.keywords) {
			intents = append(intents, Intent{
				Tool:   r.tool,
				Params: map[string]any{"customer_id": customerID},
			})
		}
	}

	tools := make([]string, len(intents))
	for i, in := range intents {
		tools[i] = in.Tool
	}
	logx.Debug().Strs("tools", tools).Msg("query classified")

	return intents
}

func tokenize(query string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	words := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		words[f] = struct{}{}
	}
	return words
}

func matchesAny(words map[string]struct{}, keywords []string) bool {
	for _, kw := range keywords {
		if _, ok := words[kw]; ok {
			return true
		}
	}
	return false
}
