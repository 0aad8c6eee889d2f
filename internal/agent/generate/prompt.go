package generate

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/helpdesk-core-poc-v1/server/internal/agent/memory"
	"github.com/helpdesk-core-poc-v1/server/internal/agent/model"
)

//go:embed template/support_prompt.txt
var coreSystemPrompt string

// BuildMessages assembles the generation input deterministically. Section
// ordering is fixed and part of the contract: system prompt (business
// identity + tool facts, in the bundle's tool order) first, then the session
// history oldest-to-newest, then the current user query last.
func BuildMessages(ctx context.Context, cfg model.PromptConfig, q model.Query, bundle model.ContextBundle) ([]*schema.Message, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(coreSystemPrompt),
	)
	vars := map[string]any{
		"BusinessType": cfg.BusinessType,
		"BusinessName": cfg.BusinessName,
		"CustomerID":   q.CustomerID,
		"ToolFacts":    renderToolFacts(bundle.Tools),
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return nil, fmt.Errorf("support prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return nil, fmt.Errorf("support prompt render: empty result")
	}

	messages := []*schema.Message{msgs[0]}
	messages = append(messages, memory.AsMessages(bundle.History)...)
	messages = append(messages, schema.UserMessage(q.Query))
	return messages, nil
}

// renderToolFacts serializes tool results section by section, preserving the
// bundle's tool order. JSON encoding sorts map keys, so identical results
// always render identically.
func renderToolFacts(results []model.ToolResult) string {
	if len(results) == 0 {
		return "(no structured data was looked up for this query)"
	}

	var b strings.Builder
	for _, r := range results {
		b.WriteString("### " + r.Name)
		switch {
		case r.Status == model.ToolStatusSubstitute:
			b.WriteString(" (substitute data, live system unavailable)\n")
		case !r.Usable():
			b.WriteString(": data unavailable right now\n")
			continue
		default:
			b.WriteString("\n")
		}

		rows, err := json.Marshal(r.Data)
		if err != nil {
			b.WriteString("(unreadable)\n")
			continue
		}
		b.Write(rows)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
