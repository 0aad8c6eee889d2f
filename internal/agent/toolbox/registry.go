package toolbox

import "github.com/helpdesk-core-poc-v1/server/internal/agent/model"

// Tool names understood by the gateway. Anything else is a classification
// error reported as ToolStatusUnknown, never a crash.
const (
	ToolRecentOrders    = "recent-orders"
	ToolCustomerProfile = "customer-profile"
)

// toolSpec binds a tool name to its remote endpoint path and the substitute
// payload used when the whole toolbox endpoint is unreachable.
type toolSpec struct {
	path       string
	substitute func(params map[string]any) []map[string]any
}

var registry = map[string]toolSpec{
	ToolRecentOrders: {
		path: "/tools/recent-orders",
		substitute: func(params map[string]any) []map[string]any {
			return []map[string]any{
				{
					"id":          1,
					"customer_id": params["customer_id"],
					"note":        "Substitute orders (toolbox unavailable)",
				},
			}
		},
	},
	ToolCustomerProfile: {
		path: "/tools/customer-profile",
		substitute: func(params map[string]any) []map[string]any {
			return []map[string]any{
				{
					"id":   params["customer_id"],
					"note": "Substitute profile (toolbox unavailable)",
				},
			}
		},
	},
}

// Known reports whether the gateway has an invocation contract for name.
func Known(name string) bool {
	_, ok := registry[name]
	return ok
}

func substituteResult(name string, params map[string]any) model.ToolResult {
	spec := registry[name]
	return model.ToolResult{
		Name:   name,
		Status: model.ToolStatusSubstitute,
		Data:   spec.substitute(params),
		Source: "substitute",
	}
}
