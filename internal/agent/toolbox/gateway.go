package toolbox

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/helpdesk-core-poc-v1/server/internal/agent/model"
	logx "github.com/helpdesk-core-poc-v1/server/pkg/logger"
)

// Gateway is the uniform interface to named structured-data lookups on the
// toolbox service. It never propagates transport or backend errors across the
// component boundary: a failed call comes back as a ToolResult tagged
// unavailable, and a dead endpoint comes back as labeled substitute data.
type Gateway struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

func NewGateway(cfg model.ToolboxConfig) *Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Gateway{
		baseURL: cfg.BaseURL,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext:     (&net.Dialer{Timeout: timeout}).DialContext,
				MaxIdleConns:    100,
				IdleConnTimeout: 30 * time.Second,
			},
		},
		timeout: timeout,
	}
}

// toolEnvelope is the toolbox wire contract: a success flag plus either data
// rows or an error string.
type toolEnvelope struct {
	Success bool             `json:"success"`
	Data    []map[string]any `json:"data"`
	Error   string           `json:"error,omitempty"`
}

// Invoke calls the named tool with the given parameters.
//
// Degradation is two-level and deliberately distinct:
//   - endpoint unreachable (dial/timeout/transport error): deterministic
//     substitute data so the pipeline keeps operating, Status substitute;
//   - per-call failure (non-2xx, error envelope, unreadable body): that
//     tool's contribution is marked absent, Status unavailable.
func (g *Gateway) Invoke(ctx context.Context, name string, params map[string]any) model.ToolResult {
	if !Known(name) {
		logx.Warn().Str("tool", name).Msg("unknown tool requested")
		return model.ToolResult{Name: name, Status: model.ToolStatusUnknown}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	body, err := json.Marshal(params)
	if err != nil {
		logx.Error().Err(err).Str("tool", name).Msg("failed to encode tool parameters")
		return model.ToolResult{Name: name, Status: model.ToolStatusUnavailable}
	}

	endpoint := g.baseURL + registry[name].path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		logx.Error().Err(err).Str("tool", name).Msg("failed to build tool request")
		return model.ToolResult{Name: name, Status: model.ToolStatusUnavailable}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		// Transport-level failure means the whole endpoint is out of reach,
		// not that this particular lookup went wrong.
		logx.Warn().Err(err).Str("tool", name).Str("endpoint", endpoint).
			Msg("toolbox unreachable, serving substitute data")
		return substituteResult(name, params)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logx.Warn().Int("status", resp.StatusCode).Str("tool", name).Msg("tool call failed")
		return model.ToolResult{Name: name, Status: model.ToolStatusUnavailable}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		logx.Warn().Err(err).Str("tool", name).Msg("failed to read tool response")
		return model.ToolResult{Name: name, Status: model.ToolStatusUnavailable}
	}

	var env toolEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logx.Warn().Err(err).Str("tool", name).Msg("unreadable tool response")
		return model.ToolResult{Name: name, Status: model.ToolStatusUnavailable}
	}
	if !env.Success {
		logx.Warn().Str("tool", name).Str("error", env.Error).Msg("tool reported failure")
		return model.ToolResult{Name: name, Status: model.ToolStatusUnavailable}
	}

	data := env.Data
	if data == nil {
		data = []map[string]any{}
	}
	return model.ToolResult{
		Name:   name,
		Status: model.ToolStatusOK,
		Data:   data,
		Source: "toolbox",
	}
}
