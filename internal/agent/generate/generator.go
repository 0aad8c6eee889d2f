package generate

import (
	"context"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"

	"github.com/helpdesk-core-poc-v1/server/internal/agent/model"
	errx "github.com/helpdesk-core-poc-v1/server/internal/core/error"
	logx "github.com/helpdesk-core-poc-v1/server/pkg/logger"
)

// DegradedMessage is the fixed answer served when the generative capability
// is unreachable, misconfigured, or errors out. It is cacheable under a short
// TTL so repeated failures do not hammer the generation backend.
const DegradedMessage = "We're having trouble reaching our assistant right now. " +
	"Your request was received - please try again shortly."

// Generator assembles a context bundle into a prompt and delegates to the
// chat model. Failure never crosses the boundary: a broken backend yields the
// degraded message with degraded=true.
type Generator struct {
	chatModel einomodel.BaseChatModel // nil when no credential is configured
	promptCfg model.PromptConfig
	timeout   time.Duration
}

func NewGenerator(cm einomodel.BaseChatModel, promptCfg model.PromptConfig, timeout time.Duration) *Generator {
	return &Generator{
		chatModel: cm,
		promptCfg: promptCfg,
		timeout:   timeout,
	}
}

// NewChatModel builds the Gemini-backed chat model used in production.
func NewChatModel(ctx context.Context, apiKey, baseURL string, cfg model.GenerationConfig) (einomodel.BaseChatModel, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		clientCfg.HTTPOptions.BaseURL = baseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	cm, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Model,
		Temperature: &cfg.Temperature,
		MaxTokens:   &cfg.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating response model")
		return nil, fmt.Errorf("error creating response model: %w", err)
	}
	return cm, nil
}

// Generate returns the answer text and whether it is the degraded fallback.
func (g *Generator) Generate(ctx context.Context, q model.Query, bundle model.ContextBundle) (string, bool) {
	if g.chatModel == nil {
		logx.Warn().Msg("no generation credential configured, serving degraded answer")
		return DegradedMessage, true
	}

	messages, err := BuildMessages(ctx, g.promptCfg, q, bundle)
	if err != nil {
		logx.Error().Err(err).Msg("failed to assemble generation prompt")
		return DegradedMessage, true
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	out, err := g.chatModel.Generate(ctx, messages)
	if err != nil {
		logx.Warn().Err(fmt.Errorf("%w: %v", errx.ErrGenerationUnavailable, err)).
			Msg("generation call failed, serving degraded answer")
		return DegradedMessage, true
	}
	if out == nil || strings.TrimSpace(out.Content) == "" {
		logx.Warn().Msg("generation returned empty content, serving degraded answer")
		return DegradedMessage, true
	}

	return out.Content, false
}
