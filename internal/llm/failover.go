package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/soyeahso/agentdeck/internal/logging"
)

// FailoverClient tries the primary model first, then each fallback model,
// moving on only when the error looks transient.
type FailoverClient struct {
	registry  *Registry
	primary   string
	fallbacks []string
	log       *logging.Logger
}

// NewFailoverClient wraps registry. Models are resolved through the
// registry, so a model without its own provider uses the fallback provider.
func NewFailoverClient(registry *Registry, primary string, fallbacks []string, log *logging.Logger) *FailoverClient {
	return &FailoverClient{
		registry:  registry,
		primary:   primary,
		fallbacks: fallbacks,
		log:       log.Sub("llm.failover"),
	}
}

func (f *FailoverClient) Name() string { return "failover" }

// Complete tries each model in order and returns the first success.
func (f *FailoverClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	models := append([]string{f.primary}, f.fallbacks...)

	var lastErr error
	for _, model := range models {
		client, err := f.registry.Resolve(model)
		if err != nil {
			f.log.Debug().Str("model", model).Err(err).Msg("no provider for model, skipping")
			lastErr = err
			continue
		}

		req.Model = model
		resp, err := client.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if ctx.Err() != nil || !isRetryable(err) {
			return nil, err
		}
		f.log.Warn().Str("model", model).Err(err).Msg("retryable error, trying next model")
	}
	return nil, lastErr
}

// isRetryable reports whether err is worth another model.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	var provErr *ProviderError
	if errors.As(err, &provErr) {
		switch provErr.Code {
		case 404, 429, 500, 502, 503, 529:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "overloaded") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "capacity") ||
		strings.Contains(msg, "timeout")
}

// NewClientFromConfig returns the completion client the executor should use:
// nil when no provider is configured, the provider itself when there are no
// fallback models, and a FailoverClient otherwise.
func NewClientFromConfig(reg *Registry, primary string, fallbacks []string, log *logging.Logger) Client {
	c := reg.Default()
	if c == nil || len(fallbacks) == 0 {
		return c
	}
	return NewFailoverClient(reg, primary, fallbacks, log)
}
