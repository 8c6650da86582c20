package gateway

import (
	"context"
	"fmt"
	"log/slog"

	"bouquetStore/config"
)

// Per-token failure codes. Only the first two mean the token will never work again.
const (
	CodeTokenNotRegistered = "registration-token-not-registered"
	CodeInvalidToken       = "invalid-registration-token"
	CodeInvalidArgument    = "invalid-argument"
	CodeUnavailable        = "unavailable"
	CodeQuotaExceeded      = "quota-exceeded"
	CodeInternal           = "internal"
	CodeUnknown            = "unknown"
)

// PushMessage carries a data envelope for the app plus a visible notification fallback.
type PushMessage struct {
	Title string
	Body  string
	Data  map[string]string
}

type TokenResult struct {
	Token   string
	Success bool
	Code    string
	Err     error
}

type BatchResult struct {
	SuccessCount int
	FailureCount int
	Results      []TokenResult
}

// PushGateway delivers one message to many device tokens in a single batch call.
type PushGateway interface {
	SendBatch(ctx context.Context, tokens []string, msg PushMessage) (BatchResult, error)
}

// NewPushGateway picks the adapter once, from configuration.
func NewPushGateway(ctx context.Context, cfg config.PushConfig) (PushGateway, error) {
	switch cfg.Provider {
	case "fcm":
		return NewFCMGateway(ctx, cfg)
	case "log":
		return LogGateway{}, nil
	default:
		return nil, fmt.Errorf("unsupported push provider %q", cfg.Provider)
	}
}

// LogGateway reports every token as delivered and only logs the message.
type LogGateway struct{}

func (LogGateway) SendBatch(ctx context.Context, tokens []string, msg PushMessage) (BatchResult, error) {
	res := BatchResult{Results: make([]TokenResult, 0, len(tokens))}
	for _, tok := range tokens {
		res.Results = append(res.Results, TokenResult{Token: tok, Success: true})
		res.SuccessCount++
	}
	slog.Info("push (log provider)", "tokens", len(tokens), "title", msg.Title, "body", msg.Body, "data", msg.Data)
	return res, nil
}
