package gateway

import (
	"context"
	"fmt"

	"bouquetStore/config"
	"bouquetStore/models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

type multicastSender func(ctx context.Context, m *messaging.MulticastMessage) (*messaging.BatchResponse, error)

// FCMGateway sends through Firebase Cloud Messaging. The batch call is fixed at
// construction: SendEachForMulticast for "v1", SendMulticast for "legacy".
type FCMGateway struct {
	send     multicastSender
	classify func(error) string
}

func NewFCMGateway(ctx context.Context, cfg config.PushConfig) (*FCMGateway, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase messaging: %w", err)
	}

	gw := &FCMGateway{send: client.SendEachForMulticast, classify: fcmErrorCode}
	if cfg.APIVersion == "legacy" {
		gw.send = client.SendMulticast
	}
	return gw, nil
}

func buildMulticast(tokens []string, msg PushMessage) *messaging.MulticastMessage {
	return &messaging.MulticastMessage{
		Tokens: tokens,
		Data:   msg.Data,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					ContentAvailable: true,
					Sound:            "default",
				},
			},
		},
	}
}

func (g *FCMGateway) SendBatch(ctx context.Context, tokens []string, msg PushMessage) (BatchResult, error) {
	var res BatchResult
	if len(tokens) == 0 {
		return res, nil
	}
	resp, err := g.send(ctx, buildMulticast(tokens, msg))
	if err != nil {
		return res, fmt.Errorf("%w: fcm batch send: %v", models.ErrUpstreamError, err)
	}
	if len(resp.Responses) != len(tokens) {
		return res, fmt.Errorf("%w: fcm returned %d results for %d tokens", models.ErrUpstreamError, len(resp.Responses), len(tokens))
	}

	classify := g.classify
	if classify == nil {
		classify = fcmErrorCode
	}
	res.Results = make([]TokenResult, len(tokens))
	invalid := 0
	for i, r := range resp.Responses {
		tr := TokenResult{Token: tokens[i], Success: r.Success}
		if r.Success {
			res.SuccessCount++
		} else {
			res.FailureCount++
			tr.Err = r.Error
			tr.Code = classify(r.Error)
			if tr.Code == CodeInvalidArgument {
				invalid++
			}
		}
		res.Results[i] = tr
	}

	// INVALID_ARGUMENT on every token means the message itself was rejected
	// (oversized payload and the like); only a partial rejection blames the tokens.
	if invalid > 0 && invalid < len(tokens) {
		for i := range res.Results {
			if res.Results[i].Code == CodeInvalidArgument {
				res.Results[i].Code = CodeInvalidToken
			}
		}
	}
	return res, nil
}

func fcmErrorCode(err error) string {
	switch {
	case err == nil:
		return CodeUnknown
	case messaging.IsUnregistered(err):
		return CodeTokenNotRegistered
	case messaging.IsInvalidArgument(err):
		return CodeInvalidArgument
	case messaging.IsUnavailable(err):
		return CodeUnavailable
	case messaging.IsQuotaExceeded(err):
		return CodeQuotaExceeded
	case messaging.IsInternal(err):
		return CodeInternal
	}
	return CodeUnknown
}
