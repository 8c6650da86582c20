package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"bouquetStore/entities"
	"bouquetStore/gateway"
	"bouquetStore/models"
)

const (
	EventNewOrder     = "new_order"
	EventStatusUpdate = "order_status"
)

type NotificationEvent struct {
	Type  string
	Order entities.Order
}

type SendResult struct {
	SuccessCount int                   `json:"successCount"`
	FailureCount int                   `json:"failureCount"`
	Results      []gateway.TokenResult `json:"-"`
}

// Notifier is what order flows need from the router.
type Notifier interface {
	Notify(ctx context.Context, event NotificationEvent) (SendResult, error)
}

type RecipientDirectory interface {
	ListUsersByRoles(ctx context.Context, roles []string) ([]entities.User, error)
	ListUsers(ctx context.Context) ([]entities.User, error)
}

type TokenStore interface {
	GetTokens(ctx context.Context, userIds []string) ([]entities.DeviceTokenSet, error)
	AddTokens(ctx context.Context, userId string, tokens []string) error
	RemoveTokens(ctx context.Context, userIds []string, tokens []string) error
}

var permanentTokenCodes = map[string]bool{
	gateway.CodeTokenNotRegistered: true,
	gateway.CodeInvalidToken:       true,
}

var statusText = map[string]string{
	StatusPending:    "order awaiting confirmation",
	StatusProcessing: "order is being prepared",
	StatusShipping:   "order is on its way",
	StatusDelivered:  "order has been delivered",
	StatusDone:       "order complete",
	StatusCompleted:  "order complete",
}

type NotificationOptions struct {
	StaffRoles         []string
	FallbackRecipients []string
	MaxItems           int
	PruneTimeout       time.Duration
}

// NotificationService resolves recipients and tokens, sends one batch per event and
// prunes tokens the provider reports as permanently invalid.
type NotificationService struct {
	users  RecipientDirectory
	tokens TokenStore
	push   gateway.PushGateway
	opts   NotificationOptions

	pruning sync.WaitGroup
}

func NewNotificationService(users RecipientDirectory, tokens TokenStore, push gateway.PushGateway, opts NotificationOptions) *NotificationService {
	if opts.MaxItems < 1 {
		opts.MaxItems = 3
	}
	if opts.PruneTimeout <= 0 {
		opts.PruneTimeout = 10 * time.Second
	}
	return &NotificationService{
		users:  users,
		tokens: tokens,
		push:   push,
		opts:   opts,
	}
}

func (ns *NotificationService) Notify(ctx context.Context, event NotificationEvent) (res SendResult, err error) {
	recipients, err := ns.ResolveRecipients(ctx, event)
	if err != nil {
		return
	}
	tokens, err := ns.ResolveTokens(ctx, recipients)
	if err != nil {
		return
	}
	res, err = ns.Send(ctx, tokens, RenderMessage(event, ns.opts.MaxItems))
	if err != nil {
		return
	}
	ns.Prune(ctx, recipients, res.Results)
	return
}

// ResolveRecipients returns the owner for status updates. New orders go to staff
// accounts other than the owner, falling back to a full account scan and then to the
// configured recipient list.
func (ns *NotificationService) ResolveRecipients(ctx context.Context, event NotificationEvent) ([]string, error) {
	owner := event.Order.OwnerId
	switch event.Type {
	case EventStatusUpdate:
		if owner == "" {
			return nil, fmt.Errorf("%w: order %s has no owner", models.ErrBadRequest, event.Order.Id)
		}
		return []string{owner}, nil
	case EventNewOrder:
	default:
		return nil, fmt.Errorf("%w: unknown notification event %q", models.ErrBadRequest, event.Type)
	}

	staff, err := ns.users.ListUsersByRoles(ctx, ns.opts.StaffRoles)
	if err != nil {
		slog.Warn("role query failed, scanning all accounts", "error", err)
		staff = nil
		all, scanErr := ns.users.ListUsers(ctx)
		if scanErr != nil {
			slog.Warn("account scan failed, using configured recipients", "error", scanErr)
		}
		for _, u := range all {
			if IsStaff(u.Role, ns.opts.StaffRoles) {
				staff = append(staff, u)
			}
		}
	}

	var ids []string
	for _, u := range staff {
		if u.Id != owner {
			ids = append(ids, u.Id)
		}
	}
	if len(ids) == 0 {
		for _, id := range ns.opts.FallbackRecipients {
			if id != owner {
				ids = append(ids, id)
			}
		}
	}
	return dedupe(ids), nil
}

// ResolveTokens returns the union of the recipients' token sets without duplicates.
func (ns *NotificationService) ResolveTokens(ctx context.Context, recipientIds []string) ([]string, error) {
	if len(recipientIds) == 0 {
		return nil, nil
	}
	sets, err := ns.tokens.GetTokens(ctx, recipientIds)
	if err != nil {
		return nil, err
	}
	var tokens []string
	for _, set := range sets {
		tokens = append(tokens, set.Tokens...)
	}
	return dedupe(tokens), nil
}

// Send makes exactly one provider call, or none when there are no tokens.
func (ns *NotificationService) Send(ctx context.Context, tokens []string, msg gateway.PushMessage) (SendResult, error) {
	if len(tokens) == 0 {
		return SendResult{}, nil
	}
	batch, err := ns.push.SendBatch(ctx, tokens, msg)
	if err != nil {
		return SendResult{}, err
	}
	return SendResult{
		SuccessCount: batch.SuccessCount,
		FailureCount: batch.FailureCount,
		Results:      batch.Results,
	}, nil
}

// Prune removes permanently invalid tokens from every recipient's set in the
// background. Transient failures are kept. Errors are logged, never returned.
func (ns *NotificationService) Prune(ctx context.Context, recipientIds []string, results []gateway.TokenResult) {
	var stale []string
	for _, r := range results {
		if !r.Success && permanentTokenCodes[r.Code] {
			stale = append(stale, r.Token)
		}
	}
	if len(stale) == 0 || len(recipientIds) == 0 {
		return
	}

	ns.pruning.Add(1)
	go func() {
		defer ns.pruning.Done()
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ns.opts.PruneTimeout)
		defer cancel()
		if err := ns.tokens.RemoveTokens(pctx, recipientIds, stale); err != nil {
			slog.Warn("token prune failed", "recipients", len(recipientIds), "tokens", len(stale), "error", err)
			return
		}
		slog.Info("pruned stale device tokens", "count", len(stale))
	}()
}

// Wait blocks until in-flight prunes finish.
func (ns *NotificationService) Wait() {
	ns.pruning.Wait()
}

func (ns *NotificationService) RegisterTokens(ctx context.Context, userId string, tokens []string) error {
	tokens = cleanTokens(tokens)
	if len(tokens) == 0 {
		return fmt.Errorf("%w: tokens are required", models.ErrBadRequest)
	}
	return ns.tokens.AddTokens(ctx, userId, tokens)
}

func (ns *NotificationService) UnregisterTokens(ctx context.Context, userId string, tokens []string) error {
	tokens = cleanTokens(tokens)
	if len(tokens) == 0 {
		return fmt.Errorf("%w: tokens are required", models.ErrBadRequest)
	}
	return ns.tokens.RemoveTokens(ctx, []string{userId}, tokens)
}

func cleanTokens(tokens []string) []string {
	var out []string
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return dedupe(out)
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// StatusText is the customer-facing wording for a status; unmapped statuses are shown as is.
func StatusText(status string) string {
	if t, ok := statusText[status]; ok {
		return t
	}
	return status
}

// SummarizeItems lists at most max line items and appends "+N more" for the rest.
func SummarizeItems(items []entities.LineItem, max int) string {
	parts := make([]string, 0, max)
	for i, it := range items {
		if i == max {
			break
		}
		parts = append(parts, fmt.Sprintf("%s (%s) x%d", it.ProductName, it.Size, it.Quantity))
	}
	s := strings.Join(parts, ", ")
	if len(items) > max {
		s += fmt.Sprintf(" +%d more", len(items)-max)
	}
	return s
}

func RenderMessage(event NotificationEvent, maxItems int) gateway.PushMessage {
	order := event.Order
	items := SummarizeItems(order.LineItems, maxItems)

	var title, body string
	switch event.Type {
	case EventNewOrder:
		title = "New order"
		body = fmt.Sprintf("%s - total %d", items, order.TotalPrice)
	default:
		title = "Order update"
		body = StatusText(order.Status)
		if items != "" {
			body += ": " + items
		}
	}

	return gateway.PushMessage{
		Title: title,
		Body:  body,
		Data: map[string]string{
			"type":       event.Type,
			"orderId":    order.Id,
			"status":     order.Status,
			"totalPrice": strconv.FormatInt(order.TotalPrice, 10),
			"title":      title,
			"body":       body,
		},
	}
}
