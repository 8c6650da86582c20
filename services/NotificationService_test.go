package services

import (
	"context"
	"testing"

	"bouquetStore/entities"
	"bouquetStore/gateway"
	"bouquetStore/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staffDirectory() *fakeDirectory {
	return &fakeDirectory{users: []entities.User{
		{Id: "admin-1", Role: entities.RoleAdmin},
		{Id: "staff-1", Role: entities.RoleStaff},
		{Id: "cust-1", Role: entities.RoleCustomer},
	}}
}

func defaultNotifyOptions() NotificationOptions {
	return NotificationOptions{
		StaffRoles:         []string{entities.RoleAdmin, entities.RoleStaff},
		FallbackRecipients: []string{"owner-on-call", "admin-1"},
	}
}

func newOrderEvent(owner string) NotificationEvent {
	return NotificationEvent{Type: EventNewOrder, Order: entities.Order{Id: "o1", OwnerId: owner, Status: StatusPending}}
}

func TestResolveRecipients(t *testing.T) {
	tests := []struct {
		name  string
		dir   *fakeDirectory
		event NotificationEvent
		want  []string
	}{
		{
			name:  "status update goes to owner",
			dir:   staffDirectory(),
			event: NotificationEvent{Type: EventStatusUpdate, Order: entities.Order{Id: "o1", OwnerId: "cust-1"}},
			want:  []string{"cust-1"},
		},
		{
			name:  "new order goes to staff",
			dir:   staffDirectory(),
			event: newOrderEvent("cust-1"),
			want:  []string{"admin-1", "staff-1"},
		},
		{
			name:  "staff owner excluded",
			dir:   staffDirectory(),
			event: newOrderEvent("admin-1"),
			want:  []string{"staff-1"},
		},
		{
			name: "role query down falls back to scan",
			dir: func() *fakeDirectory {
				d := staffDirectory()
				d.roleErr = errStoreDown
				return d
			}(),
			event: newOrderEvent("cust-1"),
			want:  []string{"admin-1", "staff-1"},
		},
		{
			name: "both queries down falls back to static list",
			dir: func() *fakeDirectory {
				d := staffDirectory()
				d.roleErr = errStoreDown
				d.scanErr = errStoreDown
				return d
			}(),
			event: newOrderEvent("admin-1"),
			want:  []string{"owner-on-call"},
		},
		{
			name:  "no staff accounts uses static list",
			dir:   &fakeDirectory{users: []entities.User{{Id: "cust-1", Role: entities.RoleCustomer}}},
			event: newOrderEvent("cust-1"),
			want:  []string{"owner-on-call", "admin-1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns := NewNotificationService(tt.dir, newFakeTokenStore(nil), &fakePush{}, defaultNotifyOptions())
			got, err := ns.ResolveRecipients(context.Background(), tt.event)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveRecipientsRejectsUnknownEvent(t *testing.T) {
	ns := NewNotificationService(staffDirectory(), newFakeTokenStore(nil), &fakePush{}, defaultNotifyOptions())
	_, err := ns.ResolveRecipients(context.Background(), NotificationEvent{Type: "birthday"})
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestResolveTokensDeduplicates(t *testing.T) {
	tokens := newFakeTokenStore(map[string][]string{
		"admin-1": {"t1", "t2"},
		"staff-1": {"t2", "t3"},
	})
	ns := NewNotificationService(staffDirectory(), tokens, &fakePush{}, defaultNotifyOptions())

	got, err := ns.ResolveTokens(context.Background(), []string{"admin-1", "staff-1", "nobody"})
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2", "t3"}, got)
}

func TestNotifyWithoutTokensSkipsProvider(t *testing.T) {
	push := &fakePush{}
	ns := NewNotificationService(staffDirectory(), newFakeTokenStore(nil), push, defaultNotifyOptions())

	res, err := ns.Notify(context.Background(), newOrderEvent("cust-1"))
	require.NoError(t, err)
	assert.Equal(t, SendResult{}, res)
	assert.Zero(t, push.calls)
}

func TestNotifySendsOneBatch(t *testing.T) {
	push := &fakePush{}
	tokens := newFakeTokenStore(map[string][]string{
		"admin-1": {"t1", "t2"},
		"staff-1": {"t2"},
	})
	ns := NewNotificationService(staffDirectory(), tokens, push, defaultNotifyOptions())

	res, err := ns.Notify(context.Background(), newOrderEvent("cust-1"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.SuccessCount)
	assert.Equal(t, 1, push.calls)
	assert.Equal(t, []string{"t1", "t2"}, push.tokens[0])
	assert.Equal(t, EventNewOrder, push.last.Data["type"])
	assert.Equal(t, "o1", push.last.Data["orderId"])
}

func TestNotifyPrunesOnlyPermanentFailures(t *testing.T) {
	push := &fakePush{codes: map[string]string{
		"dead":    gateway.CodeTokenNotRegistered,
		"garbage": gateway.CodeInvalidToken,
		"busy":    gateway.CodeUnavailable,
	}}
	tokens := newFakeTokenStore(map[string][]string{
		"admin-1": {"ok", "dead", "busy"},
		"staff-1": {"garbage", "dead"},
	})
	ns := NewNotificationService(staffDirectory(), tokens, push, defaultNotifyOptions())

	res, err := ns.Notify(context.Background(), newOrderEvent("cust-1"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.SuccessCount)
	assert.Equal(t, 3, res.FailureCount)

	ns.Wait()
	assert.Equal(t, []string{"ok", "busy"}, tokens.get("admin-1"))
	assert.Empty(t, tokens.get("staff-1"))
}

func TestNotifyKeepsTokensWhenMessageRejected(t *testing.T) {
	push := &fakePush{codes: map[string]string{
		"t1": gateway.CodeInvalidArgument,
		"t2": gateway.CodeInvalidArgument,
	}}
	tokens := newFakeTokenStore(map[string][]string{"admin-1": {"t1"}, "staff-1": {"t2"}})
	ns := NewNotificationService(staffDirectory(), tokens, push, defaultNotifyOptions())

	res, err := ns.Notify(context.Background(), newOrderEvent("cust-1"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.FailureCount)

	ns.Wait()
	assert.Zero(t, tokens.removals)
	assert.Equal(t, []string{"t1"}, tokens.get("admin-1"))
	assert.Equal(t, []string{"t2"}, tokens.get("staff-1"))
}

func TestPruneFailureIsSwallowed(t *testing.T) {
	push := &fakePush{codes: map[string]string{"dead": gateway.CodeTokenNotRegistered}}
	tokens := newFakeTokenStore(map[string][]string{"cust-1": {"dead"}})
	tokens.removeErr = errStoreDown
	ns := NewNotificationService(staffDirectory(), tokens, push, defaultNotifyOptions())

	res, err := ns.Notify(context.Background(), NotificationEvent{
		Type:  EventStatusUpdate,
		Order: entities.Order{Id: "o1", OwnerId: "cust-1", Status: StatusShipping},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.FailureCount)
	ns.Wait()
	assert.Equal(t, 1, tokens.removals)
	assert.Equal(t, []string{"dead"}, tokens.get("cust-1"))
}

func TestNotifyProviderError(t *testing.T) {
	push := &fakePush{err: models.ErrUpstreamError}
	tokens := newFakeTokenStore(map[string][]string{"cust-1": {"t1"}})
	ns := NewNotificationService(staffDirectory(), tokens, push, defaultNotifyOptions())

	_, err := ns.Notify(context.Background(), NotificationEvent{
		Type:  EventStatusUpdate,
		Order: entities.Order{Id: "o1", OwnerId: "cust-1", Status: StatusShipping},
	})
	assert.ErrorIs(t, err, models.ErrUpstreamError)
	ns.Wait()
	assert.Zero(t, tokens.removals)
}

func TestRegisterAndUnregisterTokens(t *testing.T) {
	tokens := newFakeTokenStore(nil)
	ns := NewNotificationService(staffDirectory(), tokens, &fakePush{}, defaultNotifyOptions())
	ctx := context.Background()

	require.NoError(t, ns.RegisterTokens(ctx, "u1", []string{"a", " b ", "a", ""}))
	require.NoError(t, ns.RegisterTokens(ctx, "u1", []string{"b", "c"}))
	assert.Equal(t, []string{"a", "b", "c"}, tokens.get("u1"))

	require.NoError(t, ns.UnregisterTokens(ctx, "u1", []string{"b"}))
	assert.Equal(t, []string{"a", "c"}, tokens.get("u1"))

	assert.ErrorIs(t, ns.RegisterTokens(ctx, "u1", []string{"  "}), models.ErrBadRequest)
}

func TestStatusText(t *testing.T) {
	assert.Equal(t, "order awaiting confirmation", StatusText(StatusPending))
	assert.Equal(t, "order complete", StatusText(StatusDone))
	assert.Equal(t, "order complete", StatusText(StatusCompleted))
	assert.Equal(t, "refund", StatusText("refund"))
}

func TestSummarizeItems(t *testing.T) {
	items := []entities.LineItem{
		{ProductName: "Roses", Size: "small", Quantity: 1},
		{ProductName: "Tulips", Size: "large", Quantity: 2},
		{ProductName: "Lilies", Size: "medium", Quantity: 1},
		{ProductName: "Orchid", Size: "small", Quantity: 1},
		{ProductName: "Peony", Size: "small", Quantity: 3},
	}

	assert.Equal(t, "Roses (small) x1, Tulips (large) x2, Lilies (medium) x1 +2 more", SummarizeItems(items, 3))
	assert.Equal(t, "Roses (small) x1", SummarizeItems(items[:1], 3))
	assert.Equal(t, "", SummarizeItems(nil, 3))
}

func TestRenderMessage(t *testing.T) {
	order := entities.Order{
		Id:         "o1",
		Status:     StatusShipping,
		TotalPrice: 17000,
		LineItems:  []entities.LineItem{{ProductName: "Roses", Size: "small", Quantity: 1}},
	}

	msg := RenderMessage(NotificationEvent{Type: EventStatusUpdate, Order: order}, 3)
	assert.Equal(t, "Order update", msg.Title)
	assert.Equal(t, "order is on its way: Roses (small) x1", msg.Body)
	assert.Equal(t, map[string]string{
		"type":       EventStatusUpdate,
		"orderId":    "o1",
		"status":     StatusShipping,
		"totalPrice": "17000",
		"title":      msg.Title,
		"body":       msg.Body,
	}, msg.Data)

	msg = RenderMessage(NotificationEvent{Type: EventNewOrder, Order: order}, 3)
	assert.Equal(t, "New order", msg.Title)
	assert.Equal(t, "Roses (small) x1 - total 17000", msg.Body)
}
