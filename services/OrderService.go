package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bouquetStore/entities"
	"bouquetStore/gateway"
	"bouquetStore/models"
	"bouquetStore/repository"

	"github.com/google/uuid"
)

const PaymentMethodOnline = "online"

type OrderService struct {
	cr          repository.CartRepository
	or          repository.OrderRepository
	payments    gateway.PaymentGateway
	notifier    Notifier
	transitions TransitionTable
	verifySig   bool
	now         func() time.Time
}

func NewOrderService(cartRepo repository.CartRepository, orderRepo repository.OrderRepository, payments gateway.PaymentGateway, notifier Notifier, verifySignatures bool) OrderService {
	return OrderService{
		cr:          cartRepo,
		or:          orderRepo,
		payments:    payments,
		notifier:    notifier,
		transitions: NewPermissiveTransitionTable(),
		verifySig:   verifySignatures,
		now:         time.Now,
	}
}

func validateOrderRequest(req models.OrderRequest) (deliveryAddress string, shippingFee int64, err error) {
	switch req.DeliveryMethod {
	case entities.DeliveryPickup:
	case entities.DeliveryDelivery:
		deliveryAddress = strings.TrimSpace(req.Address)
		if deliveryAddress == "" {
			err = fmt.Errorf("%w: address is required for delivery", models.ErrBadRequest)
			return
		}
		if req.ShippingFee == nil || *req.ShippingFee < 0 {
			err = fmt.Errorf("%w: shipping fee is required for delivery", models.ErrBadRequest)
			return
		}
		shippingFee = *req.ShippingFee
	default:
		err = fmt.Errorf("%w: delivery method must be %q or %q", models.ErrBadRequest, entities.DeliveryPickup, entities.DeliveryDelivery)
		return
	}

	switch req.PaymentMethod {
	case PaymentMethodCOD:
	case PaymentMethodOnline:
		if !gateway.IsSupportedPaymentType(req.PaymentType) {
			err = fmt.Errorf("%w: unsupported payment type %q", models.ErrBadRequest, req.PaymentType)
		}
	default:
		err = fmt.Errorf("%w: payment method must be %q or %q", models.ErrBadRequest, PaymentMethodCOD, PaymentMethodOnline)
	}
	return
}

func freezeLineItems(items []entities.CartItem) (lineItems []entities.LineItem, subtotal int64) {
	lineItems = make([]entities.LineItem, 0, len(items))
	for _, it := range items {
		lineItems = append(lineItems, entities.LineItem{
			CartItemId:      it.Id,
			ProductId:       it.ProductId,
			ProductName:     it.ProductName,
			Size:            it.Size,
			Quantity:        it.Quantity,
			CustomMaterials: it.CustomMaterials,
			ServicePrice:    it.ServicePrice,
			TotalPrice:      FrozenTotal(it),
			Note:            it.Note,
			PhotoURL:        it.PhotoURL,
		})
		subtotal += FrozenTotal(it)
	}
	return
}

// CreateOrder freezes the owner's cart into a new order and then clears exactly those
// cart items. The clear is a second write: when it fails the order is still returned,
// with CartCleared false, and RetryCartClear finishes the job. A failed charge leaves the
// order in waiting_payment and is reported in PaymentError.
func (ors *OrderService) CreateOrder(ctx context.Context, ownerId string, req models.OrderRequest) (res entities.CreateOrderResult, err error) {
	address, shippingFee, err := validateOrderRequest(req)
	if err != nil {
		return
	}
	items, err := ors.cr.GetCart(ctx, ownerId)
	if err != nil {
		return
	}
	if len(items) == 0 {
		err = fmt.Errorf("%w: cart is empty", models.ErrBadRequest)
		return
	}

	lineItems, subtotal := freezeLineItems(items)
	now := ors.now().UTC()
	order := entities.Order{
		Id:             uuid.NewString(),
		OwnerId:        ownerId,
		DeliveryMethod: req.DeliveryMethod,
		Address:        address,
		ShippingFee:    shippingFee,
		PaymentMethod:  req.PaymentMethod,
		TotalPrice:     subtotal + shippingFee,
		LineItems:      lineItems,
		Status:         InitialStatus(req.PaymentMethod),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.PaymentMethod != PaymentMethodCOD {
		order.PaymentType = req.PaymentType
	}
	if err = ors.or.CreateOrder(ctx, order); err != nil {
		return
	}

	if e := ors.clearCart(ctx, order); e != nil {
		slog.Warn("CreateOrder: cart not cleared", "order", order.Id, "error", e)
	} else {
		order.CartCleared = true
	}
	res.Order = order

	if order.PaymentMethod != PaymentMethodCOD {
		pay, e := ors.payments.CreateTransaction(ctx, order.Id, order.TotalPrice, order.PaymentType, gateway.PaymentOptions{Bank: req.Bank})
		if e != nil {
			slog.Warn("CreateOrder: charge failed", "order", order.Id, "error", e)
			res.PaymentError = e.Error()
		} else {
			res.Payment = &pay
		}
	}

	ors.notify(ctx, EventNewOrder, order)
	return
}

func (ors *OrderService) clearCart(ctx context.Context, order entities.Order) error {
	ids := make([]string, 0, len(order.LineItems))
	for _, li := range order.LineItems {
		ids = append(ids, li.CartItemId)
	}
	if err := ors.cr.RemoveCartItems(ctx, order.OwnerId, ids...); err != nil {
		return err
	}
	return ors.or.MarkCartCleared(ctx, order.Id)
}

// RetryCartClear removes the order's frozen cart items if an earlier attempt failed.
// It is a no-op for an order whose cart is already cleared.
func (ors *OrderService) RetryCartClear(ctx context.Context, ownerId, orderId string) (order entities.Order, err error) {
	order, err = ors.GetUserOrder(ctx, ownerId, orderId)
	if err != nil || order.CartCleared {
		return
	}
	if err = ors.clearCart(ctx, order); err != nil {
		return
	}
	order.CartCleared = true
	return
}

// PayOrder issues a new gateway transaction for an online order that is still unpaid.
func (ors *OrderService) PayOrder(ctx context.Context, ownerId, orderId string, opts gateway.PaymentOptions) (pay entities.PaymentResponse, err error) {
	order, err := ors.GetUserOrder(ctx, ownerId, orderId)
	if err != nil {
		return
	}
	if order.PaymentMethod == PaymentMethodCOD {
		err = fmt.Errorf("%w: order %s is cash on fulfillment", models.ErrNotAllowed, order.Id)
		return
	}
	if order.Status != StatusWaitingPayment && order.Status != StatusAwaitingPay {
		err = fmt.Errorf("%w: order %s is %q", models.ErrNotAllowed, order.Id, order.Status)
		return
	}
	pay, err = ors.payments.CreateTransaction(ctx, order.Id, order.TotalPrice, order.PaymentType, opts)
	return
}

// CancelOrder lets the owner cancel an order nobody has started working on.
func (ors *OrderService) CancelOrder(ctx context.Context, ownerId, orderId string) (order entities.Order, err error) {
	order, err = ors.GetUserOrder(ctx, ownerId, orderId)
	if err != nil {
		return
	}
	if order.Status != StatusWaitingPayment && order.Status != StatusPending {
		err = fmt.Errorf("%w: order %s is %q", models.ErrNotAllowed, order.Id, order.Status)
		return
	}
	order, err = ors.applyStatus(ctx, order, models.OrderStatusUpdate{Status: StatusCanceled})
	return
}

// SetOrderStatus is the administrative transition, checked against the transition table.
func (ors *OrderService) SetOrderStatus(ctx context.Context, orderId, status string) (order entities.Order, err error) {
	order, err = ors.GetOrder(ctx, orderId)
	if err != nil {
		return
	}
	if err = ors.transitions.Check(order.Status, status); err != nil {
		return
	}
	order, err = ors.applyStatus(ctx, order, models.OrderStatusUpdate{Status: status})
	return
}

// HandlePaymentNotification applies a provider callback. A callback whose provider and
// fraud status are already recorded is a redelivery: it changes nothing and notifies
// nobody, even if an operator has moved the order on since.
func (ors *OrderService) HandlePaymentNotification(ctx context.Context, n models.PaymentNotification) (order entities.Order, err error) {
	if n.OrderId == "" || n.TransactionStatus == "" {
		err = fmt.Errorf("%w: order_id and transaction_status are required", models.ErrBadRequest)
		return
	}
	if ors.verifySig && !ors.payments.VerifySignature(n) {
		slog.Warn("HandlePaymentNotification: bad signature", "order", n.OrderId)
		err = models.ErrForbidden
		return
	}
	order, err = ors.GetOrder(ctx, n.OrderId)
	if err != nil {
		return
	}

	if order.PaymentProviderStatus == n.TransactionStatus && order.FraudStatus == n.FraudStatus {
		slog.Debug("HandlePaymentNotification: replay ignored", "order", order.Id, "provider_status", n.TransactionStatus)
		return
	}
	status := MapTransactionStatus(n.TransactionStatus)
	providerStatus, fraudStatus := n.TransactionStatus, n.FraudStatus
	order, err = ors.applyStatus(ctx, order, models.OrderStatusUpdate{
		Status:                status,
		PaymentProviderStatus: &providerStatus,
		FraudStatus:           &fraudStatus,
	})
	return
}

func (ors *OrderService) applyStatus(ctx context.Context, order entities.Order, upd models.OrderStatusUpdate) (entities.Order, error) {
	upd.UpdatedAt = ors.now().UTC()
	if err := ors.or.UpdateOrderStatus(ctx, order.Id, upd); err != nil {
		return order, err
	}
	order.Status = upd.Status
	order.UpdatedAt = upd.UpdatedAt
	if upd.PaymentProviderStatus != nil {
		order.PaymentProviderStatus = *upd.PaymentProviderStatus
	}
	if upd.FraudStatus != nil {
		order.FraudStatus = *upd.FraudStatus
	}
	ors.notify(ctx, EventStatusUpdate, order)
	return order, nil
}

// notify never fails the caller; delivery problems are logged.
func (ors *OrderService) notify(ctx context.Context, eventType string, order entities.Order) {
	if ors.notifier == nil {
		return
	}
	res, err := ors.notifier.Notify(ctx, NotificationEvent{Type: eventType, Order: order})
	if err != nil {
		slog.Warn("notification failed", "event", eventType, "order", order.Id, "error", err)
		return
	}
	slog.Info("notification sent", "event", eventType, "order", order.Id,
		"success", res.SuccessCount, "failure", res.FailureCount)
}

func (ors *OrderService) GetOrder(ctx context.Context, orderId string) (order entities.Order, err error) {
	var exists bool
	order, exists, err = ors.or.GetOrderById(ctx, orderId)
	if err != nil {
		return
	}
	if !exists {
		err = fmt.Errorf("%w: order %s", models.ErrNotFoundError, orderId)
	}
	return
}

// GetUserOrder hides other customers' orders behind ErrNotFoundError.
func (ors *OrderService) GetUserOrder(ctx context.Context, ownerId, orderId string) (order entities.Order, err error) {
	order, err = ors.GetOrder(ctx, orderId)
	if err != nil {
		return
	}
	if order.OwnerId != ownerId {
		order = entities.Order{}
		err = fmt.Errorf("%w: order %s", models.ErrNotFoundError, orderId)
	}
	return
}

func (ors *OrderService) ListUserOrders(ctx context.Context, ownerId string, limit, offset int) ([]entities.Order, error) {
	return ors.or.SearchOrders(ctx, models.OrderSearchData{
		OwnerId: &ownerId,
		Limit:   limit,
		Offset:  offset,
	})
}

func (ors *OrderService) SearchOrders(ctx context.Context, data models.OrderSearchData) ([]entities.Order, error) {
	if data.Limit < 0 || data.Offset < 0 {
		return nil, fmt.Errorf("%w: negative limit or offset", models.ErrBadRequest)
	}
	return ors.or.SearchOrders(ctx, data)
}
