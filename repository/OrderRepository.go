package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"

	"bouquetStore/entities"
	"bouquetStore/models"
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, order entities.Order) (err error)
	GetOrderById(ctx context.Context, orderId string) (order entities.Order, exists bool, err error)
	SearchOrders(ctx context.Context, data models.OrderSearchData) (orders []entities.Order, err error)
	UpdateOrderStatus(ctx context.Context, orderId string, upd models.OrderStatusUpdate) (err error)
	MarkCartCleared(ctx context.Context, orderId string) (err error)
}

type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepository(conn *sql.DB) (OrderRepository, error) {
	if conn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	err := conn.Ping()
	if err != nil {
		return nil, err
	}
	return &OrderRepo{
		db: conn,
	}, nil
}

const orderColumns = `id, owner_id, delivery_method, address, shipping_fee, payment_method, payment_type,
	total_price, line_items, status, payment_provider_status, fraud_status, cart_cleared, created_at, updated_at`

func scanOrder(row rowScanner) (o entities.Order, err error) {
	var items []byte
	err = row.Scan(&o.Id, &o.OwnerId, &o.DeliveryMethod, &o.Address, &o.ShippingFee, &o.PaymentMethod,
		&o.PaymentType, &o.TotalPrice, &items, &o.Status, &o.PaymentProviderStatus, &o.FraudStatus,
		&o.CartCleared, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return
	}
	err = json.Unmarshal(items, &o.LineItems)
	return
}

func (o *OrderRepo) CreateOrder(ctx context.Context, order entities.Order) (err error) {
	items, e := json.Marshal(order.LineItems)
	if e != nil {
		slog.Error("CreateOrder[1]", "error", e)
		err = models.ErrServerError
		return
	}
	_, err = o.db.ExecContext(ctx, `INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		order.Id, order.OwnerId, order.DeliveryMethod, order.Address, order.ShippingFee, order.PaymentMethod,
		order.PaymentType, order.TotalPrice, items, order.Status, order.PaymentProviderStatus, order.FraudStatus,
		order.CartCleared, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		slog.Error("CreateOrder[2]", "error", err)
		err = models.ErrServerError
	}
	return
}

func (o *OrderRepo) GetOrderById(ctx context.Context, orderId string) (order entities.Order, exists bool, err error) {
	row := o.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", orderId)
	order, err = scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = nil
		} else {
			slog.Error("GetOrderById", "id", orderId, "error", err)
			err = models.ErrServerError
		}
		return
	}
	exists = true
	return
}

func (o *OrderRepo) SearchOrders(ctx context.Context, data models.OrderSearchData) (orders []entities.Order, err error) {
	var queryParams []any
	var count int

	query := "SELECT " + orderColumns + " FROM orders WHERE "
	if data.OwnerId != nil {
		count = count + 1
		query = query + "owner_id = $" + strconv.Itoa(count) + " AND "
		queryParams = append(queryParams, *data.OwnerId)
	}
	if data.Status != nil {
		count = count + 1
		query = query + "status = $" + strconv.Itoa(count) + " AND "
		queryParams = append(queryParams, *data.Status)
	}
	if count > 0 {
		query = query[0 : len(query)-4] //AND
	} else {
		query = query[0 : len(query)-6] //WHERE
	}
	query = query + "ORDER BY created_at DESC"
	if data.Limit > 0 {
		count = count + 1
		query = query + " LIMIT $" + strconv.Itoa(count)
		queryParams = append(queryParams, data.Limit)
	}
	if data.Offset > 0 {
		count = count + 1
		query = query + " OFFSET $" + strconv.Itoa(count)
		queryParams = append(queryParams, data.Offset)
	}

	rows, e := o.db.QueryContext(ctx, query, queryParams...)
	if e != nil {
		slog.Error("SearchOrders[1]", "error", e)
		err = models.ErrServerError
		return
	}
	defer rows.Close()

	orders = []entities.Order{}
	for rows.Next() {
		var ord entities.Order
		ord, err = scanOrder(rows)
		if err != nil {
			slog.Error("SearchOrders[2]", "error", err)
			err = models.ErrServerError
			return
		}
		orders = append(orders, ord)
	}
	if err = rows.Err(); err != nil {
		slog.Error("SearchOrders[3]", "error", err)
		err = models.ErrServerError
	}
	return
}

// UpdateOrderStatus writes status and updated_at, and the provider audit fields when set.
// A single-row update is atomic; concurrent updates are last-write-wins.
func (o *OrderRepo) UpdateOrderStatus(ctx context.Context, orderId string, upd models.OrderStatusUpdate) (err error) {
	var res sql.Result
	var e error
	if upd.PaymentProviderStatus != nil || upd.FraudStatus != nil {
		res, e = o.db.ExecContext(ctx, `UPDATE orders SET status = $1,
			payment_provider_status = COALESCE($2, payment_provider_status),
			fraud_status = COALESCE($3, fraud_status), updated_at = $4 WHERE id = $5`,
			upd.Status, upd.PaymentProviderStatus, upd.FraudStatus, upd.UpdatedAt, orderId)
	} else {
		res, e = o.db.ExecContext(ctx, "UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3",
			upd.Status, upd.UpdatedAt, orderId)
	}
	if e != nil {
		slog.Error("UpdateOrderStatus", "id", orderId, "error", e)
		err = models.ErrServerError
		return
	}
	err = expectOneRow(res, "UpdateOrderStatus")
	return
}

func (o *OrderRepo) MarkCartCleared(ctx context.Context, orderId string) (err error) {
	res, e := o.db.ExecContext(ctx, "UPDATE orders SET cart_cleared = TRUE WHERE id = $1", orderId)
	if e != nil {
		slog.Error("MarkCartCleared", "id", orderId, "error", e)
		err = models.ErrServerError
		return
	}
	err = expectOneRow(res, "MarkCartCleared")
	return
}
