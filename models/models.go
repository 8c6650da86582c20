package models

import (
	"errors"
	"time"

	"bouquetStore/entities"

	"github.com/golang-jwt/jwt/v5"
)

var ErrBadRequest = errors.New("bad request")
var ErrUnauthorized = errors.New("unauthorized")
var ErrForbidden = errors.New("forbidden")
var ErrServerError = errors.New("server error")
var ErrNotFoundError = errors.New("not found")
var ErrNotAllowed = errors.New("not allowed")
var ErrUpstreamError = errors.New("upstream failure")

type Credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Claims is the access token payload. RegisteredClaims.ID carries the session id.
type Claims struct {
	UserId string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type User_db struct {
	Id       string
	Name     string
	Email    string
	Password string
	Role     string
}

type MaterialRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    *int64 `json:"price"`
}

type ProductRequest struct {
	Name               string                              `json:"name"`
	Category           string                              `json:"category"`
	Type               string                              `json:"type"`
	RequiresPhoto      bool                                `json:"requiresPhoto"`
	IsCustomizable     bool                                `json:"isCustomizable"`
	ProcessingTimeDays int                                 `json:"processingTimeDays"`
	ServiceFee         int64                               `json:"serviceFee"`
	ImageURL           string                              `json:"imageUrl"`
	MaterialsBySize    map[string][]entities.MaterialEntry `json:"materialsBySize"`
}

type CartRequest struct {
	ProductId       string                   `json:"productId"`
	Size            string                   `json:"size"`
	Quantity        int64                    `json:"quantity"`
	CustomMaterials []entities.MaterialEntry `json:"customMaterials"`
	Note            string                   `json:"note"`
	PhotoURL        string                   `json:"photoUrl"`
}

type CartUpdateRequest struct {
	Quantity        int64                    `json:"quantity"`
	CustomMaterials []entities.MaterialEntry `json:"customMaterials"`
}

type OrderRequest struct {
	DeliveryMethod string `json:"deliveryMethod"`
	Address        string `json:"address"`
	ShippingFee    *int64 `json:"shippingFee"`
	PaymentMethod  string `json:"paymentMethod"`
	PaymentType    string `json:"paymentType"`
	Bank           string `json:"bank"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

// PaymentNotification is the webhook body posted by the payment provider.
type PaymentNotification struct {
	TransactionStatus string `json:"transaction_status"`
	OrderId           string `json:"order_id"`
	FraudStatus       string `json:"fraud_status"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	PaymentType       string `json:"payment_type"`
	TransactionId     string `json:"transaction_id"`
}

type TokenRequest struct {
	Tokens []string `json:"tokens"`
}

type OrderSearchData struct {
	OwnerId *string
	Status  *string
	Limit   int
	Offset  int
}

// OrderStatusUpdate is the set of fields a status transition writes.
type OrderStatusUpdate struct {
	Status                string
	PaymentProviderStatus *string
	FraudStatus           *string
	UpdatedAt             time.Time
}
