package entities

import (
	"time"
)

type Material struct {
	Id       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    int64  `json:"price"`
}

// MaterialEntry is one line of a bill of materials.
type MaterialEntry struct {
	MaterialId string `json:"materialId"`
	Quantity   int64  `json:"quantity"`
}

const (
	ProductTypeTemplate = "template"
	ProductTypeCustom   = "custom"
)

type Product struct {
	Id                 string                     `json:"id"`
	Name               string                     `json:"name"`
	Category           string                     `json:"category"`
	Type               string                     `json:"type"`
	RequiresPhoto      bool                       `json:"requiresPhoto"`
	IsCustomizable     bool                       `json:"isCustomizable"`
	ProcessingTimeDays int                        `json:"processingTimeDays"`
	ServiceFee         int64                      `json:"serviceFee"`
	ImageURL           string                     `json:"imageUrl"`
	MaterialsBySize    map[string][]MaterialEntry `json:"materialsBySize"`
	BasePriceBySize    map[string]int64           `json:"basePriceBySize"`
	CreatedAt          time.Time                  `json:"createdAt"`
	UpdatedAt          time.Time                  `json:"updatedAt"`
}

type ProductPreview struct {
	Id              string           `json:"id"`
	Name            string           `json:"name"`
	Category        string           `json:"category"`
	Type            string           `json:"type"`
	ImageURL        string           `json:"imageUrl"`
	BasePriceBySize map[string]int64 `json:"basePriceBySize"`
}

// CartItem keeps TotalPrice as a cache computed when the item was last written.
type CartItem struct {
	Id              string          `json:"id"`
	OwnerId         string          `json:"ownerId"`
	ProductId       string          `json:"productId"`
	ProductName     string          `json:"productName"`
	Size            string          `json:"size"`
	Quantity        int64           `json:"quantity"`
	CustomMaterials []MaterialEntry `json:"customMaterials"`
	ServicePrice    int64           `json:"servicePrice"`
	TotalPrice      int64           `json:"totalPrice"`
	Note            string          `json:"note,omitempty"`
	PhotoURL        string          `json:"photoUrl,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

type CartResponse struct {
	Items      []CartItem `json:"items"`
	TotalPrice int64      `json:"totalPrice"`
}

type CartItemDetail struct {
	CartItem
	CurrentTotal int64 `json:"currentTotal"`
}

// LineItem is a cart item frozen into an order.
type LineItem struct {
	CartItemId      string          `json:"cartItemId"`
	ProductId       string          `json:"productId"`
	ProductName     string          `json:"productName"`
	Size            string          `json:"size"`
	Quantity        int64           `json:"quantity"`
	CustomMaterials []MaterialEntry `json:"customMaterials"`
	ServicePrice    int64           `json:"servicePrice"`
	TotalPrice      int64           `json:"totalPrice"`
	Note            string          `json:"note,omitempty"`
	PhotoURL        string          `json:"photoUrl,omitempty"`
}

const (
	DeliveryPickup   = "pickup"
	DeliveryDelivery = "delivery"
)

type Order struct {
	Id                    string     `json:"id"`
	OwnerId               string     `json:"ownerId"`
	DeliveryMethod        string     `json:"deliveryMethod"`
	Address               string     `json:"address,omitempty"`
	ShippingFee           int64      `json:"shippingFee"`
	PaymentMethod         string     `json:"paymentMethod"`
	PaymentType           string     `json:"paymentType,omitempty"`
	TotalPrice            int64      `json:"totalPrice"`
	LineItems             []LineItem `json:"lineItems"`
	Status                string     `json:"status"`
	PaymentProviderStatus string     `json:"paymentProviderStatus,omitempty"`
	FraudStatus           string     `json:"fraudStatus,omitempty"`
	CartCleared           bool       `json:"cartCleared"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

type PaymentResponse struct {
	TransactionId     string            `json:"transactionId"`
	OrderId           string            `json:"orderId"`
	PaymentType       string            `json:"paymentType"`
	TransactionStatus string            `json:"transactionStatus"`
	GrossAmount       string            `json:"grossAmount"`
	VANumbers         map[string]string `json:"vaNumbers,omitempty"`
	Actions           map[string]string `json:"actions,omitempty"`
	QRString          string            `json:"qrString,omitempty"`
}

type CreateOrderResult struct {
	Order        Order            `json:"order"`
	Payment      *PaymentResponse `json:"payment,omitempty"`
	PaymentError string           `json:"paymentError,omitempty"`
}

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
	RoleStaff    = "staff"
)

type User struct {
	Id    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type DeviceTokenSet struct {
	UserId string   `json:"userId"`
	Tokens []string `json:"tokens"`
}
