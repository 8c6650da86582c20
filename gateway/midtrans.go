package gateway

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"bouquetStore/config"
	"bouquetStore/entities"
	"bouquetStore/models"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
)

var supportedPaymentTypes = map[string]coreapi.CoreapiPaymentType{
	"bank_transfer": coreapi.PaymentTypeBankTransfer,
	"gopay":         coreapi.PaymentTypeGopay,
	"qris":          coreapi.PaymentTypeQris,
	"shopeepay":     coreapi.PaymentTypeShopeepay,
}

type PaymentOptions struct {
	Bank string
}

type PaymentGateway interface {
	CreateTransaction(ctx context.Context, orderId string, amount int64, paymentType string, opts PaymentOptions) (entities.PaymentResponse, error)
	VerifySignature(n models.PaymentNotification) bool
}

// IsSupportedPaymentType reports whether the gateway can charge paymentType.
func IsSupportedPaymentType(paymentType string) bool {
	_, ok := supportedPaymentTypes[paymentType]
	return ok
}

type chargeFunc func(req *coreapi.ChargeReq) (*coreapi.ChargeResponse, *midtrans.Error)

type MidtransGateway struct {
	charge    chargeFunc
	serverKey string
}

func NewMidtransGateway(cfg config.PaymentConfig) *MidtransGateway {
	env := midtrans.Sandbox
	if cfg.Production {
		env = midtrans.Production
	}
	var c coreapi.Client
	c.New(cfg.ServerKey, env)
	return &MidtransGateway{
		charge:    c.ChargeTransaction,
		serverKey: cfg.ServerKey,
	}
}

func (g *MidtransGateway) CreateTransaction(ctx context.Context, orderId string, amount int64, paymentType string, opts PaymentOptions) (resp entities.PaymentResponse, err error) {
	pt, ok := supportedPaymentTypes[paymentType]
	if !ok {
		err = fmt.Errorf("%w: payment type %q is not supported", models.ErrBadRequest, paymentType)
		return
	}
	req := &coreapi.ChargeReq{
		PaymentType: pt,
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderId,
			GrossAmt: amount,
		},
	}
	if pt == coreapi.PaymentTypeBankTransfer {
		bank := opts.Bank
		if bank == "" {
			bank = "bca"
		}
		req.BankTransfer = &coreapi.BankTransferDetails{Bank: midtrans.Bank(bank)}
	}

	res, mErr := g.charge(req)
	if mErr != nil {
		err = fmt.Errorf("%w: midtrans charge: status %d: %s", models.ErrUpstreamError, mErr.StatusCode, mErr.Message)
		return
	}
	if res == nil {
		err = fmt.Errorf("%w: midtrans charge returned no body", models.ErrUpstreamError)
		return
	}

	resp = entities.PaymentResponse{
		TransactionId:     res.TransactionID,
		OrderId:           res.OrderID,
		PaymentType:       res.PaymentType,
		TransactionStatus: res.TransactionStatus,
		GrossAmount:       res.GrossAmount,
		QRString:          res.QRString,
	}
	if len(res.VaNumbers) > 0 {
		resp.VANumbers = make(map[string]string, len(res.VaNumbers))
		for _, va := range res.VaNumbers {
			resp.VANumbers[va.Bank] = va.VANumber
		}
	}
	if len(res.Actions) > 0 {
		resp.Actions = make(map[string]string, len(res.Actions))
		for _, a := range res.Actions {
			resp.Actions[a.Name] = a.URL
		}
	}
	return
}

// VerifySignature checks signature_key = sha512(order_id + status_code + gross_amount + server_key).
func (g *MidtransGateway) VerifySignature(n models.PaymentNotification) bool {
	expected := NotificationSignature(n.OrderId, n.StatusCode, n.GrossAmount, g.serverKey)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(n.SignatureKey)) == 1
}

func NotificationSignature(orderId, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderId + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}
