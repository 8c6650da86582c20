package handlers

import (
	"net/http"

	"bouquetStore/gateway"
	"bouquetStore/models"

	"github.com/gorilla/mux"
)

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req models.OrderRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	res, err := h.ors.CreateOrder(r.Context(), claimsFrom(r).UserId, req)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	WriteData(w, http.StatusCreated, res)
}

func (h *Handler) GetCurrentUserOrders(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	orders, err := h.ors.ListUserOrders(r.Context(), claimsFrom(r).UserId, limit, offset)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	WriteData(w, http.StatusOK, orders)
}

func (h *Handler) GetUserOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.ors.GetUserOrder(r.Context(), claimsFrom(r).UserId, mux.Vars(r)["id"])
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	WriteData(w, http.StatusOK, order)
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.ors.CancelOrder(r.Context(), claimsFrom(r).UserId, mux.Vars(r)["id"])
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	WriteData(w, http.StatusOK, order)
}

func (h *Handler) PayOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Bank string `json:"bank"`
	}
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			WriteErrorResponse(w, err)
			return
		}
	}
	pay, err := h.ors.PayOrder(r.Context(), claimsFrom(r).UserId, mux.Vars(r)["id"], gateway.PaymentOptions{Bank: req.Bank})
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	WriteData(w, http.StatusOK, pay)
}

func (h *Handler) RetryCartClear(w http.ResponseWriter, r *http.Request) {
	order, err := h.ors.RetryCartClear(r.Context(), claimsFrom(r).UserId, mux.Vars(r)["id"])
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	WriteData(w, http.StatusOK, order)
}

//staff

func (h *Handler) GetOrderById(w http.ResponseWriter, r *http.Request) {
	order, err := h.ors.GetOrder(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	WriteData(w, http.StatusOK, order)
}

func (h *Handler) SearchOrders(w http.ResponseWriter, r *http.Request) {
	searchData := models.OrderSearchData{}
	if ownerId := r.URL.Query().Get("ownerid"); ownerId != "" {
		searchData.OwnerId = &ownerId
	}
	if status := r.URL.Query().Get("status"); status != "" {
		searchData.Status = &status
	}
	var err error
	if searchData.Limit, err = queryInt(r, "limit"); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	if searchData.Offset, err = queryInt(r, "offset"); err != nil {
		WriteErrorResponse(w, err)
		return
	}

	orders, err := h.ors.SearchOrders(r.Context(), searchData)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	WriteData(w, http.StatusOK, orders)
}

func (h *Handler) SetOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req models.StatusRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	order, err := h.ors.SetOrderStatus(r.Context(), mux.Vars(r)["id"], req.Status)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	WriteData(w, http.StatusOK, order)
}

// PaymentNotification is the provider webhook. It is unauthenticated; the payload
// signature is checked by the order service when verification is enabled.
func (h *Handler) PaymentNotification(w http.ResponseWriter, r *http.Request) {
	var n models.PaymentNotification
	if err := decodeJSON(r, &n); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	order, err := h.ors.HandlePaymentNotification(r.Context(), n)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	WriteData(w, http.StatusOK, map[string]string{
		"orderId": order.Id,
		"status":  order.Status,
	})
}
