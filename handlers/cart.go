package handlers

import (
	"net/http"

	"bouquetStore/models"

	"github.com/gorilla/mux"
)

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cs.GetCart(r.Context(), claimsFrom(r).UserId)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	WriteData(w, http.StatusOK, cart)
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req models.CartRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	item, err := h.cs.AddCartItem(r.Context(), claimsFrom(r).UserId, req)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	WriteData(w, http.StatusCreated, item)
}

func (h *Handler) GetCartItem(w http.ResponseWriter, r *http.Request) {
	detail, err := h.cs.GetCartItemDetail(r.Context(), claimsFrom(r).UserId, mux.Vars(r)["id"])
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	WriteData(w, http.StatusOK, detail)
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req models.CartUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	item, err := h.cs.UpdateCartItem(r.Context(), claimsFrom(r).UserId, mux.Vars(r)["id"], req)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	WriteData(w, http.StatusOK, item)
}

func (h *Handler) DeleteFromCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cs.RemoveCartItem(r.Context(), claimsFrom(r).UserId, mux.Vars(r)["id"]); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	WriteMessage(w, http.StatusOK, "item removed")
}
