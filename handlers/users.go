package handlers

import (
	"net/http"

	"bouquetStore/models"
)

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	creds := models.Credentials{}
	if err := decodeJSON(r, &creds); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	user, err := h.us.Signup(r.Context(), creds)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	WriteData(w, http.StatusCreated, user)
}

func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	creds := models.Credentials{}
	if err := decodeJSON(r, &creds); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	token, user, err := h.us.Signin(r.Context(), creds.Email, creds.Password)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	WriteData(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.us.Logout(r.Context(), claimsFrom(r)); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	WriteMessage(w, http.StatusOK, "logged out")
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.us.GetUser(r.Context(), claimsFrom(r).UserId)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	WriteData(w, http.StatusOK, user)
}

// CreateUser is the staff-only path for creating accounts with any role.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	creds := models.Credentials{}
	if err := decodeJSON(r, &creds); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	user, err := h.us.CreateUser(r.Context(), creds)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	WriteData(w, http.StatusCreated, user)
}

func (h *Handler) RegisterTokens(w http.ResponseWriter, r *http.Request) {
	var req models.TokenRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	if err := h.ns.RegisterTokens(r.Context(), claimsFrom(r).UserId, req.Tokens); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	WriteMessage(w, http.StatusOK, "tokens registered")
}

func (h *Handler) UnregisterTokens(w http.ResponseWriter, r *http.Request) {
	var req models.TokenRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	if err := h.ns.UnregisterTokens(r.Context(), claimsFrom(r).UserId, req.Tokens); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	WriteMessage(w, http.StatusOK, "tokens removed")
}
