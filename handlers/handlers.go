package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"bouquetStore/models"
	"bouquetStore/services"
)

type Handler struct {
	us         services.UserService
	ms         services.MaterialService
	ps         services.ProductService
	cs         services.CartService
	ors        services.OrderService
	ns         *services.NotificationService
	staffRoles []string
}

type HandlerParams struct {
	UsrService   services.UserService
	MatService   services.MaterialService
	PrdService   services.ProductService
	CrtService   services.CartService
	OrdService   services.OrderService
	NotifService *services.NotificationService
	StaffRoles   []string
}

func NewHandler(params HandlerParams) *Handler {
	return &Handler{
		us:         params.UsrService,
		ms:         params.MatService,
		ps:         params.PrdService,
		cs:         params.CrtService,
		ors:        params.OrdService,
		ns:         params.NotifService,
		staffRoles: params.StaffRoles,
	}
}

const (
	statusSuccess = "success"
	statusFail    = "fail"
	statusError   = "error"
)

// envelope is the body of every JSON response: "fail" for client mistakes, "error" for
// server or upstream problems.
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("writeJSON", "error", err)
	}
}

func WriteData(w http.ResponseWriter, code int, data any) {
	writeJSON(w, code, envelope{Status: statusSuccess, Data: data})
}

func WriteMessage(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, envelope{Status: statusSuccess, Message: message})
}

// WriteErrorResponse maps an error kind to its HTTP status. Client errors carry the
// error text; server errors only the kind.
func WriteErrorResponse(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrBadRequest):
		writeJSON(w, http.StatusBadRequest, envelope{Status: statusFail, Message: err.Error()})
	case errors.Is(err, models.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, envelope{Status: statusFail, Message: models.ErrUnauthorized.Error()})
	case errors.Is(err, models.ErrForbidden):
		writeJSON(w, http.StatusForbidden, envelope{Status: statusFail, Message: models.ErrForbidden.Error()})
	case errors.Is(err, models.ErrNotFoundError):
		writeJSON(w, http.StatusNotFound, envelope{Status: statusFail, Message: err.Error()})
	case errors.Is(err, models.ErrNotAllowed):
		writeJSON(w, http.StatusConflict, envelope{Status: statusFail, Message: err.Error()})
	case errors.Is(err, models.ErrUpstreamError):
		slog.Error("upstream failure", "error", err)
		writeJSON(w, http.StatusBadGateway, envelope{Status: statusError, Message: models.ErrUpstreamError.Error()})
	default:
		if !errors.Is(err, models.ErrServerError) {
			slog.Error("unclassified error", "error", err)
		}
		writeJSON(w, http.StatusInternalServerError, envelope{Status: statusError, Message: models.ErrServerError.Error()})
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		slog.Debug("Unmarshal", "path", r.URL.Path, "error", err)
		return fmt.Errorf("%w: malformed request body", models.ErrBadRequest)
	}
	return nil
}

// queryInt reads a non-negative integer query parameter, returning 0 when absent.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", models.ErrBadRequest, name)
	}
	return n, nil
}
