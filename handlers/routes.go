package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes mounts the API on router: public, customer (bearer token) and staff routes.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.Use(LoggingMiddleware)
	router.Use(h.ErrorHandleMiddleware)

	subAuth := router.NewRoute().Subrouter()
	subAuth.Use(h.AuthMiddleware)
	subStaff := router.NewRoute().Subrouter()
	subStaff.Use(h.AuthMiddleware, h.StaffMiddleware)

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteMessage(w, http.StatusOK, "ok")
	}).Methods("GET")

	router.HandleFunc("/users/signup", h.Signup).Methods("POST")
	router.HandleFunc("/users/signin", h.Signin).Methods("POST")
	subAuth.HandleFunc("/users/logout", h.Logout).Methods("POST")
	subAuth.HandleFunc("/users/me", h.Me).Methods("GET")
	subAuth.HandleFunc("/users/me/tokens", h.RegisterTokens).Methods("POST")
	subAuth.HandleFunc("/users/me/tokens", h.UnregisterTokens).Methods("DELETE")
	subStaff.HandleFunc("/users", h.CreateUser).Methods("POST")

	router.HandleFunc("/products", h.ListProducts).Methods("GET")
	router.HandleFunc("/products/{id}", h.GetProduct).Methods("GET")
	subStaff.HandleFunc("/products", h.CreateProduct).Methods("POST")
	subStaff.HandleFunc("/products/reprice", h.RepriceProducts).Methods("POST")
	subStaff.HandleFunc("/products/{id}", h.UpdateProduct).Methods("PUT")
	subStaff.HandleFunc("/products/{id}", h.DeleteProduct).Methods("DELETE")

	subStaff.HandleFunc("/materials", h.ListMaterials).Methods("GET")
	subStaff.HandleFunc("/materials", h.CreateMaterial).Methods("POST")
	subStaff.HandleFunc("/materials/{id}", h.GetMaterial).Methods("GET")
	subStaff.HandleFunc("/materials/{id}", h.UpdateMaterial).Methods("PUT")
	subStaff.HandleFunc("/materials/{id}", h.DeleteMaterial).Methods("DELETE")

	subAuth.HandleFunc("/cart", h.GetCart).Methods("GET")
	subAuth.HandleFunc("/cart/items", h.AddToCart).Methods("POST")
	subAuth.HandleFunc("/cart/items/{id}", h.GetCartItem).Methods("GET")
	subAuth.HandleFunc("/cart/items/{id}", h.UpdateCartItem).Methods("PUT")
	subAuth.HandleFunc("/cart/items/{id}", h.DeleteFromCart).Methods("DELETE")

	subAuth.HandleFunc("/orders", h.CreateOrder).Methods("POST")
	subAuth.HandleFunc("/orders", h.GetCurrentUserOrders).Methods("GET")
	subAuth.HandleFunc("/orders/{id}", h.GetUserOrder).Methods("GET")
	subAuth.HandleFunc("/orders/{id}/cancel", h.CancelOrder).Methods("POST")
	subAuth.HandleFunc("/orders/{id}/pay", h.PayOrder).Methods("POST")
	subAuth.HandleFunc("/orders/{id}/clear-cart", h.RetryCartClear).Methods("POST")

	subStaff.HandleFunc("/admin/orders", h.SearchOrders).Methods("GET")
	subStaff.HandleFunc("/admin/orders/{id}", h.GetOrderById).Methods("GET")
	subStaff.HandleFunc("/admin/orders/{id}/status", h.SetOrderStatus).Methods("PUT")

	router.HandleFunc("/payments/notification", h.PaymentNotification).Methods("POST")
}
