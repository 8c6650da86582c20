package handlers

import (
	"log/slog"
	"net/http"

	"bouquetStore/models"

	"github.com/gorilla/mux"
)

//materials

func (h *Handler) ListMaterials(w http.ResponseWriter, r *http.Request) {
	mats, err := h.ms.ListMaterials(r.Context())
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	WriteData(w, http.StatusOK, mats)
}

func (h *Handler) GetMaterial(w http.ResponseWriter, r *http.Request) {
	m, err := h.ms.GetMaterial(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	WriteData(w, http.StatusOK, m)
}

func (h *Handler) CreateMaterial(w http.ResponseWriter, r *http.Request) {
	var req models.MaterialRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	m, err := h.ms.CreateMaterial(r.Context(), req)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	WriteData(w, http.StatusCreated, m)
}

func (h *Handler) UpdateMaterial(w http.ResponseWriter, r *http.Request) {
	var req models.MaterialRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	m, err := h.ms.UpdateMaterial(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	WriteData(w, http.StatusOK, m)
}

func (h *Handler) DeleteMaterial(w http.ResponseWriter, r *http.Request) {
	if err := h.ms.DeleteMaterial(r.Context(), mux.Vars(r)["id"]); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	WriteMessage(w, http.StatusOK, "material deleted")
}

//products

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	prods, err := h.ps.ListProducts(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	WriteData(w, http.StatusOK, prods)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	prod, err := h.ps.GetProduct(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	WriteData(w, http.StatusOK, prod)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req models.ProductRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	prod, err := h.ps.CreateProduct(r.Context(), req)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	WriteData(w, http.StatusCreated, prod)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req models.ProductRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	prod, err := h.ps.UpdateProduct(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	WriteData(w, http.StatusOK, prod)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.ps.DeleteProduct(r.Context(), mux.Vars(r)["id"]); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	WriteMessage(w, http.StatusOK, "product deleted")
}

func (h *Handler) RepriceProducts(w http.ResponseWriter, r *http.Request) {
	updated, failed, err := h.ps.RepriceAll(r.Context())
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	skipped := make(map[string]string, len(failed))
	for id, e := range failed {
		skipped[id] = e.Error()
	}
	slog.Info("RepriceProducts", "updated", updated, "skipped", len(skipped))
	WriteData(w, http.StatusOK, map[string]any{
		"updated": updated,
		"skipped": skipped,
	})
}
