package handler

import (
	"net/http"

	"medikart/internal/model"
	"medikart/internal/service"

	"github.com/rs/zerolog"
)

// MedicineHandler handles catalogue HTTP requests.
type MedicineHandler struct {
	service service.CatalogService
	logger  zerolog.Logger
}

// NewMedicineHandler creates a new medicine handler.
func NewMedicineHandler(service service.CatalogService, logger zerolog.Logger) *MedicineHandler {
	return &MedicineHandler{
		service: service,
		logger:  logger.With().Str("handler", "medicine").Logger(),
	}
}

// List handles GET /medicines?search=&category= requests.
func (h *MedicineHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := model.MedicineFilter{
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
	}

	medicines, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	if medicines == nil {
		medicines = []model.Medicine{}
	}

	writeJSON(w, http.StatusOK, medicines)
}

// GetByID handles GET /medicines/{id} requests.
func (h *MedicineHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	medicine, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, medicine)
}

// Create handles POST /medicines requests.
func (h *MedicineHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.MedicineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	medicine, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, medicine)
}

// Update handles PUT /medicines/{id} requests.
func (h *MedicineHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var req model.MedicineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	medicine, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, medicine)
}

// Delete handles DELETE /medicines/{id} requests.
func (h *MedicineHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Medicine deleted"})
}

// Categories handles GET /categories requests.
func (h *MedicineHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	if categories == nil {
		categories = []string{}
	}

	writeJSON(w, http.StatusOK, categories)
}
