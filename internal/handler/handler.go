package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"restaurant-offers/internal/models"
	"restaurant-offers/internal/service"
	"restaurant-offers/internal/validation"
)

// Handler provides HTTP handlers for the API.
type Handler struct {
	service     *service.Service
	maxBodySize int64
}

// NewHandlerOptions holds options for creating a handler.
type NewHandlerOptions struct {
	MaxBodySize int64
}

// DefaultHandlerOptions returns default handler options.
func DefaultHandlerOptions() NewHandlerOptions {
	return NewHandlerOptions{
		MaxBodySize: 1 << 20, // pending rows are small; 1MB is generous
	}
}

// NewHandler creates a new handler instance.
func NewHandler(svc *service.Service) *Handler {
	return NewHandlerWithOptions(svc, DefaultHandlerOptions())
}

// NewHandlerWithOptions creates a new handler instance with custom options.
func NewHandlerWithOptions(svc *service.Service, opts NewHandlerOptions) *Handler {
	return &Handler{
		service:     svc,
		maxBodySize: opts.MaxBodySize,
	}
}

// SubmitOffer handles POST /restaurants/{restaurant_id}/offers
func (h *Handler) SubmitOffer(w http.ResponseWriter, r *http.Request) {
	restaurantID := validation.SanitizeString(chi.URLParam(r, "restaurant_id"))
	if restaurantID == "" {
		h.respondError(w, http.StatusBadRequest, "restaurant_id is required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var req models.SubmitOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err == io.EOF {
			h.respondError(w, http.StatusBadRequest, "request body is required")
			return
		}
		h.respondError(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}

	if err := h.service.SubmitOffer(r.Context(), restaurantID, req); err != nil {
		h.respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// GetPendingOffers handles GET /restaurants/{restaurant_id}/offers/pending
func (h *Handler) GetPendingOffers(w http.ResponseWriter, r *http.Request) {
	restaurantID := validation.SanitizeString(chi.URLParam(r, "restaurant_id"))
	if restaurantID == "" {
		h.respondError(w, http.StatusBadRequest, "restaurant_id is required")
		return
	}

	pending, err := h.service.PendingOffers(r.Context(), restaurantID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	if pending == nil {
		pending = []models.PendingOffer{}
	}

	h.respondJSON(w, http.StatusOK, pending)
}

// GetActiveOffers handles GET /restaurants/{restaurant_id}/offers
func (h *Handler) GetActiveOffers(w http.ResponseWriter, r *http.Request) {
	restaurantID := validation.SanitizeString(chi.URLParam(r, "restaurant_id"))
	if restaurantID == "" {
		h.respondError(w, http.StatusBadRequest, "restaurant_id is required")
		return
	}

	offers, err := h.service.ActiveOffers(r.Context(), restaurantID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	if offers == nil {
		offers = []models.Offer{}
	}

	h.respondJSON(w, http.StatusOK, offers)
}

// SyncOffers handles POST /restaurants/{restaurant_id}/offers/sync
func (h *Handler) SyncOffers(w http.ResponseWriter, r *http.Request) {
	restaurantID := validation.SanitizeString(chi.URLParam(r, "restaurant_id"))
	if restaurantID == "" {
		h.respondError(w, http.StatusBadRequest, "restaurant_id is required")
		return
	}

	deleted := h.service.Sync(r.Context(), restaurantID)
	h.respondJSON(w, http.StatusOK, models.SyncResponse{Deleted: deleted})
}

// GetOfferTypes handles GET /offer-types
func (h *Handler) GetOfferTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.service.OfferTypes(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, types)
}

// respondServiceError maps service errors to status codes: validation
// failures are the client's fault, everything else is a store problem.
func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	var vErr *validation.ValidationError
	if errors.As(err, &vErr) {
		h.respondError(w, http.StatusBadRequest, vErr.Error())
		return
	}
	h.respondError(w, http.StatusInternalServerError, err.Error())
}

// respondJSON sends a JSON response with the given status code.
func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response with the given status code and message.
func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, models.ErrorResponse{Error: message})
}
