package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/AllexanderGM/feeling-sub000/internal/api/shared"
	"github.com/AllexanderGM/feeling-sub000/internal/domain"
	"github.com/AllexanderGM/feeling-sub000/internal/store"
)

// BookingHandler handles booking API requests. Numeric-id ownership of
// mutations is enforced upstream by the pipeline.
type BookingHandler struct {
	bookingStore store.BookingStore
	validator    *validator.Validate
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingStore store.BookingStore) *BookingHandler {
	return &BookingHandler{
		bookingStore: bookingStore,
		validator:    validator.New(),
	}
}

func bookingResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:         b.ID,
		OwnerEmail: b.OwnerEmail,
		Venue:      b.Venue,
		StartsAt:   b.StartsAt,
	}
}

func bookingID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// CreateBooking handles POST /api/bookings.
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.GetPrincipal(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateBookingRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	now := time.Now().UTC()
	booking := &domain.Booking{
		OwnerEmail: principal.Email,
		Venue:      req.Venue,
		StartsAt:   req.StartsAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := booking.Validate(); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid booking data: "+err.Error())
		return
	}

	if err := h.bookingStore.Create(r.Context(), booking); err != nil {
		slog.Error("failed to create booking", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to create booking")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, bookingResponse(booking))
}

// GetBooking handles GET /api/bookings/{id}.
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := bookingID(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid booking ID")
		return
	}

	booking, err := h.bookingStore.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrBookingNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Booking not found")
			return
		}
		slog.Error("failed to load booking", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to load booking")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, bookingResponse(booking))
}

// UpdateBooking handles PUT /api/bookings/{id}.
func (h *BookingHandler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	id, err := bookingID(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid booking ID")
		return
	}

	var req UpdateBookingRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	booking, err := h.bookingStore.GetByID(r.Context(), id)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "Booking not found")
		return
	}

	booking.Venue = req.Venue
	booking.StartsAt = req.StartsAt
	booking.UpdatedAt = time.Now().UTC()

	if err := h.bookingStore.Update(r.Context(), booking); err != nil {
		slog.Error("failed to update booking", "error", err, "booking_id", id)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to update booking")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, bookingResponse(booking))
}

// DeleteBooking handles DELETE /api/bookings/{id}.
func (h *BookingHandler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	id, err := bookingID(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid booking ID")
		return
	}

	if err := h.bookingStore.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrBookingNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Booking not found")
			return
		}
		slog.Error("failed to delete booking", "error", err, "booking_id", id)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to delete booking")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
