package handlers

import (
	"errors"
	"net/http"

	"github.com/fieldworks/service-scheduling/internal/apperr"
	"github.com/fieldworks/service-scheduling/internal/domain"
	"github.com/fieldworks/service-scheduling/internal/logx"
	"github.com/fieldworks/service-scheduling/internal/service/booking"
)

// BookingHandler serves the staff direct-confirm endpoint. It bypasses the
// offer protocol but lands in the same validator chokepoint.
type BookingHandler struct {
	usecase bookingUsecase
	logger  logx.Logger
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(logger logx.Logger, uc bookingUsecase) *BookingHandler {
	return &BookingHandler{usecase: uc, logger: logger}
}

// Confirm handles POST /bookings/confirm.
func (h *BookingHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req confirmBookingRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	date, ok := parseDate(req.Date)
	if !ok {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		return
	}

	err := h.usecase.Confirm(r.Context(), req.JobID, req.EngineerID, date, booking.SourceAdminDirect)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, confirmBookingResponse{
			JobID:      req.JobID,
			EngineerID: req.EngineerID,
			Date:       date.Format(dateLayout),
			Status:     string(domain.JobStatusScheduled),
		})
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid input")
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "job or engineer not found")
	case errors.Is(err, apperr.ErrConflict):
		writeError(h.logger, w, r, http.StatusConflict, conflictMessage(err))
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}
