package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fieldworks/service-scheduling/internal/apperr"
	"github.com/fieldworks/service-scheduling/internal/domain"
	"github.com/fieldworks/service-scheduling/internal/logx"
	"github.com/fieldworks/service-scheduling/internal/service/offer"
)

// OfferHandler serves the staff-facing offer endpoints and the public
// token-bearer response endpoint.
type OfferHandler struct {
	usecase offerUsecase
	logger  logx.Logger
}

// NewOfferHandler creates a new OfferHandler.
func NewOfferHandler(logger logx.Logger, uc offerUsecase) *OfferHandler {
	return &OfferHandler{usecase: uc, logger: logger}
}

// Create handles POST /offers.
func (h *OfferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOfferRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	date, ok := parseDate(req.Date)
	if !ok {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		return
	}

	o, err := h.usecase.Create(r.Context(), offer.CreateInput{
		JobID:      req.JobID,
		EngineerID: req.EngineerID,
		Date:       date,
		Window:     req.Window,
		Channel:    domain.OfferChannel(req.Channel),
	})
	switch {
	case err == nil:
		w.Header().Set("Location", "/offers/"+strconv.FormatInt(o.ID, 10))
		writeJSON(h.logger, w, r, http.StatusCreated, offerToResponse(o))
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

// Resend handles POST /offers/{id}/resend.
func (h *OfferHandler) Resend(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid offer id")
		return
	}

	o, err := h.usecase.Resend(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, offerToResponse(o))
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "offer not found")
	case errors.Is(err, apperr.ErrAlreadyResolved):
		writeError(h.logger, w, r, http.StatusConflict, "offer already resolved")
	case errors.Is(err, apperr.ErrExpired):
		writeError(h.logger, w, r, http.StatusGone, "offer expired")
	case errors.Is(err, apperr.ErrConflict):
		writeError(h.logger, w, r, http.StatusConflict, conflictMessage(err))
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// Respond handles POST /offer-response/{token}. This is the unauthenticated
// client surface: the bearer token is the whole credential, and responses
// never leak whether a token was valid beyond the enumerated errors.
func (h *OfferHandler) Respond(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(chi.URLParam(r, "token"))
	if token == "" {
		writeError(h.logger, w, r, http.StatusBadRequest, "missing token")
		return
	}

	var req respondOfferRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	decision, err := offer.ParseDecision(req.Decision)
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "decision must be accept or reject")
		return
	}

	o, err := h.usecase.Respond(r.Context(), token, decision, req.Reason)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, respondOfferResponse{
			OfferStatus: string(o.Status),
			OfferedDate: o.OfferedDate.Format(dateLayout),
		})
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "unknown token")
	case errors.Is(err, apperr.ErrAlreadyResolved):
		writeError(h.logger, w, r, http.StatusConflict, "offer already resolved")
	case errors.Is(err, apperr.ErrExpired):
		writeError(h.logger, w, r, http.StatusGone, "offer expired")
	case errors.Is(err, apperr.ErrConflictOnAccept):
		writeError(h.logger, w, r, http.StatusConflict, "slot no longer available")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, apperr.ErrNotAvailableOnDate):
		return "engineer not available on that date"
	case errors.Is(err, apperr.ErrAtCapacity):
		return "engineer at capacity for that date"
	case errors.Is(err, apperr.ErrExceedsWorkingHours):
		return "job exceeds engineer working hours"
	default:
		return "conflict"
	}
}
