package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/fieldworks/service-scheduling/internal/apperr"
	"github.com/fieldworks/service-scheduling/internal/logx"
	"github.com/fieldworks/service-scheduling/internal/service/recommend"
)

// RecommendHandler serves ranked engineer suggestions for a job.
type RecommendHandler struct {
	usecase recommendUsecase
	logger  logx.Logger
}

// NewRecommendHandler creates a new RecommendHandler.
func NewRecommendHandler(logger logx.Logger, uc recommendUsecase) *RecommendHandler {
	return &RecommendHandler{usecase: uc, logger: logger}
}

// Recommendations handles POST /jobs/{id}/recommendations.
func (h *RecommendHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	jobID, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid job id")
		return
	}

	var req recommendRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	list, err := h.usecase.Recommend(r.Context(), jobID, req.OriginPostcode, recommend.Options{
		HorizonDays:   req.HorizonDays,
		TopN:          req.TopN,
		AdvanceNotice: time.Duration(req.AdvanceNoticeHours) * time.Hour,
		AllowNoDate:   req.AllowNoDate,
	})
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, suggestionsToResponse(list))
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid input")
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "job not found")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}
