package handlers

import (
	"net/http"

	"github.com/fieldworks/service-scheduling/internal/logx"
)

// StatusHandler serves the dashboard aggregate counts.
type StatusHandler struct {
	usecase statusUsecase
	logger  logx.Logger
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(logger logx.Logger, uc statusUsecase) *StatusHandler {
	return &StatusHandler{usecase: uc, logger: logger}
}

// Counts handles GET /status/counts.
func (h *StatusHandler) Counts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.usecase.Counts(r.Context())
	if err != nil {
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, counts)
}
