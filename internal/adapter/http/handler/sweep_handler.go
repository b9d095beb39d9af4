package handler

import (
	"context"
	"net/http"

	"github.com/online-loan-project/jorngka-backend/internal/adapter/http/dto"
)

// SweepService defines the behavior needed by SweepHandler.
type SweepService interface {
	RunLateSweep(ctx context.Context) (int, error)
	RunUpcomingReminderSweep(ctx context.Context) (int, error)
}

// SweepHandler triggers the scheduled sweeps on demand.
type SweepHandler struct {
	sweeperUC SweepService
}

// NewSweepHandler creates a new SweepHandler.
func NewSweepHandler(sweeperUC SweepService) *SweepHandler {
	return &SweepHandler{sweeperUC: sweeperUC}
}

// Late marks overdue unpaid installments late and notifies borrowers.
func (h *SweepHandler) Late(w http.ResponseWriter, r *http.Request) {
	marked, err := h.sweeperUC.RunLateSweep(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "late sweep failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SweepResponse{Processed: marked})
}

// Upcoming sends reminders for installments due inside the reminder window.
func (h *SweepHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	notified, err := h.sweeperUC.RunUpcomingReminderSweep(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "upcoming sweep failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SweepResponse{Processed: notified})
}
