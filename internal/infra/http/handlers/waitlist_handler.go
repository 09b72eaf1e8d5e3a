package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-funnel/internal/entity"
	"github.com/xavierca1/ligue-funnel/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-funnel/internal/usecase"
)

type WaitlistHandler struct {
	Waitlist *usecase.WaitlistService
	Logger   *zap.Logger
}

func NewWaitlistHandler(waitlist *usecase.WaitlistService, log *zap.Logger) *WaitlistHandler {
	return &WaitlistHandler{Waitlist: waitlist, Logger: log}
}

// Join devolve sempre o CreateWaitlistEntryOutput; só o status HTTP muda com o resultado.
func (h *WaitlistHandler) Join(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateWaitlistEntryInput
	if !decodeJSON(w, r, &input) {
		return
	}
	out := h.Waitlist.CreateWaitlistEntry(r.Context(), input)
	middleware.RecordWaitlistJoin(out.Code)

	status := statusFor(out.Code)
	if out.Success {
		status = http.StatusCreated
	}
	writeJSON(w, status, out)
}

type updateStatusRequest struct {
	Status entity.WaitlistStatus `json:"status"`
}

func (h *WaitlistHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	entryID, ok := pathID(w, r, "entryId")
	if !ok {
		return
	}

	var req updateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	entry, err := h.Waitlist.UpdateStatus(r.Context(), entryID, req.Status)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
