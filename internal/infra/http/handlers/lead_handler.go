package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-funnel/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-funnel/internal/usecase"
)

type LeadHandler struct {
	Leads  *usecase.LeadService
	Logger *zap.Logger
}

func NewLeadHandler(leads *usecase.LeadService, log *zap.Logger) *LeadHandler {
	return &LeadHandler{Leads: leads, Logger: log}
}

// CaptureLead responde 201 quando criou o lead e 200 quando reaproveitou um existente.
func (h *LeadHandler) CaptureLead(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateLeadInput
	if !decodeJSON(w, r, &input) {
		return
	}

	info := capture(r)
	input.IP = info.IP
	input.Country = info.Country
	input.City = info.City
	input.UserAgent = info.UserAgent
	input.Route = info.Route

	out, err := h.Leads.CreateLead(r.Context(), input)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	middleware.RecordLeadCaptured(input.Origin.String(), out.Created)

	status := http.StatusOK
	if out.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, out)
}

func (h *LeadHandler) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	leadID, ok := pathID(w, r, "leadId")
	if !ok {
		return
	}

	var input usecase.CreateSubmissionInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.LeadID = leadID

	sub, err := h.Leads.CreateSubmission(r.Context(), input)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// pathID lê um id numérico positivo da rota; responde 400 se for inválido.
func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, param+" must be a positive integer")
		return 0, false
	}
	return id, true
}
