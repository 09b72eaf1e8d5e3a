package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-funnel/internal/entity"
	"github.com/xavierca1/ligue-funnel/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-funnel/internal/usecase"
)

type EnrollmentHandler struct {
	Enrollment *usecase.EnrollmentService
	Logger     *zap.Logger
}

func NewEnrollmentHandler(enrollment *usecase.EnrollmentService, log *zap.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{Enrollment: enrollment, Logger: log}
}

func (h *EnrollmentHandler) Identification(w http.ResponseWriter, r *http.Request) {
	var input usecase.IdentificationInput
	if !decodeJSON(w, r, &input) {
		return
	}

	info := capture(r)
	input.IP = info.IP
	input.Country = info.Country
	input.City = info.City
	input.UserAgent = info.UserAgent
	input.Route = info.Route

	out, err := h.Enrollment.CompleteIdentification(r.Context(), input)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	middleware.RecordEnrollmentStep(string(entity.StepIdentification))
	writeJSON(w, http.StatusCreated, out)
}

func (h *EnrollmentHandler) Payment(w http.ResponseWriter, r *http.Request) {
	leadID, ok := pathID(w, r, "leadId")
	if !ok {
		return
	}

	var input usecase.PaymentInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.LeadID = leadID

	out, err := h.Enrollment.CompletePayment(r.Context(), input)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	middleware.RecordEnrollmentStep(string(entity.StepPayment))
	writeJSON(w, http.StatusOK, out)
}

type progressResponse struct {
	entity.EnrollmentStepState
	CanAccessPayment bool `json:"can_access_payment"`
	EnrollmentLead   bool `json:"is_enrollment_lead"`
}

func (h *EnrollmentHandler) Progress(w http.ResponseWriter, r *http.Request) {
	leadID, ok := pathID(w, r, "leadId")
	if !ok {
		return
	}

	state, err := h.Enrollment.Progress(r.Context(), leadID)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	enrollmentLead, err := h.Enrollment.IsEnrollmentLead(r.Context(), leadID)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	writeJSON(w, http.StatusOK, progressResponse{
		EnrollmentStepState: state,
		CanAccessPayment:    entity.CanAccessPaymentStep(state),
		EnrollmentLead:      enrollmentLead,
	})
}
