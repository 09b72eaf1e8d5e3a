package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-funnel/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-funnel/internal/infra/logger"
	"github.com/xavierca1/ligue-funnel/internal/usecase"
)

const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Success bool                 `json:"success"`
	Error   *usecase.ErrorDetail `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: &usecase.ErrorDetail{Code: code, Message: message}})
}

// decodeJSON lê o corpo com limite de tamanho; responde 400 e devolve false se falhar.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "invalid JSON body")
		return false
	}
	return true
}

// writeError é o único ponto que traduz erros de caso de uso em status HTTP.
func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	detail := usecase.DescribeError(err)
	status := statusFor(detail.Code)

	if usecase.IsTechnicalError(err) || status >= http.StatusInternalServerError {
		logger.Ctx(r.Context(), log).Error("request failed", zap.String("code", detail.Code), zap.Error(err))
	}
	if usecase.Retryable(err) {
		w.Header().Set("Retry-After", "5")
	}
	writeJSON(w, status, ErrorResponse{Error: detail})
}

func statusFor(code string) int {
	switch code {
	case "":
		return http.StatusOK
	case usecase.CodeValidation:
		return http.StatusBadRequest
	case usecase.CodeNotFound, usecase.CodeReferenceNotFound:
		return http.StatusNotFound
	case usecase.CodeDuplicateEmail, usecase.CodeAlreadyWaitlisted, usecase.CodeDuplicateAccount,
		usecase.CodeInvalidStatusTransition, usecase.CodeStepOutOfOrder:
		return http.StatusConflict
	case usecase.CodeStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// captureInfo lê da requisição os dados de origem gravados no lead.
type captureInfo struct {
	IP, Country, City, UserAgent, Route string
}

func capture(r *http.Request) captureInfo {
	info := captureInfo{
		IP:        middleware.ClientIP(r),
		Country:   r.Header.Get("CloudFront-Viewer-Country-Name"),
		City:      r.Header.Get("CloudFront-Viewer-City"),
		UserAgent: r.UserAgent(),
		Route:     r.Header.Get("X-Page-Route"),
	}
	if info.Country == "" {
		info.Country = r.Header.Get("CloudFront-Viewer-Country")
	}
	if info.Route == "" {
		if ref, err := url.Parse(r.Referer()); err == nil {
			info.Route = ref.Path
		}
	}
	return info
}
