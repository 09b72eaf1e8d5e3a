package handlers

import (
	"context"
	"net/http"
	"time"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// BrokerStatus é satisfeito por *amqp091.Connection.
type BrokerStatus interface {
	IsClosed() bool
}

type HealthHandler struct {
	DB        Pinger
	RabbitMQ  BrokerStatus
	Version   string
	StartTime time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

func NewHealthHandler(db Pinger, rabbitMQ BrokerStatus, version string) *HealthHandler {
	return &HealthHandler{
		DB:        db,
		RabbitMQ:  rabbitMQ,
		Version:   version,
		StartTime: time.Now(),
	}
}

// Handle só responde 503 quando o banco cai; a fila é best effort.
func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	dbState := h.databaseState(r.Context())
	deps := map[string]string{
		"database": dbState,
		"rabbitmq": h.brokerState(),
	}

	status, code := "healthy", http.StatusOK
	if dbState == stateDown {
		status, code = "degraded", http.StatusServiceUnavailable
	}

	writeJSON(w, code, HealthResponse{
		Status:       status,
		Version:      h.Version,
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Dependencies: deps,
	})
}

const (
	stateUp            = "healthy"
	stateDown          = "unhealthy"
	stateNotConfigured = "not configured"
)

func (h *HealthHandler) databaseState(ctx context.Context) string {
	if h.DB == nil {
		return stateNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := h.DB.Ping(ctx); err != nil {
		return stateDown
	}
	return stateUp
}

func (h *HealthHandler) brokerState() string {
	switch {
	case h.RabbitMQ == nil:
		return stateNotConfigured
	case h.RabbitMQ.IsClosed():
		return stateDown
	default:
		return stateUp
	}
}
