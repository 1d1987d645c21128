package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"

	appConfig "github.com/r3troseer/SME-loan-transact/internal/config"
	"github.com/r3troseer/SME-loan-transact/internal/services/database"
)

// Pinger checks a dependency is reachable.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	db       Pinger
	lenders  int
	closeFns []func()
}

// NewHealthHandler creates a health handler from environment configuration.
// Missing database settings degrade to "not configured", not an error.
func NewHealthHandler(ctx context.Context) (*HealthHandler, error) {
	cfg, err := appConfig.Load()
	if err != nil {
		return &HealthHandler{}, nil
	}

	h := &HealthHandler{}
	if registry, err := LoadRegistry(ctx, localRegistryPath(cfg.LenderRegistryPath), nil); err == nil {
		h.lenders = registry.Len()
	}

	if !cfg.DatabaseConfigured() {
		return h, nil
	}
	db, err := database.New(ctx, cfg)
	if err != nil {
		return h, nil
	}
	h.db = db
	h.closeFns = append(h.closeFns, db.Close)
	return h, nil
}

// NewHealthHandlerWith creates a handler over an explicit pinger.
func NewHealthHandlerWith(db Pinger, lenderCount int) *HealthHandler {
	return &HealthHandler{db: db, lenders: lenderCount}
}

// HealthResponse is the response structure for health checks.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Stage     string `json:"stage"`
	Database  string `json:"database"`
	Lenders   int    `json:"lenders"`
}

// Handle processes health check requests.
func (h *HealthHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := map[string]string{
		"Access-Control-Allow-Origin": "*",
		"Content-Type":                "application/json",
	}

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   "sme-loan-exchange",
		Version:   getEnvOrDefault("SERVICE_VERSION", "1.0.0"),
		Stage:     getEnvOrDefault("STAGE", "unknown"),
		Database:  "not configured",
		Lenders:   h.lenders,
	}

	if h.db != nil {
		if err := h.db.HealthCheck(ctx); err != nil {
			response.Database = "disconnected"
			response.Status = "degraded"
		} else {
			response.Database = "connected"
		}
	}

	statusCode := http.StatusOK
	if response.Status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	body, _ := json.Marshal(response)

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    headers,
		Body:       string(body),
	}, nil
}

// Close cleans up resources.
func (h *HealthHandler) Close() {
	for _, fn := range h.closeFns {
		fn()
	}
}

// localRegistryPath drops bucket-hosted registries, which the health check does not fetch.
func localRegistryPath(path string) string {
	if strings.HasPrefix(path, S3RegistryPrefix) {
		return ""
	}
	return path
}

// getEnvOrDefault returns environment variable or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
