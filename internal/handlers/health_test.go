package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r3troseer/SME-loan-transact/internal/handlers"
)

type fakePinger struct {
	err error
}

func (f fakePinger) HealthCheck(context.Context) error {
	return f.err
}

func checkHealth(t *testing.T, h *handlers.HealthHandler) (int, handlers.HealthResponse) {
	t.Helper()
	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{})
	require.NoError(t, err)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])

	var body handlers.HealthResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	return resp.StatusCode, body
}

func TestHealth_NoDatabase(t *testing.T) {
	t.Setenv("STAGE", "test")

	status, body := checkHealth(t, handlers.NewHealthHandlerWith(nil, 4))

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "not configured", body.Database)
	assert.Equal(t, "sme-loan-exchange", body.Service)
	assert.Equal(t, "test", body.Stage)
	assert.Equal(t, 4, body.Lenders)
}

func TestHealth_Connected(t *testing.T) {
	status, body := checkHealth(t, handlers.NewHealthHandlerWith(fakePinger{}, 4))

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "connected", body.Database)
}

func TestHealth_Degraded(t *testing.T) {
	status, body := checkHealth(t, handlers.NewHealthHandlerWith(fakePinger{err: errors.New("timeout")}, 4))

	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "disconnected", body.Database)
}
