package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-console/internal/domain/entity"
	"support-console/internal/usecase"
)

type blockedLimiter struct{}

func (blockedLimiter) CheckLimit(context.Context, string) (bool, error) { return false, nil }
func (blockedLimiter) Increment(context.Context, string, int) error     { return nil }

func newTestApp(orch *usecase.Orchestrator) *fiber.App {
	app := fiber.New()
	SetupRouter(app, NewAnalyzeHandler(orch, nil))
	return app
}

func analyzeBody(t *testing.T, query string) *bytes.Reader {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"query":       query,
		"context":     entity.DemoContext(),
		"model":       "test-model",
		"customer_id": "cust-1",
	})
	require.NoError(t, err)
	return bytes.NewReader(payload)
}

func TestHandleAnalyzeReturnsResult(t *testing.T) {
	app := newTestApp(usecase.NewOrchestrator(nil, nil, nil, nil, nil))

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", analyzeBody(t, "is my card working?"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result entity.AnalysisResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.NotEmpty(t, result.Response)
	assert.NotEmpty(t, result.ChainOfThought)
	assert.Equal(t, entity.HandlerGeneralInquiry, result.Routing.SelectedHandler)
}

func TestHandleAnalyzeEmptyQuery(t *testing.T) {
	app := newTestApp(usecase.NewOrchestrator(nil, nil, nil, nil, nil))

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", analyzeBody(t, "   "))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleAnalyzeUsageLimitExceeded(t *testing.T) {
	orch := usecase.NewOrchestrator(nil, blockedLimiter{}, nil, nil, nil)
	app := newTestApp(orch)

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", analyzeBody(t, "hello"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestHandleAnalyzeMalformedBody(t *testing.T) {
	app := newTestApp(usecase.NewOrchestrator(nil, nil, nil, nil, nil))

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleDemoContext(t *testing.T) {
	app := newTestApp(usecase.NewOrchestrator(nil, nil, nil, nil, nil))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/v1/demo/context", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Priya Sharma")
	assert.Contains(t, string(raw), "Submitted but not activated due to system error")
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(usecase.NewOrchestrator(nil, nil, nil, nil, nil))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
