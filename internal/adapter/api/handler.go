package api

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"support-console/internal/adapter/audit"
	"support-console/internal/domain/entity"
	"support-console/internal/usecase"
)

// AnalyzeHandler is the delivery layer for the analysis pipeline. The audit
// logger is optional.
type AnalyzeHandler struct {
	orchestrator *usecase.Orchestrator
	auditLog     *audit.Logger
}

func NewAnalyzeHandler(orch *usecase.Orchestrator, auditLog *audit.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{orchestrator: orch, auditLog: auditLog}
}

type analyzeRequest struct {
	Query      string          `json:"query"`
	Context    *entity.Context `json:"context"`
	Model      string          `json:"model"`
	CustomerID string          `json:"customer_id"`
}

// HandleAnalyze runs one full analysis turn. The model credential travels in
// the Authorization header and is never persisted or logged.
func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	var req analyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if h.auditLog != nil {
		_ = h.auditLog.LogAnalysisStart(req.CustomerID, req.Query, req.Model)
	}

	started := time.Now()
	result, err := h.orchestrator.Analyze(c.Context(), usecase.AnalysisRequest{
		Query:      req.Query,
		Bank:       req.Context,
		Model:      req.Model,
		APIKey:     bearerToken(c),
		CustomerID: req.CustomerID,
	}, nil)
	if err != nil {
		if h.auditLog != nil {
			_ = h.auditLog.LogError(req.CustomerID, err)
		}
		switch {
		case errors.Is(err, entity.ErrUsageLimitExceeded):
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, entity.ErrEmptyQuery), errors.Is(err, entity.ErrInvalidRequest):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal analysis error"})
		}
	}

	if h.auditLog != nil {
		_ = h.auditLog.LogRoutingDecision(result.Routing)
		_ = h.auditLog.LogAnalysisComplete(req.CustomerID, result, time.Since(started))
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// HandleDemoContext serves the built-in demo customer bundle so a console can
// exercise the pipeline without real account data.
func (h *AnalyzeHandler) HandleDemoContext(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(entity.DemoContext())
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token
	}
	return c.Get("X-API-Key")
}
