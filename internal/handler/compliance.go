// Package handler contains HTTP handlers for the API.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jarvish/compliance-engine/internal/domain"
	"github.com/jarvish/compliance-engine/internal/service"
	"go.uber.org/zap"
)

// ComplianceHandler handles compliance evaluation requests.
type ComplianceHandler struct {
	checker *service.Checker
	logger  *zap.Logger
}

// NewComplianceHandler creates a new ComplianceHandler.
func NewComplianceHandler(checker *service.Checker, logger *zap.Logger) *ComplianceHandler {
	return &ComplianceHandler{
		checker: checker,
		logger:  logger.Named("compliance_handler"),
	}
}

// errorResponse is the envelope for request failures.
type errorResponse struct {
	Success     bool      `json:"success"`
	Error       string    `json:"error"`
	ProcessedAt time.Time `json:"processed_at"`
}

// Check processes POST /api/v1/compliance/check requests.
func (h *ComplianceHandler) Check(c *gin.Context) {
	startTime := time.Now()
	logger := h.logger.With(zap.String("request_id", c.GetString("request_id")))
	logger.Debug("received compliance check request")

	var req domain.ComplianceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, errorResponse{
			Error:       "Invalid request body: " + err.Error(),
			ProcessedAt: time.Now(),
		})
		return
	}

	opts := service.CheckOptions{
		SkipCache: c.Query("skip_cache") == "true",
	}
	if ttl := c.Query("ttl_seconds"); ttl != "" {
		if seconds, err := strconv.Atoi(ttl); err == nil && seconds > 0 {
			opts.TTLSeconds = seconds
		}
	}

	result, err := h.checker.Check(c.Request.Context(), req, opts)
	if err != nil {
		if domain.IsValidation(err) {
			logger.Warn("request rejected", zap.Error(err))
			c.JSON(http.StatusBadRequest, errorResponse{
				Error:       err.Error(),
				ProcessedAt: time.Now(),
			})
			return
		}
		logger.Error("compliance check failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{
			Error:       "Internal error during compliance check",
			ProcessedAt: time.Now(),
		})
		return
	}

	logger.Info("compliance check completed",
		zap.Bool("compliant", result.IsCompliant),
		zap.Int("risk_score", result.RiskScore),
		zap.Bool("cached", result.Cached),
		zap.Duration("duration", time.Since(startTime)),
	)

	// Non-compliant content is a successful evaluation with a failing
	// verdict.
	if result.IsCompliant {
		c.JSON(http.StatusOK, result)
	} else {
		c.JSON(http.StatusUnprocessableEntity, result)
	}
}

// autoFixRequest is the body for auto-fix requests.
type autoFixRequest struct {
	Content  string          `json:"content" binding:"required"`
	Language domain.Language `json:"language" binding:"required"`
}

// AutoFix processes POST /api/v1/compliance/autofix requests.
func (h *ComplianceHandler) AutoFix(c *gin.Context) {
	startTime := time.Now()
	logger := h.logger.With(zap.String("request_id", c.GetString("request_id")))

	var req autoFixRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, errorResponse{
			Error:       "Invalid request body: " + err.Error(),
			ProcessedAt: time.Now(),
		})
		return
	}

	result, err := h.checker.AutoFix(c.Request.Context(), req.Content, req.Language)
	if err != nil {
		if domain.IsValidation(err) {
			logger.Warn("request rejected", zap.Error(err))
			c.JSON(http.StatusBadRequest, errorResponse{
				Error:       err.Error(),
				ProcessedAt: time.Now(),
			})
			return
		}
		logger.Error("auto-fix failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{
			Error:       "Internal error during auto-fix",
			ProcessedAt: time.Now(),
		})
		return
	}

	logger.Info("auto-fix completed",
		zap.Bool("fixed", result.WasFixed),
		zap.Duration("duration", time.Since(startTime)),
	)

	c.JSON(http.StatusOK, result)
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		logger: logger.Named("health_handler"),
	}
}

// Handle processes GET /health requests.
func (h *HealthHandler) Handle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadyHandler handles readiness check requests.
type ReadyHandler struct {
	checker *service.Checker
	logger  *zap.Logger
}

// NewReadyHandler creates a new ReadyHandler.
func NewReadyHandler(checker *service.Checker, logger *zap.Logger) *ReadyHandler {
	return &ReadyHandler{
		checker: checker,
		logger:  logger.Named("ready_handler"),
	}
}

// Handle processes GET /ready requests. Readiness depends on the model
// endpoint being reachable; the cache is optional.
func (h *ReadyHandler) Handle(c *gin.Context) {
	if err := h.checker.HealthCheck(c.Request.Context()); err != nil {
		h.logger.Warn("readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"error":  err.Error(),
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
