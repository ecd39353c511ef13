package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lmeier/warehouse/internal/domain/models"
	"github.com/lmeier/warehouse/internal/repository"
	"github.com/lmeier/warehouse/internal/service/reorder"
)

// ReorderHandler exposes the reorder ledger and the on-demand pass trigger.
type ReorderHandler struct {
	svc    *reorder.Service
	logger *zap.Logger
}

// NewReorderHandler constructs the HTTP handler adapter for reorders.
func NewReorderHandler(svc *reorder.Service, logger *zap.Logger) *ReorderHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReorderHandler{svc: svc, logger: logger}
}

type createReorderRequest struct {
	ArticleID int64 `json:"articleId"`
	Quantity  int   `json:"quantity"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// List returns the branch's reorders, optionally filtered by a status query
// parameter.
func (h *ReorderHandler) List(c *gin.Context) {
	branchID, ok := pathID(c, "branchId")
	if !ok {
		return
	}

	var status models.ReorderStatus
	if raw := c.Query("status"); raw != "" {
		parsed, err := models.ParseReorderStatus(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		status = parsed
	}

	reorders, err := h.svc.List(c.Request.Context(), branchID, status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reorders)
}

// Get returns one reorder.
func (h *ReorderHandler) Get(c *gin.Context) {
	branchID, ok := pathID(c, "branchId")
	if !ok {
		return
	}
	reorderID, ok := pathID(c, "reorderId")
	if !ok {
		return
	}

	item, err := h.svc.Get(c.Request.Context(), branchID, reorderID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Create inserts a reorder directly. It starts in NEW and is placed with the
// supplier by the next pass.
func (h *ReorderHandler) Create(c *gin.Context) {
	branchID, ok := pathID(c, "branchId")
	if !ok {
		return
	}

	var req createReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := h.svc.Create(c.Request.Context(), branchID, req.ArticleID, req.Quantity)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateStatus sets a reorder's status; the delivery confirmation actor uses
// it to mark arrived reorders DELIVERED.
func (h *ReorderHandler) UpdateStatus(c *gin.Context) {
	branchID, ok := pathID(c, "branchId")
	if !ok {
		return
	}
	reorderID, ok := pathID(c, "reorderId")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	status, err := models.ParseReorderStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.svc.UpdateStatus(c.Request.Context(), branchID, reorderID, status)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "reorder not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Run triggers one reorder pass and returns its report.
func (h *ReorderHandler) Run(c *gin.Context) {
	report := h.svc.Run(c.Request.Context())
	c.JSON(http.StatusOK, report)
}

func (h *ReorderHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		h.logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
