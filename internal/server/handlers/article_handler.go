package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lmeier/warehouse/internal/domain/models"
	"github.com/lmeier/warehouse/internal/repository"
	"github.com/lmeier/warehouse/internal/service/inventory"
)

// ArticleHandler exposes the branch article catalog over HTTP.
type ArticleHandler struct {
	svc    *inventory.Service
	logger *zap.Logger
}

// NewArticleHandler constructs the HTTP handler adapter for articles.
func NewArticleHandler(svc *inventory.Service, logger *zap.Logger) *ArticleHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArticleHandler{svc: svc, logger: logger}
}

type createArticleRequest struct {
	ArticleID int64           `json:"articleId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	MinStock  int             `json:"minStock"`
	Stock     int             `json:"stock"`
	Reserved  int             `json:"reserved"`
}

type updateArticleRequest struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	MinStock int             `json:"minStock"`
}

type adjustRequest struct {
	Delta int `json:"delta"`
}

// List returns the branch's articles. With an ids query parameter
// (comma-separated), only the found articles are returned keyed by id.
func (h *ArticleHandler) List(c *gin.Context) {
	branchID, ok := pathID(c, "branchId")
	if !ok {
		return
	}

	if raw := c.Query("ids"); raw != "" {
		ids, err := parseIDList(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ids parameter"})
			return
		}
		found, err := h.svc.GetMany(c.Request.Context(), branchID, ids)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, found)
		return
	}

	articles, err := h.svc.List(c.Request.Context(), branchID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, articles)
}

// Get returns one article.
func (h *ArticleHandler) Get(c *gin.Context) {
	branchID, ok := pathID(c, "branchId")
	if !ok {
		return
	}
	articleID, ok := pathID(c, "articleId")
	if !ok {
		return
	}

	article, err := h.svc.Get(c.Request.Context(), branchID, articleID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// LowStock lists every article across all branches below its threshold.
func (h *ArticleHandler) LowStock(c *gin.Context) {
	low, err := h.svc.LowStock(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, low)
}

// Create inserts an article into the branch catalog.
func (h *ArticleHandler) Create(c *gin.Context) {
	branchID, ok := pathID(c, "branchId")
	if !ok {
		return
	}

	var req createArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	article, err := h.svc.Create(c.Request.Context(), branchID,
		req.ArticleID, req.Name, req.Price, req.MinStock, req.Stock, req.Reserved)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, article)
}

// Update replaces the descriptive fields of an article.
func (h *ArticleHandler) Update(c *gin.Context) {
	branchID, ok := pathID(c, "branchId")
	if !ok {
		return
	}
	articleID, ok := pathID(c, "articleId")
	if !ok {
		return
	}

	var req updateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	article, err := h.svc.Update(c.Request.Context(), branchID, articleID, req.Name, req.Price, req.MinStock)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// Delete removes an article.
func (h *ArticleHandler) Delete(c *gin.Context) {
	branchID, ok := pathID(c, "branchId")
	if !ok {
		return
	}
	articleID, ok := pathID(c, "articleId")
	if !ok {
		return
	}

	deleted, err := h.svc.Delete(c.Request.Context(), branchID, articleID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// AdjustStock applies a stock delta. A rejected adjustment (absent article or
// negative result) answers 409 without mutating anything.
func (h *ArticleHandler) AdjustStock(c *gin.Context) {
	h.adjust(c, h.svc.AdjustStock)
}

// AdjustReserved applies a reservation delta under the same rules.
func (h *ArticleHandler) AdjustReserved(c *gin.Context) {
	h.adjust(c, h.svc.AdjustReserved)
}

func (h *ArticleHandler) adjust(c *gin.Context, apply func(ctx context.Context, branchID, articleID int64, delta int) (bool, error)) {
	branchID, ok := pathID(c, "branchId")
	if !ok {
		return
	}
	articleID, ok := pathID(c, "articleId")
	if !ok {
		return
	}

	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	changed, err := apply(c.Request.Context(), branchID, articleID, req.Delta)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !changed {
		c.JSON(http.StatusConflict, gin.H{"error": "adjustment rejected"})
		return
	}

	article, err := h.svc.Get(c.Request.Context(), branchID, articleID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

func (h *ArticleHandler) fail(c *gin.Context, err error) {
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

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func parseIDList(raw string) ([]int64, error) {
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
