package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rein-lin153/CableWeb/internal/repository"
	"github.com/rein-lin153/CableWeb/internal/service"
	"go.uber.org/zap"
)

type CostHandler struct {
	costs  *service.CostService
	logger *zap.Logger
}

func NewCostHandler(costs *service.CostService, logger *zap.Logger) *CostHandler {
	return &CostHandler{costs: costs, logger: logger}
}

// List GET /api/admin/costs
func (h *CostHandler) List(c *gin.Context) {
	page, size := GetPagination(c)
	records, total, err := h.costs.List(repository.CostListParams{
		Category: c.Query("category"),
		Keyword:  c.Query("keyword"),
		Page:     page,
		Size:     size,
	})
	if err != nil {
		Error(c, err)
		return
	}
	SuccessPaged(c, records, total, page, size)
}

// Get GET /api/admin/costs/:id
func (h *CostHandler) Get(c *gin.Context) {
	record, err := h.costs.Get(c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, record)
}

// Create POST /api/admin/costs
func (h *CostHandler) Create(c *gin.Context) {
	var in service.CostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "参数不合法: "+err.Error())
		return
	}
	record, err := h.costs.Create(in)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, record)
}

// Update PUT /api/admin/costs/:id
func (h *CostHandler) Update(c *gin.Context) {
	var in service.CostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "参数不合法: "+err.Error())
		return
	}
	record, err := h.costs.Update(c.Param("id"), in)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, record)
}

// Delete DELETE /api/admin/costs/:id
func (h *CostHandler) Delete(c *gin.Context) {
	if err := h.costs.Delete(c.Param("id")); err != nil {
		Error(c, err)
		return
	}
	Success(c, nil)
}

// Categories GET /api/admin/costs/categories
func (h *CostHandler) Categories(c *gin.Context) {
	cats, err := h.costs.Categories()
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, cats)
}

// SuggestedPrice GET /api/admin/costs/suggested-price?category=BVR
func (h *CostHandler) SuggestedPrice(c *gin.Context) {
	price, err := h.costs.SuggestedUnitPrice(c.Request.Context(), c.Query("category"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, gin.H{"conductor_unit_price": price})
}

// SyncMarket POST /api/admin/costs/sync-market 按最新铜价重算成本记录
func (h *CostHandler) SyncMarket(c *gin.Context) {
	updated, err := h.costs.SyncWithMarket(c.Request.Context())
	if err != nil {
		Error(c, err)
		return
	}
	h.logger.Info("cost records synced with market", zap.Int("updated", updated))
	Success(c, gin.H{"updated": updated})
}

// SyncVariantPrices POST /api/admin/costs/sync-variant-prices 按铜价调整变体售价
func (h *CostHandler) SyncVariantPrices(c *gin.Context) {
	updated, err := h.costs.SyncVariantPrices(c.Request.Context())
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, gin.H{"updated": updated})
}

// Export GET /api/admin/costs/export 导出 xlsx
func (h *CostHandler) Export(c *gin.Context) {
	filename := fmt.Sprintf("costs_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := h.costs.ExportExcel(c.Writer); err != nil {
		h.logger.Error("export costs failed", zap.Error(err))
	}
}
