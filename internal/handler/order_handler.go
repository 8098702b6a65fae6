package handler

import (
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rein-lin153/CableWeb/internal/repository"
	"github.com/rein-lin153/CableWeb/internal/service"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orders *service.OrderService
	logger *zap.Logger
}

func NewOrderHandler(orders *service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

// Create POST /api/orders 从购物车下单
func (h *OrderHandler) Create(c *gin.Context) {
	order, err := h.orders.CreateFromCart(GetUserID(c))
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, order)
}

// List GET /api/orders 按角色裁剪可见范围
func (h *OrderHandler) List(c *gin.Context) {
	page, size := GetPagination(c)
	orders, total, err := h.orders.List(GetUserID(c), GetUserRole(c), repository.OrderListParams{
		Status:  c.Query("status"),
		Keyword: c.Query("keyword"),
		Page:    page,
		Size:    size,
	})
	if err != nil {
		Error(c, err)
		return
	}
	SuccessPaged(c, orders, total, page, size)
}

// Get GET /api/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.orders.GetAuthorized(c.Param("id"), GetUserID(c), GetUserRole(c))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, order)
}

// Confirm POST /api/admin/orders/:id/confirm 确认并扣库存
func (h *OrderHandler) Confirm(c *gin.Context) {
	result, err := h.orders.Confirm(c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	if len(result.Skipped) > 0 {
		h.logger.Warn("order confirmed with skipped lines",
			zap.String("order_id", c.Param("id")),
			zap.Strings("skipped", result.Skipped))
	}
	Success(c, result)
}

// Ship POST /api/admin/orders/:id/ship
func (h *OrderHandler) Ship(c *gin.Context) {
	order, err := h.orders.Ship(c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, order)
}

// Cancel POST /api/admin/orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	order, err := h.orders.Cancel(c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, order)
}

type assignDriverRequest struct {
	DriverID string `json:"driver_id" binding:"required"`
}

// AssignDriver POST /api/admin/orders/:id/driver
func (h *OrderHandler) AssignDriver(c *gin.Context) {
	var req assignDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数不合法: "+err.Error())
		return
	}
	order, err := h.orders.AssignDriver(c.Param("id"), req.DriverID)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, order)
}

type repriceRequest struct {
	UnitPrice float64 `json:"unit_price"`
}

// RepriceItem PUT /api/admin/orders/:id/items/:itemId/price
func (h *OrderHandler) RepriceItem(c *gin.Context) {
	var req repriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数不合法: "+err.Error())
		return
	}
	order, err := h.orders.RepriceItem(c.Param("id"), c.Param("itemId"), req.UnitPrice)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, order)
}

type locationRequest struct {
	Lat float64 `json:"lat" binding:"required"`
	Lng float64 `json:"lng" binding:"required"`
}

// UpdateLocation PUT /api/driver/orders/:id/location
func (h *OrderHandler) UpdateLocation(c *gin.Context) {
	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数不合法: "+err.Error())
		return
	}
	order, err := h.orders.UpdateDriverLocation(c.Param("id"), GetUserID(c), req.Lat, req.Lng)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, order)
}

// Complete POST /api/driver/orders/:id/complete 可带签收照片（multipart 可选）
func (h *OrderHandler) Complete(c *gin.Context) {
	var photo []byte
	filename := ""
	if file, header, err := c.Request.FormFile("photo"); err == nil {
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, service.MaxImageSize+1))
		if err != nil {
			InternalError(c, "读取上传文件失败")
			return
		}
		photo = data
		filename = header.Filename
	}

	order, err := h.orders.Complete(c.Request.Context(), c.Param("id"), GetUserID(c), GetUserRole(c), photo, filename)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, order)
}

// Export GET /api/admin/orders/export 导出 GBK CSV
func (h *OrderHandler) Export(c *gin.Context) {
	filename := fmt.Sprintf("orders_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "text/csv; charset=gbk")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := h.orders.ExportCSV(c.Writer); err != nil {
		h.logger.Error("export orders failed", zap.Error(err))
	}
}
