package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rein-lin153/CableWeb/internal/service"
)

type MarketHandler struct {
	market *service.MarketService
}

func NewMarketHandler(market *service.MarketService) *MarketHandler {
	return &MarketHandler{market: market}
}

// Latest GET /api/market/copper 最新铜价行情
func (h *MarketHandler) Latest(c *gin.Context) {
	reading, err := h.market.Latest(c.Request.Context())
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, reading)
}

// History GET /api/market/copper/history?n=24
func (h *MarketHandler) History(c *gin.Context) {
	n, _ := strconv.Atoi(c.DefaultQuery("n", "24"))
	if n <= 0 || n > 500 {
		n = 24
	}
	readings, err := h.market.History(n)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, readings)
}

// Refresh POST /api/admin/market/refresh 手动触发一次抓取
func (h *MarketHandler) Refresh(c *gin.Context) {
	reading, err := h.market.Refresh(c.Request.Context())
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, reading)
}
