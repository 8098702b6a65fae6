package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rein-lin153/CableWeb/internal/service"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Kind    string      `json:"kind,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: 0, Message: "success", Data: data})
}

// Paged 带分页的列表响应
type Paged struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Size  int         `json:"size"`
}

func SuccessPaged(c *gin.Context, items interface{}, total int64, page, size int) {
	Success(c, Paged{Items: items, Total: total, Page: page, Size: size})
}

func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{Code: 40000, Message: message, Kind: "VALIDATION"})
}

func Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, Response{Code: 40100, Message: message, Kind: "UNAUTHORIZED"})
}

func Forbidden(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, Response{Code: 40300, Message: message, Kind: "PERMISSION_DENIED"})
}

func NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, Response{Code: 40400, Message: message, Kind: "NOT_FOUND"})
}

func InternalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, Response{Code: 50000, Message: message, Kind: "INTERNAL"})
}

// Error 按业务错误类别映射 HTTP 状态码
func Error(c *gin.Context, err error) {
	kind := service.ErrorKind(err)
	switch kind {
	case "NOT_FOUND":
		c.JSON(http.StatusNotFound, Response{Code: 40400, Message: err.Error(), Kind: kind})
	case "PERMISSION_DENIED":
		c.JSON(http.StatusForbidden, Response{Code: 40300, Message: err.Error(), Kind: kind})
	case "VALIDATION", "EMPTY_CART":
		c.JSON(http.StatusBadRequest, Response{Code: 40000, Message: err.Error(), Kind: kind})
	case "INVALID_TRANSITION", "CONFLICT", "INSUFFICIENT_STOCK":
		c.JSON(http.StatusConflict, Response{Code: 40900, Message: err.Error(), Kind: kind})
	case "UPSTREAM_UNAVAILABLE":
		c.JSON(http.StatusServiceUnavailable, Response{Code: 50300, Message: err.Error(), Kind: kind})
	default:
		c.JSON(http.StatusInternalServerError, Response{Code: 50000, Message: "服务器内部错误", Kind: kind})
	}
}

// GetUserID 取认证中间件写入的用户 ID
func GetUserID(c *gin.Context) string {
	return c.GetString("user_id")
}

// GetUserRole 取认证中间件写入的角色
func GetUserRole(c *gin.Context) string {
	return c.GetString("user_role")
}

// GetPagination 解析分页参数，page 从 1 开始
func GetPagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return page, size
}

// Handlers HTTP 处理器集合
type Handlers struct {
	Auth    *AuthHandler
	User    *UserHandler
	Catalog *CatalogHandler
	Cart    *CartHandler
	Order   *OrderHandler
	Inquiry *InquiryHandler
	Cost    *CostHandler
	Market  *MarketHandler
	News    *NewsHandler
}

func NewHandlers(services *service.Services, logger *zap.Logger) *Handlers {
	return &Handlers{
		Auth:    NewAuthHandler(services.Auth),
		User:    NewUserHandler(services.User),
		Catalog: NewCatalogHandler(services.Catalog),
		Cart:    NewCartHandler(services.Cart),
		Order:   NewOrderHandler(services.Order, logger),
		Inquiry: NewInquiryHandler(services.Inquiry),
		Cost:    NewCostHandler(services.Cost, logger),
		Market:  NewMarketHandler(services.Market),
		News:    NewNewsHandler(services.News),
	}
}
