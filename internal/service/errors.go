package service

import (
	"errors"
	"fmt"
)

// 业务错误，handler 层统一映射为 4xx 响应
var (
	ErrNotFound            = errors.New("记录不存在")
	ErrInvalidTransition   = errors.New("当前状态不允许该操作")
	ErrEmptyCart           = errors.New("购物车为空")
	ErrPermissionDenied    = errors.New("没有操作权限")
	ErrValidation          = errors.New("参数不合法")
	ErrConflict            = errors.New("状态已变更，请刷新后重试")
	ErrUpstreamUnavailable = errors.New("行情源暂时不可用")
)

// InsufficientStockError 库存不足，携带不满足的明细行信息
type InsufficientStockError struct {
	ProductName string
	Spec        string
	Color       string
	Need        int
	Have        int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("库存不足: %s %s %s 需要%d 可用%d", e.ProductName, e.Spec, e.Color, e.Need, e.Have)
}

// ErrorKind 返回给客户端的机器可读错误类别
func ErrorKind(err error) string {
	var stockErr *InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		return "INSUFFICIENT_STOCK"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrInvalidTransition):
		return "INVALID_TRANSITION"
	case errors.Is(err, ErrEmptyCart):
		return "EMPTY_CART"
	case errors.Is(err, ErrPermissionDenied):
		return "PERMISSION_DENIED"
	case errors.Is(err, ErrValidation):
		return "VALIDATION"
	case errors.Is(err, ErrConflict):
		return "CONFLICT"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "UPSTREAM_UNAVAILABLE"
	default:
		return "INTERNAL"
	}
}
