package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rein-lin153/CableWeb/internal/repository"
	"github.com/rein-lin153/CableWeb/internal/service"
)

type InquiryHandler struct {
	inquiries *service.InquiryService
}

func NewInquiryHandler(inquiries *service.InquiryService) *InquiryHandler {
	return &InquiryHandler{inquiries: inquiries}
}

type createInquiryRequest struct {
	Remark string `json:"remark"`
}

// Create POST /api/inquiries 用购物车内容发起询价
func (h *InquiryHandler) Create(c *gin.Context) {
	var req createInquiryRequest
	// 备注可省，body 为空也接受
	_ = c.ShouldBindJSON(&req)

	inq, err := h.inquiries.CreateFromCart(GetUserID(c), req.Remark)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, inq)
}

// List GET /api/inquiries
func (h *InquiryHandler) List(c *gin.Context) {
	page, size := GetPagination(c)
	inquiries, total, err := h.inquiries.List(GetUserID(c), GetUserRole(c), repository.InquiryListParams{
		Status: c.Query("status"),
		Page:   page,
		Size:   size,
	})
	if err != nil {
		Error(c, err)
		return
	}
	SuccessPaged(c, inquiries, total, page, size)
}

// Get GET /api/inquiries/:id
func (h *InquiryHandler) Get(c *gin.Context) {
	inq, err := h.inquiries.Get(c.Param("id"), GetUserID(c), GetUserRole(c))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, inq)
}

type quoteRequest struct {
	Reply string              `json:"reply"`
	Lines []service.QuoteLine `json:"lines" binding:"required"`
}

// Quote POST /api/admin/inquiries/:id/quote
func (h *InquiryHandler) Quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数不合法: "+err.Error())
		return
	}
	inq, err := h.inquiries.Quote(c.Param("id"), req.Reply, req.Lines)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, inq)
}

type respondRequest struct {
	Accept *bool `json:"accept" binding:"required"`
}

// Respond POST /api/inquiries/:id/respond 接受或拒绝报价
func (h *InquiryHandler) Respond(c *gin.Context) {
	var req respondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数不合法: "+err.Error())
		return
	}
	inq, err := h.inquiries.Respond(c.Param("id"), GetUserID(c), *req.Accept)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, inq)
}

// Close POST /api/admin/inquiries/:id/close
func (h *InquiryHandler) Close(c *gin.Context) {
	inq, err := h.inquiries.Close(c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, inq)
}
