package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rein-lin153/CableWeb/internal/repository"
	"github.com/rein-lin153/CableWeb/internal/service"
)

type NewsHandler struct {
	news *service.NewsService
}

func NewNewsHandler(news *service.NewsService) *NewsHandler {
	return &NewsHandler{news: news}
}

// List GET /api/news 已发布资讯
func (h *NewsHandler) List(c *gin.Context) {
	page, size := GetPagination(c)
	items, total, err := h.news.ListPublished(page, size)
	if err != nil {
		Error(c, err)
		return
	}
	SuccessPaged(c, items, total, page, size)
}

// Get GET /api/news/:id
func (h *NewsHandler) Get(c *gin.Context) {
	n, err := h.news.Get(c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, n)
}

// Create POST /api/admin/news
func (h *NewsHandler) Create(c *gin.Context) {
	var in service.NewsInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "参数不合法: "+err.Error())
		return
	}
	n, err := h.news.Create(in)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, n)
}

// Update PUT /api/admin/news/:id
func (h *NewsHandler) Update(c *gin.Context) {
	var in service.NewsInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "参数不合法: "+err.Error())
		return
	}
	n, err := h.news.Update(c.Param("id"), in)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, n)
}

// Delete DELETE /api/admin/news/:id
func (h *NewsHandler) Delete(c *gin.Context) {
	if err := h.news.Delete(c.Param("id")); err != nil {
		Error(c, err)
		return
	}
	Success(c, nil)
}

// ListSpecs GET /api/specs 技术参数表
func (h *NewsHandler) ListSpecs(c *gin.Context) {
	page, size := GetPagination(c)
	specs, total, err := h.news.ListSpecs(repository.SpecListParams{
		Category: c.Query("category"),
		Keyword:  c.Query("keyword"),
		Page:     page,
		Size:     size,
	})
	if err != nil {
		Error(c, err)
		return
	}
	SuccessPaged(c, specs, total, page, size)
}

// CreateSpec POST /api/admin/specs
func (h *NewsHandler) CreateSpec(c *gin.Context) {
	var in service.SpecInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "参数不合法: "+err.Error())
		return
	}
	spec, err := h.news.CreateSpec(in)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, spec)
}

// UpdateSpec PUT /api/admin/specs/:id
func (h *NewsHandler) UpdateSpec(c *gin.Context) {
	var in service.SpecInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "参数不合法: "+err.Error())
		return
	}
	spec, err := h.news.UpdateSpec(c.Param("id"), in)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, spec)
}

// DeleteSpec DELETE /api/admin/specs/:id
func (h *NewsHandler) DeleteSpec(c *gin.Context) {
	if err := h.news.DeleteSpec(c.Param("id")); err != nil {
		Error(c, err)
		return
	}
	Success(c, nil)
}
