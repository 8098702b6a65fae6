package handler

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/rein-lin153/CableWeb/internal/repository"
	"github.com/rein-lin153/CableWeb/internal/service"
)

type CatalogHandler struct {
	catalog *service.CatalogService
}

func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// --- 公共接口 ---

// ListCategories GET /api/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	flat := c.Query("flat") == "true"
	cats, err := h.catalog.ListCategories(flat)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, cats)
}

// ListProducts GET /api/products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	page, size := GetPagination(c)
	products, total, err := h.catalog.ListProducts(repository.ProductListParams{
		CategoryID: c.Query("category_id"),
		Keyword:    c.Query("keyword"),
		Page:       page,
		Size:       size,
	})
	if err != nil {
		Error(c, err)
		return
	}
	SuccessPaged(c, products, total, page, size)
}

// GetProduct GET /api/products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	p, err := h.catalog.GetProduct(c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, p)
}

// --- 管理接口 ---

// CreateCategory POST /api/admin/categories
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var in service.CategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "参数不合法: "+err.Error())
		return
	}
	cat, err := h.catalog.CreateCategory(in)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, cat)
}

// UpdateCategory PUT /api/admin/categories/:id
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	var in service.CategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "参数不合法: "+err.Error())
		return
	}
	cat, err := h.catalog.UpdateCategory(c.Param("id"), in)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, cat)
}

// DeleteCategory DELETE /api/admin/categories/:id
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	if err := h.catalog.DeleteCategory(c.Param("id")); err != nil {
		Error(c, err)
		return
	}
	Success(c, nil)
}

// CreateProduct POST /api/admin/products
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var in service.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "参数不合法: "+err.Error())
		return
	}
	p, err := h.catalog.CreateProduct(in)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, p)
}

// UpdateProduct PUT /api/admin/products/:id
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	var in service.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "参数不合法: "+err.Error())
		return
	}
	p, err := h.catalog.UpdateProduct(c.Param("id"), in)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, p)
}

// DeleteProduct DELETE /api/admin/products/:id
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	if err := h.catalog.DeleteProduct(c.Param("id")); err != nil {
		Error(c, err)
		return
	}
	Success(c, nil)
}

// UploadProductImage POST /api/admin/products/:id/image
func (h *CatalogHandler) UploadProductImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		BadRequest(c, "缺少 image 文件字段")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxImageSize+1))
	if err != nil {
		InternalError(c, "读取上传文件失败")
		return
	}

	p, err := h.catalog.UploadProductImage(c.Request.Context(), c.Param("id"), data, header.Filename)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, p)
}

type promoteCostRequest struct {
	CostID     string  `json:"cost_id" binding:"required"`
	Price      float64 `json:"price" binding:"required"`
	Stock      int     `json:"stock"`
	CategoryID *string `json:"category_id"`
}

// PromoteFromCost POST /api/admin/products/from-cost
func (h *CatalogHandler) PromoteFromCost(c *gin.Context) {
	var req promoteCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数不合法: "+err.Error())
		return
	}
	p, err := h.catalog.PromoteFromCost(req.CostID, req.Price, req.Stock, req.CategoryID)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, p)
}
