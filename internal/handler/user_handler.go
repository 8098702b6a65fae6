package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rein-lin153/CableWeb/internal/repository"
	"github.com/rein-lin153/CableWeb/internal/service"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List GET /api/admin/users
func (h *UserHandler) List(c *gin.Context) {
	page, size := GetPagination(c)
	users, total, err := h.users.List(repository.UserListParams{
		Role:    c.Query("role"),
		Keyword: c.Query("keyword"),
		Page:    page,
		Size:    size,
	})
	if err != nil {
		Error(c, err)
		return
	}
	SuccessPaged(c, users, total, page, size)
}

// Get GET /api/admin/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.Get(c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, user)
}

// Update PUT /api/admin/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	var in service.UserUpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "参数不合法: "+err.Error())
		return
	}
	user, err := h.users.Update(c.Param("id"), in)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, user)
}

// ListDrivers GET /api/admin/drivers
func (h *UserHandler) ListDrivers(c *gin.Context) {
	drivers, err := h.users.ListDrivers()
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, drivers)
}
