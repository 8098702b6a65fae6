package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rein-lin153/CableWeb/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var in service.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "参数不合法: "+err.Error())
		return
	}
	user, err := h.auth.Register(in)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, user)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数不合法: "+err.Error())
		return
	}
	token, user, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		Unauthorized(c, "邮箱或密码错误")
		return
	}
	Success(c, gin.H{"token": token, "user": user})
}

// Logout POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString("token")
	if err := h.auth.Logout(c.Request.Context(), token); err != nil {
		Error(c, err)
		return
	}
	Success(c, nil)
}

// Me GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.Me(GetUserID(c))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, user)
}
