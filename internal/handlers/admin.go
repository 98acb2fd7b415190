package handlers

import (
	"net/http"

	"judicial-archive/internal/middleware"
	"judicial-archive/internal/models"
	"judicial-archive/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler manages user accounts. Every route needs the manage
// permission.
type AdminHandler struct {
	Base
	Users *services.UserService
}

func (h *AdminHandler) Register(r *gin.Engine) {
	admin := r.Group("/api/users", h.guard(models.PermissionManage)...)

	admin.GET("", h.ListUsers)
	admin.POST("", h.CreateUser)
	admin.GET("/:id", h.GetUser)
	admin.PUT("/:id", h.UpdateUser)
	admin.PATCH("/:id", h.UpdateUser)
	admin.DELETE("/:id", h.DeleteUser)
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.Users.ListUsers(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *AdminHandler) GetUser(c *gin.Context) {
	user, err := h.Users.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email" binding:"required"`
	FullName string `json:"fullName" binding:"required"`
	Role     string `json:"role"`
	IsActive *bool  `json:"isActive"`
}

func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	user, err := h.Users.CreateUser(c.Request.Context(), middleware.Actor(c), services.NewUser{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		FullName: req.FullName,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	h.logger().Info("user created", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	c.JSON(http.StatusCreated, user)
}

type updateUserRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	Email    *string `json:"email"`
	FullName *string `json:"fullName"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	id := c.Param("id")
	user, err := h.Users.UpdateUser(c.Request.Context(), middleware.Actor(c), id, services.UserUpdate{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		FullName: req.FullName,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		h.fail(c, err, zap.String("user_id", id))
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if err := h.Users.DeleteUser(c.Request.Context(), middleware.Actor(c), id); err != nil {
		h.fail(c, err, zap.String("user_id", id))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
