package handlers

import (
	"net/http"

	"judicial-archive/internal/i18n"
	"judicial-archive/internal/middleware"
	"judicial-archive/internal/services"
	"judicial-archive/internal/session"
	jwtpkg "judicial-archive/pkg/jwt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	Base
	Users   *services.UserService
	Tokens  jwtpkg.Issuer
	Revoker session.Revoker
}

func (h AuthHandler) Register(r *gin.Engine) {
	g := r.Group("/api/auth")
	g.POST("/login", h.Login)
	g.POST("/logout", h.Auth.JWTAuth(), h.Logout)
	g.GET("/me", h.Auth.JWTAuth(), h.Me)
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	user, err := h.Users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	token, claims, err := h.Tokens.Issue(jwtpkg.Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
	})
	if err != nil {
		h.fail(c, err, zap.String("user_id", user.ID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":         user,
		"access_token": token,
		"token_type":   "Bearer",
		"expires_at":   claims.ExpiresAt.Time,
	})
}

func (h AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		h.I18n.Abort(c, http.StatusUnauthorized, i18n.MsgUnauthorized, "", nil)
		return
	}

	if h.Revoker != nil && claims.ExpiresAt != nil {
		if err := h.Revoker.Revoke(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
			h.fail(c, err, zap.String("user_id", claims.UserID))
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h AuthHandler) Me(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{"user": user})
}
