package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"judicial-archive/internal/i18n"
	"judicial-archive/internal/models"
	"judicial-archive/internal/repositories"
	"judicial-archive/internal/session"
	jwtpkg "judicial-archive/pkg/jwt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
	ContextUser   = "user"
	ContextClaims = "claims"
)

// PrincipalSource loads the current state of an authenticated user.
type PrincipalSource interface {
	Principal(ctx context.Context, id string) (*models.User, error)
}

// Auth verifies bearer tokens. Role and active flag are read from the user
// record on every request, so changes apply before the token expires.
type Auth struct {
	Tokens     jwtpkg.Issuer
	Revoker    session.Revoker
	Users      PrincipalSource
	Translator *i18n.Translator
	Log        *zap.Logger
}

func (a Auth) JWTAuth() gin.HandlerFunc {
	log := a.Log
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		auth := strings.TrimSpace(c.GetHeader("Authorization"))
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			a.Translator.Abort(c, http.StatusUnauthorized, i18n.MsgUnauthorized, "", nil)
			return
		}

		claims, err := a.Tokens.Parse(strings.TrimSpace(parts[1]))
		if err != nil {
			a.Translator.Abort(c, http.StatusUnauthorized, i18n.MsgUnauthorized, "", nil)
			return
		}

		if a.Revoker != nil {
			revoked, err := a.Revoker.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				log.Error("revocation check failed", zap.String("token_id", claims.ID), zap.Error(err))
				a.Translator.Abort(c, http.StatusInternalServerError, i18n.MsgInternal, "", nil)
				return
			}
			if revoked {
				a.Translator.Abort(c, http.StatusUnauthorized, i18n.MsgUnauthorized, "", nil)
				return
			}
		}

		user, err := a.Users.Principal(c.Request.Context(), claims.UserID)
		if errors.Is(err, repositories.ErrNotFound) {
			a.Translator.Abort(c, http.StatusUnauthorized, i18n.MsgUnauthorized, "", nil)
			return
		}
		if err != nil {
			log.Error("load principal failed", zap.String("user_id", claims.UserID), zap.Error(err))
			a.Translator.Abort(c, http.StatusInternalServerError, i18n.MsgInternal, "", nil)
			return
		}
		if !user.IsActive {
			a.Translator.Abort(c, http.StatusForbidden, i18n.MsgAccountDisabled, "", nil)
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextRole, user.Role)
		c.Set(ContextUser, user)
		c.Set(ContextClaims, claims)

		c.Next()
	}
}

func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok
}

func CurrentClaims(c *gin.Context) (*jwtpkg.Claims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*jwtpkg.Claims)
	return claims, ok
}
