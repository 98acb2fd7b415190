package handlers

import (
	"context"
	"errors"
	"net/http"

	"judicial-archive/internal/i18n"
	"judicial-archive/internal/middleware"
	"judicial-archive/internal/models"
	"judicial-archive/internal/repositories"
	"judicial-archive/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Base carries what every handler needs: the auth guard, the translator for
// error envelopes and a logger.
type Base struct {
	Auth middleware.Auth
	I18n *i18n.Translator
	Log  *zap.Logger
}

func (b Base) logger() *zap.Logger {
	if b.Log == nil {
		return zap.NewNop()
	}
	return b.Log
}

// guard is the authentication middleware followed by a permission check.
func (b Base) guard(p models.Permission) []gin.HandlerFunc {
	return []gin.HandlerFunc{b.Auth.JWTAuth(), middleware.RequirePermission(b.I18n, p)}
}

func (b Base) badRequest(c *gin.Context, err error) {
	b.I18n.Abort(c, http.StatusBadRequest, i18n.MsgInvalidInput, err.Error(), nil)
}

// fail maps a service error onto a status and localized envelope. Only
// unexpected failures are logged.
func (b Base) fail(c *gin.Context, err error, fields ...zap.Field) {
	var transition *services.TransitionError
	var corrupt *services.CorruptReferenceError

	switch {
	case errors.Is(err, repositories.ErrNotFound):
		b.I18n.Abort(c, http.StatusNotFound, i18n.MsgNotFound, "", nil)
	case errors.As(err, &transition):
		b.I18n.Abort(c, http.StatusBadRequest, i18n.MsgInvalidTransition, "", map[string]any{
			"From": string(transition.From),
			"To":   string(transition.To),
		})
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, models.ErrUnknownValue):
		b.I18n.Abort(c, http.StatusBadRequest, i18n.MsgInvalidInput, err.Error(), nil)
	case errors.Is(err, repositories.ErrDuplicate):
		b.I18n.Abort(c, http.StatusConflict, i18n.MsgDuplicate, "", nil)
	case errors.Is(err, services.ErrUserHasDocuments):
		b.I18n.Abort(c, http.StatusConflict, i18n.MsgUserHasDocuments, "", nil)
	case errors.Is(err, services.ErrInvalidCredentials):
		b.I18n.Abort(c, http.StatusUnauthorized, i18n.MsgInvalidCredentials, "", nil)
	case errors.Is(err, services.ErrAccountDisabled):
		b.I18n.Abort(c, http.StatusForbidden, i18n.MsgAccountDisabled, "", nil)
	case errors.Is(err, services.ErrAttachmentsDisabled):
		b.I18n.Abort(c, http.StatusNotImplemented, i18n.MsgAttachmentsDisabled, "", nil)
	case errors.Is(err, context.DeadlineExceeded):
		b.I18n.Abort(c, http.StatusServiceUnavailable, i18n.MsgRequestTimeout, "", nil)
	case errors.As(err, &corrupt):
		b.logger().Error("corrupt archive reference", append(fields,
			zap.String("entity", corrupt.Entity),
			zap.String("entity_id", corrupt.ID),
			zap.String("missing", corrupt.Missing),
		)...)
		b.I18n.Abort(c, http.StatusInternalServerError, i18n.MsgCorruptReference, "", nil)
	default:
		b.logger().Error("request failed", append(fields, zap.String("path", c.FullPath()), zap.Error(err))...)
		b.I18n.Abort(c, http.StatusInternalServerError, i18n.MsgInternal, "", nil)
	}
}

// targetUser resolves the userId query parameter, defaulting to the caller.
// Reading another user's figures needs the manage permission.
func (b Base) targetUser(c *gin.Context) (string, bool) {
	self := c.GetString(middleware.ContextUserID)
	id := c.DefaultQuery("userId", self)
	if id == self {
		return id, true
	}
	role, _ := c.Get(middleware.ContextRole)
	if r, _ := role.(models.Role); !r.Can(models.PermissionManage) {
		b.I18n.Abort(c, http.StatusForbidden, i18n.MsgForbidden, "", nil)
		return "", false
	}
	return id, true
}
