package app

import (
	"net/http"

	"judicial-archive/internal/handlers"
	"judicial-archive/internal/i18n"
	"judicial-archive/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Router builds the HTTP surface. gin's mode is left to the caller.
func (a *App) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(a.Log))
	if a.Metrics != nil {
		r.Use(a.Metrics.Middleware())
	}
	r.Use(middleware.Language(a.Translator))
	if a.Config.RequestTimeout > 0 {
		r.Use(middleware.Timeout(a.Translator, a.Config.RequestTimeout))
	}

	base := handlers.Base{
		Auth: middleware.Auth{
			Tokens:     a.Tokens,
			Revoker:    a.Revoker,
			Users:      a.Users,
			Translator: a.Translator,
			Log:        a.Log,
		},
		I18n: a.Translator,
		Log:  a.Log,
	}

	health := handlers.HealthHandler{Store: a.Store}
	if a.redis != nil {
		health.Redis = a.redis
	}
	if a.Metrics != nil {
		health.Metrics = a.Metrics.Handler()
	}

	for _, h := range []interface{ Register(*gin.Engine) }{
		health,
		handlers.AuthHandler{Base: base, Users: a.Users, Tokens: a.Tokens, Revoker: a.Revoker},
		&handlers.AdminHandler{Base: base, Users: a.Users},
		&handlers.RoleHandler{Base: base},
		&handlers.PermissionHandler{Base: base, EnforceStatusWorkflow: a.Config.EnforceStatusWorkflow()},
		&handlers.LocationHandler{Base: base, Archive: a.Archive},
		&handlers.DocumentHandler{Base: base, Archive: a.Archive, Attachments: a.Attachments},
		&handlers.PaperHandler{Base: base, Archive: a.Archive, Attachments: a.Attachments},
		&handlers.DashboardHandler{Base: base, Archive: a.Archive},
		&handlers.AuditHandler{Base: base, Audit: a.Audit},
	} {
		h.Register(r)
	}

	r.NoRoute(func(c *gin.Context) {
		a.Translator.Abort(c, http.StatusNotFound, i18n.MsgNotFound, "", nil)
	})
	return r
}
