package middleware

import (
	"judicial-archive/internal/i18n"

	"github.com/gin-gonic/gin"
)

// Language negotiates the response language from ?lang= and the
// Accept-Language header.
func Language(tr *i18n.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := tr.Negotiate(c.Query("lang"), c.GetHeader("Accept-Language"))
		c.Set(i18n.LanguageKey, lang)
		c.Header("Content-Language", lang)
		c.Next()
	}
}
