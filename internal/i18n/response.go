package i18n

import (
	"github.com/gin-gonic/gin"
)

// LanguageKey holds the negotiated language in the gin context.
const LanguageKey = "lang"

// Language returns the language negotiated for the request, or the
// translator's default when none was set.
func (t *Translator) Language(c *gin.Context) string {
	if lang := c.GetString(LanguageKey); lang != "" {
		return lang
	}
	if t == nil {
		return ""
	}
	return t.Default()
}

// Message localizes messageID for the request. A nil translator returns the
// id itself.
func (t *Translator) Message(c *gin.Context, messageID string, data map[string]any) string {
	if t == nil {
		return messageID
	}
	return t.Translate(t.Language(c), messageID, data)
}

// Abort writes the error envelope {"error", "code"} and stops the chain.
// detail, when set, carries the untranslated cause of a validation failure.
func (t *Translator) Abort(c *gin.Context, status int, messageID, detail string, data map[string]any) {
	body := gin.H{
		"error": t.Message(c, messageID, data),
		"code":  messageID,
	}
	if detail != "" {
		body["detail"] = detail
	}
	c.AbortWithStatusJSON(status, body)
}
