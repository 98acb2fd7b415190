// Package i18n localizes API messages. Catalogues for Arabic, English and
// French are embedded in the binary.
package i18n

import (
	"embed"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var locales embed.FS

// Message ids shared by every catalogue.
const (
	MsgNotFound            = "not_found"
	MsgInvalidInput        = "invalid_input"
	MsgDuplicate           = "duplicate"
	MsgUserHasDocuments    = "user_has_documents"
	MsgInvalidTransition   = "invalid_transition"
	MsgInvalidCredentials  = "invalid_credentials"
	MsgAccountDisabled     = "account_disabled"
	MsgUnauthorized        = "unauthorized"
	MsgForbidden           = "forbidden"
	MsgCorruptReference    = "corrupt_reference"
	MsgAttachmentsDisabled = "attachments_disabled"
	MsgRequestTimeout      = "request_timeout"
	MsgInternal            = "internal"
)

var supported = []language.Tag{language.Arabic, language.English, language.French}

// Translator resolves message ids against the embedded catalogues.
type Translator struct {
	bundle   *i18n.Bundle
	fallback language.Tag
	tags     []language.Tag
	matcher  language.Matcher
}

// New loads the catalogues. defaultLang must be one of ar, en or fr.
func New(defaultLang string) (*Translator, error) {
	fallback, err := language.Parse(defaultLang)
	if err != nil {
		return nil, fmt.Errorf("default language %q: %w", defaultLang, err)
	}
	idx := -1
	for i, tag := range supported {
		if base(tag) == base(fallback) {
			idx = i
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("default language %q is not supported", defaultLang)
	}
	fallback = supported[idx]

	bundle := i18n.NewBundle(fallback)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	entries, err := locales.ReadDir("locales")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if _, err := bundle.LoadMessageFileFS(locales, "locales/"+e.Name()); err != nil {
			return nil, fmt.Errorf("load %s: %w", e.Name(), err)
		}
	}

	// The matcher prefers its first tag on ties, so the fallback leads.
	tags := append([]language.Tag{fallback}, without(supported, idx)...)
	return &Translator{
		bundle:   bundle,
		fallback: fallback,
		tags:     tags,
		matcher:  language.NewMatcher(tags),
	}, nil
}

// Default returns the fallback language code.
func (t *Translator) Default() string {
	return base(t.fallback)
}

// Negotiate picks the response language: an explicit code wins when
// supported, then the Accept-Language header, then the fallback.
func (t *Translator) Negotiate(explicit, acceptLanguage string) string {
	if explicit != "" {
		if tag, err := language.Parse(strings.TrimSpace(explicit)); err == nil {
			for _, s := range t.tags {
				if base(s) == base(tag) {
					return base(s)
				}
			}
		}
	}
	if acceptLanguage != "" {
		prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
		if err == nil && len(prefs) > 0 {
			_, idx, conf := t.matcher.Match(prefs...)
			if conf != language.No {
				return base(t.tags[idx])
			}
		}
	}
	return base(t.fallback)
}

// Translate renders messageID in lang. Unknown ids come back unchanged.
func (t *Translator) Translate(lang, messageID string, data map[string]any) string {
	localizer := i18n.NewLocalizer(t.bundle, lang, t.fallback.String())
	cfg := &i18n.LocalizeConfig{MessageID: messageID}
	if len(data) > 0 {
		cfg.TemplateData = data
	}
	msg, err := localizer.Localize(cfg)
	if err != nil {
		return messageID
	}
	return msg
}

func base(tag language.Tag) string {
	b, _ := tag.Base()
	return b.String()
}

func without(tags []language.Tag, idx int) []language.Tag {
	out := make([]language.Tag, 0, len(tags)-1)
	for i, tag := range tags {
		if i != idx {
			out = append(out, tag)
		}
	}
	return out
}
