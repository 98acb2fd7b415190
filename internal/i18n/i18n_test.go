package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tr, err := New("ar")
	require.NoError(t, err)
	assert.Equal(t, "ar", tr.Default())

	tr, err = New("fr-FR")
	require.NoError(t, err)
	assert.Equal(t, "fr", tr.Default())

	_, err = New("de")
	assert.Error(t, err)
	_, err = New("???")
	assert.Error(t, err)
}

func TestNegotiate(t *testing.T) {
	tr, err := New("ar")
	require.NoError(t, err)

	tests := []struct {
		name, explicit, accept, want string
	}{
		{"nothing", "", "", "ar"},
		{"explicit wins", "fr", "en-US,en;q=0.9", "fr"},
		{"explicit region", "en-GB", "", "en"},
		{"unsupported explicit", "de", "en", "en"},
		{"accept header", "", "fr-CA,fr;q=0.9,en;q=0.5", "fr"},
		{"unsupported header", "", "ja", "ar"},
		{"malformed header", "", ";;;", "ar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.Negotiate(tt.explicit, tt.accept))
		})
	}
}

func TestTranslate(t *testing.T) {
	tr, err := New("ar")
	require.NoError(t, err)

	assert.Equal(t, "The requested resource was not found", tr.Translate("en", MsgNotFound, nil))
	assert.Equal(t, "La ressource demandée est introuvable", tr.Translate("fr", MsgNotFound, nil))
	assert.Equal(t, "المورد المطلوب غير موجود", tr.Translate("ar", MsgNotFound, nil))
	assert.Equal(t, "Status cannot change from pending to archived",
		tr.Translate("en", MsgInvalidTransition, map[string]any{"From": "pending", "To": "archived"}))
	assert.Equal(t, "no_such_message", tr.Translate("en", "no_such_message", nil))
}

func TestCataloguesComplete(t *testing.T) {
	tr, err := New("en")
	require.NoError(t, err)
	ids := []string{
		MsgNotFound, MsgInvalidInput, MsgDuplicate, MsgUserHasDocuments, MsgInvalidTransition,
		MsgInvalidCredentials, MsgAccountDisabled, MsgUnauthorized, MsgForbidden,
		MsgCorruptReference, MsgAttachmentsDisabled, MsgRequestTimeout, MsgInternal,
	}
	english := map[string]string{}
	for _, id := range ids {
		english[id] = tr.Translate("en", id, map[string]any{"From": "a", "To": "b"})
		assert.NotEqual(t, id, english[id], id)
	}
	for _, lang := range []string{"ar", "fr"} {
		for _, id := range ids {
			assert.NotEqual(t, english[id], tr.Translate(lang, id, map[string]any{"From": "a", "To": "b"}), "%s/%s", lang, id)
		}
	}
}
