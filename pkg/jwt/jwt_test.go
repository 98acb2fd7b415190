package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer_RoundTrip(t *testing.T) {
	iss := Issuer{Secret: []byte("secret"), Name: "judicial-archive", TTL: time.Hour}

	token, claims, err := iss.Issue(Claims{UserID: "u1", Username: "admin", Role: "admin"})
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	parsed, err := iss.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", parsed.UserID)
	assert.Equal(t, "admin", parsed.Role)
	assert.Equal(t, claims.ID, parsed.ID)
	assert.Equal(t, TokenTypeAccess, parsed.TokenType)
}

func TestIssuer_Rejects(t *testing.T) {
	iss := Issuer{Secret: []byte("secret"), Name: "judicial-archive", TTL: time.Hour}
	token, _, err := iss.Issue(Claims{UserID: "u1"})
	require.NoError(t, err)

	other := iss
	other.Secret = []byte("other")
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongIssuer := iss
	wrongIssuer.Name = "someone-else"
	_, err = wrongIssuer.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	later := iss
	later.Now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = later.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHashToken(t *testing.T) {
	assert.Len(t, HashToken("abc"), 64)
	assert.Equal(t, HashToken("abc"), HashToken("abc"))
}
