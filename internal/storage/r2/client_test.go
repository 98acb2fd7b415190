package r2

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"judicial-archive/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_NotConfigured(t *testing.T) {
	_, err := New(context.Background(), config.Config{R2Bucket: "archive"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "papers/p1/scan.pdf", ObjectKey("p1", "scan.pdf"))
	assert.Equal(t, "papers/p1/scan.pdf", ObjectKey("p1", "../../etc/scan.pdf"))
	assert.Equal(t, "papers/p1/scan.pdf", ObjectKey("p1", `C:\Users\clerk\scan.pdf`))
	assert.Equal(t, "papers/p1/attachment", ObjectKey("p1", ""))
}

func TestPresign(t *testing.T) {
	c, err := New(context.Background(), config.Config{
		R2Endpoint:        "https://account.r2.example.test",
		R2Bucket:          "archive",
		R2AccessKeyID:     "key",
		R2SecretAccessKey: "secret",
		R2Region:          "auto",
		R2PresignTTL:      5 * time.Minute,
	})
	require.NoError(t, err)

	put, err := c.PresignPutObject(context.Background(), "papers/p1/scan.pdf", "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, 300, put.ExpiresSeconds)
	assert.Equal(t, "papers/p1/scan.pdf", put.Key)

	u, err := url.Parse(put.URL)
	require.NoError(t, err)
	assert.Equal(t, "account.r2.example.test", u.Host)
	assert.True(t, strings.HasPrefix(u.Path, "/archive/papers/p1/scan.pdf"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))

	get, err := c.PresignGetObject(context.Background(), "papers/p1/scan.pdf", "application/pdf", `attachment; filename="scan.pdf"`)
	require.NoError(t, err)
	assert.Contains(t, get.URL, "response-content-disposition")
}

func TestNilClient(t *testing.T) {
	var c *Client
	_, err := c.PresignPutObject(context.Background(), "k", "text/plain")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, c.DeleteObject(context.Background(), "k"), ErrNotConfigured)
}
