package services

import (
	"context"
	"math/rand/v2"
	"regexp"
	"slices"
	"testing"
	"time"

	"judicial-archive/internal/repositories"
	"judicial-archive/pkg/crypto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func seedArchive(t *testing.T) (*ArchiveService, *SeedResult) {
	t.Helper()
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	svc := NewArchiveService(repositories.NewMemoryStore(), nil, Options{Now: func() time.Time { return now }})
	res, err := svc.Seed(context.Background(), SeedOptions{
		Rand:   rand.New(rand.NewPCG(7, 11)),
		Hasher: crypto.NewHasher(bcrypt.MinCost),
	})
	require.NoError(t, err)
	return svc, res
}

func references(t *testing.T, svc *ArchiveService) []string {
	docs, err := svc.FindDocuments(context.Background(), DocumentQuery{})
	require.NoError(t, err)
	refs := make([]string, 0, len(docs))
	for _, d := range docs {
		refs = append(refs, d.Reference)
	}
	slices.Sort(refs)
	return refs
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	svc, res := seedArchive(t)

	assert.False(t, res.Skipped)
	assert.Equal(t, 2, res.Users)
	assert.Equal(t, 10, res.Blocks)
	assert.Equal(t, 30, res.Rows)
	assert.Equal(t, 120, res.Sections)
	assert.Positive(t, res.Documents)
	assert.GreaterOrEqual(t, res.Papers, 2*res.Documents)

	refs := references(t, svc)
	require.Len(t, refs, res.Documents)
	pattern := regexp.MustCompile(`^[A-J]\.[1-3]\.[1-4]\.[1-3]$`)
	for i, ref := range refs {
		assert.Regexp(t, pattern, ref)
		if i > 0 {
			assert.NotEqual(t, refs[i-1], ref)
		}
	}

	details, err := svc.ListDocuments(ctx, DocumentQuery{})
	require.NoError(t, err)
	for _, d := range details {
		assert.Equal(t, d.Reference, d.Block.Label+"."+d.Row.Label+"."+d.Section.Label+"."+d.Reference[len(d.Reference)-1:])
		assert.NotEmpty(t, d.Papers)
	}

	users := NewUserService(svc.Store(), nil, nil, crypto.NewHasher(bcrypt.MinCost), nil)
	_, err = users.Authenticate(ctx, "admin", "admin123")
	assert.NoError(t, err)
	_, err = users.Authenticate(ctx, "archivist", "arch123")
	assert.NoError(t, err)

	again, err := svc.Seed(ctx, SeedOptions{Hasher: crypto.NewHasher(bcrypt.MinCost)})
	require.NoError(t, err)
	assert.True(t, again.Skipped)
	assert.Len(t, references(t, svc), res.Documents)
}

func TestSeed_Deterministic(t *testing.T) {
	a, resA := seedArchive(t)
	b, resB := seedArchive(t)
	assert.Equal(t, resA, resB)
	assert.Equal(t, references(t, a), references(t, b))
}
