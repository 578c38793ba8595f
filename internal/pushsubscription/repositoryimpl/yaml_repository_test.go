package repositoryimpl

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/wbsgantt/internal/pushsubscription"
	"github.com/kazz187/wbsgantt/pkg/cerr"
	"github.com/kazz187/wbsgantt/pkg/storage"
)

func TestYAMLRepository(t *testing.T) {
	ctx := context.Background()
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := NewYAMLRepository(s)

	sub := &pushsubscription.Subscription{
		ID:        "01S",
		Endpoint:  "https://push.example.com/abc",
		P256dhKey: "key",
		AuthKey:   "auth",
		CreatedAt: time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(ctx, sub))
	assert.True(t, cerr.IsCode(repo.Create(ctx, sub), cerr.AlreadyExists))

	found, err := repo.FindByEndpoint(ctx, sub.Endpoint)
	require.NoError(t, err)
	assert.Equal(t, sub, found)

	sub.AuthKey = "rotated"
	require.NoError(t, repo.Update(ctx, sub))
	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "rotated", all[0].AuthKey)

	require.NoError(t, repo.DeleteByEndpoint(ctx, sub.Endpoint))
	_, err = repo.FindByEndpoint(ctx, sub.Endpoint)
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
	assert.True(t, cerr.IsCode(repo.Delete(ctx, sub.ID), cerr.NotFound))
}
