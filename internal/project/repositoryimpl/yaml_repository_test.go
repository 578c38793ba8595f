package repositoryimpl

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/wbsgantt/internal/project"
	"github.com/kazz187/wbsgantt/internal/wbs"
	"github.com/kazz187/wbsgantt/pkg/cerr"
	"github.com/kazz187/wbsgantt/pkg/storage"
)

func newRepo(t *testing.T) (*YAMLRepository, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	return NewYAMLRepository(s), dir
}

func sampleProject(id string) *project.Project {
	now := time.Date(2025, time.February, 1, 9, 0, 0, 0, time.UTC)
	return &project.Project{
		ID:             id,
		Name:           "System development",
		WindowStart:    "2025-01-01",
		WindowSpanDays: 90,
		Tasks:          wbs.SampleForest(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestYAMLRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	p := sampleProject("01A")
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.Get(ctx, "01A")
	require.NoError(t, err)
	assert.Equal(t, p, got)

	err = repo.Create(ctx, p)
	assert.True(t, cerr.IsCode(err, cerr.AlreadyExists))

	p.Name = "Renamed"
	require.NoError(t, repo.Update(ctx, p))
	got, err = repo.Get(ctx, "01A")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)

	require.NoError(t, repo.Delete(ctx, "01A"))
	_, err = repo.Get(ctx, "01A")
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
	assert.True(t, cerr.IsCode(repo.Delete(ctx, "01A"), cerr.NotFound))
	assert.True(t, cerr.IsCode(repo.Update(ctx, p), cerr.NotFound))
}

func TestYAMLRepository_List(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)
	for _, id := range []string{"03C", "01A", "02B"} {
		require.NoError(t, repo.Create(ctx, sampleProject(id)))
	}

	all, total, err := repo.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, all, 3)
	assert.Equal(t, "01A", all[0].ID)

	page, total, err := repo.List(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 1)
	assert.Equal(t, "02B", page[0].ID)

	page, _, err = repo.List(ctx, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestYAMLRepository_CorruptDocument(t *testing.T) {
	ctx := context.Background()
	repo, dir := newRepo(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, projectsPrefix), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, projectsPrefix, "bad.yaml"), []byte("tasks: 5\n"), 0o644))

	_, err := repo.Get(ctx, "bad")
	assert.True(t, cerr.IsCode(err, cerr.DataLoss))
}
