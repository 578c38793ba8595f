package project

import (
	"context"

	"github.com/kazz187/wbsgantt/pkg/storage"
)

// StoragePrefix is the storage directory holding one YAML document per
// project.
const StoragePrefix = "projects"

type Repository interface {
	Create(ctx context.Context, p *Project) error
	Get(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context, limit, offset int) ([]*Project, int, error)
	Update(ctx context.Context, p *Project) error
	Delete(ctx context.Context, id string) error
}

// IDFromPath returns the project id stored at storage path p, or false for
// paths that are not project documents.
func IDFromPath(p string) (string, bool) {
	return storage.DocumentID(StoragePrefix, p)
}
