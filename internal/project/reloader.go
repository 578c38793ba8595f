package project

import (
	"context"
	"log/slog"

	"github.com/kazz187/wbsgantt/pkg/storage"
)

// Reloader feeds project documents edited on disk back into the Editor.
type Reloader struct {
	watcher storage.Watcher
	editor  *Editor
}

func NewReloader(watcher storage.Watcher, editor *Editor) *Reloader {
	return &Reloader{watcher: watcher, editor: editor}
}

func (r *Reloader) Start(ctx context.Context) error {
	slog.Info("project reloader started")
	defer slog.Info("project reloader stopped")
	return r.watcher.Watch(ctx, StoragePrefix, func(path string) {
		id, ok := IDFromPath(path)
		if !ok {
			return
		}
		if err := r.editor.Reloaded(ctx, id); err != nil {
			slog.Error("failed to reload project", "project_id", id, "error", err)
		}
	})
}
