package project

import (
	"context"
	"log/slog"

	"github.com/kazz187/wbsgantt/internal/wbs"
)

const sampleProjectName = "System development"

// SeedSample creates the sample project when no project exists yet.
func SeedSample(ctx context.Context, editor *Editor) error {
	_, total, err := editor.repo.List(ctx, 1, 0)
	if err != nil {
		return err
	}
	if total > 0 {
		return nil
	}
	p, err := editor.Create(ctx, &Project{
		Name:        sampleProjectName,
		Description: "Requirements, design and development phases of a system build",
		Tasks:       wbs.SampleForest(),
	})
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "seeded sample project", "project_id", p.ID)
	return nil
}
