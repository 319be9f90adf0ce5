// Package inventory reads resource facts from the cloud control plane.
// The source is best effort: a resource that cannot be described is
// skipped and reported, never fatal to the run.
package inventory

import (
	"context"

	"github.com/vigilops/costwatch/internal/domain/billing"
)

// SkippedResource names a resource the source could not describe and
// why, so the run report can identify it.
type SkippedResource struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Snapshot is the result of one inventory pass
type Snapshot struct {
	Records []billing.ResourceRecord `json:"records"`
	Skipped []SkippedResource        `json:"skipped,omitempty"`
}

// Source lists the billable resources of a project
type Source interface {
	Fetch(ctx context.Context) (*Snapshot, error)
}
