package importer

import (
	"context"

	"github.com/univinfo/univload/internal/registry"
)

// Session is a unit of work against one backing store.
//
// Writes are staged until Commit. AddUniversity is row-scoped: when it
// returns an error nothing of that row remains staged, and earlier staged
// rows are untouched. Close discards anything not yet committed.
type Session interface {
	FindCorporation(ctx context.Context, name string) (registry.Corporation, bool, error)
	CreateCorporation(ctx context.Context, name string) (registry.Corporation, error)
	AddUniversity(ctx context.Context, u *registry.University) error
	Commit(ctx context.Context) error
	Close(ctx context.Context) error
}
