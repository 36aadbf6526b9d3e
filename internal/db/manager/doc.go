// Package manager provides the server-level operations behind --create-db:
// checking whether the target database exists and creating it.
//
// Names are quoted with pgx.Identifier.Sanitize(), so database names with
// spaces, quotes or Hangul are handled safely.
//
//	mgr := manager.New()
//	created, err := mgr.Ensure(ctx, maintenancePool, "univ_info")
package manager
